package internal

import (
	"context"
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Aggregation {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := make(map[string]metricdata.Aggregation)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m.Data
		}
	}
	return out
}

func histogramCount[N int64 | float64](t *testing.T, data metricdata.Aggregation) uint64 {
	t.Helper()
	hist, ok := data.(metricdata.Histogram[N])
	require.True(t, ok, "unexpected aggregation %T", data)
	var total uint64
	for _, dp := range hist.DataPoints {
		total += dp.Count
	}
	return total
}

func sumValue(t *testing.T, data metricdata.Aggregation) int64 {
	t.Helper()
	sum, ok := data.(metricdata.Sum[int64])
	require.True(t, ok, "unexpected aggregation %T", data)
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func TestMetricsRecordedByStore(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	fs := memfs.New()
	writeVectors(t, fs, "vectors.txt", threeWords)
	writeVectors(t, fs, "broken.txt", "cat x y\n")
	store := NewVectorStore(StoreOptions{
		FS:       fs,
		Resolver: StaticResolver{VocabularySize: 3, Dimension: 2},
		Metrics:  NewMetrics(mp, zap.NewNop()),
	})

	ctx := context.Background()
	require.NoError(t, store.LoadVectors(ctx, "vectors.txt", false))
	require.Error(t, store.LoadVectors(ctx, "broken.txt", false))
	_, err := store.EmbeddingSubset(map[string]int{"cat": 0, "x": 1, "y": 2})
	require.NoError(t, err)

	got := collect(t, reader)

	require.Contains(t, got, "glove.load.duration_seconds")
	assert.Equal(t, uint64(2), histogramCount[float64](t, got["glove.load.duration_seconds"]))

	require.Contains(t, got, "glove.load.words")
	words := got["glove.load.words"].(metricdata.Histogram[int64])
	require.Len(t, words.DataPoints, 1)
	assert.Equal(t, int64(3), words.DataPoints[0].Sum)

	require.Contains(t, got, "glove.load.errors_total")
	assert.Equal(t, int64(1), sumValue(t, got["glove.load.errors_total"]))

	require.Contains(t, got, "glove.subset.rows")
	assert.Equal(t, uint64(1), histogramCount[int64](t, got["glove.subset.rows"]))

	require.Contains(t, got, "glove.subset.oov_total")
	assert.Equal(t, int64(2), sumValue(t, got["glove.subset.oov_total"]))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordLoad(context.Background(), 0, 1, nil)
		m.RecordSubset(context.Background(), 1, 1)
	})
}

func TestNewMetricsGlobalProvider(t *testing.T) {
	m := NewMetrics(nil, nil)
	require.NotNil(t, m)
	assert.NotNil(t, m.loadDuration)
	assert.NotNil(t, m.subsetOOV)
}
