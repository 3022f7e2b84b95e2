package internal

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

const instrumentationName = "github.com/4thel00z/glove/internal"

// Metrics records load and subset activity. A nil *Metrics records nothing.
type Metrics struct {
	meter  metric.Meter
	logger *zap.Logger

	loadDuration metric.Float64Histogram
	loadWords    metric.Int64Histogram
	loadErrors   metric.Int64Counter
	subsetRows   metric.Int64Histogram
	subsetOOV    metric.Int64Counter
}

// NewMetrics creates the instruments on provider, or on the global provider
// when provider is nil.
func NewMetrics(provider metric.MeterProvider, logger *zap.Logger) *Metrics {
	if provider == nil {
		provider = otel.GetMeterProvider()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Metrics{
		meter:  provider.Meter(instrumentationName),
		logger: logger,
	}
	m.init()
	return m
}

func (m *Metrics) init() {
	var err error

	m.loadDuration, err = m.meter.Float64Histogram(
		"glove.load.duration_seconds",
		metric.WithDescription("Time spent parsing a vector file"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.1, 0.5, 1, 5, 10, 30, 60, 120, 300),
	)
	if err != nil {
		m.logger.Warn("failed to create load duration histogram", zap.Error(err))
	}

	m.loadWords, err = m.meter.Int64Histogram(
		"glove.load.words",
		metric.WithDescription("Number of word vectors in a successfully loaded file"),
		metric.WithUnit("{word}"),
	)
	if err != nil {
		m.logger.Warn("failed to create loaded words histogram", zap.Error(err))
	}

	m.loadErrors, err = m.meter.Int64Counter(
		"glove.load.errors_total",
		metric.WithDescription("Failed vector loads, including spec resolution and parse failures"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		m.logger.Warn("failed to create load errors counter", zap.Error(err))
	}

	m.subsetRows, err = m.meter.Int64Histogram(
		"glove.subset.rows",
		metric.WithDescription("Rows per extracted embedding subset"),
		metric.WithUnit("{row}"),
	)
	if err != nil {
		m.logger.Warn("failed to create subset rows histogram", zap.Error(err))
	}

	m.subsetOOV, err = m.meter.Int64Counter(
		"glove.subset.oov_total",
		metric.WithDescription("Out-of-vocabulary words given random vectors during subset extraction"),
		metric.WithUnit("{word}"),
	)
	if err != nil {
		m.logger.Warn("failed to create oov counter", zap.Error(err))
	}
}

func (m *Metrics) RecordLoad(ctx context.Context, duration time.Duration, words int, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	attrs := metric.WithAttributes(attribute.String("status", status))

	if m.loadDuration != nil {
		m.loadDuration.Record(ctx, duration.Seconds(), attrs)
	}
	if err != nil {
		if m.loadErrors != nil {
			m.loadErrors.Add(ctx, 1)
		}
		return
	}
	if m.loadWords != nil {
		m.loadWords.Record(ctx, int64(words))
	}
}

func (m *Metrics) RecordSubset(ctx context.Context, rows, oov int) {
	if m == nil {
		return
	}
	if m.subsetRows != nil {
		m.subsetRows.Record(ctx, int64(rows))
	}
	if oov > 0 && m.subsetOOV != nil {
		m.subsetOOV.Add(ctx, int64(oov))
	}
}
