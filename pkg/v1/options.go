package v1

import (
	"math/rand/v2"

	"github.com/4thel00z/glove/internal"
	"github.com/go-git/go-billy/v5"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// Option configures a Client.
type Option func(*clientConfig)

type clientConfig struct {
	fs            billy.Filesystem
	rng           *rand.Rand
	seed          uint64
	logger        *zap.Logger
	meterProvider metric.MeterProvider
	resolver      internal.SpecResolver
	strict        *bool
	verbose       *bool
	progress      internal.ProgressFunc
}

// WithFilesystem reads vector and config files through fs instead of the
// host filesystem.
func WithFilesystem(fs billy.Filesystem) Option {
	return func(c *clientConfig) {
		c.fs = fs
	}
}

// WithRand sets the source used for out-of-vocabulary vectors.
func WithRand(rng *rand.Rand) Option {
	return func(c *clientConfig) {
		c.rng = rng
	}
}

// WithSeed makes out-of-vocabulary vectors reproducible. Ignored when
// WithRand is also given.
func WithSeed(seed uint64) Option {
	return func(c *clientConfig) {
		c.seed = seed
	}
}

// WithLogger sets the zap logger used for load progress and warnings.
func WithLogger(logger *zap.Logger) Option {
	return func(c *clientConfig) {
		c.logger = logger
	}
}

// WithMeterProvider records metrics on mp instead of the global provider.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(c *clientConfig) {
		c.meterProvider = mp
	}
}

// WithResolver replaces the filename-based shape resolution.
func WithResolver(r SpecResolver) Option {
	return func(c *clientConfig) {
		c.resolver = r
	}
}

// WithSpec fixes the vocabulary size and dimension for every file.
func WithSpec(vocabularySize, dimension int) Option {
	return func(c *clientConfig) {
		c.resolver = internal.StaticResolver{VocabularySize: vocabularySize, Dimension: dimension}
	}
}

// WithStrict fails loads whose line count differs from the expected
// vocabulary size.
func WithStrict(strict bool) Option {
	return func(c *clientConfig) {
		c.strict = &strict
	}
}

// WithVerbose overrides the verbose setting of a config passed to Open.
func WithVerbose(verbose bool) Option {
	return func(c *clientConfig) {
		c.verbose = &verbose
	}
}

// WithProgress observes every parsed line.
func WithProgress(fn func(loaded, expected int)) Option {
	return func(c *clientConfig) {
		c.progress = fn
	}
}
