package v1

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/4thel00z/glove/internal"
	"github.com/go-git/go-billy/v5/osfs"
	"gonum.org/v1/gonum/mat"
)

// Client provides programmatic access to a set of pretrained word vectors.
type Client struct {
	store   *internal.VectorStore
	verbose bool
}

// New creates a new Client with the given options. No vectors are loaded
// until LoadVectors is called.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	return newClient(cfg), nil
}

func newClient(cfg *clientConfig) *Client {
	if cfg.fs == nil {
		cfg.fs = osfs.New("")
	}
	if cfg.rng == nil && cfg.seed != 0 {
		cfg.rng = rand.New(rand.NewPCG(cfg.seed, cfg.seed))
	}

	store := internal.NewVectorStore(internal.StoreOptions{
		FS:       cfg.fs,
		Resolver: cfg.resolver,
		Rand:     cfg.rng,
		Logger:   cfg.logger,
		Metrics:  internal.NewMetrics(cfg.meterProvider, cfg.logger),
		Progress: cfg.progress,
		Strict:   cfg.strict != nil && *cfg.strict,
	})
	return &Client{store: store, verbose: cfg.verbose != nil && *cfg.verbose}
}

// NewFromConfig creates a Client whose resolver, strictness, verbosity and
// seed come from cfg. Explicit options take precedence.
func NewFromConfig(cfg *Config, opts ...Option) (*Client, error) {
	cc := &clientConfig{}
	for _, opt := range opts {
		opt(cc)
	}
	if cc.fs == nil {
		cc.fs = osfs.New("")
	}

	if cc.resolver == nil {
		resolver, err := cfg.SpecResolver(cc.fs)
		if err != nil {
			return nil, err
		}
		cc.resolver = resolver
	}
	if cc.strict == nil {
		cc.strict = &cfg.Strict
	}
	if cc.verbose == nil {
		cc.verbose = &cfg.Verbose
	}
	if cc.seed == 0 {
		cc.seed = cfg.Seed
	}

	return newClient(cc), nil
}

// Open loads the config at configPath and the vectors it points to. Options
// override the matching config fields.
func Open(ctx context.Context, configPath string, opts ...Option) (*Client, error) {
	cc := &clientConfig{}
	for _, opt := range opts {
		opt(cc)
	}
	fs := cc.fs
	if fs == nil {
		fs = osfs.New("")
	}

	cfg, err := internal.LoadConfig(fs, configPath)
	if err != nil {
		return nil, err
	}
	if cfg.Path == "" {
		return nil, fmt.Errorf("%w: no vector path in %s", ErrInvalidConfig, configPath)
	}

	c, err := NewFromConfig(cfg, append([]Option{WithFilesystem(fs)}, opts...)...)
	if err != nil {
		return nil, err
	}
	if err := c.LoadVectors(ctx, cfg.Path, c.verbose); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadVectors parses the vector file at path, replacing any loaded vectors
// only on success. With verbose set, progress is logged.
func (c *Client) LoadVectors(ctx context.Context, path string, verbose bool) error {
	if err := c.store.LoadVectors(ctx, path, verbose); err != nil {
		return fmt.Errorf("load vectors: %w", err)
	}
	return nil
}

// EmbeddingMatrix returns the full vocabulary_size x dimension matrix. The
// matrix is shared; do not modify it.
func (c *Client) EmbeddingMatrix() (*mat.Dense, error) {
	return c.store.EmbeddingMatrix()
}

// EmbeddingSubset returns a matrix whose row vocab[w] is the vector of w, or
// a standard-normal draw when w is unknown. An empty vocab is rejected with
// ErrInvalidSubset rather than producing a matrix with no rows.
func (c *Client) EmbeddingSubset(vocab map[string]int) (*mat.Dense, error) {
	return c.store.EmbeddingSubset(vocab)
}

// WordIndexes returns the shared word to row mapping.
func (c *Client) WordIndexes() (map[string]int, error) {
	return c.store.WordIndexes()
}

// Lookup returns a copy of the vector for word.
func (c *Client) Lookup(word string) (Embedding, error) {
	return c.store.Lookup(word)
}

// Spec returns the shape of the loaded matrix.
func (c *Client) Spec() (Spec, error) {
	return c.store.Spec()
}

// Watch reloads the current vector file whenever it changes on disk and
// blocks until ctx is done.
func (c *Client) Watch(ctx context.Context, debounce time.Duration, verbose bool) error {
	path := c.store.Path()
	if path == "" {
		return ErrNotLoaded
	}
	w := internal.NewWatcher(c.store, path, internal.WatchOptions{
		Debounce: debounce,
		Verbose:  verbose,
	})
	return w.Run(ctx)
}

// Close releases any resources held by the client.
func (c *Client) Close() error {
	return nil
}
