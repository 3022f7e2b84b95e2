package internal

import (
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Resolver != ResolverFilename {
		t.Errorf("expected resolver %q, got %q", ResolverFilename, cfg.Resolver)
	}
	if cfg.Strict {
		t.Error("expected strict to be off")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestConfigSaveAndLoad(t *testing.T) {
	fs := memfs.New()

	cfg := DefaultConfig()
	cfg.Path = "/data/glove.6B.50d.txt"
	cfg.Resolver = ResolverStatic
	cfg.VocabularySize = 1000
	cfg.Dimension = 50
	cfg.Strict = true
	cfg.Seed = 42

	if err := SaveConfig(fs, DefaultConfigFilename, cfg); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := LoadConfig(fs, DefaultConfigFilename)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if *loaded != *cfg {
		t.Errorf("loaded = %+v, want %+v", *loaded, *cfg)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(memfs.New(), "nope.yaml")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	fs := memfs.New()
	require.NoError(t, util.WriteFile(fs, "glove.yaml", []byte("path: a.txt\nresolver: filename\nverbose: false\n"), 0644))

	t.Setenv("GLOVE_PATH", "b.txt")
	t.Setenv("GLOVE_RESOLVER", "static")
	t.Setenv("GLOVE_VOCABULARY_SIZE", "3")
	t.Setenv("GLOVE_DIMENSION", "2")
	t.Setenv("GLOVE_VERBOSE", "true")

	cfg, err := LoadConfig(fs, "glove.yaml")
	require.NoError(t, err)
	assert.Equal(t, "b.txt", cfg.Path)
	assert.Equal(t, ResolverStatic, cfg.Resolver)
	assert.Equal(t, 3, cfg.VocabularySize)
	assert.Equal(t, 2, cfg.Dimension)
	assert.True(t, cfg.Verbose)
}

func TestLoadConfigInvalid(t *testing.T) {
	fs := memfs.New()
	require.NoError(t, util.WriteFile(fs, "bad.yaml", []byte("resolver: magic\n"), 0644))
	require.NoError(t, util.WriteFile(fs, "static.yaml", []byte("resolver: static\ndimension: 2\n"), 0644))
	require.NoError(t, util.WriteFile(fs, "broken.yaml", []byte("resolver: [\n"), 0644))

	_, err := LoadConfig(fs, "bad.yaml")
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = LoadConfig(fs, "static.yaml")
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = LoadConfig(fs, "broken.yaml")
	assert.Error(t, err)
}

func TestConfigSpecResolver(t *testing.T) {
	fs := memfs.New()

	r, err := (&Config{Resolver: ResolverFilename}).SpecResolver(fs)
	require.NoError(t, err)
	assert.IsType(t, &FilenameResolver{}, r)

	r, err = (&Config{Resolver: ResolverScan}).SpecResolver(fs)
	require.NoError(t, err)
	assert.IsType(t, &ScanResolver{}, r)

	r, err = (&Config{Resolver: ResolverStatic, VocabularySize: 3, Dimension: 2}).SpecResolver(fs)
	require.NoError(t, err)
	spec, err := r.Resolve("whatever.txt")
	require.NoError(t, err)
	assert.Equal(t, Spec{VocabularySize: 3, Dimension: 2}, spec)

	_, err = (&Config{Resolver: "nope"}).SpecResolver(fs)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
