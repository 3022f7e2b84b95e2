package internal

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	koanfyaml "github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
	"gopkg.in/yaml.v3"
)

const (
	ResolverFilename = "filename"
	ResolverStatic   = "static"
	ResolverScan     = "scan"

	// EnvPrefix marks environment variables that override config keys,
	// e.g. GLOVE_VOCABULARY_SIZE -> vocabulary_size.
	EnvPrefix = "GLOVE_"

	DefaultConfigFilename = "glove.yaml"
)

var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	Path           string `yaml:"path,omitempty"`
	Resolver       string `yaml:"resolver"`
	VocabularySize int    `yaml:"vocabulary_size,omitempty"`
	Dimension      int    `yaml:"dimension,omitempty"`
	Strict         bool   `yaml:"strict"`
	Verbose        bool   `yaml:"verbose"`
	Seed           uint64 `yaml:"seed,omitempty"` // 0 leaves the random source unseeded
}

func DefaultConfig() *Config {
	return &Config{
		Resolver: ResolverFilename,
	}
}

func (c *Config) Validate() error {
	switch c.Resolver {
	case ResolverFilename, ResolverScan:
		return nil
	case ResolverStatic:
		spec := Spec{VocabularySize: c.VocabularySize, Dimension: c.Dimension}
		if err := spec.Validate(); err != nil {
			return fmt.Errorf("%w: static resolver: %w", ErrInvalidConfig, err)
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown resolver %q", ErrInvalidConfig, c.Resolver)
	}
}

// SpecResolver builds the resolver named by the config. The scan resolver
// reads through fs.
func (c *Config) SpecResolver(fs billy.Filesystem) (SpecResolver, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	switch c.Resolver {
	case ResolverStatic:
		return StaticResolver{VocabularySize: c.VocabularySize, Dimension: c.Dimension}, nil
	case ResolverScan:
		return NewScanResolver(fs), nil
	default:
		return NewFilenameResolver(), nil
	}
}

// LoadConfig reads the YAML config at path, then applies GLOVE_* environment
// overrides. A missing file yields the defaults plus overrides.
func LoadConfig(fs billy.Filesystem, path string) (*Config, error) {
	k := koanf.New(".")

	data, err := util.ReadFile(fs, path)
	switch {
	case err == nil:
		if err := k.Load(rawbytes.Provider(data), koanfyaml.Parser()); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := DefaultConfig()
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "yaml"}); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func SaveConfig(fs billy.Filesystem, path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := util.WriteFile(fs, path, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	return nil
}
