package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix  = "PRIMES_"
	envFileVar = "PRIMES_CONFIG"
)

// LoadOption adjusts how Load finds its sources.
type LoadOption func(*loadOptions)

type loadOptions struct {
	path string
}

// WithFile loads the given YAML file, taking precedence over PRIMES_CONFIG.
func WithFile(path string) LoadOption {
	return func(o *loadOptions) { o.path = path }
}

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New(ctx))
//  2. file (YAML) from WithFile or PRIMES_CONFIG
//  3. env (prefix PRIMES_)
func Load(ctx context.Context, opts ...LoadOption) (*Config, error) {
	lo := loadOptions{path: os.Getenv(envFileVar)}
	for _, opt := range opts {
		opt(&lo)
	}

	base := New(ctx)
	k := koanf.New(".")

	if lo.path != "" {
		if err := k.Load(file.Provider(lo.path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, lo.path, err)
		}
	}

	// Map env keys like PRIMES_STORE_DRIVER -> store_driver (flat keys).
	// Underscores are preserved to match koanf tags on the struct.
	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, strings.ToLower(envPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations the service cannot start with.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.MaxLen < 1:
		return fmt.Errorf("%w: max_len must be >= 1", ErrInvalidConfig)
	}
	switch c.StoreDriver {
	case DriverMemory:
		if c.SeedLimit < 2 {
			return fmt.Errorf("%w: seed_limit must be >= 2 for the memory driver", ErrInvalidConfig)
		}
	case DriverSQLite:
		if strings.TrimSpace(c.SQLitePath) == "" {
			return fmt.Errorf("%w: sqlite_path must not be empty", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown store_driver %q", ErrInvalidConfig, c.StoreDriver)
	}
	return nil
}
