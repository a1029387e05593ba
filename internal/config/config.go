// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) initializer to build a Config with defaults.
// - Load layers a YAML file and PRIMES_ environment variables on top.
// - External errors are wrapped with this package's sentinels.
package config

import (
	"context"
)

// Store drivers.
const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
)

// DefaultAbout is the /about blurb.
const DefaultAbout = "Prime Number API: a self-updating API where you can get basic information about number's prime-ness."

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`
	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`
	// StoreDriver selects the record store: memory or sqlite.
	StoreDriver string `koanf:"store_driver"`
	// SQLitePath is the database file used by the sqlite driver.
	SQLitePath string `koanf:"sqlite_path"`
	// SeedLimit bounds the primes generated into the memory driver at start.
	SeedLimit int64 `koanf:"seed_limit"`
	// MaxLen caps GET /numbers?len.
	MaxLen int `koanf:"max_len"`
	// About is returned by GET /about.
	About string `koanf:"about"`
	// CORSAllowOrigin is sent as Access-Control-Allow-Origin; empty disables the header.
	CORSAllowOrigin string `koanf:"cors_allow_origin"`
}

// New creates a Config holding the defaults.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:        "info",
		LogFormat:       "text",
		Addr:            ":9080",
		StoreDriver:     DriverMemory,
		SQLitePath:      "primes.db",
		SeedLimit:       1_000_000,
		MaxLen:          1000,
		About:           DefaultAbout,
		CORSAllowOrigin: "*",
	}
}
