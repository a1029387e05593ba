// prime-seed appends primes to a SQLite store used by the sqlite driver.
// It continues after the store's current maximum, so it can be rerun with a
// larger --limit to grow the dataset while the API is serving.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/okian/primeapi/internal/seed"
	"github.com/okian/primeapi/pkg/logger"
	"github.com/spf13/pflag"
)

// Default configuration constants.
const (
	defaultLimit = 1_000_000
	defaultBatch = 10_000
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var cfg seed.Config
	var logLevel, logFormat string

	flagSet := pflag.NewFlagSet("prime-seed", pflag.ContinueOnError)
	flagSet.StringVar(&cfg.DBPath, "db", "primes.db", "SQLite database file")
	flagSet.Int64Var(&cfg.Limit, "limit", defaultLimit, "largest integer to sieve")
	flagSet.IntVar(&cfg.BatchSize, "batch", defaultBatch, "records per append transaction")
	flagSet.StringVar(&logLevel, "log-level", "info", "debug, info, warn or error")
	flagSet.StringVar(&logFormat, "log-format", "text", "text or json")

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	if err := logger.Init(logger.WithFormat(logFormat)); err != nil {
		return fmt.Errorf("initialize logging: %w", err)
	}
	if err := logger.SetLevelString(logLevel); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	_, err := seed.Run(ctx, cfg)
	return err
}
