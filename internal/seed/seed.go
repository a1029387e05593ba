// Package seed appends primes to a record store, continuing after its
// current maximum.
package seed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/okian/primeapi/internal/adapters/repository"
	"github.com/okian/primeapi/internal/adapters/repository/sqlite"
	"github.com/okian/primeapi/internal/domain/model"
	"github.com/okian/primeapi/internal/domain/sieve"
	"github.com/okian/primeapi/pkg/logger"
)

// Config holds configuration for a seeding run.
type Config struct {
	DBPath    string // SQLite database file
	Limit     int64  // largest integer to sieve
	BatchSize int    // records per append transaction
}

// Target is a store that can report its maximum and accept appends.
type Target interface {
	repository.Appender
	FindExtremal(ctx context.Context, key model.Key, dir model.Direction) (model.Record, error)
}

// Result summarizes a seeding run.
type Result struct {
	Before   model.Record // maximal record before the run; zero when the store was empty
	Last     model.Record // maximal record after the run
	Appended int
	Elapsed  time.Duration
}

// Run opens the SQLite database at cfg.DBPath and seeds it.
func Run(ctx context.Context, cfg Config) (Result, error) {
	store, err := sqlite.Open(ctx, cfg.DBPath)
	if err != nil {
		return Result{}, fmt.Errorf("open %s: %w", cfg.DBPath, err)
	}
	defer store.Close()
	return Seed(ctx, store, cfg.Limit, cfg.BatchSize)
}

// Seed appends every prime above the target's current maximum up to limit.
func Seed(ctx context.Context, target Target, limit int64, batchSize int) (Result, error) {
	start := time.Now()
	log := logger.Named("seed")

	before, err := target.FindExtremal(ctx, model.KeyValue, model.Descending)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return Result{}, fmt.Errorf("read current maximum: %w", err)
	}
	res := Result{Before: before, Last: before}

	log.Info(ctx, "seeding primes",
		logger.Int64("from", before.Value),
		logger.Int64("fromRank", before.Rank),
		logger.Int64("limit", limit),
		logger.Int("batch", batchSize),
	)

	gen := sieve.New(sieve.WithBatchSize(batchSize))
	err = gen.Generate(ctx, before, limit, func(batch []model.Record) error {
		if err := target.Append(ctx, batch); err != nil {
			return fmt.Errorf("append batch ending at %d: %w", batch[len(batch)-1].Value, err)
		}
		res.Appended += len(batch)
		res.Last = batch[len(batch)-1]
		log.Debug(ctx, "appended batch",
			logger.Int("size", len(batch)),
			logger.Int64("last", res.Last.Value),
		)
		return nil
	})
	res.Elapsed = time.Since(start)
	if err != nil {
		return res, err
	}

	log.Info(ctx, "seeding complete",
		logger.Int("appended", res.Appended),
		logger.Int64("maxValue", res.Last.Value),
		logger.Int64("maxRank", res.Last.Rank),
		logger.Duration("elapsed", res.Elapsed),
	)
	return res, nil
}
