// Package repository defines the record store port, its in-memory
// implementation and errors.
package repository

import (
	"context"

	"github.com/okian/primeapi/internal/domain/model"
)

// Store provides read access to classified records. Every range bound is
// inclusive and interpreted on the given key.
type Store interface {
	// FindExtremal returns the first record ordered by key in dir.
	// Returns ErrNotFound if the store is empty.
	FindExtremal(ctx context.Context, key model.Key, dir model.Direction) (model.Record, error)

	// FindRange returns up to limit records with key in [min, max], sorted by key in dir.
	FindRange(ctx context.Context, key model.Key, min, max int64, dir model.Direction, limit int) ([]model.Record, error)

	// SampleRange returns a uniform sample without replacement of up to size
	// records with key in [min, max]. The result has no defined order.
	SampleRange(ctx context.Context, key model.Key, min, max int64, size int) ([]model.Record, error)

	// FindExactMatch returns the records whose value is in values, in one call.
	FindExactMatch(ctx context.Context, values []int64) ([]model.Record, error)

	// Count returns the number of stored records.
	Count(ctx context.Context) (int, error)

	// Ping reports whether the store is reachable.
	Ping(ctx context.Context) error

	// Close releases the store handle.
	Close() error
}

// Appender is implemented by stores that accept ingestion. Records must
// extend the dataset: each value and rank strictly above the current maximum.
type Appender interface {
	Append(ctx context.Context, records []model.Record) error
}
