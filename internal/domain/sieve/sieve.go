// Package sieve generates prime records for seeding a store.
package sieve

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/okian/primeapi/internal/domain/model"
)

const (
	defaultSegmentSize = 1 << 16
	defaultBatchSize   = 10000
)

// ErrInvalidLimit is returned when the upper limit is below the first prime.
var ErrInvalidLimit = errors.New("sieve limit must be at least 2")

// Option configures a Generator.
type Option func(*Generator)

// WithSegmentSize sets how many integers are sieved per segment.
func WithSegmentSize(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.segment = n
		}
	}
}

// WithBatchSize sets the number of records handed to the emit callback at once.
func WithBatchSize(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.batch = n
		}
	}
}

// Generator runs a segmented sieve of Eratosthenes.
type Generator struct {
	segment int
	batch   int
}

// New returns a Generator.
func New(opts ...Option) *Generator {
	g := &Generator{segment: defaultSegmentSize, batch: defaultBatchSize}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate emits every prime p with after.Value < p <= limit as records whose
// ranks continue from after.Rank. Pass the zero Record to start at 2.
// Batches are emitted in ascending order; an emit error stops generation.
func (g *Generator) Generate(ctx context.Context, after model.Record, limit int64, emit func([]model.Record) error) error {
	if limit < 2 {
		return ErrInvalidLimit
	}
	if after.Value >= limit {
		return nil
	}

	base := basePrimes(int64(math.Sqrt(float64(limit))) + 1)
	rank := after.Rank
	out := make([]model.Record, 0, g.batch)
	flush := func() error {
		if len(out) == 0 {
			return nil
		}
		if err := emit(out); err != nil {
			return err
		}
		out = make([]model.Record, 0, g.batch)
		return nil
	}

	composite := make([]bool, g.segment)
	for lo := max(after.Value+1, 2); lo <= limit; lo += int64(g.segment) {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("sieve interrupted at %d: %w", lo, err)
		}
		hi := min(lo+int64(g.segment)-1, limit)
		span := int(hi - lo + 1)
		clear(composite[:span])

		for _, p := range base {
			if p*p > hi {
				break
			}
			start := max(p*p, (lo+p-1)/p*p)
			for m := start; m <= hi; m += p {
				composite[m-lo] = true
			}
		}

		for i := 0; i < span; i++ {
			if composite[i] {
				continue
			}
			rank++
			out = append(out, model.Record{Value: lo + int64(i), Rank: rank})
			if len(out) == g.batch {
				if err := flush(); err != nil {
					return err
				}
			}
		}
	}
	return flush()
}

// Primes returns every prime up to and including limit.
func Primes(limit int64) []int64 {
	if limit < 2 {
		return nil
	}
	return basePrimes(limit)
}

func basePrimes(limit int64) []int64 {
	if limit < 2 {
		return nil
	}
	composite := make([]bool, limit+1)
	var out []int64
	for i := int64(2); i <= limit; i++ {
		if composite[i] {
			continue
		}
		out = append(out, i)
		for m := i * i; m <= limit; m += i {
			composite[m] = true
		}
	}
	return out
}
