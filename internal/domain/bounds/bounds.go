// Package bounds derives the valid query range from the dataset's current extremes.
package bounds

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/okian/primeapi/internal/adapters/repository"
	"github.com/okian/primeapi/internal/domain/model"
	"github.com/okian/primeapi/pkg/metrics"
	"golang.org/x/sync/errgroup"
)

// Finder reads the extremal record of the dataset by key.
type Finder interface {
	FindExtremal(ctx context.Context, key model.Key, dir model.Direction) (model.Record, error)
}

// Bounds is the inclusive [Min, Max] range of the dataset on Key as of one read.
type Bounds struct {
	Key         model.Key
	Min         int64
	Max         int64
	LastUpdated time.Time // RecordedAt of the maximal record
	MaxRank     int64     // rank of the maximal record
}

// Contains reports whether x lies in [Min, Max].
func (b Bounds) Contains(x int64) bool {
	return x >= b.Min && x <= b.Max
}

// Resolver reads bounds from a Finder. Results are never cached.
type Resolver struct {
	store Finder
}

// NewResolver returns a Resolver over store.
func NewResolver(store Finder) *Resolver {
	return &Resolver{store: store}
}

// Resolve reads the minimal and maximal records on key concurrently.
// An empty store yields model.ErrEmptyDataset.
func (r *Resolver) Resolve(ctx context.Context, key model.Key) (Bounds, error) {
	start := time.Now()
	defer func() {
		metrics.RecordBoundsResolveLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	var lo, hi model.Record
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rec, err := r.store.FindExtremal(gctx, key, model.Ascending)
		lo = rec
		return err
	})
	g.Go(func() error {
		rec, err := r.store.FindExtremal(gctx, key, model.Descending)
		hi = rec
		return err
	})
	if err := g.Wait(); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return Bounds{}, model.ErrEmptyDataset
		}
		return Bounds{}, fmt.Errorf("resolve %s bounds: %w", key, err)
	}

	return Bounds{
		Key:         key,
		Min:         key.Of(lo),
		Max:         key.Of(hi),
		LastUpdated: hi.RecordedAt,
		MaxRank:     hi.Rank,
	}, nil
}
