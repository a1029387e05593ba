package repository

import (
	"context"
	"time"

	"github.com/okian/primeapi/internal/domain/model"
	"github.com/okian/primeapi/pkg/metrics"
)

// Instrumented wraps a Store and records per-operation latency and errors.
type Instrumented struct {
	next Store
}

// NewInstrumented decorates next with metrics.
func NewInstrumented(next Store) *Instrumented {
	return &Instrumented{next: next}
}

// Unwrap returns the decorated store.
func (s *Instrumented) Unwrap() Store { return s.next }

func observe(op string, start time.Time, err error) {
	metrics.RecordStoreLatency(op, float64(time.Since(start).Microseconds())/1000)
	if err != nil {
		metrics.RecordStoreError(op)
	}
}

func (s *Instrumented) FindExtremal(ctx context.Context, key model.Key, dir model.Direction) (rec model.Record, err error) {
	defer func(start time.Time) { observe("find_extremal", start, err) }(time.Now())
	return s.next.FindExtremal(ctx, key, dir)
}

func (s *Instrumented) FindRange(ctx context.Context, key model.Key, lo, hi int64, dir model.Direction, limit int) (recs []model.Record, err error) {
	defer func(start time.Time) { observe("find_range", start, err) }(time.Now())
	return s.next.FindRange(ctx, key, lo, hi, dir, limit)
}

func (s *Instrumented) SampleRange(ctx context.Context, key model.Key, lo, hi int64, size int) (recs []model.Record, err error) {
	defer func(start time.Time) { observe("sample_range", start, err) }(time.Now())
	return s.next.SampleRange(ctx, key, lo, hi, size)
}

func (s *Instrumented) FindExactMatch(ctx context.Context, values []int64) (recs []model.Record, err error) {
	defer func(start time.Time) { observe("find_exact_match", start, err) }(time.Now())
	return s.next.FindExactMatch(ctx, values)
}

func (s *Instrumented) Count(ctx context.Context) (n int, err error) {
	defer func(start time.Time) { observe("count", start, err) }(time.Now())
	return s.next.Count(ctx)
}

func (s *Instrumented) Ping(ctx context.Context) (err error) {
	defer func(start time.Time) { observe("ping", start, err) }(time.Now())
	return s.next.Ping(ctx)
}

func (s *Instrumented) Close() error {
	return s.next.Close()
}
