// Package retrieval executes validated range queries against a store.
package retrieval

import (
	"context"
	"fmt"

	"github.com/okian/primeapi/internal/domain/model"
	"github.com/okian/primeapi/internal/domain/query"
	"github.com/okian/primeapi/pkg/metrics"
)

// RangeReader is the subset of the store used for range queries.
type RangeReader interface {
	FindRange(ctx context.Context, key model.Key, min, max int64, dir model.Direction, limit int) ([]model.Record, error)
	SampleRange(ctx context.Context, key model.Key, min, max int64, size int) ([]model.Record, error)
}

// Retriever runs sorted scans and uniform samples.
type Retriever struct {
	store RangeReader
}

// NewRetriever returns a Retriever over store.
func NewRetriever(store RangeReader) *Retriever {
	return &Retriever{store: store}
}

// Retrieve returns the records matching q. Order ±1 scans [Min, Max] sorted
// on Key; order 0 draws a sample without replacement of up to Limit records.
// The result is never nil.
func (r *Retriever) Retrieve(ctx context.Context, q query.ValidatedQuery) ([]model.Record, error) {
	if q.Min > q.Max {
		metrics.RecordRangeResultSize(strategy(q.Order), 0)
		return []model.Record{}, nil
	}

	var (
		recs []model.Record
		err  error
	)
	switch q.Order {
	case model.OrderAscending:
		recs, err = r.store.FindRange(ctx, q.Key, q.Min, q.Max, model.Ascending, q.Limit)
	case model.OrderDescending:
		recs, err = r.store.FindRange(ctx, q.Key, q.Min, q.Max, model.Descending, q.Limit)
	default:
		recs, err = r.store.SampleRange(ctx, q.Key, q.Min, q.Max, q.Limit)
	}
	if err != nil {
		return nil, fmt.Errorf("retrieve %s range [%d, %d]: %w", q.Key, q.Min, q.Max, err)
	}
	if recs == nil {
		recs = []model.Record{}
	}
	metrics.RecordRangeResultSize(strategy(q.Order), len(recs))
	return recs, nil
}

func strategy(order int) string {
	switch order {
	case model.OrderAscending:
		return "asc"
	case model.OrderDescending:
		return "desc"
	}
	return "sample"
}
