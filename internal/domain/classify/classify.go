// Package classify answers batch membership lookups against the dataset.
package classify

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/okian/primeapi/internal/domain/bounds"
	"github.com/okian/primeapi/internal/domain/model"
	"github.com/okian/primeapi/pkg/metrics"
)

// ParamNum is the batch parameter name as clients send it.
const ParamNum = "num"

// BoundsResolver supplies the current dataset bounds for a key.
type BoundsResolver interface {
	Resolve(ctx context.Context, key model.Key) (bounds.Bounds, error)
}

// Matcher looks up stored records by exact value.
type Matcher interface {
	FindExactMatch(ctx context.Context, values []int64) ([]model.Record, error)
}

// Lookup is the answer for one queried integer. A nil Record means nothing
// is stored for it: either it is not a prime or it has not been ingested.
type Lookup struct {
	Queried int64
	Record  *model.Record
}

// Classifier resolves batches of raw integer tokens.
type Classifier struct {
	bounds BoundsResolver
	store  Matcher
}

// NewClassifier returns a Classifier.
func NewClassifier(resolver BoundsResolver, store Matcher) *Classifier {
	return &Classifier{bounds: resolver, store: store}
}

// Classify parses every token, checks all values against the current value
// bounds and looks the distinct values up in one store call. The result has
// one entry per token in input order. Any bad token fails the whole batch.
func (c *Classifier) Classify(ctx context.Context, raw []string) ([]Lookup, error) {
	if len(raw) == 0 {
		return nil, &model.ValidationError{
			Kind:    model.ErrMalformedInput,
			Param:   ParamNum,
			Message: "num is required",
		}
	}

	queried := make([]int64, len(raw))
	var malformed []string
	for i, tok := range raw {
		v, err := strconv.ParseInt(strings.TrimSpace(tok), 10, 64)
		if err != nil {
			malformed = append(malformed, tok)
			continue
		}
		queried[i] = v
	}
	if len(malformed) > 0 {
		return nil, &model.ValidationError{
			Kind:    model.ErrMalformedInput,
			Param:   ParamNum,
			Message: "num must be base-10 integers, invalid: " + quoteAll(malformed),
			Invalid: malformed,
		}
	}

	b, err := c.bounds.Resolve(ctx, model.KeyValue)
	if err != nil {
		return nil, err
	}
	var outside []string
	for _, v := range queried {
		if !b.Contains(v) {
			outside = append(outside, strconv.FormatInt(v, 10))
		}
	}
	if len(outside) > 0 {
		return nil, &model.ValidationError{
			Kind:  model.ErrOutOfBounds,
			Param: ParamNum,
			Message: fmt.Sprintf("num must be within [%d, %d], out of range: %s",
				b.Min, b.Max, strings.Join(outside, ", ")),
			Invalid: outside,
			Min:     b.Min,
			Max:     b.Max,
		}
	}

	seen := make(map[int64]struct{}, len(queried))
	distinct := make([]int64, 0, len(queried))
	for _, v := range queried {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		distinct = append(distinct, v)
	}

	found, err := c.store.FindExactMatch(ctx, distinct)
	if err != nil {
		return nil, fmt.Errorf("lookup %d values: %w", len(distinct), err)
	}
	byValue := make(map[int64]model.Record, len(found))
	for _, rec := range found {
		byValue[rec.Value] = rec
	}

	out := make([]Lookup, len(queried))
	absent := 0
	for i, v := range queried {
		out[i] = Lookup{Queried: v}
		if rec, ok := byValue[v]; ok {
			out[i].Record = &rec
		} else {
			absent++
		}
	}
	metrics.RecordBatchLookup(len(queried), absent)
	return out, nil
}

func quoteAll(tokens []string) string {
	quoted := make([]string, len(tokens))
	for i, t := range tokens {
		quoted[i] = strconv.Quote(t)
	}
	return strings.Join(quoted, ", ")
}
