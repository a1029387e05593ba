// Package query validates range query parameters against the live dataset bounds.
package query

import (
	"context"
	"fmt"

	"github.com/okian/primeapi/internal/domain/bounds"
	"github.com/okian/primeapi/internal/domain/model"
)

// Parameter names as clients send them.
const (
	ParamOrder = "order"
	ParamKey   = "type"
	ParamMin   = "min"
	ParamMax   = "max"
	ParamLimit = "len"
)

const (
	defaultLimit    = 1
	defaultMaxLimit = 1000
)

// BoundsResolver supplies the current dataset bounds for a key.
type BoundsResolver interface {
	Resolve(ctx context.Context, key model.Key) (bounds.Bounds, error)
}

// Params are the raw query inputs. Nil pointers take their defaults.
type Params struct {
	Order int
	Key   string
	Min   *int64
	Max   *int64
	Limit *int
}

// ValidatedQuery is a fully resolved range query with no remaining defaults.
// Min > Max is valid and matches nothing.
type ValidatedQuery struct {
	Order int
	Key   model.Key
	Min   int64
	Max   int64
	Limit int
}

// Option configures a Validator.
type Option func(*Validator)

// WithMaxLimit caps the number of records a query may request.
func WithMaxLimit(n int) Option {
	return func(v *Validator) {
		if n > 0 {
			v.maxLimit = n
		}
	}
}

// Validator checks Params and fills defaults from the dataset bounds.
type Validator struct {
	bounds   BoundsResolver
	maxLimit int
}

// NewValidator returns a Validator reading bounds from resolver.
func NewValidator(resolver BoundsResolver, opts ...Option) *Validator {
	v := &Validator{bounds: resolver, maxLimit: defaultMaxLimit}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// MaxLimit returns the configured length cap.
func (v *Validator) MaxLimit() int { return v.maxLimit }

// Validate checks order, key and limit first, then reads the bounds for the
// key and checks min and max against them.
func (v *Validator) Validate(ctx context.Context, p Params) (ValidatedQuery, error) {
	if p.Order < model.OrderDescending || p.Order > model.OrderAscending {
		return ValidatedQuery{}, &model.ValidationError{
			Kind:    model.ErrInvalidOrder,
			Param:   ParamOrder,
			Message: fmt.Sprintf("order must be one of -1, 0, 1, got %d", p.Order),
		}
	}

	keyName := p.Key
	if keyName == "" {
		keyName = string(model.KeyValue)
	}
	key, ok := model.ParseKey(keyName)
	if !ok {
		return ValidatedQuery{}, &model.ValidationError{
			Kind:    model.ErrInvalidKey,
			Param:   ParamKey,
			Message: fmt.Sprintf("type must be one of value, rank, got %q", p.Key),
			Invalid: []string{p.Key},
		}
	}

	limit := defaultLimit
	if p.Limit != nil {
		limit = *p.Limit
	}
	if limit < 1 || limit > v.maxLimit {
		return ValidatedQuery{}, &model.ValidationError{
			Kind:    model.ErrLimitExceeded,
			Param:   ParamLimit,
			Message: fmt.Sprintf("len must be between 1 and %d, got %d", v.maxLimit, limit),
			Min:     1,
			Max:     int64(v.maxLimit),
		}
	}

	b, err := v.bounds.Resolve(ctx, key)
	if err != nil {
		return ValidatedQuery{}, err
	}

	q := ValidatedQuery{Order: p.Order, Key: key, Min: b.Min, Max: b.Max, Limit: limit}
	if p.Min != nil {
		if *p.Min < b.Min {
			return ValidatedQuery{}, outOfBounds(ParamMin, *p.Min, b)
		}
		q.Min = *p.Min
	}
	if p.Max != nil {
		if *p.Max > b.Max {
			return ValidatedQuery{}, outOfBounds(ParamMax, *p.Max, b)
		}
		q.Max = *p.Max
	}
	return q, nil
}

func outOfBounds(param string, got int64, b bounds.Bounds) *model.ValidationError {
	return &model.ValidationError{
		Kind:  model.ErrOutOfBounds,
		Param: param,
		Message: fmt.Sprintf("%s must be within [%d, %d] for type %s, got %d",
			param, b.Min, b.Max, b.Key, got),
		Invalid: []string{fmt.Sprint(got)},
		Min:     b.Min,
		Max:     b.Max,
	}
}
