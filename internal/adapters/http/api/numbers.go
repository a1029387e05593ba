package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/okian/primeapi/internal/domain/model"
	"github.com/okian/primeapi/internal/domain/query"
	"github.com/okian/primeapi/internal/domain/types"
	"github.com/okian/primeapi/pkg/logger"
)

// NumbersDependencies defines the interface for range queries.
type NumbersDependencies interface {
	Numbers(ctx context.Context, p query.Params) ([]types.Number, error)
}

// NumbersHandler handles range query requests.
type NumbersHandler struct {
	deps NumbersDependencies
	log  logger.Logger
}

// NewNumbersHandler creates a new numbers handler.
func NewNumbersHandler(deps NumbersDependencies, log logger.Logger) *NumbersHandler {
	return &NumbersHandler{deps: deps, log: log}
}

// HandleNumbers handles GET /numbers?order&type&min&max&len requests.
func (h *NumbersHandler) HandleNumbers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	p, err := parseNumbersParams(r.URL.Query())
	if err != nil {
		writeDomainError(r.Context(), w, h.log, err)
		return
	}
	nums, err := h.deps.Numbers(r.Context(), p)
	if err != nil {
		writeDomainError(r.Context(), w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, nums)
}

func parseNumbersParams(v url.Values) (query.Params, error) {
	p := query.Params{Key: strings.TrimSpace(v.Get(query.ParamKey))}

	order, err := intParam(v, query.ParamOrder)
	if err != nil {
		return query.Params{}, err
	}
	if order != nil {
		p.Order = int(*order)
	}
	if p.Min, err = intParam(v, query.ParamMin); err != nil {
		return query.Params{}, err
	}
	if p.Max, err = intParam(v, query.ParamMax); err != nil {
		return query.Params{}, err
	}
	n, err := intParam(v, query.ParamLimit)
	if err != nil {
		return query.Params{}, err
	}
	if n != nil {
		limit := int(*n)
		if int64(limit) != *n {
			return query.Params{}, malformed(query.ParamLimit, v.Get(query.ParamLimit))
		}
		p.Limit = &limit
	}
	return p, nil
}

// intParam returns nil when name is absent or blank.
func intParam(v url.Values, name string) (*int64, error) {
	raw := strings.TrimSpace(v.Get(name))
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, malformed(name, raw)
	}
	return &n, nil
}

func malformed(name, raw string) *model.ValidationError {
	return &model.ValidationError{
		Kind:    model.ErrMalformedInput,
		Param:   name,
		Message: fmt.Sprintf("%s must be a base-10 integer, got %q", name, raw),
		Invalid: []string{raw},
	}
}
