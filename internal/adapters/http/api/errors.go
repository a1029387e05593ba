package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/okian/primeapi/internal/domain/model"
	"github.com/okian/primeapi/pkg/logger"
	"github.com/okian/primeapi/pkg/metrics"
)

// Error codes returned in the body of failed requests.
const (
	CodeInvalidOrder   = "invalid_order"
	CodeInvalidType    = "invalid_type"
	CodeOutOfBounds    = "out_of_bounds"
	CodeLimitExceeded  = "limit_exceeded"
	CodeMalformedInput = "malformed_input"
	CodeInternal       = "internal_error"
	CodeUnavailable    = "unavailable"
)

// errorCode maps a domain error to its status and code. Every validation
// kind is a client fault; anything else is the server's.
func errorCode(err error) (int, string) {
	switch {
	case errors.Is(err, model.ErrInvalidOrder):
		return http.StatusBadRequest, CodeInvalidOrder
	case errors.Is(err, model.ErrInvalidKey):
		return http.StatusBadRequest, CodeInvalidType
	case errors.Is(err, model.ErrOutOfBounds):
		return http.StatusBadRequest, CodeOutOfBounds
	case errors.Is(err, model.ErrLimitExceeded):
		return http.StatusBadRequest, CodeLimitExceeded
	case errors.Is(err, model.ErrMalformedInput):
		return http.StatusBadRequest, CodeMalformedInput
	case errors.Is(err, model.ErrValidation):
		return http.StatusBadRequest, CodeMalformedInput
	}
	return http.StatusInternalServerError, CodeInternal
}

// writeDomainError logs err at a level matching its fault and writes the response.
// Server faults never leak their cause to the client.
func writeDomainError(ctx context.Context, w http.ResponseWriter, log logger.Logger, err error) {
	status, code := errorCode(err)
	if status == http.StatusBadRequest {
		metrics.RecordValidationFailure(code)
		log.Debug(ctx, "rejected request", logger.String("code", code), logger.Error(err))
		writeError(w, status, code, err)
		return
	}
	log.Error(ctx, "request failed", logger.Error(err))
	writeError(w, status, code, nil)
}
