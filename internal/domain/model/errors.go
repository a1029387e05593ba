package model

import (
	"errors"
	"fmt"
)

// Sentinel error kinds. Every client-fault kind unwraps to ErrValidation.
var (
	ErrValidation     = errors.New("validation failed")
	ErrInvalidOrder   = errors.New("invalid order")
	ErrInvalidKey     = errors.New("invalid key")
	ErrOutOfBounds    = errors.New("out of bounds")
	ErrLimitExceeded  = errors.New("limit exceeded")
	ErrMalformedInput = errors.New("malformed input")

	// ErrEmptyDataset is a server fault: the store holds no records.
	ErrEmptyDataset = errors.New("dataset is empty")
)

// ValidationError describes a rejected request parameter or batch.
// Invalid carries every offending input when the failure covers a batch.
type ValidationError struct {
	Kind    error
	Param   string
	Message string
	Invalid []string
	Min     int64
	Max     int64
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("invalid %q: %v", e.Param, e.Kind)
}

// Unwrap lets errors.Is match both ErrValidation and the specific kind.
func (e *ValidationError) Unwrap() []error {
	return []error{ErrValidation, e.Kind}
}

// IsValidation reports whether err is a client fault.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// AsValidation extracts the ValidationError from err's chain.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
