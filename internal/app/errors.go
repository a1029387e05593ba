package service

import "errors"

// Sentinel kinds for service lifecycle errors.
var (
	ErrNotStarted    = errors.New("service not started")
	ErrUnknownDriver = errors.New("unknown store driver")
)
