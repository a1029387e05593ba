package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound     = errors.New("record not found")
	ErrInvalidLimit = errors.New("invalid range limit")
	ErrInvalidKey   = errors.New("invalid key")
	ErrNotMonotonic = errors.New("record does not extend the dataset")
	ErrClosed       = errors.New("store closed")
)
