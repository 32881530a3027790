package storage

import "errors"

// Storage errors.
var (
	// ErrNotFound is returned when a requested key does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput is returned when input validation fails.
	ErrInvalidInput = errors.New("invalid input")
)
