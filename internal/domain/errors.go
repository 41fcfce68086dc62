package domain

import "errors"

var (
	// ErrValidation marks malformed or incomplete input.
	ErrValidation = errors.New("validation error")
	// ErrNotFound marks a lookup that matched nothing.
	ErrNotFound = errors.New("not found")
	// ErrStorage marks a log-store failure. The pipeline degrades on it
	// instead of failing the request: deduplication and audit weaken, the
	// notification still goes out.
	ErrStorage = errors.New("storage error")
)
