package shared

import (
	"context"
	"errors"
)

var (
	// ErrNotFound indicates the referenced entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInsufficientStock indicates a quantity invariant would go negative.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrDuplicateReturn indicates a sale item has already been returned.
	ErrDuplicateReturn = errors.New("item already returned")
	// ErrValidation indicates malformed or rejected input.
	ErrValidation = errors.New("validation failed")
	// ErrInvalidState occurs when an action violates a status workflow.
	ErrInvalidState = errors.New("invalid state transition")
	// ErrStoreUnavailable indicates a transient storage failure; callers may retry with backoff.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// IsRetryable reports whether the error represents a transient store failure.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrStoreUnavailable) ||
		errors.Is(err, context.DeadlineExceeded)
}
