package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrNotFound indicates the referenced client or column no longer exists.
// It is not retryable.
var ErrNotFound = errors.New("record not found")

// TransientError represents a failed read or write against the store.
// The operation may succeed if retried.
type TransientError struct {
	Op  string // e.g. "update column members"
	Err error
}

// Error implements the error interface.
func (e *TransientError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap exposes the underlying driver error.
func (e *TransientError) Unwrap() error {
	return e.Err
}

// IsTransient reports whether err is a retryable store failure.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}

// IsNotFound reports whether err means the referenced record is gone.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// classify maps a driver error to the store error taxonomy.
// Cancellation is passed through untouched so callers can tell an abandoned
// call apart from a store failure.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) || errors.Is(err, ErrNotFound) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return &TransientError{Op: op, Err: err}
}

// Classify is classify for other store implementations.
func Classify(op string, err error) error {
	return classify(op, err)
}
