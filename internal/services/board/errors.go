package board

import "errors"

// Board-related errors
var (
	// Validation errors
	ErrInvalidClientID = errors.New("invalid client ID")
	ErrInvalidColumnID = errors.New("invalid column ID")

	// Lookup errors (not retryable)
	ErrClientNotFound = errors.New("client not found")
	ErrColumnNotFound = errors.New("column not found")

	// Move errors (retryable; the next repair pass converges any partial state)
	ErrStatusUpdateFailed = errors.New("failed to update client status")
	ErrVerificationFailed = errors.New("client missing from target column after move")
)
