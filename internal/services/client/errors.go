package client

import "errors"

// Client-related errors
var (
	// Validation errors
	ErrEmptyName       = errors.New("name cannot be empty")
	ErrNameTooLong     = errors.New("name cannot exceed 100 characters")
	ErrEmptyStatus     = errors.New("status cannot be empty")
	ErrInvalidClientID = errors.New("invalid client ID")

	// Lookup errors
	ErrClientNotFound = errors.New("client not found")
)
