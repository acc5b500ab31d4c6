package column

import "errors"

// Column-related errors
var (
	// Validation errors
	ErrEmptyName       = errors.New("name cannot be empty")
	ErrNameTooLong     = errors.New("name cannot exceed 50 characters")
	ErrColorTooLong    = errors.New("color cannot exceed 20 characters")
	ErrInvalidColumnID = errors.New("invalid column ID")
	ErrInvalidPosition = errors.New("position must be 1 or greater")

	// Business logic errors
	ErrColumnNotFound   = errors.New("column not found")
	ErrColumnHasMembers = errors.New("cannot delete column with clients")
)
