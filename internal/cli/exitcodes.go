package cli

import (
	"errors"
	"fmt"
)

// Exit codes for CLI commands.
// These codes follow Unix conventions and provide consistent error reporting
// across all CLI commands.
const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess = 0

	// ExitError indicates a general error occurred.
	// Use for: store errors, partial repair failures, unexpected failures.
	ExitError = 1

	// ExitUsage indicates incorrect command usage.
	// Use for: missing required flags or arguments.
	ExitUsage = 2

	// ExitNotFound indicates a requested resource was not found.
	// Use for: unknown client IDs, column IDs or column names.
	ExitNotFound = 3

	// ExitDataErr indicates invalid or malformed data.
	// Use for: stored data that cannot be processed.
	ExitDataErr = 4

	// ExitValidation indicates a validation error.
	// Use for: empty names, names that are too long, invalid colors.
	ExitValidation = 5
)

// CodedError carries the process exit code for a failed command
type CodedError struct {
	Code int
	Err  error
}

func (e *CodedError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

func (e *CodedError) Unwrap() error {
	return e.Err
}

// ExitCode maps a command error to a process exit code
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *CodedError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitError
}
