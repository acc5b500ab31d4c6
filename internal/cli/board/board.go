// Package board implements the "board" commands.
package board

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/nutriboard/internal/cli"
	boardservice "github.com/thenoetrevino/nutriboard/internal/services/board"
)

// BoardCmd returns the board parent command
func BoardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "board",
		Short: "Show and maintain the client board",
	}

	cmd.AddCommand(ShowCmd())
	cmd.AddCommand(ReconcileCmd())
	cmd.AddCommand(MoveCmd())
	cmd.AddCommand(WatchCmd())

	return cmd
}

// classify maps a board service error to an exit code, an error code and a hint
func classify(err error) (int, string, string) {
	const retryHint = "Retry the move; the board is repaired on the next load"
	switch {
	case errors.Is(err, boardservice.ErrClientNotFound):
		return cli.ExitNotFound, "CLIENT_NOT_FOUND", "List clients with: nutriboard client list"
	case errors.Is(err, boardservice.ErrColumnNotFound), errors.Is(err, cli.ErrColumnRefNotFound):
		return cli.ExitNotFound, "COLUMN_NOT_FOUND", "List columns with: nutriboard column list"
	case errors.Is(err, boardservice.ErrInvalidClientID), errors.Is(err, boardservice.ErrInvalidColumnID):
		return cli.ExitValidation, "VALIDATION_ERROR", ""
	case errors.Is(err, boardservice.ErrStatusUpdateFailed):
		return cli.ExitError, "STATUS_UPDATE_FAILED", retryHint
	case errors.Is(err, boardservice.ErrVerificationFailed):
		return cli.ExitError, "VERIFICATION_FAILED", retryHint
	}
	return cli.ExitError, "BOARD_ERROR", ""
}

// fail reports a board service error and returns it with its exit code
func fail(f *cli.OutputFormatter, err error) error {
	exitCode, code, hint := classify(err)
	return f.FailWithSuggestion(exitCode, code, err, hint)
}
