// Package column implements the "column" commands.
package column

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/nutriboard/internal/cli"
	"github.com/thenoetrevino/nutriboard/internal/models"
	columnservice "github.com/thenoetrevino/nutriboard/internal/services/column"
)

// ColumnCmd returns the column parent command
func ColumnCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "column",
		Short: "Manage board columns",
	}

	cmd.AddCommand(CreateCmd())
	cmd.AddCommand(ListCmd())
	cmd.AddCommand(RenameCmd())
	cmd.AddCommand(UpdateCmd())
	cmd.AddCommand(DeleteCmd())

	return cmd
}

func columnJSON(col *models.Column) map[string]interface{} {
	members := col.Members
	if members == nil {
		members = []string{}
	}
	return map[string]interface{}{
		"id":       col.ID,
		"name":     col.Name,
		"color":    col.Color,
		"position": col.Position,
		"members":  members,
	}
}

// fail maps column service errors to exit codes
func fail(f *cli.OutputFormatter, err error) error {
	switch {
	case errors.Is(err, columnservice.ErrColumnNotFound), errors.Is(err, cli.ErrColumnRefNotFound):
		return f.FailWithSuggestion(cli.ExitNotFound, "COLUMN_NOT_FOUND", err,
			"List columns with: nutriboard column list")
	case errors.Is(err, columnservice.ErrColumnHasMembers):
		return f.FailWithSuggestion(cli.ExitValidation, "COLUMN_NOT_EMPTY", err,
			"Move its clients first with: nutriboard board move")
	case errors.Is(err, columnservice.ErrEmptyName),
		errors.Is(err, columnservice.ErrNameTooLong),
		errors.Is(err, columnservice.ErrColorTooLong),
		errors.Is(err, columnservice.ErrInvalidPosition),
		errors.Is(err, columnservice.ErrInvalidColumnID):
		return f.Fail(cli.ExitValidation, "VALIDATION_ERROR", err)
	}
	return f.Fail(cli.ExitError, "COLUMN_ERROR", err)
}
