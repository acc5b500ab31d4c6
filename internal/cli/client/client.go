// Package client implements the "client" commands.
package client

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/nutriboard/internal/cli"
	"github.com/thenoetrevino/nutriboard/internal/models"
	clientservice "github.com/thenoetrevino/nutriboard/internal/services/client"
)

// ClientCmd returns the client parent command
func ClientCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "client",
		Short: "Manage client records",
	}

	cmd.AddCommand(ListCmd())
	cmd.AddCommand(AddCmd())
	cmd.AddCommand(StatusCmd())

	return cmd
}

func clientJSON(c *models.Client, columns []string) map[string]interface{} {
	if columns == nil {
		columns = []string{}
	}
	return map[string]interface{}{
		"id":         c.ID,
		"name":       c.Name,
		"status":     c.Status,
		"recognized": c.Status.IsRecognized(),
		"columns":    columns,
	}
}

// placements maps client ID to the names of the columns listing it
func placements(columns []*models.Column) map[string][]string {
	out := make(map[string][]string)
	for _, col := range columns {
		seen := make(map[string]bool, len(col.Members))
		for _, id := range col.Members {
			if seen[id] {
				continue
			}
			seen[id] = true
			out[id] = append(out[id], col.Name)
		}
	}
	return out
}

// fail maps client service errors to exit codes
func fail(f *cli.OutputFormatter, err error) error {
	switch {
	case errors.Is(err, clientservice.ErrClientNotFound):
		return f.FailWithSuggestion(cli.ExitNotFound, "CLIENT_NOT_FOUND", err,
			"List clients with: nutriboard client list")
	case errors.Is(err, clientservice.ErrEmptyName),
		errors.Is(err, clientservice.ErrNameTooLong),
		errors.Is(err, clientservice.ErrEmptyStatus),
		errors.Is(err, clientservice.ErrInvalidClientID):
		return f.Fail(cli.ExitValidation, "VALIDATION_ERROR", err)
	}
	return f.Fail(cli.ExitError, "CLIENT_ERROR", err)
}
