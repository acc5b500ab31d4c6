package column

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/nutriboard/internal/cli"
	boardservice "github.com/thenoetrevino/nutriboard/internal/services/board"
)

// RenameCmd returns the column rename subcommand
func RenameCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rename <column> <new name>",
		Short: "Rename a column",
		Long: `Rename a column given its ID or current name.

Renaming can change which status a column holds. Run
"nutriboard board reconcile" afterwards to move clients accordingly.

Examples:
  nutriboard column rename VIP "VIP clients"
`,
		Args: cobra.ExactArgs(2),
		RunE: runRename,
	}

	cmd.Flags().Bool("json", false, "Output in JSON format")
	cmd.Flags().Bool("quiet", false, "Minimal output")

	return cmd
}

func runRename(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	jsonOutput, _ := cmd.Flags().GetBool("json")
	quietMode, _ := cmd.Flags().GetBool("quiet")

	formatter := &cli.OutputFormatter{JSON: jsonOutput, Quiet: quietMode}

	cliInstance, err := cli.GetCLIFromContext(ctx)
	if err != nil {
		return formatter.Fail(cli.ExitError, "INITIALIZATION_ERROR", err)
	}
	defer func() {
		if err := cliInstance.Close(); err != nil {
			slog.Error("Error closing CLI", "error", err)
		}
	}()

	col, err := cli.ResolveColumn(ctx, cliInstance.App.ColumnService, args[0])
	if err != nil {
		return fail(formatter, err)
	}

	newName := args[1]
	if err := cliInstance.App.ColumnService.UpdateColumnName(ctx, col.ID, newName); err != nil {
		return fail(formatter, err)
	}

	before, hadStatus := boardservice.MapColumnToStatus(col.Name)
	after, hasStatus := boardservice.MapColumnToStatus(newName)
	statusChanged := hadStatus != hasStatus || before != after

	if quietMode {
		return nil
	}

	if jsonOutput {
		return formatter.WriteJSON(map[string]interface{}{
			"success":        true,
			"id":             col.ID,
			"old_name":       col.Name,
			"name":           newName,
			"status_changed": statusChanged,
		})
	}

	formatter.Printf("✓ Column '%s' renamed to '%s'\n", col.Name, newName)
	if statusChanged {
		formatter.Printf("  The column now holds different clients; run 'nutriboard board reconcile'\n")
	}
	return nil
}
