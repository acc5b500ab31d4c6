package column

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/nutriboard/internal/cli"
	boardservice "github.com/thenoetrevino/nutriboard/internal/services/board"
)

// ListCmd returns the column list subcommand
func ListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List board columns",
		Long: `List all board columns in display order.

Examples:
  # Human-readable list
  nutriboard column list

  # JSON output for agents
  nutriboard column list --json

  # Quiet mode (one ID per line)
  nutriboard column list --quiet
`,
		Args: cobra.NoArgs,
		RunE: runList,
	}

	cmd.Flags().Bool("json", false, "Output in JSON format")
	cmd.Flags().Bool("quiet", false, "Minimal output (IDs only)")

	return cmd
}

func runList(cmd *cobra.Command, args []string) error {
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

	columns, err := cliInstance.App.ColumnService.GetColumns(ctx)
	if err != nil {
		return fail(formatter, err)
	}

	if quietMode {
		for _, col := range columns {
			formatter.Printf("%s\n", col.ID)
		}
		return nil
	}

	if jsonOutput {
		columnList := make([]map[string]interface{}, len(columns))
		for i, col := range columns {
			entry := columnJSON(col)
			if status, ok := boardservice.MapColumnToStatus(col.Name); ok {
				entry["status"] = status
			}
			columnList[i] = entry
		}
		return formatter.WriteJSON(map[string]interface{}{
			"success": true,
			"columns": columnList,
		})
	}

	if len(columns) == 0 {
		formatter.Printf("No columns found\n")
		return nil
	}

	formatter.Printf("Columns:\n")
	for i, col := range columns {
		kind := "custom"
		if status, ok := boardservice.MapColumnToStatus(col.Name); ok {
			kind = string(status)
		}
		formatter.Printf("  %d. %s [%s] %d clients (ID: %s)\n", i+1, col.Name, kind, len(col.Members), col.ID)
	}
	return nil
}
