package column

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/nutriboard/internal/cli"
	boardservice "github.com/thenoetrevino/nutriboard/internal/services/board"
	columnservice "github.com/thenoetrevino/nutriboard/internal/services/column"
)

// CreateCmd returns the column create subcommand
func CreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new column",
		Long: `Create a new column at the end of the board.

A column whose name contains a status word ("active", "inactive", "paused",
or the Portuguese "ativo", "inativo", "pausado") holds clients with that
status. Any other name makes a custom column.

Examples:
  nutriboard column create --name="VIP" --color=purple

  # Quiet mode for bash capture
  COLUMN_ID=$(nutriboard column create --name="VIP" --quiet)
`,
		Args: cobra.NoArgs,
		RunE: runCreate,
	}

	cmd.Flags().String("name", "", "Column name (required)")
	if err := cmd.MarkFlagRequired("name"); err != nil {
		slog.Error("Error marking flag as required", "error", err)
	}
	cmd.Flags().String("color", "", "Color name or #RRGGBB")

	cmd.Flags().Bool("json", false, "Output in JSON format")
	cmd.Flags().Bool("quiet", false, "Minimal output (ID only)")

	return cmd
}

func runCreate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	name, _ := cmd.Flags().GetString("name")
	color, _ := cmd.Flags().GetString("color")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	quietMode, _ := cmd.Flags().GetBool("quiet")

	formatter := &cli.OutputFormatter{JSON: jsonOutput, Quiet: quietMode}

	if err := cli.ValidateColor(color); err != nil {
		return formatter.Fail(cli.ExitValidation, "INVALID_COLOR", err)
	}

	cliInstance, err := cli.GetCLIFromContext(ctx)
	if err != nil {
		return formatter.Fail(cli.ExitError, "INITIALIZATION_ERROR", err)
	}
	defer func() {
		if err := cliInstance.Close(); err != nil {
			slog.Error("Error closing CLI", "error", err)
		}
	}()

	col, err := cliInstance.App.ColumnService.CreateColumn(ctx, columnservice.CreateColumnRequest{
		Name:  name,
		Color: color,
	})
	if err != nil {
		return fail(formatter, err)
	}

	if quietMode {
		formatter.Printf("%s\n", col.ID)
		return nil
	}

	if jsonOutput {
		return formatter.WriteJSON(map[string]interface{}{
			"success": true,
			"column":  columnJSON(col),
		})
	}

	formatter.Printf("✓ Column '%s' created (ID: %s)\n", col.Name, col.ID)
	if status, ok := boardservice.MapColumnToStatus(col.Name); ok {
		formatter.Printf("  Holds %s clients\n", status)
	}
	return nil
}
