package column

import (
	"bufio"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/nutriboard/internal/cli"
)

// DeleteCmd returns the column delete subcommand
func DeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <column>",
		Short: "Delete an empty column",
		Long: `Delete a column given its ID or name (requires confirmation unless
--force or --quiet). Columns that still list clients cannot be deleted.

Examples:
  nutriboard column delete VIP
  nutriboard column delete VIP --force
`,
		Args: cobra.ExactArgs(1),
		RunE: runDelete,
	}

	cmd.Flags().Bool("force", false, "Skip confirmation")
	cmd.Flags().Bool("json", false, "Output in JSON format")
	cmd.Flags().Bool("quiet", false, "Minimal output")

	return cmd
}

func runDelete(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	force, _ := cmd.Flags().GetBool("force")
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

	if !force && !quietMode && !jsonOutput {
		formatter.Printf("Delete column '%s' (ID: %s)? [y/N]: ", col.Name, col.ID)
		answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		answer = strings.ToLower(strings.TrimSpace(answer))
		if answer != "y" && answer != "yes" {
			formatter.Printf("Cancelled\n")
			return nil
		}
	}

	if err := cliInstance.App.ColumnService.DeleteColumn(ctx, col.ID); err != nil {
		return fail(formatter, err)
	}

	if quietMode {
		return nil
	}

	if jsonOutput {
		return formatter.WriteJSON(map[string]interface{}{
			"success": true,
			"id":      col.ID,
		})
	}

	formatter.Printf("✓ Column '%s' deleted\n", col.Name)
	return nil
}
