package client

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/nutriboard/internal/cli"
)

// StatusCmd returns the client status subcommand
func StatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status <client id> <status>",
		Short: "Set a client's status",
		Long: `Set a client's status directly and repair the board so the client
moves to the matching column. Use "nutriboard board move" to move a client
by column instead.

Examples:
  nutriboard client status 3f2a... paused
  nutriboard client status 3f2a... inativo     # stored as "inactive"
  nutriboard client status 3f2a... vip --no-repair
`,
		Args: cobra.ExactArgs(2),
		RunE: runStatus,
	}

	cmd.Flags().Bool("no-repair", false, "Only update the record; leave the board as is")
	cmd.Flags().Bool("json", false, "Output in JSON format")
	cmd.Flags().Bool("quiet", false, "Minimal output")

	return cmd
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	noRepair, _ := cmd.Flags().GetBool("no-repair")
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

	clientID := args[0]
	before, err := cliInstance.App.ClientService.GetClient(ctx, clientID)
	if err != nil {
		return fail(formatter, err)
	}

	stored, err := cliInstance.App.ClientService.UpdateStatus(ctx, clientID, args[1])
	if err != nil {
		return fail(formatter, err)
	}

	repaired := 0
	if !noRepair {
		result, err := cliInstance.App.BoardService.Repair(ctx)
		if err != nil {
			return formatter.Fail(cli.ExitError, "REPAIR_ERROR", err)
		}
		if err := result.Err(); err != nil {
			return formatter.Fail(cli.ExitError, "REPAIR_INCOMPLETE", err)
		}
		repaired = result.ColumnsWritten
	}

	if quietMode {
		return nil
	}

	if jsonOutput {
		return formatter.WriteJSON(map[string]interface{}{
			"success":         true,
			"id":              clientID,
			"previous_status": before.Status,
			"status":          stored,
			"columns_written": repaired,
		})
	}

	formatter.Printf("✓ %s: %s → %s\n", before.Name, before.Status, stored)
	if !stored.IsRecognized() {
		formatter.Printf("  Custom status: the client keeps its current column\n")
	}
	return nil
}
