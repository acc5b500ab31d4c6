package board

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/nutriboard/internal/cli"
)

// MoveCmd returns the board move subcommand
func MoveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "move <column>",
		Short: "Move a client to a column",
		Long: `Move a client to a column by ID, name (case-insensitive) or status.
The client leaves every other column, and its status follows the target
when the target is a status column.

Examples:
  nutriboard board move --client 3f2a... "⏸️ Paused"
  nutriboard board move --client 3f2a... paused

  # JSON output for agents
  nutriboard board move --client 3f2a... inactive --json

  # Quiet mode for bash capture
  nutriboard board move --client 3f2a... active --quiet
`,
		Args: cobra.ExactArgs(1),
		RunE: runMove,
	}

	cmd.Flags().String("client", "", "Client ID (required)")
	if err := cmd.MarkFlagRequired("client"); err != nil {
		slog.Error("Error marking flag as required", "error", err)
	}

	cmd.Flags().Bool("json", false, "Output in JSON format")
	cmd.Flags().Bool("quiet", false, "Minimal output (column ID only)")

	return cmd
}

func runMove(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	clientID, _ := cmd.Flags().GetString("client")
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

	target, err := cli.ResolveColumn(ctx, cliInstance.App.ColumnService, args[0])
	if err != nil {
		return fail(formatter, err)
	}

	result, err := cliInstance.App.BoardService.Move(ctx, clientID, target.ID)
	if err != nil {
		if jsonOutput && result != nil {
			if werr := formatter.WriteJSON(result); werr != nil {
				slog.Error("Error writing move result", "error", werr)
			}
			exitCode, _, _ := classify(err)
			return &cli.CodedError{Code: exitCode, Err: err}
		}
		return fail(formatter, err)
	}

	if quietMode {
		formatter.Printf("%s\n", result.ColumnID)
		return nil
	}

	if jsonOutput {
		return formatter.WriteJSON(result)
	}

	if len(result.RemovedFrom) == 0 && !result.Inserted && !result.StatusChanged {
		formatter.Printf("Client %s is already in '%s'\n", clientID, target.Name)
		return nil
	}
	formatter.Printf("✓ Client %s moved to '%s'\n", clientID, target.Name)
	if result.StatusChanged {
		formatter.Printf("  Status set to %s\n", result.Status)
	}
	for _, f := range result.Failures {
		formatter.Printf("  ✗ %s (will be repaired on the next load)\n", f.Error())
	}
	return nil
}
