package client

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/nutriboard/internal/cli"
	clientservice "github.com/thenoetrevino/nutriboard/internal/services/client"
)

// AddCmd returns the client add subcommand
func AddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Register a new client",
		Long: `Register a new client. The board picks the client up on the next
repair pass (any "board show" or "board reconcile").

Examples:
  nutriboard client add --name="Ana Souza"
  CLIENT_ID=$(nutriboard client add --name="Ana Souza" --status=paused --quiet)
`,
		Args: cobra.NoArgs,
		RunE: runAdd,
	}

	cmd.Flags().String("name", "", "Client name (required)")
	if err := cmd.MarkFlagRequired("name"); err != nil {
		slog.Error("Error marking flag as required", "error", err)
	}
	cmd.Flags().String("status", "active", "Initial status")
	cmd.Flags().Bool("place", false, "Run a repair pass so the client appears on the board now")

	cmd.Flags().Bool("json", false, "Output in JSON format")
	cmd.Flags().Bool("quiet", false, "Minimal output (ID only)")

	return cmd
}

func runAdd(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	name, _ := cmd.Flags().GetString("name")
	status, _ := cmd.Flags().GetString("status")
	place, _ := cmd.Flags().GetBool("place")
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

	c, err := cliInstance.App.ClientService.CreateClient(ctx, clientservice.CreateClientRequest{
		Name:   name,
		Status: status,
	})
	if err != nil {
		return fail(formatter, err)
	}

	var columns []string
	if place {
		result, err := cliInstance.App.BoardService.Repair(ctx)
		if err != nil {
			return formatter.Fail(cli.ExitError, "REPAIR_ERROR", err)
		}
		if err := result.Err(); err != nil {
			slog.Warn("repair after add left failures", "error", err)
		}
		for _, change := range result.Changes {
			if change.ClientID == c.ID && change.AddedTo != "" {
				columns = append(columns, change.AddedTo)
			}
		}
	}

	if quietMode {
		formatter.Printf("%s\n", c.ID)
		return nil
	}

	if jsonOutput {
		return formatter.WriteJSON(map[string]interface{}{
			"success": true,
			"client":  clientJSON(c, columns),
		})
	}

	formatter.Printf("✓ Client '%s' registered (ID: %s, status: %s)\n", c.Name, c.ID, c.Status)
	if !c.Status.IsRecognized() {
		formatter.Printf("  Custom status: the client will not appear in a status column\n")
	}
	return nil
}
