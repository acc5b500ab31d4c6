package client

import (
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/nutriboard/internal/cli"
	"github.com/thenoetrevino/nutriboard/internal/cli/styles"
	"github.com/thenoetrevino/nutriboard/internal/models"
)

// ListCmd returns the client list subcommand
func ListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List clients with their status and columns",
		Long: `List every client with its status and the columns that list it.
Does not repair the board; use "nutriboard board reconcile" for that.

Examples:
  nutriboard client list
  nutriboard client list --status=paused
  nutriboard client list --json
`,
		Args: cobra.NoArgs,
		RunE: runList,
	}

	cmd.Flags().String("status", "", "Only clients with this status (legacy values accepted)")
	cmd.Flags().Bool("json", false, "Output in JSON format")
	cmd.Flags().Bool("quiet", false, "Minimal output (IDs only)")

	return cmd
}

func runList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	statusFilter, _ := cmd.Flags().GetString("status")
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

	clients, err := cliInstance.App.ClientService.ListClients(ctx)
	if err != nil {
		return fail(formatter, err)
	}
	columns, err := cliInstance.App.ColumnService.GetColumns(ctx)
	if err != nil {
		return formatter.Fail(cli.ExitError, "COLUMN_FETCH_ERROR", err)
	}

	if statusFilter != "" {
		want, _ := models.ParseStatus(statusFilter)
		filtered := clients[:0:0]
		for _, c := range clients {
			got, _ := models.ParseStatus(string(c.Status))
			if strings.EqualFold(string(got), string(want)) {
				filtered = append(filtered, c)
			}
		}
		clients = filtered
	}

	placed := placements(columns)

	if quietMode {
		for _, c := range clients {
			formatter.Printf("%s\n", c.ID)
		}
		return nil
	}

	if jsonOutput {
		list := make([]map[string]interface{}, len(clients))
		for i, c := range clients {
			list[i] = clientJSON(c, placed[c.ID])
		}
		return formatter.WriteJSON(map[string]interface{}{
			"success": true,
			"clients": list,
		})
	}

	if len(clients) == 0 {
		formatter.Printf("No clients found\n")
		return nil
	}

	formatter.Printf("Clients:\n")
	for _, c := range clients {
		where := strings.Join(placed[c.ID], ", ")
		if where == "" {
			where = "not on the board"
		}
		formatter.Printf("  %s  %s [%s]  %s\n", c.ID, c.Name, styles.StatusBadge(c.Status), where)
	}
	return nil
}
