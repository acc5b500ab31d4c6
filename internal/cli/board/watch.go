package board

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/nutriboard/internal/cli"
	"github.com/thenoetrevino/nutriboard/internal/events"
)

// WatchCmd returns the board watch subcommand
func WatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print board changes as other sessions make them",
		Long: `Connect to the event daemon and print every board change. Requires a
running nutriboard-daemon.

Examples:
  nutriboard board watch
  nutriboard board watch --column paused
  nutriboard board watch --json --count 1
`,
		Args: cobra.NoArgs,
		RunE: runWatch,
	}

	cmd.Flags().String("column", "", "Only changes touching this column (ID, name or status)")
	cmd.Flags().String("socket", "", "Daemon socket (default from config)")
	cmd.Flags().Int("count", 0, "Exit after this many events (0 = until interrupted)")
	cmd.Flags().Bool("json", false, "Output one JSON event per line")

	return cmd
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	columnRef, _ := cmd.Flags().GetString("column")
	socketPath, _ := cmd.Flags().GetString("socket")
	count, _ := cmd.Flags().GetInt("count")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	formatter := &cli.OutputFormatter{JSON: jsonOutput}

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
		return formatter.Fail(cli.ExitError, "COLUMN_FETCH_ERROR", err)
	}
	names := make(map[string]string, len(columns))
	for _, col := range columns {
		names[col.ID] = col.Name
	}

	columnID := ""
	if columnRef != "" {
		col, err := cli.ResolveColumn(ctx, cliInstance.App.ColumnService, columnRef)
		if err != nil {
			return fail(formatter, err)
		}
		columnID = col.ID
	}

	if socketPath == "" {
		socketPath, err = cliInstance.Config.Socket()
		if err != nil {
			return formatter.Fail(cli.ExitError, "DAEMON_UNAVAILABLE", err)
		}
	}

	client := events.NewClient(socketPath, 0)
	defer func() {
		if err := client.Close(); err != nil {
			slog.Debug("Error closing event client", "error", err)
		}
	}()
	if err := client.Connect(ctx); err != nil {
		daemonErr := events.ClassifyDaemonError(err)
		return formatter.FailWithSuggestion(cli.ExitError, "DAEMON_UNAVAILABLE",
			fmt.Errorf("%s: %w", daemonErr.Message, err), daemonErr.Hint)
	}
	if err := client.Subscribe(columnID); err != nil {
		return formatter.Fail(cli.ExitError, "SUBSCRIBE_ERROR", err)
	}

	eventChan, err := client.Listen(ctx)
	if err != nil {
		return formatter.Fail(cli.ExitError, "LISTEN_ERROR", err)
	}

	if !jsonOutput {
		target := "the whole board"
		if columnID != "" {
			target = fmt.Sprintf("'%s'", names[columnID])
		}
		formatter.Printf("Watching %s (Ctrl+C to stop)\n", target)
	}

	seen := 0
	for event := range eventChan {
		if jsonOutput {
			if err := formatter.WriteJSON(event); err != nil {
				return err
			}
		} else {
			formatter.Printf("%s\n", describeEvent(event, names))
		}

		seen++
		if count > 0 && seen >= count {
			return nil
		}
	}
	return nil
}

// describeEvent renders one board change for humans
func describeEvent(event events.Event, names map[string]string) string {
	var b strings.Builder
	b.WriteString(event.Timestamp.Local().Format("15:04:05"))
	b.WriteString(" board changed")
	if event.Source != "" {
		fmt.Fprintf(&b, " by %s", event.Source)
	}
	if event.ClientID != "" {
		fmt.Fprintf(&b, " (client %s)", event.ClientID)
	}

	if len(event.ColumnIDs) == 0 {
		b.WriteString(": all columns")
		return b.String()
	}
	labels := make([]string, len(event.ColumnIDs))
	for i, id := range event.ColumnIDs {
		if name, ok := names[id]; ok {
			labels[i] = name
		} else {
			labels[i] = id
		}
	}
	b.WriteString(": ")
	b.WriteString(strings.Join(labels, ", "))
	return b.String()
}
