package board

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/nutriboard/internal/cli"
	"github.com/thenoetrevino/nutriboard/internal/cli/styles"
	"github.com/thenoetrevino/nutriboard/internal/models"
)

// ShowCmd returns the board show subcommand
func ShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Repair drift and show the board",
		Long: `Load the board: run one repair pass, re-read the columns and draw
them side by side. Clients are shown strictly by column membership.

Examples:
  nutriboard board show
  nutriboard board show --json
`,
		Args: cobra.NoArgs,
		RunE: runShow,
	}

	cmd.Flags().Bool("json", false, "Output in JSON format")

	return cmd
}

type cardJSON struct {
	ID     string        `json:"id"`
	Name   string        `json:"name,omitempty"`
	Status models.Status `json:"status,omitempty"`
}

type columnViewJSON struct {
	ID     string        `json:"id"`
	Name   string        `json:"name"`
	Color  string        `json:"color,omitempty"`
	Status models.Status `json:"status,omitempty"`
	Cards  []cardJSON    `json:"cards"`
}

func runShow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

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

	board, err := cliInstance.App.BoardService.LoadBoard(ctx)
	if err != nil {
		return fail(formatter, err)
	}
	unplaced := board.Unplaced()

	if jsonOutput {
		columns := make([]columnViewJSON, len(board.Columns))
		for i, col := range board.Columns {
			view := columnViewJSON{ID: col.ID, Name: col.Name, Color: col.Color, Cards: []cardJSON{}}
			if status, ok := boardStatus(col); ok {
				view.Status = status
			}
			for _, c := range board.Cards(col) {
				view.Cards = append(view.Cards, cardJSON{ID: c.ID, Name: c.Name, Status: c.Status})
			}
			columns[i] = view
		}
		loose := make([]cardJSON, len(unplaced))
		for i, c := range unplaced {
			loose[i] = cardJSON{ID: c.ID, Name: c.Name, Status: c.Status}
		}
		return formatter.WriteJSON(map[string]interface{}{
			"success":  true,
			"columns":  columns,
			"unplaced": loose,
			"repaired": board.Repaired,
		})
	}

	rendered := make([]string, len(board.Columns))
	for i, col := range board.Columns {
		rendered[i] = styles.RenderColumn(col, board.Cards(col))
	}
	formatter.Printf("%s\n", styles.RenderBoard(rendered))

	if board.Repaired != nil && (board.Repaired.Added > 0 || board.Repaired.Removed > 0) {
		formatter.Printf("%s\n", styles.SubtitleStyle.Render(repairSummary(board.Repaired.Added, board.Repaired.Removed)))
	}
	if board.Repaired != nil && board.Repaired.Failed() {
		formatter.Printf("%s\n", styles.WarningStyle.Render("Some columns could not be repaired; run \"nutriboard board reconcile\" for details"))
	}
	if len(unplaced) > 0 {
		formatter.Printf("\n%s\n", styles.TitleStyle.Render("Not on the board:"))
		for _, c := range unplaced {
			formatter.Printf("  %s %s\n", c.Name, styles.StatusBadge(c.Status))
		}
	}
	return nil
}
