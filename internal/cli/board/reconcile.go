package board

import (
	"fmt"
	"log/slog"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/spf13/cobra"

	"github.com/thenoetrevino/nutriboard/internal/cli"
	"github.com/thenoetrevino/nutriboard/internal/models"
	boardservice "github.com/thenoetrevino/nutriboard/internal/services/board"
)

// ReconcileCmd returns the board reconcile subcommand
func ReconcileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Bring column membership in line with client statuses",
		Long: `Run a repair pass: drop duplicate placements, then add every client
with a recognized status to its status column. Custom columns and clients
with custom statuses are left alone.

Examples:
  nutriboard board reconcile
  nutriboard board reconcile --dry-run
  nutriboard board reconcile --json
`,
		Args: cobra.NoArgs,
		RunE: runReconcile,
	}

	cmd.Flags().Bool("dry-run", false, "Show the membership diff without writing")
	cmd.Flags().Bool("json", false, "Output in JSON format")

	return cmd
}

func runReconcile(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	dryRun, _ := cmd.Flags().GetBool("dry-run")
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

	if dryRun {
		preview, err := cliInstance.App.BoardService.PreviewRepair(ctx)
		if err != nil {
			return fail(formatter, err)
		}
		clients, err := cliInstance.App.ClientService.ListClients(ctx)
		if err != nil {
			return fail(formatter, err)
		}
		names := make(map[string]string, len(clients))
		for _, c := range clients {
			names[c.ID] = c.Name
		}

		diff, err := membershipDiff(preview.Before, preview.After, names)
		if err != nil {
			return formatter.Fail(cli.ExitError, "DIFF_ERROR", err)
		}

		if jsonOutput {
			return formatter.WriteJSON(map[string]interface{}{
				"success": true,
				"dry_run": true,
				"changes": preview.Plan.Changes(),
				"diff":    diff,
			})
		}
		if preview.Plan.Empty() {
			formatter.Printf("Board is consistent; nothing to repair\n")
			return nil
		}
		formatter.Printf("%s", diff)
		return nil
	}

	result, err := cliInstance.App.BoardService.Repair(ctx)
	if err != nil {
		return fail(formatter, err)
	}

	if jsonOutput {
		if err := formatter.WriteJSON(map[string]interface{}{
			"success": !result.Failed(),
			"result":  result,
		}); err != nil {
			return err
		}
		if result.Failed() {
			return &cli.CodedError{Code: cli.ExitError, Err: result.Err()}
		}
		return nil
	}

	if result.ColumnsWritten == 0 && !result.Failed() {
		formatter.Printf("Board is consistent; nothing to repair\n")
		return nil
	}
	formatter.Printf("✓ %s\n", repairSummary(result.Added, result.Removed))
	formatter.Printf("  %d column(s) written\n", result.ColumnsWritten)
	if result.Failed() {
		for _, f := range result.Failures {
			formatter.Printf("  ✗ %s\n", f.Error())
		}
		return formatter.FailWithSuggestion(cli.ExitError, "REPAIR_INCOMPLETE", result.Err(),
			"Run the command again; unchanged columns are skipped")
	}
	return nil
}

func repairSummary(added, removed int) string {
	return fmt.Sprintf("Repaired board: %d placement(s) added, %d duplicate(s) removed", added, removed)
}

// boardStatus is the status a column implies, if any
func boardStatus(col *models.Column) (models.Status, bool) {
	return boardservice.MapColumnToStatus(col.Name)
}

// membershipDiff renders a unified diff of column memberships, one line per
// column member, labelled with client names where known
func membershipDiff(before, after []*models.Column, names map[string]string) (string, error) {
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        membershipLines(before, names),
		B:        membershipLines(after, names),
		FromFile: "board (stored)",
		ToFile:   "board (repaired)",
		Context:  2,
	})
}

func membershipLines(columns []*models.Column, names map[string]string) []string {
	var lines []string
	for _, col := range columns {
		lines = append(lines, fmt.Sprintf("[%s]\n", col.Name))
		for _, id := range col.Members {
			label := names[id]
			if label == "" {
				label = "(missing client)"
			}
			lines = append(lines, fmt.Sprintf("  %s %s\n", label, id))
		}
	}
	return lines
}
