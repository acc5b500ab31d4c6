package column

import (
	"context"
	"errors"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/nutriboard/internal/cli"
	"github.com/thenoetrevino/nutriboard/internal/models"
	boardservice "github.com/thenoetrevino/nutriboard/internal/services/board"
	columnservice "github.com/thenoetrevino/nutriboard/internal/services/column"
)

// UpdateCmd returns the column update subcommand
func UpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <column>",
		Short: "Change a column's position or color",
		Long: `Change the display position and/or color of a column given its ID or name.

Positions start at 1; the other columns shift to make room. When two
columns imply the same status, the first one holds those clients, so
moving a column in front of its twin changes which one "board reconcile"
drains.

Examples:
  nutriboard column update "Active (new)" --position=1
  nutriboard column update VIP --color=purple
  nutriboard column update VIP --position=2 --color="#22C55E" --json
`,
		Args: cobra.ExactArgs(1),
		RunE: runUpdate,
	}

	cmd.Flags().Int("position", 0, "New 1-based display position")
	cmd.Flags().String("color", "", "New color name or #RRGGBB")
	cmd.Flags().Bool("json", false, "Output in JSON format")
	cmd.Flags().Bool("quiet", false, "Minimal output")

	return cmd
}

func runUpdate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	position, _ := cmd.Flags().GetInt("position")
	color, _ := cmd.Flags().GetString("color")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	quietMode, _ := cmd.Flags().GetBool("quiet")

	formatter := &cli.OutputFormatter{JSON: jsonOutput, Quiet: quietMode}

	setPosition := cmd.Flags().Changed("position")
	setColor := cmd.Flags().Changed("color")
	if !setPosition && !setColor {
		return formatter.FailWithSuggestion(cli.ExitUsage, "NOTHING_TO_UPDATE",
			errors.New("no changes requested"), "Pass --position and/or --color")
	}
	if setColor {
		if err := cli.ValidateColor(color); err != nil {
			return formatter.Fail(cli.ExitValidation, "INVALID_COLOR", err)
		}
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

	columns := cliInstance.App.ColumnService
	col, err := cli.ResolveColumn(ctx, columns, args[0])
	if err != nil {
		return fail(formatter, err)
	}

	status, holdsStatus := boardservice.MapColumnToStatus(col.Name)
	designatedBefore := designatedFor(ctx, columns, status)

	if setColor {
		if err := columns.UpdateColumnColor(ctx, col.ID, color); err != nil {
			return fail(formatter, err)
		}
	}
	if setPosition {
		if err := columns.UpdateColumnPosition(ctx, col.ID, position); err != nil {
			return fail(formatter, err)
		}
	}

	updated, err := columns.GetColumnByID(ctx, col.ID)
	if err != nil {
		return fail(formatter, err)
	}
	designatedChanged := holdsStatus && designatedFor(ctx, columns, status) != designatedBefore

	if quietMode {
		return nil
	}

	if jsonOutput {
		return formatter.WriteJSON(map[string]interface{}{
			"success":            true,
			"column":             columnJSON(updated),
			"old_position":       col.Position,
			"old_color":          col.Color,
			"designated_changed": designatedChanged,
		})
	}

	formatter.Printf("✓ Column '%s' updated\n", updated.Name)
	if setPosition {
		formatter.Printf("  position %d → %d\n", col.Position, updated.Position)
	}
	if setColor {
		formatter.Printf("  color '%s' → '%s'\n", col.Color, updated.Color)
	}
	if designatedChanged {
		formatter.Printf("  '%s' now holds %s clients; run 'nutriboard board reconcile'\n", updated.Name, status)
	}
	return nil
}

// designatedFor returns the ID of the column that holds clients with the
// given status, or "" when none does
func designatedFor(ctx context.Context, columns columnservice.Service, status models.Status) string {
	if status == "" {
		return ""
	}
	all, err := columns.GetColumns(ctx)
	if err != nil {
		slog.Debug("could not read columns for designation check", "error", err)
		return ""
	}
	id, _ := boardservice.PlanReconcile(nil, all).DesignatedColumn(status)
	return id
}
