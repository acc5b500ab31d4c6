// Package styles renders board output for the terminal.
package styles

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/thenoetrevino/nutriboard/internal/config/colors"
	"github.com/thenoetrevino/nutriboard/internal/models"
)

var (
	scheme = *colors.Default()

	// ColumnWidth is the outer width of a rendered column
	ColumnWidth = 28

	// Text styles
	TitleStyle    lipgloss.Style
	SubtitleStyle lipgloss.Style
	ValueStyle    lipgloss.Style

	// Message styles
	SuccessStyle lipgloss.Style
	ErrorStyle   lipgloss.Style
	WarningStyle lipgloss.Style
)

func init() {
	Init(scheme)
}

// Init initializes all CLI styles with the given color scheme
func Init(c colors.ColorScheme) {
	c.ApplyDefaults()
	scheme = c

	TitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(c.Title))

	SubtitleStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(c.Subtle))

	ValueStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(c.Normal))

	SuccessStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(c.Success))

	ErrorStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(c.Error))

	WarningStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(c.Warning))
}

// StatusColor returns the scheme color for a status; custom statuses are muted
func StatusColor(status models.Status) string {
	switch status.Canonical() {
	case models.StatusActive:
		return scheme.Active
	case models.StatusInactive:
		return scheme.Inactive
	case models.StatusPaused:
		return scheme.Paused
	}
	return scheme.Subtle
}

// StatusBadge renders a status in its color
func StatusBadge(status models.Status) string {
	label := string(status)
	if label == "" {
		label = "unknown"
	}
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(StatusColor(status))).
		Render(label)
}

// Truncate shortens s to at most width cells, marking the cut with "…"
func Truncate(s string, width int) string {
	if width <= 0 || lipgloss.Width(s) <= width {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes))+1 > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "…"
}

// RenderColumn draws one column with its cards
func RenderColumn(col *models.Column, cards []*models.Client) string {
	inner := ColumnWidth - 4

	header := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(scheme.Named(col.Color))).
		Render(Truncate(col.Name, inner-4) + fmt.Sprintf(" (%d)", len(cards)))

	lines := []string{header, SubtitleStyle.Render(strings.Repeat("─", inner))}
	if len(cards) == 0 {
		lines = append(lines, SubtitleStyle.Render("(empty)"))
	}
	for _, c := range cards {
		name := c.Name
		if name == "" {
			name = c.ID + " (missing)"
		}
		lines = append(lines, lipgloss.NewStyle().
			Foreground(lipgloss.Color(StatusColor(c.Status))).
			Render("• "+Truncate(name, inner-2)))
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(scheme.Named(col.Color))).
		Padding(0, 1).
		Width(ColumnWidth - 2).
		Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// RenderBoard lays rendered columns out side by side
func RenderBoard(columns []string) string {
	if len(columns) == 0 {
		return SubtitleStyle.Render("No columns")
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, columns...)
}

// ColoredText renders text with a hex color
func ColoredText(text, hexColor string) string {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(hexColor)).
		Render(text)
}
