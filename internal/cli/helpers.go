package cli

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/thenoetrevino/nutriboard/internal/models"
	boardservice "github.com/thenoetrevino/nutriboard/internal/services/board"
	columnservice "github.com/thenoetrevino/nutriboard/internal/services/column"
)

// ErrColumnRefNotFound is returned when a column ID or name matches nothing
var ErrColumnRefNotFound = errors.New("column not found")

// ColumnColors are the color names the board renderer knows about
var ColumnColors = []string{"green", "red", "yellow", "blue", "purple", "gray"}

var hexColor = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// ValidateColorHex validates that a color string is in valid hex format #RRGGBB
func ValidateColorHex(color string) error {
	if !hexColor.MatchString(color) {
		return fmt.Errorf("color must be in hex format #RRGGBB (e.g., #FF0000), got: %s", color)
	}
	return nil
}

// ValidateColor accepts an empty color, a known color name, or #RRGGBB
func ValidateColor(color string) error {
	if color == "" || slices.Contains(ColumnColors, strings.ToLower(color)) {
		return nil
	}
	if err := ValidateColorHex(color); err != nil {
		return fmt.Errorf("invalid color %q (use one of %s, or #RRGGBB)", color, strings.Join(ColumnColors, ", "))
	}
	return nil
}

// ResolveColumn finds a column by ID, name, or status name ("paused")
func ResolveColumn(ctx context.Context, svc columnservice.Service, ref string) (*models.Column, error) {
	columns, err := svc.GetColumns(ctx)
	if err != nil {
		return nil, err
	}
	b := &boardservice.Board{Columns: columns}
	col, ok := b.Column(ref)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrColumnRefNotFound, ref)
	}
	return col, nil
}
