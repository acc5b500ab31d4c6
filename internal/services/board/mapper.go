package board

import (
	"strings"

	"github.com/thenoetrevino/nutriboard/internal/models"
)

// statusPattern lists the name fragments that make a column imply a status
type statusPattern struct {
	status    models.Status
	fragments []string
}

// columnStatusPriority is the single place column-name precedence is defined.
// Entries are tried top to bottom and the first fragment found wins.
// "inactive" must come before "active" since it contains it as a substring;
// the same holds for the legacy "inativo"/"ativo" names.
var columnStatusPriority = []statusPattern{
	{status: models.StatusInactive, fragments: []string{"inactive", "inativo"}},
	{status: models.StatusPaused, fragments: []string{"paused", "pause", "pausado", "pausa"}},
	{status: models.StatusActive, fragments: []string{"active", "ativo"}},
}

// MapColumnToStatus maps a column display name to the status it implies.
// Matching is a case-insensitive substring test; false means the column is a
// custom column with no implied status.
func MapColumnToStatus(name string) (models.Status, bool) {
	lower := strings.ToLower(name)
	for _, p := range columnStatusPriority {
		for _, fragment := range p.fragments {
			if strings.Contains(lower, fragment) {
				return p.status, true
			}
		}
	}
	return "", false
}
