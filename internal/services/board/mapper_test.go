package board

import (
	"testing"

	"github.com/thenoetrevino/nutriboard/internal/models"
)

func TestMapColumnToStatus(t *testing.T) {
	tests := []struct {
		name   string
		want   models.Status
		wantOK bool
	}{
		{"Active", models.StatusActive, true},
		{"✅ Active", models.StatusActive, true},
		{"ACTIVE CLIENTS", models.StatusActive, true},
		{"Inactive", models.StatusInactive, true},
		{"❌ Inactive", models.StatusInactive, true},
		{"Paused", models.StatusPaused, true},
		{"On pause", models.StatusPaused, true},
		{"⏸️ Pausado", models.StatusPaused, true},
		{"Ativo", models.StatusActive, true},
		{"Inativo", models.StatusInactive, true},
		{"Inactive-Active", models.StatusInactive, true},
		{"Active / Paused", models.StatusPaused, true},
		{"VIP", "", false},
		{"", "", false},
		{"Waiting list", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := MapColumnToStatus(tt.name)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("MapColumnToStatus(%q) = (%q, %v), want (%q, %v)", tt.name, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestMapColumnToStatus_CoversCanonicalStatuses(t *testing.T) {
	for _, status := range models.CanonicalStatuses() {
		got, ok := MapColumnToStatus(string(status))
		if !ok || got != status {
			t.Errorf("column named %q maps to (%q, %v)", status, got, ok)
		}
	}
}
