package models

import (
	"testing"
)

// ============================================================================
// Status Tests
// ============================================================================

func TestParseStatus(t *testing.T) {
	tests := []struct {
		raw        string
		want       Status
		recognized bool
	}{
		{"active", StatusActive, true},
		{"  Active ", StatusActive, true},
		{"INACTIVE", StatusInactive, true},
		{"paused", StatusPaused, true},
		{"ativo", StatusActive, true},
		{"Inativo", StatusInactive, true},
		{"pausado", StatusPaused, true},
		{"trial", Status("trial"), false},
		{" VIP ", Status("VIP"), false},
		{"", Status(""), false},
	}

	for _, tt := range tests {
		got, ok := ParseStatus(tt.raw)
		if got != tt.want || ok != tt.recognized {
			t.Errorf("ParseStatus(%q) = (%q, %v), want (%q, %v)", tt.raw, got, ok, tt.want, tt.recognized)
		}
	}
}

func TestStatus_Canonical(t *testing.T) {
	if got := Status("Ativo").Canonical(); got != StatusActive {
		t.Errorf("Expected %q, got %q", StatusActive, got)
	}
	if got := Status("on-hold").Canonical(); got != "" {
		t.Errorf("Expected empty canonical status for custom value, got %q", got)
	}
	if !Status("paused").IsRecognized() {
		t.Error("paused should be recognized")
	}
	if Status("vip").IsRecognized() {
		t.Error("vip should not be recognized")
	}
}

func TestCanonicalStatuses(t *testing.T) {
	statuses := CanonicalStatuses()
	if len(statuses) != 3 {
		t.Fatalf("Expected 3 canonical statuses, got %d", len(statuses))
	}
	for _, s := range statuses {
		if !s.IsRecognized() {
			t.Errorf("Canonical status %q should be recognized", s)
		}
	}
}

// ============================================================================
// Column Tests
// ============================================================================

func TestColumn_HasMember(t *testing.T) {
	col := &Column{ID: "c1", Name: "Active", Members: []string{"a", "b"}}
	if !col.HasMember("a") {
		t.Error("Expected column to contain a")
	}
	if col.HasMember("z") {
		t.Error("Expected column not to contain z")
	}
}

func TestColumn_WithoutMember(t *testing.T) {
	col := &Column{ID: "c1", Members: []string{"a", "b", "a", "c"}}
	got := col.WithoutMember("a")
	if len(got) != 2 || got[0] != "b" || got[1] != "c" {
		t.Errorf("Expected [b c], got %v", got)
	}
	if len(col.Members) != 4 {
		t.Error("WithoutMember must not modify the column")
	}
}

func TestColumn_Clone(t *testing.T) {
	col := &Column{ID: "c1", Name: "Paused", Members: []string{"a"}}
	cp := col.Clone()
	cp.Members[0] = "x"
	if col.Members[0] != "a" {
		t.Error("Clone should deep copy members")
	}
}

// ============================================================================
// Error Tests
// ============================================================================
