package models

import "strings"

// Status is the program status of a client (e.g. "active", "paused").
// Values outside the canonical set are custom statuses and imply no column.
type Status string

// Canonical statuses
const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
	StatusPaused   Status = "paused"
)

// legacyStatuses maps values written by older intake forms to canonical statuses
var legacyStatuses = map[string]Status{
	"ativo":   StatusActive,
	"inativo": StatusInactive,
	"pausado": StatusPaused,
}

// CanonicalStatuses lists the statuses a column can imply, in display order
func CanonicalStatuses() []Status {
	return []Status{StatusActive, StatusInactive, StatusPaused}
}

// ParseStatus normalizes a raw status value.
// It returns the canonical status and true when the value is recognized,
// otherwise the trimmed raw value and false.
func ParseStatus(raw string) (Status, bool) {
	norm := strings.ToLower(strings.TrimSpace(raw))
	switch Status(norm) {
	case StatusActive, StatusInactive, StatusPaused:
		return Status(norm), true
	}
	if s, ok := legacyStatuses[norm]; ok {
		return s, true
	}
	return Status(strings.TrimSpace(raw)), false
}

// Canonical returns the canonical form of s, or "" when s is a custom status
func (s Status) Canonical() Status {
	c, ok := ParseStatus(string(s))
	if !ok {
		return ""
	}
	return c
}

// IsRecognized reports whether s normalizes to a canonical status
func (s Status) IsRecognized() bool {
	_, ok := ParseStatus(string(s))
	return ok
}

func (s Status) String() string {
	return string(s)
}
