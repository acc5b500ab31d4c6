package models

import "slices"

// Column represents a board column (e.g. "✅ Active", "VIP").
// Members holds client IDs in display order.
type Column struct {
	ID       string
	Name     string
	Color    string
	Position int
	Members  []string
}

// GetID returns the column identifier (used by quiet CLI output)
func (c *Column) GetID() string {
	return c.ID
}

// HasMember reports whether clientID is in the column
func (c *Column) HasMember(clientID string) bool {
	return slices.Contains(c.Members, clientID)
}

// WithoutMember returns a copy of the members with every occurrence of clientID removed
func (c *Column) WithoutMember(clientID string) []string {
	out := make([]string, 0, len(c.Members))
	for _, id := range c.Members {
		if id != clientID {
			out = append(out, id)
		}
	}
	return out
}

// Clone returns a deep copy of the column
func (c *Column) Clone() *Column {
	cp := *c
	cp.Members = slices.Clone(c.Members)
	return &cp
}
