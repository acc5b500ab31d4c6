package models

import "time"

// Client represents a coaching client as seen by the board.
// Only the fields the board needs are carried; intake and assessment
// data live elsewhere.
type Client struct {
	ID        string
	Name      string
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time
}

// GetID returns the client identifier (used by quiet CLI output)
func (c *Client) GetID() string {
	return c.ID
}
