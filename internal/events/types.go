package events

import (
	"slices"
	"time"
)

// EventType indicates what kind of change occurred
type EventType string

const (
	EventBoardChanged EventType = "board_changed"
	EventPing         EventType = "ping"
	EventPong         EventType = "pong"
)

// Source values name the operation that changed the board
const (
	SourceMove      = "move"
	SourceReconcile = "reconcile"
	SourceColumn    = "column"
	SourceClient    = "client"
	SourceBatch     = "batch"
)

// Event represents a board change notification
type Event struct {
	Type       EventType
	Source     string    // Operation that produced the change
	ClientID   string    `json:",omitempty"` // Set when a single client was affected
	ColumnIDs  []string  `json:",omitempty"` // Columns whose membership changed; empty = whole board
	Timestamp  time.Time // When the event occurred
	SequenceID int64     // Monotonically increasing sequence number for ordering
}

// Touches reports whether a subscriber watching columnID should see the event.
// An empty columnID watches the whole board, and an event without column IDs
// applies to every column.
func (e Event) Touches(columnID string) bool {
	if columnID == "" || len(e.ColumnIDs) == 0 {
		return true
	}
	return slices.Contains(e.ColumnIDs, columnID)
}

// Merge folds a later event into e. Column sets are unioned; the client and
// source are kept only while every merged event agrees on them.
func (e Event) Merge(other Event) Event {
	merged := e
	if merged.Source != other.Source {
		merged.Source = SourceBatch
	}
	if merged.ClientID != other.ClientID {
		merged.ClientID = ""
	}
	if len(e.ColumnIDs) == 0 || len(other.ColumnIDs) == 0 {
		merged.ColumnIDs = nil
	} else {
		merged.ColumnIDs = slices.Clone(e.ColumnIDs)
		for _, id := range other.ColumnIDs {
			if !slices.Contains(merged.ColumnIDs, id) {
				merged.ColumnIDs = append(merged.ColumnIDs, id)
			}
		}
	}
	if other.Timestamp.After(merged.Timestamp) {
		merged.Timestamp = other.Timestamp
	}
	return merged
}

// SubscribeMessage is sent by clients to subscribe to specific column updates
type SubscribeMessage struct {
	ColumnID string // "" = whole board
}

// Message wraps events and control messages for wire protocol
type Message struct {
	Type      string            // "event", "subscribe", "ping", "pong"
	Event     *Event            `json:",omitempty"`
	Subscribe *SubscribeMessage `json:",omitempty"`
}
