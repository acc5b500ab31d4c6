package events

import "context"

// EventPublisher defines the interface for sending and receiving board events.
// Services depend on it rather than on the socket client so they can run
// without a daemon and be tested with a mock.
type EventPublisher interface {
	// Connect establishes a connection to the daemon socket
	Connect(ctx context.Context) error

	// SendEvent queues an event to be sent to the daemon
	SendEvent(event Event) error

	// Listen starts listening for events from the daemon
	Listen(ctx context.Context) (<-chan Event, error)

	// Subscribe narrows delivery to one column ("" = whole board)
	Subscribe(columnID string) error

	// Close closes the connection to the daemon and stops all goroutines
	Close() error
}

// Compile-time verification that *Client implements EventPublisher
var _ EventPublisher = (*Client)(nil)
