package testutil

import (
	"context"
	"slices"
	"sync"

	"github.com/thenoetrevino/nutriboard/internal/events"
)

// MockEventPublisher records published board events in memory.
// Listen returns a closed channel; nothing is ever delivered back.
type MockEventPublisher struct {
	mu     sync.Mutex
	sent   []events.Event
	closed bool
}

// NewMockEventPublisher creates an empty recorder
func NewMockEventPublisher() *MockEventPublisher {
	return &MockEventPublisher{}
}

func (m *MockEventPublisher) Connect(ctx context.Context) error { return nil }

// SendEvent records the event
func (m *MockEventPublisher) SendEvent(event events.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, event)
	return nil
}

func (m *MockEventPublisher) Listen(ctx context.Context) (<-chan events.Event, error) {
	ch := make(chan events.Event)
	close(ch)
	return ch, nil
}

func (m *MockEventPublisher) Subscribe(columnID string) error { return nil }

func (m *MockEventPublisher) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Events returns a copy of every recorded event in send order
func (m *MockEventPublisher) Events() []events.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.sent)
}

// EventsBySource returns the recorded events produced by one kind of operation
func (m *MockEventPublisher) EventsBySource(source string) []events.Event {
	return slices.DeleteFunc(m.Events(), func(e events.Event) bool {
		return e.Source != source
	})
}

// EventCount returns how many events were recorded
func (m *MockEventPublisher) EventCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

// Closed reports whether Close was called
func (m *MockEventPublisher) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// Reset forgets recorded events
func (m *MockEventPublisher) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = nil
	m.closed = false
}

var _ events.EventPublisher = (*MockEventPublisher)(nil)
