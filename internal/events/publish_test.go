package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flakyPublisher fails the first failures sends with err
type flakyPublisher struct {
	mu       sync.Mutex
	failures int
	err      error
	sent     []Event
	attempts int
}

func (p *flakyPublisher) SendEvent(event Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.attempts++
	if p.attempts <= p.failures {
		return p.err
	}
	p.sent = append(p.sent, event)
	return nil
}

func (p *flakyPublisher) Connect(context.Context) error                { return nil }
func (p *flakyPublisher) Listen(context.Context) (<-chan Event, error) { return nil, nil }
func (p *flakyPublisher) Subscribe(string) error                       { return nil }
func (p *flakyPublisher) Close() error                                 { return nil }

func TestPublishWithRetry(t *testing.T) {
	event := Event{Type: EventBoardChanged, Source: SourceMove, ColumnIDs: []string{"col-1"}}

	tests := []struct {
		name         string
		failures     int
		err          error
		attempts     int
		wantAttempts int
		wantErr      error
	}{
		{"first try", 0, ErrQueueFull, 3, 1, nil},
		{"after two retries", 2, ErrQueueFull, 3, 3, nil},
		{"gives up", 10, ErrQueueFull, 3, 3, ErrQueueFull},
		{"closed client is not retried", 10, ErrClientClosed, 3, 1, ErrClientClosed},
		{"nil client is not retried", 10, ErrNilClient, 3, 1, ErrNilClient},
		{"non-positive attempts still sends once", 0, nil, 0, 1, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &flakyPublisher{failures: tt.failures, err: tt.err}

			err := PublishWithRetry(context.Background(), p, event, tt.attempts)

			assert.Equal(t, tt.wantAttempts, p.attempts)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, p.sent)
				return
			}
			require.NoError(t, err)
			require.Len(t, p.sent, 1)
			assert.Equal(t, event.ColumnIDs, p.sent[0].ColumnIDs)
		})
	}
}

func TestPublishWithRetry_NilPublisher(t *testing.T) {
	assert.NoError(t, PublishWithRetry(context.Background(), nil, Event{Type: EventBoardChanged}, 3))
}

func TestPublishWithRetry_Backoff(t *testing.T) {
	p := &flakyPublisher{failures: 2, err: ErrQueueFull}

	start := time.Now()
	require.NoError(t, PublishWithRetry(context.Background(), p, Event{Type: EventBoardChanged}, 3))

	// 50ms then 100ms
	assert.GreaterOrEqual(t, time.Since(start), 150*time.Millisecond)
}

func TestPublishWithRetry_StopsWhenContextDone(t *testing.T) {
	p := &flakyPublisher{failures: 10, err: ErrQueueFull}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	err := PublishWithRetry(ctx, p, Event{Type: EventBoardChanged}, 5)

	assert.ErrorIs(t, err, ErrQueueFull)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, p.attempts)
	assert.Less(t, time.Since(start), 50*time.Millisecond)
}

func TestPublishWithRetry_ClosedClient(t *testing.T) {
	client := NewClient("/nonexistent/nutriboard.sock", 0)
	require.NoError(t, client.Close())

	err := PublishWithRetry(context.Background(), client, Event{Type: EventBoardChanged}, 3)
	assert.True(t, errors.Is(err, ErrClientClosed))
}
