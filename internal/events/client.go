package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"sync"
	"time"
)

// DefaultDebounce is the batching window used when none is configured
const DefaultDebounce = 100 * time.Millisecond

// NotifyFunc receives connection status messages (level is "info", "warning" or "error")
type NotifyFunc func(level, message string)

// Client represents a connection to the nutriboard daemon.
// It handles event sending, receiving, batching, reconnection, and subscriptions.
type Client struct {
	socketPath string
	conn       net.Conn
	encoder    *json.Encoder
	decoder    *json.Decoder
	mu         sync.Mutex

	// Batching configuration
	eventQueue chan Event
	debounce   time.Duration
	closed     bool
	started    bool

	// Reconnection configuration
	maxRetries int
	baseDelay  time.Duration

	// Subscription state
	currentColumnID string

	// Event tracking
	lastSequence int64

	notify NotifyFunc

	// Context for graceful shutdown
	ctx    context.Context
	cancel context.CancelFunc

	// Batching goroutine
	batcherDone chan struct{}
}

// NewClient creates a new event client but does not connect.
// The socket path should be the full path to the Unix domain socket.
// A non-positive debounce falls back to DefaultDebounce.
func NewClient(socketPath string, debounce time.Duration) *Client {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Client{
		socketPath:  socketPath,
		eventQueue:  make(chan Event, 100),
		debounce:    debounce,
		maxRetries:  5,
		baseDelay:   1 * time.Second,
		ctx:         ctx,
		cancel:      cancel,
		batcherDone: make(chan struct{}),
	}
}

// SetNotifyFunc installs a callback for connection status messages
func (c *Client) SetNotifyFunc(fn NotifyFunc) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notify = fn
}

func (c *Client) notifyf(level, format string, args ...any) {
	c.mu.Lock()
	fn := c.notify
	c.mu.Unlock()
	if fn != nil {
		fn(level, fmt.Sprintf(format, args...))
	}
}

// Connect establishes a connection to the daemon socket.
// It sends an initial subscription for the current column (whole board by default).
func (c *Client) Connect(ctx context.Context) error {
	if c == nil {
		return ErrNilClient
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClientClosed
	}

	dialer := net.Dialer{}
	conn, err := dialer.DialContext(ctx, "unix", c.socketPath)
	if err != nil {
		return fmt.Errorf("failed to dial daemon socket: %w", err)
	}

	c.conn = conn
	c.encoder = json.NewEncoder(conn)
	c.decoder = json.NewDecoder(conn)

	msg := Message{
		Type:      "subscribe",
		Subscribe: &SubscribeMessage{ColumnID: c.currentColumnID},
	}
	if err := c.encoder.Encode(msg); err != nil {
		if closeErr := conn.Close(); closeErr != nil {
			slog.Debug("error closing connection", "error", closeErr)
		}
		c.conn = nil
		return fmt.Errorf("failed to send subscription: %w", err)
	}

	if !c.started {
		c.started = true
		go c.startBatcher()
	}

	return nil
}

// SendEvent queues an event to be sent to the daemon.
// Events are merged and sent once per debounce window.
// Returns error if the queue is full (non-blocking send).
func (c *Client) SendEvent(event Event) (err error) {
	if c == nil {
		return ErrNilClient
	}
	defer func() {
		// send on a closed queue after Close
		if recover() != nil {
			err = ErrClientClosed
		}
	}()
	select {
	case c.eventQueue <- event:
		return nil
	default:
		return ErrQueueFull
	}
}

// startBatcher runs in a goroutine and merges events from the queue.
// It sends a single merged event every debounce window if any are pending.
func (c *Client) startBatcher() {
	defer close(c.batcherDone)

	ticker := time.NewTicker(c.debounce)
	defer ticker.Stop()

	var pending *Event

	flushPending := func() {
		if pending == nil {
			return
		}
		if err := c.sendToSocket(*pending); err != nil && !isConnectionError(err) {
			slog.Warn("failed to send batched event", "error", err)
		}
		pending = nil
	}

	add := func(evt Event) {
		if evt.Timestamp.IsZero() {
			evt.Timestamp = time.Now()
		}
		if pending == nil {
			pending = &evt
			return
		}
		merged := pending.Merge(evt)
		pending = &merged
	}

	for {
		select {
		case <-c.ctx.Done():
			flushPending()
			return

		case event, ok := <-c.eventQueue:
			if !ok {
				flushPending()
				return
			}
			add(event)

			// drain anything else queued during this window
		drainLoop:
			for {
				select {
				case evt, ok := <-c.eventQueue:
					if !ok {
						break drainLoop
					}
					add(evt)
				default:
					break drainLoop
				}
			}

		case <-ticker.C:
			flushPending()
		}
	}
}

// sendToSocket sends an event to the daemon socket.
func (c *Client) sendToSocket(event Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return ErrNotConnected
	}

	if err := c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second)); err != nil {
		return fmt.Errorf("connection error: %w", err)
	}

	return c.encoder.Encode(Message{Type: "event", Event: &event})
}

// Listen starts listening for events from the daemon.
// It returns a channel that receives events and handles reconnection automatically.
// The channel is closed when ctx is done or reconnection fails.
func (c *Client) Listen(ctx context.Context) (<-chan Event, error) {
	if c == nil {
		closed := make(chan Event)
		close(closed)
		return closed, ErrNilClient
	}
	eventChan := make(chan Event, 10)
	go c.listenLoop(ctx, eventChan)
	return eventChan, nil
}

func (c *Client) listenLoop(ctx context.Context, eventChan chan Event) {
	defer close(eventChan)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		err := c.readEvents(ctx, eventChan)
		if err == nil || ctx.Err() != nil || c.ctx.Err() != nil {
			return
		}
		slog.Info("daemon connection lost, reconnecting", "error", err)
		c.notifyf("warning", "connection to daemon lost, reconnecting")

		if c.reconnect(ctx) {
			c.notifyf("info", "reconnected to daemon")
			continue
		}

		slog.Warn("giving up on daemon", "attempts", c.maxRetries)
		c.notifyf("error", "could not reconnect to daemon after %d attempts", c.maxRetries)
		return
	}
}

// readEvents reads messages from the socket and forwards events in sequence order.
func (c *Client) readEvents(ctx context.Context, eventChan chan Event) error {
	for {
		var msg Message

		c.mu.Lock()
		if c.conn == nil {
			c.mu.Unlock()
			return errors.New("connection closed")
		}
		if err := c.conn.SetReadDeadline(time.Now().Add(60 * time.Second)); err != nil {
			c.mu.Unlock()
			return fmt.Errorf("failed to set read deadline: %w", err)
		}
		decoder := c.decoder
		c.mu.Unlock()

		if err := decoder.Decode(&msg); err != nil {
			return fmt.Errorf("failed to decode message: %w", err)
		}

		switch msg.Type {
		case "event":
			if msg.Event == nil || msg.Event.SequenceID <= c.lastSequence {
				continue
			}
			c.lastSequence = msg.Event.SequenceID
			select {
			case eventChan <- *msg.Event:
			case <-ctx.Done():
				return ctx.Err()
			}

		case "ping":
			if err := c.sendToSocket(Event{Type: EventPong}); err != nil && !isConnectionError(err) {
				slog.Debug("failed to send pong", "error", err)
			}
		}
	}
}

// isConnectionError checks if an error is a network connection error
func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, net.ErrClosed) {
		return true
	}
	errStr := err.Error()
	return strings.Contains(errStr, "broken pipe") ||
		strings.Contains(errStr, "connection reset") ||
		strings.Contains(errStr, "not connected")
}

// reconnect attempts to reconnect to the daemon with exponential backoff.
func (c *Client) reconnect(ctx context.Context) bool {
	delay := c.baseDelay

	for i := 0; i < c.maxRetries; i++ {
		select {
		case <-ctx.Done():
			return false
		case <-c.ctx.Done():
			return false
		case <-time.After(delay):
			c.mu.Lock()
			if c.conn != nil {
				if err := c.conn.Close(); err != nil {
					slog.Debug("error closing connection during reconnect", "error", err)
				}
				c.conn = nil
			}
			c.mu.Unlock()

			if err := c.Connect(ctx); err == nil {
				slog.Info("reconnected to daemon", "attempt", i+1)
				return true
			}

			slog.Debug("reconnection attempt failed", "attempt", i+1, "max", c.maxRetries, "retry_in", delay)
			delay *= 2
		}
	}

	return false
}

// Subscribe narrows delivery to events touching one column.
// An empty column ID subscribes to the whole board.
func (c *Client) Subscribe(columnID string) error {
	if c == nil {
		return ErrNilClient
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.currentColumnID = columnID

	if c.conn == nil {
		return ErrNotConnected
	}

	return c.encoder.Encode(Message{
		Type:      "subscribe",
		Subscribe: &SubscribeMessage{ColumnID: columnID},
	})
}

// Close closes the connection to the daemon and stops all goroutines.
func (c *Client) Close() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	started := c.started
	close(c.eventQueue)
	c.mu.Unlock()

	// the batcher flushes pending events when the queue closes
	if started {
		<-c.batcherDone
	}
	c.cancel()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		err := c.conn.Close()
		c.conn = nil
		return err
	}
	return nil
}
