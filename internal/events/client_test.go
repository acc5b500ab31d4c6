package events

import (
	"context"
	"encoding/json"
	"net"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

// ============================================================================
// Test Helpers
// ============================================================================

// setupMockDaemon starts a Unix socket server that records every message a
// client sends and returns a function for pushing messages to the most
// recent connection.
func setupMockDaemon(t *testing.T) (string, chan Message, func(Message)) {
	t.Helper()

	socketPath := filepath.Join(t.TempDir(), "test.sock")
	listener, err := (&net.ListenConfig{}).Listen(context.Background(), "unix", socketPath)
	if err != nil {
		t.Fatalf("Failed to create mock daemon listener: %v", err)
	}

	messages := make(chan Message, 32)
	var current atomic.Pointer[json.Encoder]
	done := make(chan struct{})

	go func() {
		defer close(done)
		for {
			conn, err := listener.Accept()
			if err != nil {
				return
			}
			current.Store(json.NewEncoder(conn))
			go func(c net.Conn) {
				defer func() { _ = c.Close() }()
				decoder := json.NewDecoder(c)
				for {
					var msg Message
					if err := decoder.Decode(&msg); err != nil {
						return
					}
					select {
					case messages <- msg:
					default:
					}
				}
			}(conn)
		}
	}()

	t.Cleanup(func() {
		_ = listener.Close()
		<-done
	})

	push := func(msg Message) {
		t.Helper()
		enc := current.Load()
		if enc == nil {
			t.Fatal("no client connected to mock daemon")
		}
		if err := enc.Encode(msg); err != nil {
			t.Fatalf("failed to push message: %v", err)
		}
	}

	return socketPath, messages, push
}

func waitMessage(t *testing.T, messages chan Message, msgType string) Message {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case msg := <-messages:
			if msg.Type == msgType {
				return msg
			}
		case <-deadline:
			t.Fatalf("Timeout waiting for %q message", msgType)
		}
	}
}

// ============================================================================
// Client Creation Tests
// ============================================================================

func TestNewClient_DefaultDebounce(t *testing.T) {
	client := NewClient(filepath.Join(t.TempDir(), "nutriboard.sock"), 0)
	defer func() { _ = client.Close() }()

	if client.debounce != DefaultDebounce {
		t.Errorf("Expected debounce %v, got %v", DefaultDebounce, client.debounce)
	}
}

func TestNewClient_CustomDebounce(t *testing.T) {
	client := NewClient(filepath.Join(t.TempDir(), "nutriboard.sock"), 250*time.Millisecond)
	defer func() { _ = client.Close() }()

	if client.debounce != 250*time.Millisecond {
		t.Errorf("Expected debounce 250ms, got %v", client.debounce)
	}
}

// ============================================================================
// Connection Tests
// ============================================================================

func TestConnect_SendsWholeBoardSubscription(t *testing.T) {
	socketPath, messages, _ := setupMockDaemon(t)

	client := NewClient(socketPath, 20*time.Millisecond)
	defer func() { _ = client.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Connect(ctx); err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}

	msg := waitMessage(t, messages, "subscribe")
	if msg.Subscribe == nil || msg.Subscribe.ColumnID != "" {
		t.Errorf("Expected whole-board subscription, got %+v", msg.Subscribe)
	}
}

func TestConnect_NoServer(t *testing.T) {
	client := NewClient(filepath.Join(t.TempDir(), "missing.sock"), 0)
	defer func() { _ = client.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := client.Connect(ctx); err == nil {
		t.Fatal("Expected Connect to fail without a daemon")
	}
}

func TestSubscribe_BeforeConnect(t *testing.T) {
	client := NewClient(filepath.Join(t.TempDir(), "nutriboard.sock"), 0)
	defer func() { _ = client.Close() }()

	if err := client.Subscribe("col-1"); err == nil {
		t.Error("Expected error when subscribing before connect")
	}
	if client.currentColumnID != "col-1" {
		t.Errorf("Expected subscription to be remembered for reconnect, got %q", client.currentColumnID)
	}
}

func TestSubscribe_AfterConnect(t *testing.T) {
	socketPath, messages, _ := setupMockDaemon(t)

	client := NewClient(socketPath, 20*time.Millisecond)
	defer func() { _ = client.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Connect(ctx); err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}
	waitMessage(t, messages, "subscribe")

	if err := client.Subscribe("col-7"); err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	msg := waitMessage(t, messages, "subscribe")
	if msg.Subscribe.ColumnID != "col-7" {
		t.Errorf("Expected subscription to col-7, got %q", msg.Subscribe.ColumnID)
	}
}

// ============================================================================
// Sending Tests
// ============================================================================

func TestSendEvent_BatchesIntoOneEvent(t *testing.T) {
	socketPath, messages, _ := setupMockDaemon(t)

	client := NewClient(socketPath, 100*time.Millisecond)
	defer func() { _ = client.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Connect(ctx); err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}
	waitMessage(t, messages, "subscribe")

	for _, col := range []string{"a", "b", "a"} {
		if err := client.SendEvent(Event{Type: EventBoardChanged, Source: SourceMove, ClientID: "c1", ColumnIDs: []string{col}}); err != nil {
			t.Fatalf("SendEvent failed: %v", err)
		}
	}

	msg := waitMessage(t, messages, "event")
	if msg.Event == nil {
		t.Fatal("Expected event payload")
	}
	if msg.Event.ClientID != "c1" || msg.Event.Source != SourceMove {
		t.Errorf("Unexpected merged event: %+v", msg.Event)
	}
	if len(msg.Event.ColumnIDs) != 2 {
		t.Errorf("Expected columns a and b merged, got %v", msg.Event.ColumnIDs)
	}
}

func TestSendEvent_QueueFull(t *testing.T) {
	client := NewClient(filepath.Join(t.TempDir(), "nutriboard.sock"), 0)
	defer func() { _ = client.Close() }()

	// batcher never starts without Connect, so the queue fills
	var lastErr error
	for i := 0; i < cap(client.eventQueue)+1; i++ {
		lastErr = client.SendEvent(Event{Type: EventBoardChanged})
	}
	if lastErr == nil {
		t.Fatal("Expected queue full error")
	}
}

func TestSendEvent_AfterClose(t *testing.T) {
	client := NewClient(filepath.Join(t.TempDir(), "nutriboard.sock"), 0)
	if err := client.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := client.SendEvent(Event{Type: EventBoardChanged}); err == nil {
		t.Error("Expected error sending on a closed client")
	}
}

// ============================================================================
// Listening Tests
// ============================================================================

func TestListen_DropsOutOfOrderEvents(t *testing.T) {
	socketPath, messages, push := setupMockDaemon(t)

	client := NewClient(socketPath, 20*time.Millisecond)
	defer func() { _ = client.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Connect(ctx); err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}
	waitMessage(t, messages, "subscribe")

	eventChan, err := client.Listen(ctx)
	if err != nil {
		t.Fatalf("Listen failed: %v", err)
	}

	push(Message{Type: "event", Event: &Event{Type: EventBoardChanged, SequenceID: 2}})
	push(Message{Type: "event", Event: &Event{Type: EventBoardChanged, SequenceID: 1}})
	push(Message{Type: "event", Event: &Event{Type: EventBoardChanged, SequenceID: 3}})

	var got []int64
	for len(got) < 2 {
		select {
		case evt := <-eventChan:
			got = append(got, evt.SequenceID)
		case <-ctx.Done():
			t.Fatalf("Timeout, got sequences %v", got)
		}
	}
	if got[0] != 2 || got[1] != 3 {
		t.Errorf("Expected sequences [2 3], got %v", got)
	}
}

func TestListen_AnswersPing(t *testing.T) {
	socketPath, messages, push := setupMockDaemon(t)

	client := NewClient(socketPath, 20*time.Millisecond)
	defer func() { _ = client.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Connect(ctx); err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}
	waitMessage(t, messages, "subscribe")

	if _, err := client.Listen(ctx); err != nil {
		t.Fatalf("Listen failed: %v", err)
	}
	push(Message{Type: "ping"})

	msg := waitMessage(t, messages, "event")
	if msg.Event == nil || msg.Event.Type != EventPong {
		t.Errorf("Expected pong, got %+v", msg.Event)
	}
}

// ============================================================================
// Close Tests
// ============================================================================

func TestClose_BeforeConnect(t *testing.T) {
	client := NewClient(filepath.Join(t.TempDir(), "nutriboard.sock"), 0)
	if err := client.Close(); err != nil {
		t.Errorf("Expected Close to succeed, got error: %v", err)
	}
}

func TestClose_FlushesPendingAndIsIdempotent(t *testing.T) {
	socketPath, messages, _ := setupMockDaemon(t)

	client := NewClient(socketPath, time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Connect(ctx); err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}
	waitMessage(t, messages, "subscribe")

	if err := client.SendEvent(Event{Type: EventBoardChanged, Source: SourceReconcile}); err != nil {
		t.Fatalf("SendEvent failed: %v", err)
	}
	if err := client.Close(); err != nil {
		t.Errorf("First close failed: %v", err)
	}
	if err := client.Close(); err != nil {
		t.Errorf("Second close should be idempotent, got error: %v", err)
	}

	msg := waitMessage(t, messages, "event")
	if msg.Event.Source != SourceReconcile {
		t.Errorf("Expected flushed reconcile event, got %+v", msg.Event)
	}
}

// ============================================================================
// Notify Callback Tests
// ============================================================================

func TestSetNotifyFunc(t *testing.T) {
	client := NewClient(filepath.Join(t.TempDir(), "nutriboard.sock"), 0)
	defer func() { _ = client.Close() }()

	var capturedLevel, capturedMessage string
	client.SetNotifyFunc(func(level, message string) {
		capturedLevel = level
		capturedMessage = message
	})

	client.notifyf("info", "reconnected after %d attempts", 2)

	if capturedLevel != "info" {
		t.Errorf("Expected level 'info', got '%s'", capturedLevel)
	}
	if capturedMessage != "reconnected after 2 attempts" {
		t.Errorf("Unexpected message %q", capturedMessage)
	}
}
