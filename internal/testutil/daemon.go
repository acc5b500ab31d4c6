package testutil

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/thenoetrevino/nutriboard/internal/daemon"
	"github.com/thenoetrevino/nutriboard/internal/events"
)

// GetTestSocketPath returns a socket path in a fresh short temp directory.
// Unix socket paths are length limited, so t.TempDir is avoided.
func GetTestSocketPath(t *testing.T) string {
	t.Helper()

	dir, err := os.MkdirTemp("", "nbt")
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.RemoveAll(dir) })

	return filepath.Join(dir, "nutriboard.sock")
}

// SetupTestDaemon starts a daemon on a temporary socket and stops it during
// cleanup, waiting for all of its goroutines to exit
func SetupTestDaemon(t *testing.T, opts ...daemon.Option) (*daemon.Server, string) {
	t.Helper()

	socketPath := GetTestSocketPath(t)

	server, err := daemon.NewServer(socketPath, opts...)
	require.NoError(t, err, "create test daemon")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := server.Start(ctx); err != nil {
			t.Logf("daemon stopped: %v", err)
		}
	}()

	t.Cleanup(func() {
		cancel()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Errorf("daemon did not stop within 5s")
		}
	})

	return server, socketPath
}

// SetupTestClient connects an events client to the daemon at socketPath.
// The client is closed during cleanup.
func SetupTestClient(t *testing.T, socketPath string) *events.Client {
	t.Helper()

	client := events.NewClient(socketPath, 10*time.Millisecond)
	t.Cleanup(func() {
		_ = client.Close()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	require.NoError(t, client.Connect(ctx), "connect test client")

	return client
}

// ListenTestClient connects a client subscribed to columnID ("" = whole
// board) and returns its event stream
func ListenTestClient(t *testing.T, socketPath, columnID string) <-chan events.Event {
	t.Helper()

	client := SetupTestClient(t, socketPath)
	require.NoError(t, client.Subscribe(columnID))

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	ch, err := client.Listen(ctx)
	require.NoError(t, err)
	return ch
}

// WaitForClientCount waits until the daemon reports the expected number of
// connected sessions
func WaitForClientCount(t *testing.T, server *daemon.Server, expected int32, timeout time.Duration) bool {
	t.Helper()

	ok := WaitForCondition(t, func() bool {
		return server.Metrics().GetConnectedClients() == expected
	}, timeout, "connected client count")
	if ok {
		// subscriptions are sent right after connecting
		time.Sleep(50 * time.Millisecond)
	}
	return ok
}

// WaitForEventMatching reads from ch until an event satisfies match and
// returns it. Events that do not match are skipped. The test fails if ch
// closes or nothing matches within timeout.
func WaitForEventMatching(t *testing.T, ch <-chan events.Event, match func(events.Event) bool, timeout time.Duration) events.Event {
	t.Helper()

	deadline := time.After(timeout)
	for {
		select {
		case event, ok := <-ch:
			if !ok {
				t.Fatal("event channel closed before a matching event arrived")
			}
			if match(event) {
				return event
			}
		case <-deadline:
			t.Fatalf("no matching event within %v", timeout)
			return events.Event{}
		}
	}
}

// WaitForNoEvent fails the test if anything arrives on ch within timeout
func WaitForNoEvent(t *testing.T, ch <-chan events.Event, timeout time.Duration) {
	t.Helper()

	select {
	case event, ok := <-ch:
		if ok {
			t.Fatalf("unexpected %s event from %s (columns %v)", event.Type, event.Source, event.ColumnIDs)
		}
	case <-time.After(timeout):
	}
}

// WaitForCondition polls condition until it returns true or timeout elapses
func WaitForCondition(t *testing.T, condition func() bool, timeout time.Duration, description string) bool {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}

	t.Logf("gave up waiting for %s after %v", description, timeout)
	return false
}
