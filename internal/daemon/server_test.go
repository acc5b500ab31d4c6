package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thenoetrevino/nutriboard/internal/events"
)

// Test helpers to avoid import cycle with testutil

func getTestSocketPath(t *testing.T) string {
	t.Helper()
	// unix socket paths are length limited, so avoid deep temp dirs
	dir, err := os.MkdirTemp("", "nb")
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.RemoveAll(dir) })
	return filepath.Join(dir, "d.sock")
}

func setupTestDaemon(t *testing.T, opts ...Option) (*Server, string) {
	t.Helper()
	socketPath := getTestSocketPath(t)

	server, err := NewServer(socketPath, opts...)
	if err != nil {
		t.Fatalf("Failed to create test daemon: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = server.Start(ctx)
	}()

	t.Cleanup(func() {
		cancel()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Error("daemon did not stop")
		}
	})

	return server, socketPath
}

func connectRawClient(t *testing.T, socketPath string) (net.Conn, *json.Encoder, *json.Decoder) {
	t.Helper()

	conn, err := (&net.Dialer{}).DialContext(context.Background(), "unix", socketPath)
	if err != nil {
		t.Fatalf("Failed to dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	return conn, json.NewEncoder(conn), json.NewDecoder(conn)
}

func sendSubscribeMessage(t *testing.T, encoder *json.Encoder, columnID string) {
	t.Helper()
	msg := events.Message{
		Type:      "subscribe",
		Subscribe: &events.SubscribeMessage{ColumnID: columnID},
	}
	if err := encoder.Encode(msg); err != nil {
		t.Fatalf("Failed to send subscribe: %v", err)
	}
}

func waitForEvent(t *testing.T, ch <-chan events.Event, timeout time.Duration) events.Event {
	t.Helper()
	select {
	case event, ok := <-ch:
		if !ok {
			t.Fatal("Channel closed")
		}
		return event
	case <-time.After(timeout):
		t.Fatalf("Timeout waiting for event")
		return events.Event{}
	}
}

func waitForNoEvent(t *testing.T, ch <-chan events.Event, timeout time.Duration) {
	t.Helper()
	select {
	case event := <-ch:
		t.Fatalf("Unexpected event: %+v", event)
	case <-time.After(timeout):
	}
}

// setupTestClient connects an events client subscribed to columnID and
// returns its event channel
func setupTestClient(t *testing.T, socketPath, columnID string) (*events.Client, <-chan events.Event) {
	t.Helper()
	client := events.NewClient(socketPath, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(func() {
		cancel()
		_ = client.Close()
	})

	dialCtx, dialCancel := context.WithTimeout(ctx, 2*time.Second)
	defer dialCancel()
	if err := client.Connect(dialCtx); err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}
	if err := client.Subscribe(columnID); err != nil {
		t.Fatalf("Failed to subscribe: %v", err)
	}

	ch, err := client.Listen(ctx)
	if err != nil {
		t.Fatalf("Failed to listen: %v", err)
	}
	return client, ch
}

func waitForClients(t *testing.T, server *Server, n int32) {
	t.Helper()
	require.Eventually(t, func() bool {
		return server.Metrics().GetConnectedClients() == n
	}, 2*time.Second, 10*time.Millisecond)
	// let subscribe messages land
	time.Sleep(50 * time.Millisecond)
}

type fakeRepairer struct {
	mu     sync.Mutex
	calls  atomic.Int64
	report RepairReport
	err    error
}

func (f *fakeRepairer) RepairBoard(ctx context.Context) (RepairReport, error) {
	f.calls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.report, f.err
}

func (f *fakeRepairer) set(report RepairReport, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.report, f.err = report, err
}

// ============================================================================
// Server Initialization Tests
// ============================================================================

func TestNewServer_Success(t *testing.T) {
	socketPath := getTestSocketPath(t)

	server, err := NewServer(socketPath)
	require.NoError(t, err)
	defer func() { _ = server.Shutdown() }()

	_, err = os.Stat(socketPath)
	assert.NoError(t, err, "socket file should exist")
	assert.Equal(t, 100, server.broadcastBufferSize)
	assert.Equal(t, 10, server.clientBufferSize)
}

func TestNewServer_DirectoryCreation(t *testing.T) {
	dir := filepath.Dir(getTestSocketPath(t))
	nestedPath := filepath.Join(dir, "a", "b", "d.sock")

	server, err := NewServer(nestedPath)
	require.NoError(t, err)
	defer func() { _ = server.Shutdown() }()

	_, err = os.Stat(nestedPath)
	assert.NoError(t, err)
}

func TestNewServer_StaleSocketCleanup(t *testing.T) {
	socketPath := getTestSocketPath(t)

	f, err := os.Create(socketPath)
	require.NoError(t, err)
	_ = f.Close()

	server, err := NewServer(socketPath)
	require.NoError(t, err, "stale socket should be replaced")
	defer func() { _ = server.Shutdown() }()

	info, err := os.Stat(socketPath)
	require.NoError(t, err)
	assert.NotZero(t, info.Mode()&os.ModeSocket)
}

func TestNewServer_Options(t *testing.T) {
	r := &fakeRepairer{}
	server, err := NewServer(getTestSocketPath(t),
		WithBufferSizes(200, 20),
		WithHealthIntervals(time.Second, 3*time.Second),
		WithRepair(r, time.Minute),
	)
	require.NoError(t, err)
	defer func() { _ = server.Shutdown() }()

	assert.Equal(t, 200, server.broadcastBufferSize)
	assert.Equal(t, 200, cap(server.broadcast))
	assert.Equal(t, 20, server.clientBufferSize)
	assert.Equal(t, time.Second, server.pingInterval)
	assert.Equal(t, 3*time.Second, server.staleAfter)
	assert.Same(t, r, server.repairer)
	assert.Equal(t, time.Minute, server.repairInterval)
}

func TestWithBufferSizes_IgnoresNonPositive(t *testing.T) {
	server, err := NewServer(getTestSocketPath(t), WithBufferSizes(0, -1))
	require.NoError(t, err)
	defer func() { _ = server.Shutdown() }()

	assert.Equal(t, 100, server.broadcastBufferSize)
	assert.Equal(t, 10, server.clientBufferSize)
}

// ============================================================================
// Client Connection Tests
// ============================================================================

func TestClientConnection_CountTracksConnections(t *testing.T) {
	server, socketPath := setupTestDaemon(t)

	var conns []net.Conn
	for range 3 {
		conn, encoder, _ := connectRawClient(t, socketPath)
		sendSubscribeMessage(t, encoder, "")
		conns = append(conns, conn)
	}
	waitForClients(t, server, 3)

	_ = conns[0].Close()
	waitForClients(t, server, 2)
}

func TestClientConnection_MalformedInputDisconnects(t *testing.T) {
	server, socketPath := setupTestDaemon(t)

	conn, _, _ := connectRawClient(t, socketPath)
	waitForClients(t, server, 1)

	_, err := conn.Write([]byte("{not json\n"))
	require.NoError(t, err)
	waitForClients(t, server, 0)
}

// ============================================================================
// Event Broadcasting Tests
// ============================================================================

func TestBroadcast_SingleClient(t *testing.T) {
	server, socketPath := setupTestDaemon(t)
	_, ch := setupTestClient(t, socketPath, "")
	waitForClients(t, server, 1)

	require.NoError(t, server.Broadcast(events.Event{
		Type:      events.EventBoardChanged,
		Source:    events.SourceMove,
		ClientID:  "client-1",
		ColumnIDs: []string{"col-a"},
	}))

	got := waitForEvent(t, ch, 2*time.Second)
	assert.Equal(t, events.EventBoardChanged, got.Type)
	assert.Equal(t, "client-1", got.ClientID)
	assert.Equal(t, []string{"col-a"}, got.ColumnIDs)
	assert.NotZero(t, got.SequenceID)
	assert.False(t, got.Timestamp.IsZero(), "daemon stamps missing timestamps")
}

func TestBroadcast_MultipleClients(t *testing.T) {
	server, socketPath := setupTestDaemon(t)

	var chans []<-chan events.Event
	for range 3 {
		_, ch := setupTestClient(t, socketPath, "")
		chans = append(chans, ch)
	}
	waitForClients(t, server, 3)

	require.NoError(t, server.Broadcast(events.Event{Type: events.EventBoardChanged, Source: events.SourceReconcile}))

	for i, ch := range chans {
		got := waitForEvent(t, ch, 2*time.Second)
		assert.Equal(t, events.SourceReconcile, got.Source, "client %d", i)
	}
}

func TestBroadcast_SubscriptionFiltering(t *testing.T) {
	server, socketPath := setupTestDaemon(t)

	_, chA := setupTestClient(t, socketPath, "col-a")
	_, chB := setupTestClient(t, socketPath, "col-b")
	_, chAll := setupTestClient(t, socketPath, "")
	waitForClients(t, server, 3)

	require.NoError(t, server.Broadcast(events.Event{
		Type:      events.EventBoardChanged,
		ColumnIDs: []string{"col-a", "col-c"},
	}))

	assert.Equal(t, []string{"col-a", "col-c"}, waitForEvent(t, chA, 2*time.Second).ColumnIDs)
	assert.Equal(t, []string{"col-a", "col-c"}, waitForEvent(t, chAll, 2*time.Second).ColumnIDs)
	waitForNoEvent(t, chB, 300*time.Millisecond)
}

func TestBroadcast_WholeBoardReachesEveryone(t *testing.T) {
	server, socketPath := setupTestDaemon(t)

	_, chA := setupTestClient(t, socketPath, "col-a")
	_, chB := setupTestClient(t, socketPath, "col-b")
	waitForClients(t, server, 2)

	require.NoError(t, server.Broadcast(events.Event{Type: events.EventBoardChanged}))

	waitForEvent(t, chA, 2*time.Second)
	waitForEvent(t, chB, 2*time.Second)
}

func TestBroadcast_SequenceNumbers(t *testing.T) {
	server, socketPath := setupTestDaemon(t)
	_, ch := setupTestClient(t, socketPath, "")
	waitForClients(t, server, 1)

	const n = 8
	for range n {
		require.NoError(t, server.Broadcast(events.Event{Type: events.EventBoardChanged}))
	}

	var prev int64
	for range n {
		got := waitForEvent(t, ch, 2*time.Second)
		assert.Greater(t, got.SequenceID, prev)
		prev = got.SequenceID
	}
	assert.Equal(t, int64(n), server.Metrics().GetRefreshesTotal())
}

func TestBroadcast_RelaysClientEvents(t *testing.T) {
	server, socketPath := setupTestDaemon(t)

	sender, _ := setupTestClient(t, socketPath, "")
	_, ch := setupTestClient(t, socketPath, "")
	waitForClients(t, server, 2)

	require.NoError(t, sender.SendEvent(events.Event{
		Type:      events.EventBoardChanged,
		Source:    events.SourceMove,
		ClientID:  "client-7",
		ColumnIDs: []string{"col-a"},
	}))

	got := waitForEvent(t, ch, 2*time.Second)
	assert.Equal(t, "client-7", got.ClientID)
	assert.Eventually(t, func() bool {
		return server.Metrics().GetEventsReceived() == 1
	}, time.Second, 10*time.Millisecond)
}

func TestBroadcast_FullQueue(t *testing.T) {
	server, err := NewServer(getTestSocketPath(t), WithBufferSizes(1, 1))
	require.NoError(t, err)
	defer func() { _ = server.Shutdown() }()

	// not started, so nothing drains the queue
	require.NoError(t, server.Broadcast(events.Event{Type: events.EventBoardChanged}))
	assert.Error(t, server.Broadcast(events.Event{Type: events.EventBoardChanged}))
}

func TestBroadcast_AfterShutdown(t *testing.T) {
	server, err := NewServer(getTestSocketPath(t))
	require.NoError(t, err)
	require.NoError(t, server.Shutdown())

	assert.Error(t, server.Broadcast(events.Event{Type: events.EventBoardChanged}))
}

// ============================================================================
// Health Monitoring Tests
// ============================================================================

func TestHealth_PingsClients(t *testing.T) {
	server, socketPath := setupTestDaemon(t, WithHealthIntervals(20*time.Millisecond, time.Minute))

	conn, encoder, decoder := connectRawClient(t, socketPath)
	sendSubscribeMessage(t, encoder, "")
	waitForClients(t, server, 1)

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg events.Message
	require.NoError(t, decoder.Decode(&msg))
	assert.Equal(t, "ping", msg.Type)
}

func TestHealth_DropsSilentClients(t *testing.T) {
	server, socketPath := setupTestDaemon(t, WithHealthIntervals(20*time.Millisecond, 60*time.Millisecond))

	_, encoder, _ := connectRawClient(t, socketPath)
	sendSubscribeMessage(t, encoder, "")
	waitForClients(t, server, 1)

	// never answers pings
	require.Eventually(t, func() bool {
		return server.Metrics().GetConnectedClients() == 0
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, int64(1), server.Metrics().GetStaleDropped())
}

func TestHealth_KeepsResponsiveClients(t *testing.T) {
	server, socketPath := setupTestDaemon(t, WithHealthIntervals(20*time.Millisecond, 200*time.Millisecond))

	// events.Client answers pings with pongs
	setupTestClient(t, socketPath, "")
	waitForClients(t, server, 1)

	time.Sleep(500 * time.Millisecond)
	assert.Equal(t, int32(1), server.Metrics().GetConnectedClients())
	assert.Zero(t, server.Metrics().GetStaleDropped())
}

// ============================================================================
// Repair Loop Tests
// ============================================================================

func TestRepairLoop_BroadcastsWrittenColumns(t *testing.T) {
	r := &fakeRepairer{}
	r.set(RepairReport{ColumnIDs: []string{"col-paused", "col-active"}}, nil)

	server, socketPath := setupTestDaemon(t, WithRepair(r, 20*time.Millisecond))
	_, ch := setupTestClient(t, socketPath, "col-paused")
	waitForClients(t, server, 1)

	got := waitForEvent(t, ch, 2*time.Second)
	assert.Equal(t, events.EventBoardChanged, got.Type)
	assert.Equal(t, events.SourceReconcile, got.Source)
	assert.Equal(t, []string{"col-paused", "col-active"}, got.ColumnIDs)

	assert.GreaterOrEqual(t, server.Metrics().GetRepairsRun(), int64(1))
	assert.GreaterOrEqual(t, server.Metrics().GetColumnsRepaired(), int64(2))
}

func TestRepairLoop_QuietWhenNothingWritten(t *testing.T) {
	r := &fakeRepairer{}
	r.set(RepairReport{}, nil)

	server, socketPath := setupTestDaemon(t, WithRepair(r, 20*time.Millisecond))
	_, ch := setupTestClient(t, socketPath, "")
	waitForClients(t, server, 1)

	require.Eventually(t, func() bool { return r.calls.Load() >= 3 }, 2*time.Second, 10*time.Millisecond)
	waitForNoEvent(t, ch, 100*time.Millisecond)
	assert.Zero(t, server.Metrics().GetRepairFailures())
}

func TestRepairLoop_CountsFailures(t *testing.T) {
	r := &fakeRepairer{}
	r.set(RepairReport{}, errors.New("store unavailable"))

	server, _ := setupTestDaemon(t, WithRepair(r, 20*time.Millisecond))

	require.Eventually(t, func() bool {
		return server.Metrics().GetRepairFailures() >= 2
	}, 2*time.Second, 10*time.Millisecond)
	assert.Zero(t, server.Metrics().GetColumnsRepaired())
}

func TestRepairLoop_PartialFailureStillBroadcasts(t *testing.T) {
	r := &fakeRepairer{}
	r.set(RepairReport{ColumnIDs: []string{"col-active"}, Failures: 1}, nil)

	server, socketPath := setupTestDaemon(t, WithRepair(r, 20*time.Millisecond))
	_, ch := setupTestClient(t, socketPath, "")
	waitForClients(t, server, 1)

	got := waitForEvent(t, ch, 2*time.Second)
	assert.Equal(t, []string{"col-active"}, got.ColumnIDs)
	assert.GreaterOrEqual(t, server.Metrics().GetRepairFailures(), int64(1))
}

func TestRepairLoop_DisabledWithoutInterval(t *testing.T) {
	r := &fakeRepairer{}
	setupTestDaemon(t, WithRepair(r, 0))

	time.Sleep(100 * time.Millisecond)
	assert.Zero(t, r.calls.Load())
}

func TestRepairFunc(t *testing.T) {
	var calls int
	var r Repairer = RepairFunc(func(ctx context.Context) (RepairReport, error) {
		calls++
		return RepairReport{ColumnIDs: []string{"x"}}, nil
	})

	report, err := r.RepairBoard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, report.ColumnIDs)
	assert.Equal(t, 1, calls)
}

// ============================================================================
// Shutdown Tests
// ============================================================================

func TestShutdown_GracefulClose(t *testing.T) {
	socketPath := getTestSocketPath(t)
	server, err := NewServer(socketPath)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- server.Start(context.Background()) }()

	setupTestClient(t, socketPath, "")
	waitForClients(t, server, 1)

	require.NoError(t, server.Shutdown())

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Start did not return after Shutdown")
	}

	_, err = os.Stat(socketPath)
	assert.True(t, os.IsNotExist(err), "socket file should be removed")
	assert.Zero(t, server.Metrics().GetConnectedClients())
}

func TestShutdown_ContextCancel(t *testing.T) {
	server, err := NewServer(getTestSocketPath(t))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- server.Start(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Start did not return after cancel")
	}
}

func TestShutdown_Idempotent(t *testing.T) {
	server, err := NewServer(getTestSocketPath(t))
	require.NoError(t, err)

	assert.NoError(t, server.Shutdown())
	assert.NoError(t, server.Shutdown())
}
