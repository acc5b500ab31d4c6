// Package daemon implements the board event broadcaster.
//
// Sessions connect over a Unix socket, publish board_changed events after
// they mutate the board, and receive everyone else's events so they can
// reload. The daemon can also run repair passes on a fixed interval.
package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/thenoetrevino/nutriboard/internal/events"
)

// RepairReport is what the daemon needs to know about one repair pass
type RepairReport struct {
	// ColumnIDs are the columns whose membership the pass rewrote
	ColumnIDs []string
	// Failures counts columns the pass could not write
	Failures int
}

// Repairer runs one repair pass over the whole board
type Repairer interface {
	RepairBoard(ctx context.Context) (RepairReport, error)
}

// RepairFunc adapts a function to Repairer
type RepairFunc func(ctx context.Context) (RepairReport, error)

func (f RepairFunc) RepairBoard(ctx context.Context) (RepairReport, error) {
	return f(ctx)
}

// client represents a connected session
type client struct {
	conn         net.Conn
	send         chan events.Message
	subscription events.SubscribeMessage
	lastPong     time.Time
	mu           sync.Mutex // Protects subscription and lastPong
	closeOnce    sync.Once  // Ensures send channel is closed only once
}

// Option configures a Server
type Option func(*Server)

// WithRepair runs r every interval. A non-positive interval disables it.
func WithRepair(r Repairer, interval time.Duration) Option {
	return func(s *Server) {
		s.repairer = r
		s.repairInterval = interval
	}
}

// WithBufferSizes sets the broadcast queue and per-client send queue sizes
func WithBufferSizes(broadcast, perClient int) Option {
	return func(s *Server) {
		if broadcast > 0 {
			s.broadcastBufferSize = broadcast
		}
		if perClient > 0 {
			s.clientBufferSize = perClient
		}
	}
}

// WithHealthIntervals overrides how often clients are pinged and how long
// a client may stay silent before it is dropped
func WithHealthIntervals(ping, staleAfter time.Duration) Option {
	return func(s *Server) {
		s.pingInterval = ping
		s.staleAfter = staleAfter
	}
}

// Server represents the nutriboard event daemon
type Server struct {
	socketPath      string
	listener        net.Listener
	clients         map[*client]bool
	mu              sync.RWMutex
	ctx             context.Context
	cancel          context.CancelFunc
	broadcast       chan events.Event
	metrics         *Metrics
	sequenceCounter atomic.Int64
	shutdownOnce    sync.Once
	handlers        sync.WaitGroup

	broadcastBufferSize int
	clientBufferSize    int
	pingInterval        time.Duration
	staleAfter          time.Duration

	repairer       Repairer
	repairInterval time.Duration
}

// NewServer creates a new daemon server listening on socketPath
func NewServer(socketPath string, opts ...Option) (*Server, error) {
	if dir := filepath.Dir(socketPath); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("failed to create socket directory: %w", err)
		}
	}

	// stale socket from a crashed daemon
	if _, err := os.Stat(socketPath); err == nil {
		if err := os.Remove(socketPath); err != nil {
			return nil, fmt.Errorf("failed to remove stale socket: %w", err)
		}
	}

	lc := net.ListenConfig{}
	listener, err := lc.Listen(context.Background(), "unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create socket listener: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	s := &Server{
		socketPath:          socketPath,
		listener:            listener,
		clients:             make(map[*client]bool),
		ctx:                 ctx,
		cancel:              cancel,
		metrics:             NewMetrics(),
		broadcastBufferSize: 100,
		clientBufferSize:    10,
		pingInterval:        30 * time.Second,
		staleAfter:          90 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.broadcast = make(chan events.Event, s.broadcastBufferSize)

	return s, nil
}

// Metrics returns the live metrics
func (s *Server) Metrics() *Metrics {
	return s.metrics
}

// Start runs the daemon until ctx is cancelled or Shutdown is called.
// It returns after every goroutine it started has exited.
func (s *Server) Start(ctx context.Context) error {
	slog.Info("daemon starting", "socket", s.socketPath, "repair_interval", s.repairInterval)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-s.ctx.Done():
			cancel()
		case <-runCtx.Done():
		}
	}()

	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error { return s.acceptLoop(gctx) })
	g.Go(func() error { s.broadcastLoop(gctx); return nil })
	g.Go(func() error { s.monitorHealth(gctx); return nil })
	if s.repairer != nil && s.repairInterval > 0 {
		g.Go(func() error { s.repairLoop(gctx); return nil })
	}

	<-gctx.Done()
	shutdownErr := s.Shutdown()
	err := g.Wait()
	s.handlers.Wait()

	if err != nil {
		slog.Error("daemon stopped with error", "error", err)
		return err
	}
	slog.Info("daemon stopped")
	return shutdownErr
}

// acceptLoop accepts incoming client connections
func (s *Server) acceptLoop(ctx context.Context) error {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("accept error: %w", err)
		}

		c := &client{
			conn:     conn,
			send:     make(chan events.Message, s.clientBufferSize),
			lastPong: time.Now(),
		}

		s.mu.Lock()
		if s.ctx.Err() != nil {
			s.mu.Unlock()
			_ = conn.Close()
			return nil
		}
		s.clients[c] = true
		s.mu.Unlock()
		s.updateClientCount()

		slog.Debug("client connected", "clients", s.getClientCount())

		s.handlers.Add(2)
		go func() {
			defer s.handlers.Done()
			s.handleClient(c)
		}()
		go func() {
			defer s.handlers.Done()
			s.clientWriter(c)
		}()
	}
}

// broadcastLoop stamps events with a sequence number and fans them out
func (s *Server) broadcastLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return

		case event := <-s.broadcast:
			event.SequenceID = s.sequenceCounter.Add(1)
			if event.Timestamp.IsZero() {
				event.Timestamp = time.Now()
			}
			s.metrics.IncRefreshesTotal()

			s.mu.RLock()
			for c := range s.clients {
				c.mu.Lock()
				subscribed := event.Touches(c.subscription.ColumnID)
				c.mu.Unlock()

				if !subscribed {
					continue
				}
				evt := event
				if !s.sendToClient(c, events.Message{Type: "event", Event: &evt}) {
					slog.Warn("client send queue full, event dropped", "sequence", event.SequenceID)
				}
			}
			s.mu.RUnlock()
		}
	}
}

// handleClient reads messages from a connected client
func (s *Server) handleClient(c *client) {
	defer func() {
		s.removeClient(c)
		slog.Debug("client disconnected", "clients", s.getClientCount())
	}()

	decoder := json.NewDecoder(c.conn)

	for {
		var msg events.Message
		if err := decoder.Decode(&msg); err != nil {
			return
		}

		switch msg.Type {
		case "event":
			if msg.Event == nil {
				continue
			}
			if msg.Event.Type == events.EventPong {
				c.mu.Lock()
				c.lastPong = time.Now()
				c.mu.Unlock()
				continue
			}
			s.metrics.IncEventsReceived()
			if err := s.Broadcast(*msg.Event); err != nil {
				slog.Warn("dropping client event", "error", err)
			}

		case "subscribe":
			if msg.Subscribe != nil {
				c.mu.Lock()
				c.subscription = *msg.Subscribe
				c.lastPong = time.Now()
				c.mu.Unlock()
				slog.Debug("client subscribed", "column_id", msg.Subscribe.ColumnID)
			}

		case "pong":
			c.mu.Lock()
			c.lastPong = time.Now()
			c.mu.Unlock()
		}
	}
}

// clientWriter sends messages to a client
func (s *Server) clientWriter(c *client) {
	encoder := json.NewEncoder(c.conn)

	for msg := range c.send {
		if err := encoder.Encode(msg); err != nil {
			// drain so senders never block on a dead client
			for range c.send {
			}
			return
		}
	}
}

// monitorHealth sends ping messages and removes stale clients
func (s *Server) monitorHealth(ctx context.Context) {
	ticker := time.NewTicker(s.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			s.mu.RLock()
			clients := make([]*client, 0, len(s.clients))
			for c := range s.clients {
				clients = append(clients, c)
			}
			s.mu.RUnlock()

			now := time.Now()
			for _, c := range clients {
				c.mu.Lock()
				silent := now.Sub(c.lastPong)
				c.mu.Unlock()

				if silent > s.staleAfter {
					slog.Info("removing stale client", "silent_for", silent)
					s.metrics.IncStaleDropped()
					s.removeClient(c)
					continue
				}
				s.mu.RLock()
				ok := s.clients[c] && s.sendToClient(c, events.Message{Type: "ping"})
				s.mu.RUnlock()
				if !ok {
					slog.Debug("failed to send ping to client")
				}
			}
		}
	}
}

// repairLoop runs a repair pass every repairInterval and tells sessions
// which columns it rewrote
func (s *Server) repairLoop(ctx context.Context) {
	ticker := time.NewTicker(s.repairInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runRepair(ctx)
		}
	}
}

func (s *Server) runRepair(ctx context.Context) {
	s.metrics.IncRepairsRun()

	report, err := s.repairer.RepairBoard(ctx)
	if err != nil {
		if ctx.Err() == nil {
			s.metrics.IncRepairFailures()
			slog.Error("scheduled repair failed", "error", err)
		}
		return
	}
	if report.Failures > 0 {
		s.metrics.IncRepairFailures()
		slog.Warn("scheduled repair left columns unrepaired", "failures", report.Failures)
	}
	if len(report.ColumnIDs) == 0 {
		return
	}

	s.metrics.AddColumnsRepaired(int64(len(report.ColumnIDs)))
	if err := s.Broadcast(events.Event{
		Type:      events.EventBoardChanged,
		Source:    events.SourceReconcile,
		ColumnIDs: report.ColumnIDs,
		Timestamp: time.Now(),
	}); err != nil {
		slog.Warn("failed to announce repair", "error", err)
	}
}

// Broadcast queues an event for every subscribed client (non-blocking)
func (s *Server) Broadcast(event events.Event) error {
	if s.ctx.Err() != nil {
		return errors.New("daemon shut down")
	}
	select {
	case s.broadcast <- event:
		return nil
	default:
		return errors.New("broadcast channel full")
	}
}

// Shutdown closes the listener and every client connection
func (s *Server) Shutdown() error {
	var err error
	s.shutdownOnce.Do(func() {
		slog.Info("shutting down daemon")

		s.cancel()

		if s.listener != nil {
			if closeErr := s.listener.Close(); closeErr != nil && !errors.Is(closeErr, net.ErrClosed) {
				err = closeErr
			}
		}

		s.mu.Lock()
		for c := range s.clients {
			_ = c.conn.Close()
			c.closeOnce.Do(func() {
				close(c.send)
			})
		}
		s.clients = make(map[*client]bool)
		s.mu.Unlock()
		s.metrics.SetConnectedClients(0)

		if removeErr := os.Remove(s.socketPath); removeErr != nil && !os.IsNotExist(removeErr) {
			slog.Warn("failed to remove socket file", "error", removeErr)
		}
	})

	return err
}

// Helper methods

func (s *Server) getClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

func (s *Server) updateClientCount() {
	s.metrics.SetConnectedClients(int32(s.getClientCount()))
}

// removeClient safely removes a client from the server
func (s *Server) removeClient(c *client) {
	s.mu.Lock()
	delete(s.clients, c)
	c.closeOnce.Do(func() {
		close(c.send)
	})
	s.mu.Unlock()

	_ = c.conn.Close()

	s.updateClientCount()
}

// sendToClient attempts to send a message to a client (non-blocking).
// Callers hold s.mu so the queue cannot be closed underneath them.
// Returns false if the queue is full.
func (s *Server) sendToClient(c *client, msg events.Message) bool {
	select {
	case c.send <- msg:
		s.metrics.IncEventsSent()
		return true
	default:
		return false
	}
}
