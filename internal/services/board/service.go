// Package board keeps client statuses and column membership consistent.
//
// The board is rendered strictly from column membership. Status changes
// driven from the board go through Move, and drift from any source
// (concurrent sessions, partial failures, direct status edits) is repaired
// by Reconcile.
package board

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/thenoetrevino/nutriboard/internal/database"
	"github.com/thenoetrevino/nutriboard/internal/events"
	"github.com/thenoetrevino/nutriboard/internal/models"
)

// publishRetries bounds how often a board event is retried before giving up
const publishRetries = 3

// Service defines the board operations
type Service interface {
	// Reconcile repairs membership for an already-read snapshot
	Reconcile(ctx context.Context, clients []*models.Client, columns []*models.Column) (*ReconcileResult, error)
	// Move places a client in a column and aligns its status
	Move(ctx context.Context, clientID, columnID string) (*MoveResult, error)

	// Repair reads both stores and reconciles them
	Repair(ctx context.Context) (*ReconcileResult, error)
	// PreviewRepair reads both stores and reports what Repair would change
	PreviewRepair(ctx context.Context) (*Preview, error)
	// LoadBoard repairs drift and returns the board as stored afterwards
	LoadBoard(ctx context.Context) (*Board, error)
}

// service implements Service on top of a DataStore
type service struct {
	store       database.DataStore
	eventClient events.EventPublisher
}

// NewService creates a new board service
func NewService(store database.DataStore, eventClient events.EventPublisher) Service {
	return &service{
		store:       store,
		eventClient: eventClient,
	}
}

// Board is a rendered view of column membership
type Board struct {
	Columns  []*models.Column
	Clients  map[string]*models.Client
	Repaired *ReconcileResult
}

// Column finds a column by ID, then by case-insensitive name. A status
// name such as "paused" falls back to the first column implying that status.
func (b *Board) Column(ref string) (*models.Column, bool) {
	for _, col := range b.Columns {
		if col.ID == ref {
			return col, true
		}
	}
	for _, col := range b.Columns {
		if strings.EqualFold(col.Name, ref) {
			return col, true
		}
	}
	if status, ok := models.ParseStatus(ref); ok {
		for _, col := range b.Columns {
			if implied, ok := MapColumnToStatus(col.Name); ok && implied == status {
				return col, true
			}
		}
	}
	return nil, false
}

// Cards returns the clients listed in a column, in member order.
// Members with no client record are returned with only their ID set.
func (b *Board) Cards(col *models.Column) []*models.Client {
	cards := make([]*models.Client, 0, len(col.Members))
	for _, id := range col.Members {
		if c, ok := b.Clients[id]; ok {
			cards = append(cards, c)
			continue
		}
		cards = append(cards, &models.Client{ID: id})
	}
	return cards
}

// Unplaced returns clients that appear in no column, sorted by name
func (b *Board) Unplaced() []*models.Client {
	placed := make(map[string]bool)
	for _, col := range b.Columns {
		for _, id := range col.Members {
			placed[id] = true
		}
	}
	var out []*models.Client
	for _, c := range b.Clients {
		if !placed[c.ID] {
			out = append(out, c)
		}
	}
	slices.SortFunc(out, func(a, b *models.Client) int {
		if n := strings.Compare(a.Name, b.Name); n != 0 {
			return n
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out
}

// Preview is a dry run of Repair
type Preview struct {
	Plan   *Plan
	Before []*models.Column
	After  []*models.Column
}

// snapshot reads clients and columns concurrently
func (s *service) snapshot(ctx context.Context) ([]*models.Client, []*models.Column, error) {
	var (
		clients []*models.Client
		columns []*models.Column
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		clients, err = s.store.ListClients(gctx)
		if err != nil {
			return fmt.Errorf("failed to list clients: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		columns, err = s.store.ListColumns(gctx)
		if err != nil {
			return fmt.Errorf("failed to list columns: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return clients, columns, nil
}

// Repair reads both stores and reconciles them
func (s *service) Repair(ctx context.Context) (*ReconcileResult, error) {
	clients, columns, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return s.Reconcile(ctx, clients, columns)
}

// PreviewRepair computes the repair plan without writing anything
func (s *service) PreviewRepair(ctx context.Context) (*Preview, error) {
	clients, columns, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	plan := PlanReconcile(clients, columns)
	return &Preview{
		Plan:   plan,
		Before: columns,
		After:  plan.Project(columns),
	}, nil
}

// LoadBoard runs one repair pass and re-reads the stores.
// A repair that fails part-way still yields a board; the failures are
// reported on Board.Repaired.
func (s *service) LoadBoard(ctx context.Context) (*Board, error) {
	repaired, err := s.Repair(ctx)
	if err != nil {
		return nil, err
	}

	clients, columns, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*models.Client, len(clients))
	for _, c := range clients {
		byID[c.ID] = c
	}
	return &Board{
		Columns:  columns,
		Clients:  byID,
		Repaired: repaired,
	}, nil
}

// patchColumn re-reads a column and applies removals and additions to its
// current members. It reports whether a write was issued.
func (s *service) patchColumn(ctx context.Context, columnID string, removals, additions []string, collapse bool) (bool, error) {
	fresh, err := s.store.GetColumn(ctx, columnID)
	if err != nil {
		return false, fmt.Errorf("failed to read column: %w", err)
	}

	members := patchMembers(fresh.Members, removals, additions, collapse)
	if slices.Equal(members, fresh.Members) {
		return false, nil
	}

	if err := s.store.UpdateColumnMembers(ctx, columnID, members); err != nil {
		return false, fmt.Errorf("failed to update column members: %w", err)
	}
	return true, nil
}

// publishBoardEvent notifies other sessions that the board changed. Writes
// already happened, so the event goes out even if ctx was cancelled.
func (s *service) publishBoardEvent(ctx context.Context, source, clientID string, columnIDs []string) {
	if s.eventClient == nil {
		return
	}

	evt := events.Event{
		Type:      events.EventBoardChanged,
		Source:    source,
		ClientID:  clientID,
		ColumnIDs: columnIDs,
		Timestamp: time.Now(),
	}
	if err := events.PublishWithRetry(context.WithoutCancel(ctx), s.eventClient, evt, publishRetries); err != nil {
		slog.Debug("board event dropped", "source", source, "error", err)
	}
}
