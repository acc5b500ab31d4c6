package column

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/thenoetrevino/nutriboard/internal/database"
	"github.com/thenoetrevino/nutriboard/internal/events"
	"github.com/thenoetrevino/nutriboard/internal/models"
)

const (
	maxNameLength  = 50
	maxColorLength = 20
)

// Service defines all column-related business operations
type Service interface {
	// Read operations
	GetColumns(ctx context.Context) ([]*models.Column, error)
	GetColumnByID(ctx context.Context, id string) (*models.Column, error)

	// Write operations
	CreateColumn(ctx context.Context, req CreateColumnRequest) (*models.Column, error)
	UpdateColumnName(ctx context.Context, id, name string) error
	UpdateColumnColor(ctx context.Context, id, color string) error
	UpdateColumnPosition(ctx context.Context, id string, position int) error
	DeleteColumn(ctx context.Context, id string) error
}

// CreateColumnRequest encapsulates data for creating a column
type CreateColumnRequest struct {
	Name  string
	Color string // Optional display color (e.g. "green" or "#22C55E")
}

// service implements Service on top of the column store
type service struct {
	repo        database.ColumnRepository
	eventClient events.EventPublisher
}

// NewService creates a new column service
func NewService(repo database.ColumnRepository, eventClient events.EventPublisher) Service {
	return &service{
		repo:        repo,
		eventClient: eventClient,
	}
}

// GetColumns retrieves all columns in display order
func (s *service) GetColumns(ctx context.Context) ([]*models.Column, error) {
	columns, err := s.repo.ListColumns(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list columns: %w", err)
	}
	return columns, nil
}

// GetColumnByID retrieves a specific column
func (s *service) GetColumnByID(ctx context.Context, id string) (*models.Column, error) {
	if id == "" {
		return nil, ErrInvalidColumnID
	}
	col, err := s.repo.GetColumn(ctx, id)
	if err != nil {
		return nil, s.mapNotFound(err)
	}
	return col, nil
}

// CreateColumn appends a new, empty column to the board
func (s *service) CreateColumn(ctx context.Context, req CreateColumnRequest) (*models.Column, error) {
	name, err := validateName(req.Name)
	if err != nil {
		return nil, err
	}
	color := strings.TrimSpace(req.Color)
	if utf8.RuneCountInString(color) > maxColorLength {
		return nil, ErrColorTooLong
	}

	col, err := s.repo.CreateColumn(ctx, name, color)
	if err != nil {
		return nil, fmt.Errorf("failed to create column: %w", err)
	}

	s.publishColumnEvent(col.ID)
	return col, nil
}

// UpdateColumnName renames a column. A rename can change the status the
// column implies; the next repair pass moves clients accordingly.
func (s *service) UpdateColumnName(ctx context.Context, id, name string) error {
	if id == "" {
		return ErrInvalidColumnID
	}
	name, err := validateName(name)
	if err != nil {
		return err
	}

	if err := s.repo.RenameColumn(ctx, id, name); err != nil {
		return s.mapNotFound(err)
	}

	s.publishColumnEvent(id)
	return nil
}

// UpdateColumnColor changes a column's display color. An empty color
// falls back to the renderer's default.
func (s *service) UpdateColumnColor(ctx context.Context, id, color string) error {
	if id == "" {
		return ErrInvalidColumnID
	}
	color = strings.TrimSpace(color)
	if utf8.RuneCountInString(color) > maxColorLength {
		return ErrColorTooLong
	}

	if err := s.repo.UpdateColumnColor(ctx, id, color); err != nil {
		return s.mapNotFound(err)
	}

	s.publishColumnEvent(id)
	return nil
}

// UpdateColumnPosition moves a column to a 1-based display position.
// The first column implying a status holds its clients, so reordering two
// columns for the same status changes which one the next repair drains.
func (s *service) UpdateColumnPosition(ctx context.Context, id string, position int) error {
	if id == "" {
		return ErrInvalidColumnID
	}
	if position < 1 {
		return ErrInvalidPosition
	}

	if err := s.repo.UpdateColumnPosition(ctx, id, position); err != nil {
		return s.mapNotFound(err)
	}

	// every column may have shifted
	s.publishColumnEvent()
	return nil
}

// DeleteColumn deletes a column (business rule: must not have clients)
func (s *service) DeleteColumn(ctx context.Context, id string) error {
	if id == "" {
		return ErrInvalidColumnID
	}

	col, err := s.repo.GetColumn(ctx, id)
	if err != nil {
		return s.mapNotFound(err)
	}
	if len(col.Members) > 0 {
		return ErrColumnHasMembers
	}

	if err := s.repo.DeleteColumn(ctx, id); err != nil {
		return s.mapNotFound(err)
	}

	s.publishColumnEvent(id)
	return nil
}

func validateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrEmptyName
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return "", ErrNameTooLong
	}
	return name, nil
}

func (s *service) mapNotFound(err error) error {
	if database.IsNotFound(err) {
		return ErrColumnNotFound
	}
	return err
}

// publishColumnEvent announces a column change; no IDs means the whole board
func (s *service) publishColumnEvent(columnIDs ...string) {
	if s.eventClient == nil {
		return
	}

	if err := s.eventClient.SendEvent(events.Event{
		Type:      events.EventBoardChanged,
		Source:    events.SourceColumn,
		ColumnIDs: columnIDs,
	}); err != nil {
		slog.Warn("failed to send event for column", "column_ids", columnIDs, "error", err)
	}
}
