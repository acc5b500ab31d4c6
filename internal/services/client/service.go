package client

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

const maxNameLength = 100

// Service defines client record operations.
// Status edits made here do not touch the board; the next repair pass
// places the client in the column matching its new status.
type Service interface {
	ListClients(ctx context.Context) ([]*models.Client, error)
	GetClient(ctx context.Context, id string) (*models.Client, error)
	CreateClient(ctx context.Context, req CreateClientRequest) (*models.Client, error)
	UpdateStatus(ctx context.Context, id string, status string) (models.Status, error)
}

// CreateClientRequest encapsulates data for creating a client
type CreateClientRequest struct {
	Name   string
	Status string // Defaults to active
}

type service struct {
	repo        database.ClientRepository
	eventClient events.EventPublisher
}

// NewService creates a new client service
func NewService(repo database.ClientRepository, eventClient events.EventPublisher) Service {
	return &service{
		repo:        repo,
		eventClient: eventClient,
	}
}

// ListClients retrieves all clients sorted by name
func (s *service) ListClients(ctx context.Context) ([]*models.Client, error) {
	clients, err := s.repo.ListClients(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	return clients, nil
}

// GetClient retrieves a specific client
func (s *service) GetClient(ctx context.Context, id string) (*models.Client, error) {
	if id == "" {
		return nil, ErrInvalidClientID
	}
	c, err := s.repo.GetClient(ctx, id)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, ErrClientNotFound
		}
		return nil, fmt.Errorf("failed to get client: %w", err)
	}
	return c, nil
}

// CreateClient registers a new client
func (s *service) CreateClient(ctx context.Context, req CreateClientRequest) (*models.Client, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrEmptyName
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return nil, ErrNameTooLong
	}

	status := models.StatusActive
	if strings.TrimSpace(req.Status) != "" {
		status, _ = models.ParseStatus(req.Status)
	}

	c, err := s.repo.CreateClient(ctx, name, status)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	s.publishClientEvent(c.ID)
	return c, nil
}

// UpdateStatus sets a client's status. Recognized values (including legacy
// ones) are stored in canonical form; anything else is stored as a custom
// status that implies no column. It returns the stored value.
func (s *service) UpdateStatus(ctx context.Context, id string, raw string) (models.Status, error) {
	if id == "" {
		return "", ErrInvalidClientID
	}
	if strings.TrimSpace(raw) == "" {
		return "", ErrEmptyStatus
	}

	status, _ := models.ParseStatus(raw)
	if err := s.repo.UpdateClientStatus(ctx, id, status); err != nil {
		if database.IsNotFound(err) {
			return "", ErrClientNotFound
		}
		return "", fmt.Errorf("failed to update client status: %w", err)
	}

	s.publishClientEvent(id)
	return status, nil
}

func (s *service) publishClientEvent(clientID string) {
	if s.eventClient == nil {
		return
	}

	if err := s.eventClient.SendEvent(events.Event{
		Type:     events.EventBoardChanged,
		Source:   events.SourceClient,
		ClientID: clientID,
	}); err != nil {
		slog.Warn("failed to send event for client", "client_id", clientID, "error", err)
	}
}
