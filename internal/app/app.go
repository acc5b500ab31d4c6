// Package app wires the store, the event publisher and the services into
// one container shared by the CLI and the daemon.
package app

import (
	"context"
	"errors"
	"io"

	"github.com/thenoetrevino/nutriboard/internal/daemon"
	"github.com/thenoetrevino/nutriboard/internal/database"
	"github.com/thenoetrevino/nutriboard/internal/events"
	boardservice "github.com/thenoetrevino/nutriboard/internal/services/board"
	clientservice "github.com/thenoetrevino/nutriboard/internal/services/client"
	columnservice "github.com/thenoetrevino/nutriboard/internal/services/column"
)

// App holds all application services and provides dependency injection.
type App struct {
	// Repository layer (direct database access)
	store database.DataStore

	// Event system for live updates
	eventClient events.EventPublisher

	// Service layer (business logic)
	BoardService  boardservice.Service
	ColumnService columnservice.Service
	ClientService clientservice.Service
}

// New creates a new App with all services initialized.
// The App takes ownership of store and, if set, the event publisher:
// Close releases both.
func New(store database.DataStore, opts ...Option) *App {
	cfg := &appConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	return &App{
		store:         store,
		eventClient:   cfg.eventClient,
		BoardService:  boardservice.NewService(store, cfg.eventClient),
		ColumnService: columnservice.NewService(store, cfg.eventClient),
		ClientService: clientservice.NewService(store, cfg.eventClient),
	}
}

// Store returns the underlying data store for direct access.
func (a *App) Store() database.DataStore {
	return a.store
}

// RepairJob runs the board repair pass as the daemon's interval job
func (a *App) RepairJob() daemon.RepairFunc {
	return func(ctx context.Context) (daemon.RepairReport, error) {
		result, err := a.BoardService.Repair(ctx)
		if err != nil {
			return daemon.RepairReport{}, err
		}
		return daemon.RepairReport{
			ColumnIDs: result.Columns,
			Failures:  len(result.Failures),
		}, nil
	}
}

// Close releases the event publisher and the store.
func (a *App) Close() error {
	var errs []error
	if a.eventClient != nil {
		if err := a.eventClient.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if closer, ok := a.store.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
