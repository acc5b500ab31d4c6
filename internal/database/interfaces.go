// Package database defines the store accessors the board engine depends on
// and a SQLite implementation of them.
package database

import (
	"context"

	"github.com/thenoetrevino/nutriboard/internal/models"
)

// ColumnReader defines read operations for columns.
type ColumnReader interface {
	// ListColumns returns every column in display order.
	ListColumns(ctx context.Context) ([]*models.Column, error)
	// GetColumn returns a single column; ErrNotFound if it does not exist.
	GetColumn(ctx context.Context, id string) (*models.Column, error)
}

// ColumnWriter defines write operations for columns.
type ColumnWriter interface {
	// UpdateColumnMembers replaces the member list of a single column row.
	UpdateColumnMembers(ctx context.Context, id string, members []string) error
	CreateColumn(ctx context.Context, name, color string) (*models.Column, error)
	RenameColumn(ctx context.Context, id, name string) error
	UpdateColumnColor(ctx context.Context, id, color string) error
	// UpdateColumnPosition moves a column to a 1-based display position,
	// shifting the columns between its old and new place.
	UpdateColumnPosition(ctx context.Context, id string, position int) error
	DeleteColumn(ctx context.Context, id string) error
}

// ColumnRepository combines all column-related operations.
type ColumnRepository interface {
	ColumnReader
	ColumnWriter
}

// ClientReader defines read operations for clients.
type ClientReader interface {
	ListClients(ctx context.Context) ([]*models.Client, error)
	GetClient(ctx context.Context, id string) (*models.Client, error)
}

// ClientWriter defines write operations for clients.
type ClientWriter interface {
	UpdateClientStatus(ctx context.Context, id string, status models.Status) error
	CreateClient(ctx context.Context, name string, status models.Status) (*models.Client, error)
}

// ClientRepository combines all client-related operations.
type ClientRepository interface {
	ClientReader
	ClientWriter
}
