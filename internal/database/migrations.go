package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// ColumnSeed describes a column created on first use
type ColumnSeed struct {
	Name  string
	Color string
}

// DefaultColumns are created when the store holds no columns at all
var DefaultColumns = []ColumnSeed{
	{Name: "✅ Active", Color: "green"},
	{Name: "❌ Inactive", Color: "red"},
	{Name: "⏸️ Paused", Color: "yellow"},
}

const schema = `
CREATE TABLE IF NOT EXISTS clients (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	status TEXT NOT NULL DEFAULT 'active',
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS board_columns (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	color TEXT NOT NULL DEFAULT '',
	position INTEGER NOT NULL DEFAULT 0,
	members TEXT NOT NULL DEFAULT '[]',
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_board_columns_position ON board_columns(position);
CREATE INDEX IF NOT EXISTS idx_clients_status ON clients(status);
`

// RunMigrations creates the schema and seeds default columns if needed
func RunMigrations(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return seedDefaultColumns(ctx, db)
}

// seedDefaultColumns inserts default columns if the columns table is empty
func seedDefaultColumns(ctx context.Context, db *sql.DB) error {
	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM board_columns").Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	return withTx(ctx, db, func(tx *sql.Tx) error {
		for i, col := range DefaultColumns {
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO board_columns (id, name, color, position, members) VALUES (?, ?, ?, ?, '[]')",
				uuid.NewString(), col.Name, col.Color, i+1,
			); err != nil {
				return fmt.Errorf("failed to seed column %q: %w", col.Name, err)
			}
		}
		return nil
	})
}
