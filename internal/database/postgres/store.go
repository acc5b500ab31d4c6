// Package postgres implements the board accessors on a remote PostgreSQL
// database, the hosted store shared by every coaching session.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/thenoetrevino/nutriboard/internal/database"
	"github.com/thenoetrevino/nutriboard/internal/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS clients (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	status TEXT NOT NULL DEFAULT 'active',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS board_columns (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	color TEXT NOT NULL DEFAULT '',
	position INTEGER NOT NULL DEFAULT 0,
	members TEXT[] NOT NULL DEFAULT '{}',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

// Store implements database.DataStore using PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

// Compile-time verification that *Store implements DataStore
var _ database.DataStore = (*Store)(nil)

// Open connects to the database at dsn and applies the schema.
func Open(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	s := NewStore(pool)
	if err := s.Migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// NewStore creates a new Store backed by the given connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Migrate creates the tables and seeds the default columns when none exist.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	var count int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM board_columns`).Scan(&count); err != nil {
		return fmt.Errorf("failed to count columns: %w", err)
	}
	if count > 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for i, col := range database.DefaultColumns {
		batch.Queue(`INSERT INTO board_columns (id, name, color, position) VALUES ($1, $2, $3, $4)`,
			uuid.NewString(), col.Name, col.Color, i+1)
	}
	if err := s.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to seed default columns: %w", err)
	}
	return nil
}

// Close releases the pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// classify maps pgx errors onto the store error taxonomy.
func classify(op string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, database.ErrNotFound)
	}
	return database.Classify(op, err)
}

// --- Columns ---

func scanColumn(row pgx.Row) (*models.Column, error) {
	var col models.Column
	if err := row.Scan(&col.ID, &col.Name, &col.Color, &col.Position, &col.Members); err != nil {
		return nil, err
	}
	if col.Members == nil {
		col.Members = []string{}
	}
	return &col, nil
}

func (s *Store) ListColumns(ctx context.Context) ([]*models.Column, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, color, position, members FROM board_columns ORDER BY position, created_at, id`)
	if err != nil {
		return nil, classify("list columns", err)
	}
	defer rows.Close()

	var columns []*models.Column
	for rows.Next() {
		col, err := scanColumn(rows)
		if err != nil {
			return nil, classify("list columns", err)
		}
		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("list columns", err)
	}
	return columns, nil
}

func (s *Store) GetColumn(ctx context.Context, id string) (*models.Column, error) {
	col, err := scanColumn(s.pool.QueryRow(ctx,
		`SELECT id, name, color, position, members FROM board_columns WHERE id = $1`, id))
	if err != nil {
		return nil, classify(fmt.Sprintf("get column %s", id), err)
	}
	return col, nil
}

func (s *Store) UpdateColumnMembers(ctx context.Context, id string, members []string) error {
	if members == nil {
		members = []string{}
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE board_columns SET members = $2, updated_at = NOW() WHERE id = $1`, id, members)
	if err != nil {
		return classify(fmt.Sprintf("update column %s members", id), err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update column %s members: %w", id, database.ErrNotFound)
	}
	return nil
}

func (s *Store) CreateColumn(ctx context.Context, name, color string) (*models.Column, error) {
	col := &models.Column{ID: uuid.NewString(), Name: name, Color: color, Members: []string{}}
	err := s.pool.QueryRow(ctx,
		`INSERT INTO board_columns (id, name, color, position)
		 VALUES ($1, $2, $3, (SELECT COALESCE(MAX(position), 0) + 1 FROM board_columns))
		 RETURNING position`,
		col.ID, col.Name, col.Color).Scan(&col.Position)
	if err != nil {
		return nil, classify("create column", err)
	}
	return col, nil
}

func (s *Store) RenameColumn(ctx context.Context, id, name string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE board_columns SET name = $2, updated_at = NOW() WHERE id = $1`, id, name)
	if err != nil {
		return classify(fmt.Sprintf("rename column %s", id), err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("rename column %s: %w", id, database.ErrNotFound)
	}
	return nil
}

func (s *Store) UpdateColumnColor(ctx context.Context, id, color string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE board_columns SET color = $2, updated_at = NOW() WHERE id = $1`, id, color)
	if err != nil {
		return classify(fmt.Sprintf("update column %s color", id), err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update column %s color: %w", id, database.ErrNotFound)
	}
	return nil
}

func (s *Store) UpdateColumnPosition(ctx context.Context, id string, position int) error {
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx,
			`SELECT id FROM board_columns ORDER BY position, created_at, id FOR UPDATE`)
		if err != nil {
			return err
		}
		ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
		if err != nil {
			return err
		}

		order, ok := database.ReorderIDs(ids, id, position)
		if !ok {
			return database.ErrNotFound
		}
		batch := &pgx.Batch{}
		for i, colID := range order {
			batch.Queue(`UPDATE board_columns SET position = $2 WHERE id = $1`, colID, i+1)
		}
		return tx.SendBatch(ctx, batch).Close()
	})
	if err != nil {
		return classify(fmt.Sprintf("update column %s position", id), err)
	}
	return nil
}

func (s *Store) DeleteColumn(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM board_columns WHERE id = $1`, id)
	if err != nil {
		return classify(fmt.Sprintf("delete column %s", id), err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete column %s: %w", id, database.ErrNotFound)
	}
	return nil
}

// --- Clients ---

func scanClient(row pgx.Row) (*models.Client, error) {
	var (
		c      models.Client
		status string
	)
	if err := row.Scan(&c.ID, &c.Name, &status, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	c.Status = models.Status(status)
	return &c, nil
}

func (s *Store) ListClients(ctx context.Context) ([]*models.Client, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, status, created_at, updated_at FROM clients ORDER BY name, id`)
	if err != nil {
		return nil, classify("list clients", err)
	}
	defer rows.Close()

	var clients []*models.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, classify("list clients", err)
		}
		clients = append(clients, c)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("list clients", err)
	}
	return clients, nil
}

func (s *Store) GetClient(ctx context.Context, id string) (*models.Client, error) {
	c, err := scanClient(s.pool.QueryRow(ctx,
		`SELECT id, name, status, created_at, updated_at FROM clients WHERE id = $1`, id))
	if err != nil {
		return nil, classify(fmt.Sprintf("get client %s", id), err)
	}
	return c, nil
}

func (s *Store) UpdateClientStatus(ctx context.Context, id string, status models.Status) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE clients SET status = $2, updated_at = NOW() WHERE id = $1`, id, string(status))
	if err != nil {
		return classify(fmt.Sprintf("update client %s status", id), err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update client %s status: %w", id, database.ErrNotFound)
	}
	return nil
}

func (s *Store) CreateClient(ctx context.Context, name string, status models.Status) (*models.Client, error) {
	c := &models.Client{ID: uuid.NewString(), Name: name, Status: status}
	err := s.pool.QueryRow(ctx,
		`INSERT INTO clients (id, name, status) VALUES ($1, $2, $3) RETURNING created_at, updated_at`,
		c.ID, c.Name, string(c.Status)).Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, classify("create client", err)
	}
	return c, nil
}
