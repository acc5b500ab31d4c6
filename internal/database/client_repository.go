package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/thenoetrevino/nutriboard/internal/models"
)

// ClientRepo handles client reads and status writes.
type ClientRepo struct {
	db *sql.DB
}

// ListClients retrieves every client ordered by name
func (r *ClientRepo) ListClients(ctx context.Context) ([]*models.Client, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, status, created_at, updated_at FROM clients ORDER BY name, id`)
	if err != nil {
		return nil, classify("list clients", err)
	}
	defer rows.Close()

	var clients []*models.Client
	for rows.Next() {
		var c models.Client
		if err := rows.Scan(&c.ID, &c.Name, &c.Status, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, classify("list clients", err)
		}
		clients = append(clients, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("list clients", err)
	}
	return clients, nil
}

// GetClient retrieves a single client by ID
func (r *ClientRepo) GetClient(ctx context.Context, id string) (*models.Client, error) {
	var c models.Client
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, status, created_at, updated_at FROM clients WHERE id = ?`, id,
	).Scan(&c.ID, &c.Name, &c.Status, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, classify(fmt.Sprintf("get client %s", id), err)
	}
	return &c, nil
}

// UpdateClientStatus sets the status field of one client row
func (r *ClientRepo) UpdateClientStatus(ctx context.Context, id string, status models.Status) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE clients SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		string(status), id)
	if err != nil {
		return classify(fmt.Sprintf("update client %s status", id), err)
	}
	return requireAffected(result, fmt.Sprintf("update client %s status", id))
}

// CreateClient inserts a new client record
func (r *ClientRepo) CreateClient(ctx context.Context, name string, status models.Status) (*models.Client, error) {
	now := time.Now().UTC()
	c := &models.Client{
		ID:        uuid.NewString(),
		Name:      name,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO clients (id, name, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		c.ID, c.Name, string(c.Status), c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return nil, classify("create client", err)
	}
	return c, nil
}
