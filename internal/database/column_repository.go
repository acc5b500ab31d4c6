package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/thenoetrevino/nutriboard/internal/models"
)

// ColumnRepo handles all column-related database operations.
type ColumnRepo struct {
	db *sql.DB
}

const columnFields = `id, name, color, position, members`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanColumn(row rowScanner) (*models.Column, error) {
	var (
		col     models.Column
		members string
	)
	if err := row.Scan(&col.ID, &col.Name, &col.Color, &col.Position, &members); err != nil {
		return nil, err
	}
	decoded, err := decodeMembers(members)
	if err != nil {
		return nil, fmt.Errorf("column %s: %w", col.ID, err)
	}
	col.Members = decoded
	return &col, nil
}

// ListColumns retrieves all columns ordered by display position
func (r *ColumnRepo) ListColumns(ctx context.Context) ([]*models.Column, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+columnFields+` FROM board_columns ORDER BY position, created_at, id`)
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

// GetColumn retrieves a single column by ID
func (r *ColumnRepo) GetColumn(ctx context.Context, id string) (*models.Column, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+columnFields+` FROM board_columns WHERE id = ?`, id)
	col, err := scanColumn(row)
	if err != nil {
		return nil, classify(fmt.Sprintf("get column %s", id), err)
	}
	return col, nil
}

// UpdateColumnMembers writes the member list of one column row
func (r *ColumnRepo) UpdateColumnMembers(ctx context.Context, id string, members []string) error {
	encoded, err := encodeMembers(members)
	if err != nil {
		return fmt.Errorf("failed to encode members: %w", err)
	}

	result, err := r.db.ExecContext(ctx,
		`UPDATE board_columns SET members = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		encoded, id)
	if err != nil {
		return classify(fmt.Sprintf("update column %s members", id), err)
	}
	return requireAffected(result, fmt.Sprintf("update column %s members", id))
}

// CreateColumn appends a new, empty column after the last one
func (r *ColumnRepo) CreateColumn(ctx context.Context, name, color string) (*models.Column, error) {
	col := &models.Column{
		ID:      uuid.NewString(),
		Name:    name,
		Color:   color,
		Members: []string{},
	}

	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := tx.QueryRowContext(ctx,
			`SELECT COALESCE(MAX(position), 0) + 1 FROM board_columns`).Scan(&col.Position); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO board_columns (id, name, color, position, members) VALUES (?, ?, ?, ?, '[]')`,
			col.ID, col.Name, col.Color, col.Position)
		return err
	})
	if err != nil {
		return nil, classify("create column", err)
	}
	return col, nil
}

// RenameColumn changes a column's display name
func (r *ColumnRepo) RenameColumn(ctx context.Context, id, name string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE board_columns SET name = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, name, id)
	if err != nil {
		return classify(fmt.Sprintf("rename column %s", id), err)
	}
	return requireAffected(result, fmt.Sprintf("rename column %s", id))
}

// UpdateColumnColor changes a column's display color
func (r *ColumnRepo) UpdateColumnColor(ctx context.Context, id, color string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE board_columns SET color = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, color, id)
	if err != nil {
		return classify(fmt.Sprintf("update column %s color", id), err)
	}
	return requireAffected(result, fmt.Sprintf("update column %s color", id))
}

// UpdateColumnPosition moves a column to a 1-based display position and
// renumbers the whole board 1..n in one transaction
func (r *ColumnRepo) UpdateColumnPosition(ctx context.Context, id string, position int) error {
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx,
			`SELECT id FROM board_columns ORDER BY position, created_at, id`)
		if err != nil {
			return err
		}
		var ids []string
		for rows.Next() {
			var colID string
			if err := rows.Scan(&colID); err != nil {
				_ = rows.Close()
				return err
			}
			ids = append(ids, colID)
		}
		if err := rows.Close(); err != nil {
			return err
		}
		if err := rows.Err(); err != nil {
			return err
		}

		order, ok := ReorderIDs(ids, id, position)
		if !ok {
			return ErrNotFound
		}
		for i, colID := range order {
			if _, err := tx.ExecContext(ctx,
				`UPDATE board_columns SET position = ? WHERE id = ?`, i+1, colID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return classify(fmt.Sprintf("update column %s position", id), err)
	}
	return nil
}

// DeleteColumn removes a column row
func (r *ColumnRepo) DeleteColumn(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM board_columns WHERE id = ?`, id)
	if err != nil {
		return classify(fmt.Sprintf("delete column %s", id), err)
	}
	return requireAffected(result, fmt.Sprintf("delete column %s", id))
}

// requireAffected turns a zero-row update into ErrNotFound
func requireAffected(result sql.Result, op string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return classify(op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}
