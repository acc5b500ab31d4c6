package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
)

// withTx executes a function within a database transaction.
// It automatically handles begin, rollback on error, and commit on success.
func withTx(ctx context.Context, db *sql.DB, fn func(*sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && err != sql.ErrTxDone {
			slog.Error("failed to rollback transaction", "error", err)
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// encodeMembers serializes a member list for the members TEXT column.
// A nil list is stored as "[]" so reads never see null.
func encodeMembers(members []string) (string, error) {
	if members == nil {
		members = []string{}
	}
	b, err := json.Marshal(members)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// decodeMembers parses the members TEXT column
func decodeMembers(raw string) ([]string, error) {
	if raw == "" {
		return []string{}, nil
	}
	var members []string
	if err := json.Unmarshal([]byte(raw), &members); err != nil {
		return nil, fmt.Errorf("malformed members list: %w", err)
	}
	if members == nil {
		members = []string{}
	}
	return members, nil
}

// ReorderIDs moves id to the 1-based position within ids, shifting the
// others. Positions past either end are clamped. It reports false when id
// is not in ids.
func ReorderIDs(ids []string, id string, position int) ([]string, bool) {
	from := slices.Index(ids, id)
	if from < 0 {
		return nil, false
	}
	rest := slices.Delete(slices.Clone(ids), from, from+1)
	at := min(max(position, 1), len(rest)+1) - 1
	return slices.Insert(rest, at, id), true
}
