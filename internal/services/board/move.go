package board

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/thenoetrevino/nutriboard/internal/database"
	"github.com/thenoetrevino/nutriboard/internal/events"
	"github.com/thenoetrevino/nutriboard/internal/models"
)

// Phase is the step a move reached
type Phase string

const (
	PhaseRemoving       Phase = "removing"
	PhaseStatusUpdating Phase = "status_updating"
	PhaseInserting      Phase = "inserting"
	PhaseVerifying      Phase = "verifying"
	PhaseSettled        Phase = "settled"
	PhaseFailed         Phase = "failed"
)

// MoveResult reports what a move did. It is returned even when the move
// fails so callers can see how far it got.
type MoveResult struct {
	Success       bool            `json:"success"`
	ClientID      string          `json:"client_id"`
	ColumnID      string          `json:"column_id"`
	Status        models.Status   `json:"status,omitempty"`
	StatusChanged bool            `json:"status_changed"`
	Inserted      bool            `json:"inserted"`
	RemovedFrom   []string        `json:"removed_from,omitempty"`
	Failures      []ColumnFailure `json:"failures,omitempty"`
	Phase         Phase           `json:"phase"`
	// FailedIn is the phase that was running when the move failed
	FailedIn Phase `json:"failed_in,omitempty"`
}

func (r *MoveResult) fail(err error) (*MoveResult, error) {
	r.FailedIn = r.Phase
	r.Phase = PhaseFailed
	return r, err
}

// Move places a client in the target column.
//
// The client is removed from every other column, its status is set to the
// target's implied status (before insertion, so a failed status write never
// leaves the client shown in a column that disagrees with it), it is
// appended to the target if absent, and the target is re-read to verify.
// Failed removals are recorded but do not stop the move. A failed status
// update does. Already-applied removals are never rolled back; the next
// repair pass converges any partial state. Moving a client to the column it
// already occupies is a no-op. A target deleted mid-move fails with
// ErrColumnNotFound.
func (s *service) Move(ctx context.Context, clientID, columnID string) (*MoveResult, error) {
	if clientID == "" {
		return nil, ErrInvalidClientID
	}
	if columnID == "" {
		return nil, ErrInvalidColumnID
	}

	result := &MoveResult{ClientID: clientID, ColumnID: columnID, Phase: PhaseRemoving}

	columns, err := s.store.ListColumns(ctx)
	if err != nil {
		return result.fail(fmt.Errorf("failed to list columns: %w", err))
	}
	var target *models.Column
	for _, col := range columns {
		if col.ID == columnID {
			target = col
			break
		}
	}
	if target == nil {
		return result.fail(ErrColumnNotFound)
	}

	client, err := s.store.GetClient(ctx, clientID)
	if err != nil {
		if database.IsNotFound(err) {
			return result.fail(ErrClientNotFound)
		}
		return result.fail(fmt.Errorf("failed to get client: %w", err))
	}

	// removal
	var touched []string
	for _, col := range columns {
		if col.ID == target.ID || !col.HasMember(clientID) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return result.fail(err)
		}
		wrote, err := s.patchColumn(ctx, col.ID, []string{clientID}, nil, false)
		if err != nil {
			slog.Warn("move: failed to remove client from column",
				"client_id", clientID,
				"column_id", col.ID,
				"op", "remove member",
				"error", err)
			result.Failures = append(result.Failures, ColumnFailure{ColumnID: col.ID, Op: "remove member", Err: err})
			continue
		}
		if wrote {
			result.RemovedFrom = append(result.RemovedFrom, col.ID)
			touched = append(touched, col.ID)
		}
	}

	// status
	result.Phase = PhaseStatusUpdating
	result.Status = client.Status
	if status, ok := MapColumnToStatus(target.Name); ok {
		if err := ctx.Err(); err != nil {
			return s.failMove(ctx, result, touched, err)
		}
		if client.Status != status {
			if err := s.store.UpdateClientStatus(ctx, clientID, status); err != nil {
				slog.Error("move: failed to update client status",
					"client_id", clientID,
					"status", status,
					"op", "update status",
					"error", err)
				return s.failMove(ctx, result, touched, fmt.Errorf("%w: %w", ErrStatusUpdateFailed, err))
			}
			result.StatusChanged = true
		}
		result.Status = status
	}

	// insertion
	result.Phase = PhaseInserting
	if err := ctx.Err(); err != nil {
		return s.failMove(ctx, result, touched, err)
	}
	inserted, err := s.patchColumn(ctx, target.ID, nil, []string{clientID}, false)
	if database.IsNotFound(err) {
		return s.failMove(ctx, result, touched, ErrColumnNotFound)
	}
	if err != nil {
		slog.Warn("move: failed to insert client into column",
			"client_id", clientID,
			"column_id", target.ID,
			"op", "insert member",
			"error", err)
		result.Failures = append(result.Failures, ColumnFailure{ColumnID: target.ID, Op: "insert member", Err: err})
	}
	if inserted {
		result.Inserted = true
		touched = append(touched, target.ID)
	}

	// verification
	result.Phase = PhaseVerifying
	fresh, err := s.store.GetColumn(ctx, target.ID)
	if database.IsNotFound(err) {
		return s.failMove(ctx, result, touched, ErrColumnNotFound)
	}
	if err != nil {
		return s.failMove(ctx, result, touched, fmt.Errorf("failed to verify column: %w", err))
	}
	if !fresh.HasMember(clientID) {
		return s.failMove(ctx, result, touched, ErrVerificationFailed)
	}

	result.Phase = PhaseSettled
	result.Success = true
	if len(touched) > 0 || result.StatusChanged {
		s.publishBoardEvent(ctx, events.SourceMove, clientID, touched)
	}
	return result, nil
}

// failMove publishes whatever was already written, then marks the result failed
func (s *service) failMove(ctx context.Context, result *MoveResult, touched []string, err error) (*MoveResult, error) {
	if len(touched) > 0 || result.StatusChanged {
		s.publishBoardEvent(ctx, events.SourceMove, result.ClientID, touched)
	}
	if !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		slog.Warn("move failed",
			"client_id", result.ClientID,
			"column_id", result.ColumnID,
			"phase", result.Phase,
			"error", err)
	}
	return result.fail(err)
}
