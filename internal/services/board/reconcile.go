package board

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sort"

	"github.com/thenoetrevino/nutriboard/internal/events"
	"github.com/thenoetrevino/nutriboard/internal/models"
)

// ClientChange describes what a repair pass did (or would do) to one client
type ClientChange struct {
	ClientID    string   `json:"client_id"`
	AddedTo     string   `json:"added_to,omitempty"`
	RemovedFrom []string `json:"removed_from,omitempty"`
}

// Plan is the set of membership edits that restores uniqueness and coverage
// for one snapshot of clients and columns. Computing it has no side effects.
type Plan struct {
	// Removals maps column ID to the client IDs to drop from it
	Removals map[string][]string
	// Additions maps column ID to the client IDs to append to it
	Additions map[string][]string
	// Collapse marks status columns that list the same client more than once
	Collapse map[string]bool

	columnOrder []string
	designated  map[models.Status]string
	implied     map[string]models.Status
}

func newPlan() *Plan {
	return &Plan{
		Removals:   make(map[string][]string),
		Additions:  make(map[string][]string),
		Collapse:   make(map[string]bool),
		designated: make(map[models.Status]string),
		implied:    make(map[string]models.Status),
	}
}

// Empty reports whether the snapshot already satisfies the invariants
func (p *Plan) Empty() bool {
	return len(p.Removals) == 0 && len(p.Additions) == 0 && len(p.Collapse) == 0
}

// Touches reports whether the plan edits the given column
func (p *Plan) Touches(columnID string) bool {
	return len(p.Removals[columnID]) > 0 || len(p.Additions[columnID]) > 0 || p.Collapse[columnID]
}

// DesignatedColumn returns the column that clients with the given status belong to
func (p *Plan) DesignatedColumn(status models.Status) (string, bool) {
	id, ok := p.designated[status]
	return id, ok
}

// Changes summarizes the plan per client, sorted by client ID
func (p *Plan) Changes() []ClientChange {
	return p.changesFor(func(string) bool { return true })
}

func (p *Plan) changesFor(include func(columnID string) bool) []ClientChange {
	byClient := make(map[string]*ClientChange)
	get := func(id string) *ClientChange {
		c, ok := byClient[id]
		if !ok {
			c = &ClientChange{ClientID: id}
			byClient[id] = c
		}
		return c
	}

	for _, columnID := range p.columnOrder {
		if !include(columnID) {
			continue
		}
		for _, clientID := range p.Removals[columnID] {
			c := get(clientID)
			c.RemovedFrom = append(c.RemovedFrom, columnID)
		}
		for _, clientID := range p.Additions[columnID] {
			get(clientID).AddedTo = columnID
		}
	}

	out := make([]ClientChange, 0, len(byClient))
	for _, c := range byClient {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ClientID < out[j].ClientID })
	return out
}

// Project returns copies of the columns with the plan applied
func (p *Plan) Project(columns []*models.Column) []*models.Column {
	out := make([]*models.Column, len(columns))
	for i, col := range columns {
		cp := col.Clone()
		if p.Touches(col.ID) {
			_, isStatus := p.implied[col.ID]
			cp.Members = patchMembers(col.Members, p.Removals[col.ID], p.Additions[col.ID], isStatus)
		}
		out[i] = cp
	}
	return out
}

// PlanReconcile computes the membership edits for one snapshot.
//
// The first column (in the given order) implying a status is that status's
// designated column; later ones are legacy duplicates to drain. A member of a
// status column is removed when the column is not the designated column for
// the member's status. Members with no designated column (custom status,
// unknown client, or no column for their status) keep only their first
// status-column occurrence. Finally every client with a designated column is
// appended to it if absent. Custom columns are never edited.
func PlanReconcile(clients []*models.Client, columns []*models.Column) *Plan {
	p := newPlan()

	byID := make(map[string]*models.Column, len(columns))
	for _, col := range columns {
		byID[col.ID] = col
		p.columnOrder = append(p.columnOrder, col.ID)

		status, ok := MapColumnToStatus(col.Name)
		if !ok {
			continue
		}
		p.implied[col.ID] = status
		if _, seen := p.designated[status]; !seen {
			p.designated[status] = col.ID
		}
	}

	statusOf := make(map[string]models.Status, len(clients))
	for _, c := range clients {
		statusOf[c.ID] = c.Status.Canonical()
	}

	target := func(clientID string) (string, bool) {
		status, known := statusOf[clientID]
		if !known || status == "" {
			return "", false
		}
		id, ok := p.designated[status]
		return id, ok
	}

	// duplicates across status columns
	firstSeen := make(map[string]string)
	for _, col := range columns {
		if _, ok := p.implied[col.ID]; !ok {
			continue
		}
		inColumn := make(map[string]bool, len(col.Members))
		for _, member := range col.Members {
			if inColumn[member] {
				p.Collapse[col.ID] = true
				continue
			}
			inColumn[member] = true

			if want, ok := target(member); ok {
				if want != col.ID {
					p.Removals[col.ID] = append(p.Removals[col.ID], member)
				}
				continue
			}
			if first, ok := firstSeen[member]; ok && first != col.ID {
				p.Removals[col.ID] = append(p.Removals[col.ID], member)
				continue
			}
			firstSeen[member] = col.ID
		}
	}

	// coverage
	for _, c := range clients {
		want, ok := target(c.ID)
		if !ok {
			continue
		}
		col := byID[want]
		if col.HasMember(c.ID) || slices.Contains(p.Additions[want], c.ID) {
			continue
		}
		p.Additions[want] = append(p.Additions[want], c.ID)
	}

	return p
}

// patchMembers applies removals and additions to a member list.
// Additions already present are skipped. When collapse is set, repeated
// entries are reduced to their first occurrence.
func patchMembers(members, removals, additions []string, collapse bool) []string {
	drop := make(map[string]bool, len(removals))
	for _, id := range removals {
		drop[id] = true
	}

	out := make([]string, 0, len(members)+len(additions))
	present := make(map[string]bool, len(members)+len(additions))
	for _, id := range members {
		if drop[id] {
			continue
		}
		if collapse && present[id] {
			continue
		}
		present[id] = true
		out = append(out, id)
	}
	for _, id := range additions {
		if present[id] {
			continue
		}
		present[id] = true
		out = append(out, id)
	}
	return out
}

// ColumnFailure records a column whose write failed during a repair pass
type ColumnFailure struct {
	ColumnID string `json:"column_id"`
	Op       string `json:"op"`
	Err      error  `json:"-"`
}

// Error returns the failure message (for JSON output)
func (f ColumnFailure) Error() string {
	if f.Err == nil {
		return f.Op
	}
	return f.Op + " " + f.ColumnID + ": " + f.Err.Error()
}

func (f ColumnFailure) Unwrap() error {
	return f.Err
}

// ReconcileResult reports the outcome of a repair pass
type ReconcileResult struct {
	Changes        []ClientChange  `json:"changes"`
	Added          int             `json:"added"`
	Removed        int             `json:"removed"`
	ColumnsWritten int             `json:"columns_written"`
	// Columns lists the written column IDs in display order
	Columns        []string        `json:"columns,omitempty"`
	Failures       []ColumnFailure `json:"failures,omitempty"`
}

// Failed reports whether any column write failed
func (r *ReconcileResult) Failed() bool {
	return len(r.Failures) > 0
}

// Err joins the per-column failures, or returns nil
func (r *ReconcileResult) Err() error {
	if len(r.Failures) == 0 {
		return nil
	}
	errs := make([]error, len(r.Failures))
	for i, f := range r.Failures {
		errs[i] = f
	}
	return errors.Join(errs...)
}

// Reconcile brings column membership in line with client statuses.
//
// Only columns whose members change are written. Each write re-reads the
// column and applies this pass's removals and additions to the fresh list,
// so concurrent edits by other sessions are not clobbered. Changes and the
// counts cover written columns only; a column whose fresh read already
// matched the plan is not reported. A failed write is
// recorded and logged; the remaining columns are still processed. The
// returned error is non-nil only if ctx is cancelled mid-pass.
func (s *service) Reconcile(ctx context.Context, clients []*models.Client, columns []*models.Column) (*ReconcileResult, error) {
	plan := PlanReconcile(clients, columns)
	result := &ReconcileResult{Changes: []ClientChange{}}
	if plan.Empty() {
		return result, nil
	}

	done := make(map[string]bool)
	for _, col := range columns {
		if !plan.Touches(col.ID) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return s.finishReconcile(ctx, plan, result, done), err
		}

		_, isStatus := plan.implied[col.ID]
		wrote, err := s.patchColumn(ctx, col.ID, plan.Removals[col.ID], plan.Additions[col.ID], isStatus)
		if err != nil {
			slog.Warn("reconcile: column write failed",
				"column_id", col.ID,
				"column", col.Name,
				"op", "update members",
				"error", err)
			result.Failures = append(result.Failures, ColumnFailure{ColumnID: col.ID, Op: "update members", Err: err})
			continue
		}
		// a fresh read that already matched the plan was changed by someone else
		if wrote {
			done[col.ID] = true
			result.ColumnsWritten++
			result.Columns = append(result.Columns, col.ID)
		}
	}

	return s.finishReconcile(ctx, plan, result, done), nil
}

// finishReconcile fills in the per-client report for the columns that were
// processed successfully and publishes a board change when anything was written
func (s *service) finishReconcile(ctx context.Context, plan *Plan, result *ReconcileResult, done map[string]bool) *ReconcileResult {
	include := func(columnID string) bool { return done[columnID] }

	result.Changes = plan.changesFor(include)
	for _, c := range result.Changes {
		result.Removed += len(c.RemovedFrom)
		if c.AddedTo != "" {
			result.Added++
		}
	}

	if result.ColumnsWritten > 0 {
		s.publishBoardEvent(ctx, events.SourceReconcile, "", result.Columns)
	}

	if result.Failed() {
		slog.Warn("reconcile finished with failures",
			"columns_written", result.ColumnsWritten,
			"columns_failed", len(result.Failures))
	} else {
		slog.Debug("reconcile finished",
			"added", result.Added,
			"removed", result.Removed,
			"columns_written", result.ColumnsWritten)
	}
	return result
}
