package queue

import (
	"context"
	"fmt"
	"time"
)

// Outcome carries the terminal fields recorded for a claimed item.
type Outcome struct {
	Status        Status
	ContentLength int64
	ChunkCount    int64
	Message       string
}

// RecordOutcome writes the terminal status and result fields for an item.
// The write is unconditional (last-write-wins) so an accidental double call
// with the same arguments is harmless; the workflow is responsible for
// calling it exactly once per claim. The worker ordinal and heartbeat are
// cleared with the same statement.
func (s *Store) RecordOutcome(ctx context.Context, id int64, outcome Outcome) error {
	ctx = ensureContext(ctx)
	if outcome.Status != StatusCompleted && outcome.Status != StatusFailed {
		return fmt.Errorf("record outcome: %q is not a terminal status", outcome.Status)
	}
	_, err := s.execWithRetry(ctx,
		`UPDATE work_items
		 SET status = ?, content_length = ?, chunk_count = ?, message = ?,
		     worker_ordinal = NULL, heartbeat_at = NULL, updated_at = ?
		 WHERE id = ?`,
		string(outcome.Status),
		outcome.ContentLength,
		outcome.ChunkCount,
		nullableString(outcome.Message),
		formatTime(time.Now()),
		id,
	)
	if err != nil {
		return fmt.Errorf("record outcome for item %d: %w", id, err)
	}
	return nil
}

// DemoteToFailed marks a specific claimed item failed, conditional on it
// still being in processing. This is the crash-recovery path: a worker that
// failed between claim and record calls it on a best-effort basis so the
// item does not stay claimed forever. Items are never demoted back to
// pending, which would invite unbounded reprocessing loops.
func (s *Store) DemoteToFailed(ctx context.Context, id int64, message string) (bool, error) {
	ctx = ensureContext(ctx)
	res, err := s.execWithRetry(ctx,
		`UPDATE work_items
		 SET status = ?, message = ?, worker_ordinal = NULL, heartbeat_at = NULL, updated_at = ?
		 WHERE id = ? AND status = ?`,
		string(StatusFailed),
		nullableString(message),
		formatTime(time.Now()),
		id,
		string(StatusProcessing),
	)
	if err != nil {
		return false, fmt.Errorf("demote item %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// ResetStuckProcessing fails every item left in processing, typically at
// daemon startup after an unclean shutdown. Returns the affected count.
func (s *Store) ResetStuckProcessing(ctx context.Context, message string) (int64, error) {
	ctx = ensureContext(ctx)
	if message == "" {
		message = "interrupted by restart"
	}
	res, err := s.execWithRetry(ctx,
		`UPDATE work_items
		 SET status = ?, message = ?, worker_ordinal = NULL, heartbeat_at = NULL, updated_at = ?
		 WHERE status = ?`,
		string(StatusFailed),
		message,
		formatTime(time.Now()),
		string(StatusProcessing),
	)
	if err != nil {
		return 0, fmt.Errorf("reset stuck processing: %w", err)
	}
	return res.RowsAffected()
}

// UpdateHeartbeat refreshes the liveness timestamp for an in-flight item.
func (s *Store) UpdateHeartbeat(ctx context.Context, id int64) error {
	now := formatTime(time.Now())
	return s.execWithoutResultRetry(ensureContext(ctx),
		"UPDATE work_items SET heartbeat_at = ? WHERE id = ? AND status = ?",
		now, id, string(StatusProcessing))
}

// ReclaimStaleProcessing fails processing items whose heartbeat is older
// than the cutoff and returns them so the caller can issue compensating
// deletes for any partially indexed data. Ownership is not tracked with a
// lease token, so staleness is a heuristic: the cutoff must comfortably
// exceed the longest legitimate stage duration.
func (s *Store) ReclaimStaleProcessing(ctx context.Context, cutoff time.Time) ([]*Item, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+itemColumns+` FROM work_items
		 WHERE status = ? AND heartbeat_at IS NOT NULL AND heartbeat_at < ?`,
		string(StatusProcessing), formatTime(cutoff))
	if err != nil {
		return nil, fmt.Errorf("select stale processing: %w", err)
	}
	defer rows.Close()

	var stale []*Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stale item: %w", err)
		}
		stale = append(stale, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var reclaimed []*Item
	for _, item := range stale {
		demoted, err := s.DemoteToFailed(ctx, item.ID, "reclaimed: heartbeat expired")
		if err != nil {
			return reclaimed, err
		}
		if demoted {
			reclaimed = append(reclaimed, item)
		}
	}
	return reclaimed, nil
}

// RetryFailed resubmits failed items as pending, clearing result fields.
// This is the explicit operator path for retries; the scheduler itself never
// retries a terminal item.
func (s *Store) RetryFailed(ctx context.Context, ids ...int64) (int64, error) {
	ctx = ensureContext(ctx)
	now := formatTime(time.Now())
	query := `UPDATE work_items
		 SET status = ?, message = NULL, content_length = 0, chunk_count = 0,
		     worker_ordinal = NULL, claimed_at = NULL, heartbeat_at = NULL, updated_at = ?
		 WHERE status = ?`
	args := []any{string(StatusPending), now, string(StatusFailed)}
	if len(ids) > 0 {
		query += " AND id IN (" + makePlaceholders(len(ids)) + ")"
		for _, id := range ids {
			args = append(args, id)
		}
	}
	res, err := s.execWithRetry(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("retry failed items: %w", err)
	}
	return res.RowsAffected()
}
