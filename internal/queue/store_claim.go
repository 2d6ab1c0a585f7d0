package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ClaimNext attempts to lease the oldest pending item in the given shard of
// the id space. It selects a candidate, then performs a conditional UPDATE
// keyed on the id still being pending; zero rows affected means another
// worker won the race, which is an empty turn rather than an error. The
// claim is durable before processing begins, so a crash afterwards is always
// recoverable through the demotion path.
//
// width must equal the worker pool size; shard must be in [0, width).
func (s *Store) ClaimNext(ctx context.Context, shard, width, ordinal int) (*Item, error) {
	ctx = ensureContext(ctx)
	if width <= 0 {
		return nil, fmt.Errorf("claim: invalid shard width %d", width)
	}
	if shard < 0 || shard >= width {
		return nil, fmt.Errorf("claim: shard %d outside [0, %d)", shard, width)
	}

	// One extra pass covers the common race where the selected candidate is
	// claimed between our SELECT and UPDATE.
	for attempt := 0; attempt < 2; attempt++ {
		var id int64
		err := s.db.QueryRowContext(ctx,
			`SELECT id FROM work_items
			 WHERE status = ? AND deleted = 0 AND (id % ?) = ?
			 ORDER BY created_at ASC, id ASC
			 LIMIT 1`,
			string(StatusPending), width, shard,
		).Scan(&id)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("select claim candidate: %w", err)
		}

		now := formatTime(time.Now())
		res, err := s.execWithRetry(ctx,
			`UPDATE work_items
			 SET status = ?, worker_ordinal = ?, claimed_at = ?, heartbeat_at = ?, updated_at = ?
			 WHERE id = ? AND status = ?`,
			string(StatusProcessing), ordinal, now, now, now,
			id, string(StatusPending),
		)
		if err != nil {
			return nil, fmt.Errorf("claim work item %d: %w", id, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("claim work item %d: %w", id, err)
		}
		if affected == 0 {
			continue
		}
		return s.GetByID(ctx, id)
	}
	return nil, nil
}
