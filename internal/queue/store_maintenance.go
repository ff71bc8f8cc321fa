package queue

import (
	"context"
	"fmt"
	"time"
)

// MarkInterrupted fails every job left pending or running by a previous
// process. Jobs are never resumed since their workspaces are gone.
func (s *Store) MarkInterrupted(ctx context.Context) (int64, error) {
	now := stamp(time.Now())
	res, err := s.execWithRetry(
		ctx,
		`UPDATE jobs
         SET status = ?, error_message = ?, error_kind = 'interrupted',
             updated_at = ?, finished_at = ?
         WHERE status IN (?, ?)`,
		StatusFailed,
		InterruptedMessage,
		now,
		now,
		StatusPending,
		StatusRunning,
	)
	if err != nil {
		return 0, fmt.Errorf("mark interrupted jobs: %w", err)
	}
	return res.RowsAffected()
}

// PruneFinished deletes terminal jobs that finished before cutoff.
func (s *Store) PruneFinished(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.execWithRetry(
		ctx,
		`DELETE FROM jobs WHERE status IN (?, ?) AND finished_at IS NOT NULL AND finished_at < ?`,
		StatusSucceeded,
		StatusFailed,
		stamp(cutoff),
	)
	if err != nil {
		return 0, fmt.Errorf("prune finished jobs: %w", err)
	}
	return res.RowsAffected()
}
