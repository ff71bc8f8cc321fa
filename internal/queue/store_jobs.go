package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Insert records a new job. CreatedAt and UpdatedAt default to now.
func (s *Store) Insert(ctx context.Context, job *Job) error {
	if job == nil {
		return errors.New("job is nil")
	}
	if strings.TrimSpace(job.ID) == "" {
		return errors.New("job id is required")
	}
	now := time.Now().UTC()
	if job.CreatedAt.IsZero() {
		job.CreatedAt = now
	}
	job.UpdatedAt = now
	if job.Status == "" {
		job.Status = StatusPending
	}

	if err := s.execWithoutResultRetry(
		ctx,
		`INSERT INTO jobs (`+jobColumns+`) VALUES (`+placeholders(15)+`)`,
		job.ID,
		job.SearchTerm,
		job.Count,
		job.ClipSeconds,
		orNull(job.Recipient),
		orNull(job.OutputPath),
		job.Status,
		job.ProgressPercent,
		orNull(job.ProgressMessage),
		orNull(job.ErrorMessage),
		orNull(job.ErrorKind),
		flag(job.Emailed),
		stamp(job.CreatedAt),
		stamp(job.UpdatedAt),
		stampOrNull(job.FinishedAt),
	); err != nil {
		return fmt.Errorf("insert job: %w", err)
	}
	return nil
}

// Update persists the mutable fields of an existing job.
func (s *Store) Update(ctx context.Context, job *Job) error {
	if job == nil {
		return errors.New("job is nil")
	}
	job.UpdatedAt = time.Now().UTC()
	if job.Status.IsTerminal() && job.FinishedAt == nil {
		finished := job.UpdatedAt
		job.FinishedAt = &finished
	}

	res, err := s.execWithRetry(
		ctx,
		`UPDATE jobs
         SET output_path = ?, status = ?, progress_percent = ?, progress_message = ?,
             error_message = ?, error_kind = ?, emailed = ?, updated_at = ?, finished_at = ?
         WHERE id = ?`,
		orNull(job.OutputPath),
		job.Status,
		job.ProgressPercent,
		orNull(job.ProgressMessage),
		orNull(job.ErrorMessage),
		orNull(job.ErrorKind),
		flag(job.Emailed),
		stamp(job.UpdatedAt),
		stampOrNull(job.FinishedAt),
		job.ID,
	)
	if err != nil {
		return fmt.Errorf("update job: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("update job %s: %w", job.ID, sql.ErrNoRows)
	}
	return nil
}

// Get fetches a job by identifier. A missing job yields (nil, nil).
func (s *Store) Get(ctx context.Context, id string) (*Job, error) {
	row := s.db.QueryRowContext(ensureContext(ctx), `SELECT `+jobColumns+` FROM jobs WHERE id = ?`, id)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	return job, nil
}

// List returns jobs newest first, optionally filtered by status.
func (s *Store) List(ctx context.Context, statuses ...Status) ([]*Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs`
	args := make([]any, 0, len(statuses))
	if len(statuses) > 0 {
		query += ` WHERE status IN (` + placeholders(len(statuses)) + `)`
		for _, status := range statuses {
			args = append(args, status)
		}
	}
	query += ` ORDER BY created_at DESC, id`

	rows, err := s.db.QueryContext(ensureContext(ctx), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

// Stats returns a count of jobs grouped by status.
func (s *Store) Stats(ctx context.Context) (map[Status]int, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx), `SELECT status, COUNT(1) FROM jobs GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("job stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[Status]int)
	for rows.Next() {
		var status Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats[status] = count
	}
	return stats, rows.Err()
}
