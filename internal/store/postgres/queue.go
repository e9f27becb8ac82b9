package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"clipforge/internal/store"

	"github.com/google/uuid"
)

// TakeNextQueuedJob atomically claims the oldest eligible queued job.
//
// The claim is a single UPDATE whose target row is picked under
// FOR UPDATE SKIP LOCKED, so concurrent claimers never block on or
// double-claim the same row: exactly one caller wins each eligible job
// and the rest move on to the next one or see an empty queue.
func (s *Store) TakeNextQueuedJob(ctx context.Context) (*store.Job, error) {
	query := fmt.Sprintf(`
		UPDATE jobs
		SET status = 'processing',
			attempts = attempts + 1,
			available_at = NULL,
			updated_at = NOW()
		WHERE id = (
			SELECT id FROM jobs
			WHERE status = 'queued'
				AND (available_at IS NULL OR available_at <= NOW())
			ORDER BY created_at ASC
			FOR UPDATE SKIP LOCKED
			LIMIT 1
		)
		RETURNING %s
	`, jobColumns)

	job, err := scanJob(s.db.QueryRowContext(ctx, query))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to claim next job: %w", err)
	}
	return job, nil
}

// RequeueJob returns a job to the queue after a retryable failure.
// The job becomes claimable again once max(0, delay) has elapsed.
func (s *Store) RequeueJob(ctx context.Context, id uuid.UUID, delay time.Duration, errMsg string) (*store.Job, error) {
	if delay < 0 {
		delay = 0
	}

	query := fmt.Sprintf(`
		UPDATE jobs
		SET status = 'queued',
			available_at = NOW() + ($2::bigint * INTERVAL '1 millisecond'),
			error_message = $3,
			updated_at = NOW()
		WHERE id = $1
		RETURNING %s
	`, jobColumns)

	job, err := scanJob(s.db.QueryRowContext(ctx, query, id, delay.Milliseconds(), errMsg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to requeue job %s: %w", id, err)
	}
	return job, nil
}

// FinalizeJob applies a terminal status and clears available_at.
// Output is only persisted for completed jobs; error_message only for
// failed ones.
func (s *Store) FinalizeJob(ctx context.Context, id uuid.UUID, patch store.FinalizePatch) (*store.Job, error) {
	if patch.Status != store.JobStatusCompleted && patch.Status != store.JobStatusFailed {
		return nil, fmt.Errorf("finalize requires a terminal status, got %q", patch.Status)
	}

	var outputJSON interface{}
	if patch.Status == store.JobStatusCompleted && patch.Output != nil {
		encoded, err := json.Marshal(patch.Output)
		if err != nil {
			return nil, fmt.Errorf("failed to encode job output: %w", err)
		}
		outputJSON = encoded
	}

	query := fmt.Sprintf(`
		UPDATE jobs
		SET status = $2,
			error_message = $3,
			output = $4,
			available_at = NULL,
			updated_at = NOW()
		WHERE id = $1
		RETURNING %s
	`, jobColumns)

	job, err := scanJob(s.db.QueryRowContext(ctx, query, id, patch.Status, patch.ErrorMessage, outputJSON))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to finalize job %s: %w", id, err)
	}
	return job, nil
}

// ReapStuckJobs requeues jobs that have sat in processing longer than
// olderThan. A worker that dies between claim and finalize leaves its job
// in processing forever; the reaper makes such jobs claimable again.
func (s *Store) ReapStuckJobs(ctx context.Context, olderThan time.Duration) (int64, error) {
	query := `
		UPDATE jobs
		SET status = 'queued',
			available_at = NOW(),
			updated_at = NOW()
		WHERE status = 'processing'
			AND updated_at < NOW() - ($1::bigint * INTERVAL '1 millisecond')
	`

	result, err := s.db.ExecContext(ctx, query, olderThan.Milliseconds())
	if err != nil {
		return 0, fmt.Errorf("failed to reap stuck jobs: %w", err)
	}
	return result.RowsAffected()
}

// CountQueued returns the number of currently queued jobs.
func (s *Store) CountQueued(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM jobs WHERE status = 'queued'").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count queued jobs: %w", err)
	}
	return count, nil
}
