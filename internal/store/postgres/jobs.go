package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"clipforge/internal/store"

	"github.com/google/uuid"
)

// jobColumns is the canonical column order shared by every job query so
// scanJob can decode any of them.
const jobColumns = `id, tenant_id, source_uri, watermark_text, max_duration_seconds,
		variant_count, status, attempts, available_at, error_message,
		metadata, output, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanJob(row rowScanner) (*store.Job, error) {
	var j store.Job
	var metadata, output []byte

	err := row.Scan(
		&j.ID,
		&j.TenantID,
		&j.SourceURI,
		&j.WatermarkText,
		&j.MaxDurationSeconds,
		&j.VariantCount,
		&j.Status,
		&j.Attempts,
		&j.AvailableAt,
		&j.ErrorMessage,
		&metadata,
		&output,
		&j.CreatedAt,
		&j.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &j.Metadata); err != nil {
			return nil, fmt.Errorf("failed to decode job metadata: %w", err)
		}
	}
	if output != nil {
		if err := json.Unmarshal(output, &j.Output); err != nil {
			return nil, fmt.Errorf("failed to decode job output: %w", err)
		}
	}

	return &j, nil
}

// CreateJob inserts a new job row.
// Metadata is stored as JSONB; output stays NULL until the job completes.
func (s *Store) CreateJob(ctx context.Context, tx store.DBTransaction, job *store.Job) error {
	query := `
		INSERT INTO jobs (id, tenant_id, source_uri, watermark_text, max_duration_seconds,
			variant_count, status, attempts, available_at, metadata, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	metadata := job.Metadata
	if metadata == nil {
		metadata = map[string]string{}
	}
	metadataJSON, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("failed to encode job metadata: %w", err)
	}

	executor := s.getExecutor(tx)
	_, err = executor.ExecContext(ctx, query,
		job.ID,
		job.TenantID,
		job.SourceURI,
		job.WatermarkText,
		job.MaxDurationSeconds,
		job.VariantCount,
		job.Status,
		job.Attempts,
		job.AvailableAt,
		metadataJSON,
		job.CreatedAt,
		job.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create job %s: %w", job.ID, err)
	}
	return nil
}

// GetJobByID returns a job by its ID, or (nil, nil) if it does not exist.
func (s *Store) GetJobByID(ctx context.Context, id uuid.UUID) (*store.Job, error) {
	query := fmt.Sprintf("SELECT %s FROM jobs WHERE id = $1", jobColumns)

	job, err := scanJob(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return job, nil
}

// ListJobs returns jobs for the given tenant only, newest-created-first.
func (s *Store) ListJobs(ctx context.Context, tenantID uuid.UUID, limit int) ([]store.Job, error) {
	if limit <= 0 {
		limit = 50
	}

	query := fmt.Sprintf(`
		SELECT %s FROM jobs
		WHERE tenant_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, jobColumns)

	rows, err := s.db.QueryContext(ctx, query, tenantID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []store.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		jobs = append(jobs, *job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}

	return jobs, nil
}

// UpdateJob applies a partial update. Only non-nil patch fields are written;
// updated_at is always touched. Returns (nil, nil) if the id is unknown.
func (s *Store) UpdateJob(ctx context.Context, id uuid.UUID, patch store.JobPatch) (*store.Job, error) {
	sets := []string{"updated_at = NOW()"}
	args := []interface{}{id}

	appendSet := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.Status != nil {
		appendSet("status", *patch.Status)
	}
	if patch.WatermarkText != nil {
		appendSet("watermark_text", *patch.WatermarkText)
	}
	if patch.ErrorMessage != nil {
		appendSet("error_message", *patch.ErrorMessage)
	}
	if patch.Metadata != nil {
		metadataJSON, err := json.Marshal(patch.Metadata)
		if err != nil {
			return nil, fmt.Errorf("failed to encode job metadata: %w", err)
		}
		appendSet("metadata", metadataJSON)
	}
	if patch.Output != nil {
		outputJSON, err := json.Marshal(patch.Output)
		if err != nil {
			return nil, fmt.Errorf("failed to encode job output: %w", err)
		}
		appendSet("output", outputJSON)
	}

	query := fmt.Sprintf(
		"UPDATE jobs SET %s WHERE id = $1 RETURNING %s",
		strings.Join(sets, ", "), jobColumns,
	)

	job, err := scanJob(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update job %s: %w", id, err)
	}
	return job, nil
}

func (s *Store) getExecutor(tx store.DBTransaction) store.DBTransaction {
	if tx != nil {
		return tx
	}
	return s.db
}
