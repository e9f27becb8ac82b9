package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// DBTransaction defines the methods shared by *sql.DB and *sql.Tx.
// This allows us to pass either a connection pool or an active transaction to the repository methods.
type DBTransaction interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

type Tx interface {
	DBTransaction
	Commit() error
	Rollback() error
}

// TenantStore handles tenant registration and API key lookups.
type TenantStore interface {
	// CreateTenant inserts a new tenant to the database.
	// The raw API key is hashed by the caller; only the hash is stored.
	CreateTenant(ctx context.Context, tenant *Tenant, hashedKey string) error

	// GetTenantByID returns a tenant by its ID.
	GetTenantByID(ctx context.Context, id uuid.UUID) (*Tenant, error)

	// GetTenantByAPIKeyHash returns a tenant by its API key hash, or
	// (nil, nil) if no tenant matches.
	GetTenantByAPIKeyHash(ctx context.Context, hash string) (*Tenant, error)
}

// JobStore handles persistence of clip jobs outside of the claim path.
type JobStore interface {
	// CreateJob inserts a new job row.
	CreateJob(ctx context.Context, tx DBTransaction, job *Job) error

	// GetJobByID returns a job by its ID, or (nil, nil) if it does not exist.
	GetJobByID(ctx context.Context, id uuid.UUID) (*Job, error)

	// ListJobs returns jobs for the given tenant only, newest-created-first,
	// truncated to limit.
	ListJobs(ctx context.Context, tenantID uuid.UUID, limit int) ([]Job, error)

	// UpdateJob applies a partial update and always touches updated_at.
	// Returns (nil, nil) if the id is unknown.
	UpdateJob(ctx context.Context, id uuid.UUID, patch JobPatch) (*Job, error)
}

// Queue defines the scheduling operations over the jobs table.
// TakeNextQueuedJob is the single serialization point of the system;
// implementations must use SELECT ... FOR UPDATE SKIP LOCKED semantics
// (or an equivalent serializable transaction) so that N concurrent
// callers racing for one eligible job produce exactly one claim.
type Queue interface {
	// TakeNextQueuedJob atomically claims the oldest eligible queued job:
	// it transitions the job to processing, increments attempts by one and
	// clears available_at. Returns (nil, nil) when no job is eligible.
	TakeNextQueuedJob(ctx context.Context) (*Job, error)

	// RequeueJob puts a job back in the queue after a retryable failure,
	// delaying its next claim by max(0, delay).
	// Returns (nil, nil) if the id is unknown.
	RequeueJob(ctx context.Context, id uuid.UUID, delay time.Duration, errMsg string) (*Job, error)

	// FinalizeJob applies a terminal status (completed or failed) and
	// clears available_at. Returns (nil, nil) if the id is unknown.
	FinalizeJob(ctx context.Context, id uuid.UUID, patch FinalizePatch) (*Job, error)

	// ReapStuckJobs returns jobs stuck in processing longer than olderThan
	// to the queue, making them claimable again. Covers workers that died
	// between claim and finalize.
	ReapStuckJobs(ctx context.Context, olderThan time.Duration) (int64, error)

	// CountQueued returns the number of currently queued jobs.
	CountQueued(ctx context.Context) (int64, error)
}
