// Package store contains the database layer for clipforge.
package store

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Tenant represents a tenant in the multi-tenant system.
// All job operations must be scoped by TenantID.
// The raw API key is never persisted; only its SHA-256 hash is stored.
type Tenant struct {
	ID        uuid.UUID
	Name      string
	CreatedAt time.Time
}

// JobStatus represents the lifecycle state of a clip job.
type JobStatus string

const (
	JobStatusQueued     JobStatus = "queued"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// VariantCount is clamped into this range at creation time.
const (
	MinVariantCount = 1
	MaxVariantCount = 5
)

// ErrTenantRequired is returned by NewJob when the tenant ID is missing.
// Validation failures never reach the worker; they surface to the caller
// of CreateJob only.
var ErrTenantRequired = errors.New("tenant id is required")

// Job represents a single clip-generation job.
//
// Lifecycle: queued -> processing -> completed | failed, with
// processing -> queued on a retryable failure (AvailableAt pushed into
// the future by the retry policy). AvailableAt is always nil while the
// job is processing, and Output is non-nil iff the job completed.
type Job struct {
	ID                 uuid.UUID
	TenantID           uuid.UUID
	SourceURI          string
	WatermarkText      string
	MaxDurationSeconds int
	VariantCount       int
	Status             JobStatus
	Attempts           int
	AvailableAt        *time.Time
	ErrorMessage       *string
	Metadata           map[string]string
	Output             map[string]string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// CreateJobInput carries the caller-supplied fields for a new job.
type CreateJobInput struct {
	TenantID           uuid.UUID
	SourceURI          string
	WatermarkText      string
	MaxDurationSeconds int
	VariantCount       int
	Metadata           map[string]string
}

// NewJob validates and normalizes input into a queued job ready for
// persistence. VariantCount is clamped to [MinVariantCount, MaxVariantCount].
func NewJob(input CreateJobInput) (*Job, error) {
	if input.TenantID == uuid.Nil {
		return nil, ErrTenantRequired
	}
	if input.SourceURI == "" {
		return nil, fmt.Errorf("source uri is required")
	}

	variants := input.VariantCount
	if variants < MinVariantCount {
		variants = MinVariantCount
	}
	if variants > MaxVariantCount {
		variants = MaxVariantCount
	}

	now := time.Now().UTC()
	return &Job{
		ID:                 uuid.New(),
		TenantID:           input.TenantID,
		SourceURI:          input.SourceURI,
		WatermarkText:      input.WatermarkText,
		MaxDurationSeconds: input.MaxDurationSeconds,
		VariantCount:       variants,
		Status:             JobStatusQueued,
		Attempts:           0,
		AvailableAt:        &now,
		Metadata:           input.Metadata,
		CreatedAt:          now,
		UpdatedAt:          now,
	}, nil
}

// JobPatch describes a partial update applied by UpdateJob.
// Nil fields are left untouched.
type JobPatch struct {
	Status        *JobStatus
	WatermarkText *string
	ErrorMessage  *string
	Metadata      map[string]string
	Output        map[string]string
}

// FinalizePatch describes the terminal update applied by FinalizeJob.
type FinalizePatch struct {
	Status       JobStatus // JobStatusCompleted or JobStatusFailed
	ErrorMessage *string
	Output       map[string]string
}
