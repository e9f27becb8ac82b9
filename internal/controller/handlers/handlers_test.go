package handlers

import (
	"context"
	"database/sql"

	"clipforge/internal/store"

	"github.com/google/uuid"
)

// Mock transaction
type mockTx struct{}

func (m *mockTx) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return nil, nil
}
func (m *mockTx) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return nil, nil
}
func (m *mockTx) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return nil
}

func (m *mockTx) Commit() error { return nil }

func (m *mockTx) Rollback() error { return nil }

// Mock Store
type mockStore struct {
	beginTxErr error
	pingErr    error

	// Tenant Hooks
	createTenantErr error

	// Job Hooks
	createJobErr   error
	getJobByIDResp *store.Job
	getJobByIDErr  error
	listJobsResp   []store.Job
	listJobsErr    error
	updateJobResp  *store.Job
	updateJobErr   error

	// Spies (to verify arguments passed by handlers)
	capturedJob      *store.Job
	capturedTenantID uuid.UUID
	capturedLimit    int
}

func (m *mockStore) BeginTx(ctx context.Context) (store.Tx, error) {
	if m.beginTxErr != nil {
		return nil, m.beginTxErr
	}
	return &mockTx{}, nil
}

func (m *mockStore) Ping(ctx context.Context) error {
	return m.pingErr
}

func (m *mockStore) CreateTenant(ctx context.Context, tenant *store.Tenant, hashedKey string) error {
	return m.createTenantErr
}

func (m *mockStore) GetTenantByID(ctx context.Context, id uuid.UUID) (*store.Tenant, error) {
	return nil, nil // Not used in handlers
}

func (m *mockStore) GetTenantByAPIKeyHash(ctx context.Context, hash string) (*store.Tenant, error) {
	return nil, nil // Handled by Auth Middleware, not Handlers
}

func (m *mockStore) CreateJob(ctx context.Context, tx store.DBTransaction, job *store.Job) error {
	m.capturedJob = job
	return m.createJobErr
}

func (m *mockStore) GetJobByID(ctx context.Context, id uuid.UUID) (*store.Job, error) {
	return m.getJobByIDResp, m.getJobByIDErr
}

func (m *mockStore) ListJobs(ctx context.Context, tenantID uuid.UUID, limit int) ([]store.Job, error) {
	m.capturedTenantID = tenantID
	m.capturedLimit = limit
	return m.listJobsResp, m.listJobsErr
}

func (m *mockStore) UpdateJob(ctx context.Context, id uuid.UUID, patch store.JobPatch) (*store.Job, error) {
	return m.updateJobResp, m.updateJobErr
}
