package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"clipforge/internal/controller/middleware"
	"clipforge/internal/store"
	"clipforge/pkg/api"

	"github.com/google/uuid"
)

// CreateJob handles POST /jobs.
// It validates the request, persists a queued job and returns it.
// The job becomes claimable by workers as soon as the transaction commits.
func (h *Handlers) CreateJob(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.CreateJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.httpError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	tenant, ok := middleware.TenantFromContext(ctx)
	if !ok {
		h.httpError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	job, err := store.NewJob(store.CreateJobInput{
		TenantID:           tenant.ID,
		SourceURI:          req.SourceURI,
		WatermarkText:      req.WatermarkText,
		MaxDurationSeconds: req.MaxDurationSeconds,
		VariantCount:       req.VariantCount,
		Metadata:           req.Metadata,
	})
	if err != nil {
		if errors.Is(err, store.ErrTenantRequired) {
			h.httpError(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		h.httpError(w, err.Error(), http.StatusBadRequest)
		return
	}

	tx, err := h.store.BeginTx(ctx)
	if err != nil {
		h.httpError(w, "Internal database error", http.StatusInternalServerError)
		return
	}
	defer tx.Rollback()

	if err := h.store.CreateJob(ctx, tx, job); err != nil {
		h.httpError(w, "Failed to create job", http.StatusInternalServerError)
		return
	}

	if err := tx.Commit(); err != nil {
		h.httpError(w, "Failed to commit transaction", http.StatusInternalServerError)
		return
	}

	h.respondJson(w, http.StatusCreated, jobResponse(job))
}

// GetJob handles GET /jobs/{id}.
// Jobs belonging to other tenants are indistinguishable from missing ones.
func (h *Handlers) GetJob(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	jobID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.httpError(w, "Invalid job id", http.StatusBadRequest)
		return
	}

	tenant, ok := middleware.TenantFromContext(ctx)
	if !ok {
		h.httpError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	job, err := h.store.GetJobByID(ctx, jobID)
	if err != nil {
		h.httpError(w, "Internal database error", http.StatusInternalServerError)
		return
	}
	if job == nil || job.TenantID != tenant.ID {
		h.httpError(w, "Job not found", http.StatusNotFound)
		return
	}

	h.respondJson(w, http.StatusOK, jobResponse(job))
}

// ListJobs handles GET /jobs?limit=N.
// Results are scoped to the authenticated tenant, newest first.
func (h *Handlers) ListJobs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tenant, ok := middleware.TenantFromContext(ctx)
	if !ok {
		h.httpError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			h.httpError(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	jobs, err := h.store.ListJobs(ctx, tenant.ID, limit)
	if err != nil {
		h.httpError(w, "Internal database error", http.StatusInternalServerError)
		return
	}

	resp := api.ListJobsResponse{Jobs: make([]api.JobResponse, 0, len(jobs))}
	for i := range jobs {
		resp.Jobs = append(resp.Jobs, jobResponse(&jobs[i]))
	}
	h.respondJson(w, http.StatusOK, resp)
}
