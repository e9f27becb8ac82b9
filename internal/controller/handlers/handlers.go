// Package handlers contains HTTP handlers for the controller API.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"clipforge/internal/store"
	"clipforge/pkg/api"
)

// StoreFactory combines the store interfaces the controller needs.
type StoreFactory interface {
	BeginTx(ctx context.Context) (store.Tx, error)
	Ping(ctx context.Context) error
	store.TenantStore
	store.JobStore
}

// Handlers holds all HTTP handlers and their dependencies.
type Handlers struct {
	store StoreFactory
}

// New creates a new Handlers instance with the given store dependency.
func New(s StoreFactory) *Handlers {
	return &Handlers{store: s}
}

// A helper function to write standard JSON responses.
func (h *Handlers) respondJson(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		json.NewEncoder(w).Encode(payload)
	}
}

// A helper function to return consistent error messages.
func (h *Handlers) httpError(w http.ResponseWriter, message string, code int) {
	h.respondJson(w, code, api.ErrorResponse{
		Error: message,
		Code:  strconv.Itoa(code),
	})
}

// jobResponse converts a store job into its API representation.
func jobResponse(job *store.Job) api.JobResponse {
	return api.JobResponse{
		ID:                 job.ID.String(),
		TenantID:           job.TenantID.String(),
		SourceURI:          job.SourceURI,
		WatermarkText:      job.WatermarkText,
		MaxDurationSeconds: job.MaxDurationSeconds,
		VariantCount:       job.VariantCount,
		Status:             string(job.Status),
		Attempts:           job.Attempts,
		AvailableAt:        job.AvailableAt,
		ErrorMessage:       job.ErrorMessage,
		Metadata:           job.Metadata,
		Output:             job.Output,
		CreatedAt:          job.CreatedAt,
		UpdatedAt:          job.UpdatedAt,
	}
}
