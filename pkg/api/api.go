// Package api contains shared JSON request/response structs.
// This package is shared between the CLI and the controller.
package api

import "time"

// CreateTenantRequest is the request body for registering a new tenant.
type CreateTenantRequest struct {
	Name string `json:"name"`
}

// CreateTenantResponse is the response body after creating a tenant.
// ApiKey carries the raw key and is only ever returned here.
type CreateTenantResponse struct {
	ID     string `json:"tenant_id"`
	Name   string `json:"name"`
	ApiKey string `json:"api_key"`
}

// CreateJobRequest is the request body for enqueuing a new clip job.
type CreateJobRequest struct {
	SourceURI          string            `json:"source_uri"`
	WatermarkText      string            `json:"watermark_text,omitempty"`
	MaxDurationSeconds int               `json:"max_duration_seconds,omitempty"`
	VariantCount       int               `json:"variant_count,omitempty"`
	Metadata           map[string]string `json:"metadata,omitempty"`
}

// JobResponse represents a clip job in API responses.
type JobResponse struct {
	ID                 string            `json:"id"`
	TenantID           string            `json:"tenant_id"`
	SourceURI          string            `json:"source_uri"`
	WatermarkText      string            `json:"watermark_text,omitempty"`
	MaxDurationSeconds int               `json:"max_duration_seconds"`
	VariantCount       int               `json:"variant_count"`
	Status             string            `json:"status"`
	Attempts           int               `json:"attempts"`
	AvailableAt        *time.Time        `json:"available_at,omitempty"`
	ErrorMessage       *string           `json:"error_message,omitempty"`
	Metadata           map[string]string `json:"metadata,omitempty"`
	Output             map[string]string `json:"output,omitempty"`
	CreatedAt          time.Time         `json:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at"`
}

// ListJobsResponse is the response body for job listings.
type ListJobsResponse struct {
	Jobs []JobResponse `json:"jobs"`
}

// ErrorResponse is the standard error body.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}
