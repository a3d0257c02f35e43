// Package api contains shared JSON request/response structs.
// This package is shared between the CLI and Controller.
package api

import "time"

// SubmitJobRequest is the request body for POST /process.
type SubmitJobRequest struct {
	JobID       string   `json:"job_id" validate:"required"`
	InputURL    string   `json:"input_url" validate:"required"`
	Resolutions []string `json:"resolutions" validate:"required"`
}

// SubmitJobResponse acknowledges an accepted job. Processing happens in the
// background; poll GET /jobs/{id} for the outcome.
type SubmitJobResponse struct {
	Message string `json:"message"`
	JobID   string `json:"job_id"`
}

// TierResult is one produced rendition.
type TierResult struct {
	Resolution  string `json:"resolution"`
	DownloadURL string `json:"download_url"`
	SizeBytes   int64  `json:"size_bytes"`
}

// JobResponse is the status record of one job.
type JobResponse struct {
	JobID       string       `json:"job_id"`
	Status      string       `json:"status"`
	InputURL    string       `json:"input_url"`
	Resolutions []string     `json:"resolutions"`
	Results     []TierResult `json:"results"`
	// Error is null unless the job failed.
	Error      *string    `json:"error"`
	CreatedAt  time.Time  `json:"created_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}
