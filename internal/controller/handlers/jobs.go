package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"transcodeplane/internal/ladder"
	"transcodeplane/internal/logger"
	"transcodeplane/internal/orchestrator"
	"transcodeplane/internal/store"
	"transcodeplane/pkg/api"

	"github.com/go-playground/validator/v10"
)

// maxSubmitBody bounds the POST /process payload.
const maxSubmitBody = 1 << 20

// ProcessJob handles POST /process.
// It records the job and starts transcoding in the background. The response
// only acknowledges acceptance; transcode failures show up in the job record.
func (h *Handlers) ProcessJob(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx, h.opts.Logger)

	var req api.SubmitJobRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxSubmitBody)).Decode(&req); err != nil {
		h.httpError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		h.httpErrorDetails(w, "Invalid request", validationDetails(err), http.StatusBadRequest)
		return
	}

	if h.opts.StrictTiers {
		var unknown []string
		for _, label := range req.Resolutions {
			if !ladder.Known(label) {
				unknown = append(unknown, label)
			}
		}
		if len(unknown) > 0 {
			h.httpErrorDetails(w, "Unknown resolution",
				fmt.Sprintf("unsupported resolutions: %s", strings.Join(unknown, ", ")),
				http.StatusBadRequest)
			return
		}
	}

	err := h.jobs.Submit(ctx, orchestrator.Request{
		JobID:       req.JobID,
		InputURL:    req.InputURL,
		Resolutions: req.Resolutions,
	})
	if err != nil {
		log.Error("failed to submit job", "job_id", req.JobID, "error", err)
		h.httpError(w, "Failed to submit job", http.StatusInternalServerError)
		return
	}

	log.Info("job accepted", "job_id", req.JobID, "resolutions", req.Resolutions)
	h.respondJson(w, http.StatusAccepted, api.SubmitJobResponse{
		Message: "Job accepted",
		JobID:   req.JobID,
	})
}

// GetJob handles GET /jobs/{id}.
func (h *Handlers) GetJob(w http.ResponseWriter, r *http.Request) {
	job, err := h.store.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.httpError(w, "Job not found", http.StatusNotFound)
			return
		}
		h.httpError(w, "Failed to load job", http.StatusInternalServerError)
		return
	}
	h.respondJson(w, http.StatusOK, toJobResponse(job))
}

// ListJobs handles GET /jobs.
// It returns every known job keyed by id.
func (h *Handlers) ListJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.store.List(r.Context())
	if err != nil {
		h.httpError(w, "Failed to list jobs", http.StatusInternalServerError)
		return
	}

	resp := make(map[string]api.JobResponse, len(jobs))
	for id, job := range jobs {
		resp[id] = toJobResponse(job)
	}
	h.respondJson(w, http.StatusOK, resp)
}

func toJobResponse(job *store.Job) api.JobResponse {
	results := make([]api.TierResult, 0, len(job.Results))
	for _, r := range job.Results {
		results = append(results, api.TierResult{
			Resolution:  r.Resolution,
			DownloadURL: r.DownloadURL,
			SizeBytes:   r.SizeBytes,
		})
	}
	resolutions := job.Resolutions
	if resolutions == nil {
		resolutions = []string{}
	}
	return api.JobResponse{
		JobID:       job.ID,
		Status:      string(job.Status),
		InputURL:    job.InputURL,
		Resolutions: resolutions,
		Results:     results,
		Error:       job.Error,
		CreatedAt:   job.CreatedAt,
		FinishedAt:  job.FinishedAt,
	}
}

func validationDetails(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		msgs = append(msgs, fmt.Sprintf("field '%s' is %s", e.Field(), e.Tag()))
	}
	return strings.Join(msgs, "; ")
}
