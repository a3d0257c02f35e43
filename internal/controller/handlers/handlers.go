// Package handlers contains HTTP handlers for the controller API.
package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"transcodeplane/internal/orchestrator"
	"transcodeplane/internal/store"
	"transcodeplane/pkg/api"

	"github.com/go-playground/validator/v10"
)

// Submitter starts jobs. *orchestrator.Orchestrator satisfies it.
type Submitter interface {
	Submit(ctx context.Context, req orchestrator.Request) error
}

// Options tune request handling.
type Options struct {
	// StrictTiers rejects unknown resolution labels instead of letting them
	// fall back to 480p.
	StrictTiers bool
	Logger      *slog.Logger
}

// Handlers holds all HTTP handlers and their dependencies.
type Handlers struct {
	store    store.JobStore
	jobs     Submitter
	validate *validator.Validate
	opts     Options
}

// New creates a new Handlers instance.
func New(s store.JobStore, jobs Submitter, opts Options) *Handlers {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}

	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their JSON names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Handlers{store: s, jobs: jobs, validate: v, opts: opts}
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

func (h *Handlers) httpErrorDetails(w http.ResponseWriter, message, details string, code int) {
	h.respondJson(w, code, api.ErrorResponse{
		Error:   message,
		Code:    strconv.Itoa(code),
		Details: details,
	})
}
