// Package controller contains the controller-specific logic for the HTTP API.
package controller

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"transcodeplane/internal/controller/handlers"
	"transcodeplane/internal/controller/middleware"
	"transcodeplane/internal/store"
)

// Server is the HTTP server for the transcode API.
type Server struct {
	httpServer *http.Server
}

// New creates a new controller server. metricsHandler may be nil.
func New(addr string, st store.JobStore, jobs handlers.Submitter, opts handlers.Options, metricsHandler http.Handler) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:        addr,
			Handler:     NewHandler(st, jobs, opts, metricsHandler),
			ReadTimeout: 10 * time.Second,
			// Downloads of large renditions can take a while.
			WriteTimeout: 0,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// NewHandler builds the routed, middleware-wrapped API handler.
func NewHandler(st store.JobStore, jobs handlers.Submitter, opts handlers.Options, metricsHandler http.Handler) http.Handler {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	h := handlers.New(st, jobs, opts)

	mux := http.NewServeMux()

	mux.HandleFunc("POST /process", h.ProcessJob)
	mux.HandleFunc("GET /jobs", h.ListJobs)
	mux.HandleFunc("GET /jobs/{id}", h.GetJob)
	mux.HandleFunc("GET /videos/{id}/{resolution}", h.GetVideo)

	mux.HandleFunc("GET /healthz", h.Healthz)
	mux.HandleFunc("GET /readyz", h.Readyz)
	if metricsHandler != nil {
		mux.Handle("GET /metrics", metricsHandler)
	}

	return middleware.RequestID(middleware.CORS(middleware.AccessLog(opts.Logger)(mux)))
}

// Run starts the HTTP server. It blocks until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	serverErr := make(chan error, 1)

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
		shutDownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		return s.Shutdown(shutDownCtx)
	}
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
