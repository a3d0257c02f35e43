package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"transcodeplane/internal/orchestrator"
	"transcodeplane/internal/store"
	"transcodeplane/pkg/api"
)

// Mock Store
type mockStore struct {
	getJobResp *store.Job
	getJobErr  error
	listResp   map[string]*store.Job
	listErr    error
	pingErr    error

	// Spies
	capturedID string
}

func (m *mockStore) Save(ctx context.Context, job *store.Job) error { return nil }

func (m *mockStore) Get(ctx context.Context, id string) (*store.Job, error) {
	m.capturedID = id
	if m.getJobErr != nil {
		return nil, m.getJobErr
	}
	if m.getJobResp == nil {
		return nil, store.ErrNotFound
	}
	return m.getJobResp, nil
}

func (m *mockStore) List(ctx context.Context) (map[string]*store.Job, error) {
	return m.listResp, m.listErr
}

func (m *mockStore) CountByStatus(ctx context.Context) (map[store.JobStatus]int64, error) {
	return nil, nil
}

func (m *mockStore) Ping(ctx context.Context) error {
	return m.pingErr
}

// Mock orchestrator
type mockSubmitter struct {
	err      error
	calls    int
	captured orchestrator.Request
}

func (m *mockSubmitter) Submit(ctx context.Context, req orchestrator.Request) error {
	m.calls++
	m.captured = req
	return m.err
}

func TestHttpError(t *testing.T) {
	h := New(&mockStore{}, &mockSubmitter{}, Options{})
	rr := httptest.NewRecorder()

	h.httpError(rr, "Something broke", http.StatusTeapot)

	if rr.Code != http.StatusTeapot {
		t.Errorf("expected %d, got %d", http.StatusTeapot, rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected application/json, got %s", ct)
	}
	var resp api.ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Error != "Something broke" || resp.Code != "418" {
		t.Errorf("unexpected error response: %+v", resp)
	}
}
