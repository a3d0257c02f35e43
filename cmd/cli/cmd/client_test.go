package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"transcodeplane/pkg/api"
)

func TestJobClient_Submit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/process" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var req api.SubmitJobRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.JobID != "job-1" || req.InputURL != "in.mp4" || len(req.Resolutions) != 2 {
			t.Errorf("unexpected body: %+v", req)
		}
		w.WriteHeader(http.StatusAccepted)
		json.NewEncoder(w).Encode(api.SubmitJobResponse{Message: "Job accepted", JobID: req.JobID})
	}))
	defer server.Close()

	client := NewJobClient(server.URL + "/")
	resp, err := client.Submit(api.SubmitJobRequest{JobID: "job-1", InputURL: "in.mp4", Resolutions: []string{"720p", "480p"}})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if resp.JobID != "job-1" || resp.Message != "Job accepted" {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestJobClient_APIErrorUsesServerMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(api.ErrorResponse{Error: "Invalid request", Code: "400", Details: "field 'input_url' is required"})
	}))
	defer server.Close()

	_, err := NewJobClient(server.URL).Submit(api.SubmitJobRequest{JobID: "x"})

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", apiErr.StatusCode)
	}
	if apiErr.Message != "Invalid request: field 'input_url' is required" {
		t.Errorf("unexpected message %q", apiErr.Message)
	}
}

func TestJobClient_GetJobEscapesID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.EscapedPath() != "/jobs/a%2Fb" {
			t.Errorf("expected escaped id, got %s", r.URL.EscapedPath())
		}
		json.NewEncoder(w).Encode(api.JobResponse{JobID: "a/b", Status: "processing"})
	}))
	defer server.Close()

	job, err := NewJobClient(server.URL).GetJob("a/b")
	if err != nil {
		t.Fatalf("GetJob failed: %v", err)
	}
	if job.JobID != "a/b" {
		t.Errorf("unexpected job %+v", job)
	}
}

func TestJobClient_Download(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/videos/job-1/720p" {
			w.Write([]byte("video-bytes"))
			return
		}
		http.NotFound(w, r)
	}))
	defer server.Close()

	client := NewJobClient(server.URL)

	var buf bytes.Buffer
	n, err := client.Download("/videos/job-1/720p", &buf)
	if err != nil {
		t.Fatalf("Download failed: %v", err)
	}
	if n != int64(len("video-bytes")) || buf.String() != "video-bytes" {
		t.Errorf("unexpected download: %d bytes, %q", n, buf.String())
	}

	_, err = client.Download("/videos/job-1/4K", &buf)
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 APIError, got %v", err)
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KiB"},
		{1536, "1.5 KiB"},
		{5 * 1024 * 1024, "5.0 MiB"},
	}
	for _, tt := range tests {
		if got := formatBytes(tt.in); got != tt.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
