package cmd

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"transcodeplane/pkg/api"

	"github.com/spf13/viper"
)

func TestStatusCommand_Completed(t *testing.T) {
	resetViper()

	created := time.Now().Add(-10 * time.Minute)
	finished := time.Now().Add(-9 * time.Minute)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET method, got %s", r.Method)
		}
		if r.URL.Path != "/jobs/job-123" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}

		resp := api.JobResponse{
			JobID:    "job-123",
			Status:   "completed",
			InputURL: "/videos/in.mp4",
			Results: []api.TierResult{
				{Resolution: "720p", DownloadURL: "/videos/job-123/720p", SizeBytes: 2048},
			},
			CreatedAt:  created,
			FinishedAt: &finished,
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	viper.Set("url", server.URL)

	var stdout bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stdout)
	rootCmd.SetArgs([]string{"status", "job-123"})

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	output := stdout.String()
	for _, want := range []string{"job-123", "completed", "/videos/job-123/720p", "2.0 KiB", "1m 0s"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output, got: %s", want, output)
		}
	}
	if strings.Contains(output, "Error:") {
		t.Errorf("expected no Error line for a completed job, got: %s", output)
	}
}

func TestStatusCommand_Failed(t *testing.T) {
	resetViper()

	errMsg := "source_open failed for missing.mp4: no video stream"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(api.JobResponse{
			JobID:   "job-f",
			Status:  "failed",
			Results: []api.TierResult{},
			Error:   &errMsg,
		})
	}))
	defer server.Close()

	viper.Set("url", server.URL)

	var stdout bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetArgs([]string{"status", "job-f"})

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	output := stdout.String()
	if !strings.Contains(output, errMsg) {
		t.Errorf("expected error message in output, got: %s", output)
	}
	if strings.Contains(output, "Renditions:") {
		t.Errorf("expected no renditions for a failed job, got: %s", output)
	}
}

func TestStatusCommand_NotFound(t *testing.T) {
	resetViper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(api.ErrorResponse{Error: "Job not found", Code: "404"})
	}))
	defer server.Close()

	viper.Set("url", server.URL)

	var stdout bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetArgs([]string{"status", "nope"})

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(stdout.String(), "Request failed (404): Job not found") {
		t.Errorf("expected not found message, got: %s", stdout.String())
	}
}

func TestStatusCommand_RequiresArg(t *testing.T) {
	resetViper()

	var stdout bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stdout)
	rootCmd.SetArgs([]string{"status"})

	if err := rootCmd.Execute(); err == nil {
		t.Error("expected error when job id is missing")
	}
}
