package handlers

import (
	"errors"
	"net/http"
	"os"

	"transcodeplane/internal/store"
)

// GetVideo handles GET /videos/{id}/{resolution}.
// It serves the artifact behind a result's download_url. When a label was
// requested more than once, the last produced rendition is served.
func (h *Handlers) GetVideo(w http.ResponseWriter, r *http.Request) {
	job, err := h.store.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.httpError(w, "Job not found", http.StatusNotFound)
			return
		}
		h.httpError(w, "Failed to load job", http.StatusInternalServerError)
		return
	}

	label := r.PathValue("resolution")
	path := ""
	for _, res := range job.Results {
		if res.Resolution == label {
			path = res.Path
		}
	}
	if path == "" {
		h.httpError(w, "Video not found", http.StatusNotFound)
		return
	}

	f, err := os.Open(path)
	if err != nil {
		h.httpError(w, "Video not found", http.StatusNotFound)
		return
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil || fi.IsDir() {
		h.httpError(w, "Video not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "video/mp4")
	http.ServeContent(w, r, fi.Name(), fi.ModTime(), f)
}
