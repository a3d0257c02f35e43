// Package memory implements store.JobStore in process memory.
package memory

import (
	"context"
	"errors"
	"sync"

	"transcodeplane/internal/store"
)

// Store is a job table guarded by a single reader/writer lock. Records are
// copied in and out, so a reader only ever sees whole records.
type Store struct {
	mu   sync.RWMutex
	jobs map[string]*store.Job
}

// New creates an empty store.
func New() *Store {
	return &Store{jobs: make(map[string]*store.Job)}
}

// Save implements store.JobStore.
func (s *Store) Save(ctx context.Context, job *store.Job) error {
	if job == nil || job.ID == "" {
		return errors.New("job id is required")
	}
	c := job.Clone()

	s.mu.Lock()
	s.jobs[c.ID] = c
	s.mu.Unlock()
	return nil
}

// Get implements store.JobStore.
func (s *Store) Get(ctx context.Context, id string) (*store.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return job.Clone(), nil
}

// List implements store.JobStore.
func (s *Store) List(ctx context.Context) (map[string]*store.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]*store.Job, len(s.jobs))
	for id, job := range s.jobs {
		out[id] = job.Clone()
	}
	return out, nil
}

// CountByStatus implements store.JobStore.
func (s *Store) CountByStatus(ctx context.Context) (map[store.JobStatus]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[store.JobStatus]int64, 3)
	for _, job := range s.jobs {
		counts[job.Status]++
	}
	return counts, nil
}

// Ping implements store.JobStore. An in-memory table is always available.
func (s *Store) Ping(ctx context.Context) error {
	return nil
}
