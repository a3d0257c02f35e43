package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a job id is unknown to the store.
var ErrNotFound = errors.New("job not found")

// JobStore holds every job known to the process.
type JobStore interface {
	// Save replaces the whole record for job.ID. Saving an id that already
	// exists overwrites it: the later write wins.
	Save(ctx context.Context, job *Job) error

	// Get returns a copy of the job, or ErrNotFound.
	Get(ctx context.Context, id string) (*Job, error)

	// List returns a copy of every job keyed by id.
	List(ctx context.Context) (map[string]*Job, error)

	// CountByStatus tracks how many jobs sit in each state.
	CountByStatus(ctx context.Context) (map[JobStatus]int64, error)

	// Ping reports whether the store can serve requests.
	Ping(ctx context.Context) error
}
