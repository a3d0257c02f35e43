// Package store contains the job table for transcodeplane.
package store

import "time"

// Job is the status record of one submitted transcode job.
type Job struct {
	ID          string
	InputURL    string
	Resolutions []string
	Status      JobStatus
	Results     []TierResult
	Error       *string
	CreatedAt   time.Time
	FinishedAt  *time.Time
}

// TierResult describes one produced artifact.
type TierResult struct {
	Resolution  string
	DownloadURL string
	SizeBytes   int64
	// Path is where the artifact lives on disk. Never exposed to clients.
	Path string
}

// JobStatus represents the state of a job.
type JobStatus string

const (
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// Terminal reports whether no further transitions can happen.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// Clone returns a deep copy, so a reader can never alias a stored record.
func (j *Job) Clone() *Job {
	if j == nil {
		return nil
	}
	c := *j
	if j.Resolutions != nil {
		c.Resolutions = append([]string(nil), j.Resolutions...)
	}
	if j.Results != nil {
		c.Results = append([]TierResult(nil), j.Results...)
	}
	if j.Error != nil {
		msg := *j.Error
		c.Error = &msg
	}
	if j.FinishedAt != nil {
		at := *j.FinishedAt
		c.FinishedAt = &at
	}
	return &c
}
