// Package job persists localization jobs in SQLite and their derived
// subtitle data in a JSON sidecar next to each job's output files.
package job

import "time"

// Status represents the lifecycle of a localization job.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Job is one video localization request.
type Job struct {
	ID               string
	Filename         string
	Status           Status
	Error            string
	Warnings         []string
	OriginalLanguage string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
