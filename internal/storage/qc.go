package storage

import "time"

// QCCheckpointResult is one checkpoint verdict from a single QC pass.
type QCCheckpointResult struct {
	ID             string    `json:"id"`
	JobID          string    `json:"job_id"`
	CheckpointName string    `json:"checkpoint_name"`
	Passed         bool      `json:"passed"`
	Notes          *string   `json:"notes,omitempty"`
	CheckedAt      time.Time `json:"checked_at"`
}
