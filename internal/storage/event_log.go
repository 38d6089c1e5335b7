package storage

import "time"

// EventAction is the kind of a job_events row.
type EventAction string

const (
	EventCreated       EventAction = "created"
	EventStatusChanged EventAction = "status_changed"
	EventAssigned      EventAction = "assigned"
	EventProduced      EventAction = "produced"
	EventQCPassed      EventAction = "qc_passed"
	EventQCFailed      EventAction = "qc_failed"
	EventReworkCreated EventAction = "rework_created"
)

// JobEvent is an append-only audit row. Events are never updated or deleted;
// the event log is the sole source of job history.
type JobEvent struct {
	ID          string      `json:"id"`
	JobID       string      `json:"job_id"`
	Action      EventAction `json:"action"`
	FromStatus  *JobStatus  `json:"from_status,omitempty"`
	ToStatus    *JobStatus  `json:"to_status,omitempty"`
	ProducedQty *int        `json:"produced_qty,omitempty"`
	Notes       string      `json:"notes,omitempty"`
	PerformedBy string      `json:"performed_by"`
	PerformedAt time.Time   `json:"performed_at"`
}
