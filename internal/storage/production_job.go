package storage

import "time"

// JobStatus is the canonical lifecycle status for production_jobs rows.
// Stable values, stored as-is in the DB.
type JobStatus string

const (
	StatusPending    JobStatus = "pending"
	StatusQueued     JobStatus = "queued"
	StatusAssigned   JobStatus = "assigned"
	StatusInProgress JobStatus = "in_progress"
	StatusQCCheck    JobStatus = "qc_check"
	StatusQCPassed   JobStatus = "qc_passed"
	StatusQCFailed   JobStatus = "qc_failed"
	StatusRework     JobStatus = "rework"
	StatusCompleted  JobStatus = "completed"
	StatusCancelled  JobStatus = "cancelled"
)

// AllStatuses lists every known status, used to reject unknown codes at the boundary.
var AllStatuses = []JobStatus{
	StatusPending, StatusQueued, StatusAssigned, StatusInProgress,
	StatusQCCheck, StatusQCPassed, StatusQCFailed, StatusRework,
	StatusCompleted, StatusCancelled,
}

func ValidStatus(s JobStatus) bool {
	for _, known := range AllStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Terminal reports whether a job in this status can never move again.
func (s JobStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Priority is the job priority tier. Higher is more urgent.
type Priority int

const (
	PriorityNormal    Priority = 0
	PriorityRush      Priority = 1
	PriorityUrgent    Priority = 2
	PriorityEmergency Priority = 3
)

func ValidPriority(p Priority) bool {
	return p >= PriorityNormal && p <= PriorityEmergency
}

type ProductionJob struct {
	ID        string  `json:"id"`
	JobNumber string  `json:"job_number"`
	OrderID   *string `json:"order_id,omitempty"`

	// Read-only snapshot from the order module, attached at creation.
	OrderNumber *string `json:"order_number,omitempty"`
	Customer    *string `json:"customer,omitempty"`

	WorkType string    `json:"work_type"`
	Status   JobStatus `json:"status"`
	Priority Priority  `json:"priority"`

	OrderedQty  int `json:"ordered_qty"`
	ProducedQty int `json:"produced_qty"`
	PassedQty   int `json:"passed_qty"`
	FailedQty   int `json:"failed_qty"`

	StationID      *string `json:"station_id,omitempty"`
	AssignedUserID *string `json:"assigned_user_id,omitempty"`

	DueDate     *time.Time `json:"due_date,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	IsRework      bool    `json:"is_rework"`
	ReworkCount   int     `json:"rework_count"`
	OriginalJobID *string `json:"original_job_id,omitempty"`
	ReworkReason  *string `json:"rework_reason,omitempty"`

	// Version is the optimistic-lock token; bumped on every write.
	Version int64 `json:"version"`
}

// JobFilter narrows ListJobs. Zero value means no filtering.
type JobFilter struct {
	WorkType    string
	MinPriority *Priority
	Statuses    []JobStatus
	// Search matches job number and customer, substring, case-insensitive.
	Search string
}
