package lifecycle

import (
	"fmt"

	"github.com/google/uuid"

	"garment-golang/internal/constants"
	"garment-golang/internal/storage"
	"garment-golang/internal/timeutil"
)

// transitions is the full status table. A pair absent here is invalid, no
// exceptions: completed and cancelled have no outgoing edges.
var transitions = map[storage.JobStatus][]storage.JobStatus{
	storage.StatusPending:    {storage.StatusAssigned, storage.StatusInProgress, storage.StatusCancelled},
	storage.StatusQueued:     {storage.StatusAssigned, storage.StatusInProgress, storage.StatusCancelled},
	storage.StatusAssigned:   {storage.StatusInProgress, storage.StatusCancelled},
	storage.StatusInProgress: {storage.StatusQCCheck, storage.StatusCancelled},
	storage.StatusQCCheck:    {storage.StatusQCPassed, storage.StatusQCFailed},
	storage.StatusQCFailed:   {storage.StatusRework, storage.StatusCancelled},
	storage.StatusRework:     {storage.StatusInProgress},
	storage.StatusQCPassed:   {storage.StatusCompleted},
}

// CanTransition reports whether from -> to is in the table.
func CanTransition(from, to storage.JobStatus) bool {
	for _, target := range transitions[from] {
		if target == to {
			return true
		}
	}
	return false
}

type StateMachine struct {
	clock timeutil.Clock
}

func New(clock timeutil.Clock) *StateMachine {
	return &StateMachine{clock: clock}
}

// Transition validates and executes a status change on the job in memory.
// On success the job's status and timestamps are updated and the single
// status_changed event row for the move is returned; persisting both is the
// caller's job. The job is untouched on error.
func (m *StateMachine) Transition(job *storage.ProductionJob, target storage.JobStatus, notes, actor string) (*storage.JobEvent, error) {
	const op = "service.lifecycle.Transition"

	if !storage.ValidStatus(target) {
		return nil, fmt.Errorf("%s: %q: %w", op, target, storage.ErrInvalidTransition)
	}

	if !CanTransition(job.Status, target) {
		return nil, fmt.Errorf("%s: %s -> %s: %w", op, job.Status, target, storage.ErrInvalidTransition)
	}

	if target == storage.StatusInProgress && job.Status != storage.StatusRework {
		if err := checkStationBound(job); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	now := m.clock.Now()
	from := job.Status

	job.Status = target
	if target == storage.StatusInProgress && job.StartedAt == nil {
		job.StartedAt = &now
	}
	if target == storage.StatusCompleted {
		job.CompletedAt = &now
	}

	fromCopy, toCopy := from, target
	return &storage.JobEvent{
		ID:          uuid.NewString(),
		JobID:       job.ID,
		Action:      storage.EventStatusChanged,
		FromStatus:  &fromCopy,
		ToStatus:    &toCopy,
		Notes:       notes,
		PerformedBy: actor,
		PerformedAt: now,
	}, nil
}

// Event builds an audit row for a mutation that does not move the status.
func (m *StateMachine) Event(job *storage.ProductionJob, action storage.EventAction, notes, actor string) *storage.JobEvent {
	return &storage.JobEvent{
		ID:          uuid.NewString(),
		JobID:       job.ID,
		Action:      action,
		Notes:       notes,
		PerformedBy: actor,
		PerformedAt: m.clock.Now(),
	}
}

// checkStationBound enforces the no-station guard on entry into production.
func checkStationBound(job *storage.ProductionJob) error {
	wt, ok := constants.LookupWorkType(job.WorkType)
	if !ok {
		return fmt.Errorf("%q: %w", job.WorkType, storage.ErrUnknownWorkType)
	}
	if wt.RequiresStation && job.StationID == nil {
		return fmt.Errorf("work type %q needs a station before production: %w", job.WorkType, storage.ErrPreconditionFailed)
	}
	return nil
}
