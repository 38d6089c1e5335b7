package quality

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"garment-golang/internal/constants"
	"garment-golang/internal/service/lifecycle"
	"garment-golang/internal/storage"
	"garment-golang/internal/timeutil"
)

type QualityStorage interface {
	GetJob(ctx context.Context, id string) (*storage.ProductionJob, error)
	// SaveQCCheck writes the job, checkpoint results and event in one transaction.
	SaveQCCheck(ctx context.Context, job *storage.ProductionJob, results []*storage.QCCheckpointResult, event *storage.JobEvent) error
	// CreateReworkJob inserts the child job plus the rework_created event on
	// the original and the created event on the child, one transaction.
	CreateReworkJob(ctx context.Context, child *storage.ProductionJob, originalEvent, childEvent *storage.JobEvent) error
}

type Service struct {
	storage QualityStorage
	machine *lifecycle.StateMachine
	clock   timeutil.Clock
}

func NewService(storage QualityStorage, machine *lifecycle.StateMachine, clock timeutil.Clock) *Service {
	return &Service{storage: storage, machine: machine, clock: clock}
}

// CheckResult is one checkpoint verdict supplied by the inspector.
type CheckResult struct {
	Name   string  `json:"name"`
	Passed bool    `json:"passed"`
	Notes  *string `json:"notes,omitempty"`
}

// PerformCheck records a QC pass on a job sitting in qc_check.
//
// Quantity policy: checkpoint verdicts are evidence only and never become
// quantities. The inspector states how many units the pass covered
// (inspectedQty); the overall verdict credits the whole batch to passed_qty
// or failed_qty. produced_qty is logged separately through production logging.
func (s *Service) PerformCheck(ctx context.Context, jobID string, results []CheckResult, inspectedQty int, overallPassed bool, notes, actor string) (*storage.ProductionJob, error) {
	const op = "service.quality.PerformCheck"

	job, err := s.storage.GetJob(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if job.Status != storage.StatusQCCheck {
		return nil, fmt.Errorf("%s: job %s in %s: %w", op, job.JobNumber, job.Status, storage.ErrInvalidState)
	}

	if inspectedQty <= 0 {
		return nil, fmt.Errorf("%s: inspected %d: %w", op, inspectedQty, storage.ErrInvalidQuantity)
	}
	if job.PassedQty+job.FailedQty+inspectedQty > job.ProducedQty {
		return nil, fmt.Errorf("%s: inspected %d exceeds unchecked produced units: %w", op, inspectedQty, storage.ErrInvalidQuantity)
	}

	seen := make(map[string]bool, len(results))
	rows := make([]*storage.QCCheckpointResult, 0, len(results))
	now := s.clock.Now()
	for _, res := range results {
		if !constants.HasCheckpoint(job.WorkType, res.Name) {
			return nil, fmt.Errorf("%s: checkpoint %q for work type %s: %w", op, res.Name, job.WorkType, storage.ErrNotFound)
		}
		if seen[res.Name] {
			return nil, fmt.Errorf("%s: duplicate checkpoint %q: %w", op, res.Name, storage.ErrInvalidState)
		}
		seen[res.Name] = true
		rows = append(rows, &storage.QCCheckpointResult{
			ID:             uuid.NewString(),
			JobID:          job.ID,
			CheckpointName: res.Name,
			Passed:         res.Passed,
			Notes:          res.Notes,
			CheckedAt:      now,
		})
	}

	target := storage.StatusQCFailed
	action := storage.EventQCFailed
	if overallPassed {
		target = storage.StatusQCPassed
		action = storage.EventQCPassed
	}

	event, err := s.machine.Transition(job, target, notes, actor)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	event.Action = action
	event.ProducedQty = &inspectedQty

	if overallPassed {
		job.PassedQty += inspectedQty
	} else {
		job.FailedQty += inspectedQty
	}

	if err := s.storage.SaveQCCheck(ctx, job, rows, event); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return job, nil
}

// CreateRework spawns a child job to re-produce units that failed QC.
// Quantity bounds are checked before the reason so each rejection is
// independently observable. Returns the new job.
func (s *Service) CreateRework(ctx context.Context, jobID string, quantity int, reason, actor string) (*storage.ProductionJob, error) {
	const op = "service.quality.CreateRework"

	original, err := s.storage.GetJob(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if original.Status != storage.StatusQCFailed {
		return nil, fmt.Errorf("%s: job %s in %s: %w", op, original.JobNumber, original.Status, storage.ErrInvalidState)
	}
	if quantity <= 0 || quantity > original.FailedQty {
		return nil, fmt.Errorf("%s: %d of %d failed units: %w", op, quantity, original.FailedQty, storage.ErrInvalidQuantity)
	}
	if strings.TrimSpace(reason) == "" {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrMissingReason)
	}

	now := s.clock.Now()
	child := &storage.ProductionJob{
		ID:            uuid.NewString(),
		JobNumber:     fmt.Sprintf("%s-R%d", original.JobNumber, original.ReworkCount+1),
		OrderID:       original.OrderID,
		OrderNumber:   original.OrderNumber,
		Customer:      original.Customer,
		WorkType:      original.WorkType,
		Status:        storage.StatusRework,
		Priority:      original.Priority,
		OrderedQty:    quantity,
		DueDate:       original.DueDate,
		CreatedAt:     now,
		IsRework:      true,
		ReworkCount:   original.ReworkCount + 1,
		OriginalJobID: &original.ID,
		ReworkReason:  &reason,
		Version:       1,
	}

	originalEvent := &storage.JobEvent{
		ID:          uuid.NewString(),
		JobID:       original.ID,
		Action:      storage.EventReworkCreated,
		Notes:       fmt.Sprintf("rework job %s (%s) for %d units: %s", child.JobNumber, child.ID, quantity, reason),
		PerformedBy: actor,
		PerformedAt: now,
	}
	childEvent := &storage.JobEvent{
		ID:          uuid.NewString(),
		JobID:       child.ID,
		Action:      storage.EventCreated,
		Notes:       fmt.Sprintf("rework of %s: %s", original.JobNumber, reason),
		PerformedBy: actor,
		PerformedAt: now,
	}

	if err := s.storage.CreateReworkJob(ctx, child, originalEvent, childEvent); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return child, nil
}
