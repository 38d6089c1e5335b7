package scheduler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"garment-golang/internal/constants"
	"garment-golang/internal/service/lifecycle"
	"garment-golang/internal/service/queue"
	"garment-golang/internal/storage"
	"garment-golang/internal/timeutil"
)

type SchedulerStorage interface {
	GetJob(ctx context.Context, id string) (*storage.ProductionJob, error)
	ListJobs(ctx context.Context, filter storage.JobFilter) ([]*storage.ProductionJob, error)
	CreateJob(ctx context.Context, job *storage.ProductionJob, event *storage.JobEvent) error
	UpdateJobWithEvent(ctx context.Context, job *storage.ProductionJob, event *storage.JobEvent) error
	ListJobEvents(ctx context.Context, jobID string) ([]*storage.JobEvent, error)
	ListQCResults(ctx context.Context, jobID string) ([]*storage.QCCheckpointResult, error)
}

// Scheduler is the composition root for the production queue: it answers the
// ordered queue view and runs the per-job commands. It holds no state between
// calls; everything lives in storage and the score is recomputed per read.
type Scheduler struct {
	storage SchedulerStorage
	machine *lifecycle.StateMachine
	clock   timeutil.Clock
}

func New(storage SchedulerStorage, machine *lifecycle.StateMachine, clock timeutil.Clock) *Scheduler {
	return &Scheduler{storage: storage, machine: machine, clock: clock}
}

type QueueView struct {
	Jobs   []queue.ScoredJob                 `json:"jobs"`
	Stages map[queue.Stage][]queue.ScoredJob `json:"stages"`
}

// ComputeQueue returns the filtered, scored, ordered queue and its kanban
// grouping. Same inputs and same clock reading give the same list.
func (s *Scheduler) ComputeQueue(ctx context.Context, filter queue.Filter) (*QueueView, error) {
	const op = "service.scheduler.ComputeQueue"

	jobs, err := s.storage.ListJobs(ctx, filter.JobFilter())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	ordered := queue.Order(jobs, s.clock.Now(), filter)

	return &QueueView{
		Jobs:   ordered,
		Stages: queue.GroupByStage(ordered),
	}, nil
}

type JobDetails struct {
	Job       *storage.ProductionJob        `json:"job"`
	Events    []*storage.JobEvent           `json:"events"`
	QCResults []*storage.QCCheckpointResult `json:"qc_results"`
}

// Details fetches the job, its event history and QC results in parallel.
func (s *Scheduler) Details(ctx context.Context, jobID string) (*JobDetails, error) {
	const op = "service.scheduler.Details"

	var details JobDetails

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		details.Job, err = s.storage.GetJob(gCtx, jobID)
		if err != nil {
			return fmt.Errorf("job: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		details.Events, err = s.storage.ListJobEvents(gCtx, jobID)
		if err != nil {
			return fmt.Errorf("events: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		details.QCResults, err = s.storage.ListQCResults(gCtx, jobID)
		if err != nil {
			return fmt.Errorf("qc results: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &details, nil
}

// NewJob carries the fields a caller supplies when creating a job, either
// standalone or from an accepted order's work item.
type NewJob struct {
	JobNumber   string           `json:"job_number"`
	OrderID     *string          `json:"order_id,omitempty"`
	OrderNumber *string          `json:"order_number,omitempty"`
	Customer    *string          `json:"customer,omitempty"`
	WorkType    string           `json:"work_type"`
	Priority    storage.Priority `json:"priority"`
	OrderedQty  int              `json:"ordered_qty"`
	DueDate     *string          `json:"due_date,omitempty"` // YYYY-MM-DD
}

// CreateJob validates and persists a new pending job plus its created event.
func (s *Scheduler) CreateJob(ctx context.Context, req NewJob, actor string) (*storage.ProductionJob, error) {
	const op = "service.scheduler.CreateJob"

	if _, ok := constants.LookupWorkType(req.WorkType); !ok {
		return nil, fmt.Errorf("%s: %q: %w", op, req.WorkType, storage.ErrUnknownWorkType)
	}
	if !storage.ValidPriority(req.Priority) {
		return nil, fmt.Errorf("%s: tier %d: %w", op, req.Priority, storage.ErrInvalidPriority)
	}
	if req.OrderedQty <= 0 {
		return nil, fmt.Errorf("%s: ordered %d: %w", op, req.OrderedQty, storage.ErrInvalidQuantity)
	}

	now := s.clock.Now()

	jobNumber := strings.TrimSpace(req.JobNumber)
	if jobNumber == "" {
		jobNumber = fmt.Sprintf("PJ-%s", strings.ToUpper(uuid.NewString()[:8]))
	}

	job := &storage.ProductionJob{
		ID:          uuid.NewString(),
		JobNumber:   jobNumber,
		OrderID:     req.OrderID,
		OrderNumber: req.OrderNumber,
		Customer:    req.Customer,
		WorkType:    req.WorkType,
		Status:      storage.StatusPending,
		Priority:    req.Priority,
		OrderedQty:  req.OrderedQty,
		CreatedAt:   now,
		Version:     1,
	}

	if req.DueDate != nil && *req.DueDate != "" {
		due, err := parseDate(*req.DueDate)
		if err != nil {
			return nil, fmt.Errorf("%s: due date: %w", op, err)
		}
		job.DueDate = &due
	}

	event := &storage.JobEvent{
		ID:          uuid.NewString(),
		JobID:       job.ID,
		Action:      storage.EventCreated,
		Notes:       fmt.Sprintf("job %s created", job.JobNumber),
		PerformedBy: actor,
		PerformedAt: now,
	}

	if err := s.storage.CreateJob(ctx, job, event); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return job, nil
}

func parseDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}

// ChangeStatus runs one state machine transition and persists it.
func (s *Scheduler) ChangeStatus(ctx context.Context, jobID string, target storage.JobStatus, notes, actor string) (*storage.ProductionJob, error) {
	const op = "service.scheduler.ChangeStatus"

	job, err := s.storage.GetJob(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	event, err := s.machine.Transition(job, target, notes, actor)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.storage.UpdateJobWithEvent(ctx, job, event); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return job, nil
}

// LogProduction records quantity units produced on an in_progress job.
// produced_qty never exceeds ordered_qty.
func (s *Scheduler) LogProduction(ctx context.Context, jobID string, quantity int, notes, actor string) (*storage.ProductionJob, error) {
	const op = "service.scheduler.LogProduction"

	job, err := s.storage.GetJob(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if job.Status != storage.StatusInProgress {
		return nil, fmt.Errorf("%s: job %s in %s: %w", op, job.JobNumber, job.Status, storage.ErrInvalidState)
	}
	if quantity <= 0 {
		return nil, fmt.Errorf("%s: %d: %w", op, quantity, storage.ErrInvalidQuantity)
	}
	if job.ProducedQty+quantity > job.OrderedQty {
		return nil, fmt.Errorf("%s: %d over ordered %d: %w", op, job.ProducedQty+quantity, job.OrderedQty, storage.ErrInvalidQuantity)
	}

	job.ProducedQty += quantity

	event := s.machine.Event(job, storage.EventProduced, notes, actor)
	event.ProducedQty = &quantity

	if err := s.storage.UpdateJobWithEvent(ctx, job, event); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return job, nil
}
