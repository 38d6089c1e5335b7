package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"garment-golang/internal/service/lifecycle"
	"garment-golang/internal/service/queue"
	"garment-golang/internal/storage"
	"garment-golang/internal/timeutil"
)

var testNow = time.Date(2025, 11, 3, 10, 0, 0, 0, time.UTC)

type MockSchedulerStorage struct {
	mock.Mock
}

func (m *MockSchedulerStorage) GetJob(ctx context.Context, id string) (*storage.ProductionJob, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.ProductionJob), args.Error(1)
}

func (m *MockSchedulerStorage) ListJobs(ctx context.Context, filter storage.JobFilter) ([]*storage.ProductionJob, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*storage.ProductionJob), args.Error(1)
}

func (m *MockSchedulerStorage) CreateJob(ctx context.Context, job *storage.ProductionJob, event *storage.JobEvent) error {
	args := m.Called(ctx, job, event)
	return args.Error(0)
}

func (m *MockSchedulerStorage) UpdateJobWithEvent(ctx context.Context, job *storage.ProductionJob, event *storage.JobEvent) error {
	args := m.Called(ctx, job, event)
	return args.Error(0)
}

func (m *MockSchedulerStorage) ListJobEvents(ctx context.Context, jobID string) ([]*storage.JobEvent, error) {
	args := m.Called(ctx, jobID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*storage.JobEvent), args.Error(1)
}

func (m *MockSchedulerStorage) ListQCResults(ctx context.Context, jobID string) ([]*storage.QCCheckpointResult, error) {
	args := m.Called(ctx, jobID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*storage.QCCheckpointResult), args.Error(1)
}

func newScheduler(storage SchedulerStorage) *Scheduler {
	clock := timeutil.FixedClock{T: testNow}
	return New(storage, lifecycle.New(clock), clock)
}

func newJob(id string, status storage.JobStatus) *storage.ProductionJob {
	stationID := "st-1"
	return &storage.ProductionJob{
		ID:         id,
		JobNumber:  "PJ-" + id,
		WorkType:   "sewing",
		Status:     status,
		Priority:   storage.PriorityNormal,
		OrderedQty: 100,
		StationID:  &stationID,
		CreatedAt:  testNow.Add(-24 * time.Hour),
		Version:    1,
	}
}

func TestCreateJob(t *testing.T) {
	mockStorage := new(MockSchedulerStorage)

	mockStorage.On("CreateJob", mock.Anything,
		mock.MatchedBy(func(job *storage.ProductionJob) bool {
			return job.Status == storage.StatusPending && job.Version == 1
		}),
		mock.MatchedBy(func(e *storage.JobEvent) bool {
			return e.Action == storage.EventCreated && e.PerformedBy == "planner-1"
		}),
	).Return(nil)

	due := "2025-11-10"
	job, err := newScheduler(mockStorage).CreateJob(context.Background(), NewJob{
		JobNumber:  "PJ-2001",
		WorkType:   "cutting",
		Priority:   storage.PriorityRush,
		OrderedQty: 250,
		DueDate:    &due,
	}, "planner-1")

	assert.NoError(t, err)
	assert.Equal(t, "PJ-2001", job.JobNumber)
	assert.Equal(t, storage.StatusPending, job.Status)
	assert.Equal(t, time.Date(2025, 11, 10, 0, 0, 0, 0, time.UTC), *job.DueDate)
	assert.Equal(t, testNow, job.CreatedAt)

	mockStorage.AssertExpectations(t)
}

func TestCreateJob_GeneratedNumber(t *testing.T) {
	mockStorage := new(MockSchedulerStorage)
	mockStorage.On("CreateJob", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	job, err := newScheduler(mockStorage).CreateJob(context.Background(), NewJob{
		WorkType:   "finishing",
		OrderedQty: 10,
	}, "planner-1")

	assert.NoError(t, err)
	assert.Regexp(t, `^PJ-[0-9A-F]{8}$`, job.JobNumber)
}

func TestCreateJob_Validation(t *testing.T) {
	mockStorage := new(MockSchedulerStorage)
	sched := newScheduler(mockStorage)

	_, err := sched.CreateJob(context.Background(), NewJob{WorkType: "welding", OrderedQty: 10}, "planner-1")
	assert.ErrorIs(t, err, storage.ErrUnknownWorkType)

	_, err = sched.CreateJob(context.Background(), NewJob{WorkType: "sewing", Priority: 7, OrderedQty: 10}, "planner-1")
	assert.ErrorIs(t, err, storage.ErrInvalidPriority)

	_, err = sched.CreateJob(context.Background(), NewJob{WorkType: "sewing", OrderedQty: 0}, "planner-1")
	assert.ErrorIs(t, err, storage.ErrInvalidQuantity)

	bad := "10.11.2025"
	_, err = sched.CreateJob(context.Background(), NewJob{WorkType: "sewing", OrderedQty: 10, DueDate: &bad}, "planner-1")
	assert.Error(t, err)

	mockStorage.AssertNotCalled(t, "CreateJob")
}

func TestChangeStatus(t *testing.T) {
	mockStorage := new(MockSchedulerStorage)
	job := newJob("1", storage.StatusInProgress)

	mockStorage.On("GetJob", mock.Anything, "1").Return(job, nil)
	mockStorage.On("UpdateJobWithEvent", mock.Anything, job,
		mock.MatchedBy(func(e *storage.JobEvent) bool {
			return e.Action == storage.EventStatusChanged && *e.ToStatus == storage.StatusQCCheck
		}),
	).Return(nil)

	updated, err := newScheduler(mockStorage).ChangeStatus(context.Background(), "1", storage.StatusQCCheck, "", "operator-1")

	assert.NoError(t, err)
	assert.Equal(t, storage.StatusQCCheck, updated.Status)
	mockStorage.AssertExpectations(t)
}

func TestChangeStatus_InvalidTransitionNotSaved(t *testing.T) {
	mockStorage := new(MockSchedulerStorage)
	job := newJob("1", storage.StatusCompleted)

	mockStorage.On("GetJob", mock.Anything, "1").Return(job, nil)

	_, err := newScheduler(mockStorage).ChangeStatus(context.Background(), "1", storage.StatusInProgress, "", "operator-1")

	assert.ErrorIs(t, err, storage.ErrInvalidTransition)
	mockStorage.AssertNotCalled(t, "UpdateJobWithEvent")
}

func TestLogProduction(t *testing.T) {
	mockStorage := new(MockSchedulerStorage)
	job := newJob("1", storage.StatusInProgress)
	job.ProducedQty = 40

	mockStorage.On("GetJob", mock.Anything, "1").Return(job, nil)
	mockStorage.On("UpdateJobWithEvent", mock.Anything, job,
		mock.MatchedBy(func(e *storage.JobEvent) bool {
			return e.Action == storage.EventProduced && *e.ProducedQty == 35
		}),
	).Return(nil)

	updated, err := newScheduler(mockStorage).LogProduction(context.Background(), "1", 35, "", "operator-1")

	assert.NoError(t, err)
	assert.Equal(t, 75, updated.ProducedQty)
	mockStorage.AssertExpectations(t)
}

func TestLogProduction_Bounds(t *testing.T) {
	mockStorage := new(MockSchedulerStorage)
	job := newJob("1", storage.StatusInProgress)
	job.ProducedQty = 90

	mockStorage.On("GetJob", mock.Anything, "1").Return(job, nil)
	sched := newScheduler(mockStorage)

	_, err := sched.LogProduction(context.Background(), "1", 11, "", "operator-1")
	assert.ErrorIs(t, err, storage.ErrInvalidQuantity)

	_, err = sched.LogProduction(context.Background(), "1", 0, "", "operator-1")
	assert.ErrorIs(t, err, storage.ErrInvalidQuantity)

	assert.Equal(t, 90, job.ProducedQty, "rejected log must not change quantity")
	mockStorage.AssertNotCalled(t, "UpdateJobWithEvent")
}

func TestLogProduction_WrongStatus(t *testing.T) {
	mockStorage := new(MockSchedulerStorage)
	job := newJob("1", storage.StatusQCCheck)

	mockStorage.On("GetJob", mock.Anything, "1").Return(job, nil)

	_, err := newScheduler(mockStorage).LogProduction(context.Background(), "1", 5, "", "operator-1")

	assert.ErrorIs(t, err, storage.ErrInvalidState)
}

func TestComputeQueue(t *testing.T) {
	mockStorage := new(MockSchedulerStorage)

	urgent := newJob("urgent", storage.StatusQueued)
	urgent.Priority = storage.PriorityUrgent
	normal := newJob("normal", storage.StatusQueued)
	embroidery := newJob("emb", storage.StatusQueued)
	embroidery.WorkType = "embroidery"

	// the work_type narrowing is pushed down to the repository; the in-memory
	// predicate still drops anything the repository returns beyond it
	mockStorage.On("ListJobs", mock.Anything, storage.JobFilter{WorkType: "sewing"}).
		Return([]*storage.ProductionJob{normal, urgent, embroidery}, nil)

	view, err := newScheduler(mockStorage).ComputeQueue(context.Background(), queue.Filter{WorkType: "sewing"})

	assert.NoError(t, err)
	assert.Len(t, view.Jobs, 2, "embroidery job filtered out")
	assert.Equal(t, "urgent", view.Jobs[0].ID)
	assert.Equal(t, "normal", view.Jobs[1].ID)
	assert.Len(t, view.Stages[queue.StageQueue], 2)
}

func TestDetails(t *testing.T) {
	mockStorage := new(MockSchedulerStorage)
	job := newJob("1", storage.StatusQCPassed)

	events := []*storage.JobEvent{{ID: "e1", JobID: "1", Action: storage.EventCreated}}
	results := []*storage.QCCheckpointResult{{ID: "q1", JobID: "1", CheckpointName: "stitch quality", Passed: true}}

	mockStorage.On("GetJob", mock.Anything, "1").Return(job, nil)
	mockStorage.On("ListJobEvents", mock.Anything, "1").Return(events, nil)
	mockStorage.On("ListQCResults", mock.Anything, "1").Return(results, nil)

	details, err := newScheduler(mockStorage).Details(context.Background(), "1")

	assert.NoError(t, err)
	assert.Equal(t, job, details.Job)
	assert.Equal(t, events, details.Events)
	assert.Equal(t, results, details.QCResults)
}

func TestDetails_NotFound(t *testing.T) {
	mockStorage := new(MockSchedulerStorage)

	mockStorage.On("GetJob", mock.Anything, "missing").Return(nil, storage.ErrNotFound)
	mockStorage.On("ListJobEvents", mock.Anything, "missing").Return([]*storage.JobEvent{}, nil)
	mockStorage.On("ListQCResults", mock.Anything, "missing").Return([]*storage.QCCheckpointResult{}, nil)

	_, err := newScheduler(mockStorage).Details(context.Background(), "missing")

	assert.ErrorIs(t, err, storage.ErrNotFound)
}
