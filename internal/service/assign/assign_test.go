package assign

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"garment-golang/internal/service/lifecycle"
	"garment-golang/internal/storage"
	"garment-golang/internal/timeutil"
)

var testNow = time.Date(2025, 11, 3, 10, 0, 0, 0, time.UTC)

type MockAssignStorage struct {
	mock.Mock
}

func (m *MockAssignStorage) GetJob(ctx context.Context, id string) (*storage.ProductionJob, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.ProductionJob), args.Error(1)
}

func (m *MockAssignStorage) GetStation(ctx context.Context, id string) (*storage.Station, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.Station), args.Error(1)
}

func (m *MockAssignStorage) SaveAssignment(ctx context.Context, job *storage.ProductionJob, event *storage.JobEvent) error {
	args := m.Called(ctx, job, event)
	return args.Error(0)
}

func newAssignor(storage AssignStorage) *Assignor {
	return NewAssignor(storage, lifecycle.New(timeutil.FixedClock{T: testNow}))
}

func newJob(status storage.JobStatus) *storage.ProductionJob {
	return &storage.ProductionJob{
		ID:         "job-1",
		JobNumber:  "PJ-1001",
		WorkType:   "embroidery",
		Status:     status,
		OrderedQty: 40,
		CreatedAt:  testNow.Add(-24 * time.Hour),
		Version:    1,
	}
}

func newStation(status storage.StationStatus, workTypes ...string) *storage.Station {
	return &storage.Station{
		ID:        "st-1",
		Code:      "EMB-01",
		Name:      "Embroidery line 1",
		Status:    status,
		WorkTypes: workTypes,
	}
}

func TestAssign_AdvancesPendingToAssigned(t *testing.T) {
	mockStorage := new(MockAssignStorage)
	job := newJob(storage.StatusPending)
	station := newStation(storage.StationActive, "embroidery", "sewing")

	mockStorage.On("GetJob", mock.Anything, "job-1").Return(job, nil)
	mockStorage.On("GetStation", mock.Anything, "st-1").Return(station, nil)
	mockStorage.On("SaveAssignment", mock.Anything, job, mock.MatchedBy(func(e *storage.JobEvent) bool {
		return e.Action == storage.EventAssigned &&
			*e.FromStatus == storage.StatusPending &&
			*e.ToStatus == storage.StatusAssigned
	})).Return(nil)

	result, err := newAssignor(mockStorage).Assign(context.Background(), "job-1", "st-1", "planner-1")

	assert.NoError(t, err)
	assert.Equal(t, storage.StatusAssigned, result.Status)
	assert.Equal(t, "st-1", *result.StationID)

	mockStorage.AssertExpectations(t)
}

func TestAssign_StationSwapKeepsStatus(t *testing.T) {
	mockStorage := new(MockAssignStorage)
	oldStation := "st-0"
	job := newJob(storage.StatusAssigned)
	job.StationID = &oldStation
	station := newStation(storage.StationActive, "embroidery")

	mockStorage.On("GetJob", mock.Anything, "job-1").Return(job, nil)
	mockStorage.On("GetStation", mock.Anything, "st-1").Return(station, nil)
	mockStorage.On("SaveAssignment", mock.Anything, job, mock.MatchedBy(func(e *storage.JobEvent) bool {
		return e.Action == storage.EventAssigned && e.FromStatus == nil
	})).Return(nil)

	result, err := newAssignor(mockStorage).Assign(context.Background(), "job-1", "st-1", "planner-1")

	assert.NoError(t, err)
	assert.Equal(t, storage.StatusAssigned, result.Status)
	assert.Equal(t, "st-1", *result.StationID)

	mockStorage.AssertExpectations(t)
}

func TestAssign_IncompatibleStation(t *testing.T) {
	mockStorage := new(MockAssignStorage)
	job := newJob(storage.StatusPending)
	station := newStation(storage.StationActive, "screen_print")

	mockStorage.On("GetJob", mock.Anything, "job-1").Return(job, nil)
	mockStorage.On("GetStation", mock.Anything, "st-1").Return(station, nil)

	_, err := newAssignor(mockStorage).Assign(context.Background(), "job-1", "st-1", "planner-1")

	assert.ErrorIs(t, err, storage.ErrIncompatibleStation)
	assert.Nil(t, job.StationID, "station must not stick on rejection")
	mockStorage.AssertNotCalled(t, "SaveAssignment")
}

func TestAssign_InactiveStation(t *testing.T) {
	mockStorage := new(MockAssignStorage)
	job := newJob(storage.StatusQueued)
	station := newStation(storage.StationInactive, "embroidery")

	mockStorage.On("GetJob", mock.Anything, "job-1").Return(job, nil)
	mockStorage.On("GetStation", mock.Anything, "st-1").Return(station, nil)

	_, err := newAssignor(mockStorage).Assign(context.Background(), "job-1", "st-1", "planner-1")

	assert.ErrorIs(t, err, storage.ErrStationInactive)
	mockStorage.AssertNotCalled(t, "SaveAssignment")
}

func TestAssign_RejectedOnceInProduction(t *testing.T) {
	mockStorage := new(MockAssignStorage)
	job := newJob(storage.StatusInProgress)

	mockStorage.On("GetJob", mock.Anything, "job-1").Return(job, nil)

	_, err := newAssignor(mockStorage).Assign(context.Background(), "job-1", "st-1", "planner-1")

	assert.ErrorIs(t, err, storage.ErrInvalidState)
	mockStorage.AssertNotCalled(t, "GetStation")
}

func TestAssign_ConcurrentDeactivationSurfaces(t *testing.T) {
	// storage re-checks inside the transaction; its rejection must bubble up
	mockStorage := new(MockAssignStorage)
	job := newJob(storage.StatusPending)
	station := newStation(storage.StationActive, "embroidery")

	mockStorage.On("GetJob", mock.Anything, "job-1").Return(job, nil)
	mockStorage.On("GetStation", mock.Anything, "st-1").Return(station, nil)
	mockStorage.On("SaveAssignment", mock.Anything, mock.Anything, mock.Anything).
		Return(storage.ErrStationInactive)

	_, err := newAssignor(mockStorage).Assign(context.Background(), "job-1", "st-1", "planner-1")

	assert.ErrorIs(t, err, storage.ErrStationInactive)
}

func TestCompatibleStations(t *testing.T) {
	job := newJob(storage.StatusPending)

	active := newStation(storage.StationActive, "embroidery")
	inactive := &storage.Station{ID: "st-2", Code: "EMB-02", Status: storage.StationInactive, WorkTypes: []string{"embroidery"}}
	wrongType := &storage.Station{ID: "st-3", Code: "PRT-01", Status: storage.StationActive, WorkTypes: []string{"screen_print"}}

	compatible := CompatibleStations(job, []*storage.Station{active, inactive, wrongType})

	assert.Len(t, compatible, 1)
	assert.Equal(t, "st-1", compatible[0].ID)
}
