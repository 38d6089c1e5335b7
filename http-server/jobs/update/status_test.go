package update

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"garment-golang/internal/storage"
)

type MockStatusChanger struct {
	mock.Mock
}

func (m *MockStatusChanger) ChangeStatus(ctx context.Context, jobID string, target storage.JobStatus, notes, actor string) (*storage.ProductionJob, error) {
	args := m.Called(ctx, jobID, target, notes, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.ProductionJob), args.Error(1)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func performStatusRequest(t *testing.T, changer StatusChanger, jobID, actor string, body string) *httptest.ResponseRecorder {
	t.Helper()

	router := chi.NewRouter()
	router.Post("/api/jobs/{id}/status", ChangeStatus(discardLogger(), changer))

	req := httptest.NewRequest(http.MethodPost, "/api/jobs/"+jobID+"/status", bytes.NewBufferString(body))
	if actor != "" {
		req.Header.Set("X-Actor", actor)
	}

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestChangeStatusHandler_Success(t *testing.T) {
	changer := new(MockStatusChanger)
	job := &storage.ProductionJob{
		ID:        "job-1",
		JobNumber: "PJ-1001",
		WorkType:  "sewing",
		Status:    storage.StatusQCCheck,
	}

	changer.On("ChangeStatus", mock.Anything, "job-1", storage.StatusQCCheck, "shift done", "operator-1").
		Return(job, nil)

	rr := performStatusRequest(t, changer, "job-1", "operator-1",
		`{"status": "qc_check", "notes": "shift done"}`)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp ResponseJob
	assert.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "200", resp.Status)
	assert.Equal(t, "PJ-1001", resp.Job.JobNumber)
	assert.Equal(t, storage.StatusQCCheck, resp.Job.Status)

	changer.AssertExpectations(t)
}

func TestChangeStatusHandler_MissingActor(t *testing.T) {
	changer := new(MockStatusChanger)

	rr := performStatusRequest(t, changer, "job-1", "", `{"status": "qc_check"}`)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	changer.AssertNotCalled(t, "ChangeStatus")
}

func TestChangeStatusHandler_UnknownStatus(t *testing.T) {
	changer := new(MockStatusChanger)

	rr := performStatusRequest(t, changer, "job-1", "operator-1", `{"status": "shipped"}`)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	changer.AssertNotCalled(t, "ChangeStatus")
}

func TestChangeStatusHandler_InvalidJSON(t *testing.T) {
	changer := new(MockStatusChanger)

	rr := performStatusRequest(t, changer, "job-1", "operator-1", `{"status": `)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	changer.AssertNotCalled(t, "ChangeStatus")
}

func TestChangeStatusHandler_DomainErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"not found", storage.ErrNotFound, http.StatusNotFound},
		{"stale version", storage.ErrConcurrentModification, http.StatusConflict},
		{"bad transition", storage.ErrInvalidTransition, http.StatusUnprocessableEntity},
		{"no station", storage.ErrPreconditionFailed, http.StatusUnprocessableEntity},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			changer := new(MockStatusChanger)
			changer.On("ChangeStatus", mock.Anything, "job-1", storage.StatusInProgress, "", "operator-1").
				Return(nil, tc.err)

			rr := performStatusRequest(t, changer, "job-1", "operator-1", `{"status": "in_progress"}`)

			assert.Equal(t, tc.code, rr.Code)

			var resp ResponseJob
			assert.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
			assert.NotEmpty(t, resp.Error)
		})
	}
}
