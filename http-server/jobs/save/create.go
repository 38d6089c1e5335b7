package save

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"garment-golang/internal/middleware/auth"
	"garment-golang/internal/service/scheduler"
	"garment-golang/internal/storage"
)

type JobCreator interface {
	CreateJob(ctx context.Context, req scheduler.NewJob, actor string) (*storage.ProductionJob, error)
}

type ResponseJob struct {
	Job    *storage.ProductionJob `json:"job,omitempty"`
	Status string                 `json:"status"`
	Error  string                 `json:"error,omitempty"`
}

func CreateJob(log *slog.Logger, creator JobCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.jobs.save.CreateJob"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		actor := auth.Actor(r)
		if actor == "" {
			http.Error(w, "Missing X-Actor header", http.StatusBadRequest)
			return
		}

		var req scheduler.NewJob
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Error("invalid JSON", slog.String("error", err.Error()))
			http.Error(w, "Invalid data", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		job, err := creator.CreateJob(ctx, req, actor)
		if err != nil {
			writeDomainError(w, r, log, err)
			return
		}

		log.Info("job created", slog.String("job_number", job.JobNumber))

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, ResponseJob{
			Job:    job,
			Status: strconv.Itoa(http.StatusCreated),
		})
	}
}

// writeDomainError maps domain error kinds to HTTP statuses. Infrastructure
// failures stay 500; domain rejections are the caller's to handle.
func writeDomainError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	var status int
	switch {
	case errors.Is(err, storage.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, storage.ErrConcurrentModification):
		status = http.StatusConflict
	case errors.Is(err, storage.ErrUnknownWorkType),
		errors.Is(err, storage.ErrInvalidPriority):
		status = http.StatusBadRequest
	case errors.Is(err, storage.ErrInvalidState),
		errors.Is(err, storage.ErrInvalidQuantity),
		errors.Is(err, storage.ErrMissingReason),
		errors.Is(err, storage.ErrInvalidTransition),
		errors.Is(err, storage.ErrPreconditionFailed),
		errors.Is(err, storage.ErrIncompatibleStation),
		errors.Is(err, storage.ErrStationInactive):
		status = http.StatusUnprocessableEntity
	default:
		log.Error("unexpected error", slog.String("error", err.Error()))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(status)
	render.JSON(w, r, ResponseJob{
		Status: strconv.Itoa(status),
		Error:  err.Error(),
	})
}
