package get

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"garment-golang/internal/service/scheduler"
	"garment-golang/internal/storage"
)

type DetailsProvider interface {
	Details(ctx context.Context, jobID string) (*scheduler.JobDetails, error)
}

type ResponseJobDetails struct {
	*scheduler.JobDetails
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

func GetJobDetails(log *slog.Logger, provider DetailsProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.jobs.get.GetJobDetails"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		jobID := chi.URLParam(r, "id")
		if jobID == "" {
			http.Error(w, "Missing job id", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		details, err := provider.Details(ctx, jobID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				http.Error(w, "Job not found", http.StatusNotFound)
				return
			}
			log.Error("failed to load job details", slog.String("error", err.Error()))
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		render.JSON(w, r, ResponseJobDetails{
			JobDetails: details,
			Status:     strconv.Itoa(http.StatusOK),
		})
	}
}
