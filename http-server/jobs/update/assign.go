package update

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"garment-golang/internal/middleware/auth"
	"garment-golang/internal/storage"
)

type StationAssigner interface {
	Assign(ctx context.Context, jobID, stationID, actor string) (*storage.ProductionJob, error)
}

func AssignStation(log *slog.Logger, assigner StationAssigner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.jobs.update.AssignStation"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		actor := auth.Actor(r)
		if actor == "" {
			http.Error(w, "Missing X-Actor header", http.StatusBadRequest)
			return
		}

		jobID := chi.URLParam(r, "id")
		if jobID == "" {
			http.Error(w, "Missing job id", http.StatusBadRequest)
			return
		}

		var req struct {
			StationID string `json:"station_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Error("invalid JSON", slog.String("error", err.Error()))
			http.Error(w, "Invalid data", http.StatusBadRequest)
			return
		}
		if req.StationID == "" {
			http.Error(w, "Missing station_id", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		job, err := assigner.Assign(ctx, jobID, req.StationID, actor)
		if err != nil {
			writeDomainError(w, r, log, err)
			return
		}

		log.Info("station assigned",
			slog.String("job_number", job.JobNumber),
			slog.String("station_id", req.StationID),
		)

		render.JSON(w, r, ResponseJob{
			Job:    job,
			Status: strconv.Itoa(http.StatusOK),
		})
	}
}
