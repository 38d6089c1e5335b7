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

type StatusChanger interface {
	ChangeStatus(ctx context.Context, jobID string, target storage.JobStatus, notes, actor string) (*storage.ProductionJob, error)
}

func ChangeStatus(log *slog.Logger, changer StatusChanger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.jobs.update.ChangeStatus"

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
			Status string `json:"status"`
			Notes  string `json:"notes"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Error("invalid JSON", slog.String("error", err.Error()))
			http.Error(w, "Invalid data", http.StatusBadRequest)
			return
		}

		target := storage.JobStatus(req.Status)
		if !storage.ValidStatus(target) {
			http.Error(w, "Unknown status", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		job, err := changer.ChangeStatus(ctx, jobID, target, req.Notes, actor)
		if err != nil {
			writeDomainError(w, r, log, err)
			return
		}

		log.Info("status changed",
			slog.String("job_number", job.JobNumber),
			slog.String("status", string(job.Status)),
		)

		render.JSON(w, r, ResponseJob{
			Job:    job,
			Status: strconv.Itoa(http.StatusOK),
		})
	}
}
