package save

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

type ReworkCreator interface {
	CreateRework(ctx context.Context, jobID string, quantity int, reason, actor string) (*storage.ProductionJob, error)
}

func CreateRework(log *slog.Logger, creator ReworkCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.jobs.save.CreateRework"

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
			Quantity int    `json:"quantity"`
			Reason   string `json:"reason"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Error("invalid JSON", slog.String("error", err.Error()))
			http.Error(w, "Invalid data", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		child, err := creator.CreateRework(ctx, jobID, req.Quantity, req.Reason, actor)
		if err != nil {
			writeDomainError(w, r, log, err)
			return
		}

		log.Info("rework job created",
			slog.String("original_job_id", jobID),
			slog.String("rework_job_number", child.JobNumber),
		)

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, ResponseJob{
			Job:    child,
			Status: strconv.Itoa(http.StatusCreated),
		})
	}
}
