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

type ProductionLogger interface {
	LogProduction(ctx context.Context, jobID string, quantity int, notes, actor string) (*storage.ProductionJob, error)
}

func LogProduction(log *slog.Logger, logger ProductionLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.jobs.update.LogProduction"

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
			Notes    string `json:"notes"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Error("invalid JSON", slog.String("error", err.Error()))
			http.Error(w, "Invalid data", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		job, err := logger.LogProduction(ctx, jobID, req.Quantity, req.Notes, actor)
		if err != nil {
			writeDomainError(w, r, log, err)
			return
		}

		log.Info("production logged",
			slog.String("job_number", job.JobNumber),
			slog.Int("quantity", req.Quantity),
			slog.Int("produced_total", job.ProducedQty),
		)

		render.JSON(w, r, ResponseJob{
			Job:    job,
			Status: strconv.Itoa(http.StatusOK),
		})
	}
}
