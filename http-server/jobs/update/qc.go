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
	"garment-golang/internal/service/quality"
	"garment-golang/internal/storage"
)

type QCChecker interface {
	PerformCheck(ctx context.Context, jobID string, results []quality.CheckResult, inspectedQty int, overallPassed bool, notes, actor string) (*storage.ProductionJob, error)
}

func PerformQCCheck(log *slog.Logger, checker QCChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.jobs.update.PerformQCCheck"

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
			Checkpoints  []quality.CheckResult `json:"checkpoints"`
			InspectedQty int                   `json:"inspected_qty"`
			Passed       bool                  `json:"passed"`
			Notes        string                `json:"notes"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Error("invalid JSON", slog.String("error", err.Error()))
			http.Error(w, "Invalid data", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		job, err := checker.PerformCheck(ctx, jobID, req.Checkpoints, req.InspectedQty, req.Passed, req.Notes, actor)
		if err != nil {
			writeDomainError(w, r, log, err)
			return
		}

		log.Info("qc check recorded",
			slog.String("job_number", job.JobNumber),
			slog.Bool("passed", req.Passed),
			slog.Int("inspected", req.InspectedQty),
		)

		render.JSON(w, r, ResponseJob{
			Job:    job,
			Status: strconv.Itoa(http.StatusOK),
		})
	}
}
