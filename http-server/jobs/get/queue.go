package get

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"garment-golang/internal/service/queue"
	"garment-golang/internal/service/scheduler"
	"garment-golang/internal/storage"
)

type QueueComputer interface {
	ComputeQueue(ctx context.Context, filter queue.Filter) (*scheduler.QueueView, error)
}

type ResponseQueue struct {
	Jobs   []queue.ScoredJob                 `json:"jobs"`
	Stages map[queue.Stage][]queue.ScoredJob `json:"stages"`
	Status string                            `json:"status"`
	Error  string                            `json:"error,omitempty"`
}

// GetQueue answers the ordered production queue. Filters come from the query
// string; the score is recomputed on every call, so the view is only as stale
// as the client's refresh interval.
func GetQueue(log *slog.Logger, computer QueueComputer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.jobs.get.GetQueue"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		filter := queue.Filter{
			WorkType: r.URL.Query().Get("work_type"),
			Search:   r.URL.Query().Get("search"),
		}

		if minStr := r.URL.Query().Get("min_priority"); minStr != "" {
			min, err := strconv.Atoi(minStr)
			if err != nil || !storage.ValidPriority(storage.Priority(min)) {
				http.Error(w, "Invalid min_priority", http.StatusBadRequest)
				return
			}
			p := storage.Priority(min)
			filter.MinPriority = &p
		}

		if stageStr := r.URL.Query().Get("stage"); stageStr != "" {
			stage := queue.Stage(stageStr)
			if !queue.ValidStage(stage) {
				http.Error(w, "Unknown stage", http.StatusBadRequest)
				return
			}
			filter.Stage = stage
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		view, err := computer.ComputeQueue(ctx, filter)
		if err != nil {
			log.Error("failed to compute queue", slog.String("error", err.Error()))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, ResponseQueue{Error: "failed to compute queue"})
			return
		}

		render.JSON(w, r, ResponseQueue{
			Jobs:   view.Jobs,
			Stages: view.Stages,
			Status: strconv.Itoa(http.StatusOK),
		})
	}
}
