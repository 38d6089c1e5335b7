package get

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"garment-golang/internal/constants"
	"garment-golang/internal/storage"
)

type StationLister interface {
	ListStations(ctx context.Context, filter storage.StationFilter) ([]*storage.Station, error)
}

type ResponseStations struct {
	Stations []*storage.Station `json:"stations"`
	Status   string             `json:"status"`
	Error    string             `json:"error,omitempty"`
}

// GetStations lists active stations, optionally narrowed to those compatible
// with a work type, for the assignment picker in the UI.
func GetStations(log *slog.Logger, lister StationLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.stations.get.GetStations"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		workType := r.URL.Query().Get("work_type")
		if workType != "" {
			if _, ok := constants.LookupWorkType(workType); !ok {
				http.Error(w, "Unknown work type", http.StatusBadRequest)
				return
			}
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		stations, err := lister.ListStations(ctx, storage.StationFilter{
			WorkType:   workType,
			ActiveOnly: true,
		})
		if err != nil {
			log.Error("failed to list stations", slog.String("error", err.Error()))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, ResponseStations{Error: "failed to list stations"})
			return
		}

		render.JSON(w, r, ResponseStations{
			Stations: stations,
			Status:   strconv.Itoa(http.StatusOK),
		})
	}
}

// GetAllStationsAdmin returns every station regardless of status.
func GetAllStationsAdmin(log *slog.Logger, lister StationLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.stations.get.GetAllStationsAdmin"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		stations, err := lister.ListStations(ctx, storage.StationFilter{})
		if err != nil {
			log.Error("failed to list stations", slog.String("error", err.Error()))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, ResponseStations{Error: "failed to list stations"})
			return
		}

		render.JSON(w, r, ResponseStations{
			Stations: stations,
			Status:   strconv.Itoa(http.StatusOK),
		})
	}
}
