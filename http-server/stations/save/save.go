package save

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"garment-golang/internal/constants"
	"garment-golang/internal/storage"
)

type StationSaver interface {
	SaveStation(ctx context.Context, station *storage.Station) error
	UpdateStation(ctx context.Context, station *storage.Station) error
}

type stationRequest struct {
	Code      string   `json:"code"`
	Name      string   `json:"name"`
	Status    string   `json:"status"`
	WorkTypes []string `json:"work_types"`
}

type ResponseStation struct {
	Station *storage.Station `json:"station,omitempty"`
	Status  string           `json:"status"`
	Error   string           `json:"error,omitempty"`
}

func SaveStationAdmin(log *slog.Logger, saver StationSaver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.stations.save.SaveStationAdmin"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req stationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Error("invalid JSON", slog.String("error", err.Error()))
			http.Error(w, "Invalid data", http.StatusBadRequest)
			return
		}

		station, errMsg := stationFromRequest(req)
		if errMsg != "" {
			http.Error(w, errMsg, http.StatusBadRequest)
			return
		}
		station.ID = uuid.NewString()

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := saver.SaveStation(ctx, station); err != nil {
			log.Error("failed to save station", slog.String("error", err.Error()))
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		log.Info("station saved", slog.String("code", station.Code))

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, ResponseStation{
			Station: station,
			Status:  strconv.Itoa(http.StatusCreated),
		})
	}
}

func UpdateStationAdmin(log *slog.Logger, saver StationSaver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.stations.save.UpdateStationAdmin"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		id := chi.URLParam(r, "id")
		if id == "" {
			http.Error(w, "Missing station id", http.StatusBadRequest)
			return
		}

		var req stationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Error("invalid JSON", slog.String("error", err.Error()))
			http.Error(w, "Invalid data", http.StatusBadRequest)
			return
		}

		station, errMsg := stationFromRequest(req)
		if errMsg != "" {
			http.Error(w, errMsg, http.StatusBadRequest)
			return
		}
		station.ID = id

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := saver.UpdateStation(ctx, station); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				http.Error(w, "Station not found", http.StatusNotFound)
				return
			}
			log.Error("failed to update station", slog.String("error", err.Error()))
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		log.Info("station updated", slog.String("code", station.Code))

		render.JSON(w, r, ResponseStation{
			Station: station,
			Status:  strconv.Itoa(http.StatusOK),
		})
	}
}

// stationFromRequest validates the closed vocabularies: status and every work
// type code must be known, nothing falls back silently.
func stationFromRequest(req stationRequest) (*storage.Station, string) {
	if req.Code == "" || req.Name == "" {
		return nil, "Missing code or name"
	}

	status := storage.StationStatus(req.Status)
	if status == "" {
		status = storage.StationActive
	}
	if status != storage.StationActive && status != storage.StationInactive {
		return nil, "Unknown station status"
	}

	if len(req.WorkTypes) == 0 {
		return nil, "Missing work_types"
	}
	for _, wt := range req.WorkTypes {
		if _, ok := constants.LookupWorkType(wt); !ok {
			return nil, "Unknown work type: " + wt
		}
	}

	return &storage.Station{
		Code:      req.Code,
		Name:      req.Name,
		Status:    status,
		WorkTypes: req.WorkTypes,
	}, ""
}
