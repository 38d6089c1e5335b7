package update

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/render"

	"garment-golang/internal/storage"
)

type ResponseJob struct {
	Job    *storage.ProductionJob `json:"job,omitempty"`
	Status string                 `json:"status"`
	Error  string                 `json:"error,omitempty"`
}

// writeDomainError maps domain error kinds to HTTP statuses: 404 for missing
// references, 409 for optimistic-lock conflicts (retry with fresh state),
// 422 for rule violations, 500 for everything infrastructural.
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
