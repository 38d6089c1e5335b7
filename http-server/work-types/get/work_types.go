package get

import (
	"log/slog"
	"net/http"
	"sort"
	"strconv"

	"github.com/go-chi/render"

	"garment-golang/internal/constants"
)

type WorkTypeView struct {
	Code            string   `json:"code"`
	Label           string   `json:"label"`
	RequiresStation bool     `json:"requires_station"`
	Checkpoints     []string `json:"checkpoints"`
}

type ResponseWorkTypes struct {
	WorkTypes []WorkTypeView `json:"work_types"`
	Status    string         `json:"status"`
}

// GetWorkTypes returns the closed work-type registry with QC checkpoint
// templates, for the job creation and QC dialogs.
func GetWorkTypes(log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		codes := constants.WorkTypeCodes()
		sort.Strings(codes)

		views := make([]WorkTypeView, 0, len(codes))
		for _, code := range codes {
			wt, _ := constants.LookupWorkType(code)
			views = append(views, WorkTypeView{
				Code:            wt.Code,
				Label:           wt.Label,
				RequiresStation: wt.RequiresStation,
				Checkpoints:     wt.Checkpoints,
			})
		}

		render.JSON(w, r, ResponseWorkTypes{
			WorkTypes: views,
			Status:    strconv.Itoa(http.StatusOK),
		})
	}
}
