package generate_excel

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"garment-golang/internal/service/queue"
	"garment-golang/internal/storage"
)

type GenerateExcelHandler interface {
	GenerateExcel(ctx context.Context, filter queue.Filter) ([]byte, error)
}

// GenerateReportExcel streams the current production queue as a workbook.
func GenerateReportExcel(log *slog.Logger, gen GenerateExcelHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.report.GenerateReportExcel"

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

		// Workbook rendering gets more headroom than plain JSON reads.
		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()

		excelBytes, err := gen.GenerateExcel(ctx, filter)
		if err != nil {
			log.Error("failed to generate excel", "op", op, "err", err)
			http.Error(w, "Internal error", http.StatusInternalServerError)
			return
		}

		fileName := fmt.Sprintf("Production_Queue_%s.xlsx", time.Now().Format("2006-01-02_150405"))

		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", "attachment; filename="+fileName)
		w.Write(excelBytes)
	}
}
