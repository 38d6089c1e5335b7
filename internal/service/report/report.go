package report

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"garment-golang/internal/constants"
	"garment-golang/internal/service/queue"
	"garment-golang/internal/storage"
	"garment-golang/internal/timeutil"
)

type ReportStorage interface {
	ListJobs(ctx context.Context, filter storage.JobFilter) ([]*storage.ProductionJob, error)
}

// Service renders the production queue snapshot as an Excel workbook for the
// ERP reporting screen.
type Service struct {
	storage ReportStorage
	clock   timeutil.Clock
}

func NewService(storage ReportStorage, clock timeutil.Clock) *Service {
	return &Service{storage: storage, clock: clock}
}

var headers = []string{
	"Job #", "Order #", "Customer", "Work type", "Status", "Priority",
	"Ordered", "Produced", "Passed", "Failed", "Due date", "Score",
}

func (s *Service) GenerateExcel(ctx context.Context, filter queue.Filter) ([]byte, error) {
	const op = "service.report.GenerateExcel"

	jobs, err := s.storage.ListJobs(ctx, filter.JobFilter())
	if err != nil {
		return nil, fmt.Errorf("%s: fetch jobs: %w", op, err)
	}

	ordered := queue.Order(jobs, s.clock.Now(), filter)

	f := excelize.NewFile()
	defer f.Close()
	sheet := "Production queue"
	f.SetSheetName("Sheet1", sheet)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true},
		Fill:   excelize.Fill{Type: "pattern", Color: []string{"E0E0E0"}, Pattern: 1},
		Border: []excelize.Border{{Type: "bottom", Color: "000000", Style: 2}},
	})

	for i, name := range headers {
		f.SetCellValue(sheet, cellName(i+1, 1), name)
	}
	lastCol, _ := excelize.CoordinatesToCellName(len(headers), 1)
	f.SetCellStyle(sheet, "A1", lastCol, headerStyle)

	for rowIdx, j := range ordered {
		rowNum := rowIdx + 2

		f.SetCellValue(sheet, cellName(1, rowNum), j.JobNumber)
		f.SetCellValue(sheet, cellName(2, rowNum), strOrDash(j.OrderNumber))
		f.SetCellValue(sheet, cellName(3, rowNum), strOrDash(j.Customer))
		f.SetCellValue(sheet, cellName(4, rowNum), workTypeLabel(j.WorkType))
		f.SetCellValue(sheet, cellName(5, rowNum), string(j.Status))
		f.SetCellValue(sheet, cellName(6, rowNum), priorityLabel(j.Priority))
		f.SetCellValue(sheet, cellName(7, rowNum), j.OrderedQty)
		f.SetCellValue(sheet, cellName(8, rowNum), j.ProducedQty)
		f.SetCellValue(sheet, cellName(9, rowNum), j.PassedQty)
		f.SetCellValue(sheet, cellName(10, rowNum), j.FailedQty)
		if j.DueDate != nil {
			f.SetCellValue(sheet, cellName(11, rowNum), j.DueDate.Format("2006-01-02"))
		} else {
			f.SetCellValue(sheet, cellName(11, rowNum), "-")
		}
		f.SetCellValue(sheet, cellName(12, rowNum), j.Score)
	}

	// Freeze the header row.
	f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		XSplit:      0,
		YSplit:      1,
		TopLeftCell: "A2",
	})
	f.SetColWidth(sheet, "A", "L", 15)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return buf.Bytes(), nil
}

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

func strOrDash(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}

func workTypeLabel(code string) string {
	if wt, ok := constants.LookupWorkType(code); ok {
		return wt.Label
	}
	return code
}

func priorityLabel(p storage.Priority) string {
	switch p {
	case storage.PriorityEmergency:
		return "emergency"
	case storage.PriorityUrgent:
		return "urgent"
	case storage.PriorityRush:
		return "rush"
	default:
		return "normal"
	}
}
