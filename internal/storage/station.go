package storage

type StationStatus string

const (
	StationActive   StationStatus = "active"
	StationInactive StationStatus = "inactive"
)

type Station struct {
	ID     string        `json:"id"`
	Code   string        `json:"code"`
	Name   string        `json:"name"`
	Status StationStatus `json:"status"`
	// WorkTypes is the set of work type codes the station can execute.
	WorkTypes []string `json:"work_types"`
}

// Supports reports whether the station can execute the given work type.
func (s *Station) Supports(workType string) bool {
	for _, wt := range s.WorkTypes {
		if wt == workType {
			return true
		}
	}
	return false
}

type StationFilter struct {
	WorkType   string
	ActiveOnly bool
}
