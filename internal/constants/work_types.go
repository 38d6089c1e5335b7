package constants

// WorkType describes one production process. The set is closed: unknown codes
// are rejected at the boundary instead of falling back to a default.
type WorkType struct {
	Code  string
	Label string

	// RequiresStation blocks the move to in_progress until a station is bound.
	RequiresStation bool

	// Checkpoints is the ordered QC checkpoint template for this process.
	Checkpoints []string
}

var workTypes = map[string]WorkType{
	"cutting": {
		Code:            "cutting",
		Label:           "Fabric cutting",
		RequiresStation: true,
		Checkpoints:     []string{"pattern match", "edge quality", "piece count"},
	},
	"sewing": {
		Code:            "sewing",
		Label:           "Sewing",
		RequiresStation: true,
		Checkpoints:     []string{"stitch quality", "seam strength", "thread tension"},
	},
	"screen_print": {
		Code:            "screen_print",
		Label:           "Screen printing",
		RequiresStation: true,
		Checkpoints:     []string{"color accuracy", "print placement", "cure quality"},
	},
	"embroidery": {
		Code:            "embroidery",
		Label:           "Embroidery",
		RequiresStation: true,
		Checkpoints:     []string{"stitch quality", "thread tension", "backing removal"},
	},
	"heat_transfer": {
		Code:            "heat_transfer",
		Label:           "Heat transfer",
		RequiresStation: true,
		Checkpoints:     []string{"placement", "adhesion", "color accuracy"},
	},
	"finishing": {
		Code:            "finishing",
		Label:           "Finishing and packing",
		RequiresStation: false,
		Checkpoints:     []string{"final inspection", "labeling", "packaging"},
	},
}

// LookupWorkType returns the registry entry for a code.
func LookupWorkType(code string) (WorkType, bool) {
	wt, ok := workTypes[code]
	return wt, ok
}

// WorkTypeCodes returns every registered code, for validation lists in responses.
func WorkTypeCodes() []string {
	codes := make([]string, 0, len(workTypes))
	for code := range workTypes {
		codes = append(codes, code)
	}
	return codes
}

// CheckpointTemplate returns the ordered checkpoint names for a work type.
func CheckpointTemplate(code string) ([]string, bool) {
	wt, ok := workTypes[code]
	if !ok {
		return nil, false
	}
	return wt.Checkpoints, true
}

// HasCheckpoint reports whether name belongs to the work type's template.
func HasCheckpoint(code, name string) bool {
	wt, ok := workTypes[code]
	if !ok {
		return false
	}
	for _, cp := range wt.Checkpoints {
		if cp == name {
			return true
		}
	}
	return false
}
