package assign

import (
	"context"
	"fmt"

	"garment-golang/internal/service/lifecycle"
	"garment-golang/internal/storage"
)

type AssignStorage interface {
	GetJob(ctx context.Context, id string) (*storage.ProductionJob, error)
	GetStation(ctx context.Context, id string) (*storage.Station, error)
	// SaveAssignment writes the job and event in one transaction and
	// re-validates the station (active + compatible) inside it.
	SaveAssignment(ctx context.Context, job *storage.ProductionJob, event *storage.JobEvent) error
}

type Assignor struct {
	storage AssignStorage
	machine *lifecycle.StateMachine
}

func NewAssignor(storage AssignStorage, machine *lifecycle.StateMachine) *Assignor {
	return &Assignor{storage: storage, machine: machine}
}

// CompatibleStations filters to active stations whose work type set covers
// the job's work type. Pure, no side effects.
func CompatibleStations(job *storage.ProductionJob, stations []*storage.Station) []*storage.Station {
	var out []*storage.Station
	for _, st := range stations {
		if st.Status == storage.StationActive && st.Supports(job.WorkType) {
			out = append(out, st)
		}
	}
	return out
}

// Assign binds a job to a station. Allowed while the job sits in pending,
// queued or assigned (re-assignment swaps the station); a pending/queued job
// advances to assigned. One `assigned` event is appended either way. The
// storage layer re-checks the station at commit time, so a station flipping
// inactive mid-operation surfaces as ErrStationInactive, not a silent bind.
func (a *Assignor) Assign(ctx context.Context, jobID, stationID, actor string) (*storage.ProductionJob, error) {
	const op = "service.assign.Assign"

	job, err := a.storage.GetJob(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	switch job.Status {
	case storage.StatusPending, storage.StatusQueued, storage.StatusAssigned:
	default:
		return nil, fmt.Errorf("%s: job %s in %s: %w", op, job.JobNumber, job.Status, storage.ErrInvalidState)
	}

	station, err := a.storage.GetStation(ctx, stationID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !station.Supports(job.WorkType) {
		return nil, fmt.Errorf("%s: station %s, work type %s: %w", op, station.Code, job.WorkType, storage.ErrIncompatibleStation)
	}
	if station.Status != storage.StationActive {
		return nil, fmt.Errorf("%s: station %s: %w", op, station.Code, storage.ErrStationInactive)
	}

	job.StationID = &station.ID

	var event *storage.JobEvent
	if job.Status == storage.StatusAssigned {
		// Station swap, no status change.
		event = a.machine.Event(job, storage.EventAssigned, fmt.Sprintf("station %s", station.Code), actor)
	} else {
		event, err = a.machine.Transition(job, storage.StatusAssigned, fmt.Sprintf("station %s", station.Code), actor)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		event.Action = storage.EventAssigned
	}

	if err := a.storage.SaveAssignment(ctx, job, event); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return job, nil
}
