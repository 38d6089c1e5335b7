package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"garment-golang/internal/storage"
)

// insertEvent appends one audit row. Events are append-only; there is no
// update or delete path anywhere in this package.
func insertEvent(ctx context.Context, tx *sql.Tx, event *storage.JobEvent) error {
	var fromStatus, toStatus *string
	if event.FromStatus != nil {
		s := string(*event.FromStatus)
		fromStatus = &s
	}
	if event.ToStatus != nil {
		s := string(*event.ToStatus)
		toStatus = &s
	}

	_, err := tx.ExecContext(ctx,
		`INSERT INTO job_events (id, job_id, action, from_status, to_status, produced_qty, notes, performed_by, performed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		event.ID, event.JobID, string(event.Action),
		fromStatus, toStatus, event.ProducedQty,
		event.Notes, event.PerformedBy, event.PerformedAt,
	)
	if err != nil {
		return fmt.Errorf("event %s: %w", event.Action, err)
	}
	return nil
}

func (s *Storage) ListJobEvents(ctx context.Context, jobID string) ([]*storage.JobEvent, error) {
	const op = "storage.mysql.ListJobEvents"

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, job_id, action, from_status, to_status, produced_qty, notes, performed_by, performed_at
		 FROM job_events WHERE job_id = ? ORDER BY performed_at, id`, jobID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var events []*storage.JobEvent
	for rows.Next() {
		var event storage.JobEvent
		var fromStatus, toStatus, notes sql.NullString
		var producedQty sql.NullInt64

		err := rows.Scan(&event.ID, &event.JobID, &event.Action,
			&fromStatus, &toStatus, &producedQty,
			&notes, &event.PerformedBy, &event.PerformedAt)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		if fromStatus.Valid {
			st := storage.JobStatus(fromStatus.String)
			event.FromStatus = &st
		}
		if toStatus.Valid {
			st := storage.JobStatus(toStatus.String)
			event.ToStatus = &st
		}
		if producedQty.Valid {
			qty := int(producedQty.Int64)
			event.ProducedQty = &qty
		}
		event.Notes = notes.String

		events = append(events, &event)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return events, nil
}

func (s *Storage) ListQCResults(ctx context.Context, jobID string) ([]*storage.QCCheckpointResult, error) {
	const op = "storage.mysql.ListQCResults"

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, job_id, checkpoint_name, passed, notes, checked_at
		 FROM qc_checkpoint_results WHERE job_id = ? ORDER BY checked_at, id`, jobID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var results []*storage.QCCheckpointResult
	for rows.Next() {
		var res storage.QCCheckpointResult
		var notes sql.NullString

		err := rows.Scan(&res.ID, &res.JobID, &res.CheckpointName, &res.Passed, &notes, &res.CheckedAt)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		res.Notes = nullStr(notes)

		results = append(results, &res)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return results, nil
}

func nullStr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	return &s.String
}

func nullTime(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	return &t.Time
}
