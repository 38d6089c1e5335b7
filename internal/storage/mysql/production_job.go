package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"garment-golang/internal/storage"
)

const jobColumns = `id, job_number, order_id, order_number, customer, work_type, status, priority,
	ordered_qty, produced_qty, passed_qty, failed_qty, station_id, assigned_user_id,
	due_date, created_at, started_at, completed_at,
	is_rework, rework_count, original_job_id, rework_reason, version`

func (s *Storage) GetJob(ctx context.Context, id string) (*storage.ProductionJob, error) {
	const op = "storage.mysql.GetJob"

	stmt := `SELECT ` + jobColumns + ` FROM production_jobs WHERE id = ?`

	job, err := scanJob(s.db.QueryRowContext(ctx, stmt, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: job %s: %w", op, id, storage.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return job, nil
}

func (s *Storage) ListJobs(ctx context.Context, filter storage.JobFilter) ([]*storage.ProductionJob, error) {
	const op = "storage.mysql.ListJobs"

	stmt := `SELECT ` + jobColumns + ` FROM production_jobs WHERE 1=1`
	var args []interface{}

	if filter.WorkType != "" {
		stmt += " AND work_type = ?"
		args = append(args, filter.WorkType)
	}
	if filter.MinPriority != nil {
		stmt += " AND priority >= ?"
		args = append(args, int(*filter.MinPriority))
	}
	if len(filter.Statuses) > 0 {
		stmt += " AND status IN (?" + strings.Repeat(",?", len(filter.Statuses)-1) + ")"
		for _, st := range filter.Statuses {
			args = append(args, string(st))
		}
	}
	if filter.Search != "" {
		stmt += " AND (job_number LIKE ? OR customer LIKE ?)"
		like := "%" + filter.Search + "%"
		args = append(args, like, like)
	}

	stmt += " ORDER BY created_at, id"

	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var jobs []*storage.ProductionJob
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		jobs = append(jobs, job)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return jobs, nil
}

func (s *Storage) CreateJob(ctx context.Context, job *storage.ProductionJob, event *storage.JobEvent) error {
	const op = "storage.mysql.CreateJob"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer tx.Rollback()

	if err := insertJob(ctx, tx, job); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := insertEvent(ctx, tx, event); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// UpdateJobWithEvent writes the job row with an optimistic version check and
// appends the event in the same transaction. A stale version surfaces as
// ErrConcurrentModification; the caller retries with fresh state.
func (s *Storage) UpdateJobWithEvent(ctx context.Context, job *storage.ProductionJob, event *storage.JobEvent) error {
	const op = "storage.mysql.UpdateJobWithEvent"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer tx.Rollback()

	if err := updateJobVersioned(ctx, tx, job); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := insertEvent(ctx, tx, event); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	job.Version++
	return nil
}

// SaveAssignment re-validates the station inside the transaction before the
// versioned job write, so an assignment racing a station deactivation fails
// instead of binding a job to a dead station.
func (s *Storage) SaveAssignment(ctx context.Context, job *storage.ProductionJob, event *storage.JobEvent) error {
	const op = "storage.mysql.SaveAssignment"

	if job.StationID == nil {
		return fmt.Errorf("%s: no station on job: %w", op, storage.ErrIncompatibleStation)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer tx.Rollback()

	var status string
	var workTypes string
	err = tx.QueryRowContext(ctx,
		`SELECT status, work_types FROM stations WHERE id = ? FOR UPDATE`, *job.StationID,
	).Scan(&status, &workTypes)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%s: station %s: %w", op, *job.StationID, storage.ErrNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	if storage.StationStatus(status) != storage.StationActive {
		return fmt.Errorf("%s: station %s: %w", op, *job.StationID, storage.ErrStationInactive)
	}
	if !containsWorkType(workTypes, job.WorkType) {
		return fmt.Errorf("%s: station %s, work type %s: %w", op, *job.StationID, job.WorkType, storage.ErrIncompatibleStation)
	}

	if err := updateJobVersioned(ctx, tx, job); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := insertEvent(ctx, tx, event); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	job.Version++
	return nil
}

func (s *Storage) SaveQCCheck(ctx context.Context, job *storage.ProductionJob, results []*storage.QCCheckpointResult, event *storage.JobEvent) error {
	const op = "storage.mysql.SaveQCCheck"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer tx.Rollback()

	if err := updateJobVersioned(ctx, tx, job); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	for _, res := range results {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO qc_checkpoint_results (id, job_id, checkpoint_name, passed, notes, checked_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			res.ID, res.JobID, res.CheckpointName, res.Passed, res.Notes, res.CheckedAt,
		)
		if err != nil {
			return fmt.Errorf("%s: checkpoint %s: %w", op, res.CheckpointName, err)
		}
	}

	if err := insertEvent(ctx, tx, event); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	job.Version++
	return nil
}

func (s *Storage) CreateReworkJob(ctx context.Context, child *storage.ProductionJob, originalEvent, childEvent *storage.JobEvent) error {
	const op = "storage.mysql.CreateReworkJob"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer tx.Rollback()

	if err := insertJob(ctx, tx, child); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := insertEvent(ctx, tx, originalEvent); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := insertEvent(ctx, tx, childEvent); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func insertJob(ctx context.Context, tx *sql.Tx, job *storage.ProductionJob) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO production_jobs (`+jobColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		job.ID, job.JobNumber, job.OrderID, job.OrderNumber, job.Customer,
		job.WorkType, string(job.Status), int(job.Priority),
		job.OrderedQty, job.ProducedQty, job.PassedQty, job.FailedQty,
		job.StationID, job.AssignedUserID,
		job.DueDate, job.CreatedAt, job.StartedAt, job.CompletedAt,
		job.IsRework, job.ReworkCount, job.OriginalJobID, job.ReworkReason,
		job.Version,
	)
	return err
}

func updateJobVersioned(ctx context.Context, tx *sql.Tx, job *storage.ProductionJob) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE production_jobs
		 SET status = ?, priority = ?, produced_qty = ?, passed_qty = ?, failed_qty = ?,
		     station_id = ?, assigned_user_id = ?, started_at = ?, completed_at = ?,
		     version = version + 1
		 WHERE id = ? AND version = ?`,
		string(job.Status), int(job.Priority),
		job.ProducedQty, job.PassedQty, job.FailedQty,
		job.StationID, job.AssignedUserID, job.StartedAt, job.CompletedAt,
		job.ID, job.Version,
	)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		// Either the row is gone or someone else bumped the version.
		var exists int
		err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM production_jobs WHERE id = ?`, job.ID,
		).Scan(&exists)
		if err != nil {
			return err
		}
		if exists == 0 {
			return fmt.Errorf("job %s: %w", job.ID, storage.ErrNotFound)
		}
		return fmt.Errorf("job %s at version %d: %w", job.ID, job.Version, storage.ErrConcurrentModification)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanJob(row rowScanner) (*storage.ProductionJob, error) {
	var job storage.ProductionJob
	var (
		orderID, orderNumber, customer        sql.NullString
		stationID, assignedUser               sql.NullString
		originalJobID, reworkReason           sql.NullString
		dueDate, startedAt, completedAt       sql.NullTime
		status                                string
		priority                              int
	)

	err := row.Scan(
		&job.ID, &job.JobNumber, &orderID, &orderNumber, &customer,
		&job.WorkType, &status, &priority,
		&job.OrderedQty, &job.ProducedQty, &job.PassedQty, &job.FailedQty,
		&stationID, &assignedUser,
		&dueDate, &job.CreatedAt, &startedAt, &completedAt,
		&job.IsRework, &job.ReworkCount, &originalJobID, &reworkReason,
		&job.Version,
	)
	if err != nil {
		return nil, err
	}

	job.Status = storage.JobStatus(status)
	job.Priority = storage.Priority(priority)
	job.OrderID = nullStr(orderID)
	job.OrderNumber = nullStr(orderNumber)
	job.Customer = nullStr(customer)
	job.StationID = nullStr(stationID)
	job.AssignedUserID = nullStr(assignedUser)
	job.OriginalJobID = nullStr(originalJobID)
	job.ReworkReason = nullStr(reworkReason)
	job.DueDate = nullTime(dueDate)
	job.StartedAt = nullTime(startedAt)
	job.CompletedAt = nullTime(completedAt)

	return &job, nil
}
