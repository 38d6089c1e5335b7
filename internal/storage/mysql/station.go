package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"garment-golang/internal/storage"
)

// work_types is stored as a comma-joined set, e.g. "sewing,embroidery".

func (s *Storage) GetStation(ctx context.Context, id string) (*storage.Station, error) {
	const op = "storage.mysql.GetStation"

	var station storage.Station
	var workTypes string

	err := s.db.QueryRowContext(ctx,
		`SELECT id, code, name, status, work_types FROM stations WHERE id = ?`, id,
	).Scan(&station.ID, &station.Code, &station.Name, &station.Status, &workTypes)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: station %s: %w", op, id, storage.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	station.WorkTypes = splitWorkTypes(workTypes)
	return &station, nil
}

func (s *Storage) ListStations(ctx context.Context, filter storage.StationFilter) ([]*storage.Station, error) {
	const op = "storage.mysql.ListStations"

	stmt := `SELECT id, code, name, status, work_types FROM stations WHERE 1=1`
	var args []interface{}

	if filter.ActiveOnly {
		stmt += " AND status = ?"
		args = append(args, string(storage.StationActive))
	}
	if filter.WorkType != "" {
		stmt += " AND FIND_IN_SET(?, work_types) > 0"
		args = append(args, filter.WorkType)
	}

	stmt += " ORDER BY code"

	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var stations []*storage.Station
	for rows.Next() {
		var station storage.Station
		var workTypes string

		err := rows.Scan(&station.ID, &station.Code, &station.Name, &station.Status, &workTypes)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		station.WorkTypes = splitWorkTypes(workTypes)

		stations = append(stations, &station)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return stations, nil
}

func (s *Storage) SaveStation(ctx context.Context, station *storage.Station) error {
	const op = "storage.mysql.SaveStation"

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO stations (id, code, name, status, work_types) VALUES (?, ?, ?, ?, ?)`,
		station.ID, station.Code, station.Name, string(station.Status), strings.Join(station.WorkTypes, ","),
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *Storage) UpdateStation(ctx context.Context, station *storage.Station) error {
	const op = "storage.mysql.UpdateStation"

	res, err := s.db.ExecContext(ctx,
		`UPDATE stations SET code = ?, name = ?, status = ?, work_types = ? WHERE id = ?`,
		station.Code, station.Name, string(station.Status), strings.Join(station.WorkTypes, ","), station.ID,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: station %s: %w", op, station.ID, storage.ErrNotFound)
	}
	return nil
}

func splitWorkTypes(joined string) []string {
	if joined == "" {
		return nil
	}
	parts := strings.Split(joined, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func containsWorkType(joined, workType string) bool {
	for _, wt := range splitWorkTypes(joined) {
		if wt == workType {
			return true
		}
	}
	return false
}
