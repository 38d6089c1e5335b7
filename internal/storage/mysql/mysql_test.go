package mysql

import (
	"database/sql"
	"fmt"
	"os"
	"testing"
)

var testDB *sql.DB

func TestMain(m *testing.M) {
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		dsn = "root:@tcp(mysql-8.0:3306)/garment_test?parseTime=true"
	}

	var err error
	testDB, err = sql.Open("mysql", dsn)
	if err != nil {
		panic(fmt.Errorf("cannot open test DB: %w", err))
	}
	defer testDB.Close()

	if err := testDB.Ping(); err != nil {
		panic(fmt.Errorf("ping failed: %w", err))
	}

	if err := createTestSchema(); err != nil {
		panic(fmt.Errorf("schema setup failed: %w", err))
	}

	code := m.Run()

	os.Exit(code)
}

func createTestSchema() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS production_jobs (
			id VARCHAR(36) PRIMARY KEY,
			job_number VARCHAR(64) NOT NULL,
			order_id VARCHAR(36) NULL,
			order_number VARCHAR(64) NULL,
			customer VARCHAR(255) NULL,
			work_type VARCHAR(32) NOT NULL,
			status VARCHAR(32) NOT NULL,
			priority INT NOT NULL,
			ordered_qty INT NOT NULL,
			produced_qty INT NOT NULL,
			passed_qty INT NOT NULL,
			failed_qty INT NOT NULL,
			station_id VARCHAR(36) NULL,
			assigned_user_id VARCHAR(36) NULL,
			due_date DATETIME NULL,
			created_at DATETIME NOT NULL,
			started_at DATETIME NULL,
			completed_at DATETIME NULL,
			is_rework BOOLEAN NOT NULL,
			rework_count INT NOT NULL,
			original_job_id VARCHAR(36) NULL,
			rework_reason TEXT NULL,
			version BIGINT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS stations (
			id VARCHAR(36) PRIMARY KEY,
			code VARCHAR(32) NOT NULL,
			name VARCHAR(255) NOT NULL,
			status VARCHAR(16) NOT NULL,
			work_types VARCHAR(255) NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS qc_checkpoint_results (
			id VARCHAR(36) PRIMARY KEY,
			job_id VARCHAR(36) NOT NULL,
			checkpoint_name VARCHAR(64) NOT NULL,
			passed BOOLEAN NOT NULL,
			notes TEXT NULL,
			checked_at DATETIME NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS job_events (
			id VARCHAR(36) PRIMARY KEY,
			job_id VARCHAR(36) NOT NULL,
			action VARCHAR(32) NOT NULL,
			from_status VARCHAR(32) NULL,
			to_status VARCHAR(32) NULL,
			produced_qty INT NULL,
			notes TEXT NULL,
			performed_by VARCHAR(64) NOT NULL,
			performed_at DATETIME NOT NULL
		)`,
	}

	for _, stmt := range stmts {
		if _, err := testDB.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
