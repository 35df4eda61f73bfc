package postgresql_test

import (
	"context"
	"fmt"
	"os"

	"github.com/cmlabs-hris/timesheet-sync/internal/pkg/database"
)

// TestDatabaseSetup wraps the pool used by repository tests.
type TestDatabaseSetup struct {
	DB *database.DB
}

// NewTestDatabase connects to TEST_DATABASE_URL. ok is false when it is unset so
// callers can skip.
func NewTestDatabase(ctx context.Context) (*TestDatabaseSetup, bool, error) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		return nil, false, nil
	}

	db, err := database.NewPostgreSQLDB(ctx, dsn, database.PoolOptions{MaxConns: 4, MinConns: 1})
	if err != nil {
		return nil, true, fmt.Errorf("failed to connect to test database: %w", err)
	}

	return &TestDatabaseSetup{DB: db}, true, nil
}

var schema = []string{
	`CREATE EXTENSION IF NOT EXISTS pgcrypto`,
	`CREATE TABLE IF NOT EXISTS employees (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		full_name TEXT NOT NULL UNIQUE,
		email TEXT,
		team TEXT,
		is_active BOOLEAN NOT NULL DEFAULT TRUE
	)`,
	`CREATE TABLE IF NOT EXISTS employee_name_mappings (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		alternate_name TEXT NOT NULL UNIQUE,
		canonical_name TEXT NOT NULL,
		employee_id UUID REFERENCES employees(id),
		source TEXT NOT NULL DEFAULT 'manual',
		notes TEXT,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS timesheet_entries (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		employee_id UUID REFERENCES employees(id),
		employee_name TEXT NOT NULL,
		ticket_id VARCHAR(100) NOT NULL,
		entry_date DATE NOT NULL,
		hours NUMERIC(6,2) NOT NULL DEFAULT 0,
		productive_hours NUMERIC(6,2),
		minutes INTEGER NOT NULL DEFAULT 0,
		leave_type TEXT,
		task_description TEXT NOT NULL DEFAULT '',
		project TEXT NOT NULL DEFAULT '',
		team TEXT NOT NULL,
		source TEXT NOT NULL,
		external_row_ref TEXT NOT NULL DEFAULT '',
		synced_at TIMESTAMPTZ NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (employee_name, ticket_id, entry_date, team)
	)`,
	`CREATE TABLE IF NOT EXISTS leave_entries (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		employee_id UUID REFERENCES employees(id),
		employee_name TEXT NOT NULL,
		leave_date DATE NOT NULL,
		leave_type TEXT NOT NULL,
		hours NUMERIC(6,2) NOT NULL DEFAULT 8,
		team TEXT NOT NULL,
		source TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (employee_name, leave_date, leave_type)
	)`,
}

// CreateSchema creates the tables the repositories use.
func (t *TestDatabaseSetup) CreateSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := t.DB.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}

// TruncateAllTables removes every row from the test tables
func (t *TestDatabaseSetup) TruncateAllTables(ctx context.Context) error {
	tx, err := t.DB.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tables := []string{
		"timesheet_entries",
		"leave_entries",
		"employee_name_mappings",
		"employees",
	}

	for _, table := range tables {
		_, err := tx.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table))
		if err != nil {
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}

	return tx.Commit(ctx)
}

// Close closes the pool
func (t *TestDatabaseSetup) Close() {
	t.DB.Close()
}
