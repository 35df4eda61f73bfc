package timesheet

import (
	"context"
	"time"
)

type TimesheetRepository interface {
	// Upsert writes the entry keyed on (employee name, ticket, date, team) and reports whether it was inserted.
	Upsert(ctx context.Context, entry TimesheetEntry) (created bool, err error)
	GetByDateRange(ctx context.Context, team *Team, start, end time.Time) ([]TimesheetEntry, error)
	// RenameEmployee moves rows from one display name to another, skipping rows whose target key exists.
	RenameEmployee(ctx context.Context, from, to string, employeeID *string) (renamed, conflicts int64, err error)
}

type LeaveRepository interface {
	// Upsert inserts the leave. With overwrite an existing row's hours and team are refreshed.
	Upsert(ctx context.Context, leave LeaveEntry, overwrite bool) (LeaveOutcome, error)
	GetByDateRange(ctx context.Context, team *Team, start, end time.Time) ([]LeaveEntry, error)
	RenameEmployee(ctx context.Context, from, to string, employeeID *string) (renamed, conflicts int64, err error)
}

// Transactor scopes repository calls to one transaction via the context.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
	// WithinSavepoint nests fn inside the transaction already carried by ctx.
	WithinSavepoint(ctx context.Context, fn func(ctx context.Context) error) error
}

// SheetFetcher is the Sheet Fetcher contract.
type SheetFetcher interface {
	Fetch(ctx context.Context, team Team, monthsBack int) (Batch, error)
	Configured(team Team) TeamSheetStatus
}
