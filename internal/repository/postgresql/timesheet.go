package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/timesheet-sync/internal/domain/timesheet"
	"github.com/cmlabs-hris/timesheet-sync/internal/pkg/database"
)

type timesheetRepositoryImpl struct {
	db *database.DB
}

func NewTimesheetRepository(db *database.DB) timesheet.TimesheetRepository {
	return &timesheetRepositoryImpl{db: db}
}

// Upsert implements timesheet.TimesheetRepository.
func (r *timesheetRepositoryImpl) Upsert(ctx context.Context, entry timesheet.TimesheetEntry) (bool, error) {
	q := GetQuerier(ctx, r.db)

	// xmax is 0 only on a freshly inserted tuple
	query := `
		INSERT INTO timesheet_entries (
			employee_id, employee_name, ticket_id, entry_date, hours, productive_hours, minutes,
			leave_type, task_description, project, team, source, external_row_ref, synced_at,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, NOW(), NOW())
		ON CONFLICT (employee_name, ticket_id, entry_date, team) DO UPDATE SET
			hours = EXCLUDED.hours,
			productive_hours = EXCLUDED.productive_hours,
			minutes = EXCLUDED.minutes,
			leave_type = EXCLUDED.leave_type,
			task_description = EXCLUDED.task_description,
			project = EXCLUDED.project,
			employee_id = COALESCE(EXCLUDED.employee_id, timesheet_entries.employee_id),
			synced_at = EXCLUDED.synced_at,
			updated_at = NOW()
		RETURNING (xmax = 0) AS inserted
	`

	var inserted bool
	err := q.QueryRow(ctx, query,
		entry.EmployeeID, entry.EmployeeName, entry.TicketID, entry.Date, entry.Hours,
		entry.ProductiveHours, entry.Minutes, entry.LeaveType, entry.TaskDescription, entry.Project,
		string(entry.Team), entry.Source, entry.ExternalRowRef, entry.SyncedAt,
	).Scan(&inserted)
	if err != nil {
		return false, fmt.Errorf("upsert timesheet entry %s/%s/%s: %w",
			entry.EmployeeName, entry.TicketID, entry.Date.Format("2006-01-02"), err)
	}

	return inserted, nil
}

// GetByDateRange implements timesheet.TimesheetRepository.
func (r *timesheetRepositoryImpl) GetByDateRange(ctx context.Context, team *timesheet.Team, start, end time.Time) ([]timesheet.TimesheetEntry, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, employee_id, employee_name, ticket_id, entry_date, hours, productive_hours, minutes,
			leave_type, task_description, project, team, source, external_row_ref, synced_at,
			created_at, updated_at
		FROM timesheet_entries
		WHERE entry_date BETWEEN $1 AND $2
			AND ($3::text IS NULL OR team = $3)
		ORDER BY entry_date, employee_name, ticket_id
	`

	rows, err := q.Query(ctx, query, start, end, teamParam(team))
	if err != nil {
		return nil, fmt.Errorf("query timesheet entries: %w", err)
	}
	defer rows.Close()

	var entries []timesheet.TimesheetEntry
	for rows.Next() {
		var e timesheet.TimesheetEntry
		var team string
		err := rows.Scan(
			&e.ID, &e.EmployeeID, &e.EmployeeName, &e.TicketID, &e.Date, &e.Hours, &e.ProductiveHours,
			&e.Minutes, &e.LeaveType, &e.TaskDescription, &e.Project, &team, &e.Source,
			&e.ExternalRowRef, &e.SyncedAt, &e.CreatedAt, &e.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan timesheet entry: %w", err)
		}
		e.Team = timesheet.Team(team)
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// RenameEmployee implements timesheet.TimesheetRepository.
func (r *timesheetRepositoryImpl) RenameEmployee(ctx context.Context, from, to string, employeeID *string) (int64, int64, error) {
	q := GetQuerier(ctx, r.db)

	update := `
		UPDATE timesheet_entries t
		SET employee_name = $2, employee_id = COALESCE($3::uuid, t.employee_id), updated_at = NOW()
		WHERE t.employee_name = $1
			AND NOT EXISTS (
				SELECT 1 FROM timesheet_entries c
				WHERE c.employee_name = $2 AND c.ticket_id = t.ticket_id
					AND c.entry_date = t.entry_date AND c.team = t.team
			)
	`

	tag, err := q.Exec(ctx, update, from, to, employeeID)
	if err != nil {
		return 0, 0, fmt.Errorf("rename timesheet entries from %q: %w", from, err)
	}

	var conflicts int64
	err = q.QueryRow(ctx, `SELECT COUNT(*) FROM timesheet_entries WHERE employee_name = $1`, from).Scan(&conflicts)
	if err != nil {
		return 0, 0, fmt.Errorf("count unrenamed timesheet entries: %w", err)
	}

	return tag.RowsAffected(), conflicts, nil
}

func teamParam(team *timesheet.Team) *string {
	if team == nil {
		return nil
	}
	s := string(*team)
	return &s
}
