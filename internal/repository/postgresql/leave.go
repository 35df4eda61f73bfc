package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/timesheet-sync/internal/domain/timesheet"
	"github.com/cmlabs-hris/timesheet-sync/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type leaveRepositoryImpl struct {
	db *database.DB
}

func NewLeaveRepository(db *database.DB) timesheet.LeaveRepository {
	return &leaveRepositoryImpl{db: db}
}

// Upsert implements timesheet.LeaveRepository.
func (r *leaveRepositoryImpl) Upsert(ctx context.Context, leave timesheet.LeaveEntry, overwrite bool) (timesheet.LeaveOutcome, error) {
	q := GetQuerier(ctx, r.db)

	insertOnly := `
		INSERT INTO leave_entries (employee_id, employee_name, leave_date, leave_type, hours, team, source, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		ON CONFLICT (employee_name, leave_date, leave_type) DO NOTHING
		RETURNING TRUE
	`
	// the WHERE suppresses no-op updates, which then return no row
	upsert := `
		INSERT INTO leave_entries (employee_id, employee_name, leave_date, leave_type, hours, team, source, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		ON CONFLICT (employee_name, leave_date, leave_type) DO UPDATE SET
			hours = EXCLUDED.hours,
			team = EXCLUDED.team,
			employee_id = COALESCE(EXCLUDED.employee_id, leave_entries.employee_id)
		WHERE leave_entries.hours IS DISTINCT FROM EXCLUDED.hours
			OR leave_entries.team IS DISTINCT FROM EXCLUDED.team
			OR (leave_entries.employee_id IS NULL AND EXCLUDED.employee_id IS NOT NULL)
		RETURNING (xmax = 0) AS inserted
	`

	query := insertOnly
	if overwrite {
		query = upsert
	}

	var inserted bool
	err := q.QueryRow(ctx, query,
		leave.EmployeeID, leave.EmployeeName, leave.Date, leave.LeaveType, leave.Hours,
		string(leave.Team), leave.Source,
	).Scan(&inserted)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return timesheet.LeaveUnchanged, nil
		}
		return timesheet.LeaveNone, fmt.Errorf("upsert leave entry %s/%s/%s: %w",
			leave.EmployeeName, leave.Date.Format("2006-01-02"), leave.LeaveType, err)
	}

	if inserted {
		return timesheet.LeaveCreated, nil
	}
	return timesheet.LeaveUpdated, nil
}

// GetByDateRange implements timesheet.LeaveRepository.
func (r *leaveRepositoryImpl) GetByDateRange(ctx context.Context, team *timesheet.Team, start, end time.Time) ([]timesheet.LeaveEntry, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, employee_id, employee_name, leave_date, leave_type, hours, team, source, created_at
		FROM leave_entries
		WHERE leave_date BETWEEN $1 AND $2
			AND ($3::text IS NULL OR team = $3)
		ORDER BY leave_date, employee_name, leave_type
	`

	rows, err := q.Query(ctx, query, start, end, teamParam(team))
	if err != nil {
		return nil, fmt.Errorf("query leave entries: %w", err)
	}
	defer rows.Close()

	var leaves []timesheet.LeaveEntry
	for rows.Next() {
		var l timesheet.LeaveEntry
		var team string
		if err := rows.Scan(&l.ID, &l.EmployeeID, &l.EmployeeName, &l.Date, &l.LeaveType, &l.Hours, &team, &l.Source, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan leave entry: %w", err)
		}
		l.Team = timesheet.Team(team)
		leaves = append(leaves, l)
	}

	return leaves, rows.Err()
}

// RenameEmployee implements timesheet.LeaveRepository.
func (r *leaveRepositoryImpl) RenameEmployee(ctx context.Context, from, to string, employeeID *string) (int64, int64, error) {
	q := GetQuerier(ctx, r.db)

	update := `
		UPDATE leave_entries l
		SET employee_name = $2, employee_id = COALESCE($3::uuid, l.employee_id)
		WHERE l.employee_name = $1
			AND NOT EXISTS (
				SELECT 1 FROM leave_entries c
				WHERE c.employee_name = $2 AND c.leave_date = l.leave_date AND c.leave_type = l.leave_type
			)
	`

	tag, err := q.Exec(ctx, update, from, to, employeeID)
	if err != nil {
		return 0, 0, fmt.Errorf("rename leave entries from %q: %w", from, err)
	}

	var conflicts int64
	err = q.QueryRow(ctx, `SELECT COUNT(*) FROM leave_entries WHERE employee_name = $1`, from).Scan(&conflicts)
	if err != nil {
		return 0, 0, fmt.Errorf("count unrenamed leave entries: %w", err)
	}

	return tag.RowsAffected(), conflicts, nil
}
