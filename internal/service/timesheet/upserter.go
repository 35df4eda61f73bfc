package timesheet

import (
	"context"
	"time"

	"github.com/cmlabs-hris/timesheet-sync/internal/domain/timesheet"
	"github.com/cmlabs-hris/timesheet-sync/internal/pkg/normalize"
)

type entryKey struct {
	name   string
	ticket string
	date   time.Time
	team   timesheet.Team
}

// Upserter writes normalized rows. It remembers the keys written during one run
// so a sheet listing the same entry twice produces a single write.
type Upserter struct {
	timesheets     timesheet.TimesheetRepository
	leaves         timesheet.LeaveRepository
	leaveOverwrite bool
	fullDayHours   float64
	syncedAt       time.Time

	seen map[entryKey]struct{}
}

func NewUpserter(timesheets timesheet.TimesheetRepository, leaves timesheet.LeaveRepository, leaveOverwrite bool, fullDayHours float64, syncedAt time.Time) *Upserter {
	if fullDayHours <= 0 {
		fullDayHours = timesheet.DefaultLeaveHours
	}
	return &Upserter{
		timesheets:     timesheets,
		leaves:         leaves,
		leaveOverwrite: leaveOverwrite,
		fullDayHours:   fullDayHours,
		syncedAt:       syncedAt,
		seen:           make(map[entryKey]struct{}),
	}
}

func (u *Upserter) Upsert(ctx context.Context, row timesheet.NormalizedRow) (timesheet.UpsertOutcome, error) {
	ticket := normalize.TruncateTicketID(row.TicketID)
	key := entryKey{name: row.EmployeeName, ticket: ticket, date: row.Date, team: row.Team}
	if _, dup := u.seen[key]; dup {
		return timesheet.UpsertOutcome{Entry: timesheet.EntrySkippedDuplicate}, nil
	}

	entry := timesheet.TimesheetEntry{
		EmployeeID:      row.EmployeeID,
		EmployeeName:    row.EmployeeName,
		TicketID:        ticket,
		Date:            row.Date,
		Hours:           row.Hours,
		ProductiveHours: row.ProductiveHours,
		Minutes:         normalize.Minutes(row.Hours),
		TaskDescription: row.TaskDescription,
		Project:         row.Project,
		Team:            row.Team,
		Source:          row.Source,
		ExternalRowRef:  row.ExternalRowRef,
		SyncedAt:        u.syncedAt,
	}
	if row.IsLeave() {
		leaveType := row.LeaveType
		entry.LeaveType = &leaveType
	}

	created, err := u.timesheets.Upsert(ctx, entry)
	if err != nil {
		return timesheet.UpsertOutcome{}, err
	}

	outcome := timesheet.UpsertOutcome{Entry: timesheet.EntryUpdated, Leave: timesheet.LeaveNone}
	if created {
		outcome.Entry = timesheet.EntryCreated
	}

	if row.IsLeave() {
		leave := timesheet.LeaveEntry{
			EmployeeID:   row.EmployeeID,
			EmployeeName: row.EmployeeName,
			Date:         row.Date,
			LeaveType:    row.LeaveType,
			Hours:        normalize.LeaveHours(row.LeaveType, row.Hours, u.fullDayHours),
			Team:         row.Team,
			Source:       row.Source,
		}
		outcome.Leave, err = u.leaves.Upsert(ctx, leave, u.leaveOverwrite)
		if err != nil {
			return timesheet.UpsertOutcome{}, err
		}
	}

	u.seen[key] = struct{}{}
	return outcome, nil
}
