package timesheet

import (
	"strings"
	"time"
)

type Team string

const (
	TeamQA  Team = "QA"
	TeamDEV Team = "DEV"
)

// AllTeams is the fixed pair synced by SyncAll, in order.
func AllTeams() []Team {
	return []Team{TeamQA, TeamDEV}
}

// ParseTeam accepts "QA", "DEV" and "DEVELOPMENT" in any case.
func ParseTeam(s string) (Team, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "QA":
		return TeamQA, nil
	case "DEV", "DEVELOPMENT":
		return TeamDEV, nil
	}
	return "", NewConfigurationError(Team(s), ErrUnknownTeam)
}

const (
	SourceGoogleSheets = "google_sheets"
	SourceXLSX         = "xlsx_import"

	// UnassignedTicket marks work that carries neither a ticket nor a task description.
	UnassignedTicket = "UNASSIGNED"

	// TicketIDMaxLength matches timesheet_entries.ticket_id VARCHAR(100).
	TicketIDMaxLength = 100

	DefaultLeaveHours = 8.0
	DefaultMonthsBack = 6
)

// TimesheetEntry is one person's time on one work item on one date for one team.
// (EmployeeName, TicketID, Date, Team) is unique.
type TimesheetEntry struct {
	ID              string
	EmployeeID      *string
	EmployeeName    string
	TicketID        string
	Date            time.Time
	Hours           float64
	ProductiveHours *float64
	Minutes         int
	LeaveType       *string
	TaskDescription string
	Project         string
	Team            Team
	Source          string
	ExternalRowRef  string
	SyncedAt        time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// LeaveEntry asserts a non-working status for a person on a date.
// (EmployeeName, Date, LeaveType) is unique.
type LeaveEntry struct {
	ID           string
	EmployeeID   *string
	EmployeeName string
	Date         time.Time
	LeaveType    string
	Hours        float64
	Team         Team
	Source       string
	CreatedAt    time.Time
}

// RawRow is a retained spreadsheet row before normalization.
type RawRow struct {
	RowNumber       int
	Date            time.Time
	RawDate         string
	EmployeeName    string
	TimeSpent       interface{}
	ProductiveHours interface{}
	Task            string
	TicketRef       string
	Status          string
	Comments        string
	LeaveColumn     string
	// LeaveLabel is the fetch-time classification of Task, empty when not a leave.
	LeaveLabel string
}

// Batch is the result of fetching one team's tab.
type Batch struct {
	Team        Team
	Source      string
	Reference   string
	Rows        []RawRow
	Skipped     int
	OutOfWindow int
	Cutoff      time.Time
}

// NormalizedRow is a RawRow after parsing and name reconciliation.
type NormalizedRow struct {
	RowNumber       int
	RawEmployeeName string
	EmployeeName    string
	EmployeeID      *string
	Date            time.Time
	TicketID        string
	Hours           float64
	ProductiveHours *float64
	LeaveType       string
	TaskDescription string
	Project         string
	Team            Team
	Source          string
	ExternalRowRef  string
	// UnparsedHours holds hours cells that were read as 0.
	UnparsedHours []string
}

func (r NormalizedRow) IsLeave() bool {
	return r.LeaveType != ""
}

type LeaveOutcome int

const (
	LeaveNone LeaveOutcome = iota
	LeaveCreated
	LeaveUpdated
	LeaveUnchanged
)

type EntryOutcome int

const (
	EntryCreated EntryOutcome = iota
	EntryUpdated
	EntrySkippedDuplicate
)

// UpsertOutcome reports what one row did to the store.
type UpsertOutcome struct {
	Entry EntryOutcome
	Leave LeaveOutcome
}
