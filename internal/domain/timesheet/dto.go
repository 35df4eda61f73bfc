package timesheet

import "time"

// SyncStats is the result of one team run.
type SyncStats struct {
	RunID           string    `json:"run_id"`
	Team            Team      `json:"team"`
	RowsProcessed   int       `json:"rows_processed"`
	EntriesCreated  int       `json:"entries_created"`
	EntriesUpdated  int       `json:"entries_updated"`
	LeavesCreated   int       `json:"leaves_created"`
	LeavesUpdated   int       `json:"leaves_updated"`
	RowsSkipped     int       `json:"rows_skipped"`
	RowsOutOfWindow int       `json:"rows_out_of_window"`
	Errors          int       `json:"errors"`
	Timestamp       time.Time `json:"timestamp"`
	CutoffDate      string    `json:"cutoff_date"`
	DurationMS      int64     `json:"duration_ms"`
}

// TeamSyncResult is one entry of SyncAll. Exactly one of Stats and Error is set.
type TeamSyncResult struct {
	*SyncStats
	Error string `json:"error,omitempty"`
}

type CalendarRequest struct {
	Team      string `json:"team"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

type CalendarEntryResponse struct {
	ID              string   `json:"id"`
	EmployeeID      *string  `json:"employee_id"`
	EmployeeName    string   `json:"employee_name"`
	Date            string   `json:"date"`
	TicketID        string   `json:"ticket_id"`
	Hours           float64  `json:"hours"`
	ProductiveHours *float64 `json:"productive_hours"`
	Minutes         int      `json:"minutes"`
	LeaveType       *string  `json:"leave_type"`
	IsLeave         bool     `json:"is_leave"`
	TaskDescription string   `json:"task_description"`
	Project         string   `json:"project"`
	Team            Team     `json:"team"`
}

type LeaveResponse struct {
	ID           string  `json:"id"`
	EmployeeID   *string `json:"employee_id"`
	EmployeeName string  `json:"employee_name"`
	Date         string  `json:"date"`
	LeaveType    string  `json:"leave_type"`
	Hours        float64 `json:"hours"`
	Team         Team    `json:"team"`
}

type TeamSheetStatus struct {
	Configured bool   `json:"configured"`
	Source     string `json:"source"`
	Reference  string `json:"reference,omitempty"`
	Tab        string `json:"tab"`
}

// StatusResponse is the read-only status object for operational tooling.
type StatusResponse struct {
	ClientLibraryAvailable bool                     `json:"client_library_available"`
	CredentialsConfigured  bool                     `json:"credentials_configured"`
	AuthMethod             string                   `json:"auth_method"`
	Teams                  map[Team]TeamSheetStatus `json:"teams"`
	AutoSyncEnabled        bool                     `json:"auto_sync_enabled"`
	RealtimeSync           bool                     `json:"realtime_sync"`
	SyncInterval           string                   `json:"sync_interval"`
	MonthsBack             int                      `json:"months_back"`
	SyncInProgress         bool                     `json:"sync_in_progress"`
	LastRuns               map[Team]*TeamSyncResult `json:"last_runs,omitempty"`
}

// Capabilities are probed once at startup and handed to the service.
type Capabilities struct {
	ClientLibraryAvailable bool
	CredentialsConfigured  bool
	AuthMethod             string
	AutoSyncEnabled        bool
	RealtimeSync           bool
	SyncInterval           time.Duration
	MonthsBack             int
}

// RunState is what the scheduler knows about in-flight and finished runs.
type RunState struct {
	InProgress bool
	LastRuns   map[Team]*TeamSyncResult
}
