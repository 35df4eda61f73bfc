package employee

import "time"

type CreateNameMappingRequest struct {
	AlternateName string  `json:"alternate_name"`
	CanonicalName string  `json:"canonical_name"`
	Notes         *string `json:"notes,omitempty"`
	Source        string  `json:"source,omitempty"`
}

type NameMappingResponse struct {
	ID            string    `json:"id"`
	AlternateName string    `json:"alternate_name"`
	CanonicalName string    `json:"canonical_name"`
	EmployeeID    *string   `json:"employee_id"`
	Source        string    `json:"source"`
	Notes         *string   `json:"notes,omitempty"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
}

// BackfillResponse reports what adding a mapping did to historical rows.
type BackfillResponse struct {
	Mapping            NameMappingResponse `json:"mapping"`
	TimesheetsRenamed  int64               `json:"timesheets_renamed"`
	TimesheetConflicts int64               `json:"timesheet_conflicts"`
	LeavesRenamed      int64               `json:"leaves_renamed"`
	LeaveConflicts     int64               `json:"leave_conflicts"`
}
