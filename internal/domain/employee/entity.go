package employee

import "time"

// Employee is the slice of the employee master the sync engine reads.
type Employee struct {
	ID       string
	FullName string
	Email    *string
	Team     *string
	IsActive bool
}

// NameMapping aliases a name seen in a spreadsheet to a canonical employee.
type NameMapping struct {
	ID            string
	AlternateName string
	CanonicalName string
	EmployeeID    *string
	Source        string
	Notes         *string
	IsActive      bool
	CreatedAt     time.Time
}

const (
	MappingSourceManual = "manual"
	MappingSourceCLI    = "cli"
	MappingSourceAPI    = "api"
)
