package timesheet

import (
	"errors"
	"fmt"
)

var (
	ErrConfiguration   = errors.New("configuration error")
	ErrAuthentication  = errors.New("authentication error")
	ErrRemoteService   = errors.New("remote service error")
	ErrRow             = errors.New("row error")
	ErrTeamTransaction = errors.New("team transaction error")

	ErrUnknownTeam         = errors.New("unknown team")
	ErrSheetNotConfigured  = errors.New("spreadsheet is not configured for team")
	ErrSyncInProgress      = errors.New("a timesheet sync is already running")
	ErrInvalidMonthsBack   = errors.New("months_back must be between 1 and 120")
	ErrImplausibleHours    = errors.New("hours value is negative or not a number")
	ErrMissingEmployeeName = errors.New("employee name is empty")
)

// Error carries one of the Err* kinds plus the team, the sheet row (0 when not
// row-scoped) and the underlying cause. errors.Is matches both the kind and the cause.
type Error struct {
	Kind error
	Team Team
	Row  int
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Row > 0:
		return fmt.Sprintf("%s: team %s row %d: %v", e.Kind, e.Team, e.Row, e.Err)
	case e.Team != "":
		return fmt.Sprintf("%s: team %s: %v", e.Kind, e.Team, e.Err)
	default:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
}

func (e *Error) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

func NewConfigurationError(team Team, err error) error {
	return &Error{Kind: ErrConfiguration, Team: team, Err: err}
}

func NewAuthenticationError(err error) error {
	return &Error{Kind: ErrAuthentication, Err: err}
}

func NewRemoteServiceError(team Team, err error) error {
	return &Error{Kind: ErrRemoteService, Team: team, Err: err}
}

func NewRowError(team Team, row int, err error) error {
	return &Error{Kind: ErrRow, Team: team, Row: row, Err: err}
}

func NewTeamTransactionError(team Team, err error) error {
	return &Error{Kind: ErrTeamTransaction, Team: team, Err: err}
}
