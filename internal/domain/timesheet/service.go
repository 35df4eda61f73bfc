package timesheet

import (
	"context"

	"github.com/cmlabs-hris/timesheet-sync/internal/domain/employee"
)

type TimesheetService interface {
	SyncTeam(ctx context.Context, team Team, monthsBack int) (*SyncStats, error)
	SyncAll(ctx context.Context, monthsBack int) map[Team]*TeamSyncResult
	GetCalendarData(ctx context.Context, req CalendarRequest) ([]CalendarEntryResponse, error)
	GetLeaves(ctx context.Context, req CalendarRequest) ([]LeaveResponse, error)
	Status(state RunState) StatusResponse
	AddNameMapping(ctx context.Context, req employee.CreateNameMappingRequest) (employee.BackfillResponse, error)
	ListNameMappings(ctx context.Context) ([]employee.NameMappingResponse, error)
}
