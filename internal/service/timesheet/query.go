package timesheet

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/timesheet-sync/internal/domain/timesheet"
	"github.com/cmlabs-hris/timesheet-sync/internal/pkg/normalize"
	"github.com/cmlabs-hris/timesheet-sync/internal/pkg/validator"
)

// GetCalendarData implements timesheet.TimesheetService.
func (s *TimesheetServiceImpl) GetCalendarData(ctx context.Context, req timesheet.CalendarRequest) ([]timesheet.CalendarEntryResponse, error) {
	team, start, end, err := s.parseRange(req)
	if err != nil {
		return nil, err
	}

	entries, err := s.timesheets.GetByDateRange(ctx, team, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to load calendar entries: %w", err)
	}

	resp := make([]timesheet.CalendarEntryResponse, 0, len(entries))
	for _, e := range entries {
		resp = append(resp, timesheet.CalendarEntryResponse{
			ID:              e.ID,
			EmployeeID:      e.EmployeeID,
			EmployeeName:    e.EmployeeName,
			Date:            normalize.FormatDate(e.Date),
			TicketID:        e.TicketID,
			Hours:           e.Hours,
			ProductiveHours: e.ProductiveHours,
			Minutes:         e.Minutes,
			LeaveType:       e.LeaveType,
			IsLeave:         e.LeaveType != nil && *e.LeaveType != "",
			TaskDescription: e.TaskDescription,
			Project:         e.Project,
			Team:            e.Team,
		})
	}
	return resp, nil
}

// GetLeaves implements timesheet.TimesheetService.
func (s *TimesheetServiceImpl) GetLeaves(ctx context.Context, req timesheet.CalendarRequest) ([]timesheet.LeaveResponse, error) {
	team, start, end, err := s.parseRange(req)
	if err != nil {
		return nil, err
	}

	leaves, err := s.leaves.GetByDateRange(ctx, team, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to load leave entries: %w", err)
	}

	resp := make([]timesheet.LeaveResponse, 0, len(leaves))
	for _, l := range leaves {
		resp = append(resp, timesheet.LeaveResponse{
			ID:           l.ID,
			EmployeeID:   l.EmployeeID,
			EmployeeName: l.EmployeeName,
			Date:         normalize.FormatDate(l.Date),
			LeaveType:    l.LeaveType,
			Hours:        l.Hours,
			Team:         l.Team,
		})
	}
	return resp, nil
}

func (s *TimesheetServiceImpl) parseRange(req timesheet.CalendarRequest) (*timesheet.Team, time.Time, time.Time, error) {
	var team *timesheet.Team
	if !validator.IsEmpty(req.Team) && !strings.EqualFold(strings.TrimSpace(req.Team), "all") {
		t, err := timesheet.ParseTeam(req.Team)
		if err != nil {
			return nil, time.Time{}, time.Time{}, err
		}
		team = &t
	}

	start, end, errs := validator.DateRange(req.StartDate, req.EndDate, s.now())
	if len(errs) > 0 {
		return nil, time.Time{}, time.Time{}, errs
	}
	return team, start, end, nil
}

// Status implements timesheet.TimesheetService.
func (s *TimesheetServiceImpl) Status(state timesheet.RunState) timesheet.StatusResponse {
	caps := s.cfg.Capabilities

	teams := make(map[timesheet.Team]timesheet.TeamSheetStatus, len(timesheet.AllTeams()))
	for _, team := range timesheet.AllTeams() {
		teams[team] = s.fetcher.Configured(team)
	}

	interval := ""
	if caps.SyncInterval > 0 {
		interval = caps.SyncInterval.String()
	}

	return timesheet.StatusResponse{
		ClientLibraryAvailable: caps.ClientLibraryAvailable,
		CredentialsConfigured:  caps.CredentialsConfigured,
		AuthMethod:             caps.AuthMethod,
		Teams:                  teams,
		AutoSyncEnabled:        caps.AutoSyncEnabled,
		RealtimeSync:           caps.RealtimeSync,
		SyncInterval:           interval,
		MonthsBack:             s.cfg.MonthsBack,
		SyncInProgress:         state.InProgress,
		LastRuns:               state.LastRuns,
	}
}
