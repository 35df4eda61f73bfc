package timesheet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/timesheet-sync/internal/domain/employee"
	"github.com/cmlabs-hris/timesheet-sync/internal/domain/timesheet"
	"github.com/cmlabs-hris/timesheet-sync/internal/pkg/normalize"
	"github.com/google/uuid"
)

type Config struct {
	MonthsBack       int
	RowErrorLogLimit int
	LeaveOverwrite   bool
	FullDayHours     float64
	Capabilities     timesheet.Capabilities
}

type TimesheetServiceImpl struct {
	tx         timesheet.Transactor
	fetcher    timesheet.SheetFetcher
	timesheets timesheet.TimesheetRepository
	leaves     timesheet.LeaveRepository
	employees  employee.EmployeeRepository
	mappings   employee.NameMappingRepository
	cfg        Config
	now        func() time.Time
}

func NewTimesheetService(
	tx timesheet.Transactor,
	fetcher timesheet.SheetFetcher,
	timesheets timesheet.TimesheetRepository,
	leaves timesheet.LeaveRepository,
	employees employee.EmployeeRepository,
	mappings employee.NameMappingRepository,
	cfg Config,
) *TimesheetServiceImpl {
	if cfg.MonthsBack <= 0 {
		cfg.MonthsBack = timesheet.DefaultMonthsBack
	}
	if cfg.RowErrorLogLimit < 0 {
		cfg.RowErrorLogLimit = 0
	}
	return &TimesheetServiceImpl{
		tx:         tx,
		fetcher:    fetcher,
		timesheets: timesheets,
		leaves:     leaves,
		employees:  employees,
		mappings:   mappings,
		cfg:        cfg,
		now:        time.Now,
	}
}

var _ timesheet.TimesheetService = (*TimesheetServiceImpl)(nil)

// SyncTeam implements timesheet.TimesheetService.
func (s *TimesheetServiceImpl) SyncTeam(ctx context.Context, team timesheet.Team, monthsBack int) (*timesheet.SyncStats, error) {
	reconciler := NewNameReconciler(ctx, s.mappings, s.employees)
	return s.syncTeam(ctx, newRunID(), team, monthsBack, reconciler)
}

// SyncAll implements timesheet.TimesheetService. A failing team is recorded and
// the next team is still attempted.
func (s *TimesheetServiceImpl) SyncAll(ctx context.Context, monthsBack int) map[timesheet.Team]*timesheet.TeamSyncResult {
	runID := newRunID()
	reconciler := NewNameReconciler(ctx, s.mappings, s.employees)

	results := make(map[timesheet.Team]*timesheet.TeamSyncResult, len(timesheet.AllTeams()))
	for _, team := range timesheet.AllTeams() {
		stats, err := s.syncTeam(ctx, runID, team, monthsBack, reconciler)
		if err != nil {
			slog.Error("team sync failed", "run_id", runID, "team", team, "error", err)
			results[team] = &timesheet.TeamSyncResult{Error: err.Error()}
			continue
		}
		results[team] = &timesheet.TeamSyncResult{SyncStats: stats}
	}
	return results
}

func (s *TimesheetServiceImpl) syncTeam(ctx context.Context, runID string, team timesheet.Team, monthsBack int, reconciler *NameReconciler) (*timesheet.SyncStats, error) {
	if monthsBack <= 0 {
		monthsBack = s.cfg.MonthsBack
	}
	if monthsBack > 120 {
		return nil, timesheet.NewConfigurationError(team, timesheet.ErrInvalidMonthsBack)
	}
	started := s.now()
	log := slog.With("run_id", runID, "team", team)

	batch, err := s.fetcher.Fetch(ctx, team, monthsBack)
	if err != nil {
		return nil, err
	}
	log.Info("sheet fetched", "rows", len(batch.Rows), "skipped", batch.Skipped, "out_of_window", batch.OutOfWindow)

	stats := &timesheet.SyncStats{
		RunID:           runID,
		Team:            team,
		RowsSkipped:     batch.Skipped,
		RowsOutOfWindow: batch.OutOfWindow,
		CutoffDate:      normalize.FormatDate(batch.Cutoff),
	}
	upserter := NewUpserter(s.timesheets, s.leaves, s.cfg.LeaveOverwrite, s.cfg.FullDayHours, started)

	err = s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		for _, raw := range batch.Rows {
			s.processRow(txCtx, log, batch, raw, reconciler, upserter, stats)
		}
		return nil
	})
	if err != nil {
		return nil, timesheet.NewTeamTransactionError(team, err)
	}

	if suppressed := stats.Errors - s.cfg.RowErrorLogLimit; suppressed > 0 {
		log.Warn("further row errors not logged", "suppressed", suppressed, "errors", stats.Errors)
	}

	stats.RowsProcessed = stats.EntriesCreated + stats.EntriesUpdated
	stats.Timestamp = s.now()
	stats.DurationMS = stats.Timestamp.Sub(started).Milliseconds()

	log.Info("team sync committed",
		"processed", stats.RowsProcessed,
		"created", stats.EntriesCreated,
		"updated", stats.EntriesUpdated,
		"leaves_created", stats.LeavesCreated,
		"skipped", stats.RowsSkipped,
		"errors", stats.Errors,
		"cutoff", stats.CutoffDate,
	)
	return stats, nil
}

// processRow never fails the team: every problem becomes a counted row error and
// the row's writes are rolled back to its savepoint.
func (s *TimesheetServiceImpl) processRow(
	ctx context.Context,
	log *slog.Logger,
	batch timesheet.Batch,
	raw timesheet.RawRow,
	reconciler *NameReconciler,
	upserter *Upserter,
	stats *timesheet.SyncStats,
) {
	row, err := normalize.Row(raw, batch.Team, batch.Source, batch.Reference)
	if err != nil {
		s.rowError(log, stats, err)
		return
	}
	if len(row.UnparsedHours) > 0 {
		log.Debug("unparsable hours read as 0", "row", row.RowNumber, "values", row.UnparsedHours)
	}

	var outcome timesheet.UpsertOutcome
	err = s.withinRow(ctx, func(spCtx context.Context) error {
		name, id, err := reconciler.Resolve(spCtx, row.EmployeeName)
		if err != nil {
			return err
		}
		row.EmployeeName, row.EmployeeID = name, id

		outcome, err = upserter.Upsert(spCtx, row)
		return err
	})
	if err != nil {
		s.rowError(log, stats, timesheet.NewRowError(batch.Team, raw.RowNumber, err))
		return
	}

	switch outcome.Entry {
	case timesheet.EntryCreated:
		stats.EntriesCreated++
	case timesheet.EntryUpdated:
		stats.EntriesUpdated++
	case timesheet.EntrySkippedDuplicate:
		stats.RowsSkipped++
	}
	switch outcome.Leave {
	case timesheet.LeaveCreated:
		stats.LeavesCreated++
	case timesheet.LeaveUpdated:
		stats.LeavesUpdated++
	}
}

func (s *TimesheetServiceImpl) withinRow(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic while writing row: %v", p)
		}
	}()
	return s.tx.WithinSavepoint(ctx, fn)
}

func (s *TimesheetServiceImpl) rowError(log *slog.Logger, stats *timesheet.SyncStats, err error) {
	stats.Errors++
	if stats.Errors > s.cfg.RowErrorLogLimit {
		return
	}
	var rowErr *timesheet.Error
	row := 0
	if errors.As(err, &rowErr) {
		row = rowErr.Row
	}
	log.Warn("row not synced", "row", row, "error", err)
}

func newRunID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
