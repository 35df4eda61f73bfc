package sheets

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/timesheet-sync/internal/domain/timesheet"
	"github.com/cmlabs-hris/timesheet-sync/internal/pkg/normalize"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticSource struct {
	grid [][]interface{}
	err  error
	ref  TabRef
}

func (s *staticSource) Values(_ context.Context, ref TabRef) ([][]interface{}, error) {
	s.ref = ref
	return s.grid, s.err
}

func (s *staticSource) Name() string          { return timesheet.SourceGoogleSheets }
func (s *staticSource) Ready(ref TabRef) bool { return ref.SpreadsheetID != "" }

var testColumns = Columns{
	Date:            "Date",
	Ticket:          "Ticket",
	TimeSpent:       "Time Spent",
	ProductiveHours: "Productive Hours",
	Leave:           "Leave Type",
	Task:            "Task",
	Project:         "Status",
	Comments:        "Comments",
}

func newTestFetcher(grid [][]interface{}, today time.Time) (*Fetcher, *staticSource) {
	src := &staticSource{grid: grid}
	f := NewFetcher(src, Config{
		Teams: map[timesheet.Team]TeamSheet{
			timesheet.TeamQA:  {SpreadsheetID: "qa-sheet", Tab: "QA Timesheet", EmployeeColumn: "Tester"},
			timesheet.TeamDEV: {Tab: "Dev Timesheet", EmployeeColumn: "Developer"},
		},
		Columns:   testColumns,
		HeaderRow: 2,
		Timeout:   time.Second,
	}).WithClock(func() time.Time { return today })
	return f, src
}

func row(cells ...interface{}) []interface{} { return cells }

func TestFetch_EndToEndRows(t *testing.T) {
	grid := [][]interface{}{
		row("QA timesheet for January"),
		row("date", "TESTER", "Ticket", "Task", "Time Spent", "Productive Hours", "Status"),
		row("1/5/2026", "Jane Doe", "https://host/pm/tickets#!/100", "Login tests", "6:30:00", "", "Payments"),
		row("1/6/2026", "Jane Doe", "", "Sick leave today"),
	}
	f, src := newTestFetcher(grid, time.Date(2026, 1, 20, 10, 0, 0, 0, time.UTC))

	batch, err := f.Fetch(context.Background(), timesheet.TeamQA, 6)
	require.NoError(t, err)

	assert.Equal(t, "qa-sheet", src.ref.SpreadsheetID)
	assert.Equal(t, "QA Timesheet", batch.Reference)
	require.Len(t, batch.Rows, 2)

	first := batch.Rows[0]
	assert.Equal(t, 3, first.RowNumber)
	assert.Equal(t, "Jane Doe", first.EmployeeName)
	assert.Equal(t, "2026-01-05", normalize.FormatDate(first.Date))
	assert.Equal(t, "6:30:00", first.TimeSpent)
	assert.Equal(t, "Payments", first.Status)
	assert.Empty(t, first.LeaveLabel)

	second := batch.Rows[1]
	assert.Equal(t, normalize.LeaveSick, second.LeaveLabel)
	assert.Nil(t, second.TimeSpent)
}

func TestFetch_RetentionBoundary(t *testing.T) {
	grid := [][]interface{}{
		row("Date", "Tester", "Ticket"),
		row("2026-01-15", "Jane Doe", "1"),
		row("2026-01-14", "Jane Doe", "2"),
	}
	f, _ := newTestFetcher(grid, time.Date(2026, 7, 15, 23, 0, 0, 0, time.UTC))
	f.cfg.HeaderRow = 1

	batch, err := f.Fetch(context.Background(), timesheet.TeamQA, 6)
	require.NoError(t, err)

	require.Len(t, batch.Rows, 1)
	assert.Equal(t, "1", batch.Rows[0].TicketRef)
	assert.Equal(t, 1, batch.OutOfWindow)
	assert.Equal(t, "2026-01-15", normalize.FormatDate(batch.Cutoff))
}

func TestFetch_SkipsRowsMissingRequiredFields(t *testing.T) {
	grid := [][]interface{}{
		row("title"),
		row("Date", "Tester"),
		row("", "Jane Doe"),
		row("1/5/2026", ""),
		row("garbage", "Jane Doe"),
		row("", "", ""),
		row("1/5/2026", "Jane Doe"),
	}
	f, _ := newTestFetcher(grid, time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC))

	batch, err := f.Fetch(context.Background(), timesheet.TeamQA, 0)
	require.NoError(t, err)
	assert.Len(t, batch.Rows, 1)
	assert.Equal(t, 3, batch.Skipped)
}

func TestFetch_HeaderRowBeyondDataFallsBackToFirstRow(t *testing.T) {
	grid := [][]interface{}{
		row("Date", "Tester"),
	}
	f, _ := newTestFetcher(grid, time.Now())
	f.cfg.HeaderRow = 5

	batch, err := f.Fetch(context.Background(), timesheet.TeamQA, 6)
	require.NoError(t, err)
	assert.Empty(t, batch.Rows)
}

func TestFetch_Errors(t *testing.T) {
	f, src := newTestFetcher(nil, time.Now())

	_, err := f.Fetch(context.Background(), timesheet.Team("OPS"), 6)
	assert.ErrorIs(t, err, timesheet.ErrConfiguration)
	assert.ErrorIs(t, err, timesheet.ErrUnknownTeam)

	_, err = f.Fetch(context.Background(), timesheet.TeamDEV, 6)
	assert.ErrorIs(t, err, timesheet.ErrConfiguration)
	assert.ErrorIs(t, err, timesheet.ErrSheetNotConfigured)

	src.err = errors.New("connection reset")
	_, err = f.Fetch(context.Background(), timesheet.TeamQA, 6)
	assert.ErrorIs(t, err, timesheet.ErrRemoteService)

	src.err = timesheet.NewAuthenticationError(errors.New("no key"))
	_, err = f.Fetch(context.Background(), timesheet.TeamQA, 6)
	assert.ErrorIs(t, err, timesheet.ErrAuthentication)
	assert.NotErrorIs(t, err, timesheet.ErrRemoteService)
}

func TestConfigured(t *testing.T) {
	f, _ := newTestFetcher(nil, time.Now())

	qa := f.Configured(timesheet.TeamQA)
	assert.True(t, qa.Configured)
	assert.Equal(t, "qa-sheet", qa.Reference)

	assert.False(t, f.Configured(timesheet.TeamDEV).Configured)
}

func TestCutoff(t *testing.T) {
	cases := []struct {
		name  string
		today time.Time
		want  time.Time
	}{
		{"mid month", time.Date(2026, 7, 15, 18, 30, 0, 0, time.UTC), time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)},
		{"month end clamps to february", time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC), time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC)},
		{"leap february", time.Date(2028, 8, 31, 9, 0, 0, 0, time.UTC), time.Date(2028, 2, 29, 0, 0, 0, 0, time.UTC)},
		{"day 31 into a 30 day month", time.Date(2026, 10, 31, 0, 0, 0, 0, time.UTC), time.Date(2026, 4, 30, 0, 0, 0, 0, time.UTC)},
		{"across year boundary", time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC), time.Date(2025, 9, 30, 0, 0, 0, 0, time.UTC)},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, Cutoff(c.today, 6))
		})
	}
}
