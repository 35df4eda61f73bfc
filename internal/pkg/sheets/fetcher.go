package sheets

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/cmlabs-hris/timesheet-sync/internal/domain/timesheet"
	"github.com/cmlabs-hris/timesheet-sync/internal/pkg/normalize"
)

// TeamSheet locates one team's tab and names its employee column.
type TeamSheet struct {
	SpreadsheetID  string
	Tab            string
	XLSXPath       string
	EmployeeColumn string
}

// Columns are the header names looked up in every tab.
type Columns struct {
	Date            string
	Ticket          string
	TimeSpent       string
	ProductiveHours string
	Leave           string
	Task            string
	Project         string
	Comments        string
}

type Config struct {
	Teams     map[timesheet.Team]TeamSheet
	Columns   Columns
	HeaderRow int
	Timeout   time.Duration
}

var _ timesheet.SheetFetcher = (*Fetcher)(nil)

type Fetcher struct {
	source Source
	cfg    Config
	now    func() time.Time
}

func NewFetcher(source Source, cfg Config) *Fetcher {
	if cfg.HeaderRow <= 0 {
		cfg.HeaderRow = 1
	}
	return &Fetcher{source: source, cfg: cfg, now: time.Now}
}

// WithClock replaces the clock used for the retention cutoff.
func (f *Fetcher) WithClock(now func() time.Time) *Fetcher {
	f.now = now
	return f
}

// Cutoff is the oldest date kept for a retention window of monthsBack months.
func Cutoff(today time.Time, monthsBack int) time.Time {
	y, m, d := today.Date()
	first := time.Date(y, m, 1, 0, 0, 0, 0, time.UTC).AddDate(0, -monthsBack, 0)
	// Clamp to the target month's last day instead of rolling into the next month.
	if last := first.AddDate(0, 1, -1).Day(); d > last {
		d = last
	}
	return first.AddDate(0, 0, d-1)
}

func (f *Fetcher) Configured(team timesheet.Team) timesheet.TeamSheetStatus {
	sheet, ok := f.cfg.Teams[team]
	if !ok {
		return timesheet.TeamSheetStatus{Source: f.source.Name()}
	}
	ref := f.ref(sheet)
	reference := ref.SpreadsheetID
	if reference == "" {
		reference = ref.Path
	}
	return timesheet.TeamSheetStatus{
		Configured: f.source.Ready(ref),
		Source:     f.source.Name(),
		Reference:  reference,
		Tab:        sheet.Tab,
	}
}

func (f *Fetcher) Fetch(ctx context.Context, team timesheet.Team, monthsBack int) (timesheet.Batch, error) {
	sheet, ok := f.cfg.Teams[team]
	if !ok {
		return timesheet.Batch{}, timesheet.NewConfigurationError(team, timesheet.ErrUnknownTeam)
	}
	ref := f.ref(sheet)
	if !f.source.Ready(ref) {
		return timesheet.Batch{}, timesheet.NewConfigurationError(team, timesheet.ErrSheetNotConfigured)
	}
	if monthsBack <= 0 {
		monthsBack = timesheet.DefaultMonthsBack
	}

	batch := timesheet.Batch{
		Team:      team,
		Source:    f.source.Name(),
		Reference: sheet.Tab,
		Cutoff:    Cutoff(f.now(), monthsBack),
	}

	fetchCtx := ctx
	if f.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, f.cfg.Timeout)
		defer cancel()
	}

	grid, err := f.source.Values(fetchCtx, ref)
	if err != nil {
		if IsAuthError(err) {
			return timesheet.Batch{}, err
		}
		return timesheet.Batch{}, timesheet.NewRemoteServiceError(team, err)
	}
	if len(grid) == 0 {
		return batch, nil
	}

	headerIdx := f.cfg.HeaderRow - 1
	if headerIdx >= len(grid) {
		slog.Warn("header row beyond sheet data, using first row", "team", team, "header_row", f.cfg.HeaderRow, "rows", len(grid))
		headerIdx = 0
	}
	idx := f.locate(grid[headerIdx], sheet.EmployeeColumn)
	if idx.date < 0 || idx.employee < 0 {
		slog.Warn("required columns missing from header", "team", team, "date", idx.date, "employee", idx.employee)
	}

	for i := headerIdx + 1; i < len(grid); i++ {
		row := grid[i]
		if blankRow(row) {
			continue
		}

		rawDate := cellString(row, idx.date)
		name := cellString(row, idx.employee)
		if rawDate == "" || name == "" {
			batch.Skipped++
			continue
		}
		date, ok := normalize.ParseDate(rawDate)
		if !ok {
			batch.Skipped++
			continue
		}
		if date.Before(batch.Cutoff) {
			batch.OutOfWindow++
			continue
		}

		raw := timesheet.RawRow{
			RowNumber:       i + 1,
			Date:            date,
			RawDate:         rawDate,
			EmployeeName:    name,
			TimeSpent:       cellValue(row, idx.timeSpent),
			ProductiveHours: cellValue(row, idx.productive),
			Task:            cellString(row, idx.task),
			TicketRef:       cellString(row, idx.ticket),
			Status:          cellString(row, idx.project),
			Comments:        cellString(row, idx.comments),
			LeaveColumn:     cellString(row, idx.leave),
		}
		raw.LeaveLabel = normalize.ClassifyLeave(normalize.LeaveInputs{
			Column:    raw.LeaveColumn,
			Reference: raw.TicketRef,
			Task:      raw.Task,
		})
		batch.Rows = append(batch.Rows, raw)
	}

	return batch, nil
}

func (f *Fetcher) ref(sheet TeamSheet) TabRef {
	return TabRef{SpreadsheetID: sheet.SpreadsheetID, Tab: sheet.Tab, Path: sheet.XLSXPath}
}

type columnIndex struct {
	date, employee, ticket, timeSpent, productive, leave, task, project, comments int
}

func (f *Fetcher) locate(header []interface{}, employeeColumn string) columnIndex {
	find := func(name string) int {
		if name == "" {
			return -1
		}
		for i := range header {
			if strings.EqualFold(cellString(header, i), name) {
				return i
			}
		}
		return -1
	}
	c := f.cfg.Columns
	return columnIndex{
		date:       find(c.Date),
		employee:   find(employeeColumn),
		ticket:     find(c.Ticket),
		timeSpent:  find(c.TimeSpent),
		productive: find(c.ProductiveHours),
		leave:      find(c.Leave),
		task:       find(c.Task),
		project:    find(c.Project),
		comments:   find(c.Comments),
	}
}
