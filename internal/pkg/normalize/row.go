package normalize

import (
	"fmt"
	"math"
	"strings"

	"github.com/cmlabs-hris/timesheet-sync/internal/domain/timesheet"
)

// Row turns a fetched row into a NormalizedRow. EmployeeName is left as seen in
// the sheet; reconciliation happens afterwards. Any error is a row error.
func Row(raw timesheet.RawRow, team timesheet.Team, source, sheetRef string) (timesheet.NormalizedRow, error) {
	name := strings.Join(strings.Fields(raw.EmployeeName), " ")
	if name == "" {
		return timesheet.NormalizedRow{}, timesheet.NewRowError(team, raw.RowNumber, timesheet.ErrMissingEmployeeName)
	}

	date := raw.Date
	if date.IsZero() {
		parsed, ok := ParseDate(raw.RawDate)
		if !ok {
			return timesheet.NormalizedRow{}, timesheet.NewRowError(team, raw.RowNumber, fmt.Errorf("unparsable date %q", raw.RawDate))
		}
		date = parsed
	}

	var unparsable []string
	spent, ok := Hours(raw.TimeSpent)
	if !ok {
		unparsable = append(unparsable, fmt.Sprint(raw.TimeSpent))
	}
	productive, ok := Hours(raw.ProductiveHours)
	if !ok {
		unparsable = append(unparsable, fmt.Sprint(raw.ProductiveHours))
	}
	if !plausible(spent) || !plausible(productive) {
		return timesheet.NormalizedRow{}, timesheet.NewRowError(team, raw.RowNumber, timesheet.ErrImplausibleHours)
	}

	hours := spent
	if isEmptyCell(raw.TimeSpent) {
		hours = productive
	}
	var productivePtr *float64
	if !isEmptyCell(raw.ProductiveHours) {
		productivePtr = &productive
	}

	leave := raw.LeaveLabel
	if leave == "" {
		leave = ClassifyLeave(LeaveInputs{Column: raw.LeaveColumn, Reference: raw.TicketRef, Task: raw.Task})
	}

	task := strings.TrimSpace(raw.Task)
	if task == "" {
		task = strings.TrimSpace(raw.Comments)
	}

	return timesheet.NormalizedRow{
		RowNumber:       raw.RowNumber,
		RawEmployeeName: name,
		EmployeeName:    name,
		Date:            date,
		TicketID:        TruncateTicketID(TicketID(raw.TicketRef, raw.Task, leave != "")),
		Hours:           hours,
		ProductiveHours: productivePtr,
		LeaveType:       leave,
		TaskDescription: task,
		Project:         strings.TrimSpace(raw.Status),
		Team:            team,
		Source:          source,
		ExternalRowRef:  fmt.Sprintf("%s!%d", sheetRef, raw.RowNumber),
		UnparsedHours:   unparsable,
	}, nil
}

// Minutes is the whole-minute count stored next to hours.
func Minutes(hours float64) int {
	return int(math.Round(hours * 60))
}

func plausible(h float64) bool {
	return h >= 0 && !math.IsNaN(h) && !math.IsInf(h, 0)
}

func isEmptyCell(v interface{}) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}
