package http

import (
	"bytes"
	"fmt"
	"time"

	"github.com/cmlabs-hris/timesheet-sync/internal/domain/timesheet"
	"github.com/emersion/go-ical"
)

const icsProductID = "-//cmlabs-hris//timesheet-sync//EN"

// leaveCalendar renders leave rows as all-day VEVENTs.
func leaveCalendar(leaves []timesheet.LeaveResponse, stamp time.Time) ([]byte, error) {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, icsProductID)

	for _, l := range leaves {
		day, err := time.Parse("2006-01-02", l.Date)
		if err != nil {
			return nil, fmt.Errorf("leave %s has invalid date %q: %w", l.ID, l.Date, err)
		}

		uid := l.ID
		if uid == "" {
			uid = fmt.Sprintf("%s-%s-%s", l.EmployeeName, l.Date, l.LeaveType)
		}

		event := ical.NewEvent()
		event.Props.SetText(ical.PropUID, uid+"@timesheet-sync")
		event.Props.SetDateTime(ical.PropDateTimeStamp, stamp.UTC())
		event.Props.SetDate(ical.PropDateTimeStart, day)
		event.Props.SetDate(ical.PropDateTimeEnd, day.AddDate(0, 0, 1))
		event.Props.SetText(ical.PropSummary, fmt.Sprintf("%s: %s", l.EmployeeName, l.LeaveType))
		event.Props.SetText(ical.PropDescription, fmt.Sprintf("%s team, %.1f hours", l.Team, l.Hours))
		event.Props.SetText(ical.PropCategories, l.LeaveType)
		cal.Children = append(cal.Children, event.Component)
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, fmt.Errorf("failed to encode calendar: %w", err)
	}
	return buf.Bytes(), nil
}
