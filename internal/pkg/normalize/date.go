package normalize

import (
	"math"
	"strings"
	"time"
)

// Month-first layouts come before day-first ones: the sheets default to a US locale,
// so "1/2/2026" is January 2nd.
var dateLayouts = []string{
	"2006-01-02",
	"1/2/2006",
	"1-2-2006",
	"2/1/2006",
	"2-1-2006",
	"2006/1/2",
	"2-Jan-2006",
	"2 Jan 2006",
	"January 2, 2006",
}

// spreadsheet serial day zero
var serialEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

// ParseDate returns the calendar date of v at UTC midnight. ok is false when v
// holds no recognizable date; that is a skip, not a failure.
func ParseDate(v interface{}) (time.Time, bool) {
	switch d := v.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		if d.IsZero() {
			return time.Time{}, false
		}
		return truncateDay(d), true
	case *time.Time:
		if d == nil {
			return time.Time{}, false
		}
		return ParseDate(*d)
	case float64:
		return fromSerial(d)
	case int:
		return fromSerial(float64(d))
	case int64:
		return fromSerial(float64(d))
	case string:
		return parseDateString(d)
	}
	return time.Time{}, false
}

func parseDateString(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func fromSerial(days float64) (time.Time, bool) {
	if days <= 0 || math.IsNaN(days) || math.IsInf(days, 0) {
		return time.Time{}, false
	}
	return serialEpoch.AddDate(0, 0, int(days)), true
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// FormatDate renders a date the way the store and the API expect it.
func FormatDate(t time.Time) string {
	return t.Format("2006-01-02")
}
