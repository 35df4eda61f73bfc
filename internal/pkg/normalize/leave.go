package normalize

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	LeaveHalfDay = "Half Day Leave"
	LeaveSick    = "Sick Leave"
	LeaveWFH     = "WFH"
	LeaveGeneric = "Leave"
	LeaveHoliday = "Holiday"
)

type leaveRule struct {
	label   string
	pattern *regexp.Regexp
}

// newLeaveRule matches any keyword as a whole word, optionally plural, so
// "pto" does not fire inside "laptop".
func newLeaveRule(label string, keywords ...string) leaveRule {
	quoted := make([]string, len(keywords))
	for i, kw := range keywords {
		quoted[i] = regexp.QuoteMeta(kw)
	}
	return leaveRule{
		label:   label,
		pattern: regexp.MustCompile(`\b(?:` + strings.Join(quoted, "|") + `)s?\b`),
	}
}

// Order matters: "sick leave" must classify as Sick Leave, not Leave.
var leaveRules = []leaveRule{
	newLeaveRule(LeaveHalfDay, "half day", "half-day", "halfday"),
	newLeaveRule(LeaveSick, "sick"),
	newLeaveRule(LeaveWFH, "wfh", "work from home", "work-from-home"),
	newLeaveRule(LeaveGeneric, "leave", "pto", "vacation", "day off", "comp off", "out of office"),
	newLeaveRule(LeaveHoliday, "holiday"),
}

var affirmative = map[string]bool{"yes": true, "y": true, "true": true, "1": true, "x": true}

var titleCaser = cases.Title(language.English)

// LeaveInputs are the cells consulted, in priority order.
type LeaveInputs struct {
	Column    string
	Reference string
	Task      string
}

// ClassifyLeave returns the leave label for a row, or "" when it is ordinary work.
// A dedicated leave column that is filled in but matches no keyword is still a
// leave, labelled with its own title-cased text.
func ClassifyLeave(in LeaveInputs) string {
	column := strings.TrimSpace(in.Column)
	if label := matchLeave(column); label != "" {
		return label
	}
	if label := matchLeave(in.Reference); label != "" {
		return label
	}
	if label := matchLeave(in.Task); label != "" {
		return label
	}
	if isBlankMarker(column) || isNegative(column) {
		return ""
	}
	if affirmative[strings.ToLower(column)] {
		return LeaveGeneric
	}
	return titleCaser.String(strings.ToLower(column))
}

func matchLeave(text string) string {
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return ""
	}
	for _, rule := range leaveRules {
		if rule.pattern.MatchString(text) {
			return rule.label
		}
	}
	return ""
}

func isNegative(s string) bool {
	switch strings.ToLower(s) {
	case "no", "n", "0", "false":
		return true
	}
	return false
}

// LeaveHours is the duration recorded on a leave entry when the sheet gives none.
func LeaveHours(label string, hours, fullDay float64) float64 {
	if hours > 0 {
		return hours
	}
	if label == LeaveHalfDay {
		return fullDay / 2
	}
	return fullDay
}
