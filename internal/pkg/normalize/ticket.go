package normalize

import (
	"regexp"
	"strings"

	"github.com/cmlabs-hris/timesheet-sync/internal/domain/timesheet"
)

var (
	digitsOnly = regexp.MustCompile(`^[0-9]+$`)
	digitRun   = regexp.MustCompile(`[0-9]+`)
)

// tracker URLs look like https://host/pm/tickets#!/18492
var urlSeparators = []string{"#!/", "/"}

// ExtractTicketID pulls a ticket number out of a reference cell. It returns "" when
// the cell holds nothing usable.
func ExtractTicketID(ref string) string {
	ref = strings.TrimSpace(ref)
	if isBlankMarker(ref) {
		return ""
	}
	if digitsOnly.MatchString(ref) {
		return ref
	}
	if runs := digitRun.FindAllString(ref, -1); len(runs) > 0 {
		return runs[len(runs)-1]
	}
	last := ref
	for _, sep := range urlSeparators {
		if !strings.Contains(last, sep) {
			continue
		}
		segments := strings.Split(last, sep)
		for i := len(segments) - 1; i >= 0; i-- {
			if seg := strings.TrimSpace(segments[i]); seg != "" {
				last = seg
				break
			}
		}
	}
	return last
}

// TicketID falls back to the task text for ad-hoc work and to the unassigned
// sentinel when there is nothing at all. Leave rows never borrow the task text.
func TicketID(ref, task string, isLeave bool) string {
	if id := ExtractTicketID(ref); id != "" {
		return id
	}
	if task = strings.TrimSpace(task); task != "" && !isLeave {
		return task
	}
	return timesheet.UnassignedTicket
}

// TruncateTicketID cuts id to the store's column width without splitting a rune.
func TruncateTicketID(id string) string {
	r := []rune(id)
	if len(r) <= timesheet.TicketIDMaxLength {
		return id
	}
	return string(r[:timesheet.TicketIDMaxLength])
}

func isBlankMarker(s string) bool {
	switch strings.ToLower(s) {
	case "", "-", "n/a", "na", "none", "null":
		return true
	}
	return false
}
