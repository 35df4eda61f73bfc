package validator

import (
	"regexp"
	"strings"
	"time"
)

type ValidationError struct {
	Field   string
	Message string
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	var msgs []string
	for _, err := range v {
		msgs = append(msgs, err.Field+": "+err.Message)
	}
	return strings.Join(msgs, "; ")
}

func (v ValidationErrors) ToMap() map[string]string {
	result := make(map[string]string)
	for _, err := range v {
		result[err.Field] = err.Message
	}
	return result
}

// IsEmpty checks if a string is empty after trimming whitespace.
func IsEmpty(s string) bool {
	return strings.TrimSpace(s) == ""
}

var uuidRegex = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[1-8][0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)

// UUID validation, any RFC 9562 version
func IsValidUUID(uuid string) bool {
	return uuidRegex.MatchString(strings.ToLower(uuid))
}

// Date validation
func IsValidDate(dateStr string) (time.Time, bool) {
	date, err := time.Parse("2006-01-02", dateStr)
	return date, err == nil
}

// Slice contains check
func IsInSlice(value string, slice []string) bool {
	for _, item := range slice {
		if item == value {
			return true
		}
	}
	return false
}

// MaxNameLength bounds names accepted for aliases.
const MaxNameLength = 200

// IsValidName rejects blank names, control characters and overlong input.
func IsValidName(name string) bool {
	name = strings.TrimSpace(name)
	if name == "" || len([]rune(name)) > MaxNameLength {
		return false
	}
	for _, r := range name {
		if r < 0x20 || r == 0x7f {
			return false
		}
	}
	return true
}

// DateRange parses an optional YYYY-MM-DD range. Missing ends default to the
// month containing today.
func DateRange(start, end string, today time.Time) (time.Time, time.Time, ValidationErrors) {
	var errs ValidationErrors
	y, m, _ := today.Date()
	from := time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, -1)

	if !IsEmpty(start) {
		d, ok := IsValidDate(strings.TrimSpace(start))
		if !ok {
			errs = append(errs, ValidationError{Field: "start_date", Message: "must be YYYY-MM-DD"})
		}
		from = d
	}
	if !IsEmpty(end) {
		d, ok := IsValidDate(strings.TrimSpace(end))
		if !ok {
			errs = append(errs, ValidationError{Field: "end_date", Message: "must be YYYY-MM-DD"})
		}
		to = d
	}
	if len(errs) == 0 && from.After(to) {
		errs = append(errs, ValidationError{Field: "start_date", Message: "must not be after end_date"})
	}
	return from, to, errs
}
