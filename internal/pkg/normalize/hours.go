package normalize

import (
	"strconv"
	"strings"
)

// Hours parses a cell holding a decimal or an H:MM[:SS] duration into fractional hours.
// Empty cells are 0. ok is false only for a non-empty value that could not be parsed,
// in which case the result is 0 as well.
func Hours(v interface{}) (float64, bool) {
	switch h := v.(type) {
	case nil:
		return 0, true
	case float64:
		return h, true
	case float32:
		return float64(h), true
	case int:
		return float64(h), true
	case int64:
		return float64(h), true
	case string:
		return parseHoursString(h)
	}
	return 0, false
}

func parseHoursString(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, true
	}
	if strings.Contains(s, ":") {
		return parseClock(s)
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func parseClock(s string) (float64, bool) {
	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, false
	}
	var fields [3]float64
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return 0, false
		}
		if i > 0 && (n < 0 || n > 59) {
			return 0, false
		}
		fields[i] = float64(n)
	}
	return fields[0] + fields[1]/60 + fields[2]/3600, true
}
