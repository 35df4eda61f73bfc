package normalize

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	cases := []struct {
		input interface{}
		want  string
	}{
		{"2026-01-23", "2026-01-23"},
		{"1/23/2026", "2026-01-23"},
		{"1-23-2026", "2026-01-23"},
		{"1/5/2026", "2026-01-05"},
		{"23/1/2026", "2026-01-23"},
		{"23-1-2026", "2026-01-23"},
		{"2026/1/23", "2026-01-23"},
		{"23-Jan-2026", "2026-01-23"},
		{"23 Jan 2026", "2026-01-23"},
		{"January 23, 2026", "2026-01-23"},
		{"  1/23/2026 ", "2026-01-23"},
		{time.Date(2026, 1, 5, 15, 4, 0, 0, time.UTC), "2026-01-05"},
		{46027.0, "2026-01-05"},
	}
	for _, c := range cases {
		got, ok := ParseDate(c.input)
		if !ok {
			t.Errorf("ParseDate(%v) failed, want %s", c.input, c.want)
			continue
		}
		if FormatDate(got) != c.want {
			t.Errorf("ParseDate(%v) = %s, want %s", c.input, FormatDate(got), c.want)
		}
		if got.Location() != time.UTC || got.Hour() != 0 {
			t.Errorf("ParseDate(%v) = %v, want UTC midnight", c.input, got)
		}
	}
}

func TestParseDate_MonthFirst(t *testing.T) {
	got, ok := ParseDate("2/3/2026")
	if !ok || got.Month() != time.February || got.Day() != 3 {
		t.Errorf("ParseDate(\"2/3/2026\") = %v, want 2026-02-03", got)
	}
}

func TestParseDate_Invalid(t *testing.T) {
	invalid := []interface{}{nil, "", "   ", "not a date", "2/30/2026 extra", time.Time{}, -1.0, true}
	for _, v := range invalid {
		if got, ok := ParseDate(v); ok {
			t.Errorf("ParseDate(%v) = %v, want no date", v, got)
		}
	}
}
