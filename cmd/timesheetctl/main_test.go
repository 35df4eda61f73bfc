package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/cmlabs-hris/timesheet-sync/internal/domain/employee"
	"github.com/cmlabs-hris/timesheet-sync/internal/domain/timesheet"
)

func TestPrintStats(t *testing.T) {
	var buf bytes.Buffer
	printStats(&buf, &timesheet.SyncStats{Team: timesheet.TeamQA, RowsProcessed: 5, EntriesCreated: 3, EntriesUpdated: 2, Errors: 1, DurationMS: 40})

	want := "QA: 5 processed (3 created, 2 updated), 0 leaves created, 0 leaves updated, 0 skipped, 0 out of window, 1 errors in 40ms\n"
	if got := buf.String(); got != want {
		t.Errorf("printStats() = %q, want %q", got, want)
	}
}

func TestSortedTeams(t *testing.T) {
	got := sortedTeams(map[timesheet.Team]*timesheet.TeamSyncResult{
		timesheet.TeamQA:  {},
		timesheet.TeamDEV: {},
	})
	if len(got) != 2 || got[0] != timesheet.TeamDEV || got[1] != timesheet.TeamQA {
		t.Errorf("sortedTeams() = %v", got)
	}
}

func TestPrintMappings(t *testing.T) {
	var buf bytes.Buffer
	printMappings(&buf, []employee.NameMappingResponse{
		{AlternateName: "Ali", CanonicalName: "Alice Smith", Source: "cli", IsActive: true},
	})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("printMappings() wrote %d lines, want 2", len(lines))
	}
	if !strings.HasPrefix(lines[1], "Ali") || !strings.Contains(lines[1], "Alice Smith") || !strings.HasSuffix(lines[1], "true") {
		t.Errorf("unexpected row %q", lines[1])
	}
}

func TestSyncRejectsUnknownTeam(t *testing.T) {
	err := runSync(syncCmd, []string{"OPS"})
	if err == nil || !strings.Contains(err.Error(), "unknown team") {
		t.Errorf("runSync(OPS) error = %v, want unknown team", err)
	}
}
