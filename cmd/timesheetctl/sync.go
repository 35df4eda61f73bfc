package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/cmlabs-hris/timesheet-sync/internal/app"
	"github.com/cmlabs-hris/timesheet-sync/internal/domain/timesheet"
	"github.com/spf13/cobra"
)

var (
	syncMonthsBack int
	syncJSON       bool
)

var syncCmd = &cobra.Command{
	Use:   "sync [team]",
	Short: "Sync one team (QA or DEV) or every team",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSync,
}

func init() {
	syncCmd.Flags().IntVar(&syncMonthsBack, "months-back", timesheet.DefaultMonthsBack, "Retention window in months")
	syncCmd.Flags().BoolVar(&syncJSON, "json", false, "Print the statistics as JSON")
}

func runSync(cmd *cobra.Command, args []string) error {
	var team timesheet.Team
	if len(args) == 1 {
		t, err := timesheet.ParseTeam(args[0])
		if err != nil {
			return err
		}
		team = t
	}

	return withApp(cmd.Context(), func(a *app.App) error {
		out := cmd.OutOrStdout()

		if team != "" {
			stats, err := a.Service.SyncTeam(cmd.Context(), team, syncMonthsBack)
			if err != nil {
				return err
			}
			if syncJSON {
				return printJSON(out, stats)
			}
			printStats(out, stats)
			return nil
		}

		results := a.Service.SyncAll(cmd.Context(), syncMonthsBack)
		if syncJSON {
			if err := printJSON(out, results); err != nil {
				return err
			}
		}

		var failed []string
		for _, t := range sortedTeams(results) {
			r := results[t]
			if r.Error != "" {
				failed = append(failed, string(t))
				if !syncJSON {
					fmt.Fprintf(out, "%s: failed: %s\n", t, r.Error)
				}
				continue
			}
			if !syncJSON {
				printStats(out, r.SyncStats)
			}
		}
		if len(failed) > 0 {
			return fmt.Errorf("sync failed for %s", strings.Join(failed, ", "))
		}
		return nil
	})
}

func printStats(w io.Writer, s *timesheet.SyncStats) {
	fmt.Fprintf(w, "%s: %d processed (%d created, %d updated), %d leaves created, %d leaves updated, %d skipped, %d out of window, %d errors in %dms\n",
		s.Team, s.RowsProcessed, s.EntriesCreated, s.EntriesUpdated,
		s.LeavesCreated, s.LeavesUpdated, s.RowsSkipped, s.RowsOutOfWindow, s.Errors, s.DurationMS)
}

func sortedTeams(results map[timesheet.Team]*timesheet.TeamSyncResult) []timesheet.Team {
	teams := make([]timesheet.Team, 0, len(results))
	for t := range results {
		teams = append(teams, t)
	}
	sort.Slice(teams, func(i, j int) bool { return teams[i] < teams[j] })
	return teams
}
