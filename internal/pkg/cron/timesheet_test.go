package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/timesheet-sync/internal/domain/timesheet"
	"github.com/cmlabs-hris/timesheet-sync/internal/pkg/sse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeService struct {
	timesheet.TimesheetService
	block   chan struct{}
	entered chan struct{}
	teamErr map[timesheet.Team]error
}

func (f *fakeService) SyncTeam(ctx context.Context, team timesheet.Team, monthsBack int) (*timesheet.SyncStats, error) {
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.block != nil {
		<-f.block
	}
	if err := f.teamErr[team]; err != nil {
		return nil, err
	}
	return &timesheet.SyncStats{Team: team, EntriesCreated: monthsBack}, nil
}

func (f *fakeService) SyncAll(ctx context.Context, monthsBack int) map[timesheet.Team]*timesheet.TeamSyncResult {
	out := make(map[timesheet.Team]*timesheet.TeamSyncResult)
	for _, team := range timesheet.AllTeams() {
		stats, err := f.SyncTeam(ctx, team, monthsBack)
		r := &timesheet.TeamSyncResult{SyncStats: stats}
		if err != nil {
			r.Error = err.Error()
		}
		out[team] = r
	}
	return out
}

func TestTimesheetJobs_TriggerTeamRecordsAndPublishes(t *testing.T) {
	hub := sse.NewHub()
	events, cleanup := hub.Subscribe(string(timesheet.TeamQA))
	defer cleanup()

	jobs := NewTimesheetJobs(&fakeService{}, hub, 0)
	stats, err := jobs.TriggerTeam(context.Background(), timesheet.TeamQA, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.EntriesCreated)

	state := jobs.State()
	assert.False(t, state.InProgress)
	require.Contains(t, state.LastRuns, timesheet.TeamQA)
	assert.Empty(t, state.LastRuns[timesheet.TeamQA].Error)

	ev := <-events
	assert.Equal(t, EventSyncCompleted, ev.Event)
}

func TestTimesheetJobs_RefusesOverlappingRuns(t *testing.T) {
	svc := &fakeService{block: make(chan struct{}), entered: make(chan struct{}, 1)}
	jobs := NewTimesheetJobs(svc, nil, 6)

	done := make(chan error, 1)
	go func() {
		_, err := jobs.TriggerTeam(context.Background(), timesheet.TeamDEV, 6)
		done <- err
	}()
	<-svc.entered

	assert.True(t, jobs.State().InProgress)
	_, err := jobs.TriggerAll(context.Background(), 6)
	assert.ErrorIs(t, err, timesheet.ErrSyncInProgress)
	_, err = jobs.TriggerTeam(context.Background(), timesheet.TeamQA, 6)
	assert.ErrorIs(t, err, timesheet.ErrSyncInProgress)
	assert.NoError(t, jobs.SyncAllTeams(context.Background()), "busy tick is skipped")

	svc.entered = nil
	close(svc.block)
	require.NoError(t, <-done)
	assert.False(t, jobs.State().InProgress)
}

func TestTimesheetJobs_SyncAllTeamsJoinsTeamErrors(t *testing.T) {
	hub := sse.NewHub()
	all, cleanup := hub.Subscribe(sse.TopicAll)
	defer cleanup()

	svc := &fakeService{teamErr: map[timesheet.Team]error{timesheet.TeamDEV: errors.New("sheet gone")}}
	jobs := NewTimesheetJobs(svc, hub, 6)

	err := jobs.SyncAllTeams(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "team DEV: sheet gone")

	state := jobs.State()
	assert.Empty(t, state.LastRuns[timesheet.TeamQA].Error)
	assert.Equal(t, "sheet gone", state.LastRuns[timesheet.TeamDEV].Error)

	got := map[string]int{}
	got[(<-all).Event]++
	got[(<-all).Event]++
	assert.Equal(t, map[string]int{EventSyncCompleted: 1, EventSyncFailed: 1}, got)
}

func TestSyncInterval(t *testing.T) {
	assert.Equal(t, RealtimeInterval, SyncInterval(30*time.Minute, true))
	assert.Equal(t, 30*time.Minute, SyncInterval(30*time.Minute, false))
	assert.Equal(t, RealtimeInterval, SyncInterval(0, false))
}
