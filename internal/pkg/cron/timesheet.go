package cron

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cmlabs-hris/timesheet-sync/internal/domain/timesheet"
	"github.com/cmlabs-hris/timesheet-sync/internal/pkg/sse"
)

const (
	// RealtimeInterval is used instead of the configured interval in real-time mode.
	RealtimeInterval = 2 * time.Minute

	EventSyncCompleted = "sync_completed"
	EventSyncFailed    = "sync_failed"
)

// TimesheetJobs runs timesheet syncs, on a schedule or on demand, with at most
// one sync in flight across both paths.
type TimesheetJobs struct {
	service    timesheet.TimesheetService
	hub        *sse.Hub
	monthsBack int

	running  atomic.Bool
	mu       sync.RWMutex
	lastRuns map[timesheet.Team]*timesheet.TeamSyncResult
}

// NewTimesheetJobs creates timesheet cron jobs. hub may be nil.
func NewTimesheetJobs(service timesheet.TimesheetService, hub *sse.Hub, monthsBack int) *TimesheetJobs {
	if monthsBack <= 0 {
		monthsBack = timesheet.DefaultMonthsBack
	}
	return &TimesheetJobs{
		service:    service,
		hub:        hub,
		monthsBack: monthsBack,
		lastRuns:   make(map[timesheet.Team]*timesheet.TeamSyncResult),
	}
}

// SyncInterval returns the interval the sync job runs at.
func SyncInterval(configured time.Duration, realtime bool) time.Duration {
	if realtime || configured <= 0 {
		return RealtimeInterval
	}
	return configured
}

// RegisterJobs registers the periodic sync of every team
func (j *TimesheetJobs) RegisterJobs(scheduler *Scheduler, interval time.Duration) {
	scheduler.AddJob("sync_timesheets", interval, j.SyncAllTeams)
}

// SyncAllTeams is the scheduled entry point. A tick that lands while another
// sync is running is skipped.
func (j *TimesheetJobs) SyncAllTeams(ctx context.Context) error {
	results, err := j.TriggerAll(ctx, j.monthsBack)
	if errors.Is(err, timesheet.ErrSyncInProgress) {
		slog.Info("Timesheet sync still running, skipping tick")
		return nil
	}
	if err != nil {
		return err
	}

	var errs []error
	for _, team := range timesheet.AllTeams() {
		if r, ok := results[team]; ok && r.Error != "" {
			errs = append(errs, fmt.Errorf("team %s: %s", team, r.Error))
		}
	}
	return errors.Join(errs...)
}

// TriggerTeam syncs a single team unless another sync is running.
func (j *TimesheetJobs) TriggerTeam(ctx context.Context, team timesheet.Team, monthsBack int) (*timesheet.SyncStats, error) {
	if !j.running.CompareAndSwap(false, true) {
		return nil, timesheet.ErrSyncInProgress
	}
	defer j.running.Store(false)

	stats, err := j.service.SyncTeam(ctx, team, monthsBack)
	result := &timesheet.TeamSyncResult{SyncStats: stats}
	if err != nil {
		result.Error = err.Error()
	}
	j.record(team, result)
	return stats, err
}

// TriggerAll syncs every team unless another sync is running.
func (j *TimesheetJobs) TriggerAll(ctx context.Context, monthsBack int) (map[timesheet.Team]*timesheet.TeamSyncResult, error) {
	if !j.running.CompareAndSwap(false, true) {
		return nil, timesheet.ErrSyncInProgress
	}
	defer j.running.Store(false)

	results := j.service.SyncAll(ctx, monthsBack)
	for _, team := range timesheet.AllTeams() {
		if r, ok := results[team]; ok {
			j.record(team, r)
		}
	}
	return results, nil
}

// State reports whether a sync is running and the last result per team.
func (j *TimesheetJobs) State() timesheet.RunState {
	j.mu.RLock()
	defer j.mu.RUnlock()

	last := make(map[timesheet.Team]*timesheet.TeamSyncResult, len(j.lastRuns))
	for team, r := range j.lastRuns {
		last[team] = r
	}
	return timesheet.RunState{
		InProgress: j.running.Load(),
		LastRuns:   last,
	}
}

func (j *TimesheetJobs) record(team timesheet.Team, result *timesheet.TeamSyncResult) {
	j.mu.Lock()
	j.lastRuns[team] = result
	j.mu.Unlock()

	if j.hub == nil {
		return
	}
	event := sse.Event{Event: EventSyncCompleted, Data: result}
	if result.Error != "" {
		event.Event = EventSyncFailed
	}
	j.hub.PublishToMany([]string{string(team), sse.TopicAll}, event)
}
