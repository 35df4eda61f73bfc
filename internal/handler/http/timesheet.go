package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cmlabs-hris/timesheet-sync/internal/domain/employee"
	"github.com/cmlabs-hris/timesheet-sync/internal/domain/timesheet"
	"github.com/cmlabs-hris/timesheet-sync/internal/handler/http/response"
	"github.com/cmlabs-hris/timesheet-sync/internal/pkg/sse"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"
)

// SyncRunner starts syncs under the at-most-one-in-flight guard.
type SyncRunner interface {
	TriggerTeam(ctx context.Context, team timesheet.Team, monthsBack int) (*timesheet.SyncStats, error)
	TriggerAll(ctx context.Context, monthsBack int) (map[timesheet.Team]*timesheet.TeamSyncResult, error)
	State() timesheet.RunState
}

type TimesheetHandler interface {
	SyncTeam(w http.ResponseWriter, r *http.Request)
	SyncAll(w http.ResponseWriter, r *http.Request)
	Status(w http.ResponseWriter, r *http.Request)
	Events(w http.ResponseWriter, r *http.Request)
	Calendar(w http.ResponseWriter, r *http.Request)
	LeavesICS(w http.ResponseWriter, r *http.Request)
	ListNameMappings(w http.ResponseWriter, r *http.Request)
	CreateNameMapping(w http.ResponseWriter, r *http.Request)
}

type timesheetHandlerImpl struct {
	service    timesheet.TimesheetService
	runner     SyncRunner
	hub        *sse.Hub
	monthsBack int
}

func NewTimesheetHandler(service timesheet.TimesheetService, runner SyncRunner, hub *sse.Hub, monthsBack int) TimesheetHandler {
	if monthsBack <= 0 {
		monthsBack = timesheet.DefaultMonthsBack
	}
	return &timesheetHandlerImpl{
		service:    service,
		runner:     runner,
		hub:        hub,
		monthsBack: monthsBack,
	}
}

// SyncTeam handles POST /sync/{team}
func (h *timesheetHandlerImpl) SyncTeam(w http.ResponseWriter, r *http.Request) {
	team, err := timesheet.ParseTeam(chi.URLParam(r, "team"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	monthsBack, ok := h.parseMonthsBack(w, r)
	if !ok {
		return
	}

	stats, err := h.runner.TriggerTeam(r.Context(), team, monthsBack)
	if err != nil {
		slog.Error("Timesheet sync failed", "team", team, "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, fmt.Sprintf("%s timesheet synced", team), stats)
}

// SyncAll handles POST /sync. A failure of one team is reported in that
// team's entry and the response is 202 instead of 200.
func (h *timesheetHandlerImpl) SyncAll(w http.ResponseWriter, r *http.Request) {
	monthsBack, ok := h.parseMonthsBack(w, r)
	if !ok {
		return
	}

	results, err := h.runner.TriggerAll(r.Context(), monthsBack)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	for _, result := range results {
		if result.Error != "" {
			response.Accepted(w, "Some teams failed to sync", results)
			return
		}
	}
	response.SuccessWithMessage(w, "All teams synced", results)
}

// Status handles GET /sync/status
func (h *timesheetHandlerImpl) Status(w http.ResponseWriter, r *http.Request) {
	response.Success(w, h.service.Status(h.runner.State()))
}

// Events streams sync_completed / sync_failed events for one team, or every
// team when no team is given.
func (h *timesheetHandlerImpl) Events(w http.ResponseWriter, r *http.Request) {
	topic := sse.TopicAll
	if raw := r.URL.Query().Get("team"); raw != "" && !strings.EqualFold(raw, sse.TopicAll) {
		team, err := timesheet.ParseTeam(raw)
		if err != nil {
			response.HandleError(w, err)
			return
		}
		topic = string(team)
	}

	// Check if streaming is supported
	flusher, ok := w.(http.Flusher)
	if !ok {
		response.InternalServerError(w, "Streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	events, cleanup := h.hub.Subscribe(topic)
	defer cleanup()

	fmt.Fprintf(w, "event: connected\ndata: {\"status\":\"connected\",\"topic\":%q}\n\n", topic)
	flusher.Flush()

	keepalive := time.NewTicker(30 * time.Second)
	defer keepalive.Stop()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(event.Data)
			if err != nil {
				slog.Warn("Failed to encode sync event", "event", event.Event, "error", err)
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Event, data)
			flusher.Flush()

		case <-keepalive.C:
			fmt.Fprintf(w, "event: ping\ndata: {\"timestamp\":%d}\n\n", time.Now().Unix())
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}

// Calendar handles GET /calendar
func (h *timesheetHandlerImpl) Calendar(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.GetCalendarData(r.Context(), calendarRequest(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, entries)
}

// LeavesICS handles GET /calendar/leaves.ics
func (h *timesheetHandlerImpl) LeavesICS(w http.ResponseWriter, r *http.Request) {
	leaves, err := h.service.GetLeaves(r.Context(), calendarRequest(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	cal, err := leaveCalendar(leaves, time.Now())
	if err != nil {
		slog.Error("Failed to build leave calendar", "error", err)
		response.InternalServerError(w, "Failed to build calendar")
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `inline; filename="leaves.ics"`)
	if _, err := w.Write(cal); err != nil {
		slog.Warn("Failed to write leave calendar", "error", err)
	}
}

// ListNameMappings handles GET /name-mappings
func (h *timesheetHandlerImpl) ListNameMappings(w http.ResponseWriter, r *http.Request) {
	mappings, err := h.service.ListNameMappings(r.Context())
	if err != nil {
		slog.Error("Failed to list name mappings", "error", err)
		response.HandleError(w, err)
		return
	}
	response.Success(w, mappings)
}

// CreateNameMapping handles POST /name-mappings
func (h *timesheetHandlerImpl) CreateNameMapping(w http.ResponseWriter, r *http.Request) {
	var req employee.CreateNameMappingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	if req.Source == "" {
		req.Source = employee.MappingSourceAPI
	}

	result, err := h.service.AddNameMapping(r.Context(), req)
	if err != nil {
		slog.Error("Failed to add name mapping", "alternate_name", req.AlternateName, "error", err)
		response.HandleError(w, err)
		return
	}

	if _, claims, err := jwtauth.FromContext(r.Context()); err == nil {
		slog.Info("Name mapping added", "alternate_name", req.AlternateName, "canonical_name", req.CanonicalName, "operator", claims["sub"])
	}
	response.Created(w, "Name mapping created", result)
}

func (h *timesheetHandlerImpl) parseMonthsBack(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("months_back")
	if raw == "" {
		return h.monthsBack, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		response.BadRequest(w, "months_back must be a positive integer", map[string]string{"months_back": raw})
		return 0, false
	}
	return n, true
}

func calendarRequest(r *http.Request) timesheet.CalendarRequest {
	q := r.URL.Query()
	return timesheet.CalendarRequest{
		Team:      q.Get("team"),
		StartDate: q.Get("start_date"),
		EndDate:   q.Get("end_date"),
	}
}
