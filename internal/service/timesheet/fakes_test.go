package timesheet

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/cmlabs-hris/timesheet-sync/internal/domain/employee"
	"github.com/cmlabs-hris/timesheet-sync/internal/domain/timesheet"
	"github.com/cmlabs-hris/timesheet-sync/internal/pkg/sheets"
)

type leaveKey struct {
	name      string
	date      time.Time
	leaveType string
}

// memStore stands in for Postgres. The transactor snapshots it so savepoint and
// transaction rollbacks behave like the real thing.
type memStore struct {
	entries  map[entryKey]timesheet.TimesheetEntry
	leaves   map[leaveKey]timesheet.LeaveEntry
	people   map[string]string
	mappings []employee.NameMapping

	entryUpserts int
	mappingErr   error
	commitErr    error
	failEntry    func(timesheet.TimesheetEntry) error
	failLeave    func(timesheet.LeaveEntry) error
	nextID       int
}

func newMemStore() *memStore {
	return &memStore{
		entries: make(map[entryKey]timesheet.TimesheetEntry),
		leaves:  make(map[leaveKey]timesheet.LeaveEntry),
		people:  make(map[string]string),
	}
}

type snapshot struct {
	entries  map[entryKey]timesheet.TimesheetEntry
	leaves   map[leaveKey]timesheet.LeaveEntry
	mappings []employee.NameMapping
}

func (m *memStore) snapshot() snapshot {
	s := snapshot{
		entries:  make(map[entryKey]timesheet.TimesheetEntry, len(m.entries)),
		leaves:   make(map[leaveKey]timesheet.LeaveEntry, len(m.leaves)),
		mappings: append([]employee.NameMapping(nil), m.mappings...),
	}
	for k, v := range m.entries {
		s.entries[k] = v
	}
	for k, v := range m.leaves {
		s.leaves[k] = v
	}
	return s
}

func (m *memStore) restore(s snapshot) {
	m.entries, m.leaves, m.mappings = s.entries, s.leaves, s.mappings
}

func (m *memStore) id() string {
	m.nextID++
	return fmt.Sprintf("00000000-0000-4000-8000-%012d", m.nextID)
}

func (m *memStore) entry(name, ticket string, date time.Time, team timesheet.Team) (timesheet.TimesheetEntry, bool) {
	e, ok := m.entries[entryKey{name: name, ticket: ticket, date: date, team: team}]
	return e, ok
}

type memTransactor struct{ store *memStore }

func (t memTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	snap := t.store.snapshot()
	err := fn(ctx)
	if err == nil {
		err = t.store.commitErr
	}
	if err != nil {
		t.store.restore(snap)
	}
	return err
}

func (t memTransactor) WithinSavepoint(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	snap := t.store.snapshot()
	defer func() {
		if p := recover(); p != nil {
			t.store.restore(snap)
			panic(p)
		}
	}()
	if err = fn(ctx); err != nil {
		t.store.restore(snap)
	}
	return err
}

type memTimesheets struct{ store *memStore }

func (r memTimesheets) Upsert(_ context.Context, e timesheet.TimesheetEntry) (bool, error) {
	r.store.entryUpserts++
	if r.store.failEntry != nil {
		if err := r.store.failEntry(e); err != nil {
			return false, err
		}
	}
	key := entryKey{name: e.EmployeeName, ticket: e.TicketID, date: e.Date, team: e.Team}
	existing, ok := r.store.entries[key]
	if !ok {
		e.ID = r.store.id()
		r.store.entries[key] = e
		return true, nil
	}
	existing.Hours = e.Hours
	existing.ProductiveHours = e.ProductiveHours
	existing.Minutes = e.Minutes
	existing.LeaveType = e.LeaveType
	existing.TaskDescription = e.TaskDescription
	existing.Project = e.Project
	if e.EmployeeID != nil {
		existing.EmployeeID = e.EmployeeID
	}
	existing.SyncedAt = e.SyncedAt
	r.store.entries[key] = existing
	return false, nil
}

func (r memTimesheets) GetByDateRange(_ context.Context, team *timesheet.Team, start, end time.Time) ([]timesheet.TimesheetEntry, error) {
	var out []timesheet.TimesheetEntry
	for _, e := range r.store.entries {
		if e.Date.Before(start) || e.Date.After(end) || (team != nil && e.Team != *team) {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].TicketID < out[j].TicketID
	})
	return out, nil
}

func (r memTimesheets) RenameEmployee(_ context.Context, from, to string, employeeID *string) (int64, int64, error) {
	var renamed, conflicts int64
	for k, e := range r.store.entries {
		if k.name != from {
			continue
		}
		target := k
		target.name = to
		if _, exists := r.store.entries[target]; exists {
			conflicts++
			continue
		}
		delete(r.store.entries, k)
		e.EmployeeName = to
		if employeeID != nil {
			e.EmployeeID = employeeID
		}
		r.store.entries[target] = e
		renamed++
	}
	return renamed, conflicts, nil
}

type memLeaves struct{ store *memStore }

func (r memLeaves) Upsert(_ context.Context, l timesheet.LeaveEntry, overwrite bool) (timesheet.LeaveOutcome, error) {
	if r.store.failLeave != nil {
		if err := r.store.failLeave(l); err != nil {
			return timesheet.LeaveNone, err
		}
	}
	key := leaveKey{name: l.EmployeeName, date: l.Date, leaveType: l.LeaveType}
	existing, ok := r.store.leaves[key]
	if !ok {
		l.ID = r.store.id()
		r.store.leaves[key] = l
		return timesheet.LeaveCreated, nil
	}
	if !overwrite || existing.Hours == l.Hours {
		return timesheet.LeaveUnchanged, nil
	}
	existing.Hours = l.Hours
	r.store.leaves[key] = existing
	return timesheet.LeaveUpdated, nil
}

func (r memLeaves) GetByDateRange(_ context.Context, team *timesheet.Team, start, end time.Time) ([]timesheet.LeaveEntry, error) {
	var out []timesheet.LeaveEntry
	for _, l := range r.store.leaves {
		if l.Date.Before(start) || l.Date.After(end) || (team != nil && l.Team != *team) {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

func (r memLeaves) RenameEmployee(_ context.Context, from, to string, employeeID *string) (int64, int64, error) {
	var renamed, conflicts int64
	for k, l := range r.store.leaves {
		if k.name != from {
			continue
		}
		target := k
		target.name = to
		if _, exists := r.store.leaves[target]; exists {
			conflicts++
			continue
		}
		delete(r.store.leaves, k)
		l.EmployeeName = to
		if employeeID != nil {
			l.EmployeeID = employeeID
		}
		r.store.leaves[target] = l
		renamed++
	}
	return renamed, conflicts, nil
}

type memEmployees struct{ store *memStore }

func (r memEmployees) GetIDByFullName(_ context.Context, name string) (*string, error) {
	if id, ok := r.store.people[name]; ok {
		return &id, nil
	}
	return nil, nil
}

type memMappings struct{ store *memStore }

func (r memMappings) ListActive(context.Context) ([]employee.NameMapping, error) {
	if r.store.mappingErr != nil {
		return nil, r.store.mappingErr
	}
	var out []employee.NameMapping
	for _, m := range r.store.mappings {
		if m.IsActive {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r memMappings) List(context.Context) ([]employee.NameMapping, error) {
	return append([]employee.NameMapping(nil), r.store.mappings...), r.store.mappingErr
}

func (r memMappings) Create(_ context.Context, m employee.NameMapping) (employee.NameMapping, error) {
	for _, existing := range r.store.mappings {
		if existing.AlternateName == m.AlternateName {
			return employee.NameMapping{}, employee.ErrNameMappingExists
		}
	}
	m.ID = r.store.id()
	m.CreatedAt = time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC)
	r.store.mappings = append(r.store.mappings, m)
	return m, nil
}

// gridSource serves fixed grids per tab.
type gridSource struct {
	grids map[string][][]interface{}
	err   error
}

func (g *gridSource) Values(_ context.Context, ref sheets.TabRef) ([][]interface{}, error) {
	if g.err != nil {
		return nil, g.err
	}
	grid, ok := g.grids[ref.Tab]
	if !ok {
		return nil, errors.New("tab not found")
	}
	return grid, nil
}

func (g *gridSource) Name() string                 { return timesheet.SourceGoogleSheets }
func (g *gridSource) Ready(ref sheets.TabRef) bool { return ref.SpreadsheetID != "" }
