package timesheet

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cmlabs-hris/timesheet-sync/internal/domain/employee"
)

// NameReconciler maps sheet names to canonical employees. Aliases are loaded
// once per run; employee lookups are cached per run when they hit.
type NameReconciler struct {
	employees employee.EmployeeRepository
	aliases   map[string]employee.NameMapping
	found     map[string]string
}

// NewNameReconciler loads the active aliases. A failed load leaves the reconciler
// with direct lookups only.
func NewNameReconciler(ctx context.Context, mappings employee.NameMappingRepository, employees employee.EmployeeRepository) *NameReconciler {
	r := &NameReconciler{
		employees: employees,
		aliases:   make(map[string]employee.NameMapping),
		found:     make(map[string]string),
	}

	active, err := mappings.ListActive(ctx)
	if err != nil {
		slog.Warn("name mappings unavailable, using direct employee lookup only", "error", err)
		return r
	}
	for _, m := range active {
		r.aliases[nameKey(m.AlternateName)] = m
	}
	return r
}

func (r *NameReconciler) Aliases() int {
	return len(r.aliases)
}

// Resolve returns the canonical name and, when known, the employee id. An
// unknown employee is not an error.
func (r *NameReconciler) Resolve(ctx context.Context, rawName string) (string, *string, error) {
	key := nameKey(rawName)
	if m, ok := r.aliases[key]; ok {
		return m.CanonicalName, m.EmployeeID, nil
	}

	if id, ok := r.found[key]; ok {
		return key, &id, nil
	}

	id, err := r.employees.GetIDByFullName(ctx, key)
	if err != nil {
		return "", nil, fmt.Errorf("resolve employee %q: %w", key, err)
	}
	if id != nil {
		r.found[key] = *id
	}
	return key, id, nil
}

func nameKey(name string) string {
	return strings.Join(strings.Fields(name), " ")
}
