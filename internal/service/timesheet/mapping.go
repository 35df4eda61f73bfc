package timesheet

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cmlabs-hris/timesheet-sync/internal/domain/employee"
	"github.com/cmlabs-hris/timesheet-sync/internal/pkg/validator"
)

// AddNameMapping stores an alias and moves historical rows recorded under the
// alternate name to the canonical one, all in one transaction. Rows whose
// canonical key already exists are left alone and reported as conflicts.
func (s *TimesheetServiceImpl) AddNameMapping(ctx context.Context, req employee.CreateNameMappingRequest) (employee.BackfillResponse, error) {
	alternate := nameKey(req.AlternateName)
	canonical := nameKey(req.CanonicalName)

	var errs validator.ValidationErrors
	if !validator.IsValidName(alternate) {
		errs = append(errs, validator.ValidationError{Field: "alternate_name", Message: employee.ErrAlternateNameRequired.Error()})
	}
	if !validator.IsValidName(canonical) {
		errs = append(errs, validator.ValidationError{Field: "canonical_name", Message: employee.ErrCanonicalNameRequired.Error()})
	}
	if len(errs) == 0 && strings.EqualFold(alternate, canonical) {
		errs = append(errs, validator.ValidationError{Field: "canonical_name", Message: employee.ErrMappingNamesIdentical.Error()})
	}
	if len(errs) > 0 {
		return employee.BackfillResponse{}, errs
	}

	source := strings.TrimSpace(req.Source)
	if source == "" {
		source = employee.MappingSourceManual
	}

	var resp employee.BackfillResponse
	err := s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		employeeID, err := s.employees.GetIDByFullName(txCtx, canonical)
		if err != nil {
			return err
		}

		created, err := s.mappings.Create(txCtx, employee.NameMapping{
			AlternateName: alternate,
			CanonicalName: canonical,
			EmployeeID:    employeeID,
			Source:        source,
			Notes:         req.Notes,
			IsActive:      true,
		})
		if err != nil {
			return err
		}
		resp.Mapping = toMappingResponse(created)

		resp.TimesheetsRenamed, resp.TimesheetConflicts, err = s.timesheets.RenameEmployee(txCtx, alternate, canonical, employeeID)
		if err != nil {
			return err
		}
		resp.LeavesRenamed, resp.LeaveConflicts, err = s.leaves.RenameEmployee(txCtx, alternate, canonical, employeeID)
		return err
	})
	if err != nil {
		return employee.BackfillResponse{}, fmt.Errorf("failed to add name mapping: %w", err)
	}

	slog.Info("name mapping added",
		"alternate", alternate,
		"canonical", canonical,
		"timesheets_renamed", resp.TimesheetsRenamed,
		"timesheet_conflicts", resp.TimesheetConflicts,
		"leaves_renamed", resp.LeavesRenamed,
		"leave_conflicts", resp.LeaveConflicts,
	)
	return resp, nil
}

// ListNameMappings implements timesheet.TimesheetService.
func (s *TimesheetServiceImpl) ListNameMappings(ctx context.Context) ([]employee.NameMappingResponse, error) {
	mappings, err := s.mappings.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list name mappings: %w", err)
	}
	resp := make([]employee.NameMappingResponse, 0, len(mappings))
	for _, m := range mappings {
		resp = append(resp, toMappingResponse(m))
	}
	return resp, nil
}

func toMappingResponse(m employee.NameMapping) employee.NameMappingResponse {
	return employee.NameMappingResponse{
		ID:            m.ID,
		AlternateName: m.AlternateName,
		CanonicalName: m.CanonicalName,
		EmployeeID:    m.EmployeeID,
		Source:        m.Source,
		Notes:         m.Notes,
		IsActive:      m.IsActive,
		CreatedAt:     m.CreatedAt,
	}
}
