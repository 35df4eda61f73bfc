package response

import (
	"errors"
	"net/http"

	"github.com/cmlabs-hris/timesheet-sync/internal/domain/employee"
	"github.com/cmlabs-hris/timesheet-sync/internal/domain/timesheet"
	"github.com/cmlabs-hris/timesheet-sync/internal/pkg/jwt"
	"github.com/cmlabs-hris/timesheet-sync/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Auth
	case errors.Is(err, jwt.ErrInvalidToken):
		Unauthorized(w, "Invalid or expired token")

	// Timesheet sync errors
	case errors.Is(err, timesheet.ErrConfiguration):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, timesheet.ErrAuthentication):
		Unauthorized(w, err.Error())
	case errors.Is(err, timesheet.ErrSyncInProgress):
		Conflict(w, "A timesheet sync is already running")
	case errors.Is(err, timesheet.ErrRemoteService):
		BadGateway(w, err.Error())
	case errors.Is(err, timesheet.ErrTeamTransaction):
		InternalServerError(w, err.Error())

	// Employee domain errors
	case errors.Is(err, employee.ErrNameMappingExists):
		Conflict(w, "Name mapping already exists for this alternate name")

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
