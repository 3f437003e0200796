package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/advance"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Auth
	case errors.Is(err, user.ErrInvalidToken), errors.Is(err, user.ErrCompanyIDRequired):
		Unauthorized(w, err.Error())
	case errors.Is(err, user.ErrInsufficientPermissions), errors.Is(err, user.ErrInvalidRole):
		Forbidden(w, "Insufficient permissions")

	// Employee
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, employee.ErrEmployeeCodeExists):
		Conflict(w, "Employee code already exists")
	case errors.Is(err, employee.ErrInvalidEmploymentType), errors.Is(err, employee.ErrRateRequired):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, employee.ErrEmployeeNotActive), errors.Is(err, payroll.ErrEmployeeNotActive):
		InvalidState(w, "Employee is not active")

	// Attendance
	case errors.Is(err, attendance.ErrAttendanceNotFound):
		NotFound(w, "Attendance record not found")
	case errors.Is(err, attendance.ErrAttendanceAlreadyRecorded):
		Conflict(w, "Attendance already recorded for this date")
	case errors.Is(err, attendance.ErrInvalidCheckOut):
		BadRequest(w, err.Error(), nil)

	// Advance
	case errors.Is(err, advance.ErrAdvanceNotFound):
		NotFound(w, "Advance not found")
	case errors.Is(err, advance.ErrAdvanceAlreadyProcessed),
		errors.Is(err, advance.ErrAdvanceNotApproved),
		errors.Is(err, advance.ErrAdvanceNotActive):
		InvalidState(w, err.Error())
	case errors.Is(err, advance.ErrInvalidAmount), errors.Is(err, advance.ErrDeductionExceedsRemaining):
		BadRequest(w, err.Error(), nil)

	// Payroll
	case errors.Is(err, payroll.ErrPayrollRecordNotFound):
		NotFound(w, "Payroll record not found")
	case errors.Is(err, payroll.ErrDeductionNotFound):
		NotFound(w, "Deduction not found")
	case errors.Is(err, payroll.ErrPayrollRecordAlreadyExists):
		Conflict(w, "Payroll record already exists for this period")
	case errors.Is(err, payroll.ErrRecordLocked),
		errors.Is(err, payroll.ErrRecordNotLocked),
		errors.Is(err, payroll.ErrRecordNotApproved),
		errors.Is(err, payroll.ErrInvalidStatusTransition),
		errors.Is(err, payroll.ErrCannotDeletePaidRecord),
		errors.Is(err, payroll.ErrDeductionPeriodClosed),
		errors.Is(err, payroll.ErrNothingToEdit),
		errors.Is(err, payroll.ErrEditBelowPaidAmount):
		InvalidState(w, err.Error())
	case errors.Is(err, payroll.ErrInvalidPaymentAmount),
		errors.Is(err, payroll.ErrPaymentExceedsBalance),
		errors.Is(err, payroll.ErrRevisionReasonRequired),
		errors.Is(err, payroll.ErrComputedDeductionType),
		errors.Is(err, payroll.ErrInvalidPeriod):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, payroll.ErrInvariantViolation):
		InternalServerError(w, "Payroll calculation failed")

	default:
		slog.Error("unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
