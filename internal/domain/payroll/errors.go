package payroll

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrPayrollRecordNotFound      = errors.New("payroll record not found")
	ErrPayrollRecordAlreadyExists = errors.New("payroll record already exists for this period")
	ErrInvalidPeriod              = errors.New("invalid payroll period")
	ErrEmployeeNotActive          = errors.New("employee is not active")
	ErrRecordLocked               = errors.New("payroll record is locked")
	ErrRecordNotLocked            = errors.New("payroll record is not locked")
	ErrRecordNotApproved          = errors.New("payroll record must be approved before payment")
	ErrInvalidStatusTransition    = errors.New("invalid payroll status transition")
	ErrCannotDeletePaidRecord     = errors.New("cannot delete paid or locked payroll record")
	ErrInvalidPaymentAmount       = errors.New("invalid payment amount")
	ErrPaymentExceedsBalance      = errors.New("payment exceeds unpaid balance")
	ErrRevisionReasonRequired     = errors.New("a reason is required to edit a payroll record")
	ErrNothingToEdit              = errors.New("no editable field changed")
	ErrEditBelowPaidAmount        = errors.New("edit would lower net salary below the amount already paid")
	ErrDeductionNotFound          = errors.New("deduction not found")
	ErrComputedDeductionType      = errors.New("absence and late deductions are computed from attendance")
	ErrDeductionPeriodClosed      = errors.New("payroll for this deduction period is already past draft")
	ErrInvariantViolation         = errors.New("payroll invariant violated")
)

// InvariantError reports a broken money invariant inside the allocator.
// It always wraps ErrInvariantViolation and aborts the calculation.
type InvariantError struct {
	Category DeductionCategory
	Detail   string
	Expected decimal.Decimal
	Actual   decimal.Decimal
}

func (e *InvariantError) Error() string {
	if e.Category == "" {
		return fmt.Sprintf("%s: %s (expected %s, got %s)", ErrInvariantViolation, e.Detail, e.Expected, e.Actual)
	}
	return fmt.Sprintf("%s: %s tier: %s (expected %s, got %s)", ErrInvariantViolation, e.Category, e.Detail, e.Expected, e.Actual)
}

func (e *InvariantError) Unwrap() error {
	return ErrInvariantViolation
}
