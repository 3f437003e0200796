package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

// DeductionType enum
type DeductionType string

const (
	DeductionTypeAbsence   DeductionType = "absence"
	DeductionTypeLate      DeductionType = "late"
	DeductionTypePenalty   DeductionType = "penalty"
	DeductionTypeLoan      DeductionType = "loan"
	DeductionTypeInsurance DeductionType = "insurance"
	DeductionTypeTax       DeductionType = "tax"
	DeductionTypeOther     DeductionType = "other"
)

// IsManual reports whether the type may be entered by hand.
func (t DeductionType) IsManual() bool {
	switch t {
	case DeductionTypePenalty, DeductionTypeLoan, DeductionTypeInsurance, DeductionTypeTax, DeductionTypeOther:
		return true
	}
	return false
}

// Deduction - Manually entered deduction tied to one payroll period
type Deduction struct {
	ID          string
	CompanyID   string
	EmployeeID  string
	Type        DeductionType
	Amount      decimal.Decimal
	Reason      string
	PeriodMonth int
	PeriodYear  int
	CreatedBy   *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
