package payroll

import (
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/employee"
	"github.com/shopspring/decimal"
)

// ========== EARNINGS ==========

type AllowanceKind string

const (
	AllowanceTransport AllowanceKind = "transport"
	AllowanceFood      AllowanceKind = "food"
	AllowanceHousing   AllowanceKind = "housing"
)

type AllowanceLine struct {
	Kind   AllowanceKind   `json:"kind"`
	Amount decimal.Decimal `json:"amount"`
}

type OvertimeLine struct {
	Date   time.Time       `json:"date"`
	Hours  decimal.Decimal `json:"hours"`
	Amount decimal.Decimal `json:"amount"`
}

type Overtime struct {
	Rate   decimal.Decimal `json:"rate"`
	Hours  decimal.Decimal `json:"hours"`
	Amount decimal.Decimal `json:"amount"`
	Lines  []OvertimeLine  `json:"lines"`
}

type BonusLine struct {
	Label  string          `json:"label"`
	Amount decimal.Decimal `json:"amount"`
}

// Earnings is the gross breakdown of a record.
type Earnings struct {
	EmploymentType  employee.EmploymentType `json:"employment_type"`
	Basic           decimal.Decimal         `json:"basic"`
	Allowances      []AllowanceLine         `json:"allowances"`
	AllowancesTotal decimal.Decimal         `json:"allowances_total"`
	Overtime        Overtime                `json:"overtime"`
	Commission      decimal.Decimal         `json:"commission"`
	Bonuses         []BonusLine             `json:"bonuses"`
	BonusesTotal    decimal.Decimal         `json:"bonuses_total"`
	Tips            decimal.Decimal         `json:"tips"`
	Gross           decimal.Decimal         `json:"gross"`
}

// Allowance returns the amount of one allowance kind, zero when absent.
func (e Earnings) Allowance(kind AllowanceKind) decimal.Decimal {
	for _, line := range e.Allowances {
		if line.Kind == kind {
			return line.Amount
		}
	}
	return decimal.Zero
}

// ========== DEDUCTIONS ==========

// DeductionCategory names a cascade tier. Penalties share the "other" tier.
type DeductionCategory string

const (
	CategoryMandatory  DeductionCategory = "mandatory"
	CategoryAttendance DeductionCategory = "attendance"
	CategoryAdvance    DeductionCategory = "advance"
	CategoryOther      DeductionCategory = "other"
)

// TierOrder is the fixed cascade priority.
var TierOrder = []DeductionCategory{CategoryMandatory, CategoryAttendance, CategoryAdvance, CategoryOther}

type MandatoryKind string

const (
	MandatoryInsurance      MandatoryKind = "insurance"
	MandatoryTax            MandatoryKind = "tax"
	MandatoryCarriedForward MandatoryKind = "carried_forward"
)

type MandatoryLine struct {
	Kind           MandatoryKind   `json:"kind"`
	Base           decimal.Decimal `json:"base"`
	Rate           decimal.Decimal `json:"rate"`
	Amount         decimal.Decimal `json:"amount"`
	CarriedForward bool            `json:"carried_forward"`
}

type AttendanceDeductionKind string

const (
	AttendanceDeductionAbsence        AttendanceDeductionKind = "absence"
	AttendanceDeductionLate           AttendanceDeductionKind = "late"
	AttendanceDeductionCarriedForward AttendanceDeductionKind = "carried_forward"
)

type AttendanceDeductionLine struct {
	Kind           AttendanceDeductionKind `json:"kind"`
	Date           *time.Time              `json:"date,omitempty"`
	LateMinutes    int                     `json:"late_minutes,omitempty"`
	Amount         decimal.Decimal         `json:"amount"`
	CarriedForward bool                    `json:"carried_forward"`
}

type AdvanceDeductionLine struct {
	AdvanceID      string          `json:"advance_id"`
	Amount         decimal.Decimal `json:"amount"`
	Applied        decimal.Decimal `json:"applied"`
	CarriedForward bool            `json:"carried_forward"`
}

type ManualDeductionLine struct {
	DeductionID    string          `json:"deduction_id,omitempty"`
	Type           DeductionType   `json:"type"`
	Reason         string          `json:"reason"`
	Amount         decimal.Decimal `json:"amount"`
	CarriedForward bool            `json:"carried_forward"`
}

// TierAllocation is what the cascade did with one tier.
type TierAllocation struct {
	Category  DeductionCategory `json:"category"`
	Requested decimal.Decimal   `json:"requested"`
	Applied   decimal.Decimal   `json:"applied"`
	Carried   decimal.Decimal   `json:"carried"`
}

// CarryforwardDetail records a deduction that could not be fully applied.
// AdvanceID is set only for the advance category.
type CarryforwardDetail struct {
	Category                DeductionCategory `json:"category"`
	AdvanceID               string            `json:"advance_id,omitempty"`
	OriginalAmount          decimal.Decimal   `json:"original_amount"`
	DeductedThisMonth       decimal.Decimal   `json:"deducted_this_month"`
	RemainingToCarryforward decimal.Decimal   `json:"remaining_to_carryforward"`
	Reason                  string            `json:"reason"`
}

// Deductions is the full deduction breakdown: requested lines per source plus the cascade outcome.
type Deductions struct {
	Mandatory      []MandatoryLine           `json:"mandatory"`
	Attendance     []AttendanceDeductionLine `json:"attendance"`
	Advances       []AdvanceDeductionLine    `json:"advances"`
	Penalties      []ManualDeductionLine     `json:"penalties"`
	Other          []ManualDeductionLine     `json:"other"`
	Tiers          []TierAllocation          `json:"tiers"`
	TotalRequested decimal.Decimal           `json:"total_requested"`
	TotalApplied   decimal.Decimal           `json:"total_applied"`
}

func (d Deductions) MandatoryTotal() decimal.Decimal {
	total := decimal.Zero
	for _, l := range d.Mandatory {
		total = total.Add(l.Amount)
	}
	return total
}

func (d Deductions) AttendanceTotal() decimal.Decimal {
	total := decimal.Zero
	for _, l := range d.Attendance {
		total = total.Add(l.Amount)
	}
	return total
}

func (d Deductions) AdvancesTotal() decimal.Decimal {
	total := decimal.Zero
	for _, l := range d.Advances {
		total = total.Add(l.Amount)
	}
	return total
}

func (d Deductions) PenaltiesTotal() decimal.Decimal {
	return sumManual(d.Penalties)
}

func (d Deductions) OtherTotal() decimal.Decimal {
	return sumManual(d.Other)
}

// Requested returns the requested total of one cascade tier.
func (d Deductions) Requested(category DeductionCategory) decimal.Decimal {
	switch category {
	case CategoryMandatory:
		return d.MandatoryTotal()
	case CategoryAttendance:
		return d.AttendanceTotal()
	case CategoryAdvance:
		return d.AdvancesTotal()
	case CategoryOther:
		return d.PenaltiesTotal().Add(d.OtherTotal())
	}
	return decimal.Zero
}

// Tier returns the allocation of one category.
func (d Deductions) Tier(category DeductionCategory) TierAllocation {
	for _, t := range d.Tiers {
		if t.Category == category {
			return t
		}
	}
	return TierAllocation{Category: category}
}

func sumManual(lines []ManualDeductionLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Amount)
	}
	return total
}
