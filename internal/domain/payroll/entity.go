package payroll

import (
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/employee"
	"github.com/shopspring/decimal"
)

// PayrollStatus enum
type PayrollStatus string

const (
	PayrollStatusDraft    PayrollStatus = "draft"
	PayrollStatusPending  PayrollStatus = "pending"
	PayrollStatusApproved PayrollStatus = "approved"
	PayrollStatusPaid     PayrollStatus = "paid"
	PayrollStatusLocked   PayrollStatus = "locked"
)

func (s PayrollStatus) IsValid() bool {
	switch s {
	case PayrollStatusDraft, PayrollStatusPending, PayrollStatusApproved, PayrollStatusPaid, PayrollStatusLocked:
		return true
	}
	return false
}

// PayrollRecord - Generated payroll result, one per employee per period
type PayrollRecord struct {
	ID           string
	CompanyID    string
	EmployeeID   string
	PeriodMonth  int
	PeriodYear   int
	Compensation employee.CompensationProfile // snapshot used for the calculation
	Attendance   AttendanceSummary
	Earnings     Earnings
	Deductions   Deductions
	Summary      Summary
	Status       PayrollStatus
	Locked       bool
	Notes        *string
	Revisions    []Revision
	SubmittedBy  *string
	SubmittedAt  *time.Time
	ApprovedBy   *string
	ApprovedAt   *time.Time
	PaidBy       *string
	PaidAt       *time.Time
	LockedBy     *string
	LockedAt     *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time

	// Joined fields
	EmployeeName *string
	EmployeeCode *string
}

// AttendanceSummary - Aggregate of one month of attendance entries
type AttendanceSummary struct {
	DaysRecorded  int             `json:"days_recorded"`
	DaysPresent   int             `json:"days_present"`
	Present       int             `json:"present"`
	Absent        int             `json:"absent"`
	Late          int             `json:"late"`
	HalfDay       int             `json:"half_day"`
	Leave         int             `json:"leave"`
	WeeklyOff     int             `json:"weekly_off"`
	LateMinutes   int             `json:"late_minutes"`
	TotalHours    decimal.Decimal `json:"total_hours"`
	RegularHours  decimal.Decimal `json:"regular_hours"`
	OvertimeHours decimal.Decimal `json:"overtime_hours"`
}

// Summary holds the money totals of a record.
type Summary struct {
	GrossSalary                decimal.Decimal      `json:"gross_salary"`
	TotalDeductions            decimal.Decimal      `json:"total_deductions"`
	TotalDeductionsRequested   decimal.Decimal      `json:"total_deductions_requested"`
	NetSalary                  decimal.Decimal      `json:"net_salary"`
	PaidAmount                 decimal.Decimal      `json:"paid_amount"`
	UnpaidBalance              decimal.Decimal      `json:"unpaid_balance"`
	CarriedForwardFromPrevious decimal.Decimal      `json:"carried_forward_from_previous"`
	CarriedForwardToNext       decimal.Decimal      `json:"carried_forward_to_next"`
	CarryforwardDetails        []CarryforwardDetail `json:"carryforward_details"`
}

// Revision is one field-level edit of a record.
type Revision struct {
	Field    string    `json:"field"`
	OldValue string    `json:"old_value"`
	NewValue string    `json:"new_value"`
	Reason   string    `json:"reason"`
	EditedBy string    `json:"edited_by"`
	EditedAt time.Time `json:"edited_at"`
}

// Calculation is the engine output for one (employee, period), before it is persisted.
type Calculation struct {
	EmployeeID   string
	PeriodMonth  int
	PeriodYear   int
	Compensation employee.CompensationProfile
	Attendance   AttendanceSummary
	Earnings     Earnings
	Deductions   Deductions
	Summary      Summary
}

// NewRecord turns a calculation into a draft record.
func (c Calculation) NewRecord(id, companyID string) PayrollRecord {
	return PayrollRecord{
		ID:           id,
		CompanyID:    companyID,
		EmployeeID:   c.EmployeeID,
		PeriodMonth:  c.PeriodMonth,
		PeriodYear:   c.PeriodYear,
		Compensation: c.Compensation,
		Attendance:   c.Attendance,
		Earnings:     c.Earnings,
		Deductions:   c.Deductions,
		Summary:      c.Summary,
		Status:       PayrollStatusDraft,
	}
}

// AdvanceApplied sums the applied amount per advance across the advance tier.
// Every advance with a line is present, including those that received nothing.
func (r PayrollRecord) AdvanceApplied() map[string]decimal.Decimal {
	applied := make(map[string]decimal.Decimal)
	for _, line := range r.Deductions.Advances {
		applied[line.AdvanceID] = applied[line.AdvanceID].Add(line.Applied)
	}
	return applied
}

// PreviousPeriod returns the calendar month before (month, year).
func PreviousPeriod(month, year int) (int, int) {
	if month == 1 {
		return 12, year - 1
	}
	return month - 1, year
}

// PeriodBounds returns the first and last day of a period.
func PeriodBounds(month, year int) (time.Time, time.Time) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, -1)
}
