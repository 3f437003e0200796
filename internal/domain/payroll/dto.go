package payroll

import (
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ========== PAYROLL RECORD DTOs ==========

type GeneratePayrollRequest struct {
	PeriodMonth int      `json:"period_month" validate:"min=1,max=12"`
	PeriodYear  int      `json:"period_year" validate:"min=2000,max=9999"`
	EmployeeIDs []string `json:"employee_ids,omitempty" validate:"omitempty,dive,required"` // Empty = all active employees
}

func (r *GeneratePayrollRequest) Validate() error {
	if errs := validator.Struct(r); len(errs) > 0 {
		return errs
	}
	return nil
}

// EmployeePeriodRequest selects one employee and one period, for single generation and preview.
type EmployeePeriodRequest struct {
	EmployeeID  string `json:"employee_id" validate:"required"`
	PeriodMonth int    `json:"period_month" validate:"min=1,max=12"`
	PeriodYear  int    `json:"period_year" validate:"min=2000,max=9999"`
}

func (r *EmployeePeriodRequest) Validate() error {
	if errs := validator.Struct(r); len(errs) > 0 {
		return errs
	}
	return nil
}

type BonusRequest struct {
	Label  string          `json:"label" validate:"required,max=100"`
	Amount decimal.Decimal `json:"amount"`
}

// EditPayrollRecordRequest changes earnings inputs of a record. Nil fields stay as they are.
type EditPayrollRecordRequest struct {
	ID                 string           `json:"-"`
	BasicSalary        *decimal.Decimal `json:"basic_salary,omitempty"`
	TransportAllowance *decimal.Decimal `json:"transport_allowance,omitempty"`
	FoodAllowance      *decimal.Decimal `json:"food_allowance,omitempty"`
	HousingAllowance   *decimal.Decimal `json:"housing_allowance,omitempty"`
	Commission         *decimal.Decimal `json:"commission,omitempty"`
	Tips               *decimal.Decimal `json:"tips,omitempty"`
	Bonuses            *[]BonusRequest  `json:"bonuses,omitempty" validate:"omitempty,dive"`
	Notes              *string          `json:"notes,omitempty" validate:"omitempty,max=1000"`
	Reason             string           `json:"reason" validate:"required,max=500"`
}

func (r *EditPayrollRecordRequest) Validate() error {
	errs := validator.Struct(r)

	amounts := []struct {
		field string
		value *decimal.Decimal
	}{
		{"basic_salary", r.BasicSalary},
		{"transport_allowance", r.TransportAllowance},
		{"food_allowance", r.FoodAllowance},
		{"housing_allowance", r.HousingAllowance},
		{"commission", r.Commission},
		{"tips", r.Tips},
	}
	for _, a := range amounts {
		if a.value != nil && a.value.IsNegative() {
			errs = append(errs, validator.ValidationError{Field: a.field, Message: "must be non-negative"})
		}
	}
	if r.Bonuses != nil {
		for _, b := range *r.Bonuses {
			if b.Amount.IsNegative() {
				errs = append(errs, validator.ValidationError{Field: "bonuses", Message: "amounts must be non-negative"})
				break
			}
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type PayPayrollRequest struct {
	ID     string          `json:"-"`
	Amount decimal.Decimal `json:"amount"`
}

func (r *PayPayrollRequest) Validate() error {
	if r.Amount.IsNegative() {
		return validator.ValidationErrors{{Field: "amount", Message: "must be non-negative"}}
	}
	return nil
}

type PayrollFilter struct {
	PeriodMonth *int    `json:"period_month,omitempty" validate:"omitempty,min=1,max=12"`
	PeriodYear  *int    `json:"period_year,omitempty" validate:"omitempty,min=2000,max=9999"`
	Status      *string `json:"status,omitempty" validate:"omitempty,oneof=draft pending approved paid locked"`
	EmployeeID  *string `json:"employee_id,omitempty"`
	Page        int     `json:"page"`
	Limit       int     `json:"limit"`
	SortBy      string  `json:"sort_by"`
	SortOrder   string  `json:"sort_order"`
}

func (f *PayrollFilter) Validate() error {
	if errs := validator.Struct(f); len(errs) > 0 {
		return errs
	}
	return nil
}

// Normalize fills paging defaults.
func (f *PayrollFilter) Normalize() {
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 20
	}
	if f.Page <= 0 {
		f.Page = 1
	}
}

type PayrollRecordResponse struct {
	ID           string                       `json:"id"`
	EmployeeID   string                       `json:"employee_id"`
	EmployeeName string                       `json:"employee_name,omitempty"`
	EmployeeCode string                       `json:"employee_code,omitempty"`
	PeriodMonth  int                          `json:"period_month"`
	PeriodYear   int                          `json:"period_year"`
	Compensation employee.CompensationProfile `json:"compensation"`
	Attendance   AttendanceSummary            `json:"attendance"`
	Earnings     Earnings                     `json:"earnings"`
	Deductions   Deductions                   `json:"deductions"`
	Summary      Summary                      `json:"summary"`
	Status       string                       `json:"status"`
	Locked       bool                         `json:"locked"`
	Notes        *string                      `json:"notes,omitempty"`
	Revisions    []Revision                   `json:"revisions"`
	SubmittedBy  *string                      `json:"submitted_by,omitempty"`
	SubmittedAt  *string                      `json:"submitted_at,omitempty"`
	ApprovedBy   *string                      `json:"approved_by,omitempty"`
	ApprovedAt   *string                      `json:"approved_at,omitempty"`
	PaidBy       *string                      `json:"paid_by,omitempty"`
	PaidAt       *string                      `json:"paid_at,omitempty"`
	LockedBy     *string                      `json:"locked_by,omitempty"`
	LockedAt     *string                      `json:"locked_at,omitempty"`
	CreatedAt    string                       `json:"created_at,omitempty"`
	UpdatedAt    string                       `json:"updated_at,omitempty"`
}

type ListPayrollRecordResponse struct {
	Data       []PayrollRecordResponse `json:"data"`
	TotalCount int64                   `json:"total_count"`
	Page       int                     `json:"page"`
	Limit      int                     `json:"limit"`
}

type SkippedEmployee struct {
	EmployeeID string `json:"employee_id"`
	Reason     string `json:"reason"`
}

type GeneratePayrollResponse struct {
	Generated []PayrollRecordResponse `json:"generated"`
	Skipped   []SkippedEmployee       `json:"skipped"`
}

type PayrollSummaryResponse struct {
	PeriodMonth         int             `json:"period_month"`
	PeriodYear          int             `json:"period_year"`
	TotalEmployees      int             `json:"total_employees"`
	DraftCount          int             `json:"draft_count"`
	PendingCount        int             `json:"pending_count"`
	ApprovedCount       int             `json:"approved_count"`
	PaidCount           int             `json:"paid_count"`
	LockedCount         int             `json:"locked_count"`
	TotalGrossSalary    decimal.Decimal `json:"total_gross_salary"`
	TotalDeductions     decimal.Decimal `json:"total_deductions"`
	TotalNetSalary      decimal.Decimal `json:"total_net_salary"`
	TotalPaid           decimal.Decimal `json:"total_paid"`
	TotalUnpaid         decimal.Decimal `json:"total_unpaid"`
	TotalCarriedForward decimal.Decimal `json:"total_carried_forward"`
}

// ========== DEDUCTION DTOs ==========

type CreateDeductionRequest struct {
	EmployeeID  string          `json:"employee_id" validate:"required"`
	Type        string          `json:"type" validate:"required,oneof=absence late penalty loan insurance tax other"`
	Amount      decimal.Decimal `json:"amount"`
	Reason      string          `json:"reason" validate:"required,max=500"`
	PeriodMonth int             `json:"period_month" validate:"min=1,max=12"`
	PeriodYear  int             `json:"period_year" validate:"min=2000,max=9999"`
}

func (r *CreateDeductionRequest) Validate() error {
	errs := validator.Struct(r)
	if !r.Amount.IsPositive() {
		errs = append(errs, validator.ValidationError{Field: "amount", Message: "must be positive"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

type DeductionResponse struct {
	ID          string          `json:"id"`
	EmployeeID  string          `json:"employee_id"`
	Type        string          `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Reason      string          `json:"reason"`
	PeriodMonth int             `json:"period_month"`
	PeriodYear  int             `json:"period_year"`
	CreatedBy   *string         `json:"created_by,omitempty"`
	CreatedAt   string          `json:"created_at"`
}
