package employee

import (
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type CompensationRequest struct {
	EmploymentType     string          `json:"employment_type" validate:"required,oneof=monthly daily hourly"`
	MonthlyRate        decimal.Decimal `json:"monthly_rate"`
	DailyRate          decimal.Decimal `json:"daily_rate"`
	HourlyRate         decimal.Decimal `json:"hourly_rate"`
	OvertimeMultiplier decimal.Decimal `json:"overtime_multiplier"`
	Allowances         Allowances      `json:"allowances"`
	Commission         Commission      `json:"commission"`
}

func (r CompensationRequest) ToProfile() CompensationProfile {
	return CompensationProfile{
		EmploymentType:     EmploymentType(r.EmploymentType),
		MonthlyRate:        r.MonthlyRate,
		DailyRate:          r.DailyRate,
		HourlyRate:         r.HourlyRate,
		OvertimeMultiplier: r.OvertimeMultiplier,
		Allowances:         r.Allowances,
		Commission:         r.Commission,
	}
}

// validateAmounts checks the decimal fields the tag validator cannot see.
func (r CompensationRequest) validateAmounts(prefix string) validator.ValidationErrors {
	var errs validator.ValidationErrors

	nonNegative := map[string]decimal.Decimal{
		"monthly_rate":         r.MonthlyRate,
		"daily_rate":           r.DailyRate,
		"hourly_rate":          r.HourlyRate,
		"overtime_multiplier":  r.OvertimeMultiplier,
		"allowances.transport": r.Allowances.Transport,
		"allowances.food":      r.Allowances.Food,
		"allowances.housing":   r.Allowances.Housing,
		"commission.rate":      r.Commission.Rate,
		"commission.target":    r.Commission.Target,
	}
	for field, value := range nonNegative {
		if value.IsNegative() {
			errs = append(errs, validator.ValidationError{Field: prefix + field, Message: "must be non-negative"})
		}
	}

	switch EmploymentType(r.EmploymentType) {
	case EmploymentTypeMonthly:
		if !r.MonthlyRate.IsPositive() {
			errs = append(errs, validator.ValidationError{Field: prefix + "monthly_rate", Message: "must be positive for monthly employees"})
		}
	case EmploymentTypeDaily:
		if !r.DailyRate.IsPositive() {
			errs = append(errs, validator.ValidationError{Field: prefix + "daily_rate", Message: "must be positive for daily employees"})
		}
	case EmploymentTypeHourly:
		if !r.HourlyRate.IsPositive() {
			errs = append(errs, validator.ValidationError{Field: prefix + "hourly_rate", Message: "must be positive for hourly employees"})
		}
	}
	return errs
}

type CreateEmployeeRequest struct {
	EmployeeCode string              `json:"employee_code" validate:"required,max=32"`
	FullName     string              `json:"full_name" validate:"required,max=150"`
	Compensation CompensationRequest `json:"compensation"`
}

func (r *CreateEmployeeRequest) Validate() error {
	errs := validator.Struct(r)
	errs = validator.Append(errs, r.Compensation.validateAmounts("compensation.")...)
	if len(errs) > 0 {
		return errs
	}
	return nil
}

type UpdateCompensationRequest struct {
	ID           string              `json:"-"`
	Compensation CompensationRequest `json:"compensation"`
}

func (r *UpdateCompensationRequest) Validate() error {
	errs := validator.Struct(r)
	if validator.IsEmpty(r.ID) {
		errs = append(errs, validator.ValidationError{Field: "id", Message: "is required"})
	}
	errs = validator.Append(errs, r.Compensation.validateAmounts("compensation.")...)
	if len(errs) > 0 {
		return errs
	}
	return nil
}

type EmployeeResponse struct {
	ID               string              `json:"id"`
	CompanyID        string              `json:"company_id"`
	EmployeeCode     string              `json:"employee_code"`
	FullName         string              `json:"full_name"`
	EmploymentStatus string              `json:"employment_status"`
	Compensation     CompensationProfile `json:"compensation"`
	CreatedAt        string              `json:"created_at"`
	UpdatedAt        string              `json:"updated_at"`
}
