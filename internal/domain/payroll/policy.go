package payroll

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Policy carries the rates and calendar constants used by the calculation.
type Policy struct {
	InsuranceRate             decimal.Decimal
	TaxRate                   decimal.Decimal
	DefaultOvertimeMultiplier decimal.Decimal
	WorkingDaysPerMonth       int
	HoursPerDay               int
	CurrencyScale             int32
}

func DefaultPolicy() Policy {
	return Policy{
		InsuranceRate:             decimal.RequireFromString("0.11"),
		TaxRate:                   decimal.RequireFromString("0.025"),
		DefaultOvertimeMultiplier: decimal.RequireFromString("1.5"),
		WorkingDaysPerMonth:       26,
		HoursPerDay:               8,
		CurrencyScale:             2,
	}
}

func (p Policy) Validate() error {
	if p.InsuranceRate.IsNegative() || p.InsuranceRate.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("insurance rate must be between 0 and 1, got %s", p.InsuranceRate)
	}
	if p.TaxRate.IsNegative() || p.TaxRate.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("tax rate must be between 0 and 1, got %s", p.TaxRate)
	}
	if !p.DefaultOvertimeMultiplier.IsPositive() {
		return fmt.Errorf("default overtime multiplier must be positive, got %s", p.DefaultOvertimeMultiplier)
	}
	if p.WorkingDaysPerMonth <= 0 {
		return fmt.Errorf("working days per month must be positive, got %d", p.WorkingDaysPerMonth)
	}
	if p.HoursPerDay <= 0 || p.HoursPerDay > 24 {
		return fmt.Errorf("hours per day must be between 1 and 24, got %d", p.HoursPerDay)
	}
	if p.CurrencyScale < 0 || p.CurrencyScale > 8 {
		return fmt.Errorf("currency scale must be between 0 and 8, got %d", p.CurrencyScale)
	}
	return nil
}

// Round rounds a money amount to the currency scale.
func (p Policy) Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(p.CurrencyScale)
}

func (p Policy) WorkingDays() decimal.Decimal {
	return decimal.NewFromInt(int64(p.WorkingDaysPerMonth))
}

func (p Policy) Hours() decimal.Decimal {
	return decimal.NewFromInt(int64(p.HoursPerDay))
}

// MinutesPerDay is the late-deduction divisor: 480 for an 8-hour day.
func (p Policy) MinutesPerDay() decimal.Decimal {
	return decimal.NewFromInt(int64(p.HoursPerDay * 60))
}
