package payroll

import (
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/payroll"
	"github.com/shopspring/decimal"
)

// CalculateEarnings builds the gross breakdown from the profile and the month's attendance.
// Monthly basic is the flat rate whatever the attendance. Commission, bonuses and tips
// start at zero and are only set through record edits.
func CalculateEarnings(profile employee.CompensationProfile, summary payroll.AttendanceSummary, entries []attendance.Entry, policy payroll.Policy) payroll.Earnings {
	e := payroll.Earnings{
		EmploymentType: profile.EmploymentType,
		Basic:          decimal.Zero,
		Allowances:     []payroll.AllowanceLine{},
		Overtime:       payroll.Overtime{Rate: decimal.Zero, Hours: decimal.Zero, Amount: decimal.Zero, Lines: []payroll.OvertimeLine{}},
		Commission:     decimal.Zero,
		Bonuses:        []payroll.BonusLine{},
		Tips:           decimal.Zero,
	}

	switch profile.EmploymentType {
	case employee.EmploymentTypeMonthly:
		e.Basic = policy.Round(profile.MonthlyRate)
	case employee.EmploymentTypeDaily:
		e.Basic = policy.Round(profile.DailyRate.Mul(decimal.NewFromInt(int64(summary.DaysPresent))))
	case employee.EmploymentTypeHourly:
		e.Basic = policy.Round(profile.HourlyRate.Mul(summary.RegularHours))
	}

	for _, a := range []payroll.AllowanceLine{
		{Kind: payroll.AllowanceTransport, Amount: profile.Allowances.Transport},
		{Kind: payroll.AllowanceFood, Amount: profile.Allowances.Food},
		{Kind: payroll.AllowanceHousing, Amount: profile.Allowances.Housing},
	} {
		if a.Amount.IsPositive() {
			a.Amount = policy.Round(a.Amount)
			e.Allowances = append(e.Allowances, a)
		}
	}

	if summary.OvertimeHours.IsPositive() {
		rate := OvertimeRate(profile, policy)
		e.Overtime.Rate = rate.Round(policy.CurrencyScale + 2)
		e.Overtime.Hours = summary.OvertimeHours
		e.Overtime.Amount = policy.Round(rate.Mul(summary.OvertimeHours))
		for _, entry := range entries {
			if !entry.OvertimeHours.IsPositive() {
				continue
			}
			e.Overtime.Lines = append(e.Overtime.Lines, payroll.OvertimeLine{
				Date:   entry.Date,
				Hours:  entry.OvertimeHours,
				Amount: policy.Round(rate.Mul(entry.OvertimeHours)),
			})
		}
	}

	return totalEarnings(e)
}

// OvertimeRate is the hourly overtime rate for the employment type.
func OvertimeRate(profile employee.CompensationProfile, policy payroll.Policy) decimal.Decimal {
	multiplier := profile.OvertimeMultiplier
	if !multiplier.IsPositive() {
		multiplier = policy.DefaultOvertimeMultiplier
	}

	var hourly decimal.Decimal
	switch profile.EmploymentType {
	case employee.EmploymentTypeHourly:
		hourly = profile.HourlyRate
	case employee.EmploymentTypeDaily:
		hourly = profile.DailyRate.Div(policy.Hours())
	case employee.EmploymentTypeMonthly:
		hourly = profile.MonthlyRate.Div(policy.WorkingDays()).Div(policy.Hours())
	default:
		return decimal.Zero
	}
	return hourly.Mul(multiplier)
}

// totalEarnings recomputes the subtotals and gross from the line items.
func totalEarnings(e payroll.Earnings) payroll.Earnings {
	e.AllowancesTotal = decimal.Zero
	for _, a := range e.Allowances {
		e.AllowancesTotal = e.AllowancesTotal.Add(a.Amount)
	}
	e.BonusesTotal = decimal.Zero
	for _, b := range e.Bonuses {
		e.BonusesTotal = e.BonusesTotal.Add(b.Amount)
	}

	e.Gross = e.Basic.
		Add(e.AllowancesTotal).
		Add(e.Overtime.Amount).
		Add(e.Commission).
		Add(e.BonusesTotal).
		Add(e.Tips)
	return e
}
