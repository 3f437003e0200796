package payroll

import (
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/advance"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/payroll"
	"github.com/shopspring/decimal"
)

// DeductionSources is everything that can request a deduction for one month.
type DeductionSources struct {
	Profile        employee.CompensationProfile
	Earnings       payroll.Earnings
	Entries        []attendance.Entry
	Advances       []advance.Advance
	Manual         []payroll.Deduction
	CarriedForward []payroll.CarryforwardDetail // previous period's unapplied remainders
}

// CollectDeductions builds the requested deduction lines per tier. Nothing is
// applied yet; Allocate decides what the gross can cover.
func CollectDeductions(src DeductionSources, policy payroll.Policy) payroll.Deductions {
	d := payroll.Deductions{
		Mandatory:  mandatoryLines(src.Earnings, policy.InsuranceRate, policy.TaxRate, policy),
		Attendance: attendanceLines(src.Profile, src.Entries, policy),
		Advances:   advanceLines(src.Advances, src.CarriedForward),
		Penalties:  []payroll.ManualDeductionLine{},
		Other:      []payroll.ManualDeductionLine{},
		Tiers:      []payroll.TierAllocation{},
	}

	for _, m := range src.Manual {
		if !m.Type.IsManual() || !m.Amount.IsPositive() {
			continue
		}
		line := payroll.ManualDeductionLine{
			DeductionID: m.ID,
			Type:        m.Type,
			Reason:      m.Reason,
			Amount:      policy.Round(m.Amount),
		}
		if m.Type == payroll.DeductionTypePenalty {
			d.Penalties = append(d.Penalties, line)
		} else {
			d.Other = append(d.Other, line)
		}
	}

	for _, cf := range src.CarriedForward {
		if !cf.RemainingToCarryforward.IsPositive() {
			continue
		}
		switch cf.Category {
		case payroll.CategoryMandatory:
			d.Mandatory = append(d.Mandatory, payroll.MandatoryLine{
				Kind:           payroll.MandatoryCarriedForward,
				Base:           decimal.Zero,
				Rate:           decimal.Zero,
				Amount:         cf.RemainingToCarryforward,
				CarriedForward: true,
			})
		case payroll.CategoryAttendance:
			d.Attendance = append(d.Attendance, payroll.AttendanceDeductionLine{
				Kind:           payroll.AttendanceDeductionCarriedForward,
				Amount:         cf.RemainingToCarryforward,
				CarriedForward: true,
			})
		case payroll.CategoryOther:
			d.Other = append(d.Other, payroll.ManualDeductionLine{
				Type:           payroll.DeductionTypeOther,
				Reason:         "carried forward from previous period",
				Amount:         cf.RemainingToCarryforward,
				CarriedForward: true,
			})
		}
	}

	d.TotalRequested = decimal.Zero
	for _, category := range payroll.TierOrder {
		d.TotalRequested = d.TotalRequested.Add(d.Requested(category))
	}
	d.TotalApplied = decimal.Zero
	return d
}

// mandatoryLines computes insurance on basic and tax on gross. A line only
// exists when its base is positive.
func mandatoryLines(earnings payroll.Earnings, insuranceRate, taxRate decimal.Decimal, policy payroll.Policy) []payroll.MandatoryLine {
	lines := []payroll.MandatoryLine{}
	if earnings.Basic.IsPositive() {
		lines = append(lines, payroll.MandatoryLine{
			Kind:   payroll.MandatoryInsurance,
			Base:   earnings.Basic,
			Rate:   insuranceRate,
			Amount: policy.Round(earnings.Basic.Mul(insuranceRate)),
		})
	}
	if earnings.Gross.IsPositive() {
		lines = append(lines, payroll.MandatoryLine{
			Kind:   payroll.MandatoryTax,
			Base:   earnings.Gross,
			Rate:   taxRate,
			Amount: policy.Round(earnings.Gross.Mul(taxRate)),
		})
	}
	return lines
}

// DailyEquivalent is the value of one working day for absence and lateness.
func DailyEquivalent(profile employee.CompensationProfile, policy payroll.Policy) decimal.Decimal {
	switch profile.EmploymentType {
	case employee.EmploymentTypeDaily:
		return profile.DailyRate
	case employee.EmploymentTypeMonthly:
		return profile.MonthlyRate.Div(policy.WorkingDays())
	}
	return decimal.Zero
}

func attendanceLines(profile employee.CompensationProfile, entries []attendance.Entry, policy payroll.Policy) []payroll.AttendanceDeductionLine {
	lines := []payroll.AttendanceDeductionLine{}
	daily := DailyEquivalent(profile, policy)
	if !daily.IsPositive() {
		return lines
	}
	perMinute := daily.Div(policy.MinutesPerDay())

	for _, e := range entries {
		if e.Excused {
			continue
		}
		date := e.Date
		switch {
		case e.Status == attendance.StatusAbsent:
			amount := policy.Round(daily)
			if amount.IsPositive() {
				lines = append(lines, payroll.AttendanceDeductionLine{
					Kind:   payroll.AttendanceDeductionAbsence,
					Date:   &date,
					Amount: amount,
				})
			}
		case e.Status == attendance.StatusLate && e.LateMinutes > 0:
			amount := policy.Round(perMinute.Mul(decimal.NewFromInt(int64(e.LateMinutes))))
			if amount.IsPositive() {
				lines = append(lines, payroll.AttendanceDeductionLine{
					Kind:        payroll.AttendanceDeductionLate,
					Date:        &date,
					LateMinutes: e.LateMinutes,
					Amount:      amount,
				})
			}
		}
	}
	return lines
}

// ReserveUnpaid lowers each advance's remaining balance by what unpaid records
// of other periods already applied to it, so a later month never claims money
// an earlier month will recover once it is paid.
func ReserveUnpaid(advances []advance.Advance, unpaid []payroll.PayrollRecord, month, year int) []advance.Advance {
	reserved := make(map[string]decimal.Decimal)
	for _, rec := range unpaid {
		if rec.PeriodMonth == month && rec.PeriodYear == year {
			continue
		}
		for advanceID, amount := range rec.AdvanceApplied() {
			reserved[advanceID] = reserved[advanceID].Add(amount)
		}
	}

	out := make([]advance.Advance, len(advances))
	for i, a := range advances {
		if held, ok := reserved[a.ID]; ok {
			a.RemainingAmount = decimal.Max(a.RemainingAmount.Sub(held), decimal.Zero)
		}
		out[i] = a
	}
	return out
}

// advanceLines emits one regular installment per active advance, followed by
// one line per carried remainder. Every advance is capped by its remaining
// balance across all of its lines.
func advanceLines(advances []advance.Advance, carried []payroll.CarryforwardDetail) []payroll.AdvanceDeductionLine {
	active := make(map[string]advance.Advance, len(advances))
	for _, a := range advances {
		if a.IsActive() {
			active[a.ID] = a
		}
	}

	claimed := make(map[string]decimal.Decimal)
	carriedLines := []payroll.AdvanceDeductionLine{}
	for _, cf := range carried {
		if cf.Category != payroll.CategoryAdvance || !cf.RemainingToCarryforward.IsPositive() {
			continue
		}
		a, ok := active[cf.AdvanceID]
		if !ok {
			continue
		}
		available := a.RemainingAmount.Sub(claimed[a.ID])
		amount := decimal.Min(cf.RemainingToCarryforward, available)
		if !amount.IsPositive() {
			continue
		}
		claimed[a.ID] = claimed[a.ID].Add(amount)
		carriedLines = append(carriedLines, payroll.AdvanceDeductionLine{
			AdvanceID:      a.ID,
			Amount:         amount,
			Applied:        decimal.Zero,
			CarriedForward: true,
		})
	}

	lines := []payroll.AdvanceDeductionLine{}
	for _, a := range advances {
		if !a.IsActive() {
			continue
		}
		amount := decimal.Min(a.RepaymentPlan.AmountPerMonth, a.RemainingAmount.Sub(claimed[a.ID]))
		if !amount.IsPositive() {
			continue
		}
		lines = append(lines, payroll.AdvanceDeductionLine{
			AdvanceID: a.ID,
			Amount:    amount,
			Applied:   decimal.Zero,
		})
	}
	return append(lines, carriedLines...)
}

func carriedTotal(details []payroll.CarryforwardDetail) decimal.Decimal {
	total := decimal.Zero
	for _, cf := range details {
		total = total.Add(cf.RemainingToCarryforward)
	}
	return total
}
