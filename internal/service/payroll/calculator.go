package payroll

import (
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/advance"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/payroll"
	"github.com/shopspring/decimal"
)

// CalculationInput is the full, already-loaded input for one employee and period.
type CalculationInput struct {
	EmployeeID     string
	PeriodMonth    int
	PeriodYear     int
	Profile        employee.CompensationProfile
	Attendance     []attendance.Entry
	Advances       []advance.Advance
	Deductions     []payroll.Deduction
	CarriedForward []payroll.CarryforwardDetail
}

// Calculator is the pure payroll engine. It performs no I/O, so the same input
// always yields the same calculation.
type Calculator struct {
	policy payroll.Policy
}

func NewCalculator(policy payroll.Policy) *Calculator {
	return &Calculator{policy: policy}
}

func (c *Calculator) Policy() payroll.Policy {
	return c.policy
}

// Calculate runs attendance summary, earnings, deduction collection and the
// allocation cascade for one employee-month.
func (c *Calculator) Calculate(in CalculationInput) (payroll.Calculation, error) {
	if in.PeriodMonth < 1 || in.PeriodMonth > 12 || in.PeriodYear < 1 {
		return payroll.Calculation{}, payroll.ErrInvalidPeriod
	}
	if !in.Profile.EmploymentType.IsValid() {
		return payroll.Calculation{}, employee.ErrInvalidEmploymentType
	}

	summary := SummarizeAttendance(in.Attendance)
	earnings := CalculateEarnings(in.Profile, summary, in.Attendance, c.policy)
	deductions := CollectDeductions(DeductionSources{
		Profile:        in.Profile,
		Earnings:       earnings,
		Entries:        in.Attendance,
		Advances:       in.Advances,
		Manual:         in.Deductions,
		CarriedForward: in.CarriedForward,
	}, c.policy)

	totals, err := c.settle(earnings, &deductions)
	if err != nil {
		return payroll.Calculation{}, err
	}
	totals.CarriedForwardFromPrevious = carriedTotal(in.CarriedForward)
	totals.PaidAmount = decimal.Zero
	totals.UnpaidBalance = totals.NetSalary

	return payroll.Calculation{
		EmployeeID:   in.EmployeeID,
		PeriodMonth:  in.PeriodMonth,
		PeriodYear:   in.PeriodYear,
		Compensation: in.Profile,
		Attendance:   summary,
		Earnings:     earnings,
		Deductions:   deductions,
		Summary:      totals,
	}, nil
}

// Reassess recomputes a record after its earnings were edited. Mandatory
// lines follow the new basic and gross with the rates stored on the record;
// all other requested lines are kept and the cascade runs again. The amount
// already paid is preserved; callers reject results whose net falls below it.
func (c *Calculator) Reassess(earnings payroll.Earnings, deductions payroll.Deductions, previous payroll.Summary) (payroll.Earnings, payroll.Deductions, payroll.Summary, error) {
	earnings = totalEarnings(earnings)

	insuranceRate, taxRate := c.policy.InsuranceRate, c.policy.TaxRate
	carried := []payroll.MandatoryLine{}
	for _, line := range deductions.Mandatory {
		switch line.Kind {
		case payroll.MandatoryInsurance:
			insuranceRate = line.Rate
		case payroll.MandatoryTax:
			taxRate = line.Rate
		case payroll.MandatoryCarriedForward:
			carried = append(carried, line)
		}
	}

	d := deductions
	d.Mandatory = append(mandatoryLines(earnings, insuranceRate, taxRate, c.policy), carried...)
	d.Advances = make([]payroll.AdvanceDeductionLine, len(deductions.Advances))
	copy(d.Advances, deductions.Advances)

	totals, err := c.settle(earnings, &d)
	if err != nil {
		return payroll.Earnings{}, payroll.Deductions{}, payroll.Summary{}, err
	}
	totals.CarriedForwardFromPrevious = previous.CarriedForwardFromPrevious
	totals.PaidAmount = previous.PaidAmount
	totals.UnpaidBalance = totals.NetSalary.Sub(previous.PaidAmount)

	return earnings, d, totals, nil
}

func (c *Calculator) settle(earnings payroll.Earnings, d *payroll.Deductions) (payroll.Summary, error) {
	alloc, err := Allocate(earnings.Gross, *d, c.policy.CurrencyScale)
	if err != nil {
		return payroll.Summary{}, err
	}
	alloc.apply(d)

	return payroll.Summary{
		GrossSalary:              earnings.Gross,
		TotalDeductions:          alloc.Applied,
		TotalDeductionsRequested: alloc.Requested,
		NetSalary:                earnings.Gross.Sub(alloc.Applied),
		CarriedForwardToNext:     alloc.Carried,
		CarryforwardDetails:      alloc.Details,
	}, nil
}
