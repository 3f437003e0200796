package payroll

import (
	"testing"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/advance"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/payroll"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectDeductions_Attendance(t *testing.T) {
	policy := payroll.DefaultPolicy()
	profile := employee.CompensationProfile{EmploymentType: employee.EmploymentTypeDaily, DailyRate: dec("96")}
	entries := []attendance.Entry{
		{Date: day(1), Status: attendance.StatusAbsent},
		{Date: day(2), Status: attendance.StatusAbsent, Excused: true},
		{Date: day(3), Status: attendance.StatusLate, LateMinutes: 30},
		{Date: day(4), Status: attendance.StatusLate, LateMinutes: 0},
		{Date: day(5), Status: attendance.StatusPresent},
	}

	d := CollectDeductions(DeductionSources{Profile: profile, Entries: entries}, policy)

	require.Len(t, d.Attendance, 2)
	assert.Equal(t, payroll.AttendanceDeductionAbsence, d.Attendance[0].Kind)
	assertDec(t, "96", d.Attendance[0].Amount)
	assert.Equal(t, day(1), *d.Attendance[0].Date)

	assert.Equal(t, payroll.AttendanceDeductionLate, d.Attendance[1].Kind)
	assert.Equal(t, 30, d.Attendance[1].LateMinutes)
	assertDec(t, "6", d.Attendance[1].Amount)
	assertDec(t, "102", d.TotalRequested)
}

func TestCollectDeductions_MonthlyDailyEquivalent(t *testing.T) {
	d := CollectDeductions(DeductionSources{
		Profile: monthlyProfile("3000"),
		Entries: []attendance.Entry{{Date: day(1), Status: attendance.StatusAbsent}},
	}, payroll.DefaultPolicy())

	require.Len(t, d.Attendance, 1)
	assertDec(t, "115.38", d.Attendance[0].Amount)
}

func TestCollectDeductions_Manual(t *testing.T) {
	d := CollectDeductions(DeductionSources{
		Manual: []payroll.Deduction{
			{ID: "d1", Type: payroll.DeductionTypePenalty, Amount: dec("25"), Reason: "late report"},
			{ID: "d2", Type: payroll.DeductionTypeLoan, Amount: dec("100"), Reason: "company loan"},
			{ID: "d3", Type: payroll.DeductionTypeAbsence, Amount: dec("50"), Reason: "ignored"},
		},
	}, payroll.DefaultPolicy())

	require.Len(t, d.Penalties, 1)
	assert.Equal(t, "d1", d.Penalties[0].DeductionID)
	require.Len(t, d.Other, 1)
	assert.Equal(t, payroll.DeductionTypeLoan, d.Other[0].Type)
	assertDec(t, "125", d.Requested(payroll.CategoryOther))
}

func TestCollectDeductions_CarriedForward(t *testing.T) {
	carried := []payroll.CarryforwardDetail{
		{Category: payroll.CategoryMandatory, RemainingToCarryforward: dec("10")},
		{Category: payroll.CategoryAttendance, RemainingToCarryforward: dec("20")},
		{Category: payroll.CategoryOther, RemainingToCarryforward: dec("30")},
		{Category: payroll.CategoryAdvance, AdvanceID: "gone", RemainingToCarryforward: dec("40")},
	}

	d := CollectDeductions(DeductionSources{CarriedForward: carried}, payroll.DefaultPolicy())

	require.Len(t, d.Mandatory, 1)
	assert.True(t, d.Mandatory[0].CarriedForward)
	assert.Equal(t, payroll.MandatoryCarriedForward, d.Mandatory[0].Kind)
	require.Len(t, d.Attendance, 1)
	assert.Equal(t, payroll.AttendanceDeductionCarriedForward, d.Attendance[0].Kind)
	require.Len(t, d.Other, 1)
	assert.True(t, d.Other[0].CarriedForward)
	assert.Empty(t, d.Advances, "carried lines of advances that are no longer active are dropped")
	assertDec(t, "60", d.TotalRequested)
}

func TestCollectDeductions_Advances(t *testing.T) {
	t.Run("skips inactive advances", func(t *testing.T) {
		pending := activeAdvance("adv-p", "500", "100")
		pending.Status = advance.StatusPending
		done := activeAdvance("adv-d", "0", "100")

		d := CollectDeductions(DeductionSources{Advances: []advance.Advance{pending, done, activeAdvance("adv-1", "500", "100")}}, payroll.DefaultPolicy())

		require.Len(t, d.Advances, 1)
		assert.Equal(t, "adv-1", d.Advances[0].AdvanceID)
		assertDec(t, "100", d.Advances[0].Amount)
	})

	t.Run("caps the installment by the remaining balance", func(t *testing.T) {
		adv := activeAdvance("adv-1", "500", "200")
		adv.RemainingAmount = dec("150")

		d := CollectDeductions(DeductionSources{Advances: []advance.Advance{adv}}, payroll.DefaultPolicy())

		require.Len(t, d.Advances, 1)
		assertDec(t, "150", d.Advances[0].Amount)
	})

	t.Run("carried remainder shares the remaining balance", func(t *testing.T) {
		adv := activeAdvance("adv-1", "1000", "400")
		adv.RemainingAmount = dec("500")
		carried := []payroll.CarryforwardDetail{
			{Category: payroll.CategoryAdvance, AdvanceID: "adv-1", RemainingToCarryforward: dec("300")},
		}

		d := CollectDeductions(DeductionSources{Advances: []advance.Advance{adv}, CarriedForward: carried}, payroll.DefaultPolicy())

		require.Len(t, d.Advances, 2)
		assert.False(t, d.Advances[0].CarriedForward)
		assertDec(t, "200", d.Advances[0].Amount)
		assert.True(t, d.Advances[1].CarriedForward)
		assertDec(t, "300", d.Advances[1].Amount)
		assertDec(t, "500", d.AdvancesTotal())
	})
}

func TestReserveUnpaid(t *testing.T) {
	advances := []advance.Advance{activeAdvance("adv-1", "3000", "2000"), activeAdvance("adv-2", "500", "500")}
	unpaid := []payroll.PayrollRecord{
		{
			PeriodMonth: 1, PeriodYear: 2025,
			Deductions: payroll.Deductions{Advances: []payroll.AdvanceDeductionLine{
				{AdvanceID: "adv-1", Amount: dec("2000"), Applied: dec("1500")},
				{AdvanceID: "adv-2", Amount: dec("500"), Applied: dec("700")},
			}},
		},
		{
			PeriodMonth: 2, PeriodYear: 2025,
			Deductions: payroll.Deductions{Advances: []payroll.AdvanceDeductionLine{
				{AdvanceID: "adv-1", Amount: dec("2000"), Applied: dec("2000")},
			}},
		},
	}

	reserved := ReserveUnpaid(advances, unpaid, 2, 2025)

	require.Len(t, reserved, 2)
	assertDec(t, "1500", reserved[0].RemainingAmount, "the period being calculated holds nothing back")
	assertDec(t, "0", reserved[1].RemainingAmount, "never below zero")
	assert.False(t, reserved[1].IsActive())
	assertDec(t, "3000", advances[0].RemainingAmount, "input is left untouched")

	d := CollectDeductions(DeductionSources{Advances: reserved}, payroll.DefaultPolicy())
	require.Len(t, d.Advances, 1)
	assertDec(t, "1500", d.Advances[0].Amount)
}
