package payroll

import (
	"testing"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/payroll"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func workedDay(d int, status attendance.Status, regular, overtime string, lateMinutes int) attendance.Entry {
	return attendance.Entry{
		Date:          day(d),
		Status:        status,
		TotalHours:    dec(regular).Add(dec(overtime)),
		RegularHours:  dec(regular),
		OvertimeHours: dec(overtime),
		LateMinutes:   lateMinutes,
	}
}

func TestSummarizeAttendance(t *testing.T) {
	entries := []attendance.Entry{
		workedDay(1, attendance.StatusPresent, "8", "2", 0),
		workedDay(2, attendance.StatusLate, "7.5", "0", 30),
		workedDay(3, attendance.StatusHalfDay, "4", "0", 0),
		{Date: day(4), Status: attendance.StatusAbsent},
		{Date: day(5), Status: attendance.StatusLeave},
		{Date: day(6), Status: attendance.StatusWeeklyOff},
	}

	s := SummarizeAttendance(entries)

	assert.Equal(t, 6, s.DaysRecorded)
	assert.Equal(t, 2, s.DaysPresent)
	assert.Equal(t, 1, s.Present)
	assert.Equal(t, 1, s.Late)
	assert.Equal(t, 1, s.HalfDay)
	assert.Equal(t, 1, s.Absent)
	assert.Equal(t, 1, s.Leave)
	assert.Equal(t, 1, s.WeeklyOff)
	assert.Equal(t, 30, s.LateMinutes)
	assertDec(t, "21.5", s.TotalHours)
	assertDec(t, "19.5", s.RegularHours)
	assertDec(t, "2", s.OvertimeHours)

	empty := SummarizeAttendance(nil)
	assert.Zero(t, empty.DaysRecorded)
	assertDec(t, "0", empty.TotalHours)
}

func TestCalculateEarnings(t *testing.T) {
	policy := payroll.DefaultPolicy()
	entries := []attendance.Entry{
		workedDay(1, attendance.StatusPresent, "8", "2", 0),
		workedDay(2, attendance.StatusPresent, "8", "0", 0),
		workedDay(3, attendance.StatusLate, "8", "0", 15),
		{Date: day(4), Status: attendance.StatusAbsent},
	}
	summary := SummarizeAttendance(entries)

	t.Run("monthly is flat and pays overtime on the derived hourly rate", func(t *testing.T) {
		profile := monthlyProfile("2600")
		profile.Allowances = employee.Allowances{Transport: dec("100"), Housing: dec("250")}

		e := CalculateEarnings(profile, summary, entries, policy)

		assertDec(t, "2600", e.Basic)
		require.Len(t, e.Allowances, 2)
		assert.Equal(t, payroll.AllowanceTransport, e.Allowances[0].Kind)
		assert.Equal(t, payroll.AllowanceHousing, e.Allowances[1].Kind)
		assertDec(t, "350", e.AllowancesTotal)
		assertDec(t, "0", e.Allowance(payroll.AllowanceFood))

		assertDec(t, "18.75", e.Overtime.Rate)
		assertDec(t, "37.5", e.Overtime.Amount)
		require.Len(t, e.Overtime.Lines, 1)
		assert.Equal(t, day(1), e.Overtime.Lines[0].Date)

		assertDec(t, "0", e.Commission)
		assertDec(t, "0", e.Tips)
		assert.Empty(t, e.Bonuses)
		assertDec(t, "2987.5", e.Gross)
	})

	t.Run("daily pays per present day", func(t *testing.T) {
		profile := employee.CompensationProfile{EmploymentType: employee.EmploymentTypeDaily, DailyRate: dec("100"), OvertimeMultiplier: dec("2")}

		e := CalculateEarnings(profile, summary, entries, policy)

		assertDec(t, "300", e.Basic)
		assertDec(t, "25", e.Overtime.Rate)
		assertDec(t, "50", e.Overtime.Amount)
		assertDec(t, "350", e.Gross)
	})

	t.Run("hourly pays regular hours", func(t *testing.T) {
		profile := employee.CompensationProfile{EmploymentType: employee.EmploymentTypeHourly, HourlyRate: dec("20")}

		e := CalculateEarnings(profile, summary, entries, policy)

		assertDec(t, "480", e.Basic)
		assertDec(t, "30", e.Overtime.Rate)
		assertDec(t, "60", e.Overtime.Amount)
		assertDec(t, "540", e.Gross)
	})

	t.Run("no overtime leaves an empty breakdown", func(t *testing.T) {
		e := CalculateEarnings(monthlyProfile("2600"), payroll.AttendanceSummary{OvertimeHours: decimal.Zero}, nil, policy)

		assertDec(t, "0", e.Overtime.Amount)
		assert.Empty(t, e.Overtime.Lines)
		assertDec(t, "2600", e.Gross)
	})
}

func TestOvertimeRate_UnknownType(t *testing.T) {
	rate := OvertimeRate(employee.CompensationProfile{EmploymentType: "weekly"}, payroll.DefaultPolicy())
	assertDec(t, "0", rate)
}
