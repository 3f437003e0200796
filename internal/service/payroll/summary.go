package payroll

import (
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/payroll"
	"github.com/shopspring/decimal"
)

// SummarizeAttendance reduces one month of entries into counts and hour totals.
// An empty month yields the zero summary.
func SummarizeAttendance(entries []attendance.Entry) payroll.AttendanceSummary {
	s := payroll.AttendanceSummary{
		TotalHours:    decimal.Zero,
		RegularHours:  decimal.Zero,
		OvertimeHours: decimal.Zero,
	}

	for _, e := range entries {
		s.DaysRecorded++
		switch e.Status {
		case attendance.StatusPresent:
			s.Present++
		case attendance.StatusAbsent:
			s.Absent++
		case attendance.StatusLate:
			s.Late++
		case attendance.StatusHalfDay:
			s.HalfDay++
		case attendance.StatusLeave:
			s.Leave++
		case attendance.StatusWeeklyOff:
			s.WeeklyOff++
		}
		s.LateMinutes += e.LateMinutes
		s.TotalHours = s.TotalHours.Add(e.TotalHours)
		s.RegularHours = s.RegularHours.Add(e.RegularHours)
		s.OvertimeHours = s.OvertimeHours.Add(e.OvertimeHours)
	}
	s.DaysPresent = s.Present + s.Late

	return s
}
