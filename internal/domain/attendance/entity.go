package attendance

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPresent   Status = "present"
	StatusAbsent    Status = "absent"
	StatusLate      Status = "late"
	StatusHalfDay   Status = "half_day"
	StatusLeave     Status = "leave"
	StatusWeeklyOff Status = "weekly_off"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPresent, StatusAbsent, StatusLate, StatusHalfDay, StatusLeave, StatusWeeklyOff:
		return true
	}
	return false
}

// Worked reports whether the status carries working hours.
func (s Status) Worked() bool {
	return s == StatusPresent || s == StatusLate || s == StatusHalfDay
}

// Entry is one recorded calendar day of an employee.
type Entry struct {
	ID            string
	CompanyID     string
	EmployeeID    string
	Date          time.Time
	Status        Status
	CheckIn       *time.Time
	CheckOut      *time.Time
	TotalHours    decimal.Decimal
	RegularHours  decimal.Decimal
	OvertimeHours decimal.Decimal
	LateMinutes   int
	Excused       bool
	Notes         *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// DeriveHours fills the hour fields from the check-in/check-out pair.
// Statuses without work always carry zero hours.
func (e *Entry) DeriveHours(hoursPerDay int) {
	if !e.Status.Worked() {
		e.TotalHours, e.RegularHours, e.OvertimeHours = decimal.Zero, decimal.Zero, decimal.Zero
		return
	}
	if e.CheckIn == nil || e.CheckOut == nil {
		return
	}

	worked := e.CheckOut.Sub(*e.CheckIn)
	if worked < 0 {
		worked = 0
	}
	total := decimal.NewFromFloat(worked.Hours()).Round(2)
	limit := decimal.NewFromInt(int64(hoursPerDay))

	e.TotalHours = total
	e.RegularHours = decimal.Min(total, limit)
	e.OvertimeHours = total.Sub(e.RegularHours)
}
