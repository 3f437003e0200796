package attendance

import (
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type RecordAttendanceRequest struct {
	EmployeeID    string           `json:"employee_id" validate:"required"`
	Date          string           `json:"date" validate:"required,datetime=2006-01-02"`
	Status        string           `json:"status" validate:"required,oneof=present absent late half_day leave weekly_off"`
	CheckIn       *string          `json:"check_in,omitempty"`
	CheckOut      *string          `json:"check_out,omitempty"`
	RegularHours  *decimal.Decimal `json:"regular_hours,omitempty"`
	OvertimeHours *decimal.Decimal `json:"overtime_hours,omitempty"`
	LateMinutes   int              `json:"late_minutes" validate:"min=0"`
	Excused       bool             `json:"excused"`
	Notes         *string          `json:"notes,omitempty"`

	// Parsed by Validate
	ParsedDate     time.Time  `json:"-"`
	ParsedCheckIn  *time.Time `json:"-"`
	ParsedCheckOut *time.Time `json:"-"`
}

func (r *RecordAttendanceRequest) Validate() error {
	errs := validator.Struct(r)

	if d, ok := validator.IsValidDate(r.Date); ok {
		r.ParsedDate = d
	}
	if r.CheckIn != nil {
		t, ok := validator.IsValidDateTime(*r.CheckIn)
		if !ok {
			errs = append(errs, validator.ValidationError{Field: "check_in", Message: "must be an RFC3339 timestamp"})
		} else {
			r.ParsedCheckIn = &t
		}
	}
	if r.CheckOut != nil {
		t, ok := validator.IsValidDateTime(*r.CheckOut)
		if !ok {
			errs = append(errs, validator.ValidationError{Field: "check_out", Message: "must be an RFC3339 timestamp"})
		} else {
			r.ParsedCheckOut = &t
		}
	}
	if r.ParsedCheckIn != nil && r.ParsedCheckOut != nil && !r.ParsedCheckOut.After(*r.ParsedCheckIn) {
		errs = append(errs, validator.ValidationError{Field: "check_out", Message: "must be after check_in"})
	}
	if r.RegularHours != nil && r.RegularHours.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "regular_hours", Message: "must be non-negative"})
	}
	if r.OvertimeHours != nil && r.OvertimeHours.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "overtime_hours", Message: "must be non-negative"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ListAttendanceRequest struct {
	EmployeeID  string `json:"employee_id" validate:"required"`
	PeriodMonth int    `json:"period_month" validate:"min=1,max=12"`
	PeriodYear  int    `json:"period_year" validate:"min=2000,max=9999"`
}

func (r *ListAttendanceRequest) Validate() error {
	if errs := validator.Struct(r); len(errs) > 0 {
		return errs
	}
	return nil
}

type AttendanceResponse struct {
	ID            string          `json:"id"`
	EmployeeID    string          `json:"employee_id"`
	Date          string          `json:"date"`
	Status        string          `json:"status"`
	CheckIn       *string         `json:"check_in,omitempty"`
	CheckOut      *string         `json:"check_out,omitempty"`
	TotalHours    decimal.Decimal `json:"total_hours"`
	RegularHours  decimal.Decimal `json:"regular_hours"`
	OvertimeHours decimal.Decimal `json:"overtime_hours"`
	LateMinutes   int             `json:"late_minutes"`
	Excused       bool            `json:"excused"`
	Notes         *string         `json:"notes,omitempty"`
}
