package employee

import (
	"time"

	"github.com/shopspring/decimal"
)

type Employee struct {
	ID               string
	CompanyID        string
	EmployeeCode     string
	FullName         string
	EmploymentStatus EmploymentStatus
	Compensation     CompensationProfile
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type EmploymentStatus string

const (
	EmploymentStatusActive     EmploymentStatus = "active"
	EmploymentStatusResigned   EmploymentStatus = "resigned"
	EmploymentStatusTerminated EmploymentStatus = "terminated"
)

// EmploymentType decides how basic pay is computed.
type EmploymentType string

const (
	EmploymentTypeMonthly EmploymentType = "monthly"
	EmploymentTypeDaily   EmploymentType = "daily"
	EmploymentTypeHourly  EmploymentType = "hourly"
)

func (t EmploymentType) IsValid() bool {
	switch t {
	case EmploymentTypeMonthly, EmploymentTypeDaily, EmploymentTypeHourly:
		return true
	}
	return false
}

// CompensationProfile is the pay setup of an employee.
type CompensationProfile struct {
	EmploymentType     EmploymentType  `json:"employment_type"`
	MonthlyRate        decimal.Decimal `json:"monthly_rate"`
	DailyRate          decimal.Decimal `json:"daily_rate"`
	HourlyRate         decimal.Decimal `json:"hourly_rate"`
	OvertimeMultiplier decimal.Decimal `json:"overtime_multiplier"` // zero falls back to the policy default
	Allowances         Allowances      `json:"allowances"`
	Commission         Commission      `json:"commission"`
}

type Allowances struct {
	Transport decimal.Decimal `json:"transport"`
	Food      decimal.Decimal `json:"food"`
	Housing   decimal.Decimal `json:"housing"`
}

// Commission settings are stored with the profile. Payroll does not compute commission from them.
type Commission struct {
	Rate    decimal.Decimal `json:"rate"`
	Target  decimal.Decimal `json:"target"`
	Enabled bool            `json:"enabled"`
}

func (e Employee) IsActive() bool {
	return e.EmploymentStatus == EmploymentStatusActive
}
