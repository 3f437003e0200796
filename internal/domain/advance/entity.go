package advance

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusPaid      Status = "paid" // disbursed to the employee
	StatusCompleted Status = "completed"
)

type RepaymentPlan struct {
	InstallmentCount int             `json:"installment_count"`
	AmountPerMonth   decimal.Decimal `json:"amount_per_month"`
}

// DeductionEntry is one month in which part of the advance was recovered through payroll.
type DeductionEntry struct {
	Month           int             `json:"month"`
	Year            int             `json:"year"`
	Amount          decimal.Decimal `json:"amount"`
	PayrollRecordID string          `json:"payroll_record_id"`
	DeductedAt      time.Time       `json:"deducted_at"`
}

// Advance - Salary advance repaid through monthly payroll deductions
type Advance struct {
	ID               string
	CompanyID        string
	EmployeeID       string
	Reason           string
	OriginalAmount   decimal.Decimal
	RepaymentPlan    RepaymentPlan
	TotalPaid        decimal.Decimal
	RemainingAmount  decimal.Decimal
	Status           Status
	DeductionHistory []DeductionEntry
	RequestedBy      *string
	ApprovedBy       *string
	ApprovedAt       *time.Time
	RejectedReason   *string
	DisbursedAt      *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// IsActive reports whether the advance takes part in a payroll cascade.
func (a Advance) IsActive() bool {
	return (a.Status == StatusApproved || a.Status == StatusPaid) && a.RemainingAmount.IsPositive()
}

// Installment is the regular amount due this month, capped by what remains.
func (a Advance) Installment() decimal.Decimal {
	return decimal.Min(a.RepaymentPlan.AmountPerMonth, a.RemainingAmount)
}

func (a Advance) HasDeductionFor(payrollRecordID string) bool {
	for _, entry := range a.DeductionHistory {
		if entry.PayrollRecordID == payrollRecordID {
			return true
		}
	}
	return false
}

// RecordDeduction adds a history entry for a paid payroll record. An earlier
// entry for the same payroll record is replaced, so re-confirmed payments
// never count twice.
func (a *Advance) RecordDeduction(entry DeductionEntry) error {
	if !entry.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if a.Status != StatusApproved && a.Status != StatusPaid && a.Status != StatusCompleted {
		return ErrAdvanceNotActive
	}

	history := make([]DeductionEntry, 0, len(a.DeductionHistory)+1)
	totalPaid := a.TotalPaid
	for _, existing := range a.DeductionHistory {
		if existing.PayrollRecordID == entry.PayrollRecordID {
			totalPaid = totalPaid.Sub(existing.Amount)
			continue
		}
		history = append(history, existing)
	}

	remaining := a.OriginalAmount.Sub(totalPaid)
	if entry.Amount.GreaterThan(remaining) {
		return ErrDeductionExceedsRemaining
	}

	a.DeductionHistory = append(history, entry)
	a.TotalPaid = totalPaid.Add(entry.Amount)
	a.RemainingAmount = a.OriginalAmount.Sub(a.TotalPaid)
	a.refreshStatus()
	return nil
}

// ReverseDeduction drops the history entry of a payroll record whose payment
// is no longer confirmed. It reports whether an entry was removed.
func (a *Advance) ReverseDeduction(payrollRecordID string) bool {
	history := make([]DeductionEntry, 0, len(a.DeductionHistory))
	reversed := false
	for _, existing := range a.DeductionHistory {
		if existing.PayrollRecordID == payrollRecordID {
			a.TotalPaid = a.TotalPaid.Sub(existing.Amount)
			reversed = true
			continue
		}
		history = append(history, existing)
	}
	if !reversed {
		return false
	}

	a.DeductionHistory = history
	a.RemainingAmount = a.OriginalAmount.Sub(a.TotalPaid)
	a.refreshStatus()
	return true
}

func (a *Advance) refreshStatus() {
	if !a.RemainingAmount.IsPositive() {
		a.Status = StatusCompleted
		return
	}
	if a.Status == StatusCompleted {
		if a.DisbursedAt != nil {
			a.Status = StatusPaid
		} else {
			a.Status = StatusApproved
		}
	}
}

func (a *Advance) Approve(actor string, now time.Time) error {
	if a.Status != StatusPending {
		return ErrAdvanceAlreadyProcessed
	}
	a.Status = StatusApproved
	a.ApprovedBy = &actor
	a.ApprovedAt = &now
	return nil
}

func (a *Advance) Reject(reason string) error {
	if a.Status != StatusPending {
		return ErrAdvanceAlreadyProcessed
	}
	a.Status = StatusRejected
	a.RejectedReason = &reason
	return nil
}

// Disburse marks an approved advance as handed out.
func (a *Advance) Disburse(now time.Time) error {
	if a.Status != StatusApproved {
		return ErrAdvanceNotApproved
	}
	a.Status = StatusPaid
	a.DisbursedAt = &now
	return nil
}
