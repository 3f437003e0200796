package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

// Submit moves a draft record to pending.
func (r *PayrollRecord) Submit(actor string, now time.Time) error {
	if r.Locked {
		return ErrRecordLocked
	}
	if r.Status != PayrollStatusDraft {
		return ErrInvalidStatusTransition
	}
	r.Status = PayrollStatusPending
	r.SubmittedBy = &actor
	r.SubmittedAt = &now
	return nil
}

// Approve moves any unlocked record to approved.
func (r *PayrollRecord) Approve(actor string, now time.Time) error {
	if r.Locked {
		return ErrRecordLocked
	}
	r.Status = PayrollStatusApproved
	r.ApprovedBy = &actor
	r.ApprovedAt = &now
	return nil
}

// ApplyPayment adds amount to the paid total. It reports true when the
// record became fully paid by this payment.
func (r *PayrollRecord) ApplyPayment(amount decimal.Decimal, actor string, now time.Time) (bool, error) {
	if r.Locked {
		return false, ErrRecordLocked
	}
	if r.Status != PayrollStatusApproved {
		return false, ErrRecordNotApproved
	}
	if amount.IsNegative() {
		return false, ErrInvalidPaymentAmount
	}

	outstanding := decimal.Max(r.Summary.UnpaidBalance, decimal.Zero)
	if amount.GreaterThan(outstanding) {
		return false, ErrPaymentExceedsBalance
	}
	if amount.IsZero() && outstanding.IsPositive() {
		return false, ErrInvalidPaymentAmount
	}

	r.Summary.PaidAmount = r.Summary.PaidAmount.Add(amount)
	r.Summary.UnpaidBalance = r.Summary.NetSalary.Sub(r.Summary.PaidAmount)
	if r.Summary.UnpaidBalance.IsPositive() {
		return false, nil
	}

	r.Status = PayrollStatusPaid
	r.PaidBy = &actor
	r.PaidAt = &now
	return true, nil
}

// Lock freezes an approved or paid record.
func (r *PayrollRecord) Lock(actor string, now time.Time) error {
	if r.Locked {
		return ErrRecordLocked
	}
	if r.Status != PayrollStatusApproved && r.Status != PayrollStatusPaid {
		return ErrInvalidStatusTransition
	}
	r.Locked = true
	r.Status = PayrollStatusLocked
	r.LockedBy = &actor
	r.LockedAt = &now
	return nil
}

// Unlock clears the lock and restores paid or approved.
func (r *PayrollRecord) Unlock() error {
	if !r.Locked {
		return ErrRecordNotLocked
	}
	r.Locked = false
	r.LockedBy = nil
	r.LockedAt = nil
	if r.PaidAt != nil {
		r.Status = PayrollStatusPaid
	} else {
		r.Status = PayrollStatusApproved
	}
	return nil
}

// CanEdit reports whether field edits are allowed.
func (r *PayrollRecord) CanEdit() error {
	if r.Locked {
		return ErrRecordLocked
	}
	return nil
}

// CanDelete rejects paid, locked, or partially paid records.
func (r *PayrollRecord) CanDelete() error {
	if r.Locked || r.Status == PayrollStatusPaid || r.Status == PayrollStatusLocked {
		return ErrCannotDeletePaidRecord
	}
	if r.Summary.PaidAmount.IsPositive() {
		return ErrCannotDeletePaidRecord
	}
	return nil
}

// ReopenAfterEdit sends a paid record back to pending so payment is confirmed again.
func (r *PayrollRecord) ReopenAfterEdit() {
	if r.Status != PayrollStatusPaid {
		return
	}
	r.Status = PayrollStatusPending
	r.PaidAt = nil
	r.PaidBy = nil
}
