package advance

import (
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type CreateAdvanceRequest struct {
	EmployeeID       string           `json:"employee_id" validate:"required"`
	Amount           decimal.Decimal  `json:"amount"`
	InstallmentCount int              `json:"installment_count" validate:"min=1,max=60"`
	AmountPerMonth   *decimal.Decimal `json:"amount_per_month,omitempty"`
	Reason           string           `json:"reason" validate:"required,max=500"`
}

func (r *CreateAdvanceRequest) Validate() error {
	errs := validator.Struct(r)

	if !r.Amount.IsPositive() {
		errs = append(errs, validator.ValidationError{Field: "amount", Message: "must be positive"})
	}
	if r.AmountPerMonth != nil {
		if !r.AmountPerMonth.IsPositive() {
			errs = append(errs, validator.ValidationError{Field: "amount_per_month", Message: "must be positive"})
		} else if r.AmountPerMonth.GreaterThan(r.Amount) {
			errs = append(errs, validator.ValidationError{Field: "amount_per_month", Message: "must not exceed amount"})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type RejectAdvanceRequest struct {
	ID     string `json:"-"`
	Reason string `json:"reason" validate:"required,max=500"`
}

func (r *RejectAdvanceRequest) Validate() error {
	if errs := validator.Struct(r); len(errs) > 0 {
		return errs
	}
	return nil
}

type AdvanceFilter struct {
	EmployeeID *string `json:"employee_id,omitempty"`
	Status     *string `json:"status,omitempty" validate:"omitempty,oneof=pending approved rejected paid completed"`
}

func (f *AdvanceFilter) Validate() error {
	if errs := validator.Struct(f); len(errs) > 0 {
		return errs
	}
	return nil
}

type AdvanceResponse struct {
	ID               string           `json:"id"`
	EmployeeID       string           `json:"employee_id"`
	Reason           string           `json:"reason"`
	OriginalAmount   decimal.Decimal  `json:"original_amount"`
	RepaymentPlan    RepaymentPlan    `json:"repayment_plan"`
	TotalPaid        decimal.Decimal  `json:"total_paid"`
	RemainingAmount  decimal.Decimal  `json:"remaining_amount"`
	Status           string           `json:"status"`
	DeductionHistory []DeductionEntry `json:"deduction_history"`
	ApprovedBy       *string          `json:"approved_by,omitempty"`
	ApprovedAt       *string          `json:"approved_at,omitempty"`
	RejectedReason   *string          `json:"rejected_reason,omitempty"`
	DisbursedAt      *string          `json:"disbursed_at,omitempty"`
	CreatedAt        string           `json:"created_at"`
}
