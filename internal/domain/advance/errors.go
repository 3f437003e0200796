package advance

import "errors"

var (
	ErrAdvanceNotFound           = errors.New("advance not found")
	ErrAdvanceAlreadyProcessed   = errors.New("advance has already been approved or rejected")
	ErrAdvanceNotApproved        = errors.New("advance must be approved first")
	ErrAdvanceNotActive          = errors.New("advance is not active")
	ErrDeductionExceedsRemaining = errors.New("deduction exceeds the advance remaining amount")
	ErrInvalidAmount             = errors.New("amount must be positive")
)
