package advance

import "context"

type AdvanceRepository interface {
	Create(ctx context.Context, adv Advance) (Advance, error)
	GetByID(ctx context.Context, id string, companyID string) (Advance, error)
	// GetByIDForUpdate locks the row until the surrounding transaction ends.
	GetByIDForUpdate(ctx context.Context, id string, companyID string) (Advance, error)
	List(ctx context.Context, companyID string, filter AdvanceFilter) ([]Advance, error)
	// GetActiveByEmployee returns approved or disbursed advances with a positive balance, oldest first.
	GetActiveByEmployee(ctx context.Context, employeeID string, companyID string) ([]Advance, error)
	Update(ctx context.Context, adv Advance) error
}
