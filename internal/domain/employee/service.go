package employee

import "context"

// EmployeeService defines business logic for employee operations
type EmployeeService interface {
	// CreateEmployee creates a new employee with its compensation profile (companyID from JWT)
	CreateEmployee(ctx context.Context, req CreateEmployeeRequest) (EmployeeResponse, error)

	GetEmployee(ctx context.Context, id string) (EmployeeResponse, error)

	ListEmployees(ctx context.Context, status *string) ([]EmployeeResponse, error)

	// UpdateCompensation replaces the compensation profile used by future payroll runs
	UpdateCompensation(ctx context.Context, req UpdateCompensationRequest) (EmployeeResponse, error)
}
