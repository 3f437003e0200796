package payroll

import "context"

// PayrollRepository defines data access methods for payroll records.
// All methods include companyID parameter to prevent cross-company data access attacks.
type PayrollRepository interface {
	CreatePayrollRecord(ctx context.Context, record PayrollRecord) (PayrollRecord, error)
	GetPayrollRecordByID(ctx context.Context, id string, companyID string) (PayrollRecord, error)
	// GetPayrollRecordByIDForUpdate locks the row until the surrounding transaction ends.
	GetPayrollRecordByIDForUpdate(ctx context.Context, id string, companyID string) (PayrollRecord, error)
	GetPayrollRecordByEmployeePeriod(ctx context.Context, employeeID string, month, year int, companyID string) (PayrollRecord, error)
	ListPayrollRecords(ctx context.Context, companyID string, filter PayrollFilter) ([]PayrollRecord, int64, error)
	// ListUnpaidByEmployee returns the employee's records whose payment is not confirmed, oldest period first.
	ListUnpaidByEmployee(ctx context.Context, employeeID string, companyID string) ([]PayrollRecord, error)
	// UpdatePayrollRecord persists every mutable column of the record.
	UpdatePayrollRecord(ctx context.Context, record PayrollRecord) error
	DeletePayrollRecord(ctx context.Context, id string, companyID string) error
	// CountProcessedForPeriod counts records of an employee period that left draft.
	CountProcessedForPeriod(ctx context.Context, employeeID string, month, year int, companyID string) (int, error)
	GetPayrollSummary(ctx context.Context, companyID string, month, year int) (PayrollSummaryResponse, error)
}

// DeductionRepository stores manual deductions.
type DeductionRepository interface {
	Create(ctx context.Context, deduction Deduction) (Deduction, error)
	GetByID(ctx context.Context, id string, companyID string) (Deduction, error)
	ListByEmployeePeriod(ctx context.Context, employeeID string, month, year int, companyID string) ([]Deduction, error)
	Delete(ctx context.Context, id string, companyID string) error
}
