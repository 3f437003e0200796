package payroll

import "context"

// PayrollService defines the payroll workflow. Company and actor come from the JWT in ctx.
type PayrollService interface {
	// Generation
	GeneratePayroll(ctx context.Context, req GeneratePayrollRequest) (GeneratePayrollResponse, error)
	GenerateEmployeePayroll(ctx context.Context, req EmployeePeriodRequest) (PayrollRecordResponse, error)
	PreviewPayroll(ctx context.Context, req EmployeePeriodRequest) (PayrollRecordResponse, error)

	// Records
	GetPayrollRecord(ctx context.Context, id string) (PayrollRecordResponse, error)
	ListPayrollRecords(ctx context.Context, filter PayrollFilter) (ListPayrollRecordResponse, error)
	EditPayrollRecord(ctx context.Context, req EditPayrollRecordRequest) (PayrollRecordResponse, error)
	DeletePayrollRecord(ctx context.Context, id string) error

	// Workflow
	SubmitPayrollRecord(ctx context.Context, id string) (PayrollRecordResponse, error)
	ApprovePayrollRecord(ctx context.Context, id string) (PayrollRecordResponse, error)
	PayPayrollRecord(ctx context.Context, req PayPayrollRequest) (PayrollRecordResponse, error)
	LockPayrollRecord(ctx context.Context, id string) (PayrollRecordResponse, error)
	UnlockPayrollRecord(ctx context.Context, id string) (PayrollRecordResponse, error)

	// Summary
	GetPayrollSummary(ctx context.Context, month, year int) (PayrollSummaryResponse, error)
}

// DeductionService manages manual deductions for a payroll period.
type DeductionService interface {
	CreateDeduction(ctx context.Context, req CreateDeductionRequest) (DeductionResponse, error)
	ListDeductions(ctx context.Context, req EmployeePeriodRequest) ([]DeductionResponse, error)
	DeleteDeduction(ctx context.Context, id string) error
}
