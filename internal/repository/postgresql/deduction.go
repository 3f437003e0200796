package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type deductionRepositoryImpl struct {
	db *database.DB
}

func NewDeductionRepository(db *database.DB) payroll.DeductionRepository {
	return &deductionRepositoryImpl{db: db}
}

const deductionColumns = `id, company_id, employee_id, type, amount, reason, period_month, period_year, created_by, created_at, updated_at`

func scanDeduction(row pgx.Row) (payroll.Deduction, error) {
	var d payroll.Deduction
	err := row.Scan(
		&d.ID, &d.CompanyID, &d.EmployeeID, &d.Type, &d.Amount, &d.Reason,
		&d.PeriodMonth, &d.PeriodYear, &d.CreatedBy, &d.CreatedAt, &d.UpdatedAt,
	)
	return d, err
}

// Create implements payroll.DeductionRepository.
func (r *deductionRepositoryImpl) Create(ctx context.Context, deduction payroll.Deduction) (payroll.Deduction, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO payroll_deductions (id, company_id, employee_id, type, amount, reason, period_month, period_year, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + deductionColumns

	created, err := scanDeduction(q.QueryRow(ctx, query,
		deduction.ID, deduction.CompanyID, deduction.EmployeeID, deduction.Type, deduction.Amount, deduction.Reason,
		deduction.PeriodMonth, deduction.PeriodYear, deduction.CreatedBy, deduction.CreatedAt, deduction.UpdatedAt,
	))
	if err != nil {
		return payroll.Deduction{}, fmt.Errorf("failed to create deduction: %w", err)
	}
	return created, nil
}

// GetByID implements payroll.DeductionRepository.
func (r *deductionRepositoryImpl) GetByID(ctx context.Context, id string, companyID string) (payroll.Deduction, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + deductionColumns + ` FROM payroll_deductions WHERE id = $1 AND company_id = $2`

	d, err := scanDeduction(q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.Deduction{}, payroll.ErrDeductionNotFound
		}
		return payroll.Deduction{}, fmt.Errorf("failed to get deduction with id %s: %w", id, err)
	}
	return d, nil
}

// ListByEmployeePeriod implements payroll.DeductionRepository.
func (r *deductionRepositoryImpl) ListByEmployeePeriod(ctx context.Context, employeeID string, month, year int, companyID string) ([]payroll.Deduction, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + deductionColumns + `
		FROM payroll_deductions
		WHERE employee_id = $1 AND period_month = $2 AND period_year = $3 AND company_id = $4
		ORDER BY created_at, id
	`

	rows, err := q.Query(ctx, query, employeeID, month, year, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list deductions: %w", err)
	}
	defer rows.Close()

	deductions := []payroll.Deduction{}
	for rows.Next() {
		d, err := scanDeduction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan deduction: %w", err)
		}
		deductions = append(deductions, d)
	}
	return deductions, rows.Err()
}

// Delete implements payroll.DeductionRepository.
func (r *deductionRepositoryImpl) Delete(ctx context.Context, id string, companyID string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM payroll_deductions WHERE id = $1 AND company_id = $2`, id, companyID)
	if err != nil {
		return fmt.Errorf("failed to delete deduction with id %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return payroll.ErrDeductionNotFound
	}
	return nil
}
