package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/payroll"
)

type deductionRepository struct {
	db *sql.DB
}

func NewDeductionRepository(db *sql.DB) payroll.DeductionRepository {
	return &deductionRepository{db: db}
}

const deductionColumns = `id, company_id, employee_id, type, amount, reason, period_month, period_year, created_by, created_at, updated_at`

func scanDeduction(row rowScanner) (payroll.Deduction, error) {
	var d payroll.Deduction
	err := row.Scan(
		&d.ID, &d.CompanyID, &d.EmployeeID, &d.Type, &d.Amount, &d.Reason,
		&d.PeriodMonth, &d.PeriodYear, &d.CreatedBy, &d.CreatedAt, &d.UpdatedAt,
	)
	return d, err
}

func (r *deductionRepository) Create(ctx context.Context, deduction payroll.Deduction) (payroll.Deduction, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO payroll_deductions (id, company_id, employee_id, type, amount, reason, period_month, period_year, created_by, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := q.ExecContext(ctx, query,
		deduction.ID, deduction.CompanyID, deduction.EmployeeID, deduction.Type, deduction.Amount, deduction.Reason,
		deduction.PeriodMonth, deduction.PeriodYear, deduction.CreatedBy, deduction.CreatedAt, deduction.UpdatedAt,
	)
	if err != nil {
		return payroll.Deduction{}, fmt.Errorf("failed to create deduction: %w", err)
	}
	return deduction, nil
}

func (r *deductionRepository) GetByID(ctx context.Context, id string, companyID string) (payroll.Deduction, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + deductionColumns + ` FROM payroll_deductions WHERE id = ? AND company_id = ?`

	d, err := scanDeduction(q.QueryRowContext(ctx, query, id, companyID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return payroll.Deduction{}, payroll.ErrDeductionNotFound
		}
		return payroll.Deduction{}, fmt.Errorf("failed to get deduction with id %s: %w", id, err)
	}
	return d, nil
}

func (r *deductionRepository) ListByEmployeePeriod(ctx context.Context, employeeID string, month, year int, companyID string) ([]payroll.Deduction, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + deductionColumns + `
		FROM payroll_deductions
		WHERE employee_id = ? AND period_month = ? AND period_year = ? AND company_id = ?
		ORDER BY created_at, id
	`

	rows, err := q.QueryContext(ctx, query, employeeID, month, year, companyID)
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

func (r *deductionRepository) Delete(ctx context.Context, id string, companyID string) error {
	res, err := GetQuerier(ctx, r.db).ExecContext(ctx, `DELETE FROM payroll_deductions WHERE id = ? AND company_id = ?`, id, companyID)
	if err != nil {
		return fmt.Errorf("failed to delete deduction with id %s: %w", id, err)
	}
	return requireAffected(res, payroll.ErrDeductionNotFound)
}
