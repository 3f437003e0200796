package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/advance"
)

type advanceRepository struct {
	db *sql.DB
}

func NewAdvanceRepository(db *sql.DB) advance.AdvanceRepository {
	return &advanceRepository{db: db}
}

const advanceColumns = `id, company_id, employee_id, reason, original_amount, installment_count, amount_per_month,
	total_paid, remaining_amount, status, deduction_history, requested_by, approved_by, approved_at,
	rejected_reason, disbursed_at, created_at, updated_at`

func scanAdvance(row rowScanner) (advance.Advance, error) {
	var a advance.Advance
	var history []byte
	if err := row.Scan(
		&a.ID, &a.CompanyID, &a.EmployeeID, &a.Reason, &a.OriginalAmount,
		&a.RepaymentPlan.InstallmentCount, &a.RepaymentPlan.AmountPerMonth,
		&a.TotalPaid, &a.RemainingAmount, &a.Status, &history, &a.RequestedBy, &a.ApprovedBy, &a.ApprovedAt,
		&a.RejectedReason, &a.DisbursedAt, &a.CreatedAt, &a.UpdatedAt,
	); err != nil {
		return advance.Advance{}, err
	}
	if err := json.Unmarshal(history, &a.DeductionHistory); err != nil {
		return advance.Advance{}, fmt.Errorf("failed to decode deduction history of advance %s: %w", a.ID, err)
	}
	return a, nil
}

func encodeHistory(history []advance.DeductionEntry) (string, error) {
	if history == nil {
		history = []advance.DeductionEntry{}
	}
	b, err := json.Marshal(history)
	if err != nil {
		return "", fmt.Errorf("failed to encode deduction history: %w", err)
	}
	return string(b), nil
}

func (r *advanceRepository) Create(ctx context.Context, adv advance.Advance) (advance.Advance, error) {
	q := GetQuerier(ctx, r.db)

	history, err := encodeHistory(adv.DeductionHistory)
	if err != nil {
		return advance.Advance{}, err
	}

	query := `
		INSERT INTO advances (
			id, company_id, employee_id, reason, original_amount, installment_count, amount_per_month,
			total_paid, remaining_amount, status, deduction_history, requested_by, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = q.ExecContext(ctx, query,
		adv.ID, adv.CompanyID, adv.EmployeeID, adv.Reason, adv.OriginalAmount,
		adv.RepaymentPlan.InstallmentCount, adv.RepaymentPlan.AmountPerMonth,
		adv.TotalPaid, adv.RemainingAmount, adv.Status, history, adv.RequestedBy, adv.CreatedAt, adv.UpdatedAt,
	)
	if err != nil {
		return advance.Advance{}, fmt.Errorf("failed to create advance: %w", err)
	}
	return adv, nil
}

func (r *advanceRepository) GetByID(ctx context.Context, id string, companyID string) (advance.Advance, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + advanceColumns + ` FROM advances WHERE id = ? AND company_id = ?`

	a, err := scanAdvance(q.QueryRowContext(ctx, query, id, companyID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return advance.Advance{}, advance.ErrAdvanceNotFound
		}
		return advance.Advance{}, fmt.Errorf("failed to get advance with id %s: %w", id, err)
	}
	return a, nil
}

// GetByIDForUpdate needs no row lock on the single-connection database.
func (r *advanceRepository) GetByIDForUpdate(ctx context.Context, id string, companyID string) (advance.Advance, error) {
	return r.GetByID(ctx, id, companyID)
}

func (r *advanceRepository) List(ctx context.Context, companyID string, filter advance.AdvanceFilter) ([]advance.Advance, error) {
	query := `SELECT ` + advanceColumns + ` FROM advances WHERE company_id = ?`
	args := []any{companyID}

	if filter.EmployeeID != nil {
		query += ` AND employee_id = ?`
		args = append(args, *filter.EmployeeID)
	}
	if filter.Status != nil {
		query += ` AND status = ?`
		args = append(args, *filter.Status)
	}
	query += ` ORDER BY created_at DESC`

	return r.queryAdvances(ctx, query, args...)
}

func (r *advanceRepository) GetActiveByEmployee(ctx context.Context, employeeID string, companyID string) ([]advance.Advance, error) {
	query := `
		SELECT ` + advanceColumns + `
		FROM advances
		WHERE employee_id = ? AND company_id = ? AND status IN ('approved', 'paid')
		ORDER BY created_at, id
	`
	all, err := r.queryAdvances(ctx, query, employeeID, companyID)
	if err != nil {
		return nil, err
	}

	// remaining_amount is TEXT, so the balance check happens here.
	active := make([]advance.Advance, 0, len(all))
	for _, a := range all {
		if a.IsActive() {
			active = append(active, a)
		}
	}
	return active, nil
}

func (r *advanceRepository) queryAdvances(ctx context.Context, query string, args ...any) ([]advance.Advance, error) {
	rows, err := GetQuerier(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list advances: %w", err)
	}
	defer rows.Close()

	advances := []advance.Advance{}
	for rows.Next() {
		a, err := scanAdvance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan advance: %w", err)
		}
		advances = append(advances, a)
	}
	return advances, rows.Err()
}

func (r *advanceRepository) Update(ctx context.Context, adv advance.Advance) error {
	q := GetQuerier(ctx, r.db)

	history, err := encodeHistory(adv.DeductionHistory)
	if err != nil {
		return err
	}

	query := `
		UPDATE advances SET
			total_paid = ?, remaining_amount = ?, status = ?, deduction_history = ?,
			approved_by = ?, approved_at = ?, rejected_reason = ?, disbursed_at = ?, updated_at = ?
		WHERE id = ? AND company_id = ?
	`
	res, err := q.ExecContext(ctx, query,
		adv.TotalPaid, adv.RemainingAmount, adv.Status, history,
		adv.ApprovedBy, adv.ApprovedAt, adv.RejectedReason, adv.DisbursedAt, time.Now().UTC(),
		adv.ID, adv.CompanyID,
	)
	if err != nil {
		return fmt.Errorf("failed to update advance with id %s: %w", adv.ID, err)
	}
	return requireAffected(res, advance.ErrAdvanceNotFound)
}
