package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/advance"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type advanceRepositoryImpl struct {
	db *database.DB
}

func NewAdvanceRepository(db *database.DB) advance.AdvanceRepository {
	return &advanceRepositoryImpl{db: db}
}

const advanceColumns = `id, company_id, employee_id, reason, original_amount, installment_count, amount_per_month,
	total_paid, remaining_amount, status, deduction_history, requested_by, approved_by, approved_at,
	rejected_reason, disbursed_at, created_at, updated_at`

func scanAdvance(row pgx.Row) (advance.Advance, error) {
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

func encodeHistory(history []advance.DeductionEntry) ([]byte, error) {
	if history == nil {
		history = []advance.DeductionEntry{}
	}
	b, err := json.Marshal(history)
	if err != nil {
		return nil, fmt.Errorf("failed to encode deduction history: %w", err)
	}
	return b, nil
}

// Create implements advance.AdvanceRepository.
func (r *advanceRepositoryImpl) Create(ctx context.Context, adv advance.Advance) (advance.Advance, error) {
	q := GetQuerier(ctx, r.db)

	history, err := encodeHistory(adv.DeductionHistory)
	if err != nil {
		return advance.Advance{}, err
	}

	query := `
		INSERT INTO advances (
			id, company_id, employee_id, reason, original_amount, installment_count, amount_per_month,
			total_paid, remaining_amount, status, deduction_history, requested_by, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING ` + advanceColumns

	created, err := scanAdvance(q.QueryRow(ctx, query,
		adv.ID, adv.CompanyID, adv.EmployeeID, adv.Reason, adv.OriginalAmount,
		adv.RepaymentPlan.InstallmentCount, adv.RepaymentPlan.AmountPerMonth,
		adv.TotalPaid, adv.RemainingAmount, adv.Status, history, adv.RequestedBy, adv.CreatedAt, adv.UpdatedAt,
	))
	if err != nil {
		return advance.Advance{}, fmt.Errorf("failed to create advance: %w", err)
	}
	return created, nil
}

// GetByID implements advance.AdvanceRepository.
func (r *advanceRepositoryImpl) GetByID(ctx context.Context, id string, companyID string) (advance.Advance, error) {
	return r.getByID(ctx, id, companyID, "")
}

// GetByIDForUpdate implements advance.AdvanceRepository.
func (r *advanceRepositoryImpl) GetByIDForUpdate(ctx context.Context, id string, companyID string) (advance.Advance, error) {
	return r.getByID(ctx, id, companyID, " FOR UPDATE")
}

func (r *advanceRepositoryImpl) getByID(ctx context.Context, id string, companyID string, lock string) (advance.Advance, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + advanceColumns + ` FROM advances WHERE id = $1 AND company_id = $2` + lock

	a, err := scanAdvance(q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return advance.Advance{}, advance.ErrAdvanceNotFound
		}
		return advance.Advance{}, fmt.Errorf("failed to get advance with id %s: %w", id, err)
	}
	return a, nil
}

// List implements advance.AdvanceRepository.
func (r *advanceRepositoryImpl) List(ctx context.Context, companyID string, filter advance.AdvanceFilter) ([]advance.Advance, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + advanceColumns + ` FROM advances WHERE company_id = $1`
	args := []interface{}{companyID}
	argIdx := 2

	if filter.EmployeeID != nil {
		query += fmt.Sprintf(" AND employee_id = $%d", argIdx)
		args = append(args, *filter.EmployeeID)
		argIdx++
	}
	if filter.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, *filter.Status)
	}
	query += ` ORDER BY created_at DESC`

	return r.queryAdvances(ctx, q, query, args...)
}

// GetActiveByEmployee implements advance.AdvanceRepository.
func (r *advanceRepositoryImpl) GetActiveByEmployee(ctx context.Context, employeeID string, companyID string) ([]advance.Advance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + advanceColumns + `
		FROM advances
		WHERE employee_id = $1 AND company_id = $2
			AND status IN ('approved', 'paid')
			AND remaining_amount > 0
		ORDER BY created_at, id
	`
	return r.queryAdvances(ctx, q, query, employeeID, companyID)
}

func (r *advanceRepositoryImpl) queryAdvances(ctx context.Context, q database.Querier, query string, args ...interface{}) ([]advance.Advance, error) {
	rows, err := q.Query(ctx, query, args...)
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

// Update implements advance.AdvanceRepository.
func (r *advanceRepositoryImpl) Update(ctx context.Context, adv advance.Advance) error {
	q := GetQuerier(ctx, r.db)

	history, err := encodeHistory(adv.DeductionHistory)
	if err != nil {
		return err
	}

	query := `
		UPDATE advances SET
			total_paid = $1, remaining_amount = $2, status = $3, deduction_history = $4,
			approved_by = $5, approved_at = $6, rejected_reason = $7, disbursed_at = $8, updated_at = NOW()
		WHERE id = $9 AND company_id = $10
	`

	tag, err := q.Exec(ctx, query,
		adv.TotalPaid, adv.RemainingAmount, adv.Status, history,
		adv.ApprovedBy, adv.ApprovedAt, adv.RejectedReason, adv.DisbursedAt,
		adv.ID, adv.CompanyID,
	)
	if err != nil {
		return fmt.Errorf("failed to update advance with id %s: %w", adv.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return advance.ErrAdvanceNotFound
	}
	return nil
}
