package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type payrollRepository struct {
	db *database.DB
}

func NewPayrollRepository(db *database.DB) payroll.PayrollRepository {
	return &payrollRepository{db: db}
}

const payrollRecordColumns = `pr.id, pr.company_id, pr.employee_id, pr.period_month, pr.period_year,
	pr.compensation, pr.attendance, pr.earnings, pr.deductions, pr.summary,
	pr.status, pr.locked, pr.notes, pr.revisions,
	pr.submitted_by, pr.submitted_at, pr.approved_by, pr.approved_at,
	pr.paid_by, pr.paid_at, pr.locked_by, pr.locked_at, pr.created_at, pr.updated_at,
	e.full_name, e.employee_code`

// recordDocuments are the JSONB columns of a payroll record.
type recordDocuments struct {
	compensation, attendance, earnings, deductions, summary, revisions []byte
}

func encodeRecord(rec payroll.PayrollRecord) (recordDocuments, error) {
	var docs recordDocuments
	revisions := rec.Revisions
	if revisions == nil {
		revisions = []payroll.Revision{}
	}

	parts := []struct {
		name string
		dst  *[]byte
		src  interface{}
	}{
		{"compensation", &docs.compensation, rec.Compensation},
		{"attendance", &docs.attendance, rec.Attendance},
		{"earnings", &docs.earnings, rec.Earnings},
		{"deductions", &docs.deductions, rec.Deductions},
		{"summary", &docs.summary, rec.Summary},
		{"revisions", &docs.revisions, revisions},
	}
	for _, p := range parts {
		b, err := json.Marshal(p.src)
		if err != nil {
			return recordDocuments{}, fmt.Errorf("failed to encode payroll %s: %w", p.name, err)
		}
		*p.dst = b
	}
	return docs, nil
}

func (d recordDocuments) decodeInto(rec *payroll.PayrollRecord) error {
	parts := []struct {
		name string
		src  []byte
		dst  interface{}
	}{
		{"compensation", d.compensation, &rec.Compensation},
		{"attendance", d.attendance, &rec.Attendance},
		{"earnings", d.earnings, &rec.Earnings},
		{"deductions", d.deductions, &rec.Deductions},
		{"summary", d.summary, &rec.Summary},
		{"revisions", d.revisions, &rec.Revisions},
	}
	for _, p := range parts {
		if err := json.Unmarshal(p.src, p.dst); err != nil {
			return fmt.Errorf("failed to decode payroll %s of record %s: %w", p.name, rec.ID, err)
		}
	}
	return nil
}

func scanPayrollRecord(row pgx.Row) (payroll.PayrollRecord, error) {
	var rec payroll.PayrollRecord
	var docs recordDocuments
	if err := row.Scan(
		&rec.ID, &rec.CompanyID, &rec.EmployeeID, &rec.PeriodMonth, &rec.PeriodYear,
		&docs.compensation, &docs.attendance, &docs.earnings, &docs.deductions, &docs.summary,
		&rec.Status, &rec.Locked, &rec.Notes, &docs.revisions,
		&rec.SubmittedBy, &rec.SubmittedAt, &rec.ApprovedBy, &rec.ApprovedAt,
		&rec.PaidBy, &rec.PaidAt, &rec.LockedBy, &rec.LockedAt, &rec.CreatedAt, &rec.UpdatedAt,
		&rec.EmployeeName, &rec.EmployeeCode,
	); err != nil {
		return payroll.PayrollRecord{}, err
	}
	if err := docs.decodeInto(&rec); err != nil {
		return payroll.PayrollRecord{}, err
	}
	return rec, nil
}

func (r *payrollRepository) CreatePayrollRecord(ctx context.Context, record payroll.PayrollRecord) (payroll.PayrollRecord, error) {
	q := GetQuerier(ctx, r.db)

	docs, err := encodeRecord(record)
	if err != nil {
		return payroll.PayrollRecord{}, err
	}

	query := `
		INSERT INTO payroll_records (
			id, company_id, employee_id, period_month, period_year,
			compensation, attendance, earnings, deductions, summary,
			gross_salary, total_deductions, net_salary, paid_amount, unpaid_balance, carried_forward_to_next,
			status, locked, notes, revisions
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
		RETURNING created_at, updated_at
	`

	s := record.Summary
	err = q.QueryRow(ctx, query,
		record.ID, record.CompanyID, record.EmployeeID, record.PeriodMonth, record.PeriodYear,
		docs.compensation, docs.attendance, docs.earnings, docs.deductions, docs.summary,
		s.GrossSalary, s.TotalDeductions, s.NetSalary, s.PaidAmount, s.UnpaidBalance, s.CarriedForwardToNext,
		record.Status, record.Locked, record.Notes, docs.revisions,
	).Scan(&record.CreatedAt, &record.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, "uk_payroll_record_period") {
			return payroll.PayrollRecord{}, payroll.ErrPayrollRecordAlreadyExists
		}
		return payroll.PayrollRecord{}, fmt.Errorf("failed to create payroll record: %w", err)
	}

	return record, nil
}

func (r *payrollRepository) GetPayrollRecordByID(ctx context.Context, id string, companyID string) (payroll.PayrollRecord, error) {
	return r.getPayrollRecord(ctx, id, companyID, "")
}

// GetPayrollRecordByIDForUpdate only locks the payroll row, not the joined employee.
func (r *payrollRepository) GetPayrollRecordByIDForUpdate(ctx context.Context, id string, companyID string) (payroll.PayrollRecord, error) {
	return r.getPayrollRecord(ctx, id, companyID, "FOR UPDATE OF pr")
}

func (r *payrollRepository) getPayrollRecord(ctx context.Context, id string, companyID string, lock string) (payroll.PayrollRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + payrollRecordColumns + `
		FROM payroll_records pr
		JOIN employees e ON pr.employee_id = e.id
		WHERE pr.id = $1 AND pr.company_id = $2
	` + lock

	rec, err := scanPayrollRecord(q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.PayrollRecord{}, payroll.ErrPayrollRecordNotFound
		}
		return payroll.PayrollRecord{}, fmt.Errorf("failed to get payroll record: %w", err)
	}
	return rec, nil
}

func (r *payrollRepository) GetPayrollRecordByEmployeePeriod(ctx context.Context, employeeID string, month, year int, companyID string) (payroll.PayrollRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + payrollRecordColumns + `
		FROM payroll_records pr
		JOIN employees e ON pr.employee_id = e.id
		WHERE pr.employee_id = $1 AND pr.period_month = $2 AND pr.period_year = $3 AND pr.company_id = $4
	`

	rec, err := scanPayrollRecord(q.QueryRow(ctx, query, employeeID, month, year, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.PayrollRecord{}, payroll.ErrPayrollRecordNotFound
		}
		return payroll.PayrollRecord{}, fmt.Errorf("failed to get payroll record for period %02d/%d: %w", month, year, err)
	}
	return rec, nil
}

func (r *payrollRepository) ListPayrollRecords(ctx context.Context, companyID string, filter payroll.PayrollFilter) ([]payroll.PayrollRecord, int64, error) {
	q := GetQuerier(ctx, r.db)

	baseQuery := `
		FROM payroll_records pr
		JOIN employees e ON pr.employee_id = e.id
		WHERE pr.company_id = $1
	`
	args := []interface{}{companyID}
	argIdx := 2

	if filter.PeriodMonth != nil {
		baseQuery += fmt.Sprintf(" AND pr.period_month = $%d", argIdx)
		args = append(args, *filter.PeriodMonth)
		argIdx++
	}
	if filter.PeriodYear != nil {
		baseQuery += fmt.Sprintf(" AND pr.period_year = $%d", argIdx)
		args = append(args, *filter.PeriodYear)
		argIdx++
	}
	if filter.Status != nil {
		baseQuery += fmt.Sprintf(" AND pr.status = $%d", argIdx)
		args = append(args, *filter.Status)
		argIdx++
	}
	if filter.EmployeeID != nil {
		baseQuery += fmt.Sprintf(" AND pr.employee_id = $%d", argIdx)
		args = append(args, *filter.EmployeeID)
		argIdx++
	}

	// Count query
	var totalCount int64
	countQuery := "SELECT COUNT(*) " + baseQuery
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("failed to count payroll records: %w", err)
	}

	sortColumn := payrollSortColumn(filter.SortBy)
	sortOrder := "DESC"
	if filter.SortOrder == "asc" {
		sortOrder = "ASC"
	}

	filter.Normalize()
	offset := (filter.Page - 1) * filter.Limit

	selectQuery := fmt.Sprintf(`
		SELECT %s
		%s
		ORDER BY %s %s, pr.id
		LIMIT $%d OFFSET $%d
	`, payrollRecordColumns, baseQuery, sortColumn, sortOrder, argIdx, argIdx+1)

	args = append(args, filter.Limit, offset)

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list payroll records: %w", err)
	}
	defer rows.Close()

	records := []payroll.PayrollRecord{}
	for rows.Next() {
		rec, err := scanPayrollRecord(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan payroll record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate payroll records: %w", err)
	}

	return records, totalCount, nil
}

func (r *payrollRepository) ListUnpaidByEmployee(ctx context.Context, employeeID string, companyID string) ([]payroll.PayrollRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + payrollRecordColumns + `
		FROM payroll_records pr
		JOIN employees e ON pr.employee_id = e.id
		WHERE pr.employee_id = $1 AND pr.company_id = $2 AND pr.paid_at IS NULL
		ORDER BY pr.period_year, pr.period_month
	`

	rows, err := q.Query(ctx, query, employeeID, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list unpaid payroll records: %w", err)
	}
	defer rows.Close()

	records := []payroll.PayrollRecord{}
	for rows.Next() {
		rec, err := scanPayrollRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payroll record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payroll records: %w", err)
	}
	return records, nil
}

// payrollSortColumn whitelists sortable columns.
func payrollSortColumn(sortBy string) string {
	allowedColumns := map[string]string{
		"created_at":    "pr.created_at",
		"period":        "pr.period_year, pr.period_month",
		"employee_name": "e.full_name",
		"net_salary":    "pr.net_salary",
		"status":        "pr.status",
	}
	if col, ok := allowedColumns[sortBy]; ok {
		return col
	}
	return "pr.created_at"
}

func (r *payrollRepository) UpdatePayrollRecord(ctx context.Context, record payroll.PayrollRecord) error {
	q := GetQuerier(ctx, r.db)

	docs, err := encodeRecord(record)
	if err != nil {
		return err
	}

	query := `
		UPDATE payroll_records SET
			compensation = $1, attendance = $2, earnings = $3, deductions = $4, summary = $5,
			gross_salary = $6, total_deductions = $7, net_salary = $8, paid_amount = $9,
			unpaid_balance = $10, carried_forward_to_next = $11,
			status = $12, locked = $13, notes = $14, revisions = $15,
			submitted_by = $16, submitted_at = $17, approved_by = $18, approved_at = $19,
			paid_by = $20, paid_at = $21, locked_by = $22, locked_at = $23,
			updated_at = NOW()
		WHERE id = $24 AND company_id = $25
	`

	s := record.Summary
	tag, err := q.Exec(ctx, query,
		docs.compensation, docs.attendance, docs.earnings, docs.deductions, docs.summary,
		s.GrossSalary, s.TotalDeductions, s.NetSalary, s.PaidAmount,
		s.UnpaidBalance, s.CarriedForwardToNext,
		record.Status, record.Locked, record.Notes, docs.revisions,
		record.SubmittedBy, record.SubmittedAt, record.ApprovedBy, record.ApprovedAt,
		record.PaidBy, record.PaidAt, record.LockedBy, record.LockedAt,
		record.ID, record.CompanyID,
	)
	if err != nil {
		return fmt.Errorf("failed to update payroll record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return payroll.ErrPayrollRecordNotFound
	}

	return nil
}

func (r *payrollRepository) DeletePayrollRecord(ctx context.Context, id string, companyID string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM payroll_records WHERE id = $1 AND company_id = $2`, id, companyID)
	if err != nil {
		return fmt.Errorf("failed to delete payroll record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return payroll.ErrPayrollRecordNotFound
	}

	return nil
}

func (r *payrollRepository) CountProcessedForPeriod(ctx context.Context, employeeID string, month, year int, companyID string) (int, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT COUNT(*)
		FROM payroll_records
		WHERE employee_id = $1 AND period_month = $2 AND period_year = $3 AND company_id = $4
			AND status <> 'draft'
	`

	var count int
	if err := q.QueryRow(ctx, query, employeeID, month, year, companyID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count processed payroll records: %w", err)
	}
	return count, nil
}

func (r *payrollRepository) GetPayrollSummary(ctx context.Context, companyID string, month, year int) (payroll.PayrollSummaryResponse, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT 
			COUNT(*) as total_employees,
			COUNT(*) FILTER (WHERE status = 'draft') as draft_count,
			COUNT(*) FILTER (WHERE status = 'pending') as pending_count,
			COUNT(*) FILTER (WHERE status = 'approved') as approved_count,
			COUNT(*) FILTER (WHERE status = 'paid') as paid_count,
			COUNT(*) FILTER (WHERE status = 'locked') as locked_count,
			COALESCE(SUM(gross_salary), 0) as total_gross_salary,
			COALESCE(SUM(total_deductions), 0) as total_deductions,
			COALESCE(SUM(net_salary), 0) as total_net_salary,
			COALESCE(SUM(paid_amount), 0) as total_paid,
			COALESCE(SUM(unpaid_balance), 0) as total_unpaid,
			COALESCE(SUM(carried_forward_to_next), 0) as total_carried_forward
		FROM payroll_records
		WHERE company_id = $1 AND period_month = $2 AND period_year = $3
	`

	var summary payroll.PayrollSummaryResponse
	err := q.QueryRow(ctx, query, companyID, month, year).Scan(
		&summary.TotalEmployees, &summary.DraftCount, &summary.PendingCount, &summary.ApprovedCount,
		&summary.PaidCount, &summary.LockedCount,
		&summary.TotalGrossSalary, &summary.TotalDeductions, &summary.TotalNetSalary,
		&summary.TotalPaid, &summary.TotalUnpaid, &summary.TotalCarriedForward,
	)
	if err != nil {
		return payroll.PayrollSummaryResponse{}, fmt.Errorf("failed to get payroll summary: %w", err)
	}

	summary.PeriodMonth = month
	summary.PeriodYear = year

	return summary, nil
}
