package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/payroll"
	"github.com/shopspring/decimal"
)

type payrollRepository struct {
	db *sql.DB
}

func NewPayrollRepository(db *sql.DB) payroll.PayrollRepository {
	return &payrollRepository{db: db}
}

const payrollRecordColumns = `pr.id, pr.company_id, pr.employee_id, pr.period_month, pr.period_year,
	pr.compensation, pr.attendance, pr.earnings, pr.deductions, pr.summary,
	pr.status, pr.locked, pr.notes, pr.revisions,
	pr.submitted_by, pr.submitted_at, pr.approved_by, pr.approved_at,
	pr.paid_by, pr.paid_at, pr.locked_by, pr.locked_at, pr.created_at, pr.updated_at,
	e.full_name, e.employee_code`

// recordDocuments are the JSON columns of a payroll record.
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
		src  any
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

func scanPayrollRecord(row rowScanner) (payroll.PayrollRecord, error) {
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

	parts := []struct {
		name string
		src  []byte
		dst  any
	}{
		{"compensation", docs.compensation, &rec.Compensation},
		{"attendance", docs.attendance, &rec.Attendance},
		{"earnings", docs.earnings, &rec.Earnings},
		{"deductions", docs.deductions, &rec.Deductions},
		{"summary", docs.summary, &rec.Summary},
		{"revisions", docs.revisions, &rec.Revisions},
	}
	for _, p := range parts {
		if err := json.Unmarshal(p.src, p.dst); err != nil {
			return payroll.PayrollRecord{}, fmt.Errorf("failed to decode payroll %s of record %s: %w", p.name, rec.ID, err)
		}
	}
	return rec, nil
}

func (r *payrollRepository) CreatePayrollRecord(ctx context.Context, record payroll.PayrollRecord) (payroll.PayrollRecord, error) {
	q := GetQuerier(ctx, r.db)

	docs, err := encodeRecord(record)
	if err != nil {
		return payroll.PayrollRecord{}, err
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	record.UpdatedAt = record.CreatedAt

	query := `
		INSERT INTO payroll_records (
			id, company_id, employee_id, period_month, period_year,
			compensation, attendance, earnings, deductions, summary,
			gross_salary, total_deductions, net_salary, paid_amount, unpaid_balance, carried_forward_to_next,
			status, locked, notes, revisions, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	s := record.Summary
	_, err = q.ExecContext(ctx, query,
		record.ID, record.CompanyID, record.EmployeeID, record.PeriodMonth, record.PeriodYear,
		string(docs.compensation), string(docs.attendance), string(docs.earnings), string(docs.deductions), string(docs.summary),
		s.GrossSalary, s.TotalDeductions, s.NetSalary, s.PaidAmount, s.UnpaidBalance, s.CarriedForwardToNext,
		record.Status, record.Locked, record.Notes, string(docs.revisions), record.CreatedAt, record.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "payroll_records") {
			return payroll.PayrollRecord{}, payroll.ErrPayrollRecordAlreadyExists
		}
		return payroll.PayrollRecord{}, fmt.Errorf("failed to create payroll record: %w", err)
	}
	return record, nil
}

func (r *payrollRepository) GetPayrollRecordByID(ctx context.Context, id string, companyID string) (payroll.PayrollRecord, error) {
	query := `
		SELECT ` + payrollRecordColumns + `
		FROM payroll_records pr
		JOIN employees e ON pr.employee_id = e.id
		WHERE pr.id = ? AND pr.company_id = ?
	`

	rec, err := scanPayrollRecord(GetQuerier(ctx, r.db).QueryRowContext(ctx, query, id, companyID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return payroll.PayrollRecord{}, payroll.ErrPayrollRecordNotFound
		}
		return payroll.PayrollRecord{}, fmt.Errorf("failed to get payroll record: %w", err)
	}
	return rec, nil
}

// GetPayrollRecordByIDForUpdate needs no row lock: the database runs on a
// single connection, so a transaction already excludes every other writer.
func (r *payrollRepository) GetPayrollRecordByIDForUpdate(ctx context.Context, id string, companyID string) (payroll.PayrollRecord, error) {
	return r.GetPayrollRecordByID(ctx, id, companyID)
}

func (r *payrollRepository) GetPayrollRecordByEmployeePeriod(ctx context.Context, employeeID string, month, year int, companyID string) (payroll.PayrollRecord, error) {
	query := `
		SELECT ` + payrollRecordColumns + `
		FROM payroll_records pr
		JOIN employees e ON pr.employee_id = e.id
		WHERE pr.employee_id = ? AND pr.period_month = ? AND pr.period_year = ? AND pr.company_id = ?
	`

	rec, err := scanPayrollRecord(GetQuerier(ctx, r.db).QueryRowContext(ctx, query, employeeID, month, year, companyID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
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
		WHERE pr.company_id = ?
	`
	args := []any{companyID}

	if filter.PeriodMonth != nil {
		baseQuery += " AND pr.period_month = ?"
		args = append(args, *filter.PeriodMonth)
	}
	if filter.PeriodYear != nil {
		baseQuery += " AND pr.period_year = ?"
		args = append(args, *filter.PeriodYear)
	}
	if filter.Status != nil {
		baseQuery += " AND pr.status = ?"
		args = append(args, *filter.Status)
	}
	if filter.EmployeeID != nil {
		baseQuery += " AND pr.employee_id = ?"
		args = append(args, *filter.EmployeeID)
	}

	var totalCount int64
	if err := q.QueryRowContext(ctx, "SELECT COUNT(*) "+baseQuery, args...).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("failed to count payroll records: %w", err)
	}

	allowedColumns := map[string]string{
		"created_at":    "pr.created_at",
		"period":        "pr.period_year, pr.period_month",
		"employee_name": "e.full_name",
		"net_salary":    "CAST(pr.net_salary AS REAL)",
		"status":        "pr.status",
	}
	sortColumn, ok := allowedColumns[filter.SortBy]
	if !ok {
		sortColumn = "pr.created_at"
	}
	sortOrder := "DESC"
	if filter.SortOrder == "asc" {
		sortOrder = "ASC"
	}

	filter.Normalize()
	offset := (filter.Page - 1) * filter.Limit

	selectQuery := fmt.Sprintf(`SELECT %s %s ORDER BY %s %s, pr.id LIMIT ? OFFSET ?`,
		payrollRecordColumns, baseQuery, sortColumn, sortOrder)
	args = append(args, filter.Limit, offset)

	rows, err := q.QueryContext(ctx, selectQuery, args...)
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
	query := `
		SELECT ` + payrollRecordColumns + `
		FROM payroll_records pr
		JOIN employees e ON pr.employee_id = e.id
		WHERE pr.employee_id = ? AND pr.company_id = ? AND pr.paid_at IS NULL
		ORDER BY pr.period_year, pr.period_month
	`

	rows, err := GetQuerier(ctx, r.db).QueryContext(ctx, query, employeeID, companyID)
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

func (r *payrollRepository) UpdatePayrollRecord(ctx context.Context, record payroll.PayrollRecord) error {
	docs, err := encodeRecord(record)
	if err != nil {
		return err
	}

	query := `
		UPDATE payroll_records SET
			compensation = ?, attendance = ?, earnings = ?, deductions = ?, summary = ?,
			gross_salary = ?, total_deductions = ?, net_salary = ?, paid_amount = ?,
			unpaid_balance = ?, carried_forward_to_next = ?,
			status = ?, locked = ?, notes = ?, revisions = ?,
			submitted_by = ?, submitted_at = ?, approved_by = ?, approved_at = ?,
			paid_by = ?, paid_at = ?, locked_by = ?, locked_at = ?,
			updated_at = ?
		WHERE id = ? AND company_id = ?
	`

	s := record.Summary
	res, err := GetQuerier(ctx, r.db).ExecContext(ctx, query,
		string(docs.compensation), string(docs.attendance), string(docs.earnings), string(docs.deductions), string(docs.summary),
		s.GrossSalary, s.TotalDeductions, s.NetSalary, s.PaidAmount,
		s.UnpaidBalance, s.CarriedForwardToNext,
		record.Status, record.Locked, record.Notes, string(docs.revisions),
		record.SubmittedBy, record.SubmittedAt, record.ApprovedBy, record.ApprovedAt,
		record.PaidBy, record.PaidAt, record.LockedBy, record.LockedAt,
		time.Now().UTC(),
		record.ID, record.CompanyID,
	)
	if err != nil {
		return fmt.Errorf("failed to update payroll record: %w", err)
	}
	return requireAffected(res, payroll.ErrPayrollRecordNotFound)
}

func (r *payrollRepository) DeletePayrollRecord(ctx context.Context, id string, companyID string) error {
	res, err := GetQuerier(ctx, r.db).ExecContext(ctx, `DELETE FROM payroll_records WHERE id = ? AND company_id = ?`, id, companyID)
	if err != nil {
		return fmt.Errorf("failed to delete payroll record: %w", err)
	}
	return requireAffected(res, payroll.ErrPayrollRecordNotFound)
}

func (r *payrollRepository) CountProcessedForPeriod(ctx context.Context, employeeID string, month, year int, companyID string) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM payroll_records
		WHERE employee_id = ? AND period_month = ? AND period_year = ? AND company_id = ? AND status <> 'draft'
	`

	var count int
	if err := GetQuerier(ctx, r.db).QueryRowContext(ctx, query, employeeID, month, year, companyID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count processed payroll records: %w", err)
	}
	return count, nil
}

// GetPayrollSummary sums in Go: SQLite would add the TEXT money columns as floats.
func (r *payrollRepository) GetPayrollSummary(ctx context.Context, companyID string, month, year int) (payroll.PayrollSummaryResponse, error) {
	query := `
		SELECT status, gross_salary, total_deductions, net_salary, paid_amount, unpaid_balance, carried_forward_to_next
		FROM payroll_records
		WHERE company_id = ? AND period_month = ? AND period_year = ?
	`

	rows, err := GetQuerier(ctx, r.db).QueryContext(ctx, query, companyID, month, year)
	if err != nil {
		return payroll.PayrollSummaryResponse{}, fmt.Errorf("failed to get payroll summary: %w", err)
	}
	defer rows.Close()

	summary := payroll.PayrollSummaryResponse{
		PeriodMonth:         month,
		PeriodYear:          year,
		TotalGrossSalary:    decimal.Zero,
		TotalDeductions:     decimal.Zero,
		TotalNetSalary:      decimal.Zero,
		TotalPaid:           decimal.Zero,
		TotalUnpaid:         decimal.Zero,
		TotalCarriedForward: decimal.Zero,
	}
	for rows.Next() {
		var status payroll.PayrollStatus
		var gross, deductions, net, paid, unpaid, carried decimal.Decimal
		if err := rows.Scan(&status, &gross, &deductions, &net, &paid, &unpaid, &carried); err != nil {
			return payroll.PayrollSummaryResponse{}, fmt.Errorf("failed to scan payroll summary row: %w", err)
		}

		summary.TotalEmployees++
		switch status {
		case payroll.PayrollStatusDraft:
			summary.DraftCount++
		case payroll.PayrollStatusPending:
			summary.PendingCount++
		case payroll.PayrollStatusApproved:
			summary.ApprovedCount++
		case payroll.PayrollStatusPaid:
			summary.PaidCount++
		case payroll.PayrollStatusLocked:
			summary.LockedCount++
		}
		summary.TotalGrossSalary = summary.TotalGrossSalary.Add(gross)
		summary.TotalDeductions = summary.TotalDeductions.Add(deductions)
		summary.TotalNetSalary = summary.TotalNetSalary.Add(net)
		summary.TotalPaid = summary.TotalPaid.Add(paid)
		summary.TotalUnpaid = summary.TotalUnpaid.Add(unpaid)
		summary.TotalCarriedForward = summary.TotalCarriedForward.Add(carried)
	}
	if err := rows.Err(); err != nil {
		return payroll.PayrollSummaryResponse{}, fmt.Errorf("failed to iterate payroll summary: %w", err)
	}
	return summary, nil
}
