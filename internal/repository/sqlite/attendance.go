package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/attendance"
)

type attendanceRepository struct {
	db *sql.DB
}

func NewAttendanceRepository(db *sql.DB) attendance.AttendanceRepository {
	return &attendanceRepository{db: db}
}

func (r *attendanceRepository) Create(ctx context.Context, entry attendance.Entry) (attendance.Entry, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO attendances (
			id, company_id, employee_id, date, status, check_in, check_out,
			total_hours, regular_hours, overtime_hours, late_minutes, excused, notes, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := q.ExecContext(ctx, query,
		entry.ID, entry.CompanyID, entry.EmployeeID, entry.Date.UTC(), entry.Status, entry.CheckIn, entry.CheckOut,
		entry.TotalHours, entry.RegularHours, entry.OvertimeHours, entry.LateMinutes, entry.Excused, entry.Notes,
		entry.CreatedAt, entry.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "attendances") {
			return attendance.Entry{}, attendance.ErrAttendanceAlreadyRecorded
		}
		return attendance.Entry{}, fmt.Errorf("failed to create attendance: %w", err)
	}
	return entry, nil
}

func (r *attendanceRepository) ListByEmployeePeriod(ctx context.Context, employeeID string, from, to time.Time, companyID string) ([]attendance.Entry, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, company_id, employee_id, date, status, check_in, check_out,
			total_hours, regular_hours, overtime_hours, late_minutes, excused, notes, created_at, updated_at
		FROM attendances
		WHERE employee_id = ? AND company_id = ? AND date BETWEEN ? AND ?
		ORDER BY date
	`

	rows, err := q.QueryContext(ctx, query, employeeID, companyID, from.UTC(), to.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to list attendances: %w", err)
	}
	defer rows.Close()

	entries := []attendance.Entry{}
	for rows.Next() {
		var e attendance.Entry
		if err := rows.Scan(
			&e.ID, &e.CompanyID, &e.EmployeeID, &e.Date, &e.Status, &e.CheckIn, &e.CheckOut,
			&e.TotalHours, &e.RegularHours, &e.OvertimeHours, &e.LateMinutes, &e.Excused, &e.Notes,
			&e.CreatedAt, &e.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan attendance: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
