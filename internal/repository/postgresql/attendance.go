package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type attendanceRepositoryImpl struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepositoryImpl{db: db}
}

const attendanceColumns = `id, company_id, employee_id, date, status, check_in, check_out,
	total_hours, regular_hours, overtime_hours, late_minutes, excused, notes, created_at, updated_at`

func scanAttendance(row pgx.Row) (attendance.Entry, error) {
	var e attendance.Entry
	err := row.Scan(
		&e.ID, &e.CompanyID, &e.EmployeeID, &e.Date, &e.Status, &e.CheckIn, &e.CheckOut,
		&e.TotalHours, &e.RegularHours, &e.OvertimeHours, &e.LateMinutes, &e.Excused, &e.Notes,
		&e.CreatedAt, &e.UpdatedAt,
	)
	return e, err
}

// Create implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) Create(ctx context.Context, entry attendance.Entry) (attendance.Entry, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO attendances (
			id, company_id, employee_id, date, status, check_in, check_out,
			total_hours, regular_hours, overtime_hours, late_minutes, excused, notes, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING ` + attendanceColumns

	created, err := scanAttendance(q.QueryRow(ctx, query,
		entry.ID, entry.CompanyID, entry.EmployeeID, entry.Date, entry.Status, entry.CheckIn, entry.CheckOut,
		entry.TotalHours, entry.RegularHours, entry.OvertimeHours, entry.LateMinutes, entry.Excused, entry.Notes,
		entry.CreatedAt, entry.UpdatedAt,
	))
	if err != nil {
		if isUniqueViolation(err, "uk_attendance_employee_date") {
			return attendance.Entry{}, attendance.ErrAttendanceAlreadyRecorded
		}
		return attendance.Entry{}, fmt.Errorf("failed to create attendance: %w", err)
	}
	return created, nil
}

// ListByEmployeePeriod implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) ListByEmployeePeriod(ctx context.Context, employeeID string, from, to time.Time, companyID string) ([]attendance.Entry, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + attendanceColumns + `
		FROM attendances
		WHERE employee_id = $1 AND company_id = $2 AND date BETWEEN $3 AND $4
		ORDER BY date
	`

	rows, err := q.Query(ctx, query, employeeID, companyID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendances: %w", err)
	}
	defer rows.Close()

	entries := []attendance.Entry{}
	for rows.Next() {
		e, err := scanAttendance(rows)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				break
			}
			return nil, fmt.Errorf("failed to scan attendance: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
