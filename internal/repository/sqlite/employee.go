package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/employee"
)

type employeeRepository struct {
	db *sql.DB
}

func NewEmployeeRepository(db *sql.DB) employee.EmployeeRepository {
	return &employeeRepository{db: db}
}

const employeeColumns = `id, company_id, employee_code, full_name, employment_status, compensation, created_at, updated_at`

func scanEmployee(row rowScanner) (employee.Employee, error) {
	var emp employee.Employee
	var compensation []byte
	if err := row.Scan(
		&emp.ID, &emp.CompanyID, &emp.EmployeeCode, &emp.FullName, &emp.EmploymentStatus,
		&compensation, &emp.CreatedAt, &emp.UpdatedAt,
	); err != nil {
		return employee.Employee{}, err
	}
	if err := json.Unmarshal(compensation, &emp.Compensation); err != nil {
		return employee.Employee{}, fmt.Errorf("failed to decode compensation of employee %s: %w", emp.ID, err)
	}
	return emp, nil
}

func (r *employeeRepository) GetByID(ctx context.Context, id string, companyID string) (employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + employeeColumns + ` FROM employees WHERE id = ? AND company_id = ?`

	emp, err := scanEmployee(q.QueryRowContext(ctx, query, id, companyID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee with id %s: %w", id, err)
	}
	return emp, nil
}

func (r *employeeRepository) Create(ctx context.Context, newEmployee employee.Employee) (employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	compensation, err := json.Marshal(newEmployee.Compensation)
	if err != nil {
		return employee.Employee{}, fmt.Errorf("failed to encode compensation: %w", err)
	}

	query := `
		INSERT INTO employees (id, company_id, employee_code, full_name, employment_status, compensation, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = q.ExecContext(ctx, query,
		newEmployee.ID, newEmployee.CompanyID, newEmployee.EmployeeCode, newEmployee.FullName,
		newEmployee.EmploymentStatus, string(compensation), newEmployee.CreatedAt, newEmployee.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "employees") {
			return employee.Employee{}, employee.ErrEmployeeCodeExists
		}
		return employee.Employee{}, fmt.Errorf("failed to create employee: %w", err)
	}
	return newEmployee, nil
}

func (r *employeeRepository) List(ctx context.Context, companyID string, status *employee.EmploymentStatus) ([]employee.Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees WHERE company_id = ?`
	args := []any{companyID}
	if status != nil {
		query += ` AND employment_status = ?`
		args = append(args, *status)
	}
	query += ` ORDER BY employee_code`

	return r.queryEmployees(ctx, query, args...)
}

func (r *employeeRepository) GetActiveByCompanyID(ctx context.Context, companyID string) ([]employee.Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees WHERE company_id = ? AND employment_status = ? ORDER BY employee_code`
	return r.queryEmployees(ctx, query, companyID, employee.EmploymentStatusActive)
}

func (r *employeeRepository) queryEmployees(ctx context.Context, query string, args ...any) ([]employee.Employee, error) {
	rows, err := GetQuerier(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	defer rows.Close()

	employees := []employee.Employee{}
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, emp)
	}
	return employees, rows.Err()
}

func (r *employeeRepository) UpdateCompensation(ctx context.Context, id string, companyID string, profile employee.CompensationProfile) error {
	q := GetQuerier(ctx, r.db)

	compensation, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to encode compensation: %w", err)
	}

	res, err := q.ExecContext(ctx,
		`UPDATE employees SET compensation = ?, updated_at = ? WHERE id = ? AND company_id = ?`,
		string(compensation), time.Now().UTC(), id, companyID,
	)
	if err != nil {
		return fmt.Errorf("failed to update compensation for employee with id %s: %w", id, err)
	}
	return requireAffected(res, employee.ErrEmployeeNotFound)
}

// requireAffected maps an update or delete that touched no row to notFound.
func requireAffected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}
