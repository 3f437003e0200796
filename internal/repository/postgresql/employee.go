package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type employeeRepositoryImpl struct {
	db *database.DB
}

func NewEmployeeRepository(db *database.DB) employee.EmployeeRepository {
	return &employeeRepositoryImpl{db: db}
}

const employeeColumns = `id, company_id, employee_code, full_name, employment_status, compensation, created_at, updated_at`

func scanEmployee(row pgx.Row) (employee.Employee, error) {
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

// GetByID implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) GetByID(ctx context.Context, id string, companyID string) (employee.Employee, error) {
	q := GetQuerier(ctx, e.db)

	query := `SELECT ` + employeeColumns + ` FROM employees WHERE id = $1 AND company_id = $2`

	emp, err := scanEmployee(q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee with id %s: %w", id, err)
	}
	return emp, nil
}

// Create implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) Create(ctx context.Context, newEmployee employee.Employee) (employee.Employee, error) {
	q := GetQuerier(ctx, e.db)

	compensation, err := json.Marshal(newEmployee.Compensation)
	if err != nil {
		return employee.Employee{}, fmt.Errorf("failed to encode compensation: %w", err)
	}

	query := `
		INSERT INTO employees (id, company_id, employee_code, full_name, employment_status, compensation, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + employeeColumns

	created, err := scanEmployee(q.QueryRow(ctx, query,
		newEmployee.ID, newEmployee.CompanyID, newEmployee.EmployeeCode, newEmployee.FullName,
		newEmployee.EmploymentStatus, compensation, newEmployee.CreatedAt, newEmployee.UpdatedAt,
	))
	if err != nil {
		if isUniqueViolation(err, "uk_employee_code") {
			return employee.Employee{}, employee.ErrEmployeeCodeExists
		}
		return employee.Employee{}, fmt.Errorf("failed to create employee: %w", err)
	}
	return created, nil
}

// List implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) List(ctx context.Context, companyID string, status *employee.EmploymentStatus) ([]employee.Employee, error) {
	q := GetQuerier(ctx, e.db)

	query := `SELECT ` + employeeColumns + ` FROM employees WHERE company_id = $1`
	args := []interface{}{companyID}
	if status != nil {
		query += ` AND employment_status = $2`
		args = append(args, *status)
	}
	query += ` ORDER BY employee_code`

	return e.queryEmployees(ctx, q, query, args...)
}

// GetActiveByCompanyID implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) GetActiveByCompanyID(ctx context.Context, companyID string) ([]employee.Employee, error) {
	q := GetQuerier(ctx, e.db)

	query := `
		SELECT ` + employeeColumns + `
		FROM employees
		WHERE company_id = $1 AND employment_status = $2
		ORDER BY employee_code
	`
	return e.queryEmployees(ctx, q, query, companyID, employee.EmploymentStatusActive)
}

func (e *employeeRepositoryImpl) queryEmployees(ctx context.Context, q database.Querier, query string, args ...interface{}) ([]employee.Employee, error) {
	rows, err := q.Query(ctx, query, args...)
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

// UpdateCompensation implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) UpdateCompensation(ctx context.Context, id string, companyID string, profile employee.CompensationProfile) error {
	q := GetQuerier(ctx, e.db)

	compensation, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to encode compensation: %w", err)
	}

	query := `
		UPDATE employees
		SET compensation = $1, updated_at = NOW()
		WHERE id = $2 AND company_id = $3
		RETURNING id
	`

	var updatedID string
	err = q.QueryRow(ctx, query, compensation, id, companyID).Scan(&updatedID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.ErrEmployeeNotFound
		}
		return fmt.Errorf("failed to update compensation for employee with id %s: %w", id, err)
	}
	return nil
}
