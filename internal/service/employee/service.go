package employee

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/validator"
	"github.com/go-chi/jwtauth/v5"
	"github.com/google/uuid"
)

type EmployeeServiceImpl struct {
	employeeRepo employee.EmployeeRepository
}

func NewEmployeeService(employeeRepo employee.EmployeeRepository) employee.EmployeeService {
	return &EmployeeServiceImpl{employeeRepo: employeeRepo}
}

// Helper function to extract claims from context
func getCompanyFromContext(ctx context.Context) (string, error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %w", user.ErrInvalidToken, err)
	}

	companyID, ok := claims["company_id"].(string)
	if !ok || companyID == "" {
		return "", fmt.Errorf("%w: company_id claim is missing or invalid", user.ErrCompanyIDRequired)
	}
	return companyID, nil
}

func mapEmployeeToResponse(emp employee.Employee) employee.EmployeeResponse {
	return employee.EmployeeResponse{
		ID:               emp.ID,
		CompanyID:        emp.CompanyID,
		EmployeeCode:     emp.EmployeeCode,
		FullName:         emp.FullName,
		EmploymentStatus: string(emp.EmploymentStatus),
		Compensation:     emp.Compensation,
		CreatedAt:        emp.CreatedAt.Format(time.RFC3339),
		UpdatedAt:        emp.UpdatedAt.Format(time.RFC3339),
	}
}

func (s *EmployeeServiceImpl) CreateEmployee(ctx context.Context, req employee.CreateEmployeeRequest) (employee.EmployeeResponse, error) {
	if err := req.Validate(); err != nil {
		return employee.EmployeeResponse{}, err
	}

	companyID, err := getCompanyFromContext(ctx)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return employee.EmployeeResponse{}, fmt.Errorf("failed to generate employee id: %w", err)
	}

	now := time.Now()
	created, err := s.employeeRepo.Create(ctx, employee.Employee{
		ID:               id.String(),
		CompanyID:        companyID,
		EmployeeCode:     req.EmployeeCode,
		FullName:         req.FullName,
		EmploymentStatus: employee.EmploymentStatusActive,
		Compensation:     req.Compensation.ToProfile(),
		CreatedAt:        now,
		UpdatedAt:        now,
	})
	if err != nil {
		return employee.EmployeeResponse{}, err
	}

	slog.Info("employee created", "company_id", companyID, "employee_id", created.ID, "employment_type", string(created.Compensation.EmploymentType))
	return mapEmployeeToResponse(created), nil
}

func (s *EmployeeServiceImpl) GetEmployee(ctx context.Context, id string) (employee.EmployeeResponse, error) {
	companyID, err := getCompanyFromContext(ctx)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}

	emp, err := s.employeeRepo.GetByID(ctx, id, companyID)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}
	return mapEmployeeToResponse(emp), nil
}

func (s *EmployeeServiceImpl) ListEmployees(ctx context.Context, status *string) ([]employee.EmployeeResponse, error) {
	companyID, err := getCompanyFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var filter *employee.EmploymentStatus
	if status != nil && *status != "" {
		allowed := []string{string(employee.EmploymentStatusActive), string(employee.EmploymentStatusResigned), string(employee.EmploymentStatusTerminated)}
		if !validator.IsInSlice(*status, allowed) {
			return nil, validator.ValidationErrors{{Field: "status", Message: "must be one of: active resigned terminated"}}
		}
		st := employee.EmploymentStatus(*status)
		filter = &st
	}

	employees, err := s.employeeRepo.List(ctx, companyID, filter)
	if err != nil {
		return nil, err
	}

	responses := make([]employee.EmployeeResponse, 0, len(employees))
	for _, emp := range employees {
		responses = append(responses, mapEmployeeToResponse(emp))
	}
	return responses, nil
}

func (s *EmployeeServiceImpl) UpdateCompensation(ctx context.Context, req employee.UpdateCompensationRequest) (employee.EmployeeResponse, error) {
	if err := req.Validate(); err != nil {
		return employee.EmployeeResponse{}, err
	}

	companyID, err := getCompanyFromContext(ctx)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}

	if err := s.employeeRepo.UpdateCompensation(ctx, req.ID, companyID, req.Compensation.ToProfile()); err != nil {
		return employee.EmployeeResponse{}, err
	}

	emp, err := s.employeeRepo.GetByID(ctx, req.ID, companyID)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}

	slog.Info("employee compensation updated", "company_id", companyID, "employee_id", emp.ID)
	return mapEmployeeToResponse(emp), nil
}
