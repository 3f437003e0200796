package payroll

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/database"
	"github.com/google/uuid"
)

type DeductionServiceImpl struct {
	transactor    database.Transactor
	deductionRepo payroll.DeductionRepository
	payrollRepo   payroll.PayrollRepository
	employeeRepo  employee.EmployeeRepository
	now           func() time.Time
}

func NewDeductionService(
	transactor database.Transactor,
	deductionRepo payroll.DeductionRepository,
	payrollRepo payroll.PayrollRepository,
	employeeRepo employee.EmployeeRepository,
) payroll.DeductionService {
	return &DeductionServiceImpl{
		transactor:    transactor,
		deductionRepo: deductionRepo,
		payrollRepo:   payrollRepo,
		employeeRepo:  employeeRepo,
		now:           time.Now,
	}
}

func (s *DeductionServiceImpl) CreateDeduction(ctx context.Context, req payroll.CreateDeductionRequest) (payroll.DeductionResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.DeductionResponse{}, err
	}
	deductionType := payroll.DeductionType(req.Type)
	if !deductionType.IsManual() {
		return payroll.DeductionResponse{}, payroll.ErrComputedDeductionType
	}

	companyID, userID, err := getClaimsFromContext(ctx)
	if err != nil {
		return payroll.DeductionResponse{}, err
	}

	var created payroll.Deduction
	err = s.transactor.WithinTx(ctx, func(txCtx context.Context) error {
		if _, err := s.employeeRepo.GetByID(txCtx, req.EmployeeID, companyID); err != nil {
			return err
		}
		if err := s.ensurePeriodOpen(txCtx, req.EmployeeID, req.PeriodMonth, req.PeriodYear, companyID); err != nil {
			return err
		}

		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate deduction id: %w", err)
		}

		now := s.now()
		var createdBy *string
		if userID != "" {
			createdBy = &userID
		}
		created, err = s.deductionRepo.Create(txCtx, payroll.Deduction{
			ID:          id.String(),
			CompanyID:   companyID,
			EmployeeID:  req.EmployeeID,
			Type:        deductionType,
			Amount:      req.Amount,
			Reason:      req.Reason,
			PeriodMonth: req.PeriodMonth,
			PeriodYear:  req.PeriodYear,
			CreatedBy:   createdBy,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
		return err
	})
	if err != nil {
		return payroll.DeductionResponse{}, err
	}

	return mapToDeductionResponse(created), nil
}

func (s *DeductionServiceImpl) ListDeductions(ctx context.Context, req payroll.EmployeePeriodRequest) ([]payroll.DeductionResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return nil, err
	}

	deductions, err := s.deductionRepo.ListByEmployeePeriod(ctx, req.EmployeeID, req.PeriodMonth, req.PeriodYear, companyID)
	if err != nil {
		return nil, err
	}

	responses := make([]payroll.DeductionResponse, 0, len(deductions))
	for _, d := range deductions {
		responses = append(responses, mapToDeductionResponse(d))
	}
	return responses, nil
}

func (s *DeductionServiceImpl) DeleteDeduction(ctx context.Context, id string) error {
	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return err
	}

	return s.transactor.WithinTx(ctx, func(txCtx context.Context) error {
		d, err := s.deductionRepo.GetByID(txCtx, id, companyID)
		if err != nil {
			return err
		}
		if err := s.ensurePeriodOpen(txCtx, d.EmployeeID, d.PeriodMonth, d.PeriodYear, companyID); err != nil {
			return err
		}
		return s.deductionRepo.Delete(txCtx, id, companyID)
	})
}

// ensurePeriodOpen refuses changes once the period's record has left draft.
func (s *DeductionServiceImpl) ensurePeriodOpen(ctx context.Context, employeeID string, month, year int, companyID string) error {
	processed, err := s.payrollRepo.CountProcessedForPeriod(ctx, employeeID, month, year, companyID)
	if err != nil {
		return err
	}
	if processed > 0 {
		return payroll.ErrDeductionPeriodClosed
	}
	return nil
}

func mapToDeductionResponse(d payroll.Deduction) payroll.DeductionResponse {
	return payroll.DeductionResponse{
		ID:          d.ID,
		EmployeeID:  d.EmployeeID,
		Type:        string(d.Type),
		Amount:      d.Amount,
		Reason:      d.Reason,
		PeriodMonth: d.PeriodMonth,
		PeriodYear:  d.PeriodYear,
		CreatedBy:   d.CreatedBy,
		CreatedAt:   d.CreatedAt.Format(time.RFC3339),
	}
}
