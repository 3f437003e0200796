package advance

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/advance"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/database"
	"github.com/go-chi/jwtauth/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type AdvanceServiceImpl struct {
	transactor    database.Transactor
	advanceRepo   advance.AdvanceRepository
	employeeRepo  employee.EmployeeRepository
	currencyScale int32
	now           func() time.Time
}

func NewAdvanceService(
	transactor database.Transactor,
	advanceRepo advance.AdvanceRepository,
	employeeRepo employee.EmployeeRepository,
	currencyScale int32,
) advance.AdvanceService {
	return &AdvanceServiceImpl{
		transactor:    transactor,
		advanceRepo:   advanceRepo,
		employeeRepo:  employeeRepo,
		currencyScale: currencyScale,
		now:           time.Now,
	}
}

// Helper to get company_id and user_id from JWT context
func getClaimsFromContext(ctx context.Context) (companyID, userID string, err error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return "", "", fmt.Errorf("%w: %w", user.ErrInvalidToken, err)
	}

	companyID, ok := claims["company_id"].(string)
	if !ok || companyID == "" {
		return "", "", fmt.Errorf("%w: company_id claim is missing or invalid", user.ErrCompanyIDRequired)
	}

	userID, _ = claims["user_id"].(string)

	return companyID, userID, nil
}

// DefaultInstallment splits amount evenly over count months, rounded up to scale
// so the plan never leaves a tail.
func DefaultInstallment(amount decimal.Decimal, count int, scale int32) decimal.Decimal {
	if count <= 0 {
		return amount
	}
	return amount.Div(decimal.NewFromInt(int64(count))).RoundCeil(scale)
}

func (s *AdvanceServiceImpl) RequestAdvance(ctx context.Context, req advance.CreateAdvanceRequest) (advance.AdvanceResponse, error) {
	if err := req.Validate(); err != nil {
		return advance.AdvanceResponse{}, err
	}

	companyID, userID, err := getClaimsFromContext(ctx)
	if err != nil {
		return advance.AdvanceResponse{}, err
	}

	emp, err := s.employeeRepo.GetByID(ctx, req.EmployeeID, companyID)
	if err != nil {
		return advance.AdvanceResponse{}, err
	}
	if !emp.IsActive() {
		return advance.AdvanceResponse{}, employee.ErrEmployeeNotActive
	}

	id, err := uuid.NewV7()
	if err != nil {
		return advance.AdvanceResponse{}, fmt.Errorf("failed to generate advance id: %w", err)
	}

	amount := req.Amount.Round(s.currencyScale)
	perMonth := DefaultInstallment(amount, req.InstallmentCount, s.currencyScale)
	if req.AmountPerMonth != nil {
		perMonth = req.AmountPerMonth.Round(s.currencyScale)
	}

	var requestedBy *string
	if userID != "" {
		requestedBy = &userID
	}

	now := s.now()
	created, err := s.advanceRepo.Create(ctx, advance.Advance{
		ID:             id.String(),
		CompanyID:      companyID,
		EmployeeID:     req.EmployeeID,
		Reason:         req.Reason,
		OriginalAmount: amount,
		RepaymentPlan: advance.RepaymentPlan{
			InstallmentCount: req.InstallmentCount,
			AmountPerMonth:   perMonth,
		},
		TotalPaid:        decimal.Zero,
		RemainingAmount:  amount,
		Status:           advance.StatusPending,
		DeductionHistory: []advance.DeductionEntry{},
		RequestedBy:      requestedBy,
		CreatedAt:        now,
		UpdatedAt:        now,
	})
	if err != nil {
		return advance.AdvanceResponse{}, err
	}

	slog.Info("advance requested", "company_id", companyID, "advance_id", created.ID, "employee_id", created.EmployeeID, "amount", amount.String())
	return mapToResponse(created), nil
}

func (s *AdvanceServiceImpl) GetAdvance(ctx context.Context, id string) (advance.AdvanceResponse, error) {
	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return advance.AdvanceResponse{}, err
	}

	adv, err := s.advanceRepo.GetByID(ctx, id, companyID)
	if err != nil {
		return advance.AdvanceResponse{}, err
	}
	return mapToResponse(adv), nil
}

func (s *AdvanceServiceImpl) ListAdvances(ctx context.Context, filter advance.AdvanceFilter) ([]advance.AdvanceResponse, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return nil, err
	}

	advances, err := s.advanceRepo.List(ctx, companyID, filter)
	if err != nil {
		return nil, err
	}

	responses := make([]advance.AdvanceResponse, 0, len(advances))
	for _, adv := range advances {
		responses = append(responses, mapToResponse(adv))
	}
	return responses, nil
}

func (s *AdvanceServiceImpl) ApproveAdvance(ctx context.Context, id string) (advance.AdvanceResponse, error) {
	return s.update(ctx, id, func(adv *advance.Advance, actor string, now time.Time) error {
		return adv.Approve(actor, now)
	})
}

func (s *AdvanceServiceImpl) RejectAdvance(ctx context.Context, req advance.RejectAdvanceRequest) (advance.AdvanceResponse, error) {
	if err := req.Validate(); err != nil {
		return advance.AdvanceResponse{}, err
	}
	return s.update(ctx, req.ID, func(adv *advance.Advance, _ string, _ time.Time) error {
		return adv.Reject(req.Reason)
	})
}

func (s *AdvanceServiceImpl) DisburseAdvance(ctx context.Context, id string) (advance.AdvanceResponse, error) {
	return s.update(ctx, id, func(adv *advance.Advance, _ string, now time.Time) error {
		return adv.Disburse(now)
	})
}

func (s *AdvanceServiceImpl) update(ctx context.Context, id string, change func(adv *advance.Advance, actor string, now time.Time) error) (advance.AdvanceResponse, error) {
	companyID, userID, err := getClaimsFromContext(ctx)
	if err != nil {
		return advance.AdvanceResponse{}, err
	}

	var updated advance.Advance
	err = s.transactor.WithinTx(ctx, func(txCtx context.Context) error {
		adv, err := s.advanceRepo.GetByIDForUpdate(txCtx, id, companyID)
		if err != nil {
			return err
		}

		now := s.now()
		if err := change(&adv, userID, now); err != nil {
			return err
		}
		adv.UpdatedAt = now

		if err := s.advanceRepo.Update(txCtx, adv); err != nil {
			return err
		}
		updated = adv
		return nil
	})
	if err != nil {
		return advance.AdvanceResponse{}, err
	}

	slog.Info("advance updated", "company_id", companyID, "advance_id", id, "status", string(updated.Status))
	return mapToResponse(updated), nil
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}

func mapToResponse(adv advance.Advance) advance.AdvanceResponse {
	history := adv.DeductionHistory
	if history == nil {
		history = []advance.DeductionEntry{}
	}
	return advance.AdvanceResponse{
		ID:               adv.ID,
		EmployeeID:       adv.EmployeeID,
		Reason:           adv.Reason,
		OriginalAmount:   adv.OriginalAmount,
		RepaymentPlan:    adv.RepaymentPlan,
		TotalPaid:        adv.TotalPaid,
		RemainingAmount:  adv.RemainingAmount,
		Status:           string(adv.Status),
		DeductionHistory: history,
		ApprovedBy:       adv.ApprovedBy,
		ApprovedAt:       formatTime(adv.ApprovedAt),
		RejectedReason:   adv.RejectedReason,
		DisbursedAt:      formatTime(adv.DisbursedAt),
		CreatedAt:        adv.CreatedAt.Format(time.RFC3339),
	}
}
