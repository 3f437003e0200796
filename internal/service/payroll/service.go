package payroll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/advance"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/validator"
	"github.com/go-chi/jwtauth/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PayrollServiceImpl struct {
	transactor     database.Transactor
	payrollRepo    payroll.PayrollRepository
	deductionRepo  payroll.DeductionRepository
	employeeRepo   employee.EmployeeRepository
	attendanceRepo attendance.AttendanceRepository
	advanceRepo    advance.AdvanceRepository
	calculator     *Calculator
	now            func() time.Time
}

func NewPayrollService(
	transactor database.Transactor,
	payrollRepo payroll.PayrollRepository,
	deductionRepo payroll.DeductionRepository,
	employeeRepo employee.EmployeeRepository,
	attendanceRepo attendance.AttendanceRepository,
	advanceRepo advance.AdvanceRepository,
	calculator *Calculator,
) payroll.PayrollService {
	return &PayrollServiceImpl{
		transactor:     transactor,
		payrollRepo:    payrollRepo,
		deductionRepo:  deductionRepo,
		employeeRepo:   employeeRepo,
		attendanceRepo: attendanceRepo,
		advanceRepo:    advanceRepo,
		calculator:     calculator,
		now:            time.Now,
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

// ========== GENERATION ==========

func (s *PayrollServiceImpl) GeneratePayroll(ctx context.Context, req payroll.GeneratePayrollRequest) (payroll.GeneratePayrollResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.GeneratePayrollResponse{}, err
	}

	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return payroll.GeneratePayrollResponse{}, err
	}

	employeeIDs := req.EmployeeIDs
	if len(employeeIDs) == 0 {
		employees, err := s.employeeRepo.GetActiveByCompanyID(ctx, companyID)
		if err != nil {
			return payroll.GeneratePayrollResponse{}, fmt.Errorf("failed to list active employees: %w", err)
		}
		for _, emp := range employees {
			employeeIDs = append(employeeIDs, emp.ID)
		}
	}

	result := payroll.GeneratePayrollResponse{
		Generated: []payroll.PayrollRecordResponse{},
		Skipped:   []payroll.SkippedEmployee{},
	}

	for _, employeeID := range employeeIDs {
		record, err := s.generate(ctx, companyID, employeeID, req.PeriodMonth, req.PeriodYear)
		if err != nil {
			if isSkippable(err) {
				slog.Warn("payroll generation skipped",
					"company_id", companyID,
					"employee_id", employeeID,
					"period", fmt.Sprintf("%02d/%d", req.PeriodMonth, req.PeriodYear),
					"reason", err.Error(),
				)
				result.Skipped = append(result.Skipped, payroll.SkippedEmployee{EmployeeID: employeeID, Reason: err.Error()})
				continue
			}
			return payroll.GeneratePayrollResponse{}, fmt.Errorf("failed to generate payroll for employee %s: %w", employeeID, err)
		}
		result.Generated = append(result.Generated, mapToRecordResponse(record))
	}

	return result, nil
}

func isSkippable(err error) bool {
	return errors.Is(err, payroll.ErrPayrollRecordAlreadyExists) ||
		errors.Is(err, payroll.ErrEmployeeNotActive) ||
		errors.Is(err, employee.ErrEmployeeNotFound) ||
		errors.Is(err, employee.ErrInvalidEmploymentType)
}

func (s *PayrollServiceImpl) GenerateEmployeePayroll(ctx context.Context, req payroll.EmployeePeriodRequest) (payroll.PayrollRecordResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.PayrollRecordResponse{}, err
	}

	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return payroll.PayrollRecordResponse{}, err
	}

	record, err := s.generate(ctx, companyID, req.EmployeeID, req.PeriodMonth, req.PeriodYear)
	if err != nil {
		return payroll.PayrollRecordResponse{}, err
	}

	return mapToRecordResponse(record), nil
}

func (s *PayrollServiceImpl) PreviewPayroll(ctx context.Context, req payroll.EmployeePeriodRequest) (payroll.PayrollRecordResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.PayrollRecordResponse{}, err
	}

	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return payroll.PayrollRecordResponse{}, err
	}

	calc, emp, err := s.calculate(ctx, companyID, req.EmployeeID, req.PeriodMonth, req.PeriodYear)
	if err != nil {
		return payroll.PayrollRecordResponse{}, err
	}

	record := calc.NewRecord("", companyID)
	record.EmployeeName = &emp.FullName
	record.EmployeeCode = &emp.EmployeeCode
	return mapToRecordResponse(record), nil
}

// generate calculates and stores one record inside a transaction.
func (s *PayrollServiceImpl) generate(ctx context.Context, companyID, employeeID string, month, year int) (payroll.PayrollRecord, error) {
	var created payroll.PayrollRecord

	err := s.transactor.WithinTx(ctx, func(txCtx context.Context) error {
		_, err := s.payrollRepo.GetPayrollRecordByEmployeePeriod(txCtx, employeeID, month, year, companyID)
		if err == nil {
			return payroll.ErrPayrollRecordAlreadyExists
		}
		if !errors.Is(err, payroll.ErrPayrollRecordNotFound) {
			return err
		}

		calc, emp, err := s.calculate(txCtx, companyID, employeeID, month, year)
		if err != nil {
			return err
		}

		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate payroll record id: %w", err)
		}

		record := calc.NewRecord(id.String(), companyID)
		now := s.now()
		record.CreatedAt = now
		record.UpdatedAt = now

		created, err = s.payrollRepo.CreatePayrollRecord(txCtx, record)
		if err != nil {
			return err
		}
		created.EmployeeName = &emp.FullName
		created.EmployeeCode = &emp.EmployeeCode
		return nil
	})
	if err != nil {
		return payroll.PayrollRecord{}, err
	}

	slog.Info("payroll record generated",
		"company_id", companyID,
		"payroll_record_id", created.ID,
		"employee_id", employeeID,
		"period", fmt.Sprintf("%02d/%d", month, year),
		"net_salary", created.Summary.NetSalary.String(),
		"carried_forward_to_next", created.Summary.CarriedForwardToNext.String(),
	)
	return created, nil
}

// calculate loads every input of one employee-month and runs the engine.
func (s *PayrollServiceImpl) calculate(ctx context.Context, companyID, employeeID string, month, year int) (payroll.Calculation, employee.Employee, error) {
	if !validator.IsValidPeriod(month, year) {
		return payroll.Calculation{}, employee.Employee{}, payroll.ErrInvalidPeriod
	}

	emp, err := s.employeeRepo.GetByID(ctx, employeeID, companyID)
	if err != nil {
		return payroll.Calculation{}, employee.Employee{}, err
	}
	if !emp.IsActive() {
		return payroll.Calculation{}, employee.Employee{}, payroll.ErrEmployeeNotActive
	}

	from, to := payroll.PeriodBounds(month, year)
	entries, err := s.attendanceRepo.ListByEmployeePeriod(ctx, employeeID, from, to, companyID)
	if err != nil {
		return payroll.Calculation{}, employee.Employee{}, fmt.Errorf("failed to load attendance: %w", err)
	}

	advances, err := s.advanceRepo.GetActiveByEmployee(ctx, employeeID, companyID)
	if err != nil {
		return payroll.Calculation{}, employee.Employee{}, fmt.Errorf("failed to load advances: %w", err)
	}
	unpaid, err := s.payrollRepo.ListUnpaidByEmployee(ctx, employeeID, companyID)
	if err != nil {
		return payroll.Calculation{}, employee.Employee{}, fmt.Errorf("failed to load unpaid payroll records: %w", err)
	}
	advances = ReserveUnpaid(advances, unpaid, month, year)

	manual, err := s.deductionRepo.ListByEmployeePeriod(ctx, employeeID, month, year, companyID)
	if err != nil {
		return payroll.Calculation{}, employee.Employee{}, fmt.Errorf("failed to load deductions: %w", err)
	}

	var carried []payroll.CarryforwardDetail
	prevMonth, prevYear := payroll.PreviousPeriod(month, year)
	previous, err := s.payrollRepo.GetPayrollRecordByEmployeePeriod(ctx, employeeID, prevMonth, prevYear, companyID)
	switch {
	case err == nil:
		carried = previous.Summary.CarryforwardDetails
	case !errors.Is(err, payroll.ErrPayrollRecordNotFound):
		return payroll.Calculation{}, employee.Employee{}, fmt.Errorf("failed to load previous payroll record: %w", err)
	}

	calc, err := s.calculator.Calculate(CalculationInput{
		EmployeeID:     employeeID,
		PeriodMonth:    month,
		PeriodYear:     year,
		Profile:        emp.Compensation,
		Attendance:     entries,
		Advances:       advances,
		Deductions:     manual,
		CarriedForward: carried,
	})
	if err != nil {
		logInvariant(err, companyID, employeeID, month, year)
		return payroll.Calculation{}, employee.Employee{}, err
	}

	return calc, emp, nil
}

func logInvariant(err error, companyID, employeeID string, month, year int) {
	var invariant *payroll.InvariantError
	if !errors.As(err, &invariant) {
		return
	}
	slog.Error("payroll invariant violated",
		"company_id", companyID,
		"employee_id", employeeID,
		"period", fmt.Sprintf("%02d/%d", month, year),
		"category", string(invariant.Category),
		"detail", invariant.Detail,
		"expected", invariant.Expected.String(),
		"actual", invariant.Actual.String(),
	)
}

// ========== RECORDS ==========

func (s *PayrollServiceImpl) GetPayrollRecord(ctx context.Context, id string) (payroll.PayrollRecordResponse, error) {
	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return payroll.PayrollRecordResponse{}, err
	}

	record, err := s.payrollRepo.GetPayrollRecordByID(ctx, id, companyID)
	if err != nil {
		return payroll.PayrollRecordResponse{}, err
	}

	return mapToRecordResponse(record), nil
}

func (s *PayrollServiceImpl) ListPayrollRecords(ctx context.Context, filter payroll.PayrollFilter) (payroll.ListPayrollRecordResponse, error) {
	if err := filter.Validate(); err != nil {
		return payroll.ListPayrollRecordResponse{}, err
	}
	filter.Normalize()

	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return payroll.ListPayrollRecordResponse{}, err
	}

	records, total, err := s.payrollRepo.ListPayrollRecords(ctx, companyID, filter)
	if err != nil {
		return payroll.ListPayrollRecordResponse{}, err
	}

	data := make([]payroll.PayrollRecordResponse, 0, len(records))
	for _, record := range records {
		data = append(data, mapToRecordResponse(record))
	}

	return payroll.ListPayrollRecordResponse{
		Data:       data,
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
	}, nil
}

func (s *PayrollServiceImpl) EditPayrollRecord(ctx context.Context, req payroll.EditPayrollRecordRequest) (payroll.PayrollRecordResponse, error) {
	if strings.TrimSpace(req.Reason) == "" {
		return payroll.PayrollRecordResponse{}, payroll.ErrRevisionReasonRequired
	}
	if err := req.Validate(); err != nil {
		return payroll.PayrollRecordResponse{}, err
	}

	companyID, userID, err := getClaimsFromContext(ctx)
	if err != nil {
		return payroll.PayrollRecordResponse{}, err
	}

	var updated payroll.PayrollRecord
	err = s.transactor.WithinTx(ctx, func(txCtx context.Context) error {
		record, err := s.payrollRepo.GetPayrollRecordByIDForUpdate(txCtx, req.ID, companyID)
		if err != nil {
			return err
		}
		if err := record.CanEdit(); err != nil {
			return err
		}

		now := s.now()
		earnings, notes, revisions := s.applyEdit(record, req, userID, now)
		if len(revisions) == 0 {
			return payroll.ErrNothingToEdit
		}

		earnings, deductions, summary, err := s.calculator.Reassess(earnings, record.Deductions, record.Summary)
		if err != nil {
			logInvariant(err, companyID, record.EmployeeID, record.PeriodMonth, record.PeriodYear)
			return err
		}
		if summary.NetSalary.LessThan(summary.PaidAmount) {
			return fmt.Errorf("%w: net %s, paid %s", payroll.ErrEditBelowPaidAmount, summary.NetSalary, summary.PaidAmount)
		}

		wasPaid := record.Status == payroll.PayrollStatusPaid
		if wasPaid {
			if err := s.reverseAdvanceDeductions(txCtx, record, now); err != nil {
				return err
			}
		}

		record.Earnings = earnings
		record.Deductions = deductions
		record.Summary = summary
		record.Notes = notes
		record.Revisions = append(record.Revisions, revisions...)
		record.ReopenAfterEdit()
		record.UpdatedAt = now

		if err := s.payrollRepo.UpdatePayrollRecord(txCtx, record); err != nil {
			return err
		}

		if wasPaid {
			slog.Warn("paid payroll record edited, advance deductions reversed until payment is confirmed again",
				"company_id", companyID,
				"payroll_record_id", record.ID,
				"paid_amount", record.Summary.PaidAmount.String(),
				"net_salary", record.Summary.NetSalary.String(),
			)
		}
		updated = record
		return nil
	})
	if err != nil {
		return payroll.PayrollRecordResponse{}, err
	}

	return mapToRecordResponse(updated), nil
}

// applyEdit returns the edited earnings and notes plus one revision per changed field.
func (s *PayrollServiceImpl) applyEdit(record payroll.PayrollRecord, req payroll.EditPayrollRecordRequest, actor string, now time.Time) (payroll.Earnings, *string, []payroll.Revision) {
	policy := s.calculator.Policy()
	earnings := record.Earnings
	var revisions []payroll.Revision

	revise := func(field, oldValue, newValue string) {
		revisions = append(revisions, payroll.Revision{
			Field:    field,
			OldValue: oldValue,
			NewValue: newValue,
			Reason:   req.Reason,
			EditedBy: actor,
			EditedAt: now,
		})
	}
	amount := func(field string, current decimal.Decimal, next *decimal.Decimal) decimal.Decimal {
		if next == nil {
			return current
		}
		value := policy.Round(*next)
		if !value.Equal(current) {
			revise(field, current.String(), value.String())
		}
		return value
	}

	earnings.Basic = amount("basic_salary", earnings.Basic, req.BasicSalary)
	earnings.Commission = amount("commission", earnings.Commission, req.Commission)
	earnings.Tips = amount("tips", earnings.Tips, req.Tips)

	allowances := map[payroll.AllowanceKind]decimal.Decimal{}
	for _, kind := range []payroll.AllowanceKind{payroll.AllowanceTransport, payroll.AllowanceFood, payroll.AllowanceHousing} {
		allowances[kind] = earnings.Allowance(kind)
	}
	allowances[payroll.AllowanceTransport] = amount("transport_allowance", allowances[payroll.AllowanceTransport], req.TransportAllowance)
	allowances[payroll.AllowanceFood] = amount("food_allowance", allowances[payroll.AllowanceFood], req.FoodAllowance)
	allowances[payroll.AllowanceHousing] = amount("housing_allowance", allowances[payroll.AllowanceHousing], req.HousingAllowance)

	earnings.Allowances = []payroll.AllowanceLine{}
	for _, kind := range []payroll.AllowanceKind{payroll.AllowanceTransport, payroll.AllowanceFood, payroll.AllowanceHousing} {
		if allowances[kind].IsPositive() {
			earnings.Allowances = append(earnings.Allowances, payroll.AllowanceLine{Kind: kind, Amount: allowances[kind]})
		}
	}

	if req.Bonuses != nil {
		bonuses := make([]payroll.BonusLine, 0, len(*req.Bonuses))
		for _, b := range *req.Bonuses {
			bonuses = append(bonuses, payroll.BonusLine{Label: b.Label, Amount: policy.Round(b.Amount)})
		}
		if oldValue, newValue := formatBonuses(earnings.Bonuses), formatBonuses(bonuses); oldValue != newValue {
			revise("bonuses", oldValue, newValue)
		}
		earnings.Bonuses = bonuses
	}

	notes := record.Notes
	if req.Notes != nil {
		oldValue := ""
		if record.Notes != nil {
			oldValue = *record.Notes
		}
		if oldValue != *req.Notes {
			revise("notes", oldValue, *req.Notes)
		}
		notes = req.Notes
	}

	return earnings, notes, revisions
}

func formatBonuses(lines []payroll.BonusLine) string {
	parts := make([]string, 0, len(lines))
	for _, b := range lines {
		parts = append(parts, b.Label+"="+b.Amount.String())
	}
	return strings.Join(parts, "; ")
}

func (s *PayrollServiceImpl) DeletePayrollRecord(ctx context.Context, id string) error {
	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return err
	}

	return s.transactor.WithinTx(ctx, func(txCtx context.Context) error {
		record, err := s.payrollRepo.GetPayrollRecordByIDForUpdate(txCtx, id, companyID)
		if err != nil {
			return err
		}
		if err := record.CanDelete(); err != nil {
			return err
		}
		return s.payrollRepo.DeletePayrollRecord(txCtx, id, companyID)
	})
}

// ========== WORKFLOW ==========

func (s *PayrollServiceImpl) SubmitPayrollRecord(ctx context.Context, id string) (payroll.PayrollRecordResponse, error) {
	return s.transition(ctx, id, func(r *payroll.PayrollRecord, actor string, now time.Time) error {
		return r.Submit(actor, now)
	})
}

func (s *PayrollServiceImpl) ApprovePayrollRecord(ctx context.Context, id string) (payroll.PayrollRecordResponse, error) {
	return s.transition(ctx, id, func(r *payroll.PayrollRecord, actor string, now time.Time) error {
		return r.Approve(actor, now)
	})
}

func (s *PayrollServiceImpl) LockPayrollRecord(ctx context.Context, id string) (payroll.PayrollRecordResponse, error) {
	resp, err := s.transition(ctx, id, func(r *payroll.PayrollRecord, actor string, now time.Time) error {
		return r.Lock(actor, now)
	})
	if err == nil {
		slog.Info("payroll record locked", "payroll_record_id", id)
	}
	return resp, err
}

func (s *PayrollServiceImpl) UnlockPayrollRecord(ctx context.Context, id string) (payroll.PayrollRecordResponse, error) {
	resp, err := s.transition(ctx, id, func(r *payroll.PayrollRecord, _ string, _ time.Time) error {
		return r.Unlock()
	})
	if err == nil {
		slog.Info("payroll record unlocked", "payroll_record_id", id, "status", resp.Status)
	}
	return resp, err
}

// transition loads a record, applies one workflow step and stores it.
func (s *PayrollServiceImpl) transition(ctx context.Context, id string, step func(r *payroll.PayrollRecord, actor string, now time.Time) error) (payroll.PayrollRecordResponse, error) {
	companyID, userID, err := getClaimsFromContext(ctx)
	if err != nil {
		return payroll.PayrollRecordResponse{}, err
	}

	var updated payroll.PayrollRecord
	err = s.transactor.WithinTx(ctx, func(txCtx context.Context) error {
		record, err := s.payrollRepo.GetPayrollRecordByIDForUpdate(txCtx, id, companyID)
		if err != nil {
			return err
		}

		now := s.now()
		if err := step(&record, userID, now); err != nil {
			return err
		}
		record.UpdatedAt = now

		if err := s.payrollRepo.UpdatePayrollRecord(txCtx, record); err != nil {
			return err
		}
		updated = record
		return nil
	})
	if err != nil {
		return payroll.PayrollRecordResponse{}, err
	}

	return mapToRecordResponse(updated), nil
}

// PayPayrollRecord records a (partial) payment. When the record becomes fully
// paid, every advance recovered through it gets a deduction-history entry in
// the same transaction.
func (s *PayrollServiceImpl) PayPayrollRecord(ctx context.Context, req payroll.PayPayrollRequest) (payroll.PayrollRecordResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.PayrollRecordResponse{}, err
	}

	companyID, userID, err := getClaimsFromContext(ctx)
	if err != nil {
		return payroll.PayrollRecordResponse{}, err
	}

	var updated payroll.PayrollRecord
	err = s.transactor.WithinTx(ctx, func(txCtx context.Context) error {
		record, err := s.payrollRepo.GetPayrollRecordByIDForUpdate(txCtx, req.ID, companyID)
		if err != nil {
			return err
		}

		now := s.now()
		becamePaid, err := record.ApplyPayment(req.Amount, userID, now)
		if err != nil {
			return err
		}

		if becamePaid {
			if err := s.recordAdvanceDeductions(txCtx, record, now); err != nil {
				return err
			}
		}

		record.UpdatedAt = now
		if err := s.payrollRepo.UpdatePayrollRecord(txCtx, record); err != nil {
			return err
		}
		updated = record
		return nil
	})
	if err != nil {
		return payroll.PayrollRecordResponse{}, err
	}

	slog.Info("payroll payment applied",
		"company_id", companyID,
		"payroll_record_id", updated.ID,
		"amount", req.Amount.String(),
		"paid_amount", updated.Summary.PaidAmount.String(),
		"unpaid_balance", updated.Summary.UnpaidBalance.String(),
		"status", string(updated.Status),
	)
	return mapToRecordResponse(updated), nil
}

// recordAdvanceDeductions writes the applied share of every advance on the
// record into its history. Advances that received nothing lose any entry an
// earlier payment of the same record left behind.
func (s *PayrollServiceImpl) recordAdvanceDeductions(ctx context.Context, record payroll.PayrollRecord, now time.Time) error {
	applied := record.AdvanceApplied()
	for _, advanceID := range slices.Sorted(maps.Keys(applied)) {
		adv, err := s.advanceRepo.GetByIDForUpdate(ctx, advanceID, record.CompanyID)
		if err != nil {
			return fmt.Errorf("advance %s: %w", advanceID, err)
		}

		if !applied[advanceID].IsPositive() {
			if !adv.ReverseDeduction(record.ID) {
				continue
			}
		} else {
			err = adv.RecordDeduction(advance.DeductionEntry{
				Month:           record.PeriodMonth,
				Year:            record.PeriodYear,
				Amount:          applied[advanceID],
				PayrollRecordID: record.ID,
				DeductedAt:      now,
			})
			if err != nil {
				return fmt.Errorf("advance %s: %w", advanceID, err)
			}
		}
		adv.UpdatedAt = now

		if err := s.advanceRepo.Update(ctx, adv); err != nil {
			return fmt.Errorf("advance %s: %w", advanceID, err)
		}

		slog.Info("advance deduction recorded",
			"advance_id", advanceID,
			"payroll_record_id", record.ID,
			"amount", applied[advanceID].String(),
			"remaining_amount", adv.RemainingAmount.String(),
			"status", string(adv.Status),
		)
	}
	return nil
}

// reverseAdvanceDeductions takes back the history entries of a record whose
// payment is reopened by an edit.
func (s *PayrollServiceImpl) reverseAdvanceDeductions(ctx context.Context, record payroll.PayrollRecord, now time.Time) error {
	for _, advanceID := range slices.Sorted(maps.Keys(record.AdvanceApplied())) {
		adv, err := s.advanceRepo.GetByIDForUpdate(ctx, advanceID, record.CompanyID)
		if err != nil {
			return fmt.Errorf("advance %s: %w", advanceID, err)
		}
		if !adv.ReverseDeduction(record.ID) {
			continue
		}
		adv.UpdatedAt = now

		if err := s.advanceRepo.Update(ctx, adv); err != nil {
			return fmt.Errorf("advance %s: %w", advanceID, err)
		}

		slog.Info("advance deduction reversed",
			"advance_id", advanceID,
			"payroll_record_id", record.ID,
			"remaining_amount", adv.RemainingAmount.String(),
			"status", string(adv.Status),
		)
	}
	return nil
}

// ========== SUMMARY ==========

func (s *PayrollServiceImpl) GetPayrollSummary(ctx context.Context, month, year int) (payroll.PayrollSummaryResponse, error) {
	if !validator.IsValidPeriod(month, year) {
		return payroll.PayrollSummaryResponse{}, payroll.ErrInvalidPeriod
	}

	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return payroll.PayrollSummaryResponse{}, err
	}

	return s.payrollRepo.GetPayrollSummary(ctx, companyID, month, year)
}

// ========== MAPPERS ==========

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	formatted := t.Format(time.RFC3339)
	return &formatted
}

func mapToRecordResponse(r payroll.PayrollRecord) payroll.PayrollRecordResponse {
	resp := payroll.PayrollRecordResponse{
		ID:           r.ID,
		EmployeeID:   r.EmployeeID,
		PeriodMonth:  r.PeriodMonth,
		PeriodYear:   r.PeriodYear,
		Compensation: r.Compensation,
		Attendance:   r.Attendance,
		Earnings:     r.Earnings,
		Deductions:   r.Deductions,
		Summary:      r.Summary,
		Status:       string(r.Status),
		Locked:       r.Locked,
		Notes:        r.Notes,
		Revisions:    r.Revisions,
		SubmittedBy:  r.SubmittedBy,
		SubmittedAt:  formatTime(r.SubmittedAt),
		ApprovedBy:   r.ApprovedBy,
		ApprovedAt:   formatTime(r.ApprovedAt),
		PaidBy:       r.PaidBy,
		PaidAt:       formatTime(r.PaidAt),
		LockedBy:     r.LockedBy,
		LockedAt:     formatTime(r.LockedAt),
	}
	if resp.Revisions == nil {
		resp.Revisions = []payroll.Revision{}
	}
	if r.EmployeeName != nil {
		resp.EmployeeName = *r.EmployeeName
	}
	if r.EmployeeCode != nil {
		resp.EmployeeCode = *r.EmployeeCode
	}
	if !r.CreatedAt.IsZero() {
		resp.CreatedAt = r.CreatedAt.Format(time.RFC3339)
	}
	if !r.UpdatedAt.IsZero() {
		resp.UpdatedAt = r.UpdatedAt.Format(time.RFC3339)
	}
	return resp
}
