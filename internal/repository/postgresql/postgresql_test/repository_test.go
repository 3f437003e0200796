package postgresql_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/advance"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/payroll-backend-go/internal/repository/postgresql"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestEmployee(t *testing.T, ctx context.Context, repo employee.EmployeeRepository, companyID, code string) employee.Employee {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Second)
	emp, err := repo.Create(ctx, employee.Employee{
		ID:               uuid.NewString(),
		CompanyID:        companyID,
		EmployeeCode:     code,
		FullName:         "Employee " + code,
		EmploymentStatus: employee.EmploymentStatusActive,
		Compensation: employee.CompensationProfile{
			EmploymentType: employee.EmploymentTypeMonthly,
			MonthlyRate:    decimal.RequireFromString("3000"),
		},
		CreatedAt: now,
		UpdatedAt: now,
	})
	require.NoError(t, err)
	return emp
}

func TestEmployeeRepository(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	repo := postgresql.NewEmployeeRepository(setup.DB)
	companyID := uuid.NewString()

	emp := createTestEmployee(t, ctx, repo, companyID, "EMP-001")
	assert.True(t, emp.Compensation.MonthlyRate.Equal(decimal.RequireFromString("3000")))

	_, err := repo.Create(ctx, employee.Employee{
		ID: uuid.NewString(), CompanyID: companyID, EmployeeCode: "EMP-001", FullName: "Dup",
		EmploymentStatus: employee.EmploymentStatusActive, CreatedAt: time.Now(), UpdatedAt: time.Now(),
	})
	assert.ErrorIs(t, err, employee.ErrEmployeeCodeExists)

	_, err = repo.GetByID(ctx, emp.ID, uuid.NewString())
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)

	profile := emp.Compensation
	profile.Allowances.Transport = decimal.RequireFromString("150")
	require.NoError(t, repo.UpdateCompensation(ctx, emp.ID, companyID, profile))

	got, err := repo.GetByID(ctx, emp.ID, companyID)
	require.NoError(t, err)
	assert.True(t, got.Compensation.Allowances.Transport.Equal(decimal.RequireFromString("150")))

	active, err := repo.GetActiveByCompanyID(ctx, companyID)
	require.NoError(t, err)
	assert.Len(t, active, 1)
}

func TestAttendanceRepository(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	companyID := uuid.NewString()
	emp := createTestEmployee(t, ctx, postgresql.NewEmployeeRepository(setup.DB), companyID, "EMP-001")
	repo := postgresql.NewAttendanceRepository(setup.DB)

	for _, d := range []int{3, 1, 2} {
		_, err := repo.Create(ctx, attendance.Entry{
			ID: uuid.NewString(), CompanyID: companyID, EmployeeID: emp.ID,
			Date:   time.Date(2025, 1, d, 0, 0, 0, 0, time.UTC),
			Status: attendance.StatusPresent, RegularHours: decimal.NewFromInt(8), TotalHours: decimal.NewFromInt(8),
			CreatedAt: time.Now(), UpdatedAt: time.Now(),
		})
		require.NoError(t, err)
	}

	_, err := repo.Create(ctx, attendance.Entry{
		ID: uuid.NewString(), CompanyID: companyID, EmployeeID: emp.ID,
		Date: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), Status: attendance.StatusAbsent,
		CreatedAt: time.Now(), UpdatedAt: time.Now(),
	})
	assert.ErrorIs(t, err, attendance.ErrAttendanceAlreadyRecorded)

	from, to := payroll.PeriodBounds(1, 2025)
	entries, err := repo.ListByEmployeePeriod(ctx, emp.ID, from, to, companyID)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, 1, entries[0].Date.Day())
	assert.Equal(t, 3, entries[2].Date.Day())
}

func TestAdvanceRepository_GetActiveByEmployee(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	companyID := uuid.NewString()
	emp := createTestEmployee(t, ctx, postgresql.NewEmployeeRepository(setup.DB), companyID, "EMP-001")
	repo := postgresql.NewAdvanceRepository(setup.DB)

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	statuses := []advance.Status{advance.StatusPaid, advance.StatusPending, advance.StatusApproved}
	for i, status := range statuses {
		_, err := repo.Create(ctx, advance.Advance{
			ID: uuid.NewString(), CompanyID: companyID, EmployeeID: emp.ID, Reason: "rent",
			OriginalAmount:  decimal.NewFromInt(900),
			RepaymentPlan:   advance.RepaymentPlan{InstallmentCount: 3, AmountPerMonth: decimal.NewFromInt(300)},
			TotalPaid:       decimal.Zero,
			RemainingAmount: decimal.NewFromInt(900),
			Status:          status,
			CreatedAt:       base.AddDate(0, 0, i),
			UpdatedAt:       base.AddDate(0, 0, i),
		})
		require.NoError(t, err)
	}

	active, err := repo.GetActiveByEmployee(ctx, emp.ID, companyID)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, advance.StatusPaid, active[0].Status)
	assert.Equal(t, advance.StatusApproved, active[1].Status)

	adv := active[0]
	require.NoError(t, adv.RecordDeduction(advance.DeductionEntry{
		Month: 1, Year: 2025, Amount: decimal.NewFromInt(900), PayrollRecordID: uuid.NewString(), DeductedAt: base,
	}))
	require.NoError(t, repo.Update(ctx, adv))

	active, err = repo.GetActiveByEmployee(ctx, emp.ID, companyID)
	require.NoError(t, err)
	assert.Len(t, active, 1)

	got, err := repo.GetByID(ctx, adv.ID, companyID)
	require.NoError(t, err)
	assert.Equal(t, advance.StatusCompleted, got.Status)
	assert.Len(t, got.DeductionHistory, 1)
}

func TestPayrollRepository(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	companyID := uuid.NewString()
	emp := createTestEmployee(t, ctx, postgresql.NewEmployeeRepository(setup.DB), companyID, "EMP-001")
	repo := postgresql.NewPayrollRepository(setup.DB)

	record := payroll.PayrollRecord{
		ID: uuid.NewString(), CompanyID: companyID, EmployeeID: emp.ID, PeriodMonth: 1, PeriodYear: 2025,
		Compensation: emp.Compensation,
		Earnings:     payroll.Earnings{Basic: decimal.NewFromInt(3000), Gross: decimal.NewFromInt(3000)},
		Summary: payroll.Summary{
			GrossSalary:     decimal.NewFromInt(3000),
			TotalDeductions: decimal.NewFromInt(500),
			NetSalary:       decimal.NewFromInt(2500),
			UnpaidBalance:   decimal.NewFromInt(2500),
		},
		Status: payroll.PayrollStatusDraft,
	}
	created, err := repo.CreatePayrollRecord(ctx, record)
	require.NoError(t, err)
	assert.False(t, created.CreatedAt.IsZero())

	dup := record
	dup.ID = uuid.NewString()
	_, err = repo.CreatePayrollRecord(ctx, dup)
	assert.ErrorIs(t, err, payroll.ErrPayrollRecordAlreadyExists)

	got, err := repo.GetPayrollRecordByEmployeePeriod(ctx, emp.ID, 1, 2025, companyID)
	require.NoError(t, err)
	assert.Equal(t, record.ID, got.ID)
	require.NotNil(t, got.EmployeeCode)
	assert.Equal(t, "EMP-001", *got.EmployeeCode)
	assert.True(t, got.Summary.NetSalary.Equal(decimal.NewFromInt(2500)))

	count, err := repo.CountProcessedForPeriod(ctx, emp.ID, 1, 2025, companyID)
	require.NoError(t, err)
	assert.Zero(t, count)

	got.Status = payroll.PayrollStatusPending
	require.NoError(t, repo.UpdatePayrollRecord(ctx, got))

	count, err = repo.CountProcessedForPeriod(ctx, emp.ID, 1, 2025, companyID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	month := 1
	records, total, err := repo.ListPayrollRecords(ctx, companyID, payroll.PayrollFilter{PeriodMonth: &month})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Len(t, records, 1)

	summary, err := repo.GetPayrollSummary(ctx, companyID, 1, 2025)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.TotalEmployees)
	assert.Equal(t, 1, summary.PendingCount)
	assert.True(t, summary.TotalUnpaid.Equal(decimal.NewFromInt(2500)))

	require.NoError(t, repo.DeletePayrollRecord(ctx, got.ID, companyID))
	_, err = repo.GetPayrollRecordByID(ctx, got.ID, companyID)
	assert.ErrorIs(t, err, payroll.ErrPayrollRecordNotFound)
}

func TestTransactor_RollsBackOnError(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	companyID := uuid.NewString()
	employees := postgresql.NewEmployeeRepository(setup.DB)
	transactor := postgresql.NewTransactor(setup.DB)

	boom := errors.New("boom")
	err := transactor.WithinTx(ctx, func(txCtx context.Context) error {
		createTestEmployee(t, txCtx, employees, companyID, "EMP-001")
		return boom
	})
	assert.ErrorIs(t, err, boom)

	list, err := employees.List(ctx, companyID, nil)
	require.NoError(t, err)
	assert.Empty(t, list)
}

// concurrently runs fn in two transactions at once. Each holds its read for a
// moment before writing so unlocked reads would overwrite each other.
func concurrently(t *testing.T, transactor database.Transactor, fn func(txCtx context.Context, worker int) error) {
	t.Helper()
	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			errs[worker] = transactor.WithinTx(context.Background(), func(txCtx context.Context) error {
				return fn(txCtx, worker)
			})
		}(i)
	}
	wg.Wait()
	for _, err := range errs {
		require.NoError(t, err)
	}
}

func TestForUpdate_SerializesConcurrentWriters(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	companyID := uuid.NewString()
	emp := createTestEmployee(t, ctx, postgresql.NewEmployeeRepository(setup.DB), companyID, "EMP-001")
	transactor := postgresql.NewTransactor(setup.DB)
	now := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)

	t.Run("payments on one record", func(t *testing.T) {
		repo := postgresql.NewPayrollRepository(setup.DB)
		record, err := repo.CreatePayrollRecord(ctx, payroll.PayrollRecord{
			ID: uuid.NewString(), CompanyID: companyID, EmployeeID: emp.ID, PeriodMonth: 1, PeriodYear: 2025,
			Earnings: payroll.Earnings{Basic: decimal.NewFromInt(3000), Gross: decimal.NewFromInt(3000)},
			Summary: payroll.Summary{
				GrossSalary:     decimal.NewFromInt(3000),
				TotalDeductions: decimal.NewFromInt(500),
				NetSalary:       decimal.NewFromInt(2500),
				UnpaidBalance:   decimal.NewFromInt(2500),
			},
			Status: payroll.PayrollStatusApproved,
		})
		require.NoError(t, err)

		concurrently(t, transactor, func(txCtx context.Context, _ int) error {
			rec, err := repo.GetPayrollRecordByIDForUpdate(txCtx, record.ID, companyID)
			if err != nil {
				return err
			}
			if _, err := rec.ApplyPayment(decimal.NewFromInt(1000), "user-1", now); err != nil {
				return err
			}
			time.Sleep(100 * time.Millisecond)
			return repo.UpdatePayrollRecord(txCtx, rec)
		})

		got, err := repo.GetPayrollRecordByID(ctx, record.ID, companyID)
		require.NoError(t, err)
		assert.True(t, got.Summary.PaidAmount.Equal(decimal.NewFromInt(2000)), got.Summary.PaidAmount.String())
		assert.True(t, got.Summary.UnpaidBalance.Equal(decimal.NewFromInt(500)), got.Summary.UnpaidBalance.String())
	})

	t.Run("deductions on one advance", func(t *testing.T) {
		repo := postgresql.NewAdvanceRepository(setup.DB)
		adv, err := repo.Create(ctx, advance.Advance{
			ID: uuid.NewString(), CompanyID: companyID, EmployeeID: emp.ID, Reason: "rent",
			OriginalAmount:  decimal.NewFromInt(900),
			RepaymentPlan:   advance.RepaymentPlan{InstallmentCount: 3, AmountPerMonth: decimal.NewFromInt(300)},
			TotalPaid:       decimal.Zero,
			RemainingAmount: decimal.NewFromInt(900),
			Status:          advance.StatusPaid,
			CreatedAt:       now,
			UpdatedAt:       now,
		})
		require.NoError(t, err)

		concurrently(t, transactor, func(txCtx context.Context, worker int) error {
			a, err := repo.GetByIDForUpdate(txCtx, adv.ID, companyID)
			if err != nil {
				return err
			}
			err = a.RecordDeduction(advance.DeductionEntry{
				Month: worker + 1, Year: 2025, Amount: decimal.NewFromInt(300), PayrollRecordID: uuid.NewString(), DeductedAt: now,
			})
			if err != nil {
				return err
			}
			time.Sleep(100 * time.Millisecond)
			return repo.Update(txCtx, a)
		})

		got, err := repo.GetByID(ctx, adv.ID, companyID)
		require.NoError(t, err)
		assert.Len(t, got.DeductionHistory, 2)
		assert.True(t, got.RemainingAmount.Equal(decimal.NewFromInt(300)), got.RemainingAmount.String())
	})
}
