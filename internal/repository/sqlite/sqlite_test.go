package sqlite_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/advance"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/payroll-backend-go/internal/repository/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const companyID = "company-1"

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()
	db, err := database.NewSQLiteDB(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, sqlite.Migrate(ctx, db))
	return db
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func seedEmployee(t *testing.T, db *sql.DB, id, code string) employee.Employee {
	t.Helper()
	now := time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC)
	emp, err := sqlite.NewEmployeeRepository(db).Create(context.Background(), employee.Employee{
		ID:               id,
		CompanyID:        companyID,
		EmployeeCode:     code,
		FullName:         "Employee " + code,
		EmploymentStatus: employee.EmploymentStatusActive,
		Compensation: employee.CompensationProfile{
			EmploymentType: employee.EmploymentTypeMonthly,
			MonthlyRate:    dec("3000.50"),
		},
		CreatedAt: now,
		UpdatedAt: now,
	})
	require.NoError(t, err)
	return emp
}

func TestEmployeeRepository(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := sqlite.NewEmployeeRepository(db)
	seedEmployee(t, db, "emp-1", "EMP-001")

	_, err := repo.Create(ctx, employee.Employee{
		ID: "emp-2", CompanyID: companyID, EmployeeCode: "EMP-001", FullName: "Dup",
		EmploymentStatus: employee.EmploymentStatusActive, CreatedAt: time.Now(), UpdatedAt: time.Now(),
	})
	assert.ErrorIs(t, err, employee.ErrEmployeeCodeExists)

	got, err := repo.GetByID(ctx, "emp-1", companyID)
	require.NoError(t, err)
	assert.True(t, got.Compensation.MonthlyRate.Equal(dec("3000.50")))

	_, err = repo.GetByID(ctx, "emp-1", "other-company")
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)

	assert.ErrorIs(t, repo.UpdateCompensation(ctx, "missing", companyID, employee.CompensationProfile{}), employee.ErrEmployeeNotFound)

	resigned := employee.EmploymentStatusResigned
	list, err := repo.List(ctx, companyID, &resigned)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestAttendanceRepository_ListByEmployeePeriod(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	seedEmployee(t, db, "emp-1", "EMP-001")
	repo := sqlite.NewAttendanceRepository(db)

	dates := []time.Time{
		time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
	}
	for i, d := range dates {
		_, err := repo.Create(ctx, attendance.Entry{
			ID: string(rune('a' + i)), CompanyID: companyID, EmployeeID: "emp-1", Date: d,
			Status: attendance.StatusPresent, TotalHours: dec("8.5"), RegularHours: dec("8"), OvertimeHours: dec("0.5"),
			CreatedAt: d, UpdatedAt: d,
		})
		require.NoError(t, err)
	}

	_, err := repo.Create(ctx, attendance.Entry{
		ID: "dup", CompanyID: companyID, EmployeeID: "emp-1", Date: dates[2], Status: attendance.StatusAbsent,
		TotalHours: decimal.Zero, RegularHours: decimal.Zero, OvertimeHours: decimal.Zero,
		CreatedAt: dates[2], UpdatedAt: dates[2],
	})
	assert.ErrorIs(t, err, attendance.ErrAttendanceAlreadyRecorded)

	from, to := payroll.PeriodBounds(1, 2025)
	entries, err := repo.ListByEmployeePeriod(ctx, "emp-1", from, to, companyID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, 1, entries[0].Date.Day())
	assert.Equal(t, 31, entries[1].Date.Day())
	assert.True(t, entries[0].OvertimeHours.Equal(dec("0.5")))
}

func TestAdvanceRepository(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	seedEmployee(t, db, "emp-1", "EMP-001")
	repo := sqlite.NewAdvanceRepository(db)

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, status := range []advance.Status{advance.StatusApproved, advance.StatusPending, advance.StatusPaid} {
		_, err := repo.Create(ctx, advance.Advance{
			ID: string(rune('a' + i)), CompanyID: companyID, EmployeeID: "emp-1", Reason: "school fees",
			OriginalAmount:  dec("600"),
			RepaymentPlan:   advance.RepaymentPlan{InstallmentCount: 3, AmountPerMonth: dec("200")},
			TotalPaid:       decimal.Zero,
			RemainingAmount: dec("600"),
			Status:          status,
			CreatedAt:       base.Add(time.Duration(i) * time.Hour),
			UpdatedAt:       base,
		})
		require.NoError(t, err)
	}

	active, err := repo.GetActiveByEmployee(ctx, "emp-1", companyID)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, "a", active[0].ID)
	assert.Equal(t, "c", active[1].ID)

	adv := active[0]
	require.NoError(t, adv.RecordDeduction(advance.DeductionEntry{Month: 1, Year: 2025, Amount: dec("600"), PayrollRecordID: "pr-1", DeductedAt: base}))
	require.NoError(t, repo.Update(ctx, adv))

	got, err := repo.GetByID(ctx, "a", companyID)
	require.NoError(t, err)
	assert.Equal(t, advance.StatusCompleted, got.Status)
	require.Len(t, got.DeductionHistory, 1)
	assert.True(t, got.DeductionHistory[0].Amount.Equal(dec("600")))

	active, err = repo.GetActiveByEmployee(ctx, "emp-1", companyID)
	require.NoError(t, err)
	assert.Len(t, active, 1)

	pending := "pending"
	list, err := repo.List(ctx, companyID, advance.AdvanceFilter{Status: &pending})
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = repo.GetByID(ctx, "missing", companyID)
	assert.ErrorIs(t, err, advance.ErrAdvanceNotFound)
}

func TestDeductionRepository(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	seedEmployee(t, db, "emp-1", "EMP-001")
	repo := sqlite.NewDeductionRepository(db)

	now := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	_, err := repo.Create(ctx, payroll.Deduction{
		ID: "d1", CompanyID: companyID, EmployeeID: "emp-1", Type: payroll.DeductionTypePenalty,
		Amount: dec("25.75"), Reason: "damaged tool", PeriodMonth: 1, PeriodYear: 2025, CreatedAt: now, UpdatedAt: now,
	})
	require.NoError(t, err)

	list, err := repo.ListByEmployeePeriod(ctx, "emp-1", 1, 2025, companyID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].Amount.Equal(dec("25.75")))
	assert.Nil(t, list[0].CreatedBy)

	require.NoError(t, repo.Delete(ctx, "d1", companyID))
	assert.ErrorIs(t, repo.Delete(ctx, "d1", companyID), payroll.ErrDeductionNotFound)
}

func newRecord(id, employeeID string, month int, status payroll.PayrollStatus, net string) payroll.PayrollRecord {
	return payroll.PayrollRecord{
		ID: id, CompanyID: companyID, EmployeeID: employeeID, PeriodMonth: month, PeriodYear: 2025,
		Earnings: payroll.Earnings{Basic: dec("3000"), Gross: dec("3000")},
		Summary: payroll.Summary{
			GrossSalary:          dec("3000"),
			TotalDeductions:      dec("3000").Sub(dec(net)),
			NetSalary:            dec(net),
			PaidAmount:           decimal.Zero,
			UnpaidBalance:        dec(net),
			CarriedForwardToNext: dec("0.10"),
			CarryforwardDetails: []payroll.CarryforwardDetail{
				{Category: payroll.CategoryOther, RemainingToCarryforward: dec("0.10")},
			},
		},
		Status: status,
	}
}

func TestPayrollRepository(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	seedEmployee(t, db, "emp-1", "EMP-001")
	seedEmployee(t, db, "emp-2", "EMP-002")
	repo := sqlite.NewPayrollRepository(db)

	_, err := repo.CreatePayrollRecord(ctx, newRecord("pr-1", "emp-1", 1, payroll.PayrollStatusDraft, "2500.10"))
	require.NoError(t, err)
	_, err = repo.CreatePayrollRecord(ctx, newRecord("pr-2", "emp-2", 1, payroll.PayrollStatusPaid, "2000.20"))
	require.NoError(t, err)

	_, err = repo.CreatePayrollRecord(ctx, newRecord("pr-3", "emp-1", 1, payroll.PayrollStatusDraft, "1"))
	assert.ErrorIs(t, err, payroll.ErrPayrollRecordAlreadyExists)

	got, err := repo.GetPayrollRecordByEmployeePeriod(ctx, "emp-1", 1, 2025, companyID)
	require.NoError(t, err)
	assert.Equal(t, "pr-1", got.ID)
	require.NotNil(t, got.EmployeeName)
	assert.Equal(t, "Employee EMP-001", *got.EmployeeName)
	require.Len(t, got.Summary.CarryforwardDetails, 1)
	assert.True(t, got.Summary.CarryforwardDetails[0].RemainingToCarryforward.Equal(dec("0.10")))

	_, err = repo.GetPayrollRecordByEmployeePeriod(ctx, "emp-1", 2, 2025, companyID)
	assert.ErrorIs(t, err, payroll.ErrPayrollRecordNotFound)

	processed, err := repo.CountProcessedForPeriod(ctx, "emp-2", 1, 2025, companyID)
	require.NoError(t, err)
	assert.Equal(t, 1, processed)

	note := "checked"
	got.Notes = &note
	got.Status = payroll.PayrollStatusApproved
	require.NoError(t, repo.UpdatePayrollRecord(ctx, got))

	records, total, err := repo.ListPayrollRecords(ctx, companyID, payroll.PayrollFilter{SortBy: "net_salary", SortOrder: "asc", Limit: 1})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, records, 1)
	assert.Equal(t, "pr-2", records[0].ID)

	summary, err := repo.GetPayrollSummary(ctx, companyID, 1, 2025)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.TotalEmployees)
	assert.Equal(t, 1, summary.ApprovedCount)
	assert.Equal(t, 1, summary.PaidCount)
	assert.True(t, summary.TotalNetSalary.Equal(dec("4500.30")), summary.TotalNetSalary.String())
	assert.True(t, summary.TotalCarriedForward.Equal(dec("0.20")))

	require.NoError(t, repo.DeletePayrollRecord(ctx, "pr-1", companyID))
	assert.ErrorIs(t, repo.DeletePayrollRecord(ctx, "pr-1", companyID), payroll.ErrPayrollRecordNotFound)
}

func TestPayrollRepository_ListUnpaidByEmployee(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	seedEmployee(t, db, "emp-1", "EMP-001")
	seedEmployee(t, db, "emp-2", "EMP-002")
	repo := sqlite.NewPayrollRepository(db)

	paidAt := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	january := newRecord("pr-1", "emp-1", 1, payroll.PayrollStatusPaid, "100")
	january.PaidAt = &paidAt
	for _, rec := range []payroll.PayrollRecord{
		january,
		newRecord("pr-3", "emp-1", 3, payroll.PayrollStatusDraft, "300"),
		newRecord("pr-2", "emp-1", 2, payroll.PayrollStatusApproved, "200"),
		newRecord("pr-9", "emp-2", 2, payroll.PayrollStatusDraft, "900"),
	} {
		_, err := repo.CreatePayrollRecord(ctx, rec)
		require.NoError(t, err)
	}
	require.NoError(t, repo.UpdatePayrollRecord(ctx, january))

	unpaid, err := repo.ListUnpaidByEmployee(ctx, "emp-1", companyID)
	require.NoError(t, err)
	require.Len(t, unpaid, 2)
	assert.Equal(t, "pr-2", unpaid[0].ID)
	assert.Equal(t, "pr-3", unpaid[1].ID)

	locked, err := repo.GetPayrollRecordByIDForUpdate(ctx, "pr-2", companyID)
	require.NoError(t, err)
	assert.Equal(t, payroll.PayrollStatusApproved, locked.Status)

	_, err = repo.GetPayrollRecordByIDForUpdate(ctx, "pr-2", "company-2")
	assert.ErrorIs(t, err, payroll.ErrPayrollRecordNotFound)
}

func TestTransactor(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	transactor := sqlite.NewTransactor(db)
	repo := sqlite.NewEmployeeRepository(db)

	boom := errors.New("boom")
	err := transactor.WithinTx(ctx, func(txCtx context.Context) error {
		_, err := repo.Create(txCtx, employee.Employee{
			ID: "emp-1", CompanyID: companyID, EmployeeCode: "EMP-001", FullName: "Rolled Back",
			EmploymentStatus: employee.EmploymentStatusActive, CreatedAt: time.Now(), UpdatedAt: time.Now(),
		})
		require.NoError(t, err)

		// Nested calls join the outer transaction.
		return transactor.WithinTx(txCtx, func(context.Context) error { return boom })
	})
	assert.ErrorIs(t, err, boom)

	_, err = repo.GetByID(ctx, "emp-1", companyID)
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}
