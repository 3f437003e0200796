package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/user"
	handler "github.com/cmlabs-hris/payroll-backend-go/internal/handler/http"
	"github.com/cmlabs-hris/payroll-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/payroll-backend-go/internal/repository/sqlite"
	advanceService "github.com/cmlabs-hris/payroll-backend-go/internal/service/advance"
	attendanceService "github.com/cmlabs-hris/payroll-backend-go/internal/service/attendance"
	employeeService "github.com/cmlabs-hris/payroll-backend-go/internal/service/employee"
	payrollService "github.com/cmlabs-hris/payroll-backend-go/internal/service/payroll"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	handlerTestSecret    = "test-secret-key-for-jwt"
	handlerTestAccessExp = "1h"
	handlerTestCompany   = "company-1"
)

type envelope struct {
	Success bool                  `json:"success"`
	Message string                `json:"message"`
	Data    json.RawMessage       `json:"data"`
	Error   *response.ErrorDetail `json:"error"`
	Meta    *response.Meta        `json:"meta"`
}

type testServer struct {
	router http.Handler
	jwt    jwt.Service
}

func newTestServer(t *testing.T) testServer {
	t.Helper()
	ctx := context.Background()
	db, err := database.NewSQLiteDB(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, sqlite.Migrate(ctx, db))

	policy := payroll.DefaultPolicy()
	transactor := sqlite.NewTransactor(db)
	employeeRepo := sqlite.NewEmployeeRepository(db)
	attendanceRepo := sqlite.NewAttendanceRepository(db)
	advanceRepo := sqlite.NewAdvanceRepository(db)
	deductionRepo := sqlite.NewDeductionRepository(db)
	payrollRepo := sqlite.NewPayrollRepository(db)

	jwtService := jwt.NewJWTService(handlerTestSecret, handlerTestAccessExp)
	router := handler.NewRouter(handler.RouterOptions{AllowedOrigins: []string{"http://localhost:3000"}}, jwtService, handler.Handlers{
		Employee:   handler.NewEmployeeHandler(employeeService.NewEmployeeService(employeeRepo)),
		Attendance: handler.NewAttendanceHandler(attendanceService.NewAttendanceService(attendanceRepo, employeeRepo, policy.HoursPerDay)),
		Advance:    handler.NewAdvanceHandler(advanceService.NewAdvanceService(transactor, advanceRepo, employeeRepo, policy.CurrencyScale)),
		Deduction:  handler.NewDeductionHandler(payrollService.NewDeductionService(transactor, deductionRepo, payrollRepo, employeeRepo)),
		Payroll: handler.NewPayrollHandler(payrollService.NewPayrollService(transactor, payrollRepo, deductionRepo, employeeRepo,
			attendanceRepo, advanceRepo, payrollService.NewCalculator(policy))),
	})

	return testServer{router: router, jwt: jwtService}
}

func (s testServer) token(t *testing.T, role user.Role) string {
	t.Helper()
	token, _, err := s.jwt.GenerateAccessToken("user-"+string(role), handlerTestCompany, role)
	require.NoError(t, err)
	return token
}

func (s testServer) do(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec, env
}

func (s testServer) createEmployee(t *testing.T, token, code string) employee.EmployeeResponse {
	t.Helper()
	rec, env := s.do(t, http.MethodPost, "/api/v1/employees", token, map[string]any{
		"employee_code": code,
		"full_name":     "Employee " + code,
		"compensation": map[string]any{
			"employment_type": "monthly",
			"monthly_rate":    "3000",
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var emp employee.EmployeeResponse
	require.NoError(t, json.Unmarshal(env.Data, &emp))
	return emp
}

func TestRouter_Authentication(t *testing.T) {
	srv := newTestServer(t)

	t.Run("missing token", func(t *testing.T) {
		rec, env := srv.do(t, http.MethodGet, "/api/v1/payroll", "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.False(t, env.Success)
	})

	t.Run("token signed with another key", func(t *testing.T) {
		other := jwt.NewJWTService("another-secret", handlerTestAccessExp)
		token, _, err := other.GenerateAccessToken("user-1", handlerTestCompany, user.RoleOwner)
		require.NoError(t, err)

		rec, _ := srv.do(t, http.MethodGet, "/api/v1/payroll", token, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("employee cannot view payroll", func(t *testing.T) {
		rec, env := srv.do(t, http.MethodGet, "/api/v1/payroll", srv.token(t, user.RoleEmployee), nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
		require.NotNil(t, env.Error)
		assert.Equal(t, "FORBIDDEN", env.Error.Code)
	})

	t.Run("unknown role", func(t *testing.T) {
		rec, _ := srv.do(t, http.MethodGet, "/api/v1/payroll", srv.token(t, user.Role("auditor")), nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestRouter_PayrollLifecycle(t *testing.T) {
	srv := newTestServer(t)
	owner := srv.token(t, user.RoleOwner)
	manager := srv.token(t, user.RoleManager)

	emp := srv.createEmployee(t, owner, "E-001")

	rec, env := srv.do(t, http.MethodPost, "/api/v1/payroll/generate", manager, map[string]any{
		"period_month": 1,
		"period_year":  2025,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var generated payroll.GeneratePayrollResponse
	require.NoError(t, json.Unmarshal(env.Data, &generated))
	require.Len(t, generated.Generated, 1)
	record := generated.Generated[0]
	assert.Equal(t, emp.ID, record.EmployeeID)
	assert.True(t, record.Summary.GrossSalary.Equal(decimal.NewFromInt(3000)))
	assert.True(t, record.Summary.NetSalary.Equal(decimal.NewFromInt(2595)), record.Summary.NetSalary.String())

	t.Run("generating the same period again conflicts", func(t *testing.T) {
		rec, env := srv.do(t, http.MethodPost, "/api/v1/employees/"+emp.ID+"/payroll", manager, map[string]any{
			"period_month": 1,
			"period_year":  2025,
		})
		assert.Equal(t, http.StatusConflict, rec.Code)
		require.NotNil(t, env.Error)
		assert.Equal(t, "CONFLICT", env.Error.Code)
	})

	t.Run("list carries paging metadata", func(t *testing.T) {
		rec, env := srv.do(t, http.MethodGet, "/api/v1/payroll?period_month=1&period_year=2025&limit=10", manager, nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		require.NotNil(t, env.Meta)
		assert.Equal(t, int64(1), env.Meta.TotalItems)
		assert.Equal(t, 1, env.Meta.TotalPages)
		assert.Equal(t, 10, env.Meta.Limit)
	})

	t.Run("manager cannot pay", func(t *testing.T) {
		rec, _ := srv.do(t, http.MethodPost, "/api/v1/payroll/"+record.ID+"/pay", manager, map[string]any{"amount": "100"})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("paying a draft record is rejected", func(t *testing.T) {
		rec, env := srv.do(t, http.MethodPost, "/api/v1/payroll/"+record.ID+"/pay", owner, map[string]any{"amount": "100"})
		assert.Equal(t, http.StatusConflict, rec.Code)
		require.NotNil(t, env.Error)
		assert.Equal(t, "INVALID_STATE", env.Error.Code)
	})

	rec, _ = srv.do(t, http.MethodPost, "/api/v1/payroll/"+record.ID+"/submit", manager, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec, _ = srv.do(t, http.MethodPost, "/api/v1/payroll/"+record.ID+"/approve", manager, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	t.Run("overpayment is a bad request", func(t *testing.T) {
		rec, _ := srv.do(t, http.MethodPost, "/api/v1/payroll/"+record.ID+"/pay", owner, map[string]any{"amount": "5000"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	rec, env = srv.do(t, http.MethodPost, "/api/v1/payroll/"+record.ID+"/pay", owner, map[string]any{"amount": "2595"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var paid payroll.PayrollRecordResponse
	require.NoError(t, json.Unmarshal(env.Data, &paid))
	assert.Equal(t, "paid", paid.Status)
	assert.True(t, paid.Summary.UnpaidBalance.IsZero())

	t.Run("paid record cannot be deleted", func(t *testing.T) {
		rec, _ := srv.do(t, http.MethodDelete, "/api/v1/payroll/"+record.ID, manager, nil)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("edit below the paid amount is refused", func(t *testing.T) {
		rec, env := srv.do(t, http.MethodPut, "/api/v1/payroll/"+record.ID, manager, map[string]any{
			"basic_salary": "2000",
			"reason":       "wrong rate",
		})
		assert.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())
		require.NotNil(t, env.Error)
		assert.Equal(t, response.CodeInvalidState, env.Error.Code)
	})

	t.Run("summary totals the period", func(t *testing.T) {
		rec, env := srv.do(t, http.MethodGet, "/api/v1/payroll/summary?period_month=1&period_year=2025", owner, nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var summary payroll.PayrollSummaryResponse
		require.NoError(t, json.Unmarshal(env.Data, &summary))
		assert.Equal(t, 1, summary.PaidCount)
		assert.True(t, summary.TotalPaid.Equal(decimal.NewFromInt(2595)))
	})
}

func TestRouter_Errors(t *testing.T) {
	srv := newTestServer(t)
	owner := srv.token(t, user.RoleOwner)

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/payroll/generate", bytes.NewBufferString("{"))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+owner)
		rec := httptest.NewRecorder()
		srv.router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("validation failure", func(t *testing.T) {
		rec, env := srv.do(t, http.MethodPost, "/api/v1/payroll/generate", owner, map[string]any{
			"period_month": 13,
			"period_year":  2025,
		})
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		require.NotNil(t, env.Error)
		assert.Contains(t, env.Error.Details, "period_month")
	})

	t.Run("unknown record", func(t *testing.T) {
		rec, _ := srv.do(t, http.MethodGet, "/api/v1/payroll/does-not-exist", owner, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("duplicate employee code", func(t *testing.T) {
		srv.createEmployee(t, owner, "E-100")
		rec, _ := srv.do(t, http.MethodPost, "/api/v1/employees", owner, map[string]any{
			"employee_code": "E-100",
			"full_name":     "Someone Else",
			"compensation":  map[string]any{"employment_type": "monthly", "monthly_rate": "2000"},
		})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("computed deduction types are rejected", func(t *testing.T) {
		emp := srv.createEmployee(t, owner, "E-200")
		rec, _ := srv.do(t, http.MethodPost, "/api/v1/deductions", owner, map[string]any{
			"employee_id":  emp.ID,
			"type":         "absence",
			"amount":       "50",
			"reason":       "manual absence",
			"period_month": 1,
			"period_year":  2025,
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
