package http

import (
	"log/slog"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/payroll-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

type RouterOptions struct {
	Logger         *slog.Logger
	LogLevel       slog.Level
	AllowedOrigins []string
}

type Handlers struct {
	Employee   EmployeeHandler
	Attendance AttendanceHandler
	Advance    AdvanceHandler
	Deduction  DeductionHandler
	Payroll    PayrollHandler
}

func NewRouter(opts RouterOptions, JWTService jwt.Service, h Handlers) *chi.Mux {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	if opts.Logger != nil {
		r.Use(httplog.RequestLogger(opts.Logger, &httplog.Options{
			Level:  opts.LogLevel,
			Schema: httplog.SchemaECS,
		}))
	}

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
		r.Use(middleware.AuthRequired)

		r.Route("/employees", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequirePermission(user.PermissionEmployeeManage))
				r.Post("/", h.Employee.CreateEmployee)
				r.Get("/", h.Employee.ListEmployees)
				r.Get("/{id}", h.Employee.GetEmployee)
				r.Put("/{id}/compensation", h.Employee.UpdateCompensation)
			})

			r.With(middleware.RequirePermission(user.PermissionPayrollManage)).
				Post("/{id}/payroll", h.Payroll.GenerateEmployeePayroll)
		})

		r.Route("/attendances", func(r chi.Router) {
			r.Use(middleware.RequirePermission(user.PermissionAttendanceManage))
			r.Post("/", h.Attendance.Record)
			r.Get("/", h.Attendance.List)
		})

		r.Route("/advances", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequirePermission(user.PermissionAdvanceRequest))
				r.Post("/", h.Advance.Request)
				r.Get("/", h.Advance.List)
				r.Get("/{id}", h.Advance.Get)
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequirePermission(user.PermissionAdvanceApprove))
				r.Post("/{id}/approve", h.Advance.Approve)
				r.Post("/{id}/reject", h.Advance.Reject)
				r.Post("/{id}/disburse", h.Advance.Disburse)
			})
		})

		r.Route("/deductions", func(r chi.Router) {
			r.Use(middleware.RequirePermission(user.PermissionDeductionManage))
			r.Post("/", h.Deduction.Create)
			r.Get("/", h.Deduction.List)
			r.Delete("/{id}", h.Deduction.Delete)
		})

		r.Route("/payroll", func(r chi.Router) {
			// View
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequirePermission(user.PermissionPayrollView))
				r.Get("/", h.Payroll.ListPayrollRecords)
				r.Get("/summary", h.Payroll.GetPayrollSummary)
				r.Get("/{id}", h.Payroll.GetPayrollRecord)
			})

			// Prepare
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequirePermission(user.PermissionPayrollManage))
				r.Post("/generate", h.Payroll.GeneratePayroll)
				r.Get("/preview", h.Payroll.PreviewPayroll)
				r.Put("/{id}", h.Payroll.EditPayrollRecord)
				r.Delete("/{id}", h.Payroll.DeletePayrollRecord)
				r.Post("/{id}/submit", h.Payroll.SubmitPayrollRecord)
			})

			// Approve
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequirePermission(user.PermissionPayrollApprove))
				r.Post("/{id}/approve", h.Payroll.ApprovePayrollRecord)
				r.Post("/{id}/lock", h.Payroll.LockPayrollRecord)
				r.Post("/{id}/unlock", h.Payroll.UnlockPayrollRecord)
			})

			r.With(middleware.RequirePermission(user.PermissionPayrollPay)).
				Post("/{id}/pay", h.Payroll.PayPayrollRecord)
		})
	})
	return r
}
