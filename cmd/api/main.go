package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/config"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/advance"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/payroll"
	appHTTP "github.com/cmlabs-hris/payroll-backend-go/internal/handler/http"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/payroll-backend-go/internal/repository/postgresql"
	"github.com/cmlabs-hris/payroll-backend-go/internal/repository/sqlite"
	advanceService "github.com/cmlabs-hris/payroll-backend-go/internal/service/advance"
	attendanceService "github.com/cmlabs-hris/payroll-backend-go/internal/service/attendance"
	employeeService "github.com/cmlabs-hris/payroll-backend-go/internal/service/employee"
	payrollService "github.com/cmlabs-hris/payroll-backend-go/internal/service/payroll"
	"github.com/go-chi/httplog/v3"
)

const appVersion = "v1.0.0"

// repositories is the storage backend selected by DB_DRIVER.
type repositories struct {
	transactor database.Transactor
	employee   employee.EmployeeRepository
	attendance attendance.AttendanceRepository
	advance    advance.AdvanceRepository
	deduction  payroll.DeductionRepository
	payroll    payroll.PayrollRepository
	close      func()
}

func openRepositories(ctx context.Context, cfg *config.Config) (repositories, error) {
	switch cfg.Database.Driver {
	case config.DriverSQLite:
		db, err := database.NewSQLiteDB(ctx, cfg.Database.SQLitePath)
		if err != nil {
			return repositories{}, fmt.Errorf("failed to open sqlite database: %w", err)
		}
		if err := sqlite.Migrate(ctx, db); err != nil {
			db.Close()
			return repositories{}, err
		}
		return repositories{
			transactor: sqlite.NewTransactor(db),
			employee:   sqlite.NewEmployeeRepository(db),
			attendance: sqlite.NewAttendanceRepository(db),
			advance:    sqlite.NewAdvanceRepository(db),
			deduction:  sqlite.NewDeductionRepository(db),
			payroll:    sqlite.NewPayrollRepository(db),
			close:      func() { db.Close() },
		}, nil
	default:
		db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL())
		if err != nil {
			return repositories{}, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		if err := postgresql.Migrate(ctx, db); err != nil {
			db.Close()
			return repositories{}, err
		}
		return repositories{
			transactor: postgresql.NewTransactor(db),
			employee:   postgresql.NewEmployeeRepository(db),
			attendance: postgresql.NewAttendanceRepository(db),
			advance:    postgresql.NewAdvanceRepository(db),
			deduction:  postgresql.NewDeductionRepository(db),
			payroll:    postgresql.NewPayrollRepository(db),
			close:      db.Close,
		}, nil
	}
}

func newLogger(cfg *config.Config) (*slog.Logger, slog.Level) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.App.LogLevel)); err != nil {
		level = slog.LevelInfo
	}

	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "payroll-cmlabs"),
		slog.String("version", appVersion),
		slog.String("env", cfg.App.Env),
	)
	return logger, level
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Error loading config: ", err)
	}

	logger, level := newLogger(cfg)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos, err := openRepositories(ctx, cfg)
	if err != nil {
		slog.Error("failed to open database", "driver", cfg.Database.Driver, "error", err)
		os.Exit(1)
	}
	defer repos.close()

	policy := cfg.PayrollPolicy()
	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)

	employeeSvc := employeeService.NewEmployeeService(repos.employee)
	attendanceSvc := attendanceService.NewAttendanceService(repos.attendance, repos.employee, policy.HoursPerDay)
	advanceSvc := advanceService.NewAdvanceService(repos.transactor, repos.advance, repos.employee, policy.CurrencyScale)
	deductionSvc := payrollService.NewDeductionService(repos.transactor, repos.deduction, repos.payroll, repos.employee)
	payrollSvc := payrollService.NewPayrollService(
		repos.transactor,
		repos.payroll,
		repos.deduction,
		repos.employee,
		repos.attendance,
		repos.advance,
		payrollService.NewCalculator(policy),
	)

	router := appHTTP.NewRouter(
		appHTTP.RouterOptions{
			Logger:         logger,
			LogLevel:       level,
			AllowedOrigins: cfg.App.AllowedOrigins,
		},
		JWTService,
		appHTTP.Handlers{
			Employee:   appHTTP.NewEmployeeHandler(employeeSvc),
			Attendance: appHTTP.NewAttendanceHandler(attendanceSvc),
			Advance:    appHTTP.NewAdvanceHandler(advanceSvc),
			Deduction:  appHTTP.NewDeductionHandler(deductionSvc),
			Payroll:    appHTTP.NewPayrollHandler(payrollSvc),
		},
	)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("server started", "addr", server.Addr, "driver", cfg.Database.Driver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("graceful shutdown failed", "error", err)
	}
}
