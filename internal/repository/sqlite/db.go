package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/database"
	"github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS employees (
	id                TEXT PRIMARY KEY,
	company_id        TEXT NOT NULL,
	employee_code     TEXT NOT NULL,
	full_name         TEXT NOT NULL,
	employment_status TEXT NOT NULL DEFAULT 'active',
	compensation      TEXT NOT NULL,
	created_at        DATETIME NOT NULL,
	updated_at        DATETIME NOT NULL,
	UNIQUE (company_id, employee_code)
);

CREATE TABLE IF NOT EXISTS attendances (
	id             TEXT PRIMARY KEY,
	company_id     TEXT NOT NULL,
	employee_id    TEXT NOT NULL REFERENCES employees(id),
	date           DATE NOT NULL,
	status         TEXT NOT NULL,
	check_in       DATETIME,
	check_out      DATETIME,
	total_hours    TEXT NOT NULL DEFAULT '0',
	regular_hours  TEXT NOT NULL DEFAULT '0',
	overtime_hours TEXT NOT NULL DEFAULT '0',
	late_minutes   INTEGER NOT NULL DEFAULT 0,
	excused        BOOLEAN NOT NULL DEFAULT 0,
	notes          TEXT,
	created_at     DATETIME NOT NULL,
	updated_at     DATETIME NOT NULL,
	UNIQUE (employee_id, date)
);

CREATE TABLE IF NOT EXISTS advances (
	id                TEXT PRIMARY KEY,
	company_id        TEXT NOT NULL,
	employee_id       TEXT NOT NULL REFERENCES employees(id),
	reason            TEXT NOT NULL,
	original_amount   TEXT NOT NULL,
	installment_count INTEGER NOT NULL,
	amount_per_month  TEXT NOT NULL,
	total_paid        TEXT NOT NULL DEFAULT '0',
	remaining_amount  TEXT NOT NULL,
	status            TEXT NOT NULL,
	deduction_history TEXT NOT NULL DEFAULT '[]',
	requested_by      TEXT,
	approved_by       TEXT,
	approved_at       DATETIME,
	rejected_reason   TEXT,
	disbursed_at      DATETIME,
	created_at        DATETIME NOT NULL,
	updated_at        DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_advances_employee ON advances (company_id, employee_id, status);

CREATE TABLE IF NOT EXISTS payroll_deductions (
	id           TEXT PRIMARY KEY,
	company_id   TEXT NOT NULL,
	employee_id  TEXT NOT NULL REFERENCES employees(id),
	type         TEXT NOT NULL,
	amount       TEXT NOT NULL,
	reason       TEXT NOT NULL,
	period_month INTEGER NOT NULL,
	period_year  INTEGER NOT NULL,
	created_by   TEXT,
	created_at   DATETIME NOT NULL,
	updated_at   DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_payroll_deductions_period ON payroll_deductions (company_id, employee_id, period_year, period_month);

CREATE TABLE IF NOT EXISTS payroll_records (
	id                      TEXT PRIMARY KEY,
	company_id              TEXT NOT NULL,
	employee_id             TEXT NOT NULL REFERENCES employees(id),
	period_month            INTEGER NOT NULL,
	period_year             INTEGER NOT NULL,
	compensation            TEXT NOT NULL,
	attendance              TEXT NOT NULL,
	earnings                TEXT NOT NULL,
	deductions              TEXT NOT NULL,
	summary                 TEXT NOT NULL,
	gross_salary            TEXT NOT NULL,
	total_deductions        TEXT NOT NULL,
	net_salary              TEXT NOT NULL,
	paid_amount             TEXT NOT NULL DEFAULT '0',
	unpaid_balance          TEXT NOT NULL,
	carried_forward_to_next TEXT NOT NULL DEFAULT '0',
	status                  TEXT NOT NULL,
	locked                  BOOLEAN NOT NULL DEFAULT 0,
	notes                   TEXT,
	revisions               TEXT NOT NULL DEFAULT '[]',
	submitted_by            TEXT,
	submitted_at            DATETIME,
	approved_by             TEXT,
	approved_at             DATETIME,
	paid_by                 TEXT,
	paid_at                 DATETIME,
	locked_by               TEXT,
	locked_at               DATETIME,
	created_at              DATETIME NOT NULL,
	updated_at              DATETIME NOT NULL,
	UNIQUE (employee_id, period_month, period_year)
);
CREATE INDEX IF NOT EXISTS idx_payroll_records_period ON payroll_records (company_id, period_year, period_month);
`

// Migrate creates the schema. Money columns are TEXT so decimals keep their exact scale.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to migrate sqlite schema: %w", err)
	}
	return nil
}

type txKey struct{}

// WithTransaction executes fn inside a database transaction, joining one
// already carried by ctx.
func WithTransaction(ctx context.Context, db *sql.DB, fn func(txCtx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return fn(ctx)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				slog.Error("rollback error during panic recovery", "error", rbErr)
			}
			panic(p)
		}
	}()

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback error: %v (original error: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// GetQuerier returns the transaction carried by ctx, or db.
func GetQuerier(ctx context.Context, db *sql.DB) database.SQLQuerier {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return tx
	}
	return db
}

type transactor struct {
	db *sql.DB
}

func NewTransactor(db *sql.DB) database.Transactor {
	return &transactor{db: db}
}

func (t *transactor) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return WithTransaction(ctx, t.db, fn)
}

// isUniqueViolation reports a UNIQUE constraint failure on table.
func isUniqueViolation(err error, table string) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique &&
		strings.Contains(sqliteErr.Error(), table+".")
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}
