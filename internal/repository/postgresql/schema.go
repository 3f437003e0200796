package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5/pgconn"
)

const schema = `
CREATE TABLE IF NOT EXISTS employees (
	id                UUID PRIMARY KEY,
	company_id        UUID NOT NULL,
	employee_code     VARCHAR(32) NOT NULL,
	full_name         VARCHAR(150) NOT NULL,
	employment_status VARCHAR(20) NOT NULL DEFAULT 'active',
	compensation      JSONB NOT NULL,
	created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at        TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	CONSTRAINT uk_employee_code UNIQUE (company_id, employee_code)
);

CREATE TABLE IF NOT EXISTS attendances (
	id             UUID PRIMARY KEY,
	company_id     UUID NOT NULL,
	employee_id    UUID NOT NULL REFERENCES employees(id),
	date           DATE NOT NULL,
	status         VARCHAR(20) NOT NULL,
	check_in       TIMESTAMPTZ,
	check_out      TIMESTAMPTZ,
	total_hours    NUMERIC(6,2) NOT NULL DEFAULT 0,
	regular_hours  NUMERIC(6,2) NOT NULL DEFAULT 0,
	overtime_hours NUMERIC(6,2) NOT NULL DEFAULT 0,
	late_minutes   INTEGER NOT NULL DEFAULT 0,
	excused        BOOLEAN NOT NULL DEFAULT FALSE,
	notes          TEXT,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	CONSTRAINT uk_attendance_employee_date UNIQUE (employee_id, date)
);

CREATE TABLE IF NOT EXISTS advances (
	id                UUID PRIMARY KEY,
	company_id        UUID NOT NULL,
	employee_id       UUID NOT NULL REFERENCES employees(id),
	reason            TEXT NOT NULL,
	original_amount   NUMERIC(18,4) NOT NULL,
	installment_count INTEGER NOT NULL,
	amount_per_month  NUMERIC(18,4) NOT NULL,
	total_paid        NUMERIC(18,4) NOT NULL DEFAULT 0,
	remaining_amount  NUMERIC(18,4) NOT NULL,
	status            VARCHAR(20) NOT NULL,
	deduction_history JSONB NOT NULL DEFAULT '[]',
	requested_by      UUID,
	approved_by       UUID,
	approved_at       TIMESTAMPTZ,
	rejected_reason   TEXT,
	disbursed_at      TIMESTAMPTZ,
	created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at        TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_advances_employee ON advances (company_id, employee_id, status);

CREATE TABLE IF NOT EXISTS payroll_deductions (
	id           UUID PRIMARY KEY,
	company_id   UUID NOT NULL,
	employee_id  UUID NOT NULL REFERENCES employees(id),
	type         VARCHAR(20) NOT NULL,
	amount       NUMERIC(18,4) NOT NULL,
	reason       TEXT NOT NULL,
	period_month INTEGER NOT NULL,
	period_year  INTEGER NOT NULL,
	created_by   UUID,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_payroll_deductions_period ON payroll_deductions (company_id, employee_id, period_year, period_month);

CREATE TABLE IF NOT EXISTS payroll_records (
	id                      UUID PRIMARY KEY,
	company_id              UUID NOT NULL,
	employee_id             UUID NOT NULL REFERENCES employees(id),
	period_month            INTEGER NOT NULL,
	period_year             INTEGER NOT NULL,
	compensation            JSONB NOT NULL,
	attendance              JSONB NOT NULL,
	earnings                JSONB NOT NULL,
	deductions              JSONB NOT NULL,
	summary                 JSONB NOT NULL,
	gross_salary            NUMERIC(18,4) NOT NULL,
	total_deductions        NUMERIC(18,4) NOT NULL,
	net_salary              NUMERIC(18,4) NOT NULL,
	paid_amount             NUMERIC(18,4) NOT NULL DEFAULT 0,
	unpaid_balance          NUMERIC(18,4) NOT NULL,
	carried_forward_to_next NUMERIC(18,4) NOT NULL DEFAULT 0,
	status                  VARCHAR(20) NOT NULL,
	locked                  BOOLEAN NOT NULL DEFAULT FALSE,
	notes                   TEXT,
	revisions               JSONB NOT NULL DEFAULT '[]',
	submitted_by            UUID,
	submitted_at            TIMESTAMPTZ,
	approved_by             UUID,
	approved_at             TIMESTAMPTZ,
	paid_by                 UUID,
	paid_at                 TIMESTAMPTZ,
	locked_by               UUID,
	locked_at               TIMESTAMPTZ,
	created_at              TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at              TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	CONSTRAINT uk_payroll_record_period UNIQUE (employee_id, period_month, period_year)
);
CREATE INDEX IF NOT EXISTS idx_payroll_records_period ON payroll_records (company_id, period_year, period_month);
`

// Migrate creates the schema. It is safe to run on every start.
func Migrate(ctx context.Context, db *database.DB) error {
	if _, err := db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to migrate postgres schema: %w", err)
	}
	return nil
}

// isUniqueViolation reports a unique_violation on the named constraint.
func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "23505" && (constraint == "" || pgErr.ConstraintName == constraint)
}
