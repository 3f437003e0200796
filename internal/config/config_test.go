package config

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", "test.db")
	t.Setenv("JWT_SECRET_KEY", "secret")
	t.Setenv("APP_PORT", "9090")
	t.Setenv("APP_ALLOWED_ORIGINS", "http://a.test, http://b.test,")
	for _, key := range []string{
		"PAYROLL_INSURANCE_RATE",
		"PAYROLL_TAX_RATE",
		"PAYROLL_WORKING_DAYS_PER_MONTH",
		"PAYROLL_HOURS_PER_DAY",
		"PAYROLL_DEFAULT_OVERTIME_MULTIPLIER",
		"PAYROLL_CURRENCY_SCALE",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, 9090, cfg.App.Port)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.App.AllowedOrigins)

	policy := cfg.PayrollPolicy()
	assert.True(t, policy.InsuranceRate.Equal(decimal.RequireFromString("0.11")))
	assert.True(t, policy.TaxRate.Equal(decimal.RequireFromString("0.025")))
	assert.True(t, policy.DefaultOvertimeMultiplier.Equal(decimal.RequireFromString("1.5")))
	assert.Equal(t, 26, policy.WorkingDaysPerMonth)
	assert.Equal(t, 8, policy.HoursPerDay)
	assert.Equal(t, int32(2), policy.CurrencyScale)
}

func TestLoad_PayrollOverrides(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("PAYROLL_TAX_RATE", "0.0275")
	t.Setenv("PAYROLL_HOURS_PER_DAY", "7")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.Payroll.TaxRate.Equal(decimal.RequireFromString("0.0275")))
	assert.Equal(t, 7, cfg.Payroll.HoursPerDay)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"unparseable rate", "PAYROLL_INSURANCE_RATE", "eleven percent"},
		{"rate above one", "PAYROLL_TAX_RATE", "1.5"},
		{"zero working days", "PAYROLL_WORKING_DAYS_PER_MONTH", "0"},
		{"unknown driver", "DB_DRIVER", "mysql"},
		{"bad port", "APP_PORT", "http"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setBaseEnv(t)
			t.Setenv(tt.key, tt.val)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestValidate_PostgresNeedsPassword(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DB_PASSWORD", "")

	_, err := Load()
	assert.ErrorContains(t, err, "DB_PASSWORD")
}

func TestDatabaseURL(t *testing.T) {
	cfg := &Config{Database: DatabaseConfig{
		Host:     "db",
		Port:     5432,
		User:     "payroll",
		Password: "pw",
		Name:     "payroll",
		SSLMode:  "disable",
	}}

	assert.Equal(t, "postgres://payroll:pw@db:5432/payroll?sslmode=disable", cfg.DatabaseURL())
}
