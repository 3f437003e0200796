package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/payroll"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	Database DatabaseConfig
	JWT      JWTConfig
	App      AppConfig
	Payroll  PayrollConfig
}

type DatabaseConfig struct {
	Driver     string
	Host       string
	Port       int
	User       string
	Password   string
	Name       string
	SSLMode    string
	SQLitePath string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port           int
	Env            string
	LogLevel       string
	AllowedOrigins []string
}

// PayrollConfig holds the policy values fed into the calculation engine.
type PayrollConfig struct {
	InsuranceRate             decimal.Decimal
	TaxRate                   decimal.Decimal
	DefaultOvertimeMultiplier decimal.Decimal
	WorkingDaysPerMonth       int
	HoursPerDay               int
	CurrencyScale             int32
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	config.Database = DatabaseConfig{
		Driver:     strings.ToLower(getEnv("DB_DRIVER", DriverPostgres)),
		Host:       getEnv("DB_HOST", "localhost"),
		Port:       dbPort,
		User:       getEnv("DB_USER", "postgres"),
		Password:   getEnv("DB_PASSWORD", ""),
		Name:       getEnv("DB_NAME", "cmlabs-payroll"),
		SSLMode:    getEnv("DB_SSL_MODE", "disable"),
		SQLitePath: getEnv("SQLITE_PATH", "payroll.db"),
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:           appPort,
		Env:            getEnv("APP_ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		AllowedOrigins: getEnvSlice("APP_ALLOWED_ORIGINS", "http://localhost:3000"),
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: getEnv("JWT_ACCESS_EXPIRATION_TIME", "1h"),
	}

	// Payroll policy
	payrollConfig, err := loadPayrollConfig()
	if err != nil {
		return nil, err
	}
	config.Payroll = payrollConfig

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

func loadPayrollConfig() (PayrollConfig, error) {
	insuranceRate, err := getEnvDecimal("PAYROLL_INSURANCE_RATE", "0.11")
	if err != nil {
		return PayrollConfig{}, err
	}
	taxRate, err := getEnvDecimal("PAYROLL_TAX_RATE", "0.025")
	if err != nil {
		return PayrollConfig{}, err
	}
	overtimeMultiplier, err := getEnvDecimal("PAYROLL_DEFAULT_OVERTIME_MULTIPLIER", "1.5")
	if err != nil {
		return PayrollConfig{}, err
	}
	workingDays, err := strconv.Atoi(getEnv("PAYROLL_WORKING_DAYS_PER_MONTH", "26"))
	if err != nil {
		return PayrollConfig{}, fmt.Errorf("invalid PAYROLL_WORKING_DAYS_PER_MONTH: %w", err)
	}
	hoursPerDay, err := strconv.Atoi(getEnv("PAYROLL_HOURS_PER_DAY", "8"))
	if err != nil {
		return PayrollConfig{}, fmt.Errorf("invalid PAYROLL_HOURS_PER_DAY: %w", err)
	}
	scale, err := strconv.ParseInt(getEnv("PAYROLL_CURRENCY_SCALE", "2"), 10, 32)
	if err != nil {
		return PayrollConfig{}, fmt.Errorf("invalid PAYROLL_CURRENCY_SCALE: %w", err)
	}

	return PayrollConfig{
		InsuranceRate:             insuranceRate,
		TaxRate:                   taxRate,
		DefaultOvertimeMultiplier: overtimeMultiplier,
		WorkingDaysPerMonth:       workingDays,
		HoursPerDay:               hoursPerDay,
		CurrencyScale:             int32(scale),
	}, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverPostgres:
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD is required")
		}
	case DriverSQLite:
		if c.Database.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	return c.PayrollPolicy().Validate()
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// PayrollPolicy converts the payroll section into the engine policy.
func (c *Config) PayrollPolicy() payroll.Policy {
	return payroll.Policy{
		InsuranceRate:             c.Payroll.InsuranceRate,
		TaxRate:                   c.Payroll.TaxRate,
		DefaultOvertimeMultiplier: c.Payroll.DefaultOvertimeMultiplier,
		WorkingDaysPerMonth:       c.Payroll.WorkingDaysPerMonth,
		HoursPerDay:               c.Payroll.HoursPerDay,
		CurrencyScale:             c.Payroll.CurrencyScale,
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvSlice(key, fallback string) []string {
	value := getEnv(key, fallback)
	if value == "" {
		return []string{}
	}
	var result []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}

func getEnvDecimal(key, fallback string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(getEnv(key, fallback))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
