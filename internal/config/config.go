package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"billora/internal/domain"
)

// Config holds all application configuration.
type Config struct {
	Server  ServerConfig
	DB      DBConfig
	S3      S3Config
	Email   EmailConfig
	Log     LogConfig
	CORS    CORSConfig
	Tax     TaxConfig
	Company CompanyConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// S3Config holds AWS S3 settings for receipt and attachment storage.
type S3Config struct {
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	MaxFileSizeMB int64  `mapstructure:"max_file_size_mb"`
	PresignExpiry int64  `mapstructure:"presign_expiry"`
}

// EmailConfig holds email delivery settings.
type EmailConfig struct {
	Provider    string `mapstructure:"provider"`
	Region      string `mapstructure:"region"`
	FromAddress string `mapstructure:"from_address"`
	FromName    string `mapstructure:"from_name"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// TaxConfig selects the tax accumulation mode for invoice totals.
type TaxConfig struct {
	Mode string `mapstructure:"mode"`
}

// TaxMode returns the configured mode, defaulting to per-line.
func (t *TaxConfig) TaxMode() domain.TaxMode {
	if t.Mode == string(domain.TaxModeFlat) {
		return domain.TaxModeFlat
	}
	return domain.TaxModePerLine
}

// CompanyConfig holds the issuing company profile. It is configuration, not
// a database row: collaborators receive it as an injected value.
type CompanyConfig struct {
	Name          string `mapstructure:"name"`
	Address       string `mapstructure:"address"`
	Email         string `mapstructure:"email"`
	Phone         string `mapstructure:"phone"`
	TaxNumber     string `mapstructure:"tax_number"`
	BankDetails   string `mapstructure:"bank_details"`
	InvoicePrefix string `mapstructure:"invoice_prefix"`
}

// Settings converts the config section into the domain value.
func (c *CompanyConfig) Settings() *domain.CompanySettings {
	return &domain.CompanySettings{
		Name:          c.Name,
		Address:       c.Address,
		Email:         c.Email,
		Phone:         c.Phone,
		TaxNumber:     c.TaxNumber,
		BankDetails:   c.BankDetails,
		InvoicePrefix: c.InvoicePrefix,
	}
}

// Load reads configuration from environment variables with the BILLORA_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("BILLORA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "billora")
	v.SetDefault("db.password", "billora_secret")
	v.SetDefault("db.name", "billora_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// S3 defaults
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "billora-uploads")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.max_file_size_mb", 5)
	v.SetDefault("s3.presign_expiry", 3600)

	// Email defaults
	v.SetDefault("email.provider", "noop")
	v.SetDefault("email.region", "us-east-1")
	v.SetDefault("email.from_address", "billing@billora.local")
	v.SetDefault("email.from_name", "Billora")

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Tax defaults
	v.SetDefault("tax.mode", string(domain.TaxModePerLine))

	// Company defaults
	v.SetDefault("company.name", "")
	v.SetDefault("company.address", "")
	v.SetDefault("company.email", "")
	v.SetDefault("company.phone", "")
	v.SetDefault("company.tax_number", "")
	v.SetDefault("company.bank_details", "")
	v.SetDefault("company.invoice_prefix", "NAFT")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":            "BILLORA_SERVER_PORT",
		"server.read_timeout":    "BILLORA_SERVER_READ_TIMEOUT",
		"server.write_timeout":   "BILLORA_SERVER_WRITE_TIMEOUT",
		"server.environment":     "BILLORA_SERVER_ENVIRONMENT",
		"db.host":                "BILLORA_DB_HOST",
		"db.port":                "BILLORA_DB_PORT",
		"db.user":                "BILLORA_DB_USER",
		"db.password":            "BILLORA_DB_PASSWORD",
		"db.name":                "BILLORA_DB_NAME",
		"db.sslmode":             "BILLORA_DB_SSLMODE",
		"db.max_open":            "BILLORA_DB_MAX_OPEN",
		"db.max_idle":            "BILLORA_DB_MAX_IDLE",
		"s3.region":              "BILLORA_S3_REGION",
		"s3.bucket":              "BILLORA_S3_BUCKET",
		"s3.endpoint":            "BILLORA_S3_ENDPOINT",
		"s3.access_key":          "BILLORA_S3_ACCESS_KEY",
		"s3.secret_key":          "BILLORA_S3_SECRET_KEY",
		"s3.max_file_size_mb":    "BILLORA_S3_MAX_FILE_SIZE_MB",
		"s3.presign_expiry":      "BILLORA_S3_PRESIGN_EXPIRY",
		"email.provider":         "BILLORA_EMAIL_PROVIDER",
		"email.region":           "BILLORA_EMAIL_REGION",
		"email.from_address":     "BILLORA_EMAIL_FROM_ADDRESS",
		"email.from_name":        "BILLORA_EMAIL_FROM_NAME",
		"log.level":              "BILLORA_LOG_LEVEL",
		"log.format":             "BILLORA_LOG_FORMAT",
		"cors.allowed_origins":   "BILLORA_CORS_ALLOWED_ORIGINS",
		"tax.mode":               "BILLORA_TAX_MODE",
		"company.name":           "BILLORA_COMPANY_NAME",
		"company.address":        "BILLORA_COMPANY_ADDRESS",
		"company.email":          "BILLORA_COMPANY_EMAIL",
		"company.phone":          "BILLORA_COMPANY_PHONE",
		"company.tax_number":     "BILLORA_COMPANY_TAX_NUMBER",
		"company.bank_details":   "BILLORA_COMPANY_BANK_DETAILS",
		"company.invoice_prefix": "BILLORA_COMPANY_INVOICE_PREFIX",
	}
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("binding env %s: %w", env, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	// Comma-separated origins arrive as a single string through env vars
	if len(cfg.CORS.AllowedOrigins) == 1 && strings.Contains(cfg.CORS.AllowedOrigins[0], ",") {
		cfg.CORS.AllowedOrigins = strings.Split(cfg.CORS.AllowedOrigins[0], ",")
	}

	if cfg.Tax.Mode != string(domain.TaxModePerLine) && cfg.Tax.Mode != string(domain.TaxModeFlat) {
		return nil, fmt.Errorf("invalid tax.mode %q: must be %q or %q",
			cfg.Tax.Mode, domain.TaxModePerLine, domain.TaxModeFlat)
	}

	return &cfg, nil
}
