package config

import (
	"errors"
	"fmt"

	"github.com/caarlos0/env/v11"
)

const bytesPerMB = 1024 * 1024

// DatabaseConfig holds relational store connection settings.
// Driver selects the SQL dialect: "postgres" (default) or "sqlite".
type DatabaseConfig struct {
	Driver             string `env:"DB_DRIVER" envDefault:"postgres"`
	Host               string `env:"DB_HOST"`
	Port               string `env:"DB_PORT" envDefault:"5432"`
	User               string `env:"DB_USER"`
	Password           string `env:"DB_PASSWORD"`
	Name               string `env:"DB_NAME"`
	SSLMode            string `env:"DB_SSLMODE" envDefault:"disable"`
	SQLitePath         string `env:"DB_SQLITE_PATH" envDefault:"docvault.db"`
	MaxOpenConns       int    `env:"DB_MAX_OPEN_CONNS" envDefault:"10"`
	MaxIdleConns       int    `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxLifetimeSec int    `env:"DB_CONN_MAX_LIFETIME_SEC" envDefault:"300"`
}

// MinIOConfig holds object storage settings for MinIO.
type MinIOConfig struct {
	Endpoint                  string `env:"MINIO_ENDPOINT"`
	AccessKey                 string `env:"MINIO_ACCESS_KEY"`
	SecretKey                 string `env:"MINIO_SECRET_KEY"`
	Bucket                    string `env:"MINIO_BUCKET"`
	UseSSL                    bool   `env:"MINIO_USE_SSL" envDefault:"false"`
	PresignedURLExpirySeconds int    `env:"PRESIGNED_URL_EXPIRY_SECONDS" envDefault:"3600"`
}

// UploadConfig bounds accepted uploads.
type UploadConfig struct {
	MaxFileSizeMB int64 `env:"MAX_UPLOAD_SIZE_MB" envDefault:"550"`
}

// MaxFileSizeBytes returns the upload limit in bytes.
func (u UploadConfig) MaxFileSizeBytes() int64 {
	return u.MaxFileSizeMB * bytesPerMB
}

// PaginationConfig bounds search page sizes.
type PaginationConfig struct {
	DefaultSize int `env:"PAGINATION_DEFAULT_SIZE" envDefault:"20"`
	MaxSize     int `env:"PAGINATION_MAX_SIZE" envDefault:"100"`
}

// LogConfig controls the process logger.
type LogConfig struct {
	Level    string `env:"LOG_LEVEL" envDefault:"info"`
	Format   string `env:"LOG_FORMAT" envDefault:"json"`
	Timezone string `env:"LOG_TIMEZONE" envDefault:"UTC"`
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost      string `env:"APP_HOST" envDefault:"localhost:8080"`
	Port         string `env:"PORT" envDefault:"8080"`
	RateLimitRPS int    `env:"RATE_LIMIT_RPS" envDefault:"0"`

	Database   DatabaseConfig
	MinIO      MinIOConfig
	Upload     UploadConfig
	Pagination PaginationConfig
	Log        LogConfig
}

// Load reads configuration from environment variables and validates the bounded options.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() (*AppConfig, error) {
	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the recognized options against their documented bounds.
func (c *AppConfig) Validate() error {
	var errs []error
	if c.Upload.MaxFileSizeMB < 1 || c.Upload.MaxFileSizeMB > 1024 {
		errs = append(errs, fmt.Errorf("MAX_UPLOAD_SIZE_MB must be between 1 and 1024, got %d", c.Upload.MaxFileSizeMB))
	}
	if c.Pagination.DefaultSize < 1 || c.Pagination.DefaultSize > 100 {
		errs = append(errs, fmt.Errorf("PAGINATION_DEFAULT_SIZE must be between 1 and 100, got %d", c.Pagination.DefaultSize))
	}
	if c.Pagination.MaxSize < 1 || c.Pagination.MaxSize > 1000 {
		errs = append(errs, fmt.Errorf("PAGINATION_MAX_SIZE must be between 1 and 1000, got %d", c.Pagination.MaxSize))
	}
	if c.Pagination.DefaultSize > c.Pagination.MaxSize && c.Pagination.MaxSize >= 1 {
		errs = append(errs, fmt.Errorf("PAGINATION_DEFAULT_SIZE (%d) must not exceed PAGINATION_MAX_SIZE (%d)", c.Pagination.DefaultSize, c.Pagination.MaxSize))
	}
	if c.MinIO.PresignedURLExpirySeconds < 1 {
		errs = append(errs, fmt.Errorf("PRESIGNED_URL_EXPIRY_SECONDS must be positive, got %d", c.MinIO.PresignedURLExpirySeconds))
	}
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		errs = append(errs, fmt.Errorf("DB_DRIVER must be postgres or sqlite, got %q", c.Database.Driver))
	}
	if c.RateLimitRPS < 0 {
		errs = append(errs, fmt.Errorf("RATE_LIMIT_RPS must not be negative, got %d", c.RateLimitRPS))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}
