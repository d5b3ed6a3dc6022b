package common

import (
	"errors"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration. Values come from the
// environment; nothing operational is hardcoded in the core packages.
type Config struct {
	AppEnv    string `envconfig:"APP_ENV" default:"development"`
	AppAddr   string `envconfig:"APP_ADDR" default:":8080"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`

	Database DatabaseConfig
	OCR      OCRConfig
	Ingest   IngestConfig
}

// DatabaseConfig holds database-related configuration.
type DatabaseConfig struct {
	DSN             string        `envconfig:"DB_URL"`
	SQLitePath      string        `envconfig:"SQLITE_PATH"`
	MaxConns        int32         `envconfig:"DB_MAX_CONNS" default:"20"`
	MinConns        int32         `envconfig:"DB_MIN_CONNS" default:"5"`
	MaxConnLifetime time.Duration `envconfig:"DB_MAX_CONN_LIFETIME" default:"30m"`
	MaxConnIdleTime time.Duration `envconfig:"DB_MAX_CONN_IDLE_TIME" default:"5m"`
	DialTimeout     time.Duration `envconfig:"DB_DIAL_TIMEOUT" default:"3s"`
}

// OCRConfig holds configuration for the external text-normalization boundary.
type OCRConfig struct {
	Pdftotext     string        `envconfig:"OCR_PDFTOTEXT" default:"pdftotext"`
	Tesseract     string        `envconfig:"OCR_TESSERACT" default:"tesseract"`
	TesseractLang string        `envconfig:"OCR_TESSERACT_LANG" default:"eng"`
	Timeout       time.Duration `envconfig:"OCR_TIMEOUT" default:"45s"`
}

// IngestConfig bounds the upload pipeline.
type IngestConfig struct {
	Concurrency int           `envconfig:"INGEST_CONCURRENCY" default:"4"`
	QueueSize   int           `envconfig:"INGEST_QUEUE_SIZE" default:"256"`
	JobTimeout  time.Duration `envconfig:"INGEST_JOB_TIMEOUT" default:"3m"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, cfg.Validate()
}

// Validate checks that the loaded configuration is usable.
func (c *Config) Validate() error {
	if c.Database.DSN == "" && c.Database.SQLitePath == "" {
		return errors.New("one of DB_URL or SQLITE_PATH is required")
	}
	if c.Ingest.Concurrency <= 0 {
		return errors.New("INGEST_CONCURRENCY must be positive")
	}
	return nil
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}
