// Package config defines the process configuration for MindFuel services.
// Configuration is loaded once at start-up and is immutable thereafter.
//
// Values are resolved via a priority chain:
//
//	OS Environment (Highest) -> Dotenv File -> SecretProvider (Lowest)
//
// Any missing required value or invalid format makes LoadConfig fail, and the
// entry points exit immediately.
package config

import (
	"time"

	"mindfuel/internal/types"
)

// SecretString is an alias for types.SecretString, the redacted secret type used
// throughout configuration to prevent accidental logging of sensitive values.
type SecretString = types.SecretString

// Config is the top-level configuration struct. Sub-components receive only
// the subsets they require.
type Config struct {
	Environment string `envconfig:"APP_ENV" validate:"required,oneof=local dev staging prod"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`

	Server        ServerConfig
	Database      DatabaseConfig
	AWS           AWSConfig
	Observability ObservabilityConfig
	Wellness      WellnessConfig
	Usage         UsageConfig
	Worker        WorkerConfig

	// Injected via ldflags, not env.
	Build BuildInfo
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port               string        `envconfig:"PORT" default:"8080"`
	RequestTimeout     time.Duration `envconfig:"REQUEST_TIMEOUT" default:"15s"`
	CorsAllowedOrigins []string      `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
}

// DatabaseConfig holds database connection and pool tuning parameters.
type DatabaseConfig struct {
	URL SecretString `envconfig:"DATABASE_URL" validate:"required,url"`

	MaxConns        int           `envconfig:"DB_MAX_CONNS" default:"10" validate:"gte=1"`
	MinConns        int           `envconfig:"DB_MIN_CONNS" default:"2" validate:"gte=0"`
	MaxConnLifetime time.Duration `envconfig:"DB_MAX_CONN_LIFETIME" default:"30m"`
	AutoMigrate     bool          `envconfig:"DB_AUTO_MIGRATE" default:"false"`
}

// AWSConfig holds AWS resource identifiers and regional configuration.
type AWSConfig struct {
	Region string `envconfig:"AWS_REGION" default:"us-east-1"`

	// Empty means alerts are logged instead of queued.
	AlertQueueURL string `envconfig:"SQS_ALERTS" validate:"omitempty,url"`

	// LocalStack support (empty in prod).
	EndpointURL string `envconfig:"AWS_ENDPOINT_URL" validate:"omitempty,url"`
}

// ObservabilityConfig holds telemetry settings.
type ObservabilityConfig struct {
	MetricNamespace string `envconfig:"METRIC_NAMESPACE" default:"MindFuel"`
	EnableMetrics   bool   `envconfig:"ENABLE_METRICS" default:"false"`
}

// WellnessConfig selects the classifier catalog and alert composition policy.
type WellnessConfig struct {
	CatalogPath string `envconfig:"CLASSIFIER_CATALOG_PATH"`
	Composition string `envconfig:"ALERT_COMPOSITION" default:"most_severe" validate:"oneof=category_only curated_only union curated_first most_severe"`
}

// UsageConfig points at the remote usage service. An empty SourceURL selects
// the built-in mock source.
type UsageConfig struct {
	SourceURL   string        `envconfig:"USAGE_SOURCE_URL" validate:"omitempty,url"`
	SourceToken SecretString  `envconfig:"USAGE_SOURCE_TOKEN"`
	Timeout     time.Duration `envconfig:"USAGE_SOURCE_TIMEOUT" default:"10s"`
}

// WorkerConfig tunes the queue worker.
type WorkerConfig struct {
	Concurrency int `envconfig:"WORKER_CONCURRENCY" default:"4" validate:"gte=1,lte=64"`
}

// BuildInfo holds build-time metadata injected via ldflags.
type BuildInfo struct {
	Version   string
	Commit    string
	BuildTime string
}

// ConfigErrorType categorizes configuration loading failures to aid debugging.
type ConfigErrorType string

const (
	// ErrMissingEnv indicates a required environment variable was not found.
	ErrMissingEnv ConfigErrorType = "MISSING_ENV"
	// ErrSecretResolution indicates a failure resolving a *_SECRET_REF.
	ErrSecretResolution ConfigErrorType = "SECRET_FAILURE"
	// ErrValidation indicates the configuration failed struct validation rules.
	ErrValidation ConfigErrorType = "VALIDATION_FAILED"
	// ErrParsing indicates a failure when parsing environment variable values
	// into their target types.
	ErrParsing ConfigErrorType = "PARSING_FAILED"
)
