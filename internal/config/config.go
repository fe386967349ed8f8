// Package config defines service configuration structures and loading hooks.
package config

import (
	"context"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level" validate:"oneof=debug info warn warning error"`

	// LogFormat selects text or json log lines.
	LogFormat string `koanf:"log_format" validate:"oneof=text json"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr" validate:"required"`

	// DatabaseDriver is one of postgres, pgx or sqlite.
	DatabaseDriver string `koanf:"database_driver" validate:"oneof=postgres pgx sqlite"`

	// DatabaseURL is the driver-specific DSN.
	DatabaseURL string `koanf:"database_url" validate:"required"`

	// AutoMigrate applies pending schema migrations on serve.
	AutoMigrate bool `koanf:"auto_migrate"`

	// CORSOrigins lists browser origins allowed to call the API.
	CORSOrigins []string `koanf:"cors_origins"`

	// RecentAssessmentsLimit caps the summary's recent assessments list.
	RecentAssessmentsLimit int `koanf:"recent_assessments_limit" validate:"min=1,max=100"`

	// DefaultScoringMode is used by the CLI when no mode is given.
	DefaultScoringMode string `koanf:"default_scoring_mode" validate:"oneof=average team_readiness coverage"`

	// ShutdownTimeout bounds graceful HTTP shutdown.
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`

	// MetricsNamespace prefixes every Prometheus metric name.
	MetricsNamespace string `koanf:"metrics_namespace" validate:"required,metricname"`

	// MetricsSubsystem is an optional second name prefix.
	MetricsSubsystem string `koanf:"metrics_subsystem" validate:"omitempty,metricname"`

	// MetricsLabels are constant labels attached to every metric.
	MetricsLabels map[string]string `koanf:"metrics_labels" validate:"dive,keys,metricname,endkeys"`

	// MetricsBuckets overrides the latency histogram buckets, in milliseconds.
	MetricsBuckets []float64 `koanf:"metrics_buckets" validate:"omitempty,increasing"`
}

// New returns a Config populated with defaults.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:               "info",
		LogFormat:              "text",
		Addr:                   ":8080",
		DatabaseDriver:         "sqlite",
		DatabaseURL:            "skilltree.db",
		AutoMigrate:            true,
		CORSOrigins:            []string{"http://localhost:3000"},
		RecentAssessmentsLimit: 5,
		DefaultScoringMode:     "average",
		ShutdownTimeout:        30 * time.Second,
		MetricsNamespace:       "skilltree",
	}
}
