package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Global singleton so background jobs can observe env reloads
var globalConfig *Config

// Config holds all environment backed configuration for provider-sync.
type Config struct {
	// Remote provider service
	ProviderAPIBaseURL string        `env:"PROVIDER_API_BASE_URL,notEmpty"`
	ProviderAPIKey     string        `env:"PROVIDER_API_KEY"`
	HTTPTimeout        time.Duration `env:"HTTP_TIMEOUT" envDefault:"30s"`

	// Cache behaviour
	RuntimeStateEnabled    bool `env:"RUNTIME_STATE_ENABLED" envDefault:"true"`
	RefreshEnabled         bool `env:"REFRESH_ENABLED" envDefault:"true"`
	RefreshIntervalMinutes int  `env:"REFRESH_INTERVAL_MINUTES" envDefault:"5"`

	// Operational HTTP surface
	MetricsPort int `env:"METRICS_PORT" envDefault:"9091"`

	// Observability / Logging
	OTLPEndpoint     string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OTLPHeaders      string `env:"OTEL_EXPORTER_OTLP_HEADERS"`
	ServiceName      string `env:"SERVICE_NAME" envDefault:"provider-sync"`
	ServiceNamespace string `env:"SERVICE_NAMESPACE" envDefault:"jan"`
	Environment      string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel         string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat        string `env:"LOG_FORMAT" envDefault:"console"`

	// Internal
	EnvReloadedAt time.Time
}

// Load parses environment variables into Config and performs minimal validation.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg.ProviderAPIBaseURL = strings.TrimSpace(cfg.ProviderAPIBaseURL)
	if _, err := url.ParseRequestURI(cfg.ProviderAPIBaseURL); err != nil {
		return nil, fmt.Errorf("invalid PROVIDER_API_BASE_URL: %w", err)
	}

	if cfg.RefreshIntervalMinutes < 0 {
		return nil, fmt.Errorf("REFRESH_INTERVAL_MINUTES must not be negative, got %d", cfg.RefreshIntervalMinutes)
	}

	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	cfg.LogFormat = strings.ToLower(cfg.LogFormat)
	cfg.EnvReloadedAt = time.Now()

	// Update the global singleton for background jobs
	globalConfig = cfg

	return cfg, nil
}

// GetGlobal returns the global config instance for backwards compatibility.
// Deprecated: Use dependency injection with Load() instead.
func GetGlobal() *Config {
	return globalConfig
}

var Version = "dev"

func IsDev() bool {
	return strings.HasPrefix(Version, "dev")
}
