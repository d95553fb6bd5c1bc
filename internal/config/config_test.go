package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PROVIDER_API_BASE_URL", "http://localhost:8080")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080", cfg.ProviderAPIBaseURL)
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout)
	assert.True(t, cfg.RuntimeStateEnabled)
	assert.True(t, cfg.RefreshEnabled)
	assert.Equal(t, 5, cfg.RefreshIntervalMinutes)
	assert.Equal(t, 9091, cfg.MetricsPort)
	assert.Equal(t, "provider-sync", cfg.ServiceName)
	assert.Equal(t, "jan", cfg.ServiceNamespace)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "console", cfg.LogFormat)
	assert.False(t, cfg.EnvReloadedAt.IsZero())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PROVIDER_API_BASE_URL", "https://api.example.com")
	t.Setenv("PROVIDER_API_KEY", "sk-test")
	t.Setenv("RUNTIME_STATE_ENABLED", "false")
	t.Setenv("REFRESH_INTERVAL_MINUTES", "15")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("LOG_FORMAT", "JSON")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sk-test", cfg.ProviderAPIKey)
	assert.False(t, cfg.RuntimeStateEnabled)
	assert.Equal(t, 15, cfg.RefreshIntervalMinutes)
	assert.Equal(t, "debug", cfg.LogLevel, "log level should be lowercased")
	assert.Equal(t, "json", cfg.LogFormat, "log format should be lowercased")
}

func TestLoad_MissingBaseURL(t *testing.T) {
	t.Setenv("PROVIDER_API_BASE_URL", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_InvalidBaseURL(t *testing.T) {
	t.Setenv("PROVIDER_API_BASE_URL", "not a url")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_NegativeRefreshInterval(t *testing.T) {
	t.Setenv("PROVIDER_API_BASE_URL", "http://localhost:8080")
	t.Setenv("REFRESH_INTERVAL_MINUTES", "-1")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_UpdatesGlobal(t *testing.T) {
	t.Setenv("PROVIDER_API_BASE_URL", "http://localhost:8080")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Same(t, cfg, GetGlobal())
}
