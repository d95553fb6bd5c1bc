package infrastructure

import (
	"github.com/google/wire"
	"github.com/rs/zerolog"

	"github.com/janhq/provider-sync/internal/config"
	"github.com/janhq/provider-sync/internal/domain/provider"
	"github.com/janhq/provider-sync/internal/infrastructure/crontab"
	"github.com/janhq/provider-sync/internal/infrastructure/gateway"
	"github.com/janhq/provider-sync/internal/infrastructure/logger"
)

// ProvideConfig loads and provides the application configuration
func ProvideConfig() (*config.Config, error) {
	return config.Load()
}

// ProvideGateway provides the remote provider API client
func ProvideGateway(cfg *config.Config, log zerolog.Logger) provider.Gateway {
	return gateway.NewClient(cfg, log)
}

// InfrastructureProvider provides all infrastructure dependencies
var InfrastructureProvider = wire.NewSet(
	// Config
	ProvideConfig,

	// Logger
	logger.GetLogger,

	// Remote gateway
	ProvideGateway,

	// Crontab for cache refresh
	crontab.NewCrontab,
)
