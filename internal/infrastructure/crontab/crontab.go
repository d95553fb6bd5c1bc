package crontab

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mileusna/crontab"

	"github.com/janhq/provider-sync/internal/config"
	"github.com/janhq/provider-sync/internal/domain/provider"
	"github.com/janhq/provider-sync/internal/infrastructure/logger"
	"github.com/janhq/provider-sync/internal/utils/platformerrors"
)

const (
	DefaultRefreshInterval = 5                // in minutes
	CronJobTimeout         = 10 * time.Minute // Timeout for each cron job execution
)

type Crontab struct {
	ctab    *crontab.Crontab
	service *provider.Service
}

func NewCrontab(service *provider.Service) *Crontab {
	return &Crontab{
		ctab:    crontab.New(),
		service: service,
	}
}

func (c *Crontab) Run(ctx context.Context) error {
	log := logger.GetLogger()
	// execute once on daemon start
	c.refreshProviderCaches(ctx)

	// Schedule the periodic cache refresh if enabled
	cfg := config.GetGlobal()
	if cfg != nil && cfg.RefreshEnabled {
		interval := cfg.RefreshIntervalMinutes
		if interval <= 0 {
			interval = DefaultRefreshInterval
		}

		cronExpr := fmt.Sprintf("*/%d * * * *", interval)
		if err := c.ctab.AddJob(cronExpr, func() {
			jobCtx, cancel := context.WithTimeout(context.Background(), CronJobTimeout)
			defer cancel()
			c.refreshProviderCaches(jobCtx)
		}); err != nil {
			return platformerrors.AsError(ctx, platformerrors.LayerInfrastructure, err, "failed to add refresh job")
		}
		log.Warn().Msgf("Provider refresh scheduled: every %d minute(s)", interval)
	}

	// Schedule environment reload job
	if err := c.ctab.AddJob("* * * * *", func() {
		if _, err := config.Load(); err != nil {
			log.Error().Err(err).Msg("Failed to reload environment config")
		}
	}); err != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerInfrastructure, err, "failed to add env reload job")
	}

	<-ctx.Done()
	c.ctab.Shutdown()
	return nil
}

func (c *Crontab) refreshProviderCaches(ctx context.Context) {
	log := logger.GetLogger()
	if err := c.service.Refresh(ctx); err != nil {
		var perr *platformerrors.PlatformError
		if errors.As(err, &perr) {
			platformerrors.LogError(log, perr)
		} else {
			log.Error().Err(err).Msg("Failed to refresh provider caches")
		}
		return
	}

	snap := c.service.Snapshot()
	log.Info().
		Int("providers", len(snap.Providers)).
		Int("enabled_models", len(snap.EnabledModels)).
		Msg("provider caches refreshed")
}
