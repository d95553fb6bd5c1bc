package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/janhq/provider-sync/internal/config"
	"github.com/janhq/provider-sync/internal/domain/provider"
	"github.com/janhq/provider-sync/internal/infrastructure/crontab"
	"github.com/janhq/provider-sync/internal/infrastructure/logger"
	"github.com/janhq/provider-sync/internal/infrastructure/observability"
	"github.com/janhq/provider-sync/internal/utils/idgen"
)

type Application struct {
	service *provider.Service
	crontab *crontab.Crontab
	config  *config.Config
}

func init() {
	logger.GetLogger()
	if _, err := config.Load(); err != nil {
		log := logger.GetLogger()
		log.Fatal().Err(err).Msg("load config")
	}
}

func (application *Application) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var eg errgroup.Group
	eg.Go(func() error {
		err := application.crontab.Run(ctx)
		if err != nil {
			cancel()
		}
		return err
	})
	eg.Go(func() error {
		err := application.serveMetrics(ctx)
		if err != nil {
			cancel()
		}
		return err
	})

	if err := eg.Wait(); err != nil {
		panic(err)
	}
}

// serveMetrics exposes the Prometheus scrape endpoint and a health probe
// until ctx is cancelled.
func (application *Application) serveMetrics(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		snap := application.service.Snapshot()
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"status":"ok","providers":%d}`, len(snap.Providers))
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", application.config.MetricsPort),
		Handler: mux,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.GetGlobal()
	if cfg == nil {
		log := logger.GetLogger()
		log.Fatal().Msg("config not loaded")
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log := logger.GetLogger()
		log.Fatal().Err(err).Msg("configure logger")
	}

	instanceID, err := idgen.GenerateSecureID("sync", 8)
	if err != nil {
		log.Fatal().Err(err).Msg("generate instance id")
	}
	log = log.With().Str("instance_id", instanceID).Logger()
	log.Info().Str("version", config.Version).Bool("dev", config.IsDev()).Msg("starting provider sync daemon")

	application, err := CreateApplication()
	if err != nil {
		log.Fatal().Err(err).Msg("create application")
	}

	otelShutdown, err := observability.Setup(ctx, cfg, log)
	if err != nil {
		log.Error().Err(err).Msg("initialize observability")
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := otelShutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("shutdown telemetry")
			}
		}()
	}

	application.Start(ctx)
}
