package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/hospital-portal/internal/app"
	"github.com/jwalitptl/hospital-portal/internal/config"
	"github.com/jwalitptl/hospital-portal/internal/email"
	"github.com/jwalitptl/hospital-portal/internal/handler/auth"
	"github.com/jwalitptl/hospital-portal/internal/handler/health"
	"github.com/jwalitptl/hospital-portal/internal/handler/patient"
	"github.com/jwalitptl/hospital-portal/internal/handler/staff"
	"github.com/jwalitptl/hospital-portal/internal/handler/visit"
	"github.com/jwalitptl/hospital-portal/internal/middleware"
	"github.com/jwalitptl/hospital-portal/internal/router"
	"github.com/jwalitptl/hospital-portal/internal/service/session"
	"github.com/jwalitptl/hospital-portal/pkg/messaging"
	"github.com/jwalitptl/hospital-portal/pkg/metrics"
)

func main() {
	var configPath string

	root := &cobra.Command{
		Use:           "portal-api",
		Short:         "Hospital portal clinical record API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config file")

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP API",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return serve(cmd.Context(), configPath)
			},
		},
		&cobra.Command{
			Use:   "reset",
			Short: "Wipe all tables and sessions and reseed the demo data",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return reset(cmd.Context(), configPath)
			},
		},
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

func serve(ctx context.Context, configPath string) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger := app.NewLogger(cfg.Log)

	if err := middleware.SetupValidation(middleware.DefaultValidationConfig()); err != nil {
		return fmt.Errorf("failed to register validators: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewMetrics("portal", reg)

	kv, closeStorage, err := app.OpenStorage(ctx, cfg, m)
	if err != nil {
		return fmt.Errorf("failed to open %s storage: %w", cfg.Storage.Driver, err)
	}
	defer closeStorage()

	var publisher messaging.Publisher
	broker, err := app.NewBroker(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to connect event broker: %w", err)
	}
	if broker != nil {
		defer broker.Close()
		publisher = broker
	}

	store, err := app.NewRecordStore(ctx, cfg, kv, publisher, m, logger)
	if err != nil {
		return err
	}
	sessions := session.NewService(kv)

	r := router.NewRouter(
		sessions,
		health.NewHandler(kv),
		m,
		reg,
		router.RouterConfig{
			Mode:           cfg.Server.Mode,
			RateLimit:      rateLimit(cfg.RateLimit),
			RateBurst:      rateBurst(cfg.RateLimit),
			AllowedOrigins: cfg.CORS.AllowedOrigins,
			MaxBodyBytes:   cfg.Server.MaxBodyBytes,
		},
		auth.NewHandler(store, sessions),
		patient.NewHandler(store, email.NewService(cfg.Email), logger),
		visit.NewHandler(store),
		staff.NewHandler(store, logger),
	)
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", "addr", srv.Addr, "storage", cfg.Storage.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("server exited properly")
	return nil
}

func reset(ctx context.Context, configPath string) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger := app.NewLogger(cfg.Log)
	m := metrics.NewMetrics("portal", prometheus.NewRegistry())

	kv, closeStorage, err := app.OpenStorage(ctx, cfg, m)
	if err != nil {
		return fmt.Errorf("failed to open %s storage: %w", cfg.Storage.Driver, err)
	}
	defer closeStorage()

	store, err := app.NewRecordStore(ctx, cfg, kv, nil, m, logger)
	if err != nil {
		return err
	}
	if err := store.ResetDatabase(ctx); err != nil {
		return err
	}

	logger.Info("database reset", "storage", cfg.Storage.Driver)
	return nil
}

func rateLimit(cfg config.RateLimitConfig) rate.Limit {
	if !cfg.Enabled {
		return rate.Inf
	}
	return rate.Limit(cfg.RequestsPerSecond)
}

func rateBurst(cfg config.RateLimitConfig) int {
	if !cfg.Enabled {
		return 0
	}
	return cfg.Burst
}
