package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/jwalitptl/hospital-portal/internal/app"
	"github.com/jwalitptl/hospital-portal/internal/config"
	"github.com/jwalitptl/hospital-portal/pkg/logger"
	"github.com/jwalitptl/hospital-portal/pkg/metrics"
	"github.com/jwalitptl/hospital-portal/pkg/worker"
)

func main() {
	var (
		configPath string
		healthAddr string
	)

	root := &cobra.Command{
		Use:           "portal-worker",
		Short:         "Expire stale queue rows and log store events",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), configPath, healthAddr)
		},
	}
	root.Flags().StringVarP(&configPath, "config", "c", "", "path to config file")
	root.Flags().StringVar(&healthAddr, "health-addr", ":8081", "address for health and metrics endpoints")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		log.Error().Err(err).Msg("worker failed")
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath, healthAddr string) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger := app.NewLogger(cfg.Log)
	if cfg.Storage.Driver == "memory" {
		logger.Warn("memory storage is private to this process; the worker only sees its own tables")
	}

	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics("portal_worker", reg)

	kv, closeStorage, err := app.OpenStorage(ctx, cfg, m)
	if err != nil {
		return fmt.Errorf("failed to open %s storage: %w", cfg.Storage.Driver, err)
	}
	defer closeStorage()

	broker, err := app.NewBroker(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to connect event broker: %w", err)
	}
	if broker != nil {
		defer broker.Close()
	}

	store, err := app.NewRecordStore(ctx, cfg, kv, nil, m, logger)
	if err != nil {
		return err
	}

	srv := healthServer(healthAddr, kv.Ping, reg, logger)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	var wg sync.WaitGroup

	processor := worker.NewExpiryProcessor(store, worker.ExpiryProcessorConfig{
		Interval:      cfg.Worker.ExpiryInterval,
		RetryAttempts: 3,
		RetryDelay:    5 * time.Second,
	}, logger, m)
	wg.Add(1)
	go func() {
		defer wg.Done()
		processor.Start(ctx)
	}()

	if broker != nil {
		consumer := worker.NewEventConsumer(broker, cfg.Events.Channel, worker.LogEvents(logger), logger)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := consumer.Start(ctx); err != nil {
				logger.Error(err, "Event consumer stopped")
			}
		}()
	}

	wg.Wait()
	logger.Info("Worker exited")
	return nil
}

func healthServer(addr string, ping func(context.Context) error, reg *prometheus.Registry, logger *logger.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/health/live", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		if err := ping(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(err, "Health check server failed")
		}
	}()
	return srv
}
