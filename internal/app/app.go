// Package app wires configuration into the storage, messaging and record
// store shared by the api and worker binaries.
package app

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/hospital-portal/internal/config"
	"github.com/jwalitptl/hospital-portal/internal/repository"
	"github.com/jwalitptl/hospital-portal/internal/repository/memory"
	"github.com/jwalitptl/hospital-portal/internal/repository/postgres"
	redisrepo "github.com/jwalitptl/hospital-portal/internal/repository/redis"
	"github.com/jwalitptl/hospital-portal/internal/service/records"
	"github.com/jwalitptl/hospital-portal/pkg/logger"
	"github.com/jwalitptl/hospital-portal/pkg/messaging"
	redisbroker "github.com/jwalitptl/hospital-portal/pkg/messaging/redis"
	"github.com/jwalitptl/hospital-portal/pkg/metrics"
	"github.com/jwalitptl/hospital-portal/pkg/security"
)

// NewLogger builds the application logger and points the global zerolog
// logger used by the HTTP middleware at the same output.
func NewLogger(cfg config.LogConfig) *logger.Logger {
	l := logger.NewLogger(&logger.Config{
		Level:  logger.ParseLevel(cfg.Level),
		Output: os.Stdout,
		JSON:   cfg.JSON,
	})
	log.Logger = *l.Zerolog()
	return l
}

// OpenStorage connects the configured key-value medium and wraps it with
// storage metrics. The returned close func releases the connection.
func OpenStorage(ctx context.Context, cfg *config.Config, m *metrics.Metrics) (repository.KeyValueStore, func() error, error) {
	var (
		kv  repository.KeyValueStore
		err error
	)

	switch cfg.Storage.Driver {
	case "memory":
		kv = memory.NewKeyValueStore()
	case "redis":
		kv, err = redisrepo.NewKeyValueStore(ctx, redisrepo.Config{
			URL:          cfg.Redis.URL,
			KeyPrefix:    cfg.Redis.KeyPrefix,
			MaxRetries:   cfg.Redis.MaxRetries,
			RetryBackoff: cfg.Redis.RetryBackoff,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
		})
	case "postgres":
		db, dbErr := postgres.NewDB(ctx, cfg.Database)
		if dbErr != nil {
			return nil, nil, dbErr
		}
		kv, err = postgres.NewKeyValueStore(ctx, db)
		if err != nil {
			db.Close()
		}
	default:
		err = fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
	if err != nil {
		return nil, nil, err
	}

	kv = repository.Instrument(kv, cfg.Storage.Driver, m)
	return kv, kv.Close, nil
}

// NewBroker connects the Redis event broker, or returns nil when events
// are disabled.
func NewBroker(ctx context.Context, cfg *config.Config, l *logger.Logger) (messaging.Broker, error) {
	if !cfg.Events.Enabled {
		return nil, nil
	}
	return redisbroker.NewRedisBroker(ctx, redisbroker.Config{
		URL:          cfg.Redis.URL,
		MaxRetries:   cfg.Redis.MaxRetries,
		RetryBackoff: cfg.Redis.RetryBackoff,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
	}, *l.Zerolog())
}

// NewRecordStore opens the record store over kv. A nil publisher disables
// events.
func NewRecordStore(ctx context.Context, cfg *config.Config, kv repository.KeyValueStore, pub messaging.Publisher, m *metrics.Metrics, l *logger.Logger) (*records.Store, error) {
	opts := []records.Option{
		records.WithLocation(cfg.Storage.Location()),
		records.WithHasher(security.NewHasher(cfg.Auth.PasswordHashing, cfg.Auth.BcryptCost)),
		records.WithReloadOnRead(cfg.Storage.ReloadOnRead),
		records.WithLogger(l),
		records.WithMetrics(m),
	}
	if pub != nil {
		opts = append(opts, records.WithPublisher(pub, cfg.Events.Channel))
	}

	store, err := records.New(ctx, kv, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to open record store: %w", err)
	}
	return store, nil
}
