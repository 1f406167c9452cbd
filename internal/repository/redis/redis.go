package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jwalitptl/hospital-portal/internal/repository"
	"github.com/jwalitptl/hospital-portal/pkg/circuitbreaker"
)

type Config struct {
	URL          string
	KeyPrefix    string
	MaxRetries   int
	RetryBackoff time.Duration
	PoolSize     int
	MinIdleConns int
}

type kvStore struct {
	client *redis.Client
	prefix string
	cb     *circuitbreaker.CircuitBreaker
}

// NewKeyValueStore connects to Redis and verifies the connection.
func NewKeyValueStore(ctx context.Context, cfg Config) (repository.KeyValueStore, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	opts.MaxRetries = cfg.MaxRetries
	opts.MinRetryBackoff = cfg.RetryBackoff
	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return newKeyValueStore(client, cfg.KeyPrefix), nil
}

func newKeyValueStore(client *redis.Client, prefix string) *kvStore {
	return &kvStore{
		client: client,
		prefix: prefix,
		cb: circuitbreaker.NewCircuitBreaker(circuitbreaker.Settings{
			Name:         "redis-kv",
			MaxFailures:  5,
			Interval:     10 * time.Second,
			Timeout:      5 * time.Second,
			IsSuccessful: func(err error) bool { return errors.Is(err, redis.Nil) },
		}),
	}
}

func (s *kvStore) key(k string) string {
	return s.prefix + k
}

func (s *kvStore) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.cb.Execute(func() error {
		var err error
		value, err = s.client.Get(ctx, s.key(key)).Result()
		return err
	})
	if errors.Is(err, redis.Nil) {
		return "", repository.ErrKeyNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get %s: %w", key, err)
	}
	return value, nil
}

func (s *kvStore) Set(ctx context.Context, key, value string) error {
	err := s.cb.Execute(func() error {
		return s.client.Set(ctx, s.key(key), value, 0).Err()
	})
	if err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

func (s *kvStore) SetMany(ctx context.Context, entries map[string]string) error {
	if len(entries) == 0 {
		return nil
	}
	err := s.cb.Execute(func() error {
		_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			for k, v := range entries {
				pipe.Set(ctx, s.key(k), v, 0)
			}
			return nil
		})
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to write %d keys: %w", len(entries), err)
	}
	return nil
}

func (s *kvStore) Remove(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	prefixed := make([]string, len(keys))
	for i, k := range keys {
		prefixed[i] = s.key(k)
	}
	err := s.cb.Execute(func() error {
		return s.client.Del(ctx, prefixed...).Err()
	})
	if err != nil {
		return fmt.Errorf("failed to remove keys: %w", err)
	}
	return nil
}

func (s *kvStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *kvStore) Close() error {
	return s.client.Close()
}
