package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jwalitptl/hospital-portal/pkg/metrics"
)

type instrumented struct {
	next    KeyValueStore
	backend string
	metrics *metrics.Metrics
}

// Instrument records count and latency of every call made to next.
func Instrument(next KeyValueStore, backend string, m *metrics.Metrics) KeyValueStore {
	return &instrumented{next: next, backend: backend, metrics: m}
}

func (s *instrumented) observe(op string, start time.Time, err error) {
	status := "success"
	switch {
	case errors.Is(err, ErrKeyNotFound):
		status = "miss"
	case err != nil:
		status = "error"
	}
	s.metrics.StorageOperations.WithLabelValues(s.backend, op, status).Inc()
	s.metrics.StorageLatency.WithLabelValues(s.backend, op).Observe(time.Since(start).Seconds())
}

func (s *instrumented) Get(ctx context.Context, key string) (value string, err error) {
	defer func(start time.Time) { s.observe("get", start, err) }(time.Now())
	return s.next.Get(ctx, key)
}

func (s *instrumented) Set(ctx context.Context, key, value string) (err error) {
	defer func(start time.Time) { s.observe("set", start, err) }(time.Now())
	return s.next.Set(ctx, key, value)
}

func (s *instrumented) SetMany(ctx context.Context, entries map[string]string) (err error) {
	defer func(start time.Time) { s.observe("set_many", start, err) }(time.Now())
	return s.next.SetMany(ctx, entries)
}

func (s *instrumented) Remove(ctx context.Context, keys ...string) (err error) {
	defer func(start time.Time) { s.observe("remove", start, err) }(time.Now())
	return s.next.Remove(ctx, keys...)
}

func (s *instrumented) Ping(ctx context.Context) error {
	return s.next.Ping(ctx)
}

func (s *instrumented) Close() error {
	return s.next.Close()
}
