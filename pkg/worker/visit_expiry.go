package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/jwalitptl/hospital-portal/pkg/logger"
	"github.com/jwalitptl/hospital-portal/pkg/metrics"
)

type ExpiryProcessorConfig struct {
	Interval      time.Duration
	RetryAttempts int
	RetryDelay    time.Duration
}

// Expirer drops queue rows dated before today.
type Expirer interface {
	ExpireActiveVisits(ctx context.Context) (int, error)
}

// ExpiryProcessor clears stale active visits on a fixed interval. Medical
// history is untouched; only the day's queue table shrinks.
type ExpiryProcessor struct {
	store   Expirer
	config  ExpiryProcessorConfig
	logger  *logger.Logger
	metrics *metrics.Metrics
}

func NewExpiryProcessor(
	store Expirer,
	config ExpiryProcessorConfig,
	logger *logger.Logger,
	metrics *metrics.Metrics,
) *ExpiryProcessor {
	if config.Interval <= 0 {
		panic("Interval must be greater than 0")
	}
	if config.RetryAttempts <= 0 {
		config.RetryAttempts = 1
	}

	return &ExpiryProcessor{
		store:   store,
		config:  config,
		logger:  logger,
		metrics: metrics,
	}
}

// Start runs one pass immediately and then one per interval until ctx ends.
func (p *ExpiryProcessor) Start(ctx context.Context) {
	ticker := time.NewTicker(p.config.Interval)
	defer ticker.Stop()

	p.logger.Info("Starting visit expiry processor", "interval", p.config.Interval.String())
	p.runLogged(ctx)

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("Shutting down visit expiry processor")
			return
		case <-ticker.C:
			p.runLogged(ctx)
		}
	}
}

func (p *ExpiryProcessor) runLogged(ctx context.Context) {
	if _, err := p.RunOnce(ctx); err != nil {
		p.logger.Error(err, "Failed to expire active visits")
	}
}

// RunOnce performs a single expiry pass, retrying failed attempts.
func (p *ExpiryProcessor) RunOnce(ctx context.Context) (int, error) {
	var expired int
	err := retry(ctx, p.config.RetryAttempts, p.config.RetryDelay, func() error {
		n, err := p.store.ExpireActiveVisits(ctx)
		if err != nil {
			return err
		}
		expired = n
		return nil
	})
	if err != nil {
		p.metrics.ExpiryRuns.WithLabelValues("error").Inc()
		return 0, fmt.Errorf("expiry pass failed: %w", err)
	}

	p.metrics.ExpiryRuns.WithLabelValues("success").Inc()
	p.metrics.ActiveVisitsExpired.Add(float64(expired))
	if expired > 0 {
		p.logger.Info("Expired stale active visits", "count", expired)
	}
	return expired, nil
}

func retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil {
			return nil
		}
		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}
	return err
}
