package worker

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/hospital-portal/internal/model"
	"github.com/jwalitptl/hospital-portal/pkg/logger"
	"github.com/jwalitptl/hospital-portal/pkg/metrics"
)

type mockExpirer struct {
	mock.Mock
}

func (m *mockExpirer) ExpireActiveVisits(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func TestExpiryProcessor_RunOnce(t *testing.T) {
	m := metrics.NewMetrics("portal", prometheus.NewRegistry())
	store := &mockExpirer{}
	store.On("ExpireActiveVisits", mock.Anything).Return(0, assert.AnError).Once()
	store.On("ExpireActiveVisits", mock.Anything).Return(3, nil).Once()

	p := NewExpiryProcessor(store, ExpiryProcessorConfig{
		Interval:      time.Hour,
		RetryAttempts: 2,
		RetryDelay:    time.Millisecond,
	}, logger.Nop(), m)

	n, err := p.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, 3.0, testutil.ToFloat64(m.ActiveVisitsExpired))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ExpiryRuns.WithLabelValues("success")))
	store.AssertExpectations(t)
}

func TestExpiryProcessor_GivesUp(t *testing.T) {
	m := metrics.NewMetrics("portal", prometheus.NewRegistry())
	store := &mockExpirer{}
	store.On("ExpireActiveVisits", mock.Anything).Return(0, assert.AnError)

	p := NewExpiryProcessor(store, ExpiryProcessorConfig{Interval: time.Hour}, logger.Nop(), m)

	_, err := p.RunOnce(context.Background())
	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ExpiryRuns.WithLabelValues("error")))
	store.AssertNumberOfCalls(t, "ExpireActiveVisits", 1)
}

func TestExpiryProcessor_StartRunsImmediately(t *testing.T) {
	m := metrics.NewMetrics("portal", prometheus.NewRegistry())
	store := &mockExpirer{}
	store.On("ExpireActiveVisits", mock.Anything).Return(0, nil)

	p := NewExpiryProcessor(store, ExpiryProcessorConfig{Interval: time.Hour}, logger.Nop(), m)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Start(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		return testutil.ToFloat64(m.ExpiryRuns.WithLabelValues("success")) == 1
	}, time.Second, 5*time.Millisecond)
	cancel()
	<-done
}

type chanSubscriber struct {
	ch chan []byte
}

func (s chanSubscriber) Subscribe(context.Context, string) (<-chan []byte, error) {
	return s.ch, nil
}

func TestEventConsumer(t *testing.T) {
	ch := make(chan []byte, 3)
	evt, err := json.Marshal(model.Event{Type: model.EventStaffAdded, Payload: map[string]interface{}{"staff_id": "D003"}})
	require.NoError(t, err)
	ch <- []byte("not json")
	ch <- evt
	close(ch)

	var (
		mu  sync.Mutex
		got []model.Event
	)
	consumer := NewEventConsumer(chanSubscriber{ch: ch}, "portal.events", func(_ context.Context, e model.Event) error {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, e)
		return nil
	}, logger.Nop())

	require.NoError(t, consumer.Start(context.Background()))
	require.Len(t, got, 1)
	assert.Equal(t, model.EventStaffAdded, got[0].Type)
	assert.Equal(t, "D003", got[0].Payload["staff_id"])
}
