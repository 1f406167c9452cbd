package repository_test

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/hospital-portal/internal/repository"
	"github.com/jwalitptl/hospital-portal/internal/repository/memory"
	"github.com/jwalitptl/hospital-portal/pkg/metrics"
)

func TestInstrumentCountsOperations(t *testing.T) {
	ctx := context.Background()
	m := metrics.NewMetrics("portal", prometheus.NewRegistry())
	kv := repository.Instrument(memory.NewKeyValueStore(), "memory", m)

	_, err := kv.Get(ctx, "staff_db")
	assert.ErrorIs(t, err, repository.ErrKeyNotFound)
	require.NoError(t, kv.Set(ctx, "staff_db", "{}"))
	_, err = kv.Get(ctx, "staff_db")
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.StorageOperations.WithLabelValues("memory", "get", "miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StorageOperations.WithLabelValues("memory", "get", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StorageOperations.WithLabelValues("memory", "set", "success")))
}
