package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/hospital-portal/internal/config"
	"github.com/jwalitptl/hospital-portal/internal/repository"
)

// Needs a running server: PORTAL_TEST_DATABASE_DSN="postgres://...?sslmode=disable"
func TestKeyValueStoreAgainstPostgres(t *testing.T) {
	dsn := os.Getenv("PORTAL_TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("PORTAL_TEST_DATABASE_DSN not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := NewDB(ctx, config.DatabaseConfig{DSN: dsn})
	require.NoError(t, err)
	kv, err := NewKeyValueStore(ctx, db)
	require.NoError(t, err)
	defer kv.Close()

	keys := []string{"test_patients_db", "test_active_visits_db"}
	require.NoError(t, kv.Remove(ctx, keys...))

	_, err = kv.Get(ctx, keys[0])
	assert.ErrorIs(t, err, repository.ErrKeyNotFound)

	require.NoError(t, kv.Set(ctx, keys[0], "{}"))
	require.NoError(t, kv.Set(ctx, keys[0], `{"P001":{}}`))
	v, err := kv.Get(ctx, keys[0])
	require.NoError(t, err)
	assert.Equal(t, `{"P001":{}}`, v)

	require.NoError(t, kv.SetMany(ctx, map[string]string{keys[0]: "{}", keys[1]: `{"001":{}}`}))
	v, err = kv.Get(ctx, keys[1])
	require.NoError(t, err)
	assert.Equal(t, `{"001":{}}`, v)

	require.NoError(t, kv.Remove(ctx, keys...))
	_, err = kv.Get(ctx, keys[1])
	assert.ErrorIs(t, err, repository.ErrKeyNotFound)
}
