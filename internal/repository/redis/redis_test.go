package redis

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/hospital-portal/internal/repository"
)

// Needs a running server: PORTAL_TEST_REDIS_URL=redis://localhost:6379/15
func TestKeyValueStoreAgainstRedis(t *testing.T) {
	url := os.Getenv("PORTAL_TEST_REDIS_URL")
	if url == "" {
		t.Skip("PORTAL_TEST_REDIS_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	prefix := fmt.Sprintf("portal-test-%d:", time.Now().UnixNano())
	kv, err := NewKeyValueStore(ctx, Config{URL: url, KeyPrefix: prefix})
	require.NoError(t, err)
	defer kv.Close()
	defer kv.Remove(ctx, "staff_db", "patients_db", "active_visits_db")

	_, err = kv.Get(ctx, "staff_db")
	assert.ErrorIs(t, err, repository.ErrKeyNotFound)

	require.NoError(t, kv.Set(ctx, "staff_db", "{}"))
	v, err := kv.Get(ctx, "staff_db")
	require.NoError(t, err)
	assert.Equal(t, "{}", v)

	require.NoError(t, kv.SetMany(ctx, map[string]string{
		"patients_db":      `{"P001":{}}`,
		"active_visits_db": `{}`,
	}))
	v, err = kv.Get(ctx, "patients_db")
	require.NoError(t, err)
	assert.Equal(t, `{"P001":{}}`, v)

	require.NoError(t, kv.Remove(ctx, "patients_db"))
	_, err = kv.Get(ctx, "patients_db")
	assert.ErrorIs(t, err, repository.ErrKeyNotFound)
}

func TestNewKeyValueStoreRejectsBadURL(t *testing.T) {
	_, err := NewKeyValueStore(context.Background(), Config{URL: "not-a-url"})
	assert.Error(t, err)
}
