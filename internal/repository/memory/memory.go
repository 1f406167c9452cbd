package memory

import (
	"context"
	"sync"

	"github.com/patrickmn/go-cache"

	"github.com/jwalitptl/hospital-portal/internal/repository"
)

type kvStore struct {
	// mu makes SetMany atomic with respect to other calls; go-cache only
	// locks per operation.
	mu    sync.RWMutex
	items *cache.Cache
}

// NewKeyValueStore returns a process-local store. Entries never expire.
func NewKeyValueStore() repository.KeyValueStore {
	return &kvStore{items: cache.New(cache.NoExpiration, 0)}
}

func (s *kvStore) Get(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.items.Get(key)
	if !ok {
		return "", repository.ErrKeyNotFound
	}
	return v.(string), nil
}

func (s *kvStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items.Set(key, value, cache.NoExpiration)
	return nil
}

func (s *kvStore) SetMany(_ context.Context, entries map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for k, v := range entries {
		s.items.Set(k, v, cache.NoExpiration)
	}
	return nil
}

func (s *kvStore) Remove(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, k := range keys {
		s.items.Delete(k)
	}
	return nil
}

func (s *kvStore) Ping(context.Context) error {
	return nil
}

func (s *kvStore) Close() error {
	s.items.Flush()
	return nil
}
