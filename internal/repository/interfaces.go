package repository

import (
	"context"
	"errors"
)

// ErrKeyNotFound is returned by Get when the key has never been written or
// has been removed.
var ErrKeyNotFound = errors.New("key not found")

// KeyValueStore is the persistent medium behind the record store: string
// blobs addressed by string keys.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	// SetMany writes every entry or none of them.
	SetMany(ctx context.Context, entries map[string]string) error
	Remove(ctx context.Context, keys ...string) error
	Ping(ctx context.Context) error
	Close() error
}
