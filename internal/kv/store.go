// Package kv is the key-value persistence layer every entity store is built on.
// Values are opaque bytes; callers own the encoding.
package kv

import (
	"context"
	"errors"
)

// ErrUnknownBackend is returned by Open for an unsupported backend name.
var ErrUnknownBackend = errors.New("unknown store backend")

// Store is a minimal namespaced key-value store.
//
// Get returns (nil, nil) when the key does not exist. Delete is idempotent.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context, prefix string) ([]string, error)
}
