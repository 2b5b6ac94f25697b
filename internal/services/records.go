package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/isdelr/talakhisi-be/internal/kv"
	"github.com/rs/zerolog/log"
)

// displayTimeLayout is the human-readable timestamp of feedback and messages.
const displayTimeLayout = "2006-01-02 15:04:05"

func utcNow() time.Time { return time.Now().UTC() }

// loadList reads a JSON array record. A missing record is an empty list; a
// record that does not decode is logged and treated as empty so a corrupt value
// never blocks the store.
func loadList[T any](ctx context.Context, store kv.Store, key string) ([]T, error) {
	raw, err := store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	items := []T{}
	if raw == nil {
		return items, nil
	}
	if err := json.Unmarshal(raw, &items); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Discarding malformed record")
		return []T{}, nil
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

func saveList[T any](ctx context.Context, store kv.Store, key string, items []T) error {
	if items == nil {
		items = []T{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	return store.Set(ctx, key, raw)
}
