package kv

import (
	"context"
	"fmt"
	"io"

	"github.com/isdelr/talakhisi-be/internal/config"
	"github.com/isdelr/talakhisi-be/internal/database"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Open builds the Store selected by cfg.StoreBackend. The returned closer
// releases the underlying connection.
func Open(ctx context.Context, cfg *config.Config) (Store, io.Closer, error) {
	switch cfg.StoreBackend {
	case "", "sqlite":
		db, err := database.New(cfg.DatabasePath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open sqlite database: %w", err)
		}
		if err := database.Migrate(db); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("failed to apply database migrations: %w", err)
		}
		log.Info().Str("path", cfg.DatabasePath).Msg("Using SQLite store")
		return NewSQLiteStore(db), db, nil

	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.RedisAddr, err)
		}
		log.Info().Str("addr", cfg.RedisAddr).Str("prefix", cfg.RedisPrefix).Msg("Using Redis store")
		return NewRedisStore(client, cfg.RedisPrefix), client, nil

	case "memory":
		log.Warn().Msg("Using in-memory store; state is lost on exit")
		return NewMemoryStore(), nopCloser{}, nil

	default:
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.StoreBackend)
	}
}
