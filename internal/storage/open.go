package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kdabb05/llmud/internal/config"
	"github.com/kdabb05/llmud/pkg/storage"
)

// Open creates the DocumentStore selected by cfg.StorageBackend. The redis
// backend blocks until the server answers or ctx is done.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (storage.DocumentStore, error) {
	switch cfg.StorageBackend {
	case config.BackendFile:
		return NewFileStorage(cfg.DataDir, logger)
	case config.BackendSQLite:
		return NewSQLiteStorage(cfg.SQLitePath, logger)
	case config.BackendMemory:
		logger.Warn("Using in-memory session storage, sessions are lost on restart")
		return storage.NewMemoryStorage(), nil
	case config.BackendRedis:
		rs := NewRedisStorage(cfg.RedisURL, cfg.SessionTTL, logger)
		if err := rs.WaitForConnection(ctx); err != nil {
			_ = rs.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		return rs, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}
