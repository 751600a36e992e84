package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kdabb05/llmud/pkg/storage"
)

// RedisStorage keeps session documents in Redis. Each document lives at
// session:<id>:<resource>; a set at session:<id>:index lists the resources
// so a session can be deleted as a unit.
type RedisStorage struct {
	client *redis.Client
	logger *slog.Logger
	ttl    time.Duration
}

// Ensure RedisStorage implements DocumentStore interface
var _ storage.DocumentStore = (*RedisStorage)(nil)

// NewRedisStorage creates a new Redis storage instance. A ttl of 0 means
// documents never expire.
func NewRedisStorage(redisURL string, ttl time.Duration, logger *slog.Logger) *RedisStorage {
	rdb := redis.NewClient(&redis.Options{
		Addr: redisURL,
	})
	return &RedisStorage{
		client: rdb,
		logger: logger,
		ttl:    ttl,
	}
}

// Health and lifecycle methods

func (r *RedisStorage) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (r *RedisStorage) Close() error {
	if err := r.client.Close(); err != nil {
		r.logger.Error("Failed to close Redis connection", "error", err)
		return err
	}
	r.logger.Info("Redis connection closed")
	return nil
}

// WaitForConnection waits for Redis to become available (used during startup)
func (r *RedisStorage) WaitForConnection(ctx context.Context) error {
	maxRetries := 30
	retryDelay := 2 * time.Second

	for i := 0; i < maxRetries; i++ {
		if err := r.Ping(ctx); err != nil {
			r.logger.Debug("Redis not ready yet", "error", err, "attempt", i+1)

			select {
			case <-ctx.Done():
				return fmt.Errorf("context cancelled while waiting for redis: %w", ctx.Err())
			case <-time.After(retryDelay):
				continue
			}
		}

		r.logger.Info("Redis connection established")
		return nil
	}

	return fmt.Errorf("redis did not become available after %d attempts", maxRetries)
}

func documentKey(key storage.Key) string {
	return "session:" + key.Session + ":" + key.Resource
}

func indexKey(sessionID string) string {
	return "session:" + sessionID + ":index"
}

// Document operations

func (r *RedisStorage) Get(ctx context.Context, key storage.Key) ([]byte, error) {
	data, err := r.client.Get(ctx, documentKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("document %s: %w", key, storage.ErrNotFound)
		}
		r.logger.Error("Failed to load document", "key", key.String(), "error", err)
		return nil, fmt.Errorf("failed to load document %s: %w", key, err)
	}
	return data, nil
}

// Put writes a document. With a ttl, every document of the session gets
// its expiry pushed back together, so a session never outlives its sheets.
func (r *RedisStorage) Put(ctx context.Context, key storage.Key, doc []byte) error {
	var siblings []string
	if r.ttl > 0 {
		resources, err := r.client.SMembers(ctx, indexKey(key.Session)).Result()
		if err != nil {
			r.logger.Error("Failed to list session documents", "key", key.String(), "error", err)
			return fmt.Errorf("failed to list session %s: %w", key.Session, err)
		}
		siblings = resources
	}

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, documentKey(key), doc, r.ttl)
		pipe.SAdd(ctx, indexKey(key.Session), key.Resource)
		if r.ttl > 0 {
			pipe.Expire(ctx, indexKey(key.Session), r.ttl)
			for _, res := range siblings {
				if res != key.Resource {
					pipe.Expire(ctx, documentKey(storage.Key{Session: key.Session, Resource: res}), r.ttl)
				}
			}
		}
		return nil
	})
	if err != nil {
		r.logger.Error("Failed to save document", "key", key.String(), "error", err)
		return fmt.Errorf("failed to save document %s: %w", key, err)
	}
	return nil
}

func (r *RedisStorage) SessionExists(ctx context.Context, sessionID string) (bool, error) {
	n, err := r.client.Exists(ctx, indexKey(sessionID)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check session %s: %w", sessionID, err)
	}
	return n > 0, nil
}

func (r *RedisStorage) DeleteSession(ctx context.Context, sessionID string) error {
	resources, err := r.client.SMembers(ctx, indexKey(sessionID)).Result()
	if err != nil {
		r.logger.Error("Failed to list session documents", "session_id", sessionID, "error", err)
		return fmt.Errorf("failed to list session %s: %w", sessionID, err)
	}

	keys := make([]string, 0, len(resources)+1)
	for _, res := range resources {
		keys = append(keys, documentKey(storage.Key{Session: sessionID, Resource: res}))
	}
	keys = append(keys, indexKey(sessionID))

	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		r.logger.Error("Failed to delete session", "session_id", sessionID, "error", err)
		return fmt.Errorf("failed to delete session %s: %w", sessionID, err)
	}
	return nil
}
