package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/amirasaad/remitquote/pkg/config"
	"github.com/redis/go-redis/v9"
)

const snapshotKey = "rates:snapshot"

// RedisSnapshotStore implements SnapshotStore using Redis.
type RedisSnapshotStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	logger *slog.Logger
}

// NewRedisSnapshotStore creates a store on an existing client.
func NewRedisSnapshotStore(
	client *redis.Client,
	prefix string,
	ttl time.Duration,
	logger *slog.Logger,
) *RedisSnapshotStore {
	return &RedisSnapshotStore{
		client: client,
		prefix: prefix,
		ttl:    ttl,
		logger: logger.With("component", "redis_snapshot_store"),
	}
}

// NewRedisSnapshotStoreFromConfig parses cfg.URL and applies the configured timeouts.
func NewRedisSnapshotStoreFromConfig(cfg *config.Redis, logger *slog.Logger) (*RedisSnapshotStore, error) {
	opt, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	if cfg.DialTimeout > 0 {
		opt.DialTimeout = cfg.DialTimeout
	}
	if cfg.ReadTimeout > 0 {
		opt.ReadTimeout = cfg.ReadTimeout
	}
	if cfg.WriteTimeout > 0 {
		opt.WriteTimeout = cfg.WriteTimeout
	}
	return NewRedisSnapshotStore(redis.NewClient(opt), cfg.KeyPrefix, cfg.SnapshotTTL, logger), nil
}

func (r *RedisSnapshotStore) key() string {
	return r.prefix + snapshotKey
}

// Load implements SnapshotStore.
func (r *RedisSnapshotStore) Load(ctx context.Context) (*Snapshot, error) {
	val, err := r.client.Get(ctx, r.key()).Bytes()
	if errors.Is(err, redis.Nil) {
		r.logger.Debug("Redis snapshot miss", "key", r.key())
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Redis snapshot get error", "key", r.key(), "error", err)
		return nil, err
	}
	var s Snapshot
	if err := json.Unmarshal(val, &s); err != nil {
		r.logger.Error("Redis snapshot unmarshal error", "key", r.key(), "error", err)
		return nil, err
	}
	r.logger.Debug("Redis snapshot hit", "key", r.key(), "fetched_at", s.FetchedAt)
	return &s, nil
}

// Save implements SnapshotStore.
func (r *RedisSnapshotStore) Save(ctx context.Context, s *Snapshot) error {
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, r.key(), data, r.ttl).Err(); err != nil {
		r.logger.Error("Redis snapshot set error", "key", r.key(), "error", err)
		return err
	}
	r.logger.Debug("Redis snapshot saved", "key", r.key(), "ttl", r.ttl)
	return nil
}

// Ping checks connectivity.
func (r *RedisSnapshotStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close releases the underlying client.
func (r *RedisSnapshotStore) Close() error {
	return r.client.Close()
}
