package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/ZaphyrRobin/kinetic-takehome/internal/domain/model"
	"github.com/redis/go-redis/v9"
)

// Cache stores resolved deployment records in redis. It is a plain get/set
// gateway: no business interpretation of the value, and per-key atomic
// semantics come from redis itself. Concurrent resolutions for the same key
// may race to populate it; both compute the same answer, so last writer
// wins.
type Cache struct {
	client *redis.Client
	logger *slog.Logger
}

func NewCache(url string, logger *slog.Logger) (*Cache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &Cache{client: client, logger: logger.With("component", "redis_cache")}, nil
}

// Get returns the cached record for key, or nil on a miss. Errors indicate
// a degraded store; the caller treats them as a miss.
func (c *Cache) Get(ctx context.Context, key string) (*model.DeploymentRecord, error) {
	val, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}

	var rec model.DeploymentRecord
	if err := json.Unmarshal([]byte(val), &rec); err != nil {
		return nil, fmt.Errorf("decode cached record %s: %w", key, err)
	}
	return &rec, nil
}

// Set stores a record under key with the given TTL.
func (c *Cache) Set(ctx context.Context, key string, rec model.DeploymentRecord, ttl time.Duration) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode record %s: %w", key, err)
	}
	if err := c.client.Set(ctx, key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (c *Cache) Close() error {
	return c.client.Close()
}
