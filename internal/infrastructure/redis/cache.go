package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sp3dr4/tern/internal/domain"
)

var _ domain.Cache = (*RedisCache)(nil)

type RedisCache struct {
	client    redis.UniversalClient
	keyPrefix string
	logger    *slog.Logger
}

func NewRedisCache(client redis.UniversalClient, keyPrefix string, logger *slog.Logger) *RedisCache {
	if keyPrefix == "" {
		keyPrefix = "cache:url"
	}
	return &RedisCache{
		client:    client,
		keyPrefix: keyPrefix,
		logger:    logger,
	}
}

func (c *RedisCache) Get(ctx context.Context, shortCode string) (*domain.URLMapping, error) {
	key := c.buildKey(shortCode)

	val, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			// Cache miss is not an error, just return nil
			return nil, nil
		}
		c.logger.Error("Failed to get from cache", "key", key, "error", err)
		return nil, fmt.Errorf("cache get failed: %w", err)
	}

	var mapping domain.URLMapping
	if err := json.Unmarshal([]byte(val), &mapping); err != nil {
		c.logger.Error("Failed to unmarshal cached value", "key", key, "error", err)
		return nil, fmt.Errorf("failed to unmarshal cached value: %w", err)
	}

	return &mapping, nil
}

func (c *RedisCache) Set(ctx context.Context, mapping *domain.URLMapping, ttl time.Duration) error {
	key := c.buildKey(mapping.ShortCode)

	data, err := json.Marshal(mapping)
	if err != nil {
		c.logger.Error("Failed to marshal mapping for cache", "short_code", mapping.ShortCode, "error", err)
		return fmt.Errorf("failed to marshal mapping: %w", err)
	}

	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		c.logger.Error("Failed to set cache", "key", key, "error", err)
		return fmt.Errorf("cache set failed: %w", err)
	}

	return nil
}

func (c *RedisCache) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		c.logger.Error("Failed to ping Redis", "error", err)
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

func (c *RedisCache) buildKey(shortCode string) string {
	return c.keyPrefix + ":" + shortCode
}
