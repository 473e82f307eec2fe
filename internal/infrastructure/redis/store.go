package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/sp3dr4/tern/internal/domain"
)

var _ domain.Store = (*Store)(nil)

// Store keeps one JSON document per short code under "<prefix>:<code>".
// SET NX gives the insert-rejects-duplicates guarantee.
type Store struct {
	client    redis.UniversalClient
	keyPrefix string
	logger    *slog.Logger
}

func NewStore(client redis.UniversalClient, keyPrefix string, logger *slog.Logger) *Store {
	if keyPrefix == "" {
		keyPrefix = "url"
	}
	return &Store{
		client:    client,
		keyPrefix: keyPrefix,
		logger:    logger,
	}
}

func (s *Store) Exists(ctx context.Context, shortCode string) (bool, error) {
	n, err := s.client.Exists(ctx, s.buildKey(shortCode)).Result()
	if err != nil {
		s.logger.Error("Failed to check key existence", "short_code", shortCode, "error", err)
		return false, fmt.Errorf("%w: redis exists: %w", domain.ErrStoreUnavailable, err)
	}
	return n > 0, nil
}

func (s *Store) Create(ctx context.Context, mapping *domain.URLMapping) error {
	data, err := json.Marshal(mapping)
	if err != nil {
		return fmt.Errorf("failed to marshal mapping: %w", err)
	}

	created, err := s.client.SetNX(ctx, s.buildKey(mapping.ShortCode), data, 0).Result()
	if err != nil {
		s.logger.Error("Failed to create mapping", "short_code", mapping.ShortCode, "error", err)
		return fmt.Errorf("%w: redis setnx: %w", domain.ErrStoreUnavailable, err)
	}
	if !created {
		return domain.ErrDuplicateKey
	}

	return nil
}

func (s *Store) Get(ctx context.Context, shortCode string) (*domain.URLMapping, error) {
	val, err := s.client.Get(ctx, s.buildKey(shortCode)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrNotFound
		}
		s.logger.Error("Failed to get mapping", "short_code", shortCode, "error", err)
		return nil, fmt.Errorf("%w: redis get: %w", domain.ErrStoreUnavailable, err)
	}

	var mapping domain.URLMapping
	if err := json.Unmarshal(val, &mapping); err != nil {
		return nil, fmt.Errorf("%w: corrupt record for %s: %w", domain.ErrStoreUnavailable, shortCode, err)
	}

	return &mapping, nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) HealthCheck(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (s *Store) buildKey(shortCode string) string {
	return fmt.Sprintf("%s:%s", s.keyPrefix, shortCode)
}
