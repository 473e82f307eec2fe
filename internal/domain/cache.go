package domain

import (
	"context"
	"time"
)

// Cache is a read-through cache in front of the Store. Mappings never
// change once created, so entries can only expire, never go stale.
type Cache interface {
	// Get retrieves a mapping from cache by its short code.
	// A miss returns nil, nil.
	Get(ctx context.Context, shortCode string) (*URLMapping, error)

	// Set stores a mapping in cache with the specified TTL
	Set(ctx context.Context, mapping *URLMapping, ttl time.Duration) error

	// Ping checks if the cache is available
	Ping(ctx context.Context) error
}
