package domain

import "context"

//go:generate mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks

// Store persists URL mappings keyed by short code.
//
// Implementations must keep absence and failure apart: Exists reports false
// and Get returns ErrNotFound only when the backend definitively says the key
// is absent. Any other fault, including a cancelled or timed out context, is
// returned wrapped in ErrStoreUnavailable. Create must reject an existing key
// with ErrDuplicateKey; that rejection is the only uniqueness guarantee.
type Store interface {
	Exists(ctx context.Context, shortCode string) (bool, error)
	Create(ctx context.Context, mapping *URLMapping) error
	Get(ctx context.Context, shortCode string) (*URLMapping, error)
	Close() error
	HealthCheck(ctx context.Context) error
}
