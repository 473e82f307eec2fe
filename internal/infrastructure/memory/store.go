package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/sp3dr4/tern/internal/domain"
)

var _ domain.Store = (*Store)(nil)

type Store struct {
	mappings map[string]domain.URLMapping
	mu       sync.RWMutex
}

func NewStore() *Store {
	return &Store{
		mappings: make(map[string]domain.URLMapping),
	}
}

func (s *Store) Exists(ctx context.Context, shortCode string) (bool, error) {
	if err := ctxErr(ctx); err != nil {
		return false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	_, exists := s.mappings[shortCode]
	return exists, nil
}

func (s *Store) Create(ctx context.Context, mapping *domain.URLMapping) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.mappings[mapping.ShortCode]; exists {
		return domain.ErrDuplicateKey
	}

	// Store a copy so callers cannot mutate persisted state.
	s.mappings[mapping.ShortCode] = *mapping
	return nil
}

func (s *Store) Get(ctx context.Context, shortCode string) (*domain.URLMapping, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	mapping, exists := s.mappings[shortCode]
	if !exists {
		return nil, domain.ErrNotFound
	}

	return &mapping, nil
}

// Len reports how many mappings are stored.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.mappings)
}

func (s *Store) Close() error {
	return nil
}

func (s *Store) HealthCheck(ctx context.Context) error {
	return ctxErr(ctx)
}

func ctxErr(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}
	return nil
}
