// Package instrumented wraps a domain.Store with Prometheus metrics.
package instrumented

import (
	"context"
	"errors"
	"time"

	"github.com/sp3dr4/tern/internal/domain"
	"github.com/sp3dr4/tern/internal/pkg/metrics"
)

const (
	opExists = "exists"
	opCreate = "create"
	opGet    = "get"
)

var _ domain.Store = (*Store)(nil)

type Store struct {
	next     domain.Store
	registry metrics.Registry
}

func NewStore(next domain.Store, registry metrics.Registry) *Store {
	return &Store{next: next, registry: registry}
}

func (s *Store) Exists(ctx context.Context, shortCode string) (bool, error) {
	start := time.Now()
	exists, err := s.next.Exists(ctx, shortCode)
	s.observe(opExists, start, err)
	return exists, err
}

func (s *Store) Create(ctx context.Context, mapping *domain.URLMapping) error {
	start := time.Now()
	err := s.next.Create(ctx, mapping)
	s.observe(opCreate, start, err)
	return err
}

func (s *Store) Get(ctx context.Context, shortCode string) (*domain.URLMapping, error) {
	start := time.Now()
	mapping, err := s.next.Get(ctx, shortCode)
	s.observe(opGet, start, err)
	return mapping, err
}

func (s *Store) Close() error {
	return s.next.Close()
}

func (s *Store) HealthCheck(ctx context.Context) error {
	return s.next.HealthCheck(ctx)
}

func (s *Store) observe(operation string, start time.Time, err error) {
	s.registry.RecordStoreOperation(operation, outcome(err), time.Since(start).Seconds())
}

func outcome(err error) string {
	switch {
	case err == nil:
		return metrics.StatusOK
	case errors.Is(err, domain.ErrNotFound):
		return metrics.StatusNotFound
	case errors.Is(err, domain.ErrDuplicateKey):
		return metrics.StatusDuplicate
	default:
		return metrics.StatusUnavailable
	}
}
