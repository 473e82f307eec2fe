package application

import (
	"context"

	"github.com/sp3dr4/tern/internal/domain"
	"github.com/sp3dr4/tern/internal/pkg/logging"
	"github.com/sp3dr4/tern/internal/pkg/metrics"
	"github.com/sp3dr4/tern/internal/validation"
)

// ResolutionService maps short codes back to their original URLs.
type ResolutionService struct {
	store     domain.Store
	cache     domain.Cache
	validator *validation.Validator
	metrics   metrics.Registry
	opts      Options
}

func NewResolutionService(
	store domain.Store,
	cache domain.Cache,
	validator *validation.Validator,
	registry metrics.Registry,
	opts Options,
) *ResolutionService {
	return &ResolutionService{
		store:     store,
		cache:     cache,
		validator: validator,
		metrics:   registry,
		opts:      opts.withDefaults(),
	}
}

// Resolve returns the stored URL unmodified. Cache failures only cost a
// store round trip.
func (s *ResolutionService) Resolve(ctx context.Context, code string) (string, error) {
	if err := s.validator.ValidateShortCode(code); err != nil {
		return "", err
	}

	logger := logging.FromContext(ctx)

	if cached := s.fromCache(ctx, code); cached != nil {
		s.metrics.IncURLsRedirected()
		logger.Debug("Cache hit", "short_code", code)
		return cached.OriginalURL, nil
	}

	mapping, err := s.get(ctx, code)
	if err != nil {
		return "", err
	}

	s.toCache(ctx, mapping)
	s.metrics.IncURLsRedirected()

	return mapping.OriginalURL, nil
}

func (s *ResolutionService) get(ctx context.Context, code string) (*domain.URLMapping, error) {
	ctx, cancel := withStoreTimeout(ctx, s.opts.StoreTimeout)
	defer cancel()

	mapping, err := s.store.Get(ctx, code)
	if err != nil {
		return nil, storeFault(err)
	}
	return mapping, nil
}

func (s *ResolutionService) fromCache(ctx context.Context, code string) *domain.URLMapping {
	ctx, cancel := withStoreTimeout(ctx, s.opts.StoreTimeout)
	defer cancel()

	mapping, err := s.cache.Get(ctx, code)
	if err != nil {
		logging.FromContext(ctx).Warn("Cache lookup failed", "short_code", code, "error", err)
		return nil
	}
	return mapping
}

func (s *ResolutionService) toCache(ctx context.Context, mapping *domain.URLMapping) {
	ctx, cancel := withStoreTimeout(ctx, s.opts.StoreTimeout)
	defer cancel()

	if err := s.cache.Set(ctx, mapping, s.opts.CacheTTL); err != nil {
		logging.FromContext(ctx).Warn("Failed to populate cache", "short_code", mapping.ShortCode, "error", err)
	}
}
