package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/sp3dr4/tern/internal/domain"
	"github.com/sp3dr4/tern/internal/pkg/logging"
	"github.com/sp3dr4/tern/internal/pkg/metrics"
	"github.com/sp3dr4/tern/internal/validation"
)

type ShortenResult struct {
	ShortCode   string
	OriginalURL string
}

// ShorteningService assigns fresh short codes to URLs.
//
// Exists is only used to skip codes that are already taken. Two concurrent
// calls can both see a candidate as free; the store then rejects the second
// Create with ErrDuplicateKey and that call moves on to a new candidate.
type ShorteningService struct {
	store     domain.Store
	generator CodeGenerator
	validator *validation.Validator
	metrics   metrics.Registry
	opts      Options
}

func NewShorteningService(
	store domain.Store,
	generator CodeGenerator,
	validator *validation.Validator,
	registry metrics.Registry,
	opts Options,
) *ShorteningService {
	return &ShorteningService{
		store:     store,
		generator: generator,
		validator: validator,
		metrics:   registry,
		opts:      opts.withDefaults(),
	}
}

func (s *ShorteningService) Shorten(ctx context.Context, rawURL string) (*ShortenResult, error) {
	if err := s.validator.ValidateURL(rawURL); err != nil {
		return nil, err
	}

	logger := logging.FromContext(ctx)

	for attempt := 1; attempt <= s.opts.MaxAttempts; attempt++ {
		code := s.generator.Generate()

		exists, err := s.exists(ctx, code)
		if err != nil {
			logger.Error("Failed to check short code", "short_code", code, "attempt", attempt, "error", err)
			return nil, err
		}
		if exists {
			s.metrics.IncCodeCollisions()
			logger.Debug("Short code already taken", "short_code", code, "attempt", attempt)
			continue
		}

		mapping, err := domain.NewURLMapping(code, rawURL)
		if err != nil {
			return nil, err
		}

		err = s.create(ctx, mapping)
		if errors.Is(err, domain.ErrDuplicateKey) {
			s.metrics.IncCodeCollisions()
			logger.Warn("Lost race for short code, retrying", "short_code", code, "attempt", attempt)
			continue
		}
		if err != nil {
			logger.Error("Failed to create mapping", "short_code", code, "attempt", attempt, "error", err)
			return nil, err
		}

		s.metrics.IncURLsCreated()
		logger.Info("Created short URL", "short_code", code, "original_url", rawURL, "attempts", attempt)

		return &ShortenResult{
			ShortCode:   mapping.ShortCode,
			OriginalURL: mapping.OriginalURL,
		}, nil
	}

	logger.Error("Gave up finding a free short code", "attempts", s.opts.MaxAttempts)
	return nil, fmt.Errorf("%w (%d attempts)", domain.ErrCodeSpaceExhausted, s.opts.MaxAttempts)
}

func (s *ShorteningService) exists(ctx context.Context, code string) (bool, error) {
	ctx, cancel := withStoreTimeout(ctx, s.opts.StoreTimeout)
	defer cancel()

	exists, err := s.store.Exists(ctx, code)
	if err != nil {
		return false, storeFault(err)
	}
	return exists, nil
}

func (s *ShorteningService) create(ctx context.Context, mapping *domain.URLMapping) error {
	ctx, cancel := withStoreTimeout(ctx, s.opts.StoreTimeout)
	defer cancel()

	if err := s.store.Create(ctx, mapping); err != nil {
		return storeFault(err)
	}
	return nil
}
