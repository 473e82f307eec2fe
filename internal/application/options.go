package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sp3dr4/tern/internal/domain"
)

const DefaultMaxAttempts = 10

// CodeGenerator produces candidate short codes.
type CodeGenerator interface {
	Generate() string
}

type Options struct {
	// MaxAttempts bounds how many candidate codes one Shorten call may try,
	// counting both taken codes and lost create races.
	MaxAttempts int
	// StoreTimeout bounds every single store and cache call. Zero disables it.
	StoreTimeout time.Duration
	CacheTTL     time.Duration
}

func (o Options) withDefaults() Options {
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = DefaultMaxAttempts
	}
	return o
}

func withStoreTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

// storeFault makes sure anything a store returns outside its own vocabulary,
// such as a bare context deadline, is reported as unavailability.
func storeFault(err error) error {
	if errors.Is(err, domain.ErrStoreUnavailable) ||
		errors.Is(err, domain.ErrNotFound) ||
		errors.Is(err, domain.ErrDuplicateKey) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
}
