package application

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sp3dr4/tern/internal/domain"
	"github.com/sp3dr4/tern/internal/generator"
	"github.com/sp3dr4/tern/internal/infrastructure/memory"
	"github.com/sp3dr4/tern/internal/pkg/metrics"
	"github.com/sp3dr4/tern/internal/validation"
)

// scriptedGenerator hands out fixed codes first, then falls back to random ones.
type scriptedGenerator struct {
	mu       sync.Mutex
	codes    []string
	next     int
	fallback CodeGenerator
}

func newScriptedGenerator(codes ...string) *scriptedGenerator {
	return &scriptedGenerator{codes: codes, fallback: generator.NewDefault()}
}

func (g *scriptedGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.next < len(g.codes) {
		code := g.codes[g.next]
		g.next++
		return code
	}
	return g.fallback.Generate()
}

type countingRegistry struct {
	metrics.NoOpRegistry
	created    atomic.Int64
	redirected atomic.Int64
	collisions atomic.Int64
}

func (r *countingRegistry) IncURLsCreated()    { r.created.Add(1) }
func (r *countingRegistry) IncURLsRedirected() { r.redirected.Add(1) }
func (r *countingRegistry) IncCodeCollisions() { r.collisions.Add(1) }

// mapCache is an in-process domain.Cache that can be told to fail.
type mapCache struct {
	mu      sync.Mutex
	entries map[string]domain.URLMapping
	ttls    map[string]time.Duration
	getErr  error
	setErr  error
	gets    int
}

func newMapCache() *mapCache {
	return &mapCache{
		entries: make(map[string]domain.URLMapping),
		ttls:    make(map[string]time.Duration),
	}
}

func (c *mapCache) Get(_ context.Context, shortCode string) (*domain.URLMapping, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.gets++
	if c.getErr != nil {
		return nil, c.getErr
	}
	mapping, ok := c.entries[shortCode]
	if !ok {
		return nil, nil
	}
	return &mapping, nil
}

func (c *mapCache) Set(_ context.Context, mapping *domain.URLMapping, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.setErr != nil {
		return c.setErr
	}
	c.entries[mapping.ShortCode] = *mapping
	c.ttls[mapping.ShortCode] = ttl
	return nil
}

func (c *mapCache) Ping(context.Context) error { return nil }

// blockingStore never answers until the caller's context gives up.
type blockingStore struct {
	*memory.Store
}

func (s *blockingStore) Exists(ctx context.Context, _ string) (bool, error) {
	<-ctx.Done()
	return false, ctx.Err()
}

func (s *blockingStore) Get(ctx context.Context, _ string) (*domain.URLMapping, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func testValidator() *validation.Validator {
	return validation.New(validation.DefaultMaxURLLength, generator.DefaultLength)
}
