//go:build integration

package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sp3dr4/tern/internal/application"
	"github.com/sp3dr4/tern/internal/domain"
	"github.com/sp3dr4/tern/internal/generator"
	"github.com/sp3dr4/tern/internal/infrastructure/postgres"
	redisImpl "github.com/sp3dr4/tern/internal/infrastructure/redis"
	"github.com/sp3dr4/tern/internal/pkg/metrics"
	"github.com/sp3dr4/tern/internal/validation"
)

type services struct {
	shortener *application.ShorteningService
	resolver  *application.ResolutionService
	client    redis.UniversalClient
}

func setupServices(t *testing.T, gen application.CodeGenerator) services {
	db := SetupPostgres(t, "pgx")
	client := SetupRedis(t)

	store := postgres.NewStore(db)
	cache := redisImpl.NewRedisCache(client, "cache:url", testLogger)
	v := validation.New(validation.DefaultMaxURLLength, generator.DefaultLength)
	opts := application.Options{StoreTimeout: 5 * time.Second, CacheTTL: time.Minute}

	return services{
		shortener: application.NewShorteningService(store, gen, v, metrics.NewNoOpRegistry(), opts),
		resolver:  application.NewResolutionService(store, cache, v, metrics.NewNoOpRegistry(), opts),
		client:    client,
	}
}

func TestShortenAndResolve_Integration(t *testing.T) {
	env := setupServices(t, generator.NewDefault())
	ctx := context.Background()

	result, err := env.shortener.Shorten(ctx, "https://example.com/a/long/path?x=1")
	require.NoError(t, err)
	assert.Len(t, result.ShortCode, generator.DefaultLength)

	// Nothing is cached until the first resolution.
	err = env.client.Get(ctx, "cache:url:"+result.ShortCode).Err()
	assert.ErrorIs(t, err, redis.Nil)

	resolved, err := env.resolver.Resolve(ctx, result.ShortCode)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/a/long/path?x=1", resolved)

	raw, err := env.client.Get(ctx, "cache:url:"+result.ShortCode).Result()
	require.NoError(t, err)

	var cached domain.URLMapping
	require.NoError(t, json.Unmarshal([]byte(raw), &cached))
	assert.Equal(t, result.ShortCode, cached.ShortCode)
	assert.Equal(t, resolved, cached.OriginalURL)

	ttl, err := env.client.TTL(ctx, "cache:url:"+result.ShortCode).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, time.Minute)

	// A second resolution is served from the cache.
	resolved, err = env.resolver.Resolve(ctx, result.ShortCode)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/a/long/path?x=1", resolved)
}

func TestResolve_UnknownCode_Integration(t *testing.T) {
	env := setupServices(t, generator.NewDefault())

	_, err := env.resolver.Resolve(context.Background(), "zzzzzz")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestShorten_ConcurrentAccess_Integration(t *testing.T) {
	gen, err := generator.New("abc", 6)
	require.NoError(t, err)

	env := setupServices(t, gen)
	ctx := context.Background()

	const calls = 25
	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		codes = make(map[string]string)
	)

	for i := range calls {
		wg.Add(1)
		go func() {
			defer wg.Done()
			u := fmt.Sprintf("https://example.com/%d", i)
			result, err := env.shortener.Shorten(ctx, u)
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			defer mu.Unlock()
			_, dup := codes[result.ShortCode]
			assert.False(t, dup, "code %s assigned twice", result.ShortCode)
			codes[result.ShortCode] = u
		}()
	}
	wg.Wait()

	require.Len(t, codes, calls)
	for code, u := range codes {
		resolved, err := env.resolver.Resolve(ctx, code)
		require.NoError(t, err)
		assert.Equal(t, u, resolved)
	}
}
