package fx

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/sp3dr4/tern/config"
	"github.com/sp3dr4/tern/internal/application"
	"github.com/sp3dr4/tern/internal/domain"
	httpFX "github.com/sp3dr4/tern/internal/fx/http"
	cacheImpl "github.com/sp3dr4/tern/internal/infrastructure/cache"
	"github.com/sp3dr4/tern/internal/infrastructure/instrumented"
	"github.com/sp3dr4/tern/internal/pkg/metrics"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Port:         "0",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Store: config.StoreConfig{
			Type:    "memory",
			Timeout: time.Second,
		},
		App: config.AppConfig{
			BaseURL:           "http://localhost:8080",
			ShortCodeLength:   6,
			ShortCodeAlphabet: "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789",
			MaxURLLength:      2048,
			MaxAttempts:       10,
		},
		Cache: config.CacheConfig{
			Enabled: false,
			TTL:     time.Minute,
		},
		Logging: config.LoggingConfig{Level: "error", Format: "text"},
		Metrics: config.MetricsConfig{
			Enabled:   true,
			Path:      "/metrics",
			Namespace: "tern_fx_test",
			Subsystem: "shortener",
		},
	}
}

func TestFXIntegration(t *testing.T) {
	app := fxtest.New(t,
		fx.Provide(testConfig),

		InfrastructureModule,
		ApplicationModule,
		MetricsModule,
		CoreLifecycleModule,
		httpFX.HTTPModule,
		httpFX.HTTPLifecycleModule,

		fx.Invoke(func(
			shortener *application.ShorteningService,
			resolver *application.ResolutionService,
			store domain.Store,
		) {
			require.NotNil(t, shortener)
			require.NotNil(t, resolver)

			_, ok := store.(*instrumented.Store)
			assert.True(t, ok, "store should be instrumented")

			ctx := context.Background()
			result, err := shortener.Shorten(ctx, "https://example.com")
			require.NoError(t, err)
			assert.Len(t, result.ShortCode, 6)

			resolved, err := resolver.Resolve(ctx, result.ShortCode)
			require.NoError(t, err)
			assert.Equal(t, "https://example.com", resolved)
		}),
	)

	app.RequireStart()
	app.RequireStop()
}

func TestFXModules(t *testing.T) {
	tests := []struct {
		name   string
		module fx.Option
		extra  []fx.Option
	}{
		{"InfrastructureModule", InfrastructureModule, []fx.Option{MetricsModule}},
		{"ApplicationModule", ApplicationModule, []fx.Option{
			fx.Provide(func() domain.Store { return nil }),
			fx.Provide(func() domain.Cache { return cacheImpl.NewNoOpCache() }),
			fx.Provide(metrics.NewNoOpRegistry),
		}},
		{"MetricsModule", MetricsModule, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			options := append([]fx.Option{tt.module, fx.Provide(testConfig)}, tt.extra...)

			app := fxtest.New(t, options...)
			app.RequireStart()
			app.RequireStop()
		})
	}
}

func TestProviderFunctions(t *testing.T) {
	t.Run("ProvideLogger", func(t *testing.T) {
		logger := ProvideLogger(testConfig())
		assert.NotNil(t, logger)
		assert.Same(t, logger, slog.Default())
	})

	t.Run("ProvideStore memory", func(t *testing.T) {
		cfg := testConfig()
		store, err := ProvideStore(cfg, ProvideLogger(cfg), metrics.NewNoOpRegistry())
		require.NoError(t, err)
		require.NoError(t, store.HealthCheck(context.Background()))
		require.NoError(t, store.Close())
	})

	t.Run("ProvideStore sqlite", func(t *testing.T) {
		cfg := testConfig()
		cfg.Store.Type = "sqlite"
		cfg.Store.SQLite.Path = filepath.Join(t.TempDir(), "data", "tern.db")

		store, err := ProvideStore(cfg, ProvideLogger(cfg), metrics.NewNoOpRegistry())
		require.NoError(t, err)
		defer store.Close()

		mapping, err := domain.NewURLMapping("abc123", "https://example.com")
		require.NoError(t, err)
		require.NoError(t, store.Create(context.Background(), mapping))

		got, err := store.Get(context.Background(), "abc123")
		require.NoError(t, err)
		assert.Equal(t, "https://example.com", got.OriginalURL)
	})

	t.Run("ProvideStore unsupported", func(t *testing.T) {
		cfg := testConfig()
		cfg.Store.Type = "cassandra"

		_, err := ProvideStore(cfg, ProvideLogger(cfg), metrics.NewNoOpRegistry())
		assert.Error(t, err)
	})

	t.Run("ProvideCache disabled", func(t *testing.T) {
		cfg := testConfig()
		c := ProvideCache(cfg, ProvideLogger(cfg))
		_, ok := c.(*cacheImpl.NoOpCache)
		assert.True(t, ok)
	})

	t.Run("ProvideMetricsRegistry disabled", func(t *testing.T) {
		cfg := testConfig()
		cfg.Metrics.Enabled = false

		registry, err := ProvideMetricsRegistry(cfg)
		require.NoError(t, err)
		assert.Nil(t, registry.GetHandler())
	})

	t.Run("ProvideGenerator rejects bad length", func(t *testing.T) {
		cfg := testConfig()
		cfg.App.ShortCodeLength = 0

		_, err := ProvideGenerator(cfg)
		assert.Error(t, err)
	})

	t.Run("ProvideServiceOptions", func(t *testing.T) {
		opts := ProvideServiceOptions(testConfig())
		assert.Equal(t, 10, opts.MaxAttempts)
		assert.Equal(t, time.Second, opts.StoreTimeout)
		assert.Equal(t, time.Minute, opts.CacheTTL)
	})

	t.Run("ProvideHTTPServer", func(t *testing.T) {
		cfg := testConfig()
		cfg.Server.Port = "8080"

		server := httpFX.ProvideHTTPServer(cfg, chi.NewRouter(), slog.Default())
		assert.NotNil(t, server)
		assert.Equal(t, ":8080", server.Addr())
	})
}

func TestHTTPServerModules_Validate(t *testing.T) {
	t.Setenv("SERVER_PORT", "0")
	t.Setenv("STORE_TYPE", "memory")

	require.NoError(t, fx.ValidateApp(HTTPServerModules))
}
