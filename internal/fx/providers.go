package fx

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/sp3dr4/tern/config"
	"github.com/sp3dr4/tern/internal/application"
	"github.com/sp3dr4/tern/internal/domain"
	"github.com/sp3dr4/tern/internal/generator"
	cacheImpl "github.com/sp3dr4/tern/internal/infrastructure/cache"
	"github.com/sp3dr4/tern/internal/infrastructure/instrumented"
	memoryStore "github.com/sp3dr4/tern/internal/infrastructure/memory"
	postgresStore "github.com/sp3dr4/tern/internal/infrastructure/postgres"
	redisImpl "github.com/sp3dr4/tern/internal/infrastructure/redis"
	sqliteStore "github.com/sp3dr4/tern/internal/infrastructure/sqlite"
	"github.com/sp3dr4/tern/internal/pkg/logging"
	"github.com/sp3dr4/tern/internal/pkg/metrics"
	"github.com/sp3dr4/tern/internal/validation"
	"github.com/sp3dr4/tern/migrations"
)

// ProvideLogger creates the application logger and installs it as the slog default.
func ProvideLogger(cfg *config.Config) *slog.Logger {
	logger := logging.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
	slog.SetDefault(logger)
	return logger
}

// ProvideMetricsRegistry returns a Prometheus registry, or a no-op one when
// metrics are disabled.
func ProvideMetricsRegistry(cfg *config.Config) (metrics.Registry, error) {
	if !cfg.Metrics.Enabled {
		return metrics.NewNoOpRegistry(), nil
	}
	return metrics.NewPrometheusRegistry(cfg.Metrics)
}

// ProvideStore opens the configured backend and wraps it with metrics.
func ProvideStore(cfg *config.Config, logger *slog.Logger, registry metrics.Registry) (domain.Store, error) {
	store, err := openStore(cfg, logger)
	if err != nil {
		return nil, err
	}
	return instrumented.NewStore(store, registry), nil
}

func openStore(cfg *config.Config, logger *slog.Logger) (domain.Store, error) {
	switch cfg.Store.Type {
	case "memory":
		logger.Info("Using in-memory store")
		return memoryStore.NewStore(), nil

	case "sqlite":
		path := cfg.GetDatabaseURL()
		logger.Info("Using SQLite store", "path", path)

		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return nil, fmt.Errorf("failed to create data directory: %w", err)
			}
		}

		db, err := sqlx.Connect("sqlite3", path)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to SQLite: %w", err)
		}

		if err := migrations.Up(db.DB, "sqlite"); err != nil {
			_ = db.Close()
			return nil, err
		}

		return sqliteStore.NewStore(db), nil

	case "postgres":
		driver := cfg.Store.Postgres.Driver
		if driver == "" {
			driver = "postgres"
		}
		logger.Info("Using PostgreSQL store", "driver", driver)

		db, err := sqlx.Connect(driver, cfg.GetDatabaseURL())
		if err != nil {
			return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
		}

		if err := migrations.Up(db.DB, "postgres"); err != nil {
			_ = db.Close()
			return nil, err
		}

		return postgresStore.NewStore(db), nil

	case "redis":
		logger.Info("Using Redis store", "addr", cfg.Store.Redis.Addr)
		client := newRedisClient(cfg.Store.Redis)
		return redisImpl.NewStore(client, cfg.Store.Redis.KeyPrefix, logger), nil

	default:
		return nil, fmt.Errorf("unsupported store type: %s", cfg.Store.Type)
	}
}

// ProvideCache returns the Redis read-through cache when enabled and a no-op
// cache otherwise.
func ProvideCache(cfg *config.Config, logger *slog.Logger) domain.Cache {
	if !cfg.Cache.Enabled {
		logger.Info("Cache disabled")
		return cacheImpl.NewNoOpCache()
	}

	logger.Info("Using Redis cache", "addr", cfg.Cache.Redis.Addr, "ttl", cfg.Cache.TTL)
	return redisImpl.NewRedisCache(newRedisClient(cfg.Cache.Redis), cfg.Cache.KeyPrefix, logger)
}

func newRedisClient(cfg config.RedisConfig) redis.UniversalClient {
	return redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:    []string{cfg.Addr},
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

func ProvideGenerator(cfg *config.Config) (application.CodeGenerator, error) {
	gen, err := generator.New(cfg.App.ShortCodeAlphabet, cfg.App.ShortCodeLength)
	if err != nil {
		return nil, fmt.Errorf("invalid short code settings: %w", err)
	}
	return gen, nil
}

func ProvideValidator(cfg *config.Config) *validation.Validator {
	return validation.New(cfg.App.MaxURLLength, cfg.App.ShortCodeLength)
}

func ProvideServiceOptions(cfg *config.Config) application.Options {
	return application.Options{
		MaxAttempts:  cfg.App.MaxAttempts,
		StoreTimeout: cfg.Store.Timeout,
		CacheTTL:     cfg.Cache.TTL,
	}
}

// StoreParams holds the parameters needed for store lifecycle management
type StoreParams struct {
	fx.In

	Store  domain.Store
	Logger *slog.Logger
}

// RegisterStoreHooks closes the store's connection pool on shutdown.
func RegisterStoreHooks(lc fx.Lifecycle, params StoreParams) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			if err := params.Store.Close(); err != nil {
				params.Logger.Error("Failed to close store resources", "error", err)
				return err
			}
			params.Logger.Info("Store resources closed successfully")
			return nil
		},
	})
}

type CacheParams struct {
	fx.In

	Cache  domain.Cache
	Logger *slog.Logger
}

// RegisterCacheHooks checks the cache at startup and closes it on shutdown.
// An unreachable cache only degrades resolution, so it never blocks startup.
func RegisterCacheHooks(lc fx.Lifecycle, params CacheParams) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := params.Cache.Ping(ctx); err != nil {
				params.Logger.Warn("Cache unreachable, resolving from store only", "error", err)
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			closer, ok := params.Cache.(io.Closer)
			if !ok {
				return nil
			}
			if err := closer.Close(); err != nil && !errors.Is(err, redis.ErrClosed) {
				params.Logger.Error("Failed to close cache", "error", err)
				return err
			}
			return nil
		},
	})
}
