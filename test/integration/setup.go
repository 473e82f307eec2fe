//go:build integration

package integration

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	postgresContainer "github.com/testcontainers/testcontainers-go/modules/postgres"
	redisContainer "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/sp3dr4/tern/migrations"
)

var (
	sharedPostgres *postgresContainer.PostgresContainer
	sharedRedis    *redisContainer.RedisContainer
	postgresDSN    string
	redisURL       string

	postgresOnce sync.Once
	redisOnce    sync.Once
	cleanupOnce  sync.Once
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

// SetupPostgres starts the shared PostgreSQL container on first use, applies
// the embedded migrations and returns a clean connection using driverName
// ("postgres" for lib/pq, "pgx" for pgx).
func SetupPostgres(t *testing.T, driverName string) *sqlx.DB {
	t.Helper()

	postgresOnce.Do(func() {
		ctx := context.Background()

		container, err := postgresContainer.Run(ctx,
			"postgres:16-alpine",
			postgresContainer.WithDatabase("tern_test"),
			postgresContainer.WithUsername("test"),
			postgresContainer.WithPassword("test"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(30*time.Second)),
		)
		if err != nil {
			t.Fatalf("failed to start postgres container: %v", err)
		}
		sharedPostgres = container

		postgresDSN, err = container.ConnectionString(ctx, "sslmode=disable")
		if err != nil {
			t.Fatalf("failed to get connection string: %v", err)
		}

		db, err := sqlx.Connect("postgres", postgresDSN)
		if err != nil {
			t.Fatalf("failed to connect to database: %v", err)
		}
		defer db.Close()

		if err := migrations.Up(db.DB, "postgres"); err != nil {
			t.Fatalf("failed to run migrations: %v", err)
		}
	})

	if postgresDSN == "" {
		t.Fatal("postgres container is not available")
	}

	db, err := sqlx.Connect(driverName, postgresDSN)
	if err != nil {
		t.Fatalf("failed to connect with %s driver: %v", driverName, err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if _, err := db.Exec("TRUNCATE TABLE url_mappings"); err != nil {
		t.Fatalf("failed to clean database: %v", err)
	}

	return db
}

// SetupRedis starts the shared Redis container on first use and returns a
// client on a flushed database.
func SetupRedis(t *testing.T) redis.UniversalClient {
	t.Helper()

	redisOnce.Do(func() {
		ctx := context.Background()

		container, err := redisContainer.Run(ctx, "redis:7-alpine")
		if err != nil {
			t.Fatalf("failed to start redis container: %v", err)
		}
		sharedRedis = container

		redisURL, err = container.ConnectionString(ctx)
		if err != nil {
			t.Fatalf("failed to get redis connection string: %v", err)
		}
	})

	if redisURL == "" {
		t.Fatal("redis container is not available")
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		t.Fatalf("failed to parse redis url: %v", err)
	}

	client := redis.NewClient(opts)
	if err := client.FlushDB(context.Background()).Err(); err != nil {
		t.Fatalf("failed to flush redis: %v", err)
	}

	return client
}

// CleanupSharedResources should be called once at the end of all tests
func CleanupSharedResources() {
	cleanupOnce.Do(func() {
		ctx := context.Background()
		if sharedPostgres != nil {
			_ = sharedPostgres.Terminate(ctx)
		}
		if sharedRedis != nil {
			_ = sharedRedis.Terminate(ctx)
		}
	})
}

// TestMain handles setup and teardown for the entire test suite
func TestMain(m *testing.M) {
	code := m.Run()

	CleanupSharedResources()

	os.Exit(code)
}
