package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sp3dr4/tern/internal/domain"
	"github.com/sp3dr4/tern/migrations"
)

func setupStore(t *testing.T) *Store {
	t.Helper()

	db, err := sqlx.Connect("sqlite3", filepath.Join(t.TempDir(), "tern.db"))
	require.NoError(t, err)
	require.NoError(t, migrations.Up(db.DB, "sqlite"))

	store := NewStore(db)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStore_CreateAndGet(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	mapping, err := domain.NewURLMapping("Ab3dE9", "https://example.com/path?q=1")
	require.NoError(t, err)

	require.NoError(t, store.Create(ctx, mapping))

	found, err := store.Get(ctx, "Ab3dE9")
	require.NoError(t, err)
	assert.Equal(t, *mapping, *found)
}

func TestSQLiteStore_CreateDuplicate(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	first, _ := domain.NewURLMapping("Ab3dE9", "https://example.com")
	second, _ := domain.NewURLMapping("Ab3dE9", "https://other.example.com")

	require.NoError(t, store.Create(ctx, first))

	err := store.Create(ctx, second)
	assert.ErrorIs(t, err, domain.ErrDuplicateKey)
	assert.NotErrorIs(t, err, domain.ErrStoreUnavailable)
}

func TestSQLiteStore_GetNotFound(t *testing.T) {
	store := setupStore(t)

	_, err := store.Get(context.Background(), "zzz999")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSQLiteStore_Exists(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	mapping, _ := domain.NewURLMapping("Ab3dE9", "https://example.com")
	require.NoError(t, store.Create(ctx, mapping))

	exists, err := store.Exists(ctx, "Ab3dE9")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = store.Exists(ctx, "zzz999")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestSQLiteStore_ClosedDatabaseIsUnavailable(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	require.NoError(t, store.Close())

	exists, err := store.Exists(ctx, "Ab3dE9")
	assert.False(t, exists)
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)

	_, err = store.Get(ctx, "Ab3dE9")
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
	assert.NotErrorIs(t, err, domain.ErrNotFound)

	mapping, _ := domain.NewURLMapping("Ab3dE9", "https://example.com")
	err = store.Create(ctx, mapping)
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
	assert.NotErrorIs(t, err, domain.ErrDuplicateKey)
}

func TestSQLiteStore_ExpiredContextIsUnavailable(t *testing.T) {
	store := setupStore(t)

	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	<-ctx.Done()

	_, err := store.Exists(ctx, "Ab3dE9")
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
}
