package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"

	"github.com/sp3dr4/tern/internal/domain"
)

var _ domain.Store = (*Store)(nil)

type Store struct {
	db *sqlx.DB
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Create(ctx context.Context, mapping *domain.URLMapping) error {
	query := `
		INSERT INTO url_mappings (short_code, id, original_url)
		VALUES (:short_code, :id, :original_url)
	`

	if _, err := s.db.NamedExecContext(ctx, query, mapping); err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) &&
			(sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey || sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique) {
			return domain.ErrDuplicateKey
		}
		return unavailable("create mapping", err)
	}

	return nil
}

func (s *Store) Get(ctx context.Context, shortCode string) (*domain.URLMapping, error) {
	var mapping domain.URLMapping
	query := `SELECT id, short_code, original_url FROM url_mappings WHERE short_code = ?`

	if err := s.db.GetContext(ctx, &mapping, query, shortCode); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, unavailable("get mapping", err)
	}

	return &mapping, nil
}

func (s *Store) Exists(ctx context.Context, shortCode string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM url_mappings WHERE short_code = ?)`

	if err := s.db.GetContext(ctx, &exists, query, shortCode); err != nil {
		return false, unavailable("check mapping existence", err)
	}

	return exists, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Store) HealthCheck(ctx context.Context) error {
	if s.db == nil {
		return errors.New("database connection is nil")
	}
	return s.db.PingContext(ctx)
}

func unavailable(operation string, err error) error {
	return fmt.Errorf("%w: sqlite %s: %w", domain.ErrStoreUnavailable, operation, err)
}
