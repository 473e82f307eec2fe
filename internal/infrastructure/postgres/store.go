package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/sp3dr4/tern/internal/domain"
)

var _ domain.Store = (*Store)(nil)

// Store works with both the lib/pq ("postgres") and pgx ("pgx") drivers.
type Store struct {
	db *sqlx.DB
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Create(ctx context.Context, mapping *domain.URLMapping) error {
	query := `
		INSERT INTO url_mappings (short_code, id, original_url)
		VALUES ($1, $2, $3)
	`

	if _, err := s.db.ExecContext(ctx, query, mapping.ShortCode, mapping.ID, mapping.OriginalURL); err != nil {
		return s.handlePostgreSQLError(err, "create mapping")
	}

	slog.Debug("Mapping created", "short_code", mapping.ShortCode)
	return nil
}

func (s *Store) Get(ctx context.Context, shortCode string) (*domain.URLMapping, error) {
	var mapping domain.URLMapping
	query := `SELECT id, short_code, original_url FROM url_mappings WHERE short_code = $1`

	if err := s.db.GetContext(ctx, &mapping, query, shortCode); err != nil {
		return nil, s.handlePostgreSQLError(err, "get mapping")
	}

	return &mapping, nil
}

func (s *Store) Exists(ctx context.Context, shortCode string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM url_mappings WHERE short_code = $1)`

	if err := s.db.GetContext(ctx, &exists, query, shortCode); err != nil {
		return false, s.handlePostgreSQLError(err, "check mapping existence")
	}

	return exists, nil
}

// handlePostgreSQLError converts driver errors to domain errors
func (s *Store) handlePostgreSQLError(err error, operation string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}

	code, message := sqlState(err)
	if code == "" {
		return fmt.Errorf("%w: %s: %w", domain.ErrStoreUnavailable, operation, err)
	}

	slog.Error("PostgreSQL error",
		"operation", operation,
		"code", code,
		"message", message,
	)

	if code == pgerrcode.UniqueViolation {
		return domain.ErrDuplicateKey
	}

	return fmt.Errorf("%w: %s: database error [%s]: %s", domain.ErrStoreUnavailable, operation, code, message)
}

func sqlState(err error) (code, message string) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code), pqErr.Message
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code, pgErr.Message
	}

	return "", ""
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
