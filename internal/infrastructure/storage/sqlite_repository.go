package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "embed"

	sq "github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite"

	"ReviewScanner/internal/domain"
	"ReviewScanner/internal/ports"
)

//go:embed schema.sql
var schema string

var cacheColumns = []string{"key", "target_url", "business_name", "payload", "created_at", "updated_at"}

// SqliteRepository persists acquisition results in sqlite, one row per request
// key. The upsert is a single statement, so concurrent pipelines computing the
// same key resolve last-writer-wins without lost updates.
type SqliteRepository struct {
	db  *sql.DB
	now func() time.Time
}

var _ ports.CacheStore = (*SqliteRepository)(nil)

// Open creates the database file (or opens an existing one) and applies the
// schema.
func Open(path string) (*SqliteRepository, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	repo, err := NewSqliteRepository(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

// NewSqliteRepository wires an existing connection and applies the schema.
func NewSqliteRepository(db *sql.DB) (*SqliteRepository, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("apply cache schema: %w", err)
	}
	return &SqliteRepository{db: db, now: time.Now}, nil
}

// Close releases the underlying connection.
func (r *SqliteRepository) Close() error {
	return r.db.Close()
}

// Get returns the entry for a key, reporting absence without an error.
func (r *SqliteRepository) Get(ctx context.Context, key string) (domain.CacheEntry, bool, error) {
	query, args, err := sq.Select(cacheColumns...).
		From("analysis_cache").
		Where(sq.Eq{"key": key}).
		ToSql()
	if err != nil {
		return domain.CacheEntry{}, false, fmt.Errorf("build get query: %w", err)
	}

	return r.scanOne(ctx, query, args)
}

// Any returns the most recently updated entry across all keys. It backs the
// last-resort fallback tier only.
func (r *SqliteRepository) Any(ctx context.Context) (domain.CacheEntry, bool, error) {
	query, args, err := sq.Select(cacheColumns...).
		From("analysis_cache").
		OrderBy("updated_at DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return domain.CacheEntry{}, false, fmt.Errorf("build any query: %w", err)
	}

	return r.scanOne(ctx, query, args)
}

// Upsert inserts the entry or replaces the payload for an existing key,
// refreshing updated_at and keeping created_at intact.
func (r *SqliteRepository) Upsert(ctx context.Context, entry domain.CacheEntry) error {
	now := r.now().UTC()

	query, args, err := sq.Insert("analysis_cache").
		Columns(cacheColumns...).
		Values(entry.Key, entry.TargetURL, entry.BusinessName, entry.Payload, now, now).
		Suffix(`ON CONFLICT (key) DO UPDATE SET
			target_url = excluded.target_url,
			business_name = excluded.business_name,
			payload = excluded.payload,
			updated_at = excluded.updated_at`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert cache entry: %w", err)
	}

	return nil
}

func (r *SqliteRepository) scanOne(ctx context.Context, query string, args []any) (domain.CacheEntry, bool, error) {
	var entry domain.CacheEntry
	var businessName sql.NullString

	row := r.db.QueryRowContext(ctx, query, args...)
	err := row.Scan(&entry.Key, &entry.TargetURL, &businessName, &entry.Payload, &entry.CreatedAt, &entry.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.CacheEntry{}, false, nil
	}
	if err != nil {
		return domain.CacheEntry{}, false, fmt.Errorf("scan cache entry: %w", err)
	}

	entry.BusinessName = businessName.String
	return entry, true, nil
}
