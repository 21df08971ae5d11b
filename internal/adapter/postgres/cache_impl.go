package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/user/image-extractor-service/internal/entity"
	"github.com/user/image-extractor-service/pkg/utils"
)

const keyPrefix = "image_extract:"

// DB is the subset of *pgxpool.Pool used by the cache.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
}

// CacheRepoImpl provides a concrete implementation for the CacheRepository interface using PostgreSQL.
type CacheRepoImpl struct {
	db  DB
	now func() time.Time
}

// NewCacheRepo creates a new instance of CacheRepoImpl.
func NewCacheRepo(db DB) *CacheRepoImpl {
	return &CacheRepoImpl{db: db, now: time.Now}
}

func cacheKey(url string) string {
	return keyPrefix + utils.HashURL(url)
}

// EnsureSchema creates the cache table when it does not exist yet.
func (r *CacheRepoImpl) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS image_extraction_cache (
			cache_key  TEXT PRIMARY KEY,
			url        TEXT NOT NULL,
			payload    JSONB NOT NULL,
			expires_at TIMESTAMPTZ NOT NULL
		);
	`
	if _, err := r.db.Exec(ctx, query); err != nil {
		return fmt.Errorf("create cache table: %w", err)
	}
	return nil
}

// Get returns the unexpired cached extraction for url, or nil when there is none.
func (r *CacheRepoImpl) Get(ctx context.Context, url string) (*entity.ExtractionResult, error) {
	query := `
		SELECT payload
		FROM image_extraction_cache
		WHERE cache_key = $1 AND expires_at > $2;
	`
	var payload []byte
	err := r.db.QueryRow(ctx, query, cacheKey(url), r.now()).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var result entity.ExtractionResult
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, fmt.Errorf("decode cached extraction: %w", err)
	}
	result.Cached = true
	return &result, nil
}

// Put stores or replaces the cached extraction for url.
func (r *CacheRepoImpl) Put(ctx context.Context, url string, result *entity.ExtractionResult, ttl time.Duration) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO image_extraction_cache (cache_key, url, payload, expires_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (cache_key) DO UPDATE SET
			url = EXCLUDED.url,
			payload = EXCLUDED.payload,
			expires_at = EXCLUDED.expires_at;
	`
	_, err = r.db.Exec(ctx, query, cacheKey(url), url, payload, r.now().Add(ttl))
	return err
}

// Invalidate deletes the cached extraction for url.
func (r *CacheRepoImpl) Invalidate(ctx context.Context, url string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM image_extraction_cache WHERE cache_key = $1;`, cacheKey(url))
	return err
}

// InvalidateAll deletes every cached extraction.
func (r *CacheRepoImpl) InvalidateAll(ctx context.Context) error {
	_, err := r.db.Exec(ctx, `DELETE FROM image_extraction_cache;`)
	return err
}

// PurgeExpired deletes rows whose TTL has passed and reports how many were removed.
func (r *CacheRepoImpl) PurgeExpired(ctx context.Context) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM image_extraction_cache WHERE expires_at <= $1;`, r.now())
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// Ping checks that the database is reachable.
func (r *CacheRepoImpl) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}
