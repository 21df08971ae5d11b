package repository

import (
	"context"
	"time"

	"github.com/user/image-extractor-service/internal/entity"
)

// CacheRepository memoizes extraction results per URL.
type CacheRepository interface {
	// Get returns the stored result for url, or nil when absent or expired.
	Get(ctx context.Context, url string) (*entity.ExtractionResult, error)
	// Put stores result for url with the given expiry.
	Put(ctx context.Context, url string, result *entity.ExtractionResult, ttl time.Duration) error
	// Invalidate removes the entry for url. Removing a missing entry is not an error.
	Invalidate(ctx context.Context, url string) error
	// InvalidateAll removes every extraction entry.
	InvalidateAll(ctx context.Context) error
	// Ping reports whether the backing store is reachable.
	Ping(ctx context.Context) error
}
