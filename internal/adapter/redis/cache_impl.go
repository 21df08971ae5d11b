package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/user/image-extractor-service/internal/entity"
	"github.com/user/image-extractor-service/pkg/utils"
)

// KeyPrefix namespaces every cached extraction.
const KeyPrefix = "image_extract:"

const scanBatchSize = 100

// CacheRepoImpl provides a concrete implementation for the CacheRepository interface using Redis.
type CacheRepoImpl struct {
	client *redis.Client
}

// NewCacheRepo creates a new instance of CacheRepoImpl.
func NewCacheRepo(client *redis.Client) *CacheRepoImpl {
	return &CacheRepoImpl{client: client}
}

// Key returns the Redis key holding the cached extraction for url.
func Key(url string) string {
	return fmt.Sprintf("%s%s", KeyPrefix, utils.HashURL(url))
}

// Get returns the cached extraction for url, or nil when there is none.
func (r *CacheRepoImpl) Get(ctx context.Context, url string) (*entity.ExtractionResult, error) {
	raw, err := r.client.Get(ctx, Key(url)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var result entity.ExtractionResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("decode cached extraction: %w", err)
	}
	result.Cached = true
	return &result, nil
}

// Put stores result under url for ttl. SETEX is atomic and sets the key with an expiry.
func (r *CacheRepoImpl) Put(ctx context.Context, url string, result *entity.ExtractionResult, ttl time.Duration) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return r.client.SetEx(ctx, Key(url), payload, ttl).Err()
}

// Invalidate removes the cached extraction for url.
func (r *CacheRepoImpl) Invalidate(ctx context.Context, url string) error {
	return r.client.Del(ctx, Key(url)).Err()
}

// InvalidateAll removes every key under KeyPrefix. SCAN is used instead of
// KEYS so the server is never blocked on a large keyspace.
func (r *CacheRepoImpl) InvalidateAll(ctx context.Context) error {
	var cursor uint64
	for {
		keys, next, err := r.client.Scan(ctx, cursor, KeyPrefix+"*", scanBatchSize).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := r.client.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}

// Ping checks that Redis is reachable.
func (r *CacheRepoImpl) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
