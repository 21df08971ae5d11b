// Package memory holds an in-process cache used when no external store is configured.
package memory

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/user/image-extractor-service/internal/entity"
	"github.com/user/image-extractor-service/pkg/utils"
)

func cacheKey(url string) string {
	return "image_extract:" + utils.HashURL(url)
}

type entry struct {
	payload   []byte
	expiresAt time.Time
}

// CacheRepoImpl is a CacheRepository backed by a map. Entries are stored
// serialized so callers never share state with the cache.
type CacheRepoImpl struct {
	mu      sync.Mutex
	entries map[string]entry
	now     func() time.Time
}

// NewCacheRepo creates an empty in-memory cache.
func NewCacheRepo() *CacheRepoImpl {
	return &CacheRepoImpl{entries: make(map[string]entry), now: time.Now}
}

func (r *CacheRepoImpl) Get(_ context.Context, url string) (*entity.ExtractionResult, error) {
	key := cacheKey(url)
	r.mu.Lock()
	e, ok := r.entries[key]
	if ok && !r.now().Before(e.expiresAt) {
		delete(r.entries, key)
		ok = false
	}
	r.mu.Unlock()
	if !ok {
		return nil, nil
	}

	var result entity.ExtractionResult
	if err := json.Unmarshal(e.payload, &result); err != nil {
		return nil, err
	}
	result.Cached = true
	return &result, nil
}

func (r *CacheRepoImpl) Put(_ context.Context, url string, result *entity.ExtractionResult, ttl time.Duration) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.entries[cacheKey(url)] = entry{payload: payload, expiresAt: r.now().Add(ttl)}
	r.mu.Unlock()
	return nil
}

func (r *CacheRepoImpl) Invalidate(_ context.Context, url string) error {
	r.mu.Lock()
	delete(r.entries, cacheKey(url))
	r.mu.Unlock()
	return nil
}

func (r *CacheRepoImpl) InvalidateAll(context.Context) error {
	r.mu.Lock()
	r.entries = make(map[string]entry)
	r.mu.Unlock()
	return nil
}

// Ping always succeeds.
func (r *CacheRepoImpl) Ping(context.Context) error { return nil }

// Len reports the number of stored entries, including expired ones not yet evicted.
func (r *CacheRepoImpl) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
