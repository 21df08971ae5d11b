package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/user/image-extractor-service/internal/entity"
	"github.com/user/image-extractor-service/internal/extractor"
	"github.com/user/image-extractor-service/internal/repository"
	"github.com/user/image-extractor-service/pkg/metrics"
	"github.com/user/image-extractor-service/pkg/utils"
)

// Failure reasons reported inside results.
const (
	InvalidURLMessage    = "Invalid URL format"
	BatchInternalMessage = "Extraction failed: internal error"
)

// ErrNoImage is the attempt error when the page was read but no strategy found an image.
var ErrNoImage = errors.New("No valid image found using any extraction method")

// ImageExtractor defines single and batch extraction along with cache management.
type ImageExtractor interface {
	// Extract returns the result for one URL. A non-nil error means an internal
	// fault; fetch and content failures are reported through the result.
	Extract(ctx context.Context, url string, forceRefresh bool) (*entity.ExtractionResult, error)
	ExtractBatch(ctx context.Context, urls []string, forceRefresh bool) (*entity.BatchResult, error)
	ClearCache(ctx context.Context, url string) error
	ClearAllCache(ctx context.Context) error
	Health(ctx context.Context) error
}

// Options tunes retries, caching and batch pacing.
type Options struct {
	MaxAttempts    int
	RetryBaseDelay time.Duration
	CacheTTL       time.Duration
	BatchDelay     time.Duration
	MaxBatchSize   int
}

// DefaultOptions returns three attempts with 1s base backoff, a one hour
// cache and 500ms between batch items for up to 50 URLs.
func DefaultOptions() Options {
	return Options{
		MaxAttempts:    3,
		RetryBaseDelay: time.Second,
		CacheTTL:       time.Hour,
		BatchDelay:     500 * time.Millisecond,
		MaxBatchSize:   50,
	}
}

type extractionUseCase struct {
	fetcher   repository.PageFetcher
	cache     repository.CacheRepository
	extractor *extractor.Extractor
	opts      Options
	logger    *zap.Logger

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration)
}

// NewImageExtractor creates the extraction use case.
func NewImageExtractor(
	fetcher repository.PageFetcher,
	cache repository.CacheRepository,
	ex *extractor.Extractor,
	opts Options,
	logger *zap.Logger,
) ImageExtractor {
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 1
	}
	return &extractionUseCase{
		fetcher:   fetcher,
		cache:     cache,
		extractor: ex,
		opts:      opts,
		logger:    logger,
		now:       time.Now,
		sleep:     sleepContext,
	}
}

func (uc *extractionUseCase) Extract(ctx context.Context, url string, forceRefresh bool) (*entity.ExtractionResult, error) {
	if !utils.IsValidURL(url) {
		metrics.ExtractionsTotal.WithLabelValues("failure", "").Inc()
		return entity.NewFailure(url, InvalidURLMessage, uc.now()), nil
	}

	if forceRefresh {
		if err := uc.cache.Invalidate(ctx, url); err != nil {
			return nil, fmt.Errorf("failed to invalidate cache for %s: %w", url, err)
		}
	} else {
		cached, err := uc.cache.Get(ctx, url)
		if err != nil {
			return nil, fmt.Errorf("failed to read cache for %s: %w", url, err)
		}
		if cached != nil {
			metrics.CacheLookupsTotal.WithLabelValues("hit").Inc()
			uc.logger.Info("serving cached extraction", zap.String("url", url))
			return cached, nil
		}
		metrics.CacheLookupsTotal.WithLabelValues("miss").Inc()
		uc.logger.Debug("cache miss", zap.String("url", url))
	}

	result := uc.runWithRetry(ctx, url)
	if !result.Success {
		metrics.ExtractionsTotal.WithLabelValues("failure", "").Inc()
		return result, nil
	}

	metrics.ExtractionsTotal.WithLabelValues("success", result.ExtractionMethod).Inc()
	if err := uc.cache.Put(ctx, url, result, uc.opts.CacheTTL); err != nil {
		uc.logger.Error("failed to cache extraction", zap.String("url", url), zap.Error(err))
	}
	return result, nil
}

// runWithRetry repeats the fetch and extract pipeline until it succeeds or the
// attempt budget is spent, backing off base*2^(n-1) after attempt n.
func (uc *extractionUseCase) runWithRetry(ctx context.Context, url string) *entity.ExtractionResult {
	var (
		lastErr    error
		lastParsed *extractor.Extraction
	)

	for attempt := 1; attempt <= uc.opts.MaxAttempts; attempt++ {
		result, parsed, err := uc.attempt(ctx, url)
		if parsed != nil {
			lastParsed = parsed
		}
		if err == nil {
			metrics.ExtractionAttemptsTotal.WithLabelValues("success").Inc()
			return result
		}

		lastErr = err
		outcome := "transport"
		if errors.Is(err, ErrNoImage) {
			outcome = "no_image"
		}
		metrics.ExtractionAttemptsTotal.WithLabelValues(outcome).Inc()
		uc.logger.Warn("extraction attempt failed",
			zap.String("url", url),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", uc.opts.MaxAttempts),
			zap.Error(err),
		)

		if attempt < uc.opts.MaxAttempts {
			uc.sleep(ctx, uc.backoff(attempt))
		}
	}

	failure := entity.NewFailure(url, fmt.Sprintf("Failed after %d attempts: %v", uc.opts.MaxAttempts, lastErr), uc.now())
	if lastParsed != nil {
		failure.Title = lastParsed.Title
		failure.Description = lastParsed.Description
		failure.Metadata = lastParsed.Metadata
	}
	return failure
}

func (uc *extractionUseCase) backoff(attempt int) time.Duration {
	return uc.opts.RetryBaseDelay * time.Duration(1<<(attempt-1))
}

// attempt runs fetch, parse and extract once. The parsed page is returned
// whenever it was read, even if no image was found.
func (uc *extractionUseCase) attempt(ctx context.Context, url string) (*entity.ExtractionResult, *extractor.Extraction, error) {
	page, err := uc.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, nil, err
	}

	parsed, err := uc.extractor.Extract(page.Body, url)
	if err != nil {
		return nil, nil, err
	}
	if !parsed.ImageFound {
		return nil, parsed, ErrNoImage
	}

	return &entity.ExtractionResult{
		Success:          true,
		URL:              url,
		ImageURL:         parsed.Image.URL,
		ImageAlt:         parsed.Image.Alt,
		ImageWidth:       parsed.Image.Width,
		ImageHeight:      parsed.Image.Height,
		Title:            parsed.Title,
		Description:      parsed.Description,
		Metadata:         parsed.Metadata,
		ExtractionMethod: parsed.Method,
		Timestamp:        entity.FormatTimestamp(uc.now()),
	}, parsed, nil
}

func (uc *extractionUseCase) ClearCache(ctx context.Context, url string) error {
	if err := uc.cache.Invalidate(ctx, url); err != nil {
		return fmt.Errorf("failed to clear cache for %s: %w", url, err)
	}
	uc.logger.Info("cleared cached extraction", zap.String("url", url))
	return nil
}

func (uc *extractionUseCase) ClearAllCache(ctx context.Context) error {
	if err := uc.cache.InvalidateAll(ctx); err != nil {
		return fmt.Errorf("failed to clear extraction cache: %w", err)
	}
	uc.logger.Info("cleared all cached extractions")
	return nil
}

func (uc *extractionUseCase) Health(ctx context.Context) error {
	return uc.cache.Ping(ctx)
}

// sleepContext waits for d or until ctx is done.
func sleepContext(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
