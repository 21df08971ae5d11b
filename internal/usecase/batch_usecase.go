package usecase

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/user/image-extractor-service/internal/entity"
	"github.com/user/image-extractor-service/pkg/utils"
)

var (
	ErrEmptyBatch    = errors.New("batch contains no URLs")
	ErrBatchTooLarge = errors.New("batch exceeds the maximum number of URLs")
)

// ExtractBatch extracts every URL in input order, one at a time, pausing
// between items. A failing item never stops the batch.
func (uc *extractionUseCase) ExtractBatch(ctx context.Context, urls []string, forceRefresh bool) (*entity.BatchResult, error) {
	if len(urls) == 0 {
		return nil, ErrEmptyBatch
	}
	if len(urls) > uc.opts.MaxBatchSize {
		return nil, fmt.Errorf("%w: %d provided, limit is %d", ErrBatchTooLarge, len(urls), uc.opts.MaxBatchSize)
	}

	start := uc.now()
	batch := &entity.BatchResult{
		Total:   len(urls),
		Results: make([]*entity.ExtractionResult, 0, len(urls)),
	}

	for i, url := range urls {
		result, err := uc.Extract(ctx, url, forceRefresh)
		if err != nil {
			uc.logger.Error("batch item failed", zap.String("url", url), zap.Int("index", i), zap.Error(err))
			result = entity.NewFailure(url, BatchInternalMessage, uc.now())
		}

		if result.Success {
			batch.Successful++
		} else {
			batch.Failed++
		}
		batch.Results = append(batch.Results, result)

		if i < len(urls)-1 {
			uc.sleep(ctx, uc.opts.BatchDelay)
		}
	}

	batch.ProcessingTime = uc.now().Sub(start)
	batch.SuccessRate = utils.Round(float64(batch.Successful)/float64(batch.Total)*100, 1)

	uc.logger.Info("batch extraction finished",
		zap.Int("total", batch.Total),
		zap.Int("successful", batch.Successful),
		zap.Int("failed", batch.Failed),
		zap.Duration("processing_time", batch.ProcessingTime),
	)
	return batch, nil
}
