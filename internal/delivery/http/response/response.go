package response

import (
	"github.com/user/image-extractor-service/internal/entity"
	"github.com/user/image-extractor-service/pkg/utils"
)

// ImageResponse is returned for a successful extraction.
type ImageResponse struct {
	Success          bool    `json:"success"`
	URL              string  `json:"url"`
	ImageURL         string  `json:"image_url"`
	Title            *string `json:"title"`
	Description      *string `json:"description"`
	ExtractionMethod string  `json:"extraction_method"`
	Cached           bool    `json:"cached"`
	Timestamp        string  `json:"timestamp,omitempty"`
	*ImageDetails
}

// ImageDetails holds the optional fields added when metadata is requested.
type ImageDetails struct {
	ImageAlt    *string           `json:"image_alt"`
	ImageWidth  *string           `json:"image_width"`
	ImageHeight *string           `json:"image_height"`
	Metadata    map[string]string `json:"metadata"`
}

// FailureResponse is returned when no image could be extracted.
type FailureResponse struct {
	Success     bool              `json:"success"`
	URL         string            `json:"url"`
	Error       string            `json:"error"`
	Title       *string           `json:"title"`
	Description *string           `json:"description"`
	Metadata    map[string]string `json:"metadata"`
	Timestamp   string            `json:"timestamp,omitempty"`
}

// BatchResponse summarises a batch run.
type BatchResponse struct {
	Success               bool    `json:"success"`
	TotalURLs             int     `json:"total_urls"`
	SuccessfulExtractions int     `json:"successful_extractions"`
	FailedExtractions     int     `json:"failed_extractions"`
	SuccessRate           float64 `json:"success_rate"`
	ProcessingTimeSeconds float64 `json:"processing_time_seconds"`
	Results               []any   `json:"results"`
	Timestamp             string  `json:"timestamp"`
}

// ErrorResponse is the envelope for validation, limit and internal errors.
type ErrorResponse struct {
	Success       bool                `json:"success"`
	Error         string              `json:"error"`
	Message       string              `json:"message,omitempty"`
	Details       map[string][]string `json:"details,omitempty"`
	ProvidedCount int                 `json:"provided_count,omitempty"`
	Timestamp     string              `json:"timestamp,omitempty"`
}

// CacheClearedResponse confirms a cache invalidation.
type CacheClearedResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	URL       string `json:"url,omitempty"`
	Timestamp string `json:"timestamp"`
}

// HealthResponse reports whether the cache store is reachable.
type HealthResponse struct {
	Status string `json:"status"`
	Cache  string `json:"cache"`
}

// FromResult converts a use case result to its wire form. withTimestamp is
// false for batch items, which carry no timestamp of their own.
func FromResult(r *entity.ExtractionResult, includeMetadata, withTimestamp bool) any {
	timestamp := ""
	if withTimestamp {
		timestamp = r.Timestamp
	}

	if !r.Success {
		return &FailureResponse{
			URL:         r.URL,
			Error:       r.Error,
			Title:       nullable(r.Title),
			Description: nullable(r.Description),
			Metadata:    metadataOf(r),
			Timestamp:   timestamp,
		}
	}

	resp := &ImageResponse{
		Success:          true,
		URL:              r.URL,
		ImageURL:         r.ImageURL,
		Title:            nullable(r.Title),
		Description:      nullable(r.Description),
		ExtractionMethod: r.ExtractionMethod,
		Cached:           r.Cached,
		Timestamp:        timestamp,
	}
	if includeMetadata {
		resp.ImageDetails = &ImageDetails{
			ImageAlt:    nullable(r.ImageAlt),
			ImageWidth:  nullable(r.ImageWidth),
			ImageHeight: nullable(r.ImageHeight),
			Metadata:    metadataOf(r),
		}
	}
	return resp
}

// FromBatch converts a batch result. Processing time is reported in seconds
// rounded to two decimals.
func FromBatch(b *entity.BatchResult, includeMetadata bool, timestamp string) *BatchResponse {
	results := make([]any, len(b.Results))
	for i, r := range b.Results {
		results[i] = FromResult(r, includeMetadata, false)
	}
	return &BatchResponse{
		Success:               true,
		TotalURLs:             b.Total,
		SuccessfulExtractions: b.Successful,
		FailedExtractions:     b.Failed,
		SuccessRate:           b.SuccessRate,
		ProcessingTimeSeconds: utils.Round(b.ProcessingTime.Seconds(), 2),
		Results:               results,
		Timestamp:             timestamp,
	}
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func metadataOf(r *entity.ExtractionResult) map[string]string {
	if r.Metadata == nil {
		return map[string]string{}
	}
	return r.Metadata
}
