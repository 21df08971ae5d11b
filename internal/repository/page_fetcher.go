package repository

import (
	"context"

	"github.com/user/image-extractor-service/internal/entity"
)

// PageFetcher defines the contract for retrieving a single web page.
type PageFetcher interface {
	// Fetch performs one GET for url. Failures wrap one of the transport errors
	// declared in this package.
	Fetch(ctx context.Context, url string) (*entity.RawPage, error)
}
