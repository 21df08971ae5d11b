package extractor

import (
	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/user/image-extractor-service/internal/entity"
)

// Extraction is everything read from one page.
type Extraction struct {
	Image       entity.ImageCandidate
	Method      string
	ImageFound  bool
	Title       string
	Description string
	Metadata    map[string]string
}

// Extractor parses pages and runs the image chain and metadata extractors.
type Extractor struct {
	chain  *Chain
	logger *zap.Logger
}

// New creates an Extractor over chain. A nil chain uses the default strategies.
func New(chain *Chain, logger *zap.Logger) *Extractor {
	if chain == nil {
		chain = NewChain(logger)
	}
	return &Extractor{chain: chain, logger: logger}
}

// Extract parses html and reads the image and metadata. Relative image
// references are resolved against baseURL. Only a parse failure is an error.
func (e *Extractor) Extract(html, baseURL string) (*Extraction, error) {
	doc, err := Parse(html)
	if err != nil {
		return nil, err
	}

	out := &Extraction{Metadata: map[string]string{}}
	out.Image, out.Method, out.ImageFound = e.chain.SelectImage(doc, baseURL)
	e.readMetadata(doc, out)
	return out, nil
}

func (e *Extractor) readMetadata(doc *goquery.Document, out *Extraction) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Debug("metadata extraction failed", zap.Any("panic", r))
		}
	}()
	out.Title = ExtractTitle(doc)
	out.Description = ExtractDescription(doc)
	out.Metadata = ExtractMetadata(doc)
}
