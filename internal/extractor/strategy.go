package extractor

import (
	"fmt"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/user/image-extractor-service/internal/entity"
	"github.com/user/image-extractor-service/pkg/utils"
)

// OutcomeKind classifies the result of one strategy attempt.
type OutcomeKind int

const (
	NotFound OutcomeKind = iota
	Found
	Fault
)

// Outcome is what a strategy reports for a document.
type Outcome struct {
	Kind      OutcomeKind
	Candidate entity.ImageCandidate
	Err       error
}

func found(c entity.ImageCandidate) Outcome { return Outcome{Kind: Found, Candidate: c} }
func notFound() Outcome { return Outcome{Kind: NotFound} }
func fault(err error) Outcome { return Outcome{Kind: Fault, Err: err} }

// ImageStrategy is one heuristic for locating a representative image.
type ImageStrategy interface {
	Name() string
	Attempt(doc *goquery.Document, baseURL string) Outcome
}

// DefaultStrategies returns the strategies in priority order.
func DefaultStrategies() []ImageStrategy {
	return []ImageStrategy{
		OpenGraphImage{},
		TwitterImage{},
		SchemaImage{},
		MetaImage{},
		LargestImage{},
		FirstArticleImage{},
	}
}

// Chain runs strategies in order until one yields an acceptable candidate.
type Chain struct {
	strategies []ImageStrategy
	logger     *zap.Logger
}

// NewChain builds a chain over strategies, or DefaultStrategies when none are given.
func NewChain(logger *zap.Logger, strategies ...ImageStrategy) *Chain {
	if len(strategies) == 0 {
		strategies = DefaultStrategies()
	}
	return &Chain{strategies: strategies, logger: logger}
}

// SelectImage returns the first accepted candidate and the name of the strategy
// that produced it. ok is false when no strategy found an image.
func (c *Chain) SelectImage(doc *goquery.Document, baseURL string) (candidate entity.ImageCandidate, method string, ok bool) {
	for _, s := range c.strategies {
		out := c.attempt(s, doc, baseURL)
		switch out.Kind {
		case Fault:
			c.logger.Debug("image strategy failed", zap.String("method", s.Name()), zap.Error(out.Err))
		case Found:
			if !utils.IsValidImageURL(out.Candidate.URL) {
				continue
			}
			if !utils.HasImageExtension(out.Candidate.URL) {
				c.logger.Debug("accepting image URL without image extension",
					zap.String("method", s.Name()), zap.String("image_url", out.Candidate.URL))
			}
			return out.Candidate, s.Name(), true
		}
	}
	return entity.ImageCandidate{}, "", false
}

func (c *Chain) attempt(s ImageStrategy, doc *goquery.Document, baseURL string) (out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			out = fault(fmt.Errorf("panic: %v", r))
		}
	}()
	return s.Attempt(doc, baseURL)
}

// resolveImage turns a raw reference into an accepted absolute image URL.
func resolveImage(ref, baseURL string) (string, bool) {
	if ref == "" {
		return "", false
	}
	abs, err := utils.ToAbsoluteURL(baseURL, ref)
	if err != nil {
		return "", false
	}
	if !utils.IsValidImageURL(abs) {
		return "", false
	}
	return abs, true
}
