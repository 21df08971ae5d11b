package extractor

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/user/image-extractor-service/internal/entity"
)

// Strategy names reported as extraction_method.
const (
	MethodOpenGraph    = "og_image"
	MethodTwitter      = "twitter_image"
	MethodSchema       = "schema_image"
	MethodMeta         = "meta_image"
	MethodLargest      = "largest_image"
	MethodFirstArticle = "first_article_image"
)

// OpenGraphImage reads og:image and its width, height and alt siblings.
type OpenGraphImage struct{}

func (OpenGraphImage) Name() string { return MethodOpenGraph }

func (OpenGraphImage) Attempt(doc *goquery.Document, baseURL string) Outcome {
	abs, ok := resolveImage(metaContent(doc, `meta[property="og:image"]`), baseURL)
	if !ok {
		return notFound()
	}
	return found(entity.ImageCandidate{
		URL:    abs,
		Width:  metaContent(doc, `meta[property="og:image:width"]`),
		Height: metaContent(doc, `meta[property="og:image:height"]`),
		Alt:    metaContent(doc, `meta[property="og:image:alt"]`),
	})
}

// TwitterImage reads the twitter:image card, declared by name or property.
type TwitterImage struct{}

func (TwitterImage) Name() string { return MethodTwitter }

func (TwitterImage) Attempt(doc *goquery.Document, baseURL string) Outcome {
	abs, ok := resolveImage(metaContent(doc, `meta[name="twitter:image"], meta[property="twitter:image"]`), baseURL)
	if !ok {
		return notFound()
	}
	return found(entity.ImageCandidate{URL: abs})
}

// SchemaImage searches JSON-LD blocks for an image reference.
type SchemaImage struct{}

func (SchemaImage) Name() string { return MethodSchema }

func (SchemaImage) Attempt(doc *goquery.Document, baseURL string) Outcome {
	out := notFound()
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		data, err := decodeOrdered(s.Text())
		if err != nil {
			return true
		}
		ref := findSchemaImage(data)
		if ref == "" {
			return true
		}
		if abs, ok := resolveImage(strings.TrimSpace(ref), baseURL); ok {
			out = found(entity.ImageCandidate{URL: abs})
			return false
		}
		return true
	})
	return out
}

// MetaImage reads a generic image meta tag.
type MetaImage struct{}

func (MetaImage) Name() string { return MethodMeta }

func (MetaImage) Attempt(doc *goquery.Document, baseURL string) Outcome {
	abs, ok := resolveImage(metaContent(doc, `meta[name="image"], meta[itemprop="image"]`), baseURL)
	if !ok {
		return notFound()
	}
	return found(entity.ImageCandidate{URL: abs})
}

// LargestImage picks the <img> with the largest estimated pixel area.
type LargestImage struct{}

func (LargestImage) Name() string { return MethodLargest }

func (LargestImage) Attempt(doc *goquery.Document, baseURL string) Outcome {
	var (
		best     entity.ImageCandidate
		bestSize = -1
	)
	doc.Find("img[src]").Each(func(_ int, s *goquery.Selection) {
		src, _ := s.Attr("src")
		abs, ok := resolveImage(strings.TrimSpace(src), baseURL)
		if !ok {
			return
		}
		width, _ := s.Attr("width")
		height, _ := s.Attr("height")
		// Strictly greater keeps the first image on ties.
		if size := EstimateImageSize(abs, width, height); size > bestSize {
			alt, _ := s.Attr("alt")
			bestSize = size
			best = entity.ImageCandidate{
				URL:    abs,
				Alt:    strings.TrimSpace(alt),
				Width:  dimensionHint(width),
				Height: dimensionHint(height),
			}
		}
	})
	if bestSize < 0 {
		return notFound()
	}
	return found(best)
}

// EstimateImageSize approximates the pixel area of an image from its declared
// dimensions, falling back to hints in the URL.
func EstimateImageSize(imageURL, width, height string) int {
	if isSet(width) && isSet(height) {
		return leadingInt(width) * leadingInt(height)
	}
	switch {
	case strings.Contains(imageURL, "thumbnail"), strings.Contains(imageURL, "thumb"):
		return 10000
	case strings.Contains(imageURL, "medium"):
		return 100000
	case strings.Contains(imageURL, "large"), strings.Contains(imageURL, "big"):
		return 500000
	}
	return 50000
}

var articleImageSelectors = []string{
	"article img[src]",
	".article img[src]",
	".content img[src]",
	".post img[src]",
	".entry img[src]",
	"main img[src]",
}

// FirstArticleImage returns the first image inside common article containers.
type FirstArticleImage struct{}

func (FirstArticleImage) Name() string { return MethodFirstArticle }

func (FirstArticleImage) Attempt(doc *goquery.Document, baseURL string) Outcome {
	for _, selector := range articleImageSelectors {
		img := doc.Find(selector).First()
		if img.Length() == 0 {
			continue
		}
		src, _ := img.Attr("src")
		abs, ok := resolveImage(strings.TrimSpace(src), baseURL)
		if !ok {
			continue
		}
		alt, _ := img.Attr("alt")
		return found(entity.ImageCandidate{URL: abs, Alt: strings.TrimSpace(alt)})
	}
	return notFound()
}

func isSet(v string) bool {
	v = strings.TrimSpace(v)
	return v != "" && v != "0"
}

// dimensionHint normalises an attribute such as "640px" to "640".
func dimensionHint(v string) string {
	if strings.TrimSpace(v) == "" {
		return ""
	}
	return strconv.Itoa(leadingInt(v))
}

// leadingInt parses the integer prefix of v, returning 0 when there is none.
func leadingInt(v string) int {
	v = strings.TrimSpace(v)
	end := 0
	if end < len(v) && (v[end] == '-' || v[end] == '+') {
		end++
	}
	digits := end
	for end < len(v) && v[end] >= '0' && v[end] <= '9' {
		end++
	}
	if end == digits {
		return 0
	}
	n, err := strconv.Atoi(v[:end])
	if err != nil {
		return 0
	}
	return n
}
