// Package extractor selects a representative image and descriptive metadata
// from a parsed HTML page.
package extractor

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/user/image-extractor-service/internal/repository"
)

// Parse builds a queryable document from html. Malformed markup yields a
// partial tree rather than an error.
func Parse(html string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", repository.ErrParse, err)
	}
	return doc, nil
}

// metaContent returns the trimmed content attribute of the first element matching selector.
func metaContent(doc *goquery.Document, selector string) string {
	content, _ := doc.Find(selector).First().Attr("content")
	return strings.TrimSpace(content)
}

// firstText returns the trimmed text of the first element matching selector.
func firstText(doc *goquery.Document, selector string) string {
	return strings.TrimSpace(doc.Find(selector).First().Text())
}

func firstNonEmpty(values ...func() string) string {
	for _, v := range values {
		if s := v(); s != "" {
			return s
		}
	}
	return ""
}
