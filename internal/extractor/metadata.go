package extractor

import (
	"github.com/PuerkitoBio/goquery"

	"github.com/user/image-extractor-service/internal/entity"
)

// ExtractTitle returns the page title from og:title, twitter:title, <title>
// or the first <h1>, in that order.
func ExtractTitle(doc *goquery.Document) string {
	return firstNonEmpty(
		func() string { return metaContent(doc, `meta[property="og:title"]`) },
		func() string { return metaContent(doc, `meta[name="twitter:title"]`) },
		func() string { return firstText(doc, "title") },
		func() string { return firstText(doc, "h1") },
	)
}

// ExtractDescription returns og:description, twitter:description or the
// description meta tag, in that order.
func ExtractDescription(doc *goquery.Document) string {
	return firstNonEmpty(
		func() string { return metaContent(doc, `meta[property="og:description"]`) },
		func() string { return metaContent(doc, `meta[name="twitter:description"]`) },
		func() string { return metaContent(doc, `meta[name="description"]`) },
	)
}

var metadataSources = []struct {
	key      string
	selector string
}{
	{entity.MetaSiteName, `meta[property="og:site_name"]`},
	{entity.MetaAuthor, `meta[name="author"], meta[property="article:author"]`},
	{entity.MetaPublishedTime, `meta[property="article:published_time"]`},
	{entity.MetaType, `meta[property="og:type"]`},
}

// ExtractMetadata collects site name, author, publish time and content type.
// Keys whose tag is missing or empty are left out.
func ExtractMetadata(doc *goquery.Document) map[string]string {
	meta := make(map[string]string, len(metadataSources))
	for _, src := range metadataSources {
		if v := metaContent(doc, src.selector); v != "" {
			meta[src.key] = v
		}
	}
	return meta
}
