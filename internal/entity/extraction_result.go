package entity

import "time"

// TimestampLayout is the ISO-8601 form used for result timestamps.
const TimestampLayout = "2006-01-02T15:04:05.000000Z07:00"

// Metadata keys reported alongside an extraction.
const (
	MetaSiteName      = "site_name"
	MetaAuthor        = "author"
	MetaPublishedTime = "published_time"
	MetaType          = "type"
)

// ExtractionResult is the outcome of extracting a preview image from one page URL.
// Success implies ImageURL is set and Error is empty; a failure carries Error and
// may still carry Title, Description and Metadata.
type ExtractionResult struct {
	Success          bool              `json:"success"`
	URL              string            `json:"url"`
	ImageURL         string            `json:"image_url,omitempty"`
	ImageAlt         string            `json:"image_alt,omitempty"`
	ImageWidth       string            `json:"image_width,omitempty"`
	ImageHeight      string            `json:"image_height,omitempty"`
	Title            string            `json:"title,omitempty"`
	Description      string            `json:"description,omitempty"`
	Metadata         map[string]string `json:"metadata,omitempty"`
	ExtractionMethod string            `json:"extraction_method,omitempty"`
	Error            string            `json:"error,omitempty"`
	Cached           bool              `json:"cached"`
	Timestamp        string            `json:"timestamp"`
}

// NewFailure builds a failed result stamped with the given time.
func NewFailure(url, reason string, at time.Time) *ExtractionResult {
	return &ExtractionResult{
		URL:       url,
		Error:     reason,
		Timestamp: FormatTimestamp(at),
	}
}

// FormatTimestamp renders t in UTC using TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}
