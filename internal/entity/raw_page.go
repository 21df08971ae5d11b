package entity

import "time"

// RawPage is a fetched HTML document.
type RawPage struct {
	URL             string
	FinalURL        string
	StatusCode      int
	ContentType     string
	Body            string
	FetchedAt       time.Time
	ResponseLatency time.Duration
}
