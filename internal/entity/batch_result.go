package entity

import "time"

// BatchResult aggregates the results of a batch run. Results is in input order.
type BatchResult struct {
	Total          int
	Successful     int
	Failed         int
	SuccessRate    float64
	ProcessingTime time.Duration
	Results        []*ExtractionResult
}
