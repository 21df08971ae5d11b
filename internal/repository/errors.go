package repository

import (
	"errors"
	"fmt"
)

// Transport level failures reported by a PageFetcher.
var (
	ErrConnectionFailure = errors.New("connection failed")
	ErrRequestFailure    = errors.New("request failed")
	ErrEmptyBody         = errors.New("empty response body")
	ErrParse             = errors.New("parsing failed")
)

// HTTPStatusError is returned when the final response status is not 200.
type HTTPStatusError struct {
	StatusCode int
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("HTTP %d error", e.StatusCode)
}
