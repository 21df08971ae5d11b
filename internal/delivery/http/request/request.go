// Package request decodes and validates API request bodies. Validation follows
// the form-request conventions of the service's public API: every field error
// is collected and reported together, keyed by field name.
package request

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/user/image-extractor-service/pkg/utils"
)

// MaxURLLength is the longest URL accepted in any request.
const MaxURLLength = 2048

// ValidationError maps field names to their error messages.
type ValidationError map[string][]string

func (e ValidationError) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return "validation failed: " + strings.Join(fields, ", ")
}

func (e ValidationError) add(field, format string, args ...any) {
	e[field] = append(e[field], fmt.Sprintf(format, args...))
}

func (e ValidationError) orNil() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

// TooManyURLsError is returned when a batch carries more URLs than allowed.
type TooManyURLsError struct {
	Provided int
	Limit    int
}

func (e *TooManyURLsError) Error() string {
	return fmt.Sprintf("Maximum %d URLs allowed per request", e.Limit)
}

// FetchImageRequest is the body of a single extraction request.
type FetchImageRequest struct {
	URL             string
	ForceRefresh    bool
	IncludeMetadata bool
}

// FetchMultipleRequest is the body of a batch extraction request.
// ParallelProcessing is accepted for compatibility and has no effect.
type FetchMultipleRequest struct {
	URLs               []string
	ForceRefresh       bool
	IncludeMetadata    bool
	ParallelProcessing bool
}

// ClearCacheRequest names the URL whose cache entry should be removed.
// An empty URL means the whole cache.
type ClearCacheRequest struct {
	URL string
}

// ParseFetchImage decodes and validates a single extraction request.
func ParseFetchImage(body io.Reader) (*FetchImageRequest, error) {
	fields, errs := decodeObject(body)
	if errs != nil {
		return nil, errs
	}

	errs = ValidationError{}
	req := &FetchImageRequest{
		URL:             requiredURL(fields, "url", errs),
		ForceRefresh:    optionalBool(fields, "force_refresh", false, errs),
		IncludeMetadata: optionalBool(fields, "include_metadata", true, errs),
	}
	if err := errs.orNil(); err != nil {
		return nil, err
	}
	return req, nil
}

// ParseFetchMultiple decodes and validates a batch request. A list longer than
// maxURLs yields *TooManyURLsError before the individual URLs are checked.
func ParseFetchMultiple(body io.Reader, maxURLs int) (*FetchMultipleRequest, error) {
	fields, errs := decodeObject(body)
	if errs != nil {
		return nil, errs
	}

	errs = ValidationError{}
	req := &FetchMultipleRequest{
		ForceRefresh:       optionalBool(fields, "force_refresh", false, errs),
		IncludeMetadata:    optionalBool(fields, "include_metadata", true, errs),
		ParallelProcessing: optionalBool(fields, "parallel_processing", false, errs),
	}

	raw, ok := present(fields, "urls")
	if !ok {
		errs.add("urls", "The urls field is required.")
		return nil, errs
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		errs.add("urls", "The urls field must be an array.")
		return nil, errs
	}
	if len(items) == 0 {
		errs.add("urls", "The urls field must have at least 1 items.")
		return nil, errs
	}
	if len(items) > maxURLs {
		return nil, &TooManyURLsError{Provided: len(items), Limit: maxURLs}
	}

	req.URLs = make([]string, len(items))
	for i, item := range items {
		field := fmt.Sprintf("urls.%d", i)
		req.URLs[i] = validURL(item, field, errs)
	}
	if err := errs.orNil(); err != nil {
		return nil, err
	}
	return req, nil
}

// ParseClearCache decodes a cache clear request. An empty body selects the
// whole cache; otherwise url is required.
func ParseClearCache(body io.Reader) (*ClearCacheRequest, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, ValidationError{"body": {"The request body could not be read."}}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return &ClearCacheRequest{}, nil
	}

	fields, errs := decodeObject(bytes.NewReader(data))
	if errs != nil {
		return nil, errs
	}
	errs = ValidationError{}
	req := &ClearCacheRequest{URL: requiredURL(fields, "url", errs)}
	if err := errs.orNil(); err != nil {
		return nil, err
	}
	return req, nil
}

func decodeObject(body io.Reader) (map[string]json.RawMessage, ValidationError) {
	fields := map[string]json.RawMessage{}
	dec := json.NewDecoder(body)
	if err := dec.Decode(&fields); err != nil {
		if errors.Is(err, io.EOF) {
			return fields, nil
		}
		return nil, ValidationError{"body": {"The request body must be a JSON object."}}
	}
	return fields, nil
}

// present returns the raw value of field unless it is missing or null.
func present(fields map[string]json.RawMessage, field string) (json.RawMessage, bool) {
	raw, ok := fields[field]
	if !ok || string(bytes.TrimSpace(raw)) == "null" {
		return nil, false
	}
	return raw, true
}

func requiredURL(fields map[string]json.RawMessage, field string, errs ValidationError) string {
	raw, ok := present(fields, field)
	if !ok {
		errs.add(field, "The %s field is required.", field)
		return ""
	}
	return validURL(raw, field, errs)
}

func validURL(raw json.RawMessage, field string, errs ValidationError) string {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		errs.add(field, "The %s field must be a valid URL.", field)
		return ""
	}
	if strings.TrimSpace(s) == "" {
		errs.add(field, "The %s field is required.", field)
		return ""
	}
	if !utils.IsValidURL(s) {
		errs.add(field, "The %s field must be a valid URL.", field)
	}
	if len(s) > MaxURLLength {
		errs.add(field, "The %s field must not be greater than %d characters.", field, MaxURLLength)
	}
	return s
}

// optionalBool accepts true, false, 1, 0, "1" and "0".
func optionalBool(fields map[string]json.RawMessage, field string, def bool, errs ValidationError) bool {
	raw, ok := present(fields, field)
	if !ok {
		return def
	}
	switch string(bytes.TrimSpace(raw)) {
	case "true", "1", `"1"`:
		return true
	case "false", "0", `"0"`:
		return false
	}
	errs.add(field, "The %s field must be true or false.", field)
	return def
}
