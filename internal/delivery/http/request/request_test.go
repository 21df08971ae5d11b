package request

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFetchImage(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		req, err := ParseFetchImage(strings.NewReader(`{"url":"https://example.com/a"}`))
		require.NoError(t, err)
		assert.Equal(t, &FetchImageRequest{URL: "https://example.com/a", IncludeMetadata: true}, req)
	})

	t.Run("loose booleans", func(t *testing.T) {
		req, err := ParseFetchImage(strings.NewReader(`{"url":"https://example.com/a","force_refresh":"1","include_metadata":0}`))
		require.NoError(t, err)
		assert.True(t, req.ForceRefresh)
		assert.False(t, req.IncludeMetadata)
	})

	t.Run("null flags keep defaults", func(t *testing.T) {
		req, err := ParseFetchImage(strings.NewReader(`{"url":"https://example.com/a","include_metadata":null}`))
		require.NoError(t, err)
		assert.True(t, req.IncludeMetadata)
	})

	tests := []struct {
		name string
		body string
		want ValidationError
	}{
		{"empty body", ``, ValidationError{"url": {"The url field is required."}}},
		{"missing url", `{}`, ValidationError{"url": {"The url field is required."}}},
		{"not a url", `{"url":"example"}`, ValidationError{"url": {"The url field must be a valid URL."}}},
		{"number url", `{"url":5}`, ValidationError{"url": {"The url field must be a valid URL."}}},
		{"bad flag", `{"url":"https://a.com","force_refresh":"yes"}`, ValidationError{"force_refresh": {"The force_refresh field must be true or false."}}},
		{"not an object", `[1,2]`, ValidationError{"body": {"The request body must be a JSON object."}}},
		{
			"too long",
			fmt.Sprintf(`{"url":"https://a.com/%s"}`, strings.Repeat("x", MaxURLLength)),
			ValidationError{"url": {"The url field must not be greater than 2048 characters."}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseFetchImage(strings.NewReader(tt.body))
			var verr ValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)
			assert.Equal(t, tt.want, verr)
		})
	}
}

func urlList(n int) string {
	items := make([]string, n)
	for i := range items {
		items[i] = fmt.Sprintf(`"https://example.com/%d"`, i)
	}
	return "[" + strings.Join(items, ",") + "]"
}

func TestParseFetchMultiple(t *testing.T) {
	t.Run("accepts the limit", func(t *testing.T) {
		req, err := ParseFetchMultiple(strings.NewReader(`{"urls":`+urlList(50)+`,"parallel_processing":true}`), 50)
		require.NoError(t, err)
		assert.Len(t, req.URLs, 50)
		assert.True(t, req.ParallelProcessing)
		assert.True(t, req.IncludeMetadata)
	})

	t.Run("rejects over the limit", func(t *testing.T) {
		_, err := ParseFetchMultiple(strings.NewReader(`{"urls":`+urlList(51)+`}`), 50)
		var tooMany *TooManyURLsError
		require.True(t, errors.As(err, &tooMany))
		assert.Equal(t, 51, tooMany.Provided)
		assert.Equal(t, "Maximum 50 URLs allowed per request", tooMany.Error())
	})

	t.Run("item errors are keyed by index", func(t *testing.T) {
		_, err := ParseFetchMultiple(strings.NewReader(`{"urls":["https://ok.com","nope",""]}`), 50)
		var verr ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, ValidationError{
			"urls.1": {"The urls.1 field must be a valid URL."},
			"urls.2": {"The urls.2 field is required."},
		}, verr)
	})

	tests := []struct {
		name string
		body string
		want ValidationError
	}{
		{"missing", `{}`, ValidationError{"urls": {"The urls field is required."}}},
		{"not array", `{"urls":"https://a.com"}`, ValidationError{"urls": {"The urls field must be an array."}}},
		{"empty", `{"urls":[]}`, ValidationError{"urls": {"The urls field must have at least 1 items."}}},
		{
			"flag and urls together",
			`{"force_refresh":2}`,
			ValidationError{
				"force_refresh": {"The force_refresh field must be true or false."},
				"urls":          {"The urls field is required."},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseFetchMultiple(strings.NewReader(tt.body), 50)
			var verr ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.want, verr)
		})
	}
}

func TestParseClearCache(t *testing.T) {
	req, err := ParseClearCache(strings.NewReader("  \n"))
	require.NoError(t, err)
	assert.Empty(t, req.URL)

	req, err = ParseClearCache(strings.NewReader(`{"url":"https://example.com/x"}`))
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/x", req.URL)

	_, err = ParseClearCache(strings.NewReader(`{"url":"bad"}`))
	var verr ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr, "url")
}

func TestValidationError_Error(t *testing.T) {
	err := ValidationError{"urls.1": {"x"}, "force_refresh": {"y"}}
	assert.Equal(t, "validation failed: force_refresh, urls.1", err.Error())
}
