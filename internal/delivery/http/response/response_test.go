package response

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/image-extractor-service/internal/entity"
)

func TestFromResult_Success(t *testing.T) {
	result := &entity.ExtractionResult{
		Success:          true,
		URL:              "https://example.com/article",
		ImageURL:         "https://example.com/img/hero.jpg",
		ImageWidth:       "1200",
		Title:            "Hero",
		ExtractionMethod: "og_image",
		Timestamp:        "2024-03-01T10:30:00.000000Z",
	}

	t.Run("with metadata", func(t *testing.T) {
		body, err := json.Marshal(FromResult(result, true, true))
		require.NoError(t, err)
		assert.JSONEq(t, `{
			"success": true,
			"url": "https://example.com/article",
			"image_url": "https://example.com/img/hero.jpg",
			"title": "Hero",
			"description": null,
			"extraction_method": "og_image",
			"cached": false,
			"timestamp": "2024-03-01T10:30:00.000000Z",
			"image_alt": null,
			"image_width": "1200",
			"image_height": null,
			"metadata": {}
		}`, string(body))
	})

	t.Run("without metadata or timestamp", func(t *testing.T) {
		body, err := json.Marshal(FromResult(result, false, false))
		require.NoError(t, err)
		assert.JSONEq(t, `{
			"success": true,
			"url": "https://example.com/article",
			"image_url": "https://example.com/img/hero.jpg",
			"title": "Hero",
			"description": null,
			"extraction_method": "og_image",
			"cached": false
		}`, string(body))
	})
}

func TestFromResult_Failure(t *testing.T) {
	result := &entity.ExtractionResult{
		URL:       "https://example.com/none",
		Error:     "Failed after 3 attempts: HTTP 404 error",
		Metadata:  map[string]string{"site_name": "Example"},
		Timestamp: "2024-03-01T10:30:00.000000Z",
	}

	body, err := json.Marshal(FromResult(result, true, true))
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"success": false,
		"url": "https://example.com/none",
		"error": "Failed after 3 attempts: HTTP 404 error",
		"title": null,
		"description": null,
		"metadata": {"site_name": "Example"},
		"timestamp": "2024-03-01T10:30:00.000000Z"
	}`, string(body))
}

func TestFromBatch(t *testing.T) {
	batch := &entity.BatchResult{
		Total:          3,
		Successful:     2,
		Failed:         1,
		SuccessRate:    66.7,
		ProcessingTime: 3456 * time.Millisecond,
		Results: []*entity.ExtractionResult{
			{Success: true, URL: "a", ImageURL: "https://a/i.jpg", Timestamp: "t"},
			{URL: "b", Error: "boom", Timestamp: "t"},
			{Success: true, URL: "c", ImageURL: "https://c/i.jpg", Cached: true, Timestamp: "t"},
		},
	}

	resp := FromBatch(batch, false, "now")
	assert.Equal(t, 3.46, resp.ProcessingTimeSeconds)
	assert.Equal(t, 66.7, resp.SuccessRate)
	require.Len(t, resp.Results, 3)

	first, ok := resp.Results[0].(*ImageResponse)
	require.True(t, ok)
	assert.Empty(t, first.Timestamp)
	assert.Nil(t, first.ImageDetails)

	_, ok = resp.Results[1].(*FailureResponse)
	assert.True(t, ok)
	assert.True(t, resp.Results[2].(*ImageResponse).Cached)
}
