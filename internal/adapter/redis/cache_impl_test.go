package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/image-extractor-service/internal/entity"
)

const pageURL = "https://example.com/news/1"

func TestKey(t *testing.T) {
	sum := sha256.Sum256([]byte(pageURL))
	assert.Equal(t, "image_extract:"+hex.EncodeToString(sum[:]), Key(pageURL))
	assert.NotEqual(t, Key(pageURL), Key(pageURL+"/"))
}

func TestCacheRepo_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("miss", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		mock.ExpectGet(Key(pageURL)).RedisNil()

		got, err := NewCacheRepo(client).Get(ctx, pageURL)
		require.NoError(t, err)
		assert.Nil(t, got)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("hit forces cached flag", func(t *testing.T) {
		stored, err := json.Marshal(&entity.ExtractionResult{
			Success:          true,
			URL:              pageURL,
			ImageURL:         "https://example.com/a.jpg",
			ExtractionMethod: "og_image",
			Cached:           false,
			Timestamp:        "2024-01-01T00:00:00.000000Z",
		})
		require.NoError(t, err)

		client, mock := redismock.NewClientMock()
		mock.ExpectGet(Key(pageURL)).SetVal(string(stored))

		got, err := NewCacheRepo(client).Get(ctx, pageURL)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.True(t, got.Cached)
		assert.Equal(t, "https://example.com/a.jpg", got.ImageURL)
		assert.Equal(t, "2024-01-01T00:00:00.000000Z", got.Timestamp)
	})

	t.Run("corrupt payload", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		mock.ExpectGet(Key(pageURL)).SetVal("{not json")

		_, err := NewCacheRepo(client).Get(ctx, pageURL)
		assert.Error(t, err)
	})

	t.Run("connection error", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		mock.ExpectGet(Key(pageURL)).SetErr(errors.New("connection refused"))

		_, err := NewCacheRepo(client).Get(ctx, pageURL)
		assert.EqualError(t, err, "connection refused")
	})
}

func TestCacheRepo_Put(t *testing.T) {
	result := &entity.ExtractionResult{Success: true, URL: pageURL, ImageURL: "https://example.com/a.jpg"}
	payload, err := json.Marshal(result)
	require.NoError(t, err)

	client, mock := redismock.NewClientMock()
	mock.ExpectSetEx(Key(pageURL), payload, time.Hour).SetVal("OK")

	require.NoError(t, NewCacheRepo(client).Put(context.Background(), pageURL, result, time.Hour))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCacheRepo_Invalidate(t *testing.T) {
	client, mock := redismock.NewClientMock()
	mock.ExpectDel(Key(pageURL)).SetVal(1)

	require.NoError(t, NewCacheRepo(client).Invalidate(context.Background(), pageURL))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCacheRepo_InvalidateAll(t *testing.T) {
	t.Run("walks every scan page", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		mock.ExpectScan(0, KeyPrefix+"*", scanBatchSize).SetVal([]string{"image_extract:a", "image_extract:b"}, 7)
		mock.ExpectDel("image_extract:a", "image_extract:b").SetVal(2)
		mock.ExpectScan(7, KeyPrefix+"*", scanBatchSize).SetVal([]string{}, 9)
		mock.ExpectScan(9, KeyPrefix+"*", scanBatchSize).SetVal([]string{"image_extract:c"}, 0)
		mock.ExpectDel("image_extract:c").SetVal(1)

		require.NoError(t, NewCacheRepo(client).InvalidateAll(context.Background()))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("scan error", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		mock.ExpectScan(0, KeyPrefix+"*", scanBatchSize).SetErr(errors.New("timeout"))

		assert.Error(t, NewCacheRepo(client).InvalidateAll(context.Background()))
	})
}

func TestCacheRepo_Ping(t *testing.T) {
	client, mock := redismock.NewClientMock()
	mock.ExpectPing().SetVal("PONG")
	assert.NoError(t, NewCacheRepo(client).Ping(context.Background()))

	mock.ExpectPing().SetErr(errors.New("down"))
	assert.Error(t, NewCacheRepo(client).Ping(context.Background()))
}
