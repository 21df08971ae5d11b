package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/user/image-extractor-service/internal/adapter/httpfetcher"
	"github.com/user/image-extractor-service/internal/adapter/memory"
	"github.com/user/image-extractor-service/internal/delivery/http/handler"
	"github.com/user/image-extractor-service/internal/extractor"
	"github.com/user/image-extractor-service/internal/usecase"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	logger := zap.NewNop()
	opts := usecase.DefaultOptions()
	opts.MaxAttempts = 1
	opts.BatchDelay = time.Millisecond

	uc := usecase.NewImageExtractor(
		httpfetcher.NewFetcher(httpfetcher.DefaultOptions(), logger),
		memory.NewCacheRepo(),
		extractor.New(nil, logger),
		opts,
		logger,
	)
	return New(handler.NewHandler(uc, opts.MaxBatchSize, logger), logger)
}

func TestRouter_EndToEnd(t *testing.T) {
	origin := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(`<html><head><title>Hero</title><meta property="og:image" content="/img/hero.jpg"></head></html>`))
	}))
	defer origin.Close()

	api := httptest.NewServer(newTestRouter(t))
	defer api.Close()

	body := `{"url":"` + origin.URL + `/article"}`
	resp, err := http.Post(api.URL+"/api/fetch-news-image", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("Content-Type"))
}

func TestRouter_Routes(t *testing.T) {
	r := newTestRouter(t)

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/api/health", http.StatusOK},
		{http.MethodGet, "/metrics", http.StatusOK},
		{http.MethodDelete, "/api/clear-all-image-cache", http.StatusOK},
		{http.MethodDelete, "/api/clear-image-cache", http.StatusOK},
		{http.MethodGet, "/api/fetch-news-image", http.StatusMethodNotAllowed},
		{http.MethodGet, "/api/unknown", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}
