package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/user/image-extractor-service/internal/adapter/httpfetcher"
	"github.com/user/image-extractor-service/internal/delivery/http/handler"
	"github.com/user/image-extractor-service/internal/delivery/http/router"
	"github.com/user/image-extractor-service/internal/extractor"
	"github.com/user/image-extractor-service/internal/usecase"
	"github.com/user/image-extractor-service/pkg/config"
	"github.com/user/image-extractor-service/pkg/logger"
)

const shutdownTimeout = 30 * time.Second

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		// The logger is not configured yet.
		zap.NewExample().Fatal("could not load config", zap.Error(err))
	}

	// --- Logger ---
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		zap.NewExample().Fatal("could not build logger", zap.Error(err))
	}
	defer func() { _ = log.Sync() }()
	log.Info("Logger initialized", zap.String("level", cfg.LogLevel))

	// --- Cache Store ---
	ctx := context.Background()
	cache, closeCache, err := newCacheRepository(ctx, cfg, log)
	if err != nil {
		log.Fatal("could not initialize cache store", zap.String("driver", cfg.CacheDriver), zap.Error(err))
	}
	defer closeCache()

	// --- Use Cases ---
	fetcher := httpfetcher.NewFetcher(httpfetcher.Options{
		UserAgent:      cfg.UserAgent,
		Timeout:        cfg.FetchTimeout(),
		ConnectTimeout: cfg.ConnectTimeout(),
		MaxRedirects:   cfg.MaxRedirects,
		MaxBodyBytes:   cfg.MaxBodyBytes,
	}, log)
	imageExtractor := usecase.NewImageExtractor(
		fetcher,
		cache,
		extractor.New(nil, log),
		usecase.Options{
			MaxAttempts:    cfg.MaxAttempts,
			RetryBaseDelay: cfg.RetryBaseDelay(),
			CacheTTL:       cfg.CacheTTL(),
			BatchDelay:     cfg.BatchDelay(),
			MaxBatchSize:   cfg.MaxBatchSize,
		},
		log,
	)

	// --- HTTP Server ---
	apiHandler := handler.NewHandler(imageExtractor, cfg.MaxBatchSize, log)
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router.New(apiHandler, log),
		ReadTimeout:  time.Duration(cfg.ServerReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.ServerWriteTimeout) * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Graceful Shutdown
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("could not start server", zap.Error(err))
		}
	}()
	log.Info("server started", zap.String("port", cfg.ServerPort), zap.String("cache_driver", cfg.CacheDriver))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	log.Info("server exiting")
}
