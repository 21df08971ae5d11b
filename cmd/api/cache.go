package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/user/image-extractor-service/internal/adapter/memory"
	"github.com/user/image-extractor-service/internal/adapter/postgres"
	redis_adapter "github.com/user/image-extractor-service/internal/adapter/redis"
	"github.com/user/image-extractor-service/internal/repository"
	"github.com/user/image-extractor-service/pkg/config"
)

// newCacheRepository connects the configured cache store. The returned func
// releases its connections.
func newCacheRepository(ctx context.Context, cfg *config.Config, log *zap.Logger) (repository.CacheRepository, func(), error) {
	switch cfg.CacheDriver {
	case config.CacheDriverRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, nil, fmt.Errorf("unable to connect to redis: %w", err)
		}
		log.Info("Redis connection established", zap.String("addr", cfg.RedisAddr))
		return redis_adapter.NewCacheRepo(rdb), func() { _ = rdb.Close() }, nil

	case config.CacheDriverPostgres:
		dbpool, err := pgxpool.New(ctx, cfg.PostgresURL)
		if err != nil {
			return nil, nil, fmt.Errorf("unable to connect to database: %w", err)
		}
		repo := postgres.NewCacheRepo(dbpool)
		if err := repo.EnsureSchema(ctx); err != nil {
			dbpool.Close()
			return nil, nil, err
		}
		if n, err := repo.PurgeExpired(ctx); err != nil {
			log.Warn("could not purge expired cache rows", zap.Error(err))
		} else if n > 0 {
			log.Info("purged expired cache rows", zap.Int64("rows", n))
		}
		log.Info("PostgreSQL connection pool established")
		return repo, dbpool.Close, nil

	case config.CacheDriverMemory:
		log.Info("using in-memory cache store")
		return memory.NewCacheRepo(), func() {}, nil
	}
	return nil, nil, fmt.Errorf("unsupported cache driver %q", cfg.CacheDriver)
}
