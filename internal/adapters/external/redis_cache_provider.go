package external

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/go-redis/redis/v8"
	"weathersub.app/internal/config"
	"weathersub.app/internal/ports"
	"weathersub.app/pkg/errors"
)

const redisConnectTimeout = 5 * time.Second

var _ ports.CacheProvider = (*RedisCacheProviderAdapter)(nil)

// RedisCacheProviderAdapter implements CacheProvider port using Redis
type RedisCacheProviderAdapter struct {
	client  *redis.Client
	metrics ports.CacheMetrics
}

// NewRedisCacheProviderAdapter connects and pings before returning, so a
// wrong address fails at startup.
func NewRedisCacheProviderAdapter(ctx context.Context, cfg *config.RedisConfig, metrics ports.CacheMetrics) (*RedisCacheProviderAdapter, error) {
	if cfg == nil {
		return nil, errors.NewConfigurationError("redis config cannot be nil", nil)
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  time.Duration(cfg.DialTimeout) * time.Second,
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, redisConnectTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.NewExternalAPIError("failed to connect to Redis", err)
	}

	return &RedisCacheProviderAdapter{
		client:  client,
		metrics: metrics,
	}, nil
}

func (r *RedisCacheProviderAdapter) Get(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, errors.NewValidationError("cache key cannot be empty")
	}
	defer r.observe("get", time.Now())

	val, err := r.client.Get(ctx, key).Bytes()
	if stderrors.Is(err, redis.Nil) {
		r.recordMiss()
		return nil, errors.NewNotFoundError("cache miss")
	}
	if err != nil {
		return nil, errors.NewExternalAPIError("redis get operation failed", err)
	}

	r.recordHit()
	return val, nil
}

func (r *RedisCacheProviderAdapter) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if key == "" {
		return errors.NewValidationError("cache key cannot be empty")
	}
	if value == nil {
		return errors.NewValidationError("cache value cannot be nil")
	}
	if ttl <= 0 {
		return errors.NewValidationError("cache TTL must be positive")
	}
	defer r.observe("set", time.Now())

	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return errors.NewExternalAPIError("redis set operation failed", err)
	}
	return nil
}

func (r *RedisCacheProviderAdapter) Delete(ctx context.Context, key string) error {
	if key == "" {
		return errors.NewValidationError("cache key cannot be empty")
	}

	if err := r.client.Del(ctx, key).Err(); err != nil {
		return errors.NewExternalAPIError("redis delete operation failed", err)
	}
	return nil
}

func (r *RedisCacheProviderAdapter) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return errors.NewExternalAPIError("Redis ping failed", err)
	}
	return nil
}

func (r *RedisCacheProviderAdapter) Close() error {
	if err := r.client.Close(); err != nil {
		return errors.NewExternalAPIError("failed to close Redis connection", err)
	}
	return nil
}

func (r *RedisCacheProviderAdapter) recordHit() {
	if r.metrics != nil {
		r.metrics.RecordHit()
	}
}

func (r *RedisCacheProviderAdapter) recordMiss() {
	if r.metrics != nil {
		r.metrics.RecordMiss()
	}
}

func (r *RedisCacheProviderAdapter) observe(operation string, start time.Time) {
	if r.metrics != nil {
		r.metrics.RecordLatency(operation, time.Since(start))
	}
}
