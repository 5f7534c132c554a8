package external

import (
	"context"
	"fmt"

	"weathersub.app/internal/config"
	"weathersub.app/internal/ports"
	"weathersub.app/pkg/errors"
)

type CacheProviderFactory struct{}

func NewCacheProviderFactory() *CacheProviderFactory {
	return &CacheProviderFactory{}
}

// CreateCacheProvider builds the backend selected by CACHE_TYPE. The
// returned provider reports hits, misses and latency to metrics.
func (f *CacheProviderFactory) CreateCacheProvider(ctx context.Context, cfg *config.CacheConfig, metrics ports.CacheMetrics) (ports.CacheProvider, error) {
	if cfg == nil {
		return nil, errors.NewConfigurationError("cache config cannot be nil", nil)
	}

	switch cfg.Type {
	case config.CacheTypeMemory:
		return NewMemoryCacheProvider(metrics), nil
	case config.CacheTypeRedis:
		return NewRedisCacheProviderAdapter(ctx, &cfg.Redis, metrics)
	default:
		return nil, errors.NewConfigurationError(
			fmt.Sprintf("unsupported cache type: %s", cfg.Type.String()), nil)
	}
}
