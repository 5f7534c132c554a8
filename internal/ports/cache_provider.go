package ports

import (
	"context"
	"time"
)

// CacheProvider defines the contract for caching operations
type CacheProvider interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// CacheMetrics defines the contract for cache performance tracking
type CacheMetrics interface {
	RecordHit()
	RecordMiss()
	RecordLatency(operation string, duration time.Duration)
	GetStats() CacheStats
}

// CacheStats represents cache performance metrics
type CacheStats struct {
	CacheType string
	Hits      int64
	Misses    int64
	TotalOps  int64
	HitRatio  float64
}
