package external

import (
	"context"
	"sync"
	"time"

	"weathersub.app/internal/ports"
	"weathersub.app/pkg/errors"
)

var _ ports.CacheProvider = (*MemoryCacheProvider)(nil)

// MemoryCacheProvider is a process-local CacheProvider. Expired entries are
// dropped lazily on read.
type MemoryCacheProvider struct {
	data    map[string]memoryCacheItem
	mutex   sync.RWMutex
	metrics ports.CacheMetrics
	now     func() time.Time
}

type memoryCacheItem struct {
	data      []byte
	expiresAt time.Time
}

func NewMemoryCacheProvider(metrics ports.CacheMetrics) *MemoryCacheProvider {
	return &MemoryCacheProvider{
		data:    make(map[string]memoryCacheItem),
		metrics: metrics,
		now:     time.Now,
	}
}

func (c *MemoryCacheProvider) Get(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, errors.NewValidationError("cache key cannot be empty")
	}
	defer c.observe("get", time.Now())

	c.mutex.RLock()
	item, exists := c.data[key]
	c.mutex.RUnlock()

	if exists && c.now().After(item.expiresAt) {
		c.mutex.Lock()
		if current, ok := c.data[key]; ok && c.now().After(current.expiresAt) {
			delete(c.data, key)
		}
		c.mutex.Unlock()
		exists = false
	}

	if !exists {
		c.recordMiss()
		return nil, errors.NewNotFoundError("cache miss")
	}

	c.recordHit()
	out := make([]byte, len(item.data))
	copy(out, item.data)
	return out, nil
}

func (c *MemoryCacheProvider) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if key == "" {
		return errors.NewValidationError("cache key cannot be empty")
	}
	if value == nil {
		return errors.NewValidationError("cache value cannot be nil")
	}
	if ttl <= 0 {
		return errors.NewValidationError("cache TTL must be positive")
	}
	defer c.observe("set", time.Now())

	stored := make([]byte, len(value))
	copy(stored, value)

	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.data[key] = memoryCacheItem{
		data:      stored,
		expiresAt: c.now().Add(ttl),
	}
	return nil
}

func (c *MemoryCacheProvider) Delete(ctx context.Context, key string) error {
	if key == "" {
		return errors.NewValidationError("cache key cannot be empty")
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()
	delete(c.data, key)
	return nil
}

// Len reports stored entries, including expired ones not yet evicted.
func (c *MemoryCacheProvider) Len() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.data)
}

func (c *MemoryCacheProvider) recordHit() {
	if c.metrics != nil {
		c.metrics.RecordHit()
	}
}

func (c *MemoryCacheProvider) recordMiss() {
	if c.metrics != nil {
		c.metrics.RecordMiss()
	}
}

func (c *MemoryCacheProvider) observe(operation string, start time.Time) {
	if c.metrics != nil {
		c.metrics.RecordLatency(operation, time.Since(start))
	}
}
