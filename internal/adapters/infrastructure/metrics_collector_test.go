package infrastructure

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"weathersub.app/internal/mocks"
	"weathersub.app/internal/ports"
)

type fakeCounter struct {
	counts map[string]int64
	err    error
}

func (f fakeCounter) CountConfirmedByFrequency(_ context.Context, frequency string) (int64, error) {
	return f.counts[frequency], f.err
}

type fakeCacheMetrics struct{ stats ports.CacheStats }

func (f fakeCacheMetrics) RecordHit() {}
func (f fakeCacheMetrics) RecordMiss() {}
func (f fakeCacheMetrics) RecordLatency(string, time.Duration) {}
func (f fakeCacheMetrics) GetStats() ports.CacheStats { return f.stats }

func TestMetricsCollectorAdapter_GetMetrics(t *testing.T) {
	manager := mocks.NewWeatherProviderManager(t)
	manager.On("GetProviderInfo").Return(map[string]interface{}{"total_providers": 2}).Once()

	collector := NewMetricsCollectorAdapter(MetricsCollectorConfig{
		Providers:     manager,
		CacheMetrics:  fakeCacheMetrics{stats: ports.CacheStats{CacheType: "memory", Hits: 3, Misses: 1, TotalOps: 4, HitRatio: 0.75}},
		Subscriptions: fakeCounter{counts: map[string]int64{"hourly": 5, "daily": 2}},
	})

	snapshot, err := collector.GetMetrics(context.Background())
	require.NoError(t, err)

	assert.Equal(t, map[string]interface{}{"total_providers": 2}, snapshot["weather"])
	cache := snapshot["cache"].(map[string]interface{})
	assert.Equal(t, "memory", cache["type"])
	assert.Equal(t, 0.75, cache["hit_ratio"])
	assert.Equal(t, map[string]int64{"hourly": 5, "daily": 2}, snapshot["confirmed_subscriptions"])
}

func TestMetricsCollectorAdapter_CountFailure(t *testing.T) {
	collector := NewMetricsCollectorAdapter(MetricsCollectorConfig{
		Subscriptions: fakeCounter{err: stderrors.New("db down")},
	})

	_, err := collector.GetMetrics(context.Background())
	assert.Error(t, err)
}
