package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCacheMetrics(t *testing.T) {
	collector := NewCacheMetricsCollector(prometheus.NewRegistry())
	metrics := NewCacheMetricsWithCollector("test", collector)

	t.Run("Initial state", func(t *testing.T) {
		stats := metrics.GetStats()
		assert.Equal(t, "test", stats.CacheType)
		assert.Equal(t, int64(0), stats.Hits)
		assert.Equal(t, int64(0), stats.Misses)
		assert.Equal(t, int64(0), stats.TotalOps)
		assert.Equal(t, float64(0), stats.HitRatio)
	})

	t.Run("Record hits and misses", func(t *testing.T) {
		metrics.RecordHit()
		metrics.RecordHit()
		metrics.RecordMiss()

		stats := metrics.GetStats()
		assert.Equal(t, int64(2), stats.Hits)
		assert.Equal(t, int64(1), stats.Misses)
		assert.Equal(t, int64(3), stats.TotalOps)
		assert.InDelta(t, float64(2)/float64(3), stats.HitRatio, 1e-9)

		assert.Equal(t, float64(2), testutil.ToFloat64(collector.Hits.WithLabelValues("test")))
		assert.Equal(t, float64(1), testutil.ToFloat64(collector.Misses.WithLabelValues("test")))
		assert.Equal(t, float64(3), testutil.ToFloat64(collector.Requests.WithLabelValues("test")))
		assert.InDelta(t, float64(2)/float64(3), testutil.ToFloat64(collector.HitRatio.WithLabelValues("test")), 1e-9)
	})

	t.Run("Hit ratio calculation", func(t *testing.T) {
		ratio := NewCacheMetricsWithCollector("ratio_test", collector)
		for i := 0; i < 7; i++ {
			ratio.RecordHit()
		}
		for i := 0; i < 3; i++ {
			ratio.RecordMiss()
		}

		stats := ratio.GetStats()
		assert.Equal(t, int64(10), stats.TotalOps)
		assert.InDelta(t, 0.7, stats.HitRatio, 1e-9)
	})

	t.Run("Record latency", func(t *testing.T) {
		metrics.RecordLatency("get", time.Millisecond)
		metrics.RecordLatency("set", 2*time.Millisecond)
		assert.Equal(t, 2, testutil.CollectAndCount(collector.Latency))
	})
}

func TestNewCacheMetrics_SharesDefaultCollector(t *testing.T) {
	first := NewCacheMetrics("memory")
	second := NewCacheMetrics("redis")
	assert.Same(t, first.collector, second.collector)
}
