package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"weathersub.app/internal/ports"
)

type CacheMetricsCollector struct {
	Hits     *prometheus.CounterVec
	Misses   *prometheus.CounterVec
	Requests *prometheus.CounterVec
	Latency  *prometheus.HistogramVec
	HitRatio *prometheus.GaugeVec
}

var (
	defaultCacheCollector     *CacheMetricsCollector
	defaultCacheCollectorOnce sync.Once
)

// NewCacheMetricsCollector registers the cache series with reg.
func NewCacheMetricsCollector(reg prometheus.Registerer) *CacheMetricsCollector {
	factory := promauto.With(reg)
	return &CacheMetricsCollector{
		Hits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "weather_cache_hits_total",
				Help: "The total number of cache hits",
			},
			[]string{"cache_type"},
		),
		Misses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "weather_cache_misses_total",
				Help: "The total number of cache misses",
			},
			[]string{"cache_type"},
		),
		Requests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "weather_cache_requests_total",
				Help: "The total number of cache requests",
			},
			[]string{"cache_type"},
		),
		Latency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "weather_cache_duration_seconds",
				Help:    "Cache operation duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"cache_type", "operation"},
		),
		HitRatio: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "weather_cache_hit_ratio",
				Help: "Cache hit ratio (hits/total requests)",
			},
			[]string{"cache_type"},
		),
	}
}

func defaultCacheMetricsCollector() *CacheMetricsCollector {
	defaultCacheCollectorOnce.Do(func() {
		defaultCacheCollector = NewCacheMetricsCollector(prometheus.DefaultRegisterer)
	})
	return defaultCacheCollector
}

var _ ports.CacheMetrics = (*CacheMetrics)(nil)

// CacheMetrics tracks one cache backend, both in Prometheus and in local
// counters exposed through GetStats.
type CacheMetrics struct {
	cacheType string
	hits      int64
	misses    int64
	total     int64
	collector *CacheMetricsCollector
	mu        sync.RWMutex
}

// NewCacheMetrics reports to the default Prometheus registry.
func NewCacheMetrics(cacheType string) *CacheMetrics {
	return NewCacheMetricsWithCollector(cacheType, defaultCacheMetricsCollector())
}

func NewCacheMetricsWithCollector(cacheType string, collector *CacheMetricsCollector) *CacheMetrics {
	return &CacheMetrics{
		cacheType: cacheType,
		collector: collector,
	}
}

func (m *CacheMetrics) RecordHit() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.hits++
	m.total++
	m.collector.Hits.WithLabelValues(m.cacheType).Inc()
	m.collector.Requests.WithLabelValues(m.cacheType).Inc()
	m.updateHitRatio()
}

func (m *CacheMetrics) RecordMiss() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.misses++
	m.total++
	m.collector.Misses.WithLabelValues(m.cacheType).Inc()
	m.collector.Requests.WithLabelValues(m.cacheType).Inc()
	m.updateHitRatio()
}

func (m *CacheMetrics) RecordLatency(operation string, duration time.Duration) {
	m.collector.Latency.WithLabelValues(m.cacheType, operation).Observe(duration.Seconds())
}

// Must be called while holding the mutex.
func (m *CacheMetrics) updateHitRatio() {
	if m.total > 0 {
		ratio := float64(m.hits) / float64(m.total)
		m.collector.HitRatio.WithLabelValues(m.cacheType).Set(ratio)
	}
}

func (m *CacheMetrics) GetStats() ports.CacheStats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var hitRatio float64
	if m.total > 0 {
		hitRatio = float64(m.hits) / float64(m.total)
	}

	return ports.CacheStats{
		CacheType: m.cacheType,
		Hits:      m.hits,
		Misses:    m.misses,
		TotalOps:  m.total,
		HitRatio:  hitRatio,
	}
}
