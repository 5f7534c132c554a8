package infrastructure

import (
	"context"

	"weathersub.app/internal/core/subscription"
	"weathersub.app/internal/ports"
)

// SubscriptionCounter is the read side of the subscription store used for the snapshot.
type SubscriptionCounter interface {
	CountConfirmedByFrequency(ctx context.Context, frequency string) (int64, error)
}

// MetricsCollectorAdapter assembles the JSON snapshot served at /api/metrics
type MetricsCollectorAdapter struct {
	providers     ports.WeatherProviderManager
	cacheMetrics  ports.CacheMetrics
	subscriptions SubscriptionCounter
}

type MetricsCollectorConfig struct {
	Providers     ports.WeatherProviderManager
	CacheMetrics  ports.CacheMetrics
	Subscriptions SubscriptionCounter
}

func NewMetricsCollectorAdapter(config MetricsCollectorConfig) *MetricsCollectorAdapter {
	return &MetricsCollectorAdapter{
		providers:     config.Providers,
		cacheMetrics:  config.CacheMetrics,
		subscriptions: config.Subscriptions,
	}
}

func (m *MetricsCollectorAdapter) GetMetrics(ctx context.Context) (map[string]interface{}, error) {
	snapshot := make(map[string]interface{})

	if m.providers != nil {
		snapshot["weather"] = m.providers.GetProviderInfo()
	}

	if m.cacheMetrics != nil {
		stats := m.cacheMetrics.GetStats()
		snapshot["cache"] = map[string]interface{}{
			"type":      stats.CacheType,
			"hits":      stats.Hits,
			"misses":    stats.Misses,
			"total_ops": stats.TotalOps,
			"hit_ratio": stats.HitRatio,
		}
	}

	if m.subscriptions != nil {
		confirmed := make(map[string]int64)
		for _, frequency := range subscription.Frequencies() {
			count, err := m.subscriptions.CountConfirmedByFrequency(ctx, frequency.String())
			if err != nil {
				return nil, err
			}
			confirmed[frequency.String()] = count
		}
		snapshot["confirmed_subscriptions"] = confirmed
	}

	return snapshot, nil
}
