package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"weathersub.app/internal/ports"
)

var _ ports.DispatchMetrics = (*DispatchMetrics)(nil)

// DispatchMetrics exports scheduled batch and per-subscriber delivery series.
type DispatchMetrics struct {
	Batches       *prometheus.CounterVec
	BatchDuration *prometheus.HistogramVec
	Deliveries    *prometheus.CounterVec
	Eligible      *prometheus.GaugeVec
}

var (
	defaultDispatchMetrics     *DispatchMetrics
	defaultDispatchMetricsOnce sync.Once
)

func NewDispatchMetricsWithRegisterer(reg prometheus.Registerer) *DispatchMetrics {
	factory := promauto.With(reg)
	return &DispatchMetrics{
		Batches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "weather_dispatch_batches_total",
				Help: "Scheduled dispatch batches by frequency and outcome",
			},
			[]string{"frequency", "outcome"},
		),
		BatchDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "weather_dispatch_batch_duration_seconds",
				Help:    "Wall time of a scheduled dispatch batch",
				Buckets: []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300, 600},
			},
			[]string{"frequency"},
		),
		Deliveries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "weather_dispatch_deliveries_total",
				Help: "Per-subscriber weather update attempts by frequency and outcome",
			},
			[]string{"frequency", "outcome"},
		),
		Eligible: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "weather_dispatch_eligible_subscribers",
				Help: "Confirmed subscribers found by the most recent batch",
			},
			[]string{"frequency"},
		),
	}
}

// NewDispatchMetrics reports to the default Prometheus registry.
func NewDispatchMetrics() *DispatchMetrics {
	defaultDispatchMetricsOnce.Do(func() {
		defaultDispatchMetrics = NewDispatchMetricsWithRegisterer(prometheus.DefaultRegisterer)
	})
	return defaultDispatchMetrics
}

func (m *DispatchMetrics) RecordBatch(frequency, outcome string, duration time.Duration) {
	m.Batches.WithLabelValues(frequency, outcome).Inc()
	m.BatchDuration.WithLabelValues(frequency).Observe(duration.Seconds())
}

func (m *DispatchMetrics) RecordDelivery(frequency, outcome string) {
	m.Deliveries.WithLabelValues(frequency, outcome).Inc()
}

func (m *DispatchMetrics) SetEligible(frequency string, count int) {
	m.Eligible.WithLabelValues(frequency).Set(float64(count))
}
