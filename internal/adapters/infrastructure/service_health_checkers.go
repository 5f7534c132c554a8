package infrastructure

import (
	"context"
	"time"

	"weathersub.app/internal/adapters/scheduler"
	"weathersub.app/internal/core/subscription"
	"weathersub.app/internal/ports"
)

const smtpHealthTimeout = 5 * time.Second

// SMTPHealthChecker runs a full transport verification on each check.
type SMTPHealthChecker struct {
	provider ports.EmailProvider
	config   ports.EmailConfig
}

func NewSMTPHealthChecker(provider ports.EmailProvider, config ports.EmailConfig) *SMTPHealthChecker {
	return &SMTPHealthChecker{provider: provider, config: config}
}

func (s *SMTPHealthChecker) Check(ctx context.Context) ports.HealthStatus {
	status := ports.HealthStatus{
		Component: "smtp",
		Details: map[string]interface{}{
			"host": s.config.SMTPHost,
			"port": s.config.SMTPPort,
		},
	}

	ctx, cancel := context.WithTimeout(ctx, smtpHealthTimeout)
	defer cancel()

	if err := s.provider.Verify(ctx); err != nil {
		return unhealthy(status, err.Error())
	}
	status.Status = ports.HealthStatusHealthy
	return status
}

// WeatherProviderHealthChecker reports the provider chain as unhealthy once
// every provider's circuit breaker is open.
type WeatherProviderHealthChecker struct {
	manager ports.WeatherProviderManager
}

func NewWeatherProviderHealthChecker(manager ports.WeatherProviderManager) *WeatherProviderHealthChecker {
	return &WeatherProviderHealthChecker{manager: manager}
}

func (w *WeatherProviderHealthChecker) Check(ctx context.Context) ports.HealthStatus {
	status := ports.HealthStatus{
		Component: "weather",
		Details:   make(map[string]interface{}),
	}
	if w.manager == nil {
		return unhealthy(status, "weather provider is not available")
	}

	info := w.manager.GetProviderInfo()
	status.Details["provider_order"] = info["provider_order"]

	states, _ := info["breaker_states"].(map[string]string)
	status.Details["breaker_states"] = states

	open := 0
	for _, state := range states {
		if state == "open" {
			open++
		}
	}
	if len(states) > 0 && open == len(states) {
		return unhealthy(status, "all weather provider circuit breakers are open")
	}

	status.Status = ports.HealthStatusHealthy
	return status
}

// SchedulerState is the part of the cron scheduler the health check reads.
type SchedulerState interface {
	IsRunning() bool
	LastRun(frequency subscription.Frequency) (scheduler.LastRun, bool)
}

type SchedulerHealthChecker struct {
	scheduler SchedulerState
}

func NewSchedulerHealthChecker(s SchedulerState) *SchedulerHealthChecker {
	return &SchedulerHealthChecker{scheduler: s}
}

func (s *SchedulerHealthChecker) Check(ctx context.Context) ports.HealthStatus {
	status := ports.HealthStatus{
		Component: "scheduler",
		Details:   make(map[string]interface{}),
	}

	for _, frequency := range subscription.Frequencies() {
		last, ok := s.scheduler.LastRun(frequency)
		if !ok {
			continue
		}
		status.Details["last_"+frequency.String()] = map[string]interface{}{
			"at":      last.At.Format(time.RFC3339),
			"total":   last.Result.Total,
			"sent":    last.Result.Sent,
			"failed":  last.Result.Failed,
			"aborted": last.Result.Aborted,
		}
	}

	if !s.scheduler.IsRunning() {
		return unhealthy(status, "scheduler is not running")
	}
	status.Status = ports.HealthStatusHealthy
	return status
}

// Pinger is implemented by network-backed cache providers.
type Pinger interface {
	Ping(ctx context.Context) error
}

type CacheHealthChecker struct {
	cache     Pinger
	cacheType string
}

func NewCacheHealthChecker(cache Pinger, cacheType string) *CacheHealthChecker {
	return &CacheHealthChecker{cache: cache, cacheType: cacheType}
}

func (c *CacheHealthChecker) Check(ctx context.Context) ports.HealthStatus {
	status := ports.HealthStatus{
		Component: "cache",
		Details:   map[string]interface{}{"type": c.cacheType},
	}
	if err := c.cache.Ping(ctx); err != nil {
		return unhealthy(status, err.Error())
	}
	status.Status = ports.HealthStatusHealthy
	return status
}
