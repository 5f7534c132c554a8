package external

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
	"weathersub.app/internal/ports"
	"weathersub.app/pkg/errors"
)

type BreakerSettings struct {
	ConsecutiveFailures uint32
	Interval            time.Duration
	OpenTimeout         time.Duration
}

// WeatherProviderBreakerDecorator guards a provider with a circuit breaker.
// Only transient upstream failures count toward tripping; an unknown city or
// a rejected query is a valid answer from a healthy provider.
type WeatherProviderBreakerDecorator struct {
	provider ports.WeatherProvider
	cb       *gobreaker.CircuitBreaker
}

func NewWeatherProviderBreakerDecorator(provider ports.WeatherProvider, settings BreakerSettings, logger ports.Logger) *WeatherProviderBreakerDecorator {
	threshold := settings.ConsecutiveFailures
	if threshold == 0 {
		threshold = 5
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        provider.GetProviderName(),
		MaxRequests: 1,
		Interval:    settings.Interval,
		Timeout:     settings.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsSuccessful: func(err error) bool {
			return err == nil ||
				!errors.IsExternalAPIError(err) ||
				stderrors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			if logger != nil {
				logger.Warn("Weather provider circuit breaker changed state",
					ports.F("provider", name),
					ports.F("from", from.String()),
					ports.F("to", to.String()))
			}
		},
	})

	return &WeatherProviderBreakerDecorator{provider: provider, cb: cb}
}

func (d *WeatherProviderBreakerDecorator) GetCurrentWeather(ctx context.Context, city string) (*ports.WeatherData, error) {
	result, err := d.cb.Execute(func() (interface{}, error) {
		return d.provider.GetCurrentWeather(ctx, city)
	})
	if stderrors.Is(err, gobreaker.ErrOpenState) || stderrors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, errors.NewExternalAPIError(fmt.Sprintf("%s: circuit breaker is open", d.provider.GetProviderName()), err)
	}
	if err != nil {
		return nil, err
	}

	data, ok := result.(*ports.WeatherData)
	if !ok || data == nil {
		return nil, errors.NewExternalAPIError(fmt.Sprintf("%s returned no data", d.provider.GetProviderName()), nil)
	}
	return data, nil
}

func (d *WeatherProviderBreakerDecorator) GetProviderName() string {
	return d.provider.GetProviderName()
}

// State reports the breaker state: closed, half-open or open
func (d *WeatherProviderBreakerDecorator) State() string {
	return d.cb.State().String()
}
