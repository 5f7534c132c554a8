// Package dispatch runs one scheduled batch of weather updates for a cadence.
package dispatch

import (
	"context"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"weathersub.app/internal/core/subscription"
	"weathersub.app/internal/core/weather"
	"weathersub.app/internal/ports"
	"weathersub.app/pkg/errors"
)

const (
	defaultWorkers           = 4
	defaultSubscriberTimeout = 30 * time.Second
)

type SubscriptionLister interface {
	ListConfirmedByFrequency(ctx context.Context, frequency subscription.Frequency) ([]*subscription.Subscription, error)
}

type WeatherGetter interface {
	GetWeather(ctx context.Context, request weather.WeatherRequest) (*weather.Weather, error)
}

// BatchResult summarises one batch. Sent+Failed equals Total unless the batch
// was aborted before any subscriber was attempted.
type BatchResult struct {
	Frequency subscription.Frequency
	Total     int
	Sent      int
	Failed    int
	Duration  time.Duration
	Aborted   bool
}

type UseCase struct {
	subscriptions SubscriptionLister
	weather       WeatherGetter
	notifier      ports.Notifier
	metrics       ports.DispatchMetrics
	config        ports.ConfigProvider
	logger        ports.Logger
}

type UseCaseDependencies struct {
	Subscriptions SubscriptionLister
	Weather       WeatherGetter
	Notifier      ports.Notifier
	Metrics       ports.DispatchMetrics
	Config        ports.ConfigProvider
	Logger        ports.Logger
}

func NewUseCase(deps UseCaseDependencies) (*UseCase, error) {
	if deps.Subscriptions == nil {
		return nil, errors.NewValidationError("subscription lister is required")
	}
	if deps.Weather == nil {
		return nil, errors.NewValidationError("weather getter is required")
	}
	if deps.Notifier == nil {
		return nil, errors.NewValidationError("notifier is required")
	}
	if deps.Metrics == nil {
		return nil, errors.NewValidationError("dispatch metrics is required")
	}
	if deps.Config == nil {
		return nil, errors.NewValidationError("config is required")
	}
	if deps.Logger == nil {
		return nil, errors.NewValidationError("logger is required")
	}

	return &UseCase{
		subscriptions: deps.Subscriptions,
		weather:       deps.Weather,
		notifier:      deps.Notifier,
		metrics:       deps.Metrics,
		config:        deps.Config,
		logger:        deps.Logger,
	}, nil
}

// RunBatch sends one weather update to every confirmed subscriber of the
// cadence. A failure for one subscriber is logged and counted, and the rest
// of the batch still runs. Only a failure to list subscribers aborts the
// batch, and even then only this one.
func (uc *UseCase) RunBatch(ctx context.Context, frequency subscription.Frequency) BatchResult {
	start := time.Now()
	result := BatchResult{Frequency: frequency}
	freq := frequency.String()

	uc.logger.Info("Starting weather update batch", ports.F("frequency", freq))

	subs, err := uc.subscriptions.ListConfirmedByFrequency(ctx, frequency)
	if err != nil {
		result.Aborted = true
		result.Duration = time.Since(start)
		uc.metrics.RecordBatch(freq, ports.BatchAborted, result.Duration)
		uc.logger.Error("Weather update batch aborted: could not list subscriptions",
			ports.F("frequency", freq),
			ports.F("error", err))
		return result
	}

	result.Total = len(subs)
	uc.metrics.SetEligible(freq, result.Total)

	cfg := uc.dispatchConfig()
	var sent, failed atomic.Int64

	g := new(errgroup.Group)
	g.SetLimit(cfg.Workers)

	for _, sub := range subs {
		g.Go(func() error {
			outcome := uc.deliver(ctx, sub, cfg.SubscriberTimeout)
			uc.metrics.RecordDelivery(freq, outcome)
			if outcome == ports.DeliverySent {
				sent.Add(1)
			} else {
				failed.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()

	result.Sent = int(sent.Load())
	result.Failed = int(failed.Load())
	result.Duration = time.Since(start)
	uc.metrics.RecordBatch(freq, ports.BatchCompleted, result.Duration)

	uc.logger.Info("Weather update batch completed",
		ports.F("frequency", freq),
		ports.F("total", result.Total),
		ports.F("sent", result.Sent),
		ports.F("failed", result.Failed),
		ports.F("duration", result.Duration.String()))
	return result
}

func (uc *UseCase) deliver(ctx context.Context, sub *subscription.Subscription, timeout time.Duration) string {
	subCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	subCtx = ports.WithLookupOrigin(subCtx, "batch:"+sub.Frequency.String())

	current, err := uc.weather.GetWeather(subCtx, weather.WeatherRequest{City: sub.City})
	if err != nil {
		uc.logger.Error("Failed to get weather for subscriber",
			ports.F("subscriptionID", sub.ID),
			ports.F("city", sub.City),
			ports.F("error", err))
		return ports.DeliveryWeatherError
	}

	msg := ports.WeatherUpdateMessage{
		Email: sub.Email,
		City:  sub.City,
		Weather: ports.WeatherData{
			Temperature: current.Temperature,
			Humidity:    current.Humidity,
			Description: current.Description,
			City:        current.City,
			Timestamp:   current.Timestamp,
		},
		UnsubscribeToken: sub.UnsubscribeToken,
	}
	if err := uc.notifier.SendWeatherUpdate(subCtx, msg); err != nil {
		uc.logger.Error("Failed to send weather update",
			ports.F("subscriptionID", sub.ID),
			ports.F("email", sub.Email),
			ports.F("error", err))
		return ports.DeliveryEmailError
	}

	return ports.DeliverySent
}

func (uc *UseCase) dispatchConfig() ports.DispatchConfig {
	cfg := uc.config.GetDispatchConfig()
	if cfg.Workers <= 0 {
		cfg.Workers = defaultWorkers
	}
	if cfg.SubscriberTimeout <= 0 {
		cfg.SubscriberTimeout = defaultSubscriberTimeout
	}
	return cfg
}
