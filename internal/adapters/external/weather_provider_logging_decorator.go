package external

import (
	"context"
	stderrors "errors"
	"time"

	"weathersub.app/internal/ports"
	"weathersub.app/pkg/errors"
)

// WeatherProviderLoggingDecorator writes one request log line per provider
// call, tagged with the lookup origin so batch traffic can be told apart
// from API traffic.
type WeatherProviderLoggingDecorator struct {
	provider ports.WeatherProvider
	logger   ports.Logger
}

func NewWeatherProviderLoggingDecorator(provider ports.WeatherProvider, logger ports.Logger) *WeatherProviderLoggingDecorator {
	return &WeatherProviderLoggingDecorator{provider: provider, logger: logger}
}

func (d *WeatherProviderLoggingDecorator) GetCurrentWeather(ctx context.Context, city string) (*ports.WeatherData, error) {
	start := time.Now()
	data, err := d.provider.GetCurrentWeather(ctx, city)

	fields := lookupFields(ctx, city, start)
	fields = append(fields, ports.F("provider", d.provider.GetProviderName()))

	if err != nil {
		fields = append(fields, ports.F("outcome", outcomeOf(err)), ports.F("error", err.Error()))
		// An unknown city is an answer, not a provider fault.
		if errors.IsNotFoundError(err) || errors.IsValidationError(err) {
			d.logger.Warn("Provider rejected weather lookup", fields...)
		} else {
			d.logger.Error("Provider weather lookup failed", fields...)
		}
		return nil, err
	}

	fields = append(fields,
		ports.F("outcome", "ok"),
		ports.F("temperature_c", data.Temperature),
		ports.F("humidity_pct", data.Humidity),
		ports.F("conditions", data.Description))
	d.logger.Info("Provider weather lookup", fields...)
	return data, nil
}

func (d *WeatherProviderLoggingDecorator) GetProviderName() string {
	return d.provider.GetProviderName()
}

// WeatherProviderManagerLoggingDecorator logs the result of a whole pass
// through the provider chain.
type WeatherProviderManagerLoggingDecorator struct {
	manager ports.WeatherProviderManager
	logger  ports.Logger
}

func NewWeatherProviderManagerLoggingDecorator(manager ports.WeatherProviderManager, logger ports.Logger) *WeatherProviderManagerLoggingDecorator {
	return &WeatherProviderManagerLoggingDecorator{manager: manager, logger: logger}
}

func (d *WeatherProviderManagerLoggingDecorator) GetWeather(ctx context.Context, city string) (*ports.WeatherData, error) {
	start := time.Now()
	data, err := d.manager.GetWeather(ctx, city)

	fields := lookupFields(ctx, city, start)
	if err != nil {
		fields = append(fields, ports.F("outcome", outcomeOf(err)), ports.F("error", err.Error()))
		d.logger.Warn("Weather provider chain gave no result", fields...)
		return nil, err
	}

	d.logger.Debug("Weather provider chain answered", append(fields, ports.F("outcome", "ok"))...)
	return data, nil
}

func (d *WeatherProviderManagerLoggingDecorator) GetProviderInfo() map[string]interface{} {
	info := d.manager.GetProviderInfo()
	info["logging_enabled"] = true
	return info
}

func lookupFields(ctx context.Context, city string, start time.Time) []ports.Field {
	return []ports.Field{
		ports.F("origin", ports.LookupOrigin(ctx)),
		ports.F("city", city),
		ports.F("duration_ms", time.Since(start).Milliseconds()),
	}
}

func outcomeOf(err error) string {
	switch {
	case errors.IsNotFoundError(err):
		return "not_found"
	case errors.IsValidationError(err):
		return "invalid"
	case stderrors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case stderrors.Is(err, context.Canceled):
		return "cancelled"
	default:
		return "failed"
	}
}
