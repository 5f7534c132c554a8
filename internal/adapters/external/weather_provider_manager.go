package external

import (
	"context"
	"fmt"
	"strings"
	"time"

	"weathersub.app/internal/ports"
	"weathersub.app/pkg/errors"
)

// WeatherProviderManagerAdapter tries providers in order until one answers.
// An unknown city or an invalid query ends the chain, since another
// provider would give the same answer.
type WeatherProviderManagerAdapter struct {
	providers []ports.WeatherProvider
	logger    ports.Logger
}

// ProviderManagerConfig describes the provider chain to build
type ProviderManagerConfig struct {
	WeatherAPIKey     string
	WeatherAPIBaseURL string
	OpenWeatherKey    string
	OpenWeatherURL    string
	ProviderOrder     []string
	RequestTimeout    time.Duration
	Breaker           BreakerSettings
	Logger            ports.Logger
	// RequestLogger, when set, records every provider request and response.
	RequestLogger ports.Logger
}

type stateReporter interface {
	State() string
}

func NewWeatherProviderManagerAdapter(providers []ports.WeatherProvider, logger ports.Logger) *WeatherProviderManagerAdapter {
	return &WeatherProviderManagerAdapter{
		providers: providers,
		logger:    logger,
	}
}

// NewWeatherProviderChain builds the configured providers, each behind its
// own circuit breaker, in the configured order. Providers without an API
// key are skipped.
func NewWeatherProviderChain(config ProviderManagerConfig) (*WeatherProviderManagerAdapter, error) {
	available := map[string]func() ports.WeatherProvider{}
	if config.WeatherAPIKey != "" {
		available["weatherapi"] = func() ports.WeatherProvider {
			return NewWeatherAPIProviderAdapter(WeatherAPIProviderParams{
				APIKey:  config.WeatherAPIKey,
				BaseURL: config.WeatherAPIBaseURL,
				Timeout: config.RequestTimeout,
				Logger:  config.Logger,
			})
		}
	}
	if config.OpenWeatherKey != "" {
		available["openweathermap"] = func() ports.WeatherProvider {
			return NewOpenWeatherMapProviderAdapter(OpenWeatherMapProviderParams{
				APIKey:  config.OpenWeatherKey,
				BaseURL: config.OpenWeatherURL,
				Timeout: config.RequestTimeout,
				Logger:  config.Logger,
			})
		}
	}

	var providers []ports.WeatherProvider
	for _, name := range config.ProviderOrder {
		build, ok := available[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			continue
		}

		provider := build()
		if config.RequestLogger != nil {
			provider = NewWeatherProviderLoggingDecorator(provider, config.RequestLogger)
		}
		providers = append(providers, NewWeatherProviderBreakerDecorator(provider, config.Breaker, config.Logger))
		config.Logger.Debug("Weather provider registered", ports.F("provider", provider.GetProviderName()))
	}

	if len(providers) == 0 {
		return nil, errors.NewConfigurationError("no weather providers configured", nil)
	}

	return NewWeatherProviderManagerAdapter(providers, config.Logger), nil
}

func (m *WeatherProviderManagerAdapter) GetWeather(ctx context.Context, city string) (*ports.WeatherData, error) {
	if len(m.providers) == 0 {
		return nil, errors.NewExternalAPIError("no weather providers configured", nil)
	}

	var lastErr error
	for i, provider := range m.providers {
		providerName := provider.GetProviderName()

		weather, err := provider.GetCurrentWeather(ctx, city)
		if err == nil {
			return weather, nil
		}

		if errors.IsNotFoundError(err) || errors.IsValidationError(err) {
			return nil, err
		}

		lastErr = err
		if ctx.Err() != nil {
			break
		}
		if i < len(m.providers)-1 {
			m.logger.Warn("Weather provider failed, trying next",
				ports.F("provider", providerName),
				ports.F("error", err.Error()),
				ports.F("city", city))
		}
	}

	m.logger.Error("All weather providers failed",
		ports.F("city", city),
		ports.F("providers_tried", len(m.providers)),
		ports.F("last_error", lastErr.Error()))

	return nil, errors.NewExternalAPIError(
		fmt.Sprintf("all weather providers failed (tried %d providers)", len(m.providers)), lastErr)
}

func (m *WeatherProviderManagerAdapter) GetProviderInfo() map[string]interface{} {
	providerNames := make([]string, len(m.providers))
	breakers := make(map[string]string, len(m.providers))
	for i, provider := range m.providers {
		providerNames[i] = provider.GetProviderName()
		if sr, ok := provider.(stateReporter); ok {
			breakers[providerNames[i]] = sr.State()
		}
	}

	return map[string]interface{}{
		"total_providers":  len(m.providers),
		"provider_order":   providerNames,
		"fallback_enabled": len(m.providers) > 1,
		"breaker_states":   breakers,
	}
}
