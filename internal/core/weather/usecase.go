package weather

import (
	"context"
	"fmt"

	"weathersub.app/internal/ports"
	"weathersub.app/pkg/errors"
)

type UseCase struct {
	weatherProvider ports.WeatherProviderManager
	cache           ports.WeatherCache
	config          ports.ConfigProvider
	logger          ports.Logger
}

type UseCaseDependencies struct {
	WeatherProvider ports.WeatherProviderManager
	Cache           ports.WeatherCache
	Config          ports.ConfigProvider
	Logger          ports.Logger
}

func NewUseCase(deps UseCaseDependencies) (*UseCase, error) {
	if deps.WeatherProvider == nil {
		return nil, errors.NewValidationError("weather provider is required")
	}
	if deps.Cache == nil {
		return nil, errors.NewValidationError("cache is required")
	}
	if deps.Config == nil {
		return nil, errors.NewValidationError("config is required")
	}
	if deps.Logger == nil {
		return nil, errors.NewValidationError("logger is required")
	}

	return &UseCase{
		weatherProvider: deps.WeatherProvider,
		cache:           deps.Cache,
		config:          deps.Config,
		logger:          deps.Logger,
	}, nil
}

// GetWeather returns current conditions for the requested city. Provider
// errors keep their classification: Validation for a rejected query,
// NotFound for an unknown city and ExternalAPI for anything transient.
func (uc *UseCase) GetWeather(ctx context.Context, request WeatherRequest) (*Weather, error) {
	if err := request.IsValid(); err != nil {
		return nil, errors.NewValidationError("invalid weather request: " + err.Error())
	}

	request.NormalizeCity()
	uc.logger.Debug("Getting weather for city", ports.F("city", request.City))

	weather, err := uc.getWeatherWithCache(ctx, request)
	if err != nil {
		uc.logger.Warn("Failed to get weather",
			ports.F("city", request.City),
			ports.F("error", err))
		return nil, fmt.Errorf("get weather for city %s: %w", request.City, err)
	}

	return weather, nil
}

func (uc *UseCase) getWeatherWithCache(ctx context.Context, request WeatherRequest) (*Weather, error) {
	cfg := uc.config.GetWeatherConfig()
	if !cfg.EnableCache {
		return uc.getWeatherFromProvider(ctx, request.City)
	}

	cacheKey := request.CacheKey()
	cachedWeather, err := uc.cache.Get(ctx, cacheKey)
	if err == nil && cachedWeather != nil {
		uc.logger.Debug("Weather found in cache", ports.F("city", request.City))
		return uc.convertFromPortsWeather(cachedWeather), nil
	}
	if err != nil && !errors.IsNotFoundError(err) {
		uc.logger.Warn("Weather cache read failed",
			ports.F("city", request.City),
			ports.F("error", err))
	}

	weather, err := uc.getWeatherFromProvider(ctx, request.City)
	if err != nil {
		return nil, err
	}

	if cacheErr := uc.cache.Set(ctx, cacheKey, uc.convertToPortsWeather(weather), cfg.CacheTTL); cacheErr != nil {
		uc.logger.Warn("Failed to cache weather data",
			ports.F("city", request.City),
			ports.F("error", cacheErr))
	}

	return weather, nil
}

func (uc *UseCase) getWeatherFromProvider(ctx context.Context, city string) (*Weather, error) {
	providerWeather, err := uc.weatherProvider.GetWeather(ctx, city)
	if err != nil {
		switch errors.TypeOf(err) {
		case errors.ErrorTypeNotFound, errors.ErrorTypeValidation, errors.ErrorTypeExternalAPI:
			return nil, err
		default:
			return nil, errors.NewExternalAPIError("weather provider failed", err)
		}
	}

	domainWeather := uc.convertFromPortsWeather(providerWeather)
	if domainWeather.City == "" {
		domainWeather.City = city
	}
	if err := domainWeather.IsValid(); err != nil {
		return nil, errors.NewExternalAPIError("invalid weather data from provider", err)
	}

	return domainWeather, nil
}

// GetProviderInfo describes the configured provider chain
func (uc *UseCase) GetProviderInfo() map[string]interface{} {
	return uc.weatherProvider.GetProviderInfo()
}

func (uc *UseCase) convertToPortsWeather(weather *Weather) *ports.WeatherData {
	return &ports.WeatherData{
		Temperature: weather.Temperature,
		Humidity:    weather.Humidity,
		Description: weather.Description,
		City:        weather.City,
		Timestamp:   weather.Timestamp,
	}
}

func (uc *UseCase) convertFromPortsWeather(weatherData *ports.WeatherData) *Weather {
	return &Weather{
		Temperature: weatherData.Temperature,
		Humidity:    weatherData.Humidity,
		Description: weatherData.Description,
		City:        weatherData.City,
		Timestamp:   weatherData.Timestamp,
	}
}
