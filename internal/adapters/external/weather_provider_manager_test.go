package external

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"weathersub.app/internal/mocks"
	"weathersub.app/internal/ports"
	"weathersub.app/pkg/errors"
)

func namedProvider(t *testing.T, name string) *mocks.WeatherProvider {
	p := mocks.NewWeatherProvider(t)
	p.On("GetProviderName").Return(name).Maybe()
	return p
}

func TestWeatherProviderManager_FirstProviderSucceeds(t *testing.T) {
	first := namedProvider(t, "first")
	second := namedProvider(t, "second")
	expected := &ports.WeatherData{City: "Kyiv", Temperature: 11, Humidity: 40, Description: "Sunny"}
	first.On("GetCurrentWeather", mock.Anything, "Kyiv").Return(expected, nil).Once()

	manager := NewWeatherProviderManagerAdapter([]ports.WeatherProvider{first, second}, mocks.NewLogger())
	weather, err := manager.GetWeather(context.Background(), "Kyiv")

	require.NoError(t, err)
	assert.Equal(t, expected, weather)
	second.AssertNotCalled(t, "GetCurrentWeather", mock.Anything, mock.Anything)
}

func TestWeatherProviderManager_FallsBackOnTransientFailure(t *testing.T) {
	first := namedProvider(t, "first")
	second := namedProvider(t, "second")
	expected := &ports.WeatherData{City: "Kyiv", Temperature: 11, Humidity: 40, Description: "Sunny"}
	first.On("GetCurrentWeather", mock.Anything, "Kyiv").Return(nil, errors.NewExternalAPIError("503", nil)).Once()
	second.On("GetCurrentWeather", mock.Anything, "Kyiv").Return(expected, nil).Once()

	logger := mocks.NewLogger()
	manager := NewWeatherProviderManagerAdapter([]ports.WeatherProvider{first, second}, logger)
	weather, err := manager.GetWeather(context.Background(), "Kyiv")

	require.NoError(t, err)
	assert.Equal(t, expected, weather)
	assert.Len(t, logger.Entries("warn"), 1)
}

func TestWeatherProviderManager_StopsOnDefinitiveAnswer(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
	}{
		{name: "NotFound", err: errors.NewNotFoundError("city not found"), check: errors.IsNotFoundError},
		{name: "Validation", err: errors.NewValidationError("invalid request"), check: errors.IsValidationError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first := namedProvider(t, "first")
			second := namedProvider(t, "second")
			first.On("GetCurrentWeather", mock.Anything, "Atlantis").Return(nil, tt.err).Once()

			manager := NewWeatherProviderManagerAdapter([]ports.WeatherProvider{first, second}, mocks.NewLogger())
			_, err := manager.GetWeather(context.Background(), "Atlantis")

			assert.True(t, tt.check(err))
			second.AssertNotCalled(t, "GetCurrentWeather", mock.Anything, mock.Anything)
		})
	}
}

func TestWeatherProviderManager_AllFail(t *testing.T) {
	first := namedProvider(t, "first")
	second := namedProvider(t, "second")
	first.On("GetCurrentWeather", mock.Anything, "Kyiv").Return(nil, errors.NewExternalAPIError("timeout", nil)).Once()
	second.On("GetCurrentWeather", mock.Anything, "Kyiv").Return(nil, stderrors.New("connection refused")).Once()

	logger := mocks.NewLogger()
	manager := NewWeatherProviderManagerAdapter([]ports.WeatherProvider{first, second}, logger)
	_, err := manager.GetWeather(context.Background(), "Kyiv")

	require.Error(t, err)
	assert.True(t, errors.IsExternalAPIError(err))
	assert.Contains(t, err.Error(), "connection refused")
	assert.Len(t, logger.Entries("error"), 1)
}

func TestWeatherProviderManager_NoProviders(t *testing.T) {
	manager := NewWeatherProviderManagerAdapter(nil, mocks.NewLogger())
	_, err := manager.GetWeather(context.Background(), "Kyiv")
	assert.True(t, errors.IsExternalAPIError(err))
}

func TestNewWeatherProviderChain(t *testing.T) {
	chain, err := NewWeatherProviderChain(ProviderManagerConfig{
		WeatherAPIKey:  "wa-key",
		OpenWeatherKey: "owm-key",
		ProviderOrder:  []string{"openweathermap", " WeatherAPI ", "accuweather"},
		RequestTimeout: time.Second,
		Breaker:        BreakerSettings{ConsecutiveFailures: 3, Interval: time.Minute, OpenTimeout: time.Second},
		Logger:         mocks.NewLogger(),
		RequestLogger:  mocks.NewLogger(),
	})
	require.NoError(t, err)

	info := chain.GetProviderInfo()
	assert.Equal(t, 2, info["total_providers"])
	assert.Equal(t, []string{"openweathermap", "weatherapi"}, info["provider_order"])
	assert.Equal(t, true, info["fallback_enabled"])
	assert.Equal(t, map[string]string{"openweathermap": "closed", "weatherapi": "closed"}, info["breaker_states"])
}

func TestNewWeatherProviderChain_SkipsProvidersWithoutKeys(t *testing.T) {
	chain, err := NewWeatherProviderChain(ProviderManagerConfig{
		WeatherAPIKey: "wa-key",
		ProviderOrder: []string{"weatherapi", "openweathermap"},
		Logger:        mocks.NewLogger(),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"weatherapi"}, chain.GetProviderInfo()["provider_order"])

	_, err = NewWeatherProviderChain(ProviderManagerConfig{
		ProviderOrder: []string{"weatherapi"},
		Logger:        mocks.NewLogger(),
	})
	assert.True(t, errors.IsConfigurationError(err))
}

func TestWeatherProviderLoggingDecorators(t *testing.T) {
	provider := namedProvider(t, "weatherapi")
	data := &ports.WeatherData{City: "Kyiv", Temperature: 5, Humidity: 90, Description: "Fog"}
	provider.On("GetCurrentWeather", mock.Anything, "Kyiv").Return(data, nil).Once()
	provider.On("GetCurrentWeather", mock.Anything, "Atlantis").Return(nil, errors.NewNotFoundError("city not found")).Once()
	provider.On("GetCurrentWeather", mock.Anything, "Lviv").Return(nil, errors.NewExternalAPIError("upstream 502", nil)).Once()

	requestLog := mocks.NewLogger()
	decorated := NewWeatherProviderLoggingDecorator(provider, requestLog)
	assert.Equal(t, "weatherapi", decorated.GetProviderName())

	ctx := ports.WithLookupOrigin(context.Background(), "batch:hourly")
	got, err := decorated.GetCurrentWeather(ctx, "Kyiv")
	require.NoError(t, err)
	assert.Equal(t, data, got)

	_, err = decorated.GetCurrentWeather(context.Background(), "Atlantis")
	assert.True(t, errors.IsNotFoundError(err))

	_, err = decorated.GetCurrentWeather(ports.WithLookupOrigin(context.Background(), "api"), "Lviv")
	assert.True(t, errors.IsExternalAPIError(err))

	infoEntries := requestLog.Entries("info")
	require.Len(t, infoEntries, 1)
	assert.Equal(t, "weatherapi", infoEntries[0].Fields["provider"])
	assert.Equal(t, "batch:hourly", infoEntries[0].Fields["origin"])
	assert.Equal(t, "ok", infoEntries[0].Fields["outcome"])
	assert.Equal(t, 90, infoEntries[0].Fields["humidity_pct"])
	assert.Equal(t, "Fog", infoEntries[0].Fields["conditions"])

	warnEntries := requestLog.Entries("warn")
	require.Len(t, warnEntries, 1)
	assert.Equal(t, "unknown", warnEntries[0].Fields["origin"])
	assert.Equal(t, "not_found", warnEntries[0].Fields["outcome"])

	errorEntries := requestLog.Entries("error")
	require.Len(t, errorEntries, 1)
	assert.Equal(t, "api", errorEntries[0].Fields["origin"])
	assert.Equal(t, "failed", errorEntries[0].Fields["outcome"])

	manager := mocks.NewWeatherProviderManager(t)
	manager.On("GetWeather", mock.Anything, "Kyiv").Return(data, nil).Once()
	manager.On("GetWeather", mock.Anything, "Odesa").Return(nil, errors.NewExternalAPIError("all providers failed", context.DeadlineExceeded)).Once()
	manager.On("GetProviderInfo").Return(map[string]interface{}{"total_providers": 1}).Once()

	managerLog := mocks.NewLogger()
	loggedManager := NewWeatherProviderManagerLoggingDecorator(manager, managerLog)
	_, err = loggedManager.GetWeather(ctx, "Kyiv")
	require.NoError(t, err)
	require.Len(t, managerLog.Entries("debug"), 1)
	assert.Equal(t, "batch:hourly", managerLog.Entries("debug")[0].Fields["origin"])

	_, err = loggedManager.GetWeather(ctx, "Odesa")
	require.Error(t, err)
	require.Len(t, managerLog.Entries("warn"), 1)
	assert.Equal(t, "timeout", managerLog.Entries("warn")[0].Fields["outcome"])

	assert.Equal(t, true, loggedManager.GetProviderInfo()["logging_enabled"])
}
