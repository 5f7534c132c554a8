package mocks

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"weathersub.app/internal/ports"
)

// WeatherProvider is a mock of ports.WeatherProvider
type WeatherProvider struct {
	mock.Mock
}

func NewWeatherProvider(t *testing.T) *WeatherProvider {
	m := &WeatherProvider{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *WeatherProvider) GetCurrentWeather(ctx context.Context, city string) (*ports.WeatherData, error) {
	args := m.Called(ctx, city)
	return weatherResult(args)
}

func (m *WeatherProvider) GetProviderName() string {
	args := m.Called()
	return args.String(0)
}

// WeatherProviderManager is a mock of ports.WeatherProviderManager
type WeatherProviderManager struct {
	mock.Mock
}

func NewWeatherProviderManager(t *testing.T) *WeatherProviderManager {
	m := &WeatherProviderManager{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *WeatherProviderManager) GetWeather(ctx context.Context, city string) (*ports.WeatherData, error) {
	args := m.Called(ctx, city)
	return weatherResult(args)
}

func (m *WeatherProviderManager) GetProviderInfo() map[string]interface{} {
	args := m.Called()
	if info, ok := args.Get(0).(map[string]interface{}); ok {
		return info
	}
	return nil
}

// WeatherCache is a mock of ports.WeatherCache
type WeatherCache struct {
	mock.Mock
}

func NewWeatherCache(t *testing.T) *WeatherCache {
	m := &WeatherCache{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *WeatherCache) Get(ctx context.Context, key string) (*ports.WeatherData, error) {
	args := m.Called(ctx, key)
	return weatherResult(args)
}

func (m *WeatherCache) Set(ctx context.Context, key string, weather *ports.WeatherData, ttl time.Duration) error {
	args := m.Called(ctx, key, weather, ttl)
	return args.Error(0)
}

func weatherResult(args mock.Arguments) (*ports.WeatherData, error) {
	if data, ok := args.Get(0).(*ports.WeatherData); ok {
		return data, args.Error(1)
	}
	return nil, args.Error(1)
}
