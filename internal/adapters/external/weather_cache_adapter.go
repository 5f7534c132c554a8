package external

import (
	"context"
	"encoding/json"
	"time"

	"weathersub.app/internal/ports"
	"weathersub.app/pkg/errors"
)

var _ ports.WeatherCache = (*WeatherCacheAdapter)(nil)

// WeatherCacheAdapter stores weather readings as JSON in a generic CacheProvider
type WeatherCacheAdapter struct {
	cacheProvider ports.CacheProvider
}

func NewWeatherCacheAdapter(cacheProvider ports.CacheProvider) *WeatherCacheAdapter {
	return &WeatherCacheAdapter{
		cacheProvider: cacheProvider,
	}
}

// Get returns a NotFound error on a miss.
func (w *WeatherCacheAdapter) Get(ctx context.Context, key string) (*ports.WeatherData, error) {
	data, err := w.cacheProvider.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	var weatherData ports.WeatherData
	if err := json.Unmarshal(data, &weatherData); err != nil {
		// A corrupt entry is treated as a miss and evicted.
		_ = w.cacheProvider.Delete(ctx, key)
		return nil, errors.NewNotFoundError("cached weather entry is unreadable")
	}

	return &weatherData, nil
}

func (w *WeatherCacheAdapter) Set(ctx context.Context, key string, weather *ports.WeatherData, ttl time.Duration) error {
	if weather == nil {
		return errors.NewValidationError("weather data cannot be nil")
	}

	data, err := json.Marshal(weather)
	if err != nil {
		return errors.NewExternalAPIError("failed to serialize weather data", err)
	}

	return w.cacheProvider.Set(ctx, key, data, ttl)
}
