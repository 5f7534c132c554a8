package ports

import (
	"context"
	"time"
)

// WeatherData represents weather information
type WeatherData struct {
	Temperature float64
	Humidity    int
	Description string
	City        string
	Timestamp   time.Time
}

// WeatherProvider defines the contract for weather data providers
type WeatherProvider interface {
	GetCurrentWeather(ctx context.Context, city string) (*WeatherData, error)
	GetProviderName() string
}

// WeatherProviderManager defines the contract for managing multiple weather providers
type WeatherProviderManager interface {
	GetWeather(ctx context.Context, city string) (*WeatherData, error)
	GetProviderInfo() map[string]interface{}
}

// WeatherCache defines the contract for caching weather data
type WeatherCache interface {
	Get(ctx context.Context, key string) (*WeatherData, error)
	Set(ctx context.Context, key string, weather *WeatherData, ttl time.Duration) error
}

type lookupOriginKey struct{}

// WithLookupOrigin tags ctx with what triggered a weather lookup, such as
// "api" or "batch:hourly". Provider request logs carry the tag.
func WithLookupOrigin(ctx context.Context, origin string) context.Context {
	return context.WithValue(ctx, lookupOriginKey{}, origin)
}

// LookupOrigin returns the tag set by WithLookupOrigin, or "unknown".
func LookupOrigin(ctx context.Context) string {
	if origin, ok := ctx.Value(lookupOriginKey{}).(string); ok && origin != "" {
		return origin
	}
	return "unknown"
}
