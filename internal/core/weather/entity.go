package weather

import (
	"fmt"
	"strings"
	"time"
)

// Weather represents current conditions for a city
type Weather struct {
	Temperature float64
	Humidity    int
	Description string
	City        string
	Timestamp   time.Time
}

// WeatherRequest represents a request for weather information
type WeatherRequest struct {
	City string
}

// IsValid validates weather data
func (w *Weather) IsValid() error {
	if strings.TrimSpace(w.Description) == "" {
		return fmt.Errorf("description cannot be empty")
	}
	if w.Temperature < -273.15 {
		return fmt.Errorf("temperature cannot be below absolute zero")
	}
	if w.Humidity < 0 || w.Humidity > 100 {
		return fmt.Errorf("humidity must be between 0 and 100")
	}
	return nil
}

// IsValid validates weather request
func (wr *WeatherRequest) IsValid() error {
	if strings.TrimSpace(wr.City) == "" {
		return fmt.Errorf("city cannot be empty")
	}
	return nil
}

// NormalizeCity trims the city so lookups and cache keys agree
func (wr *WeatherRequest) NormalizeCity() {
	wr.City = strings.TrimSpace(wr.City)
}

// CacheKey is case-insensitive so "Kyiv" and "kyiv" share an entry
func (wr *WeatherRequest) CacheKey() string {
	return "weather:" + strings.ToLower(strings.TrimSpace(wr.City))
}

func (w *Weather) String() string {
	return fmt.Sprintf("%s: %.1f°C, %d%% humidity, %s",
		w.City, w.Temperature, w.Humidity, w.Description)
}
