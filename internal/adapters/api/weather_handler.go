package api

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"weathersub.app/internal/core/weather"
	"weathersub.app/internal/ports"
	"weathersub.app/pkg/errors"
)

type WeatherResponse struct {
	Temperature float64 `json:"temperature"`
	Humidity    int     `json:"humidity"`
	Description string  `json:"description"`
	City        string  `json:"city"`
}

// getWeather handles GET /api/weather requests
func (s *HTTPServerAdapter) getWeather(c *gin.Context) {
	city := strings.TrimSpace(c.Query("city"))
	if city == "" {
		s.handleError(c, errors.NewValidationError("city parameter is required"))
		return
	}

	ctx := ports.WithLookupOrigin(c.Request.Context(), "api")
	weatherData, err := s.weatherUseCase.GetWeather(ctx, weather.WeatherRequest{City: city})
	if err != nil {
		slog.Error("Weather use case error", "error", err, "city", city)
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, WeatherResponse{
		Temperature: weatherData.Temperature,
		Humidity:    weatherData.Humidity,
		Description: weatherData.Description,
		City:        weatherData.City,
	})
}
