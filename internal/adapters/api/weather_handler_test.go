package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"weathersub.app/internal/core/weather"
	"weathersub.app/pkg/errors"
)

func TestGetWeather_Success(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.weather.On("GetWeather", mock.Anything, weather.WeatherRequest{City: "Kyiv"}).Return(&weather.Weather{
		Temperature: 14.2,
		Humidity:    61,
		Description: "Overcast",
		City:        "Kyiv",
	}, nil).Once()

	w := ts.do(http.MethodGet, "/api/weather?city=Kyiv", "", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"temperature":14.2,"humidity":61,"description":"Overcast","city":"Kyiv"}`, w.Body.String())
}

func TestGetWeather_MissingCity(t *testing.T) {
	ts := newTestServer(t, nil)

	w := ts.do(http.MethodGet, "/api/weather?city=%20", "", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"city parameter is required"}`, w.Body.String())
}

func TestGetWeather_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{name: "NotFound", err: errors.NewNotFoundError("city not found"), status: http.StatusNotFound},
		{name: "Invalid", err: errors.NewValidationError("invalid request"), status: http.StatusBadRequest},
		{name: "ProviderDown", err: errors.NewExternalAPIError("all weather providers failed", nil), status: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t, nil)
			ts.weather.On("GetWeather", mock.Anything, mock.Anything).Return(nil, tt.err).Once()

			w := ts.do(http.MethodGet, "/api/weather?city=Atlantis", "", "")
			assert.Equal(t, tt.status, w.Code)
		})
	}
}
