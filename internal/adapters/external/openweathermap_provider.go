package external

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"weathersub.app/internal/ports"
	"weathersub.app/pkg/errors"
)

const defaultOpenWeatherMapBaseURL = "https://api.openweathermap.org/data/2.5"

// OpenWeatherMapProviderAdapter implements WeatherProvider port for OpenWeatherMap
type OpenWeatherMapProviderAdapter struct {
	apiKey  string
	baseURL string
	client  HTTPClient
	logger  ports.Logger
}

type OpenWeatherMapProviderParams struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
	Client  HTTPClient
	Logger  ports.Logger
}

// OpenWeatherMapResponse represents the response from OpenWeatherMap API
type OpenWeatherMapResponse struct {
	Name string `json:"name"`
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity float64 `json:"humidity"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
}

func NewOpenWeatherMapProviderAdapter(params OpenWeatherMapProviderParams) *OpenWeatherMapProviderAdapter {
	baseURL := params.BaseURL
	if baseURL == "" {
		baseURL = defaultOpenWeatherMapBaseURL
	}

	return &OpenWeatherMapProviderAdapter{
		apiKey:  params.APIKey,
		baseURL: baseURL,
		client:  httpClientOrDefault(params.Client, params.Timeout),
		logger:  params.Logger,
	}
}

func (p *OpenWeatherMapProviderAdapter) GetCurrentWeather(ctx context.Context, city string) (*ports.WeatherData, error) {
	if city == "" {
		return nil, errors.NewValidationError("city cannot be empty")
	}

	query := url.Values{}
	query.Set("q", city)
	query.Set("appid", p.apiKey)
	query.Set("units", "metric")

	resp, err := doGet(ctx, p.client, p.baseURL+"/weather?"+query.Encode())
	if err != nil {
		return nil, errors.NewExternalAPIError("failed to call OpenWeatherMap", err)
	}
	defer closeBody(resp, p.logger, "OpenWeatherMap")

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, errors.NewNotFoundError("city not found")
	case http.StatusBadRequest:
		return nil, errors.NewValidationError("invalid request")
	default:
		return nil, errors.NewExternalAPIError(fmt.Sprintf("OpenWeatherMap returned status %d", resp.StatusCode), nil)
	}

	var apiResp OpenWeatherMapResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, errors.NewExternalAPIError("failed to decode OpenWeatherMap response", err)
	}

	description := "Clear"
	if len(apiResp.Weather) > 0 && apiResp.Weather[0].Description != "" {
		description = apiResp.Weather[0].Description
	}

	return &ports.WeatherData{
		Temperature: apiResp.Main.Temp,
		Humidity:    roundHumidity(apiResp.Main.Humidity),
		Description: description,
		City:        city,
		Timestamp:   time.Now(),
	}, nil
}

func (p *OpenWeatherMapProviderAdapter) GetProviderName() string {
	return "openweathermap"
}
