// Package external provides adapters for external services.
// These adapters implement ports for weather providers, email, and caches.
package external

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"time"

	"weathersub.app/internal/ports"
	"weathersub.app/pkg/errors"
)

const (
	defaultWeatherAPIBaseURL = "https://api.weatherapi.com/v1"
	defaultRequestTimeout    = 10 * time.Second

	// weatherAPINoLocation is WeatherAPI's error code for an unknown location
	weatherAPINoLocation = 1006

	maxErrorBodyBytes = 4 << 10
)

// HTTPClient is the subset of *http.Client the providers use
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// WeatherAPIProviderAdapter implements WeatherProvider port for WeatherAPI.com
type WeatherAPIProviderAdapter struct {
	apiKey  string
	baseURL string
	client  HTTPClient
	logger  ports.Logger
}

type WeatherAPIProviderParams struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
	Client  HTTPClient
	Logger  ports.Logger
}

// WeatherAPIResponse represents the response from WeatherAPI.com
type WeatherAPIResponse struct {
	Location struct {
		Name string `json:"name"`
	} `json:"location"`
	Current struct {
		TempC     float64 `json:"temp_c"`
		Humidity  float64 `json:"humidity"`
		Condition struct {
			Text string `json:"text"`
		} `json:"condition"`
	} `json:"current"`
}

type weatherAPIErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func NewWeatherAPIProviderAdapter(params WeatherAPIProviderParams) *WeatherAPIProviderAdapter {
	baseURL := params.BaseURL
	if baseURL == "" {
		baseURL = defaultWeatherAPIBaseURL
	}

	return &WeatherAPIProviderAdapter{
		apiKey:  params.APIKey,
		baseURL: baseURL,
		client:  httpClientOrDefault(params.Client, params.Timeout),
		logger:  params.Logger,
	}
}

// GetCurrentWeather retrieves weather data from WeatherAPI.com. A 400 with
// the no-location code and a 404 both mean the city is unknown.
func (p *WeatherAPIProviderAdapter) GetCurrentWeather(ctx context.Context, city string) (*ports.WeatherData, error) {
	if city == "" {
		return nil, errors.NewValidationError("city cannot be empty")
	}

	query := url.Values{}
	query.Set("key", p.apiKey)
	query.Set("q", city)

	resp, err := doGet(ctx, p.client, p.baseURL+"/current.json?"+query.Encode())
	if err != nil {
		return nil, errors.NewExternalAPIError("failed to call WeatherAPI", err)
	}
	defer closeBody(resp, p.logger, "WeatherAPI")

	if resp.StatusCode != http.StatusOK {
		return nil, p.statusError(resp)
	}

	var apiResp WeatherAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, errors.NewExternalAPIError("failed to decode WeatherAPI response", err)
	}

	return &ports.WeatherData{
		Temperature: apiResp.Current.TempC,
		Humidity:    roundHumidity(apiResp.Current.Humidity),
		Description: apiResp.Current.Condition.Text,
		City:        city,
		Timestamp:   time.Now(),
	}, nil
}

func (p *WeatherAPIProviderAdapter) statusError(resp *http.Response) error {
	var apiErr weatherAPIErrorResponse
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
	_ = json.Unmarshal(body, &apiErr)

	switch {
	case resp.StatusCode == http.StatusNotFound || apiErr.Error.Code == weatherAPINoLocation:
		return errors.NewNotFoundError("city not found")
	case resp.StatusCode == http.StatusBadRequest:
		return errors.NewValidationError("invalid request")
	default:
		return errors.NewExternalAPIError(fmt.Sprintf("WeatherAPI returned status %d", resp.StatusCode), nil)
	}
}

func (p *WeatherAPIProviderAdapter) GetProviderName() string {
	return "weatherapi"
}

// roundHumidity converts a provider's relative humidity to whole percent.
func roundHumidity(h float64) int {
	return int(math.Round(h))
}

func httpClientOrDefault(client HTTPClient, timeout time.Duration) HTTPClient {
	if client != nil {
		return client
	}
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return &http.Client{Timeout: timeout}
}

func doGet(ctx context.Context, client HTTPClient, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	return client.Do(req)
}

func closeBody(resp *http.Response, logger ports.Logger, provider string) {
	if err := resp.Body.Close(); err != nil && logger != nil {
		logger.Warn("Failed to close response body",
			ports.F("provider", provider),
			ports.F("error", err))
	}
}
