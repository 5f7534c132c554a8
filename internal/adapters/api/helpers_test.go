package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"weathersub.app/internal/core/dispatch"
	"weathersub.app/internal/core/subscription"
	"weathersub.app/internal/core/weather"
	"weathersub.app/internal/ports"
)

type mockWeatherUseCase struct{ mock.Mock }

func (m *mockWeatherUseCase) GetWeather(ctx context.Context, request weather.WeatherRequest) (*weather.Weather, error) {
	args := m.Called(ctx, request)
	w, _ := args.Get(0).(*weather.Weather)
	return w, args.Error(1)
}

type mockSubscriptionUseCase struct{ mock.Mock }

func (m *mockSubscriptionUseCase) Subscribe(ctx context.Context, params subscription.SubscribeParams) (*subscription.Subscription, error) {
	args := m.Called(ctx, params)
	sub, _ := args.Get(0).(*subscription.Subscription)
	return sub, args.Error(1)
}

func (m *mockSubscriptionUseCase) Confirm(ctx context.Context, params subscription.ConfirmParams) error {
	return m.Called(ctx, params).Error(0)
}

func (m *mockSubscriptionUseCase) Unsubscribe(ctx context.Context, params subscription.UnsubscribeParams) error {
	return m.Called(ctx, params).Error(0)
}

type mockMetricsCollector struct{ mock.Mock }

func (m *mockMetricsCollector) GetMetrics(ctx context.Context) (map[string]interface{}, error) {
	args := m.Called(ctx)
	out, _ := args.Get(0).(map[string]interface{})
	return out, args.Error(1)
}

type mockBatchTrigger struct{ mock.Mock }

func (m *mockBatchTrigger) RunNow(ctx context.Context, frequency subscription.Frequency) (dispatch.BatchResult, error) {
	args := m.Called(ctx, frequency)
	return args.Get(0).(dispatch.BatchResult), args.Error(1)
}

type staticHealth map[string]ports.HealthStatus

func (s staticHealth) CheckAll(context.Context) map[string]ports.HealthStatus { return s }

type testServer struct {
	router        *gin.Engine
	weather       *mockWeatherUseCase
	subscriptions *mockSubscriptionUseCase
	metrics       *mockMetricsCollector
	trigger       *mockBatchTrigger
	registry      *prometheus.Registry
}

func newTestServer(t *testing.T, health staticHealth) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ts := &testServer{
		weather:       &mockWeatherUseCase{},
		subscriptions: &mockSubscriptionUseCase{},
		metrics:       &mockMetricsCollector{},
		trigger:       &mockBatchTrigger{},
		registry:      prometheus.NewRegistry(),
	}
	for _, m := range []interface {
		Test(mock.TestingT)
		AssertExpectations(mock.TestingT) bool
	}{&ts.weather.Mock, &ts.subscriptions.Mock, &ts.metrics.Mock, &ts.trigger.Mock} {
		m.Test(t)
		t.Cleanup(func() { m.AssertExpectations(t) })
	}

	if health == nil {
		health = staticHealth{}
	}

	server, err := NewHTTPServerAdapter(ServerOptions{
		Config:              ServerConfig{Port: 0},
		WeatherUseCase:      ts.weather,
		SubscriptionUseCase: ts.subscriptions,
		MetricsCollector:    ts.metrics,
		HealthChecker:       health,
		BatchTrigger:        ts.trigger,
		Gatherer:            ts.registry,
	})
	require.NoError(t, err)
	ts.router = server.GetRouter()
	return ts
}

func (ts *testServer) do(method, target, contentType, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}
