// Package api exposes the subscription, weather and operational endpoints over HTTP.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"weathersub.app/internal/core/dispatch"
	"weathersub.app/internal/core/subscription"
	"weathersub.app/internal/core/weather"
	"weathersub.app/internal/ports"
	"weathersub.app/pkg/errors"
)

const readHeaderTimeout = 10 * time.Second

type ServerConfig struct {
	Port int
}

// HTTPServerAdapter implements HTTP server using Gin framework
type HTTPServerAdapter struct {
	router              *gin.Engine
	server              *http.Server
	config              ServerConfig
	weatherUseCase      WeatherUseCase
	subscriptionUseCase SubscriptionUseCase
	metricsCollector    MetricsCollector
	healthChecker       ports.SystemHealthChecker
	batchTrigger        BatchTrigger
}

type WeatherUseCase interface {
	GetWeather(ctx context.Context, request weather.WeatherRequest) (*weather.Weather, error)
}

type SubscriptionUseCase interface {
	Subscribe(ctx context.Context, params subscription.SubscribeParams) (*subscription.Subscription, error)
	Confirm(ctx context.Context, params subscription.ConfirmParams) error
	Unsubscribe(ctx context.Context, params subscription.UnsubscribeParams) error
}

type MetricsCollector interface {
	GetMetrics(ctx context.Context) (map[string]interface{}, error)
}

// BatchTrigger runs a dispatch batch on demand.
type BatchTrigger interface {
	RunNow(ctx context.Context, frequency subscription.Frequency) (dispatch.BatchResult, error)
}

type ServerOptions struct {
	Config              ServerConfig
	WeatherUseCase      WeatherUseCase
	SubscriptionUseCase SubscriptionUseCase
	MetricsCollector    MetricsCollector
	HealthChecker       ports.SystemHealthChecker
	// BatchTrigger is optional; when set POST /api/dispatch/:frequency is served.
	BatchTrigger BatchTrigger
	// Gatherer backs GET /metrics. Defaults to the global Prometheus registry.
	Gatherer prometheus.Gatherer
}

func NewHTTPServerAdapter(opts ServerOptions) (*HTTPServerAdapter, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid server options: %w", err)
	}
	if err := RegisterValidators(); err != nil {
		return nil, err
	}

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())

	server := &HTTPServerAdapter{
		router:              router,
		config:              opts.Config,
		weatherUseCase:      opts.WeatherUseCase,
		subscriptionUseCase: opts.SubscriptionUseCase,
		metricsCollector:    opts.MetricsCollector,
		healthChecker:       opts.HealthChecker,
		batchTrigger:        opts.BatchTrigger,
	}

	gatherer := opts.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	server.setupRoutes(gatherer)
	return server, nil
}

func (opts *ServerOptions) Validate() error {
	if opts.WeatherUseCase == nil {
		return errors.NewValidationError("weather use case is required")
	}
	if opts.SubscriptionUseCase == nil {
		return errors.NewValidationError("subscription use case is required")
	}
	if opts.MetricsCollector == nil {
		return errors.NewValidationError("metrics collector is required")
	}
	if opts.HealthChecker == nil {
		return errors.NewValidationError("health checker is required")
	}
	return nil
}

func (s *HTTPServerAdapter) setupRoutes(gatherer prometheus.Gatherer) {
	api := s.router.Group("/api")
	{
		api.GET("/weather", s.getWeather)
		api.POST("/subscribe", s.subscribe)
		api.GET("/confirm/:token", s.confirmSubscription)
		api.GET("/unsubscribe/:token", s.unsubscribe)
		api.GET("/health", s.getHealth)
		api.GET("/metrics", s.getMetrics)
		if s.batchTrigger != nil {
			api.POST("/dispatch/:frequency", s.triggerBatch)
		}
	}

	s.router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
}

// Start serves until Stop is called. It returns nil after a graceful shutdown.
func (s *HTTPServerAdapter) Start(ctx context.Context) error {
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.config.Port),
		Handler:           s.router,
		ReadHeaderTimeout: readHeaderTimeout,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}

	slog.Info("Starting HTTP server", "port", s.config.Port)
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Stop drains in-flight requests until ctx expires.
func (s *HTTPServerAdapter) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	slog.Info("Stopping HTTP server")
	return s.server.Shutdown(ctx)
}

// GetRouter returns the router for testing purposes
func (s *HTTPServerAdapter) GetRouter() *gin.Engine {
	return s.router
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		slog.Debug("HTTP request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds())
	}
}
