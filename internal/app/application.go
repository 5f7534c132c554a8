package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gin-gonic/gin"
	"weathersub.app/internal/adapters/api"
	"weathersub.app/internal/adapters/infrastructure"
	"weathersub.app/internal/adapters/scheduler"
	"weathersub.app/internal/config"
	"weathersub.app/internal/core/dispatch"
	"weathersub.app/internal/core/notification"
	"weathersub.app/internal/core/subscription"
	"weathersub.app/internal/core/weather"
	"weathersub.app/internal/ports"
)

type Application struct {
	config *config.Config
	deps   *DependencyContainer

	// Use Cases
	weatherUseCase      *weather.UseCase
	subscriptionUseCase *subscription.UseCase
	dispatchUseCase     *dispatch.UseCase
	notifier            *notification.Service

	// Adapters
	scheduler  *scheduler.CronScheduler
	httpServer *api.HTTPServerAdapter

	ports *ports.ApplicationPorts
}

func NewApplication(ctx context.Context, cfg *config.Config) (*Application, error) {
	slog.Info("Initializing application ports...")
	deps, err := NewDependencyContainer(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create dependency container: %w", err)
	}

	app, err := NewApplicationWithDependencies(cfg, deps)
	if err != nil {
		deps.Cleanup()
		return nil, err
	}
	return app, nil
}

// NewApplicationWithDependencies wires use cases and adapters on top of an
// existing container.
func NewApplicationWithDependencies(cfg *config.Config, deps *DependencyContainer) (*Application, error) {
	app := &Application{
		config: cfg,
		deps:   deps,
		ports:  deps.ApplicationPorts(),
	}

	if err := app.initializeUseCases(); err != nil {
		return nil, fmt.Errorf("initialize use cases: %w", err)
	}
	if err := app.initializeAdapters(); err != nil {
		return nil, fmt.Errorf("initialize adapters: %w", err)
	}
	return app, nil
}

func (a *Application) initializeUseCases() error {
	slog.Info("Initializing use cases...")

	weatherUseCase, err := weather.NewUseCase(weather.UseCaseDependencies{
		WeatherProvider: a.ports.WeatherProvider,
		Cache:           a.ports.WeatherCache,
		Config:          a.ports.ConfigProvider,
		Logger:          a.ports.Logger,
	})
	if err != nil {
		return fmt.Errorf("create weather use case: %w", err)
	}
	a.weatherUseCase = weatherUseCase

	notifier, err := notification.NewService(notification.ServiceDependencies{
		EmailProvider:   a.ports.EmailProvider,
		Config:          a.ports.ConfigProvider,
		Logger:          a.ports.Logger,
		VerifyTransport: a.config.Email.VerifyOnStart,
	})
	if err != nil {
		return fmt.Errorf("create notifier: %w", err)
	}
	a.notifier = notifier

	subscriptionUseCase, err := subscription.NewUseCase(subscription.UseCaseDependencies{
		SubscriptionRepo: a.ports.SubscriptionRepository,
		TokenGenerator:   a.ports.TokenGenerator,
		Notifier:         notifier,
		Logger:           a.ports.Logger,
	})
	if err != nil {
		return fmt.Errorf("create subscription use case: %w", err)
	}
	a.subscriptionUseCase = subscriptionUseCase

	dispatchUseCase, err := dispatch.NewUseCase(dispatch.UseCaseDependencies{
		Subscriptions: subscriptionUseCase,
		Weather:       weatherUseCase,
		Notifier:      notifier,
		Metrics:       a.ports.DispatchMetrics,
		Config:        a.ports.ConfigProvider,
		Logger:        a.ports.Logger,
	})
	if err != nil {
		return fmt.Errorf("create dispatch use case: %w", err)
	}
	a.dispatchUseCase = dispatchUseCase

	slog.Info("Use cases initialized successfully")
	return nil
}

func (a *Application) initializeAdapters() error {
	slog.Info("Initializing adapters...")

	cronScheduler, err := scheduler.NewCronScheduler(scheduler.CronSchedulerDependencies{
		Runner:     a.dispatchUseCase,
		Logger:     a.ports.Logger,
		HourlySpec: a.config.Scheduler.HourlySpec,
		DailySpec:  a.config.Scheduler.DailySpec,
	})
	if err != nil {
		return fmt.Errorf("create scheduler: %w", err)
	}
	a.scheduler = cronScheduler

	checkers := map[string]ports.HealthChecker{
		"database": infrastructure.NewDatabaseHealthChecker(a.deps.Database()),
		"weather":  infrastructure.NewWeatherProviderHealthChecker(a.ports.WeatherProvider),
		"email":    infrastructure.NewSMTPHealthChecker(a.ports.EmailProvider, a.ports.ConfigProvider.GetEmailConfig()),
	}
	// The manual trigger is served only while the scheduler runs.
	var batchTrigger api.BatchTrigger
	if a.config.Scheduler.Enabled {
		checkers["scheduler"] = infrastructure.NewSchedulerHealthChecker(cronScheduler)
		batchTrigger = cronScheduler
	}
	if pinger, ok := a.deps.CacheProvider().(infrastructure.Pinger); ok {
		checkers["cache"] = infrastructure.NewCacheHealthChecker(pinger, a.config.Cache.Type.String())
	}

	metricsCollector := infrastructure.NewMetricsCollectorAdapter(infrastructure.MetricsCollectorConfig{
		Providers:     a.ports.WeatherProvider,
		CacheMetrics:  a.ports.CacheMetrics,
		Subscriptions: a.ports.SubscriptionRepository,
	})

	httpAdapter, err := api.NewHTTPServerAdapter(api.ServerOptions{
		Config: api.ServerConfig{
			Port: a.config.Server.Port,
		},
		WeatherUseCase:      a.weatherUseCase,
		SubscriptionUseCase: a.subscriptionUseCase,
		MetricsCollector:    metricsCollector,
		HealthChecker:       infrastructure.NewSystemHealthChecker(checkers),
		BatchTrigger:        batchTrigger,
	})
	if err != nil {
		return fmt.Errorf("create HTTP adapter: %w", err)
	}
	a.httpServer = httpAdapter

	slog.Info("Adapters initialized successfully")
	return nil
}

// Open prepares the notifier and, when enabled, starts the batch scheduler.
// A mail transport that fails verification aborts startup.
func (a *Application) Open(ctx context.Context) error {
	if err := a.notifier.Open(ctx); err != nil {
		return fmt.Errorf("open notifier: %w", err)
	}

	if !a.config.Scheduler.Enabled {
		slog.Warn("Batch scheduler disabled")
		return nil
	}
	if err := a.scheduler.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	return nil
}

// Start opens the application and serves HTTP until Shutdown is called.
func (a *Application) Start(ctx context.Context) error {
	slog.Info("Starting application...")

	if err := a.Open(ctx); err != nil {
		return err
	}
	return a.httpServer.Start(ctx)
}

// Shutdown stops accepting requests, waits for a running batch and releases
// every resource, even when an earlier step fails.
func (a *Application) Shutdown(ctx context.Context) error {
	slog.Info("Shutting down application...")

	var firstErr error
	if err := a.httpServer.Stop(ctx); err != nil {
		slog.Error("Error shutting down HTTP server", "error", err)
		firstErr = fmt.Errorf("shutdown HTTP server: %w", err)
	}

	if err := a.scheduler.Stop(ctx); err != nil {
		slog.Error("Error stopping scheduler", "error", err)
		if firstErr == nil {
			firstErr = fmt.Errorf("stop scheduler: %w", err)
		}
	}

	a.deps.Cleanup()

	slog.Info("Application shutdown complete")
	return firstErr
}

func (a *Application) Config() *config.Config {
	return a.config
}

// GetRouter returns the Gin router for testing
func (a *Application) GetRouter() *gin.Engine {
	return a.httpServer.GetRouter()
}

func (a *Application) GetSubscriptionUseCase() *subscription.UseCase {
	return a.subscriptionUseCase
}

func (a *Application) GetDispatchUseCase() *dispatch.UseCase {
	return a.dispatchUseCase
}
