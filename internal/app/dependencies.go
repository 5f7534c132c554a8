package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	"weathersub.app/internal/adapters/database"
	"weathersub.app/internal/adapters/external"
	"weathersub.app/internal/adapters/infrastructure"
	"weathersub.app/internal/config"
	"weathersub.app/internal/ports"
	"weathersub.app/metrics"
)

// DependencyContainer owns every adapter the application talks to and
// releases them on Cleanup.
type DependencyContainer struct {
	config        *config.Config
	db            *gorm.DB
	ports         *ports.ApplicationPorts
	cacheProvider ports.CacheProvider
	requestLogger *infrastructure.FileLoggerAdapter
}

// DependencyOverrides replaces outbound adapters, for tests and local runs.
type DependencyOverrides struct {
	EmailProvider   ports.EmailProvider
	WeatherProvider ports.WeatherProviderManager
	TokenGenerator  ports.TokenGenerator
	Logger          ports.Logger
}

func NewDependencyContainer(ctx context.Context, cfg *config.Config) (*DependencyContainer, error) {
	db, err := openDatabase(cfg.Database)
	if err != nil {
		return nil, err
	}

	container, err := NewDependencyContainerWithDatabase(ctx, cfg, db, DependencyOverrides{})
	if err != nil {
		closeDatabase(db)
		return nil, err
	}
	return container, nil
}

// NewDependencyContainerWithDatabase builds the container on an already
// opened database. The schema is migrated before anything else is built.
func NewDependencyContainerWithDatabase(ctx context.Context, cfg *config.Config, db *gorm.DB, overrides DependencyOverrides) (*DependencyContainer, error) {
	slog.Info("Running database migrations...")
	if err := database.Migrate(db); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	container := &DependencyContainer{config: cfg, db: db}
	if err := container.initializePorts(ctx, overrides); err != nil {
		container.Cleanup()
		return nil, fmt.Errorf("initialize ports: %w", err)
	}
	return container, nil
}

func openDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	slog.Info("Initializing database connection...", "host", cfg.Host, "name", cfg.Name)

	db, err := gorm.Open(postgres.Open(cfg.GetDSN()), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get database handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	slog.Info("Database connection established successfully")
	return db, nil
}

func (c *DependencyContainer) initializePorts(ctx context.Context, overrides DependencyOverrides) error {
	var logger ports.Logger = infrastructure.NewSlogLoggerAdapter(nil)
	if overrides.Logger != nil {
		logger = overrides.Logger
	}

	providerManager, err := c.buildWeatherProvider(logger, overrides.WeatherProvider)
	if err != nil {
		return err
	}

	cacheMetrics := metrics.NewCacheMetrics(c.config.Cache.Type.String())
	cacheProvider, err := external.NewCacheProviderFactory().CreateCacheProvider(ctx, &c.config.Cache, cacheMetrics)
	if err != nil {
		return fmt.Errorf("create cache provider: %w", err)
	}
	c.cacheProvider = cacheProvider
	slog.Info("Cache provider initialized", "type", c.config.Cache.Type.String())

	var emailProvider ports.EmailProvider = overrides.EmailProvider
	if emailProvider == nil {
		emailProvider = external.NewSMTPEmailProviderAdapter(external.EmailProviderConfig{
			Host:        c.config.Email.SMTPHost,
			Port:        c.config.Email.SMTPPort,
			Username:    c.config.Email.SMTPUsername,
			Password:    c.config.Email.SMTPPassword,
			FromName:    c.config.Email.FromName,
			FromAddr:    c.config.Email.FromAddress,
			ImplicitTLS: c.config.Email.SMTPPort == 465,
			DialTimeout: c.config.Email.Timeout(),
		})
	}

	var tokenGenerator ports.TokenGenerator = overrides.TokenGenerator
	if tokenGenerator == nil {
		tokenGenerator = infrastructure.NewUUIDTokenGenerator()
	}

	c.ports = &ports.ApplicationPorts{
		WeatherProvider:        providerManager,
		WeatherCache:           external.NewWeatherCacheAdapter(cacheProvider),
		SubscriptionRepository: database.NewSubscriptionRepositoryAdapter(c.db),
		TokenGenerator:         tokenGenerator,
		EmailProvider:          emailProvider,
		CacheMetrics:           cacheMetrics,
		DispatchMetrics:        metrics.NewDispatchMetrics(),
		ConfigProvider:         infrastructure.NewConfigProviderAdapter(c.config),
		Logger:                 logger,
	}
	return nil
}

// buildWeatherProvider assembles the provider chain. With request logging
// enabled every provider call is also written to the rotating log file.
func (c *DependencyContainer) buildWeatherProvider(logger ports.Logger, override ports.WeatherProviderManager) (ports.WeatherProviderManager, error) {
	weatherCfg := c.config.Weather

	var manager ports.WeatherProviderManager = override
	if manager == nil {
		chainCfg := external.ProviderManagerConfig{
			WeatherAPIKey:     weatherCfg.APIKey,
			WeatherAPIBaseURL: weatherCfg.BaseURL,
			OpenWeatherKey:    weatherCfg.OpenWeatherMapKey,
			OpenWeatherURL:    weatherCfg.OpenWeatherMapBaseURL,
			ProviderOrder:     weatherCfg.ProviderOrder,
			RequestTimeout:    weatherCfg.RequestTimeout(),
			Breaker: external.BreakerSettings{
				ConsecutiveFailures: weatherCfg.Breaker.ConsecutiveFailures,
				Interval:            time.Duration(weatherCfg.Breaker.IntervalSeconds) * time.Second,
				OpenTimeout:         time.Duration(weatherCfg.Breaker.OpenTimeoutSeconds) * time.Second,
			},
			Logger: logger,
		}

		if weatherCfg.EnableLogging && weatherCfg.LogFilePath != "" {
			fileLogger, err := infrastructure.NewFileLoggerAdapter(infrastructure.FileLoggerConfig{Path: weatherCfg.LogFilePath})
			if err != nil {
				slog.Warn("Failed to create provider request log, continuing without it", "error", err)
			} else {
				c.requestLogger = fileLogger
				chainCfg.RequestLogger = fileLogger
				slog.Info("Provider request logging enabled", "path", weatherCfg.LogFilePath)
			}
		}

		chain, err := external.NewWeatherProviderChain(chainCfg)
		if err != nil {
			return nil, fmt.Errorf("create weather provider chain: %w", err)
		}
		manager = chain
	}

	if weatherCfg.EnableLogging {
		manager = external.NewWeatherProviderManagerLoggingDecorator(manager, logger)
	}
	return manager, nil
}

func (c *DependencyContainer) ApplicationPorts() *ports.ApplicationPorts {
	return c.ports
}

func (c *DependencyContainer) Database() *gorm.DB {
	return c.db
}

// CacheProvider returns the raw cache backend, used for health checks.
func (c *DependencyContainer) CacheProvider() ports.CacheProvider {
	return c.cacheProvider
}

// Cleanup releases the cache connection, the request log and the database pool.
func (c *DependencyContainer) Cleanup() {
	if closer, ok := c.cacheProvider.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			slog.Warn("Error closing cache", "error", err)
		}
	}
	if c.requestLogger != nil {
		if err := c.requestLogger.Close(); err != nil {
			slog.Warn("Error closing provider request log", "error", err)
		}
	}
	closeDatabase(c.db)
}

func closeDatabase(db *gorm.DB) {
	if db == nil {
		return
	}
	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			slog.Warn("Error closing database", "error", err)
		}
	}
}
