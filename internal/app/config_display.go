package app

import (
	"log/slog"
	"strings"

	"weathersub.app/internal/config"
)

// LogConfig writes the effective configuration at startup with every
// credential masked.
func LogConfig(logger *slog.Logger, cfg *config.Config) {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("Effective configuration",
		slog.Group("server",
			slog.Int("port", cfg.Server.Port)),
		slog.Group("database",
			slog.String("host", cfg.Database.Host),
			slog.Int("port", cfg.Database.Port),
			slog.String("user", cfg.Database.User),
			slog.String("password", maskSecret(cfg.Database.Password)),
			slog.String("name", cfg.Database.Name),
			slog.String("ssl_mode", cfg.Database.SSLMode)),
		slog.Group("weather",
			slog.String("weatherapi_key", maskSecret(cfg.Weather.APIKey)),
			slog.String("openweathermap_key", maskSecret(cfg.Weather.OpenWeatherMapKey)),
			slog.String("provider_order", strings.Join(cfg.Weather.ProviderOrder, ",")),
			slog.Bool("cache", cfg.Weather.EnableCache),
			slog.Duration("cache_ttl", cfg.Weather.CacheTTL()),
			slog.Bool("request_logging", cfg.Weather.EnableLogging)),
		slog.Group("email",
			slog.String("smtp_host", cfg.Email.SMTPHost),
			slog.Int("smtp_port", cfg.Email.SMTPPort),
			slog.String("smtp_username", cfg.Email.SMTPUsername),
			slog.String("smtp_password", maskSecret(cfg.Email.SMTPPassword)),
			slog.String("from", cfg.Email.FromAddress),
			slog.Bool("verify_on_start", cfg.Email.VerifyOnStart)),
		slog.Group("scheduler",
			slog.Bool("enabled", cfg.Scheduler.Enabled),
			slog.String("hourly", cfg.Scheduler.HourlySpec),
			slog.String("daily", cfg.Scheduler.DailySpec),
			slog.Int("workers", cfg.Scheduler.Workers),
			slog.Duration("subscriber_timeout", cfg.Scheduler.SubscriberTimeout())),
		slog.Group("cache",
			slog.String("type", cfg.Cache.Type.String()),
			slog.String("redis_addr", cfg.Cache.Redis.Addr)),
		slog.String("app_url", cfg.AppBaseURL),
	)
}

// maskSecret keeps the first quarter of a secret visible. Short and empty
// values are fully masked.
func maskSecret(s string) string {
	if len(s) <= 4 {
		return "****"
	}
	visible := len(s) / 4
	return s[:visible] + strings.Repeat("*", len(s)-visible)
}
