package infrastructure

import (
	"weathersub.app/internal/config"
	"weathersub.app/internal/ports"
)

var _ ports.ConfigProvider = (*ConfigProviderAdapter)(nil)

// ConfigProviderAdapter exposes the loaded configuration through the ConfigProvider port
type ConfigProviderAdapter struct {
	config *config.Config
}

func NewConfigProviderAdapter(cfg *config.Config) *ConfigProviderAdapter {
	return &ConfigProviderAdapter{
		config: cfg,
	}
}

func (c *ConfigProviderAdapter) GetAppConfig() ports.AppConfig {
	return ports.AppConfig{
		BaseURL: c.config.AppBaseURL,
	}
}

func (c *ConfigProviderAdapter) GetWeatherConfig() ports.WeatherConfig {
	return ports.WeatherConfig{
		EnableCache: c.config.Weather.EnableCache,
		CacheTTL:    c.config.Weather.CacheTTL(),
	}
}

func (c *ConfigProviderAdapter) GetEmailConfig() ports.EmailConfig {
	return ports.EmailConfig{
		SMTPHost:    c.config.Email.SMTPHost,
		SMTPPort:    c.config.Email.SMTPPort,
		FromName:    c.config.Email.FromName,
		FromAddress: c.config.Email.FromAddress,
	}
}

func (c *ConfigProviderAdapter) GetDispatchConfig() ports.DispatchConfig {
	return ports.DispatchConfig{
		Workers:           c.config.Scheduler.Workers,
		SubscriberTimeout: c.config.Scheduler.SubscriberTimeout(),
	}
}
