package ports

import "time"

// WeatherConfig represents weather service configuration
type WeatherConfig struct {
	EnableCache bool
	CacheTTL    time.Duration
}

// AppConfig represents application configuration
type AppConfig struct {
	BaseURL string
}

// EmailConfig represents email configuration
type EmailConfig struct {
	SMTPHost    string
	SMTPPort    int
	FromName    string
	FromAddress string
}

// DispatchConfig represents scheduled batch dispatch configuration
type DispatchConfig struct {
	Workers           int
	SubscriberTimeout time.Duration
}

// ConfigProvider defines the contract for configuration management
type ConfigProvider interface {
	GetWeatherConfig() WeatherConfig
	GetAppConfig() AppConfig
	GetEmailConfig() EmailConfig
	GetDispatchConfig() DispatchConfig
}
