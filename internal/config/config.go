package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/robfig/cron/v3"
	"weathersub.app/pkg/errors"
)

const (
	maxRedisDB           = 15
	maxCacheTTLMinutes   = 1440
	maxPortNumber        = 65535
	maxSchedulerWorkers  = 256
	maxOutboundTimeout   = 300
	defaultHourlySpec    = "0 * * * *"
	defaultDailySpec     = "0 8 * * *"
	providerWeatherAPI   = "weatherapi"
	providerOpenWeather  = "openweathermap"
	minBreakerThresholds = 1
)

// Config represents the application configuration structure
type Config struct {
	Server     ServerConfig    `split_words:"true"`
	Database   DatabaseConfig  `split_words:"true"`
	Weather    WeatherConfig   `split_words:"true"`
	Email      EmailConfig     `split_words:"true"`
	Scheduler  SchedulerConfig `split_words:"true"`
	Cache      CacheConfig     `split_words:"true"`
	AppBaseURL string          `envconfig:"APP_URL" default:"http://localhost:8080"`
	LogLevel   string          `envconfig:"LOG_LEVEL" default:"info"`
}

type ServerConfig struct {
	Port int `envconfig:"SERVER_PORT" default:"8080"`
}

type DatabaseConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     int    `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" default:"postgres"`
	Password string `envconfig:"DB_PASSWORD" default:"postgres"`
	Name     string `envconfig:"DB_NAME" default:"weathersub"`
	SSLMode  string `envconfig:"DB_SSL_MODE" default:"disable"`
}

func (c DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

type WeatherConfig struct {
	APIKey                string   `envconfig:"WEATHER_API_KEY"`
	BaseURL               string   `envconfig:"WEATHER_API_BASE_URL" default:"https://api.weatherapi.com/v1"`
	OpenWeatherMapKey     string   `envconfig:"OPENWEATHERMAP_API_KEY"`
	OpenWeatherMapBaseURL string   `envconfig:"OPENWEATHERMAP_API_BASE_URL" default:"https://api.openweathermap.org/data/2.5"`
	ProviderOrder         []string `envconfig:"WEATHER_PROVIDER_ORDER" default:"weatherapi,openweathermap"`
	EnableCache           bool     `envconfig:"WEATHER_ENABLE_CACHE" default:"true"`
	EnableLogging         bool     `envconfig:"WEATHER_ENABLE_LOGGING" default:"true"`
	CacheTTLMinutes       int      `envconfig:"WEATHER_CACHE_TTL_MINUTES" default:"10"`
	LogFilePath           string   `envconfig:"WEATHER_LOG_FILE_PATH" default:"logs/weather_providers.log"`
	RequestTimeoutSeconds int      `envconfig:"WEATHER_REQUEST_TIMEOUT_SECONDS" default:"10"`
	Breaker               BreakerConfig
}

// RequestTimeout is the HTTP client timeout applied to every provider call.
func (w WeatherConfig) RequestTimeout() time.Duration {
	return time.Duration(w.RequestTimeoutSeconds) * time.Second
}

// CacheTTL returns the weather cache entry lifetime.
func (w WeatherConfig) CacheTTL() time.Duration {
	return time.Duration(w.CacheTTLMinutes) * time.Minute
}

// BreakerConfig configures the circuit breaker wrapped around each weather provider.
type BreakerConfig struct {
	ConsecutiveFailures uint32 `envconfig:"WEATHER_BREAKER_CONSECUTIVE_FAILURES" default:"5"`
	IntervalSeconds     int    `envconfig:"WEATHER_BREAKER_INTERVAL_SECONDS" default:"60"`
	OpenTimeoutSeconds  int    `envconfig:"WEATHER_BREAKER_OPEN_TIMEOUT_SECONDS" default:"30"`
}

// CacheType represents the type of cache to use
type CacheType int

const (
	CacheTypeUnknown CacheType = iota
	CacheTypeMemory
	CacheTypeRedis
)

// String returns the string representation of cache type
func (c CacheType) String() string {
	switch c {
	case CacheTypeMemory:
		return "memory"
	case CacheTypeRedis:
		return "redis"
	default:
		return "unknown"
	}
}

// IsValid checks if the cache type is valid
func (c CacheType) IsValid() bool {
	return c == CacheTypeMemory || c == CacheTypeRedis
}

// CacheTypeFromString converts string to CacheType enum
func CacheTypeFromString(s string) CacheType {
	switch strings.ToLower(s) {
	case "memory":
		return CacheTypeMemory
	case "redis":
		return CacheTypeRedis
	default:
		return CacheTypeUnknown
	}
}

// UnmarshalText implements encoding.TextUnmarshaler for envconfig
func (c *CacheType) UnmarshalText(text []byte) error {
	*c = CacheTypeFromString(string(text))
	return nil
}

// MarshalText implements encoding.TextMarshaler for envconfig
func (c CacheType) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

type CacheConfig struct {
	Type  CacheType   `envconfig:"CACHE_TYPE" default:"memory"`
	Redis RedisConfig `split_words:"true"`
}

type RedisConfig struct {
	Addr         string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	Password     string `envconfig:"REDIS_PASSWORD" default:""`
	DB           int    `envconfig:"REDIS_DB" default:"0"`
	DialTimeout  int    `envconfig:"REDIS_DIAL_TIMEOUT" default:"5"`
	ReadTimeout  int    `envconfig:"REDIS_READ_TIMEOUT" default:"3"`
	WriteTimeout int    `envconfig:"REDIS_WRITE_TIMEOUT" default:"3"`
}

type EmailConfig struct {
	SMTPHost       string `envconfig:"EMAIL_SMTP_HOST" default:"smtp.gmail.com"`
	SMTPPort       int    `envconfig:"EMAIL_SMTP_PORT" default:"587"`
	SMTPUsername   string `envconfig:"EMAIL_SMTP_USERNAME"`
	SMTPPassword   string `envconfig:"EMAIL_SMTP_PASSWORD"`
	FromName       string `envconfig:"EMAIL_FROM_NAME" default:"Weather Updates"`
	FromAddress    string `envconfig:"EMAIL_FROM_ADDRESS" default:"no-reply@weathersub.app"`
	VerifyOnStart  bool   `envconfig:"EMAIL_VERIFY_ON_START" default:"true"`
	TimeoutSeconds int    `envconfig:"EMAIL_TIMEOUT_SECONDS" default:"15"`
}

// Timeout bounds a single SMTP conversation.
func (e EmailConfig) Timeout() time.Duration {
	return time.Duration(e.TimeoutSeconds) * time.Second
}

type SchedulerConfig struct {
	Enabled                  bool   `envconfig:"SCHEDULER_ENABLED" default:"true"`
	HourlySpec               string `envconfig:"SCHEDULER_HOURLY_SPEC" default:"0 * * * *"`
	DailySpec                string `envconfig:"SCHEDULER_DAILY_SPEC" default:"0 8 * * *"`
	Workers                  int    `envconfig:"SCHEDULER_WORKERS" default:"8"`
	SubscriberTimeoutSeconds int    `envconfig:"SCHEDULER_SUBSCRIBER_TIMEOUT_SECONDS" default:"30"`
}

// SubscriberTimeout bounds weather lookup plus email delivery for one subscriber.
func (s SchedulerConfig) SubscriberTimeout() time.Duration {
	return time.Duration(s.SubscriberTimeoutSeconds) * time.Second
}

func LoadConfig() (*Config, error) {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		return nil, errors.NewConfigurationError("error processing config", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return err
	}
	if err := c.Database.Validate(); err != nil {
		return err
	}
	if err := c.Weather.Validate(); err != nil {
		return err
	}
	if err := c.Email.Validate(); err != nil {
		return err
	}
	if err := c.Scheduler.Validate(); err != nil {
		return err
	}
	if err := c.Cache.Validate(); err != nil {
		return err
	}
	if err := c.validateAppBaseURL(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateAppBaseURL() error {
	if c.AppBaseURL == "" {
		return errors.NewConfigurationError("APP_URL cannot be empty", nil)
	}
	if !strings.HasPrefix(c.AppBaseURL, "http://") && !strings.HasPrefix(c.AppBaseURL, "https://") {
		return errors.NewConfigurationError("APP_URL must start with http:// or https://", nil)
	}
	c.AppBaseURL = strings.TrimSuffix(c.AppBaseURL, "/")
	return nil
}

func (s *ServerConfig) Validate() error {
	if s.Port < 1 || s.Port > maxPortNumber {
		return errors.NewConfigurationError("SERVER_PORT must be between 1 and 65535", nil)
	}
	return nil
}

func (d *DatabaseConfig) Validate() error {
	if d.Host == "" {
		return errors.NewConfigurationError("DB_HOST cannot be empty", nil)
	}
	if d.Port < 1 || d.Port > maxPortNumber {
		return errors.NewConfigurationError("DB_PORT must be between 1 and 65535", nil)
	}
	if d.User == "" {
		return errors.NewConfigurationError("DB_USER cannot be empty", nil)
	}
	if d.Name == "" {
		return errors.NewConfigurationError("DB_NAME cannot be empty", nil)
	}
	return d.ValidateSSLMode()
}

func (d *DatabaseConfig) ValidateSSLMode() error {
	validSSLModes := []string{"disable", "require", "verify-ca", "verify-full"}
	for _, mode := range validSSLModes {
		if d.SSLMode == mode {
			return nil
		}
	}
	return errors.NewConfigurationError(
		fmt.Sprintf("DB_SSL_MODE must be one of: %s", strings.Join(validSSLModes, ", ")), nil)
}

func (w *WeatherConfig) Validate() error {
	if w.APIKey == "" && w.OpenWeatherMapKey == "" {
		return errors.NewConfigurationError("at least one weather provider API key must be configured", nil)
	}

	if w.APIKey != "" && !isHTTPURL(w.BaseURL) {
		return errors.NewConfigurationError("WEATHER_API_BASE_URL must start with http:// or https://", nil)
	}
	if w.OpenWeatherMapKey != "" && !isHTTPURL(w.OpenWeatherMapBaseURL) {
		return errors.NewConfigurationError("OPENWEATHERMAP_API_BASE_URL must start with http:// or https://", nil)
	}

	if w.CacheTTLMinutes < 1 || w.CacheTTLMinutes > maxCacheTTLMinutes {
		return errors.NewConfigurationError("WEATHER_CACHE_TTL_MINUTES must be between 1 and 1440 minutes", nil)
	}
	if w.RequestTimeoutSeconds < 1 || w.RequestTimeoutSeconds > maxOutboundTimeout {
		return errors.NewConfigurationError("WEATHER_REQUEST_TIMEOUT_SECONDS must be between 1 and 300", nil)
	}

	validProviders := map[string]bool{
		providerWeatherAPI:  true,
		providerOpenWeather: true,
	}
	for _, provider := range w.ProviderOrder {
		if !validProviders[provider] {
			return errors.NewConfigurationError(fmt.Sprintf("invalid weather provider in order: %s", provider), nil)
		}
	}

	return w.Breaker.Validate()
}

func (b *BreakerConfig) Validate() error {
	if b.ConsecutiveFailures < minBreakerThresholds {
		return errors.NewConfigurationError("WEATHER_BREAKER_CONSECUTIVE_FAILURES must be at least 1", nil)
	}
	if b.IntervalSeconds < 0 {
		return errors.NewConfigurationError("WEATHER_BREAKER_INTERVAL_SECONDS cannot be negative", nil)
	}
	if b.OpenTimeoutSeconds < 1 {
		return errors.NewConfigurationError("WEATHER_BREAKER_OPEN_TIMEOUT_SECONDS must be at least 1 second", nil)
	}
	return nil
}

func (c *CacheConfig) Validate() error {
	if !c.Type.IsValid() {
		return errors.NewConfigurationError("CACHE_TYPE must be one of: memory, redis", nil)
	}

	if c.Type == CacheTypeRedis {
		return c.Redis.Validate()
	}

	return nil
}

func (r *RedisConfig) Validate() error {
	if r.Addr == "" {
		return errors.NewConfigurationError("REDIS_ADDR cannot be empty when using Redis cache", nil)
	}
	if r.DB < 0 || r.DB > maxRedisDB {
		return errors.NewConfigurationError("REDIS_DB must be between 0 and 15", nil)
	}
	if r.DialTimeout < 1 {
		return errors.NewConfigurationError("REDIS_DIAL_TIMEOUT must be at least 1 second", nil)
	}
	if r.ReadTimeout < 1 {
		return errors.NewConfigurationError("REDIS_READ_TIMEOUT must be at least 1 second", nil)
	}
	if r.WriteTimeout < 1 {
		return errors.NewConfigurationError("REDIS_WRITE_TIMEOUT must be at least 1 second", nil)
	}
	return nil
}

func (e *EmailConfig) Validate() error {
	if e.SMTPHost == "" {
		return errors.NewConfigurationError("EMAIL_SMTP_HOST cannot be empty", nil)
	}
	if e.SMTPPort < 1 || e.SMTPPort > maxPortNumber {
		return errors.NewConfigurationError("EMAIL_SMTP_PORT must be between 1 and 65535", nil)
	}
	if (e.SMTPUsername == "") != (e.SMTPPassword == "") {
		return errors.NewConfigurationError("EMAIL_SMTP_USERNAME and EMAIL_SMTP_PASSWORD must both be provided or both be empty", nil)
	}
	if e.FromName == "" {
		return errors.NewConfigurationError("EMAIL_FROM_NAME cannot be empty", nil)
	}
	if !strings.Contains(e.FromAddress, "@") {
		return errors.NewConfigurationError("EMAIL_FROM_ADDRESS must be a valid email address", nil)
	}
	if e.TimeoutSeconds < 1 || e.TimeoutSeconds > maxOutboundTimeout {
		return errors.NewConfigurationError("EMAIL_TIMEOUT_SECONDS must be between 1 and 300", nil)
	}
	return nil
}

func (s *SchedulerConfig) Validate() error {
	if _, err := cron.ParseStandard(s.HourlySpec); err != nil {
		return errors.NewConfigurationError("SCHEDULER_HOURLY_SPEC is not a valid cron expression", err)
	}
	if _, err := cron.ParseStandard(s.DailySpec); err != nil {
		return errors.NewConfigurationError("SCHEDULER_DAILY_SPEC is not a valid cron expression", err)
	}
	if s.Workers < 1 || s.Workers > maxSchedulerWorkers {
		return errors.NewConfigurationError("SCHEDULER_WORKERS must be between 1 and 256", nil)
	}
	if s.SubscriberTimeoutSeconds < 1 || s.SubscriberTimeoutSeconds > maxOutboundTimeout {
		return errors.NewConfigurationError("SCHEDULER_SUBSCRIBER_TIMEOUT_SECONDS must be between 1 and 300", nil)
	}
	return nil
}

// DefaultSchedulerConfig mirrors the envconfig defaults for callers that
// build configuration by hand.
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		Enabled:                  true,
		HourlySpec:               defaultHourlySpec,
		DailySpec:                defaultDailySpec,
		Workers:                  8,
		SubscriberTimeoutSeconds: 30,
	}
}

func isHTTPURL(u string) bool {
	return strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://")
}
