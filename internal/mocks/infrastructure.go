package mocks

import (
	"sync"
	"time"

	"weathersub.app/internal/ports"
)

// ConfigProvider is a static ports.ConfigProvider for tests
type ConfigProvider struct {
	App      ports.AppConfig
	Weather  ports.WeatherConfig
	Email    ports.EmailConfig
	Dispatch ports.DispatchConfig
}

// NewConfigProvider returns a provider with test-friendly defaults
func NewConfigProvider() *ConfigProvider {
	return &ConfigProvider{
		App:      ports.AppConfig{BaseURL: "http://localhost:8080"},
		Weather:  ports.WeatherConfig{EnableCache: false, CacheTTL: 10 * time.Minute},
		Email:    ports.EmailConfig{SMTPHost: "localhost", SMTPPort: 1025, FromName: "Weather", FromAddress: "no-reply@example.com"},
		Dispatch: ports.DispatchConfig{Workers: 4, SubscriberTimeout: 5 * time.Second},
	}
}

func (c *ConfigProvider) GetWeatherConfig() ports.WeatherConfig   { return c.Weather }
func (c *ConfigProvider) GetAppConfig() ports.AppConfig           { return c.App }
func (c *ConfigProvider) GetEmailConfig() ports.EmailConfig       { return c.Email }
func (c *ConfigProvider) GetDispatchConfig() ports.DispatchConfig { return c.Dispatch }

// LogEntry is one captured log call
type LogEntry struct {
	Level   string
	Message string
	Fields  map[string]interface{}
}

// Logger records log calls so tests can assert on them
type Logger struct {
	mu      sync.Mutex
	entries []LogEntry
}

func NewLogger() *Logger {
	return &Logger{}
}

func (l *Logger) Debug(msg string, fields ...ports.Field) { l.record("debug", msg, fields) }
func (l *Logger) Info(msg string, fields ...ports.Field)  { l.record("info", msg, fields) }
func (l *Logger) Warn(msg string, fields ...ports.Field)  { l.record("warn", msg, fields) }
func (l *Logger) Error(msg string, fields ...ports.Field) { l.record("error", msg, fields) }

func (l *Logger) record(level, msg string, fields []ports.Field) {
	entry := LogEntry{Level: level, Message: msg, Fields: make(map[string]interface{}, len(fields))}
	for _, f := range fields {
		entry.Fields[f.Key] = f.Value
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, entry)
}

// Entries returns captured entries at the given level
func (l *Logger) Entries(level string) []LogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	var out []LogEntry
	for _, e := range l.entries {
		if e.Level == level {
			out = append(out, e)
		}
	}
	return out
}

// DispatchMetrics records dispatch instrumentation calls
type DispatchMetrics struct {
	mu         sync.Mutex
	Batches    map[string]int
	Deliveries map[string]int
	Eligible   map[string]int
}

func NewDispatchMetrics() *DispatchMetrics {
	return &DispatchMetrics{
		Batches:    make(map[string]int),
		Deliveries: make(map[string]int),
		Eligible:   make(map[string]int),
	}
}

func (m *DispatchMetrics) RecordBatch(frequency, outcome string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Batches[frequency+"/"+outcome]++
}

func (m *DispatchMetrics) RecordDelivery(frequency, outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Deliveries[frequency+"/"+outcome]++
}

func (m *DispatchMetrics) SetEligible(frequency string, count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Eligible[frequency] = count
}

// Delivery returns the recorded count for a frequency and outcome
func (m *DispatchMetrics) Delivery(frequency, outcome string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Deliveries[frequency+"/"+outcome]
}

// Batch returns the recorded count for a frequency and outcome
func (m *DispatchMetrics) Batch(frequency, outcome string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Batches[frequency+"/"+outcome]
}
