// Package ports defines the interfaces for external dependencies in our hexagonal architecture.
// These interfaces are implemented by adapters and mocked for testing (see internal/mocks).
package ports

// ApplicationPorts aggregates all ports for dependency injection
type ApplicationPorts struct {
	// Weather
	WeatherProvider WeatherProviderManager
	WeatherCache    WeatherCache

	// Subscription
	SubscriptionRepository SubscriptionRepository
	TokenGenerator         TokenGenerator

	// Communication
	EmailProvider EmailProvider

	// Metrics
	CacheMetrics    CacheMetrics
	DispatchMetrics DispatchMetrics

	// Infrastructure
	ConfigProvider ConfigProvider
	Logger         Logger
}
