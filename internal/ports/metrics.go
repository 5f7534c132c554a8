package ports

import "time"

// Delivery outcomes reported per subscriber during a batch.
const (
	DeliverySent         = "sent"
	DeliveryWeatherError = "weather_error"
	DeliveryEmailError   = "email_error"
)

// Batch outcomes.
const (
	BatchCompleted = "completed"
	BatchAborted   = "aborted"
)

// DispatchMetrics defines the contract for scheduled dispatch instrumentation
type DispatchMetrics interface {
	RecordBatch(frequency, outcome string, duration time.Duration)
	RecordDelivery(frequency, outcome string)
	SetEligible(frequency string, count int)
}
