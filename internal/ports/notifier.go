package ports

import "context"

// ConfirmationMessage carries what a subscriber needs to confirm a subscription
type ConfirmationMessage struct {
	Email string
	City  string
	Token string
}

// WeatherUpdateMessage carries one scheduled weather update
type WeatherUpdateMessage struct {
	Email            string
	City             string
	Weather          WeatherData
	UnsubscribeToken string
}

// Notifier defines the contract for subscriber-facing messages.
// Failures are reported to the caller and never retried internally.
type Notifier interface {
	SendConfirmation(ctx context.Context, msg ConfirmationMessage) error
	SendWeatherUpdate(ctx context.Context, msg WeatherUpdateMessage) error
}
