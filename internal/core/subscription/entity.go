package subscription

import (
	"encoding/json"
	"strings"
	"time"
)

// Subscription represents a user's weather notification subscription
type Subscription struct {
	ID                uint
	Email             string
	City              string
	Frequency         Frequency
	Confirmed         bool
	ConfirmationToken string
	UnsubscribeToken  string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Frequency represents subscription frequency options
type Frequency int

const (
	FrequencyUnknown Frequency = iota
	FrequencyHourly
	FrequencyDaily
)

// String returns the string representation of frequency
func (f Frequency) String() string {
	switch f {
	case FrequencyHourly:
		return "hourly"
	case FrequencyDaily:
		return "daily"
	default:
		return "unknown"
	}
}

// IsValid checks if the frequency value is valid
func (f Frequency) IsValid() bool {
	return f == FrequencyHourly || f == FrequencyDaily
}

// FrequencyFromString converts string to Frequency enum
func FrequencyFromString(s string) Frequency {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "hourly":
		return FrequencyHourly
	case "daily":
		return FrequencyDaily
	default:
		return FrequencyUnknown
	}
}

// Frequencies lists every cadence the scheduler drives.
func Frequencies() []Frequency {
	return []Frequency{FrequencyHourly, FrequencyDaily}
}

// UnmarshalJSON implements json.Unmarshaler interface
func (f *Frequency) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*f = FrequencyFromString(s)
	return nil
}

// MarshalJSON implements json.Marshaler interface
func (f Frequency) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.String())
}

// UnmarshalText implements encoding.TextUnmarshaler for form parsing
func (f *Frequency) UnmarshalText(text []byte) error {
	*f = FrequencyFromString(string(text))
	return nil
}

// MarshalText implements encoding.TextMarshaler for form parsing
func (f Frequency) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// State is the lifecycle position of a subscription. Removed subscriptions
// no longer exist in the store, so only two states are observable.
type State int

const (
	StatePending State = iota
	StateConfirmed
)

func (s State) String() string {
	if s == StateConfirmed {
		return "confirmed"
	}
	return "pending"
}

// NewSubscription creates a pending subscription with the given tokens
func NewSubscription(email, city string, frequency Frequency, confirmationToken, unsubscribeToken string) *Subscription {
	now := time.Now()
	return &Subscription{
		Email:             strings.TrimSpace(email),
		City:              strings.TrimSpace(city),
		Frequency:         frequency,
		Confirmed:         false,
		ConfirmationToken: confirmationToken,
		UnsubscribeToken:  unsubscribeToken,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

// State reports where the subscription sits in its lifecycle
func (s *Subscription) State() State {
	if s.Confirmed {
		return StateConfirmed
	}
	return StatePending
}

// IsConfirmed checks if subscription is confirmed
func (s *Subscription) IsConfirmed() bool {
	return s.Confirmed
}

// IsEligibleFor reports whether a scheduled batch of the given cadence should notify this subscriber
func (s *Subscription) IsEligibleFor(frequency Frequency) bool {
	return s.Confirmed && s.Frequency == frequency
}
