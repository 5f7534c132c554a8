package ports

import (
	"context"
	"time"
)

// SubscriptionData represents subscription data for persistence
type SubscriptionData struct {
	ID                uint
	Email             string
	City              string
	Frequency         string
	Confirmed         bool
	ConfirmationToken string
	UnsubscribeToken  string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// SubscriptionRepository defines the contract for subscription persistence.
// Uniqueness of (email, city) and of both tokens is enforced by the store;
// a violation is reported as an AlreadyExists error.
type SubscriptionRepository interface {
	Create(ctx context.Context, sub *SubscriptionData) error
	FindByID(ctx context.Context, id uint) (*SubscriptionData, error)
	FindByEmailAndCity(ctx context.Context, email, city string) (*SubscriptionData, error)
	// FindPendingByConfirmationToken only matches unconfirmed subscriptions.
	FindPendingByConfirmationToken(ctx context.Context, token string) (*SubscriptionData, error)
	FindByUnsubscribeToken(ctx context.Context, token string) (*SubscriptionData, error)
	// MarkConfirmed flips confirmed to true only if it is still false.
	MarkConfirmed(ctx context.Context, id uint) error
	Delete(ctx context.Context, id uint) error
	ListConfirmedByFrequency(ctx context.Context, frequency string) ([]*SubscriptionData, error)
	CountConfirmedByFrequency(ctx context.Context, frequency string) (int64, error)
}

// TokenGenerator produces unguessable identifiers for confirmation and unsubscribe links
type TokenGenerator interface {
	Generate() (string, error)
}
