package subscription

import (
	"context"
	"fmt"
	"strings"
	"time"

	"weathersub.app/internal/ports"
	"weathersub.app/pkg/errors"
	"weathersub.app/pkg/validation"
)

const (
	// maxTokenAttempts bounds regeneration when a freshly generated token
	// collides with one already stored.
	maxTokenAttempts = 3
	rollbackTimeout  = 5 * time.Second

	msgAlreadySubscribed = "Email already subscribed"
	msgInvalidToken      = "Invalid token"
	msgTokenNotFound     = "Token not found"
)

type UseCase struct {
	subscriptionRepo ports.SubscriptionRepository
	tokenGenerator   ports.TokenGenerator
	notifier         ports.Notifier
	logger           ports.Logger
}

type UseCaseDependencies struct {
	SubscriptionRepo ports.SubscriptionRepository
	TokenGenerator   ports.TokenGenerator
	Notifier         ports.Notifier
	Logger           ports.Logger
}

type SubscribeParams struct {
	Email     string
	City      string
	Frequency Frequency
}

type ConfirmParams struct {
	Token string
}

type UnsubscribeParams struct {
	Token string
}

func NewUseCase(deps UseCaseDependencies) (*UseCase, error) {
	if deps.SubscriptionRepo == nil {
		return nil, errors.NewValidationError("subscription repository is required")
	}
	if deps.TokenGenerator == nil {
		return nil, errors.NewValidationError("token generator is required")
	}
	if deps.Notifier == nil {
		return nil, errors.NewValidationError("notifier is required")
	}
	if deps.Logger == nil {
		return nil, errors.NewValidationError("logger is required")
	}

	return &UseCase{
		subscriptionRepo: deps.SubscriptionRepo,
		tokenGenerator:   deps.TokenGenerator,
		notifier:         deps.Notifier,
		logger:           deps.Logger,
	}, nil
}

func (uc *UseCase) validateSubscribeParams(params SubscribeParams) error {
	if !validation.IsNotEmpty(params.Email) {
		return errors.NewValidationError("email is required")
	}
	if !validation.IsValidEmail(params.Email) {
		return errors.NewValidationError("invalid email format")
	}
	if !validation.IsNotEmpty(params.City) {
		return errors.NewValidationError("city is required")
	}
	if !params.Frequency.IsValid() {
		return errors.NewValidationError("invalid frequency")
	}
	return nil
}

// Subscribe creates a pending subscription and sends its confirmation email.
// If the email cannot be sent the subscription is removed again so the
// subscriber can retry with the same address and city.
func (uc *UseCase) Subscribe(ctx context.Context, params SubscribeParams) (*Subscription, error) {
	if err := uc.validateSubscribeParams(params); err != nil {
		return nil, err
	}

	email := validation.NormalizeEmail(params.Email)
	city := strings.TrimSpace(params.City)

	uc.logger.Debug("Processing subscription",
		ports.F("email", email),
		ports.F("city", city),
		ports.F("frequency", params.Frequency.String()))

	existing, err := uc.subscriptionRepo.FindByEmailAndCity(ctx, email, city)
	if err != nil && !errors.IsNotFoundError(err) {
		return nil, fmt.Errorf("check existing subscription: %w", err)
	}
	if existing != nil {
		return nil, errors.NewAlreadyExistsError(msgAlreadySubscribed)
	}

	subscription, err := uc.createWithFreshTokens(ctx, email, city, params.Frequency)
	if err != nil {
		return nil, err
	}

	msg := ports.ConfirmationMessage{
		Email: subscription.Email,
		City:  subscription.City,
		Token: subscription.ConfirmationToken,
	}
	if err := uc.notifier.SendConfirmation(ctx, msg); err != nil {
		uc.logger.Error("Failed to send confirmation email, rolling back subscription",
			ports.F("error", err),
			ports.F("email", email),
			ports.F("subscriptionID", subscription.ID))
		uc.rollback(ctx, subscription)
		return nil, fmt.Errorf("send confirmation email: %w", err)
	}

	uc.logger.Info("Subscription created",
		ports.F("subscriptionID", subscription.ID),
		ports.F("city", subscription.City),
		ports.F("frequency", subscription.Frequency.String()))
	return subscription, nil
}

func (uc *UseCase) createWithFreshTokens(ctx context.Context, email, city string, frequency Frequency) (*Subscription, error) {
	var lastErr error

	for attempt := 1; attempt <= maxTokenAttempts; attempt++ {
		confirmationToken, unsubscribeToken, err := uc.generateTokenPair()
		if err != nil {
			return nil, err
		}

		data := uc.convertToPortsSubscription(NewSubscription(email, city, frequency, confirmationToken, unsubscribeToken))
		err = uc.subscriptionRepo.Create(ctx, data)
		if err == nil {
			return uc.convertFromPortsSubscription(data), nil
		}
		if !errors.IsAlreadyExistsError(err) {
			return nil, fmt.Errorf("save subscription: %w", err)
		}

		// A concurrent Subscribe may have claimed the same pair between our
		// lookup and the insert; otherwise one of the tokens collided.
		if existing, findErr := uc.subscriptionRepo.FindByEmailAndCity(ctx, email, city); findErr == nil && existing != nil {
			return nil, errors.NewAlreadyExistsError(msgAlreadySubscribed)
		}

		uc.logger.Warn("Token collision on insert, regenerating",
			ports.F("attempt", attempt),
			ports.F("error", err))
		lastErr = err
	}

	return nil, errors.NewDatabaseError("could not allocate unique subscription tokens", lastErr)
}

func (uc *UseCase) generateTokenPair() (string, string, error) {
	confirmationToken, err := uc.tokenGenerator.Generate()
	if err != nil {
		return "", "", fmt.Errorf("generate confirmation token: %w", err)
	}

	for i := 0; i < maxTokenAttempts; i++ {
		unsubscribeToken, err := uc.tokenGenerator.Generate()
		if err != nil {
			return "", "", fmt.Errorf("generate unsubscribe token: %w", err)
		}
		if unsubscribeToken != confirmationToken {
			return confirmationToken, unsubscribeToken, nil
		}
	}

	return "", "", errors.NewDatabaseError("token generator returned identical tokens", nil)
}

func (uc *UseCase) rollback(ctx context.Context, subscription *Subscription) {
	// The caller's context may already be cancelled, which is often why the email failed.
	rollbackCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), rollbackTimeout)
	defer cancel()

	if err := uc.subscriptionRepo.Delete(rollbackCtx, subscription.ID); err != nil && !errors.IsNotFoundError(err) {
		uc.logger.Error("Failed to roll back subscription",
			ports.F("error", err),
			ports.F("subscriptionID", subscription.ID))
	}
}

// Confirm moves a pending subscription to confirmed. An unknown
// token and a token whose subscription is already confirmed are both rejected.
func (uc *UseCase) Confirm(ctx context.Context, params ConfirmParams) error {
	token := strings.TrimSpace(params.Token)
	if token == "" {
		return errors.NewValidationError("token is required")
	}

	data, err := uc.subscriptionRepo.FindPendingByConfirmationToken(ctx, token)
	if err != nil {
		if errors.IsNotFoundError(err) {
			return errors.NewTokenError(msgInvalidToken)
		}
		return fmt.Errorf("find subscription by confirmation token: %w", err)
	}

	if err := uc.subscriptionRepo.MarkConfirmed(ctx, data.ID); err != nil {
		if errors.IsNotFoundError(err) {
			return errors.NewTokenError(msgInvalidToken)
		}
		return fmt.Errorf("confirm subscription: %w", err)
	}

	uc.logger.Info("Subscription confirmed",
		ports.F("subscriptionID", data.ID),
		ports.F("city", data.City))
	return nil
}

// Unsubscribe permanently removes the subscription owning the token,
// whether or not it was confirmed.
func (uc *UseCase) Unsubscribe(ctx context.Context, params UnsubscribeParams) error {
	token := strings.TrimSpace(params.Token)
	if token == "" {
		return errors.NewValidationError("token is required")
	}

	data, err := uc.subscriptionRepo.FindByUnsubscribeToken(ctx, token)
	if err != nil {
		if errors.IsNotFoundError(err) {
			return errors.NewNotFoundError(msgTokenNotFound)
		}
		return fmt.Errorf("find subscription by unsubscribe token: %w", err)
	}

	if err := uc.subscriptionRepo.Delete(ctx, data.ID); err != nil {
		if errors.IsNotFoundError(err) {
			return errors.NewNotFoundError(msgTokenNotFound)
		}
		return fmt.Errorf("delete subscription: %w", err)
	}

	uc.logger.Info("Subscription removed",
		ports.F("subscriptionID", data.ID),
		ports.F("city", data.City))
	return nil
}

// ListConfirmedByFrequency returns the subscriptions a batch of the given cadence should notify
func (uc *UseCase) ListConfirmedByFrequency(ctx context.Context, frequency Frequency) ([]*Subscription, error) {
	if !frequency.IsValid() {
		return nil, errors.NewValidationError("invalid frequency")
	}

	subscriptionsData, err := uc.subscriptionRepo.ListConfirmedByFrequency(ctx, frequency.String())
	if err != nil {
		return nil, fmt.Errorf("list subscriptions for frequency %s: %w", frequency, err)
	}

	subscriptions := make([]*Subscription, len(subscriptionsData))
	for i, data := range subscriptionsData {
		subscriptions[i] = uc.convertFromPortsSubscription(data)
	}

	return subscriptions, nil
}

func (uc *UseCase) FindByEmailAndCity(ctx context.Context, email, city string) (*Subscription, error) {
	data, err := uc.subscriptionRepo.FindByEmailAndCity(ctx, validation.NormalizeEmail(email), strings.TrimSpace(city))
	if err != nil {
		return nil, err
	}
	return uc.convertFromPortsSubscription(data), nil
}

func (uc *UseCase) convertToPortsSubscription(sub *Subscription) *ports.SubscriptionData {
	return &ports.SubscriptionData{
		ID:                sub.ID,
		Email:             sub.Email,
		City:              sub.City,
		Frequency:         sub.Frequency.String(),
		Confirmed:         sub.Confirmed,
		ConfirmationToken: sub.ConfirmationToken,
		UnsubscribeToken:  sub.UnsubscribeToken,
		CreatedAt:         sub.CreatedAt,
		UpdatedAt:         sub.UpdatedAt,
	}
}

func (uc *UseCase) convertFromPortsSubscription(data *ports.SubscriptionData) *Subscription {
	return &Subscription{
		ID:                data.ID,
		Email:             data.Email,
		City:              data.City,
		Frequency:         FrequencyFromString(data.Frequency),
		Confirmed:         data.Confirmed,
		ConfirmationToken: data.ConfirmationToken,
		UnsubscribeToken:  data.UnsubscribeToken,
		CreatedAt:         data.CreatedAt,
		UpdatedAt:         data.UpdatedAt,
	}
}
