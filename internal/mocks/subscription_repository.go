// Package mocks provides testify mocks for the ports interfaces.
package mocks

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"
	"weathersub.app/internal/ports"
)

// SubscriptionRepository is a mock of ports.SubscriptionRepository
type SubscriptionRepository struct {
	mock.Mock
}

// NewSubscriptionRepository creates a mock that asserts its expectations on cleanup
func NewSubscriptionRepository(t *testing.T) *SubscriptionRepository {
	m := &SubscriptionRepository{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *SubscriptionRepository) Create(ctx context.Context, sub *ports.SubscriptionData) error {
	args := m.Called(ctx, sub)
	return args.Error(0)
}

func (m *SubscriptionRepository) FindByID(ctx context.Context, id uint) (*ports.SubscriptionData, error) {
	args := m.Called(ctx, id)
	return subscriptionResult(args)
}

func (m *SubscriptionRepository) FindByEmailAndCity(ctx context.Context, email, city string) (*ports.SubscriptionData, error) {
	args := m.Called(ctx, email, city)
	return subscriptionResult(args)
}

func (m *SubscriptionRepository) FindPendingByConfirmationToken(ctx context.Context, token string) (*ports.SubscriptionData, error) {
	args := m.Called(ctx, token)
	return subscriptionResult(args)
}

func (m *SubscriptionRepository) FindByUnsubscribeToken(ctx context.Context, token string) (*ports.SubscriptionData, error) {
	args := m.Called(ctx, token)
	return subscriptionResult(args)
}

func (m *SubscriptionRepository) MarkConfirmed(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *SubscriptionRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *SubscriptionRepository) ListConfirmedByFrequency(ctx context.Context, frequency string) ([]*ports.SubscriptionData, error) {
	args := m.Called(ctx, frequency)
	if subs, ok := args.Get(0).([]*ports.SubscriptionData); ok {
		return subs, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *SubscriptionRepository) CountConfirmedByFrequency(ctx context.Context, frequency string) (int64, error) {
	args := m.Called(ctx, frequency)
	return args.Get(0).(int64), args.Error(1)
}

func subscriptionResult(args mock.Arguments) (*ports.SubscriptionData, error) {
	if sub, ok := args.Get(0).(*ports.SubscriptionData); ok {
		return sub, args.Error(1)
	}
	return nil, args.Error(1)
}

// TokenGenerator is a mock of ports.TokenGenerator
type TokenGenerator struct {
	mock.Mock
}

func NewTokenGenerator(t *testing.T) *TokenGenerator {
	m := &TokenGenerator{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *TokenGenerator) Generate() (string, error) {
	args := m.Called()
	return args.String(0), args.Error(1)
}
