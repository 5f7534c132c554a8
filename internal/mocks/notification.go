package mocks

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"
	"weathersub.app/internal/ports"
)

// EmailProvider is a mock of ports.EmailProvider
type EmailProvider struct {
	mock.Mock
}

func NewEmailProvider(t *testing.T) *EmailProvider {
	m := &EmailProvider{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *EmailProvider) SendEmail(ctx context.Context, params ports.EmailParams) error {
	args := m.Called(ctx, params)
	return args.Error(0)
}

func (m *EmailProvider) Verify(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// Notifier is a mock of ports.Notifier
type Notifier struct {
	mock.Mock
}

func NewNotifier(t *testing.T) *Notifier {
	m := &Notifier{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *Notifier) SendConfirmation(ctx context.Context, msg ports.ConfirmationMessage) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *Notifier) SendWeatherUpdate(ctx context.Context, msg ports.WeatherUpdateMessage) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}
