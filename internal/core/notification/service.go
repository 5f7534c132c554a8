// Package notification renders subscriber emails and hands them to the mail transport.
package notification

import (
	"context"
	"sync/atomic"

	"weathersub.app/internal/ports"
	"weathersub.app/pkg/errors"
)

var _ ports.Notifier = (*Service)(nil)

// Service implements ports.Notifier. It must be opened before use.
type Service struct {
	emailProvider   ports.EmailProvider
	config          ports.ConfigProvider
	logger          ports.Logger
	verifyTransport bool

	opened atomic.Bool
}

type ServiceDependencies struct {
	EmailProvider ports.EmailProvider
	Config        ports.ConfigProvider
	Logger        ports.Logger
	// VerifyTransport makes Open check SMTP connectivity and credentials.
	VerifyTransport bool
}

func NewService(deps ServiceDependencies) (*Service, error) {
	if deps.EmailProvider == nil {
		return nil, errors.NewValidationError("email provider is required")
	}
	if deps.Config == nil {
		return nil, errors.NewValidationError("config is required")
	}
	if deps.Logger == nil {
		return nil, errors.NewValidationError("logger is required")
	}

	return &Service{
		emailProvider:   deps.EmailProvider,
		config:          deps.Config,
		logger:          deps.Logger,
		verifyTransport: deps.VerifyTransport,
	}, nil
}

// Open readies the service for sending. With transport verification enabled
// an unreachable or misconfigured mail server fails here rather than on the
// first subscriber.
func (s *Service) Open(ctx context.Context) error {
	if s.verifyTransport {
		if err := s.emailProvider.Verify(ctx); err != nil {
			return errors.NewEmailError("mail transport verification failed", err)
		}
		s.logger.Info("Mail transport verified")
	} else {
		s.logger.Warn("Mail transport verification skipped")
	}

	s.opened.Store(true)
	return nil
}

func (s *Service) IsOpen() bool {
	return s.opened.Load()
}

func (s *Service) SendConfirmation(ctx context.Context, msg ports.ConfirmationMessage) error {
	if !s.IsOpen() {
		return errors.NewConfigurationError("notifier is not open", nil)
	}
	if err := validateConfirmation(msg); err != nil {
		return err
	}

	params := buildConfirmationEmail(msg, s.config.GetAppConfig().BaseURL)
	if err := s.emailProvider.SendEmail(ctx, params); err != nil {
		s.logger.Error("Failed to send confirmation email",
			ports.F("error", err),
			ports.F("email", msg.Email),
			ports.F("city", msg.City))
		return errors.NewEmailError("failed to send confirmation email", err)
	}

	s.logger.Info("Confirmation email sent",
		ports.F("email", msg.Email),
		ports.F("city", msg.City))
	return nil
}

func (s *Service) SendWeatherUpdate(ctx context.Context, msg ports.WeatherUpdateMessage) error {
	if !s.IsOpen() {
		return errors.NewConfigurationError("notifier is not open", nil)
	}
	if err := validateWeatherUpdate(msg); err != nil {
		return err
	}

	params := buildWeatherUpdateEmail(msg, s.config.GetAppConfig().BaseURL)
	if err := s.emailProvider.SendEmail(ctx, params); err != nil {
		return errors.NewEmailError("failed to send weather update", err)
	}

	s.logger.Debug("Weather update sent",
		ports.F("email", msg.Email),
		ports.F("city", msg.City))
	return nil
}
