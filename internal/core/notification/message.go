package notification

import (
	"fmt"
	"html"
	"net/url"
	"strings"

	"weathersub.app/internal/ports"
	"weathersub.app/pkg/errors"
)

const (
	confirmPath     = "/api/confirm/"
	unsubscribePath = "/api/unsubscribe/"
)

// ConfirmationURL is the link a subscriber follows to confirm a subscription
func ConfirmationURL(baseURL, token string) string {
	return strings.TrimSuffix(baseURL, "/") + confirmPath + url.PathEscape(token)
}

// UnsubscribeURL is the link included in every weather update
func UnsubscribeURL(baseURL, token string) string {
	return strings.TrimSuffix(baseURL, "/") + unsubscribePath + url.PathEscape(token)
}

func validateConfirmation(msg ports.ConfirmationMessage) error {
	if strings.TrimSpace(msg.Email) == "" {
		return errors.NewValidationError("recipient email is required")
	}
	if strings.TrimSpace(msg.City) == "" {
		return errors.NewValidationError("city is required")
	}
	if strings.TrimSpace(msg.Token) == "" {
		return errors.NewValidationError("confirmation token is required")
	}
	return nil
}

func validateWeatherUpdate(msg ports.WeatherUpdateMessage) error {
	if strings.TrimSpace(msg.Email) == "" {
		return errors.NewValidationError("recipient email is required")
	}
	if strings.TrimSpace(msg.City) == "" {
		return errors.NewValidationError("city is required")
	}
	if strings.TrimSpace(msg.UnsubscribeToken) == "" {
		return errors.NewValidationError("unsubscribe token is required")
	}
	return nil
}

func buildConfirmationEmail(msg ports.ConfirmationMessage, baseURL string) ports.EmailParams {
	confirmURL := html.EscapeString(ConfirmationURL(baseURL, msg.Token))
	city := html.EscapeString(msg.City)

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
			<h2 style="color: #0066cc;">Weather Subscription Confirmation</h2>
			<p>Thank you for subscribing to weather updates for <strong>%s</strong>.</p>
			<p>Please click the link below to confirm your subscription:</p>
			<p>
				<a href="%s" style="display: inline-block; background-color: #0066cc; color: white; padding: 10px 20px; text-decoration: none; border-radius: 4px;">Confirm Subscription</a>
			</p>
			<p style="margin-top: 20px; font-size: 12px; color: #666;">
				If you did not request this subscription, you can ignore this email.
			</p>
			<p style="font-size: 12px; color: #666;">
				If the button above doesn't work, copy and paste this URL into your browser: %s
			</p>
		</div>`,
		city, confirmURL, confirmURL)

	return ports.EmailParams{
		To:      msg.Email,
		Subject: fmt.Sprintf("Confirm your weather subscription for %s", msg.City),
		Body:    body,
		IsHTML:  true,
	}
}

func buildWeatherUpdateEmail(msg ports.WeatherUpdateMessage, baseURL string) ports.EmailParams {
	unsubscribeURL := html.EscapeString(UnsubscribeURL(baseURL, msg.UnsubscribeToken))
	city := html.EscapeString(msg.City)

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
			<h2 style="color: #0066cc;">Weather Update for %s</h2>
			<div style="background-color: #f0f8ff; padding: 15px; border-radius: 8px; margin: 20px 0;">
				<p><strong>Temperature:</strong> %.1f°C</p>
				<p><strong>Humidity:</strong> %d%%</p>
				<p><strong>Conditions:</strong> %s</p>
			</div>
			<hr style="border: 0; border-top: 1px solid #eee; margin: 20px 0;">
			<p style="font-size: 12px; color: #666;">
				You are receiving this email because you subscribed to weather updates for %s.
				<br>
				<a href="%s" style="color: #0066cc;">Unsubscribe from weather updates</a>
			</p>
		</div>`,
		city,
		msg.Weather.Temperature,
		msg.Weather.Humidity,
		html.EscapeString(msg.Weather.Description),
		city,
		unsubscribeURL)

	return ports.EmailParams{
		To:      msg.Email,
		Subject: fmt.Sprintf("Weather Update for %s", msg.City),
		Body:    body,
		IsHTML:  true,
	}
}
