package api

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"weathersub.app/internal/core/subscription"
	"weathersub.app/pkg/errors"
)

func TestSubscribe_JSON(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.subscriptions.On("Subscribe", mock.Anything, subscription.SubscribeParams{
		Email:     "user@example.com",
		City:      "Kyiv",
		Frequency: subscription.FrequencyHourly,
	}).Return(&subscription.Subscription{ID: 1}, nil).Once()

	w := ts.do(http.MethodPost, "/api/subscribe", "application/json",
		`{"email":"user@example.com","city":"Kyiv","frequency":"hourly"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Subscription successful. Confirmation email sent."}`, w.Body.String())
}

func TestSubscribe_Form(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.subscriptions.On("Subscribe", mock.Anything, subscription.SubscribeParams{
		Email:     "user@example.com",
		City:      "Lviv",
		Frequency: subscription.FrequencyDaily,
	}).Return(&subscription.Subscription{ID: 2}, nil).Once()

	form := url.Values{"email": {"user@example.com"}, "city": {"Lviv"}, "frequency": {"daily"}}
	w := ts.do(http.MethodPost, "/api/subscribe", "application/x-www-form-urlencoded", form.Encode())

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSubscribe_InvalidInput(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "MissingEmail", body: `{"city":"Kyiv","frequency":"hourly"}`},
		{name: "BadEmail", body: `{"email":"not-an-email","city":"Kyiv","frequency":"hourly"}`},
		{name: "MissingCity", body: `{"email":"user@example.com","frequency":"hourly"}`},
		{name: "UnknownFrequency", body: `{"email":"user@example.com","city":"Kyiv","frequency":"weekly"}`},
		{name: "Malformed", body: `{"email":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t, nil)
			w := ts.do(http.MethodPost, "/api/subscribe", "application/json", tt.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.JSONEq(t, `{"error":"Invalid input"}`, w.Body.String())
			ts.subscriptions.AssertNotCalled(t, "Subscribe", mock.Anything, mock.Anything)
		})
	}
}

func TestSubscribe_ErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		status   int
		expected string
	}{
		{name: "Duplicate", err: errors.NewAlreadyExistsError("Email already subscribed"), status: http.StatusConflict, expected: `{"error":"Email already subscribed"}`},
		{name: "EmailFailure", err: errors.NewEmailError("failed to send confirmation email", nil), status: http.StatusServiceUnavailable, expected: `{"error":"Unable to send email"}`},
		{name: "Database", err: errors.NewDatabaseError("insert failed", nil), status: http.StatusInternalServerError, expected: `{"error":"Internal server error"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t, nil)
			ts.subscriptions.On("Subscribe", mock.Anything, mock.Anything).Return(nil, tt.err).Once()

			w := ts.do(http.MethodPost, "/api/subscribe", "application/json",
				`{"email":"user@example.com","city":"Kyiv","frequency":"daily"}`)

			assert.Equal(t, tt.status, w.Code)
			assert.JSONEq(t, tt.expected, w.Body.String())
		})
	}
}

func TestConfirm(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.subscriptions.On("Confirm", mock.Anything, subscription.ConfirmParams{Token: "good"}).Return(nil).Once()
	ts.subscriptions.On("Confirm", mock.Anything, subscription.ConfirmParams{Token: "bad"}).
		Return(errors.NewTokenError("Invalid token")).Once()

	w := ts.do(http.MethodGet, "/api/confirm/good", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Subscription confirmed successfully"}`, w.Body.String())

	w = ts.do(http.MethodGet, "/api/confirm/bad", "", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Invalid token"}`, w.Body.String())
}

func TestUnsubscribe(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.subscriptions.On("Unsubscribe", mock.Anything, subscription.UnsubscribeParams{Token: "known"}).Return(nil).Once()
	ts.subscriptions.On("Unsubscribe", mock.Anything, subscription.UnsubscribeParams{Token: "gone"}).
		Return(errors.NewNotFoundError("Token not found")).Once()

	w := ts.do(http.MethodGet, "/api/unsubscribe/known", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Unsubscribed successfully"}`, w.Body.String())

	w = ts.do(http.MethodGet, "/api/unsubscribe/gone", "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Token not found"}`, w.Body.String())
}
