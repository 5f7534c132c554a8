package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"weathersub.app/internal/core/subscription"
	"weathersub.app/pkg/errors"
)

// SubscriptionRequest accepts both JSON and form bodies
type SubscriptionRequest struct {
	Email     string `json:"email" form:"email" binding:"required,email"`
	City      string `json:"city" form:"city" binding:"required"`
	Frequency string `json:"frequency" form:"frequency" binding:"required,frequency"`
}

type SuccessResponse struct {
	Message string `json:"message"`
}

// subscribe handles POST /api/subscribe requests
func (s *HTTPServerAdapter) subscribe(c *gin.Context) {
	var httpReq SubscriptionRequest
	if err := c.ShouldBind(&httpReq); err != nil {
		slog.Debug("Request binding error", "error", err)
		s.handleError(c, errors.NewValidationError("Invalid input"))
		return
	}

	params := subscription.SubscribeParams{
		Email:     httpReq.Email,
		City:      httpReq.City,
		Frequency: subscription.FrequencyFromString(httpReq.Frequency),
	}

	if _, err := s.subscriptionUseCase.Subscribe(c.Request.Context(), params); err != nil {
		slog.Error("Subscription error", "error", err, "email", httpReq.Email, "city", httpReq.City)
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Subscription successful. Confirmation email sent."})
}

// confirmSubscription handles GET /api/confirm/:token requests
func (s *HTTPServerAdapter) confirmSubscription(c *gin.Context) {
	token := c.Param("token")

	if err := s.subscriptionUseCase.Confirm(c.Request.Context(), subscription.ConfirmParams{Token: token}); err != nil {
		slog.Error("Confirmation error", "error", err)
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Subscription confirmed successfully"})
}

// unsubscribe handles GET /api/unsubscribe/:token requests
func (s *HTTPServerAdapter) unsubscribe(c *gin.Context) {
	token := c.Param("token")

	if err := s.subscriptionUseCase.Unsubscribe(c.Request.Context(), subscription.UnsubscribeParams{Token: token}); err != nil {
		slog.Error("Unsubscribe error", "error", err)
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Unsubscribed successfully"})
}
