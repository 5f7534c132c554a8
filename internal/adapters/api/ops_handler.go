package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"weathersub.app/internal/core/subscription"
	"weathersub.app/internal/ports"
	"weathersub.app/pkg/errors"
)

type HealthResponse struct {
	Status     string                        `json:"status"`
	Components map[string]ports.HealthStatus `json:"components"`
}

type BatchResponse struct {
	Frequency  string `json:"frequency"`
	Total      int    `json:"total"`
	Sent       int    `json:"sent"`
	Failed     int    `json:"failed"`
	Aborted    bool   `json:"aborted"`
	DurationMS int64  `json:"duration_ms"`
}

// getHealth handles GET /api/health. Any unhealthy component turns the
// response into a 503.
func (s *HTTPServerAdapter) getHealth(c *gin.Context) {
	results := s.healthChecker.CheckAll(c.Request.Context())

	status := ports.HealthStatusHealthy
	code := http.StatusOK
	for _, component := range results {
		if component.Status != ports.HealthStatusHealthy {
			status = ports.HealthStatusUnhealthy
			code = http.StatusServiceUnavailable
			break
		}
	}

	c.JSON(code, HealthResponse{Status: status, Components: results})
}

// getMetrics handles GET /api/metrics requests
func (s *HTTPServerAdapter) getMetrics(c *gin.Context) {
	metrics, err := s.metricsCollector.GetMetrics(c.Request.Context())
	if err != nil {
		slog.Error("Error getting metrics", "error", err)
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, metrics)
}

// triggerBatch handles POST /api/dispatch/:frequency
func (s *HTTPServerAdapter) triggerBatch(c *gin.Context) {
	frequency := subscription.FrequencyFromString(c.Param("frequency"))
	if !frequency.IsValid() {
		s.handleError(c, errors.NewValidationError("frequency must be hourly or daily"))
		return
	}

	result, err := s.batchTrigger.RunNow(c.Request.Context(), frequency)
	if err != nil {
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, BatchResponse{
		Frequency:  result.Frequency.String(),
		Total:      result.Total,
		Sent:       result.Sent,
		Failed:     result.Failed,
		Aborted:    result.Aborted,
		DurationMS: result.Duration.Round(time.Millisecond).Milliseconds(),
	})
}
