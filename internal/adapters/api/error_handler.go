package api

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"weathersub.app/pkg/errors"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

type errorMapping struct {
	status int
	// message replaces the error text when set, so internals are not leaked.
	message string
}

var errorMappings = map[errors.ErrorType]errorMapping{
	errors.ErrorTypeValidation:    {status: http.StatusBadRequest},
	errors.ErrorTypeToken:         {status: http.StatusBadRequest},
	errors.ErrorTypeNotFound:      {status: http.StatusNotFound},
	errors.ErrorTypeAlreadyExists: {status: http.StatusConflict},
	errors.ErrorTypeExternalAPI:   {status: http.StatusServiceUnavailable, message: "External service unavailable"},
	errors.ErrorTypeEmail:         {status: http.StatusServiceUnavailable, message: "Unable to send email"},
	errors.ErrorTypeDatabase:      {status: http.StatusInternalServerError, message: "Internal server error"},
}

// statusFor maps an error to its HTTP status and client-facing message.
func statusFor(err error) (int, string) {
	var appErr *errors.AppError
	if !stderrors.As(err, &appErr) {
		return http.StatusInternalServerError, "Internal server error"
	}

	mapping, ok := errorMappings[appErr.Type]
	if !ok {
		return http.StatusInternalServerError, "Internal server error"
	}
	if mapping.message != "" {
		return mapping.status, mapping.message
	}
	return mapping.status, appErr.Message
}

func (s *HTTPServerAdapter) handleError(c *gin.Context, err error) {
	status, message := statusFor(err)
	c.JSON(status, ErrorResponse{Error: message})
}
