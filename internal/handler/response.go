package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"maestroai/internal/domain"
	"maestroai/internal/middleware"
)

// APIError holds error details in the response.
type APIError struct {
	Code    string `json:"code" example:"INVALID_IMAGE"`
	Message string `json:"message" example:"image could not be decoded: invalid base64"`
}

// ErrorResponse is the envelope for all error responses.
type ErrorResponse struct {
	Success bool      `json:"success" example:"false"`
	Error   *APIError `json:"error"`
}

// RespondError sends an error response with the given status code.
func RespondError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, ErrorResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: msg},
	})
}

// MapDomainError translates domain errors to HTTP status codes and error codes.
// Client errors carry the error text; server errors get a fixed message.
// A reply that still cannot be parsed after retries counts as the AI service
// being unavailable.
func MapDomainError(err error) (status int, code, msg string) {
	switch {
	case errors.Is(err, domain.ErrImageDecode):
		return http.StatusBadRequest, "INVALID_IMAGE", err.Error()
	case errors.Is(err, domain.ErrImageProcessing):
		return http.StatusUnprocessableEntity, "IMAGE_PROCESSING_FAILED", err.Error()
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, "VALIDATION_ERROR", err.Error()
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized"
	case errors.Is(err, domain.ErrLLM), errors.Is(err, domain.ErrResponseParse):
		return http.StatusServiceUnavailable, "AI_SERVICE_UNAVAILABLE", "AI service temporarily unavailable"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred"
	}
}

// HandleError maps a domain error and sends the appropriate error response.
func HandleError(c *gin.Context, err error) {
	status, code, msg := MapDomainError(err)
	logger := zerolog.Ctx(c.Request.Context())
	if status >= http.StatusInternalServerError {
		logger.Error().Err(err).
			Str("request_id", c.GetString(middleware.ContextKeyRequestID)).
			Str("code", code).
			Msg("request failed")
	} else {
		logger.Warn().Err(err).Str("code", code).Msg("request rejected")
	}
	RespondError(c, status, code, msg)
}
