package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	checkoutdomain "github.com/smallbiznis/checkout/internal/checkout/domain"
	connectdomain "github.com/smallbiznis/checkout/internal/connect/domain"
	"github.com/smallbiznis/checkout/internal/stripe"
	transactiondomain "github.com/smallbiznis/checkout/internal/transaction/domain"
)

var (
	ErrMethodNotAllowed = errors.New("method_not_allowed")
	ErrTooManyRequests  = errors.New("too_many_requests")
	ErrInternal         = errors.New("internal_error")
)

type successResponse struct {
	Success   bool   `json:"success"`
	Data      any    `json:"data"`
	Timestamp string `json:"timestamp"`
}

type errorResponse struct {
	Success   bool                             `json:"success"`
	Error     string                           `json:"error"`
	Details   []checkoutdomain.ValidationError `json:"details,omitempty"`
	Timestamp string                           `json:"timestamp"`
}

func respondData(c *gin.Context, status int, data any) {
	c.JSON(status, successResponse{
		Success:   true,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, message, details := mapError(lastErr.Err)
		c.AbortWithStatusJSON(status, errorResponse{
			Success:   false,
			Error:     message,
			Details:   details,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return checkoutdomain.NewValidationError("request", "invalid_request", "invalid request body")
}

func mapError(err error) (int, string, []checkoutdomain.ValidationError) {
	var vErr *checkoutdomain.ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return http.StatusBadRequest, "validation error", vErr.Errors
	}

	var pErr *checkoutdomain.ProcessorError
	if errors.As(err, &pErr) && pErr != nil {
		return http.StatusBadRequest, pErr.Message, nil
	}

	if field, code, message, ok := connectValidationError(err); ok {
		return http.StatusBadRequest, "validation error", []checkoutdomain.ValidationError{
			{Field: field, Code: code, Message: message},
		}
	}

	var apiErr *stripe.APIError
	if errors.As(err, &apiErr) && apiErr != nil {
		return http.StatusBadRequest, apiErr.Message, nil
	}

	switch {
	case errors.Is(err, transactiondomain.ErrMissingSignature):
		return http.StatusBadRequest, "missing signature", nil
	case errors.Is(err, transactiondomain.ErrInvalidSignature):
		return http.StatusBadRequest, "invalid signature", nil
	case errors.Is(err, transactiondomain.ErrInvalidPayload):
		return http.StatusBadRequest, "invalid payload", nil
	case errors.Is(err, stripe.ErrUnavailable):
		return http.StatusServiceUnavailable, "service unavailable", nil
	case errors.Is(err, ErrMethodNotAllowed):
		return http.StatusMethodNotAllowed, "method not allowed", nil
	case errors.Is(err, ErrTooManyRequests):
		return http.StatusTooManyRequests, "too many requests", nil
	default:
		return http.StatusInternalServerError, "internal server error", nil
	}
}

func connectValidationError(err error) (field, code, message string, ok bool) {
	switch {
	case errors.Is(err, connectdomain.ErrMissingEmail):
		return "email", "required", "email is required", true
	case errors.Is(err, connectdomain.ErrMissingExternalPartyID):
		return "externalPartyId", "required", "externalPartyId is required", true
	case errors.Is(err, connectdomain.ErrMissingAccountID):
		return "accountId", "required", "accountId is required", true
	case errors.Is(err, connectdomain.ErrInvalidAmount):
		return "amount", "invalid_amount", "amount must be greater than zero", true
	default:
		return "", "", "", false
	}
}
