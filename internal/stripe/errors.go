package stripe

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidSignature = errors.New("invalid_signature")
	ErrInvalidPayload   = errors.New("invalid_payload")
	ErrUnavailable      = errors.New("processor_unavailable")
)

// Stripe error types as returned in the error body.
const (
	ErrTypeCard           = "card_error"
	ErrTypeInvalidRequest = "invalid_request_error"
	ErrTypeAPI            = "api_error"
	ErrTypeAuthentication = "authentication_error"
	ErrTypeRateLimit      = "rate_limit_error"
)

// APIError is a request the processor rejected, with the original
// type/code/message triple preserved.
type APIError struct {
	Type    string
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("stripe: %s (%s): %s", e.Type, e.Code, e.Message)
	}
	return fmt.Sprintf("stripe: %s: %s", e.Type, e.Message)
}

func AsAPIError(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return nil
}
