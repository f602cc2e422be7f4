package domain

import "context"

// Charge bounds in minor units (centavos). The public config endpoint and the
// amount validation both read these constants so the advertised bounds can
// never drift from the enforced ones.
const (
	MinChargeAmount = 50
	MaxChargeAmount = 99_999_999
	Currency        = "brl"
)

type Item struct {
	ID     string `json:"id"`
	Amount int64  `json:"amount"`
}

type CreateIntentRequest struct {
	Items         []Item `json:"items"`
	OrderID       string `json:"orderId"`
	CustomerEmail string `json:"customerEmail"`
	CustomerName  string `json:"customerName"`
}

type CreateIntentResponse struct {
	ClientSecret  string `json:"clientSecret"`
	PaymentIntent string `json:"paymentIntentId"`
	Amount        int64  `json:"amount"`
	Currency      string `json:"currency"`
	OrderID       string `json:"orderId"`
}

type Service interface {
	CreateIntent(ctx context.Context, req CreateIntentRequest) (CreateIntentResponse, error)
}

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

func NewValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

// ProcessorError is a processor rejection translated for the caller. Message
// is safe to show an end user; Type and Code carry the processor's original
// classification.
type ProcessorError struct {
	Type    string `json:"type"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

func (e *ProcessorError) Error() string {
	return e.Message
}
