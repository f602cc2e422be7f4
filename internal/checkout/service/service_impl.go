package service

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/google/uuid"
	"github.com/smallbiznis/checkout/internal/checkout/domain"
	"github.com/smallbiznis/checkout/internal/config"
	"github.com/smallbiznis/checkout/internal/stripe"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	maxOrderIDLength = 100
	maxEmailLength   = 254
)

type Params struct {
	fx.In

	Log    *zap.Logger
	Client *stripe.Client
	Config config.Config
}

type service struct {
	log         *zap.Logger
	client      *stripe.Client
	environment string
}

func New(p Params) domain.Service {
	return &service{
		log:         p.Log.Named("checkout.service"),
		client:      p.Client,
		environment: p.Config.Environment,
	}
}

func (s *service) CreateIntent(ctx context.Context, req domain.CreateIntentRequest) (domain.CreateIntentResponse, error) {
	if len(req.Items) == 0 {
		return domain.CreateIntentResponse{}, domain.NewValidationError("items", "required", "items are required")
	}

	amount := chargeableAmount(req.Items)
	if amount < domain.MinChargeAmount {
		return domain.CreateIntentResponse{}, domain.NewValidationError("amount", "below_minimum",
			fmt.Sprintf("amount must be at least %d", domain.MinChargeAmount))
	}
	if amount > domain.MaxChargeAmount {
		return domain.CreateIntentResponse{}, domain.NewValidationError("amount", "above_maximum",
			fmt.Sprintf("amount must not exceed %d", domain.MaxChargeAmount))
	}

	orderID := req.OrderID
	if orderID == "" {
		orderID = fmt.Sprintf("order_%s_%d", uuid.NewString(), time.Now().Unix())
	}
	if len(orderID) > maxOrderIDLength {
		return domain.CreateIntentResponse{}, domain.NewValidationError("orderId", "too_long", "orderId must not exceed 100 characters")
	}

	if req.CustomerEmail != "" {
		if len(req.CustomerEmail) > maxEmailLength || !validEmail(req.CustomerEmail) {
			return domain.CreateIntentResponse{}, domain.NewValidationError("customerEmail", "invalid_email", "customerEmail is not a valid email address")
		}
	}

	metadata := map[string]string{
		"order_id":    orderID,
		"created_via": "checkout_form",
		"environment": s.environment,
	}
	if req.CustomerEmail != "" {
		metadata["customer_email"] = req.CustomerEmail
	}
	if req.CustomerName != "" {
		metadata["customer_name"] = req.CustomerName
	}

	intent, err := s.client.CreatePaymentIntent(ctx, stripe.CreatePaymentIntentRequest{
		Amount:         amount,
		Currency:       domain.Currency,
		ReceiptEmail:   req.CustomerEmail,
		Metadata:       metadata,
		IdempotencyKey: IdempotencyKey(orderID, time.Now().UTC()),
	})
	if err != nil {
		if apiErr := stripe.AsAPIError(err); apiErr != nil {
			s.log.Warn("payment intent rejected",
				zap.String("order_id", orderID),
				zap.Int64("amount", amount),
				zap.String("error_type", apiErr.Type),
				zap.String("error_code", apiErr.Code))
			return domain.CreateIntentResponse{}, translateProcessorError(apiErr)
		}
		s.log.Error("payment intent failed",
			zap.String("order_id", orderID),
			zap.Int64("amount", amount),
			zap.Error(err))
		return domain.CreateIntentResponse{}, err
	}

	s.log.Info("payment intent created",
		zap.String("order_id", orderID),
		zap.String("payment_intent_id", intent.ID),
		zap.Int64("amount", amount))

	return domain.CreateIntentResponse{
		ClientSecret:  intent.ClientSecret,
		PaymentIntent: intent.ID,
		Amount:        amount,
		Currency:      domain.Currency,
		OrderID:       orderID,
	}, nil
}

// chargeableAmount sums item amounts, skipping any item outside (0, max].
func chargeableAmount(items []domain.Item) int64 {
	var total int64
	for _, item := range items {
		if item.Amount <= 0 || item.Amount > domain.MaxChargeAmount {
			continue
		}
		total += item.Amount
	}
	return total
}

// IdempotencyKey is stable for one order within one UTC day, so retried
// submissions of the same order reuse the processor-side intent.
func IdempotencyKey(orderID string, now time.Time) string {
	return orderID + ":create_pi:" + now.UTC().Format("2006-01-02")
}

func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return false
	}
	return addr.Address == email
}

func translateProcessorError(apiErr *stripe.APIError) error {
	out := &domain.ProcessorError{Type: apiErr.Type, Code: apiErr.Code}
	switch apiErr.Type {
	case stripe.ErrTypeCard:
		out.Message = apiErr.Message
		if out.Message == "" {
			out.Message = "Your card was declined."
		}
	case stripe.ErrTypeInvalidRequest:
		out.Message = "Invalid payment data."
	case stripe.ErrTypeAPI:
		out.Message = "Payment service temporarily unavailable. Please try again."
	case stripe.ErrTypeAuthentication:
		out.Message = "Payment processor authentication failed."
	case stripe.ErrTypeRateLimit:
		out.Message = "Too many payment attempts. Please wait a moment."
	default:
		out.Message = "Payment could not be processed."
	}
	return out
}
