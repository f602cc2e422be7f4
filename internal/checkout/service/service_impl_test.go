package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/smallbiznis/checkout/internal/checkout/domain"
	"github.com/smallbiznis/checkout/internal/config"
	"github.com/smallbiznis/checkout/internal/stripe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService(client *stripe.Client) domain.Service {
	return New(Params{
		Log:    zap.NewNop(),
		Client: client,
		Config: config.Config{Environment: "test"},
	})
}

func validationCode(t *testing.T, err error) string {
	t.Helper()
	var vErr *domain.ValidationErrors
	require.True(t, errors.As(err, &vErr), "expected validation error, got %v", err)
	require.Len(t, vErr.Errors, 1)
	return vErr.Errors[0].Code
}

func TestCreateIntentRequiresItems(t *testing.T) {
	svc := newTestService(stripe.NewClient("sk_test"))

	_, err := svc.CreateIntent(context.Background(), domain.CreateIntentRequest{})
	assert.Equal(t, "required", validationCode(t, err))
}

func TestCreateIntentAmountBounds(t *testing.T) {
	svc := newTestService(stripe.NewClient("sk_test"))

	_, err := svc.CreateIntent(context.Background(), domain.CreateIntentRequest{
		Items: []domain.Item{{ID: "a", Amount: 49}},
	})
	assert.Equal(t, "below_minimum", validationCode(t, err))

	_, err = svc.CreateIntent(context.Background(), domain.CreateIntentRequest{
		Items: []domain.Item{
			{ID: "a", Amount: domain.MaxChargeAmount},
			{ID: "b", Amount: 100},
		},
	})
	assert.Equal(t, "above_maximum", validationCode(t, err))
}

func TestCreateIntentSkipsNonChargeableItems(t *testing.T) {
	items := []domain.Item{
		{ID: "a", Amount: 0},
		{ID: "b", Amount: -500},
		{ID: "c", Amount: domain.MaxChargeAmount + 1},
		{ID: "d", Amount: 2000},
		{ID: "e", Amount: 35},
	}
	assert.Equal(t, int64(2035), chargeableAmount(items))
}

func TestCreateIntentRejectsLongOrderID(t *testing.T) {
	svc := newTestService(stripe.NewClient("sk_test"))

	long := make([]byte, 101)
	for i := range long {
		long[i] = 'x'
	}
	_, err := svc.CreateIntent(context.Background(), domain.CreateIntentRequest{
		Items:   []domain.Item{{ID: "a", Amount: 5000}},
		OrderID: string(long),
	})
	assert.Equal(t, "too_long", validationCode(t, err))
}

func TestCreateIntentRejectsInvalidEmail(t *testing.T) {
	svc := newTestService(stripe.NewClient("sk_test"))

	for _, email := range []string{"not-an-email", "a@", "Display Name <a@b.com>"} {
		_, err := svc.CreateIntent(context.Background(), domain.CreateIntentRequest{
			Items:         []domain.Item{{ID: "a", Amount: 5000}},
			CustomerEmail: email,
		})
		assert.Equal(t, "invalid_email", validationCode(t, err), "email %q", email)
	}
}

func TestIdempotencyKeyStableWithinDay(t *testing.T) {
	morning := time.Date(2026, 9, 1, 3, 0, 0, 0, time.UTC)
	evening := time.Date(2026, 9, 1, 23, 59, 0, 0, time.UTC)
	nextDay := time.Date(2026, 9, 2, 0, 1, 0, 0, time.UTC)

	assert.Equal(t, "order_1:create_pi:2026-09-01", IdempotencyKey("order_1", morning))
	assert.Equal(t, IdempotencyKey("order_1", morning), IdempotencyKey("order_1", evening))
	assert.NotEqual(t, IdempotencyKey("order_1", morning), IdempotencyKey("order_1", nextDay))
	assert.NotEqual(t, IdempotencyKey("order_1", morning), IdempotencyKey("order_2", morning))
}

func TestCreateIntentSendsMetadataAndReceiptEmail(t *testing.T) {
	var gotForm map[string]string
	var gotIdem string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotForm = map[string]string{}
		for key := range r.PostForm {
			gotForm[key] = r.PostForm.Get(key)
		}
		gotIdem = r.Header.Get("Idempotency-Key")
		_, _ = w.Write([]byte(`{"id":"pi_1","client_secret":"pi_1_secret","status":"requires_payment_method","amount":2050,"currency":"brl"}`))
	}))
	defer srv.Close()

	svc := newTestService(stripe.NewClientWithBaseURL("sk_test", srv.URL))
	resp, err := svc.CreateIntent(context.Background(), domain.CreateIntentRequest{
		Items:         []domain.Item{{ID: "a", Amount: 2000}, {ID: "b", Amount: 50}},
		OrderID:       "order_42",
		CustomerEmail: "buyer@example.com",
		CustomerName:  "Ana",
	})
	require.NoError(t, err)

	assert.Equal(t, "pi_1", resp.PaymentIntent)
	assert.Equal(t, "pi_1_secret", resp.ClientSecret)
	assert.Equal(t, int64(2050), resp.Amount)
	assert.Equal(t, domain.Currency, resp.Currency)
	assert.Equal(t, "order_42", resp.OrderID)

	assert.Equal(t, "2050", gotForm["amount"])
	assert.Equal(t, "brl", gotForm["currency"])
	assert.Equal(t, "order_42", gotForm["metadata[order_id]"])
	assert.Equal(t, "checkout_form", gotForm["metadata[created_via]"])
	assert.Equal(t, "test", gotForm["metadata[environment]"])
	assert.Equal(t, "buyer@example.com", gotForm["metadata[customer_email]"])
	assert.Equal(t, "Ana", gotForm["metadata[customer_name]"])
	assert.Equal(t, "buyer@example.com", gotForm["receipt_email"])
	assert.Equal(t, IdempotencyKey("order_42", time.Now().UTC()), gotIdem)
}

func TestCreateIntentGeneratesOrderID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"pi_1","client_secret":"pi_1_secret","status":"requires_payment_method","amount":5000,"currency":"brl"}`))
	}))
	defer srv.Close()

	svc := newTestService(stripe.NewClientWithBaseURL("sk_test", srv.URL))
	resp, err := svc.CreateIntent(context.Background(), domain.CreateIntentRequest{
		Items: []domain.Item{{ID: "a", Amount: 5000}},
	})
	require.NoError(t, err)
	assert.Contains(t, resp.OrderID, "order_")
	assert.LessOrEqual(t, len(resp.OrderID), maxOrderIDLength)
}

func TestTranslateProcessorError(t *testing.T) {
	cases := []struct {
		apiType string
		message string
		want    string
	}{
		{stripe.ErrTypeCard, "Your card has insufficient funds.", "Your card has insufficient funds."},
		{stripe.ErrTypeInvalidRequest, "No such customer", "Invalid payment data."},
		{stripe.ErrTypeAPI, "internal", "Payment service temporarily unavailable. Please try again."},
		{stripe.ErrTypeAuthentication, "bad key", "Payment processor authentication failed."},
		{stripe.ErrTypeRateLimit, "slow down", "Too many payment attempts. Please wait a moment."},
		{"unknown_error", "whatever", "Payment could not be processed."},
	}

	for _, tc := range cases {
		err := translateProcessorError(&stripe.APIError{Type: tc.apiType, Message: tc.message})
		var pErr *domain.ProcessorError
		require.True(t, errors.As(err, &pErr), "type %s", tc.apiType)
		assert.Equal(t, tc.want, pErr.Message, "type %s", tc.apiType)
		assert.Equal(t, tc.apiType, pErr.Type)
	}
}

func TestCreateIntentDeclinedCard(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		_, _ = w.Write([]byte(`{"error":{"type":"card_error","code":"card_declined","message":"Your card was declined."}}`))
	}))
	defer srv.Close()

	svc := newTestService(stripe.NewClientWithBaseURL("sk_test", srv.URL))
	_, err := svc.CreateIntent(context.Background(), domain.CreateIntentRequest{
		Items: []domain.Item{{ID: "a", Amount: 5000}},
	})

	var pErr *domain.ProcessorError
	require.True(t, errors.As(err, &pErr))
	assert.Equal(t, "Your card was declined.", pErr.Message)
	assert.Equal(t, "card_declined", pErr.Code)
}
