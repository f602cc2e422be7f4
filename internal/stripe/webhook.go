package stripe

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
)

// SignatureHeader is the request header carrying the webhook signature.
const SignatureHeader = "Stripe-Signature"

// Webhook event types handled by the reconciliation engine.
const (
	EventPaymentIntentSucceeded      = "payment_intent.succeeded"
	EventPaymentIntentPaymentFailed  = "payment_intent.payment_failed"
	EventPaymentIntentCanceled       = "payment_intent.canceled"
	EventPaymentIntentRequiresAction = "payment_intent.requires_action"
	EventChargeDisputeCreated        = "charge.dispute.created"
)

type Event struct {
	ID      string    `json:"id"`
	Type    string    `json:"type"`
	Created int64     `json:"created"`
	Data    EventData `json:"data"`
}

type EventData struct {
	Object json.RawMessage `json:"object"`
}

type PaymentIntentObject struct {
	ID               string            `json:"id"`
	Amount           int64             `json:"amount"`
	Currency         string            `json:"currency"`
	Status           string            `json:"status"`
	Created          int64             `json:"created"`
	PaymentMethod    string            `json:"payment_method"`
	Metadata         map[string]string `json:"metadata"`
	LastPaymentError *PaymentError     `json:"last_payment_error"`
	NextAction       *NextAction       `json:"next_action"`
}

type PaymentError struct {
	Message string `json:"message"`
}

type NextAction struct {
	Type string `json:"type"`
}

type DisputeObject struct {
	ID     string `json:"id"`
	Charge string `json:"charge"`
	Amount int64  `json:"amount"`
	Reason string `json:"reason"`
}

// ConstructEvent verifies the signature over the raw payload and decodes the
// event. The payload must be the unmodified request body: re-serializing a
// parsed body breaks verification.
func ConstructEvent(payload []byte, sigHeader, secret string) (Event, error) {
	if err := verifySignature(payload, sigHeader, secret); err != nil {
		return Event{}, err
	}

	var event Event
	if err := json.Unmarshal(payload, &event); err != nil {
		return Event{}, ErrInvalidPayload
	}
	if strings.TrimSpace(event.ID) == "" || strings.TrimSpace(event.Type) == "" {
		return Event{}, ErrInvalidPayload
	}
	return event, nil
}

func verifySignature(payload []byte, sigHeader, secret string) error {
	timestamp, signatures, err := parseSignatureHeader(sigHeader)
	if err != nil {
		return ErrInvalidSignature
	}

	signedPayload := fmt.Sprintf("%s.%s", timestamp, string(payload))
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write([]byte(signedPayload))
	expected := hex.EncodeToString(mac.Sum(nil))

	for _, signature := range signatures {
		if hmac.Equal([]byte(signature), []byte(expected)) {
			return nil
		}
	}

	return ErrInvalidSignature
}

func parseSignatureHeader(header string) (string, []string, error) {
	parts := strings.Split(header, ",")
	var timestamp string
	signatures := []string{}
	for _, part := range parts {
		piece := strings.TrimSpace(part)
		if piece == "" {
			continue
		}
		keyValue := strings.SplitN(piece, "=", 2)
		if len(keyValue) != 2 {
			continue
		}
		key := strings.TrimSpace(keyValue[0])
		value := strings.TrimSpace(keyValue[1])
		if key == "t" {
			timestamp = value
		}
		if key == "v1" {
			signatures = append(signatures, value)
		}
	}
	if timestamp == "" || len(signatures) == 0 {
		return "", nil, ErrInvalidSignature
	}
	return timestamp, signatures, nil
}
