package stripe

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"testing"
)

func buildSignatureHeader(payload []byte, secret, timestamp string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write([]byte(timestamp + "." + string(payload)))
	return fmt.Sprintf("t=%s,v1=%s", timestamp, hex.EncodeToString(mac.Sum(nil)))
}

func TestConstructEventValid(t *testing.T) {
	secret := "whsec_test"
	payload := []byte(`{"id":"evt_1","type":"payment_intent.succeeded","created":1700000000,"data":{"object":{"id":"pi_1","amount":5000,"currency":"brl","status":"succeeded","created":1700000000}}}`)

	event, err := ConstructEvent(payload, buildSignatureHeader(payload, secret, "1700000000"), secret)
	if err != nil {
		t.Fatalf("ConstructEvent returned error: %v", err)
	}
	if event.ID != "evt_1" {
		t.Fatalf("expected event id evt_1, got %q", event.ID)
	}
	if event.Type != EventPaymentIntentSucceeded {
		t.Fatalf("unexpected event type %q", event.Type)
	}
}

func TestConstructEventTamperedPayload(t *testing.T) {
	secret := "whsec_test"
	payload := []byte(`{"id":"evt_1","type":"payment_intent.succeeded"}`)
	header := buildSignatureHeader(payload, secret, "1700000000")

	tampered := []byte(`{"id":"evt_1","type":"payment_intent.succeeded","amount":1}`)
	if _, err := ConstructEvent(tampered, header, secret); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}
}

func TestConstructEventWrongSecret(t *testing.T) {
	payload := []byte(`{"id":"evt_1","type":"payment_intent.succeeded"}`)
	header := buildSignatureHeader(payload, "whsec_other", "1700000000")

	if _, err := ConstructEvent(payload, header, "whsec_test"); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}
}

func TestConstructEventMalformedHeader(t *testing.T) {
	payload := []byte(`{"id":"evt_1","type":"payment_intent.succeeded"}`)
	for _, header := range []string{"", "t=123", "v1=abc", "garbage"} {
		if _, err := ConstructEvent(payload, header, "whsec_test"); !errors.Is(err, ErrInvalidSignature) {
			t.Fatalf("header %q: expected ErrInvalidSignature, got %v", header, err)
		}
	}
}

func TestConstructEventAcceptsAnyValidCandidate(t *testing.T) {
	secret := "whsec_test"
	payload := []byte(`{"id":"evt_1","type":"payment_intent.succeeded"}`)

	valid := buildSignatureHeader(payload, secret, "1700000000")
	header := "t=1700000000,v1=deadbeef," + valid[len("t=1700000000,"):]
	if _, err := ConstructEvent(payload, header, secret); err != nil {
		t.Fatalf("expected any matching v1 candidate to verify, got %v", err)
	}
}

func TestConstructEventInvalidJSON(t *testing.T) {
	secret := "whsec_test"
	payload := []byte(`not json`)
	header := buildSignatureHeader(payload, secret, "1700000000")

	if _, err := ConstructEvent(payload, header, secret); !errors.Is(err, ErrInvalidPayload) {
		t.Fatalf("expected ErrInvalidPayload, got %v", err)
	}
}

func TestConstructEventMissingIdentity(t *testing.T) {
	secret := "whsec_test"
	payload := []byte(`{"type":"payment_intent.succeeded"}`)
	header := buildSignatureHeader(payload, secret, "1700000000")

	if _, err := ConstructEvent(payload, header, secret); !errors.Is(err, ErrInvalidPayload) {
		t.Fatalf("expected ErrInvalidPayload, got %v", err)
	}
}
