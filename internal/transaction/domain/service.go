package domain

import (
	"context"
	"errors"
)

type Service interface {
	// ProcessWebhook verifies and applies one inbound delivery. The payload
	// must be the raw request body.
	ProcessWebhook(ctx context.Context, payload []byte, signatureHeader string) error
	GetByID(ctx context.Context, id string) (*Transaction, error)
}

var (
	ErrMissingSignature = errors.New("missing_signature")
	ErrInvalidSignature = errors.New("invalid_signature")
	ErrInvalidPayload   = errors.New("invalid_payload")
	ErrNotFound         = errors.New("not_found")
)
