package domain

import (
	"context"
	"errors"
)

var (
	ErrMissingEmail           = errors.New("missing_email")
	ErrMissingExternalPartyID = errors.New("missing_external_party_id")
	ErrMissingAccountID       = errors.New("missing_account_id")
	ErrInvalidAmount          = errors.New("invalid_amount")
)

type Account struct {
	ID string `json:"accountId"`
}

type OnboardingLink struct {
	URL string `json:"url"`
}

type TransferRequest struct {
	AccountID      string
	Amount         float64
	OrderRef       string
	IdempotencyKey string
}

type Transfer struct {
	ID            string `json:"transferId"`
	Amount        int64  `json:"amount"`
	Currency      string `json:"currency"`
	Destination   string `json:"destination"`
	TransferGroup string `json:"transferGroup,omitempty"`
}

type Service interface {
	CreateAccount(ctx context.Context, email, externalPartyID string) (Account, error)
	CreateOnboardingLink(ctx context.Context, accountID string) (OnboardingLink, error)
	Transfer(ctx context.Context, req TransferRequest) (Transfer, error)
}
