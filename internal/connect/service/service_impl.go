package service

import (
	"context"
	"math"
	"strings"

	checkoutdomain "github.com/smallbiznis/checkout/internal/checkout/domain"
	"github.com/smallbiznis/checkout/internal/config"
	"github.com/smallbiznis/checkout/internal/connect/domain"
	"github.com/smallbiznis/checkout/internal/stripe"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log    *zap.Logger
	Client *stripe.Client
	Config config.Config
}

type service struct {
	log     *zap.Logger
	client  *stripe.Client
	baseURL string
}

func New(p Params) domain.Service {
	return &service{
		log:     p.Log.Named("connect.service"),
		client:  p.Client,
		baseURL: p.Config.BaseURL,
	}
}

func (s *service) CreateAccount(ctx context.Context, email, externalPartyID string) (domain.Account, error) {
	if strings.TrimSpace(email) == "" {
		return domain.Account{}, domain.ErrMissingEmail
	}
	if strings.TrimSpace(externalPartyID) == "" {
		return domain.Account{}, domain.ErrMissingExternalPartyID
	}

	account, err := s.client.CreateAccount(ctx, stripe.CreateAccountRequest{
		Email:           email,
		ExternalPartyID: externalPartyID,
	})
	if err != nil {
		return domain.Account{}, err
	}

	s.log.Info("connected account created",
		zap.String("account_id", account.ID),
		zap.String("external_party_id", externalPartyID))
	return domain.Account{ID: account.ID}, nil
}

func (s *service) CreateOnboardingLink(ctx context.Context, accountID string) (domain.OnboardingLink, error) {
	if strings.TrimSpace(accountID) == "" {
		return domain.OnboardingLink{}, domain.ErrMissingAccountID
	}

	link, err := s.client.CreateAccountLink(ctx, accountID,
		s.baseURL+"/onboarding_refresh.html",
		s.baseURL+"/onboarding_return.html")
	if err != nil {
		return domain.OnboardingLink{}, err
	}

	s.log.Info("onboarding link created", zap.String("account_id", accountID))
	return domain.OnboardingLink{URL: link.URL}, nil
}

func (s *service) Transfer(ctx context.Context, req domain.TransferRequest) (domain.Transfer, error) {
	if strings.TrimSpace(req.AccountID) == "" {
		return domain.Transfer{}, domain.ErrMissingAccountID
	}
	if req.Amount <= 0 {
		return domain.Transfer{}, domain.ErrInvalidAmount
	}

	minorUnits := MinorUnits(req.Amount)
	transfer, err := s.client.CreateTransfer(ctx, stripe.CreateTransferRequest{
		AccountID:      req.AccountID,
		Amount:         minorUnits,
		Currency:       checkoutdomain.Currency,
		TransferGroup:  req.OrderRef,
		IdempotencyKey: req.IdempotencyKey,
	})
	if err != nil {
		return domain.Transfer{}, err
	}

	s.log.Info("transfer created",
		zap.String("transfer_id", transfer.ID),
		zap.String("account_id", req.AccountID),
		zap.Int64("amount", minorUnits),
		zap.String("transfer_group", req.OrderRef))
	return domain.Transfer{
		ID:            transfer.ID,
		Amount:        transfer.Amount,
		Currency:      transfer.Currency,
		Destination:   transfer.Destination,
		TransferGroup: transfer.TransferGroup,
	}, nil
}

// MinorUnits converts a major-unit amount to centavos, rounding half away
// from zero.
func MinorUnits(major float64) int64 {
	return int64(math.Round(major * 100))
}
