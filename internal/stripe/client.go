package stripe

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const defaultBaseURL = "https://api.stripe.com"

type PaymentIntent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
	Status       string `json:"status"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
}

type Account struct {
	ID string `json:"id"`
}

type AccountLink struct {
	URL string `json:"url"`
}

type Transfer struct {
	ID            string `json:"id"`
	Amount        int64  `json:"amount"`
	Currency      string `json:"currency"`
	Destination   string `json:"destination"`
	TransferGroup string `json:"transfer_group"`
	Created       int64  `json:"created"`
}

type apiErrorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Client is a thin form-encoded client for the Stripe REST API. It carries no
// business logic; callers own validation and amount computation.
type Client struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewClient(apiKey string) *Client {
	return NewClientWithBaseURL(apiKey, defaultBaseURL)
}

// NewClientWithBaseURL targets a non-default API host, e.g. a local stub.
func NewClientWithBaseURL(apiKey, baseURL string) *Client {
	return &Client{
		apiKey:  strings.TrimSpace(apiKey),
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 12 * time.Second},
	}
}

type CreatePaymentIntentRequest struct {
	Amount         int64
	Currency       string
	ReceiptEmail   string
	Metadata       map[string]string
	IdempotencyKey string
}

func (c *Client) CreatePaymentIntent(ctx context.Context, req CreatePaymentIntentRequest) (PaymentIntent, error) {
	values := url.Values{}
	values.Set("amount", strconv.FormatInt(req.Amount, 10))
	values.Set("currency", strings.ToLower(req.Currency))
	values.Set("payment_method_types[]", "card")
	if req.ReceiptEmail != "" {
		values.Set("receipt_email", req.ReceiptEmail)
	}
	for key, value := range req.Metadata {
		values.Set("metadata["+key+"]", value)
	}

	var intent PaymentIntent
	if err := c.doRequest(ctx, http.MethodPost, "/v1/payment_intents", values, req.IdempotencyKey, &intent); err != nil {
		return PaymentIntent{}, err
	}
	if intent.ID == "" {
		return PaymentIntent{}, ErrInvalidPayload
	}
	return intent, nil
}

type CreateAccountRequest struct {
	Email           string
	ExternalPartyID string
}

// CreateAccount creates an express account in Brazil requesting only the
// transfers capability.
func (c *Client) CreateAccount(ctx context.Context, req CreateAccountRequest) (Account, error) {
	values := url.Values{}
	values.Set("type", "express")
	values.Set("country", "BR")
	values.Set("email", req.Email)
	values.Set("capabilities[transfers][requested]", "true")
	values.Set("metadata[external_party_id]", req.ExternalPartyID)

	var account Account
	if err := c.doRequest(ctx, http.MethodPost, "/v1/accounts", values, "", &account); err != nil {
		return Account{}, err
	}
	if account.ID == "" {
		return Account{}, ErrInvalidPayload
	}
	return account, nil
}

func (c *Client) CreateAccountLink(ctx context.Context, accountID, refreshURL, returnURL string) (AccountLink, error) {
	values := url.Values{}
	values.Set("account", accountID)
	values.Set("type", "account_onboarding")
	values.Set("refresh_url", refreshURL)
	values.Set("return_url", returnURL)

	var link AccountLink
	if err := c.doRequest(ctx, http.MethodPost, "/v1/account_links", values, "", &link); err != nil {
		return AccountLink{}, err
	}
	if link.URL == "" {
		return AccountLink{}, ErrInvalidPayload
	}
	return link, nil
}

type CreateTransferRequest struct {
	AccountID      string
	Amount         int64
	Currency       string
	TransferGroup  string
	IdempotencyKey string
}

func (c *Client) CreateTransfer(ctx context.Context, req CreateTransferRequest) (Transfer, error) {
	values := url.Values{}
	values.Set("amount", strconv.FormatInt(req.Amount, 10))
	values.Set("currency", strings.ToLower(req.Currency))
	values.Set("destination", req.AccountID)
	if req.TransferGroup != "" {
		values.Set("transfer_group", req.TransferGroup)
	}

	var transfer Transfer
	if err := c.doRequest(ctx, http.MethodPost, "/v1/transfers", values, req.IdempotencyKey, &transfer); err != nil {
		return Transfer{}, err
	}
	if transfer.ID == "" {
		return Transfer{}, ErrInvalidPayload
	}
	return transfer, nil
}

func (c *Client) doRequest(
	ctx context.Context,
	method string,
	path string,
	values url.Values,
	idempotencyKey string,
	out any,
) error {
	if c.apiKey == "" {
		return &APIError{Type: ErrTypeAuthentication, Message: "missing api key"}
	}

	var bodyReader *strings.Reader
	if values != nil {
		bodyReader = strings.NewReader(values.Encode())
	} else {
		bodyReader = strings.NewReader("")
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if values != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		return errors.Join(ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var apiErr apiErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err != nil {
			return errors.Join(ErrUnavailable, err)
		}
		return &APIError{
			Type:    strings.TrimSpace(apiErr.Error.Type),
			Code:    strings.TrimSpace(apiErr.Error.Code),
			Message: strings.TrimSpace(apiErr.Error.Message),
		}
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
