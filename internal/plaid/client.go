// Package plaid wraps the bank-data aggregation API: link tokens, public
// token exchange, account metadata, and processor tokens. Every call is a
// single remote POST whose real logic lives on the service side.
package plaid

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Link-token parameters are fixed for this application: one product, one
// country, one language. They are not configurable per user.
var (
	linkProducts     = []string{"auth"}
	linkCountryCodes = []string{"US"}
)

const linkLanguage = "en"

// ProcessorDwolla is the only processor this application requests tokens for.
const ProcessorDwolla = "dwolla"

// Sentinel errors mapped from the aggregation service's error codes.
var (
	ErrInvalidToken = errors.New("token rejected by aggregation service")
	ErrAuthFailed   = errors.New("aggregation service rejected credentials")
)

// Client talks to the aggregation service. Credentials ride in every
// request body, per the service's convention.
type Client struct {
	httpClient *http.Client
	baseURL    string
	clientID   string
	secret     string
}

// NewClient creates an aggregation-service client.
func NewClient(baseURL, clientID, secret string) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout:   10 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout: 10 * time.Second,
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		clientID: clientID,
		secret:   secret,
	}
}

// apiError is the aggregation service's error envelope.
type apiError struct {
	ErrorType      string `json:"error_type"`
	ErrorCode      string `json:"error_code"`
	ErrorMessage   string `json:"error_message"`
	DisplayMessage string `json:"display_message"`
}

func (e apiError) sentinel() error {
	switch e.ErrorCode {
	case "INVALID_PUBLIC_TOKEN", "INVALID_ACCESS_TOKEN", "INVALID_PROCESSOR_TOKEN":
		return ErrInvalidToken
	case "INVALID_API_KEYS", "UNAUTHORIZED":
		return ErrAuthFailed
	}
	return nil
}

// post executes one call, injecting the client credentials into the body.
func (c *Client) post(ctx context.Context, path string, body map[string]any, out any) error {
	body["client_id"] = c.clientID
	body["secret"] = c.secret

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("aggregation service request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr apiError
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err != nil {
			return fmt.Errorf("aggregation service error: %s", resp.Status)
		}
		if sentinel := apiErr.sentinel(); sentinel != nil {
			return fmt.Errorf("%w: %s", sentinel, apiErr.ErrorCode)
		}
		return fmt.Errorf("aggregation service error %s (%s): %s", apiErr.ErrorType, apiErr.ErrorCode, apiErr.ErrorMessage)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// CreateLinkToken issues a short-lived link token for the given user.
func (c *Client) CreateLinkToken(ctx context.Context, clientUserID, clientName string) (string, error) {
	body := map[string]any{
		"user":          map[string]string{"client_user_id": clientUserID},
		"client_name":   clientName,
		"products":      linkProducts,
		"language":      linkLanguage,
		"country_codes": linkCountryCodes,
	}

	var out struct {
		LinkToken string `json:"link_token"`
	}
	if err := c.post(ctx, "/link/token/create", body, &out); err != nil {
		return "", err
	}
	return out.LinkToken, nil
}

// ExchangeResult is the durable credential pair from a token exchange.
type ExchangeResult struct {
	AccessToken string `json:"access_token"`
	ItemID      string `json:"item_id"`
}

// ExchangePublicToken trades a public token for an access token and item id.
// The public token is consumed by this call and never persisted.
func (c *Client) ExchangePublicToken(ctx context.Context, publicToken string) (*ExchangeResult, error) {
	body := map[string]any{"public_token": publicToken}

	var out ExchangeResult
	if err := c.post(ctx, "/item/public_token/exchange", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Balances carries account balances as exact decimals. Values may be null
// on the wire for some account types.
type Balances struct {
	Available       *decimal.Decimal `json:"available"`
	Current         *decimal.Decimal `json:"current"`
	ISOCurrencyCode string           `json:"iso_currency_code"`
}

// Account is one account under a linked item.
type Account struct {
	AccountID    string   `json:"account_id"`
	Name         string   `json:"name"`
	OfficialName string   `json:"official_name"`
	Mask         string   `json:"mask"`
	Type         string   `json:"type"`
	Subtype      string   `json:"subtype"`
	Balances     Balances `json:"balances"`
}

// GetAccounts fetches the accounts reachable through an access token.
func (c *Client) GetAccounts(ctx context.Context, accessToken string) ([]Account, error) {
	body := map[string]any{"access_token": accessToken}

	var out struct {
		Accounts []Account `json:"accounts"`
	}
	if err := c.post(ctx, "/accounts/get", body, &out); err != nil {
		return nil, err
	}
	return out.Accounts, nil
}

// CreateProcessorToken mints a processor-scoped token for one account.
func (c *Client) CreateProcessorToken(ctx context.Context, accessToken, accountID, processor string) (string, error) {
	body := map[string]any{
		"access_token": accessToken,
		"account_id":   accountID,
		"processor":    processor,
	}

	var out struct {
		ProcessorToken string `json:"processor_token"`
	}
	if err := c.post(ctx, "/processor/token/create", body, &out); err != nil {
		return "", err
	}
	return out.ProcessorToken, nil
}
