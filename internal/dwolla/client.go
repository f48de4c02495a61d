// Package dwolla wraps the payments network: customer records and funding
// sources. The client holds an OAuth app token obtained with client
// credentials and refreshed on expiry.
package dwolla

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	contentType = "application/vnd.dwolla.v1.hal+json"

	// tokenSlack refreshes the app token slightly before the network
	// says it expires.
	tokenSlack = 60 * time.Second
)

// Sentinel errors mapped from the payments network's error codes.
var (
	ErrDuplicateResource = errors.New("payments network resource already exists")
	ErrValidation        = errors.New("payments network rejected the request")
	ErrAuthFailed        = errors.New("payments network rejected credentials")
	ErrNoLocation        = errors.New("payments network returned no resource location")
)

// Client talks to the payments network.
type Client struct {
	httpClient *http.Client
	baseURL    string
	key        string
	secret     string

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

// NewClient creates a payments-network client.
func NewClient(baseURL, key, secret string) *Client {
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
		baseURL: strings.TrimSuffix(baseURL, "/"),
		key:     key,
		secret:  secret,
	}
}

// apiError is the payments network's error envelope.
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e apiError) sentinel() error {
	switch e.Code {
	case "DuplicateResource":
		return ErrDuplicateResource
	case "ValidationError":
		return ErrValidation
	case "InvalidCredentials", "InvalidAccessToken", "ExpiredAccessToken":
		return ErrAuthFailed
	}
	return nil
}

// appToken returns a valid app token, fetching a fresh one when the cached
// token is missing or about to expire.
func (c *Client) appToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Now().Before(c.tokenExpiry) {
		return c.token, nil
	}

	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("build token request: %w", err)
	}
	req.SetBasicAuth(c.key, c.secret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("%w: token endpoint returned %s", ErrAuthFailed, resp.Status)
	}

	var out struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}

	c.token = out.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(out.ExpiresIn)*time.Second - tokenSlack)
	return c.token, nil
}

// post sends one authenticated request and returns the Location header,
// the network's convention for returning created resources.
func (c *Client) post(ctx context.Context, requestURL string, body any) (string, error) {
	token, err := c.appToken(ctx)
	if err != nil {
		return "", err
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, requestURL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", contentType)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Idempotency-Key", uuid.New().String())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("payments network request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr apiError
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err != nil {
			return "", fmt.Errorf("payments network error: %s", resp.Status)
		}
		if sentinel := apiErr.sentinel(); sentinel != nil {
			return "", fmt.Errorf("%w: %s", sentinel, apiErr.Message)
		}
		return "", fmt.Errorf("payments network error %s: %s", apiErr.Code, apiErr.Message)
	}

	location := resp.Header.Get("Location")
	if location == "" {
		return "", ErrNoLocation
	}
	return location, nil
}

// Customer is the personal-customer record created at sign-up.
type Customer struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	Type        string `json:"type"`
	Address1    string `json:"address1"`
	City        string `json:"city"`
	State       string `json:"state"`
	PostalCode  string `json:"postalCode"`
	DateOfBirth string `json:"dateOfBirth"`
	SSN         string `json:"ssn"`
}

// CustomerTypePersonal is the only customer type this application creates.
const CustomerTypePersonal = "personal"

// CreateCustomer registers a customer and returns its resource URL.
func (c *Client) CreateCustomer(ctx context.Context, customer Customer) (string, error) {
	if customer.Type == "" {
		customer.Type = CustomerTypePersonal
	}
	return c.post(ctx, c.baseURL+"/customers", customer)
}

// CreateFundingSource attaches a bank account to a customer through a
// processor token and returns the funding source URL.
func (c *Client) CreateFundingSource(ctx context.Context, customerURL, processorToken, name string) (string, error) {
	body := map[string]string{
		"plaidToken": processorToken,
		"name":       name,
	}
	return c.post(ctx, customerURL+"/funding-sources", body)
}

// CustomerIDFromURL extracts the customer id, the final path segment of a
// customer resource URL.
func CustomerIDFromURL(customerURL string) string {
	trimmed := strings.TrimSuffix(customerURL, "/")
	idx := strings.LastIndex(trimmed, "/")
	if idx < 0 {
		return trimmed
	}
	return trimmed[idx+1:]
}
