// Package appwrite is a thin client for the hosted identity service:
// account creation, password sessions, and the document database used as
// the profile/bank store. All durability and consistency guarantees are
// owned by the remote service; this package only shapes requests and maps
// the error taxonomy.
package appwrite

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"
)

const (
	clientTimeout         = 30 * time.Second
	dialTimeout           = 10 * time.Second
	tlsHandshakeTimeout   = 10 * time.Second
	responseHeaderTimeout = 15 * time.Second
)

// Header names recognized by the identity service.
const (
	headerProject = "X-Appwrite-Project"
	headerKey     = "X-Appwrite-Key"
	headerSession = "X-Appwrite-Session"
)

// Client talks to the identity service. A zero session means admin scope
// (API key); WithSession derives a client scoped to one user's session.
type Client struct {
	httpClient *http.Client
	endpoint   string
	projectID  string
	apiKey     string
	session    string
}

// NewClient creates an admin-scoped identity client.
func NewClient(endpoint, projectID, apiKey string) *Client {
	return &Client{
		httpClient: newHTTPClient(),
		endpoint:   strings.TrimSuffix(endpoint, "/"),
		projectID:  projectID,
		apiKey:     apiKey,
	}
}

// newHTTPClient builds an HTTP client with explicit timeouts.
func newHTTPClient() *http.Client {
	return &http.Client{
		Timeout: clientTimeout,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   dialTimeout,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout:   tlsHandshakeTimeout,
			ResponseHeaderTimeout: responseHeaderTimeout,
			MaxIdleConns:          100,
			MaxIdleConnsPerHost:   10,
			IdleConnTimeout:       90 * time.Second,
		},
	}
}

// WithSession returns a copy of the client authenticated as the session
// owner instead of the admin API key.
func (c *Client) WithSession(secret string) *Client {
	derived := *c
	derived.apiKey = ""
	derived.session = secret
	return &derived
}

// do executes one request against the identity service, decoding the
// response into out when out is non-nil.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(payload)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint+path, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(headerProject, c.projectID)
	if c.session != "" {
		req.Header.Set(headerSession, c.session)
	} else {
		req.Header.Set(headerKey, c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("identity service request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr apiError
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err != nil {
			apiErr = apiError{Message: resp.Status, Code: resp.StatusCode}
		}
		if apiErr.Code == 0 {
			apiErr.Code = resp.StatusCode
		}
		if sentinel := sentinelFor(apiErr); sentinel != nil {
			return fmt.Errorf("%w: %s", sentinel, apiErr.Message)
		}
		return fmt.Errorf("identity service error %d (%s): %s", apiErr.Code, apiErr.Type, apiErr.Message)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
