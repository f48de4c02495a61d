package appwrite

import (
	"context"

	"github.com/athens-bank/athens/internal/model"
)

// Account is an identity-service account record.
type Account struct {
	ID    string `json:"$id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// uniqueID asks the service to mint the account id server-side.
const uniqueID = "unique()"

// CreateAccount registers a new account and returns it.
// Fails with ErrAccountExists when the email is taken.
func (c *Client) CreateAccount(ctx context.Context, email, password, name string) (*Account, error) {
	body := map[string]string{
		"userId":   uniqueID,
		"email":    email,
		"password": password,
		"name":     name,
	}
	var account Account
	if err := c.do(ctx, "POST", "/account", body, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

// CreateEmailSession opens a password session and returns its secret.
// Fails with ErrInvalidCredentials on a bad email/password pair.
func (c *Client) CreateEmailSession(ctx context.Context, email, password string) (*model.Session, error) {
	body := map[string]string{
		"email":    email,
		"password": password,
	}
	var session model.Session
	if err := c.do(ctx, "POST", "/account/sessions/email", body, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// GetAccount returns the account owning the client's session.
// Requires a session-scoped client; fails with ErrUnauthorized otherwise.
func (c *Client) GetAccount(ctx context.Context) (*Account, error) {
	var account Account
	if err := c.do(ctx, "GET", "/account", nil, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

// DeleteCurrentSession invalidates the session the client is scoped to.
// Callers treat failures as ignorable; the cookie is cleared regardless.
func (c *Client) DeleteCurrentSession(ctx context.Context) error {
	return c.do(ctx, "DELETE", "/account/sessions/current", nil, nil)
}

// AccountForSession resolves the account owning a session secret.
func (c *Client) AccountForSession(ctx context.Context, secret string) (*Account, error) {
	return c.WithSession(secret).GetAccount(ctx)
}

// DeleteSession invalidates the session behind the given secret.
func (c *Client) DeleteSession(ctx context.Context, secret string) error {
	return c.WithSession(secret).DeleteCurrentSession(ctx)
}
