package appwrite

import "errors"

// Sentinel errors surfaced by the identity service.
var (
	ErrAccountExists      = errors.New("account already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthorized       = errors.New("session missing or expired")
	ErrNotFound           = errors.New("resource not found")
	ErrValidation         = errors.New("invalid request")
)

// apiError is the identity service's error envelope.
type apiError struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
	Type    string `json:"type"`
}

// sentinelFor maps the remote error taxonomy onto package sentinels so
// callers can errors.Is instead of matching strings.
func sentinelFor(e apiError) error {
	switch e.Type {
	case "user_already_exists", "user_email_already_exists":
		return ErrAccountExists
	case "user_invalid_credentials":
		return ErrInvalidCredentials
	}
	switch e.Code {
	case 401:
		return ErrUnauthorized
	case 404:
		return ErrNotFound
	case 400:
		return ErrValidation
	}
	return nil
}
