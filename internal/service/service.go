// Package service owns the orchestration sequences: sign-up, sign-in,
// sign-out, and the bank-link exchange. Each sequence is a fixed chain of
// blocking remote calls; there are no retries, and a failure at any step
// surfaces as a typed error with no partial-state cleanup.
package service

import (
	"context"
	"errors"

	"github.com/athens-bank/athens/internal/appwrite"
	"github.com/athens-bank/athens/internal/dwolla"
	"github.com/athens-bank/athens/internal/model"
	"github.com/athens-bank/athens/internal/plaid"
)

// Service errors.
var (
	ErrAccountExists      = errors.New("account already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrUserNotFound       = errors.New("user not found")
	ErrBankNotFound       = errors.New("bank not found")
	ErrNoAccounts         = errors.New("linked item has no accounts")
	ErrNoFundingSource    = errors.New("funding source was not created")
)

// Identity is the slice of the identity client the services consume.
type Identity interface {
	CreateAccount(ctx context.Context, email, password, name string) (*appwrite.Account, error)
	CreateEmailSession(ctx context.Context, email, password string) (*model.Session, error)
	AccountForSession(ctx context.Context, secret string) (*appwrite.Account, error)
	DeleteSession(ctx context.Context, secret string) error
}

// Aggregator is the slice of the bank-data aggregation client in use.
type Aggregator interface {
	CreateLinkToken(ctx context.Context, clientUserID, clientName string) (string, error)
	ExchangePublicToken(ctx context.Context, publicToken string) (*plaid.ExchangeResult, error)
	GetAccounts(ctx context.Context, accessToken string) ([]plaid.Account, error)
	CreateProcessorToken(ctx context.Context, accessToken, accountID, processor string) (string, error)
}

// Funding is the slice of the payments-network client in use.
type Funding interface {
	CreateCustomer(ctx context.Context, customer dwolla.Customer) (string, error)
	CreateFundingSource(ctx context.Context, customerURL, processorToken, name string) (string, error)
}

// Users is the profile document store.
type Users interface {
	Create(ctx context.Context, user *model.User) (*model.User, error)
	GetByAccountID(ctx context.Context, accountID string) (*model.User, error)
}

// Banks is the bank document store.
type Banks interface {
	Create(ctx context.Context, bank *model.BankAccount) (*model.BankAccount, error)
	ListByUser(ctx context.Context, accountID string) ([]model.BankAccount, error)
	GetByDocumentID(ctx context.Context, documentID string) (*model.BankAccount, error)
	GetByAccountID(ctx context.Context, accountID string) (*model.BankAccount, error)
}

// RenderCache receives the revalidation signal after a link exchange.
type RenderCache interface {
	InvalidateHome(ctx context.Context, accountID string) error
}
