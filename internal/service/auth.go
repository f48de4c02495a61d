package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/athens-bank/athens/internal/appwrite"
	"github.com/athens-bank/athens/internal/dwolla"
	"github.com/athens-bank/athens/internal/metrics"
	"github.com/athens-bank/athens/internal/model"
	"github.com/athens-bank/athens/internal/store"
)

// SignUpInput carries everything required to open an account: identity
// credentials plus the KYC fields the payments network demands.
type SignUpInput struct {
	Email       string
	Password    string
	FirstName   string
	LastName    string
	Address     string
	City        string
	State       string
	PostalCode  string
	DateOfBirth string
	NationalID  string
}

// AuthService runs the sign-up, sign-in and sign-out sequences against the
// identity service and the payments network.
type AuthService struct {
	identity Identity
	funding  Funding
	users    Users
	metrics  metrics.Recorder
	logger   *slog.Logger
}

// NewAuthService wires an AuthService.
func NewAuthService(identity Identity, funding Funding, users Users, rec metrics.Recorder, logger *slog.Logger) *AuthService {
	return &AuthService{
		identity: identity,
		funding:  funding,
		users:    users,
		metrics:  rec,
		logger:   logger,
	}
}

// SignUp opens an identity account, registers a payments-network customer,
// persists the profile document and opens a session, in that order.
//
// There is no rollback: a failure after the account exists strands the
// earlier resources. Each stranded step is logged so an operator can
// reconcile by hand.
func (s *AuthService) SignUp(ctx context.Context, in SignUpInput) (*model.User, *model.Session, error) {
	name := in.FirstName + " " + in.LastName

	account, err := s.identity.CreateAccount(ctx, in.Email, in.Password, name)
	if err != nil {
		s.metrics.IncSignUp("failed")
		if errors.Is(err, appwrite.ErrAccountExists) {
			return nil, nil, ErrAccountExists
		}
		return nil, nil, err
	}

	customerURL, err := s.funding.CreateCustomer(ctx, dwolla.Customer{
		FirstName:   in.FirstName,
		LastName:    in.LastName,
		Email:       in.Email,
		Type:        dwolla.CustomerTypePersonal,
		Address1:    in.Address,
		City:        in.City,
		State:       in.State,
		PostalCode:  in.PostalCode,
		DateOfBirth: in.DateOfBirth,
		SSN:         in.NationalID,
	})
	if err != nil {
		s.metrics.IncSignUp("failed")
		s.logger.Error("sign-up stranded an identity account",
			slog.String("account_id", account.ID),
			slog.String("error", err.Error()))
		return nil, nil, err
	}

	user, err := s.users.Create(ctx, &model.User{
		AccountID:         account.ID,
		Email:             in.Email,
		FirstName:         in.FirstName,
		LastName:          in.LastName,
		Address:           in.Address,
		City:              in.City,
		State:             in.State,
		PostalCode:        in.PostalCode,
		DateOfBirth:       in.DateOfBirth,
		NationalID:        in.NationalID,
		DwollaCustomerID:  dwolla.CustomerIDFromURL(customerURL),
		DwollaCustomerURL: customerURL,
	})
	if err != nil {
		s.metrics.IncSignUp("failed")
		s.logger.Error("sign-up stranded an identity account and a customer",
			slog.String("account_id", account.ID),
			slog.String("customer_url", customerURL),
			slog.String("error", err.Error()))
		return nil, nil, err
	}

	session, err := s.identity.CreateEmailSession(ctx, in.Email, in.Password)
	if err != nil {
		s.metrics.IncSignUp("failed")
		s.logger.Error("sign-up completed but session creation failed",
			slog.String("account_id", account.ID),
			slog.String("error", err.Error()))
		return nil, nil, err
	}

	s.metrics.IncSignUp("success")
	s.logger.Info("user signed up", slog.String("account_id", account.ID))
	return user, session, nil
}

// SignIn opens a session and resolves the caller's profile document.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*model.User, *model.Session, error) {
	session, err := s.identity.CreateEmailSession(ctx, email, password)
	if err != nil {
		s.metrics.IncSignIn("failed")
		if errors.Is(err, appwrite.ErrInvalidCredentials) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}

	user, err := s.users.GetByAccountID(ctx, session.UserID)
	if err != nil {
		s.metrics.IncSignIn("failed")
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, nil, ErrUserNotFound
		}
		return nil, nil, err
	}

	s.metrics.IncSignIn("success")
	return user, session, nil
}

// SignOut invalidates the session behind the secret. Failure to reach the
// identity service is logged and swallowed: the caller clears its cookie
// either way.
func (s *AuthService) SignOut(ctx context.Context, secret string) {
	if err := s.identity.DeleteSession(ctx, secret); err != nil {
		s.logger.Warn("session deletion failed", slog.String("error", err.Error()))
	}
	s.metrics.IncSignOut()
}

// CurrentUser resolves a session secret to the profile document of its
// owner. An unusable secret maps to ErrNotAuthenticated.
func (s *AuthService) CurrentUser(ctx context.Context, secret string) (*model.User, error) {
	account, err := s.identity.AccountForSession(ctx, secret)
	if err != nil {
		if errors.Is(err, appwrite.ErrUnauthorized) {
			return nil, ErrNotAuthenticated
		}
		return nil, err
	}

	user, err := s.users.GetByAccountID(ctx, account.ID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}
