package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/athens-bank/athens/internal/appwrite"
	"github.com/athens-bank/athens/internal/dwolla"
	"github.com/athens-bank/athens/internal/metrics"
	"github.com/athens-bank/athens/internal/model"
	"github.com/athens-bank/athens/internal/store"
)

type fakeIdentity struct {
	accountErr error
	sessionErr error
	deleteErr  error

	accounts map[string]*appwrite.Account // by session secret
	deleted  []string
}

func (f *fakeIdentity) CreateAccount(_ context.Context, email, _, name string) (*appwrite.Account, error) {
	if f.accountErr != nil {
		return nil, f.accountErr
	}
	return &appwrite.Account{ID: "acc-1", Email: email, Name: name}, nil
}

func (f *fakeIdentity) CreateEmailSession(_ context.Context, _, _ string) (*model.Session, error) {
	if f.sessionErr != nil {
		return nil, f.sessionErr
	}
	return &model.Session{ID: "sess-1", UserID: "acc-1", Secret: "secret-1"}, nil
}

func (f *fakeIdentity) AccountForSession(_ context.Context, secret string) (*appwrite.Account, error) {
	account, ok := f.accounts[secret]
	if !ok {
		return nil, appwrite.ErrUnauthorized
	}
	return account, nil
}

func (f *fakeIdentity) DeleteSession(_ context.Context, secret string) error {
	f.deleted = append(f.deleted, secret)
	return f.deleteErr
}

type fakeFunding struct {
	customerErr error
	sourceErr   error

	customers   []dwolla.Customer
	sources     []string // processor tokens received
	sourceNames []string
	sourceURL   string
}

func (f *fakeFunding) CreateCustomer(_ context.Context, customer dwolla.Customer) (string, error) {
	if f.customerErr != nil {
		return "", f.customerErr
	}
	f.customers = append(f.customers, customer)
	return "https://pay.example.com/customers/cust-1", nil
}

func (f *fakeFunding) CreateFundingSource(_ context.Context, _, processorToken, name string) (string, error) {
	if f.sourceErr != nil {
		return "", f.sourceErr
	}
	f.sources = append(f.sources, processorToken)
	f.sourceNames = append(f.sourceNames, name)
	return f.sourceURL, nil
}

type fakeUsers struct {
	createErr error

	created []*model.User
	byID    map[string]*model.User
}

func (f *fakeUsers) Create(_ context.Context, user *model.User) (*model.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	out := *user
	out.DocumentID = "doc-1"
	f.created = append(f.created, &out)
	return &out, nil
}

func (f *fakeUsers) GetByAccountID(_ context.Context, accountID string) (*model.User, error) {
	user, ok := f.byID[accountID]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	return user, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func validSignUp() SignUpInput {
	return SignUpInput{
		Email:       "jess@example.com",
		Password:    "correct-horse",
		FirstName:   "Jess",
		LastName:    "Ngo",
		Address:     "1 Main St",
		City:        "Austin",
		State:       "TX",
		PostalCode:  "78701",
		DateOfBirth: "1991-04-02",
		NationalID:  "1234",
	}
}

func TestAuthServiceSignUp(t *testing.T) {
	t.Parallel()

	identity := &fakeIdentity{}
	funding := &fakeFunding{}
	users := &fakeUsers{}
	svc := NewAuthService(identity, funding, users, metrics.NewNoop(), testLogger())

	user, session, err := svc.SignUp(context.Background(), validSignUp())
	if err != nil {
		t.Fatalf("SignUp() error = %v", err)
	}
	if session.Secret != "secret-1" {
		t.Errorf("session secret = %q, want %q", session.Secret, "secret-1")
	}
	if user.DwollaCustomerID != "cust-1" {
		t.Errorf("customer id = %q, want %q", user.DwollaCustomerID, "cust-1")
	}
	if user.DwollaCustomerURL != "https://pay.example.com/customers/cust-1" {
		t.Errorf("customer url = %q", user.DwollaCustomerURL)
	}
	if len(funding.customers) != 1 {
		t.Fatalf("customers created = %d, want 1", len(funding.customers))
	}
	if got := funding.customers[0].Type; got != dwolla.CustomerTypePersonal {
		t.Errorf("customer type = %q, want %q", got, dwolla.CustomerTypePersonal)
	}
	if got := funding.customers[0].SSN; got != "1234" {
		t.Errorf("customer ssn = %q, want %q", got, "1234")
	}
}

func TestAuthServiceSignUpDuplicate(t *testing.T) {
	t.Parallel()

	identity := &fakeIdentity{accountErr: appwrite.ErrAccountExists}
	svc := NewAuthService(identity, &fakeFunding{}, &fakeUsers{}, metrics.NewNoop(), testLogger())

	_, _, err := svc.SignUp(context.Background(), validSignUp())
	if !errors.Is(err, ErrAccountExists) {
		t.Fatalf("SignUp() error = %v, want ErrAccountExists", err)
	}
}

func TestAuthServiceSignUpCustomerFailure(t *testing.T) {
	t.Parallel()

	// A customer failure after the account exists must not persist a
	// profile document.
	identity := &fakeIdentity{}
	funding := &fakeFunding{customerErr: errors.New("upstream down")}
	users := &fakeUsers{}
	svc := NewAuthService(identity, funding, users, metrics.NewNoop(), testLogger())

	_, _, err := svc.SignUp(context.Background(), validSignUp())
	if err == nil {
		t.Fatal("SignUp() error = nil, want failure")
	}
	if len(users.created) != 0 {
		t.Errorf("profile documents created = %d, want 0", len(users.created))
	}
}

func TestAuthServiceSignIn(t *testing.T) {
	t.Parallel()

	identity := &fakeIdentity{}
	users := &fakeUsers{byID: map[string]*model.User{
		"acc-1": {DocumentID: "doc-1", AccountID: "acc-1", Email: "jess@example.com"},
	}}
	svc := NewAuthService(identity, &fakeFunding{}, users, metrics.NewNoop(), testLogger())

	user, session, err := svc.SignIn(context.Background(), "jess@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("SignIn() error = %v", err)
	}
	if user.DocumentID != "doc-1" {
		t.Errorf("document id = %q, want %q", user.DocumentID, "doc-1")
	}
	if session.Secret != "secret-1" {
		t.Errorf("session secret = %q, want %q", session.Secret, "secret-1")
	}
}

func TestAuthServiceSignInBadCredentials(t *testing.T) {
	t.Parallel()

	identity := &fakeIdentity{sessionErr: appwrite.ErrInvalidCredentials}
	svc := NewAuthService(identity, &fakeFunding{}, &fakeUsers{}, metrics.NewNoop(), testLogger())

	_, _, err := svc.SignIn(context.Background(), "jess@example.com", "wrong")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("SignIn() error = %v, want ErrInvalidCredentials", err)
	}
}

func TestAuthServiceSignOutSwallowsFailure(t *testing.T) {
	t.Parallel()

	identity := &fakeIdentity{deleteErr: errors.New("upstream down")}
	svc := NewAuthService(identity, &fakeFunding{}, &fakeUsers{}, metrics.NewNoop(), testLogger())

	svc.SignOut(context.Background(), "secret-1")
	if len(identity.deleted) != 1 {
		t.Fatalf("delete attempts = %d, want 1", len(identity.deleted))
	}
}

func TestAuthServiceCurrentUser(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		secret  string
		wantErr error
	}{
		{name: "valid session", secret: "secret-1", wantErr: nil},
		{name: "unknown session", secret: "stale", wantErr: ErrNotAuthenticated},
	}

	identity := &fakeIdentity{accounts: map[string]*appwrite.Account{
		"secret-1": {ID: "acc-1", Email: "jess@example.com"},
	}}
	users := &fakeUsers{byID: map[string]*model.User{
		"acc-1": {DocumentID: "doc-1", AccountID: "acc-1"},
	}}
	svc := NewAuthService(identity, &fakeFunding{}, users, metrics.NewNoop(), testLogger())

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			user, err := svc.CurrentUser(context.Background(), tt.secret)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("CurrentUser() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && user.AccountID != "acc-1" {
				t.Errorf("account id = %q, want %q", user.AccountID, "acc-1")
			}
		})
	}
}
