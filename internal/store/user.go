package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/athens-bank/athens/internal/appwrite"
	"github.com/athens-bank/athens/internal/model"
)

// DocumentAPI is the slice of the identity client the stores consume.
type DocumentAPI interface {
	CreateDocument(ctx context.Context, databaseID, collectionID, documentID string, data, out any) error
	ListDocuments(ctx context.Context, databaseID, collectionID string, queries []string) (*appwrite.DocumentList, error)
}

// UserStore reads and writes user profile documents.
type UserStore struct {
	db           DocumentAPI
	databaseID   string
	collectionID string
}

// NewUserStore creates a UserStore bound to the profile collection.
func NewUserStore(db DocumentAPI, databaseID, collectionID string) *UserStore {
	return &UserStore{
		db:           db,
		databaseID:   databaseID,
		collectionID: collectionID,
	}
}

// userDocument is the writable subset of a profile document.
type userDocument struct {
	UserID            string `json:"userId"`
	Email             string `json:"email"`
	FirstName         string `json:"firstName"`
	LastName          string `json:"lastName"`
	Address           string `json:"address"`
	City              string `json:"city"`
	State             string `json:"state"`
	PostalCode        string `json:"postalCode"`
	DateOfBirth       string `json:"dateOfBirth"`
	NationalID        string `json:"nationalId"`
	DwollaCustomerID  string `json:"dwollaCustomerId"`
	DwollaCustomerURL string `json:"dwollaCustomerUrl"`
}

// Create persists the profile document and fills in the stored record.
func (s *UserStore) Create(ctx context.Context, user *model.User) (*model.User, error) {
	doc := userDocument{
		UserID:            user.AccountID,
		Email:             user.Email,
		FirstName:         user.FirstName,
		LastName:          user.LastName,
		Address:           user.Address,
		City:              user.City,
		State:             user.State,
		PostalCode:        user.PostalCode,
		DateOfBirth:       user.DateOfBirth,
		NationalID:        user.NationalID,
		DwollaCustomerID:  user.DwollaCustomerID,
		DwollaCustomerURL: user.DwollaCustomerURL,
	}

	var stored model.User
	if err := s.db.CreateDocument(ctx, s.databaseID, s.collectionID, newDocumentID(), doc, &stored); err != nil {
		return nil, fmt.Errorf("create user document: %w", err)
	}
	return &stored, nil
}

// GetByAccountID returns the profile for an identity account id.
// The query is expected, not guaranteed, to match at most once; the first
// document wins, mirroring how the collection is used.
func (s *UserStore) GetByAccountID(ctx context.Context, accountID string) (*model.User, error) {
	list, err := s.db.ListDocuments(ctx, s.databaseID, s.collectionID, []string{
		appwrite.QueryEqual("userId", accountID),
	})
	if err != nil {
		return nil, fmt.Errorf("query user documents: %w", err)
	}
	if len(list.Documents) == 0 {
		return nil, ErrUserNotFound
	}

	var user model.User
	if err := json.Unmarshal(list.Documents[0], &user); err != nil {
		return nil, fmt.Errorf("decode user document: %w", err)
	}
	return &user, nil
}
