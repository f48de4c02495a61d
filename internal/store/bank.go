package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/athens-bank/athens/internal/appwrite"
	"github.com/athens-bank/athens/internal/model"
)

// BankStore reads and writes bank account documents.
type BankStore struct {
	db           DocumentAPI
	databaseID   string
	collectionID string
}

// NewBankStore creates a BankStore bound to the bank collection.
func NewBankStore(db DocumentAPI, databaseID, collectionID string) *BankStore {
	return &BankStore{
		db:           db,
		databaseID:   databaseID,
		collectionID: collectionID,
	}
}

// bankDocument is the writable subset of a bank document. The access token
// is stored verbatim; see DESIGN.md.
type bankDocument struct {
	UserID           string `json:"userId"`
	BankID           string `json:"bankId"`
	AccountID        string `json:"accountId"`
	AccessToken      string `json:"accessToken"`
	FundingSourceURL string `json:"fundingSourceUrl"`
	ShareableID      string `json:"sharableId"`
}

// Create persists a bank account document and fills in the stored record.
func (s *BankStore) Create(ctx context.Context, bank *model.BankAccount) (*model.BankAccount, error) {
	doc := bankDocument{
		UserID:           bank.UserID,
		BankID:           bank.BankID,
		AccountID:        bank.AccountID,
		AccessToken:      bank.AccessToken,
		FundingSourceURL: bank.FundingSourceURL,
		ShareableID:      bank.ShareableID,
	}

	var stored model.BankAccount
	if err := s.db.CreateDocument(ctx, s.databaseID, s.collectionID, newDocumentID(), doc, &stored); err != nil {
		return nil, fmt.Errorf("create bank document: %w", err)
	}
	return &stored, nil
}

// ListByUser returns every bank linked by the given account id.
func (s *BankStore) ListByUser(ctx context.Context, accountID string) ([]model.BankAccount, error) {
	list, err := s.db.ListDocuments(ctx, s.databaseID, s.collectionID, []string{
		appwrite.QueryEqual("userId", accountID),
	})
	if err != nil {
		return nil, fmt.Errorf("query bank documents: %w", err)
	}

	banks := make([]model.BankAccount, 0, len(list.Documents))
	for _, raw := range list.Documents {
		var bank model.BankAccount
		if err := json.Unmarshal(raw, &bank); err != nil {
			return nil, fmt.Errorf("decode bank document: %w", err)
		}
		banks = append(banks, bank)
	}
	return banks, nil
}

// GetByDocumentID returns a single bank by its document id.
func (s *BankStore) GetByDocumentID(ctx context.Context, documentID string) (*model.BankAccount, error) {
	return s.getOne(ctx, appwrite.QueryEqual("$id", documentID), false)
}

// GetByAccountID returns the bank owning an aggregation-service account id.
// The lookup demands exactly one match: zero or several matches both resolve
// to ErrBankNotFound rather than an arbitrary pick.
func (s *BankStore) GetByAccountID(ctx context.Context, accountID string) (*model.BankAccount, error) {
	return s.getOne(ctx, appwrite.QueryEqual("accountId", accountID), true)
}

func (s *BankStore) getOne(ctx context.Context, query string, exactlyOne bool) (*model.BankAccount, error) {
	list, err := s.db.ListDocuments(ctx, s.databaseID, s.collectionID, []string{query})
	if err != nil {
		return nil, fmt.Errorf("query bank documents: %w", err)
	}
	if len(list.Documents) == 0 {
		return nil, ErrBankNotFound
	}
	if exactlyOne && list.Total != 1 {
		return nil, ErrBankNotFound
	}

	var bank model.BankAccount
	if err := json.Unmarshal(list.Documents[0], &bank); err != nil {
		return nil, fmt.Errorf("decode bank document: %w", err)
	}
	return &bank, nil
}
