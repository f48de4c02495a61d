package store

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/athens-bank/athens/internal/appwrite"
	"github.com/athens-bank/athens/internal/model"
)

// fakeDB is an in-memory DocumentAPI for store tests.
type fakeDB struct {
	total     int64
	documents []json.RawMessage
	listErr   error

	createdDocID string
	createdData  any
}

func (f *fakeDB) CreateDocument(ctx context.Context, databaseID, collectionID, documentID string, data, out any) error {
	f.createdDocID = documentID
	f.createdData = data

	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}
	var merged map[string]any
	if err := json.Unmarshal(payload, &merged); err != nil {
		return err
	}
	merged["$id"] = documentID
	stored, err := json.Marshal(merged)
	if err != nil {
		return err
	}
	return json.Unmarshal(stored, out)
}

func (f *fakeDB) ListDocuments(ctx context.Context, databaseID, collectionID string, queries []string) (*appwrite.DocumentList, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return &appwrite.DocumentList{Total: f.total, Documents: f.documents}, nil
}

func bankJSON(t *testing.T, bank model.BankAccount) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(bank)
	if err != nil {
		t.Fatalf("marshal bank: %v", err)
	}
	return raw
}

func TestBankStore_Create(t *testing.T) {
	t.Parallel()

	db := &fakeDB{}
	s := NewBankStore(db, "db", "banks")

	stored, err := s.Create(context.Background(), &model.BankAccount{
		UserID:           "acc_1",
		BankID:           "item_1",
		AccountID:        "plaid_acct_1",
		AccessToken:      "access-sandbox-token",
		FundingSourceURL: "https://api-sandbox.dwolla.com/funding-sources/fs_1",
		ShareableID:      "c2hhcmU",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if db.createdDocID == "" {
		t.Error("expected a client-minted document id")
	}
	if stored.DocumentID != db.createdDocID {
		t.Errorf("stored DocumentID = %q, want %q", stored.DocumentID, db.createdDocID)
	}
	if stored.AccessToken != "access-sandbox-token" {
		t.Errorf("access token not persisted verbatim: %q", stored.AccessToken)
	}
}

func TestBankStore_GetByAccountID_ExactlyOne(t *testing.T) {
	t.Parallel()

	match := model.BankAccount{DocumentID: "doc1", UserID: "acc_1", AccountID: "plaid_acct_1"}

	tests := []struct {
		name    string
		total   int64
		docs    int
		wantErr bool
	}{
		{"single match", 1, 1, false},
		{"no match", 0, 0, true},
		{"ambiguous match", 2, 2, true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			db := &fakeDB{total: tt.total}
			for i := 0; i < tt.docs; i++ {
				db.documents = append(db.documents, bankJSON(t, match))
			}
			s := NewBankStore(db, "db", "banks")

			bank, err := s.GetByAccountID(context.Background(), "plaid_acct_1")
			if tt.wantErr {
				if !errors.Is(err, ErrBankNotFound) {
					t.Errorf("expected ErrBankNotFound, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("GetByAccountID: %v", err)
			}
			if bank.DocumentID != "doc1" {
				t.Errorf("unexpected bank %+v", bank)
			}
		})
	}
}

func TestBankStore_ListByUser(t *testing.T) {
	t.Parallel()

	db := &fakeDB{
		total: 2,
		documents: []json.RawMessage{
			bankJSON(t, model.BankAccount{DocumentID: "doc1", UserID: "acc_1"}),
			bankJSON(t, model.BankAccount{DocumentID: "doc2", UserID: "acc_1"}),
		},
	}
	s := NewBankStore(db, "db", "banks")

	banks, err := s.ListByUser(context.Background(), "acc_1")
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(banks) != 2 {
		t.Fatalf("expected 2 banks, got %d", len(banks))
	}
}

func TestBankStore_ListByUser_Empty(t *testing.T) {
	t.Parallel()

	s := NewBankStore(&fakeDB{}, "db", "banks")
	banks, err := s.ListByUser(context.Background(), "acc_1")
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(banks) != 0 {
		t.Errorf("expected no banks, got %d", len(banks))
	}
}

func TestUserStore_GetByAccountID(t *testing.T) {
	t.Parallel()

	t.Run("first match wins", func(t *testing.T) {
		t.Parallel()

		first, _ := json.Marshal(model.User{DocumentID: "u_doc1", AccountID: "acc_1"})
		second, _ := json.Marshal(model.User{DocumentID: "u_doc2", AccountID: "acc_1"})
		db := &fakeDB{total: 2, documents: []json.RawMessage{first, second}}
		s := NewUserStore(db, "db", "users")

		user, err := s.GetByAccountID(context.Background(), "acc_1")
		if err != nil {
			t.Fatalf("GetByAccountID: %v", err)
		}
		if user.DocumentID != "u_doc1" {
			t.Errorf("expected first document, got %q", user.DocumentID)
		}
	})

	t.Run("not found", func(t *testing.T) {
		t.Parallel()

		s := NewUserStore(&fakeDB{}, "db", "users")
		if _, err := s.GetByAccountID(context.Background(), "acc_x"); !errors.Is(err, ErrUserNotFound) {
			t.Errorf("expected ErrUserNotFound, got %v", err)
		}
	})
}
