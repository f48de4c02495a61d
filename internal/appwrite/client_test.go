package appwrite

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "athens-test", "admin-key")
}

func TestCreateAccount(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/account" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get(headerProject); got != "athens-test" {
			t.Errorf("missing project header, got %q", got)
		}
		if got := r.Header.Get(headerKey); got != "admin-key" {
			t.Errorf("missing API key header, got %q", got)
		}

		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body["userId"] != uniqueID {
			t.Errorf("expected server-minted id, got %q", body["userId"])
		}

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{
			"$id":   "acc_123",
			"email": body["email"],
			"name":  body["name"],
		})
	})

	account, err := c.CreateAccount(context.Background(), "john@example.com", "correct-horse", "John Doe")
	if err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}
	if account.ID != "acc_123" {
		t.Errorf("expected account id acc_123, got %q", account.ID)
	}
}

func TestCreateAccount_Conflict(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(apiError{
			Message: "A user with the same email already exists",
			Code:    409,
			Type:    "user_already_exists",
		})
	})

	_, err := c.CreateAccount(context.Background(), "john@example.com", "correct-horse", "John Doe")
	if !errors.Is(err, ErrAccountExists) {
		t.Errorf("expected ErrAccountExists, got %v", err)
	}
}

func TestCreateEmailSession_InvalidCredentials(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/account/sessions/email" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(apiError{
			Message: "Invalid credentials",
			Code:    401,
			Type:    "user_invalid_credentials",
		})
	})

	_, err := c.CreateEmailSession(context.Background(), "john@example.com", "wrong")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestWithSession_SwitchesAuthHeaders(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get(headerSession); got != "secret-token" {
			t.Errorf("expected session header, got %q", got)
		}
		if got := r.Header.Get(headerKey); got != "" {
			t.Errorf("session client must not send API key, got %q", got)
		}
		json.NewEncoder(w).Encode(Account{ID: "acc_123", Email: "john@example.com"})
	})

	account, err := c.WithSession("secret-token").GetAccount(context.Background())
	if err != nil {
		t.Fatalf("GetAccount: %v", err)
	}
	if account.ID != "acc_123" {
		t.Errorf("unexpected account %+v", account)
	}
}

func TestGetAccount_Unauthorized(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(apiError{Message: "Unauthorized", Code: 401, Type: "general_unauthorized_scope"})
	})

	_, err := c.WithSession("stale").GetAccount(context.Background())
	if !errors.Is(err, ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}
}

func TestListDocuments_Query(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/databases/db/collections/banks/documents" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		queries := r.URL.Query()["queries[]"]
		if len(queries) != 1 || queries[0] != `equal("userId", ["u1"])` {
			t.Errorf("unexpected queries %v", queries)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"total": 2,
			"documents": []map[string]string{
				{"$id": "doc1"},
				{"$id": "doc2"},
			},
		})
	})

	list, err := c.ListDocuments(context.Background(), "db", "banks", []string{QueryEqual("userId", "u1")})
	if err != nil {
		t.Fatalf("ListDocuments: %v", err)
	}
	if list.Total != 2 || len(list.Documents) != 2 {
		t.Errorf("unexpected list: total=%d docs=%d", list.Total, len(list.Documents))
	}
}

func TestCreateDocument(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			DocumentID string         `json:"documentId"`
			Data       map[string]any `json:"data"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body.DocumentID == "" {
			t.Error("expected caller-supplied document id")
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{"$id": body.DocumentID, "userId": body.Data["userId"]})
	})

	var out struct {
		ID     string `json:"$id"`
		UserID string `json:"userId"`
	}
	err := c.CreateDocument(context.Background(), "db", "users", "doc42", map[string]string{"userId": "u1"}, &out)
	if err != nil {
		t.Fatalf("CreateDocument: %v", err)
	}
	if out.ID != "doc42" || out.UserID != "u1" {
		t.Errorf("unexpected document %+v", out)
	}
}

func TestQueryEqual_EscapesValue(t *testing.T) {
	t.Parallel()

	got := QueryEqual("accountId", `with"quote`)
	want := `equal("accountId", ["with\"quote"])`
	if got != want {
		t.Errorf("QueryEqual = %q, want %q", got, want)
	}
}
