package middleware

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/athens-bank/athens/internal/model"
	"github.com/athens-bank/athens/internal/service"
)

type stubResolver struct {
	users map[string]*model.User
}

func (s *stubResolver) CurrentUser(_ context.Context, secret string) (*model.User, error) {
	user, ok := s.users[secret]
	if !ok {
		return nil, service.ErrNotAuthenticated
	}
	return user, nil
}

func TestSession(t *testing.T) {
	t.Parallel()

	resolver := &stubResolver{users: map[string]*model.User{
		"good-secret": {AccountID: "acc-1"},
	}}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	var seen *model.User
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = UserFrom(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	wrapped := Session(resolver, "athens-session", logger)(handler)

	tests := []struct {
		name       string
		cookie     *http.Cookie
		wantStatus int
	}{
		{name: "valid session", cookie: &http.Cookie{Name: "athens-session", Value: "good-secret"}, wantStatus: http.StatusOK},
		{name: "stale session", cookie: &http.Cookie{Name: "athens-session", Value: "stale"}, wantStatus: http.StatusUnauthorized},
		{name: "no cookie", cookie: nil, wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = nil
			req := httptest.NewRequest("GET", "/api/v1/banks", nil)
			if tt.cookie != nil {
				req.AddCookie(tt.cookie)
			}

			rec := httptest.NewRecorder()
			wrapped.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusOK {
				if seen == nil || seen.AccountID != "acc-1" {
					t.Errorf("user in context = %+v, want acc-1", seen)
				}
			} else if seen != nil {
				t.Errorf("user leaked into context on %d", rec.Code)
			}
		})
	}
}
