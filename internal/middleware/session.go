package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/athens-bank/athens/internal/model"
	"github.com/athens-bank/athens/internal/service"
)

// userKey is the context key for the authenticated user.
const userKey contextKey = "user"

// SessionResolver resolves a session secret to its owning user.
type SessionResolver interface {
	CurrentUser(ctx context.Context, secret string) (*model.User, error)
}

// Session returns a middleware that authenticates requests by the session
// cookie. Requests without a usable session are rejected with 401; the
// resolved user is stored in the request context.
func Session(resolver SessionResolver, cookieName string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(cookieName)
			if err != nil || cookie.Value == "" {
				writeUnauthorized(w)
				return
			}

			user, err := resolver.CurrentUser(r.Context(), cookie.Value)
			if err != nil {
				if !errors.Is(err, service.ErrNotAuthenticated) && !errors.Is(err, service.ErrUserNotFound) {
					logger.Error("session resolution failed",
						slog.String("request_id", GetRequestID(r.Context())),
						slog.String("error", err.Error()))
					writeJSONError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
					return
				}
				writeUnauthorized(w)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// WithUser returns a context carrying the given user.
func WithUser(ctx context.Context, user *model.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// UserFrom retrieves the authenticated user from context.
func UserFrom(ctx context.Context) (*model.User, bool) {
	user, ok := ctx.Value(userKey).(*model.User)
	return user, ok
}

func writeUnauthorized(w http.ResponseWriter) {
	writeJSONError(w, http.StatusUnauthorized, "NOT_AUTHENTICATED", "Authentication required")
}

func writeJSONError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error": message,
		"code":  code,
	})
}
