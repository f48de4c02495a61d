package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/athens-bank/athens/internal/forms"
	"github.com/athens-bank/athens/internal/handler/dto"
	"github.com/athens-bank/athens/internal/middleware"
	"github.com/athens-bank/athens/internal/model"
	"github.com/athens-bank/athens/internal/service"
)

// AuthOrchestrator is the slice of the auth service the handler consumes.
type AuthOrchestrator interface {
	SignUp(ctx context.Context, in service.SignUpInput) (*model.User, *model.Session, error)
	SignIn(ctx context.Context, email, password string) (*model.User, *model.Session, error)
	SignOut(ctx context.Context, secret string)
}

// CookieConfig controls the session cookie the auth handler issues.
type CookieConfig struct {
	Name   string
	Secure bool
}

// AuthHandler handles HTTP requests for the auth flows.
type AuthHandler struct {
	svc    AuthOrchestrator
	cookie CookieConfig
	logger *slog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(svc AuthOrchestrator, cookie CookieConfig, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		svc:    svc,
		cookie: cookie,
		logger: logger,
	}
}

// SignUp handles POST /api/v1/auth/sign-up.
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req dto.SignUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if fields := forms.Validate(forms.ModeSignUp, req.Values()); len(fields) > 0 {
		writeFieldErrors(w, fields)
		return
	}

	user, session, err := h.svc.SignUp(r.Context(), service.SignUpInput{
		Email:       req.Email,
		Password:    req.Password,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Address:     req.Address,
		City:        req.City,
		State:       req.State,
		PostalCode:  req.PostalCode,
		DateOfBirth: req.DateOfBirth,
		NationalID:  req.NationalID,
	})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.setSessionCookie(w, session.Secret)
	writeJSON(w, http.StatusCreated, dto.ToUserResponse(user))
}

// SignIn handles POST /api/v1/auth/sign-in.
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req dto.SignInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if fields := forms.Validate(forms.ModeSignIn, req.Values()); len(fields) > 0 {
		writeFieldErrors(w, fields)
		return
	}

	user, session, err := h.svc.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.setSessionCookie(w, session.Secret)
	writeJSON(w, http.StatusOK, dto.ToUserResponse(user))
}

// SignOut handles POST /api/v1/auth/sign-out. The cookie is cleared even
// when the upstream session deletion fails.
func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(h.cookie.Name); err == nil && cookie.Value != "" {
		h.svc.SignOut(r.Context(), cookie.Value)
	}

	h.clearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// Me handles GET /api/v1/auth/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "NOT_AUTHENTICATED", "Authentication required")
		return
	}
	writeJSON(w, http.StatusOK, dto.ToUserResponse(user))
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, secret string) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    secret,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteStrictMode,
	})
}

func (h *AuthHandler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteStrictMode,
	})
}

// handleServiceError maps service errors to HTTP responses.
func (h *AuthHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrAccountExists):
		writeError(w, http.StatusConflict, "ACCOUNT_EXISTS", "An account with this email already exists")
	case errors.Is(err, service.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password")
	case errors.Is(err, service.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "USER_NOT_FOUND", "No profile exists for this account")
	default:
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}
