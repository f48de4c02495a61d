package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/athens-bank/athens/internal/handler/dto"
	"github.com/athens-bank/athens/internal/middleware"
	"github.com/athens-bank/athens/internal/model"
	"github.com/athens-bank/athens/internal/plaid"
	"github.com/athens-bank/athens/internal/service"
)

// BankOrchestrator is the slice of the bank service the handler consumes.
type BankOrchestrator interface {
	CreateLinkToken(ctx context.Context, user *model.User) (string, error)
	ExchangePublicToken(ctx context.Context, user *model.User, publicToken string) (*model.BankAccount, error)
	Banks(ctx context.Context, user *model.User) ([]model.BankAccount, error)
	Bank(ctx context.Context, documentID string) (*model.BankAccount, error)
	BankByShareableID(ctx context.Context, code string) (*model.BankAccount, error)
}

// BankHandler handles HTTP requests for bank-link operations.
type BankHandler struct {
	svc    BankOrchestrator
	logger *slog.Logger
}

// NewBankHandler creates a new BankHandler.
func NewBankHandler(svc BankOrchestrator, logger *slog.Logger) *BankHandler {
	return &BankHandler{
		svc:    svc,
		logger: logger,
	}
}

// CreateLinkToken handles POST /api/v1/plaid/link-token.
func (h *BankHandler) CreateLinkToken(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "NOT_AUTHENTICATED", "Authentication required")
		return
	}

	token, err := h.svc.CreateLinkToken(r.Context(), user)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.LinkTokenResponse{LinkToken: token})
}

// Exchange handles POST /api/v1/plaid/exchange.
func (h *BankHandler) Exchange(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "NOT_AUTHENTICATED", "Authentication required")
		return
	}

	var req dto.ExchangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}
	if req.PublicToken == "" {
		writeError(w, http.StatusBadRequest, "MISSING_PUBLIC_TOKEN", "Public token is required")
		return
	}

	bank, err := h.svc.ExchangePublicToken(r.Context(), user, req.PublicToken)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.ToBankResponse(bank))
}

// List handles GET /api/v1/banks.
func (h *BankHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "NOT_AUTHENTICATED", "Authentication required")
		return
	}

	banks, err := h.svc.Banks(r.Context(), user)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToBankListResponse(banks))
}

// Get handles GET /api/v1/banks/{id}. The id is a bank document id, or a
// shareable id when ?by=sharable-id is set.
func (h *BankHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "MISSING_ID", "Bank ID is required")
		return
	}

	var bank *model.BankAccount
	var err error
	if r.URL.Query().Get("by") == "sharable-id" {
		bank, err = h.svc.BankByShareableID(r.Context(), id)
	} else {
		bank, err = h.svc.Bank(r.Context(), id)
	}
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToBankResponse(bank))
}

// handleServiceError maps service errors to HTTP responses.
func (h *BankHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, plaid.ErrInvalidToken):
		writeError(w, http.StatusBadRequest, "INVALID_PUBLIC_TOKEN", "The public token was rejected")
	case errors.Is(err, service.ErrBankNotFound):
		writeError(w, http.StatusNotFound, "BANK_NOT_FOUND", "Bank not found")
	case errors.Is(err, service.ErrNoAccounts):
		writeError(w, http.StatusUnprocessableEntity, "NO_ACCOUNTS", "The linked item exposes no accounts")
	case errors.Is(err, service.ErrNoFundingSource):
		writeError(w, http.StatusBadGateway, "NO_FUNDING_SOURCE", "The payments network did not create a funding source")
	default:
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}
