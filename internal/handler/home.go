package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/athens-bank/athens/internal/cache"
	"github.com/athens-bank/athens/internal/handler/dto"
	"github.com/athens-bank/athens/internal/metrics"
	"github.com/athens-bank/athens/internal/middleware"
	"github.com/athens-bank/athens/internal/model"
	"github.com/athens-bank/athens/internal/service"
)

// HomeRenderer is the slice of the bank service the home handler consumes.
type HomeRenderer interface {
	LinkedAccounts(ctx context.Context, user *model.User) ([]service.LinkedAccount, error)
}

// RenderStore caches rendered home payloads per user.
type RenderStore interface {
	GetHome(ctx context.Context, accountID string) ([]byte, error)
	SetHome(ctx context.Context, accountID string, payload []byte, ttl time.Duration) error
}

// HomeHandler renders the home view: the caller's profile plus every
// linked account with live balances. Renders are cached per user and
// invalidated when a new bank is linked.
type HomeHandler struct {
	svc     HomeRenderer
	cache   RenderStore
	ttl     time.Duration
	metrics metrics.Recorder
	logger  *slog.Logger
}

// NewHomeHandler creates a new HomeHandler.
func NewHomeHandler(svc HomeRenderer, store RenderStore, ttl time.Duration, rec metrics.Recorder, logger *slog.Logger) *HomeHandler {
	return &HomeHandler{
		svc:     svc,
		cache:   store,
		ttl:     ttl,
		metrics: rec,
		logger:  logger,
	}
}

// Home handles GET /api/v1/home.
func (h *HomeHandler) Home(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "NOT_AUTHENTICATED", "Authentication required")
		return
	}

	if payload, err := h.cache.GetHome(r.Context(), user.AccountID); err == nil {
		h.metrics.IncHomeCacheHit()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(payload)
		return
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		h.logger.Warn("home render cache read failed", "error", err)
	}
	h.metrics.IncHomeCacheMiss()

	accounts, err := h.svc.LinkedAccounts(r.Context(), user)
	if err != nil {
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		return
	}

	totalCurrent := decimal.Zero
	totalAvailable := decimal.Zero
	for _, account := range accounts {
		totalCurrent = totalCurrent.Add(account.CurrentBalance)
		totalAvailable = totalAvailable.Add(account.AvailableBalance)
	}

	response := dto.HomeResponse{
		User:           dto.ToUserResponse(user),
		Accounts:       accounts,
		TotalBanks:     len(accounts),
		TotalBalance:   totalCurrent.String(),
		TotalAvailable: totalAvailable.String(),
	}

	payload, err := json.Marshal(response)
	if err != nil {
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		return
	}

	if err := h.cache.SetHome(r.Context(), user.AccountID, payload, h.ttl); err != nil {
		h.logger.Warn("home render cache write failed", "error", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(payload)
}
