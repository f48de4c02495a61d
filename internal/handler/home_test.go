package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/athens-bank/athens/internal/cache"
	"github.com/athens-bank/athens/internal/handler/dto"
	"github.com/athens-bank/athens/internal/metrics"
	"github.com/athens-bank/athens/internal/model"
	"github.com/athens-bank/athens/internal/service"
)

type stubRenderer struct {
	accounts []service.LinkedAccount
	calls    int
}

func (s *stubRenderer) LinkedAccounts(_ context.Context, _ *model.User) ([]service.LinkedAccount, error) {
	s.calls++
	return s.accounts, nil
}

type memRenderStore struct {
	payloads map[string][]byte
}

func newMemRenderStore() *memRenderStore {
	return &memRenderStore{payloads: make(map[string][]byte)}
}

func (s *memRenderStore) GetHome(_ context.Context, accountID string) ([]byte, error) {
	payload, ok := s.payloads[accountID]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return payload, nil
}

func (s *memRenderStore) SetHome(_ context.Context, accountID string, payload []byte, _ time.Duration) error {
	s.payloads[accountID] = payload
	return nil
}

func TestHomeHandler(t *testing.T) {
	t.Parallel()

	available := decimal.NewFromFloat(120.50)
	current := decimal.NewFromFloat(130.25)
	renderer := &stubRenderer{accounts: []service.LinkedAccount{
		{AccountID: "plaid-acct-1", Name: "Everyday Checking", AvailableBalance: available, CurrentBalance: current, Currency: "USD"},
		{AccountID: "plaid-acct-2", Name: "Savings", AvailableBalance: available, CurrentBalance: current, Currency: "USD"},
	}}
	store := newMemRenderStore()
	recorder := metrics.NewInMemory()
	h := NewHomeHandler(renderer, store, time.Minute, recorder, discardLogger())

	// First render misses the cache and computes totals.
	rec := httptest.NewRecorder()
	h.Home(rec, sessionRequest("GET", "/api/v1/home", ""))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d; body %s", rec.Code, http.StatusOK, rec.Body)
	}

	var resp dto.HomeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	if resp.TotalBanks != 2 {
		t.Errorf("total banks = %d, want 2", resp.TotalBanks)
	}
	if resp.TotalBalance != "260.5" {
		t.Errorf("total balance = %q, want %q", resp.TotalBalance, "260.5")
	}
	if resp.TotalAvailable != "241" {
		t.Errorf("total available = %q, want %q", resp.TotalAvailable, "241")
	}

	// Second render is served from the cache without touching upstreams.
	rec2 := httptest.NewRecorder()
	h.Home(rec2, sessionRequest("GET", "/api/v1/home", ""))

	if rec2.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec2.Code, http.StatusOK)
	}
	if rec2.Body.String() != rec.Body.String() {
		t.Error("cached render differs from fresh render")
	}
	if renderer.calls != 1 {
		t.Errorf("renderer calls = %d, want 1", renderer.calls)
	}

	snap := recorder.Snapshot()
	if snap.HomeCacheMisses != 1 || snap.HomeCacheHits != 1 {
		t.Errorf("cache counters = %d misses / %d hits, want 1/1", snap.HomeCacheMisses, snap.HomeCacheHits)
	}
}

func TestHomeHandlerUnauthenticated(t *testing.T) {
	t.Parallel()

	h := NewHomeHandler(&stubRenderer{}, newMemRenderStore(), time.Minute, metrics.NewNoop(), discardLogger())

	rec := httptest.NewRecorder()
	h.Home(rec, httptest.NewRequest("GET", "/api/v1/home", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}
