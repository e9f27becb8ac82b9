package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"clipforge/internal/store"

	"github.com/google/uuid"
)

func rateLimitedHandler(t *testing.T, limit float64, burst int) http.Handler {
	t.Helper()
	mw := RateLimitMiddleware(limit, burst)
	return mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func authedRequest(tenant *store.Tenant) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	return req.WithContext(NewContextWithTenant(req.Context(), tenant))
}

func TestRateLimitMiddleware_RequiresTenant(t *testing.T) {
	handler := rateLimitedHandler(t, 10, 10)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("got status %d, want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestRateLimitMiddleware_EnforcesBurst(t *testing.T) {
	handler := rateLimitedHandler(t, 1, 2)
	tenant := &store.Tenant{ID: uuid.New(), Name: "busy"}

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, authedRequest(tenant))
		codes = append(codes, rr.Code)
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusOK {
		t.Errorf("first two requests should pass, got %v", codes)
	}
	if codes[2] != http.StatusTooManyRequests {
		t.Errorf("third request should be limited, got %d", codes[2])
	}
}

func TestRateLimitMiddleware_PerTenantBuckets(t *testing.T) {
	handler := rateLimitedHandler(t, 1, 1)
	first := &store.Tenant{ID: uuid.New(), Name: "first"}
	second := &store.Tenant{ID: uuid.New(), Name: "second"}

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, authedRequest(first))
	if rr.Code != http.StatusOK {
		t.Fatalf("first tenant's request failed: %d", rr.Code)
	}

	// Exhausting one tenant's bucket must not affect another's.
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, authedRequest(second))
	if rr.Code != http.StatusOK {
		t.Errorf("second tenant got %d, want %d", rr.Code, http.StatusOK)
	}
}

func TestRateLimitMiddleware_ZeroDisablesLimiting(t *testing.T) {
	handler := rateLimitedHandler(t, 0, 0)
	tenant := &store.Tenant{ID: uuid.New(), Name: "unlimited"}

	for i := 0; i < 20; i++ {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, authedRequest(tenant))
		if rr.Code != http.StatusOK {
			t.Fatalf("request %d got %d, want %d", i, rr.Code, http.StatusOK)
		}
	}
}
