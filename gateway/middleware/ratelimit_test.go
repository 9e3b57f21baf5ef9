package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimiterBlocksAfterBurst(t *testing.T) {
	limiter := NewRateLimiter(map[string]RateLimit{
		"ledger": {RatePerSecond: 1, Burst: 1},
	}, nil)

	handler := limiter.Middleware("ledger")(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/v1/config", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusOK {
		t.Fatalf("expected first request to succeed, got %d", res.Code)
	}

	res = httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusTooManyRequests {
		t.Fatalf("expected second request to be rate limited, got %d", res.Code)
	}
}

func TestRateLimiterSeparatesGroups(t *testing.T) {
	limiter := NewRateLimiter(map[string]RateLimit{
		"ledger": {RatePerSecond: 1, Burst: 1},
		"admin":  {RatePerSecond: 1, Burst: 1},
	}, nil)

	ledger := limiter.Middleware("ledger")(okHandler())
	admin := limiter.Middleware("admin")(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/v1/deposits", nil)
	req.Header.Set("X-API-Key", "tenant-A")
	res := httptest.NewRecorder()
	ledger.ServeHTTP(res, req)
	if res.Code != http.StatusOK {
		t.Fatalf("expected ledger request to succeed, got %d", res.Code)
	}

	adminReq := httptest.NewRequest(http.MethodPost, "/v1/admin/blacklist", nil)
	adminReq.Header.Set("X-API-Key", "tenant-A")
	adminRes := httptest.NewRecorder()
	admin.ServeHTTP(adminRes, adminReq)
	if adminRes.Code != http.StatusOK {
		t.Fatalf("expected first admin request to succeed, got %d", adminRes.Code)
	}

	adminRes = httptest.NewRecorder()
	admin.ServeHTTP(adminRes, adminReq)
	if adminRes.Code != http.StatusTooManyRequests {
		t.Fatalf("expected second admin request to hit limit, got %d", adminRes.Code)
	}
}

func TestRateLimiterAppliesRouteTokens(t *testing.T) {
	limiter := NewRateLimiter(map[string]RateLimit{
		"ledger": {
			RatePerSecond: 5,
			Burst:         5,
			DefaultTokens: 1,
			Tokens: map[string]int{
				"POST /v1/faucet": 3,
			},
		},
	}, nil)

	handler := limiter.Middleware("ledger")(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/v1/faucet", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusOK {
		t.Fatalf("expected first faucet request to succeed, got %d", res.Code)
	}

	res = httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusTooManyRequests {
		t.Fatalf("expected second faucet request to be rate limited, got %d", res.Code)
	}

	// Two tokens remain, enough for a default-cost read.
	statusReq := httptest.NewRequest(http.MethodGet, "/v1/config", nil)
	statusRes := httptest.NewRecorder()
	handler.ServeHTTP(statusRes, statusReq)
	if statusRes.Code != http.StatusOK {
		t.Fatalf("expected config read to succeed with default token cost, got %d", statusRes.Code)
	}
}

func TestRateLimiterPrefersAPIKeyOverIP(t *testing.T) {
	limiter := NewRateLimiter(map[string]RateLimit{
		"ledger": {RatePerSecond: 1, Burst: 1},
	}, nil)

	handler := limiter.Middleware("ledger")(okHandler())

	for _, key := range []string{"tenant-A", "tenant-B"} {
		req := httptest.NewRequest(http.MethodGet, "/v1/config", nil)
		req.Header.Set("X-API-Key", key)
		res := httptest.NewRecorder()
		handler.ServeHTTP(res, req)
		if res.Code != http.StatusOK {
			t.Fatalf("expected %s request to succeed, got %d", key, res.Code)
		}
	}
}

func TestRateLimiterUnknownGroupPassesThrough(t *testing.T) {
	limiter := NewRateLimiter(map[string]RateLimit{"ledger": {}}, nil)
	handler := limiter.Middleware("ledger")(okHandler())
	for i := 0; i < 5; i++ {
		res := httptest.NewRecorder()
		handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/v1/config", nil))
		if res.Code != http.StatusOK {
			t.Fatalf("request %d: expected pass-through, got %d", i, res.Code)
		}
	}
}
