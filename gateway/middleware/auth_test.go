package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	jwt "github.com/golang-jwt/jwt/v5"
)

const testSecret = "super-secret"

var testCaller = common.HexToAddress("0x00000000000000000000000000000000000000c1")

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func callerEcho(t *testing.T, want common.Address) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		caller, ok := CallerFromContext(r.Context())
		if !ok {
			t.Fatalf("caller missing from context")
		}
		if caller != want {
			t.Fatalf("unexpected caller %s", caller.Hex())
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthenticatorResolvesSubject(t *testing.T) {
	auth := NewAuthenticator(AuthConfig{Enabled: true, HMACSecret: testSecret, Issuer: "stablestake"}, nil)
	handler := auth.Middleware()(callerEcho(t, testCaller))

	token := signToken(t, testSecret, jwt.MapClaims{
		"sub": testCaller.Hex(),
		"iss": "stablestake",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	req := httptest.NewRequest(http.MethodPost, "/v1/interest/claim", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}
}

func TestAuthenticatorRejects(t *testing.T) {
	auth := NewAuthenticator(AuthConfig{Enabled: true, HMACSecret: testSecret, Issuer: "stablestake"}, nil)
	handler := auth.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("handler must not run")
	}))

	cases := map[string]string{
		"missing":       "",
		"wrong secret":  "Bearer " + signToken(t, "other", jwt.MapClaims{"sub": testCaller.Hex(), "iss": "stablestake"}),
		"wrong issuer":  "Bearer " + signToken(t, testSecret, jwt.MapClaims{"sub": testCaller.Hex(), "iss": "elsewhere"}),
		"bad subject":   "Bearer " + signToken(t, testSecret, jwt.MapClaims{"sub": "alice", "iss": "stablestake"}),
		"expired":       "Bearer " + signToken(t, testSecret, jwt.MapClaims{"sub": testCaller.Hex(), "iss": "stablestake", "exp": time.Now().Add(-time.Hour).Unix()}),
		"wrong scheme":  "Basic abc",
		"garbage token": "Bearer not-a-jwt",
	}
	for name, header := range cases {
		req := httptest.NewRequest(http.MethodPost, "/v1/deposits", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		res := httptest.NewRecorder()
		handler.ServeHTTP(res, req)
		if res.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", name, res.Code)
		}
	}
}

func TestAuthenticatorDisabledUsesCallerHeader(t *testing.T) {
	auth := NewAuthenticator(AuthConfig{}, nil)
	handler := auth.Middleware()(callerEcho(t, testCaller))

	req := httptest.NewRequest(http.MethodPost, "/v1/deposits", nil)
	req.Header.Set(CallerHeader, testCaller.Hex())
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}

	res = httptest.NewRecorder()
	handler.ServeHTTP(res, httptest.NewRequest(http.MethodPost, "/v1/deposits", nil))
	if res.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without caller header, got %d", res.Code)
	}
}

func TestRequestIDPropagates(t *testing.T) {
	var seen string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if seen != "abc-123" || res.Header().Get(RequestIDHeader) != "abc-123" {
		t.Fatalf("expected inbound id to propagate, got %q / %q", seen, res.Header().Get(RequestIDHeader))
	}

	res = httptest.NewRecorder()
	handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if seen == "" || seen == "abc-123" || res.Header().Get(RequestIDHeader) != seen {
		t.Fatalf("expected generated id, got %q", seen)
	}
}

func TestCORSPreflight(t *testing.T) {
	handler := CORS(CORSConfig{AllowedOrigins: []string{"https://app.example"}})(okHandler())

	req := httptest.NewRequest(http.MethodOptions, "/v1/deposits", nil)
	req.Header.Set("Origin", "https://app.example")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", res.Code)
	}
	if got := res.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example" {
		t.Fatalf("unexpected allow origin %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/v1/config", nil)
	req.Header.Set("Origin", "https://evil.example")
	res = httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if got := res.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("expected no allow origin for unknown origin, got %q", got)
	}
}
