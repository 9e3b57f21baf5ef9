package routes_test

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"stablestake/core/state"
	"stablestake/gateway/middleware"
	"stablestake/gateway/routes"
	"stablestake/native/stablestake"
	"stablestake/storage"
	"stablestake/storage/journal"
)

var (
	owner   = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	fees    = common.HexToAddress("0x00000000000000000000000000000000000000f1")
	invest  = common.HexToAddress("0x00000000000000000000000000000000000000b1")
	token   = common.HexToAddress("0x5757575757575757575757575757575757579797")
	custody = common.HexToAddress("0x5757575757575757575757575757575757570097")
	alice   = common.HexToAddress("0x0000000000000000000000000000000000001111")
)

func ether(v int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(v), big.NewInt(1e18))
}

type gateway struct {
	t       *testing.T
	handler http.Handler
	engine  *stablestake.Engine
	journal *journal.Journal
	now     uint64
}

func newGateway(t *testing.T, auth middleware.AuthConfig) *gateway {
	t.Helper()
	db := storage.NewMemDB()
	t.Cleanup(db.Close)
	store := state.NewStore(db)

	j, err := journal.Open("sqlite", fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	t.Cleanup(func() { _ = j.Close() })

	g := &gateway{t: t, engine: stablestake.NewEngine(), journal: j, now: 1_700_000_000}
	g.engine.SetState(store)
	g.engine.SetAsset(state.NewBank(store, custody))
	g.engine.SetEmitter(j)
	g.engine.SetNowFunc(func() uint64 { return g.now })
	g.engine.EnableFaucet(true)
	if err := g.engine.Initialize(stablestake.Genesis{
		Owner:                  owner,
		FeesWallet:             fees,
		InvestmentWallet:       invest,
		SupportedToken:         token,
		InitialInterval:        60,
		AffiliateVestingPeriod: 180,
		CreateDepositFee:       50,
		MinimalDeposit:         ether(10),
		Multiplier:             100,
	}); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if err := g.engine.Faucet(custody, ether(1_000_000)); err != nil {
		t.Fatalf("fund custody: %v", err)
	}

	reg := prometheus.NewRegistry()
	handler, err := routes.New(routes.Config{
		Ledger:         g.engine,
		Events:         j,
		Authenticator:  middleware.NewAuthenticator(auth, nil),
		RateLimiter:    middleware.NewRateLimiter(map[string]middleware.RateLimit{}, nil),
		Observability:  middleware.NewObservability(middleware.ObservabilityConfig{}, reg, nil),
		MetricsHandler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		FaucetAmount:   ether(1_000),
	})
	if err != nil {
		t.Fatalf("routes: %v", err)
	}
	g.handler = handler
	return g
}

func (g *gateway) do(method, path string, as *common.Address, body any) *httptest.ResponseRecorder {
	g.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			g.t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if as != nil {
		req.Header.Set(middleware.CallerHeader, as.Hex())
	}
	res := httptest.NewRecorder()
	g.handler.ServeHTTP(res, req)
	return res
}

func decode[T any](t *testing.T, res *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(res.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", res.Body.String(), err)
	}
	return out
}

func expectStatus(t *testing.T, res *httptest.ResponseRecorder, want int) {
	t.Helper()
	if res.Code != want {
		t.Fatalf("expected status %d, got %d: %s", want, res.Code, res.Body.String())
	}
}

func TestHealthAndConfig(t *testing.T) {
	g := newGateway(t, middleware.AuthConfig{})

	res := g.do(http.MethodGet, "/healthz", nil, nil)
	expectStatus(t, res, http.StatusOK)

	res = g.do(http.MethodGet, "/v1/config", nil, nil)
	expectStatus(t, res, http.StatusOK)
	cfg := decode[map[string]any](t, res)
	if cfg["owner"] != owner.Hex() || cfg["createDepositFee"].(float64) != 50 {
		t.Fatalf("unexpected config %v", cfg)
	}

	res = g.do(http.MethodGet, "/v1/deposit-types/0", nil, nil)
	expectStatus(t, res, http.StatusOK)
	dt := decode[map[string]any](t, res)
	if dt["minimalDeposit"] != ether(10).String() || dt["lockPeriod"].(float64) != 60 {
		t.Fatalf("unexpected deposit type %v", dt)
	}

	res = g.do(http.MethodGet, "/v1/deposit-types/7", nil, nil)
	expectStatus(t, res, http.StatusBadRequest)

	res = g.do(http.MethodGet, "/v1/fees/split?amount=1000", nil, nil)
	expectStatus(t, res, http.StatusOK)
	split := decode[map[string]string](t, res)
	if split["fee"] != "50" || split["investment"] != "950" {
		t.Fatalf("unexpected split %v", split)
	}
}

func TestDepositLifecycle(t *testing.T) {
	g := newGateway(t, middleware.AuthConfig{})

	res := g.do(http.MethodPost, "/v1/faucet", &alice, nil)
	expectStatus(t, res, http.StatusOK)
	if got := decode[map[string]string](t, res)["balance"]; got != ether(1_000).String() {
		t.Fatalf("unexpected faucet balance %s", got)
	}

	res = g.do(http.MethodPost, "/v1/deposits", &alice, map[string]any{"depositType": 0, "amount": ether(100).String()})
	expectStatus(t, res, http.StatusCreated)

	res = g.do(http.MethodPost, "/v1/deposits/0/cashout", &alice, nil)
	expectStatus(t, res, http.StatusConflict)

	g.now += 120
	res = g.do(http.MethodGet, "/v1/accounts/"+alice.Hex(), nil, nil)
	expectStatus(t, res, http.StatusOK)
	account := decode[map[string]any](t, res)
	if account["depositedValue"] != ether(100).String() || account["interestAvailable"] != ether(2).String() {
		t.Fatalf("unexpected account view %v", account)
	}

	res = g.do(http.MethodPost, "/v1/interest/claim", &alice, nil)
	expectStatus(t, res, http.StatusOK)
	if got := decode[map[string]string](t, res)["payout"]; got != ether(2).String() {
		t.Fatalf("unexpected interest payout %s", got)
	}

	res = g.do(http.MethodPost, "/v1/deposits/0/cashout", &alice, nil)
	expectStatus(t, res, http.StatusOK)
	if got := decode[map[string]string](t, res)["payout"]; got != ether(100).String() {
		t.Fatalf("unexpected cashout payout %s", got)
	}

	res = g.do(http.MethodPost, "/v1/deposits/0/cashout", &alice, nil)
	expectStatus(t, res, http.StatusNotFound)

	res = g.do(http.MethodGet, "/v1/events?account="+alice.Hex()+"&type=stablestake.deposit.created", nil, nil)
	expectStatus(t, res, http.StatusOK)
	records := decode[[]map[string]any](t, res)
	if len(records) != 1 {
		t.Fatalf("expected one deposit event, got %d", len(records))
	}
}

func TestErrorMapping(t *testing.T) {
	g := newGateway(t, middleware.AuthConfig{})
	g.do(http.MethodPost, "/v1/faucet", &alice, nil)

	cases := []struct {
		name   string
		method string
		path   string
		as     *common.Address
		body   any
		want   int
	}{
		{"missing caller", http.MethodPost, "/v1/deposits", nil, map[string]any{"amount": "1"}, http.StatusUnauthorized},
		{"malformed amount", http.MethodPost, "/v1/deposits", &alice, map[string]any{"amount": "ten"}, http.StatusBadRequest},
		{"unknown field", http.MethodPost, "/v1/deposits", &alice, map[string]any{"amount": "1", "extra": true}, http.StatusBadRequest},
		{"below minimum", http.MethodPost, "/v1/deposits", &alice, map[string]any{"amount": ether(1).String()}, http.StatusUnprocessableEntity},
		{"unknown type", http.MethodPost, "/v1/deposits", &alice, map[string]any{"depositType": 9, "amount": ether(20).String()}, http.StatusBadRequest},
		{"no allocation", http.MethodPost, "/v1/affiliate/claim", &alice, nil, http.StatusConflict},
		{"not owner", http.MethodPost, "/v1/admin/pause/deposits", &alice, map[string]any{"paused": true}, http.StatusForbidden},
		{"fee too large", http.MethodPost, "/v1/admin/create-deposit-fee", &owner, map[string]any{"fee": 1001}, http.StatusBadRequest},
		{"bad address", http.MethodGet, "/v1/accounts/nope", nil, nil, http.StatusBadRequest},
	}
	for _, tc := range cases {
		res := g.do(tc.method, tc.path, tc.as, tc.body)
		if res.Code != tc.want {
			t.Fatalf("%s: expected %d, got %d: %s", tc.name, tc.want, res.Code, res.Body.String())
		}
	}
}

func TestAdminRoutes(t *testing.T) {
	g := newGateway(t, middleware.AuthConfig{})
	g.do(http.MethodPost, "/v1/faucet", &alice, nil)

	res := g.do(http.MethodPost, "/v1/admin/pause/deposits", &owner, map[string]any{"paused": true})
	expectStatus(t, res, http.StatusNoContent)
	res = g.do(http.MethodPost, "/v1/deposits", &alice, map[string]any{"amount": ether(20).String()})
	expectStatus(t, res, http.StatusServiceUnavailable)
	g.do(http.MethodPost, "/v1/admin/pause/deposits", &owner, map[string]any{"paused": false})

	res = g.do(http.MethodPost, "/v1/admin/blacklist", &owner, map[string]any{"account": alice.Hex(), "blacklisted": true})
	expectStatus(t, res, http.StatusNoContent)
	res = g.do(http.MethodPost, "/v1/deposits", &alice, map[string]any{"amount": ether(20).String()})
	expectStatus(t, res, http.StatusForbidden)
	g.do(http.MethodPost, "/v1/admin/blacklist", &owner, map[string]any{"account": alice.Hex(), "blacklisted": false})

	res = g.do(http.MethodPost, "/v1/admin/deposit-types", &owner, map[string]any{
		"depositType": 1, "lockPeriod": 600, "minimalDeposit": ether(50).String(), "multiplier": 200, "rewardInterval": 60,
	})
	expectStatus(t, res, http.StatusOK)
	res = g.do(http.MethodGet, "/v1/deposit-types", nil, nil)
	if types := decode[[]map[string]any](t, res); len(types) != 2 {
		t.Fatalf("expected two deposit types, got %v", types)
	}

	res = g.do(http.MethodPost, "/v1/admin/deposits/airdrop", &owner, map[string]any{"account": alice.Hex(), "depositType": 1, "amount": ether(75).String()})
	expectStatus(t, res, http.StatusCreated)
	res = g.do(http.MethodPost, "/v1/admin/accounts/"+alice.Hex()+"/deposits/0/size", &owner, map[string]any{"size": ether(80).String()})
	expectStatus(t, res, http.StatusNoContent)
	res = g.do(http.MethodPost, "/v1/admin/accounts/"+alice.Hex()+"/cashout-all", &owner, nil)
	expectStatus(t, res, http.StatusOK)
	if got := decode[map[string]string](t, res)["payout"]; got != ether(80).String() {
		t.Fatalf("unexpected force-close payout %s", got)
	}

	res = g.do(http.MethodPost, "/v1/admin/affiliate/airdrop", &owner, map[string]any{"account": alice.Hex(), "amount": ether(18).String()})
	expectStatus(t, res, http.StatusNoContent)
	g.now += 90
	res = g.do(http.MethodPost, "/v1/affiliate/claim", &alice, nil)
	expectStatus(t, res, http.StatusOK)
	if got := decode[map[string]string](t, res)["payout"]; got != ether(9).String() {
		t.Fatalf("unexpected affiliate payout %s", got)
	}

	res = g.do(http.MethodPost, "/v1/admin/withdraw", &owner, map[string]any{"token": token.Hex(), "amount": ether(10).String()})
	expectStatus(t, res, http.StatusNoContent)
	res = g.do(http.MethodGet, "/v1/accounts/"+owner.Hex()+"/balance", nil, nil)
	if got := decode[map[string]string](t, res)["balance"]; got != ether(10).String() {
		t.Fatalf("unexpected owner balance %s", got)
	}

	for path, body := range map[string]any{
		"/v1/admin/fees-wallet":              map[string]any{"address": invest.Hex()},
		"/v1/admin/investment-wallet":        map[string]any{"address": fees.Hex()},
		"/v1/admin/supported-token":          map[string]any{"address": token.Hex()},
		"/v1/admin/affiliate-vesting-period": map[string]any{"seconds": 3600},
		"/v1/admin/pause/cashouts":           map[string]any{"paused": false},
	} {
		res = g.do(http.MethodPost, path, &owner, body)
		expectStatus(t, res, http.StatusNoContent)
	}

	res = g.do(http.MethodPost, "/v1/admin/owner", &owner, map[string]any{"address": alice.Hex()})
	expectStatus(t, res, http.StatusNoContent)
	res = g.do(http.MethodPost, "/v1/admin/pause/cashouts", &owner, map[string]any{"paused": true})
	expectStatus(t, res, http.StatusForbidden)
}

func TestBearerTokenIdentifiesCaller(t *testing.T) {
	g := newGateway(t, middleware.AuthConfig{Enabled: true, HMACSecret: "secret", Issuer: "stablestake"})

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": alice.Hex(),
		"iss": "stablestake",
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/v1/faucet", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	res := httptest.NewRecorder()
	g.handler.ServeHTTP(res, req)
	expectStatus(t, res, http.StatusOK)
	if got := decode[map[string]string](t, res)["address"]; got != alice.Hex() {
		t.Fatalf("faucet credited %s", got)
	}

	// The development caller header is ignored once tokens are enforced.
	res = g.do(http.MethodPost, "/v1/faucet", &alice, nil)
	expectStatus(t, res, http.StatusUnauthorized)
}

func TestMetricsUseRoutePatterns(t *testing.T) {
	g := newGateway(t, middleware.AuthConfig{})
	g.do(http.MethodGet, "/v1/deposit-types/0", nil, nil)
	g.do(http.MethodGet, "/v1/accounts/"+alice.Hex(), nil, nil)

	res := g.do(http.MethodGet, "/metrics", nil, nil)
	expectStatus(t, res, http.StatusOK)
	body := res.Body.String()
	for _, want := range []string{
		`route="/v1/deposit-types/{id}"`,
		`route="/v1/accounts/{address}"`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("metrics missing %s", want)
		}
	}
}

func TestEventsJournalRecordsCommittedChanges(t *testing.T) {
	g := newGateway(t, middleware.AuthConfig{})
	g.do(http.MethodPost, "/v1/faucet", &alice, nil)
	g.do(http.MethodPost, "/v1/deposits", &alice, map[string]any{"amount": ether(5).String()})

	records, err := g.journal.List(context.Background(), journal.Filter{Account: alice.Hex()})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for _, rec := range records {
		if rec.Type == stablestake.EventTypeDepositCreated {
			t.Fatalf("rejected deposit must not reach the journal")
		}
	}
}

func TestEventExportCarriesChecksum(t *testing.T) {
	g := newGateway(t, middleware.AuthConfig{})
	expectStatus(t, g.do(http.MethodPost, "/v1/faucet", &alice, nil), http.StatusOK)
	expectStatus(t, g.do(http.MethodPost, "/v1/deposits", &alice, map[string]any{"amount": ether(100).String()}), http.StatusCreated)

	res := g.do(http.MethodGet, "/v1/events/export?account="+alice.Hex(), nil, nil)
	expectStatus(t, res, http.StatusOK)
	if ct := res.Header().Get("Content-Type"); ct != "text/csv" {
		t.Fatalf("unexpected content type %q", ct)
	}
	sum := sha256.Sum256(res.Body.Bytes())
	if res.Header().Get("X-Checksum") != hex.EncodeToString(sum[:]) {
		t.Fatalf("checksum header does not match body")
	}
	if !strings.Contains(res.Body.String(), stablestake.EventTypeDepositCreated) {
		t.Fatalf("export missing deposit event: %s", res.Body.String())
	}

	res = g.do(http.MethodGet, "/v1/events/export?format=jsonl&type="+stablestake.EventTypeDepositCreated, nil, nil)
	expectStatus(t, res, http.StatusOK)
	if lines := strings.Split(strings.TrimSpace(res.Body.String()), "\n"); len(lines) != 1 {
		t.Fatalf("expected one jsonl line, got %d", len(lines))
	}
	expectStatus(t, g.do(http.MethodGet, "/v1/events/export?format=xml", nil, nil), http.StatusBadRequest)
}
