package routes

import (
	"context"
	"errors"
	"log/slog"
	"math/big"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"stablestake/gateway/middleware"
	nativecommon "stablestake/native/common"
	"stablestake/native/stablestake"
	"stablestake/storage/journal"
)

// Rate limit groups understood by the router.
const (
	RateLimitLedger = "ledger"
	RateLimitAdmin  = "admin"
)

// Ledger is the engine surface served over HTTP.
type Ledger interface {
	Config() (*stablestake.GlobalConfig, error)
	DepositType(id uint64) (*stablestake.DepositType, error)
	DepositTypes() ([]*stablestake.DepositType, error)
	AccountSummary(account common.Address) (*stablestake.AccountSummary, error)
	TokenBalance(account common.Address) (*big.Int, error)
	SplitDepositFee(amount *big.Int) (*big.Int, *big.Int, error)

	CreateDeposit(caller common.Address, depositType uint64, amount *big.Int) (uint64, error)
	CashoutDeposit(caller common.Address, index uint64) (*big.Int, error)
	ClaimInterest(caller common.Address) (*big.Int, error)
	ClaimAffiliateInterest(caller common.Address, amount *big.Int) (*big.Int, error)
	Faucet(account common.Address, amount *big.Int) error

	UpdateDepositType(caller common.Address, dt stablestake.DepositType) error
	SetCreateDepositFee(caller common.Address, fee uint64) error
	SetInvestmentWallet(caller, wallet common.Address) error
	SetFeesWallet(caller, wallet common.Address) error
	SetSupportedToken(caller, token common.Address) error
	SetAffiliateVestingPeriod(caller common.Address, period uint64) error
	TransferOwnership(caller, newOwner common.Address) error
	Blacklist(caller, account common.Address, flag bool) error
	PauseDepositCreation(caller common.Address, paused bool) error
	PauseCashout(caller common.Address, paused bool) error
	AirdropDeposit(caller, account common.Address, depositType uint64, amount *big.Int) (uint64, error)
	AirdropAffiliateInterest(caller, account common.Address, amount *big.Int) error
	CashoutAllDeposits(caller, account common.Address) (*big.Int, error)
	UpdateDepositSize(caller, account common.Address, index uint64, size *big.Int) error
	WithdrawERC20(caller, token common.Address, amount *big.Int) error
}

// EventLister serves the audit journal.
type EventLister interface {
	List(ctx context.Context, filter journal.Filter) ([]journal.Record, error)
}

type Config struct {
	Ledger         Ledger
	Events         EventLister
	Authenticator  *middleware.Authenticator
	RateLimiter    *middleware.RateLimiter
	Observability  *middleware.Observability
	MetricsHandler http.Handler
	CORS           middleware.CORSConfig
	// FaucetAmount enables POST /v1/faucet when non-nil.
	FaucetAmount *big.Int
	FaucetQuota  nativecommon.Quota
	ServiceName  string
	Logger       *slog.Logger
}

type handlers struct {
	ledger Ledger
	events EventLister
	faucet *big.Int
	quota  *faucetQuota
	logger *slog.Logger
}

func New(cfg Config) (http.Handler, error) {
	if cfg.Ledger == nil {
		return nil, errors.New("routes: ledger required")
	}
	if cfg.Authenticator == nil {
		return nil, errors.New("routes: authenticator required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	service := cfg.ServiceName
	if service == "" {
		service = "stablestaked"
	}
	h := &handlers{
		ledger: cfg.Ledger,
		events: cfg.Events,
		faucet: cfg.FaucetAmount,
		quota:  newFaucetQuota(cfg.FaucetQuota),
		logger: logger.With("component", "routes"),
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS(cfg.CORS))
	if cfg.Observability != nil {
		r.Use(cfg.Observability.Middleware)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Route("/v1", func(v1 chi.Router) {
		v1.Group(func(pub chi.Router) {
			pub.Use(limit(cfg.RateLimiter, RateLimitLedger))
			pub.Get("/config", h.getConfig)
			pub.Get("/deposit-types", h.listDepositTypes)
			pub.Get("/deposit-types/{id}", h.getDepositType)
			pub.Get("/fees/split", h.previewFeeSplit)
			pub.Get("/accounts/{address}", h.getAccount)
			pub.Get("/accounts/{address}/balance", h.getBalance)
			pub.Get("/events", h.listEvents)
			pub.Get("/events/export", h.exportEvents)
		})

		v1.Group(func(acct chi.Router) {
			acct.Use(limit(cfg.RateLimiter, RateLimitLedger))
			acct.Use(cfg.Authenticator.Middleware())
			acct.Post("/deposits", h.createDeposit)
			acct.Post("/deposits/{index}/cashout", h.cashoutDeposit)
			acct.Post("/interest/claim", h.claimInterest)
			acct.Post("/affiliate/claim", h.claimAffiliate)
			if h.faucet != nil {
				acct.Post("/faucet", h.fundFromFaucet)
			}
		})

		v1.Route("/admin", func(admin chi.Router) {
			admin.Use(limit(cfg.RateLimiter, RateLimitAdmin))
			admin.Use(cfg.Authenticator.Middleware())
			admin.Post("/deposit-types", h.updateDepositType)
			admin.Post("/create-deposit-fee", h.setCreateDepositFee)
			admin.Post("/investment-wallet", h.setInvestmentWallet)
			admin.Post("/fees-wallet", h.setFeesWallet)
			admin.Post("/supported-token", h.setSupportedToken)
			admin.Post("/affiliate-vesting-period", h.setAffiliateVestingPeriod)
			admin.Post("/owner", h.transferOwnership)
			admin.Post("/blacklist", h.blacklist)
			admin.Post("/pause/deposits", h.pauseDeposits)
			admin.Post("/pause/cashouts", h.pauseCashouts)
			admin.Post("/deposits/airdrop", h.airdropDeposit)
			admin.Post("/affiliate/airdrop", h.airdropAffiliate)
			admin.Post("/accounts/{address}/cashout-all", h.cashoutAll)
			admin.Post("/accounts/{address}/deposits/{index}/size", h.updateDepositSize)
			admin.Post("/withdraw", h.withdraw)
		})
	})

	return otelhttp.NewHandler(r, service), nil
}

func limit(limiter *middleware.RateLimiter, group string) func(http.Handler) http.Handler {
	if limiter == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return limiter.Middleware(group)
}
