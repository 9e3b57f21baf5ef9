package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"stablestake/config"
	"stablestake/core/events"
	"stablestake/core/state"
	"stablestake/gateway/middleware"
	"stablestake/gateway/routes"
	"stablestake/integrations/webhooks"
	"stablestake/native/stablestake"
	"stablestake/observability"
	"stablestake/observability/logging"
	telemetry "stablestake/observability/otel"
	"stablestake/storage"
	"stablestake/storage/journal"
)

const serviceName = "stablestaked"

func main() {
	cfgPath := flag.String("config", "./stablestake.toml", "Path to the configuration file")
	listen := flag.String("listen", "", "Override the HTTP listen address")
	flag.Parse()

	if err := run(*cfgPath, *listen); err != nil {
		slog.Error("stablestaked exited", "error", err)
		os.Exit(1)
	}
}

func run(cfgPath, listenOverride string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if listenOverride != "" {
		cfg.ListenAddress = listenOverride
	}

	logger := logging.Setup(serviceName, cfg.Environment, logging.Options{
		Level:      cfg.Logging.Level,
		File:       cfg.Logging.File,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName: serviceName,
		Environment: cfg.Environment,
		Endpoint:    cfg.Observability.OTLPEndpoint,
		Insecure:    cfg.Observability.OTLPInsecure,
		Headers:     telemetry.ParseHeaders(cfg.Observability.OTLPHeaders),
		Metrics:     cfg.Observability.OTLPMetrics,
		Traces:      cfg.Observability.Tracing,
	})
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTelemetry(flushCtx); err != nil {
			logger.Warn("telemetry shutdown failed", "error", err)
		}
	}()

	deployments, err := config.LoadDeployments(cfg.DeploymentsFile)
	if err != nil {
		return err
	}
	deployment, err := deployments.Resolve(cfg.ChainID)
	if err != nil {
		return fmt.Errorf("resolve deployment: %w", err)
	}
	logger.Info("resolved deployment", "chain_id", cfg.ChainID, "network", deployment.Name,
		"ledger", deployment.Ledger.Hex(), "token", deployment.SupportedToken.Hex())

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	db, err := storage.NewLevelDB(filepath.Join(cfg.DataDir, "ledger"))
	if err != nil {
		return fmt.Errorf("open leveldb: %w", err)
	}
	defer db.Close()

	store := state.NewStore(db)
	bank := state.NewBank(store, deployment.Ledger)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	emitters := events.Fanout{observability.NewLedgerMetrics(registry)}
	var eventJournal *journal.Journal
	if driver := strings.TrimSpace(cfg.Journal.Driver); driver != "" {
		eventJournal, err = journal.Open(driver, cfg.JournalDSN())
		if err != nil {
			return fmt.Errorf("open journal: %w", err)
		}
		defer eventJournal.Close()
		eventJournal.SetLogger(logger)
		emitters = append(emitters, eventJournal)
		logger.Info("event journal enabled", "driver", driver, logging.MaskField("dsn", cfg.Journal.DSN))
	}

	if endpoint := strings.TrimSpace(cfg.Webhook.Endpoint); endpoint != "" {
		dispatcher, err := webhooks.NewDispatcher(endpoint, []byte(cfg.Webhook.SigningSecret()),
			webhooks.WithLogger(logger),
			webhooks.WithEventTypes(cfg.Webhook.EventTypes...))
		if err != nil {
			return fmt.Errorf("webhook dispatcher: %w", err)
		}
		defer dispatcher.Close()
		emitters = append(emitters, dispatcher)
		logger.Info("webhook delivery enabled", logging.MaskField("endpoint", endpoint), "event_types", cfg.Webhook.EventTypes)
	}

	engine := stablestake.NewEngine()
	engine.SetState(store)
	engine.SetAsset(bank)
	engine.SetEmitter(emitters)

	genesis, err := cfg.Genesis(deployment.SupportedToken)
	if err != nil {
		return fmt.Errorf("genesis: %w", err)
	}
	if err := engine.Initialize(genesis); err != nil {
		return fmt.Errorf("initialize ledger: %w", err)
	}
	ledgerCfg, err := engine.Config()
	if err != nil {
		return err
	}
	logger.Info("ledger ready",
		"owner", ledgerCfg.Owner.Hex(),
		"token", ledgerCfg.SupportedToken.Hex(),
		"create_deposit_fee", ledgerCfg.CreateDepositFee)

	auth := middleware.NewAuthenticator(middleware.AuthConfig{
		Enabled:    !cfg.Auth.Disabled,
		HMACSecret: cfg.Auth.Secret(),
		Issuer:     cfg.Auth.Issuer,
		Audience:   cfg.Auth.Audience,
	}, logger)
	routeCfg := routes.Config{
		Ledger:        engine,
		Authenticator: auth,
		RateLimiter:   middleware.NewRateLimiter(rateLimits(cfg.RateLimit), logger),
		ServiceName:   serviceName,
		Logger:        logger,
	}
	if cfg.Auth.Disabled {
		logger.Warn("bearer authentication disabled; callers are taken from the " + middleware.CallerHeader + " header")
	}
	if eventJournal != nil {
		routeCfg.Events = eventJournal
	}
	if cfg.Observability.Metrics {
		routeCfg.Observability = middleware.NewObservability(middleware.ObservabilityConfig{LogRequests: true}, registry, logger)
		routeCfg.MetricsHandler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	}
	if cfg.Faucet.Enabled {
		amount, err := cfg.FaucetAmount()
		if err != nil {
			return err
		}
		quota, err := cfg.FaucetQuota()
		if err != nil {
			return err
		}
		routeCfg.FaucetAmount = amount
		routeCfg.FaucetQuota = quota
		engine.EnableFaucet(true)
		logger.Warn("test-token faucet enabled", "chain_id", cfg.ChainID)
	}

	handler, err := routes.New(routeCfg)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              cfg.ListenAddress,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "listen", cfg.ListenAddress)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown requested")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	logger.Info("stopped")
	return nil
}

// rateLimits applies the configured bucket to every route group. Faucet
// mints cost more than ordinary calls.
func rateLimits(cfg config.RateLimit) map[string]middleware.RateLimit {
	faucetCost := min(5, max(cfg.Burst, 1))
	limit := middleware.RateLimit{
		RatePerSecond: cfg.RequestsPerSecond,
		Burst:         cfg.Burst,
		DefaultTokens: 1,
		Tokens:        map[string]int{"POST /v1/faucet": faucetCost},
	}
	return map[string]middleware.RateLimit{
		routes.RateLimitLedger: limit,
		routes.RateLimitAdmin:  limit,
	}
}
