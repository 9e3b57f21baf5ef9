package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config is the stablestaked node configuration.
type Config struct {
	ListenAddress   string `toml:"ListenAddress"`
	DataDir         string `toml:"DataDir"`
	ChainID         uint64 `toml:"ChainID"`
	Environment     string `toml:"Environment"`
	DeploymentsFile string `toml:"DeploymentsFile,omitempty"`

	Ledger        Ledger        `toml:"Ledger"`
	Logging       Logging       `toml:"Logging"`
	Auth          Auth          `toml:"Auth"`
	RateLimit     RateLimit     `toml:"RateLimit"`
	Journal       Journal       `toml:"Journal"`
	Faucet        Faucet        `toml:"Faucet"`
	Webhook       Webhook       `toml:"Webhook"`
	Observability Observability `toml:"Observability"`
}

// Ledger carries the genesis parameters written on first start.
type Ledger struct {
	Owner            string `toml:"Owner"`
	FeesWallet       string `toml:"FeesWallet"`
	InvestmentWallet string `toml:"InvestmentWallet"`
	// SupportedToken overrides the token registered for the chain.
	SupportedToken         string `toml:"SupportedToken,omitempty"`
	InitialInterval        uint64 `toml:"InitialInterval"`
	AffiliateVestingPeriod uint64 `toml:"AffiliateVestingPeriod"`
	CreateDepositFee       uint64 `toml:"CreateDepositFee"`
	MinimalDeposit         string `toml:"MinimalDeposit"`
	Multiplier             uint64 `toml:"Multiplier"`
}

// Logging controls the slog handler.
type Logging struct {
	Level      string `toml:"Level"`
	File       string `toml:"File,omitempty"`
	MaxSizeMB  int    `toml:"MaxSizeMB,omitempty"`
	MaxBackups int    `toml:"MaxBackups,omitempty"`
	MaxAgeDays int    `toml:"MaxAgeDays,omitempty"`
}

// Auth configures bearer token verification for caller identity. Disabled
// trusts the X-Caller-Address header and is only accepted for local
// environments and the test network.
type Auth struct {
	Disabled      bool   `toml:"Disabled,omitempty"`
	HMACSecret    string `toml:"HMACSecret,omitempty"`
	HMACSecretEnv string `toml:"HMACSecretEnv,omitempty"`
	Issuer        string `toml:"Issuer,omitempty"`
	Audience      string `toml:"Audience,omitempty"`
}

// Secret resolves the HMAC secret, preferring the environment variable.
func (a Auth) Secret() string {
	if env := strings.TrimSpace(a.HMACSecretEnv); env != "" {
		if v := strings.TrimSpace(os.Getenv(env)); v != "" {
			return v
		}
	}
	return strings.TrimSpace(a.HMACSecret)
}

// RateLimit configures the per-client token bucket. Zero disables limiting.
type RateLimit struct {
	RequestsPerSecond float64 `toml:"RequestsPerSecond"`
	Burst             int     `toml:"Burst"`
}

// Journal selects the SQL event journal. An empty driver disables it.
type Journal struct {
	Driver string `toml:"Driver"`
	DSN    string `toml:"DSN"`
}

// JournalDSN returns the journal connection string with relative sqlite paths
// placed inside DataDir.
func (c *Config) JournalDSN() string {
	dsn := strings.TrimSpace(c.Journal.DSN)
	driver := strings.ToLower(strings.TrimSpace(c.Journal.Driver))
	if driver != "sqlite" || dsn == "" || strings.HasPrefix(dsn, "file:") || filepath.IsAbs(dsn) {
		return dsn
	}
	return filepath.Join(c.DataDir, dsn)
}

// Faucet enables minting test tokens over HTTP. It is rejected on the
// production network. Each account may mint at most
// MaxRequestsPerEpoch times and MaxAmountPerEpoch tokens per EpochSeconds.
type Faucet struct {
	Enabled             bool   `toml:"Enabled"`
	Amount              string `toml:"Amount"`
	MaxRequestsPerEpoch uint32 `toml:"MaxRequestsPerEpoch,omitempty"`
	MaxAmountPerEpoch   string `toml:"MaxAmountPerEpoch,omitempty"`
	EpochSeconds        uint32 `toml:"EpochSeconds,omitempty"`
}

// Webhook forwards committed ledger events to an HTTP endpoint. An empty
// endpoint disables delivery; EventTypes restricts which events are sent.
type Webhook struct {
	Endpoint   string   `toml:"Endpoint,omitempty"`
	Secret     string   `toml:"Secret,omitempty"`
	SecretEnv  string   `toml:"SecretEnv,omitempty"`
	EventTypes []string `toml:"EventTypes,omitempty"`
}

// SigningSecret resolves the HMAC secret, preferring the environment variable.
func (w Webhook) SigningSecret() string {
	if env := strings.TrimSpace(w.SecretEnv); env != "" {
		if v := strings.TrimSpace(os.Getenv(env)); v != "" {
			return v
		}
	}
	return strings.TrimSpace(w.Secret)
}

// Observability toggles the Prometheus endpoint and OTLP export.
type Observability struct {
	Metrics      bool   `toml:"Metrics"`
	Tracing      bool   `toml:"Tracing"`
	OTLPMetrics  bool   `toml:"OTLPMetrics"`
	OTLPEndpoint string `toml:"OTLPEndpoint,omitempty"`
	OTLPInsecure bool   `toml:"OTLPInsecure"`
	OTLPHeaders  string `toml:"OTLPHeaders,omitempty"`
}

// Load loads the configuration from the given path, writing a default file
// when none exists.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}

	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, err
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("config file %s has unknown key %s", path, undecoded[0])
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if strings.TrimSpace(c.ListenAddress) == "" {
		c.ListenAddress = ":8080"
	}
	if strings.TrimSpace(c.DataDir) == "" {
		c.DataDir = "./stablestake-data"
	}
	if c.ChainID == 0 {
		c.ChainID = TestnetChainID
	}
	if strings.TrimSpace(c.Environment) == "" {
		c.Environment = "local"
	}
	if strings.TrimSpace(c.Logging.Level) == "" {
		c.Logging.Level = "info"
	}
	if strings.TrimSpace(c.Ledger.MinimalDeposit) == "" {
		c.Ledger.MinimalDeposit = defaultMinimalDeposit
	}
	if c.Ledger.Multiplier == 0 {
		c.Ledger.Multiplier = defaultMultiplier
	}
	if c.Ledger.InitialInterval == 0 || c.Ledger.AffiliateVestingPeriod == 0 {
		interval, vesting := DefaultIntervals(c.ChainID)
		if c.Ledger.InitialInterval == 0 {
			c.Ledger.InitialInterval = interval
		}
		if c.Ledger.AffiliateVestingPeriod == 0 {
			c.Ledger.AffiliateVestingPeriod = vesting
		}
	}
}

// createDefault creates and saves a default test network configuration.
func createDefault(path string) (*Config, error) {
	cfg := &Config{
		ListenAddress: ":8080",
		DataDir:       "./stablestake-data",
		ChainID:       TestnetChainID,
		Environment:   "local",
		Ledger: Ledger{
			Owner:            "0x00000000000000000000000000000000000000a1",
			FeesWallet:       "0x00000000000000000000000000000000000000f1",
			InvestmentWallet: "0x00000000000000000000000000000000000000b1",
			CreateDepositFee: 50,
		},
		Logging:   Logging{Level: "info"},
		Auth:      Auth{Disabled: true, HMACSecretEnv: "STABLESTAKE_JWT_SECRET", Issuer: "stablestake"},
		RateLimit: RateLimit{RequestsPerSecond: 20, Burst: 40},
		Journal:   Journal{Driver: "sqlite", DSN: "stablestake-journal.db"},
		Faucet: Faucet{
			Enabled:             true,
			Amount:              "1000000000000000000000",
			MaxRequestsPerEpoch: 3,
			EpochSeconds:        86400,
		},
		Observability: Observability{
			Metrics: true,
		},
	}
	cfg.applyDefaults()

	if err := persist(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func persist(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}
