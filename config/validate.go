package config

import (
	"fmt"
	"math/big"
	"net/url"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	nativecommon "stablestake/native/common"
	"stablestake/native/stablestake"
)

const (
	maxCreateDepositFee   = 1000
	defaultMinimalDeposit = "100000000000000000000"
	defaultMultiplier     = 100
)

// Validate rejects configurations the ledger could not be initialised with.
func (c *Config) Validate() error {
	if c.ChainID == 0 {
		return fmt.Errorf("ChainID must be set")
	}
	for name, value := range map[string]string{
		"Ledger.Owner":            c.Ledger.Owner,
		"Ledger.FeesWallet":       c.Ledger.FeesWallet,
		"Ledger.InvestmentWallet": c.Ledger.InvestmentWallet,
	} {
		if _, err := parseAddress(value); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	if strings.TrimSpace(c.Ledger.SupportedToken) != "" {
		if _, err := parseAddress(c.Ledger.SupportedToken); err != nil {
			return fmt.Errorf("Ledger.SupportedToken: %w", err)
		}
	}
	if c.Ledger.InitialInterval == 0 {
		return fmt.Errorf("Ledger.InitialInterval must be positive")
	}
	if c.Ledger.AffiliateVestingPeriod == 0 {
		return fmt.Errorf("Ledger.AffiliateVestingPeriod must be positive")
	}
	if c.Ledger.CreateDepositFee > maxCreateDepositFee {
		return fmt.Errorf("Ledger.CreateDepositFee %d exceeds %d", c.Ledger.CreateDepositFee, maxCreateDepositFee)
	}
	if _, err := parsePositiveAmount(c.Ledger.MinimalDeposit); err != nil {
		return fmt.Errorf("Ledger.MinimalDeposit: %w", err)
	}
	if c.RateLimit.RequestsPerSecond < 0 || c.RateLimit.Burst < 0 {
		return fmt.Errorf("RateLimit values must not be negative")
	}
	switch strings.ToLower(strings.TrimSpace(c.Journal.Driver)) {
	case "", "sqlite", "postgres", "postgresql":
	default:
		return fmt.Errorf("Journal.Driver %q is not supported", c.Journal.Driver)
	}
	if err := c.validateAuth(); err != nil {
		return err
	}
	if c.Faucet.Enabled {
		if c.ChainID == MainnetChainID {
			return fmt.Errorf("Faucet cannot be enabled on chain %d", MainnetChainID)
		}
		if _, err := parsePositiveAmount(c.Faucet.Amount); err != nil {
			return fmt.Errorf("Faucet.Amount: %w", err)
		}
		if strings.TrimSpace(c.Faucet.MaxAmountPerEpoch) != "" {
			if _, err := parsePositiveAmount(c.Faucet.MaxAmountPerEpoch); err != nil {
				return fmt.Errorf("Faucet.MaxAmountPerEpoch: %w", err)
			}
		}
	}
	if endpoint := strings.TrimSpace(c.Webhook.Endpoint); endpoint != "" {
		u, err := url.Parse(endpoint)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("Webhook.Endpoint %q must be an http(s) URL", c.Webhook.Endpoint)
		}
		if c.Webhook.SigningSecret() == "" {
			return fmt.Errorf("Webhook.Secret or Webhook.SecretEnv must be set")
		}
	}
	switch strings.ToLower(strings.TrimSpace(c.Logging.Level)) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("Logging.Level %q is not supported", c.Logging.Level)
	}
	return nil
}

func (c *Config) validateAuth() error {
	if c.Auth.Disabled {
		local := strings.EqualFold(strings.TrimSpace(c.Environment), "local")
		if !local && c.ChainID != TestnetChainID {
			return fmt.Errorf("Auth.Disabled is only allowed for the local environment or chain %d", TestnetChainID)
		}
		return nil
	}
	if c.Auth.Secret() == "" {
		if env := strings.TrimSpace(c.Auth.HMACSecretEnv); env != "" {
			return fmt.Errorf("Auth requires a secret: %s is unset and Auth.HMACSecret is empty", env)
		}
		return fmt.Errorf("Auth requires Auth.HMACSecret or Auth.HMACSecretEnv")
	}
	return nil
}

// Genesis converts the ledger section into engine genesis parameters. token
// is used when no SupportedToken override is configured.
func (c *Config) Genesis(token common.Address) (stablestake.Genesis, error) {
	if err := c.Validate(); err != nil {
		return stablestake.Genesis{}, err
	}
	owner, _ := parseAddress(c.Ledger.Owner)
	feesWallet, _ := parseAddress(c.Ledger.FeesWallet)
	investmentWallet, _ := parseAddress(c.Ledger.InvestmentWallet)
	if override := strings.TrimSpace(c.Ledger.SupportedToken); override != "" {
		token, _ = parseAddress(override)
	}
	minimal, _ := parsePositiveAmount(c.Ledger.MinimalDeposit)
	return stablestake.Genesis{
		Owner:                  owner,
		FeesWallet:             feesWallet,
		InvestmentWallet:       investmentWallet,
		SupportedToken:         token,
		InitialInterval:        c.Ledger.InitialInterval,
		AffiliateVestingPeriod: c.Ledger.AffiliateVestingPeriod,
		CreateDepositFee:       c.Ledger.CreateDepositFee,
		MinimalDeposit:         minimal,
		Multiplier:             c.Ledger.Multiplier,
	}, nil
}

// FaucetAmount parses the configured faucet grant.
func (c *Config) FaucetAmount() (*big.Int, error) {
	return parsePositiveAmount(c.Faucet.Amount)
}

// FaucetQuota builds the per-account faucet limits.
func (c *Config) FaucetQuota() (nativecommon.Quota, error) {
	q := nativecommon.Quota{
		MaxRequestsPerEpoch: c.Faucet.MaxRequestsPerEpoch,
		EpochSeconds:        c.Faucet.EpochSeconds,
	}
	if strings.TrimSpace(c.Faucet.MaxAmountPerEpoch) != "" {
		amount, err := parsePositiveAmount(c.Faucet.MaxAmountPerEpoch)
		if err != nil {
			return nativecommon.Quota{}, err
		}
		q.MaxAmountPerEpoch = amount
	}
	return q, nil
}

func parseAddress(value string) (common.Address, error) {
	trimmed := strings.TrimSpace(value)
	if !common.IsHexAddress(trimmed) {
		return common.Address{}, fmt.Errorf("invalid address %q", value)
	}
	addr := common.HexToAddress(trimmed)
	if addr == (common.Address{}) {
		return common.Address{}, fmt.Errorf("zero address")
	}
	return addr, nil
}

func parsePositiveAmount(value string) (*big.Int, error) {
	amount, ok := new(big.Int).SetString(strings.TrimSpace(value), 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount %q", value)
	}
	if amount.Sign() <= 0 {
		return nil, fmt.Errorf("amount must be positive")
	}
	return amount, nil
}
