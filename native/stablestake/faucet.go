package stablestake

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// EventTypeFaucetFunded is emitted when test tokens are minted to an account.
const EventTypeFaucetFunded = "stablestake.faucet.funded"

var (
	errMintUnsupported = errors.New("stablestake: asset cannot mint")
	// ErrFaucetDisabled is returned by Faucet unless EnableFaucet(true) was
	// called. It wraps ErrUnavailable.
	ErrFaucetDisabled = fmt.Errorf("%w: faucet disabled", ErrUnavailable)
)

// EnableFaucet switches the test-token faucet on or off. It is off by
// default and must stay off on production networks.
func (e *Engine) EnableFaucet(enabled bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.faucet = enabled
}

// Minter is implemented by assets able to create test balances.
type Minter interface {
	Mint(token, to common.Address, amount *big.Int) error
}

// Faucet mints amount of the supported token to account. It only works once
// enabled and when the configured asset implements Minter.
func (e *Engine) Faucet(account common.Address, amount *big.Int) error {
	return e.execute(func(now uint64) error {
		if !e.faucet {
			return ErrFaucetDisabled
		}
		cfg, err := e.loadConfig()
		if err != nil {
			return err
		}
		minter, ok := e.asset.(Minter)
		if !ok {
			return errMintUnsupported
		}
		if isZeroAddress(account) {
			return ErrInvalidAddress
		}
		if amount == nil || amount.Sign() <= 0 {
			return ErrInvalidAmount
		}
		if err := minter.Mint(cfg.SupportedToken, account, amount); err != nil {
			return err
		}
		e.record(newEvent(EventTypeFaucetFunded, now, map[string]string{
			"account": account.Hex(),
			"token":   cfg.SupportedToken.Hex(),
			"amount":  bigString(amount),
		}))
		return nil
	})
}

// BalanceReader is implemented by assets that expose holder balances.
type BalanceReader interface {
	BalanceOf(token, holder common.Address) (*big.Int, error)
}

// TokenBalance returns the supported-token balance held by account, or zero
// when the asset does not expose balances.
func (e *Engine) TokenBalance(account common.Address) (*big.Int, error) {
	out := big.NewInt(0)
	err := e.view(func(uint64) error {
		cfg, err := e.loadConfig()
		if err != nil {
			return err
		}
		reader, ok := e.asset.(BalanceReader)
		if !ok {
			return nil
		}
		balance, err := reader.BalanceOf(cfg.SupportedToken, account)
		if err != nil {
			return err
		}
		out = balance
		return nil
	})
	return out, err
}
