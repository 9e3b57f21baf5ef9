package stablestake

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// routeDepositFunds forwards a freshly received deposit out of custody: the
// fee portion to the fees wallet and the rest to the investment wallet.
func (e *Engine) routeDepositFunds(cfg *GlobalConfig, feePortion, investmentPortion *big.Int) error {
	if err := e.transferOut(cfg.SupportedToken, cfg.FeesWallet, feePortion); err != nil {
		return err
	}
	return e.transferOut(cfg.SupportedToken, cfg.InvestmentWallet, investmentPortion)
}

// SplitDepositFee previews how amount would be divided under the current fee.
func (e *Engine) SplitDepositFee(amount *big.Int) (feePortion, investmentPortion *big.Int, err error) {
	err = e.view(func(uint64) error {
		cfg, err := e.loadConfig()
		if err != nil {
			return err
		}
		feePortion, investmentPortion, err = splitFee(amount, cfg.CreateDepositFee)
		return err
	})
	return feePortion, investmentPortion, err
}

// SetCreateDepositFee sets the deposit-creation fee, out of 1000.
func (e *Engine) SetCreateDepositFee(caller common.Address, fee uint64) error {
	return e.execute(func(now uint64) error {
		cfg, err := e.admin(caller)
		if err != nil {
			return err
		}
		if fee > feeDenominator {
			return ErrInvalidConfig
		}
		cfg.CreateDepositFee = fee
		if err := e.state.StableStakeConfigPut(cfg); err != nil {
			return err
		}
		e.record(configUpdatedEvent("createDepositFee", uintString(fee), now))
		return nil
	})
}

// SetInvestmentWallet sets the wallet receiving the investment portion.
func (e *Engine) SetInvestmentWallet(caller, wallet common.Address) error {
	return e.setAddress(caller, wallet, "investmentWallet", func(cfg *GlobalConfig) {
		cfg.InvestmentWallet = wallet
	})
}

// SetFeesWallet sets the wallet receiving the fee portion.
func (e *Engine) SetFeesWallet(caller, wallet common.Address) error {
	return e.setAddress(caller, wallet, "feesWallet", func(cfg *GlobalConfig) {
		cfg.FeesWallet = wallet
	})
}

// SetSupportedToken changes the token accepted by CreateDeposit and used for
// payouts. Existing deposit sizes are not converted.
func (e *Engine) SetSupportedToken(caller, token common.Address) error {
	return e.setAddress(caller, token, "supportedToken", func(cfg *GlobalConfig) {
		cfg.SupportedToken = token
	})
}

func (e *Engine) setAddress(caller, addr common.Address, field string, apply func(*GlobalConfig)) error {
	return e.execute(func(now uint64) error {
		cfg, err := e.admin(caller)
		if err != nil {
			return err
		}
		if isZeroAddress(addr) {
			return ErrInvalidAddress
		}
		apply(cfg)
		if err := e.state.StableStakeConfigPut(cfg); err != nil {
			return err
		}
		e.record(configUpdatedEvent(field, addr.Hex(), now))
		return nil
	})
}
