package stablestake

import "github.com/ethereum/go-ethereum/common"

// Initialize writes the genesis configuration and deposit type 0. It is a
// no-op when the ledger already holds a configuration.
func (e *Engine) Initialize(genesis Genesis) error {
	return e.execute(func(now uint64) error {
		if _, ok, err := e.state.StableStakeConfigGet(); err != nil {
			return err
		} else if ok {
			return nil
		}
		for _, addr := range []common.Address{genesis.Owner, genesis.FeesWallet, genesis.InvestmentWallet, genesis.SupportedToken} {
			if isZeroAddress(addr) {
				return ErrInvalidAddress
			}
		}
		if genesis.InitialInterval == 0 || genesis.AffiliateVestingPeriod == 0 || genesis.CreateDepositFee > feeDenominator {
			return ErrInvalidConfig
		}
		defaultType := &DepositType{
			ID:             0,
			LockPeriod:     genesis.InitialInterval,
			MinimalDeposit: newBigInt(genesis.MinimalDeposit),
			Multiplier:     genesis.Multiplier,
			RewardInterval: genesis.InitialInterval,
		}
		if err := validateDepositType(defaultType); err != nil {
			return err
		}
		cfg := &GlobalConfig{
			Owner:                  genesis.Owner,
			FeesWallet:             genesis.FeesWallet,
			InvestmentWallet:       genesis.InvestmentWallet,
			SupportedToken:         genesis.SupportedToken,
			CreateDepositFee:       genesis.CreateDepositFee,
			AffiliateVestingPeriod: genesis.AffiliateVestingPeriod,
		}
		if err := e.state.StableStakeConfigPut(cfg); err != nil {
			return err
		}
		if err := e.state.StableStakeDepositTypePut(defaultType); err != nil {
			return err
		}
		e.record(initializedEvent(cfg, now))
		return nil
	})
}
