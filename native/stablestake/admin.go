package stablestake

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// PauseDepositCreation toggles the deposit-creation flow.
func (e *Engine) PauseDepositCreation(caller common.Address, paused bool) error {
	return e.setPause(caller, ModuleDeposit, paused)
}

// PauseCashout toggles the cashout and claim flows.
func (e *Engine) PauseCashout(caller common.Address, paused bool) error {
	return e.setPause(caller, ModuleCashout, paused)
}

func (e *Engine) setPause(caller common.Address, module string, paused bool) error {
	return e.execute(func(now uint64) error {
		cfg, err := e.admin(caller)
		if err != nil {
			return err
		}
		switch module {
		case ModuleDeposit:
			cfg.DepositCreationPaused = paused
		case ModuleCashout:
			cfg.CashoutPaused = paused
		}
		if err := e.state.StableStakeConfigPut(cfg); err != nil {
			return err
		}
		e.record(pauseEvent(module, paused, now))
		return nil
	})
}

// CashoutAllDeposits force-closes every deposit of account, paying principal
// plus accrued interest regardless of lock periods, pauses or blacklisting.
func (e *Engine) CashoutAllDeposits(caller, account common.Address) (*big.Int, error) {
	total := big.NewInt(0)
	err := e.execute(func(now uint64) error {
		cfg, err := e.admin(caller)
		if err != nil {
			return err
		}
		deposits, err := e.loadDeposits(account)
		if err != nil {
			return err
		}
		if len(deposits) == 0 {
			return nil
		}
		typesByID := e.newDepositTypeCache()
		principal := big.NewInt(0)
		interest := big.NewInt(0)
		for _, d := range deposits {
			dt, err := typesByID.get(d.DepositType)
			if err != nil {
				return err
			}
			owed, err := settle(d, dt, now)
			if err != nil {
				return err
			}
			principal.Add(principal, d.Size)
			interest.Add(interest, owed)
		}
		total.Add(principal, interest)

		if err := e.state.StableStakeDepositsPut(account, nil); err != nil {
			return err
		}
		if err := e.transferOut(cfg.SupportedToken, account, total); err != nil {
			return err
		}
		e.record(allDepositsCashedOutEvent(account, len(deposits), principal, interest, now))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return total, nil
}

// UpdateDepositSize overwrites the size of the deposit at index. It is an
// unchecked correction tool: lock, accrual timestamps and minimal deposit are
// left alone.
func (e *Engine) UpdateDepositSize(caller, account common.Address, index uint64, size *big.Int) error {
	return e.execute(func(now uint64) error {
		if _, err := e.admin(caller); err != nil {
			return err
		}
		if size == nil || size.Sign() < 0 {
			return ErrInvalidAmount
		}
		if _, err := toU256(size); err != nil {
			return err
		}
		deposits, err := e.loadDeposits(account)
		if err != nil {
			return err
		}
		if index >= uint64(len(deposits)) {
			return ErrDepositNotFound
		}
		previous := deposits[index].Size
		deposits[index].Size = new(big.Int).Set(size)
		if err := e.state.StableStakeDepositsPut(account, deposits); err != nil {
			return err
		}
		e.record(depositSizeUpdatedEvent(account, index, previous, size, now))
		return nil
	})
}

// WithdrawERC20 sweeps amount of any token held in custody to the owner. No
// check is made against outstanding deposits; liquidity is an operator
// concern.
func (e *Engine) WithdrawERC20(caller, token common.Address, amount *big.Int) error {
	return e.execute(func(now uint64) error {
		cfg, err := e.admin(caller)
		if err != nil {
			return err
		}
		if isZeroAddress(token) {
			return ErrInvalidAddress
		}
		if amount == nil || amount.Sign() <= 0 {
			return ErrInvalidAmount
		}
		if err := e.transferOut(token, cfg.Owner, amount); err != nil {
			return err
		}
		e.record(withdrawalEvent(token, cfg.Owner, amount, now))
		return nil
	})
}

// Config returns a copy of the global configuration.
func (e *Engine) Config() (*GlobalConfig, error) {
	var out *GlobalConfig
	err := e.view(func(uint64) error {
		cfg, err := e.loadConfig()
		out = cfg.Clone()
		return err
	})
	return out, err
}
