package stablestake

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// CreateDeposit pulls amount of the supported token from caller, routes it to
// the fees and investment wallets and records a new deposit of the full
// amount. It returns the index of the deposit within the caller's collection.
func (e *Engine) CreateDeposit(caller common.Address, depositType uint64, amount *big.Int) (uint64, error) {
	var index uint64
	err := e.execute(func(now uint64) error {
		cfg, err := e.loadConfig()
		if err != nil {
			return err
		}
		if err := e.requireActive(cfg, caller, ModuleDeposit); err != nil {
			return err
		}
		dt, err := e.loadDepositType(depositType)
		if err != nil {
			return err
		}
		if amount == nil || amount.Sign() <= 0 {
			return ErrInvalidAmount
		}
		if amount.Cmp(dt.MinimalDeposit) < 0 {
			return ErrBelowMinimum
		}
		feePortion, investmentPortion, err := splitFee(amount, cfg.CreateDepositFee)
		if err != nil {
			return err
		}

		// Funds must be in custody before the ledger credits anything.
		if err := e.transferIn(cfg.SupportedToken, caller, amount); err != nil {
			return err
		}

		deposits, err := e.loadDeposits(caller)
		if err != nil {
			return err
		}
		index = uint64(len(deposits))
		deposits = append(deposits, &Deposit{
			Owner:         caller,
			DepositType:   depositType,
			Size:          new(big.Int).Set(amount),
			CreatedAt:     now,
			LastClaimTime: now,
		})
		if err := e.state.StableStakeDepositsPut(caller, deposits); err != nil {
			return err
		}

		if err := e.routeDepositFunds(cfg, feePortion, investmentPortion); err != nil {
			return err
		}
		e.record(depositCreatedEvent(caller, depositType, index, amount, feePortion, now))
		return nil
	})
	if err != nil {
		return 0, err
	}
	return index, nil
}

// AirdropDeposit credits a promotional deposit to account. No tokens move, and
// neither the fee split nor the minimal deposit apply.
func (e *Engine) AirdropDeposit(caller, account common.Address, depositType uint64, amount *big.Int) (uint64, error) {
	var index uint64
	err := e.execute(func(now uint64) error {
		if _, err := e.admin(caller); err != nil {
			return err
		}
		if isZeroAddress(account) {
			return ErrInvalidAddress
		}
		if _, err := e.loadDepositType(depositType); err != nil {
			return err
		}
		if amount == nil || amount.Sign() <= 0 {
			return ErrInvalidAmount
		}
		if _, err := toU256(amount); err != nil {
			return err
		}
		deposits, err := e.loadDeposits(account)
		if err != nil {
			return err
		}
		index = uint64(len(deposits))
		deposits = append(deposits, &Deposit{
			Owner:         account,
			DepositType:   depositType,
			Size:          new(big.Int).Set(amount),
			CreatedAt:     now,
			LastClaimTime: now,
		})
		if err := e.state.StableStakeDepositsPut(account, deposits); err != nil {
			return err
		}
		e.record(depositAirdroppedEvent(account, depositType, index, amount, now))
		return nil
	})
	if err != nil {
		return 0, err
	}
	return index, nil
}

// CashoutDeposit closes the deposit at index once its lock period has elapsed,
// paying principal plus unclaimed interest. Later deposits shift down by one
// index.
func (e *Engine) CashoutDeposit(caller common.Address, index uint64) (*big.Int, error) {
	var payout *big.Int
	err := e.execute(func(now uint64) error {
		cfg, err := e.loadConfig()
		if err != nil {
			return err
		}
		if err := e.requireActive(cfg, caller, ModuleCashout); err != nil {
			return err
		}
		deposits, err := e.loadDeposits(caller)
		if err != nil {
			return err
		}
		if index >= uint64(len(deposits)) {
			return ErrDepositNotFound
		}
		d := deposits[index]
		dt, err := e.loadDepositType(d.DepositType)
		if err != nil {
			return err
		}
		if now < d.CreatedAt || now-d.CreatedAt < dt.LockPeriod {
			return ErrStillLocked
		}
		interest, err := settle(d, dt, now)
		if err != nil {
			return err
		}
		payout = addBig(d.Size, interest)

		remaining := append(deposits[:index:index], deposits[index+1:]...)
		if err := e.state.StableStakeDepositsPut(caller, remaining); err != nil {
			return err
		}
		if err := e.transferOut(cfg.SupportedToken, caller, payout); err != nil {
			return err
		}
		e.record(depositCashedOutEvent(caller, index, d.Size, interest, false, now))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return payout, nil
}

// AccountDepositedValue sums Size over the live deposits of account.
// Blacklisted accounts can still be queried.
func (e *Engine) AccountDepositedValue(account common.Address) (*big.Int, error) {
	var out *big.Int
	err := e.view(func(uint64) error {
		deposits, err := e.loadDeposits(account)
		if err != nil {
			return err
		}
		out = depositedValue(deposits)
		return nil
	})
	return out, err
}

func depositedValue(deposits []*Deposit) *big.Int {
	total := big.NewInt(0)
	for _, d := range deposits {
		total.Add(total, d.Size)
	}
	return total
}

// AccountDeposits returns copies of the live deposits of account.
func (e *Engine) AccountDeposits(account common.Address) ([]*Deposit, error) {
	var out []*Deposit
	err := e.view(func(uint64) error {
		deposits, err := e.loadDeposits(account)
		if err != nil {
			return err
		}
		out = cloneDeposits(deposits)
		return nil
	})
	return out, err
}

// AccountSummary gathers every read-only figure for account from a single
// consistent view.
func (e *Engine) AccountSummary(account common.Address) (*AccountSummary, error) {
	var out *AccountSummary
	err := e.view(func(now uint64) error {
		deposits, err := e.loadDeposits(account)
		if err != nil {
			return err
		}
		blacklisted, err := e.state.StableStakeBlacklistGet(account)
		if err != nil {
			return err
		}
		interest, err := e.interestAvailable(account, now)
		if err != nil {
			return err
		}
		next, err := e.nextInterestTimes(deposits, now)
		if err != nil {
			return err
		}
		summary := &AccountSummary{
			Address:            account,
			Blacklisted:        blacklisted,
			DepositedValue:     depositedValue(deposits),
			InterestAvailable:  interest,
			LastClaimTimes:     lastClaimTimes(deposits),
			NextInterestTimes:  next,
			Deposits:           cloneDeposits(deposits),
			AffiliateClaimable: big.NewInt(0),
			ObservedAt:         now,
		}
		alloc, ok, err := e.state.StableStakeAffiliateGet(account)
		if err != nil {
			return err
		}
		if ok && alloc != nil {
			claimable, err := claimableAffiliate(alloc, now)
			if err != nil {
				return err
			}
			summary.Affiliate = alloc.Clone()
			summary.AffiliateClaimable = claimable
		}
		out = summary
		return nil
	})
	return out, err
}

func cloneDeposits(deposits []*Deposit) []*Deposit {
	out := make([]*Deposit, 0, len(deposits))
	for _, d := range deposits {
		out = append(out, d.Clone())
	}
	return out
}
