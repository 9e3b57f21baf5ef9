package stablestake

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// pendingInterest returns the interest owed on d at now together with the
// number of whole reward intervals it covers. Partial intervals earn nothing.
func pendingInterest(d *Deposit, dt *DepositType, now uint64) (*big.Int, uint64, error) {
	intervals := completedIntervals(d.LastClaimTime, now, dt.RewardInterval)
	interest, err := accruedInterest(d.Size, dt.Multiplier, intervals)
	if err != nil {
		return nil, 0, err
	}
	return interest, intervals, nil
}

// settle consumes the completed intervals on d. LastClaimTime moves forward by
// exactly the consumed intervals so the remainder counts toward the next one.
func settle(d *Deposit, dt *DepositType, now uint64) (*big.Int, error) {
	interest, intervals, err := pendingInterest(d, dt, now)
	if err != nil {
		return nil, err
	}
	d.LastClaimTime += intervals * dt.RewardInterval
	return interest, nil
}

// ClaimInterest pays out the interest accrued on every deposit of caller.
// Principal stays in place and lock periods do not apply. Claiming with
// nothing accrued succeeds with a zero payout.
func (e *Engine) ClaimInterest(caller common.Address) (*big.Int, error) {
	total := big.NewInt(0)
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
		typesByID := e.newDepositTypeCache()
		for _, d := range deposits {
			dt, err := typesByID.get(d.DepositType)
			if err != nil {
				return err
			}
			interest, err := settle(d, dt, now)
			if err != nil {
				return err
			}
			total.Add(total, interest)
		}
		if total.Sign() == 0 {
			return nil
		}
		if err := e.state.StableStakeDepositsPut(caller, deposits); err != nil {
			return err
		}
		if err := e.transferOut(cfg.SupportedToken, caller, total); err != nil {
			return err
		}
		e.record(interestClaimedEvent(caller, total, now))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return total, nil
}

// AccountInterestAvailable sums the claimable interest over every live
// deposit of account at the current time.
func (e *Engine) AccountInterestAvailable(account common.Address) (*big.Int, error) {
	var out *big.Int
	err := e.view(func(now uint64) error {
		total, err := e.interestAvailable(account, now)
		out = total
		return err
	})
	return out, err
}

func (e *Engine) interestAvailable(account common.Address, now uint64) (*big.Int, error) {
	deposits, err := e.loadDeposits(account)
	if err != nil {
		return nil, err
	}
	typesByID := e.newDepositTypeCache()
	total := big.NewInt(0)
	for _, d := range deposits {
		dt, err := typesByID.get(d.DepositType)
		if err != nil {
			return nil, err
		}
		interest, _, err := pendingInterest(d, dt, now)
		if err != nil {
			return nil, err
		}
		total.Add(total, interest)
	}
	return total, nil
}

// AccountLastClaimTimes returns LastClaimTime of every deposit of account in
// collection order.
func (e *Engine) AccountLastClaimTimes(account common.Address) ([]uint64, error) {
	var out []uint64
	err := e.view(func(uint64) error {
		deposits, err := e.loadDeposits(account)
		if err != nil {
			return err
		}
		out = lastClaimTimes(deposits)
		return nil
	})
	return out, err
}

// AccountNextInterestTimes returns, per deposit, the timestamp at which the
// next whole reward interval completes.
func (e *Engine) AccountNextInterestTimes(account common.Address) ([]uint64, error) {
	var out []uint64
	err := e.view(func(now uint64) error {
		deposits, err := e.loadDeposits(account)
		if err != nil {
			return err
		}
		out, err = e.nextInterestTimes(deposits, now)
		return err
	})
	return out, err
}

func lastClaimTimes(deposits []*Deposit) []uint64 {
	out := make([]uint64, 0, len(deposits))
	for _, d := range deposits {
		out = append(out, d.LastClaimTime)
	}
	return out
}

func (e *Engine) nextInterestTimes(deposits []*Deposit, now uint64) ([]uint64, error) {
	typesByID := e.newDepositTypeCache()
	out := make([]uint64, 0, len(deposits))
	for _, d := range deposits {
		dt, err := typesByID.get(d.DepositType)
		if err != nil {
			return nil, err
		}
		intervals := completedIntervals(d.LastClaimTime, now, dt.RewardInterval)
		out = append(out, d.LastClaimTime+(intervals+1)*dt.RewardInterval)
	}
	return out, nil
}
