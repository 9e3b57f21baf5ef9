package stablestake

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// claimableAffiliate returns vested(now) - claimed, never negative.
func claimableAffiliate(alloc *AffiliateAllocation, now uint64) (*big.Int, error) {
	var elapsed uint64
	if now > alloc.GrantedAt {
		elapsed = now - alloc.GrantedAt
	}
	vested, err := vestedAmount(alloc.TotalAllocated, elapsed, alloc.VestingPeriod)
	if err != nil {
		return nil, err
	}
	claimable := vested.Sub(vested, newBigInt(alloc.Claimed))
	if claimable.Sign() < 0 {
		claimable.SetInt64(0)
	}
	return claimable, nil
}

// AirdropAffiliateInterest grants amount of affiliate interest to account. A
// first grant starts vesting now over the configured vesting period. Later
// grants only raise the total under the original schedule, so value that has
// already vested stays vested.
func (e *Engine) AirdropAffiliateInterest(caller, account common.Address, amount *big.Int) error {
	return e.execute(func(now uint64) error {
		cfg, err := e.admin(caller)
		if err != nil {
			return err
		}
		if isZeroAddress(account) {
			return ErrInvalidAddress
		}
		if amount == nil || amount.Sign() <= 0 {
			return ErrInvalidAmount
		}
		alloc, ok, err := e.state.StableStakeAffiliateGet(account)
		if err != nil {
			return err
		}
		if !ok || alloc == nil {
			alloc = &AffiliateAllocation{
				Owner:          account,
				TotalAllocated: big.NewInt(0),
				Claimed:        big.NewInt(0),
				GrantedAt:      now,
				VestingPeriod:  cfg.AffiliateVestingPeriod,
			}
		}
		alloc.TotalAllocated = addBig(alloc.TotalAllocated, amount)
		if _, err := toU256(alloc.TotalAllocated); err != nil {
			return err
		}
		if err := e.state.StableStakeAffiliatePut(alloc); err != nil {
			return err
		}
		e.record(affiliateAirdroppedEvent(account, amount, alloc.TotalAllocated, now))
		return nil
	})
}

// ClaimAffiliateInterest transfers vested affiliate interest to caller. A nil
// amount claims everything currently claimable.
func (e *Engine) ClaimAffiliateInterest(caller common.Address, amount *big.Int) (*big.Int, error) {
	var paid *big.Int
	err := e.execute(func(now uint64) error {
		cfg, err := e.loadConfig()
		if err != nil {
			return err
		}
		if err := e.requireActive(cfg, caller, ModuleCashout); err != nil {
			return err
		}
		if amount != nil && amount.Sign() <= 0 {
			return ErrInvalidAmount
		}
		alloc, ok, err := e.state.StableStakeAffiliateGet(caller)
		if err != nil {
			return err
		}
		if !ok || alloc == nil {
			return ErrInsufficientAllocation
		}
		claimable, err := claimableAffiliate(alloc, now)
		if err != nil {
			return err
		}
		request := claimable
		if amount != nil {
			request = new(big.Int).Set(amount)
		}
		if request.Sign() == 0 || request.Cmp(claimable) > 0 {
			return ErrInsufficientAllocation
		}
		alloc.Claimed = addBig(alloc.Claimed, request)
		if err := e.state.StableStakeAffiliatePut(alloc); err != nil {
			return err
		}
		if err := e.transferOut(cfg.SupportedToken, caller, request); err != nil {
			return err
		}
		paid = request
		e.record(affiliateClaimedEvent(caller, request, alloc.Claimed, now))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return paid, nil
}

// AffiliateAllocation returns the allocation of account, if any.
func (e *Engine) AffiliateAllocation(account common.Address) (*AffiliateAllocation, bool, error) {
	var (
		out   *AffiliateAllocation
		found bool
	)
	err := e.view(func(uint64) error {
		alloc, ok, err := e.state.StableStakeAffiliateGet(account)
		if err != nil {
			return err
		}
		if ok && alloc != nil {
			out, found = alloc.Clone(), true
		}
		return nil
	})
	return out, found, err
}

// AffiliateClaimable returns the affiliate interest account can claim now.
func (e *Engine) AffiliateClaimable(account common.Address) (*big.Int, error) {
	out := big.NewInt(0)
	err := e.view(func(now uint64) error {
		alloc, ok, err := e.state.StableStakeAffiliateGet(account)
		if err != nil || !ok || alloc == nil {
			return err
		}
		claimable, err := claimableAffiliate(alloc, now)
		if err != nil {
			return err
		}
		out = claimable
		return nil
	})
	return out, err
}

// SetAffiliateVestingPeriod changes the vesting period applied to allocations
// created afterwards. Existing allocations keep their schedule.
func (e *Engine) SetAffiliateVestingPeriod(caller common.Address, period uint64) error {
	return e.execute(func(now uint64) error {
		cfg, err := e.admin(caller)
		if err != nil {
			return err
		}
		if period == 0 {
			return ErrInvalidConfig
		}
		cfg.AffiliateVestingPeriod = period
		if err := e.state.StableStakeConfigPut(cfg); err != nil {
			return err
		}
		e.record(configUpdatedEvent("affiliateVestingPeriod", uintString(period), now))
		return nil
	})
}
