package stablestake

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// DepositType is the policy bucket a deposit is created under. Durations are
// expressed in seconds, Multiplier in basis points of principal per completed
// RewardInterval.
type DepositType struct {
	ID             uint64   `json:"depositType"`
	LockPeriod     uint64   `json:"lockPeriod"`
	MinimalDeposit *big.Int `json:"minimalDeposit"`
	Multiplier     uint64   `json:"multiplier"`
	RewardInterval uint64   `json:"rewardInterval"`
}

// Clone returns a deep copy of the deposit type.
func (d *DepositType) Clone() *DepositType {
	if d == nil {
		return nil
	}
	clone := *d
	clone.MinimalDeposit = newBigInt(d.MinimalDeposit)
	return &clone
}

// Deposit is a single principal position owned by an account. Deposits are
// addressed by their index within the owner's ordered collection.
type Deposit struct {
	Owner         common.Address `json:"owner"`
	DepositType   uint64         `json:"depositType"`
	Size          *big.Int       `json:"size"`
	CreatedAt     uint64         `json:"createdAt"`
	LastClaimTime uint64         `json:"lastClaimTime"`
}

// Clone returns a deep copy of the deposit.
func (d *Deposit) Clone() *Deposit {
	if d == nil {
		return nil
	}
	clone := *d
	clone.Size = newBigInt(d.Size)
	return &clone
}

// AffiliateAllocation tracks a linearly vesting affiliate-interest grant.
type AffiliateAllocation struct {
	Owner          common.Address `json:"owner"`
	TotalAllocated *big.Int       `json:"totalAllocated"`
	Claimed        *big.Int       `json:"claimed"`
	GrantedAt      uint64         `json:"grantedAt"`
	VestingPeriod  uint64         `json:"vestingPeriod"`
}

// Clone returns a deep copy of the allocation.
func (a *AffiliateAllocation) Clone() *AffiliateAllocation {
	if a == nil {
		return nil
	}
	clone := *a
	clone.TotalAllocated = newBigInt(a.TotalAllocated)
	clone.Claimed = newBigInt(a.Claimed)
	return &clone
}

// GlobalConfig is the singleton administrative configuration of the ledger.
// CreateDepositFee is expressed out of 1000.
type GlobalConfig struct {
	Owner                  common.Address `json:"owner"`
	FeesWallet             common.Address `json:"feesWallet"`
	InvestmentWallet       common.Address `json:"investmentWallet"`
	SupportedToken         common.Address `json:"supportedToken"`
	CreateDepositFee       uint64         `json:"createDepositFee"`
	DepositCreationPaused  bool           `json:"depositCreationPaused"`
	CashoutPaused          bool           `json:"cashoutPaused"`
	AffiliateVestingPeriod uint64         `json:"affiliateVestingPeriod"`
}

// Clone returns a copy of the configuration.
func (c *GlobalConfig) Clone() *GlobalConfig {
	if c == nil {
		return nil
	}
	clone := *c
	return &clone
}

// IsPaused implements the native pause view for the ledger's two flows.
func (c *GlobalConfig) IsPaused(module string) bool {
	if c == nil {
		return false
	}
	switch module {
	case ModuleDeposit:
		return c.DepositCreationPaused
	case ModuleCashout:
		return c.CashoutPaused
	default:
		return false
	}
}

// Genesis captures the constructor arguments of a fresh ledger.
type Genesis struct {
	Owner            common.Address
	FeesWallet       common.Address
	InvestmentWallet common.Address
	SupportedToken   common.Address
	// InitialInterval seeds deposit type 0 as both its lock period and reward
	// interval.
	InitialInterval        uint64
	AffiliateVestingPeriod uint64
	CreateDepositFee       uint64
	MinimalDeposit         *big.Int
	Multiplier             uint64
}

// AccountSummary is the read-only view of everything the ledger holds for an
// account at a point in time.
type AccountSummary struct {
	Address            common.Address       `json:"address"`
	Blacklisted        bool                 `json:"blacklisted"`
	DepositedValue     *big.Int             `json:"depositedValue"`
	InterestAvailable  *big.Int             `json:"interestAvailable"`
	LastClaimTimes     []uint64             `json:"lastClaimTimes"`
	NextInterestTimes  []uint64             `json:"nextInterestTimes"`
	Deposits           []*Deposit           `json:"deposits"`
	Affiliate          *AffiliateAllocation `json:"affiliate,omitempty"`
	AffiliateClaimable *big.Int             `json:"affiliateClaimable"`
	ObservedAt         uint64               `json:"observedAt"`
}

func newBigInt(v *big.Int) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(v)
}
