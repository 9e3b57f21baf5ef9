package stablestake

import (
	"errors"
	"math/big"
	"testing"
)

func ether(v int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(v), big.NewInt(1e18))
}

func TestAccruedInterestWholeIntervals(t *testing.T) {
	// 1000 tokens at 1% per 60s interval after 180s.
	intervals := completedIntervals(0, 180, 60)
	if intervals != 3 {
		t.Fatalf("expected 3 intervals, got %d", intervals)
	}
	interest, err := accruedInterest(ether(1000), 100, intervals)
	if err != nil {
		t.Fatalf("accrue: %v", err)
	}
	if interest.Cmp(ether(30)) != 0 {
		t.Fatalf("expected 30 tokens, got %s", interest)
	}
}

func TestAccruedInterestFloors(t *testing.T) {
	interest, err := accruedInterest(big.NewInt(99), 100, 1)
	if err != nil {
		t.Fatalf("accrue: %v", err)
	}
	if interest.Sign() != 0 {
		t.Fatalf("expected floor to zero, got %s", interest)
	}
	if completedIntervals(100, 159, 60) != 0 {
		t.Fatalf("partial interval must not count")
	}
	if completedIntervals(100, 50, 60) != 0 {
		t.Fatalf("clock behind last claim must not count")
	}
}

func TestAccruedInterestOverflow(t *testing.T) {
	huge := new(big.Int).Lsh(big.NewInt(1), 255)
	if _, err := accruedInterest(huge, 10_000, 4); !errors.Is(err, ErrOverflow) {
		t.Fatalf("expected overflow, got %v", err)
	}
	tooWide := new(big.Int).Lsh(big.NewInt(1), 256)
	if _, err := toU256(tooWide); !errors.Is(err, ErrOverflow) {
		t.Fatalf("expected overflow for 2^256, got %v", err)
	}
	if _, err := toU256(big.NewInt(-1)); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected invalid amount for negative, got %v", err)
	}
}

func TestSplitFeeSumsToAmount(t *testing.T) {
	cases := []struct {
		amount int64
		fee    uint64
		want   int64
	}{
		{amount: 1000, fee: 50, want: 50},
		{amount: 999, fee: 50, want: 49},
		{amount: 7, fee: 0, want: 0},
		{amount: 7, fee: 1000, want: 7},
	}
	for _, tc := range cases {
		fee, invest, err := splitFee(big.NewInt(tc.amount), tc.fee)
		if err != nil {
			t.Fatalf("split %d/%d: %v", tc.amount, tc.fee, err)
		}
		if fee.Int64() != tc.want {
			t.Fatalf("split %d/%d: fee %s, want %d", tc.amount, tc.fee, fee, tc.want)
		}
		if new(big.Int).Add(fee, invest).Int64() != tc.amount {
			t.Fatalf("split %d/%d: portions do not sum to amount", tc.amount, tc.fee)
		}
	}
	if _, _, err := splitFee(big.NewInt(1), 1001); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected invalid config for fee above 1000, got %v", err)
	}
}

func TestVestedAmountLinear(t *testing.T) {
	const day = 86_400
	total := ether(1000)
	half, err := vestedAmount(total, 50*day, 100*day)
	if err != nil {
		t.Fatalf("vest: %v", err)
	}
	if half.Cmp(ether(500)) != 0 {
		t.Fatalf("expected 500 vested at day 50, got %s", half)
	}
	full, _ := vestedAmount(total, 100*day, 100*day)
	if full.Cmp(total) != 0 {
		t.Fatalf("expected full vesting at day 100, got %s", full)
	}
	after, _ := vestedAmount(total, 200*day, 100*day)
	if after.Cmp(total) != 0 {
		t.Fatalf("vesting must cap at total, got %s", after)
	}
	immediate, _ := vestedAmount(total, 0, 0)
	if immediate.Cmp(total) != 0 {
		t.Fatalf("zero period must vest immediately, got %s", immediate)
	}
}

func TestClaimableAffiliateNeverNegative(t *testing.T) {
	alloc := &AffiliateAllocation{
		TotalAllocated: big.NewInt(100),
		Claimed:        big.NewInt(80),
		GrantedAt:      1_000,
		VestingPeriod:  100,
	}
	claimable, err := claimableAffiliate(alloc, 1_050)
	if err != nil {
		t.Fatalf("claimable: %v", err)
	}
	if claimable.Sign() != 0 {
		t.Fatalf("expected zero claimable when claimed exceeds vested, got %s", claimable)
	}
	claimable, _ = claimableAffiliate(alloc, 500)
	if claimable.Sign() != 0 {
		t.Fatalf("expected zero before grant, got %s", claimable)
	}
}

func TestSettleCarriesRemainder(t *testing.T) {
	dt := &DepositType{RewardInterval: 60, Multiplier: 100, MinimalDeposit: big.NewInt(1)}
	d := &Deposit{Size: ether(1000), CreatedAt: 0, LastClaimTime: 0}
	interest, err := settle(d, dt, 190)
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	if interest.Cmp(ether(30)) != 0 {
		t.Fatalf("expected 30 tokens, got %s", interest)
	}
	if d.LastClaimTime != 180 {
		t.Fatalf("expected last claim 180, got %d", d.LastClaimTime)
	}
}
