package stablestake

import (
	"math/big"

	"github.com/holiman/uint256"
)

const (
	// multiplierDenominator scales DepositType.Multiplier (basis points).
	multiplierDenominator = 10_000
	// feeDenominator scales GlobalConfig.CreateDepositFee.
	feeDenominator = 1_000
)

// toU256 converts a non-negative big integer into the 256-bit domain of the
// settlement token.
func toU256(v *big.Int) (*uint256.Int, error) {
	if v == nil {
		return new(uint256.Int), nil
	}
	if v.Sign() < 0 {
		return nil, ErrInvalidAmount
	}
	out, overflow := uint256.FromBig(v)
	if overflow {
		return nil, ErrOverflow
	}
	return out, nil
}

// mulDiv computes floor(x*y/d) with a 512-bit intermediate product.
func mulDiv(x *big.Int, y, d uint64) (*big.Int, error) {
	if d == 0 {
		return nil, ErrInvalidConfig
	}
	ux, err := toU256(x)
	if err != nil {
		return nil, err
	}
	result, overflow := new(uint256.Int).MulDivOverflow(ux, uint256.NewInt(y), uint256.NewInt(d))
	if overflow {
		return nil, ErrOverflow
	}
	return result.ToBig(), nil
}

// completedIntervals reports how many whole reward intervals fit between
// from and now.
func completedIntervals(from, now, interval uint64) uint64 {
	if interval == 0 || now <= from {
		return 0
	}
	return (now - from) / interval
}

// accruedInterest returns floor(intervals * size * multiplier / 10000).
func accruedInterest(size *big.Int, multiplier, intervals uint64) (*big.Int, error) {
	if size == nil || size.Sign() == 0 || multiplier == 0 || intervals == 0 {
		return big.NewInt(0), nil
	}
	ux, err := toU256(size)
	if err != nil {
		return nil, err
	}
	rate, overflow := new(uint256.Int).MulOverflow(uint256.NewInt(intervals), uint256.NewInt(multiplier))
	if overflow {
		return nil, ErrOverflow
	}
	result, overflow := new(uint256.Int).MulDivOverflow(ux, rate, uint256.NewInt(multiplierDenominator))
	if overflow {
		return nil, ErrOverflow
	}
	return result.ToBig(), nil
}

// splitFee divides amount into the fee and investment portions. The two parts
// always sum to amount.
func splitFee(amount *big.Int, fee uint64) (feePortion, investmentPortion *big.Int, err error) {
	if fee > feeDenominator {
		return nil, nil, ErrInvalidConfig
	}
	feePortion, err = mulDiv(amount, fee, feeDenominator)
	if err != nil {
		return nil, nil, err
	}
	investmentPortion = new(big.Int).Sub(newBigInt(amount), feePortion)
	return feePortion, investmentPortion, nil
}

// vestedAmount returns the portion of total released after elapsed seconds of
// a linear schedule over period seconds. A zero period vests immediately.
func vestedAmount(total *big.Int, elapsed, period uint64) (*big.Int, error) {
	if period == 0 || elapsed >= period {
		return newBigInt(total), nil
	}
	return mulDiv(total, elapsed, period)
}

func addBig(a, b *big.Int) *big.Int {
	return new(big.Int).Add(newBigInt(a), newBigInt(b))
}
