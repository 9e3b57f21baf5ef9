package routes

import (
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"

	nativecommon "stablestake/native/common"
)

// faucetQuota caps faucet mints per account and epoch. Counters live in memory
// and reset when the node restarts.
type faucetQuota struct {
	mu    sync.Mutex
	quota nativecommon.Quota
	usage map[common.Address]nativecommon.QuotaNow
	nowFn func() time.Time
}

func newFaucetQuota(q nativecommon.Quota) *faucetQuota {
	return &faucetQuota{
		quota: q,
		usage: make(map[common.Address]nativecommon.QuotaNow),
		nowFn: time.Now,
	}
}

// reserve books one mint of amount for account. The booking is released with
// the returned func when the mint fails.
func (f *faucetQuota) reserve(account common.Address, amount *big.Int) (func(), error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	epoch := f.quota.Epoch(uint64(f.nowFn().Unix()))
	prev := f.usage[account]
	next, err := nativecommon.CheckQuota(f.quota, epoch, prev, 1, amount)
	if err != nil {
		return nil, err
	}
	f.usage[account] = next
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.usage[account].EpochID == next.EpochID {
			f.usage[account] = prev
		}
	}, nil
}
