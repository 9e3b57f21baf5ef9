package state

import (
	"encoding/binary"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"stablestake/native/stablestake"
)

var (
	stableStakeConfigKey       = []byte("stablestake/config")
	stableStakeTypeIDsKey      = []byte("stablestake/deposit-types")
	stableStakeTypePrefix      = []byte("stablestake/deposit-type/")
	stableStakeDepositsPrefix  = []byte("stablestake/deposits/")
	stableStakeAffiliatePrefix = []byte("stablestake/affiliate/")
	stableStakeBlacklistPrefix = []byte("stablestake/blacklist/")
)

func prefixedKey(prefix []byte, suffix []byte) []byte {
	buf := make([]byte, len(prefix)+len(suffix))
	copy(buf, prefix)
	copy(buf[len(prefix):], suffix)
	return buf
}

func depositTypeKey(id uint64) []byte {
	var raw [8]byte
	binary.BigEndian.PutUint64(raw[:], id)
	return prefixedKey(stableStakeTypePrefix, raw[:])
}

type storedGlobalConfig struct {
	Owner                  [20]byte
	FeesWallet             [20]byte
	InvestmentWallet       [20]byte
	SupportedToken         [20]byte
	CreateDepositFee       uint64
	DepositCreationPaused  bool
	CashoutPaused          bool
	AffiliateVestingPeriod uint64
}

type storedDepositType struct {
	ID             uint64
	LockPeriod     uint64
	MinimalDeposit *big.Int
	Multiplier     uint64
	RewardInterval uint64
}

type storedDeposit struct {
	DepositType   uint64
	Size          *big.Int
	CreatedAt     uint64
	LastClaimTime uint64
}

type storedAffiliate struct {
	TotalAllocated *big.Int
	Claimed        *big.Int
	GrantedAt      uint64
	VestingPeriod  uint64
}

func nonNil(v *big.Int) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(v)
}

// StableStakeConfigGet loads the ledger configuration.
func (s *Store) StableStakeConfigGet() (*stablestake.GlobalConfig, bool, error) {
	var stored storedGlobalConfig
	ok, err := s.KVGet(stableStakeConfigKey, &stored)
	if err != nil || !ok {
		return nil, ok, err
	}
	return &stablestake.GlobalConfig{
		Owner:                  common.Address(stored.Owner),
		FeesWallet:             common.Address(stored.FeesWallet),
		InvestmentWallet:       common.Address(stored.InvestmentWallet),
		SupportedToken:         common.Address(stored.SupportedToken),
		CreateDepositFee:       stored.CreateDepositFee,
		DepositCreationPaused:  stored.DepositCreationPaused,
		CashoutPaused:          stored.CashoutPaused,
		AffiliateVestingPeriod: stored.AffiliateVestingPeriod,
	}, true, nil
}

// StableStakeConfigPut persists the ledger configuration.
func (s *Store) StableStakeConfigPut(cfg *stablestake.GlobalConfig) error {
	if cfg == nil {
		return s.KVDelete(stableStakeConfigKey)
	}
	return s.KVPut(stableStakeConfigKey, &storedGlobalConfig{
		Owner:                  cfg.Owner,
		FeesWallet:             cfg.FeesWallet,
		InvestmentWallet:       cfg.InvestmentWallet,
		SupportedToken:         cfg.SupportedToken,
		CreateDepositFee:       cfg.CreateDepositFee,
		DepositCreationPaused:  cfg.DepositCreationPaused,
		CashoutPaused:          cfg.CashoutPaused,
		AffiliateVestingPeriod: cfg.AffiliateVestingPeriod,
	})
}

// StableStakeDepositTypeGet loads the deposit type configured under id.
func (s *Store) StableStakeDepositTypeGet(id uint64) (*stablestake.DepositType, bool, error) {
	var stored storedDepositType
	ok, err := s.KVGet(depositTypeKey(id), &stored)
	if err != nil || !ok {
		return nil, ok, err
	}
	return &stablestake.DepositType{
		ID:             stored.ID,
		LockPeriod:     stored.LockPeriod,
		MinimalDeposit: nonNil(stored.MinimalDeposit),
		Multiplier:     stored.Multiplier,
		RewardInterval: stored.RewardInterval,
	}, true, nil
}

// StableStakeDepositTypePut stores a deposit type and indexes its id.
func (s *Store) StableStakeDepositTypePut(dt *stablestake.DepositType) error {
	if dt == nil {
		return nil
	}
	if err := s.KVPut(depositTypeKey(dt.ID), &storedDepositType{
		ID:             dt.ID,
		LockPeriod:     dt.LockPeriod,
		MinimalDeposit: nonNil(dt.MinimalDeposit),
		Multiplier:     dt.Multiplier,
		RewardInterval: dt.RewardInterval,
	}); err != nil {
		return err
	}
	ids, err := s.StableStakeDepositTypeIDs()
	if err != nil {
		return err
	}
	for _, existing := range ids {
		if existing == dt.ID {
			return nil
		}
	}
	return s.KVPut(stableStakeTypeIDsKey, append(ids, dt.ID))
}

// StableStakeDepositTypeIDs lists the configured deposit type ids in
// insertion order.
func (s *Store) StableStakeDepositTypeIDs() ([]uint64, error) {
	var ids []uint64
	if _, err := s.KVGet(stableStakeTypeIDsKey, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// StableStakeDepositsGet loads the ordered deposit collection of owner.
func (s *Store) StableStakeDepositsGet(owner common.Address) ([]*stablestake.Deposit, error) {
	var stored []storedDeposit
	if _, err := s.KVGet(prefixedKey(stableStakeDepositsPrefix, owner.Bytes()), &stored); err != nil {
		return nil, err
	}
	out := make([]*stablestake.Deposit, 0, len(stored))
	for _, d := range stored {
		out = append(out, &stablestake.Deposit{
			Owner:         owner,
			DepositType:   d.DepositType,
			Size:          nonNil(d.Size),
			CreatedAt:     d.CreatedAt,
			LastClaimTime: d.LastClaimTime,
		})
	}
	return out, nil
}

// StableStakeDepositsPut replaces the deposit collection of owner. An empty
// collection removes the record.
func (s *Store) StableStakeDepositsPut(owner common.Address, deposits []*stablestake.Deposit) error {
	key := prefixedKey(stableStakeDepositsPrefix, owner.Bytes())
	if len(deposits) == 0 {
		return s.KVDelete(key)
	}
	stored := make([]storedDeposit, 0, len(deposits))
	for _, d := range deposits {
		if d == nil {
			continue
		}
		stored = append(stored, storedDeposit{
			DepositType:   d.DepositType,
			Size:          nonNil(d.Size),
			CreatedAt:     d.CreatedAt,
			LastClaimTime: d.LastClaimTime,
		})
	}
	return s.KVPut(key, stored)
}

// StableStakeAffiliateGet loads the affiliate allocation of owner.
func (s *Store) StableStakeAffiliateGet(owner common.Address) (*stablestake.AffiliateAllocation, bool, error) {
	var stored storedAffiliate
	ok, err := s.KVGet(prefixedKey(stableStakeAffiliatePrefix, owner.Bytes()), &stored)
	if err != nil || !ok {
		return nil, ok, err
	}
	return &stablestake.AffiliateAllocation{
		Owner:          owner,
		TotalAllocated: nonNil(stored.TotalAllocated),
		Claimed:        nonNil(stored.Claimed),
		GrantedAt:      stored.GrantedAt,
		VestingPeriod:  stored.VestingPeriod,
	}, true, nil
}

// StableStakeAffiliatePut persists an affiliate allocation.
func (s *Store) StableStakeAffiliatePut(alloc *stablestake.AffiliateAllocation) error {
	if alloc == nil {
		return nil
	}
	return s.KVPut(prefixedKey(stableStakeAffiliatePrefix, alloc.Owner.Bytes()), &storedAffiliate{
		TotalAllocated: nonNil(alloc.TotalAllocated),
		Claimed:        nonNil(alloc.Claimed),
		GrantedAt:      alloc.GrantedAt,
		VestingPeriod:  alloc.VestingPeriod,
	})
}

// StableStakeBlacklistGet reports whether addr is blacklisted.
func (s *Store) StableStakeBlacklistGet(addr common.Address) (bool, error) {
	var flag bool
	ok, err := s.KVGet(prefixedKey(stableStakeBlacklistPrefix, addr.Bytes()), &flag)
	if err != nil || !ok {
		return false, err
	}
	return flag, nil
}

// StableStakeBlacklistPut sets the blacklist flag for addr. Clearing the flag
// removes the record.
func (s *Store) StableStakeBlacklistPut(addr common.Address, flag bool) error {
	key := prefixedKey(stableStakeBlacklistPrefix, addr.Bytes())
	if !flag {
		return s.KVDelete(key)
	}
	return s.KVPut(key, true)
}
