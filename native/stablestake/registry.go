package stablestake

import (
	"sort"

	"github.com/ethereum/go-ethereum/common"
)

func validateDepositType(dt *DepositType) error {
	if dt == nil || dt.MinimalDeposit == nil || dt.MinimalDeposit.Sign() <= 0 || dt.RewardInterval == 0 {
		return ErrInvalidConfig
	}
	return nil
}

// UpdateDepositType creates or overwrites the configuration of a deposit type.
// Existing deposits of that type pick up the new parameters on their next
// observation.
func (e *Engine) UpdateDepositType(caller common.Address, dt DepositType) error {
	return e.execute(func(now uint64) error {
		if _, err := e.admin(caller); err != nil {
			return err
		}
		stored := dt.Clone()
		if err := validateDepositType(stored); err != nil {
			return err
		}
		if err := e.state.StableStakeDepositTypePut(stored); err != nil {
			return err
		}
		e.record(depositTypeUpdatedEvent(stored, now))
		return nil
	})
}

func (e *Engine) loadDepositType(id uint64) (*DepositType, error) {
	dt, ok, err := e.state.StableStakeDepositTypeGet(id)
	if err != nil {
		return nil, err
	}
	if !ok || dt == nil {
		return nil, ErrInvalidDepositType
	}
	return dt, nil
}

// DepositType returns the configuration for id.
func (e *Engine) DepositType(id uint64) (*DepositType, error) {
	var out *DepositType
	err := e.view(func(uint64) error {
		dt, err := e.loadDepositType(id)
		out = dt
		return err
	})
	return out, err
}

// DepositTypes lists every configured deposit type ordered by id.
func (e *Engine) DepositTypes() ([]*DepositType, error) {
	var out []*DepositType
	err := e.view(func(uint64) error {
		ids, err := e.state.StableStakeDepositTypeIDs()
		if err != nil {
			return err
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		for _, id := range ids {
			dt, err := e.loadDepositType(id)
			if err != nil {
				return err
			}
			out = append(out, dt)
		}
		return nil
	})
	return out, err
}

// depositTypeCache memoises type lookups within one entry point.
type depositTypeCache struct {
	engine *Engine
	types  map[uint64]*DepositType
}

func (e *Engine) newDepositTypeCache() *depositTypeCache {
	return &depositTypeCache{engine: e, types: make(map[uint64]*DepositType)}
}

func (c *depositTypeCache) get(id uint64) (*DepositType, error) {
	if dt, ok := c.types[id]; ok {
		return dt, nil
	}
	dt, err := c.engine.loadDepositType(id)
	if err != nil {
		return nil, err
	}
	c.types[id] = dt
	return dt, nil
}
