package stablestake

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	nativecommon "stablestake/native/common"
)

func requireOwner(cfg *GlobalConfig, caller common.Address) error {
	if cfg == nil || isZeroAddress(caller) || caller != cfg.Owner {
		return ErrUnauthorized
	}
	return nil
}

// requireActive enforces the account-facing checks: the account must not be
// blacklisted and the flow must not be paused.
func (e *Engine) requireActive(cfg *GlobalConfig, account common.Address, module string) error {
	blacklisted, err := e.state.StableStakeBlacklistGet(account)
	if err != nil {
		return err
	}
	if blacklisted {
		return ErrForbidden
	}
	if err := nativecommon.Guard(cfg, module); err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return nil
}

// admin loads the configuration and rejects callers other than the owner.
func (e *Engine) admin(caller common.Address) (*GlobalConfig, error) {
	cfg, err := e.loadConfig()
	if err != nil {
		return nil, err
	}
	if err := requireOwner(cfg, caller); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Blacklist sets or clears the blacklist flag for account. Repeating the same
// flag is a no-op.
func (e *Engine) Blacklist(caller, account common.Address, flag bool) error {
	return e.execute(func(now uint64) error {
		if _, err := e.admin(caller); err != nil {
			return err
		}
		if isZeroAddress(account) {
			return ErrInvalidAddress
		}
		current, err := e.state.StableStakeBlacklistGet(account)
		if err != nil {
			return err
		}
		if current == flag {
			return nil
		}
		if err := e.state.StableStakeBlacklistPut(account, flag); err != nil {
			return err
		}
		e.record(blacklistEvent(account, flag, now))
		return nil
	})
}

// IsBlacklisted reports the blacklist flag for account.
func (e *Engine) IsBlacklisted(account common.Address) (bool, error) {
	var out bool
	err := e.view(func(uint64) error {
		flag, err := e.state.StableStakeBlacklistGet(account)
		out = flag
		return err
	})
	return out, err
}

// TransferOwnership hands the administrative role to newOwner.
func (e *Engine) TransferOwnership(caller, newOwner common.Address) error {
	return e.execute(func(now uint64) error {
		cfg, err := e.admin(caller)
		if err != nil {
			return err
		}
		if isZeroAddress(newOwner) {
			return ErrInvalidAddress
		}
		previous := cfg.Owner
		cfg.Owner = newOwner
		if err := e.state.StableStakeConfigPut(cfg); err != nil {
			return err
		}
		e.record(ownershipEvent(previous, newOwner, now))
		return nil
	})
}
