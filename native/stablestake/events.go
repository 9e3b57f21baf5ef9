package stablestake

import (
	"math/big"
	"strconv"

	"github.com/ethereum/go-ethereum/common"

	"stablestake/core/events"
	"stablestake/core/types"
)

const (
	// EventTypeInitialized is emitted once when the genesis configuration is written.
	EventTypeInitialized = "stablestake.initialized"
	// EventTypeDepositCreated is emitted when an account opens a funded deposit.
	EventTypeDepositCreated = "stablestake.deposit.created"
	// EventTypeDepositAirdropped is emitted when the owner credits a promotional deposit.
	EventTypeDepositAirdropped = "stablestake.deposit.airdropped"
	// EventTypeDepositCashedOut is emitted when a single deposit is closed.
	EventTypeDepositCashedOut = "stablestake.deposit.cashed_out"
	// EventTypeDepositsForceClosed is emitted when the owner closes every deposit of an account.
	EventTypeDepositsForceClosed = "stablestake.deposit.force_closed"
	// EventTypeDepositResized is emitted when the owner overrides a deposit size.
	EventTypeDepositResized = "stablestake.deposit.resized"
	// EventTypeInterestClaimed is emitted when accrued interest is paid out.
	EventTypeInterestClaimed = "stablestake.interest.claimed"
	// EventTypeAffiliateAirdropped is emitted when affiliate interest is granted.
	EventTypeAffiliateAirdropped = "stablestake.affiliate.airdropped"
	// EventTypeAffiliateClaimed is emitted when vested affiliate interest is paid out.
	EventTypeAffiliateClaimed = "stablestake.affiliate.claimed"

	EventTypeDepositTypeUpdated   = "stablestake.deposit_type.updated"
	EventTypeConfigUpdated        = "stablestake.config.updated"
	EventTypePauseUpdated         = "stablestake.pause.updated"
	EventTypeBlacklistUpdated     = "stablestake.blacklist.updated"
	EventTypeOwnershipTransferred = "stablestake.owner.transferred"
	EventTypeTokenWithdrawn       = "stablestake.token.withdrawn"
)

type eventEnvelope struct {
	evt *types.Event
}

func (e eventEnvelope) EventType() string {
	if e.evt == nil {
		return ""
	}
	return e.evt.Type
}

func (e eventEnvelope) Event() *types.Event { return e.evt }

// WrapEvent converts a raw event payload into the emitter-friendly envelope.
func WrapEvent(evt *types.Event) events.Event { return eventEnvelope{evt: evt} }

func newEvent(eventType string, now uint64, attrs map[string]string) *types.Event {
	attrs["timestamp"] = uintString(now)
	return &types.Event{Type: eventType, Attributes: attrs}
}

func initializedEvent(cfg *GlobalConfig, now uint64) *types.Event {
	return newEvent(EventTypeInitialized, now, map[string]string{
		"owner":            cfg.Owner.Hex(),
		"feesWallet":       cfg.FeesWallet.Hex(),
		"investmentWallet": cfg.InvestmentWallet.Hex(),
		"supportedToken":   cfg.SupportedToken.Hex(),
		"createDepositFee": uintString(cfg.CreateDepositFee),
	})
}

func depositCreatedEvent(account common.Address, depositType, index uint64, amount, fee *big.Int, now uint64) *types.Event {
	return newEvent(EventTypeDepositCreated, now, map[string]string{
		"account":     account.Hex(),
		"depositType": uintString(depositType),
		"index":       uintString(index),
		"amount":      bigString(amount),
		"fee":         bigString(fee),
	})
}

func depositAirdroppedEvent(account common.Address, depositType, index uint64, amount *big.Int, now uint64) *types.Event {
	return newEvent(EventTypeDepositAirdropped, now, map[string]string{
		"account":     account.Hex(),
		"depositType": uintString(depositType),
		"index":       uintString(index),
		"amount":      bigString(amount),
	})
}

func depositCashedOutEvent(account common.Address, index uint64, principal, interest *big.Int, forced bool, now uint64) *types.Event {
	return newEvent(EventTypeDepositCashedOut, now, map[string]string{
		"account":   account.Hex(),
		"index":     uintString(index),
		"principal": bigString(principal),
		"interest":  bigString(interest),
		"forced":    strconv.FormatBool(forced),
	})
}

func allDepositsCashedOutEvent(account common.Address, count int, principal, interest *big.Int, now uint64) *types.Event {
	return newEvent(EventTypeDepositsForceClosed, now, map[string]string{
		"account":   account.Hex(),
		"deposits":  strconv.Itoa(count),
		"principal": bigString(principal),
		"interest":  bigString(interest),
	})
}

func depositSizeUpdatedEvent(account common.Address, index uint64, previous, size *big.Int, now uint64) *types.Event {
	return newEvent(EventTypeDepositResized, now, map[string]string{
		"account":  account.Hex(),
		"index":    uintString(index),
		"previous": bigString(previous),
		"size":     bigString(size),
	})
}

func interestClaimedEvent(account common.Address, amount *big.Int, now uint64) *types.Event {
	return newEvent(EventTypeInterestClaimed, now, map[string]string{
		"account": account.Hex(),
		"amount":  bigString(amount),
	})
}

func affiliateAirdroppedEvent(account common.Address, amount, total *big.Int, now uint64) *types.Event {
	return newEvent(EventTypeAffiliateAirdropped, now, map[string]string{
		"account": account.Hex(),
		"amount":  bigString(amount),
		"total":   bigString(total),
	})
}

func affiliateClaimedEvent(account common.Address, amount, claimed *big.Int, now uint64) *types.Event {
	return newEvent(EventTypeAffiliateClaimed, now, map[string]string{
		"account": account.Hex(),
		"amount":  bigString(amount),
		"claimed": bigString(claimed),
	})
}

func depositTypeUpdatedEvent(dt *DepositType, now uint64) *types.Event {
	return newEvent(EventTypeDepositTypeUpdated, now, map[string]string{
		"depositType":    uintString(dt.ID),
		"lockPeriod":     uintString(dt.LockPeriod),
		"minimalDeposit": bigString(dt.MinimalDeposit),
		"multiplier":     uintString(dt.Multiplier),
		"rewardInterval": uintString(dt.RewardInterval),
	})
}

func configUpdatedEvent(field, value string, now uint64) *types.Event {
	return newEvent(EventTypeConfigUpdated, now, map[string]string{
		"field": field,
		"value": value,
	})
}

func pauseEvent(module string, paused bool, now uint64) *types.Event {
	return newEvent(EventTypePauseUpdated, now, map[string]string{
		"module": module,
		"paused": strconv.FormatBool(paused),
	})
}

func blacklistEvent(account common.Address, flag bool, now uint64) *types.Event {
	return newEvent(EventTypeBlacklistUpdated, now, map[string]string{
		"account":     account.Hex(),
		"blacklisted": strconv.FormatBool(flag),
	})
}

func ownershipEvent(previous, owner common.Address, now uint64) *types.Event {
	return newEvent(EventTypeOwnershipTransferred, now, map[string]string{
		"previous": previous.Hex(),
		"owner":    owner.Hex(),
	})
}

func withdrawalEvent(token, to common.Address, amount *big.Int, now uint64) *types.Event {
	return newEvent(EventTypeTokenWithdrawn, now, map[string]string{
		"token":  token.Hex(),
		"to":     to.Hex(),
		"amount": bigString(amount),
	})
}

func uintString(v uint64) string { return strconv.FormatUint(v, 10) }

func bigString(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}
