package stablestake

import (
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"stablestake/core/events"
	"stablestake/core/types"
)

const (
	// ModuleDeposit names the deposit-creation flow for pause checks.
	ModuleDeposit = "stablestake.deposit"
	// ModuleCashout names the cashout and claim flows for pause checks.
	ModuleCashout = "stablestake.cashout"
)

type engineState interface {
	StableStakeConfigGet() (*GlobalConfig, bool, error)
	StableStakeConfigPut(cfg *GlobalConfig) error
	StableStakeDepositTypeGet(id uint64) (*DepositType, bool, error)
	StableStakeDepositTypePut(depositType *DepositType) error
	StableStakeDepositTypeIDs() ([]uint64, error)
	StableStakeDepositsGet(owner common.Address) ([]*Deposit, error)
	StableStakeDepositsPut(owner common.Address, deposits []*Deposit) error
	StableStakeAffiliateGet(owner common.Address) (*AffiliateAllocation, bool, error)
	StableStakeAffiliatePut(alloc *AffiliateAllocation) error
	StableStakeBlacklistGet(addr common.Address) (bool, error)
	StableStakeBlacklistPut(addr common.Address, flag bool) error
	Snapshot() int
	RevertToSnapshot(id int)
	Commit() error
}

// Asset moves the settlement token in and out of the ledger's custody. The
// journal methods let the engine undo transfers when a later step fails.
type Asset interface {
	TransferIn(token, from common.Address, amount *big.Int) error
	TransferOut(token, to common.Address, amount *big.Int) error
	Snapshot() int
	RevertToSnapshot(id int)
}

// Engine is the staking ledger. Every entry point runs to completion under a
// single lock and either commits all of its effects or none of them.
type Engine struct {
	mu      sync.Mutex
	state   engineState
	asset   Asset
	emitter events.Emitter
	nowFn   func() uint64
	lastNow uint64
	pending []*types.Event
	faucet  bool
}

// NewEngine constructs a ledger engine with default dependencies.
func NewEngine() *Engine {
	return &Engine{
		emitter: events.NoopEmitter{},
		nowFn:   unixNow,
	}
}

// SetState configures the state backend used by the engine.
func (e *Engine) SetState(state engineState) { e.state = state }

// SetAsset configures the token transfer collaborator.
func (e *Engine) SetAsset(asset Asset) { e.asset = asset }

// SetEmitter configures the event emitter used by the engine.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// SetNowFunc overrides the time source used for deterministic testing.
func (e *Engine) SetNowFunc(now func() uint64) {
	if now == nil {
		e.nowFn = unixNow
		return
	}
	e.nowFn = now
}

func unixNow() uint64 { return uint64(time.Now().Unix()) }

// now never runs backwards even if the configured clock does.
func (e *Engine) now() uint64 {
	ts := unixNow()
	if e.nowFn != nil {
		ts = e.nowFn()
	}
	if ts < e.lastNow {
		ts = e.lastNow
	}
	e.lastNow = ts
	return ts
}

// execute runs a mutating entry point atomically. Events recorded during fn
// are published only after the state commit succeeds.
func (e *Engine) execute(fn func(now uint64) error) error {
	if e == nil || e.state == nil {
		return ErrNilState
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()
	stateSnap := e.state.Snapshot()
	assetSnap := 0
	if e.asset != nil {
		assetSnap = e.asset.Snapshot()
	}
	e.pending = nil

	err := fn(now)
	if err == nil {
		err = e.state.Commit()
	}
	if err != nil {
		if e.asset != nil {
			e.asset.RevertToSnapshot(assetSnap)
		}
		e.state.RevertToSnapshot(stateSnap)
		e.pending = nil
		return err
	}

	published := e.pending
	e.pending = nil
	for _, evt := range published {
		e.emitter.Emit(WrapEvent(evt))
	}
	return nil
}

// view runs a read-only query against the committed state.
func (e *Engine) view(fn func(now uint64) error) error {
	if e == nil || e.state == nil {
		return ErrNilState
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e.now())
}

func (e *Engine) record(evt *types.Event) {
	if evt == nil {
		return
	}
	e.pending = append(e.pending, evt)
}

func (e *Engine) loadConfig() (*GlobalConfig, error) {
	cfg, ok, err := e.state.StableStakeConfigGet()
	if err != nil {
		return nil, err
	}
	if !ok || cfg == nil {
		return nil, ErrNotInitialized
	}
	return cfg, nil
}

func (e *Engine) loadDeposits(owner common.Address) ([]*Deposit, error) {
	deposits, err := e.state.StableStakeDepositsGet(owner)
	if err != nil {
		return nil, err
	}
	for _, d := range deposits {
		if d.Size == nil {
			d.Size = big.NewInt(0)
		}
	}
	return deposits, nil
}

func (e *Engine) transferIn(token, from common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() == 0 {
		return nil
	}
	if e.asset == nil {
		return errNilAsset
	}
	if err := e.asset.TransferIn(token, from, amount); err != nil {
		return fmt.Errorf("%w: %w", ErrTransferFailed, err)
	}
	return nil
}

func (e *Engine) transferOut(token, to common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() == 0 {
		return nil
	}
	if e.asset == nil {
		return errNilAsset
	}
	if err := e.asset.TransferOut(token, to, amount); err != nil {
		return fmt.Errorf("%w: %w", ErrTransferFailed, err)
	}
	return nil
}

func isZeroAddress(addr common.Address) bool {
	return addr == (common.Address{})
}
