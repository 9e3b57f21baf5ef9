package state

import (
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"stablestake/native/stablestake"
	"stablestake/storage"
)

type failingDB struct {
	*storage.MemDB
}

func (failingDB) Write(*storage.Batch) error { return errors.New("disk full") }

func TestStoreRevertToSnapshot(t *testing.T) {
	db := storage.NewMemDB()
	defer db.Close()
	store := NewStore(db)

	if err := store.KVPut([]byte("a"), uint64(1)); err != nil {
		t.Fatalf("put a: %v", err)
	}
	snap := store.Snapshot()
	if err := store.KVPut([]byte("a"), uint64(2)); err != nil {
		t.Fatalf("overwrite a: %v", err)
	}
	if err := store.KVPut([]byte("b"), uint64(3)); err != nil {
		t.Fatalf("put b: %v", err)
	}
	store.RevertToSnapshot(snap)

	var got uint64
	ok, err := store.KVGet([]byte("a"), &got)
	if err != nil || !ok || got != 1 {
		t.Fatalf("expected a=1 after revert, got %d ok=%v err=%v", got, ok, err)
	}
	ok, err = store.KVGet([]byte("b"), &got)
	if err != nil || ok {
		t.Fatalf("expected b to be reverted, ok=%v err=%v", ok, err)
	}
}

func TestStoreCommitPersists(t *testing.T) {
	db := storage.NewMemDB()
	defer db.Close()
	store := NewStore(db)

	if err := store.KVPut([]byte("k"), "value"); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := store.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}
	reopened := NewStore(db)
	var got string
	ok, err := reopened.KVGet([]byte("k"), &got)
	if err != nil || !ok || got != "value" {
		t.Fatalf("expected committed value, got %q ok=%v err=%v", got, ok, err)
	}

	if err := reopened.KVDelete([]byte("k")); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if ok, _ := reopened.KVGet([]byte("k"), &got); ok {
		t.Fatalf("expected pending delete to hide value")
	}
	if ok, _ := NewStore(db).KVGet([]byte("k"), &got); !ok {
		t.Fatalf("uncommitted delete must not reach the database")
	}
}

func TestStoreCommitFailureKeepsPendingWrites(t *testing.T) {
	store := NewStore(failingDB{storage.NewMemDB()})
	if err := store.KVPut([]byte("k"), uint64(7)); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := store.Commit(); err == nil {
		t.Fatalf("expected commit error")
	}
	var got uint64
	if ok, _ := store.KVGet([]byte("k"), &got); !ok || got != 7 {
		t.Fatalf("expected pending write to survive failed commit, got %d", got)
	}
}

func TestStoreStableStakeRecords(t *testing.T) {
	db := storage.NewMemDB()
	defer db.Close()
	store := NewStore(db)
	owner := common.HexToAddress("0x01")

	cfg := &stablestake.GlobalConfig{
		Owner:                  owner,
		FeesWallet:             common.HexToAddress("0x02"),
		InvestmentWallet:       common.HexToAddress("0x03"),
		SupportedToken:         common.HexToAddress("0x04"),
		CreateDepositFee:       50,
		CashoutPaused:          true,
		AffiliateVestingPeriod: 100,
	}
	if err := store.StableStakeConfigPut(cfg); err != nil {
		t.Fatalf("put config: %v", err)
	}
	gotCfg, ok, err := store.StableStakeConfigGet()
	if err != nil || !ok {
		t.Fatalf("get config: ok=%v err=%v", ok, err)
	}
	if *gotCfg != *cfg {
		t.Fatalf("config mismatch: %+v != %+v", gotCfg, cfg)
	}

	for _, id := range []uint64{3, 1, 3} {
		dt := &stablestake.DepositType{ID: id, LockPeriod: 10, MinimalDeposit: big.NewInt(5), Multiplier: 100, RewardInterval: 10}
		if err := store.StableStakeDepositTypePut(dt); err != nil {
			t.Fatalf("put type %d: %v", id, err)
		}
	}
	ids, err := store.StableStakeDepositTypeIDs()
	if err != nil {
		t.Fatalf("ids: %v", err)
	}
	if len(ids) != 2 || ids[0] != 3 || ids[1] != 1 {
		t.Fatalf("unexpected ids: %v", ids)
	}

	deposits := []*stablestake.Deposit{
		{Owner: owner, DepositType: 1, Size: big.NewInt(10), CreatedAt: 5, LastClaimTime: 6},
		{Owner: owner, DepositType: 3, Size: big.NewInt(20), CreatedAt: 7, LastClaimTime: 7},
	}
	if err := store.StableStakeDepositsPut(owner, deposits); err != nil {
		t.Fatalf("put deposits: %v", err)
	}
	if err := store.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}
	loaded, err := NewStore(db).StableStakeDepositsGet(owner)
	if err != nil {
		t.Fatalf("get deposits: %v", err)
	}
	if len(loaded) != 2 || loaded[1].Size.Cmp(big.NewInt(20)) != 0 || loaded[0].LastClaimTime != 6 || loaded[0].Owner != owner {
		t.Fatalf("unexpected deposits: %+v", loaded)
	}

	if err := store.StableStakeBlacklistPut(owner, true); err != nil {
		t.Fatalf("blacklist: %v", err)
	}
	if flag, _ := store.StableStakeBlacklistGet(owner); !flag {
		t.Fatalf("expected blacklisted")
	}
	if err := store.StableStakeBlacklistPut(owner, false); err != nil {
		t.Fatalf("clear blacklist: %v", err)
	}
	if flag, _ := store.StableStakeBlacklistGet(owner); flag {
		t.Fatalf("expected cleared blacklist")
	}
}

func TestBankTransfers(t *testing.T) {
	db := storage.NewMemDB()
	defer db.Close()
	store := NewStore(db)
	token := common.HexToAddress("0xaa")
	custody := common.HexToAddress("0xcc")
	alice := common.HexToAddress("0x11")
	bank := NewBank(store, custody)

	if err := bank.Mint(token, alice, big.NewInt(100)); err != nil {
		t.Fatalf("mint: %v", err)
	}
	if err := bank.TransferIn(token, alice, big.NewInt(60)); err != nil {
		t.Fatalf("transfer in: %v", err)
	}
	if err := bank.TransferOut(token, alice, big.NewInt(61)); !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected insufficient balance, got %v", err)
	}

	snap := bank.Snapshot()
	if err := bank.TransferOut(token, alice, big.NewInt(10)); err != nil {
		t.Fatalf("transfer out: %v", err)
	}
	bank.RevertToSnapshot(snap)

	aliceBal, _ := bank.BalanceOf(token, alice)
	custodyBal, _ := bank.BalanceOf(token, custody)
	if aliceBal.Cmp(big.NewInt(40)) != 0 || custodyBal.Cmp(big.NewInt(60)) != 0 {
		t.Fatalf("unexpected balances alice=%s custody=%s", aliceBal, custodyBal)
	}
}
