package state

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

var (
	balancePrefix = []byte("balance:")

	// ErrInsufficientBalance is returned when a debit exceeds the holder's balance.
	ErrInsufficientBalance = errors.New("bank: insufficient balance")
	errNegativeAmount      = errors.New("bank: amount must not be negative")
)

func balanceKey(token, holder common.Address) []byte {
	buf := make([]byte, 0, len(balancePrefix)+common.AddressLength*2+1)
	buf = append(buf, balancePrefix...)
	buf = append(buf, token.Bytes()...)
	buf = append(buf, ':')
	buf = append(buf, holder.Bytes()...)
	return buf
}

// Bank keeps token balances in the same journaled store as the ledger so a
// failed ledger operation also rolls back its transfers. Custody is the
// account holding funds on behalf of the ledger.
type Bank struct {
	store   *Store
	custody common.Address
}

// NewBank returns a bank over store that settles ledger transfers against
// custody.
func NewBank(store *Store, custody common.Address) *Bank {
	return &Bank{store: store, custody: custody}
}

// Custody returns the address holding funds on behalf of the ledger.
func (b *Bank) Custody() common.Address { return b.custody }

// BalanceOf returns the balance of holder in token.
func (b *Bank) BalanceOf(token, holder common.Address) (*big.Int, error) {
	var balance big.Int
	ok, err := b.store.KVGet(balanceKey(token, holder), &balance)
	if err != nil {
		return nil, err
	}
	if !ok {
		return big.NewInt(0), nil
	}
	return &balance, nil
}

func (b *Bank) setBalance(token, holder common.Address, amount *big.Int) error {
	key := balanceKey(token, holder)
	if amount.Sign() == 0 {
		return b.store.KVDelete(key)
	}
	return b.store.KVPut(key, amount)
}

// Mint credits amount of token to holder out of thin air. Callers must run it
// inside a ledger operation so the store is committed.
func (b *Bank) Mint(token, holder common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return errNegativeAmount
	}
	balance, err := b.BalanceOf(token, holder)
	if err != nil {
		return err
	}
	return b.setBalance(token, holder, balance.Add(balance, amount))
}

// Transfer moves amount of token from one holder to another.
func (b *Bank) Transfer(token, from, to common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return errNegativeAmount
	}
	if amount.Sign() == 0 || from == to {
		return nil
	}
	fromBalance, err := b.BalanceOf(token, from)
	if err != nil {
		return err
	}
	if fromBalance.Cmp(amount) < 0 {
		return fmt.Errorf("%w: %s holds %s, needs %s", ErrInsufficientBalance, from.Hex(), fromBalance, amount)
	}
	toBalance, err := b.BalanceOf(token, to)
	if err != nil {
		return err
	}
	if err := b.setBalance(token, from, fromBalance.Sub(fromBalance, amount)); err != nil {
		return err
	}
	return b.setBalance(token, to, toBalance.Add(toBalance, amount))
}

// TransferIn moves amount from a depositor into custody.
func (b *Bank) TransferIn(token, from common.Address, amount *big.Int) error {
	return b.Transfer(token, from, b.custody, amount)
}

// TransferOut pays amount out of custody.
func (b *Bank) TransferOut(token, to common.Address, amount *big.Int) error {
	return b.Transfer(token, b.custody, to, amount)
}

// Snapshot returns the journal position of the underlying store.
func (b *Bank) Snapshot() int { return b.store.Snapshot() }

// RevertToSnapshot undoes balance changes made after id.
func (b *Bank) RevertToSnapshot(id int) { b.store.RevertToSnapshot(id) }
