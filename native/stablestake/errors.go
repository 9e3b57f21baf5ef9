package stablestake

import "errors"

var (
	ErrUnauthorized           = errors.New("stablestake: caller is not the owner")
	ErrForbidden              = errors.New("stablestake: account is blacklisted")
	ErrUnavailable            = errors.New("stablestake: feature paused")
	ErrInvalidDepositType     = errors.New("stablestake: deposit type not configured")
	ErrInvalidConfig          = errors.New("stablestake: invalid configuration")
	ErrBelowMinimum           = errors.New("stablestake: amount below minimal deposit")
	ErrStillLocked            = errors.New("stablestake: deposit still locked")
	ErrInsufficientAllocation = errors.New("stablestake: affiliate claim exceeds vested allocation")
	ErrTransferFailed         = errors.New("stablestake: token transfer failed")
	ErrInvalidAddress         = errors.New("stablestake: zero address")
	ErrDepositNotFound        = errors.New("stablestake: deposit index out of range")
	ErrInvalidAmount          = errors.New("stablestake: amount must be positive")
	ErrOverflow               = errors.New("stablestake: arithmetic overflow")
	ErrNotInitialized         = errors.New("stablestake: ledger not initialised")

	ErrNilState = errors.New("stablestake: state not configured")
	errNilAsset = errors.New("stablestake: asset not configured")
)
