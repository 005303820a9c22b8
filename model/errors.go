package model

import "errors"

// Account-level failures. All are expected, caller-recoverable conditions;
// the service layer adds its own store-level errors on top of these.
var (
	ErrMinimumInitialDeposit   = errors.New("initial deposit must be at least 1000 HUF")
	ErrInvalidDepositAmount    = errors.New("deposit amount must be positive")
	ErrInvalidWithdrawalAmount = errors.New("withdrawal amount must be positive")
	ErrInsufficientFunds       = errors.New("insufficient funds: balance cannot go below 100 HUF")
	ErrAccountLocked           = errors.New("account is locked after repeated failed withdrawals")
	ErrInterestAlreadyApplied  = errors.New("interest has already been applied")
)
