package model

import (
	"fmt"
	"math/rand"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

type AccountClass string

const (
	ClassBasic   AccountClass = "Basic"
	ClassPremium AccountClass = "Premium"
)

// Valid reports whether c is one of the known account classes.
func (c AccountClass) Valid() bool {
	return c == ClassBasic || c == ClassPremium
}

var (
	basicRate   = decimal.RequireFromString("0.02")
	premiumRate = decimal.RequireFromString("0.04")

	// MinimumInitialDeposit is required at account creation.
	MinimumInitialDeposit = decimal.NewFromInt(1000)
	// MinimumBalance is the floor no withdrawal may breach.
	MinimumBalance = decimal.NewFromInt(100)
)

// InterestRate returns the yearly rate for an account class.
// Basic pays 2%, Premium pays 4%.
func InterestRate(class AccountClass) decimal.Decimal {
	if class == ClassPremium {
		return premiumRate
	}
	return basicRate
}

const bcryptCost = 14

// Account is the aggregate owning its balance, history and lock state.
// It is created and mutated only through the service layer; the lock is
// permanent for the engine's lifetime, and FailedWithdrawals never resets.
type Account struct {
	Identifier        string
	Name              string
	Balance           decimal.Decimal
	AccountNumber     int
	Class             AccountClass
	PasswordDigest    string
	History           []Transaction
	FailedWithdrawals int
	Locked            bool

	// interestApplied is a caller-managed eligibility flag. It is never
	// persisted; a reload always clears it.
	interestApplied bool
}

// RandomAccountNumber returns a candidate 6-digit account number.
// Uniqueness across the store is the service layer's job.
func RandomAccountNumber() int {
	return rand.Intn(900000) + 100000
}

// NewAccount builds an account with a fresh (not yet uniqueness-checked)
// account number, a bcrypt digest of the password, and a history seeded with
// the opening deposit.
func NewAccount(identifier, name string, initialDeposit decimal.Decimal, class AccountClass, password string) (*Account, error) {
	if initialDeposit.LessThan(MinimumInitialDeposit) {
		return nil, ErrMinimumInitialDeposit
	}

	digest, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	return &Account{
		Identifier:     identifier,
		Name:           name,
		Balance:        initialDeposit,
		AccountNumber:  RandomAccountNumber(),
		Class:          class,
		PasswordDigest: string(digest),
		History: []Transaction{
			newTransaction(KindDeposit, initialDeposit, "Initial Deposit"),
		},
	}, nil
}

// VerifyPassword compares the candidate against the stored digest.
// No side effects.
func (a *Account) VerifyPassword(candidate string) bool {
	return bcrypt.CompareHashAndPassword([]byte(a.PasswordDigest), []byte(candidate)) == nil
}

// Deposit credits the account and appends a Deposit transaction.
func (a *Account) Deposit(amount decimal.Decimal) error {
	if amount.Sign() <= 0 {
		return ErrInvalidDepositAmount
	}
	a.Balance = a.Balance.Add(amount)
	a.History = append(a.History, newTransaction(KindDeposit, amount, "Deposit"))
	return nil
}

// Withdraw debits the account if the balance stays at or above the floor.
// A withdrawal that would breach the floor counts against the lockout
// threshold; the third such failure locks the account permanently. The
// failure paths never touch balance or history.
func (a *Account) Withdraw(amount decimal.Decimal) error {
	if a.Locked {
		return ErrAccountLocked
	}
	if amount.Sign() <= 0 {
		return ErrInvalidWithdrawalAmount
	}
	if a.Balance.Sub(amount).LessThan(MinimumBalance) {
		a.FailedWithdrawals++
		if a.FailedWithdrawals >= 3 {
			a.Locked = true
			return ErrAccountLocked
		}
		return ErrInsufficientFunds
	}
	a.Balance = a.Balance.Sub(amount)
	a.History = append(a.History, newTransaction(KindWithdrawal, amount.Neg(), "Withdrawal"))
	return nil
}

// ApplyInterest credits rate(class) x balance and appends an Interest
// transaction. The engine permits unlimited applications; callers that want
// an apply-once policy set the eligibility flag via SetInterestApplied.
func (a *Account) ApplyInterest() (decimal.Decimal, error) {
	if a.interestApplied {
		return decimal.Zero, ErrInterestAlreadyApplied
	}
	rate := InterestRate(a.Class)
	interest := a.Balance.Mul(rate)
	a.Balance = a.Balance.Add(interest)
	percent := rate.Mul(decimal.NewFromInt(100))
	a.History = append(a.History,
		newTransaction(KindInterest, interest, fmt.Sprintf("%s%% Interest Applied", percent)))
	return interest, nil
}

// SetInterestApplied sets or clears the caller-managed interest eligibility
// flag. The flag is transient: it is not serialized and a reload clears it.
func (a *Account) SetInterestApplied(applied bool) {
	a.interestApplied = applied
}

// InterestApplied reports the current state of the eligibility flag.
func (a *Account) InterestApplied() bool {
	return a.interestApplied
}
