package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// TimestampLayout is the fixed format used for statement display and in the
// persisted ledger file. It sorts lexicographically.
const TimestampLayout = "2006-01-02 15:04:05"

type TransactionKind string

const (
	KindDeposit    TransactionKind = "Deposit"
	KindWithdrawal TransactionKind = "Withdrawal"
	KindInterest   TransactionKind = "Interest"
)

// Valid reports whether k is one of the known transaction kinds.
func (k TransactionKind) Valid() bool {
	switch k {
	case KindDeposit, KindWithdrawal, KindInterest:
		return true
	}
	return false
}

// Transaction is one immutable ledger event. Amount is negative for
// withdrawals and positive otherwise; insertion order is chronological order.
type Transaction struct {
	Kind        TransactionKind `json:"kind"`
	Amount      decimal.Decimal `json:"amount"`
	Timestamp   time.Time       `json:"timestamp"`
	Description string          `json:"description"`
}

// newTransaction stamps the event with the current time, truncated to
// seconds so a persistence round trip reproduces it exactly.
func newTransaction(kind TransactionKind, amount decimal.Decimal, description string) Transaction {
	return Transaction{
		Kind:        kind,
		Amount:      amount,
		Timestamp:   time.Now().Truncate(time.Second),
		Description: description,
	}
}

// String renders the event the way account statements display it.
func (t Transaction) String() string {
	return fmt.Sprintf("%s | %s | %s HUF | %s",
		t.Timestamp.Format(TimestampLayout), t.Kind, t.Amount, t.Description)
}
