package repository

import (
	"go-bank-ledger/model"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func newRepoAccount(t *testing.T, identifier string, class model.AccountClass) *model.Account {
	t.Helper()
	account, err := model.NewAccount(identifier, "Holder "+identifier, decimal.NewFromInt(5000), class, "pw")
	if err != nil {
		t.Fatalf("NewAccount() err = %v", err)
	}
	return account
}

func TestLedgerRepository_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	repo := NewLedgerRepository(filepath.Join(dir, "bank_data.ndjson"))

	first := newRepoAccount(t, "111", model.ClassBasic)
	assert.NoError(t, first.Deposit(decimal.NewFromInt(250)))
	assert.NoError(t, first.Withdraw(decimal.NewFromInt(400)))
	_, err := first.ApplyInterest()
	assert.NoError(t, err)

	second := newRepoAccount(t, "222", model.ClassPremium)
	assert.ErrorIs(t, second.Withdraw(decimal.NewFromInt(99999)), model.ErrInsufficientFunds)

	assert.NoError(t, repo.Save([]*model.Account{second, first}))

	loaded, skipped, err := repo.Load()
	assert.NoError(t, err)
	assert.Empty(t, skipped)
	assert.Len(t, loaded, 2)

	// Save orders records by identifier regardless of input order.
	assert.Equal(t, "111", loaded[0].Identifier)
	assert.Equal(t, "222", loaded[1].Identifier)

	for i, want := range []*model.Account{first, second} {
		got := loaded[i]
		assert.Equal(t, want.Name, got.Name)
		assert.True(t, got.Balance.Equal(want.Balance), "balance %s != %s", got.Balance, want.Balance)
		assert.Equal(t, want.AccountNumber, got.AccountNumber)
		assert.Equal(t, want.Class, got.Class)
		assert.Equal(t, want.PasswordDigest, got.PasswordDigest)
		assert.Equal(t, want.FailedWithdrawals, got.FailedWithdrawals)
		assert.Equal(t, want.Locked, got.Locked)

		assert.Len(t, got.History, len(want.History))
		for j, tr := range want.History {
			assert.Equal(t, tr.Kind, got.History[j].Kind)
			assert.True(t, got.History[j].Amount.Equal(tr.Amount))
			assert.True(t, got.History[j].Timestamp.Equal(tr.Timestamp),
				"timestamp %s != %s", got.History[j].Timestamp, tr.Timestamp)
			assert.Equal(t, tr.Description, got.History[j].Description)
		}
	}

	// Digest survives the round trip intact, so logins still work.
	assert.True(t, loaded[0].VerifyPassword("pw"))
}

func TestLedgerRepository_LoadMissingFile(t *testing.T) {
	repo := NewLedgerRepository(filepath.Join(t.TempDir(), "absent.ndjson"))
	accounts, skipped, err := repo.Load()
	assert.NoError(t, err)
	assert.Empty(t, accounts)
	assert.Empty(t, skipped)
}

func TestLedgerRepository_ReportsMalformedLines(t *testing.T) {
	goodA := `{"identifier":"111","name":"A","balance":"1000","account_number":100001,"class":"Basic","password_digest":"x","history":[{"kind":"Deposit","amount":"1000","timestamp":"2024-05-01 10:00:00","description":"Initial Deposit"}],"failed_withdrawals":0,"locked":false}`
	notJSON := `{"identifier": "broken`
	badClass := `{"identifier":"222","name":"B","balance":"1000","account_number":100002,"class":"Gold","password_digest":"x","history":[],"failed_withdrawals":0,"locked":false}`
	badKind := `{"identifier":"333","name":"C","balance":"1000","account_number":100003,"class":"Basic","password_digest":"x","history":[{"kind":"Refund","amount":"1","timestamp":"2024-05-01 10:00:00","description":""}],"failed_withdrawals":0,"locked":false}`
	unknownField := `{"identifier":"444","name":"D","balance":"1000","account_number":100004,"class":"Basic","password_digest":"x","history":[],"failed_withdrawals":0,"locked":false,"overdraft":true}`
	badNumber := `{"identifier":"555","name":"E","balance":"1000","account_number":99,"class":"Basic","password_digest":"x","history":[],"failed_withdrawals":0,"locked":false}`
	goodB := `{"identifier":"666","name":"F","balance":"100","account_number":100006,"class":"Premium","password_digest":"x","history":[],"failed_withdrawals":2,"locked":true}`

	path := filepath.Join(t.TempDir(), "bank_data.ndjson")
	content := strings.Join([]string{goodA, notJSON, badClass, badKind, unknownField, badNumber, goodB}, "\n") + "\n"
	assert.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	accounts, skipped, err := NewLedgerRepository(path).Load()
	assert.NoError(t, err)

	assert.Len(t, accounts, 2)
	assert.Equal(t, "111", accounts[0].Identifier)
	assert.Equal(t, "666", accounts[1].Identifier)
	assert.True(t, accounts[1].Locked)
	assert.Equal(t, 2, accounts[1].FailedWithdrawals)

	lines := make([]int, 0, len(skipped))
	for _, s := range skipped {
		assert.Error(t, s.Err)
		lines = append(lines, s.Line)
	}
	assert.Equal(t, []int{2, 3, 4, 5, 6}, lines)
}

func TestLedgerRepository_SaveIsAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bank_data.ndjson")
	repo := NewLedgerRepository(path)

	account := newRepoAccount(t, "111", model.ClassBasic)
	assert.NoError(t, repo.Save([]*model.Account{account}))
	assert.NoError(t, repo.Save([]*model.Account{account}))

	// The temp file never survives a completed save.
	_, err := os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))

	entries, err := os.ReadDir(dir)
	assert.NoError(t, err)
	assert.Len(t, entries, 1)
}
