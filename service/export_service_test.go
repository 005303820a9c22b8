package service

import (
	"encoding/csv"
	"fmt"
	"go-bank-ledger/model"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestExportService_ExportTransactions(t *testing.T) {
	account, err := model.NewAccount("111", "Exporter", decimal.NewFromInt(2000), model.ClassBasic, "pw")
	assert.NoError(t, err)
	assert.NoError(t, account.Deposit(decimal.NewFromInt(500)))
	assert.NoError(t, account.Withdraw(decimal.NewFromInt(300)))

	dir := t.TempDir()
	path, err := NewExportService(dir).ExportTransactions(account)
	assert.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, fmt.Sprintf("transactions_%d.csv", account.AccountNumber)), path)

	f, err := os.Open(path)
	assert.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	assert.NoError(t, err)
	assert.Len(t, rows, 4) // header + 3 transactions

	assert.Equal(t, []string{"Account Number", "Date/Time", "Action", "Amount", "Description"}, rows[0])
	assert.Equal(t, []string{
		fmt.Sprintf("%d", account.AccountNumber),
		account.History[0].Timestamp.Format(model.TimestampLayout),
		"Deposit",
		account.History[0].Amount.String(),
		"Initial Deposit",
	}, rows[1])
	assert.Equal(t, "Withdrawal", rows[3][2])
	assert.Equal(t, "-300", rows[3][3])
}
