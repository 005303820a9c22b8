package service

import (
	"encoding/csv"
	"fmt"
	"go-bank-ledger/logger"
	"go-bank-ledger/model"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// ExportService writes one account's history as a CSV artifact. It is a pure
// formatting consumer: it never mutates the account or the ledger file.
type ExportService struct {
	dir string
}

func NewExportService(dir string) *ExportService {
	return &ExportService{dir: dir}
}

// ExportTransactions writes transactions_<number>.csv into the export
// directory, one row per transaction in history order, and returns the path.
func (s *ExportService) ExportTransactions(account *model.Account) (string, error) {
	path := filepath.Join(s.dir, fmt.Sprintf("transactions_%d.csv", account.AccountNumber))
	log := logger.Log.WithFields(logrus.Fields{
		"account_number": account.AccountNumber,
		"path":           path,
	})
	log.Info("Exporting transaction history")

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("could not create export file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"Account Number", "Date/Time", "Action", "Amount", "Description"}); err != nil {
		return "", fmt.Errorf("could not write export header: %w", err)
	}
	for _, t := range account.History {
		row := []string{
			fmt.Sprintf("%d", account.AccountNumber),
			t.Timestamp.Format(model.TimestampLayout),
			string(t.Kind),
			t.Amount.String(),
			t.Description,
		}
		if err := w.Write(row); err != nil {
			return "", fmt.Errorf("could not write export row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("could not flush export: %w", err)
	}
	return path, nil
}
