package repository

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"go-bank-ledger/logger"
	"go-bank-ledger/model"
	"os"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// ILedgerRepository defines the contract for persisting the full ledger state.
type ILedgerRepository interface {
	Save(accounts []*model.Account) error
	Load() ([]*model.Account, []SkippedRecord, error)
}

// SkippedRecord reports one persisted line that failed strict decoding.
// Skips are surfaced to the caller instead of being silently dropped, since a
// silent skip is invisible data loss.
type SkippedRecord struct {
	Line int
	Err  error
}

// LedgerRepository implements ILedgerRepository over a newline-delimited JSON
// file: one self-describing record per account per line. Writes replace the
// whole file atomically via a temp file and rename.
type LedgerRepository struct {
	Path string
}

func NewLedgerRepository(path string) *LedgerRepository {
	return &LedgerRepository{Path: path}
}

// transactionRecord is the wire form of one ledger event. Timestamps are
// encoded as fixed-format text so the file stays diffable and sortable.
type transactionRecord struct {
	Kind        string          `json:"kind"`
	Amount      decimal.Decimal `json:"amount"`
	Timestamp   string          `json:"timestamp"`
	Description string          `json:"description"`
}

// accountRecord is the wire form of one account, carrying every field the
// engine persists. The interest eligibility flag is deliberately absent.
type accountRecord struct {
	Identifier        string              `json:"identifier"`
	Name              string              `json:"name"`
	Balance           decimal.Decimal     `json:"balance"`
	AccountNumber     int                 `json:"account_number"`
	Class             string              `json:"class"`
	PasswordDigest    string              `json:"password_digest"`
	History           []transactionRecord `json:"history"`
	FailedWithdrawals int                 `json:"failed_withdrawals"`
	Locked            bool                `json:"locked"`
}

func toRecord(a *model.Account) accountRecord {
	rec := accountRecord{
		Identifier:        a.Identifier,
		Name:              a.Name,
		Balance:           a.Balance,
		AccountNumber:     a.AccountNumber,
		Class:             string(a.Class),
		PasswordDigest:    a.PasswordDigest,
		History:           make([]transactionRecord, 0, len(a.History)),
		FailedWithdrawals: a.FailedWithdrawals,
		Locked:            a.Locked,
	}
	for _, t := range a.History {
		rec.History = append(rec.History, transactionRecord{
			Kind:        string(t.Kind),
			Amount:      t.Amount,
			Timestamp:   t.Timestamp.Format(model.TimestampLayout),
			Description: t.Description,
		})
	}
	return rec
}

// toAccount validates the decoded record against the schema before handing it
// back to the domain. Any violation fails the whole line.
func (r accountRecord) toAccount() (*model.Account, error) {
	class := model.AccountClass(r.Class)
	if !class.Valid() {
		return nil, fmt.Errorf("unknown account class %q", r.Class)
	}
	if r.AccountNumber < 100000 || r.AccountNumber > 999999 {
		return nil, fmt.Errorf("account number %d is not a 6-digit numeral", r.AccountNumber)
	}
	if r.Identifier == "" {
		return nil, fmt.Errorf("missing identifier")
	}

	a := &model.Account{
		Identifier:        r.Identifier,
		Name:              r.Name,
		Balance:           r.Balance,
		AccountNumber:     r.AccountNumber,
		Class:             class,
		PasswordDigest:    r.PasswordDigest,
		History:           make([]model.Transaction, 0, len(r.History)),
		FailedWithdrawals: r.FailedWithdrawals,
		Locked:            r.Locked,
	}
	for i, t := range r.History {
		kind := model.TransactionKind(t.Kind)
		if !kind.Valid() {
			return nil, fmt.Errorf("history[%d]: unknown transaction kind %q", i, t.Kind)
		}
		ts, err := time.ParseInLocation(model.TimestampLayout, t.Timestamp, time.Local)
		if err != nil {
			return nil, fmt.Errorf("history[%d]: bad timestamp %q: %w", i, t.Timestamp, err)
		}
		a.History = append(a.History, model.Transaction{
			Kind:        kind,
			Amount:      t.Amount,
			Timestamp:   ts,
			Description: t.Description,
		})
	}
	return a, nil
}

// Save rewrites the entire ledger file from the given accounts. Records are
// sorted by identifier so consecutive snapshots diff cleanly. The write goes
// to a temp file first and replaces the target with a rename, so a crash
// mid-write never corrupts the previous snapshot.
func (r *LedgerRepository) Save(accounts []*model.Account) error {
	log := logger.Log.WithFields(logrus.Fields{
		"path":     r.Path,
		"accounts": len(accounts),
	})
	log.Debug("Writing ledger snapshot")

	sorted := make([]*model.Account, len(accounts))
	copy(sorted, accounts)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Identifier < sorted[j].Identifier
	})

	tmp := r.Path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("could not create temp snapshot: %w", err)
	}

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	for _, a := range sorted {
		// Encode appends the newline, giving one record per line.
		if err := enc.Encode(toRecord(a)); err != nil {
			f.Close()
			return fmt.Errorf("could not encode account %s: %w", a.Identifier, err)
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("could not flush snapshot: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("could not close snapshot: %w", err)
	}

	if err := os.Rename(tmp, r.Path); err != nil {
		return fmt.Errorf("could not replace snapshot: %w", err)
	}
	return nil
}

// Load reads the ledger file back into accounts. A missing file yields an
// empty store. Each line is decoded independently with a strict decoder;
// lines that fail decoding or schema validation are returned as SkippedRecord
// values while the well-formed lines still load.
func (r *LedgerRepository) Load() ([]*model.Account, []SkippedRecord, error) {
	f, err := os.Open(r.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("could not open ledger file: %w", err)
	}
	defer f.Close()

	var (
		accounts []*model.Account
		skipped  []SkippedRecord
	)

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		a, err := decodeLine(line)
		if err != nil {
			logger.Log.WithFields(logrus.Fields{
				"path": r.Path,
				"line": lineNo,
			}).WithError(err).Warn("Skipping unreadable ledger record")
			skipped = append(skipped, SkippedRecord{Line: lineNo, Err: err})
			continue
		}
		accounts = append(accounts, a)
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("could not read ledger file: %w", err)
	}
	return accounts, skipped, nil
}

func decodeLine(line []byte) (*model.Account, error) {
	dec := json.NewDecoder(bytes.NewReader(line))
	dec.DisallowUnknownFields()
	var rec accountRecord
	if err := dec.Decode(&rec); err != nil {
		return nil, err
	}
	return rec.toAccount()
}
