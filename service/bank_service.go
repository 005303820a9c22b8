package service

import (
	"errors"
	"fmt"
	"go-bank-ledger/logger"
	"go-bank-ledger/model"
	"go-bank-ledger/repository"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

var (
	ErrDuplicateIdentifier = errors.New("identifier already exists")
	ErrEmptyPassword       = errors.New("password cannot be empty")
	ErrInvalidAccountClass = errors.New("account class must be Basic or Premium")
	ErrIdentifierNotFound  = errors.New("identifier not found")
	ErrInvalidPassword     = errors.New("incorrect password")
	ErrAccountNotFound     = errors.New("account not found")
)

// BankService is the store: it owns the identifier index, the set of live
// account numbers, and the persistence orchestration. Every mutating
// operation rewrites the full ledger state before returning.
//
// The service assumes a single caller; there is no locking discipline.
type BankService struct {
	repo           repository.ILedgerRepository
	accounts       map[string]*model.Account
	accountNumbers map[int]struct{}
}

// RemovalReceipt reports what RemoveAccount did: the number that was freed
// and the amount drained before deletion.
type RemovalReceipt struct {
	AccountNumber int
	Withdrawn     decimal.Decimal
}

// NewBankService loads persisted state through the repository and indexes it.
// Records the repository could not decode are passed through to the caller,
// who decides how to report them.
func NewBankService(repo repository.ILedgerRepository) (*BankService, []repository.SkippedRecord, error) {
	accounts, skipped, err := repo.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("could not load ledger: %w", err)
	}

	s := &BankService{
		repo:           repo,
		accounts:       make(map[string]*model.Account, len(accounts)),
		accountNumbers: make(map[int]struct{}, len(accounts)),
	}
	for _, a := range accounts {
		s.accounts[a.Identifier] = a
		s.accountNumbers[a.AccountNumber] = struct{}{}
	}
	return s, skipped, nil
}

// CreateAccount validates the request, builds the account, resolves account
// number collisions, registers both indexes and persists.
func (s *BankService) CreateAccount(req model.CreateAccountRequest) (*model.Account, error) {
	log := logger.Log.WithFields(logrus.Fields{
		"identifier": req.Identifier,
		"class":      req.Class,
	})
	log.Info("Creating account")

	if _, exists := s.accounts[req.Identifier]; exists {
		return nil, ErrDuplicateIdentifier
	}
	if req.Password == "" {
		return nil, ErrEmptyPassword
	}
	if !req.Class.Valid() {
		return nil, ErrInvalidAccountClass
	}

	account, err := model.NewAccount(req.Identifier, req.Name, req.InitialDeposit, req.Class, req.Password)
	if err != nil {
		return nil, err
	}

	for {
		if _, taken := s.accountNumbers[account.AccountNumber]; !taken {
			break
		}
		account.AccountNumber = model.RandomAccountNumber()
	}

	s.accounts[account.Identifier] = account
	s.accountNumbers[account.AccountNumber] = struct{}{}

	if err := s.persist(); err != nil {
		return nil, err
	}

	log.WithField("account_number", account.AccountNumber).Info("Account created")
	return account, nil
}

// Login authenticates by identifier and password and returns the account.
// There is no session object; the caller holds the reference.
func (s *BankService) Login(identifier, password string) (*model.Account, error) {
	account, exists := s.accounts[identifier]
	if !exists {
		return nil, ErrIdentifierNotFound
	}
	if !account.VerifyPassword(password) {
		logger.Log.WithField("identifier", identifier).Warn("Failed login attempt")
		return nil, ErrInvalidPassword
	}
	return account, nil
}

// GetAccount looks an account up by identifier.
func (s *BankService) GetAccount(identifier string) (*model.Account, error) {
	account, exists := s.accounts[identifier]
	if !exists {
		return nil, ErrAccountNotFound
	}
	return account, nil
}

// Accounts returns all live accounts, for persistence and listing.
func (s *BankService) Accounts() []*model.Account {
	out := make([]*model.Account, 0, len(s.accounts))
	for _, a := range s.accounts {
		out = append(out, a)
	}
	return out
}

// Deposit credits an account and persists.
func (s *BankService) Deposit(identifier string, amount decimal.Decimal) (*model.Account, error) {
	account, err := s.GetAccount(identifier)
	if err != nil {
		return nil, err
	}
	if err := account.Deposit(amount); err != nil {
		return nil, err
	}
	if err := s.persist(); err != nil {
		return nil, err
	}
	return account, nil
}

// Withdraw debits an account and persists. A rejected withdrawal can still
// mutate persisted state (the failed-withdrawal counter and the lock flag),
// so those failures trigger a rewrite too before the error surfaces.
func (s *BankService) Withdraw(identifier string, amount decimal.Decimal) (*model.Account, error) {
	account, err := s.GetAccount(identifier)
	if err != nil {
		return nil, err
	}

	failedBefore := account.FailedWithdrawals
	lockedBefore := account.Locked

	withdrawErr := account.Withdraw(amount)
	if withdrawErr == nil ||
		account.FailedWithdrawals != failedBefore || account.Locked != lockedBefore {
		if err := s.persist(); err != nil {
			return nil, err
		}
	}
	if withdrawErr != nil {
		return nil, withdrawErr
	}
	return account, nil
}

// ApplyInterest credits class-based interest and persists.
func (s *BankService) ApplyInterest(identifier string) (*model.Account, decimal.Decimal, error) {
	account, err := s.GetAccount(identifier)
	if err != nil {
		return nil, decimal.Zero, err
	}
	interest, err := account.ApplyInterest()
	if err != nil {
		return nil, decimal.Zero, err
	}
	if err := s.persist(); err != nil {
		return nil, decimal.Zero, err
	}
	return account, interest, nil
}

// RemoveAccount drains the account to the minimum balance through the normal
// withdraw path, then unregisters it and persists. Because the drain uses the
// public withdraw rules it can fail, or even lock the account, in which case
// removal aborts and the account stays registered.
func (s *BankService) RemoveAccount(identifier string) (*RemovalReceipt, error) {
	account, err := s.GetAccount(identifier)
	if err != nil {
		return nil, err
	}

	log := logger.Log.WithFields(logrus.Fields{
		"identifier":     identifier,
		"account_number": account.AccountNumber,
	})

	withdrawn := decimal.Zero
	if account.Balance.GreaterThan(model.MinimumBalance) {
		withdrawn = account.Balance.Sub(model.MinimumBalance)
		if _, err := s.Withdraw(identifier, withdrawn); err != nil {
			log.WithError(err).Warn("Account removal aborted by withdraw rules")
			return nil, err
		}
	}

	delete(s.accounts, identifier)
	delete(s.accountNumbers, account.AccountNumber)

	if err := s.persist(); err != nil {
		return nil, err
	}

	log.WithField("withdrawn", withdrawn).Info("Account removed")
	return &RemovalReceipt{AccountNumber: account.AccountNumber, Withdrawn: withdrawn}, nil
}

func (s *BankService) persist() error {
	if err := s.repo.Save(s.Accounts()); err != nil {
		logger.Log.WithError(err).Error("Failed to persist ledger state")
		return fmt.Errorf("could not persist ledger: %w", err)
	}
	return nil
}
