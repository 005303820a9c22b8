// File: app/app.go
package app

import (
	"fmt"
	"go-bank-ledger/common"
	"go-bank-ledger/config"
	"go-bank-ledger/logger"
	"go-bank-ledger/model"
	"go-bank-ledger/repository"
	"go-bank-ledger/service"
	"os"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const usage = `usage: bankctl <command> [args]

commands:
  create   <identifier> <name> <initial-deposit> <Basic|Premium> <password>
  login    <identifier> <password>
  balance  <identifier>
  deposit  <identifier> <amount>
  withdraw <identifier> <amount>
  interest <identifier>
  history  <identifier>
  export   <identifier>
  remove   <identifier>
`

func Run() {
	config.LoadConfig(".")
	logger.Init(config.AppConfig.Log.Level)

	// --- Wiring All Layers Together ---
	// Repository, bank service and export service are built here and handed
	// down; the engine itself holds no process-wide state.
	repo := repository.NewLedgerRepository(config.AppConfig.Storage.Path)
	bank, skipped, err := service.NewBankService(repo)
	if err != nil {
		logger.Log.Fatalf("Error loading ledger: %v", err)
	}
	for _, s := range skipped {
		logger.Log.WithFields(logrus.Fields{
			"line": s.Line,
		}).WithError(s.Err).Warn("Ledger record skipped; account not loaded")
	}
	exporter := service.NewExportService(config.AppConfig.Export.Dir)

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	if err := dispatch(bank, exporter, os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func dispatch(bank *service.BankService, exporter *service.ExportService, cmd string, args []string) error {
	switch cmd {
	case "create":
		if len(args) != 5 {
			return fmt.Errorf("create expects 5 arguments")
		}
		deposit, err := decimal.NewFromString(args[2])
		if err != nil {
			return fmt.Errorf("initial deposit must be a valid number")
		}
		req := model.CreateAccountRequest{
			Identifier:     args[0],
			Name:           args[1],
			InitialDeposit: deposit,
			Class:          model.AccountClass(args[3]),
			Password:       args[4],
		}
		if err := common.ValidateStruct(req); err != nil {
			return err
		}
		account, err := bank.CreateAccount(req)
		if err != nil {
			return err
		}
		fmt.Printf("Account created for %s, account number %d\n", account.Name, account.AccountNumber)
		return nil

	case "login":
		if len(args) != 2 {
			return fmt.Errorf("login expects 2 arguments")
		}
		account, err := bank.Login(args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Printf("Logged in as %s, balance %s HUF\n", account.Name, account.Balance)
		return nil

	case "balance":
		account, err := lookup(bank, args)
		if err != nil {
			return err
		}
		fmt.Printf("Balance: %s HUF\n", account.Balance)
		return nil

	case "deposit":
		amount, err := parseAmount(args)
		if err != nil {
			return err
		}
		account, err := bank.Deposit(args[0], amount)
		if err != nil {
			return err
		}
		fmt.Printf("Deposited %s HUF, balance %s HUF\n", amount, account.Balance)
		return nil

	case "withdraw":
		amount, err := parseAmount(args)
		if err != nil {
			return err
		}
		account, err := bank.Withdraw(args[0], amount)
		if err != nil {
			return err
		}
		fmt.Printf("Withdrew %s HUF, balance %s HUF\n", amount, account.Balance)
		return nil

	case "interest":
		account, interest, err := applyInterest(bank, args)
		if err != nil {
			return err
		}
		fmt.Printf("Applied %s%% interest: %s HUF, balance %s HUF\n",
			model.InterestRate(account.Class).Mul(decimal.NewFromInt(100)), interest, account.Balance)
		return nil

	case "history":
		account, err := lookup(bank, args)
		if err != nil {
			return err
		}
		for _, t := range account.History {
			fmt.Println(t)
		}
		return nil

	case "export":
		account, err := lookup(bank, args)
		if err != nil {
			return err
		}
		path, err := exporter.ExportTransactions(account)
		if err != nil {
			return err
		}
		fmt.Printf("Transactions exported to %s\n", path)
		return nil

	case "remove":
		if len(args) != 1 {
			return fmt.Errorf("remove expects 1 argument")
		}
		receipt, err := bank.RemoveAccount(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Account %d removed, %s HUF withdrawn\n", receipt.AccountNumber, receipt.Withdrawn)
		return nil

	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func lookup(bank *service.BankService, args []string) (*model.Account, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("expected exactly 1 argument: <identifier>")
	}
	return bank.GetAccount(args[0])
}

func applyInterest(bank *service.BankService, args []string) (*model.Account, decimal.Decimal, error) {
	if len(args) != 1 {
		return nil, decimal.Zero, fmt.Errorf("interest expects 1 argument")
	}
	return bank.ApplyInterest(args[0])
}

func parseAmount(args []string) (decimal.Decimal, error) {
	if len(args) != 2 {
		return decimal.Zero, fmt.Errorf("expected 2 arguments: <identifier> <amount>")
	}
	amount, err := decimal.NewFromString(args[1])
	if err != nil {
		return decimal.Zero, fmt.Errorf("amount must be a valid number")
	}
	return amount, nil
}
