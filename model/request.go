// file: model/request.go

package model

import "github.com/shopspring/decimal"

// CreateAccountRequest defines the payload for opening a new account.
// The validate tags guard the entry point; the service layer re-checks the
// same conditions with typed errors so API callers get the same taxonomy.
type CreateAccountRequest struct {
	Identifier     string          `json:"identifier" validate:"required"`
	Name           string          `json:"name" validate:"required"`
	InitialDeposit decimal.Decimal `json:"initial_deposit" validate:"required"`
	Class          AccountClass    `json:"class" validate:"required,oneof=Basic Premium"`
	Password       string          `json:"password" validate:"required"`
}
