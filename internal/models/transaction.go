package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType classifies a transaction as money coming in or going out.
type TransactionType string

const (
	TypeCredit TransactionType = "credit"
	TypeDebit  TransactionType = "debit"
)

// ParseTransactionType parses a type field case-insensitively.
// The bool result reports whether the input named a known type.
func ParseTransactionType(s string) (TransactionType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(TypeCredit):
		return TypeCredit, true
	case string(TypeDebit):
		return TypeDebit, true
	}
	return "", false
}

// Transaction is a single tax-adjusted income or expense record owned by one user.
// Amount is the positive gross face value; Tax is derived at write time from
// Amount and TaxPercentage, rounded to 2 decimal places.
type Transaction struct {
	ID            string          `json:"id"`
	UserID        string          `json:"user"`
	Amount        decimal.Decimal `json:"amount"`
	Type          TransactionType `json:"type"`
	Tax           decimal.Decimal `json:"tax"`
	TaxPercentage decimal.Decimal `json:"taxPercentage"`
	Category      Category        `json:"category"`
	Description   string          `json:"description,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// FormattedTransaction is the client-facing projection of a Transaction.
// CreditedAmount, DebitedAmount and NetAmount are derived, never persisted.
type FormattedTransaction struct {
	ID             string          `json:"id"`
	UserID         string          `json:"user"`
	Amount         decimal.Decimal `json:"amount"`
	Type           TransactionType `json:"type"`
	Tax            decimal.Decimal `json:"tax"`
	TaxPercentage  decimal.Decimal `json:"taxPercentage"`
	Category       Category        `json:"category"`
	Description    string          `json:"description,omitempty"`
	CreditedAmount decimal.Decimal `json:"creditedAmount"`
	DebitedAmount  decimal.Decimal `json:"debitedAmount"`
	NetAmount      decimal.Decimal `json:"netAmount"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}
