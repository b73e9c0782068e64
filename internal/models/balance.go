package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Balance is the single running-balance aggregate for one user.
// It is created lazily at zero on first access and from then on is mutated
// only by the ledger engine, rounded to 2 decimal places after every write.
type Balance struct {
	UserID    string          `json:"user"`
	Balance   decimal.Decimal `json:"balance"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}
