package events

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	TopicTransactionRecorded = "transaction_recorded"
	TopicTransactionReversed = "transaction_reversed"
	TopicImportCompleted     = "import_completed"
)

// TransactionRecorded is emitted after a transaction create or update commits.
type TransactionRecorded struct {
	TransactionID  string          `json:"transaction_id"`
	UserID         string          `json:"user_id"`
	Type           string          `json:"type"`
	Amount         decimal.Decimal `json:"amount"`
	Tax            decimal.Decimal `json:"tax"`
	UpdatedBalance decimal.Decimal `json:"updated_balance"`
	OccurredAt     time.Time       `json:"occurred_at"`
}

// TransactionReversed is emitted after a transaction delete commits.
type TransactionReversed struct {
	TransactionID  string          `json:"transaction_id"`
	UserID         string          `json:"user_id"`
	UpdatedBalance decimal.Decimal `json:"updated_balance"`
	OccurredAt     time.Time       `json:"occurred_at"`
}

// ImportCompleted is emitted after a bulk import commits.
type ImportCompleted struct {
	UserID         string          `json:"user_id"`
	Imported       int             `json:"imported"`
	Skipped        int             `json:"skipped"`
	UpdatedBalance decimal.Decimal `json:"updated_balance"`
	OccurredAt     time.Time       `json:"occurred_at"`
}
