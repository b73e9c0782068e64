package interfaces

import (
	"context"

	"github.com/sheikh-saqib/freelance-ledger/internal/models"
)

// LedgerStore is the persistence contract for transactions and balances.
// The combined-write methods are the only mutation paths the ledger engine
// uses for transactions: each one must persist its transaction write and the
// balance write as a single unit, so a failure leaves neither applied.
type LedgerStore interface {
	GetTransaction(ctx context.Context, id string) (models.Transaction, error)
	GetTransactionsByUser(ctx context.Context, userID string) ([]models.Transaction, error)

	GetBalance(ctx context.Context, userID string) (models.Balance, error)
	SaveBalance(ctx context.Context, balance models.Balance) error

	SaveTransactionWithBalance(ctx context.Context, tx models.Transaction, balance models.Balance) error
	SaveTransactionsWithBalance(ctx context.Context, txs []models.Transaction, balance models.Balance) error
	UpdateTransactionWithBalance(ctx context.Context, tx models.Transaction, balance models.Balance) error
	DeleteTransactionWithBalance(ctx context.Context, id string, balance models.Balance) error
}
