package memory

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sheikh-saqib/freelance-ledger/internal/ledger"
	"github.com/sheikh-saqib/freelance-ledger/internal/models"
)

func sampleTransaction(id, userID string) models.Transaction {
	now := time.Now().UTC()
	return models.Transaction{
		ID:            id,
		UserID:        userID,
		Amount:        decimal.NewFromInt(100),
		Type:          models.TypeCredit,
		Tax:           decimal.NewFromInt(10),
		TaxPercentage: decimal.NewFromInt(10),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func sampleBalance(userID string, amount int64) models.Balance {
	now := time.Now().UTC()
	return models.Balance{UserID: userID, Balance: decimal.NewFromInt(amount), CreatedAt: now, UpdatedAt: now}
}

func TestSaveTransactionWithBalance(t *testing.T) {
	store := NewMemoryLedgerStore()
	ctx := context.Background()

	tx := sampleTransaction("t1", "alice")
	require.NoError(t, store.SaveTransactionWithBalance(ctx, tx, sampleBalance("alice", 90)))

	got, err := store.GetTransaction(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, tx, got)

	bal, err := store.GetBalance(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(90).Equal(bal.Balance))
}

func TestGetTransactionNotFound(t *testing.T) {
	store := NewMemoryLedgerStore()

	_, err := store.GetTransaction(context.Background(), "missing")
	assert.ErrorIs(t, err, ledger.ErrTransactionNotFound)
}

func TestGetBalanceNotFound(t *testing.T) {
	store := NewMemoryLedgerStore()

	_, err := store.GetBalance(context.Background(), "nobody")
	assert.ErrorIs(t, err, ledger.ErrBalanceNotFound)
}

func TestGetTransactionsByUser(t *testing.T) {
	store := NewMemoryLedgerStore()
	ctx := context.Background()

	require.NoError(t, store.SaveTransactionWithBalance(ctx, sampleTransaction("t1", "alice"), sampleBalance("alice", 90)))
	require.NoError(t, store.SaveTransactionWithBalance(ctx, sampleTransaction("t2", "alice"), sampleBalance("alice", 180)))
	require.NoError(t, store.SaveTransactionWithBalance(ctx, sampleTransaction("t3", "bob"), sampleBalance("bob", 90)))

	txs, err := store.GetTransactionsByUser(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, txs, 2)
}

func TestUpdateTransactionWithBalance(t *testing.T) {
	store := NewMemoryLedgerStore()
	ctx := context.Background()

	tx := sampleTransaction("t1", "alice")
	require.NoError(t, store.SaveTransactionWithBalance(ctx, tx, sampleBalance("alice", 90)))

	tx.Description = "edited"
	require.NoError(t, store.UpdateTransactionWithBalance(ctx, tx, sampleBalance("alice", 90)))

	got, err := store.GetTransaction(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, "edited", got.Description)

	// Updating a missing record is an error, not an upsert.
	missing := sampleTransaction("nope", "alice")
	err = store.UpdateTransactionWithBalance(ctx, missing, sampleBalance("alice", 90))
	assert.ErrorIs(t, err, ledger.ErrTransactionNotFound)
}

func TestDeleteTransactionWithBalance(t *testing.T) {
	store := NewMemoryLedgerStore()
	ctx := context.Background()

	require.NoError(t, store.SaveTransactionWithBalance(ctx, sampleTransaction("t1", "alice"), sampleBalance("alice", 90)))
	require.NoError(t, store.DeleteTransactionWithBalance(ctx, "t1", sampleBalance("alice", 0)))

	_, err := store.GetTransaction(ctx, "t1")
	assert.ErrorIs(t, err, ledger.ErrTransactionNotFound)

	bal, err := store.GetBalance(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, bal.Balance.IsZero())

	err = store.DeleteTransactionWithBalance(ctx, "t1", sampleBalance("alice", 0))
	assert.ErrorIs(t, err, ledger.ErrTransactionNotFound)
}

func TestSaveTransactionsWithBalance(t *testing.T) {
	store := NewMemoryLedgerStore()
	ctx := context.Background()

	txs := []models.Transaction{
		sampleTransaction("t1", "alice"),
		sampleTransaction("t2", "alice"),
		sampleTransaction("t3", "alice"),
	}
	require.NoError(t, store.SaveTransactionsWithBalance(ctx, txs, sampleBalance("alice", 270)))

	got, err := store.GetTransactionsByUser(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, got, 3)
}
