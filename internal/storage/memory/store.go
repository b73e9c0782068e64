// Package memory provides an in-memory implementation of
// interfaces.LedgerStore. It backs tests and local serving.
package memory

import (
	"context"
	"sync"

	"github.com/sheikh-saqib/freelance-ledger/internal/interfaces"
	"github.com/sheikh-saqib/freelance-ledger/internal/ledger"
	"github.com/sheikh-saqib/freelance-ledger/internal/models"
)

// MemoryLedgerStore stores transactions and balances in maps and is safe for
// concurrent use.
type MemoryLedgerStore struct {
	mu           sync.Mutex
	transactions map[string]models.Transaction // keyed by transaction id
	balances     map[string]models.Balance     // keyed by user id
}

// NewMemoryLedgerStore creates an empty MemoryLedgerStore.
func NewMemoryLedgerStore() *MemoryLedgerStore {
	return &MemoryLedgerStore{
		transactions: make(map[string]models.Transaction),
		balances:     make(map[string]models.Balance),
	}
}

func (m *MemoryLedgerStore) GetTransaction(ctx context.Context, id string) (models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	tx, ok := m.transactions[id]
	if !ok {
		return models.Transaction{}, ledger.ErrTransactionNotFound
	}
	return tx, nil
}

func (m *MemoryLedgerStore) GetTransactionsByUser(ctx context.Context, userID string) ([]models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var result []models.Transaction
	for _, tx := range m.transactions {
		if tx.UserID == userID {
			result = append(result, tx)
		}
	}
	return result, nil
}

func (m *MemoryLedgerStore) GetBalance(ctx context.Context, userID string) (models.Balance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	bal, ok := m.balances[userID]
	if !ok {
		return models.Balance{}, ledger.ErrBalanceNotFound
	}
	return bal, nil
}

func (m *MemoryLedgerStore) SaveBalance(ctx context.Context, balance models.Balance) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.balances[balance.UserID] = balance
	return nil
}

func (m *MemoryLedgerStore) SaveTransactionWithBalance(ctx context.Context, tx models.Transaction, balance models.Balance) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.transactions[tx.ID] = tx
	m.balances[balance.UserID] = balance
	return nil
}

func (m *MemoryLedgerStore) SaveTransactionsWithBalance(ctx context.Context, txs []models.Transaction, balance models.Balance) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, tx := range txs {
		m.transactions[tx.ID] = tx
	}
	m.balances[balance.UserID] = balance
	return nil
}

func (m *MemoryLedgerStore) UpdateTransactionWithBalance(ctx context.Context, tx models.Transaction, balance models.Balance) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.transactions[tx.ID]; !ok {
		return ledger.ErrTransactionNotFound
	}
	m.transactions[tx.ID] = tx
	m.balances[balance.UserID] = balance
	return nil
}

func (m *MemoryLedgerStore) DeleteTransactionWithBalance(ctx context.Context, id string, balance models.Balance) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.transactions[id]; !ok {
		return ledger.ErrTransactionNotFound
	}
	delete(m.transactions, id)
	m.balances[balance.UserID] = balance
	return nil
}

// Compile-time check: MemoryLedgerStore implements LedgerStore.
var _ interfaces.LedgerStore = (*MemoryLedgerStore)(nil)
