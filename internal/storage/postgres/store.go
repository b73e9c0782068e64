// Package postgres implements interfaces.LedgerStore on PostgreSQL via
// database/sql and lib/pq. The combined transaction+balance writes run inside
// a single SQL transaction so neither side can land without the other.
package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/sheikh-saqib/freelance-ledger/internal/interfaces"
	"github.com/sheikh-saqib/freelance-ledger/internal/ledger"
	"github.com/sheikh-saqib/freelance-ledger/internal/models"
)

type PostgresLedgerStore struct {
	db *sql.DB
}

func NewPostgresLedgerStore(db *sql.DB) *PostgresLedgerStore {
	return &PostgresLedgerStore{
		db: db,
	}
}

const selectTransaction = `SELECT id, user_id, amount, type, tax, tax_percentage, category, description, created_at, updated_at
	FROM transactions WHERE id = $1`

func (p *PostgresLedgerStore) GetTransaction(ctx context.Context, id string) (models.Transaction, error) {
	var tx models.Transaction
	err := p.db.QueryRowContext(ctx, selectTransaction, id).Scan(
		&tx.ID, &tx.UserID, &tx.Amount, &tx.Type, &tx.Tax, &tx.TaxPercentage,
		&tx.Category, &tx.Description, &tx.CreatedAt, &tx.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Transaction{}, ledger.ErrTransactionNotFound
	}
	if err != nil {
		return models.Transaction{}, err
	}
	return tx, nil
}

func (p *PostgresLedgerStore) GetTransactionsByUser(ctx context.Context, userID string) ([]models.Transaction, error) {
	const query = `SELECT id, user_id, amount, type, tax, tax_percentage, category, description, created_at, updated_at
	FROM transactions WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := p.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txs []models.Transaction
	for rows.Next() {
		var tx models.Transaction
		if err := rows.Scan(&tx.ID, &tx.UserID, &tx.Amount, &tx.Type, &tx.Tax,
			&tx.TaxPercentage, &tx.Category, &tx.Description, &tx.CreatedAt, &tx.UpdatedAt); err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

func (p *PostgresLedgerStore) GetBalance(ctx context.Context, userID string) (models.Balance, error) {
	const query = `SELECT user_id, balance, created_at, updated_at FROM user_balances WHERE user_id = $1`

	var bal models.Balance
	err := p.db.QueryRowContext(ctx, query, userID).Scan(&bal.UserID, &bal.Balance, &bal.CreatedAt, &bal.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Balance{}, ledger.ErrBalanceNotFound
	}
	if err != nil {
		return models.Balance{}, err
	}
	return bal, nil
}

const upsertBalance = `INSERT INTO user_balances (user_id, balance, created_at, updated_at)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (user_id) DO UPDATE SET balance = EXCLUDED.balance, updated_at = EXCLUDED.updated_at`

func (p *PostgresLedgerStore) SaveBalance(ctx context.Context, bal models.Balance) error {
	_, err := p.db.ExecContext(ctx, upsertBalance, bal.UserID, bal.Balance, bal.CreatedAt, bal.UpdatedAt)
	return err
}

const insertTransaction = `INSERT INTO transactions (id, user_id, amount, type, tax, tax_percentage, category, description, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

func (p *PostgresLedgerStore) saveTransaction(ctx context.Context, dbTx *sql.Tx, tx models.Transaction) error {
	_, err := dbTx.ExecContext(ctx, insertTransaction, tx.ID, tx.UserID, tx.Amount, tx.Type,
		tx.Tax, tx.TaxPercentage, tx.Category, tx.Description, tx.CreatedAt, tx.UpdatedAt)
	return err
}

func (p *PostgresLedgerStore) saveBalanceTx(ctx context.Context, dbTx *sql.Tx, bal models.Balance) error {
	_, err := dbTx.ExecContext(ctx, upsertBalance, bal.UserID, bal.Balance, bal.CreatedAt, bal.UpdatedAt)
	return err
}

func (p *PostgresLedgerStore) SaveTransactionWithBalance(ctx context.Context, tx models.Transaction, bal models.Balance) error {
	return p.withTx(ctx, func(dbTx *sql.Tx) error {
		if err := p.saveTransaction(ctx, dbTx, tx); err != nil {
			return err
		}
		return p.saveBalanceTx(ctx, dbTx, bal)
	})
}

func (p *PostgresLedgerStore) SaveTransactionsWithBalance(ctx context.Context, txs []models.Transaction, bal models.Balance) error {
	return p.withTx(ctx, func(dbTx *sql.Tx) error {
		for _, tx := range txs {
			if err := p.saveTransaction(ctx, dbTx, tx); err != nil {
				return err
			}
		}
		return p.saveBalanceTx(ctx, dbTx, bal)
	})
}

func (p *PostgresLedgerStore) UpdateTransactionWithBalance(ctx context.Context, tx models.Transaction, bal models.Balance) error {
	const query = `UPDATE transactions
	SET amount = $2, type = $3, tax = $4, tax_percentage = $5, category = $6, description = $7, updated_at = $8
	WHERE id = $1`

	return p.withTx(ctx, func(dbTx *sql.Tx) error {
		res, err := dbTx.ExecContext(ctx, query, tx.ID, tx.Amount, tx.Type, tx.Tax,
			tx.TaxPercentage, tx.Category, tx.Description, tx.UpdatedAt)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return ledger.ErrTransactionNotFound
		}
		return p.saveBalanceTx(ctx, dbTx, bal)
	})
}

func (p *PostgresLedgerStore) DeleteTransactionWithBalance(ctx context.Context, id string, bal models.Balance) error {
	const query = `DELETE FROM transactions WHERE id = $1`

	return p.withTx(ctx, func(dbTx *sql.Tx) error {
		res, err := dbTx.ExecContext(ctx, query, id)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return ledger.ErrTransactionNotFound
		}
		return p.saveBalanceTx(ctx, dbTx, bal)
	})
}

func (p *PostgresLedgerStore) withTx(ctx context.Context, fn func(dbTx *sql.Tx) error) error {
	dbTx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	if err := fn(dbTx); err != nil {
		dbTx.Rollback()
		return err
	}
	return dbTx.Commit()
}

var _ interfaces.LedgerStore = (*PostgresLedgerStore)(nil)
