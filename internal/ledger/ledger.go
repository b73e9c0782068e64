package ledger

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/sheikh-saqib/freelance-ledger/internal/interfaces"
	"github.com/sheikh-saqib/freelance-ledger/internal/models"
	"github.com/sheikh-saqib/freelance-ledger/internal/models/events"
)

// RoleAdmin may read and mutate any user's transactions.
const RoleAdmin = "admin"

// Ledger keeps each user's running balance in lock-step with the
// create/update/delete log of that user's transactions.
//
// The balance is incrementally maintained, never recomputed from history, so
// every mutation path must apply its delta exactly once. All read-check-write
// sequences for one user run under that user's mutex; operations for
// different users proceed in parallel.
type Ledger struct {
	store  interfaces.LedgerStore
	events interfaces.EventPublisher
	log    *zap.Logger

	muMap map[string]*sync.Mutex // per-user locks
	mapMu sync.Mutex             // protects muMap itself
}

// NewLedger creates a Ledger over the given store. The event publisher may be
// nil, in which case no events are emitted.
func NewLedger(store interfaces.LedgerStore, log *zap.Logger, events interfaces.EventPublisher) *Ledger {
	if log == nil {
		log = zap.NewNop()
	}
	return &Ledger{
		store:  store,
		events: events,
		log:    log,
		muMap:  make(map[string]*sync.Mutex),
	}
}

func (l *Ledger) userLock(userID string) *sync.Mutex {
	l.mapMu.Lock()
	defer l.mapMu.Unlock()

	if _, exists := l.muMap[userID]; !exists {
		l.muMap[userID] = &sync.Mutex{}
	}
	return l.muMap[userID]
}

// TransactionInput carries the caller-supplied fields of a transaction
// create or update.
type TransactionInput struct {
	Amount        decimal.Decimal `json:"amount"`
	Type          string          `json:"type"`
	TaxPercentage decimal.Decimal `json:"taxPercentage"`
	Category      string          `json:"category"`
	Description   string          `json:"description"`
}

func (in TransactionInput) validate() (models.TransactionType, models.Category, error) {
	if !in.Amount.IsPositive() {
		return "", "", &ValidationError{Field: "amount", Reason: "must be a positive number"}
	}
	typ, ok := models.ParseTransactionType(in.Type)
	if !ok {
		return "", "", &ValidationError{Field: "type", Reason: "must be credit or debit"}
	}
	if in.TaxPercentage.IsNegative() {
		return "", "", &ValidationError{Field: "taxPercentage", Reason: "must not be negative"}
	}
	cat, ok := models.ParseCategory(in.Category)
	if !ok {
		return "", "", &ValidationError{Field: "category", Reason: "unknown category"}
	}
	return typ, cat, nil
}

// TransactionResult is returned by every mutating operation.
type TransactionResult struct {
	Transaction    models.FormattedTransaction `json:"transaction"`
	UpdatedBalance decimal.Decimal             `json:"updatedBalance"`
}

// getOrCreateBalance loads the user's balance record, creating it at zero if
// absent. Must be called with the user's lock held so a concurrent first
// access cannot create duplicates.
func (l *Ledger) getOrCreateBalance(ctx context.Context, userID string) (models.Balance, error) {
	bal, err := l.store.GetBalance(ctx, userID)
	if err == nil {
		return bal, nil
	}
	if !errors.Is(err, ErrBalanceNotFound) {
		return models.Balance{}, fmt.Errorf("load balance: %w", err)
	}

	now := time.Now().UTC()
	bal = models.Balance{UserID: userID, Balance: decimal.Zero, CreatedAt: now, UpdatedAt: now}
	if err := l.store.SaveBalance(ctx, bal); err != nil {
		return models.Balance{}, fmt.Errorf("create balance: %w", err)
	}
	return bal, nil
}

// Create records a new transaction and applies its effect to the user's
// balance. A debit that the current balance cannot cover fails with
// ErrInsufficientBalance and writes nothing; otherwise the transaction and
// the adjusted balance are persisted as one unit.
func (l *Ledger) Create(ctx context.Context, userID string, in TransactionInput) (TransactionResult, error) {
	typ, cat, err := in.validate()
	if err != nil {
		return TransactionResult{}, err
	}

	tax := CalculateTax(in.Amount, in.TaxPercentage)
	effect := EffectOf(in.Amount, tax, typ)

	mu := l.userLock(userID)
	mu.Lock()
	defer mu.Unlock()

	bal, err := l.getOrCreateBalance(ctx, userID)
	if err != nil {
		return TransactionResult{}, err
	}

	if typ == models.TypeDebit && overdraws(bal.Balance, effect) {
		return TransactionResult{}, fmt.Errorf("%w: debit of %s against balance %s",
			ErrInsufficientBalance, effect.Neg(), bal.Balance)
	}

	now := time.Now().UTC()
	tx := models.Transaction{
		ID:            uuid.New().String(),
		UserID:        userID,
		Amount:        in.Amount,
		Type:          typ,
		Tax:           tax,
		TaxPercentage: in.TaxPercentage,
		Category:      cat,
		Description:   in.Description,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	bal.Balance = ApplyEffect(bal.Balance, effect).Round(2)
	bal.UpdatedAt = now

	if err := l.store.SaveTransactionWithBalance(ctx, tx, bal); err != nil {
		return TransactionResult{}, fmt.Errorf("save transaction: %w", err)
	}

	l.publish(ctx, events.TopicTransactionRecorded, events.TransactionRecorded{
		TransactionID:  tx.ID,
		UserID:         userID,
		Type:           string(typ),
		Amount:         tx.Amount,
		Tax:            tx.Tax,
		UpdatedBalance: bal.Balance,
		OccurredAt:     now,
	})

	return TransactionResult{Transaction: Format(tx), UpdatedBalance: bal.Balance}, nil
}

// Update rewrites a transaction's fields and moves the balance from the old
// effect to the new one. The old effect is reversed using the transaction's
// stored tax, the new effect is checked against that reversed balance, and
// only then are both applied. A debit the reversed balance cannot cover fails
// with ErrInsufficientBalance, leaving transaction and balance untouched.
func (l *Ledger) Update(ctx context.Context, userID, role, txID string, in TransactionInput) (TransactionResult, error) {
	typ, cat, err := in.validate()
	if err != nil {
		return TransactionResult{}, err
	}

	tx, err := l.visibleTransaction(ctx, userID, role, txID)
	if err != nil {
		return TransactionResult{}, err
	}

	// Lock the owner, not the caller: an admin edit still contends with the
	// owner's own writes.
	mu := l.userLock(tx.UserID)
	mu.Lock()
	defer mu.Unlock()

	// Re-read under the lock; the record may have changed since the
	// visibility check.
	tx, err = l.store.GetTransaction(ctx, txID)
	if err != nil {
		return TransactionResult{}, storeLookupErr(err)
	}

	bal, err := l.getOrCreateBalance(ctx, tx.UserID)
	if err != nil {
		return TransactionResult{}, err
	}

	newTax := CalculateTax(in.Amount, in.TaxPercentage)
	newEffect := EffectOf(in.Amount, newTax, typ)

	tempBalance := ApplyReversal(bal.Balance, storedEffect(tx))
	if typ == models.TypeDebit && overdraws(tempBalance, newEffect) {
		return TransactionResult{}, fmt.Errorf("%w: debit of %s against balance %s",
			ErrInsufficientBalance, newEffect.Neg(), tempBalance)
	}

	now := time.Now().UTC()
	tx.Amount = in.Amount
	tx.Type = typ
	tx.Tax = newTax
	tx.TaxPercentage = in.TaxPercentage
	tx.Category = cat
	tx.Description = in.Description
	tx.UpdatedAt = now

	bal.Balance = ApplyEffect(tempBalance, newEffect).Round(2)
	bal.UpdatedAt = now

	if err := l.store.UpdateTransactionWithBalance(ctx, tx, bal); err != nil {
		return TransactionResult{}, fmt.Errorf("update transaction: %w", err)
	}

	l.publish(ctx, events.TopicTransactionRecorded, events.TransactionRecorded{
		TransactionID:  tx.ID,
		UserID:         tx.UserID,
		Type:           string(typ),
		Amount:         tx.Amount,
		Tax:            tx.Tax,
		UpdatedBalance: bal.Balance,
		OccurredAt:     now,
	})

	return TransactionResult{Transaction: Format(tx), UpdatedBalance: bal.Balance}, nil
}

// Delete reverses a transaction's recorded effect against the balance and
// removes the record. The reversal is applied unconditionally: reversing a
// credit may leave the balance negative, which is accepted so that no record
// ever becomes unremovable.
func (l *Ledger) Delete(ctx context.Context, userID, role, txID string) (decimal.Decimal, error) {
	tx, err := l.visibleTransaction(ctx, userID, role, txID)
	if err != nil {
		return decimal.Zero, err
	}

	mu := l.userLock(tx.UserID)
	mu.Lock()
	defer mu.Unlock()

	tx, err = l.store.GetTransaction(ctx, txID)
	if err != nil {
		return decimal.Zero, storeLookupErr(err)
	}

	bal, err := l.getOrCreateBalance(ctx, tx.UserID)
	if err != nil {
		return decimal.Zero, err
	}

	now := time.Now().UTC()
	bal.Balance = ApplyReversal(bal.Balance, storedEffect(tx)).Round(2)
	bal.UpdatedAt = now

	if err := l.store.DeleteTransactionWithBalance(ctx, txID, bal); err != nil {
		return decimal.Zero, fmt.Errorf("delete transaction: %w", err)
	}

	l.publish(ctx, events.TopicTransactionReversed, events.TransactionReversed{
		TransactionID:  txID,
		UserID:         tx.UserID,
		UpdatedBalance: bal.Balance,
		OccurredAt:     now,
	})

	return bal.Balance, nil
}

// Get returns one formatted transaction. A transaction owned by another user
// is reported as not found unless the caller holds the admin role, so ids
// cannot be probed across users.
func (l *Ledger) Get(ctx context.Context, userID, role, txID string) (models.FormattedTransaction, error) {
	tx, err := l.visibleTransaction(ctx, userID, role, txID)
	if err != nil {
		return models.FormattedTransaction{}, err
	}
	return Format(tx), nil
}

// List returns the user's transactions, newest first, optionally restricted
// to [start, end]. Zero times mean unbounded on that side.
func (l *Ledger) List(ctx context.Context, userID string, start, end time.Time) ([]models.FormattedTransaction, error) {
	txs, err := l.store.GetTransactionsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	out := make([]models.FormattedTransaction, 0, len(txs))
	for _, tx := range txs {
		if !start.IsZero() && tx.CreatedAt.Before(start) {
			continue
		}
		if !end.IsZero() && tx.CreatedAt.After(end) {
			continue
		}
		out = append(out, Format(tx))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// Balance returns the user's balance record, creating it at zero on first access.
func (l *Ledger) Balance(ctx context.Context, userID string) (models.Balance, error) {
	mu := l.userLock(userID)
	mu.Lock()
	defer mu.Unlock()

	return l.getOrCreateBalance(ctx, userID)
}

// SetBalance overwrites the user's balance figure, rounded to 2 decimal
// places. This is an administrative escape hatch and bypasses no-overdraft
// checks on purpose.
func (l *Ledger) SetBalance(ctx context.Context, userID string, amount decimal.Decimal) (models.Balance, error) {
	mu := l.userLock(userID)
	mu.Lock()
	defer mu.Unlock()

	bal, err := l.getOrCreateBalance(ctx, userID)
	if err != nil {
		return models.Balance{}, err
	}

	bal.Balance = amount.Round(2)
	bal.UpdatedAt = time.Now().UTC()
	if err := l.store.SaveBalance(ctx, bal); err != nil {
		return models.Balance{}, fmt.Errorf("save balance: %w", err)
	}
	return bal, nil
}

func (l *Ledger) visibleTransaction(ctx context.Context, userID, role, txID string) (models.Transaction, error) {
	tx, err := l.store.GetTransaction(ctx, txID)
	if err != nil {
		return models.Transaction{}, storeLookupErr(err)
	}
	if tx.UserID != userID && role != RoleAdmin {
		return models.Transaction{}, ErrTransactionNotFound
	}
	return tx, nil
}

func storeLookupErr(err error) error {
	if errors.Is(err, ErrTransactionNotFound) {
		return err
	}
	return fmt.Errorf("load transaction: %w", err)
}

func (l *Ledger) publish(ctx context.Context, topic string, event any) {
	if l.events == nil {
		return
	}
	if err := l.events.Publish(ctx, topic, event); err != nil {
		l.log.Warn("event publish failed", zap.String("topic", topic), zap.Error(err))
	}
}
