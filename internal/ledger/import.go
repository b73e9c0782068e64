package ledger

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/sheikh-saqib/freelance-ledger/internal/models"
	"github.com/sheikh-saqib/freelance-ledger/internal/models/events"
)

// ImportResult summarizes a committed bulk import.
type ImportResult struct {
	Transactions   []models.FormattedTransaction `json:"transactions"`
	Imported       int                           `json:"imported"`
	Skipped        int                           `json:"skipped"`
	UpdatedBalance decimal.Decimal               `json:"updatedBalance"`
}

// importColumns maps CSV columns to fields. Defaults to positional
// amount,type,tax_percentage,description; an optional header row remaps.
type importColumns struct {
	amount, typ, taxPct, description int
}

var defaultColumns = importColumns{amount: 0, typ: 1, taxPct: 2, description: 3}

// Import validates and simulates a batch of candidate transactions against
// the user's balance before committing any of them.
//
// Rows are processed in file order, so later rows see the cumulative effect
// of earlier ones. Structurally invalid rows are skipped and logged. If the
// simulated running balance ever goes negative, or the upload cannot be read
// to the end, the whole batch fails with ErrImportRejected and nothing is
// persisted. A batch with no valid rows fails with ErrEmptyImport. On
// success all valid rows are persisted in one bulk write together with the
// final balance.
//
// The user's lock is held for the entire simulate-then-commit span so a
// concurrent single-transaction write cannot invalidate the baseline the
// simulation read.
func (l *Ledger) Import(ctx context.Context, userID string, r io.Reader) (ImportResult, error) {
	mu := l.userLock(userID)
	mu.Lock()
	defer mu.Unlock()

	bal, err := l.getOrCreateBalance(ctx, userID)
	if err != nil {
		return ImportResult{}, err
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	cols := defaultColumns
	running := bal.Balance
	now := time.Now().UTC()

	var txs []models.Transaction
	skipped := 0
	row := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// A truncated or malformed stream must not commit a partial batch.
			return ImportResult{}, fmt.Errorf("%w: reading row %d: %v", ErrImportRejected, row+1, err)
		}
		row++

		if row == 1 {
			if mapped, ok := headerColumns(record); ok {
				cols = mapped
				continue
			}
		}

		tx, reason := parseImportRow(record, cols)
		if reason != "" {
			skipped++
			l.log.Info("import row skipped",
				zap.String("user", userID), zap.Int("row", row), zap.String("reason", reason))
			continue
		}

		tx.ID = uuid.New().String()
		tx.UserID = userID
		tx.CreatedAt = now
		tx.UpdatedAt = now
		txs = append(txs, tx)

		running = ApplyEffect(running, storedEffect(tx))
		if running.IsNegative() {
			return ImportResult{}, fmt.Errorf("%w: balance would reach %s at row %d",
				ErrImportRejected, running, row)
		}
	}

	if len(txs) == 0 {
		return ImportResult{}, ErrEmptyImport
	}

	bal.Balance = running.Round(2)
	bal.UpdatedAt = now
	if err := l.store.SaveTransactionsWithBalance(ctx, txs, bal); err != nil {
		return ImportResult{}, fmt.Errorf("commit import: %w", err)
	}

	l.publish(ctx, events.TopicImportCompleted, events.ImportCompleted{
		UserID:         userID,
		Imported:       len(txs),
		Skipped:        skipped,
		UpdatedBalance: bal.Balance,
		OccurredAt:     now,
	})

	formatted := make([]models.FormattedTransaction, len(txs))
	for i, tx := range txs {
		formatted[i] = Format(tx)
	}
	return ImportResult{
		Transactions:   formatted,
		Imported:       len(txs),
		Skipped:        skipped,
		UpdatedBalance: bal.Balance,
	}, nil
}

// headerColumns recognizes a header row and returns the column mapping.
// A row whose first cell parses as a number is data, not a header.
func headerColumns(record []string) (importColumns, bool) {
	cols := importColumns{amount: -1, typ: -1, taxPct: -1, description: -1}
	found := false
	for i, name := range record {
		switch normalizeHeader(name) {
		case "amount":
			cols.amount = i
			found = true
		case "type":
			cols.typ = i
			found = true
		case "taxpercentage":
			cols.taxPct = i
		case "description":
			cols.description = i
		}
	}
	if !found || cols.amount < 0 || cols.typ < 0 {
		return importColumns{}, false
	}
	return cols, true
}

func normalizeHeader(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "_", "")
	s = strings.ReplaceAll(s, " ", "")
	return s
}

// parseImportRow builds a transaction from one CSV record. A non-empty
// reason marks the row structurally invalid; the caller skips it without
// consuming balance.
func parseImportRow(record []string, cols importColumns) (models.Transaction, string) {
	field := func(i int) string {
		if i < 0 || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	amount, err := decimal.NewFromString(field(cols.amount))
	if err != nil {
		return models.Transaction{}, fmt.Sprintf("unparseable amount %q", field(cols.amount))
	}
	if !amount.IsPositive() {
		return models.Transaction{}, fmt.Sprintf("amount %s is not positive", amount)
	}

	typ, ok := models.ParseTransactionType(field(cols.typ))
	if !ok {
		return models.Transaction{}, fmt.Sprintf("unknown type %q", field(cols.typ))
	}

	taxPct := decimal.Zero
	if raw := field(cols.taxPct); raw != "" {
		taxPct, err = decimal.NewFromString(raw)
		if err != nil || taxPct.IsNegative() {
			return models.Transaction{}, fmt.Sprintf("unparseable tax percentage %q", raw)
		}
	}

	return models.Transaction{
		Amount:        amount,
		Type:          typ,
		Tax:           CalculateTax(amount, taxPct),
		TaxPercentage: taxPct,
		Category:      models.CategoryUncategorized,
		Description:   field(cols.description),
	}, ""
}
