package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/sheikh-saqib/freelance-ledger/internal/models"
)

// Format projects a stored transaction into its client-facing view.
// It never mutates the input; records written before tax fields existed
// project with zero tax.
//
// NetAmount follows a fixed sign convention that downstream reporting
// reconciles against: a credit nets to +(amount-tax), a debit to
// -(amount+tax), both rounded to 2 decimal places.
func Format(tx models.Transaction) models.FormattedTransaction {
	credited := decimal.Zero
	debited := decimal.Zero
	var net decimal.Decimal
	if tx.Type == models.TypeCredit {
		credited = tx.Amount
		net = tx.Amount.Sub(tx.Tax).Round(2)
	} else {
		debited = tx.Amount
		net = tx.Amount.Add(tx.Tax).Round(2).Neg()
	}

	return models.FormattedTransaction{
		ID:             tx.ID,
		UserID:         tx.UserID,
		Amount:         tx.Amount,
		Type:           tx.Type,
		Tax:            tx.Tax,
		TaxPercentage:  tx.TaxPercentage,
		Category:       tx.Category,
		Description:    tx.Description,
		CreditedAmount: credited,
		DebitedAmount:  debited,
		NetAmount:      net,
		CreatedAt:      tx.CreatedAt,
		UpdatedAt:      tx.UpdatedAt,
	}
}
