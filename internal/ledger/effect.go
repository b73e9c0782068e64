package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/sheikh-saqib/freelance-ledger/internal/models"
)

// EffectOf returns the signed impact of a transaction on the balance:
// a credit adds amount-tax, a debit removes amount+tax. Intermediate effects
// are never rounded; only the final balance write is.
func EffectOf(amount, tax decimal.Decimal, typ models.TransactionType) decimal.Decimal {
	if typ == models.TypeCredit {
		return amount.Sub(tax)
	}
	return amount.Add(tax).Neg()
}

// ApplyEffect applies a signed effect to a balance.
func ApplyEffect(balance, effect decimal.Decimal) decimal.Decimal {
	return balance.Add(effect)
}

// ApplyReversal undoes a previously applied effect. Reversal must be computed
// from the transaction's stored tax, not a recomputed one, so an update whose
// tax rate changed still unwinds exactly what was once applied.
func ApplyReversal(balance, effect decimal.Decimal) decimal.Decimal {
	return balance.Sub(effect)
}

// storedEffect is the recorded effect of a persisted transaction.
func storedEffect(tx models.Transaction) decimal.Decimal {
	return EffectOf(tx.Amount, tx.Tax, tx.Type)
}

// overdraws reports whether applying effect to balance would leave it
// negative. A debit that lands exactly on zero is allowed.
func overdraws(balance, effect decimal.Decimal) bool {
	return ApplyEffect(balance, effect).IsNegative()
}
