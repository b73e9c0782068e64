package ledger

import "github.com/shopspring/decimal"

var oneHundred = decimal.NewFromInt(100)

// CalculateTax computes the tax owed on a gross amount at the given
// percentage, rounded half-away-from-zero to 2 decimal places.
//
// A negative amount or percentage yields zero. That is a deliberate fallback,
// not validation: inputs are validated upstream, and anything that slips
// through must not poison the balance with a negative tax.
func CalculateTax(amount, percentage decimal.Decimal) decimal.Decimal {
	if amount.IsNegative() || percentage.IsNegative() {
		return decimal.Zero
	}
	return amount.Mul(percentage).Div(oneHundred).Round(2)
}
