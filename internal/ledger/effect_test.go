package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sheikh-saqib/freelance-ledger/internal/models"
)

func TestEffectOf(t *testing.T) {
	tests := []struct {
		name   string
		amount string
		tax    string
		typ    models.TransactionType
		want   string
	}{
		{name: "credit nets out tax", amount: "200", tax: "20", typ: models.TypeCredit, want: "180"},
		{name: "credit without tax", amount: "50", tax: "0", typ: models.TypeCredit, want: "50"},
		{name: "debit adds tax cost", amount: "100", tax: "5", typ: models.TypeDebit, want: "-105"},
		{name: "debit without tax", amount: "30", tax: "0", typ: models.TypeDebit, want: "-30"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EffectOf(d(t, tt.amount), d(t, tt.tax), tt.typ)
			assert.True(t, d(t, tt.want).Equal(got), "want %s, got %s", tt.want, got)
		})
	}
}

// Applying an effect and then reversing it is an exact no-op, with no
// rounding drift, because neither step rounds.
func TestApplyThenReverseRoundTrips(t *testing.T) {
	balances := []string{"0", "100", "-12.34", "0.01"}
	effects := []string{"180", "-105", "0.005", "-0.005"}

	for _, b := range balances {
		for _, e := range effects {
			start := d(t, b)
			effect := d(t, e)
			got := ApplyReversal(ApplyEffect(start, effect), effect)
			assert.True(t, start.Equal(got), "balance %s effect %s: got %s", b, e, got)
		}
	}
}

func TestApplyReversal(t *testing.T) {
	// Undoing a credit of net 90 from a balance of 90 lands on zero.
	got := ApplyReversal(d(t, "90"), d(t, "90"))
	assert.True(t, got.IsZero(), "got %s", got)

	// Undoing a debit restores the funds it consumed.
	got = ApplyReversal(d(t, "10"), d(t, "-105"))
	assert.True(t, d(t, "115").Equal(got), "got %s", got)
}
