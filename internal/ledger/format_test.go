package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sheikh-saqib/freelance-ledger/internal/models"
)

func TestFormat(t *testing.T) {
	now := time.Now().UTC()

	tests := []struct {
		name         string
		tx           models.Transaction
		wantCredited string
		wantDebited  string
		wantNet      string
	}{
		{
			name: "credit nets amount minus tax",
			tx: models.Transaction{
				ID: "t1", UserID: "u1", Type: models.TypeCredit,
				Amount: d(t, "200"), Tax: d(t, "20"), TaxPercentage: d(t, "10"),
			},
			wantCredited: "200", wantDebited: "0", wantNet: "180",
		},
		{
			name: "debit nets negative amount plus tax",
			tx: models.Transaction{
				ID: "t2", UserID: "u1", Type: models.TypeDebit,
				Amount: d(t, "100"), Tax: d(t, "5"), TaxPercentage: d(t, "5"),
			},
			wantCredited: "0", wantDebited: "100", wantNet: "-105",
		},
		{
			name: "missing tax fields default to zero",
			tx: models.Transaction{
				ID: "t3", UserID: "u1", Type: models.TypeCredit,
				Amount: d(t, "75"),
			},
			wantCredited: "75", wantDebited: "0", wantNet: "75",
		},
		{
			name: "net amount rounds to cents",
			tx: models.Transaction{
				ID: "t4", UserID: "u1", Type: models.TypeDebit,
				Amount: d(t, "10.004"), Tax: d(t, "0"),
			},
			wantCredited: "0", wantDebited: "10.004", wantNet: "-10",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.tx.CreatedAt = now
			tt.tx.UpdatedAt = now
			got := Format(tt.tx)

			assert.Equal(t, tt.tx.ID, got.ID)
			assert.Equal(t, tt.tx.UserID, got.UserID)
			assert.Equal(t, tt.tx.Type, got.Type)
			assert.Equal(t, tt.tx.Category, got.Category)
			assert.True(t, d(t, tt.wantCredited).Equal(got.CreditedAmount), "credited: got %s", got.CreditedAmount)
			assert.True(t, d(t, tt.wantDebited).Equal(got.DebitedAmount), "debited: got %s", got.DebitedAmount)
			assert.True(t, d(t, tt.wantNet).Equal(got.NetAmount), "net: got %s", got.NetAmount)
		})
	}
}

// Format must not mutate its input.
func TestFormatIsPure(t *testing.T) {
	tx := models.Transaction{
		ID: "t1", UserID: "u1", Type: models.TypeDebit,
		Amount: d(t, "100"), Tax: d(t, "10"), TaxPercentage: d(t, "10"),
	}
	before := tx

	Format(tx)
	assert.Equal(t, before, tx)
}
