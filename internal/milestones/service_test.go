package milestones_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sheikh-saqib/freelance-ledger/internal/ledger"
	"github.com/sheikh-saqib/freelance-ledger/internal/milestones"
	"github.com/sheikh-saqib/freelance-ledger/internal/models"
	"github.com/sheikh-saqib/freelance-ledger/internal/storage/memory"
)

func newTestService(t *testing.T) (*milestones.Service, *ledger.Ledger) {
	t.Helper()
	engine := ledger.NewLedger(memory.NewMemoryLedgerStore(), nil, nil)
	return milestones.NewService(memory.NewMemoryMilestoneStore(), engine), engine
}

func TestLogPayment(t *testing.T) {
	svc, engine := newTestService(t)
	ctx := context.Background()

	gig, err := svc.CreateGig(ctx, "alice", "Website relaunch", "Acme")
	require.NoError(t, err)

	milestone, err := svc.AddMilestone(ctx, "alice", "", gig.ID, milestones.MilestoneInput{
		Title:         "Design handoff",
		PaymentAmount: decimal.NewFromInt(750),
	})
	require.NoError(t, err)
	assert.False(t, milestone.PaymentLogged)

	result, err := svc.LogPayment(ctx, "alice", "", milestone.ID)
	require.NoError(t, err)

	assert.Equal(t, models.TypeCredit, result.Transaction.Type)
	assert.Equal(t, models.CategoryFreelanceProject, result.Transaction.Category)
	assert.True(t, decimal.NewFromInt(750).Equal(result.Transaction.Amount))
	assert.Contains(t, result.Transaction.Description, "Website relaunch")
	assert.Contains(t, result.Transaction.Description, "Design handoff")
	assert.True(t, decimal.NewFromInt(750).Equal(result.UpdatedBalance))

	bal, err := engine.Balance(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(750).Equal(bal.Balance))

	// The flag flips exactly once.
	ms, err := svc.MilestonesByGig(ctx, "alice", "", gig.ID)
	require.NoError(t, err)
	require.Len(t, ms, 1)
	assert.True(t, ms[0].PaymentLogged)
	assert.Equal(t, models.MilestoneDone, ms[0].Status)

	_, err = svc.LogPayment(ctx, "alice", "", milestone.ID)
	assert.ErrorIs(t, err, milestones.ErrPaymentAlreadyLogged)

	// The second attempt wrote nothing to the ledger.
	bal, err = engine.Balance(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(750).Equal(bal.Balance))
}

func TestLogPaymentRequiresAmount(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	gig, err := svc.CreateGig(ctx, "alice", "Retainer", "")
	require.NoError(t, err)
	milestone, err := svc.AddMilestone(ctx, "alice", "", gig.ID, milestones.MilestoneInput{Title: "Kickoff"})
	require.NoError(t, err)

	_, err = svc.LogPayment(ctx, "alice", "", milestone.ID)
	assert.ErrorIs(t, err, milestones.ErrNoPaymentAmount)
}

func TestMilestoneOwnership(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	gig, err := svc.CreateGig(ctx, "alice", "App build", "")
	require.NoError(t, err)
	milestone, err := svc.AddMilestone(ctx, "alice", "", gig.ID, milestones.MilestoneInput{
		Title:         "MVP",
		PaymentAmount: decimal.NewFromInt(100),
	})
	require.NoError(t, err)

	_, err = svc.AddMilestone(ctx, "bob", "", gig.ID, milestones.MilestoneInput{
		Title:         "Sneaky",
		PaymentAmount: decimal.NewFromInt(1),
	})
	assert.ErrorIs(t, err, milestones.ErrGigNotFound)
	_, err = svc.MilestonesByGig(ctx, "bob", "", gig.ID)
	assert.ErrorIs(t, err, milestones.ErrGigNotFound)
	_, err = svc.LogPayment(ctx, "bob", "", milestone.ID)
	assert.ErrorIs(t, err, milestones.ErrMilestoneNotFound)

	// Admin can log on behalf of the owner; the credit lands on the owner.
	result, err := svc.LogPayment(ctx, "bob", ledger.RoleAdmin, milestone.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", result.Transaction.UserID)
}

func TestMissingGig(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.AddMilestone(context.Background(), "alice", "", "no-such-gig", milestones.MilestoneInput{
		Title:         "X",
		PaymentAmount: decimal.NewFromInt(1),
	})
	assert.ErrorIs(t, err, milestones.ErrGigNotFound)
}

func TestMilestoneDates(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	gig, err := svc.CreateGig(ctx, "alice", "Brand refresh", "Acme")
	require.NoError(t, err)

	start := time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC)
	due := time.Date(2026, time.September, 15, 0, 0, 0, 0, time.UTC)
	milestone, err := svc.AddMilestone(ctx, "alice", "", gig.ID, milestones.MilestoneInput{
		Title:     "Logo concepts",
		StartDate: &start,
		DueDate:   &due,
	})
	require.NoError(t, err)
	require.NotNil(t, milestone.StartDate)
	require.NotNil(t, milestone.DueDate)
	assert.True(t, start.Equal(*milestone.StartDate))
	assert.True(t, due.Equal(*milestone.DueDate))

	// The dates come back from the store, not just the return value.
	ms, err := svc.MilestonesByGig(ctx, "alice", "", gig.ID)
	require.NoError(t, err)
	require.Len(t, ms, 1)
	require.NotNil(t, ms[0].DueDate)
	assert.True(t, due.Equal(*ms[0].DueDate))

	// Dates stay optional.
	bare, err := svc.AddMilestone(ctx, "alice", "", gig.ID, milestones.MilestoneInput{Title: "Rollout"})
	require.NoError(t, err)
	assert.Nil(t, bare.StartDate)
	assert.Nil(t, bare.DueDate)
}

func TestLogPaymentConcurrent(t *testing.T) {
	svc, engine := newTestService(t)
	ctx := context.Background()

	gig, err := svc.CreateGig(ctx, "alice", "Platform migration", "Acme")
	require.NoError(t, err)
	milestone, err := svc.AddMilestone(ctx, "alice", "", gig.ID, milestones.MilestoneInput{
		Title:         "Cutover",
		PaymentAmount: decimal.NewFromInt(200),
	})
	require.NoError(t, err)

	const callers = 8
	errs := make(chan error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.LogPayment(ctx, "alice", "", milestone.ID)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	succeeded, alreadyLogged := 0, 0
	for err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, milestones.ErrPaymentAlreadyLogged):
			alreadyLogged++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, callers-1, alreadyLogged)

	// Exactly one credit landed.
	bal, err := engine.Balance(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(200).Equal(bal.Balance))
}
