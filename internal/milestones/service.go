// Package milestones projects gig milestones into logged ledger payments.
package milestones

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sheikh-saqib/freelance-ledger/internal/interfaces"
	"github.com/sheikh-saqib/freelance-ledger/internal/ledger"
	"github.com/sheikh-saqib/freelance-ledger/internal/models"
)

var (
	// ErrGigNotFound is returned when the referenced gig does not exist or
	// is not visible to the caller.
	ErrGigNotFound = errors.New("milestones: gig not found")

	// ErrMilestoneNotFound is returned when the referenced milestone does
	// not exist or is not visible to the caller.
	ErrMilestoneNotFound = errors.New("milestones: milestone not found")

	// ErrPaymentAlreadyLogged is returned when a milestone's payment has
	// already been recorded in the ledger.
	ErrPaymentAlreadyLogged = errors.New("milestones: payment already logged")

	// ErrNoPaymentAmount is returned when logging a payment for a milestone
	// whose payment amount is not positive.
	ErrNoPaymentAmount = errors.New("milestones: milestone has no payment amount")
)

// Service manages gigs and milestones and records milestone payments as
// credit transactions through the ledger engine.
type Service struct {
	store  interfaces.MilestoneStore
	ledger *ledger.Ledger

	// muMap serializes LogPayment per milestone so that the
	// check-create-flip sequence runs once even under concurrent calls.
	muMap map[string]*sync.Mutex
	mapMu sync.Mutex
}

func NewService(store interfaces.MilestoneStore, l *ledger.Ledger) *Service {
	return &Service{
		store:  store,
		ledger: l,
		muMap:  make(map[string]*sync.Mutex),
	}
}

func (s *Service) milestoneLock(milestoneID string) *sync.Mutex {
	s.mapMu.Lock()
	defer s.mapMu.Unlock()
	if _, ok := s.muMap[milestoneID]; !ok {
		s.muMap[milestoneID] = &sync.Mutex{}
	}
	return s.muMap[milestoneID]
}

// CreateGig registers a gig for the authenticated user.
func (s *Service) CreateGig(ctx context.Context, userID, title, clientName string) (models.Gig, error) {
	now := time.Now().UTC()
	gig := models.Gig{
		ID:         uuid.New().String(),
		UserID:     userID,
		Title:      title,
		ClientName: clientName,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.store.SaveGig(ctx, gig); err != nil {
		return models.Gig{}, fmt.Errorf("save gig: %w", err)
	}
	return gig, nil
}

// MilestoneInput carries the caller-supplied fields of a new milestone.
type MilestoneInput struct {
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	PaymentAmount decimal.Decimal `json:"paymentAmount"`
	StartDate     *time.Time      `json:"startDate"`
	DueDate       *time.Time      `json:"dueDate"`
}

// AddMilestone attaches a milestone to a gig the caller owns.
func (s *Service) AddMilestone(ctx context.Context, userID, role, gigID string, in MilestoneInput) (models.Milestone, error) {
	gig, err := s.visibleGig(ctx, userID, role, gigID)
	if err != nil {
		return models.Milestone{}, err
	}

	now := time.Now().UTC()
	milestone := models.Milestone{
		ID:            uuid.New().String(),
		GigID:         gig.ID,
		UserID:        gig.UserID,
		Title:         in.Title,
		Description:   in.Description,
		Status:        models.MilestoneToDo,
		PaymentAmount: in.PaymentAmount,
		StartDate:     in.StartDate,
		DueDate:       in.DueDate,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.store.SaveMilestone(ctx, milestone); err != nil {
		return models.Milestone{}, fmt.Errorf("save milestone: %w", err)
	}
	return milestone, nil
}

// MilestonesByGig lists a gig's milestones, oldest first.
func (s *Service) MilestonesByGig(ctx context.Context, userID, role, gigID string) ([]models.Milestone, error) {
	gig, err := s.visibleGig(ctx, userID, role, gigID)
	if err != nil {
		return nil, err
	}

	ms, err := s.store.GetMilestonesByGig(ctx, gig.ID)
	if err != nil {
		return nil, fmt.Errorf("list milestones: %w", err)
	}
	sort.Slice(ms, func(i, j int) bool { return ms[i].CreatedAt.Before(ms[j].CreatedAt) })
	return ms, nil
}

// LogPayment records a milestone's payment as a tax-free credit transaction
// on the owner's ledger and flips PaymentLogged exactly once. The milestone
// is marked Done along the way; a milestone whose payment is already logged
// fails with ErrPaymentAlreadyLogged before any ledger write. Calls for the
// same milestone are serialized so the credit lands at most once.
func (s *Service) LogPayment(ctx context.Context, userID, role, milestoneID string) (ledger.TransactionResult, error) {
	mu := s.milestoneLock(milestoneID)
	mu.Lock()
	defer mu.Unlock()

	milestone, err := s.store.GetMilestone(ctx, milestoneID)
	if err != nil {
		return ledger.TransactionResult{}, milestoneLookupErr(err)
	}
	if milestone.UserID != userID && role != ledger.RoleAdmin {
		return ledger.TransactionResult{}, ErrMilestoneNotFound
	}
	if milestone.PaymentLogged {
		return ledger.TransactionResult{}, ErrPaymentAlreadyLogged
	}
	if !milestone.PaymentAmount.IsPositive() {
		return ledger.TransactionResult{}, ErrNoPaymentAmount
	}

	gig, err := s.store.GetGig(ctx, milestone.GigID)
	if err != nil {
		return ledger.TransactionResult{}, milestoneLookupErr(err)
	}

	result, err := s.ledger.Create(ctx, milestone.UserID, ledger.TransactionInput{
		Amount:      milestone.PaymentAmount,
		Type:        string(models.TypeCredit),
		Category:    string(models.CategoryFreelanceProject),
		Description: fmt.Sprintf("Milestone payment: %s / %s", gig.Title, milestone.Title),
	})
	if err != nil {
		return ledger.TransactionResult{}, err
	}

	milestone.PaymentLogged = true
	milestone.Status = models.MilestoneDone
	milestone.UpdatedAt = time.Now().UTC()
	if err := s.store.SaveMilestone(ctx, milestone); err != nil {
		// The credit is committed; surface the flag failure rather than
		// attempt a reversal the caller did not ask for.
		return result, fmt.Errorf("mark payment logged: %w", err)
	}
	return result, nil
}

func (s *Service) visibleGig(ctx context.Context, userID, role, gigID string) (models.Gig, error) {
	gig, err := s.store.GetGig(ctx, gigID)
	if err != nil {
		return models.Gig{}, milestoneLookupErr(err)
	}
	if gig.UserID != userID && role != ledger.RoleAdmin {
		return models.Gig{}, ErrGigNotFound
	}
	return gig, nil
}

func milestoneLookupErr(err error) error {
	if errors.Is(err, ErrGigNotFound) || errors.Is(err, ErrMilestoneNotFound) {
		return err
	}
	return fmt.Errorf("load milestone data: %w", err)
}
