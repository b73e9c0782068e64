package memory

import (
	"context"
	"sync"

	"github.com/sheikh-saqib/freelance-ledger/internal/interfaces"
	"github.com/sheikh-saqib/freelance-ledger/internal/milestones"
	"github.com/sheikh-saqib/freelance-ledger/internal/models"
)

// MemoryMilestoneStore stores gigs and milestones in maps and is safe for
// concurrent use.
type MemoryMilestoneStore struct {
	mu         sync.Mutex
	gigs       map[string]models.Gig
	milestones map[string]models.Milestone
}

func NewMemoryMilestoneStore() *MemoryMilestoneStore {
	return &MemoryMilestoneStore{
		gigs:       make(map[string]models.Gig),
		milestones: make(map[string]models.Milestone),
	}
}

func (m *MemoryMilestoneStore) SaveGig(ctx context.Context, gig models.Gig) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.gigs[gig.ID] = gig
	return nil
}

func (m *MemoryMilestoneStore) GetGig(ctx context.Context, id string) (models.Gig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	gig, ok := m.gigs[id]
	if !ok {
		return models.Gig{}, milestones.ErrGigNotFound
	}
	return gig, nil
}

func (m *MemoryMilestoneStore) SaveMilestone(ctx context.Context, milestone models.Milestone) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.milestones[milestone.ID] = milestone
	return nil
}

func (m *MemoryMilestoneStore) GetMilestone(ctx context.Context, id string) (models.Milestone, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	milestone, ok := m.milestones[id]
	if !ok {
		return models.Milestone{}, milestones.ErrMilestoneNotFound
	}
	return milestone, nil
}

func (m *MemoryMilestoneStore) GetMilestonesByGig(ctx context.Context, gigID string) ([]models.Milestone, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var result []models.Milestone
	for _, milestone := range m.milestones {
		if milestone.GigID == gigID {
			result = append(result, milestone)
		}
	}
	return result, nil
}

var _ interfaces.MilestoneStore = (*MemoryMilestoneStore)(nil)
