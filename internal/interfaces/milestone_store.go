package interfaces

import (
	"context"

	"github.com/sheikh-saqib/freelance-ledger/internal/models"
)

type MilestoneStore interface {
	SaveGig(ctx context.Context, gig models.Gig) error
	GetGig(ctx context.Context, id string) (models.Gig, error)

	SaveMilestone(ctx context.Context, milestone models.Milestone) error
	GetMilestone(ctx context.Context, id string) (models.Milestone, error)
	GetMilestonesByGig(ctx context.Context, gigID string) ([]models.Milestone, error)
}
