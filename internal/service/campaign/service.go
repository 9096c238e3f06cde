package campaign

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/plscore/leadscore-api/internal/domain"
	"github.com/plscore/leadscore-api/internal/pkg/logger"
)

// Allowed status transitions. Terminal states have no exits.
var transitions = map[domain.CampaignStatus][]domain.CampaignStatus{
	domain.CampaignDraft:  {domain.CampaignActive, domain.CampaignCancelled},
	domain.CampaignActive: {domain.CampaignPaused, domain.CampaignCompleted, domain.CampaignCancelled},
	domain.CampaignPaused: {domain.CampaignActive, domain.CampaignCompleted, domain.CampaignCancelled},
}

func canTransition(from, to domain.CampaignStatus) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Service implements campaign business logic. All public methods are safe
// for concurrent use if the underlying repository is concurrency-safe.
type Service struct {
	repo Repository
}

// NewService creates a campaign service backed by the given repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Get returns a single campaign.
func (s *Service) Get(ctx context.Context, id string) (*domain.Campaign, error) {
	return s.repo.Get(ctx, id)
}

// List returns campaigns matching the filter.
func (s *Service) List(ctx context.Context, f ListFilter) ([]domain.Campaign, int, error) {
	return s.repo.List(ctx, f)
}

// CreateInput holds the fields for creating a new campaign.
type CreateInput struct {
	Name        string `json:"campaign_name"`
	Description string `json:"campaign_desc"`
}

// Create validates and persists a new campaign in draft status.
func (s *Service) Create(ctx context.Context, input CreateInput) (*domain.Campaign, error) {
	if input.Name == "" {
		return nil, fmt.Errorf("campaign_name is required")
	}

	c := &domain.Campaign{
		ID:          uuid.New().String(),
		Name:        input.Name,
		Description: input.Description,
		Status:      domain.CampaignDraft,
	}

	id, err := s.repo.Create(ctx, c)
	if err != nil {
		return nil, err
	}
	c.ID = id
	return c, nil
}

// Update modifies mutable campaign fields.
func (s *Service) Update(ctx context.Context, id string, u UpdateFields) error {
	return s.repo.Update(ctx, id, u)
}

// Delete removes a campaign (only draft/cancelled).
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// Transition moves a campaign to a new lifecycle state, enforcing the
// allowed transition graph.
func (s *Service) Transition(ctx context.Context, id string, to domain.CampaignStatus) (*domain.Campaign, error) {
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canTransition(c.Status, to) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, c.Status, to)
	}
	if err := s.repo.UpdateStatus(ctx, id, to); err != nil {
		return nil, err
	}
	logger.Info("campaign status changed", "campaign_id", id,
		"from", string(c.Status), "to", string(to))
	c.Status = to
	return c, nil
}

// AssignLeads attaches leads to an open campaign and returns the number
// newly attached.
func (s *Service) AssignLeads(ctx context.Context, id string, leadIDs []int64) (int, error) {
	if len(leadIDs) == 0 {
		return 0, nil
	}
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return 0, err
	}
	if c.Status.IsTerminal() {
		return 0, ErrCampaignClosed
	}
	n, err := s.repo.AssignLeads(ctx, id, leadIDs)
	if err != nil {
		return 0, err
	}
	logger.Info("leads assigned to campaign", "campaign_id", id, "assigned", n)
	return n, nil
}
