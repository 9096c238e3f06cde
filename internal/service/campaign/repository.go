package campaign

import (
	"context"

	"github.com/plscore/leadscore-api/internal/domain"
)

// Repository defines the data access contract for campaigns.
// Implementations must be safe for concurrent use.
type Repository interface {
	// Get returns a single campaign with its lead stats.
	// Returns ErrNotFound if it doesn't exist.
	Get(ctx context.Context, id string) (*domain.Campaign, error)

	// List returns campaigns matching the given filter, ordered by
	// created_at DESC, plus the unpaginated total.
	List(ctx context.Context, filter ListFilter) ([]domain.Campaign, int, error)

	// Create inserts a new campaign and returns its ID.
	Create(ctx context.Context, c *domain.Campaign) (string, error)

	// Update modifies a campaign. Only non-nil fields in the update are applied.
	Update(ctx context.Context, id string, u UpdateFields) error

	// Delete removes a campaign. Only draft/cancelled campaigns can be deleted.
	Delete(ctx context.Context, id string) error

	// UpdateStatus transitions a campaign's status.
	UpdateStatus(ctx context.Context, id string, status domain.CampaignStatus) error

	// AssignLeads attaches leads to a campaign, skipping ones already
	// assigned. Returns the number newly attached.
	AssignLeads(ctx context.Context, campaignID string, leadIDs []int64) (int, error)
}

// ListFilter controls pagination and filtering for campaign lists.
type ListFilter struct {
	Status string
	Search string
	Limit  int
	Offset int
}

// UpdateFields holds the mutable fields for a campaign update.
// Nil fields are not applied.
type UpdateFields struct {
	Name        *string `json:"campaign_name"`
	Description *string `json:"campaign_desc"`
	StartDate   *string `json:"start_date"`
	EndDate     *string `json:"end_date"`
}
