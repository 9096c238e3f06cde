package domain

import "time"

// CampaignStatus enumerates the lifecycle states of a sales campaign.
type CampaignStatus string

const (
	CampaignDraft     CampaignStatus = "draft"
	CampaignActive    CampaignStatus = "active"
	CampaignPaused    CampaignStatus = "paused"
	CampaignCompleted CampaignStatus = "completed"
	CampaignCancelled CampaignStatus = "cancelled"
)

// IsTerminal returns true if the campaign is in a final state.
func (s CampaignStatus) IsTerminal() bool {
	return s == CampaignCompleted || s == CampaignCancelled
}

// Campaign is a sales outreach campaign that leads get assigned to.
type Campaign struct {
	ID          string         `json:"campaign_id" db:"campaign_id"`
	Name        string         `json:"campaign_name" db:"campaign_name"`
	Description string         `json:"campaign_desc" db:"campaign_desc"`
	Status      CampaignStatus `json:"status" db:"status"`
	StartDate   *time.Time     `json:"start_date" db:"start_date"`
	EndDate     *time.Time     `json:"end_date" db:"end_date"`

	// Stats (read-only, populated by queries)
	LeadCount     int     `json:"lead_count" db:"lead_count"`
	AverageScore  float64 `json:"average_score" db:"average_score"`
	ContactedLead int     `json:"contacted_count" db:"contacted_count"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
