package lead

import (
	"context"

	"github.com/plscore/leadscore-api/internal/domain"
)

// Repository defines the data access contract for leads.
// Implementations must be safe for concurrent use.
type Repository interface {
	// Get returns a single lead joined with its detail and score records.
	// Returns ErrNotFound if it doesn't exist.
	Get(ctx context.Context, id int64) (*domain.ScoredLead, error)

	// List returns leads matching the given filter plus the unpaginated
	// total, ordered by score DESC.
	List(ctx context.Context, filter ListFilter) ([]domain.ScoredLead, int, error)

	// Create inserts a lead with its detail and score records in one
	// transaction and returns the new lead ID. Returns ErrDuplicateEmail
	// when the email collides with an existing lead.
	Create(ctx context.Context, l domain.NormalizedLead) (int64, error)

	// Update modifies a lead. Only non-nil fields in the update are applied.
	Update(ctx context.Context, id int64, u UpdateFields) error

	// Delete removes a lead and its sub-records.
	Delete(ctx context.Context, id int64) error

	// BatchDelete removes the given leads, returning how many existed.
	BatchDelete(ctx context.Context, ids []int64) (int, error)
}

// ListFilter controls pagination and filtering for lead lists.
type ListFilter struct {
	Job       int     // 0 means any
	Marital   int     // 0 means any
	Education int     // 0 means any
	MinScore  float64 // 0 means any
	MaxScore  float64 // 0 means any
	Search    string  // matches name or email, case-insensitive
	Limit     int
	Offset    int
}

// UpdateFields holds the mutable fields for a lead update.
// Nil fields are not applied.
type UpdateFields struct {
	Name        *string `json:"lead_name"`
	PhoneNumber *string `json:"lead_phone_number"`
	Email       *string `json:"lead_email"`
	Age         *int    `json:"lead_age"`
	Job         *int    `json:"job_id"`
	Marital     *int    `json:"marital_id"`
	Education   *int    `json:"education_id"`
}
