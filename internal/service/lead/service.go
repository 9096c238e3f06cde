package lead

import (
	"context"
	"fmt"

	"github.com/plscore/leadscore-api/internal/domain"
	"github.com/plscore/leadscore-api/internal/ingest"
	"github.com/plscore/leadscore-api/internal/pkg/logger"
	"github.com/plscore/leadscore-api/internal/scoring"
)

// SingleScorer is the scorer surface the lead service needs: one-off
// predictions and per-feature explanations.
type SingleScorer interface {
	ScoreSingle(ctx context.Context, f scoring.Features) (float64, error)
	Explain(ctx context.Context, f scoring.Features) (*scoring.Explanation, error)
}

// Service implements lead business logic: normalization on intake, scoring
// on create, and explanation lookups.
type Service struct {
	repo   Repository
	scorer SingleScorer
}

// NewService creates a lead service backed by the given repository and scorer.
func NewService(repo Repository, scorer SingleScorer) *Service {
	return &Service{repo: repo, scorer: scorer}
}

// Get returns a single lead with its detail and score.
func (s *Service) Get(ctx context.Context, id int64) (*domain.ScoredLead, error) {
	return s.repo.Get(ctx, id)
}

// List returns leads matching the filter.
func (s *Service) List(ctx context.Context, f ListFilter) ([]domain.ScoredLead, int, error) {
	return s.repo.List(ctx, f)
}

// CreateInput holds the raw fields for creating a single lead. Categorical
// values arrive as text and go through the same normalization as bulk
// imports.
type CreateInput struct {
	Name        string `json:"lead_name"`
	PhoneNumber string `json:"lead_phone_number"`
	Email       string `json:"lead_email"`
	Age         int    `json:"lead_age"`
	Job         string `json:"job"`
	Marital     string `json:"marital"`
	Education   string `json:"education"`

	InDefault    bool   `json:"default"`
	Balance      int    `json:"balance"`
	HousingLoan  bool   `json:"housing"`
	PersonalLoan bool   `json:"loan"`
	Contact      string `json:"contact"`
	Day          int    `json:"day"`
	Month        string `json:"month"`
	Duration     int    `json:"duration"`
	Campaign     int    `json:"campaign"`
	PDays        int    `json:"pdays"`
	Previous     int    `json:"previous"`
	POutcome     string `json:"poutcome"`
}

// Create normalizes, scores, and persists one lead. A scorer outage does not
// block creation: the lead lands with a zero score and can be re-scored
// later.
func (s *Service) Create(ctx context.Context, in CreateInput) (*domain.ScoredLead, error) {
	if in.Name == "" {
		return nil, fmt.Errorf("lead_name is required")
	}
	if in.Email == "" {
		return nil, fmt.Errorf("lead_email is required")
	}

	l := domain.NormalizedLead{
		Name:        in.Name,
		PhoneNumber: in.PhoneNumber,
		Email:       in.Email,
		Age:         in.Age,

		Job:       ingest.JobCodeOf(in.Job),
		Marital:   ingest.MaritalCodeOf(in.Marital),
		Education: ingest.EducationCodeOf(in.Education),

		InDefault:    in.InDefault,
		Balance:      in.Balance,
		HousingLoan:  in.HousingLoan,
		PersonalLoan: in.PersonalLoan,

		LastContactDay:  in.Day,
		Month:           ingest.MonthCodeOf(in.Month),
		ContactDuration: in.Duration,
		CampaignCount:   in.Campaign,
		PDays:           in.PDays,
		PrevContacts:    in.Previous,
		Outcome:         ingest.OutcomeCodeOf(in.POutcome),
		Contact:         ingest.ContactCodeOf(in.Contact),
	}
	if l.Age == 0 {
		l.Age = 30
	}
	if l.LastContactDay == 0 {
		l.LastContactDay = 1
	}
	if l.CampaignCount == 0 {
		l.CampaignCount = 1
	}

	score, err := s.scorer.ScoreSingle(ctx, scoring.FeaturesOf(l))
	if err != nil {
		logger.Warn("single-lead scoring failed, storing zero score",
			"email", l.Email, "error", err.Error())
		score = 0.0
	}
	l.Score = score

	id, err := s.repo.Create(ctx, l)
	if err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

// Update applies the given field changes to a lead.
func (s *Service) Update(ctx context.Context, id int64, u UpdateFields) (*domain.ScoredLead, error) {
	if err := s.repo.Update(ctx, id, u); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

// Delete removes a lead.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// BatchDelete removes several leads at once and returns how many existed.
func (s *Service) BatchDelete(ctx context.Context, ids []int64) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	return s.repo.BatchDelete(ctx, ids)
}

// Explain returns the scorer's per-feature contribution breakdown for a
// stored lead.
func (s *Service) Explain(ctx context.Context, id int64) (*scoring.Explanation, error) {
	sl, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.scorer.Explain(ctx, featuresOfStored(sl))
}

// featuresOfStored rebuilds the scorer feature vector from a persisted lead.
func featuresOfStored(sl *domain.ScoredLead) scoring.Features {
	return scoring.FeaturesOf(domain.NormalizedLead{
		Name:        sl.Name,
		PhoneNumber: sl.PhoneNumber,
		Email:       sl.Email,
		Age:         sl.Age,

		Job:       sl.Job,
		Marital:   sl.Marital,
		Education: sl.Education,

		InDefault:    sl.Detail.InDefault,
		Balance:      sl.Detail.Balance,
		HousingLoan:  sl.Detail.HousingLoan,
		PersonalLoan: sl.Detail.PersonalLoan,

		LastContactDay:  sl.Detail.LastContactDay,
		Month:           sl.Detail.Month,
		ContactDuration: sl.Detail.ContactDuration,
		CampaignCount:   sl.Detail.CampaignCount,
		PDays:           sl.Detail.PDays,
		PrevContacts:    sl.Detail.PrevContacts,
		Outcome:         sl.Detail.Outcome,
		Contact:         sl.Detail.Contact,
	})
}
