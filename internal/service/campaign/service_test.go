package campaign_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/plscore/leadscore-api/internal/domain"
	"github.com/plscore/leadscore-api/internal/service/campaign"
)

// memRepo is an in-memory campaign repository for unit testing.
type memRepo struct {
	mu        sync.Mutex
	campaigns map[string]*domain.Campaign
	assigned  map[string]map[int64]bool
}

func newMemRepo() *memRepo {
	return &memRepo{
		campaigns: make(map[string]*domain.Campaign),
		assigned:  make(map[string]map[int64]bool),
	}
}

func (m *memRepo) Get(_ context.Context, id string) (*domain.Campaign, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.campaigns[id]
	if !ok {
		return nil, campaign.ErrNotFound
	}
	cp := *c
	cp.LeadCount = len(m.assigned[id])
	return &cp, nil
}

func (m *memRepo) List(_ context.Context, f campaign.ListFilter) ([]domain.Campaign, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Campaign
	for _, c := range m.campaigns {
		if f.Status != "" && string(c.Status) != f.Status {
			continue
		}
		out = append(out, *c)
	}
	total := len(out)
	if f.Offset >= len(out) {
		return nil, total, nil
	}
	end := f.Offset + f.Limit
	if end > len(out) || f.Limit <= 0 {
		end = len(out)
	}
	return out[f.Offset:end], total, nil
}

func (m *memRepo) Create(_ context.Context, c *domain.Campaign) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c.ID == "" {
		return "", fmt.Errorf("id required")
	}
	cp := *c
	m.campaigns[cp.ID] = &cp
	return cp.ID, nil
}

func (m *memRepo) Update(_ context.Context, id string, u campaign.UpdateFields) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.campaigns[id]
	if !ok {
		return campaign.ErrNotFound
	}
	if u.Name != nil {
		c.Name = *u.Name
	}
	if u.Description != nil {
		c.Description = *u.Description
	}
	return nil
}

func (m *memRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.campaigns[id]
	if !ok {
		return campaign.ErrNotFound
	}
	if c.Status != domain.CampaignDraft && c.Status != domain.CampaignCancelled {
		return fmt.Errorf("can only delete draft/cancelled")
	}
	delete(m.campaigns, id)
	return nil
}

func (m *memRepo) UpdateStatus(_ context.Context, id string, status domain.CampaignStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.campaigns[id]
	if !ok {
		return campaign.ErrNotFound
	}
	c.Status = status
	return nil
}

func (m *memRepo) AssignLeads(_ context.Context, id string, leadIDs []int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.assigned[id] == nil {
		m.assigned[id] = make(map[int64]bool)
	}
	n := 0
	for _, lid := range leadIDs {
		if !m.assigned[id][lid] {
			m.assigned[id][lid] = true
			n++
		}
	}
	return n, nil
}

func TestCreate(t *testing.T) {
	svc := campaign.NewService(newMemRepo())
	c, err := svc.Create(context.Background(), campaign.CreateInput{Name: "Q4 Push"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if c.Status != domain.CampaignDraft {
		t.Fatalf("expected draft, got %s", c.Status)
	}
}

func TestCreateValidation(t *testing.T) {
	svc := campaign.NewService(newMemRepo())
	if _, err := svc.Create(context.Background(), campaign.CreateInput{}); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestGetNotFound(t *testing.T) {
	svc := campaign.NewService(newMemRepo())
	if _, err := svc.Get(context.Background(), "nonexistent"); err != campaign.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestTransitionLifecycle(t *testing.T) {
	svc := campaign.NewService(newMemRepo())
	c, _ := svc.Create(context.Background(), campaign.CreateInput{Name: "C"})

	got, err := svc.Transition(context.Background(), c.ID, domain.CampaignActive)
	if err != nil {
		t.Fatalf("activate: %v", err)
	}
	if got.Status != domain.CampaignActive {
		t.Fatalf("expected active, got %s", got.Status)
	}

	if _, err := svc.Transition(context.Background(), c.ID, domain.CampaignPaused); err != nil {
		t.Fatalf("pause: %v", err)
	}
	if _, err := svc.Transition(context.Background(), c.ID, domain.CampaignCompleted); err != nil {
		t.Fatalf("complete: %v", err)
	}
}

func TestTransitionRejected(t *testing.T) {
	svc := campaign.NewService(newMemRepo())
	c, _ := svc.Create(context.Background(), campaign.CreateInput{Name: "C"})

	// draft cannot jump straight to completed
	_, err := svc.Transition(context.Background(), c.ID, domain.CampaignCompleted)
	if !errors.Is(err, campaign.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}

	// terminal states are dead ends
	svc.Transition(context.Background(), c.ID, domain.CampaignCancelled)
	_, err = svc.Transition(context.Background(), c.ID, domain.CampaignActive)
	if !errors.Is(err, campaign.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition from cancelled, got %v", err)
	}
}

func TestAssignLeads(t *testing.T) {
	svc := campaign.NewService(newMemRepo())
	c, _ := svc.Create(context.Background(), campaign.CreateInput{Name: "C"})

	n, err := svc.AssignLeads(context.Background(), c.ID, []int64{1, 2, 3})
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected 3 assigned, got %d", n)
	}

	// re-assigning is idempotent
	n, _ = svc.AssignLeads(context.Background(), c.ID, []int64{2, 3, 4})
	if n != 1 {
		t.Fatalf("expected 1 newly assigned, got %d", n)
	}

	got, _ := svc.Get(context.Background(), c.ID)
	if got.LeadCount != 4 {
		t.Fatalf("expected 4 leads, got %d", got.LeadCount)
	}
}

func TestAssignLeadsClosedCampaign(t *testing.T) {
	svc := campaign.NewService(newMemRepo())
	c, _ := svc.Create(context.Background(), campaign.CreateInput{Name: "C"})
	svc.Transition(context.Background(), c.ID, domain.CampaignCancelled)

	if _, err := svc.AssignLeads(context.Background(), c.ID, []int64{1}); err != campaign.ErrCampaignClosed {
		t.Fatalf("expected ErrCampaignClosed, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	svc := campaign.NewService(newMemRepo())
	c, _ := svc.Create(context.Background(), campaign.CreateInput{Name: "C"})

	if err := svc.Delete(context.Background(), c.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.Get(context.Background(), c.ID); err != campaign.ErrNotFound {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestListWithFilter(t *testing.T) {
	svc := campaign.NewService(newMemRepo())
	svc.Create(context.Background(), campaign.CreateInput{Name: "A"})
	svc.Create(context.Background(), campaign.CreateInput{Name: "B"})

	list, total, err := svc.List(context.Background(), campaign.ListFilter{Limit: 10})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 2 || len(list) != 2 {
		t.Fatalf("expected 2 campaigns, got %d (total %d)", len(list), total)
	}
}
