package lead_test

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/plscore/leadscore-api/internal/domain"
	"github.com/plscore/leadscore-api/internal/scoring"
	"github.com/plscore/leadscore-api/internal/service/lead"
)

// memRepo is an in-memory lead repository for unit testing.
type memRepo struct {
	mu     sync.Mutex
	nextID int64
	leads  map[int64]*domain.ScoredLead
}

func newMemRepo() *memRepo {
	return &memRepo{leads: make(map[int64]*domain.ScoredLead)}
}

func (m *memRepo) Get(_ context.Context, id int64) (*domain.ScoredLead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.leads[id]
	if !ok {
		return nil, lead.ErrNotFound
	}
	cp := *l
	return &cp, nil
}

func (m *memRepo) List(_ context.Context, f lead.ListFilter) ([]domain.ScoredLead, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.ScoredLead
	for _, l := range m.leads {
		if f.Job != 0 && int(l.Job) != f.Job {
			continue
		}
		if f.MinScore > 0 && l.Score < f.MinScore {
			continue
		}
		if f.MaxScore > 0 && l.Score > f.MaxScore {
			continue
		}
		if f.Search != "" && !strings.Contains(strings.ToLower(l.Name), strings.ToLower(f.Search)) {
			continue
		}
		out = append(out, *l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Score > out[j].Score })
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

func (m *memRepo) Create(_ context.Context, l domain.NormalizedLead) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.leads {
		if existing.Email == l.Email {
			return 0, lead.ErrDuplicateEmail
		}
	}
	m.nextID++
	m.leads[m.nextID] = &domain.ScoredLead{
		Lead: domain.Lead{
			ID: m.nextID, Name: l.Name, PhoneNumber: l.PhoneNumber,
			Email: l.Email, Age: l.Age,
			Job: l.Job, Marital: l.Marital, Education: l.Education,
		},
		Detail: domain.LeadDetail{
			LeadID: m.nextID, InDefault: l.InDefault, Balance: l.Balance,
			HousingLoan: l.HousingLoan, PersonalLoan: l.PersonalLoan,
			LastContactDay: l.LastContactDay, Month: l.Month,
			ContactDuration: l.ContactDuration, CampaignCount: l.CampaignCount,
			PDays: l.PDays, PrevContacts: l.PrevContacts,
			Outcome: l.Outcome, Contact: l.Contact,
		},
		Score: l.Score,
	}
	return m.nextID, nil
}

func (m *memRepo) Update(_ context.Context, id int64, u lead.UpdateFields) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.leads[id]
	if !ok {
		return lead.ErrNotFound
	}
	if u.Name != nil {
		l.Name = *u.Name
	}
	if u.Email != nil {
		l.Email = *u.Email
	}
	if u.Age != nil {
		l.Age = *u.Age
	}
	return nil
}

func (m *memRepo) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.leads[id]; !ok {
		return lead.ErrNotFound
	}
	delete(m.leads, id)
	return nil
}

func (m *memRepo) BatchDelete(_ context.Context, ids []int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, id := range ids {
		if _, ok := m.leads[id]; ok {
			delete(m.leads, id)
			n++
		}
	}
	return n, nil
}

// stubScorer returns a fixed score or a configured error.
type stubScorer struct {
	score       float64
	scoreErr    error
	explanation *scoring.Explanation
	lastSingle  scoring.Features
}

func (s *stubScorer) ScoreSingle(_ context.Context, f scoring.Features) (float64, error) {
	s.lastSingle = f
	return s.score, s.scoreErr
}

func (s *stubScorer) Explain(_ context.Context, _ scoring.Features) (*scoring.Explanation, error) {
	if s.explanation == nil {
		return nil, errors.New("explain unavailable")
	}
	return s.explanation, nil
}

func TestCreateScoresLead(t *testing.T) {
	sc := &stubScorer{score: 0.87}
	svc := lead.NewService(newMemRepo(), sc)

	got, err := svc.Create(context.Background(), lead.CreateInput{
		Name: "Alice", Email: "alice@test.com", Age: 41,
		Job: "Management", Marital: "married", Education: "tertiary",
		Month: "nov", Contact: "mobile",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if got.Score != 0.87 {
		t.Fatalf("expected score 0.87, got %v", got.Score)
	}
	if got.Job != domain.JobManagement {
		t.Fatalf("expected management job code, got %d", got.Job)
	}
	if got.Detail.Contact != domain.ContactCellular {
		t.Fatalf("expected cellular contact code, got %d", got.Detail.Contact)
	}
	if sc.lastSingle.Job != "management" {
		t.Fatalf("scorer saw job %q", sc.lastSingle.Job)
	}
}

func TestCreateScorerDownDefaultsToZero(t *testing.T) {
	sc := &stubScorer{scoreErr: errors.New("scoring service unreachable")}
	svc := lead.NewService(newMemRepo(), sc)

	got, err := svc.Create(context.Background(), lead.CreateInput{
		Name: "Bob", Email: "bob@test.com",
	})
	if err != nil {
		t.Fatalf("create should survive scorer outage: %v", err)
	}
	if got.Score != 0 {
		t.Fatalf("expected zero score, got %v", got.Score)
	}
}

func TestCreateValidation(t *testing.T) {
	svc := lead.NewService(newMemRepo(), &stubScorer{})
	if _, err := svc.Create(context.Background(), lead.CreateInput{Email: "x@test.com"}); err == nil {
		t.Fatal("expected error for missing name")
	}
	if _, err := svc.Create(context.Background(), lead.CreateInput{Name: "X"}); err == nil {
		t.Fatal("expected error for missing email")
	}
}

func TestCreateDuplicateEmail(t *testing.T) {
	svc := lead.NewService(newMemRepo(), &stubScorer{})
	in := lead.CreateInput{Name: "A", Email: "dup@test.com"}
	if _, err := svc.Create(context.Background(), in); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err := svc.Create(context.Background(), in)
	if err != lead.ErrDuplicateEmail {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestGetNotFound(t *testing.T) {
	svc := lead.NewService(newMemRepo(), &stubScorer{})
	if _, err := svc.Get(context.Background(), 999); err != lead.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdate(t *testing.T) {
	svc := lead.NewService(newMemRepo(), &stubScorer{})
	c, _ := svc.Create(context.Background(), lead.CreateInput{Name: "Old", Email: "u@test.com"})

	name := "New"
	got, err := svc.Update(context.Background(), c.ID, lead.UpdateFields{Name: &name})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Name != "New" {
		t.Fatalf("expected updated name, got %q", got.Name)
	}
}

func TestBatchDelete(t *testing.T) {
	svc := lead.NewService(newMemRepo(), &stubScorer{})
	a, _ := svc.Create(context.Background(), lead.CreateInput{Name: "A", Email: "a@test.com"})
	b, _ := svc.Create(context.Background(), lead.CreateInput{Name: "B", Email: "b@test.com"})

	n, err := svc.BatchDelete(context.Background(), []int64{a.ID, b.ID, 12345})
	if err != nil {
		t.Fatalf("batch delete: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 deleted, got %d", n)
	}

	if n, _ := svc.BatchDelete(context.Background(), nil); n != 0 {
		t.Fatalf("expected no-op for empty ids, got %d", n)
	}
}

func TestExplain(t *testing.T) {
	sc := &stubScorer{
		score: 0.5,
		explanation: &scoring.Explanation{
			Prediction: 0.5,
			BaseValue:  0.1,
			Contributions: []scoring.Contribution{
				{Feature: "duration", ShapValue: 0.3, ImpactPct: 30},
			},
		},
	}
	svc := lead.NewService(newMemRepo(), sc)
	c, _ := svc.Create(context.Background(), lead.CreateInput{Name: "E", Email: "e@test.com"})

	exp, err := svc.Explain(context.Background(), c.ID)
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	if len(exp.Contributions) != 1 || exp.Contributions[0].Feature != "duration" {
		t.Fatalf("unexpected explanation: %+v", exp)
	}

	if _, err := svc.Explain(context.Background(), 999); err != lead.ErrNotFound {
		t.Fatalf("expected ErrNotFound for unknown lead, got %v", err)
	}
}

func TestListFilterAndOrder(t *testing.T) {
	repo := newMemRepo()
	for i, tc := range []struct {
		name  string
		score float64
	}{{"Low", 0.1}, {"High", 0.9}, {"Mid", 0.5}} {
		repo.Create(context.Background(), domain.NormalizedLead{
			Name: tc.name, Email: tc.name + "@test.com", Score: tc.score,
			Job: domain.JobCode(i + 1),
		})
	}
	svc := lead.NewService(repo, &stubScorer{})

	list, total, err := svc.List(context.Background(), lead.ListFilter{Limit: 10})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 3 || list[0].Name != "High" {
		t.Fatalf("expected score-descending order, got %+v", list)
	}

	list, total, _ = svc.List(context.Background(), lead.ListFilter{MinScore: 0.4, Limit: 10})
	if total != 2 || len(list) != 2 {
		t.Fatalf("expected 2 leads above 0.4, got %d", total)
	}

	list, total, _ = svc.List(context.Background(), lead.ListFilter{MinScore: 0.4, MaxScore: 0.7, Limit: 10})
	if total != 1 || list[0].Name != "Mid" {
		t.Fatalf("expected only the mid-score lead in [0.4, 0.7], got %+v", list)
	}
}
