package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/plscore/leadscore-api/internal/domain"
	"github.com/plscore/leadscore-api/internal/service/campaign"
)

// CampaignRepo implements campaign.Repository against PostgreSQL.
type CampaignRepo struct{ db *sql.DB }

// NewCampaignRepo creates a Postgres-backed campaign repository.
func NewCampaignRepo(db *sql.DB) *CampaignRepo { return &CampaignRepo{db: db} }

func (r *CampaignRepo) Get(ctx context.Context, id string) (*domain.Campaign, error) {
	c := &domain.Campaign{}
	err := r.db.QueryRowContext(ctx, `
		SELECT c.campaign_id, c.campaign_name, COALESCE(c.campaign_desc,''),
		       c.status, c.start_date, c.end_date, c.created_at, c.updated_at,
		       COUNT(cl.lead_id), COALESCE(AVG(s.lead_score), 0),
		       COUNT(cl.lead_id) FILTER (WHERE cl.contacted_at IS NOT NULL)
		FROM tb_campaigns c
		LEFT JOIN tb_campaign_leads cl ON cl.campaign_id = c.campaign_id
		LEFT JOIN tb_leads_score s ON s.lead_id = cl.lead_id
		WHERE c.campaign_id = $1
		GROUP BY c.campaign_id
	`, id).Scan(
		&c.ID, &c.Name, &c.Description,
		&c.Status, &c.StartDate, &c.EndDate, &c.CreatedAt, &c.UpdatedAt,
		&c.LeadCount, &c.AverageScore, &c.ContactedLead,
	)
	if err == sql.ErrNoRows {
		return nil, campaign.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get campaign: %w", err)
	}
	return c, nil
}

func (r *CampaignRepo) List(ctx context.Context, f campaign.ListFilter) ([]domain.Campaign, int, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}

	countQ := `SELECT COUNT(*) FROM tb_campaigns WHERE 1=1`
	args := []interface{}{}
	idx := 1

	if f.Status != "" {
		countQ += fmt.Sprintf(" AND status = $%d", idx)
		args = append(args, f.Status)
		idx++
	}
	if f.Search != "" {
		countQ += fmt.Sprintf(" AND campaign_name ILIKE $%d", idx)
		args = append(args, "%"+f.Search+"%")
		idx++
	}

	var total int
	if err := r.db.QueryRowContext(ctx, countQ, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count campaigns: %w", err)
	}

	q := `
		SELECT c.campaign_id, c.campaign_name, COALESCE(c.campaign_desc,''),
		       c.status, c.start_date, c.end_date, c.created_at, c.updated_at,
		       COUNT(cl.lead_id), COALESCE(AVG(s.lead_score), 0)
		FROM tb_campaigns c
		LEFT JOIN tb_campaign_leads cl ON cl.campaign_id = c.campaign_id
		LEFT JOIN tb_leads_score s ON s.lead_id = cl.lead_id
		WHERE 1=1`

	qArgs := []interface{}{}
	qIdx := 1
	if f.Status != "" {
		q += fmt.Sprintf(" AND c.status = $%d", qIdx)
		qArgs = append(qArgs, f.Status)
		qIdx++
	}
	if f.Search != "" {
		q += fmt.Sprintf(" AND c.campaign_name ILIKE $%d", qIdx)
		qArgs = append(qArgs, "%"+f.Search+"%")
		qIdx++
	}
	q += fmt.Sprintf(" GROUP BY c.campaign_id ORDER BY c.created_at DESC LIMIT $%d OFFSET $%d", qIdx, qIdx+1)
	qArgs = append(qArgs, limit, f.Offset)

	rows, err := r.db.QueryContext(ctx, q, qArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("list campaigns: %w", err)
	}
	defer rows.Close()

	var out []domain.Campaign
	for rows.Next() {
		var c domain.Campaign
		if err := rows.Scan(
			&c.ID, &c.Name, &c.Description,
			&c.Status, &c.StartDate, &c.EndDate, &c.CreatedAt, &c.UpdatedAt,
			&c.LeadCount, &c.AverageScore,
		); err != nil {
			return nil, 0, fmt.Errorf("scan campaign: %w", err)
		}
		out = append(out, c)
	}
	return out, total, rows.Err()
}

func (r *CampaignRepo) Create(ctx context.Context, c *domain.Campaign) (string, error) {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO tb_campaigns
			(campaign_id, campaign_name, campaign_desc, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
	`, c.ID, c.Name, c.Description, c.Status)
	if err != nil {
		return "", fmt.Errorf("create campaign: %w", err)
	}
	return c.ID, nil
}

func (r *CampaignRepo) Update(ctx context.Context, id string, u campaign.UpdateFields) error {
	sets := []string{}
	args := []interface{}{}
	idx := 1
	add := func(col string, val interface{}) {
		sets = append(sets, fmt.Sprintf("%s = $%d", col, idx))
		args = append(args, val)
		idx++
	}

	if u.Name != nil {
		add("campaign_name", *u.Name)
	}
	if u.Description != nil {
		add("campaign_desc", *u.Description)
	}
	if u.StartDate != nil {
		add("start_date", *u.StartDate)
	}
	if u.EndDate != nil {
		add("end_date", *u.EndDate)
	}

	if len(sets) == 0 {
		return nil
	}

	q := fmt.Sprintf("UPDATE tb_campaigns SET %s, updated_at = NOW() WHERE campaign_id = $%d",
		joinComma(sets), idx)
	args = append(args, id)

	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("update campaign: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return campaign.ErrNotFound
	}
	return nil
}

func (r *CampaignRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM tb_campaigns
		WHERE campaign_id = $1 AND status IN ('draft','cancelled')
	`, id)
	if err != nil {
		return fmt.Errorf("delete campaign: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return campaign.ErrNotFound
	}
	return nil
}

func (r *CampaignRepo) UpdateStatus(ctx context.Context, id string, status domain.CampaignStatus) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE tb_campaigns SET status = $1, updated_at = NOW()
		WHERE campaign_id = $2
	`, status, id)
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return campaign.ErrNotFound
	}
	return nil
}

func (r *CampaignRepo) AssignLeads(ctx context.Context, campaignID string, leadIDs []int64) (int, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO tb_campaign_leads (campaign_id, lead_id, assigned_at)
		SELECT $1, l.lead_id, NOW()
		FROM tb_leads l
		WHERE l.lead_id = ANY($2)
		ON CONFLICT (campaign_id, lead_id) DO NOTHING
	`, campaignID, pq.Array(leadIDs))
	if err != nil {
		return 0, fmt.Errorf("assign leads: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}
