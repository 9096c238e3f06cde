package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/plscore/leadscore-api/internal/domain"
	"github.com/plscore/leadscore-api/internal/service/dashboard"
)

// StatsRepo computes dashboard aggregates with direct SQL.
type StatsRepo struct{ db *sql.DB }

// NewStatsRepo creates a Postgres-backed stats repository.
func NewStatsRepo(db *sql.DB) *StatsRepo { return &StatsRepo{db: db} }

func (r *StatsRepo) Summary(ctx context.Context) (*dashboard.Stats, error) {
	stats := &dashboard.Stats{
		ScoreBuckets: make(map[string]int),
		JobBreakdown: make(map[string]int),
	}

	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(AVG(s.lead_score), 0),
		       COUNT(*) FILTER (WHERE s.lead_score >= 0.7)
		FROM tb_leads l
		LEFT JOIN tb_leads_score s ON s.lead_id = l.lead_id
	`).Scan(&stats.TotalLeads, &stats.AverageScore, &stats.HighValue)
	if err != nil {
		return nil, fmt.Errorf("lead totals: %w", err)
	}

	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tb_campaigns`).Scan(&stats.CampaignCount); err != nil {
		return nil, fmt.Errorf("campaign count: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT width_bucket(COALESCE(s.lead_score, 0), 0, 1, 5), COUNT(*)
		FROM tb_leads l
		LEFT JOIN tb_leads_score s ON s.lead_id = l.lead_id
		GROUP BY 1 ORDER BY 1
	`)
	if err != nil {
		return nil, fmt.Errorf("score buckets: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var bucket, count int
		if err := rows.Scan(&bucket, &count); err != nil {
			return nil, fmt.Errorf("scan bucket: %w", err)
		}
		stats.ScoreBuckets[bucketLabel(bucket)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	jobRows, err := r.db.QueryContext(ctx, `
		SELECT job_id, COUNT(*) FROM tb_leads GROUP BY job_id
	`)
	if err != nil {
		return nil, fmt.Errorf("job breakdown: %w", err)
	}
	defer jobRows.Close()
	for jobRows.Next() {
		var job, count int
		if err := jobRows.Scan(&job, &count); err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		stats.JobBreakdown[domain.JobCode(job).Name()] = count
	}
	return stats, jobRows.Err()
}

// bucketLabel renders a width_bucket index over [0,1) in 5 steps as a range
// label, e.g. bucket 1 -> "0.0-0.2". width_bucket returns 6 for exactly 1.0.
func bucketLabel(bucket int) string {
	if bucket < 1 {
		bucket = 1
	}
	if bucket > 5 {
		bucket = 5
	}
	lo := float64(bucket-1) * 0.2
	return fmt.Sprintf("%.1f-%.1f", lo, lo+0.2)
}
