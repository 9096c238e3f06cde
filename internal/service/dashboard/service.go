// Package dashboard aggregates lead statistics for the overview screens.
// Aggregates are expensive to compute, so results are cached in Redis for a
// short window; the cache is best-effort and the service degrades to direct
// queries when Redis is unavailable.
package dashboard

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/plscore/leadscore-api/internal/pkg/logger"
)

const (
	cacheKey = "dashboard:summary"
	cacheTTL = 60 * time.Second
)

// Stats is the aggregate snapshot served to the dashboard.
type Stats struct {
	TotalLeads    int            `json:"total_leads"`
	AverageScore  float64        `json:"average_score"`
	HighValue     int            `json:"high_value_count"` // score >= 0.7
	ScoreBuckets  map[string]int `json:"score_distribution"`
	JobBreakdown  map[string]int `json:"job_breakdown"`
	CampaignCount int            `json:"campaign_count"`
	GeneratedAt   time.Time      `json:"generated_at"`
}

// StatsRepository computes the aggregates from the primary store.
type StatsRepository interface {
	Summary(ctx context.Context) (*Stats, error)
}

// Service serves dashboard aggregates with a Redis read-through cache.
type Service struct {
	repo  StatsRepository
	redis *redis.Client
}

// NewService creates a dashboard service. redisClient may be nil, which
// disables caching.
func NewService(repo StatsRepository, redisClient *redis.Client) *Service {
	return &Service{repo: repo, redis: redisClient}
}

// Summary returns the aggregate stats, from cache when fresh.
func (s *Service) Summary(ctx context.Context) (*Stats, error) {
	if s.redis != nil {
		if data, err := s.redis.Get(ctx, cacheKey).Bytes(); err == nil {
			var cached Stats
			if json.Unmarshal(data, &cached) == nil {
				return &cached, nil
			}
		}
	}

	stats, err := s.repo.Summary(ctx)
	if err != nil {
		return nil, err
	}
	stats.GeneratedAt = time.Now()

	if s.redis != nil {
		data, _ := json.Marshal(stats)
		if err := s.redis.Set(ctx, cacheKey, data, cacheTTL).Err(); err != nil {
			logger.Warn("dashboard cache write failed", "error", err.Error())
		}
	}
	return stats, nil
}

// Invalidate drops the cached summary, forcing the next read to recompute.
// Called after bulk imports land.
func (s *Service) Invalidate(ctx context.Context) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Del(ctx, cacheKey).Err(); err != nil && err != redis.Nil {
		logger.Warn("dashboard cache invalidation failed", "error", err.Error())
	}
}
