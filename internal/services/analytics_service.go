package services

import (
	"context"
	"time"

	"propertystore/internal/cache"
	"propertystore/internal/models"
	"propertystore/internal/pipeline"
)

// AnalyticsService отдаёт сводки по воронке. Результаты кэшируются до следующего
// изменения сделок или заявок (либо до истечения TTL).
type AnalyticsService struct {
	Repo     AnalyticsStore
	Deals    DealStore
	Requests RequestStore
	Cache    cache.Cache
	TTL      time.Duration
	Now      func() time.Time
}

func NewAnalyticsService(repo AnalyticsStore, deals DealStore, requests RequestStore, c cache.Cache, ttl time.Duration) *AnalyticsService {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &AnalyticsService{Repo: repo, Deals: deals, Requests: requests, Cache: c, TTL: ttl, Now: time.Now}
}

func (s *AnalyticsService) PipelineSummary(ctx context.Context, pipelineID string, refresh bool) (*models.DealAnalytics, error) {
	key := cache.Key("analytics", "summary", pipelineID)
	return cache.Load(ctx, s.Cache, key, s.TTL, refresh, func(ctx context.Context) (*models.DealAnalytics, error) {
		return s.Repo.PipelineSummary(ctx, pipelineID)
	})
}

func (s *AnalyticsService) StageStats(ctx context.Context, pipelineID string, refresh bool) ([]models.DealStageAnalytics, error) {
	key := cache.Key("analytics", "stages", pipelineID)
	return cache.Load(ctx, s.Cache, key, s.TTL, refresh, func(ctx context.Context) ([]models.DealStageAnalytics, error) {
		return s.Repo.StageStats(ctx, pipelineID, s.Now())
	})
}

// PropertyTypes — распределение сделок воронки по типам недвижимости.
func (s *AnalyticsService) PropertyTypes(ctx context.Context, pipelineID string, refresh bool) ([]models.PropertyTypeAnalytics, error) {
	key := cache.Key("analytics", "property-types", pipelineID)
	return cache.Load(ctx, s.Cache, key, s.TTL, refresh, func(ctx context.Context) ([]models.PropertyTypeAnalytics, error) {
		rows, err := s.Repo.PropertyTypes(ctx, pipelineID)
		if err != nil {
			return nil, err
		}
		return pipeline.PropertyTypeShare(rows), nil
	})
}

func (s *AnalyticsService) Funnel(ctx context.Context, pipelineID string, refresh bool) ([]models.FunnelStage, error) {
	stats, err := s.StageStats(ctx, pipelineID, refresh)
	if err != nil {
		return nil, err
	}
	return pipeline.Funnel(stats), nil
}

func (s *AnalyticsService) Dashboard(ctx context.Context, refresh bool) (*models.DashboardMetrics, error) {
	key := cache.Key("analytics", "dashboard")
	return cache.Load(ctx, s.Cache, key, s.TTL, refresh, func(ctx context.Context) (*models.DashboardMetrics, error) {
		deals, err := s.Deals.List(ctx, models.DealFilter{})
		if err != nil {
			return nil, err
		}
		now := s.Now()
		for i := range deals {
			pipeline.RefreshOverdue(&deals[i], now)
		}
		requests, err := s.Requests.Count(ctx)
		if err != nil {
			return nil, err
		}
		m := pipeline.Dashboard(deals, requests)
		return &m, nil
	})
}

// Trend строит дневной ряд созданных и завершённых сделок за период.
func (s *AnalyticsService) Trend(ctx context.Context, period pipeline.Period, from, to *time.Time, refresh bool) ([]models.TrendPoint, error) {
	w := pipeline.WindowFor(period, s.Now(), from, to)
	if w.To.Before(w.From) {
		return nil, invalid("конец периода раньше начала")
	}
	key := cache.Key("analytics", "trend", w.From.Format("2006-01-02"), w.To.Format("2006-01-02"))
	return cache.Load(ctx, s.Cache, key, s.TTL, refresh, func(ctx context.Context) ([]models.TrendPoint, error) {
		start := time.Date(w.From.Year(), w.From.Month(), w.From.Day(), 0, 0, 0, 0, w.From.Location())
		end := time.Date(w.To.Year(), w.To.Month(), w.To.Day(), 23, 59, 59, 0, w.To.Location())
		deals, err := s.Deals.List(ctx, models.DealFilter{CreatedFrom: &start, CreatedTo: &end})
		if err != nil {
			return nil, err
		}
		return pipeline.Trend(deals, w), nil
	})
}
