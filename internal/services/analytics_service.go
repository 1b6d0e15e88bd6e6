// internal/services/analytics_service.go
package services

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/MadeByJay/ai-product-search/internal/background"
	"github.com/MadeByJay/ai-product-search/internal/models"
	"github.com/MadeByJay/ai-product-search/internal/utils"
)

const (
	DefaultTopQueriesLimit = 10
	maxTopQueriesLimit     = 100
	DefaultDailyDays       = 7
	maxDailyDays           = 365
)

type AnalyticsSummary struct {
	TotalQueries int64   `json:"total_queries"`
	TodayQueries int64   `json:"today_queries"`
	AvgLatencyMs float64 `json:"avg_latency_ms"`
	AvgResults   float64 `json:"avg_results"`
}

type TopQuery struct {
	Query string `json:"query"`
	Hits  int64  `json:"hits"`
}

type DailyCount struct {
	Day  string `json:"day"`
	Hits int64  `json:"hits"`
}

// RecordOutcome observes each best-effort write; the metrics counter plugs in
// here.
type RecordOutcome func(err error)

type AnalyticsService struct {
	db        *gorm.DB
	runner    *background.Runner
	log       *logrus.Logger
	onOutcome RecordOutcome
}

func NewAnalyticsService(db *gorm.DB, runner *background.Runner, log *logrus.Logger, onOutcome RecordOutcome) *AnalyticsService {
	return &AnalyticsService{
		db:        db,
		runner:    runner,
		log:       log,
		onOutcome: onOutcome,
	}
}

// Record appends one search event.
func (s *AnalyticsService) Record(ctx context.Context, query string, latencyMs, resultCount int) error {
	event := models.SearchEvent{
		Query:       query,
		LatencyMs:   latencyMs,
		ResultCount: resultCount,
	}
	if err := s.db.WithContext(ctx).Create(&event).Error; err != nil {
		return fmt.Errorf("record search event: %w", err)
	}
	return nil
}

// RecordAsync queues Record on the background runner. Errors and a full queue
// are logged, never returned.
func (s *AnalyticsService) RecordAsync(query string, latencyMs, resultCount int) {
	queued := s.runner.Submit("record_search_event", func(ctx context.Context) error {
		err := s.Record(ctx, query, latencyMs, resultCount)
		if s.onOutcome != nil {
			s.onOutcome(err)
		}
		return err
	})
	if !queued && s.onOutcome != nil {
		s.onOutcome(ErrSearchEventDropped)
	}
}

func (s *AnalyticsService) Summary(ctx context.Context) (*AnalyticsSummary, error) {
	var summary AnalyticsSummary
	err := s.db.WithContext(ctx).Raw(`
		SELECT count(*) AS total_queries,
		       count(*) FILTER (WHERE at >= now()::date) AS today_queries,
		       coalesce(avg(latency_ms), 0)::float8 AS avg_latency_ms,
		       coalesce(avg(result_count), 0)::float8 AS avg_results
		FROM analytics_search_events`).Scan(&summary).Error
	if err != nil {
		return nil, fmt.Errorf("analytics summary: %w", err)
	}
	return &summary, nil
}

func (s *AnalyticsService) TopQueries(ctx context.Context, limit int) ([]TopQuery, error) {
	rows := make([]TopQuery, 0)
	err := s.db.WithContext(ctx).
		Model(&models.SearchEvent{}).
		Select("query, count(*) AS hits").
		Group("query").
		Order("hits DESC").
		Limit(utils.Clamp(limit, 1, maxTopQueriesLimit)).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("top queries: %w", err)
	}
	return rows, nil
}

// Daily returns one entry per calendar day for the trailing days days,
// oldest first, with zero for days without searches.
func (s *AnalyticsService) Daily(ctx context.Context, days int) ([]DailyCount, error) {
	rows := make([]DailyCount, 0)
	err := s.db.WithContext(ctx).Raw(`
		SELECT to_char(d::date, 'YYYY-MM-DD') AS day,
		       count(e.id) AS hits
		FROM generate_series(now()::date - (?::int - 1), now()::date, interval '1 day') d
		LEFT JOIN analytics_search_events e ON e.at::date = d::date
		GROUP BY d
		ORDER BY d`, utils.Clamp(days, 1, maxDailyDays)).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("daily counts: %w", err)
	}
	return rows, nil
}
