package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MadeByJay/ai-product-search/internal/background"
	"github.com/MadeByJay/ai-product-search/internal/models"
	"github.com/MadeByJay/ai-product-search/internal/testutil"
)

func TestAnalyticsRecordAndTopQueries(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	svc := NewAnalyticsService(db, nil, testutil.NewLogger(), nil)
	ctx := context.Background()

	for _, q := range []string{"sofa", "desk", "sofa", "lamp", "sofa", "desk"} {
		require.NoError(t, svc.Record(ctx, q, 120, 10))
	}

	top, err := svc.TopQueries(ctx, 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, TopQuery{Query: "sofa", Hits: 3}, top[0])
	assert.Equal(t, TopQuery{Query: "desk", Hits: 2}, top[1])

	top, err = svc.TopQueries(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, top, 1)
}

func TestAnalyticsRecordAsyncUsesRunner(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	runner := background.NewRunner(background.Config{QueueSize: 8, Workers: 1, TaskTimeout: time.Second}, testutil.NewLogger())

	var mu sync.Mutex
	var outcomes []error
	svc := NewAnalyticsService(db, runner, testutil.NewLogger(), func(err error) {
		mu.Lock()
		outcomes = append(outcomes, err)
		mu.Unlock()
	})

	svc.RecordAsync("ergonomic office chair", 87, 12)
	require.NoError(t, runner.Close(context.Background()))

	var events []models.SearchEvent
	require.NoError(t, db.Find(&events).Error)
	require.Len(t, events, 1)
	assert.Equal(t, "ergonomic office chair", events[0].Query)
	assert.Equal(t, 87, events[0].LatencyMs)
	assert.Equal(t, 12, events[0].ResultCount)
	assert.False(t, events[0].At.IsZero())

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []error{nil}, outcomes)
}

func TestAnalyticsRecordAsyncReportsDrops(t *testing.T) {
	runner := background.NewRunner(background.Config{QueueSize: 1, Workers: 1}, testutil.NewLogger())
	require.NoError(t, runner.Close(context.Background()))

	var got error
	svc := NewAnalyticsService(nil, runner, testutil.NewLogger(), func(err error) { got = err })
	svc.RecordAsync("sofa", 10, 1)

	assert.ErrorIs(t, got, ErrSearchEventDropped)
}

func TestAnalyticsSummaryAndDailyPostgres(t *testing.T) {
	db := testutil.NewPostgresDB(t)
	svc := NewAnalyticsService(db, nil, testutil.NewLogger(), nil)
	ctx := context.Background()

	require.NoError(t, svc.Record(ctx, "sofa", 100, 10))
	require.NoError(t, svc.Record(ctx, "desk", 300, 20))
	require.NoError(t, db.Create(&models.SearchEvent{Query: "old", LatencyMs: 50, ResultCount: 0, At: time.Now().AddDate(0, 0, -3)}).Error)

	summary, err := svc.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), summary.TotalQueries)
	assert.Equal(t, int64(2), summary.TodayQueries)
	assert.InDelta(t, 150.0, summary.AvgLatencyMs, 0.01)
	assert.InDelta(t, 10.0, summary.AvgResults, 0.01)

	daily, err := svc.Daily(ctx, 7)
	require.NoError(t, err)
	require.Len(t, daily, 7)
	for i := 1; i < len(daily); i++ {
		assert.Less(t, daily[i-1].Day, daily[i].Day)
	}
	assert.Equal(t, int64(2), daily[6].Hits)
	assert.Equal(t, int64(1), daily[3].Hits)
	assert.Equal(t, int64(0), daily[0].Hits)

	daily, err = svc.Daily(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, daily, 1)
}
