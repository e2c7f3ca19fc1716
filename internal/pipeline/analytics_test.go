package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"propertystore/internal/models"
)

func TestFunnel(t *testing.T) {
	got := Funnel([]models.DealStageAnalytics{
		{StageID: "a", StageName: "A", DealCount: 10},
		{StageID: "b", StageName: "B", DealCount: 5},
		{StageID: "c", StageName: "C", DealCount: 1},
	})
	require.Len(t, got, 3)
	assert.Equal(t, 100.0, got[0].Conversion)
	assert.Equal(t, 50.0, got[1].Conversion)
	assert.Equal(t, 10.0, got[2].Conversion)
}

func TestFunnel_FirstStageAlwaysHundred(t *testing.T) {
	got := Funnel([]models.DealStageAnalytics{
		{StageID: "a", DealCount: 0},
		{StageID: "b", DealCount: 3},
	})
	assert.Equal(t, 100.0, got[0].Conversion)
	assert.Equal(t, 0.0, got[1].Conversion)
	assert.Empty(t, Funnel(nil))
}

func TestTrend_BucketCount(t *testing.T) {
	now := time.Date(2025, 3, 31, 18, 0, 0, 0, time.UTC)
	for _, tc := range []struct {
		period Period
		days   int
	}{
		{Period7Days, 7},
		{Period30Days, 30},
		{Period90Days, 90},
		{"", 30},
	} {
		points := Trend(nil, WindowFor(tc.period, now, nil, nil))
		assert.Len(t, points, tc.days+1, "period %q", tc.period)
		for _, p := range points {
			assert.Zero(t, p.Created)
			assert.Zero(t, p.Completed)
		}
	}
}

func TestTrend_Counts(t *testing.T) {
	now := time.Date(2025, 3, 31, 18, 0, 0, 0, time.UTC)
	closed := time.Date(2025, 3, 30, 10, 0, 0, 0, time.UTC)
	deals := []models.Deal{
		{ID: "1", CreatedAt: time.Date(2025, 3, 29, 8, 0, 0, 0, time.UTC)},
		{ID: "2", CreatedAt: time.Date(2025, 3, 29, 23, 0, 0, 0, time.UTC), ClosedAt: &closed},
		{ID: "3", CreatedAt: time.Date(2025, 3, 31, 1, 0, 0, 0, time.UTC)},
		// created before the window: ignored even though it closed inside it
		{ID: "4", CreatedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), ClosedAt: &closed},
	}
	points := Trend(deals, WindowFor(Period7Days, now, nil, nil))
	require.Len(t, points, 8)
	assert.Equal(t, "2025-03-24", points[0].Date)
	assert.Equal(t, "2025-03-31", points[7].Date)

	byDate := map[string]models.TrendPoint{}
	for _, p := range points {
		byDate[p.Date] = p
	}
	assert.Equal(t, 2, byDate["2025-03-29"].Created)
	assert.Equal(t, 1, byDate["2025-03-29"].Completed)
	assert.Equal(t, 1, byDate["2025-03-31"].Created)
	assert.Equal(t, 0, byDate["2025-03-30"].Completed)
}

func TestWindowFor_Custom(t *testing.T) {
	now := time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)
	from := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC)

	w := WindowFor(PeriodCustom, now, &from, &to)
	assert.Len(t, Trend(nil, w), 10)

	w = WindowFor(PeriodCustom, now, &from, nil)
	assert.Equal(t, now.AddDate(0, 0, -30), w.From)

	assert.Empty(t, Trend(nil, Window{From: to, To: from}))
}

func TestDashboard(t *testing.T) {
	amount := 1000.0
	closed := t0.Add(48 * time.Hour)
	deals := []models.Deal{
		{IsActive: true, DealAmount: &amount, CreatedAt: t0},
		{IsActive: true, IsOverdue: true, CreatedAt: t0},
		{IsActive: false, DealAmount: &amount, CreatedAt: t0, ClosedAt: &closed},
	}
	m := Dashboard(deals, 4)
	assert.Equal(t, 3, m.TotalDeals)
	assert.Equal(t, 2, m.ActiveDeals)
	assert.Equal(t, 1, m.CompletedDeals)
	assert.Equal(t, 1, m.OverdueDeals)
	assert.Equal(t, 2000.0, m.TotalDealAmount)
	assert.Equal(t, 25.0, m.ConversionRate)
	assert.Equal(t, 2.0, m.AverageDealTime)

	assert.Zero(t, Dashboard(nil, 0).ConversionRate)
}

func TestPropertyTypeShare(t *testing.T) {
	got := PropertyTypeShare([]models.PropertyTypeAnalytics{
		{Type: "novostroyki", DealCount: 2},
		{Type: "unknown", DealCount: 1},
	})
	require.Len(t, got, 2)
	assert.Equal(t, "Новостройки", got[0].DisplayName)
	assert.Equal(t, 66.7, got[0].Percentage)
	assert.Equal(t, "unknown", got[1].DisplayName)
	assert.Equal(t, 33.3, got[1].Percentage)

	assert.Empty(t, PropertyTypeShare(nil))
	zero := PropertyTypeShare([]models.PropertyTypeAnalytics{{Type: "none"}})
	assert.Equal(t, "Без объекта", zero[0].DisplayName)
	assert.Zero(t, zero[0].Percentage)
}
