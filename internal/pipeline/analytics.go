package pipeline

import (
	"math"
	"time"

	"propertystore/internal/models"
)

// Funnel computes conversion of every stage relative to the first one.
// The first stage is always 100%, even when it has no deals.
func Funnel(stages []models.DealStageAnalytics) []models.FunnelStage {
	out := make([]models.FunnelStage, 0, len(stages))
	for i, s := range stages {
		conv := 100.0
		if i > 0 {
			if first := stages[0].DealCount; first > 0 {
				conv = float64(s.DealCount) / float64(first) * 100
			} else {
				conv = 0
			}
		}
		out = append(out, models.FunnelStage{
			StageID:    s.StageID,
			StageName:  s.StageName,
			Count:      s.DealCount,
			Conversion: conv,
		})
	}
	return out
}

// PropertyTypeShare fills display names and the share of each type in
// percent, rounded to one decimal.
func PropertyTypeShare(rows []models.PropertyTypeAnalytics) []models.PropertyTypeAnalytics {
	total := 0
	for _, r := range rows {
		total += r.DealCount
	}
	out := make([]models.PropertyTypeAnalytics, 0, len(rows))
	for _, r := range rows {
		r.DisplayName = r.Type
		if label, ok := models.PropertyTypeLabels[r.Type]; ok {
			r.DisplayName = label
		} else if r.Type == "none" {
			r.DisplayName = "Без объекта"
		}
		r.Percentage = 0
		if total > 0 {
			r.Percentage = math.Round(float64(r.DealCount)/float64(total)*1000) / 10
		}
		out = append(out, r)
	}
	return out
}

type Period string

const (
	Period7Days  Period = "7days"
	Period30Days Period = "30days"
	Period90Days Period = "90days"
	PeriodCustom Period = "custom"
)

// Window is an inclusive range of calendar days.
type Window struct {
	From time.Time
	To   time.Time
}

// WindowFor resolves a trend period. Custom ranges without both ends fall
// back to the last 30 days.
func WindowFor(p Period, now time.Time, from, to *time.Time) Window {
	switch p {
	case Period7Days:
		return Window{From: now.AddDate(0, 0, -7), To: now}
	case Period90Days:
		return Window{From: now.AddDate(0, 0, -90), To: now}
	case PeriodCustom:
		if from != nil && to != nil {
			return Window{From: *from, To: *to}
		}
	}
	return Window{From: now.AddDate(0, 0, -30), To: now}
}

func day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Trend buckets deals by creation day over w, zero-filling empty days.
// Completed counts deals created in the window that have a close timestamp.
func Trend(deals []models.Deal, w Window) []models.TrendPoint {
	start, end := day(w.From), day(w.To.In(w.From.Location()))
	if end.Before(start) {
		return []models.TrendPoint{}
	}

	var points []models.TrendPoint
	index := map[string]int{}
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		key := d.Format("2006-01-02")
		index[key] = len(points)
		points = append(points, models.TrendPoint{Date: key})
	}

	for _, deal := range deals {
		key := deal.CreatedAt.In(start.Location()).Format("2006-01-02")
		i, ok := index[key]
		if !ok {
			continue
		}
		points[i].Created++
		if deal.ClosedAt != nil {
			points[i].Completed++
		}
	}
	return points
}

// Dashboard computes the dashboard cards from the deal and request lists.
func Dashboard(deals []models.Deal, requestCount int) models.DashboardMetrics {
	m := models.DashboardMetrics{TotalDeals: len(deals)}
	var durations time.Duration
	for _, d := range deals {
		if d.IsActive {
			m.ActiveDeals++
		} else {
			m.CompletedDeals++
			if d.ClosedAt != nil {
				durations += d.ClosedAt.Sub(d.CreatedAt)
			}
		}
		if d.IsOverdue {
			m.OverdueDeals++
		}
		if d.DealAmount != nil {
			m.TotalDealAmount += *d.DealAmount
		}
	}
	if requestCount > 0 {
		m.ConversionRate = float64(m.CompletedDeals) / float64(requestCount) * 100
	}
	if m.CompletedDeals > 0 {
		m.AverageDealTime = (durations / time.Duration(m.CompletedDeals)).Hours() / 24
	}
	return m
}
