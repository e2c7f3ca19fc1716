package models

// DealAnalytics — сводка по воронке.
type DealAnalytics struct {
	TotalDeals          int     `json:"totalDeals" db:"total_deals"`
	ActiveDeals         int     `json:"activeDeals" db:"active_deals"`
	CompletedDeals      int     `json:"completedDeals" db:"completed_deals"`
	TotalDealAmount     float64 `json:"totalDealAmount" db:"total_deal_amount"`
	AverageDealAmount   float64 `json:"averageDealAmount" db:"average_deal_amount"`
	AverageDealDuration string  `json:"averageDealDuration" db:"-"`

	AverageDurationSeconds float64 `json:"-" db:"average_duration_seconds"`
}

type DealStageAnalytics struct {
	StageID            string  `json:"stageId" db:"stage_id"`
	StageName          string  `json:"stageName" db:"stage_name"`
	StageOrder         int     `json:"-" db:"stage_order"`
	DealCount          int     `json:"dealCount" db:"deal_count"`
	AverageTimeInStage string  `json:"averageTimeInStage" db:"-"`
	OverdueDeals       int     `json:"overdueDeals" db:"overdue_deals"`
	AverageSeconds     float64 `json:"-" db:"average_seconds"`
}

type DashboardMetrics struct {
	TotalDeals      int     `json:"totalDeals"`
	ActiveDeals     int     `json:"activeDeals"`
	CompletedDeals  int     `json:"completedDeals"`
	OverdueDeals    int     `json:"overdueDeals"`
	TotalDealAmount float64 `json:"totalDealAmount"`
	ConversionRate  float64 `json:"conversionRate"`
	AverageDealTime float64 `json:"averageDealTime"`
}

type FunnelStage struct {
	StageID    string  `json:"stageId"`
	StageName  string  `json:"stageName"`
	Count      int     `json:"count"`
	Conversion float64 `json:"conversion"`
}

type TrendPoint struct {
	Date      string `json:"date"`
	Created   int    `json:"created"`
	Completed int    `json:"completed"`
}

// PropertyTypeAnalytics — доля сделок воронки по типу объекта.
// Сделки без объекта попадают в тип "none".
type PropertyTypeAnalytics struct {
	Type        string  `json:"type" db:"type"`
	DisplayName string  `json:"displayName" db:"-"`
	DealCount   int     `json:"dealCount" db:"deal_count"`
	Percentage  float64 `json:"percentage" db:"-"`
}
