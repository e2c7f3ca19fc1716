package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"propertystore/internal/models"
)

// AnalyticsRepository считает агрегаты по воронке на стороне БД.
type AnalyticsRepository struct {
	db *sqlx.DB
}

func NewAnalyticsRepository(db *sql.DB) *AnalyticsRepository {
	return &AnalyticsRepository{db: sqlx.NewDb(db, "postgres")}
}

func (r *AnalyticsRepository) PipelineSummary(ctx context.Context, pipelineID string) (*models.DealAnalytics, error) {
	const q = `
		SELECT
			COUNT(*)                                         AS total_deals,
			COUNT(*) FILTER (WHERE is_active)                AS active_deals,
			COUNT(*) FILTER (WHERE NOT is_active)            AS completed_deals,
			COALESCE(SUM(deal_amount), 0)::float8            AS total_deal_amount,
			COALESCE(AVG(deal_amount), 0)::float8            AS average_deal_amount,
			COALESCE(AVG(EXTRACT(EPOCH FROM (closed_at - created_at)))
				FILTER (WHERE closed_at IS NOT NULL), 0)::float8 AS average_duration_seconds
		FROM deals
		WHERE pipeline_id = $1
	`
	var a models.DealAnalytics
	if err := r.db.GetContext(ctx, &a, q, pipelineID); err != nil {
		return nil, fmt.Errorf("аналитика воронки: %w", err)
	}
	a.AverageDealDuration = FormatSeconds(a.AverageDurationSeconds)
	return &a, nil
}

// StageStats возвращает по каждому этапу воронки число активных сделок,
// среднее время нахождения в этапе и число просроченных, по порядку этапов.
func (r *AnalyticsRepository) StageStats(ctx context.Context, pipelineID string, now time.Time) ([]models.DealStageAnalytics, error) {
	const q = `
		SELECT
			s.id          AS stage_id,
			s.name        AS stage_name,
			s.stage_order AS stage_order,
			COUNT(d.id)   AS deal_count,
			COALESCE(AVG(EXTRACT(EPOCH FROM ($2 - d.stage_started_at))), 0)::float8 AS average_seconds,
			COUNT(d.id) FILTER (WHERE d.stage_deadline IS NOT NULL AND d.stage_deadline < $2) AS overdue_deals
		FROM deal_stages s
		LEFT JOIN deals d ON d.current_stage_id = s.id AND d.is_active
		WHERE s.pipeline_id = $1
		GROUP BY s.id, s.name, s.stage_order
		ORDER BY s.stage_order
	`
	out := []models.DealStageAnalytics{}
	if err := r.db.SelectContext(ctx, &out, q, pipelineID, now); err != nil {
		return nil, fmt.Errorf("аналитика этапов: %w", err)
	}
	for i := range out {
		out[i].AverageTimeInStage = FormatSeconds(out[i].AverageSeconds)
	}
	return out, nil
}

// PropertyTypes группирует сделки воронки по типу связанного объекта.
func (r *AnalyticsRepository) PropertyTypes(ctx context.Context, pipelineID string) ([]models.PropertyTypeAnalytics, error) {
	const q = `
		SELECT
			COALESCE(p.type, 'none') AS type,
			COUNT(d.id)              AS deal_count
		FROM deals d
		LEFT JOIN properties p ON p.id = d.property_id
		WHERE d.pipeline_id = $1
		GROUP BY 1
		ORDER BY deal_count DESC, type
	`
	out := []models.PropertyTypeAnalytics{}
	if err := r.db.SelectContext(ctx, &out, q, pipelineID); err != nil {
		return nil, fmt.Errorf("аналитика по типам недвижимости: %w", err)
	}
	return out, nil
}

// FormatSeconds renders a duration as "d.hh:mm:ss" the way the web UI expects.
func FormatSeconds(sec float64) string {
	d := time.Duration(sec * float64(time.Second)).Round(time.Second)
	days := int(d / (24 * time.Hour))
	d -= time.Duration(days) * 24 * time.Hour
	h := int(d / time.Hour)
	d -= time.Duration(h) * time.Hour
	m := int(d / time.Minute)
	d -= time.Duration(m) * time.Minute
	s := int(d / time.Second)
	if days > 0 {
		return fmt.Sprintf("%d.%02d:%02d:%02d", days, h, m, s)
	}
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
