package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"propertystore/internal/models"
)

type PipelineRepository struct {
	db *sql.DB
}

func NewPipelineRepository(db *sql.DB) *PipelineRepository {
	return &PipelineRepository{db: db}
}

func (r *PipelineRepository) Create(ctx context.Context, p *models.Pipeline) error {
	const q = `
		INSERT INTO pipelines (id, name, description, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := r.db.ExecContext(ctx, q, p.ID, p.Name, p.Description, p.IsActive, p.CreatedAt); err != nil {
		return fmt.Errorf("создание воронки: %w", err)
	}
	return nil
}

func (r *PipelineRepository) List(ctx context.Context) ([]models.Pipeline, error) {
	const q = `
		SELECT id, name, description, is_active, created_at
		FROM pipelines
		ORDER BY created_at
	`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("список воронок: %w", err)
	}
	defer rows.Close()

	out := []models.Pipeline{}
	for rows.Next() {
		var p models.Pipeline
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.IsActive, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("чтение воронки: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PipelineRepository) GetByID(ctx context.Context, id string) (*models.Pipeline, error) {
	const q = `
		SELECT id, name, description, is_active, created_at
		FROM pipelines
		WHERE id = $1
	`
	var p models.Pipeline
	err := r.db.QueryRowContext(ctx, q, id).Scan(&p.ID, &p.Name, &p.Description, &p.IsActive, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("получение воронки: %w", err)
	}
	return &p, nil
}

const stageColumns = `id, name, description, stage_order, expected_duration_seconds, pipeline_id, created_at`

func scanStage(s scanner) (models.DealStage, error) {
	var (
		st      models.DealStage
		seconds int64
	)
	err := s.Scan(&st.ID, &st.Name, &st.Description, &st.Order, &seconds, &st.PipelineID, &st.CreatedAt)
	st.ExpectedDuration = models.Duration(time.Duration(seconds) * time.Second)
	return st, err
}

// ListStages returns stages of a pipeline ordered by stage order.
func (r *PipelineRepository) ListStages(ctx context.Context, pipelineID string) ([]models.DealStage, error) {
	q := `SELECT ` + stageColumns + ` FROM deal_stages WHERE pipeline_id = $1 ORDER BY stage_order`
	rows, err := r.db.QueryContext(ctx, q, pipelineID)
	if err != nil {
		return nil, fmt.Errorf("список этапов: %w", err)
	}
	defer rows.Close()

	out := []models.DealStage{}
	for rows.Next() {
		st, err := scanStage(rows)
		if err != nil {
			return nil, fmt.Errorf("чтение этапа: %w", err)
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

func (r *PipelineRepository) GetStage(ctx context.Context, id string) (*models.DealStage, error) {
	q := `SELECT ` + stageColumns + ` FROM deal_stages WHERE id = $1`
	st, err := scanStage(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("получение этапа: %w", err)
	}
	return &st, nil
}

func (r *PipelineRepository) CreateStage(ctx context.Context, st *models.DealStage) error {
	q := `INSERT INTO deal_stages (` + stageColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.db.ExecContext(ctx, q,
		st.ID, st.Name, st.Description, st.Order,
		int64(st.ExpectedDuration.Std()/time.Second), st.PipelineID, st.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("создание этапа: %w", err)
	}
	return nil
}
