package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"propertystore/internal/models"
)

type DealRepository struct {
	db *sql.DB
}

func NewDealRepository(db *sql.DB) *DealRepository {
	return &DealRepository{db: db}
}

const dealColumns = `id, title, notes, deal_amount, expected_close_date, client_id, pipeline_id,
	current_stage_id, property_id, request_id, stage_started_at, stage_deadline,
	created_at, updated_at, closed_at, is_active`

func scanDeal(s scanner) (*models.Deal, error) {
	d := &models.Deal{}
	err := s.Scan(
		&d.ID, &d.Title, &d.Notes, &d.DealAmount, &d.ExpectedCloseDate,
		&d.ClientID, &d.PipelineID, &d.CurrentStageID, &d.PropertyID, &d.RequestID,
		&d.StageStartedAt, &d.StageDeadline, &d.CreatedAt, &d.UpdatedAt, &d.ClosedAt, &d.IsActive,
	)
	if err != nil {
		return nil, err
	}
	return d, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertDeal(ctx context.Context, ex execer, d *models.Deal) error {
	q := `INSERT INTO deals (` + dealColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`
	_, err := ex.ExecContext(ctx, q,
		d.ID, d.Title, d.Notes, d.DealAmount, d.ExpectedCloseDate,
		d.ClientID, d.PipelineID, d.CurrentStageID, d.PropertyID, d.RequestID,
		d.StageStartedAt, d.StageDeadline, d.CreatedAt, d.UpdatedAt, d.ClosedAt, d.IsActive,
	)
	if err != nil {
		return fmt.Errorf("создание сделки: %w", err)
	}
	return nil
}

func insertHistory(ctx context.Context, ex execer, h models.DealHistory) error {
	const q = `
		INSERT INTO deal_history (id, deal_id, from_stage_id, to_stage_id, changed_at, notes)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	if _, err := ex.ExecContext(ctx, q, h.ID, h.DealID, h.FromStageID, h.ToStageID, h.ChangedAt, h.Notes); err != nil {
		return fmt.Errorf("запись истории сделки: %w", err)
	}
	return nil
}

// Create сохраняет сделку вместе с её начальной историей.
func (r *DealRepository) Create(ctx context.Context, d *models.Deal) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := insertDeal(ctx, tx, d); err != nil {
			return err
		}
		for _, h := range d.History {
			if err := insertHistory(ctx, tx, h); err != nil {
				return err
			}
		}
		return nil
	})
}

// CreateFromRequest создаёт сделку и закрывает заявку в одной транзакции.
// Заявка блокируется, уже завершённая заявка даёт ErrRequestCompleted.
func (r *DealRepository) CreateFromRequest(ctx context.Context, d *models.Deal, requestID string) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		var status string
		err := tx.QueryRowContext(ctx, `SELECT status FROM requests WHERE id = $1 FOR UPDATE`, requestID).Scan(&status)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("заявка id=%s: %w", requestID, ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("блокировка заявки: %w", err)
		}
		if models.RequestStatus(status) == models.RequestCompleted {
			return ErrRequestCompleted
		}
		if err := insertDeal(ctx, tx, d); err != nil {
			return err
		}
		for _, h := range d.History {
			if err := insertHistory(ctx, tx, h); err != nil {
				return err
			}
		}
		if _, err := tx.ExecContext(ctx, `UPDATE requests SET status = $1 WHERE id = $2`, models.RequestCompleted, requestID); err != nil {
			return fmt.Errorf("обновление статуса заявки: %w", err)
		}
		return nil
	})
}

func (r *DealRepository) GetByID(ctx context.Context, id string) (*models.Deal, error) {
	q := `SELECT ` + dealColumns + ` FROM deals WHERE id = $1`
	d, err := scanDeal(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("получение сделки по id: %w", err)
	}
	return d, nil
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func loadHistory(ctx context.Context, q querier, dealID string) ([]models.DealHistory, error) {
	const sel = `
		SELECT id, deal_id, from_stage_id, to_stage_id, changed_at, notes
		FROM deal_history
		WHERE deal_id = $1
		ORDER BY changed_at, (from_stage_id IS NOT NULL)
	`
	rows, err := q.QueryContext(ctx, sel, dealID)
	if err != nil {
		return nil, fmt.Errorf("история сделки: %w", err)
	}
	defer rows.Close()

	out := []models.DealHistory{}
	for rows.Next() {
		var h models.DealHistory
		if err := rows.Scan(&h.ID, &h.DealID, &h.FromStageID, &h.ToStageID, &h.ChangedAt, &h.Notes); err != nil {
			return nil, fmt.Errorf("чтение истории: %w", err)
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

// History возвращает переходы сделки в хронологическом порядке.
func (r *DealRepository) History(ctx context.Context, dealID string) ([]models.DealHistory, error) {
	return loadHistory(ctx, r.db, dealID)
}

func (r *DealRepository) List(ctx context.Context, f models.DealFilter) ([]models.Deal, error) {
	q := `SELECT ` + dealColumns + ` FROM deals WHERE 1=1`
	args := []any{}
	i := 1
	if f.PipelineID != nil {
		q += fmt.Sprintf(" AND pipeline_id = $%d", i)
		args = append(args, *f.PipelineID)
		i++
	}
	if f.ClientID != nil {
		q += fmt.Sprintf(" AND client_id = $%d", i)
		args = append(args, *f.ClientID)
		i++
	}
	if f.StageID != nil {
		q += fmt.Sprintf(" AND current_stage_id = $%d", i)
		args = append(args, *f.StageID)
		i++
	}
	if f.ActiveOnly {
		q += " AND is_active = TRUE"
	}
	if f.CreatedFrom != nil {
		q += fmt.Sprintf(" AND created_at >= $%d", i)
		args = append(args, *f.CreatedFrom)
		i++
	}
	if f.CreatedTo != nil {
		q += fmt.Sprintf(" AND created_at <= $%d", i)
		args = append(args, *f.CreatedTo)
		i++
	}
	q += " ORDER BY created_at DESC"
	if f.Limit > 0 {
		q += fmt.Sprintf(" LIMIT $%d OFFSET $%d", i, i+1)
		args = append(args, f.Limit, f.Offset)
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("список сделок: %w", err)
	}
	defer rows.Close()

	out := []models.Deal{}
	for rows.Next() {
		d, err := scanDeal(rows)
		if err != nil {
			return nil, fmt.Errorf("чтение сделки: %w", err)
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

// Update меняет редактируемые поля. Этап и статус меняются только через Transition.
func (r *DealRepository) Update(ctx context.Context, d *models.Deal) error {
	const q = `
		UPDATE deals
		SET title=$1, notes=$2, deal_amount=$3, expected_close_date=$4,
		    client_id=$5, property_id=$6, updated_at=$7
		WHERE id=$8
	`
	res, err := r.db.ExecContext(ctx, q, d.Title, d.Notes, d.DealAmount, d.ExpectedCloseDate, d.ClientID, d.PropertyID, d.UpdatedAt, d.ID)
	if err != nil {
		return fmt.Errorf("обновление сделки: %w", err)
	}
	return affectedOrNotFound(res, "сделка", d.ID)
}

// Transition блокирует строку сделки, загружает её историю, применяет mutate и сохраняет результат
// вместе с новой записью истории (если mutate её вернул). Конкурентные
// переходы одной сделки выполняются последовательно.
func (r *DealRepository) Transition(ctx context.Context, id string, mutate func(d *models.Deal) (*models.DealHistory, error)) (*models.Deal, error) {
	var out *models.Deal
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		q := `SELECT ` + dealColumns + ` FROM deals WHERE id = $1 FOR UPDATE`
		d, err := scanDeal(tx.QueryRowContext(ctx, q, id))
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("сделка id=%s: %w", id, ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("блокировка сделки: %w", err)
		}
		if d.History, err = loadHistory(ctx, tx, id); err != nil {
			return err
		}

		h, err := mutate(d)
		if err != nil {
			return err
		}

		const upd = `
			UPDATE deals
			SET current_stage_id=$1, stage_started_at=$2, stage_deadline=$3,
			    updated_at=$4, closed_at=$5, is_active=$6
			WHERE id=$7
		`
		if _, err := tx.ExecContext(ctx, upd, d.CurrentStageID, d.StageStartedAt, d.StageDeadline, d.UpdatedAt, d.ClosedAt, d.IsActive, d.ID); err != nil {
			return fmt.Errorf("обновление этапа сделки: %w", err)
		}
		if h != nil {
			if err := insertHistory(ctx, tx, *h); err != nil {
				return err
			}
		}
		out = d
		return nil
	})
	return out, err
}

func (r *DealRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM deals WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("удаление сделки: %w", err)
	}
	return affectedOrNotFound(res, "сделка", id)
}

// ListOverdue возвращает активные сделки с истёкшим сроком этапа.
func (r *DealRepository) ListOverdue(ctx context.Context, now time.Time) ([]models.Deal, error) {
	q := `SELECT ` + dealColumns + ` FROM deals
		WHERE is_active = TRUE AND stage_deadline IS NOT NULL AND stage_deadline < $1
		ORDER BY stage_deadline`
	rows, err := r.db.QueryContext(ctx, q, now)
	if err != nil {
		return nil, fmt.Errorf("просроченные сделки: %w", err)
	}
	defer rows.Close()

	out := []models.Deal{}
	for rows.Next() {
		d, err := scanDeal(rows)
		if err != nil {
			return nil, fmt.Errorf("чтение сделки: %w", err)
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}
