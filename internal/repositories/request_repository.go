package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"propertystore/internal/models"
)

var ErrRequestCompleted = errors.New("request is already completed")

type RequestRepository struct {
	db *sql.DB
}

func NewRequestRepository(db *sql.DB) *RequestRepository {
	return &RequestRepository{db: db}
}

const requestSelect = `
	SELECT r.id, r.client_id, r.property_id, r.type, r.status, r.message, r.created_at,
	       c.id, c.name, c.phone, c.email, c.source, c.notes, c.created_at,
	       c.has_personal_account, c.is_account_active, c.consent_to_personal_data
	FROM requests r
	JOIN clients c ON c.id = r.client_id
`

func scanRequest(s scanner) (*models.Request, error) {
	req := &models.Request{}
	c := &models.Client{}
	err := s.Scan(
		&req.ID, &req.ClientID, &req.PropertyID, &req.Type, &req.Status, &req.Message, &req.CreatedAt,
		&c.ID, &c.Name, &c.Phone, &c.Email, &c.Source, &c.Notes, &c.CreatedAt,
		&c.HasPersonalAccount, &c.IsAccountActive, &c.ConsentToPersonalData,
	)
	if err != nil {
		return nil, err
	}
	req.Client = c
	return req, nil
}

func (r *RequestRepository) Create(ctx context.Context, req *models.Request) error {
	const q = `
		INSERT INTO requests (id, client_id, property_id, type, status, message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, q, req.ID, req.ClientID, req.PropertyID, req.Type, req.Status, req.Message, req.CreatedAt)
	if err != nil {
		return fmt.Errorf("создание заявки: %w", err)
	}
	return nil
}

func (r *RequestRepository) GetByID(ctx context.Context, id string) (*models.Request, error) {
	req, err := scanRequest(r.db.QueryRowContext(ctx, requestSelect+` WHERE r.id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("получение заявки: %w", err)
	}
	return req, nil
}

func (r *RequestRepository) list(ctx context.Context, where string, args ...any) ([]models.Request, error) {
	rows, err := r.db.QueryContext(ctx, requestSelect+where+` ORDER BY r.created_at DESC`, args...)
	if err != nil {
		return nil, fmt.Errorf("список заявок: %w", err)
	}
	defer rows.Close()

	out := []models.Request{}
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("чтение заявки: %w", err)
		}
		out = append(out, *req)
	}
	return out, rows.Err()
}

func (r *RequestRepository) List(ctx context.Context) ([]models.Request, error) {
	return r.list(ctx, "")
}

func (r *RequestRepository) ListByStatus(ctx context.Context, status models.RequestStatus) ([]models.Request, error) {
	return r.list(ctx, ` WHERE r.status = $1`, status)
}

func (r *RequestRepository) ListByClient(ctx context.Context, clientID string) ([]models.Request, error) {
	return r.list(ctx, ` WHERE r.client_id = $1`, clientID)
}

func (r *RequestRepository) UpdateStatus(ctx context.Context, id string, status models.RequestStatus) error {
	res, err := r.db.ExecContext(ctx, `UPDATE requests SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("обновление статуса заявки: %w", err)
	}
	return affectedOrNotFound(res, "заявка", id)
}

func (r *RequestRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM requests`).Scan(&n); err != nil {
		return 0, fmt.Errorf("подсчёт заявок: %w", err)
	}
	return n, nil
}
