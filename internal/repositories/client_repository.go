package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"propertystore/internal/models"
)

type ClientRepository struct {
	db *sql.DB
}

func NewClientRepository(db *sql.DB) *ClientRepository {
	return &ClientRepository{db: db}
}

const clientColumns = `id, name, phone, email, source, notes, created_at,
	has_personal_account, is_account_active, consent_to_personal_data`

func scanClient(s scanner) (*models.Client, error) {
	c := &models.Client{}
	err := s.Scan(&c.ID, &c.Name, &c.Phone, &c.Email, &c.Source, &c.Notes, &c.CreatedAt,
		&c.HasPersonalAccount, &c.IsAccountActive, &c.ConsentToPersonalData)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *ClientRepository) Create(ctx context.Context, c *models.Client) error {
	q := `INSERT INTO clients (` + clientColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.db.ExecContext(ctx, q, c.ID, c.Name, c.Phone, c.Email, c.Source, c.Notes, c.CreatedAt,
		c.HasPersonalAccount, c.IsAccountActive, c.ConsentToPersonalData)
	if err != nil {
		return fmt.Errorf("create client: %w", err)
	}
	return nil
}

func (r *ClientRepository) Update(ctx context.Context, c *models.Client) error {
	const q = `
		UPDATE clients
		SET name=$1, phone=$2, email=$3, source=$4, notes=$5
		WHERE id=$6
	`
	res, err := r.db.ExecContext(ctx, q, c.Name, c.Phone, c.Email, c.Source, c.Notes, c.ID)
	if err != nil {
		return fmt.Errorf("update client: %w", err)
	}
	return affectedOrNotFound(res, "клиент", c.ID)
}

func (r *ClientRepository) GetByID(ctx context.Context, id string) (*models.Client, error) {
	q := `SELECT ` + clientColumns + ` FROM clients WHERE id = $1`
	c, err := scanClient(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get client: %w", err)
	}
	return c, nil
}

// GetByPhone возвращает самого раннего клиента с этим телефоном.
func (r *ClientRepository) GetByPhone(ctx context.Context, phone string) (*models.Client, error) {
	q := `SELECT ` + clientColumns + ` FROM clients WHERE phone = $1 ORDER BY created_at LIMIT 1`
	c, err := scanClient(r.db.QueryRowContext(ctx, q, phone))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get client by phone: %w", err)
	}
	return c, nil
}

func (r *ClientRepository) List(ctx context.Context, limit, offset int) ([]models.Client, error) {
	q := `SELECT ` + clientColumns + ` FROM clients ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	rows, err := r.db.QueryContext(ctx, q, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	defer rows.Close()

	out := []models.Client{}
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("scan client: %w", err)
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (r *ClientRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM clients WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete client: %w", err)
	}
	return affectedOrNotFound(res, "клиент", id)
}

func (r *ClientRepository) SetConsent(ctx context.Context, id string, consent bool) error {
	res, err := r.db.ExecContext(ctx, `UPDATE clients SET consent_to_personal_data = $1 WHERE id = $2`, consent, id)
	if err != nil {
		return fmt.Errorf("update client consent: %w", err)
	}
	return affectedOrNotFound(res, "клиент", id)
}
