package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"propertystore/internal/models"
)

type DocumentRepository struct {
	db *sql.DB
}

func NewDocumentRepository(db *sql.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

const documentColumns = `id, client_id, deal_id, file_name, storage_key, file_url, file_size,
	file_type, category, uploaded_by, uploaded_at`

func scanDocument(s scanner) (*models.ClientDocument, error) {
	d := &models.ClientDocument{}
	err := s.Scan(&d.ID, &d.ClientID, &d.DealID, &d.FileName, &d.StorageKey, &d.FileURL, &d.FileSize,
		&d.FileType, &d.Category, &d.UploadedBy, &d.UploadedAt)
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (r *DocumentRepository) Create(ctx context.Context, d *models.ClientDocument) error {
	q := `INSERT INTO client_documents (` + documentColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.db.ExecContext(ctx, q, d.ID, d.ClientID, d.DealID, d.FileName, d.StorageKey, d.FileURL, d.FileSize,
		d.FileType, d.Category, d.UploadedBy, d.UploadedAt)
	if err != nil {
		return fmt.Errorf("создание документа: %w", err)
	}
	return nil
}

func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*models.ClientDocument, error) {
	q := `SELECT ` + documentColumns + ` FROM client_documents WHERE id = $1`
	d, err := scanDocument(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("получение документа: %w", err)
	}
	return d, nil
}

// ListByClient возвращает документы клиента, опционально только по одной сделке.
func (r *DocumentRepository) ListByClient(ctx context.Context, clientID string, dealID *string) ([]models.ClientDocument, error) {
	q := `SELECT ` + documentColumns + ` FROM client_documents WHERE client_id = $1`
	args := []any{clientID}
	if dealID != nil {
		q += ` AND deal_id = $2`
		args = append(args, *dealID)
	}
	q += ` ORDER BY uploaded_at DESC`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("список документов: %w", err)
	}
	defer rows.Close()

	out := []models.ClientDocument{}
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("чтение документа: %w", err)
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

func (r *DocumentRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM client_documents WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("удаление документа: %w", err)
	}
	return affectedOrNotFound(res, "документ", id)
}
