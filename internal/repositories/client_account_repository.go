package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"propertystore/internal/models"
)

type ClientAccountRepository struct {
	db *sql.DB
}

func NewClientAccountRepository(db *sql.DB) *ClientAccountRepository {
	return &ClientAccountRepository{db: db}
}

const accountColumns = `client_id, login, password_hash, is_active, must_change_password,
	consent_given, consent_at, consent_ip, consent_user_agent, created_at`

func scanAccount(s scanner) (*models.ClientAccount, error) {
	a := &models.ClientAccount{}
	err := s.Scan(&a.ClientID, &a.Login, &a.PasswordHash, &a.IsActive, &a.MustChangePassword,
		&a.ConsentGiven, &a.ConsentAt, &a.ConsentIP, &a.ConsentUserAgent, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// Activate создаёт (или пересоздаёт) личный кабинет клиента и отмечает это
// в карточке клиента.
func (r *ClientAccountRepository) Activate(ctx context.Context, a *models.ClientAccount) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		const q = `
			INSERT INTO client_accounts (client_id, login, password_hash, is_active, must_change_password, created_at)
			VALUES ($1, $2, $3, TRUE, TRUE, $4)
			ON CONFLICT (client_id) DO UPDATE
			SET login = EXCLUDED.login, password_hash = EXCLUDED.password_hash,
			    is_active = TRUE, must_change_password = TRUE
		`
		if _, err := tx.ExecContext(ctx, q, a.ClientID, a.Login, a.PasswordHash, a.CreatedAt); err != nil {
			return fmt.Errorf("активация ЛК: %w", err)
		}
		res, err := tx.ExecContext(ctx,
			`UPDATE clients SET has_personal_account = TRUE, is_account_active = TRUE WHERE id = $1`, a.ClientID)
		if err != nil {
			return fmt.Errorf("обновление клиента: %w", err)
		}
		return affectedOrNotFound(res, "клиент", a.ClientID)
	})
}

func (r *ClientAccountRepository) GetByLogin(ctx context.Context, login string) (*models.ClientAccount, error) {
	q := `SELECT ` + accountColumns + ` FROM client_accounts WHERE LOWER(login) = LOWER($1)`
	a, err := scanAccount(r.db.QueryRowContext(ctx, q, login))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("получение ЛК: %w", err)
	}
	return a, nil
}

func (r *ClientAccountRepository) GetByClientID(ctx context.Context, clientID string) (*models.ClientAccount, error) {
	q := `SELECT ` + accountColumns + ` FROM client_accounts WHERE client_id = $1`
	a, err := scanAccount(r.db.QueryRowContext(ctx, q, clientID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("получение ЛК: %w", err)
	}
	return a, nil
}

func (r *ClientAccountRepository) UpdatePassword(ctx context.Context, clientID, hash string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE client_accounts SET password_hash = $1, must_change_password = FALSE WHERE client_id = $2`, hash, clientID)
	if err != nil {
		return fmt.Errorf("смена пароля: %w", err)
	}
	return affectedOrNotFound(res, "ЛК", clientID)
}

func (r *ClientAccountRepository) SaveConsent(ctx context.Context, clientID string, at time.Time, ip, userAgent string) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		const q = `
			UPDATE client_accounts
			SET consent_given = TRUE, consent_at = $1, consent_ip = $2, consent_user_agent = $3
			WHERE client_id = $4
		`
		res, err := tx.ExecContext(ctx, q, at, ip, userAgent, clientID)
		if err != nil {
			return fmt.Errorf("сохранение согласия: %w", err)
		}
		if err := affectedOrNotFound(res, "ЛК", clientID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `UPDATE clients SET consent_to_personal_data = TRUE WHERE id = $1`, clientID); err != nil {
			return fmt.Errorf("обновление клиента: %w", err)
		}
		return nil
	})
}
