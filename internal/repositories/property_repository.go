package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"propertystore/internal/models"
)

type PropertyRepository struct {
	db *sql.DB
}

func NewPropertyRepository(db *sql.DB) *PropertyRepository {
	return &PropertyRepository{db: db}
}

const propertyColumns = `id, title, type, price, address, area, rooms, description, main_photo_url, is_active, created_at`

func scanProperty(s scanner) (*models.Property, error) {
	p := &models.Property{}
	err := s.Scan(&p.ID, &p.Title, &p.Type, &p.Price, &p.Address, &p.Area, &p.Rooms,
		&p.Description, &p.MainPhotoURL, &p.IsActive, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	p.Images = []models.PropertyImage{}
	return p, nil
}

func insertImage(ctx context.Context, ex execer, propertyID string, img models.PropertyImage) error {
	const q = `INSERT INTO property_images (id, property_id, url, is_main, image_order) VALUES ($1, $2, $3, $4, $5)`
	if _, err := ex.ExecContext(ctx, q, img.ID, propertyID, img.URL, img.IsMain, img.Order); err != nil {
		return fmt.Errorf("добавление фото: %w", err)
	}
	return nil
}

func (r *PropertyRepository) Create(ctx context.Context, p *models.Property) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		q := `INSERT INTO properties (` + propertyColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
		_, err := tx.ExecContext(ctx, q, p.ID, p.Title, p.Type, p.Price, p.Address, p.Area, p.Rooms,
			p.Description, p.MainPhotoURL, p.IsActive, p.CreatedAt)
		if err != nil {
			return fmt.Errorf("создание объекта: %w", err)
		}
		for _, img := range p.Images {
			if err := insertImage(ctx, tx, p.ID, img); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *PropertyRepository) Update(ctx context.Context, p *models.Property) error {
	const q = `
		UPDATE properties
		SET title=$1, type=$2, price=$3, address=$4, area=$5, rooms=$6, description=$7, is_active=$8
		WHERE id=$9
	`
	res, err := r.db.ExecContext(ctx, q, p.Title, p.Type, p.Price, p.Address, p.Area, p.Rooms, p.Description, p.IsActive, p.ID)
	if err != nil {
		return fmt.Errorf("обновление объекта: %w", err)
	}
	return affectedOrNotFound(res, "объект", p.ID)
}

func (r *PropertyRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM properties WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("удаление объекта: %w", err)
	}
	return affectedOrNotFound(res, "объект", id)
}

func (r *PropertyRepository) GetByID(ctx context.Context, id string) (*models.Property, error) {
	q := `SELECT ` + propertyColumns + ` FROM properties WHERE id = $1`
	p, err := scanProperty(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("получение объекта: %w", err)
	}
	if err := r.attachImages(ctx, []*models.Property{p}); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *PropertyRepository) List(ctx context.Context, f models.PropertyFilter) ([]models.Property, error) {
	q := `SELECT ` + propertyColumns + ` FROM properties WHERE 1=1`
	args := []any{}
	i := 1
	if f.OnlyActive {
		q += " AND is_active = TRUE"
	}
	if len(f.Types) > 0 {
		q += fmt.Sprintf(" AND type = ANY($%d)", i)
		args = append(args, pq.Array(f.Types))
		i++
	}
	if f.PriceMin > 0 {
		q += fmt.Sprintf(" AND price >= $%d", i)
		args = append(args, f.PriceMin)
		i++
	}
	if f.PriceMax > 0 {
		q += fmt.Sprintf(" AND price <= $%d", i)
		args = append(args, f.PriceMax)
		i++
	}
	if f.AreaMin > 0 {
		q += fmt.Sprintf(" AND area >= $%d", i)
		args = append(args, f.AreaMin)
		i++
	}
	if f.AreaMax > 0 {
		q += fmt.Sprintf(" AND area <= $%d", i)
		args = append(args, f.AreaMax)
		i++
	}
	if len(f.Rooms) > 0 {
		rooms := make([]int64, len(f.Rooms))
		for k, n := range f.Rooms {
			rooms[k] = int64(n)
		}
		q += fmt.Sprintf(" AND rooms = ANY($%d)", i)
		args = append(args, pq.Array(rooms))
	}
	q += " ORDER BY created_at DESC"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("список объектов: %w", err)
	}
	var list []*models.Property
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("чтение объекта: %w", err)
		}
		list = append(list, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.attachImages(ctx, list); err != nil {
		return nil, err
	}

	out := make([]models.Property, 0, len(list))
	for _, p := range list {
		out = append(out, *p)
	}
	return out, nil
}

func (r *PropertyRepository) attachImages(ctx context.Context, props []*models.Property) error {
	if len(props) == 0 {
		return nil
	}
	ids := make([]string, len(props))
	byID := make(map[string]*models.Property, len(props))
	for i, p := range props {
		ids[i] = p.ID
		byID[p.ID] = p
	}
	const q = `
		SELECT id, property_id, url, is_main, image_order
		FROM property_images
		WHERE property_id = ANY($1)
		ORDER BY property_id, image_order
	`
	rows, err := r.db.QueryContext(ctx, q, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("фото объектов: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			img        models.PropertyImage
			propertyID string
		)
		if err := rows.Scan(&img.ID, &propertyID, &img.URL, &img.IsMain, &img.Order); err != nil {
			return fmt.Errorf("чтение фото: %w", err)
		}
		if p := byID[propertyID]; p != nil {
			p.Images = append(p.Images, img)
		}
	}
	return rows.Err()
}

// AddImage добавляет фото в конец галереи. Первое фото становится главным.
func (r *PropertyRepository) AddImage(ctx context.Context, propertyID string, img *models.PropertyImage) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		var count int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM property_images WHERE property_id = $1`, propertyID).Scan(&count); err != nil {
			return fmt.Errorf("подсчёт фото: %w", err)
		}
		img.Order = count
		if count == 0 {
			img.IsMain = true
		}
		if img.IsMain && count > 0 {
			if _, err := tx.ExecContext(ctx, `UPDATE property_images SET is_main = FALSE WHERE property_id = $1`, propertyID); err != nil {
				return fmt.Errorf("сброс главного фото: %w", err)
			}
		}
		if err := insertImage(ctx, tx, propertyID, *img); err != nil {
			return err
		}
		if img.IsMain {
			if _, err := tx.ExecContext(ctx, `UPDATE properties SET main_photo_url = $1 WHERE id = $2`, img.URL, propertyID); err != nil {
				return fmt.Errorf("обновление главного фото: %w", err)
			}
		}
		return nil
	})
}

// DeleteImage удаляет фото и возвращает его URL.
func (r *PropertyRepository) DeleteImage(ctx context.Context, propertyID, imageID string) (string, error) {
	var url string
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		var wasMain bool
		err := tx.QueryRowContext(ctx,
			`DELETE FROM property_images WHERE id = $1 AND property_id = $2 RETURNING url, is_main`,
			imageID, propertyID,
		).Scan(&url, &wasMain)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("фото id=%s: %w", imageID, ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("удаление фото: %w", err)
		}
		if wasMain {
			const q = `
				UPDATE properties SET main_photo_url = (
					SELECT url FROM property_images WHERE property_id = $1 ORDER BY image_order LIMIT 1
				) WHERE id = $1
			`
			if _, err := tx.ExecContext(ctx, q, propertyID); err != nil {
				return fmt.Errorf("обновление главного фото: %w", err)
			}
		}
		return nil
	})
	return url, err
}

func (r *PropertyRepository) SetMainImage(ctx context.Context, propertyID, imageID string) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		var url string
		err := tx.QueryRowContext(ctx,
			`SELECT url FROM property_images WHERE id = $1 AND property_id = $2`, imageID, propertyID,
		).Scan(&url)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("фото id=%s: %w", imageID, ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("получение фото: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `UPDATE property_images SET is_main = (id = $1) WHERE property_id = $2`, imageID, propertyID); err != nil {
			return fmt.Errorf("смена главного фото: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `UPDATE properties SET main_photo_url = $1 WHERE id = $2`, url, propertyID); err != nil {
			return fmt.Errorf("обновление главного фото: %w", err)
		}
		return nil
	})
}
