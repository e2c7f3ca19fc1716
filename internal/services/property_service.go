package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"propertystore/internal/models"
	"propertystore/internal/storage"
)

var imageTypes = []string{"image/jpeg", "image/png", "image/webp"}

type PropertyService struct {
	Repo    PropertyStore
	Storage storage.Storage
	Log     logrus.FieldLogger
	Now     func() time.Time
}

func NewPropertyService(repo PropertyStore, st storage.Storage, log logrus.FieldLogger) *PropertyService {
	return &PropertyService{Repo: repo, Storage: st, Log: log, Now: time.Now}
}

func validateProperty(in models.PropertyRequest) error {
	if strings.TrimSpace(in.Title) == "" {
		return invalid("title is required")
	}
	if !slices.Contains(models.PropertyTypes, in.Type) {
		return invalid("unknown property type %q", in.Type)
	}
	if in.Price < 0 || in.Area < 0 || in.Rooms < 0 {
		return invalid("price, area and rooms must not be negative")
	}
	return nil
}

func (s *PropertyService) Create(ctx context.Context, in models.PropertyRequest) (*models.Property, error) {
	if err := validateProperty(in); err != nil {
		return nil, err
	}
	p := &models.Property{
		ID:          uuid.NewString(),
		Title:       strings.TrimSpace(in.Title),
		Type:        in.Type,
		Price:       in.Price,
		Address:     in.Address,
		Area:        in.Area,
		Rooms:       in.Rooms,
		Description: in.Description,
		IsActive:    in.IsActive,
		CreatedAt:   s.Now(),
		Images:      []models.PropertyImage{},
	}
	mainSet := false
	for i, img := range in.Images {
		isMain := img.IsMain && !mainSet
		mainSet = mainSet || isMain
		p.Images = append(p.Images, models.PropertyImage{ID: uuid.NewString(), URL: img.URL, IsMain: isMain, Order: i})
	}
	if len(p.Images) > 0 && !mainSet {
		p.Images[0].IsMain = true
	}
	for _, img := range p.Images {
		if img.IsMain {
			url := img.URL
			p.MainPhotoURL = &url
		}
	}
	if err := s.Repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *PropertyService) Update(ctx context.Context, id string, in models.PropertyRequest) (*models.Property, error) {
	if err := validateProperty(in); err != nil {
		return nil, err
	}
	p, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Title = strings.TrimSpace(in.Title)
	p.Type = in.Type
	p.Price = in.Price
	p.Address = in.Address
	p.Area = in.Area
	p.Rooms = in.Rooms
	p.Description = in.Description
	p.IsActive = in.IsActive
	if err := s.Repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *PropertyService) GetByID(ctx context.Context, id string) (*models.Property, error) {
	p, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, notFound("объект", id)
	}
	return p, nil
}

func (s *PropertyService) List(ctx context.Context, f models.PropertyFilter) ([]models.Property, error) {
	for _, t := range f.Types {
		if !slices.Contains(models.PropertyTypes, t) {
			return nil, invalid("unknown property type %q", t)
		}
	}
	return s.Repo.List(ctx, f)
}

func (s *PropertyService) Delete(ctx context.Context, id string) error {
	p, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.Repo.Delete(ctx, id); err != nil {
		return err
	}
	for _, img := range p.Images {
		s.removeObject(ctx, img.URL)
	}
	return nil
}

// UploadImage сохраняет фото в хранилище и возвращает его публичный URL.
func (s *PropertyService) UploadImage(ctx context.Context, filename, contentType string, size int64, r io.Reader) (string, error) {
	if !slices.Contains(imageTypes, contentType) {
		return "", invalid("unsupported image type %q", contentType)
	}
	key, err := storage.NewKey("properties", filename)
	if err != nil {
		return "", err
	}
	if err := s.Storage.Put(ctx, key, r, size, contentType); err != nil {
		return "", fmt.Errorf("загрузка фото: %w", err)
	}
	return s.Storage.URL(key), nil
}

func (s *PropertyService) AddImage(ctx context.Context, propertyID string, in models.PropertyImageRequest) (*models.PropertyImage, error) {
	if strings.TrimSpace(in.URL) == "" {
		return nil, invalid("url is required")
	}
	if _, err := s.GetByID(ctx, propertyID); err != nil {
		return nil, err
	}
	img := &models.PropertyImage{ID: uuid.NewString(), URL: in.URL, IsMain: in.IsMain}
	if err := s.Repo.AddImage(ctx, propertyID, img); err != nil {
		return nil, err
	}
	return img, nil
}

func (s *PropertyService) DeleteImage(ctx context.Context, propertyID, imageID string) error {
	url, err := s.Repo.DeleteImage(ctx, propertyID, imageID)
	if err != nil {
		return err
	}
	s.removeObject(ctx, url)
	return nil
}

func (s *PropertyService) SetMainImage(ctx context.Context, propertyID, imageID string) error {
	return s.Repo.SetMainImage(ctx, propertyID, imageID)
}

// removeObject удаляет файл, если он лежит в нашем хранилище. Внешние URL не трогаем.
func (s *PropertyService) removeObject(ctx context.Context, url string) {
	if s.Storage == nil {
		return
	}
	key, ok := storage.KeyFromURL(s.Storage, url)
	if !ok {
		return
	}
	if err := s.Storage.Delete(ctx, key); err != nil && !errors.Is(err, storage.ErrNotFound) {
		s.Log.WithError(err).WithField("key", key).Warn("[properties][image] не удалось удалить файл")
	}
}
