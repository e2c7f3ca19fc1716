package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"propertystore/internal/models"
	"propertystore/internal/pdf"
	"propertystore/internal/storage"
)

var DocumentCategories = []string{"passport", "contract", "certificate", "payment", "other"}

var allowedDocumentExt = []string{".pdf", ".jpg", ".jpeg", ".png", ".doc", ".docx"}

// Upload — загружаемый файл вместе с метаданными формы.
type Upload struct {
	FileName    string
	ContentType string
	Size        int64
	Body        io.Reader
	Category    string
	DealID      *string
}

// DocumentService хранит файлы клиентов и собирает PDF-сводки по сделкам.
type DocumentService struct {
	Repo     DocumentStore
	Storage  storage.Storage
	Deals    *DealService
	PDFGen   pdf.Generator
	MaxBytes int64
	Log      logrus.FieldLogger
	Now      func() time.Time
}

func NewDocumentService(repo DocumentStore, st storage.Storage, deals *DealService, gen pdf.Generator, maxBytes int64, log logrus.FieldLogger) *DocumentService {
	return &DocumentService{Repo: repo, Storage: st, Deals: deals, PDFGen: gen, MaxBytes: maxBytes, Log: log, Now: time.Now}
}

// Upload сохраняет документ клиента. Если указана сделка, она должна принадлежать клиенту.
func (s *DocumentService) Upload(ctx context.Context, clientID, uploadedBy string, up Upload) (*models.ClientDocument, error) {
	name := filepath.Base(strings.TrimSpace(up.FileName))
	if name == "" || name == "." {
		return nil, invalid("file name is required")
	}
	if !slices.Contains(allowedDocumentExt, strings.ToLower(filepath.Ext(name))) {
		return nil, invalid("недопустимый тип файла %s", filepath.Ext(name))
	}
	if s.MaxBytes > 0 && up.Size > s.MaxBytes {
		return nil, invalid("файл больше %d байт", s.MaxBytes)
	}
	category := up.Category
	if category == "" {
		category = "other"
	}
	if !slices.Contains(DocumentCategories, category) {
		return nil, invalid("unknown category %q", category)
	}
	if up.DealID != nil && *up.DealID != "" {
		d, err := s.Deals.GetByID(ctx, *up.DealID)
		if err != nil {
			return nil, err
		}
		if d.ClientID != clientID {
			return nil, notFound("сделка", *up.DealID)
		}
	} else {
		up.DealID = nil
	}

	key, err := storage.NewKey("documents/"+clientID, name)
	if err != nil {
		return nil, err
	}
	if err := s.Storage.Put(ctx, key, up.Body, up.Size, up.ContentType); err != nil {
		return nil, fmt.Errorf("сохранение файла: %w", err)
	}

	doc := &models.ClientDocument{
		ID:         uuid.NewString(),
		ClientID:   clientID,
		DealID:     up.DealID,
		FileName:   name,
		StorageKey: key,
		FileURL:    s.Storage.URL(key),
		FileSize:   up.Size,
		FileType:   up.ContentType,
		Category:   category,
		UploadedBy: uploadedBy,
		UploadedAt: s.Now(),
	}
	if err := s.Repo.Create(ctx, doc); err != nil {
		if derr := s.Storage.Delete(ctx, key); derr != nil {
			s.Log.WithError(derr).WithField("key", key).Warn("[documents][upload] orphan file")
		}
		return nil, err
	}
	s.Log.WithFields(logrus.Fields{"client_id": clientID, "document_id": doc.ID}).Info("[documents][upload] ok")
	return doc, nil
}

func (s *DocumentService) List(ctx context.Context, clientID string, dealID *string) ([]models.ClientDocument, error) {
	return s.Repo.ListByClient(ctx, clientID, dealID)
}

// get возвращает документ клиента; чужой документ выглядит как отсутствующий.
func (s *DocumentService) get(ctx context.Context, clientID, id string) (*models.ClientDocument, error) {
	doc, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc == nil || doc.ClientID != clientID {
		return nil, notFound("документ", id)
	}
	return doc, nil
}

func (s *DocumentService) Open(ctx context.Context, clientID, id string) (*models.ClientDocument, io.ReadCloser, error) {
	doc, err := s.get(ctx, clientID, id)
	if err != nil {
		return nil, nil, err
	}
	rc, err := s.Storage.Open(ctx, doc.StorageKey)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil, notFound("файл", id)
	}
	if err != nil {
		return nil, nil, err
	}
	return doc, rc, nil
}

func (s *DocumentService) Delete(ctx context.Context, clientID, id string) error {
	doc, err := s.get(ctx, clientID, id)
	if err != nil {
		return err
	}
	if err := s.Repo.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.Storage.Delete(ctx, doc.StorageKey); err != nil && !errors.Is(err, storage.ErrNotFound) {
		s.Log.WithError(err).WithField("key", doc.StorageKey).Warn("[documents][delete] файл не удалён")
	}
	return nil
}

// DealSummary пишет PDF-сводку по сделке.
func (s *DocumentService) DealSummary(ctx context.Context, dealID string, w io.Writer) error {
	if s.PDFGen == nil {
		return errors.New("pdf generator not configured")
	}
	deal, err := s.Deals.GetWithDetails(ctx, dealID)
	if err != nil {
		return err
	}
	stages, err := s.Deals.Pipelines.ListStages(ctx, deal.PipelineID)
	if err != nil {
		return err
	}
	return s.PDFGen.DealSummary(w, pdf.DealSummaryData{
		Deal:        deal,
		Client:      deal.Client,
		Stages:      stages,
		GeneratedAt: s.Now(),
	})
}
