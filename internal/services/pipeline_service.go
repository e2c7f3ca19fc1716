package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"propertystore/internal/models"
	"propertystore/internal/pipeline"
)

type PipelineService struct {
	Repo PipelineStore
	Now  func() time.Time
}

func NewPipelineService(repo PipelineStore) *PipelineService {
	return &PipelineService{Repo: repo, Now: time.Now}
}

func (s *PipelineService) List(ctx context.Context) ([]models.Pipeline, error) {
	return s.Repo.List(ctx)
}

func (s *PipelineService) GetByID(ctx context.Context, id string) (*models.Pipeline, error) {
	p, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, notFound("воронка", id)
	}
	return p, nil
}

func (s *PipelineService) Create(ctx context.Context, p models.Pipeline) (*models.Pipeline, error) {
	if strings.TrimSpace(p.Name) == "" {
		return nil, invalid("name is required")
	}
	p.ID = uuid.NewString()
	p.Name = strings.TrimSpace(p.Name)
	p.IsActive = true
	p.CreatedAt = s.Now()
	if err := s.Repo.Create(ctx, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Stages возвращает этапы воронки слева направо.
func (s *PipelineService) Stages(ctx context.Context, pipelineID string) ([]models.DealStage, error) {
	if _, err := s.GetByID(ctx, pipelineID); err != nil {
		return nil, err
	}
	stages, err := s.Repo.ListStages(ctx, pipelineID)
	if err != nil {
		return nil, err
	}
	return pipeline.SortStages(stages), nil
}

func (s *PipelineService) AddStage(ctx context.Context, pipelineID string, st models.DealStage) (*models.DealStage, error) {
	if strings.TrimSpace(st.Name) == "" {
		return nil, invalid("stage name is required")
	}
	if st.ExpectedDuration < 0 {
		return nil, invalid("expected duration must not be negative")
	}
	stages, err := s.Stages(ctx, pipelineID)
	if err != nil {
		return nil, err
	}
	for _, existing := range stages {
		if existing.Order == st.Order {
			return nil, invalid("этап с порядком %d уже есть", st.Order)
		}
	}
	st.ID = uuid.NewString()
	st.PipelineID = pipelineID
	st.CreatedAt = s.Now()
	if err := s.Repo.CreateStage(ctx, &st); err != nil {
		return nil, err
	}
	return &st, nil
}
