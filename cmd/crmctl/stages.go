package main

import (
	"context"

	"propertystore/internal/client"
	"propertystore/internal/models"
	"propertystore/internal/pipeline"
)

var stageViews = map[string]*client.ViewCache[[]models.DealStage]{}

// stagesOf returns the ordered stages of a pipeline, fetched once per run.
func stagesOf(ctx context.Context, pipelineID string) ([]models.DealStage, error) {
	view, ok := stageViews[pipelineID]
	if !ok {
		view = client.NewViewCache(func(ctx context.Context) ([]models.DealStage, error) {
			stages, err := api.Stages(ctx, pipelineID)
			if err != nil {
				return nil, err
			}
			return pipeline.SortStages(stages), nil
		})
		stageViews[pipelineID] = view
	}
	return view.Get(ctx)
}

// stageNames maps stage id to name for every pipeline the deals belong to.
func stageNames(ctx context.Context, deals []models.Deal) (map[string]string, error) {
	names := map[string]string{}
	for _, d := range deals {
		if _, ok := names[d.CurrentStageID]; ok {
			continue
		}
		stages, err := stagesOf(ctx, d.PipelineID)
		if err != nil {
			return nil, err
		}
		for _, s := range stages {
			names[s.ID] = s.Name
		}
	}
	return names, nil
}
