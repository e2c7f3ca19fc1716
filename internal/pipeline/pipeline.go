// Package pipeline holds the deal pipeline model: how deals enter a pipeline,
// move between its ordered stages and close, plus the derived views (filters,
// funnel, trend, board lanes) computed over an already loaded deal set.
//
// Everything here is pure: callers pass the current time in.
package pipeline

import (
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"propertystore/internal/models"
)

var (
	ErrTitleRequired  = errors.New("title is required")
	ErrClientRequired = errors.New("client is required")
	ErrStageRequired  = errors.New("stage is required")
	ErrStageMismatch  = errors.New("stage does not belong to deal pipeline")
	ErrSameStage      = errors.New("deal is already in this stage")
	ErrDealClosed     = errors.New("deal is closed")
	ErrDealActive     = errors.New("deal is active")
)

// SortStages orders stages left to right by Order. The input is not modified.
func SortStages(stages []models.DealStage) []models.DealStage {
	out := make([]models.DealStage, len(stages))
	copy(out, stages)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

// Deadline returns the stage deadline for a deal entering stage at t, or nil
// when the stage has no expected duration.
func Deadline(stage models.DealStage, t time.Time) *time.Time {
	d := stage.ExpectedDuration.Std()
	if d <= 0 {
		return nil
	}
	dl := t.Add(d)
	return &dl
}

// NewDeal builds a deal in its initial stage with a single creation entry in
// its history.
func NewDeal(req models.DealRequest, stage models.DealStage, now time.Time) (*models.Deal, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	if strings.TrimSpace(req.ClientID) == "" {
		return nil, ErrClientRequired
	}
	if strings.TrimSpace(req.CurrentStageID) == "" || stage.ID != req.CurrentStageID {
		return nil, ErrStageRequired
	}
	if req.PipelineID != "" && stage.PipelineID != req.PipelineID {
		return nil, ErrStageMismatch
	}

	deal := &models.Deal{
		ID:                uuid.NewString(),
		Title:             title,
		Notes:             req.Notes,
		DealAmount:        req.DealAmount,
		ExpectedCloseDate: req.ExpectedCloseDate,
		ClientID:          req.ClientID,
		PipelineID:        stage.PipelineID,
		CurrentStageID:    stage.ID,
		PropertyID:        req.PropertyID,
		RequestID:         req.RequestID,
		StageStartedAt:    now,
		StageDeadline:     Deadline(stage, now),
		CreatedAt:         now,
		UpdatedAt:         now,
		IsActive:          true,
	}
	deal.History = []models.DealHistory{{
		ID:        uuid.NewString(),
		DealID:    deal.ID,
		ToStageID: stage.ID,
		ChangedAt: now,
	}}
	return deal, nil
}

// MoveStage moves deal into dest, appending exactly one history entry and
// restarting the stage clock. The deal is left untouched on error.
func MoveStage(deal *models.Deal, dest models.DealStage, note *string, now time.Time) (models.DealHistory, error) {
	if !deal.IsActive {
		return models.DealHistory{}, ErrDealClosed
	}
	if dest.ID == deal.CurrentStageID {
		return models.DealHistory{}, ErrSameStage
	}
	if dest.PipelineID != deal.PipelineID {
		return models.DealHistory{}, ErrStageMismatch
	}

	from := deal.CurrentStageID
	entry := models.DealHistory{
		ID:          uuid.NewString(),
		DealID:      deal.ID,
		FromStageID: &from,
		ToStageID:   dest.ID,
		ChangedAt:   now,
		Notes:       note,
	}
	deal.History = append(deal.History, entry)
	deal.CurrentStageID = dest.ID
	deal.StageStartedAt = now
	deal.StageDeadline = Deadline(dest, now)
	deal.UpdatedAt = now
	deal.IsOverdue = false
	return entry, nil
}

// Close marks the deal completed. Closing is terminal for UI flows.
func Close(deal *models.Deal, now time.Time) error {
	if !deal.IsActive {
		return ErrDealClosed
	}
	deal.IsActive = false
	deal.ClosedAt = &now
	deal.UpdatedAt = now
	deal.IsOverdue = false
	return nil
}

// Reopen reverts Close. Only exposed through the service API.
func Reopen(deal *models.Deal, now time.Time) error {
	if deal.IsActive {
		return ErrDealActive
	}
	deal.IsActive = true
	deal.ClosedAt = nil
	deal.UpdatedAt = now
	RefreshOverdue(deal, now)
	return nil
}

// IsOverdue reports whether an active deal stayed in its stage past the deadline.
func IsOverdue(deal models.Deal, now time.Time) bool {
	return deal.IsActive && deal.StageDeadline != nil && now.After(*deal.StageDeadline)
}

func RefreshOverdue(deal *models.Deal, now time.Time) {
	deal.IsOverdue = IsOverdue(*deal, now)
}

// CanMove reports whether stage moves may be offered for the deal.
func CanMove(deal models.Deal) bool {
	return deal.IsActive
}

// ValidateHistory checks that the last transition lands on the current stage.
func ValidateHistory(deal models.Deal) error {
	if len(deal.History) == 0 {
		return errors.New("deal history is empty")
	}
	first := deal.History[0]
	if first.FromStageID != nil {
		return errors.New("first history entry must be the creation entry")
	}
	last := deal.History[len(deal.History)-1]
	if last.ToStageID != deal.CurrentStageID {
		return errors.New("last history entry does not match current stage")
	}
	return nil
}
