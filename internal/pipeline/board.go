package pipeline

import (
	"context"
	"fmt"

	"propertystore/internal/models"
)

// Lane is one board column.
type Lane struct {
	Stage models.DealStage
	Deals []models.Deal
}

// Board groups deals into lanes ordered by stage order. Deals whose current
// stage is not among the stages are not shown.
type Board struct {
	Lanes []Lane
}

// Mover performs the stage transition on the backend.
type Mover interface {
	MoveStage(ctx context.Context, dealID, stageID string, note *string) error
}

func NewBoard(stages []models.DealStage, deals []models.Deal) *Board {
	b := &Board{}
	for _, s := range SortStages(stages) {
		lane := Lane{Stage: s}
		for _, d := range deals {
			if d.CurrentStageID == s.ID {
				lane.Deals = append(lane.Deals, d)
			}
		}
		b.Lanes = append(b.Lanes, lane)
	}
	return b
}

func (b *Board) lane(stageID string) int {
	for i := range b.Lanes {
		if b.Lanes[i].Stage.ID == stageID {
			return i
		}
	}
	return -1
}

// Lane returns the lane of a stage.
func (b *Board) Lane(stageID string) (Lane, bool) {
	i := b.lane(stageID)
	if i < 0 {
		return Lane{}, false
	}
	return b.Lanes[i], true
}

// Reorder handles a drop of dealID from sourceLane onto destLane. Dropping in
// the same lane does nothing. The board changes only after m confirms the move.
func (b *Board) Reorder(ctx context.Context, m Mover, sourceLane, destLane, dealID string, note *string) (bool, error) {
	if sourceLane == destLane {
		return false, nil
	}
	src, dst := b.lane(sourceLane), b.lane(destLane)
	if src < 0 || dst < 0 {
		return false, fmt.Errorf("unknown lane")
	}
	pos := -1
	for i, d := range b.Lanes[src].Deals {
		if d.ID == dealID {
			pos = i
			break
		}
	}
	if pos < 0 {
		return false, fmt.Errorf("deal %s is not in lane %s", dealID, sourceLane)
	}
	deal := b.Lanes[src].Deals[pos]
	if !CanMove(deal) {
		return false, ErrDealClosed
	}

	if err := m.MoveStage(ctx, dealID, destLane, note); err != nil {
		return false, err
	}

	b.Lanes[src].Deals = append(b.Lanes[src].Deals[:pos:pos], b.Lanes[src].Deals[pos+1:]...)
	deal.CurrentStageID = destLane
	b.Lanes[dst].Deals = append(b.Lanes[dst].Deals, deal)
	return true, nil
}
