package client

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"propertystore/internal/models"
	"propertystore/internal/pipeline"
)

// ErrMoveInFlight is returned by OnReorder while a previous drop is still
// waiting for the server.
var ErrMoveInFlight = errors.New("another move is in progress")

// BoardAPI is the part of the API the board needs.
type BoardAPI interface {
	Stages(ctx context.Context, pipelineID string) ([]models.DealStage, error)
	PipelineDeals(ctx context.Context, pipelineID string) ([]models.Deal, error)
	MoveStage(ctx context.Context, dealID, stageID string, note *string) (*models.Deal, error)
}

// BoardController backs the kanban view of one pipeline. Lanes change only
// after the server confirms a move, and only one move is sent at a time.
type BoardController struct {
	api        BoardAPI
	pipelineID string

	inflight sync.Mutex

	mu     sync.RWMutex
	filter pipeline.Filter
	stages []models.DealStage
	deals  []models.Deal
	board  *pipeline.Board
}

func NewBoardController(api BoardAPI, pipelineID string) *BoardController {
	return &BoardController{
		api:        api,
		pipelineID: pipelineID,
		filter:     pipeline.DefaultFilter(),
		board:      &pipeline.Board{},
	}
}

// Load fetches stages and deals and rebuilds the lanes.
func (b *BoardController) Load(ctx context.Context) error {
	stages, err := b.api.Stages(ctx, b.pipelineID)
	if err != nil {
		return fmt.Errorf("load stages: %w", err)
	}
	deals, err := b.api.PipelineDeals(ctx, b.pipelineID)
	if err != nil {
		return fmt.Errorf("load deals: %w", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.stages = stages
	b.deals = deals
	b.rebuildLocked()
	return nil
}

// SetFilter applies f to the loaded deals. No request is made.
func (b *BoardController) SetFilter(f pipeline.Filter) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.filter = f
	b.rebuildLocked()
}

// Lanes returns a copy of the current lanes.
func (b *BoardController) Lanes() []pipeline.Lane {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]pipeline.Lane, len(b.board.Lanes))
	for i, l := range b.board.Lanes {
		out[i] = pipeline.Lane{Stage: l.Stage, Deals: append([]models.Deal(nil), l.Deals...)}
	}
	return out
}

// OnReorder handles a drop of dealID from sourceLane onto destLane. It reports
// whether the deal changed lanes. A drop made while another one is pending is
// rejected with ErrMoveInFlight and has no effect. Lanes stays readable while
// the server call runs.
func (b *BoardController) OnReorder(ctx context.Context, sourceLane, destLane, dealID string, note *string) (bool, error) {
	if !b.inflight.TryLock() {
		return false, ErrMoveInFlight
	}
	defer b.inflight.Unlock()

	var moved *models.Deal
	mover := moverFunc(func(ctx context.Context, dealID, stageID string, note *string) error {
		d, err := b.api.MoveStage(ctx, dealID, stageID, note)
		if err != nil {
			return err
		}
		moved = d
		return nil
	})

	snapshot := &pipeline.Board{Lanes: b.Lanes()}
	ok, err := snapshot.Reorder(ctx, mover, sourceLane, destLane, dealID, note)
	if err != nil || !ok {
		return ok, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if moved == nil {
		for _, l := range snapshot.Lanes {
			for _, d := range l.Deals {
				if d.ID == dealID {
					moved = &d
				}
			}
		}
	}
	if moved != nil {
		b.replaceLocked(*moved)
	}
	b.rebuildLocked()
	return true, nil
}

func (b *BoardController) rebuildLocked() {
	b.board = pipeline.NewBoard(b.stages, b.filter.Apply(b.deals))
}

// replaceLocked puts the server copy of a moved deal at the end of the loaded
// set, so it lands last in its new lane.
func (b *BoardController) replaceLocked(d models.Deal) {
	kept := make([]models.Deal, 0, len(b.deals)+1)
	for _, cur := range b.deals {
		if cur.ID != d.ID {
			kept = append(kept, cur)
		}
	}
	b.deals = append(kept, d)
}

type moverFunc func(ctx context.Context, dealID, stageID string, note *string) error

func (f moverFunc) MoveStage(ctx context.Context, dealID, stageID string, note *string) error {
	return f(ctx, dealID, stageID, note)
}
