package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"propertystore/internal/models"
)

type fakeMover struct {
	calls []string
	err   error
}

func (m *fakeMover) MoveStage(_ context.Context, dealID, stageID string, _ *string) error {
	m.calls = append(m.calls, dealID+"->"+stageID)
	return m.err
}

func boardDeals() []models.Deal {
	return []models.Deal{
		{ID: "d1", CurrentStageID: "init", IsActive: true},
		{ID: "d2", CurrentStageID: "init", IsActive: true},
		{ID: "d3", CurrentStageID: "neg", IsActive: false, IsOverdue: true},
		{ID: "d4", CurrentStageID: "gone", IsActive: true},
	}
}

func laneIDs(b *Board, stageID string) []string {
	l, _ := b.Lane(stageID)
	return ids(l.Deals)
}

func TestNewBoard_LanesFollowStageOrder(t *testing.T) {
	b := NewBoard(testStages(), boardDeals())
	require.Len(t, b.Lanes, 3)
	assert.Equal(t, "init", b.Lanes[0].Stage.ID)
	assert.Equal(t, "neg", b.Lanes[1].Stage.ID)
	assert.Equal(t, "done", b.Lanes[2].Stage.ID)
	assert.Equal(t, []string{"d1", "d2"}, laneIDs(b, "init"))
	assert.Equal(t, []string{"d3"}, laneIDs(b, "neg"))
}

func TestReorder_MovesAfterSuccess(t *testing.T) {
	b := NewBoard(testStages(), boardDeals())
	m := &fakeMover{}

	moved, err := b.Reorder(context.Background(), m, "init", "neg", "d1", nil)
	require.NoError(t, err)
	assert.True(t, moved)
	assert.Equal(t, []string{"d1->neg"}, m.calls)
	assert.Equal(t, []string{"d2"}, laneIDs(b, "init"))
	assert.Equal(t, []string{"d3", "d1"}, laneIDs(b, "neg"))
}

func TestReorder_SameLaneIsNoop(t *testing.T) {
	b := NewBoard(testStages(), boardDeals())
	m := &fakeMover{}
	moved, err := b.Reorder(context.Background(), m, "init", "init", "d1", nil)
	require.NoError(t, err)
	assert.False(t, moved)
	assert.Empty(t, m.calls)
}

func TestReorder_FailureLeavesBoard(t *testing.T) {
	b := NewBoard(testStages(), boardDeals())
	m := &fakeMover{err: errors.New("boom")}
	_, err := b.Reorder(context.Background(), m, "init", "neg", "d1", nil)
	require.Error(t, err)
	assert.Equal(t, []string{"d1", "d2"}, laneIDs(b, "init"))
	assert.Equal(t, []string{"d3"}, laneIDs(b, "neg"))
}

func TestReorder_ClosedDealHasNoMoveAffordance(t *testing.T) {
	b := NewBoard(testStages(), boardDeals())
	m := &fakeMover{}
	_, err := b.Reorder(context.Background(), m, "neg", "done", "d3", nil)
	assert.ErrorIs(t, err, ErrDealClosed)
	assert.Empty(t, m.calls)
}

func TestReorder_UnknownLaneOrDeal(t *testing.T) {
	b := NewBoard(testStages(), boardDeals())
	m := &fakeMover{}
	_, err := b.Reorder(context.Background(), m, "init", "nope", "d1", nil)
	assert.Error(t, err)
	_, err = b.Reorder(context.Background(), m, "init", "neg", "d3", nil)
	assert.Error(t, err)
	assert.Empty(t, m.calls)
}
