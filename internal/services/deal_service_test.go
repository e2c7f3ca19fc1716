package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"propertystore/internal/cache"
	"propertystore/internal/events"
	"propertystore/internal/models"
	"propertystore/internal/pipeline"
)

var t0 = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

type dealFixture struct {
	svc       *DealService
	deals     *fakeDeals
	pipelines *fakePipelines
	clients   *fakeClients
	requests  *fakeRequests
	pub       *recordingPublisher
	board     *recordingBoard
	cache     *cache.Memory
	now       time.Time
}

func newDealFixture(t *testing.T) *dealFixture {
	t.Helper()
	f := &dealFixture{
		requests:  newFakeRequests(),
		pipelines: newFakePipelines(),
		clients:   newFakeClients(models.Client{ID: "c1", Name: "Айгерим", Phone: "+77010000001", Source: models.SourceWebsite}),
		pub:       &recordingPublisher{},
		board:     &recordingBoard{},
		cache:     cache.NewMemory(),
		now:       t0,
	}
	f.deals = newFakeDeals(f.requests)
	f.pipelines.pipelines["p1"] = models.Pipeline{ID: "p1", Name: "Продажи", IsActive: true}
	f.pipelines.stages["s1"] = models.DealStage{ID: "s1", Name: "Новая", Order: 1, PipelineID: "p1", ExpectedDuration: models.Duration(24 * time.Hour)}
	f.pipelines.stages["s2"] = models.DealStage{ID: "s2", Name: "Показ", Order: 2, PipelineID: "p1", ExpectedDuration: models.Duration(72 * time.Hour)}
	f.pipelines.stages["s3"] = models.DealStage{ID: "s3", Name: "Сделка", Order: 3, PipelineID: "p1"}
	f.pipelines.stages["x1"] = models.DealStage{ID: "x1", Name: "Чужой", Order: 1, PipelineID: "p2"}

	f.svc = NewDealService(f.deals, f.pipelines, f.clients, f.pub, f.board, f.cache, quietLog())
	f.svc.Now = func() time.Time { return f.now }
	return f
}

func (f *dealFixture) create(t *testing.T) *models.Deal {
	t.Helper()
	d, err := f.svc.Create(context.Background(), models.DealRequest{
		Title: "Квартира на Абая", ClientID: "c1", PipelineID: "p1", CurrentStageID: "s1",
	})
	require.NoError(t, err)
	return d
}

func TestDealService_Create(t *testing.T) {
	f := newDealFixture(t)
	d := f.create(t)

	assert.True(t, d.IsActive)
	assert.Equal(t, "s1", d.CurrentStageID)
	require.NotNil(t, d.StageDeadline)
	assert.Equal(t, t0.Add(24*time.Hour), *d.StageDeadline)
	require.Len(t, d.History, 1)
	assert.Nil(t, d.History[0].FromStageID)
	assert.Equal(t, []string{events.TopicDealCreated}, f.pub.topics)
	require.Len(t, f.board.msgs, 1)
	assert.Equal(t, "created", f.board.msgs[0].Action)
}

func TestDealService_CreateValidation(t *testing.T) {
	f := newDealFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, models.DealRequest{Title: "x", ClientID: "c1", PipelineID: "p1", CurrentStageID: "nope"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.svc.Create(ctx, models.DealRequest{Title: "x", ClientID: "ghost", PipelineID: "p1", CurrentStageID: "s1"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.svc.Create(ctx, models.DealRequest{Title: "  ", ClientID: "c1", PipelineID: "p1", CurrentStageID: "s1"})
	assert.ErrorIs(t, err, pipeline.ErrTitleRequired)

	_, err = f.svc.Create(ctx, models.DealRequest{Title: "x", ClientID: "c1", PipelineID: "p1", CurrentStageID: "x1"})
	assert.ErrorIs(t, err, pipeline.ErrStageMismatch)
}

func TestDealService_MoveStage(t *testing.T) {
	f := newDealFixture(t)
	d := f.create(t)
	_ = f.cache.Set(context.Background(), "analytics:summary:p1", []byte(`{}`), time.Minute)

	f.now = t0.Add(2 * time.Hour)
	note := "клиент подтвердил показ"
	moved, err := f.svc.MoveStage(context.Background(), d.ID, "s2", &note)
	require.NoError(t, err)

	assert.Equal(t, "s2", moved.CurrentStageID)
	assert.Equal(t, f.now, moved.StageStartedAt)
	assert.Equal(t, f.now.Add(72*time.Hour), *moved.StageDeadline)
	require.Len(t, moved.History, 2)
	last := moved.History[1]
	assert.Equal(t, "s1", *last.FromStageID)
	assert.Equal(t, "s2", last.ToStageID)
	assert.Equal(t, &note, last.Notes)

	assert.Contains(t, f.pub.topics, events.TopicDealMoved)
	msg := f.board.msgs[len(f.board.msgs)-1]
	assert.Equal(t, "moved", msg.Action)
	assert.Equal(t, "s1", msg.FromStage)
	assert.Equal(t, "s2", msg.ToStage)

	_, ok, _ := f.cache.Get(context.Background(), "analytics:summary:p1")
	assert.False(t, ok, "analytics cache must be invalidated")
}

func TestDealService_MoveStageRejections(t *testing.T) {
	f := newDealFixture(t)
	ctx := context.Background()
	d := f.create(t)

	_, err := f.svc.MoveStage(ctx, d.ID, "s1", nil)
	assert.ErrorIs(t, err, pipeline.ErrSameStage)

	_, err = f.svc.MoveStage(ctx, d.ID, "x1", nil)
	assert.ErrorIs(t, err, pipeline.ErrStageMismatch)

	_, err = f.svc.MoveStage(ctx, d.ID, "missing", nil)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.svc.Close(ctx, d.ID)
	require.NoError(t, err)
	_, err = f.svc.MoveStage(ctx, d.ID, "s2", nil)
	assert.ErrorIs(t, err, pipeline.ErrDealClosed)

	h, _ := f.deals.History(ctx, d.ID)
	assert.Len(t, h, 1, "rejected moves must not touch history")
}

func TestDealService_CloseReopen(t *testing.T) {
	f := newDealFixture(t)
	ctx := context.Background()
	d := f.create(t)

	f.now = t0.Add(time.Hour)
	closed, err := f.svc.Close(ctx, d.ID)
	require.NoError(t, err)
	assert.False(t, closed.IsActive)
	assert.Equal(t, f.now, *closed.ClosedAt)

	_, err = f.svc.Close(ctx, d.ID)
	assert.ErrorIs(t, err, pipeline.ErrDealClosed)

	reopened, err := f.svc.Reopen(ctx, d.ID)
	require.NoError(t, err)
	assert.True(t, reopened.IsActive)
	assert.Nil(t, reopened.ClosedAt)

	_, err = f.svc.Reopen(ctx, d.ID)
	assert.ErrorIs(t, err, pipeline.ErrDealActive)
}

func TestDealService_GetWithDetails(t *testing.T) {
	f := newDealFixture(t)
	d := f.create(t)

	got, err := f.svc.GetWithDetails(context.Background(), d.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Client)
	assert.Equal(t, "Айгерим", got.Client.Name)
	require.NotNil(t, got.CurrentStage)
	assert.Equal(t, "Новая", got.CurrentStage.Name)
	assert.Len(t, got.History, 1)

	_, err = f.svc.GetWithDetails(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDealService_ListMarksOverdue(t *testing.T) {
	f := newDealFixture(t)
	d := f.create(t)

	f.now = t0.Add(25 * time.Hour)
	list, err := f.svc.ListByPipeline(context.Background(), "p1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].IsOverdue)

	overdue, err := f.svc.ListOverdue(context.Background())
	require.NoError(t, err)
	require.Len(t, overdue, 1)
	assert.Equal(t, d.ID, overdue[0].ID)
}

func TestDealService_UpdateKeepsStage(t *testing.T) {
	f := newDealFixture(t)
	d := f.create(t)
	amount := 25000000.0

	upd, err := f.svc.Update(context.Background(), d.ID, models.DealRequest{
		Title: "Квартира на Абая, 3 комнаты", ClientID: "c1", PipelineID: "p1", CurrentStageID: "s3", DealAmount: &amount,
	})
	require.NoError(t, err)
	assert.Equal(t, "s1", upd.CurrentStageID)
	assert.Equal(t, &amount, upd.DealAmount)
}

func TestDealService_ConcurrentMovesKeepHistoryConsistent(t *testing.T) {
	f := newDealFixture(t)
	d := f.create(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	var mu sync.Mutex
	ok := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			dest := "s2"
			if i%2 == 1 {
				dest = "s3"
			}
			if _, err := f.svc.MoveStage(ctx, d.ID, dest, nil); err == nil {
				mu.Lock()
				ok++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	got, err := f.svc.GetWithDetails(ctx, d.ID)
	require.NoError(t, err)
	assert.Len(t, got.History, ok+1)
	assert.NoError(t, pipeline.ValidateHistory(*got))
}

func TestDealService_Delete(t *testing.T) {
	f := newDealFixture(t)
	d := f.create(t)

	require.NoError(t, f.svc.Delete(context.Background(), d.ID))
	assert.ErrorIs(t, f.svc.Delete(context.Background(), d.ID), ErrNotFound)
	assert.Contains(t, f.pub.topics, events.TopicDealDeleted)
}
