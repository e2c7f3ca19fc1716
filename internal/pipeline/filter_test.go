package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"propertystore/internal/models"
)

func filterDeals() []models.Deal {
	return []models.Deal{
		{ID: "1", Title: "Apartment on Main St", ClientID: "c1", CurrentStageID: "init", PipelineID: "P", IsActive: true},
		{ID: "2", Title: "House by the lake", ClientID: "c2", CurrentStageID: "neg", PipelineID: "P", IsActive: true, IsOverdue: true},
		{ID: "3", Title: "Studio apartment", ClientID: "c1", CurrentStageID: "done", PipelineID: "P", IsActive: false},
		{ID: "4", Title: "Office", ClientID: "c3", CurrentStageID: "x", PipelineID: "Q", IsActive: true},
	}
}

func ids(deals []models.Deal) []string {
	out := []string{}
	for _, d := range deals {
		out = append(out, d.ID)
	}
	return out
}

func TestFilter_SearchIsCaseInsensitive(t *testing.T) {
	deals := filterDeals()
	lower := Filter{Search: "apartment", ShowCompleted: true}.Apply(deals)
	upper := Filter{Search: "APARTMENT", ShowCompleted: true}.Apply(deals)
	assert.Equal(t, []string{"1", "3"}, ids(lower))
	assert.Equal(t, ids(lower), ids(upper))
}

func TestFilter_Fields(t *testing.T) {
	deals := filterDeals()
	for _, tc := range []struct {
		name string
		f    Filter
		want []string
	}{
		{"default", DefaultFilter(), []string{"1", "2", "3", "4"}},
		{"hide completed", Filter{}, []string{"1", "2", "4"}},
		{"client", Filter{ClientID: "c1", ShowCompleted: true}, []string{"1", "3"}},
		{"stage", Filter{StageID: "neg", ShowCompleted: true}, []string{"2"}},
		{"pipeline", Filter{PipelineID: "Q", ShowCompleted: true}, []string{"4"}},
		{"overdue", Filter{OnlyOverdue: true, ShowCompleted: true}, []string{"2"}},
		{"no match", Filter{Search: "castle", ShowCompleted: true}, []string{}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ids(tc.f.Apply(deals)))
		})
	}
}

func TestFilter_Idempotent(t *testing.T) {
	deals := filterDeals()
	for _, f := range []Filter{
		DefaultFilter(),
		{Search: "apart"},
		{ClientID: "c1", OnlyOverdue: true, ShowCompleted: true},
	} {
		once := f.Apply(deals)
		twice := f.Apply(once)
		assert.Equal(t, ids(once), ids(twice))
	}
}

func TestPartitions(t *testing.T) {
	active, completed := PartitionActive(filterDeals())
	assert.Equal(t, []string{"1", "2", "4"}, ids(active))
	assert.Equal(t, []string{"3"}, ids(completed))

	overdue, onTime := PartitionOverdue(filterDeals())
	assert.Equal(t, []string{"2"}, ids(overdue))
	assert.Len(t, onTime, 3)
}
