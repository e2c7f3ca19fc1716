package pdf

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"propertystore/internal/models"
)

func TestDealSummaryProducesPDF(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	from := "s1"
	amount := 1500000.0
	deal := &models.Deal{
		ID: "d1", Title: "Flat on Abay", ClientID: "c1", PipelineID: "p1", CurrentStageID: "s2",
		StageStartedAt: now, CreatedAt: now, IsActive: true, DealAmount: &amount,
		History: []models.DealHistory{
			{ID: "h1", DealID: "d1", ToStageID: "s1", ChangedAt: now.Add(-time.Hour)},
			{ID: "h2", DealID: "d1", FromStageID: &from, ToStageID: "s2", ChangedAt: now},
		},
	}
	stages := []models.DealStage{{ID: "s1", Name: "New", Order: 1}, {ID: "s2", Name: "Viewing", Order: 2}}

	var buf bytes.Buffer
	err := NewSummaryGenerator("").DealSummary(&buf, DealSummaryData{
		Deal: deal, Client: &models.Client{Name: "Aigerim", Phone: "+77010000000"}, Stages: stages, GeneratedAt: now,
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestDealSummaryRequiresDeal(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, NewSummaryGenerator("").DealSummary(&buf, DealSummaryData{}))
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "12 500 000.50", formatAmount(12500000.5))
	assert.Equal(t, "999.00", formatAmount(999))
	assert.Equal(t, "-1 000.00", formatAmount(-1000))
}
