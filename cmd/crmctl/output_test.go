package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"propertystore/internal/models"
	"propertystore/internal/pipeline"
)

func TestRenderBoard(t *testing.T) {
	stages := []models.DealStage{
		{ID: "s2", Name: "Negotiation", Order: 2},
		{ID: "s1", Name: "Initial Contact", Order: 1},
	}
	deals := []models.Deal{
		{ID: "d1", Title: "Apartment on Main St", CurrentStageID: "s1", IsActive: true},
	}
	out := renderBoard(pipeline.NewBoard(stages, deals).Lanes)

	assert.Contains(t, out, "Initial Contact (1)")
	assert.Contains(t, out, "Negotiation (0)")
	assert.Contains(t, out, "Apartment")
	assert.Less(t, strings.Index(out, "Initial Contact"), strings.Index(out, "Negotiation"))
}

func TestRenderFunnel(t *testing.T) {
	out := renderFunnel([]models.FunnelStage{
		{StageName: "Initial Contact", Count: 0, Conversion: 100},
		{StageName: "Negotiation", Count: 0, Conversion: 0},
	})
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "100.0%")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "Квар…", truncate("Квартира", 5))
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()

	cfg, err := LoadConfig(filepath.Join(dir, "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080", cfg.Server)
	assert.Equal(t, 15*time.Second, cfg.Timeout)

	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: https://crm.example.kz\ntimeout: 5s\npipeline: p1\n"), 0o600))
	t.Setenv("CRMCTL_PIPELINE", "p2")

	cfg, err = LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "https://crm.example.kz", cfg.Server)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, "p2", cfg.Pipeline)
}
