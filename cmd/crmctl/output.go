package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"propertystore/internal/models"
	"propertystore/internal/pipeline"
)

const laneWidth = 30

var (
	colorGray   = lipgloss.Color("245")
	colorRed    = lipgloss.Color("203")
	colorGreen  = lipgloss.Color("78")
	colorAccent = lipgloss.Color("111")

	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	mutedStyle   = lipgloss.NewStyle().Foreground(colorGray)
	overdueStyle = lipgloss.NewStyle().Foreground(colorRed)
	closedStyle  = lipgloss.NewStyle().Foreground(colorGray).Strikethrough(true)
	okStyle      = lipgloss.NewStyle().Foreground(colorGreen)
	laneStyle    = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorGray).
			Padding(0, 1).
			Width(laneWidth)
)

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func dealLine(d models.Deal) string {
	title := truncate(d.Title, laneWidth-12)
	line := fmt.Sprintf("%s %s", mutedStyle.Render(shortID(d.ID)), title)
	switch {
	case !d.IsActive:
		return closedStyle.Render(fmt.Sprintf("%s %s", shortID(d.ID), title))
	case d.IsOverdue:
		return line + overdueStyle.Render(" !")
	}
	return line
}

// renderBoard draws the lanes side by side, left to right in stage order.
func renderBoard(lanes []pipeline.Lane) string {
	cols := make([]string, 0, len(lanes))
	for _, l := range lanes {
		rows := []string{titleStyle.Render(fmt.Sprintf("%s (%d)", truncate(l.Stage.Name, laneWidth-8), len(l.Deals)))}
		if len(l.Deals) == 0 {
			rows = append(rows, mutedStyle.Render("пусто"))
		}
		for _, d := range l.Deals {
			rows = append(rows, dealLine(d))
		}
		cols = append(cols, laneStyle.Render(strings.Join(rows, "\n")))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cols...)
}

func renderDeals(deals []models.Deal, stages map[string]string) string {
	var b strings.Builder
	for _, d := range deals {
		stage := stages[d.CurrentStageID]
		if stage == "" {
			stage = shortID(d.CurrentStageID)
		}
		status := okStyle.Render("active")
		switch {
		case !d.IsActive:
			status = mutedStyle.Render("closed")
		case d.IsOverdue:
			status = overdueStyle.Render("overdue")
		}
		fmt.Fprintf(&b, "%s  %-32s  %-20s  %s\n", d.ID, truncate(d.Title, 32), stage, status)
	}
	return b.String()
}

func renderFunnel(stages []models.FunnelStage) string {
	var b strings.Builder
	top := 0
	for _, s := range stages {
		if s.Count > top {
			top = s.Count
		}
	}
	for _, s := range stages {
		bar := 0
		if top > 0 {
			bar = s.Count * 30 / top
		}
		fmt.Fprintf(&b, "%-20s %4d  %6.1f%%  %s\n",
			truncate(s.StageName, 20), s.Count, s.Conversion, okStyle.Render(strings.Repeat("█", bar)))
	}
	return b.String()
}

func renderTrend(points []models.TrendPoint) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-10s  %7s  %9s\n", "date", "created", "completed")
	for _, p := range points {
		fmt.Fprintf(&b, "%-10s  %7d  %9d\n", p.Date, p.Created, p.Completed)
	}
	return b.String()
}

// resolvePipeline picks the flag value, then the configured pipeline, then
// the first pipeline the server knows.
func resolvePipeline(ctx context.Context, flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	if cfg.Pipeline != "" {
		return cfg.Pipeline, nil
	}
	ps, err := api.Pipelines(ctx)
	if err != nil {
		return "", err
	}
	for _, p := range ps {
		if p.IsActive {
			return p.ID, nil
		}
	}
	return "", errors.New("no active pipeline, pass --pipeline")
}
