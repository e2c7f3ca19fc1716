package pipeline

import (
	"strings"

	"propertystore/internal/models"
)

// Filter mirrors the board toolbar. The zero value keeps everything except
// that completed deals are hidden unless ShowCompleted is set; use
// DefaultFilter for the board's initial state.
type Filter struct {
	Search        string
	ClientID      string
	StageID       string
	PipelineID    string
	OnlyOverdue   bool
	ShowCompleted bool
}

func DefaultFilter() Filter {
	return Filter{ShowCompleted: true}
}

func (f Filter) Match(d models.Deal) bool {
	if f.Search != "" && !strings.Contains(strings.ToLower(d.Title), strings.ToLower(f.Search)) {
		return false
	}
	if f.ClientID != "" && d.ClientID != f.ClientID {
		return false
	}
	if f.StageID != "" && d.CurrentStageID != f.StageID {
		return false
	}
	if f.PipelineID != "" && d.PipelineID != f.PipelineID {
		return false
	}
	if f.OnlyOverdue && !d.IsOverdue {
		return false
	}
	if !f.ShowCompleted && !d.IsActive {
		return false
	}
	return true
}

// Apply returns the matching deals in input order.
func (f Filter) Apply(deals []models.Deal) []models.Deal {
	out := make([]models.Deal, 0, len(deals))
	for _, d := range deals {
		if f.Match(d) {
			out = append(out, d)
		}
	}
	return out
}

// PartitionActive splits deals into active and completed.
func PartitionActive(deals []models.Deal) (active, completed []models.Deal) {
	for _, d := range deals {
		if d.IsActive {
			active = append(active, d)
		} else {
			completed = append(completed, d)
		}
	}
	return active, completed
}

// PartitionOverdue uses the server-computed IsOverdue flag as is.
func PartitionOverdue(deals []models.Deal) (overdue, onTime []models.Deal) {
	for _, d := range deals {
		if d.IsOverdue {
			overdue = append(overdue, d)
		} else {
			onTime = append(onTime, d)
		}
	}
	return overdue, onTime
}
