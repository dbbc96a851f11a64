package dto

import "github.com/siwes-hub/logbook-api/internal/models"

// ProgressResponse carries the derived logbook metrics.
type ProgressResponse struct {
	Progress models.Progress `json:"progress"`
	Weeks    []int           `json:"weeksWithEntries"`
}

// UIStateRequest persists the student's view state between sessions.
type UIStateRequest struct {
	SelectedWeek int    `json:"selectedWeek" validate:"min=0,max=52"`
	ActiveTab    string `json:"activeTab"`
}

// UIStateResponse mirrors the stored view state; zero values when nothing is
// stored yet.
type UIStateResponse struct {
	SelectedWeek int    `json:"selectedWeek"`
	ActiveTab    string `json:"activeTab"`
}
