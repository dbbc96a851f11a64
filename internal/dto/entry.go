package dto

import "github.com/siwes-hub/logbook-api/internal/models"

// SaveDayRequest is the student's upsert of one weekday's activity text.
type SaveDayRequest struct {
	Week int    `json:"week" validate:"required,min=1"`
	Day  int    `json:"day" validate:"required,min=1,max=5"`
	Text string `json:"text" validate:"required"`
}

// WeekResponse maps weekday ordinals to their saved entries. Days with no
// saved record are simply absent from the map.
type WeekResponse struct {
	Week    int                          `json:"week"`
	Entries map[models.Weekday]*EntryDTO `json:"entries"`
}

// EntryDTO is the wire form of a single entry.
type EntryDTO struct {
	ID         string             `json:"id"`
	Week       int                `json:"week"`
	Day        models.Weekday     `json:"day"`
	DayName    string             `json:"dayName"`
	Text       string             `json:"text"`
	Status     models.EntryStatus `json:"status"`
	ReviewedBy *string            `json:"reviewedBy,omitempty"`
}

// ReviewEntryRequest carries the supervisor's verdict on a submitted entry.
type ReviewEntryRequest struct {
	Outcome string `json:"outcome" validate:"required,oneof=approved rejected"`
}

// NewEntryDTO converts a model entry into its wire form.
func NewEntryDTO(entry *models.Entry) *EntryDTO {
	if entry == nil {
		return nil
	}
	return &EntryDTO{
		ID:         entry.ID,
		Week:       entry.Week,
		Day:        entry.Day,
		DayName:    entry.Day.String(),
		Text:       entry.Text,
		Status:     entry.Status,
		ReviewedBy: entry.ReviewedBy,
	}
}
