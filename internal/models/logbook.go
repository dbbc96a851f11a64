package models

import (
	"strings"
	"time"
)

// LogbookStatus is the coarse logbook-level lifecycle, distinct from the
// per-entry review states.
type LogbookStatus string

const (
	LogbookStatusInProgress LogbookStatus = "IN_PROGRESS"
	LogbookStatusAssessable LogbookStatus = "ASSESSABLE"
	LogbookStatusGraded     LogbookStatus = "GRADED"
)

// gradedTerminal holds the lowercase status spellings that count as already
// graded. Legacy data carries several spellings for the same terminal state.
var gradedTerminal = map[string]struct{}{
	"graded":    {},
	"passed":    {},
	"assessed":  {},
	"completed": {},
}

// IsGradedTerminal reports whether the raw status string names a graded
// terminal state, matched case-insensitively.
func IsGradedTerminal(raw string) bool {
	_, ok := gradedTerminal[strings.ToLower(strings.TrimSpace(raw))]
	return ok
}

// MaxWeeks caps the number of weeks any logbook may span.
const MaxWeeks = 52

// NormalizeWeeks clamps a logbook size to the valid range, falling back to
// the maximum when the stored value is out of bounds.
func NormalizeWeeks(size int) int {
	if size < 1 || size > MaxWeeks {
		return MaxWeeks
	}
	return size
}

// Logbook is the full collection of a student's entries across all weeks,
// subject to a final assessment. Size bounds the number of weeks.
type Logbook struct {
	ID        string    `db:"id" json:"id"`
	StudentID string    `db:"student_id" json:"student_id"`
	Size      int       `db:"size" json:"size"`
	Status    string    `db:"status" json:"status"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Progress holds the derived completion metrics for a logbook. It is never
// persisted; recomputing from the entry rows on every read keeps it from
// diverging from the source records.
type Progress struct {
	StudentID      string  `json:"student_id"`
	TotalWeeks     int     `json:"total_weeks"`
	TotalEntries   int     `json:"total_entries"`
	WeeksCompleted int     `json:"weeks_completed"`
	Completion     float64 `json:"completion"`
}
