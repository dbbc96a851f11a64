package models

import "time"

// NotificationKind groups notifications by the workflow step that raised them.
type NotificationKind string

const (
	NotificationAssessmentSubmitted  NotificationKind = "ASSESSMENT_SUBMITTED"
	NotificationSupervisionRequested NotificationKind = "SUPERVISION_REQUESTED"
	NotificationSupervisionDecided   NotificationKind = "SUPERVISION_DECIDED"
	NotificationEntryReviewed        NotificationKind = "ENTRY_REVIEWED"
)

// Notification is a stored, human-readable confirmation shown in the UI.
type Notification struct {
	ID        string           `db:"id" json:"id"`
	UserID    string           `db:"user_id" json:"user_id"`
	Kind      NotificationKind `db:"kind" json:"kind"`
	Message   string           `db:"message" json:"message"`
	Read      bool             `db:"read" json:"read"`
	CreatedAt time.Time        `db:"created_at" json:"created_at"`
}
