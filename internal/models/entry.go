package models

import (
	"fmt"
	"time"

	appErrors "github.com/siwes-hub/logbook-api/pkg/errors"
)

// Weekday is the ordinal weekday slot of an entry, Monday=1 through Friday=5.
type Weekday int

const (
	Monday Weekday = iota + 1
	Tuesday
	Wednesday
	Thursday
	Friday
)

// WeekdaysPerWeek is the number of entry slots a week holds.
const WeekdaysPerWeek = 5

var weekdayNames = map[Weekday]string{
	Monday:    "Monday",
	Tuesday:   "Tuesday",
	Wednesday: "Wednesday",
	Thursday:  "Thursday",
	Friday:    "Friday",
}

// Valid reports whether the weekday falls on Monday..Friday.
func (d Weekday) Valid() bool {
	return d >= Monday && d <= Friday
}

// String returns the weekday display name.
func (d Weekday) String() string {
	if name, ok := weekdayNames[d]; ok {
		return name
	}
	return fmt.Sprintf("Weekday(%d)", int(d))
}

// EntryStatus enumerates the per-entry review states.
type EntryStatus string

const (
	EntryStatusDraft     EntryStatus = "DRAFT"
	EntryStatusSubmitted EntryStatus = "SUBMITTED"
	EntryStatusApproved  EntryStatus = "APPROVED"
	EntryStatusRejected  EntryStatus = "REJECTED"
)

// EntryEvent is an action applied against an entry's current status.
type EntryEvent string

const (
	// EntryEventSave is the student saving or resaving the day's text.
	EntryEventSave EntryEvent = "SAVE"
	// EntryEventApprove is the supervisor accepting the submitted text.
	EntryEventApprove EntryEvent = "APPROVE"
	// EntryEventReject is the supervisor sending the submitted text back.
	EntryEventReject EntryEvent = "REJECT"
)

// TransitionEntry applies an event to a status and returns the resulting
// status. All legality rules live here; callers must not compare status
// strings themselves. A save always lands on SUBMITTED, re-entering the
// review queue and discarding any prior disposition. Approve and reject are
// only legal against a SUBMITTED entry.
func TransitionEntry(status EntryStatus, event EntryEvent) (EntryStatus, error) {
	switch event {
	case EntryEventSave:
		return EntryStatusSubmitted, nil
	case EntryEventApprove:
		if status != EntryStatusSubmitted {
			return status, appErrors.Clone(appErrors.ErrInvalidTransition,
				fmt.Sprintf("cannot approve an entry in status %s", status))
		}
		return EntryStatusApproved, nil
	case EntryEventReject:
		if status != EntryStatusSubmitted {
			return status, appErrors.Clone(appErrors.ErrInvalidTransition,
				fmt.Sprintf("cannot reject an entry in status %s", status))
		}
		return EntryStatusRejected, nil
	default:
		return status, appErrors.Clone(appErrors.ErrInvalidTransition,
			fmt.Sprintf("unknown entry event %q", event))
	}
}

// Entry is one day's logged activity for one student in one week. At most one
// row exists per (student, week, day); a row only exists once the student has
// saved text for that day.
type Entry struct {
	ID         string      `db:"id" json:"id"`
	StudentID  string      `db:"student_id" json:"student_id"`
	Week       int         `db:"week" json:"week"`
	Day        Weekday     `db:"day" json:"day"`
	Text       string      `db:"text" json:"text"`
	Status     EntryStatus `db:"status" json:"status"`
	ReviewedBy *string     `db:"reviewed_by" json:"reviewed_by,omitempty"`
	CreatedAt  time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time   `db:"updated_at" json:"updated_at"`
}

// WeekSummary aggregates one week's entry counts for progress computation.
type WeekSummary struct {
	Week     int `db:"week" json:"week"`
	Total    int `db:"total" json:"total"`
	Approved int `db:"approved" json:"approved"`
}

/// Complete reports whether the week counts toward weeks_completed: all five
// weekday slots present and every one of them approved.
func (w WeekSummary) Complete() bool {
	return w.Total == WeekdaysPerWeek && w.Approved == WeekdaysPerWeek
}
