package models

import (
	"fmt"
	"time"

	appErrors "github.com/siwes-hub/logbook-api/pkg/errors"
)

// SupervisionStatus enumerates the lifecycle of a student-supervisor link.
type SupervisionStatus string

const (
	SupervisionNone     SupervisionStatus = "NONE"
	SupervisionPending  SupervisionStatus = "PENDING"
	SupervisionRejected SupervisionStatus = "REJECTED"
	SupervisionApproved SupervisionStatus = "APPROVED"
)

// Supervision is the gating link between a student and the supervisor who may
// review their entries. One row per student.
type Supervision struct {
	ID             string            `db:"id" json:"id"`
	StudentID      string            `db:"student_id" json:"student_id"`
	SupervisorID   *string           `db:"supervisor_id" json:"supervisor_id,omitempty"`
	SupervisorName string            `db:"supervisor_name" json:"supervisor_name"`
	Status         SupervisionStatus `db:"status" json:"status"`
	CreatedAt      time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time         `db:"updated_at" json:"updated_at"`
}

// WritesAllowed reports whether the student may save entries under this
// relationship. Only an approved supervision unlocks the entry store.
func (s SupervisionStatus) WritesAllowed() bool {
	return s == SupervisionApproved
}

// TransitionSupervisionRequest validates a student re-requesting supervision
// from the given current status. Requesting is legal from NONE and REJECTED
// (a rejected student may try again, possibly with a different supervisor);
// re-requesting while APPROVED or PENDING is refused.
func TransitionSupervisionRequest(status SupervisionStatus) (SupervisionStatus, error) {
	switch status {
	case SupervisionNone, SupervisionRejected:
		return SupervisionPending, nil
	case SupervisionPending:
		return status, appErrors.Clone(appErrors.ErrInvalidTransition, "a supervision request is already pending")
	case SupervisionApproved:
		return status, appErrors.Clone(appErrors.ErrInvalidTransition, "supervision is already approved")
	default:
		return status, appErrors.Clone(appErrors.ErrInvalidTransition,
			fmt.Sprintf("unknown supervision status %q", status))
	}
}

// TransitionSupervisionDecide validates a supervisor deciding on a request.
// Only a PENDING relationship may be decided; a double-click on an already
// decided request is refused, never silently accepted.
func TransitionSupervisionDecide(status SupervisionStatus, approve bool) (SupervisionStatus, error) {
	if status != SupervisionPending {
		return status, appErrors.Clone(appErrors.ErrInvalidTransition,
			fmt.Sprintf("cannot decide a supervision request in status %s", status))
	}
	if approve {
		return SupervisionApproved, nil
	}
	return SupervisionRejected, nil
}
