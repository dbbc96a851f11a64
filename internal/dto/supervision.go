package dto

import "github.com/siwes-hub/logbook-api/internal/models"

// RequestSupervisionRequest is the student's payload proposing a supervisor.
type RequestSupervisionRequest struct {
	SupervisorID string `json:"supervisorId" validate:"required"`
}

// DecideSupervisionRequest is the supervisor's verdict on a pending request.
type DecideSupervisionRequest struct {
	Outcome string `json:"outcome" validate:"required,oneof=approved rejected"`
}

// SupervisionResponse exposes the relationship to both parties.
type SupervisionResponse struct {
	StudentID      string                   `json:"studentId"`
	SupervisorID   *string                  `json:"supervisorId,omitempty"`
	SupervisorName string                   `json:"supervisorName,omitempty"`
	Status         models.SupervisionStatus `json:"status"`
}

// PendingSupervisionItem is one row in a supervisor's pending-request list.
type PendingSupervisionItem struct {
	StudentID    string `db:"student_id" json:"studentId"`
	StudentName  string `db:"student_name" json:"studentName"`
	StudentEmail string `db:"student_email" json:"studentEmail"`
}
