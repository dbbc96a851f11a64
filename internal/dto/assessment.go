package dto

import "github.com/siwes-hub/logbook-api/internal/models"

// SubmitAssessmentRequest carries the assessor's terminal grading of a
// logbook. Scores are pointers so a missing field fails validation instead of
// silently reading as zero.
type SubmitAssessmentRequest struct {
	Details      *int   `json:"details" validate:"required,min=0,max=10"`
	Practicality *int   `json:"practicality" validate:"required,min=0,max=10"`
	Correctness  *int   `json:"correctness" validate:"required,min=0,max=10"`
	Creativity   *int   `json:"creativity" validate:"required,min=0,max=10"`
	Presentation *int   `json:"presentation" validate:"required,min=0,max=10"`
	Comment      string `json:"comment"`
	Result       string `json:"result" validate:"required,oneof=pass fail"`
}

// AssessmentResponse is the stored assessment plus the logbook's new status.
type AssessmentResponse struct {
	Assessment    *models.Assessment `json:"assessment"`
	LogbookStatus string             `json:"logbookStatus"`
	Message       string             `json:"message"`
}

// AssessorLogbookItem is one row in the assessor's logbook worklist.
type AssessorLogbookItem struct {
	LogbookID    string `db:"logbook_id" json:"logbookId"`
	StudentID    string `db:"student_id" json:"studentId"`
	StudentName  string `db:"student_name" json:"studentName"`
	StudentEmail string `db:"student_email" json:"studentEmail"`
	Size         int    `db:"size" json:"size"`
	Status       string `db:"status" json:"status"`
}
