package models

import "time"

// AssessmentResult is the terminal pass/fail verdict on a logbook.
type AssessmentResult string

const (
	AssessmentPass AssessmentResult = "pass"
	AssessmentFail AssessmentResult = "fail"
)

// Assessment is the one-per-logbook terminal grading record. Once the logbook
// reaches a graded terminal status the row is immutable.
type Assessment struct {
	ID           string           `db:"id" json:"id"`
	LogbookID    string           `db:"logbook_id" json:"logbook_id"`
	AssessorID   string           `db:"assessor_id" json:"assessor_id"`
	Details      int              `db:"details" json:"details"`
	Practicality int              `db:"practicality" json:"practicality"`
	Correctness  int              `db:"correctness" json:"correctness"`
	Creativity   int              `db:"creativity" json:"creativity"`
	Presentation int              `db:"presentation" json:"presentation"`
	Comment      *string          `db:"comment" json:"comment,omitempty"`
	Result       AssessmentResult `db:"result" json:"result"`
	CreatedAt    time.Time        `db:"created_at" json:"created_at"`
}
