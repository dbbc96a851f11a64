package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/siwes-hub/logbook-api/internal/models"
)

// AssessmentRepository persists the one-per-logbook terminal grading record.
type AssessmentRepository struct {
	db *sqlx.DB
}

// NewAssessmentRepository constructs the repository.
func NewAssessmentRepository(db *sqlx.DB) *AssessmentRepository {
	return &AssessmentRepository{db: db}
}

const assessmentColumns = `id, logbook_id, assessor_id, details, practicality, correctness, creativity, presentation, comment, result, created_at`

// CreateTx inserts the assessment inside the grading transaction so the row
// and the logbook status flip commit together.
func (r *AssessmentRepository) CreateTx(ctx context.Context, tx *sqlx.Tx, assessment *models.Assessment) error {
	if assessment.ID == "" {
		assessment.ID = uuid.NewString()
	}
	if assessment.CreatedAt.IsZero() {
		assessment.CreatedAt = time.Now().UTC()
	}
	const query = `
INSERT INTO assessments (id, logbook_id, assessor_id, details, practicality, correctness, creativity, presentation, comment, result, created_at)
VALUES (:id, :logbook_id, :assessor_id, :details, :practicality, :correctness, :creativity, :presentation, :comment, :result, :created_at)`
	if _, err := tx.NamedExecContext(ctx, query, assessment); err != nil {
		return fmt.Errorf("create assessment: %w", err)
	}
	return nil
}

// FindByLogbook returns the stored assessment for a logbook, nil when the
// logbook has not been graded yet.
func (r *AssessmentRepository) FindByLogbook(ctx context.Context, logbookID string) (*models.Assessment, error) {
	query := fmt.Sprintf(`SELECT %s FROM assessments WHERE logbook_id = $1 LIMIT 1`, assessmentColumns)
	var assessment models.Assessment
	if err := r.db.GetContext(ctx, &assessment, query, logbookID); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("find assessment: %w", err)
	}
	return &assessment, nil
}
