package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/siwes-hub/logbook-api/internal/dto"
	"github.com/siwes-hub/logbook-api/internal/models"
)

// SupervisionRepository persists the one-per-student supervision link.
type SupervisionRepository struct {
	db *sqlx.DB
}

// NewSupervisionRepository constructs the repository.
func NewSupervisionRepository(db *sqlx.DB) *SupervisionRepository {
	return &SupervisionRepository{db: db}
}

const supervisionColumns = `id, student_id, supervisor_id, supervisor_name, status, created_at, updated_at`

// FindByStudent returns the student's supervision row, nil when none exists
// yet (an absent row reads as status NONE at the service layer).
func (r *SupervisionRepository) FindByStudent(ctx context.Context, studentID string) (*models.Supervision, error) {
	query := fmt.Sprintf(`SELECT %s FROM supervisions WHERE student_id = $1 LIMIT 1`, supervisionColumns)
	var sup models.Supervision
	if err := r.db.GetContext(ctx, &sup, query, studentID); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("find supervision: %w", err)
	}
	return &sup, nil
}

// Upsert records a supervision request, replacing any previous relationship
// row for the student.
func (r *SupervisionRepository) Upsert(ctx context.Context, sup *models.Supervision) error {
	if sup.ID == "" {
		sup.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if sup.CreatedAt.IsZero() {
		sup.CreatedAt = now
	}
	sup.UpdatedAt = now

	const query = `
INSERT INTO supervisions (id, student_id, supervisor_id, supervisor_name, status, created_at, updated_at)
VALUES (:id, :student_id, :supervisor_id, :supervisor_name, :status, :created_at, :updated_at)
ON CONFLICT (student_id)
DO UPDATE SET supervisor_id = EXCLUDED.supervisor_id, supervisor_name = EXCLUDED.supervisor_name, status = EXCLUDED.status, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, sup); err != nil {
		return fmt.Errorf("upsert supervision: %w", err)
	}
	return nil
}

// DecideIfPending commits a supervisor verdict only while the relationship is
// still PENDING and assigned to that supervisor. Zero rows affected means the
// request was already decided or re-routed.
func (r *SupervisionRepository) DecideIfPending(ctx context.Context, studentID, supervisorID string, status models.SupervisionStatus) (bool, error) {
	const query = `
UPDATE supervisions
SET status = $3, updated_at = $4
WHERE student_id = $1 AND supervisor_id = $2 AND status = $5`
	result, err := r.db.ExecContext(ctx, query, studentID, supervisorID, status, time.Now().UTC(), models.SupervisionPending)
	if err != nil {
		return false, fmt.Errorf("decide supervision: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("decide supervision rows affected: %w", err)
	}
	return affected == 1, nil
}

// ListPendingForSupervisor returns the students awaiting this supervisor's
// decision.
func (r *SupervisionRepository) ListPendingForSupervisor(ctx context.Context, supervisorID string) ([]dto.PendingSupervisionItem, error) {
	const query = `
SELECT
	s.student_id AS student_id,
	u.full_name AS student_name,
	u.email AS student_email
FROM supervisions s
JOIN users u ON u.id = s.student_id
WHERE s.supervisor_id = $1 AND s.status = $2
ORDER BY s.updated_at ASC`
	var items []dto.PendingSupervisionItem
	if err := r.db.SelectContext(ctx, &items, query, supervisorID, models.SupervisionPending); err != nil {
		return nil, fmt.Errorf("list pending supervisions: %w", err)
	}
	return items, nil
}

// ListApprovedStudents returns the students this supervisor currently reviews.
func (r *SupervisionRepository) ListApprovedStudents(ctx context.Context, supervisorID string) ([]dto.PendingSupervisionItem, error) {
	const query = `
SELECT
	s.student_id AS student_id,
	u.full_name AS student_name,
	u.email AS student_email
FROM supervisions s
JOIN users u ON u.id = s.student_id
WHERE s.supervisor_id = $1 AND s.status = $2
ORDER BY u.full_name ASC`
	var items []dto.PendingSupervisionItem
	if err := r.db.SelectContext(ctx, &items, query, supervisorID, models.SupervisionApproved); err != nil {
		return nil, fmt.Errorf("list supervised students: %w", err)
	}
	return items, nil
}
