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

// LogbookRepository persists the coarse per-student logbook record.
type LogbookRepository struct {
	db *sqlx.DB
}

// NewLogbookRepository constructs the repository.
func NewLogbookRepository(db *sqlx.DB) *LogbookRepository {
	return &LogbookRepository{db: db}
}

const logbookColumns = `id, student_id, size, status, created_at, updated_at`

// FindByID fetches a logbook by identifier.
func (r *LogbookRepository) FindByID(ctx context.Context, id string) (*models.Logbook, error) {
	query := fmt.Sprintf(`SELECT %s FROM logbooks WHERE id = $1 LIMIT 1`, logbookColumns)
	var book models.Logbook
	if err := r.db.GetContext(ctx, &book, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("find logbook by id: %w", err)
	}
	return &book, nil
}

// FindByStudent fetches the student's logbook, creating none.
func (r *LogbookRepository) FindByStudent(ctx context.Context, studentID string) (*models.Logbook, error) {
	query := fmt.Sprintf(`SELECT %s FROM logbooks WHERE student_id = $1 LIMIT 1`, logbookColumns)
	var book models.Logbook
	if err := r.db.GetContext(ctx, &book, query, studentID); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("find logbook by student: %w", err)
	}
	return &book, nil
}

// Create inserts a new logbook row.
func (r *LogbookRepository) Create(ctx context.Context, book *models.Logbook) error {
	if book.ID == "" {
		book.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if book.CreatedAt.IsZero() {
		book.CreatedAt = now
	}
	book.UpdatedAt = now

	const query = `INSERT INTO logbooks (id, student_id, size, status, created_at, updated_at) VALUES (:id, :student_id, :size, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, book); err != nil {
		return fmt.Errorf("create logbook: %w", err)
	}
	return nil
}

// UpdateMeta overwrites the logbook's size and status, used when mirroring
// the legacy backend's view of the logbook.
func (r *LogbookRepository) UpdateMeta(ctx context.Context, id string, size int, status string) error {
	const query = `UPDATE logbooks SET size = $2, status = $3, updated_at = $4 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, size, status, time.Now().UTC()); err != nil {
		return fmt.Errorf("update logbook meta: %w", err)
	}
	return nil
}

// MarkGradedIfUngraded flips the logbook to GRADED unless it already sits in
// one of the graded terminal spellings. Zero rows affected means a concurrent
// or repeated grading attempt lost the race and must be refused.
func (r *LogbookRepository) MarkGradedIfUngraded(ctx context.Context, tx *sqlx.Tx, logbookID string) (bool, error) {
	const query = `
UPDATE logbooks
SET status = $2, updated_at = $3
WHERE id = $1 AND LOWER(status) NOT IN ('graded', 'passed', 'assessed', 'completed')`
	result, err := tx.ExecContext(ctx, query, logbookID, models.LogbookStatusGraded, time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("mark logbook graded: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("mark logbook graded rows affected: %w", err)
	}
	return affected == 1, nil
}

// ListForAssessor returns the assessor worklist of logbooks with their owners.
func (r *LogbookRepository) ListForAssessor(ctx context.Context) ([]dto.AssessorLogbookItem, error) {
	const query = `
SELECT
	l.id AS logbook_id,
	l.student_id AS student_id,
	u.full_name AS student_name,
	u.email AS student_email,
	l.size AS size,
	l.status AS status
FROM logbooks l
JOIN users u ON u.id = l.student_id
ORDER BY u.full_name ASC`
	var items []dto.AssessorLogbookItem
	if err := r.db.SelectContext(ctx, &items, query); err != nil {
		return nil, fmt.Errorf("list assessor logbooks: %w", err)
	}
	return items, nil
}

// Beginx exposes a transaction for multi-statement grading commits.
func (r *LogbookRepository) Beginx(ctx context.Context) (*sqlx.Tx, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin logbook transaction: %w", err)
	}
	return tx, nil
}
