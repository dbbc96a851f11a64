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

// EntryRepository owns the canonical daily entry records. The unique index on
// (student_id, week, day) guarantees writes replace in place, never duplicate.
type EntryRepository struct {
	db *sqlx.DB
}

// NewEntryRepository constructs the repository.
func NewEntryRepository(db *sqlx.DB) *EntryRepository {
	return &EntryRepository{db: db}
}

const entryColumns = `id, student_id, week, day, text, status, reviewed_by, created_at, updated_at`

// Upsert saves the student's text for one weekday slot. The row always lands
// on SUBMITTED and any prior reviewer disposition is cleared, so a resave
// re-enters the approval queue.
func (r *EntryRepository) Upsert(ctx context.Context, studentID string, week int, day models.Weekday, text string) (*models.Entry, error) {
	now := time.Now().UTC()
	query := fmt.Sprintf(`
INSERT INTO entries (id, student_id, week, day, text, status, reviewed_by, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, NULL, $7, $7)
ON CONFLICT (student_id, week, day)
DO UPDATE SET text = EXCLUDED.text, status = EXCLUDED.status, reviewed_by = NULL, updated_at = EXCLUDED.updated_at
RETURNING %s`, entryColumns)

	var entry models.Entry
	err := r.db.GetContext(ctx, &entry, query,
		uuid.NewString(), studentID, week, int(day), text, models.EntryStatusSubmitted, now)
	if err != nil {
		return nil, fmt.Errorf("upsert entry: %w", err)
	}
	return &entry, nil
}

// FindByID fetches a single entry.
func (r *EntryRepository) FindByID(ctx context.Context, id string) (*models.Entry, error) {
	query := fmt.Sprintf(`SELECT %s FROM entries WHERE id = $1 LIMIT 1`, entryColumns)
	var entry models.Entry
	if err := r.db.GetContext(ctx, &entry, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("find entry by id: %w", err)
	}
	return &entry, nil
}

// ListAllByStudent returns every saved entry of a student ordered by week
// then day, for exports and full-logbook views.
func (r *EntryRepository) ListAllByStudent(ctx context.Context, studentID string) ([]models.Entry, error) {
	query := fmt.Sprintf(`SELECT %s FROM entries WHERE student_id = $1 ORDER BY week, day`, entryColumns)
	var entries []models.Entry
	if err := r.db.SelectContext(ctx, &entries, query, studentID); err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	return entries, nil
}

// ImportEntry upserts a row carrying its own status, used when mirroring
// records from the legacy backend. Unlike Upsert it preserves the incoming
// review state instead of forcing SUBMITTED.
func (r *EntryRepository) ImportEntry(ctx context.Context, entry *models.Entry) error {
	now := time.Now().UTC()
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	query := `
INSERT INTO entries (id, student_id, week, day, text, status, reviewed_by, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
ON CONFLICT (student_id, week, day)
DO UPDATE SET text = EXCLUDED.text, status = EXCLUDED.status, reviewed_by = EXCLUDED.reviewed_by, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.ExecContext(ctx, query,
		entry.ID, entry.StudentID, entry.Week, int(entry.Day), entry.Text, entry.Status, entry.ReviewedBy, now); err != nil {
		return fmt.Errorf("import entry: %w", err)
	}
	return nil
}

// ListWeek returns the saved entries of one student week, at most five rows.
func (r *EntryRepository) ListWeek(ctx context.Context, studentID string, week int) ([]models.Entry, error) {
	query := fmt.Sprintf(`SELECT %s FROM entries WHERE student_id = $1 AND week = $2 ORDER BY day ASC`, entryColumns)
	var entries []models.Entry
	if err := r.db.SelectContext(ctx, &entries, query, studentID, week); err != nil {
		return nil, fmt.Errorf("list week entries: %w", err)
	}
	return entries, nil
}

// WeeksWithEntries returns the ordinals of weeks holding at least one entry.
func (r *EntryRepository) WeeksWithEntries(ctx context.Context, studentID string) ([]int, error) {
	const query = `SELECT DISTINCT week FROM entries WHERE student_id = $1 ORDER BY week ASC`
	var weeks []int
	if err := r.db.SelectContext(ctx, &weeks, query, studentID); err != nil {
		return nil, fmt.Errorf("list weeks with entries: %w", err)
	}
	return weeks, nil
}

// WeekSummaries returns per-week entry and approval counts for the progress
// scan. Weeks with no rows are simply absent.
func (r *EntryRepository) WeekSummaries(ctx context.Context, studentID string) ([]models.WeekSummary, error) {
	const query = `
SELECT
	week,
	COUNT(*) AS total,
	COUNT(*) FILTER (WHERE status = 'APPROVED') AS approved
FROM entries
WHERE student_id = $1
GROUP BY week
ORDER BY week ASC`
	var summaries []models.WeekSummary
	if err := r.db.SelectContext(ctx, &summaries, query, studentID); err != nil {
		return nil, fmt.Errorf("summarise weeks: %w", err)
	}
	return summaries, nil
}

// ReviewIfSubmitted commits a supervisor decision only if the entry is still
// SUBMITTED at commit time. The conditional WHERE clause is the stale-check:
// zero rows affected means the entry was resaved or already decided underneath
// the in-flight review.
func (r *EntryRepository) ReviewIfSubmitted(ctx context.Context, entryID string, status models.EntryStatus, reviewerID string) (bool, error) {
	const query = `
UPDATE entries
SET status = $2, reviewed_by = $3, updated_at = $4
WHERE id = $1 AND status = $5`
	result, err := r.db.ExecContext(ctx, query, entryID, status, reviewerID, time.Now().UTC(), models.EntryStatusSubmitted)
	if err != nil {
		return false, fmt.Errorf("review entry: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("review entry rows affected: %w", err)
	}
	return affected == 1, nil
}

// CountByStudent returns the total number of saved entries across all weeks.
func (r *EntryRepository) CountByStudent(ctx context.Context, studentID string) (int, error) {
	const query = `SELECT COUNT(*) FROM entries WHERE student_id = $1`
	var total int
	if err := r.db.GetContext(ctx, &total, query, studentID); err != nil {
		return 0, fmt.Errorf("count entries: %w", err)
	}
	return total, nil
}
