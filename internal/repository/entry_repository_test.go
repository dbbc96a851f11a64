package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siwes-hub/logbook-api/internal/models"
)

func newEntryMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func entryRows(now time.Time, status models.EntryStatus) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "student_id", "week", "day", "text", "status", "reviewed_by", "created_at", "updated_at"}).
		AddRow("entry-1", "student-1", 3, 1, "installed routers", status, nil, now, now)
}

func TestEntryRepositoryUpsertAlwaysSubmits(t *testing.T) {
	db, mock, cleanup := newEntryMock(t)
	defer cleanup()
	repo := NewEntryRepository(db)

	now := time.Now()
	mock.ExpectQuery("INSERT INTO entries").
		WithArgs(sqlmock.AnyArg(), "student-1", 3, 1, "installed routers", models.EntryStatusSubmitted, sqlmock.AnyArg()).
		WillReturnRows(entryRows(now, models.EntryStatusSubmitted))

	entry, err := repo.Upsert(context.Background(), "student-1", 3, models.Monday, "installed routers")
	require.NoError(t, err)
	assert.Equal(t, models.EntryStatusSubmitted, entry.Status)
	assert.Nil(t, entry.ReviewedBy)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEntryRepositoryFindByIDMissing(t *testing.T) {
	db, mock, cleanup := newEntryMock(t)
	defer cleanup()
	repo := NewEntryRepository(db)

	mock.ExpectQuery("SELECT .+ FROM entries WHERE id").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	entry, err := repo.FindByID(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, entry)
}

func TestEntryRepositoryReviewIfSubmitted(t *testing.T) {
	db, mock, cleanup := newEntryMock(t)
	defer cleanup()
	repo := NewEntryRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE entries")).
		WithArgs("entry-1", models.EntryStatusApproved, "sup-1", sqlmock.AnyArg(), models.EntryStatusSubmitted).
		WillReturnResult(sqlmock.NewResult(0, 1))

	ok, err := repo.ReviewIfSubmitted(context.Background(), "entry-1", models.EntryStatusApproved, "sup-1")
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEntryRepositoryReviewIfSubmittedZeroRows(t *testing.T) {
	db, mock, cleanup := newEntryMock(t)
	defer cleanup()
	repo := NewEntryRepository(db)

	// The entry was resaved or decided between read and update.
	mock.ExpectExec(regexp.QuoteMeta("UPDATE entries")).
		WithArgs("entry-1", models.EntryStatusRejected, "sup-1", sqlmock.AnyArg(), models.EntryStatusSubmitted).
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := repo.ReviewIfSubmitted(context.Background(), "entry-1", models.EntryStatusRejected, "sup-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEntryRepositoryWeekSummaries(t *testing.T) {
	db, mock, cleanup := newEntryMock(t)
	defer cleanup()
	repo := NewEntryRepository(db)

	rows := sqlmock.NewRows([]string{"week", "total", "approved"}).
		AddRow(1, 5, 5).
		AddRow(2, 5, 3).
		AddRow(4, 2, 0)
	mock.ExpectQuery("SELECT").
		WithArgs("student-1").
		WillReturnRows(rows)

	summaries, err := repo.WeekSummaries(context.Background(), "student-1")
	require.NoError(t, err)
	require.Len(t, summaries, 3)
	assert.True(t, summaries[0].Complete())
	assert.False(t, summaries[1].Complete())
	assert.Equal(t, 4, summaries[2].Week)
}

func TestEntryRepositoryImportEntryPreservesStatus(t *testing.T) {
	db, mock, cleanup := newEntryMock(t)
	defer cleanup()
	repo := NewEntryRepository(db)

	reviewer := "sup-1"
	mock.ExpectExec("INSERT INTO entries").
		WithArgs(sqlmock.AnyArg(), "student-1", 2, 4, "cable trays", models.EntryStatusApproved, &reviewer, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	entry := &models.Entry{
		StudentID:  "student-1",
		Week:       2,
		Day:        models.Thursday,
		Text:       "cable trays",
		Status:     models.EntryStatusApproved,
		ReviewedBy: &reviewer,
	}
	require.NoError(t, repo.ImportEntry(context.Background(), entry))
	assert.NotEmpty(t, entry.ID)
}
