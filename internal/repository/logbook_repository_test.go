package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siwes-hub/logbook-api/internal/models"
)

func newLogbookMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestLogbookRepositoryFindByStudentMissing(t *testing.T) {
	db, mock, cleanup := newLogbookMock(t)
	defer cleanup()
	repo := NewLogbookRepository(db)

	mock.ExpectQuery("SELECT .+ FROM logbooks WHERE student_id").
		WithArgs("student-1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	book, err := repo.FindByStudent(context.Background(), "student-1")
	require.NoError(t, err)
	assert.Nil(t, book)
}

func TestLogbookRepositoryCreateAssignsID(t *testing.T) {
	db, mock, cleanup := newLogbookMock(t)
	defer cleanup()
	repo := NewLogbookRepository(db)

	mock.ExpectExec("INSERT INTO logbooks").
		WillReturnResult(sqlmock.NewResult(0, 1))

	book := &models.Logbook{StudentID: "student-1", Size: 24, Status: string(models.LogbookStatusInProgress)}
	require.NoError(t, repo.Create(context.Background(), book))
	assert.NotEmpty(t, book.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLogbookRepositoryMarkGradedIfUngraded(t *testing.T) {
	db, mock, cleanup := newLogbookMock(t)
	defer cleanup()
	repo := NewLogbookRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE logbooks").
		WithArgs("logbook-1", models.LogbookStatusGraded, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tx, err := repo.Beginx(context.Background())
	require.NoError(t, err)
	ok, err := repo.MarkGradedIfUngraded(context.Background(), tx, "logbook-1")
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, tx.Commit())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLogbookRepositoryMarkGradedIfUngradedLosesRace(t *testing.T) {
	db, mock, cleanup := newLogbookMock(t)
	defer cleanup()
	repo := NewLogbookRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE logbooks").
		WithArgs("logbook-1", models.LogbookStatusGraded, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	tx, err := repo.Beginx(context.Background())
	require.NoError(t, err)
	ok, err := repo.MarkGradedIfUngraded(context.Background(), tx, "logbook-1")
	require.NoError(t, err)
	assert.False(t, ok)
	require.NoError(t, tx.Rollback())
}

func TestLogbookRepositoryListForAssessor(t *testing.T) {
	db, mock, cleanup := newLogbookMock(t)
	defer cleanup()
	repo := NewLogbookRepository(db)

	rows := sqlmock.NewRows([]string{"logbook_id", "student_id", "student_name", "student_email", "size", "status"}).
		AddRow("logbook-1", "student-1", "Ada Obi", "ada@example.edu", 24, "IN_PROGRESS").
		AddRow("logbook-2", "student-2", "Chidi Eze", "chidi@example.edu", 24, "Passed")
	mock.ExpectQuery("FROM logbooks l").
		WillReturnRows(rows)

	items, err := repo.ListForAssessor(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "logbook-1", items[0].LogbookID)
	assert.Equal(t, "Passed", items[1].Status)
}

func TestLogbookRepositoryUpdateMeta(t *testing.T) {
	db, mock, cleanup := newLogbookMock(t)
	defer cleanup()
	repo := NewLogbookRepository(db)

	mock.ExpectExec("UPDATE logbooks SET size").
		WithArgs("logbook-1", 12, "IN_PROGRESS", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateMeta(context.Background(), "logbook-1", 12, "IN_PROGRESS"))
}
