package service

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/siwes-hub/logbook-api/internal/dto"
	"github.com/siwes-hub/logbook-api/internal/models"
	appErrors "github.com/siwes-hub/logbook-api/pkg/errors"
)

type mockAssessmentRepo struct {
	created *models.Assessment
	stored  *models.Assessment
}

func (m *mockAssessmentRepo) CreateTx(ctx context.Context, tx *sqlx.Tx, assessment *models.Assessment) error {
	assessment.ID = "assessment-1"
	m.created = assessment
	return nil
}

func (m *mockAssessmentRepo) FindByLogbook(ctx context.Context, logbookID string) (*models.Assessment, error) {
	return m.stored, nil
}

// mockAssessmentLogbooks opens real transactions against a sqlmock-backed
// database so the commit/rollback flow exercises the driver.
type mockAssessmentLogbooks struct {
	db      *sqlx.DB
	book    *models.Logbook
	gradeOK bool
	graded  bool
}

func (m *mockAssessmentLogbooks) FindByID(ctx context.Context, id string) (*models.Logbook, error) {
	return m.book, nil
}

func (m *mockAssessmentLogbooks) MarkGradedIfUngraded(ctx context.Context, tx *sqlx.Tx, logbookID string) (bool, error) {
	if m.gradeOK {
		m.graded = true
	}
	return m.gradeOK, nil
}

func (m *mockAssessmentLogbooks) Beginx(ctx context.Context) (*sqlx.Tx, error) {
	return m.db.BeginTxx(ctx, nil)
}

func newAssessmentMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

func intPtr(v int) *int { return &v }

func validAssessmentRequest() dto.SubmitAssessmentRequest {
	return dto.SubmitAssessmentRequest{
		Details:      intPtr(8),
		Practicality: intPtr(7),
		Correctness:  intPtr(9),
		Creativity:   intPtr(6),
		Presentation: intPtr(8),
		Comment:      "solid term",
		Result:       "pass",
	}
}

func TestSubmitAssessmentGradesLogbook(t *testing.T) {
	db, mock := newAssessmentMockDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	repo := &mockAssessmentRepo{}
	logbooks := &mockAssessmentLogbooks{
		db:      db,
		book:    &models.Logbook{ID: "logbook-1", StudentID: "student-1", Status: string(models.LogbookStatusInProgress)},
		gradeOK: true,
	}
	audit := &mockAuditWriter{}
	notifier := &mockNotifier{}
	svc := NewAssessmentService(repo, logbooks, audit, notifier, nil, zap.NewNop())

	resp, err := svc.Submit(context.Background(), "assessor-1", "logbook-1", validAssessmentRequest())
	require.NoError(t, err)
	assert.Equal(t, string(models.LogbookStatusGraded), resp.LogbookStatus)
	require.NotNil(t, repo.created)
	assert.Equal(t, "assessor-1", repo.created.AssessorID)
	assert.Equal(t, models.AssessmentResult("pass"), repo.created.Result)
	require.NotNil(t, repo.created.Comment)
	assert.Equal(t, "solid term", *repo.created.Comment)
	assert.True(t, logbooks.graded)
	require.Len(t, notifier.sent, 1)
	assert.Equal(t, "student-1", notifier.sent[0].UserID)
	require.Len(t, audit.logs, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmitAssessmentRefusedOnGradedLogbook(t *testing.T) {
	db, _ := newAssessmentMockDB(t)
	logbooks := &mockAssessmentLogbooks{
		db:   db,
		book: &models.Logbook{ID: "logbook-1", StudentID: "student-1", Status: "Passed"},
	}
	svc := NewAssessmentService(&mockAssessmentRepo{}, logbooks, nil, nil, nil, zap.NewNop())

	_, err := svc.Submit(context.Background(), "assessor-1", "logbook-1", validAssessmentRequest())
	require.Error(t, err)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrInvalidTransition.Code, appErr.Code)
}

func TestSubmitAssessmentStaleWhenAnotherAssessorWins(t *testing.T) {
	db, mock := newAssessmentMockDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	notifier := &mockNotifier{}
	logbooks := &mockAssessmentLogbooks{
		db:      db,
		book:    &models.Logbook{ID: "logbook-1", StudentID: "student-1", Status: string(models.LogbookStatusInProgress)},
		gradeOK: false,
	}
	svc := NewAssessmentService(&mockAssessmentRepo{}, logbooks, nil, notifier, nil, zap.NewNop())

	_, err := svc.Submit(context.Background(), "assessor-1", "logbook-1", validAssessmentRequest())
	require.Error(t, err)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrStaleTransition.Code, appErr.Code)
	assert.Empty(t, notifier.sent)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmitAssessmentRejectsMissingScore(t *testing.T) {
	db, _ := newAssessmentMockDB(t)
	logbooks := &mockAssessmentLogbooks{
		db:   db,
		book: &models.Logbook{ID: "logbook-1", Status: string(models.LogbookStatusInProgress)},
	}
	svc := NewAssessmentService(&mockAssessmentRepo{}, logbooks, nil, nil, nil, zap.NewNop())

	req := validAssessmentRequest()
	req.Creativity = nil
	_, err := svc.Submit(context.Background(), "assessor-1", "logbook-1", req)
	require.Error(t, err)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestSubmitAssessmentRejectsLogbookNotFound(t *testing.T) {
	db, _ := newAssessmentMockDB(t)
	svc := NewAssessmentService(&mockAssessmentRepo{}, &mockAssessmentLogbooks{db: db}, nil, nil, nil, zap.NewNop())

	_, err := svc.Submit(context.Background(), "assessor-1", "missing", validAssessmentRequest())
	require.Error(t, err)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestGetAssessmentNotFound(t *testing.T) {
	svc := NewAssessmentService(&mockAssessmentRepo{}, nil, nil, nil, nil, zap.NewNop())

	_, err := svc.Get(context.Background(), "logbook-1")
	require.Error(t, err)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestGetAssessmentReturnsStored(t *testing.T) {
	repo := &mockAssessmentRepo{stored: &models.Assessment{ID: "assessment-1", LogbookID: "logbook-1"}}
	svc := NewAssessmentService(repo, nil, nil, nil, nil, zap.NewNop())

	got, err := svc.Get(context.Background(), "logbook-1")
	require.NoError(t, err)
	assert.Equal(t, "assessment-1", got.ID)
}
