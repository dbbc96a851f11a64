package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/siwes-hub/logbook-api/internal/dto"
	"github.com/siwes-hub/logbook-api/internal/models"
	appErrors "github.com/siwes-hub/logbook-api/pkg/errors"
)

type mockEntryRepo struct {
	upserted       *models.Entry
	entryByID      *models.Entry
	weekEntries    []models.Entry
	weeks          []int
	reviewOK       bool
	reviewErr      error
	reviewedStatus models.EntryStatus
}

func (m *mockEntryRepo) Upsert(ctx context.Context, studentID string, week int, day models.Weekday, text string) (*models.Entry, error) {
	m.upserted = &models.Entry{
		ID:        "entry-1",
		StudentID: studentID,
		Week:      week,
		Day:       day,
		Text:      text,
		Status:    models.EntryStatusSubmitted,
	}
	return m.upserted, nil
}

func (m *mockEntryRepo) FindByID(ctx context.Context, id string) (*models.Entry, error) {
	return m.entryByID, nil
}

func (m *mockEntryRepo) ListWeek(ctx context.Context, studentID string, week int) ([]models.Entry, error) {
	return m.weekEntries, nil
}

func (m *mockEntryRepo) WeeksWithEntries(ctx context.Context, studentID string) ([]int, error) {
	return m.weeks, nil
}

func (m *mockEntryRepo) ReviewIfSubmitted(ctx context.Context, entryID string, status models.EntryStatus, reviewerID string) (bool, error) {
	if m.reviewErr != nil {
		return false, m.reviewErr
	}
	if m.reviewOK {
		m.reviewedStatus = status
	}
	return m.reviewOK, nil
}

type mockLogbookReader struct {
	book    *models.Logbook
	created *models.Logbook
}

func (m *mockLogbookReader) FindByStudent(ctx context.Context, studentID string) (*models.Logbook, error) {
	return m.book, nil
}

func (m *mockLogbookReader) Create(ctx context.Context, book *models.Logbook) error {
	book.ID = "logbook-1"
	m.created = book
	return nil
}

type mockSupervisionReader struct {
	sup *models.Supervision
	err error
}

func (m *mockSupervisionReader) FindByStudent(ctx context.Context, studentID string) (*models.Supervision, error) {
	return m.sup, m.err
}

type mockAuditWriter struct {
	logs []*models.AuditLog
}

func (m *mockAuditWriter) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	m.logs = append(m.logs, log)
	return nil
}

type mockInvalidator struct {
	patterns []string
}

func (m *mockInvalidator) DeleteByPattern(ctx context.Context, pattern string) error {
	m.patterns = append(m.patterns, pattern)
	return nil
}

type mockNotifier struct {
	sent []models.Notification
}

func (m *mockNotifier) Notify(ctx context.Context, userID string, kind models.NotificationKind, message string) error {
	m.sent = append(m.sent, models.Notification{UserID: userID, Kind: kind, Message: message})
	return nil
}

func approvedSupervision(supervisorID string) *models.Supervision {
	return &models.Supervision{
		StudentID:    "student-1",
		SupervisorID: &supervisorID,
		Status:       models.SupervisionApproved,
	}
}

func newTestEntryService(entries *mockEntryRepo, books *mockLogbookReader, sups *mockSupervisionReader) (*EntryService, *mockInvalidator, *mockNotifier) {
	cache := &mockInvalidator{}
	notifier := &mockNotifier{}
	svc := NewEntryService(entries, books, sups, &mockAuditWriter{}, cache, notifier, nil, zap.NewNop(), 24)
	return svc, cache, notifier
}

func TestSaveDayRequiresApprovedSupervision(t *testing.T) {
	entries := &mockEntryRepo{}
	for _, sup := range []*models.Supervision{
		nil,
		{StudentID: "student-1", Status: models.SupervisionPending},
		{StudentID: "student-1", Status: models.SupervisionRejected},
	} {
		svc, _, _ := newTestEntryService(entries, &mockLogbookReader{}, &mockSupervisionReader{sup: sup})
		_, err := svc.SaveDay(context.Background(), "student-1", dto.SaveDayRequest{Week: 1, Day: 1, Text: "worked"})
		require.Error(t, err)
		var appErr *appErrors.Error
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, appErrors.ErrForbidden.Code, appErr.Code)
		assert.Nil(t, entries.upserted, "no entry must be written")
	}
}

func TestSaveDaySubmitsAndInvalidatesCache(t *testing.T) {
	entries := &mockEntryRepo{}
	books := &mockLogbookReader{book: &models.Logbook{ID: "logbook-1", StudentID: "student-1", Size: 24, Status: "IN_PROGRESS"}}
	svc, cache, _ := newTestEntryService(entries, books, &mockSupervisionReader{sup: approvedSupervision("sup-1")})

	entry, err := svc.SaveDay(context.Background(), "student-1", dto.SaveDayRequest{Week: 3, Day: 2, Text: "wired the lab bench"})
	require.NoError(t, err)
	assert.Equal(t, models.EntryStatusSubmitted, entry.Status)
	assert.Equal(t, models.Tuesday, entry.Day)
	assert.Contains(t, cache.patterns, "progress:student-1*")
}

func TestSaveDayCreatesLogbookOnFirstWrite(t *testing.T) {
	entries := &mockEntryRepo{}
	books := &mockLogbookReader{}
	svc, _, _ := newTestEntryService(entries, books, &mockSupervisionReader{sup: approvedSupervision("sup-1")})

	_, err := svc.SaveDay(context.Background(), "student-1", dto.SaveDayRequest{Week: 1, Day: 5, Text: "inventory"})
	require.NoError(t, err)
	require.NotNil(t, books.created)
	assert.Equal(t, 24, books.created.Size)
}

func TestSaveDayRejectsWeekBeyondLogbook(t *testing.T) {
	books := &mockLogbookReader{book: &models.Logbook{ID: "logbook-1", StudentID: "student-1", Size: 12, Status: "IN_PROGRESS"}}
	svc, _, _ := newTestEntryService(&mockEntryRepo{}, books, &mockSupervisionReader{sup: approvedSupervision("sup-1")})

	_, err := svc.SaveDay(context.Background(), "student-1", dto.SaveDayRequest{Week: 13, Day: 1, Text: "late"})
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestSaveDayRefusedOnGradedLogbook(t *testing.T) {
	books := &mockLogbookReader{book: &models.Logbook{ID: "logbook-1", StudentID: "student-1", Size: 24, Status: "Passed"}}
	svc, _, _ := newTestEntryService(&mockEntryRepo{}, books, &mockSupervisionReader{sup: approvedSupervision("sup-1")})

	_, err := svc.SaveDay(context.Background(), "student-1", dto.SaveDayRequest{Week: 1, Day: 1, Text: "too late"})
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrInvalidTransition.Code, appErr.Code)
}

func TestReviewApprovesSubmittedEntry(t *testing.T) {
	entries := &mockEntryRepo{
		entryByID: &models.Entry{ID: "entry-1", StudentID: "student-1", Week: 2, Day: models.Monday, Status: models.EntryStatusSubmitted},
		reviewOK:  true,
	}
	svc, cache, notifier := newTestEntryService(entries, &mockLogbookReader{}, &mockSupervisionReader{sup: approvedSupervision("sup-1")})

	entry, err := svc.Review(context.Background(), "sup-1", "entry-1", dto.ReviewEntryRequest{Outcome: "approved"})
	require.NoError(t, err)
	assert.Equal(t, models.EntryStatusApproved, entry.Status)
	assert.Equal(t, models.EntryStatusApproved, entries.reviewedStatus)
	assert.Contains(t, cache.patterns, "progress:student-1*")
	require.Len(t, notifier.sent, 1)
	assert.Equal(t, "student-1", notifier.sent[0].UserID)
	assert.Equal(t, models.NotificationEntryReviewed, notifier.sent[0].Kind)
}

func TestReviewRefusedForUnmatchedSupervisor(t *testing.T) {
	entries := &mockEntryRepo{
		entryByID: &models.Entry{ID: "entry-1", StudentID: "student-1", Status: models.EntryStatusSubmitted},
		reviewOK:  true,
	}
	svc, _, _ := newTestEntryService(entries, &mockLogbookReader{}, &mockSupervisionReader{sup: approvedSupervision("sup-1")})

	_, err := svc.Review(context.Background(), "sup-2", "entry-1", dto.ReviewEntryRequest{Outcome: "approved"})
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrForbidden.Code, appErr.Code)
}

func TestReviewRefusedOnReviewedEntry(t *testing.T) {
	entries := &mockEntryRepo{
		entryByID: &models.Entry{ID: "entry-1", StudentID: "student-1", Status: models.EntryStatusApproved},
	}
	svc, _, _ := newTestEntryService(entries, &mockLogbookReader{}, &mockSupervisionReader{sup: approvedSupervision("sup-1")})

	_, err := svc.Review(context.Background(), "sup-1", "entry-1", dto.ReviewEntryRequest{Outcome: "rejected"})
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrInvalidTransition.Code, appErr.Code)
}

func TestReviewStaleWhenEntryChangedUnderneath(t *testing.T) {
	// The read sees SUBMITTED but the conditional update affects zero rows,
	// as happens when the student resaves between view and verdict.
	entries := &mockEntryRepo{
		entryByID: &models.Entry{ID: "entry-1", StudentID: "student-1", Status: models.EntryStatusSubmitted},
		reviewOK:  false,
	}
	svc, _, notifier := newTestEntryService(entries, &mockLogbookReader{}, &mockSupervisionReader{sup: approvedSupervision("sup-1")})

	_, err := svc.Review(context.Background(), "sup-1", "entry-1", dto.ReviewEntryRequest{Outcome: "approved"})
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrStaleTransition.Code, appErr.Code)
	assert.Empty(t, notifier.sent)
}

func TestGetWeekAuthorization(t *testing.T) {
	entries := &mockEntryRepo{weekEntries: []models.Entry{
		{ID: "entry-1", StudentID: "student-1", Week: 1, Day: models.Monday, Status: models.EntryStatusApproved},
	}}
	svc, _, _ := newTestEntryService(entries, &mockLogbookReader{}, &mockSupervisionReader{sup: approvedSupervision("sup-1")})

	// Student reads their own week.
	resp, err := svc.GetWeek(context.Background(), "student-1", models.RoleStudent, "student-1", 1)
	require.NoError(t, err)
	require.Contains(t, resp.Entries, models.Monday)

	// Another student is refused.
	_, err = svc.GetWeek(context.Background(), "student-2", models.RoleStudent, "student-1", 1)
	require.Error(t, err)

	// The approved supervisor reads it.
	_, err = svc.GetWeek(context.Background(), "sup-1", models.RoleSupervisor, "student-1", 1)
	require.NoError(t, err)

	// A different supervisor is refused.
	_, err = svc.GetWeek(context.Background(), "sup-2", models.RoleSupervisor, "student-1", 1)
	require.Error(t, err)
}
