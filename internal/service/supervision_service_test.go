package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/siwes-hub/logbook-api/internal/dto"
	"github.com/siwes-hub/logbook-api/internal/models"
	appErrors "github.com/siwes-hub/logbook-api/pkg/errors"
)

type mockSupervisionRepo struct {
	current    *models.Supervision
	upserted   *models.Supervision
	decideOK   bool
	decidedTo  models.SupervisionStatus
	pending    []dto.PendingSupervisionItem
	supervised []dto.PendingSupervisionItem
}

func (m *mockSupervisionRepo) FindByStudent(ctx context.Context, studentID string) (*models.Supervision, error) {
	return m.current, nil
}

func (m *mockSupervisionRepo) Upsert(ctx context.Context, sup *models.Supervision) error {
	m.upserted = sup
	return nil
}

func (m *mockSupervisionRepo) DecideIfPending(ctx context.Context, studentID, supervisorID string, status models.SupervisionStatus) (bool, error) {
	if m.decideOK {
		m.decidedTo = status
	}
	return m.decideOK, nil
}

func (m *mockSupervisionRepo) ListPendingForSupervisor(ctx context.Context, supervisorID string) ([]dto.PendingSupervisionItem, error) {
	return m.pending, nil
}

func (m *mockSupervisionRepo) ListApprovedStudents(ctx context.Context, supervisorID string) ([]dto.PendingSupervisionItem, error) {
	return m.supervised, nil
}

type mockSupervisionUsers struct {
	user *models.User
	logs []*models.AuditLog
}

func (m *mockSupervisionUsers) FindByID(ctx context.Context, id string) (*models.User, error) {
	if m.user == nil {
		return nil, sql.ErrNoRows
	}
	return m.user, nil
}

func (m *mockSupervisionUsers) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	m.logs = append(m.logs, log)
	return nil
}

func activeSupervisorUser() *models.User {
	return &models.User{ID: "sup-1", FullName: "Dr. Bello", Role: models.RoleSupervisor, Active: true}
}

func newTestSupervisionService(repo *mockSupervisionRepo, users *mockSupervisionUsers) (*SupervisionService, *mockNotifier) {
	notifier := &mockNotifier{}
	return NewSupervisionService(repo, users, notifier, nil, zap.NewNop()), notifier
}

func TestRequestSupervisionFromNone(t *testing.T) {
	repo := &mockSupervisionRepo{}
	svc, notifier := newTestSupervisionService(repo, &mockSupervisionUsers{user: activeSupervisorUser()})

	resp, err := svc.Request(context.Background(), "student-1", dto.RequestSupervisionRequest{SupervisorID: "sup-1"})
	require.NoError(t, err)
	assert.Equal(t, models.SupervisionPending, resp.Status)
	require.NotNil(t, repo.upserted)
	assert.Equal(t, models.SupervisionPending, repo.upserted.Status)
	assert.Equal(t, "Dr. Bello", repo.upserted.SupervisorName)
	require.Len(t, notifier.sent, 1)
	assert.Equal(t, "sup-1", notifier.sent[0].UserID)
}

func TestRequestSupervisionRetryAfterRejection(t *testing.T) {
	supID := "sup-old"
	repo := &mockSupervisionRepo{current: &models.Supervision{
		StudentID: "student-1", SupervisorID: &supID, Status: models.SupervisionRejected,
	}}
	svc, _ := newTestSupervisionService(repo, &mockSupervisionUsers{user: activeSupervisorUser()})

	resp, err := svc.Request(context.Background(), "student-1", dto.RequestSupervisionRequest{SupervisorID: "sup-1"})
	require.NoError(t, err)
	assert.Equal(t, models.SupervisionPending, resp.Status)
	require.NotNil(t, resp.SupervisorID)
	assert.Equal(t, "sup-1", *resp.SupervisorID)
}

func TestRequestSupervisionRefusedWhilePendingOrApproved(t *testing.T) {
	supID := "sup-1"
	for _, status := range []models.SupervisionStatus{models.SupervisionPending, models.SupervisionApproved} {
		repo := &mockSupervisionRepo{current: &models.Supervision{
			StudentID: "student-1", SupervisorID: &supID, Status: status,
		}}
		svc, _ := newTestSupervisionService(repo, &mockSupervisionUsers{user: activeSupervisorUser()})

		_, err := svc.Request(context.Background(), "student-1", dto.RequestSupervisionRequest{SupervisorID: "sup-1"})
		require.Error(t, err, "request while %s", status)
		var appErr *appErrors.Error
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, appErrors.ErrInvalidTransition.Code, appErr.Code)
		assert.Nil(t, repo.upserted)
	}
}

func TestRequestSupervisionRejectsNonSupervisor(t *testing.T) {
	users := &mockSupervisionUsers{user: &models.User{ID: "student-9", Role: models.RoleStudent, Active: true}}
	svc, _ := newTestSupervisionService(&mockSupervisionRepo{}, users)

	_, err := svc.Request(context.Background(), "student-1", dto.RequestSupervisionRequest{SupervisorID: "student-9"})
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestDecideSupervisionApprove(t *testing.T) {
	supID := "sup-1"
	repo := &mockSupervisionRepo{
		current:  &models.Supervision{StudentID: "student-1", SupervisorID: &supID, Status: models.SupervisionPending},
		decideOK: true,
	}
	svc, notifier := newTestSupervisionService(repo, &mockSupervisionUsers{user: activeSupervisorUser()})

	resp, err := svc.Decide(context.Background(), "sup-1", "student-1", dto.DecideSupervisionRequest{Outcome: "approved"})
	require.NoError(t, err)
	assert.Equal(t, models.SupervisionApproved, resp.Status)
	assert.Equal(t, models.SupervisionApproved, repo.decidedTo)
	require.Len(t, notifier.sent, 1)
	assert.Equal(t, "student-1", notifier.sent[0].UserID)
	assert.Equal(t, models.NotificationSupervisionDecided, notifier.sent[0].Kind)
}

func TestDecideSupervisionRefusedWhenNotPending(t *testing.T) {
	supID := "sup-1"
	for _, status := range []models.SupervisionStatus{models.SupervisionApproved, models.SupervisionRejected} {
		repo := &mockSupervisionRepo{
			current: &models.Supervision{StudentID: "student-1", SupervisorID: &supID, Status: status},
		}
		svc, _ := newTestSupervisionService(repo, &mockSupervisionUsers{user: activeSupervisorUser()})

		_, err := svc.Decide(context.Background(), "sup-1", "student-1", dto.DecideSupervisionRequest{Outcome: "rejected"})
		require.Error(t, err, "decide while %s", status)
		var appErr *appErrors.Error
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, appErrors.ErrInvalidTransition.Code, appErr.Code)
	}
}

func TestDecideSupervisionRefusedForWrongSupervisor(t *testing.T) {
	supID := "sup-1"
	repo := &mockSupervisionRepo{
		current:  &models.Supervision{StudentID: "student-1", SupervisorID: &supID, Status: models.SupervisionPending},
		decideOK: true,
	}
	svc, _ := newTestSupervisionService(repo, &mockSupervisionUsers{user: activeSupervisorUser()})

	_, err := svc.Decide(context.Background(), "sup-2", "student-1", dto.DecideSupervisionRequest{Outcome: "approved"})
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrForbidden.Code, appErr.Code)
}

func TestDecideSupervisionStaleOnRace(t *testing.T) {
	// The read saw PENDING but the conditional update lost to a concurrent
	// decision.
	supID := "sup-1"
	repo := &mockSupervisionRepo{
		current:  &models.Supervision{StudentID: "student-1", SupervisorID: &supID, Status: models.SupervisionPending},
		decideOK: false,
	}
	svc, notifier := newTestSupervisionService(repo, &mockSupervisionUsers{user: activeSupervisorUser()})

	_, err := svc.Decide(context.Background(), "sup-1", "student-1", dto.DecideSupervisionRequest{Outcome: "approved"})
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrStaleTransition.Code, appErr.Code)
	assert.Empty(t, notifier.sent)
}

func TestSupervisionStatusDefaultsToNone(t *testing.T) {
	svc, _ := newTestSupervisionService(&mockSupervisionRepo{}, &mockSupervisionUsers{})

	resp, err := svc.Status(context.Background(), "student-1")
	require.NoError(t, err)
	assert.Equal(t, models.SupervisionNone, resp.Status)
	assert.Nil(t, resp.SupervisorID)
}
