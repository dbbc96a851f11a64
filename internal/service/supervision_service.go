package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/siwes-hub/logbook-api/internal/dto"
	"github.com/siwes-hub/logbook-api/internal/models"
	appErrors "github.com/siwes-hub/logbook-api/pkg/errors"
)

type supervisionRepository interface {
	FindByStudent(ctx context.Context, studentID string) (*models.Supervision, error)
	Upsert(ctx context.Context, sup *models.Supervision) error
	DecideIfPending(ctx context.Context, studentID, supervisorID string, status models.SupervisionStatus) (bool, error)
	ListPendingForSupervisor(ctx context.Context, supervisorID string) ([]dto.PendingSupervisionItem, error)
	ListApprovedStudents(ctx context.Context, supervisorID string) ([]dto.PendingSupervisionItem, error)
}

type supervisionUserReader interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

type workflowNotifier interface {
	Notify(ctx context.Context, userID string, kind models.NotificationKind, message string) error
}

// SupervisionService manages the student/supervisor pairing lifecycle.
type SupervisionService struct {
	repo     supervisionRepository
	users    supervisionUserReader
	notifier workflowNotifier
	validate *validator.Validate
	logger   *zap.Logger
}

// NewSupervisionService constructs a SupervisionService.
func NewSupervisionService(repo supervisionRepository, users supervisionUserReader, notifier workflowNotifier, validate *validator.Validate, logger *zap.Logger) *SupervisionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SupervisionService{repo: repo, users: users, notifier: notifier, validate: validate, logger: logger}
}

// Status returns the supervision state for a student, NONE when no request
// was ever made.
func (s *SupervisionService) Status(ctx context.Context, studentID string) (*dto.SupervisionResponse, error) {
	sup, err := s.repo.FindByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch supervision")
	}
	if sup == nil {
		return &dto.SupervisionResponse{StudentID: studentID, Status: models.SupervisionNone}, nil
	}
	return newSupervisionResponse(sup), nil
}

// Request asks a supervisor to take on a student. Pending and approved
// pairings refuse a new request; a rejected student may try again.
func (s *SupervisionService) Request(ctx context.Context, studentID string, req dto.RequestSupervisionRequest) (*dto.SupervisionResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid supervision request")
	}

	current, err := s.repo.FindByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch supervision")
	}
	currentStatus := models.SupervisionNone
	if current != nil {
		currentStatus = current.Status
	}
	next, err := models.TransitionSupervisionRequest(currentStatus)
	if err != nil {
		return nil, err
	}

	supervisor, err := s.users.FindByID(ctx, req.SupervisorID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "supervisor not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch supervisor")
	}
	if supervisor.Role != models.RoleSupervisor {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "supervisor not found")
	}
	if !supervisor.Active {
		return nil, appErrors.Clone(appErrors.ErrValidation, "supervisor account is inactive")
	}

	sup := &models.Supervision{
		StudentID:      studentID,
		SupervisorID:   &supervisor.ID,
		SupervisorName: supervisor.FullName,
		Status:         next,
	}
	if err := s.repo.Upsert(ctx, sup); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save supervision request")
	}

	s.recordAudit(ctx, studentID, models.AuditActionSupervisionRequest, supervisor.ID)
	s.notify(ctx, supervisor.ID, models.NotificationSupervisionRequested, "A student requested your supervision")
	return newSupervisionResponse(sup), nil
}

// Decide resolves a pending request. Only the matched supervisor may decide,
// and only while the request is still pending.
func (s *SupervisionService) Decide(ctx context.Context, supervisorID, studentID string, req dto.DecideSupervisionRequest) (*dto.SupervisionResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid supervision decision")
	}

	current, err := s.repo.FindByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch supervision")
	}
	if current == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "supervision request not found")
	}
	if current.SupervisorID == nil || *current.SupervisorID != supervisorID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "request is assigned to another supervisor")
	}

	next, err := models.TransitionSupervisionDecide(current.Status, req.Outcome == "approved")
	if err != nil {
		return nil, err
	}

	decided, err := s.repo.DecideIfPending(ctx, studentID, supervisorID, next)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record supervision decision")
	}
	if !decided {
		// The request moved out of PENDING between the read and the update.
		return nil, appErrors.Clone(appErrors.ErrStaleTransition, "supervision request was already decided")
	}
	current.Status = next

	s.recordAudit(ctx, supervisorID, models.AuditActionSupervisionDecide, studentID)
	message := "Your supervision request was rejected"
	if next == models.SupervisionApproved {
		message = "Your supervision request was approved"
	}
	s.notify(ctx, studentID, models.NotificationSupervisionDecided, message)
	return newSupervisionResponse(current), nil
}

// PendingForSupervisor lists requests awaiting the supervisor's decision.
func (s *SupervisionService) PendingForSupervisor(ctx context.Context, supervisorID string) ([]dto.PendingSupervisionItem, error) {
	items, err := s.repo.ListPendingForSupervisor(ctx, supervisorID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list pending supervisions")
	}
	return items, nil
}

// ApprovedStudents lists the students a supervisor currently oversees.
func (s *SupervisionService) ApprovedStudents(ctx context.Context, supervisorID string) ([]dto.PendingSupervisionItem, error) {
	items, err := s.repo.ListApprovedStudents(ctx, supervisorID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list supervised students")
	}
	return items, nil
}

func (s *SupervisionService) recordAudit(ctx context.Context, userID, action, resourceID string) {
	if err := s.users.CreateAuditLog(ctx, &models.AuditLog{
		UserID:     &userID,
		Action:     action,
		Resource:   "supervision",
		ResourceID: &resourceID,
	}); err != nil {
		s.logger.Warn("failed to record supervision audit log", zap.String("action", action), zap.Error(err))
	}
}

func (s *SupervisionService) notify(ctx context.Context, userID string, kind models.NotificationKind, message string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, userID, kind, message); err != nil {
		s.logger.Warn("failed to dispatch notification", zap.String("kind", string(kind)), zap.Error(err))
	}
}

func newSupervisionResponse(sup *models.Supervision) *dto.SupervisionResponse {
	return &dto.SupervisionResponse{
		StudentID:      sup.StudentID,
		SupervisorID:   sup.SupervisorID,
		SupervisorName: sup.SupervisorName,
		Status:         sup.Status,
	}
}
