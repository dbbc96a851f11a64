package service

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/siwes-hub/logbook-api/internal/dto"
	"github.com/siwes-hub/logbook-api/internal/models"
	appErrors "github.com/siwes-hub/logbook-api/pkg/errors"
)

type assessmentRepository interface {
	CreateTx(ctx context.Context, tx *sqlx.Tx, assessment *models.Assessment) error
	FindByLogbook(ctx context.Context, logbookID string) (*models.Assessment, error)
}

type assessmentLogbookStore interface {
	FindByID(ctx context.Context, id string) (*models.Logbook, error)
	MarkGradedIfUngraded(ctx context.Context, tx *sqlx.Tx, logbookID string) (bool, error)
	Beginx(ctx context.Context) (*sqlx.Tx, error)
}

// AssessmentService records the terminal grading of a logbook. Grading and
// the logbook status flip commit in one transaction so a logbook can never
// end up graded without its assessment row, or vice versa.
type AssessmentService struct {
	assessments assessmentRepository
	logbooks    assessmentLogbookStore
	audit       entryAuditWriter
	notifier    workflowNotifier
	validate    *validator.Validate
	logger      *zap.Logger
}

// NewAssessmentService constructs an AssessmentService.
func NewAssessmentService(assessments assessmentRepository, logbooks assessmentLogbookStore, audit entryAuditWriter, notifier workflowNotifier, validate *validator.Validate, logger *zap.Logger) *AssessmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssessmentService{
		assessments: assessments,
		logbooks:    logbooks,
		audit:       audit,
		notifier:    notifier,
		validate:    validate,
		logger:      logger,
	}
}

// Submit grades a logbook. An already graded logbook refuses a second
// assessment outright; the conditional status flip inside the transaction
// catches a concurrent assessor who graded it first.
func (s *AssessmentService) Submit(ctx context.Context, assessorID, logbookID string, req dto.SubmitAssessmentRequest) (*dto.AssessmentResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assessment payload")
	}

	book, err := s.logbooks.FindByID(ctx, logbookID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch logbook")
	}
	if book == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "logbook not found")
	}
	if models.IsGradedTerminal(book.Status) {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition, "logbook has already been graded")
	}

	assessment := &models.Assessment{
		LogbookID:    logbookID,
		AssessorID:   assessorID,
		Details:      *req.Details,
		Practicality: *req.Practicality,
		Correctness:  *req.Correctness,
		Creativity:   *req.Creativity,
		Presentation: *req.Presentation,
		Result:       models.AssessmentResult(req.Result),
	}
	if req.Comment != "" {
		comment := req.Comment
		assessment.Comment = &comment
	}

	tx, err := s.logbooks.Beginx(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open transaction")
	}
	defer func() {
		_ = tx.Rollback()
	}()

	graded, err := s.logbooks.MarkGradedIfUngraded(ctx, tx, logbookID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update logbook status")
	}
	if !graded {
		return nil, appErrors.Clone(appErrors.ErrStaleTransition, "logbook was graded by another assessor")
	}
	if err := s.assessments.CreateTx(ctx, tx, assessment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store assessment")
	}
	if err := tx.Commit(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit assessment")
	}

	s.recordAudit(ctx, assessorID, logbookID)
	message := fmt.Sprintf("Your logbook was assessed: %s", assessment.Result)
	s.notify(ctx, book.StudentID, models.NotificationAssessmentSubmitted, message)

	return &dto.AssessmentResponse{
		Assessment:    assessment,
		LogbookStatus: string(models.LogbookStatusGraded),
		Message:       "assessment recorded",
	}, nil
}

// Get returns the stored assessment for a logbook, if any.
func (s *AssessmentService) Get(ctx context.Context, logbookID string) (*models.Assessment, error) {
	assessment, err := s.assessments.FindByLogbook(ctx, logbookID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch assessment")
	}
	if assessment == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "logbook has no assessment")
	}
	return assessment, nil
}

func (s *AssessmentService) recordAudit(ctx context.Context, assessorID, logbookID string) {
	if s.audit == nil {
		return
	}
	if err := s.audit.CreateAuditLog(ctx, &models.AuditLog{
		UserID:     &assessorID,
		Action:     models.AuditActionAssessmentSubmit,
		Resource:   "logbook",
		ResourceID: &logbookID,
	}); err != nil {
		s.logger.Warn("failed to record assessment audit log", zap.Error(err))
	}
}

func (s *AssessmentService) notify(ctx context.Context, userID string, kind models.NotificationKind, message string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, userID, kind, message); err != nil {
		s.logger.Warn("failed to dispatch notification", zap.String("kind", string(kind)), zap.Error(err))
	}
}
