package service

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/siwes-hub/logbook-api/internal/dto"
	"github.com/siwes-hub/logbook-api/internal/models"
	appErrors "github.com/siwes-hub/logbook-api/pkg/errors"
)

type entryRepository interface {
	Upsert(ctx context.Context, studentID string, week int, day models.Weekday, text string) (*models.Entry, error)
	FindByID(ctx context.Context, id string) (*models.Entry, error)
	ListWeek(ctx context.Context, studentID string, week int) ([]models.Entry, error)
	WeeksWithEntries(ctx context.Context, studentID string) ([]int, error)
	ReviewIfSubmitted(ctx context.Context, entryID string, status models.EntryStatus, reviewerID string) (bool, error)
}

type entryLogbookReader interface {
	FindByStudent(ctx context.Context, studentID string) (*models.Logbook, error)
	Create(ctx context.Context, book *models.Logbook) error
}

type entrySupervisionReader interface {
	FindByStudent(ctx context.Context, studentID string) (*models.Supervision, error)
}

type entryAuditWriter interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

type progressInvalidator interface {
	DeleteByPattern(ctx context.Context, pattern string) error
}

// EntryService owns the daily entry lifecycle: student saves and supervisor
// reviews. Every save lands as SUBMITTED; a re-save of a reviewed day clears
// the verdict and waits for review again.
type EntryService struct {
	entries      entryRepository
	logbooks     entryLogbookReader
	supervisions entrySupervisionReader
	audit        entryAuditWriter
	cache        progressInvalidator
	notifier     workflowNotifier
	validate     *validator.Validate
	logger       *zap.Logger
	defaultWeeks int
}

// NewEntryService constructs an EntryService.
func NewEntryService(entries entryRepository, logbooks entryLogbookReader, supervisions entrySupervisionReader, audit entryAuditWriter, cache progressInvalidator, notifier workflowNotifier, validate *validator.Validate, logger *zap.Logger, defaultWeeks int) *EntryService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EntryService{
		entries:      entries,
		logbooks:     logbooks,
		supervisions: supervisions,
		audit:        audit,
		cache:        cache,
		notifier:     notifier,
		validate:     validate,
		logger:       logger,
		defaultWeeks: models.NormalizeWeeks(defaultWeeks),
	}
}

// SaveDay upserts the student's entry for one weekday. Saving requires an
// approved supervision and an ungraded logbook; the saved entry always lands
// as SUBMITTED regardless of any previous verdict on that day.
func (s *EntryService) SaveDay(ctx context.Context, studentID string, req dto.SaveDayRequest) (*dto.EntryDTO, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid entry payload")
	}
	day := models.Weekday(req.Day)
	if !day.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "day must be a weekday between 1 and 5")
	}

	sup, err := s.supervisions.FindByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch supervision")
	}
	if sup == nil || !sup.Status.WritesAllowed() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "saving entries requires an approved supervision")
	}

	book, err := s.ensureLogbook(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if models.IsGradedTerminal(book.Status) {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition, "logbook has already been graded")
	}
	if req.Week > models.NormalizeWeeks(book.Size) {
		return nil, appErrors.Clone(appErrors.ErrValidation,
			fmt.Sprintf("week %d is outside the logbook's %d-week range", req.Week, models.NormalizeWeeks(book.Size)))
	}

	entry, err := s.entries.Upsert(ctx, studentID, req.Week, day, req.Text)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save entry")
	}

	s.invalidateProgress(ctx, studentID)
	s.recordAudit(ctx, studentID, models.AuditActionEntrySave, entry.ID)
	return dto.NewEntryDTO(entry), nil
}

// GetWeek returns all saved entries for one week. Students read their own
// logbook, supervisors their approved students', admins and assessors any.
func (s *EntryService) GetWeek(ctx context.Context, viewerID string, viewerRole models.UserRole, studentID string, week int) (*dto.WeekResponse, error) {
	if week < 1 || week > models.MaxWeeks {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("week %d is out of range", week))
	}
	if err := s.authorizeView(ctx, viewerID, viewerRole, studentID); err != nil {
		return nil, err
	}

	entries, err := s.entries.ListWeek(ctx, studentID, week)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list entries")
	}
	resp := &dto.WeekResponse{Week: week, Entries: make(map[models.Weekday]*dto.EntryDTO, len(entries))}
	for i := range entries {
		resp.Entries[entries[i].Day] = dto.NewEntryDTO(&entries[i])
	}
	return resp, nil
}

// Weeks lists the week ordinals that have at least one saved entry.
func (s *EntryService) Weeks(ctx context.Context, viewerID string, viewerRole models.UserRole, studentID string) ([]int, error) {
	if err := s.authorizeView(ctx, viewerID, viewerRole, studentID); err != nil {
		return nil, err
	}
	weeks, err := s.entries.WeeksWithEntries(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list weeks")
	}
	return weeks, nil
}

// Review records the supervisor's verdict on a submitted entry. Only the
// student's approved supervisor may review, only SUBMITTED entries accept a
// verdict, and a verdict that raced another writer is refused rather than
// silently applied.
func (s *EntryService) Review(ctx context.Context, reviewerID, entryID string, req dto.ReviewEntryRequest) (*dto.EntryDTO, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid review payload")
	}

	entry, err := s.entries.FindByID(ctx, entryID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch entry")
	}
	if entry == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "entry not found")
	}

	sup, err := s.supervisions.FindByStudent(ctx, entry.StudentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch supervision")
	}
	if sup == nil || !sup.Status.WritesAllowed() || sup.SupervisorID == nil || *sup.SupervisorID != reviewerID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "entry belongs to a student you do not supervise")
	}

	event := models.EntryEventReject
	if req.Outcome == "approved" {
		event = models.EntryEventApprove
	}
	target, err := models.TransitionEntry(entry.Status, event)
	if err != nil {
		return nil, err
	}

	reviewed, err := s.entries.ReviewIfSubmitted(ctx, entryID, target, reviewerID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record review")
	}
	if !reviewed {
		// The entry left SUBMITTED between the read and the update, typically
		// because the student re-saved the day.
		current, ferr := s.entries.FindByID(ctx, entryID)
		if ferr == nil && current == nil {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "entry not found")
		}
		return nil, appErrors.Clone(appErrors.ErrStaleTransition, "entry changed since it was submitted; review the latest version")
	}
	entry.Status = target
	entry.ReviewedBy = &reviewerID

	s.invalidateProgress(ctx, entry.StudentID)
	s.recordAudit(ctx, reviewerID, models.AuditActionEntryReview, entry.ID)
	verdict := "rejected"
	if target == models.EntryStatusApproved {
		verdict = "approved"
	}
	s.notify(ctx, entry.StudentID, models.NotificationEntryReviewed,
		fmt.Sprintf("Your entry for week %d (%s) was %s", entry.Week, entry.Day.String(), verdict))
	return dto.NewEntryDTO(entry), nil
}

func (s *EntryService) ensureLogbook(ctx context.Context, studentID string) (*models.Logbook, error) {
	book, err := s.logbooks.FindByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch logbook")
	}
	if book != nil {
		return book, nil
	}
	book = &models.Logbook{
		StudentID: studentID,
		Size:      s.defaultWeeks,
		Status:    string(models.LogbookStatusInProgress),
	}
	if err := s.logbooks.Create(ctx, book); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create logbook")
	}
	return book, nil
}

func (s *EntryService) authorizeView(ctx context.Context, viewerID string, viewerRole models.UserRole, studentID string) error {
	return authorizeStudentView(ctx, s.supervisions, viewerID, viewerRole, studentID)
}

// authorizeStudentView gates reads of a student's logbook data: the student
// themselves, their approved supervisor, and staff roles.
func authorizeStudentView(ctx context.Context, sups entrySupervisionReader, viewerID string, viewerRole models.UserRole, studentID string) error {
	switch viewerRole {
	case models.RoleAdmin, models.RoleAssessor:
		return nil
	case models.RoleStudent:
		if viewerID == studentID {
			return nil
		}
		return appErrors.Clone(appErrors.ErrForbidden, "students may only read their own logbook")
	case models.RoleSupervisor:
		sup, err := sups.FindByStudent(ctx, studentID)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch supervision")
		}
		if sup != nil && sup.Status.WritesAllowed() && sup.SupervisorID != nil && *sup.SupervisorID == viewerID {
			return nil
		}
		return appErrors.Clone(appErrors.ErrForbidden, "you do not supervise this student")
	default:
		return appErrors.Clone(appErrors.ErrForbidden, "forbidden")
	}
}

func (s *EntryService) invalidateProgress(ctx context.Context, studentID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, "progress:"+studentID+"*"); err != nil {
		s.logger.Warn("failed to invalidate progress cache", zap.String("student_id", studentID), zap.Error(err))
	}
}

func (s *EntryService) recordAudit(ctx context.Context, userID, action, resourceID string) {
	if s.audit == nil {
		return
	}
	if err := s.audit.CreateAuditLog(ctx, &models.AuditLog{
		UserID:     &userID,
		Action:     action,
		Resource:   "entry",
		ResourceID: &resourceID,
	}); err != nil {
		s.logger.Warn("failed to record entry audit log", zap.String("action", action), zap.Error(err))
	}
}

func (s *EntryService) notify(ctx context.Context, userID string, kind models.NotificationKind, message string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, userID, kind, message); err != nil {
		s.logger.Warn("failed to dispatch notification", zap.String("kind", string(kind)), zap.Error(err))
	}
}
