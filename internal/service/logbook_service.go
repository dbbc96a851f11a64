package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/siwes-hub/logbook-api/internal/dto"
	"github.com/siwes-hub/logbook-api/internal/models"
	appErrors "github.com/siwes-hub/logbook-api/pkg/errors"
)

type logbookRepository interface {
	FindByID(ctx context.Context, id string) (*models.Logbook, error)
	FindByStudent(ctx context.Context, studentID string) (*models.Logbook, error)
	Create(ctx context.Context, book *models.Logbook) error
	ListForAssessor(ctx context.Context) ([]dto.AssessorLogbookItem, error)
}

type progressEntryReader interface {
	WeekSummaries(ctx context.Context, studentID string) ([]models.WeekSummary, error)
	WeeksWithEntries(ctx context.Context, studentID string) ([]int, error)
}

type progressCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// LogbookService derives progress metrics from the entry rows. Progress is
// never stored; every computation is a full scan over the student's weeks so
// approvals and re-saves are reflected immediately.
type LogbookService struct {
	logbooks     logbookRepository
	entries      progressEntryReader
	supervisions entrySupervisionReader
	cache        progressCache
	logger       *zap.Logger
	defaultWeeks int
	cacheTTL     time.Duration
}

// NewLogbookService constructs a LogbookService.
func NewLogbookService(logbooks logbookRepository, entries progressEntryReader, supervisions entrySupervisionReader, cache progressCache, logger *zap.Logger, defaultWeeks int, cacheTTL time.Duration) *LogbookService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogbookService{
		logbooks:     logbooks,
		entries:      entries,
		supervisions: supervisions,
		cache:        cache,
		logger:       logger,
		defaultWeeks: models.NormalizeWeeks(defaultWeeks),
		cacheTTL:     cacheTTL,
	}
}

// Get returns the student's logbook, creating an in-progress one on first
// access.
func (s *LogbookService) Get(ctx context.Context, viewerID string, viewerRole models.UserRole, studentID string) (*models.Logbook, error) {
	if err := authorizeStudentView(ctx, s.supervisions, viewerID, viewerRole, studentID); err != nil {
		return nil, err
	}
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

// Progress computes the completion metrics for a student's logbook. A week
// counts as completed only when all five weekdays are saved and approved.
// Results are cached briefly; every entry write and review invalidates the
// cache, so a fresh scan follows any change.
func (s *LogbookService) Progress(ctx context.Context, viewerID string, viewerRole models.UserRole, studentID string) (*dto.ProgressResponse, error) {
	if err := authorizeStudentView(ctx, s.supervisions, viewerID, viewerRole, studentID); err != nil {
		return nil, err
	}

	cacheKey := "progress:" + studentID
	if s.cache != nil {
		var cached dto.ProgressResponse
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	book, err := s.Get(ctx, viewerID, viewerRole, studentID)
	if err != nil {
		return nil, err
	}
	totalWeeks := models.NormalizeWeeks(book.Size)

	summaries, err := s.entries.WeekSummaries(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to scan entries")
	}

	progress := models.Progress{StudentID: studentID, TotalWeeks: totalWeeks}
	for _, summary := range summaries {
		if summary.Week < 1 || summary.Week > totalWeeks {
			continue
		}
		progress.TotalEntries += summary.Total
		if summary.Complete() {
			progress.WeeksCompleted++
		}
	}
	if totalWeeks > 0 {
		progress.Completion = float64(progress.WeeksCompleted) / float64(totalWeeks)
	}

	weeks, err := s.entries.WeeksWithEntries(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list weeks")
	}

	resp := &dto.ProgressResponse{Progress: progress, Weeks: weeks}
	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, resp, s.cacheTTL); err != nil {
			s.logger.Warn("failed to cache progress", zap.String("student_id", studentID), zap.Error(err))
		}
	}
	return resp, nil
}

// ListForAssessor returns the assessor work queue of all logbooks with their
// owners and graded state.
func (s *LogbookService) ListForAssessor(ctx context.Context) ([]dto.AssessorLogbookItem, error) {
	items, err := s.logbooks.ListForAssessor(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list logbooks")
	}
	return items, nil
}
