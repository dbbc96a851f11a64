package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/siwes-hub/logbook-api/internal/legacy"
	"github.com/siwes-hub/logbook-api/internal/models"
	appErrors "github.com/siwes-hub/logbook-api/pkg/errors"
)

type legacyFetcher interface {
	FetchLogbook(ctx context.Context, studentID string) (*legacy.Logbook, error)
	FetchWeek(ctx context.Context, studentID string, week int) ([]legacy.Entry, error)
	ListAssessorLogbooks(ctx context.Context, assessorID string) ([]legacy.Logbook, error)
}

type legacyEntryWriter interface {
	ImportEntry(ctx context.Context, entry *models.Entry) error
}

type legacyLogbookStore interface {
	FindByStudent(ctx context.Context, studentID string) (*models.Logbook, error)
	Create(ctx context.Context, book *models.Logbook) error
	UpdateMeta(ctx context.Context, id string, size int, status string) error
}

// SyncReport summarises one legacy import run.
type SyncReport struct {
	StudentID       string `json:"student_id"`
	Weeks           int    `json:"weeks"`
	EntriesImported int    `json:"entries_imported"`
	EntriesSkipped  int    `json:"entries_skipped"`
}

// LegacySyncService mirrors a student's records from the legacy portal
// backend into the local store. Imported entries keep the review state the
// legacy side recorded; malformed rows are skipped and counted, never fatal.
type LegacySyncService struct {
	client   legacyFetcher
	entries  legacyEntryWriter
	logbooks legacyLogbookStore
	cache    progressInvalidator
	logger   *zap.Logger
}

// NewLegacySyncService constructs a LegacySyncService.
func NewLegacySyncService(client legacyFetcher, entries legacyEntryWriter, logbooks legacyLogbookStore, cache progressInvalidator, logger *zap.Logger) *LegacySyncService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LegacySyncService{client: client, entries: entries, logbooks: logbooks, cache: cache, logger: logger}
}

// SyncStudent pulls the student's legacy logbook and every week of entries.
func (s *LegacySyncService) SyncStudent(ctx context.Context, studentID string) (*SyncReport, error) {
	remote, err := s.client.FetchLogbook(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if remote == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "legacy backend has no logbook for this student")
	}

	size := models.NormalizeWeeks(remote.Size)
	status := remote.Status
	if strings.TrimSpace(status) == "" {
		status = string(models.LogbookStatusInProgress)
	}

	book, err := s.logbooks.FindByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch logbook")
	}
	if book == nil {
		book = &models.Logbook{StudentID: studentID, Size: size, Status: status}
		if err := s.logbooks.Create(ctx, book); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create logbook")
		}
	} else if err := s.logbooks.UpdateMeta(ctx, book.ID, size, status); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update logbook")
	}

	report := &SyncReport{StudentID: studentID, Weeks: size}
	for week := 1; week <= size; week++ {
		remoteEntries, err := s.client.FetchWeek(ctx, studentID, week)
		if err != nil {
			return nil, err
		}
		for _, remoteEntry := range remoteEntries {
			entry, ok := s.convert(studentID, week, remoteEntry)
			if !ok {
				report.EntriesSkipped++
				continue
			}
			if err := s.entries.ImportEntry(ctx, entry); err != nil {
				return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to import entry")
			}
			report.EntriesImported++
		}
	}

	if s.cache != nil {
		if err := s.cache.DeleteByPattern(ctx, "progress:"+studentID+"*"); err != nil {
			s.logger.Warn("failed to invalidate progress cache after sync", zap.Error(err))
		}
	}
	s.logger.Info("legacy sync finished",
		zap.String("student_id", studentID),
		zap.Int("imported", report.EntriesImported),
		zap.Int("skipped", report.EntriesSkipped))
	return report, nil
}

// AssessorWorklist fetches the legacy backend's logbook list for an assessor,
// for the period where grading still happens against legacy records.
func (s *LegacySyncService) AssessorWorklist(ctx context.Context, assessorID string) ([]legacy.Logbook, error) {
	return s.client.ListAssessorLogbooks(ctx, assessorID)
}

// convert maps a legacy entry onto the local model. Rows with an invalid
// weekday or a week that contradicts the fetch are dropped.
func (s *LegacySyncService) convert(studentID string, week int, remote legacy.Entry) (*models.Entry, bool) {
	day := models.Weekday(remote.Day)
	if !day.Valid() {
		s.logger.Warn("skipping legacy entry with invalid day",
			zap.String("student_id", studentID), zap.Int("day", remote.Day))
		return nil, false
	}
	if remote.Week != 0 && remote.Week != week {
		s.logger.Warn("skipping legacy entry with mismatched week",
			zap.String("student_id", studentID), zap.Int("week", remote.Week))
		return nil, false
	}
	return &models.Entry{
		StudentID: studentID,
		Week:      week,
		Day:       day,
		Text:      remote.Text,
		Status:    legacyEntryStatus(remote.Status),
	}, true
}

// legacyEntryStatus normalises the legacy status spellings. Unknown values
// fall back to SUBMITTED so they re-enter the review queue rather than
// masquerading as approved.
func legacyEntryStatus(raw string) models.EntryStatus {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "APPROVED":
		return models.EntryStatusApproved
	case "REJECTED":
		return models.EntryStatusRejected
	case "DRAFT":
		return models.EntryStatusDraft
	default:
		return models.EntryStatusSubmitted
	}
}
