package service

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/siwes-hub/logbook-api/internal/dto"
	"github.com/siwes-hub/logbook-api/internal/models"
	appErrors "github.com/siwes-hub/logbook-api/pkg/errors"
	"github.com/siwes-hub/logbook-api/pkg/export"
	"github.com/siwes-hub/logbook-api/pkg/jobs"
	"github.com/siwes-hub/logbook-api/pkg/storage"
)

type exportRepository interface {
	Create(ctx context.Context, job *models.ExportJob) error
	FindByID(ctx context.Context, id string) (*models.ExportJob, error)
	MarkProcessing(ctx context.Context, id string) error
	MarkFinished(ctx context.Context, id, resultURL string) error
	MarkFailed(ctx context.Context, id, message string) error
}

type exportEntryReader interface {
	ListAllByStudent(ctx context.Context, studentID string) ([]models.Entry, error)
}

// ExportService generates downloadable logbook renditions off the request
// path: enqueue, render in a worker, store on disk, hand back a signed URL.
type ExportService struct {
	repo     exportRepository
	entries  exportEntryReader
	csv      *export.CSVExporter
	pdf      *export.PDFExporter
	store    *storage.LocalStorage
	signer   *storage.SignedURLSigner
	queue    *jobs.Queue
	validate *validator.Validate
	logger   *zap.Logger
}

// ExportServiceConfig tunes the export worker pool.
type ExportServiceConfig struct {
	Workers int
	Retries int
}

// NewExportService constructs the service and its backing queue.
func NewExportService(repo exportRepository, entries exportEntryReader, store *storage.LocalStorage, signer *storage.SignedURLSigner, cfg ExportServiceConfig, validate *validator.Validate, logger *zap.Logger) *ExportService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &ExportService{
		repo:     repo,
		entries:  entries,
		csv:      export.NewCSVExporter(),
		pdf:      export.NewPDFExporter(),
		store:    store,
		signer:   signer,
		validate: validate,
		logger:   logger,
	}
	s.queue = jobs.NewQueue("exports", s.process, jobs.QueueConfig{
		Workers:    cfg.Workers,
		MaxRetries: cfg.Retries,
		Logger:     logger,
	})
	return s
}

// Start launches the export workers.
func (s *ExportService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains and stops the workers.
func (s *ExportService) Stop() {
	s.queue.Stop()
}

// Enqueue records an export job and schedules it. Students export their own
// logbook; staff roles may export any.
func (s *ExportService) Enqueue(ctx context.Context, requesterID string, requesterRole models.UserRole, req dto.ExportRequest) (*dto.ExportJobResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid export request")
	}
	studentID := req.StudentID
	if studentID == "" {
		studentID = requesterID
	}
	if requesterRole == models.RoleStudent && studentID != requesterID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "students may only export their own logbook")
	}

	job := &models.ExportJob{
		ID:        uuid.NewString(),
		Params:    models.ExportJobParams{StudentID: studentID, Format: req.Format},
		Status:    models.ExportStatusQueued,
		CreatedBy: requesterID,
	}
	if err := s.repo.Create(ctx, job); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create export job")
	}
	if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: string(req.Format), Payload: job.ID}); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to schedule export job")
	}
	return &dto.ExportJobResponse{ID: job.ID, Status: job.Status}, nil
}

// Status reports on a previously enqueued job. Only its creator and staff
// roles may look it up.
func (s *ExportService) Status(ctx context.Context, requesterID string, requesterRole models.UserRole, jobID string) (*dto.ExportStatusResponse, error) {
	job, err := s.repo.FindByID(ctx, jobID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch export job")
	}
	if job == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "export job not found")
	}
	if requesterRole == models.RoleStudent && job.CreatedBy != requesterID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "export job belongs to another user")
	}
	return &dto.ExportStatusResponse{
		ID:        job.ID,
		Status:    job.Status,
		ResultURL: job.ResultURL,
		Error:     job.ErrorMessage,
	}, nil
}

// Open validates a signed download token and opens the rendered file.
func (s *ExportService) Open(token string) (*os.File, error) {
	_, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "download link is invalid or expired")
	}
	file, err := s.store.Open(relPath)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "export file not found")
	}
	return file, nil
}

func (s *ExportService) process(ctx context.Context, qjob jobs.Job) error {
	jobID, _ := qjob.Payload.(string)
	job, err := s.repo.FindByID(ctx, jobID)
	if err != nil {
		return err
	}
	if job == nil {
		return fmt.Errorf("export job %s disappeared", jobID)
	}
	if err := s.repo.MarkProcessing(ctx, job.ID); err != nil {
		return err
	}

	data, renderErr := s.render(ctx, job)
	if renderErr != nil {
		if markErr := s.repo.MarkFailed(ctx, job.ID, renderErr.Error()); markErr != nil {
			s.logger.Warn("failed to mark export failed", zap.String("job_id", job.ID), zap.Error(markErr))
		}
		return renderErr
	}

	filename := fmt.Sprintf("logbook-%s-%s.%s", job.Params.StudentID, job.ID, job.Params.Format)
	relPath, err := s.store.Save(filename, data)
	if err != nil {
		if markErr := s.repo.MarkFailed(ctx, job.ID, "failed to store export"); markErr != nil {
			s.logger.Warn("failed to mark export failed", zap.String("job_id", job.ID), zap.Error(markErr))
		}
		return err
	}
	token, _, err := s.signer.Generate(job.ID, relPath)
	if err != nil {
		return err
	}
	return s.repo.MarkFinished(ctx, job.ID, "/api/v1/exports/download?token="+token)
}

func (s *ExportService) render(ctx context.Context, job *models.ExportJob) ([]byte, error) {
	entries, err := s.entries.ListAllByStudent(ctx, job.Params.StudentID)
	if err != nil {
		return nil, err
	}
	dataset := export.Dataset{
		Headers: []string{"Week", "Day", "Activity", "Status"},
		Rows:    make([]map[string]string, 0, len(entries)),
	}
	for _, entry := range entries {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Week":     strconv.Itoa(entry.Week),
			"Day":      entry.Day.String(),
			"Activity": entry.Text,
			"Status":   string(entry.Status),
		})
	}
	switch job.Params.Format {
	case models.ExportFormatPDF:
		return s.pdf.Render(dataset, "Logbook "+job.Params.StudentID)
	case models.ExportFormatCSV:
		return s.csv.Render(dataset)
	default:
		return nil, fmt.Errorf("unsupported export format %q", job.Params.Format)
	}
}
