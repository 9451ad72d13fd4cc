package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/trackit-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/trackit-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/trackit-backend-go/internal/domain/schema"
	"github.com/cmlabs-hris/trackit-backend-go/internal/pkg/sse"
	"github.com/cmlabs-hris/trackit-backend-go/internal/pkg/validator"
	"github.com/cmlabs-hris/trackit-backend-go/internal/service/file"
	"github.com/cmlabs-hris/trackit-backend-go/internal/service/pipeline"
	"github.com/cmlabs-hris/trackit-backend-go/internal/service/progress"
	"github.com/google/uuid"
)

const (
	msgStarting    = "Starting report processing"
	msgDownloading = "Downloading input files"
	msgDownloaded  = "Input files downloaded successfully"
	msgUploading   = "Uploading generated report"
	msgCompleted   = "Report processing completed successfully"
	msgStale       = "no progress within the allowed time"
)

// Runner executes the parse, reconcile and render pipeline.
type Runner interface {
	Run(ctx context.Context, in pipeline.Input, sink report.ProgressSink) ([]byte, error)
}

// Config holds report workflow settings
type Config struct {
	Holidays       []attendance.Holiday
	DownloadExpiry time.Duration // default: 60 seconds
	StaleAfter     time.Duration // default: 30 minutes
}

type ReportServiceImpl struct {
	reportRepo report.Repository
	logRepo    report.LogRepository
	files      file.FileService
	validator  schema.Validator
	runner     Runner
	hub        *sse.Hub
	config     Config
	logger     *slog.Logger
	now        func() time.Time
}

func NewReportService(
	reportRepo report.Repository,
	logRepo report.LogRepository,
	files file.FileService,
	validator schema.Validator,
	runner Runner,
	hub *sse.Hub,
	cfg Config,
	logger *slog.Logger,
) *ReportServiceImpl {
	if cfg.DownloadExpiry == 0 {
		cfg.DownloadExpiry = 60 * time.Second
	}
	if cfg.StaleAfter == 0 {
		cfg.StaleAfter = 30 * time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &ReportServiceImpl{
		reportRepo: reportRepo,
		logRepo:    logRepo,
		files:      files,
		validator:  validator,
		runner:     runner,
		hub:        hub,
		config:     cfg,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *ReportServiceImpl) Create(ctx context.Context, req report.CreateReportRequest) (report.ReportResponse, error) {
	if err := req.Validate(); err != nil {
		return report.ReportResponse{}, err
	}

	now := s.now().UTC()
	r := &report.Report{
		ID:        uuid.Must(uuid.NewV7()).String(),
		Name:      req.Name,
		Month:     req.Month,
		Status:    report.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.reportRepo.Create(ctx, r); err != nil {
		return report.ReportResponse{}, fmt.Errorf("failed to create report: %w", err)
	}

	s.logger.Info("report created", slog.String("report_id", r.ID), slog.String("month", r.Month))
	return report.NewReportResponse(r), nil
}

func (s *ReportServiceImpl) List(ctx context.Context) ([]report.ReportResponse, error) {
	reports, err := s.reportRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}

	out := make([]report.ReportResponse, 0, len(reports))
	for _, r := range reports {
		out = append(out, report.NewReportResponse(r))
	}
	return out, nil
}

func (s *ReportServiceImpl) Get(ctx context.Context, id string) (report.ReportResponse, error) {
	r, err := s.getReport(ctx, id)
	if err != nil {
		return report.ReportResponse{}, err
	}
	return report.NewReportResponse(r), nil
}

// UploadFiles stores both inputs and records their paths. When the second
// upload fails the first one is removed again.
func (s *ReportServiceImpl) UploadFiles(ctx context.Context, id string, req report.UploadFilesRequest) (report.ReportResponse, error) {
	if err := req.Validate(); err != nil {
		return report.ReportResponse{}, err
	}

	r, err := s.getReport(ctx, id)
	if err != nil {
		return report.ReportResponse{}, err
	}
	if r.Status == report.StatusProcessing {
		return report.ReportResponse{}, report.ErrReportAlreadyProcessing
	}

	cosecPath, err := s.files.UploadInput(ctx, id, schema.FileKindCOSEC, req.Cosec.Content, req.Cosec.FileName)
	if err != nil {
		return report.ReportResponse{}, fmt.Errorf("failed to upload COSEC file: %w", err)
	}

	bbhrPath, err := s.files.UploadInput(ctx, id, schema.FileKindBBHR, req.BBHR.Content, req.BBHR.FileName)
	if err != nil {
		s.removeFile(ctx, cosecPath)
		return report.ReportResponse{}, fmt.Errorf("failed to upload BBHR file: %w", err)
	}

	previous := []*string{r.CosecFilePath, r.BBHRFilePath}

	r.CosecFilePath = &cosecPath
	r.BBHRFilePath = &bbhrPath
	r.UpdatedAt = s.now().UTC()
	if err := s.reportRepo.Update(ctx, r); err != nil {
		s.removeFile(ctx, cosecPath)
		s.removeFile(ctx, bbhrPath)
		return report.ReportResponse{}, fmt.Errorf("failed to update report with file paths: %w", err)
	}

	for _, p := range previous {
		if p != nil && *p != "" {
			s.removeFile(ctx, *p)
		}
	}

	s.logger.Info("report inputs uploaded",
		slog.String("report_id", id),
		slog.String("cosec_file_path", cosecPath),
		slog.String("bbhr_file_path", bbhrPath),
	)
	return report.NewReportResponse(r), nil
}

func (s *ReportServiceImpl) ValidateFile(ctx context.Context, kind schema.FileKind, fileName string, data []byte) (schema.ValidationReport, error) {
	spec, err := schema.SpecFor(kind)
	if err != nil {
		return schema.ValidationReport{}, err
	}
	return s.validator.Validate(fileName, data, spec), nil
}

// Process runs the pipeline over the uploaded files and stores the output.
// Every step is reported to the log, the processing log table and live subscribers.
func (s *ReportServiceImpl) Process(ctx context.Context, id string) (report.ReportResponse, error) {
	r, err := s.getReport(ctx, id)
	if err != nil {
		return report.ReportResponse{}, err
	}
	if !r.HasInputs() {
		return report.ReportResponse{}, report.ErrFilesNotUploaded
	}

	if err := s.reportRepo.MarkProcessing(ctx, id); err != nil {
		return report.ReportResponse{}, err
	}

	logger := s.logger.With(slog.String("report_id", id))
	sink := progress.Multi{
		progress.NewLogSink(logger),
		progress.NewRepositorySink(s.logRepo, id, logger),
		progress.NewHubSink(s.hub, id),
	}

	sink.Emit(ctx, report.Info(msgStarting))
	sink.Emit(ctx, report.Info(msgDownloading))

	cosec, err := s.files.ReadFile(ctx, *r.CosecFilePath)
	if err != nil {
		return s.fail(ctx, r, sink, err, true)
	}
	bbhr, err := s.files.ReadFile(ctx, *r.BBHRFilePath)
	if err != nil {
		return s.fail(ctx, r, sink, err, true)
	}
	sink.Emit(ctx, report.Info(msgDownloaded))

	out, err := s.runner.Run(ctx, pipeline.Input{Cosec: cosec, BBHR: bbhr, Holidays: s.config.Holidays}, sink)
	if err != nil {
		// The pipeline has already reported its own failure.
		return s.fail(ctx, r, sink, err, false)
	}

	sink.Emit(ctx, report.Info(msgUploading))
	outputPath, err := s.files.UploadOutput(ctx, id, r.Name, out)
	if err != nil {
		return s.fail(ctx, r, sink, err, true)
	}

	r.Status = report.StatusCompleted
	r.OutputFilePath = &outputPath
	r.ErrorMessage = nil
	r.UpdatedAt = s.now().UTC()
	if err := s.reportRepo.Update(ctx, r); err != nil {
		s.removeFile(ctx, outputPath)
		r.OutputFilePath = nil
		return s.fail(ctx, r, sink, err, true)
	}

	sink.Emit(ctx, report.Success(msgCompleted))
	return report.NewReportResponse(r), nil
}

// fail marks the run failed. The caller's context may already be done, so
// the status update uses a detached one.
func (s *ReportServiceImpl) fail(ctx context.Context, r *report.Report, sink report.ProgressSink, cause error, emit bool) (report.ReportResponse, error) {
	updateCtx := context.WithoutCancel(ctx)

	message := cause.Error()
	if emit {
		sink.Emit(updateCtx, report.Failure(pipeline.MsgFailedPrefix+message))
	}

	r.Status = report.StatusFailed
	r.ErrorMessage = &message
	r.UpdatedAt = s.now().UTC()
	if err := s.reportRepo.Update(updateCtx, r); err != nil {
		s.logger.Error("failed to mark report as failed",
			slog.String("report_id", r.ID),
			slog.String("error", err.Error()),
		)
	}

	return report.NewReportResponse(r), fmt.Errorf("failed to process report: %w", cause)
}

func (s *ReportServiceImpl) Download(ctx context.Context, id string) (*report.Download, error) {
	r, err := s.getReport(ctx, id)
	if err != nil {
		return nil, err
	}
	if r.Status != report.StatusCompleted || r.OutputFilePath == nil || *r.OutputFilePath == "" {
		return nil, report.ErrReportNotReady
	}

	url, err := s.files.GetFileURL(ctx, *r.OutputFilePath, s.config.DownloadExpiry)
	if err != nil {
		return nil, fmt.Errorf("failed to generate download link: %w", err)
	}

	content, err := s.files.OpenFile(ctx, *r.OutputFilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open report output: %w", err)
	}

	return &report.Download{
		FileName: r.Name + ".xlsx",
		URL:      url,
		Content:  content,
	}, nil
}

func (s *ReportServiceImpl) Logs(ctx context.Context, id string) ([]report.ProcessingLogResponse, error) {
	if _, err := s.getReport(ctx, id); err != nil {
		return nil, err
	}

	logs, err := s.logRepo.ListByReport(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list processing logs: %w", err)
	}

	out := make([]report.ProcessingLogResponse, 0, len(logs))
	for _, l := range logs {
		out = append(out, report.NewProcessingLogResponse(l))
	}
	return out, nil
}

func (s *ReportServiceImpl) Subscribe(ctx context.Context, id string) (<-chan report.Event, func(), error) {
	if _, err := s.getReport(ctx, id); err != nil {
		return nil, nil, err
	}

	ch, cleanup := s.hub.Subscribe(id)

	out := make(chan report.Event, 16)
	go func() {
		defer close(out)
		for {
			select {
			case event, ok := <-ch:
				if !ok {
					return
				}
				if e, ok := event.Data.(report.Event); ok {
					select {
					case out <- e:
					case <-ctx.Done():
						return
					}
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, cleanup, nil
}

// FailStale marks runs that have been processing for longer than StaleAfter as failed.
func (s *ReportServiceImpl) FailStale(ctx context.Context) (int, error) {
	cutoff := s.now().UTC().Add(-s.config.StaleAfter)

	stale, err := s.reportRepo.ListStale(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to list stale reports: %w", err)
	}

	reaped := 0
	for _, r := range stale {
		sink := progress.Multi{
			progress.NewRepositorySink(s.logRepo, r.ID, s.logger),
			progress.NewHubSink(s.hub, r.ID),
		}
		s.fail(ctx, r, sink, errors.New(msgStale), true)
		reaped++
	}

	if reaped > 0 {
		s.logger.Warn("stale report runs marked as failed", slog.Int("count", reaped))
	}
	return reaped, nil
}

// getReport treats IDs that are not report UUIDs as unknown reports.
func (s *ReportServiceImpl) getReport(ctx context.Context, id string) (*report.Report, error) {
	if !validator.IsValidUUID(id) {
		return nil, report.ErrReportNotFound
	}
	return s.reportRepo.GetByID(ctx, id)
}

func (s *ReportServiceImpl) removeFile(ctx context.Context, path string) {
	if err := s.files.DeleteFile(context.WithoutCancel(ctx), path); err != nil {
		s.logger.Warn("failed to remove stored file",
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
	}
}

var _ report.Service = (*ReportServiceImpl)(nil)
