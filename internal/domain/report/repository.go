package report

import (
	"context"
	"time"
)

// Repository persists reports.
type Repository interface {
	Create(ctx context.Context, r *Report) error
	GetByID(ctx context.Context, id string) (*Report, error)
	// List returns reports newest first
	List(ctx context.Context) ([]*Report, error)
	Update(ctx context.Context, r *Report) error

	// MarkProcessing moves a report to processing unless it already is.
	// It returns ErrReportAlreadyProcessing when another run holds it.
	MarkProcessing(ctx context.Context, id string) error

	// ListStale returns reports stuck in processing since before cutoff
	ListStale(ctx context.Context, cutoff time.Time) ([]*Report, error)
}

// LogRepository persists processing logs.
type LogRepository interface {
	Create(ctx context.Context, l *ProcessingLog) error
	// ListByReport returns logs oldest first
	ListByReport(ctx context.Context, reportID string) ([]*ProcessingLog, error)
}
