package report

import (
	"context"

	"github.com/cmlabs-hris/trackit-backend-go/internal/domain/schema"
)

// ProgressSink receives pipeline events. Implementations must not block for long
// and must tolerate being called from the pipeline goroutine.
type ProgressSink interface {
	Emit(ctx context.Context, event Event)
}

// Service runs the report workflow: create, upload, validate, process, download.
type Service interface {
	Create(ctx context.Context, req CreateReportRequest) (ReportResponse, error)
	List(ctx context.Context) ([]ReportResponse, error)
	Get(ctx context.Context, id string) (ReportResponse, error)

	UploadFiles(ctx context.Context, id string, req UploadFilesRequest) (ReportResponse, error)
	ValidateFile(ctx context.Context, kind schema.FileKind, fileName string, data []byte) (schema.ValidationReport, error)

	Process(ctx context.Context, id string) (ReportResponse, error)
	Download(ctx context.Context, id string) (*Download, error)

	Logs(ctx context.Context, id string) ([]ProcessingLogResponse, error)
	// Subscribe streams live events of a report until cleanup is called
	Subscribe(ctx context.Context, id string) (<-chan Event, func(), error)

	// FailStale marks runs stuck in processing as failed and returns how many were reaped
	FailStale(ctx context.Context) (int, error)
}
