// Package progress provides ProgressSink implementations for report runs.
package progress

import (
	"context"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/trackit-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/trackit-backend-go/internal/pkg/sse"
	"github.com/google/uuid"
)

// EventName is the SSE event name used for pipeline events.
const EventName = "progress"

// LogSink mirrors events into structured logs.
type LogSink struct {
	logger *slog.Logger
}

func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{logger: logger}
}

func (s *LogSink) Emit(ctx context.Context, event report.Event) {
	level := slog.LevelInfo
	if event.Severity == report.SeverityError {
		level = slog.LevelError
	}
	s.logger.LogAttrs(ctx, level, event.Message, slog.String("status", string(event.Severity)))
}

// RepositorySink stores events as processing logs of one report.
// Storage failures are logged and otherwise ignored.
type RepositorySink struct {
	repo     report.LogRepository
	reportID string
	logger   *slog.Logger
	now      func() time.Time
}

func NewRepositorySink(repo report.LogRepository, reportID string, logger *slog.Logger) *RepositorySink {
	if logger == nil {
		logger = slog.Default()
	}
	return &RepositorySink{repo: repo, reportID: reportID, logger: logger, now: time.Now}
}

func (s *RepositorySink) Emit(ctx context.Context, event report.Event) {
	entry := &report.ProcessingLog{
		ID:        uuid.Must(uuid.NewV7()).String(),
		ReportID:  s.reportID,
		Status:    event.Severity,
		Message:   event.Message,
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		s.logger.Error("failed to store processing log",
			slog.String("report_id", s.reportID),
			slog.String("error", err.Error()),
		)
	}
}

// HubSink publishes events to live subscribers of a report.
type HubSink struct {
	hub      *sse.Hub
	reportID string
}

func NewHubSink(hub *sse.Hub, reportID string) *HubSink {
	return &HubSink{hub: hub, reportID: reportID}
}

func (s *HubSink) Emit(_ context.Context, event report.Event) {
	s.hub.Publish(s.reportID, sse.Event{Event: EventName, Data: event})
}

// Multi fans an event out to every sink in order.
type Multi []report.ProgressSink

func (m Multi) Emit(ctx context.Context, event report.Event) {
	for _, sink := range m {
		if sink != nil {
			sink.Emit(ctx, event)
		}
	}
}

// Discard drops every event.
type Discard struct{}

func (Discard) Emit(context.Context, report.Event) {}
