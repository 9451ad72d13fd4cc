package report

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/cmlabs-hris/trackit-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/trackit-backend-go/internal/service/pipeline"
)

type fakeReportRepo struct {
	mu        sync.Mutex
	reports   map[string]report.Report
	updateErr error
}

func newFakeReportRepo() *fakeReportRepo {
	return &fakeReportRepo{reports: make(map[string]report.Report)}
}

func (f *fakeReportRepo) Create(_ context.Context, r *report.Report) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reports[r.ID] = *r
	return nil
}

func (f *fakeReportRepo) GetByID(_ context.Context, id string) (*report.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reports[id]
	if !ok {
		return nil, report.ErrReportNotFound
	}
	return &r, nil
}

func (f *fakeReportRepo) List(context.Context) ([]*report.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*report.Report
	for _, r := range f.reports {
		r := r
		out = append(out, &r)
	}
	slices.SortFunc(out, func(a, b *report.Report) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return out, nil
}

func (f *fakeReportRepo) Update(_ context.Context, r *report.Report) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	if _, ok := f.reports[r.ID]; !ok {
		return report.ErrReportNotFound
	}
	f.reports[r.ID] = *r
	return nil
}

func (f *fakeReportRepo) MarkProcessing(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reports[id]
	if !ok {
		return report.ErrReportNotFound
	}
	if r.Status == report.StatusProcessing {
		return report.ErrReportAlreadyProcessing
	}
	r.Status = report.StatusProcessing
	f.reports[id] = r
	return nil
}

func (f *fakeReportRepo) ListStale(_ context.Context, cutoff time.Time) ([]*report.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*report.Report
	for _, r := range f.reports {
		if r.Status == report.StatusProcessing && r.UpdatedAt.Before(cutoff) {
			r := r
			out = append(out, &r)
		}
	}
	return out, nil
}

type fakeLogRepo struct {
	mu   sync.Mutex
	logs []*report.ProcessingLog
}

func (f *fakeLogRepo) Create(_ context.Context, l *report.ProcessingLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logs = append(f.logs, l)
	return nil
}

func (f *fakeLogRepo) ListByReport(_ context.Context, reportID string) ([]*report.ProcessingLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*report.ProcessingLog
	for _, l := range f.logs {
		if l.ReportID == reportID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *fakeLogRepo) messages(reportID string) []string {
	logs, _ := f.ListByReport(context.Background(), reportID)
	out := make([]string, 0, len(logs))
	for _, l := range logs {
		out = append(out, l.Message)
	}
	return out
}

type failingRunner struct{}

func (failingRunner) Run(ctx context.Context, _ pipeline.Input, sink report.ProgressSink) ([]byte, error) {
	err := errors.New("COSEC file: spreadsheet cannot be opened or has no worksheet")
	sink.Emit(ctx, report.Failure(pipeline.MsgFailedPrefix+err.Error()))
	return nil, err
}
