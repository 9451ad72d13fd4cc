package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/trackit-backend-go/internal/domain/report"
)

// ReportJobs holds the housekeeping jobs of the report workflow.
type ReportJobs struct {
	reportService report.Service
}

func NewReportJobs(reportService report.Service) *ReportJobs {
	return &ReportJobs{reportService: reportService}
}

func (j *ReportJobs) RegisterJobs(scheduler *Scheduler, interval time.Duration) {
	scheduler.AddJob("fail_stale_reports", interval, j.FailStaleReports)
}

// FailStaleReports marks runs that stopped reporting progress as failed.
func (j *ReportJobs) FailStaleReports(ctx context.Context) error {
	if _, err := j.reportService.FailStale(ctx); err != nil {
		return fmt.Errorf("failed to reap stale reports: %w", err)
	}
	return nil
}
