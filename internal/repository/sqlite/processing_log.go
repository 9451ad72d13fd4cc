package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/cmlabs-hris/trackit-backend-go/internal/domain/report"
)

type processingLogRepository struct {
	db *sql.DB
}

func NewProcessingLogRepository(db *sql.DB) report.LogRepository {
	return &processingLogRepository{db: db}
}

func (r *processingLogRepository) Create(ctx context.Context, l *report.ProcessingLog) error {
	q := getQuerier(ctx, r.db)

	_, err := q.ExecContext(ctx,
		`INSERT INTO processing_logs (id, report_id, status, message, created_at) VALUES (?, ?, ?, ?, ?)`,
		l.ID, l.ReportID, string(l.Status), l.Message, formatTime(l.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create processing log: %w", err)
	}
	return nil
}

func (r *processingLogRepository) ListByReport(ctx context.Context, reportID string) ([]*report.ProcessingLog, error) {
	q := getQuerier(ctx, r.db)

	rows, err := q.QueryContext(ctx, `
		SELECT id, report_id, status, message, created_at
		FROM processing_logs
		WHERE report_id = ?
		ORDER BY created_at, rowid`, reportID)
	if err != nil {
		return nil, fmt.Errorf("failed to list processing logs: %w", err)
	}
	defer rows.Close()

	var logs []*report.ProcessingLog
	for rows.Next() {
		var (
			l                 report.ProcessingLog
			status, createdAt string
		)
		if err := rows.Scan(&l.ID, &l.ReportID, &status, &l.Message, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan processing log: %w", err)
		}
		l.Status = report.Severity(status)
		if l.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		logs = append(logs, &l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate processing logs: %w", err)
	}
	return logs, nil
}
