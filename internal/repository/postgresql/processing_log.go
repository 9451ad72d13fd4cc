package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/trackit-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/trackit-backend-go/internal/pkg/database"
)

type processingLogRepository struct {
	db *database.DB
}

func NewProcessingLogRepository(db *database.DB) report.LogRepository {
	return &processingLogRepository{db: db}
}

func (r *processingLogRepository) Create(ctx context.Context, l *report.ProcessingLog) error {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO processing_logs (id, report_id, status, message, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := q.Exec(ctx, query, l.ID, l.ReportID, string(l.Status), l.Message, l.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create processing log: %w", err)
	}
	return nil
}

func (r *processingLogRepository) ListByReport(ctx context.Context, reportID string) ([]*report.ProcessingLog, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, report_id, status, message, created_at
		FROM processing_logs
		WHERE report_id = $1
		ORDER BY created_at, id
	`
	rows, err := q.Query(ctx, query, reportID)
	if err != nil {
		return nil, fmt.Errorf("failed to list processing logs: %w", err)
	}
	defer rows.Close()

	var logs []*report.ProcessingLog
	for rows.Next() {
		var (
			l      report.ProcessingLog
			status string
		)
		if err := rows.Scan(&l.ID, &l.ReportID, &status, &l.Message, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan processing log: %w", err)
		}
		l.Status = report.Severity(status)
		l.CreatedAt = l.CreatedAt.UTC()
		logs = append(logs, &l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate processing logs: %w", err)
	}
	return logs, nil
}
