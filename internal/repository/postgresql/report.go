package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/trackit-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/trackit-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const reportColumns = `id, name, month, status, cosec_file_path, bbhr_file_path, output_file_path, error_message, created_at, updated_at`

type reportRepository struct {
	db *database.DB
}

func NewReportRepository(db *database.DB) report.Repository {
	return &reportRepository{db: db}
}

func (r *reportRepository) Create(ctx context.Context, rep *report.Report) error {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO reports (` + reportColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := q.Exec(ctx, query,
		rep.ID,
		rep.Name,
		rep.Month,
		string(rep.Status),
		rep.CosecFilePath,
		rep.BBHRFilePath,
		rep.OutputFilePath,
		rep.ErrorMessage,
		rep.CreatedAt,
		rep.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}
	return nil
}

func (r *reportRepository) GetByID(ctx context.Context, id string) (*report.Report, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + reportColumns + ` FROM reports WHERE id = $1`
	rep, err := scanReport(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, report.ErrReportNotFound
		}
		return nil, fmt.Errorf("failed to get report: %w", err)
	}
	return rep, nil
}

func (r *reportRepository) List(ctx context.Context) ([]*report.Report, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + reportColumns + ` FROM reports ORDER BY created_at DESC, id DESC`
	return r.query(ctx, q, query)
}

func (r *reportRepository) Update(ctx context.Context, rep *report.Report) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE reports
		SET name = $2,
			month = $3,
			status = $4,
			cosec_file_path = $5,
			bbhr_file_path = $6,
			output_file_path = $7,
			error_message = $8,
			updated_at = $9
		WHERE id = $1
	`
	tag, err := q.Exec(ctx, query,
		rep.ID,
		rep.Name,
		rep.Month,
		string(rep.Status),
		rep.CosecFilePath,
		rep.BBHRFilePath,
		rep.OutputFilePath,
		rep.ErrorMessage,
		rep.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update report: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return report.ErrReportNotFound
	}
	return nil
}

func (r *reportRepository) MarkProcessing(ctx context.Context, id string) error {
	return WithTransaction(ctx, r.db, func(ctx context.Context) error {
		q := GetQuerier(ctx, r.db)

		var status string
		err := q.QueryRow(ctx, `SELECT status FROM reports WHERE id = $1 FOR UPDATE`, id).Scan(&status)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return report.ErrReportNotFound
			}
			return fmt.Errorf("failed to lock report: %w", err)
		}
		if report.Status(status) == report.StatusProcessing {
			return report.ErrReportAlreadyProcessing
		}

		_, err = q.Exec(ctx, `
			UPDATE reports
			SET status = $2, error_message = NULL, updated_at = NOW()
			WHERE id = $1
		`, id, string(report.StatusProcessing))
		if err != nil {
			return fmt.Errorf("failed to mark report processing: %w", err)
		}
		return nil
	})
}

func (r *reportRepository) ListStale(ctx context.Context, cutoff time.Time) ([]*report.Report, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + reportColumns + ` FROM reports WHERE status = $1 AND updated_at < $2 ORDER BY updated_at`
	return r.query(ctx, q, query, string(report.StatusProcessing), cutoff)
}

func (r *reportRepository) query(ctx context.Context, q database.Querier, query string, args ...any) ([]*report.Report, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query reports: %w", err)
	}
	defer rows.Close()

	var reports []*report.Report
	for rows.Next() {
		rep, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		reports = append(reports, rep)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate reports: %w", err)
	}
	return reports, nil
}

func scanReport(row pgx.Row) (*report.Report, error) {
	var (
		rep    report.Report
		status string
	)
	err := row.Scan(
		&rep.ID,
		&rep.Name,
		&rep.Month,
		&status,
		&rep.CosecFilePath,
		&rep.BBHRFilePath,
		&rep.OutputFilePath,
		&rep.ErrorMessage,
		&rep.CreatedAt,
		&rep.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	rep.Status = report.Status(status)
	rep.CreatedAt = rep.CreatedAt.UTC()
	rep.UpdatedAt = rep.UpdatedAt.UTC()
	return &rep, nil
}
