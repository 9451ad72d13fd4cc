package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/trackit-backend-go/internal/domain/report"
)

const reportColumns = `id, name, month, status, cosec_file_path, bbhr_file_path, output_file_path, error_message, created_at, updated_at`

type reportRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewReportRepository(db *sql.DB) report.Repository {
	return &reportRepository{db: db, now: time.Now}
}

func (r *reportRepository) Create(ctx context.Context, rep *report.Report) error {
	q := getQuerier(ctx, r.db)

	_, err := q.ExecContext(ctx,
		`INSERT INTO reports (`+reportColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rep.ID,
		rep.Name,
		rep.Month,
		string(rep.Status),
		nullString(rep.CosecFilePath),
		nullString(rep.BBHRFilePath),
		nullString(rep.OutputFilePath),
		nullString(rep.ErrorMessage),
		formatTime(rep.CreatedAt),
		formatTime(rep.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}
	return nil
}

func (r *reportRepository) GetByID(ctx context.Context, id string) (*report.Report, error) {
	q := getQuerier(ctx, r.db)

	rep, err := scanReport(q.QueryRowContext(ctx, `SELECT `+reportColumns+` FROM reports WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, report.ErrReportNotFound
		}
		return nil, fmt.Errorf("failed to get report: %w", err)
	}
	return rep, nil
}

func (r *reportRepository) List(ctx context.Context) ([]*report.Report, error) {
	return r.query(ctx, `SELECT `+reportColumns+` FROM reports ORDER BY created_at DESC, id DESC`)
}

func (r *reportRepository) Update(ctx context.Context, rep *report.Report) error {
	q := getQuerier(ctx, r.db)

	res, err := q.ExecContext(ctx, `
		UPDATE reports
		SET name = ?, month = ?, status = ?, cosec_file_path = ?, bbhr_file_path = ?,
			output_file_path = ?, error_message = ?, updated_at = ?
		WHERE id = ?`,
		rep.Name,
		rep.Month,
		string(rep.Status),
		nullString(rep.CosecFilePath),
		nullString(rep.BBHRFilePath),
		nullString(rep.OutputFilePath),
		nullString(rep.ErrorMessage),
		formatTime(rep.UpdatedAt),
		rep.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update report: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update report: %w", err)
	}
	if n == 0 {
		return report.ErrReportNotFound
	}
	return nil
}

func (r *reportRepository) MarkProcessing(ctx context.Context, id string) error {
	return WithTransaction(ctx, r.db, func(ctx context.Context) error {
		q := getQuerier(ctx, r.db)

		var status string
		err := q.QueryRowContext(ctx, `SELECT status FROM reports WHERE id = ?`, id).Scan(&status)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return report.ErrReportNotFound
			}
			return fmt.Errorf("failed to read report status: %w", err)
		}
		if report.Status(status) == report.StatusProcessing {
			return report.ErrReportAlreadyProcessing
		}

		_, err = q.ExecContext(ctx,
			`UPDATE reports SET status = ?, error_message = NULL, updated_at = ? WHERE id = ?`,
			string(report.StatusProcessing), formatTime(r.now()), id,
		)
		if err != nil {
			return fmt.Errorf("failed to mark report processing: %w", err)
		}
		return nil
	})
}

func (r *reportRepository) ListStale(ctx context.Context, cutoff time.Time) ([]*report.Report, error) {
	return r.query(ctx,
		`SELECT `+reportColumns+` FROM reports WHERE status = ? AND updated_at < ? ORDER BY updated_at`,
		string(report.StatusProcessing), formatTime(cutoff),
	)
}

func (r *reportRepository) query(ctx context.Context, query string, args ...any) ([]*report.Report, error) {
	q := getQuerier(ctx, r.db)

	rows, err := q.QueryContext(ctx, query, args...)
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

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReport(row rowScanner) (*report.Report, error) {
	var (
		rep                               report.Report
		status, createdAt, updatedAt      string
		cosec, bbhr, output, errorMessage sql.NullString
	)
	err := row.Scan(
		&rep.ID,
		&rep.Name,
		&rep.Month,
		&status,
		&cosec,
		&bbhr,
		&output,
		&errorMessage,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	rep.Status = report.Status(status)
	rep.CosecFilePath = stringPtr(cosec)
	rep.BBHRFilePath = stringPtr(bbhr)
	rep.OutputFilePath = stringPtr(output)
	rep.ErrorMessage = stringPtr(errorMessage)
	if rep.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if rep.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &rep, nil
}
