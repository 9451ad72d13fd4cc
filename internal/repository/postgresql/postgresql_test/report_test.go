package postgresql_test

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/trackit-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/trackit-backend-go/internal/repository/postgresql"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newReport(name string, created time.Time) *report.Report {
	return &report.Report{
		ID:        uuid.Must(uuid.NewV7()).String(),
		Name:      name,
		Month:     "2026-01",
		Status:    report.StatusPending,
		CreatedAt: created,
		UpdatedAt: created,
	}
}

func TestReportRepository_Lifecycle(t *testing.T) {
	db := NewTestDatabase(t)
	repo := postgresql.NewReportRepository(db)
	ctx := context.Background()

	base := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	first := newReport("January", base)
	second := newReport("February", base.Add(time.Hour))
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)

	got, err := repo.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "January", got.Name)
	assert.Nil(t, got.CosecFilePath)
	assert.True(t, base.Equal(got.CreatedAt))

	path := "reports/" + first.ID + "/cosec.xlsx"
	got.CosecFilePath = &path
	got.UpdatedAt = base.Add(2 * time.Hour)
	require.NoError(t, repo.Update(ctx, got))

	got, err = repo.GetByID(ctx, first.ID)
	require.NoError(t, err)
	require.NotNil(t, got.CosecFilePath)
	assert.Equal(t, path, *got.CosecFilePath)

	_, err = repo.GetByID(ctx, uuid.Must(uuid.NewV7()).String())
	assert.ErrorIs(t, err, report.ErrReportNotFound)
}

func TestReportRepository_MarkProcessing(t *testing.T) {
	db := NewTestDatabase(t)
	repo := postgresql.NewReportRepository(db)
	ctx := context.Background()

	rep := newReport("January", time.Now().UTC().Add(-time.Hour))
	require.NoError(t, repo.Create(ctx, rep))

	require.NoError(t, repo.MarkProcessing(ctx, rep.ID))
	assert.ErrorIs(t, repo.MarkProcessing(ctx, rep.ID), report.ErrReportAlreadyProcessing)
	assert.ErrorIs(t, repo.MarkProcessing(ctx, uuid.Must(uuid.NewV7()).String()), report.ErrReportNotFound)

	stale, err := repo.ListStale(ctx, time.Now().UTC().Add(time.Minute))
	require.NoError(t, err)
	require.Len(t, stale, 1)
	assert.Equal(t, rep.ID, stale[0].ID)

	stale, err = repo.ListStale(ctx, time.Now().UTC().Add(-time.Minute))
	require.NoError(t, err)
	assert.Empty(t, stale)
}

func TestProcessingLogRepository(t *testing.T) {
	db := NewTestDatabase(t)
	reports := postgresql.NewReportRepository(db)
	logs := postgresql.NewProcessingLogRepository(db)
	ctx := context.Background()

	rep := newReport("January", time.Now().UTC())
	require.NoError(t, reports.Create(ctx, rep))

	base := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	for i, msg := range []string{"one", "two", "three"} {
		require.NoError(t, logs.Create(ctx, &report.ProcessingLog{
			ID:        uuid.Must(uuid.NewV7()).String(),
			ReportID:  rep.ID,
			Status:    report.SeverityInfo,
			Message:   msg,
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}))
	}

	got, err := logs.ListByReport(ctx, rep.ID)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "one", got[0].Message)
	assert.Equal(t, "three", got[2].Message)
	assert.Equal(t, report.SeverityInfo, got[1].Status)
}

func TestWithTransaction_Rollback(t *testing.T) {
	db := NewTestDatabase(t)
	repo := postgresql.NewReportRepository(db)
	ctx := context.Background()

	rep := newReport("January", time.Now().UTC())
	err := postgresql.WithTransaction(ctx, db, func(ctx context.Context) error {
		require.NoError(t, repo.Create(ctx, rep))
		return assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)

	_, err = repo.GetByID(ctx, rep.ID)
	assert.ErrorIs(t, err, report.ErrReportNotFound)
}
