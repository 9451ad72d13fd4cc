package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/cmlabs-hris/trackit-backend-go/internal/config"
	"github.com/cmlabs-hris/trackit-backend-go/internal/domain/report"
	appHTTP "github.com/cmlabs-hris/trackit-backend-go/internal/handler/http"
	"github.com/cmlabs-hris/trackit-backend-go/internal/pkg/cron"
	"github.com/cmlabs-hris/trackit-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/trackit-backend-go/internal/pkg/sse"
	"github.com/cmlabs-hris/trackit-backend-go/internal/pkg/storage"
	"github.com/cmlabs-hris/trackit-backend-go/internal/repository/postgresql"
	"github.com/cmlabs-hris/trackit-backend-go/internal/repository/sqlite"
	"github.com/cmlabs-hris/trackit-backend-go/internal/service/file"
	"github.com/cmlabs-hris/trackit-backend-go/internal/service/ingest"
	"github.com/cmlabs-hris/trackit-backend-go/internal/service/pipeline"
	"github.com/cmlabs-hris/trackit-backend-go/internal/service/reconcile"
	"github.com/cmlabs-hris/trackit-backend-go/internal/service/render"
	reportService "github.com/cmlabs-hris/trackit-backend-go/internal/service/report"
	schemaService "github.com/cmlabs-hris/trackit-backend-go/internal/service/schema"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.App.LogLevel)); err != nil {
		return fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	logger := appHTTP.NewLogger("trackit", cfg.App.Env, level)
	slog.SetDefault(logger)

	processing, err := config.LoadProcessing(cfg.Processing.Path)
	if err != nil {
		return err
	}
	logger.Info("processing config loaded",
		"path", cfg.Processing.Path,
		"holidays", len(processing.Holidays),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reportRepo, logRepo, closeDB, err := openRepositories(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeDB()

	localStorage, err := storage.NewLocalStorage(cfg.Storage.BasePath, cfg.Storage.BaseURL)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}
	fileService := file.NewFileService(localStorage, cfg.Storage.MaxUploadSize)

	runner := pipeline.New(
		ingest.NewCosecParser(processing.Cosec, logger),
		ingest.NewBBHRParser(processing.BBHR, logger),
		reconcile.NewReconcilerService(processing.Reconcile(), logger),
		render.NewRendererService(logger),
		logger,
	)

	hub := sse.NewHub(64)
	reports := reportService.NewReportService(
		reportRepo,
		logRepo,
		fileService,
		schemaService.NewValidatorService(logger),
		runner,
		hub,
		reportService.Config{
			Holidays:       processing.Holidays,
			DownloadExpiry: cfg.Storage.DownloadExpiry,
			StaleAfter:     cfg.Cron.StaleAfter,
		},
		logger,
	)

	scheduler := cron.NewScheduler(logger)
	cron.NewReportJobs(reports).RegisterJobs(scheduler, cfg.Cron.Interval)
	scheduler.Start()
	defer scheduler.Stop()

	router := appHTTP.NewRouter(appHTTP.RouterConfig{
		AllowedOrigins: cfg.App.AllowedOrigins,
		FilesDir:       cfg.Storage.BasePath,
	}, logger, appHTTP.NewReportHandler(reports, cfg.Storage.MaxUploadSize))

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server starting", "addr", server.Addr, "db_driver", cfg.Database.Driver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func openRepositories(ctx context.Context, cfg *config.Config) (report.Repository, report.LogRepository, func(), error) {
	switch cfg.Database.Driver {
	case config.DriverPostgres:
		db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL())
		if err != nil {
			return nil, nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, nil, nil, err
		}
		return postgresql.NewReportRepository(db), postgresql.NewProcessingLogRepository(db), db.Close, nil

	default:
		db, err := openSQLite(ctx, cfg.Database.SQLitePath)
		if err != nil {
			return nil, nil, nil, err
		}
		return sqlite.NewReportRepository(db), sqlite.NewProcessingLogRepository(db), func() { db.Close() }, nil
	}
}

func openSQLite(ctx context.Context, path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create sqlite directory: %w", err)
	}
	db, err := database.OpenSQLite(ctx, path)
	if err != nil {
		return nil, err
	}
	if err := database.MigrateSQLite(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
