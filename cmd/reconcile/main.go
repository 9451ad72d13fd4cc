// Command reconcile builds an attendance report from a COSEC dump and a BBHR
// time-off export without running the API server.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/cmlabs-hris/trackit-backend-go/internal/config"
	"github.com/cmlabs-hris/trackit-backend-go/internal/domain/schema"
	"github.com/cmlabs-hris/trackit-backend-go/internal/service/ingest"
	"github.com/cmlabs-hris/trackit-backend-go/internal/service/pipeline"
	"github.com/cmlabs-hris/trackit-backend-go/internal/service/progress"
	"github.com/cmlabs-hris/trackit-backend-go/internal/service/reconcile"
	"github.com/cmlabs-hris/trackit-backend-go/internal/service/render"
	schemaService "github.com/cmlabs-hris/trackit-backend-go/internal/service/schema"
)

type options struct {
	cosec    string
	bbhr     string
	config   string
	output   string
	validate bool
	logLevel string
}

func main() {
	var opts options
	flag.StringVar(&opts.cosec, "cosec", "", "COSEC attendance workbook (.xlsx)")
	flag.StringVar(&opts.bbhr, "bbhr", "", "BBHR time-off workbook (.xlsx)")
	flag.StringVar(&opts.config, "config", "", "processing config YAML; built-in defaults when empty")
	flag.StringVar(&opts.output, "output", "attendance_report.xlsx", "output workbook path")
	flag.BoolVar(&opts.validate, "validate", false, "check column headers of both files before processing")
	flag.StringVar(&opts.logLevel, "log-level", "info", "debug, info, warn or error")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, opts, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

var errInvalidInput = errors.New("input files failed validation")

func run(ctx context.Context, opts options, stdout, stderr io.Writer) error {
	if opts.cosec == "" || opts.bbhr == "" {
		return errors.New("both -cosec and -bbhr are required")
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(opts.logLevel)); err != nil {
		return fmt.Errorf("invalid -log-level: %w", err)
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	processing := config.DefaultProcessing()
	if opts.config != "" {
		var err error
		if processing, err = config.LoadProcessing(opts.config); err != nil {
			return err
		}
	}

	cosec, err := os.ReadFile(opts.cosec)
	if err != nil {
		return fmt.Errorf("read COSEC file: %w", err)
	}
	bbhr, err := os.ReadFile(opts.bbhr)
	if err != nil {
		return fmt.Errorf("read BBHR file: %w", err)
	}

	if opts.validate {
		validator := schemaService.NewValidatorService(logger)
		reports := []schema.ValidationReport{
			validator.Validate(opts.cosec, cosec, schema.CosecSpec()),
			validator.Validate(opts.bbhr, bbhr, schema.BBHRSpec()),
		}

		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(reports); err != nil {
			return fmt.Errorf("write validation reports: %w", err)
		}
		for _, r := range reports {
			if !r.IsValid {
				return errInvalidInput
			}
		}
	}

	p := pipeline.New(
		ingest.NewCosecParser(processing.Cosec, logger),
		ingest.NewBBHRParser(processing.BBHR, logger),
		reconcile.NewReconcilerService(processing.Reconcile(), logger),
		render.NewRendererService(logger),
		logger,
	)

	out, err := p.Run(ctx, pipeline.Input{Cosec: cosec, BBHR: bbhr, Holidays: processing.Holidays}, progress.NewLogSink(logger))
	if err != nil {
		return err
	}

	if err := os.WriteFile(opts.output, out, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	fmt.Fprintf(stdout, "Report written to %s\n", opts.output)
	return nil
}
