// Package pipeline runs parse, reconcile and render for one report.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/trackit-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/trackit-backend-go/internal/domain/report"
	"golang.org/x/sync/errgroup"
)

const (
	MsgStarting     = "Starting attendance processing..."
	MsgReadingCosec = "Reading COSEC attendance file..."
	MsgReadingBBHR  = "Reading BBHR time-off schedule..."
	MsgReconciling  = "Processing attendance data..."
	MsgRendering    = "Generating Excel report..."
	MsgDone         = "Report generated successfully!"
	MsgFailedPrefix = "Processing failed: "
)

// Input is everything one run consumes.
type Input struct {
	Cosec    []byte
	BBHR     []byte
	Holidays []attendance.Holiday
}

type Pipeline struct {
	punches    attendance.PunchParser
	leaves     attendance.LeaveParser
	reconciler attendance.Reconciler
	renderer   attendance.Renderer
	logger     *slog.Logger
}

func New(
	punches attendance.PunchParser,
	leaves attendance.LeaveParser,
	reconciler attendance.Reconciler,
	renderer attendance.Renderer,
	logger *slog.Logger,
) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		punches:    punches,
		leaves:     leaves,
		reconciler: reconciler,
		renderer:   renderer,
		logger:     logger,
	}
}

// Run parses both files concurrently, reconciles them and renders the report.
// On failure it emits one error event and returns no output.
func (p *Pipeline) Run(ctx context.Context, in Input, sink report.ProgressSink) ([]byte, error) {
	started := time.Now()

	out, err := p.run(ctx, in, sink)
	if err != nil {
		sink.Emit(ctx, report.Failure(MsgFailedPrefix+err.Error()))
		p.logger.Error("attendance pipeline failed",
			slog.String("error", err.Error()),
			slog.Duration("elapsed", time.Since(started)),
		)
		return nil, err
	}

	sink.Emit(ctx, report.Success(MsgDone))
	p.logger.Info("attendance pipeline finished",
		slog.Int("bytes", len(out)),
		slog.Duration("elapsed", time.Since(started)),
	)
	return out, nil
}

func (p *Pipeline) run(ctx context.Context, in Input, sink report.ProgressSink) ([]byte, error) {
	sink.Emit(ctx, report.Info(MsgStarting))
	sink.Emit(ctx, report.Info(MsgReadingCosec))
	sink.Emit(ctx, report.Info(MsgReadingBBHR))

	var (
		punches []attendance.AttendancePunch
		leaves  []attendance.LeaveInterval
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if punches, err = p.punches.Parse(in.Cosec); err != nil {
			return fmt.Errorf("COSEC file: %w", err)
		}
		return gctx.Err()
	})
	g.Go(func() error {
		var err error
		if leaves, err = p.leaves.Parse(in.BBHR); err != nil {
			return fmt.Errorf("BBHR file: %w", err)
		}
		return gctx.Err()
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	p.logger.Debug("input files parsed",
		slog.Int("punches", len(punches)),
		slog.Int("leave_intervals", len(leaves)),
	)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sink.Emit(ctx, report.Info(MsgReconciling))
	ledgers, err := p.reconciler.Reconcile(punches, leaves, in.Holidays)
	if err != nil {
		return nil, fmt.Errorf("reconcile: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sink.Emit(ctx, report.Info(MsgRendering))
	out, err := p.renderer.Render(ledgers)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return out, nil
}
