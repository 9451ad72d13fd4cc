package pipeline

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/cmlabs-hris/trackit-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/trackit-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/trackit-backend-go/internal/pkg/spreadsheet/sheettest"
	"github.com/cmlabs-hris/trackit-backend-go/internal/service/ingest"
	"github.com/cmlabs-hris/trackit-backend-go/internal/service/reconcile"
	"github.com/cmlabs-hris/trackit-backend-go/internal/service/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type recorder struct {
	events []report.Event
}

func (r *recorder) Emit(_ context.Context, e report.Event) {
	r.events = append(r.events, e)
}

type failingRenderer struct{}

func (failingRenderer) Render(attendance.Ledgers) ([]byte, error) {
	return nil, errors.New("disk full")
}

func newPipeline(renderer attendance.Renderer) *Pipeline {
	if renderer == nil {
		renderer = render.NewRendererService(nil)
	}
	return New(
		ingest.NewCosecParser(ingest.DefaultCosecLayout(), nil),
		ingest.NewBBHRParser(ingest.DefaultBBHRLayout(), nil),
		reconcile.NewReconcilerService(reconcile.DefaultConfig(), nil),
		renderer,
		nil,
	)
}

func TestRun_EndToEnd(t *testing.T) {
	sink := &recorder{}
	in := Input{
		Cosec: sheettest.Build(t, sheettest.CosecRows()),
		BBHR:  sheettest.Build(t, sheettest.BBHRRows()),
	}

	out, err := newPipeline(nil).Run(context.Background(), in, sink)
	require.NoError(t, err)

	assert.Equal(t, []report.Event{
		report.Info(MsgStarting),
		report.Info(MsgReadingCosec),
		report.Info(MsgReadingBBHR),
		report.Info(MsgReconciling),
		report.Info(MsgRendering),
		report.Success(MsgDone),
	}, sink.events)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(render.SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"100200", "Asha Raman", "9", "15", "12", "2", "0", "0", "P", "P", "CL"}, rows[1])
}

func TestRun_ParseFailureStops(t *testing.T) {
	sink := &recorder{}
	in := Input{
		Cosec: []byte("not a workbook"),
		BBHR:  sheettest.Build(t, sheettest.BBHRRows()),
	}

	out, err := newPipeline(nil).Run(context.Background(), in, sink)
	require.Error(t, err)
	assert.ErrorIs(t, err, attendance.ErrMalformedFile)
	assert.Nil(t, out)

	last := sink.events[len(sink.events)-1]
	assert.Equal(t, report.SeverityError, last.Severity)
	assert.Contains(t, last.Message, MsgFailedPrefix+"COSEC file: ")
	for _, e := range sink.events {
		assert.NotEqual(t, MsgReconciling, e.Message)
		assert.NotEqual(t, report.SeveritySuccess, e.Severity)
	}
}

func TestRun_RenderFailure(t *testing.T) {
	sink := &recorder{}
	in := Input{
		Cosec: sheettest.Build(t, sheettest.CosecRows()),
		BBHR:  sheettest.Build(t, sheettest.BBHRRows()),
	}

	out, err := newPipeline(failingRenderer{}).Run(context.Background(), in, sink)
	require.Error(t, err)
	assert.Nil(t, out)
	assert.Equal(t, report.Failure(MsgFailedPrefix+"render: disk full"), sink.events[len(sink.events)-1])
}

func TestRun_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	in := Input{
		Cosec: sheettest.Build(t, sheettest.CosecRows()),
		BBHR:  sheettest.Build(t, sheettest.BBHRRows()),
	}

	_, err := newPipeline(nil).Run(ctx, in, &recorder{})
	assert.ErrorIs(t, err, context.Canceled)
}
