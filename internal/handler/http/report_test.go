package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cmlabs-hris/trackit-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/trackit-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/trackit-backend-go/internal/domain/schema"
	"github.com/cmlabs-hris/trackit-backend-go/internal/handler/http/response"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReportService struct {
	reports map[string]report.ReportResponse

	uploaded   map[string]string
	validated  schema.FileKind
	processErr error
	events     []report.Event
}

func newFakeReportService() *fakeReportService {
	return &fakeReportService{
		reports: map[string]report.ReportResponse{
			"r1": {ID: "r1", Name: "January 2026", Month: "2026-01", Status: report.StatusPending},
		},
		uploaded: map[string]string{},
	}
}

func (f *fakeReportService) Create(_ context.Context, req report.CreateReportRequest) (report.ReportResponse, error) {
	if err := req.Validate(); err != nil {
		return report.ReportResponse{}, err
	}
	resp := report.ReportResponse{ID: "r2", Name: req.Name, Month: req.Month, Status: report.StatusPending}
	f.reports[resp.ID] = resp
	return resp, nil
}

func (f *fakeReportService) List(context.Context) ([]report.ReportResponse, error) {
	return []report.ReportResponse{f.reports["r1"]}, nil
}

func (f *fakeReportService) Get(_ context.Context, id string) (report.ReportResponse, error) {
	r, ok := f.reports[id]
	if !ok {
		return report.ReportResponse{}, report.ErrReportNotFound
	}
	return r, nil
}

func (f *fakeReportService) UploadFiles(ctx context.Context, id string, req report.UploadFilesRequest) (report.ReportResponse, error) {
	if err := req.Validate(); err != nil {
		return report.ReportResponse{}, err
	}
	for field, u := range map[string]*report.UploadFile{"cosecFile": req.Cosec, "bbhrFile": req.BBHR} {
		data, err := io.ReadAll(u.Content)
		if err != nil {
			return report.ReportResponse{}, err
		}
		f.uploaded[field] = u.FileName + ":" + string(data)
	}
	return f.Get(ctx, id)
}

func (f *fakeReportService) ValidateFile(_ context.Context, kind schema.FileKind, fileName string, _ []byte) (schema.ValidationReport, error) {
	f.validated = kind
	return schema.ValidationReport{FileName: fileName, IsValid: true}, nil
}

func (f *fakeReportService) Process(ctx context.Context, id string) (report.ReportResponse, error) {
	r, err := f.Get(ctx, id)
	if err != nil {
		return r, err
	}
	if f.processErr != nil {
		if errors.Is(f.processErr, report.ErrReportAlreadyProcessing) {
			return report.ReportResponse{}, f.processErr
		}
		msg := f.processErr.Error()
		r.Status = report.StatusFailed
		r.ErrorMessage = &msg
		return r, fmt.Errorf("failed to process report: %w", f.processErr)
	}
	r.Status = report.StatusCompleted
	return r, nil
}

func (f *fakeReportService) Download(_ context.Context, id string) (*report.Download, error) {
	if id != "r1" {
		return nil, report.ErrReportNotReady
	}
	return &report.Download{
		FileName: "January 2026.xlsx",
		URL:      "http://localhost:8080/files/reports/r1/output_January_2026.xlsx",
		Content:  io.NopCloser(strings.NewReader("xlsx-bytes")),
	}, nil
}

func (f *fakeReportService) Logs(ctx context.Context, id string) ([]report.ProcessingLogResponse, error) {
	if _, err := f.Get(ctx, id); err != nil {
		return nil, err
	}
	return []report.ProcessingLogResponse{{ID: "l1", ReportID: id, Status: report.SeverityInfo, Message: "Starting report processing"}}, nil
}

func (f *fakeReportService) Subscribe(ctx context.Context, id string) (<-chan report.Event, func(), error) {
	if _, err := f.Get(ctx, id); err != nil {
		return nil, nil, err
	}
	ch := make(chan report.Event, len(f.events))
	for _, e := range f.events {
		ch <- e
	}
	close(ch)
	return ch, func() {}, nil
}

func (f *fakeReportService) FailStale(context.Context) (int, error) { return 0, nil }

func newTestRouter(svc report.Service) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewRouter(RouterConfig{AllowedOrigins: []string{"http://localhost:3000"}}, logger, NewReportHandler(svc, 1<<20))
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) response.Response {
	t.Helper()
	var resp response.Response
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return resp
}

func multipartBody(t *testing.T, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	for field, name := range files {
		part, err := mw.CreateFormFile(field, name)
		require.NoError(t, err)
		_, err = part.Write([]byte("content of " + name))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return body, mw.FormDataContentType()
}

func TestReportHandler_Create(t *testing.T) {
	router := newTestRouter(newFakeReportService())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/reports", strings.NewReader(`{"name":"February 2026","month":"2026-02"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)
	data := resp.Data.(map[string]any)
	assert.Equal(t, "February 2026", data["name"])
	assert.Equal(t, "pending", data["status"])
}

func TestReportHandler_CreateValidation(t *testing.T) {
	router := newTestRouter(newFakeReportService())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/reports", strings.NewReader(`{"name":"","month":"Feb"}`))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	resp := decodeResponse(t, w)
	assert.Contains(t, resp.Error.Details, "name")
	assert.Contains(t, resp.Error.Details, "month")

	req = httptest.NewRequest(http.MethodPost, "/api/v1/reports", strings.NewReader(`{`))
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReportHandler_ListAndGet(t *testing.T) {
	router := newTestRouter(newFakeReportService())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/reports", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeResponse(t, w).Data, 1)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/reports/r1", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/reports/missing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestReportHandler_Upload(t *testing.T) {
	svc := newFakeReportService()
	router := newTestRouter(svc)

	body, contentType := multipartBody(t, map[string]string{"cosecFile": "cosec.xlsx", "bbhrFile": "bbhr.xlsx"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/reports/r1/upload", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "cosec.xlsx:content of cosec.xlsx", svc.uploaded["cosecFile"])
	assert.Equal(t, "bbhr.xlsx:content of bbhr.xlsx", svc.uploaded["bbhrFile"])
}

func TestReportHandler_UploadMissingFile(t *testing.T) {
	router := newTestRouter(newFakeReportService())

	body, contentType := multipartBody(t, map[string]string{"cosecFile": "cosec.csv"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/reports/r1/upload", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	details := decodeResponse(t, w).Error.Details
	assert.Equal(t, report.ErrInvalidFileType.Error(), details["cosecFile"])
	assert.Equal(t, report.ErrFileRequired.Error(), details["bbhrFile"])
}

func TestReportHandler_Validate(t *testing.T) {
	svc := newFakeReportService()
	router := newTestRouter(svc)

	body, contentType := multipartBody(t, map[string]string{"file": "COSEC.XLSX"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/reports/validate/cosec", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, schema.FileKindCOSEC, svc.validated)
	data := decodeResponse(t, w).Data.(map[string]any)
	assert.Equal(t, "COSEC.XLSX", data["fileName"])
	assert.Equal(t, true, data["isValid"])

	body, contentType = multipartBody(t, map[string]string{"file": "a.xlsx"})
	req = httptest.NewRequest(http.MethodPost, "/api/v1/reports/validate/payroll", body)
	req.Header.Set("Content-Type", contentType)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	body, contentType = multipartBody(t, map[string]string{"file": "a.csv"})
	req = httptest.NewRequest(http.MethodPost, "/api/v1/reports/validate/bbhr", body)
	req.Header.Set("Content-Type", contentType)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestReportHandler_Process(t *testing.T) {
	tests := []struct {
		name       string
		processErr error
		wantCode   int
		wantStatus string
	}{
		{"completed", nil, http.StatusOK, "completed"},
		{"bad input", fmt.Errorf("COSEC file: %w", attendance.ErrMalformedFile), http.StatusUnprocessableEntity, "failed"},
		{"already processing", report.ErrReportAlreadyProcessing, http.StatusConflict, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newFakeReportService()
			svc.processErr = tt.processErr
			router := newTestRouter(svc)

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/reports/r1/process", nil))

			assert.Equal(t, tt.wantCode, w.Code)
			resp := decodeResponse(t, w)
			if tt.wantStatus != "" {
				data := resp.Data.(map[string]any)
				assert.Equal(t, tt.wantStatus, data["status"])
			}
		})
	}
}

func TestReportHandler_Download(t *testing.T) {
	router := newTestRouter(newFakeReportService())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/reports/r1/download", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="January 2026.xlsx"`, w.Header().Get("Content-Disposition"))
	assert.Contains(t, w.Header().Get("X-Download-URL"), "output_January_2026.xlsx")
	assert.Equal(t, "xlsx-bytes", w.Body.String())

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/reports/r2/download", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReportHandler_Logs(t *testing.T) {
	router := newTestRouter(newFakeReportService())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/reports/r1/logs", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	logs := decodeResponse(t, w).Data.([]any)
	require.Len(t, logs, 1)
	assert.Equal(t, "Starting report processing", logs[0].(map[string]any)["message"])
}

func TestReportHandler_Events(t *testing.T) {
	svc := newFakeReportService()
	svc.events = []report.Event{
		report.Info("Starting attendance processing..."),
		report.Success("Report generated successfully!"),
	}
	router := newTestRouter(svc)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/reports/r1/events", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))

	body := w.Body.String()
	assert.Contains(t, body, "event: connected\ndata: {\"status\":\"connected\",\"report_id\":\"r1\"}\n\n")
	assert.Contains(t, body, "event: progress\ndata: {\"status\":\"info\",\"message\":\"Starting attendance processing...\"}\n\n")
	assert.Contains(t, body, "event: progress\ndata: {\"status\":\"success\",\"message\":\"Report generated successfully!\"}\n\n")
	assert.Less(t, strings.Index(body, "Starting attendance"), strings.Index(body, "generated successfully"))
}

func TestReportHandler_EventsPing(t *testing.T) {
	svc := newFakeReportService()
	handler := &reportHandlerImpl{reportService: blockingSubscribe{svc}, pingInterval: 10 * time.Millisecond}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx)
	w := httptest.NewRecorder()
	handler.Events(w, req)

	assert.Contains(t, w.Body.String(), "event: ping\n")
}

func TestReportHandler_EventsUnknownReport(t *testing.T) {
	router := newTestRouter(newFakeReportService())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/reports/missing/events", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// blockingSubscribe keeps the event stream open until the request ends.
type blockingSubscribe struct {
	*fakeReportService
}

func (b blockingSubscribe) Subscribe(ctx context.Context, _ string) (<-chan report.Event, func(), error) {
	return make(chan report.Event), func() {}, nil
}
