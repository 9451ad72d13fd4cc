package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/cmlabs-hris/trackit-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/trackit-backend-go/internal/domain/schema"
	"github.com/cmlabs-hris/trackit-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/trackit-backend-go/internal/pkg/validator"
	"github.com/cmlabs-hris/trackit-backend-go/internal/service/file"
	"github.com/go-chi/chi/v5"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ReportHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)

	// Upload accepts the cosecFile and bbhrFile multipart fields
	Upload(w http.ResponseWriter, r *http.Request)
	// Validate checks the headers of one file without storing it
	Validate(w http.ResponseWriter, r *http.Request)

	Process(w http.ResponseWriter, r *http.Request)
	Download(w http.ResponseWriter, r *http.Request)
	Logs(w http.ResponseWriter, r *http.Request)

	// Events streams pipeline events as server-sent events
	Events(w http.ResponseWriter, r *http.Request)
}

type reportHandlerImpl struct {
	reportService report.Service
	maxUploadSize int64
	pingInterval  time.Duration
}

func NewReportHandler(reportService report.Service, maxUploadSize int64) ReportHandler {
	if maxUploadSize <= 0 {
		maxUploadSize = 10 << 20
	}
	return &reportHandlerImpl{
		reportService: reportService,
		maxUploadSize: maxUploadSize,
		pingInterval:  30 * time.Second,
	}
}

// Create handles POST /reports
func (h *reportHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	var req report.CreateReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	created, err := h.reportService.Create(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Report created successfully", created)
}

// List handles GET /reports
func (h *reportHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	reports, err := h.reportService.List(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, reports)
}

// Get handles GET /reports/{id}
func (h *reportHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	got, err := h.reportService.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, got)
}

// Upload handles POST /reports/{id}/upload
func (h *reportHandlerImpl) Upload(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	// Two files plus form overhead
	r.Body = http.MaxBytesReader(w, r.Body, 2*h.maxUploadSize+(1<<20))
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		h.formError(w, err)
		return
	}
	defer r.MultipartForm.RemoveAll()

	req := report.UploadFilesRequest{}
	var err error
	if req.Cosec, err = formFile(r, "cosecFile"); err != nil {
		response.BadRequest(w, "Invalid file upload", nil)
		return
	}
	if req.BBHR, err = formFile(r, "bbhrFile"); err != nil {
		response.BadRequest(w, "Invalid file upload", nil)
		return
	}
	defer closeUpload(req.Cosec)
	defer closeUpload(req.BBHR)

	updated, err := h.reportService.UploadFiles(r.Context(), id, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Files uploaded successfully", updated)
}

// Validate handles POST /reports/validate/{kind}
func (h *reportHandlerImpl) Validate(w http.ResponseWriter, r *http.Request) {
	kind := schema.FileKind(chi.URLParam(r, "kind"))
	if !kind.IsValid() {
		response.HandleError(w, schema.ErrUnknownFileKind)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize+(1<<20))
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		h.formError(w, err)
		return
	}
	defer r.MultipartForm.RemoveAll()

	upload, err := formFile(r, "file")
	if err != nil {
		response.BadRequest(w, "Invalid file upload", nil)
		return
	}
	if upload == nil {
		response.ValidationError(w, map[string]string{"file": report.ErrFileRequired.Error()})
		return
	}
	defer closeUpload(upload)

	if !validator.IsXLSXFileName(upload.FileName) {
		response.ValidationError(w, map[string]string{"file": report.ErrInvalidFileType.Error()})
		return
	}

	data, err := io.ReadAll(io.LimitReader(upload.Content, h.maxUploadSize+1))
	if err != nil {
		response.BadRequest(w, "Failed to read uploaded file", nil)
		return
	}
	if int64(len(data)) > h.maxUploadSize {
		response.HandleError(w, file.ErrFileTooLarge)
		return
	}

	result, err := h.reportService.ValidateFile(r.Context(), kind, upload.FileName, data)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// Process handles POST /reports/{id}/process. The run is not tied to the
// request so that a closed browser tab does not abort it.
func (h *reportHandlerImpl) Process(w http.ResponseWriter, r *http.Request) {
	ctx := context.WithoutCancel(r.Context())

	processed, err := h.reportService.Process(ctx, chi.URLParam(r, "id"))
	if err != nil {
		if processed.Status == report.StatusFailed {
			slog.Warn("report processing failed", "report_id", processed.ID, "error", err)
			response.ProcessingFailed(w, err.Error(), processed)
			return
		}
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Report processed successfully", processed)
}

// Download handles GET /reports/{id}/download
func (h *reportHandlerImpl) Download(w http.ResponseWriter, r *http.Request) {
	dl, err := h.reportService.Download(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	defer dl.Content.Close()

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": dl.FileName}))
	if dl.URL != "" {
		w.Header().Set("X-Download-URL", dl.URL)
	}
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, dl.Content); err != nil {
		slog.Error("failed to stream report output", "error", err)
	}
}

// Logs handles GET /reports/{id}/logs
func (h *reportHandlerImpl) Logs(w http.ResponseWriter, r *http.Request) {
	logs, err := h.reportService.Logs(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, logs)
}

// Events handles GET /reports/{id}/events
func (h *reportHandlerImpl) Events(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	flusher, ok := w.(http.Flusher)
	if !ok {
		response.InternalServerError(w, "Streaming not supported")
		return
	}

	events, cleanup, err := h.reportService.Subscribe(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	defer cleanup()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	fmt.Fprintf(w, "event: connected\ndata: {\"status\":\"connected\",\"report_id\":%q}\n\n", id)
	flusher.Flush()

	keepalive := time.NewTicker(h.pingInterval)
	defer keepalive.Stop()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(event)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: progress\ndata: %s\n\n", data)
			flusher.Flush()

		case <-keepalive.C:
			fmt.Fprintf(w, "event: ping\ndata: {\"timestamp\":%d}\n\n", time.Now().Unix())
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}

func (h *reportHandlerImpl) formError(w http.ResponseWriter, err error) {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		response.HandleError(w, file.ErrFileTooLarge)
		return
	}
	slog.Error("Failed to parse multipart form", "error", err)
	response.BadRequest(w, "Failed to parse form data", nil)
}

// formFile returns nil when the field is absent.
func formFile(r *http.Request, field string) (*report.UploadFile, error) {
	f, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &report.UploadFile{FileName: header.Filename, Size: header.Size, Content: f}, nil
}

func closeUpload(u *report.UploadFile) {
	if u == nil {
		return
	}
	if f, ok := u.Content.(multipart.File); ok {
		f.Close()
	}
}
