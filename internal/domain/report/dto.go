package report

import (
	"io"
	"time"

	"github.com/cmlabs-hris/trackit-backend-go/internal/pkg/validator"
)

// ========================================
// REQUESTS
// ========================================

type CreateReportRequest struct {
	Name  string `json:"name"`
	Month string `json:"month"`
}

func (r *CreateReportRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name is required",
		})
	} else if !validator.IsValidReportName(r.Name) {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name may only contain letters, digits, spaces and . _ ( ) -",
		})
	}

	if validator.IsEmpty(r.Month) {
		errs = append(errs, validator.ValidationError{
			Field:   "month",
			Message: "month is required",
		})
	} else if _, ok := validator.ParseMonth(r.Month); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "month",
			Message: "month must be in YYYY-MM format",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// UploadFile is one uploaded input workbook.
type UploadFile struct {
	FileName string
	Size     int64
	Content  io.Reader
}

type UploadFilesRequest struct {
	Cosec *UploadFile
	BBHR  *UploadFile
}

func (r *UploadFilesRequest) Validate() error {
	var errs validator.ValidationErrors

	check := func(field string, f *UploadFile) {
		switch {
		case f == nil || f.Content == nil:
			errs = append(errs, validator.ValidationError{Field: field, Message: ErrFileRequired.Error()})
		case !validator.IsXLSXFileName(f.FileName):
			errs = append(errs, validator.ValidationError{Field: field, Message: ErrInvalidFileType.Error()})
		}
	}
	check("cosecFile", r.Cosec)
	check("bbhrFile", r.BBHR)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ========================================
// RESPONSES
// ========================================

type ReportResponse struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Month          string    `json:"month"`
	Status         Status    `json:"status"`
	CosecFilePath  *string   `json:"cosec_file_path"`
	BBHRFilePath   *string   `json:"bbhr_file_path"`
	OutputFilePath *string   `json:"output_file_path"`
	ErrorMessage   *string   `json:"error_message"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func NewReportResponse(r *Report) ReportResponse {
	return ReportResponse{
		ID:             r.ID,
		Name:           r.Name,
		Month:          r.Month,
		Status:         r.Status,
		CosecFilePath:  r.CosecFilePath,
		BBHRFilePath:   r.BBHRFilePath,
		OutputFilePath: r.OutputFilePath,
		ErrorMessage:   r.ErrorMessage,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

type ProcessingLogResponse struct {
	ID        string    `json:"id"`
	ReportID  string    `json:"report_id"`
	Status    Severity  `json:"status"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

func NewProcessingLogResponse(l *ProcessingLog) ProcessingLogResponse {
	return ProcessingLogResponse{
		ID:        l.ID,
		ReportID:  l.ReportID,
		Status:    l.Status,
		Message:   l.Message,
		CreatedAt: l.CreatedAt,
	}
}

// Download is an opened report output.
type Download struct {
	FileName string
	URL      string
	Content  io.ReadCloser
}
