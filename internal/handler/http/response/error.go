package response

import (
	"errors"
	"net/http"

	"github.com/cmlabs-hris/trackit-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/trackit-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/trackit-backend-go/internal/domain/schema"
	"github.com/cmlabs-hris/trackit-backend-go/internal/pkg/validator"
	"github.com/cmlabs-hris/trackit-backend-go/internal/service/file"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Report domain errors
	case errors.Is(err, report.ErrReportNotFound):
		NotFound(w, "Report not found")
	case errors.Is(err, report.ErrReportAlreadyProcessing):
		Conflict(w, "Report is already being processed")
	case errors.Is(err, report.ErrFilesNotUploaded),
		errors.Is(err, report.ErrReportNotReady),
		errors.Is(err, report.ErrInvalidFileType),
		errors.Is(err, report.ErrFileRequired):
		BadRequest(w, err.Error(), nil)

	// Upload errors
	case errors.Is(err, schema.ErrUnknownFileKind):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, file.ErrFileTooLarge):
		PayloadTooLarge(w, err.Error())

	// Input data errors
	case errors.Is(err, attendance.ErrMalformedFile),
		errors.Is(err, attendance.ErrDateParse),
		errors.Is(err, attendance.ErrDateRangeTooLarge):
		ProcessingFailed(w, err.Error(), nil)

	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
