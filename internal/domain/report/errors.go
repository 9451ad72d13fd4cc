package report

import "errors"

var (
	ErrReportNotFound          = errors.New("report not found")
	ErrFilesNotUploaded        = errors.New("both COSEC and BBHR files must be uploaded before processing")
	ErrReportNotReady          = errors.New("report output is not available yet")
	ErrReportAlreadyProcessing = errors.New("report is already being processed")
	ErrInvalidFileType         = errors.New("only .xlsx files are accepted")
	ErrFileRequired            = errors.New("file is required")
)
