package report

import (
	"time"
)

// Status is the lifecycle state of a report run.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Report is one reconciliation run over a COSEC dump and a BBHR schedule.
type Report struct {
	ID             string
	Name           string
	Month          string // YYYY-MM
	Status         Status
	CosecFilePath  *string
	BBHRFilePath   *string
	OutputFilePath *string
	ErrorMessage   *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// HasInputs reports whether both input files have been uploaded.
func (r *Report) HasInputs() bool {
	return r.CosecFilePath != nil && *r.CosecFilePath != "" &&
		r.BBHRFilePath != nil && *r.BBHRFilePath != ""
}

// Severity classifies a progress event and its stored log row.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
)

// Event is a structured progress or failure notice emitted while a report is processed.
type Event struct {
	Severity Severity `json:"status"`
	Message  string   `json:"message"`
}

func Info(message string) Event    { return Event{Severity: SeverityInfo, Message: message} }
func Success(message string) Event { return Event{Severity: SeveritySuccess, Message: message} }
func Failure(message string) Event { return Event{Severity: SeverityError, Message: message} }

// ProcessingLog is a persisted Event.
type ProcessingLog struct {
	ID        string
	ReportID  string
	Status    Severity
	Message   string
	CreatedAt time.Time
}
