package validator

import (
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

type ValidationError struct {
	Field   string
	Message string
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	var msgs []string
	for _, err := range v {
		msgs = append(msgs, err.Field+": "+err.Message)
	}
	return strings.Join(msgs, "; ")
}

func (v ValidationErrors) ToMap() map[string]string {
	result := make(map[string]string)
	for _, err := range v {
		result[err.Field] = err.Message
	}
	return result
}

// IsEmpty checks if a string is empty after trimming whitespace.
func IsEmpty(s string) bool {
	return strings.TrimSpace(s) == ""
}

// UUIDv7 regex: version 7 (the 15th character must be '7'), all lowercase hex digits.
var uuidv7Regex = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-7[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)

// UUIDv7 validation
func IsValidUUID(uuid string) bool {
	return uuidv7Regex.MatchString(strings.ToLower(uuid))
}

// ParseMonth parses a reporting month in "YYYY-MM" form.
func ParseMonth(month string) (time.Time, bool) {
	t, err := time.Parse("2006-01", strings.TrimSpace(month))
	return t, err == nil
}

// IsXLSXFileName reports whether name carries the .xlsx extension.
func IsXLSXFileName(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".xlsx")
}

// Report names end up in the output file name, so keep them path-safe.
var reportNameRegex = regexp.MustCompile(`^[A-Za-z0-9 ._()-]{1,100}$`)

func IsValidReportName(name string) bool {
	return reportNameRegex.MatchString(name) && !strings.Contains(name, "..")
}
