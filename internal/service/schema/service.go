package schema

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cmlabs-hris/trackit-backend-go/internal/domain/schema"
	"github.com/cmlabs-hris/trackit-backend-go/internal/pkg/spreadsheet"
	"github.com/cmlabs-hris/trackit-backend-go/internal/service/ingest"
)

const (
	previewRowLimit   = 5
	smallFileRowCount = 10
)

type validatorService struct {
	logger *slog.Logger
}

func NewValidatorService(logger *slog.Logger) schema.Validator {
	if logger == nil {
		logger = slog.Default()
	}
	return &validatorService{logger: logger}
}

// header is a non-empty header cell and its 1-based column.
type header struct {
	name   string
	column int
}

func (s *validatorService) Validate(fileName string, data []byte, spec schema.ColumnSpec) schema.ValidationReport {
	wb, err := spreadsheet.OpenBytes(data)
	if err != nil {
		return s.reject(fileName, spec, fmt.Sprintf("Failed to read Excel file: %v", err))
	}
	defer wb.Close()

	sheet, err := wb.FirstSheet()
	if errors.Is(err, spreadsheet.ErrNoSheet) {
		return s.reject(fileName, spec, "No worksheet found in the file. Please ensure the file contains at least one sheet with data.")
	}
	if err != nil {
		return s.reject(fileName, spec, fmt.Sprintf("Failed to read Excel file: %v", err))
	}

	headers := readHeaders(sheet.Row(1))
	if len(headers) == 0 {
		return s.reject(fileName, spec, "No column headers found in the first row. Please ensure the file has headers in the first row.")
	}

	report := schema.ValidationReport{
		FileName:    fileName,
		Columns:     []schema.Column{},
		PreviewRows: []map[string]string{},
		Errors:      []string{},
		Warnings:    []string{},
	}

	for _, required := range spec.RequiredColumns {
		found := findHeader(headers, spec.Variations(required)) != nil
		report.Columns = append(report.Columns, schema.Column{Name: required, Required: true, Found: found})
		if !found {
			report.Errors = append(report.Errors, missingColumnMessage(required, spec.Aliases[required]))
		}
	}

	for _, h := range headers {
		if !isKnownColumn(h.name, spec) {
			report.Columns = append(report.Columns, schema.Column{Name: h.name, Required: false, Found: true})
		}
	}

	report.RowCount = max(sheet.RowCount()-1, 0)
	switch {
	case report.RowCount == 0:
		report.Warnings = append(report.Warnings, "File contains no data rows")
	case report.RowCount < smallFileRowCount:
		report.Warnings = append(report.Warnings, fmt.Sprintf("File contains only %d data rows", report.RowCount))
	}

	dateHeader := findHeader(headers, spec.DateColumns)
	for n := 2; n <= min(previewRowLimit, report.RowCount)+1; n++ {
		row := sheet.Row(n)

		preview := make(map[string]string, len(headers))
		for _, h := range headers {
			preview[h.name] = row.Cell(h.column).Text
		}
		report.PreviewRows = append(report.PreviewRows, preview)

		if dateHeader == nil {
			continue
		}
		if cell := row.Cell(dateHeader.column); !cell.IsEmpty() && !ingest.IsValidDate(cell) {
			report.Warnings = append(report.Warnings, fmt.Sprintf("Row %d: Invalid date format in Date column", n))
		}
	}

	report.IsValid = len(report.Errors) == 0

	s.logger.Debug("file validated",
		slog.String("file_name", fileName),
		slog.String("kind", string(spec.Kind)),
		slog.Int("row_count", report.RowCount),
		slog.Int("errors", len(report.Errors)),
		slog.Int("warnings", len(report.Warnings)),
	)
	return report
}

// reject builds the report for a file that could not be inspected at all.
func (s *validatorService) reject(fileName string, spec schema.ColumnSpec, message string) schema.ValidationReport {
	s.logger.Warn("file rejected", slog.String("file_name", fileName), slog.String("reason", message))

	columns := make([]schema.Column, 0, len(spec.RequiredColumns))
	for _, name := range spec.RequiredColumns {
		columns = append(columns, schema.Column{Name: name, Required: true})
	}
	return schema.ValidationReport{
		FileName:    fileName,
		Columns:     columns,
		PreviewRows: []map[string]string{},
		Errors:      []string{message},
		Warnings:    []string{},
	}
}

func readHeaders(row spreadsheet.Row) []header {
	var headers []header
	for i := range row.Cells {
		if name := row.Text(i + 1); name != "" {
			headers = append(headers, header{name: name, column: i + 1})
		}
	}
	return headers
}

// findHeader returns the first header equal to one of names, ignoring case.
func findHeader(headers []header, names []string) *header {
	for i := range headers {
		for _, name := range names {
			if strings.EqualFold(headers[i].name, strings.TrimSpace(name)) {
				return &headers[i]
			}
		}
	}
	return nil
}

func isKnownColumn(name string, spec schema.ColumnSpec) bool {
	for _, required := range spec.RequiredColumns {
		for _, v := range spec.Variations(required) {
			if strings.EqualFold(name, strings.TrimSpace(v)) {
				return true
			}
		}
	}
	return false
}

func missingColumnMessage(column string, aliases []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Missing required column: %q", column)
	for _, alias := range aliases {
		fmt.Fprintf(&b, "\n--> %s === %s", column, alias)
	}
	return b.String()
}
