package schema

// Validator checks an uploaded workbook's header row before it is accepted.
// It never fails: every problem is reported inside the ValidationReport.
type Validator interface {
	Validate(fileName string, data []byte, spec ColumnSpec) ValidationReport
}
