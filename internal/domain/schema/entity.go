package schema

// FileKind identifies which upload a column spec applies to.
type FileKind string

const (
	FileKindCOSEC FileKind = "cosec"
	FileKindBBHR  FileKind = "bbhr"
)

func (k FileKind) IsValid() bool {
	return k == FileKindCOSEC || k == FileKindBBHR
}

// ColumnSpec lists the headers a file must carry. Aliases are keyed by the
// canonical column name.
type ColumnSpec struct {
	Kind            FileKind
	RequiredColumns []string
	Aliases         map[string][]string
	// DateColumns are header names whose preview values must be dates.
	DateColumns []string
}

// Variations returns the canonical name followed by its aliases.
func (s ColumnSpec) Variations(column string) []string {
	return append([]string{column}, s.Aliases[column]...)
}

func CosecSpec() ColumnSpec {
	return ColumnSpec{
		Kind: FileKindCOSEC,
		RequiredColumns: []string{
			"Employee ID",
			"Employee Name",
			"Date",
			"In Time",
			"Out Time",
			"Total Hours",
		},
		Aliases: map[string][]string{
			"Employee ID":   {"Employee Number"},
			"Employee Name": {"Name"},
			"Date":          {"Attendance Date"},
			"In Time":       {"Punch In", "Check In"},
			"Out Time":      {"Punch Out", "Check Out"},
			"Total Hours":   {"Hours", "Duration"},
		},
		DateColumns: []string{"Date", "Attendance Date"},
	}
}

func BBHRSpec() ColumnSpec {
	return ColumnSpec{
		Kind: FileKindBBHR,
		RequiredColumns: []string{
			"Employee ID",
			"Employee Name",
			"Leave Type",
			"From Date",
			"To Date",
			"Days",
		},
		Aliases: map[string][]string{
			"Employee ID":   {"Employee Number"},
			"Employee Name": {"Name"},
			"Leave Type":    {"Category"},
			"From Date":     {"From"},
			"To Date":       {"To"},
			"Days":          {"Amount"},
		},
	}
}

// SpecFor returns the column spec of kind.
func SpecFor(kind FileKind) (ColumnSpec, error) {
	switch kind {
	case FileKindCOSEC:
		return CosecSpec(), nil
	case FileKindBBHR:
		return BBHRSpec(), nil
	}
	return ColumnSpec{}, ErrUnknownFileKind
}

type Column struct {
	Name     string `json:"name"`
	Required bool   `json:"required"`
	Found    bool   `json:"found"`
}

// ValidationReport is the outcome of checking one file against a ColumnSpec.
// Errors make the file unusable; warnings are informational.
type ValidationReport struct {
	FileName    string              `json:"fileName"`
	RowCount    int                 `json:"rowCount"`
	Columns     []Column            `json:"columns"`
	PreviewRows []map[string]string `json:"previewRows"`
	Errors      []string            `json:"errors"`
	Warnings    []string            `json:"warnings"`
	IsValid     bool                `json:"isValid"`
}
