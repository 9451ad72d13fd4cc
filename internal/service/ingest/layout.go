package ingest

import (
	"fmt"

	"github.com/cmlabs-hris/trackit-backend-go/internal/pkg/validator"
)

// CosecLayout describes the biometric dump: fixed header rows, then date
// section headers followed by employee rows. Columns are 1-based.
type CosecLayout struct {
	HeaderRows       int        `yaml:"header_rows"`
	EmployeeIDColumn int        `yaml:"employee_id_column"`
	NameColumn       int        `yaml:"name_column"`
	FirstInColumn    int        `yaml:"first_in_column"`
	LastOutColumn    int        `yaml:"last_out_column"`
	LateOutColumn    int        `yaml:"late_out_column"`
	SectionDateOrder SlashOrder `yaml:"section_date_order"`
}

func DefaultCosecLayout() CosecLayout {
	return CosecLayout{
		HeaderRows:       3,
		EmployeeIDColumn: 1,
		NameColumn:       3,
		FirstInColumn:    4,
		LastOutColumn:    5,
		LateOutColumn:    8,
		SectionDateOrder: DayFirst,
	}
}

func (l CosecLayout) Validate() error {
	var errs validator.ValidationErrors

	if l.HeaderRows < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "cosec.header_rows",
			Message: "header_rows must not be negative",
		})
	}
	errs = appendColumnErrors(errs, "cosec", []column{
		{"employee_id_column", l.EmployeeIDColumn},
		{"name_column", l.NameColumn},
		{"first_in_column", l.FirstInColumn},
		{"last_out_column", l.LastOutColumn},
		{"late_out_column", l.LateOutColumn},
	})

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// BBHRLayout describes the time-off schedule export. Columns are 1-based.
type BBHRLayout struct {
	HeaderRows           int        `yaml:"header_rows"`
	EmployeeNumberColumn int        `yaml:"employee_number_column"`
	NameColumn           int        `yaml:"name_column"`
	FromColumn           int        `yaml:"from_column"`
	ToColumn             int        `yaml:"to_column"`
	CategoryColumn       int        `yaml:"category_column"`
	AmountColumn         int        `yaml:"amount_column"`
	StatusColumn         int        `yaml:"status_column"`
	DateOrder            SlashOrder `yaml:"date_order"`
}

func DefaultBBHRLayout() BBHRLayout {
	return BBHRLayout{
		HeaderRows:           1,
		EmployeeNumberColumn: 1,
		NameColumn:           2,
		FromColumn:           3,
		ToColumn:             4,
		CategoryColumn:       5,
		AmountColumn:         6,
		StatusColumn:         8,
		DateOrder:            MonthFirst,
	}
}

func (l BBHRLayout) Validate() error {
	var errs validator.ValidationErrors

	if l.HeaderRows < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "bbhr.header_rows",
			Message: "header_rows must not be negative",
		})
	}
	errs = appendColumnErrors(errs, "bbhr", []column{
		{"employee_number_column", l.EmployeeNumberColumn},
		{"name_column", l.NameColumn},
		{"from_column", l.FromColumn},
		{"to_column", l.ToColumn},
		{"category_column", l.CategoryColumn},
		{"amount_column", l.AmountColumn},
		{"status_column", l.StatusColumn},
	})

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type column struct {
	name  string
	index int
}

func appendColumnErrors(errs validator.ValidationErrors, prefix string, columns []column) validator.ValidationErrors {
	for _, c := range columns {
		if c.index < 1 {
			errs = append(errs, validator.ValidationError{
				Field:   fmt.Sprintf("%s.%s", prefix, c.name),
				Message: c.name + " must be a 1-based column index",
			})
		}
	}
	return errs
}
