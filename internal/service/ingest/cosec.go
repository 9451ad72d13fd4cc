package ingest

import (
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"time"

	"github.com/cmlabs-hris/trackit-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/trackit-backend-go/internal/pkg/spreadsheet"
)

var (
	sectionDateRegex = regexp.MustCompile(`(\d{2})/(\d{2})/(\d{4})`)
	employeeIDRegex  = regexp.MustCompile(`^\d{6}$`)
)

// CosecParser reads the biometric attendance dump.
type CosecParser struct {
	layout CosecLayout
	logger *slog.Logger
}

func NewCosecParser(layout CosecLayout, logger *slog.Logger) *CosecParser {
	if logger == nil {
		logger = slog.Default()
	}
	return &CosecParser{layout: layout, logger: logger}
}

// Parse decodes the workbook and parses its first worksheet.
func (p *CosecParser) Parse(data []byte) ([]attendance.AttendancePunch, error) {
	sheet, err := readFirstSheet(data)
	if err != nil {
		return nil, err
	}
	return p.ParseSheet(sheet)
}

// ParseSheet scans rows after the header block. A row whose first cell carries
// a date starts a new section; six-digit employee rows below it become punches.
func (p *CosecParser) ParseSheet(sheet spreadsheet.Sheet) ([]attendance.AttendancePunch, error) {
	var (
		punches []attendance.AttendancePunch
		current time.Time
		hasDate bool
		skipped int
	)

	for _, row := range sheet.Rows {
		if row.Number <= p.layout.HeaderRows {
			continue
		}

		first := row.Cell(1)
		text := row.Text(1)

		if date, ok, err := p.sectionDate(first, text); err != nil {
			return nil, fmt.Errorf("row %d: %w", row.Number, err)
		} else if ok {
			current, hasDate = date, true
			continue
		}

		if !hasDate || !employeeIDRegex.MatchString(row.Text(p.layout.EmployeeIDColumn)) {
			skipped++
			continue
		}

		punches = append(punches, attendance.AttendancePunch{
			Date:         current,
			EmployeeID:   row.Text(p.layout.EmployeeIDColumn),
			EmployeeName: row.Text(p.layout.NameColumn),
			FirstIn:      optionalText(row, p.layout.FirstInColumn),
			LastOut:      optionalText(row, p.layout.LastOutColumn),
			LateOut:      optionalText(row, p.layout.LateOutColumn),
		})
	}

	p.logger.Debug("COSEC sheet parsed",
		slog.String("sheet", sheet.Name),
		slog.Int("punches", len(punches)),
		slog.Int("skipped_rows", skipped),
	)
	return punches, nil
}

// sectionDate detects a date header. Typed date cells count as headers too.
func (p *CosecParser) sectionDate(cell spreadsheet.Cell, text string) (time.Time, bool, error) {
	if cell.Kind == spreadsheet.KindDate {
		return attendance.DateOf(cell.Time), true, nil
	}

	m := sectionDateRegex.FindStringSubmatch(text)
	if m == nil {
		return time.Time{}, false, nil
	}

	first, _ := strconv.Atoi(m[1])
	second, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])

	day, month := first, second
	if p.layout.SectionDateOrder == MonthFirst {
		day, month = second, first
	}

	date, err := makeDate(year, month, day, m[0])
	if err != nil {
		return time.Time{}, false, err
	}
	return date, true, nil
}

func optionalText(row spreadsheet.Row, col int) *string {
	text := row.Text(col)
	if text == "" {
		return nil
	}
	return &text
}

// readFirstSheet opens a workbook and reads its first worksheet, reporting
// container problems as ErrMalformedFile.
func readFirstSheet(data []byte) (spreadsheet.Sheet, error) {
	wb, err := spreadsheet.OpenBytes(data)
	if err != nil {
		return spreadsheet.Sheet{}, fmt.Errorf("%w: %v", attendance.ErrMalformedFile, err)
	}
	defer wb.Close()

	sheet, err := wb.FirstSheet()
	if err != nil {
		return spreadsheet.Sheet{}, fmt.Errorf("%w: %v", attendance.ErrMalformedFile, err)
	}
	return sheet, nil
}
