// Package spreadsheet reads xlsx workbooks into rows of typed cells.
package spreadsheet

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

var ErrNoSheet = errors.New("workbook has no worksheet")

// Kind is the value type of a cell.
type Kind int

const (
	KindEmpty Kind = iota
	KindString
	KindNumber
	KindDate
	KindBool
)

// Cell is one typed cell value. Text always holds the displayed text.
type Cell struct {
	Kind   Kind
	Text   string
	Number float64
	Time   time.Time
	Bool   bool
}

// Value returns the cell as a Go value: time.Time, float64, bool, string or nil.
func (c Cell) Value() any {
	switch c.Kind {
	case KindDate:
		return c.Time
	case KindNumber:
		return c.Number
	case KindBool:
		return c.Bool
	case KindString:
		return c.Text
	default:
		return nil
	}
}

func (c Cell) IsEmpty() bool {
	return c.Kind == KindEmpty || strings.TrimSpace(c.Text) == ""
}

// Row is a sheet row. Number is 1-based.
type Row struct {
	Number int
	Cells  []Cell
}

// Cell returns the cell at the 1-based column col, or an empty cell.
func (r Row) Cell(col int) Cell {
	if col < 1 || col > len(r.Cells) {
		return Cell{}
	}
	return r.Cells[col-1]
}

// Text returns the trimmed text of the 1-based column col.
func (r Row) Text(col int) string {
	return strings.TrimSpace(r.Cell(col).Text)
}

type Sheet struct {
	Name string
	Rows []Row
}

// Row returns the 1-based row n, or an empty row.
func (s Sheet) Row(n int) Row {
	if n < 1 || n > len(s.Rows) {
		return Row{Number: n}
	}
	return s.Rows[n-1]
}

// RowCount returns the number of rows up to the last non-empty one.
func (s Sheet) RowCount() int {
	return len(s.Rows)
}

// Workbook is an opened xlsx file.
type Workbook struct {
	file       *excelize.File
	date1904   bool
	styleDates map[int]bool
}

// Open reads a workbook from r.
func Open(r io.Reader) (*Workbook, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read workbook data: %w", err)
	}
	return OpenBytes(data)
}

// OpenBytes reads a workbook from memory.
func OpenBytes(data []byte) (*Workbook, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}

	wb := &Workbook{
		file:       f,
		styleDates: make(map[int]bool),
	}
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		wb.date1904 = *props.Date1904
	}
	return wb, nil
}

func (w *Workbook) Close() error {
	return w.file.Close()
}

// FirstSheet reads the first worksheet.
func (w *Workbook) FirstSheet() (Sheet, error) {
	sheets := w.file.GetSheetList()
	if len(sheets) == 0 {
		return Sheet{}, ErrNoSheet
	}
	return w.ReadSheet(sheets[0])
}

// ReadSheet reads every row of the named worksheet.
func (w *Workbook) ReadSheet(name string) (Sheet, error) {
	formatted, err := w.file.GetRows(name)
	if err != nil {
		return Sheet{}, fmt.Errorf("failed to read sheet %q: %w", name, err)
	}
	raw, err := w.file.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return Sheet{}, fmt.Errorf("failed to read raw values of sheet %q: %w", name, err)
	}

	sheet := Sheet{Name: name, Rows: make([]Row, len(formatted))}
	for i, cols := range formatted {
		row := Row{Number: i + 1, Cells: make([]Cell, len(cols))}
		for j, text := range cols {
			rawValue := text
			if i < len(raw) && j < len(raw[i]) {
				rawValue = raw[i][j]
			}
			row.Cells[j] = w.readCell(name, i+1, j+1, text, rawValue)
		}
		sheet.Rows[i] = row
	}
	return sheet, nil
}

func (w *Workbook) readCell(sheet string, row, col int, text, raw string) Cell {
	if raw == "" && text == "" {
		return Cell{Kind: KindEmpty}
	}

	ref, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return Cell{Kind: KindString, Text: text}
	}

	cellType, err := w.file.GetCellType(sheet, ref)
	if err != nil {
		return Cell{Kind: KindString, Text: text}
	}

	switch cellType {
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString, excelize.CellTypeError:
		return Cell{Kind: KindString, Text: text}
	case excelize.CellTypeBool:
		return Cell{Kind: KindBool, Text: text, Bool: raw == "1" || strings.EqualFold(raw, "true")}
	case excelize.CellTypeDate:
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			return Cell{Kind: KindDate, Text: text, Time: t}
		}
		return Cell{Kind: KindString, Text: text}
	}

	n, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return Cell{Kind: KindString, Text: text}
	}

	if w.isDateStyled(sheet, ref) {
		if t, err := excelize.ExcelDateToTime(n, w.date1904); err == nil {
			return Cell{Kind: KindDate, Text: text, Number: n, Time: t}
		}
	}
	return Cell{Kind: KindNumber, Text: text, Number: n}
}

func (w *Workbook) isDateStyled(sheet, ref string) bool {
	styleID, err := w.file.GetCellStyle(sheet, ref)
	if err != nil || styleID == 0 {
		return false
	}
	if isDate, ok := w.styleDates[styleID]; ok {
		return isDate
	}

	isDate := false
	if style, err := w.file.GetStyle(styleID); err == nil && style != nil {
		isDate = isDateFormat(style.NumFmt, style.CustomNumFmt)
	}
	w.styleDates[styleID] = isDate
	return isDate
}

// isDateFormat reports whether a number format renders a calendar date.
// Time-only formats are not dates.
func isDateFormat(numFmt int, custom *string) bool {
	if custom != nil && *custom != "" {
		code := strings.ToLower(stripLiterals(*custom))
		return strings.ContainsAny(code, "dy")
	}
	switch {
	case numFmt >= 14 && numFmt <= 17:
		return true
	case numFmt == 22:
		return true
	case numFmt >= 27 && numFmt <= 36:
		return true
	case numFmt >= 50 && numFmt <= 58:
		return true
	}
	return false
}

// stripLiterals removes quoted text, escaped characters and bracketed sections
// from a number format code.
func stripLiterals(code string) string {
	var b strings.Builder
	inQuote, inBracket := false, false
	for i := 0; i < len(code); i++ {
		c := code[i]
		switch {
		case inQuote:
			if c == '"' {
				inQuote = false
			}
		case inBracket:
			if c == ']' {
				inBracket = false
			}
		case c == '"':
			inQuote = true
		case c == '[':
			inBracket = true
		case c == '\\':
			i++
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
