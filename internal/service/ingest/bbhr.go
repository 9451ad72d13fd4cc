package ingest

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/cmlabs-hris/trackit-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/trackit-backend-go/internal/pkg/spreadsheet"
)

// BBHRParser reads the time-off schedule export.
type BBHRParser struct {
	layout BBHRLayout
	logger *slog.Logger
}

func NewBBHRParser(layout BBHRLayout, logger *slog.Logger) *BBHRParser {
	if logger == nil {
		logger = slog.Default()
	}
	return &BBHRParser{layout: layout, logger: logger}
}

func (p *BBHRParser) Parse(data []byte) ([]attendance.LeaveInterval, error) {
	sheet, err := readFirstSheet(data)
	if err != nil {
		return nil, err
	}
	return p.ParseSheet(sheet)
}

// ParseSheet emits one interval per row that has an employee number and both
// dates. Other rows are skipped; an unreadable date fails the whole sheet.
func (p *BBHRParser) ParseSheet(sheet spreadsheet.Sheet) ([]attendance.LeaveInterval, error) {
	var leaves []attendance.LeaveInterval

	for _, row := range sheet.Rows {
		if row.Number <= p.layout.HeaderRows {
			continue
		}

		employee := row.Text(p.layout.EmployeeNumberColumn)
		fromCell := row.Cell(p.layout.FromColumn)
		toCell := row.Cell(p.layout.ToColumn)
		if employee == "" || fromCell.IsEmpty() || toCell.IsEmpty() {
			p.logger.Debug("skipping incomplete BBHR row", slog.Int("row", row.Number))
			continue
		}

		from, err := NormalizeDateOrder(dateValue(fromCell), p.layout.DateOrder)
		if err != nil {
			return nil, fmt.Errorf("row %d: from date: %w", row.Number, err)
		}
		to, err := NormalizeDateOrder(dateValue(toCell), p.layout.DateOrder)
		if err != nil {
			return nil, fmt.Errorf("row %d: to date: %w", row.Number, err)
		}

		leaves = append(leaves, attendance.LeaveInterval{
			EmployeeID:   employee,
			EmployeeName: row.Text(p.layout.NameColumn),
			From:         from,
			To:           to,
			Category:     row.Cell(p.layout.CategoryColumn).Text,
			Amount:       amount(row.Cell(p.layout.AmountColumn)),
			Status:       row.Cell(p.layout.StatusColumn).Text,
		})
	}

	p.logger.Debug("BBHR sheet parsed",
		slog.String("sheet", sheet.Name),
		slog.Int("intervals", len(leaves)),
	)
	return leaves, nil
}

// dateValue passes typed cells through and trims text cells.
func dateValue(c spreadsheet.Cell) any {
	if c.Kind == spreadsheet.KindString {
		return strings.TrimSpace(c.Text)
	}
	return c.Value()
}

func amount(c spreadsheet.Cell) float64 {
	if c.Kind == spreadsheet.KindNumber {
		return c.Number
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(c.Text), 64)
	if err != nil {
		return 0
	}
	return n
}
