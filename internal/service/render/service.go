package render

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/trackit-backend-go/internal/domain/attendance"
	"github.com/xuri/excelize/v2"
)

const (
	SheetName = "Attendance Report"

	// DateHeaderLayout renders e.g. "Mon, 5/Jan/26".
	DateHeaderLayout = "Mon, 2/Jan/06"

	// FirstDateColumn is the 1-based column of the first date.
	FirstDateColumn = 9
)

type summaryColumn struct {
	header string
	width  float64
	value  func(l attendance.Ledger) any
}

var summaryColumns = []summaryColumn{
	{"EMP NO", 12, func(l attendance.Ledger) any { return l.EmployeeID }},
	{"ASSOCIATE NAME", 25, func(l attendance.Ledger) any { return l.EmployeeName }},
	{"CL - Balance", 12, func(l attendance.Ledger) any { return l.CLBalance }},
	{"EL - Balance", 12, func(l attendance.Ledger) any { return l.ELBalance }},
	{"SL - Balance", 12, func(l attendance.Ledger) any { return l.SLBalance }},
	{"No. of days present", 18, func(l attendance.Ledger) any { return l.TotalPresent }},
	{"No. of days absent", 18, func(l attendance.Ledger) any { return l.TotalAbsent }},
	{"WFH", 10, func(l attendance.Ledger) any { return l.TotalWFH }},
}

type rendererService struct {
	logger *slog.Logger
}

func NewRendererService(logger *slog.Logger) attendance.Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &rendererService{logger: logger}
}

// Render writes one row per ledger in ledger order, followed by one
// color-coded column per date.
func (s *rendererService) Render(ledgers attendance.Ledgers) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	styles := newStyleManager(f)
	dates := ledgers.Dates()

	if err := writeHeader(f, styles, dates); err != nil {
		return nil, err
	}

	for i, ledger := range ledgers.All() {
		if err := writeLedger(f, styles, i+2, ledger, dates); err != nil {
			return nil, fmt.Errorf("failed to write employee %s: %w", ledger.EmployeeID, err)
		}
	}

	if err := f.SetPanes(SheetName, &excelize.Panes{
		Freeze:      true,
		XSplit:      2,
		YSplit:      1,
		TopLeftCell: "C2",
		ActivePane:  "bottomRight",
	}); err != nil {
		return nil, fmt.Errorf("failed to freeze panes: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}

	s.logger.Info("attendance report rendered",
		slog.Int("employees", ledgers.Len()),
		slog.Int("dates", len(dates)),
		slog.Int("bytes", buf.Len()),
	)
	return buf.Bytes(), nil
}

func writeHeader(f *excelize.File, styles *styleManager, dates []time.Time) error {
	headerStyle, err := styles.header()
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	headers := make([]any, 0, len(summaryColumns)+len(dates))
	for i, c := range summaryColumns {
		headers = append(headers, c.header)
		if err := setWidth(f, i+1, c.width); err != nil {
			return err
		}
	}
	for i, d := range dates {
		headers = append(headers, d.Format(DateHeaderLayout))
		if err := setWidth(f, FirstDateColumn+i, 14); err != nil {
			return err
		}
	}

	if err := f.SetSheetRow(SheetName, "A1", &headers); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	last, err := excelize.CoordinatesToCellName(len(headers), 1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(SheetName, "A1", last, headerStyle)
}

func writeLedger(f *excelize.File, styles *styleManager, row int, ledger attendance.Ledger, dates []time.Time) error {
	values := make([]any, 0, len(summaryColumns)+len(dates))
	for _, c := range summaryColumns {
		values = append(values, c.value(ledger))
	}

	statuses := make([]attendance.Status, len(dates))
	for i, d := range dates {
		status, ok := ledger.StatusOn(d)
		if !ok {
			status = attendance.StatusWeekend
		}
		statuses[i] = status
		values = append(values, status.Code())
	}

	start, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(SheetName, start, &values); err != nil {
		return err
	}

	for i, status := range statuses {
		styleID, err := styles.status(status)
		if err != nil {
			return err
		}
		cell, err := excelize.CoordinatesToCellName(FirstDateColumn+i, row)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(SheetName, cell, cell, styleID); err != nil {
			return err
		}
	}
	return nil
}

func setWidth(f *excelize.File, col int, width float64) error {
	name, err := excelize.ColumnNumberToName(col)
	if err != nil {
		return err
	}
	return f.SetColWidth(SheetName, name, name, width)
}
