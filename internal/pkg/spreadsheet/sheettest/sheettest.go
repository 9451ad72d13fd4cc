// Package sheettest builds xlsx fixtures for tests.
package sheettest

import (
	"testing"

	"github.com/xuri/excelize/v2"
)

// Build writes rows into the first sheet of a new workbook and returns its bytes.
func Build(t testing.TB, rows [][]any) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatalf("write row %d: %v", i+1, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf.Bytes()
}

// CosecRows returns a small COSEC dump: employee 100200 present on
// 2026-01-05 and 2026-01-06, no punch on 2026-01-07.
func CosecRows() [][]any {
	return [][]any{
		{"COSEC Daily Attendance Report"},
		{"Period: 05/01/2026 - 07/01/2026"},
		{"User ID", "", "Name", "First In", "Last Out", "", "", "Late Out"},
		{"Date: 05/01/2026"},
		{"100200", "", "Asha Raman", "09:02", "18:10", "", "", ""},
		{"Date: 06/01/2026"},
		{"100200", "", "Asha Raman", "09:15", "18:01", "", "", ""},
		{"Date: 07/01/2026"},
		{"100200", "", "Asha Raman", "", "", "", "", ""},
	}
}

// BBHRRows returns a BBHR schedule with one approved casual leave for
// 100200 on 2026-01-07.
func BBHRRows() [][]any {
	return [][]any{
		{"Employee Number", "Name", "From", "To", "Category", "Amount", "Unit", "Status"},
		{"100200", "Asha Raman", "01/07/2026", "01/07/2026", "Casual Leave", 1, "days", "Approved"},
	}
}
