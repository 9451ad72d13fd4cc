package ingest

import (
	"testing"
	"time"

	"github.com/cmlabs-hris/trackit-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/trackit-backend-go/internal/pkg/spreadsheet"
	"github.com/cmlabs-hris/trackit-backend-go/internal/pkg/spreadsheet/sheettest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cosecRows() [][]any {
	return [][]any{
		{"COSEC Daily Attendance"},
		{"Generated 10/01/2026"},
		{"User ID", "", "Name", "First In", "Last Out", "", "", "Late Out"},
		{"Date: 05/01/2026"},
		{"100200", "", "Asha Raman", "09:02", "18:10", "", "", ""},
		{"100201", "", "Vikram Iyer", "", "", "", "", ""},
		{"Total", "", "2"},
		{"Date: 06/01/2026"},
		{100200, "", "Asha Raman", "09:15", "", "", "", "19:30"},
		{"12345", "", "Short Id", "09:00", "18:00"},
	}
}

func TestCosecParser_Parse(t *testing.T) {
	p := NewCosecParser(DefaultCosecLayout(), nil)

	punches, err := p.Parse(sheettest.Build(t, cosecRows()))
	require.NoError(t, err)
	require.Len(t, punches, 3)

	first := punches[0]
	assert.Equal(t, day(2026, time.January, 5), first.Date)
	assert.Equal(t, "100200", first.EmployeeID)
	assert.Equal(t, "Asha Raman", first.EmployeeName)
	require.NotNil(t, first.FirstIn)
	assert.Equal(t, "09:02", *first.FirstIn)
	require.NotNil(t, first.LastOut)
	assert.Equal(t, "18:10", *first.LastOut)
	assert.Nil(t, first.LateOut)
	assert.True(t, first.HasPunch())

	absent := punches[1]
	assert.Equal(t, "100201", absent.EmployeeID)
	assert.Nil(t, absent.FirstIn)
	assert.Nil(t, absent.LastOut)
	assert.False(t, absent.HasPunch())

	numeric := punches[2]
	assert.Equal(t, day(2026, time.January, 6), numeric.Date)
	assert.Equal(t, "100200", numeric.EmployeeID)
	require.NotNil(t, numeric.LateOut)
	assert.Equal(t, "19:30", *numeric.LateOut)
}

func TestCosecParser_RowsBeforeFirstSectionAreSkipped(t *testing.T) {
	rows := [][]any{
		{"h1"}, {"h2"}, {"h3"},
		{"100200", "", "Asha Raman", "09:00", "18:00"},
		{"Date: 07/01/2026"},
		{"100200", "", "Asha Raman", "09:00", "18:00"},
	}

	punches, err := NewCosecParser(DefaultCosecLayout(), nil).Parse(sheettest.Build(t, rows))
	require.NoError(t, err)
	require.Len(t, punches, 1)
	assert.Equal(t, day(2026, time.January, 7), punches[0].Date)
}

func TestCosecParser_HeaderRowsAreNotScanned(t *testing.T) {
	rows := [][]any{
		{"Date: 01/01/2026"},
		{"100200", "", "Asha Raman", "09:00", "18:00"},
		{"h3"},
	}

	punches, err := NewCosecParser(DefaultCosecLayout(), nil).Parse(sheettest.Build(t, rows))
	require.NoError(t, err)
	assert.Empty(t, punches)
}

func TestCosecParser_InvalidSectionDate(t *testing.T) {
	rows := [][]any{
		{"h1"}, {"h2"}, {"h3"},
		{"Date: 31/02/2026"},
		{"100200", "", "Asha Raman", "09:00", "18:00"},
	}

	_, err := NewCosecParser(DefaultCosecLayout(), nil).Parse(sheettest.Build(t, rows))
	require.Error(t, err)
	assert.ErrorIs(t, err, attendance.ErrDateParse)
	assert.Contains(t, err.Error(), "row 4")
}

func TestCosecParser_MonthFirstSections(t *testing.T) {
	layout := DefaultCosecLayout()
	layout.SectionDateOrder = MonthFirst

	sheet := spreadsheet.Sheet{Rows: []spreadsheet.Row{
		{Number: 1},
		{Number: 2},
		{Number: 3},
		{Number: 4, Cells: []spreadsheet.Cell{{Kind: spreadsheet.KindString, Text: "01/05/2026"}}},
		{Number: 5, Cells: []spreadsheet.Cell{
			{Kind: spreadsheet.KindString, Text: "100200"},
			{},
			{Kind: spreadsheet.KindString, Text: "Asha Raman"},
			{Kind: spreadsheet.KindString, Text: "09:00"},
		}},
	}}

	punches, err := NewCosecParser(layout, nil).ParseSheet(sheet)
	require.NoError(t, err)
	require.Len(t, punches, 1)
	assert.Equal(t, day(2026, time.January, 5), punches[0].Date)
}

func TestCosecParser_TypedDateSection(t *testing.T) {
	rows := [][]any{
		{"h1"}, {"h2"}, {"h3"},
		{time.Date(2026, time.January, 7, 8, 45, 0, 0, time.UTC)},
		{"100200", "", "Asha Raman", "09:00", "18:00"},
	}

	punches, err := NewCosecParser(DefaultCosecLayout(), nil).Parse(sheettest.Build(t, rows))
	require.NoError(t, err)
	require.Len(t, punches, 1)
	assert.Equal(t, day(2026, time.January, 7), punches[0].Date)
	require.NotNil(t, punches[0].FirstIn)
	assert.Equal(t, "09:00", *punches[0].FirstIn)
}

func TestCosecParser_MalformedFile(t *testing.T) {
	_, err := NewCosecParser(DefaultCosecLayout(), nil).Parse([]byte("not a workbook"))
	assert.ErrorIs(t, err, attendance.ErrMalformedFile)
}
