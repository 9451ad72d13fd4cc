package render

import (
	"github.com/cmlabs-hris/trackit-backend-go/internal/domain/attendance"
	"github.com/xuri/excelize/v2"
)

const headerFill = "E0E0E0"

// statusFill returns the background color of a status cell, or "" for no fill.
func statusFill(s attendance.Status) string {
	switch s {
	case attendance.StatusPresent:
		return "D4EDDA"
	case attendance.StatusAbsent:
		return "F8D7DA"
	case attendance.StatusWorkFromHome:
		return "D1ECF1"
	case attendance.StatusEarnedLeave, attendance.StatusSickLeave, attendance.StatusCasualLeave:
		return "FFF3CD"
	case attendance.StatusHoliday:
		return "E2E3E5"
	case attendance.StatusWeekend:
		return ""
	}
	return ""
}

// styleManager caches styles so each one is created once per file.
type styleManager struct {
	file  *excelize.File
	cache map[string]int
}

func newStyleManager(f *excelize.File) *styleManager {
	return &styleManager{file: f, cache: make(map[string]int)}
}

func (sm *styleManager) header() (int, error) {
	return sm.getOrCreate("header", &excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      solidFill(headerFill),
		Alignment: centered(),
	})
}

// status returns the centered style of a date cell, filled per status.
func (sm *styleManager) status(s attendance.Status) (int, error) {
	style := &excelize.Style{Alignment: centered()}
	if color := statusFill(s); color != "" {
		style.Fill = solidFill(color)
	}
	return sm.getOrCreate("status:"+s.Code(), style)
}

func (sm *styleManager) getOrCreate(key string, style *excelize.Style) (int, error) {
	if id, ok := sm.cache[key]; ok {
		return id, nil
	}

	id, err := sm.file.NewStyle(style)
	if err != nil {
		return 0, err
	}

	sm.cache[key] = id
	return id, nil
}

func solidFill(color string) excelize.Fill {
	return excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{color}}
}

func centered() *excelize.Alignment {
	return &excelize.Alignment{Horizontal: "center", Vertical: "center"}
}
