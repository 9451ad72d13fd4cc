package ingest

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/cmlabs-hris/trackit-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/trackit-backend-go/internal/pkg/spreadsheet"
)

// SlashOrder selects how a numeric/numeric/numeric date is read.
type SlashOrder int

const (
	MonthFirst SlashOrder = iota
	DayFirst
)

func (o SlashOrder) String() string {
	if o == DayFirst {
		return "day_first"
	}
	return "month_first"
}

// UnmarshalText accepts "month_first" or "day_first".
func (o *SlashOrder) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "month_first", "mdy", "":
		*o = MonthFirst
	case "day_first", "dmy":
		*o = DayFirst
	default:
		return fmt.Errorf("invalid slash date order %q", string(text))
	}
	return nil
}

func (o SlashOrder) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// spreadsheetEpoch is serial day zero of the 1900 date system.
var spreadsheetEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

var slashDateRegex = regexp.MustCompile(`^(\d+)/(\d+)/(\d+)$`)

// NormalizeDate converts a native date, a month/day/year string or a
// spreadsheet serial number into a calendar date.
func NormalizeDate(value any) (time.Time, error) {
	return NormalizeDateOrder(value, MonthFirst)
}

// NormalizeDateOrder is NormalizeDate with an explicit order for slash-delimited strings.
func NormalizeDateOrder(value any, order SlashOrder) (time.Time, error) {
	switch v := value.(type) {
	case time.Time:
		return attendance.DateOf(v), nil
	case *time.Time:
		if v != nil {
			return attendance.DateOf(*v), nil
		}
	case spreadsheet.Cell:
		if v.Kind != spreadsheet.KindEmpty {
			return NormalizeDateOrder(v.Value(), order)
		}
	case string:
		return parseSlashDate(v, order)
	case float64:
		return fromSerial(v)
	case float32:
		return fromSerial(float64(v))
	case int:
		return fromSerial(float64(v))
	case int32:
		return fromSerial(float64(v))
	case int64:
		return fromSerial(float64(v))
	}
	return time.Time{}, fmt.Errorf("%w: %v", attendance.ErrDateParse, value)
}

// IsValidDate reports whether NormalizeDate accepts value.
func IsValidDate(value any) bool {
	_, err := NormalizeDate(value)
	return err == nil
}

func parseSlashDate(s string, order SlashOrder) (time.Time, error) {
	m := slashDateRegex.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return time.Time{}, fmt.Errorf("%w: %q", attendance.ErrDateParse, s)
	}

	first, _ := strconv.Atoi(m[1])
	second, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])

	month, day := first, second
	if order == DayFirst {
		month, day = second, first
	}

	if year < 100 {
		if year < 50 {
			year += 2000
		} else {
			year += 1900
		}
	}

	return makeDate(year, month, day, s)
}

// makeDate builds a date, rejecting values that would roll over into another month.
func makeDate(year, month, day int, source string) (time.Time, error) {
	if month < 1 || month > 12 || day < 1 {
		return time.Time{}, fmt.Errorf("%w: %q", attendance.ErrDateParse, source)
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day || int(t.Month()) != month {
		return time.Time{}, fmt.Errorf("%w: %q", attendance.ErrDateParse, source)
	}
	return t, nil
}

func fromSerial(serial float64) (time.Time, error) {
	if math.IsNaN(serial) || math.IsInf(serial, 0) {
		return time.Time{}, fmt.Errorf("%w: %v", attendance.ErrDateParse, serial)
	}
	days := int(math.Floor(serial))
	return spreadsheetEpoch.AddDate(0, 0, days), nil
}
