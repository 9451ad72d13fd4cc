package attendance

import "fmt"

// Status is the single attendance classification of an employee on a day.
type Status int

const (
	StatusPresent Status = iota + 1
	StatusAbsent
	StatusWorkFromHome
	StatusEarnedLeave
	StatusSickLeave
	StatusCasualLeave
	StatusWeekend
	StatusHoliday
)

// AllStatuses returns every status in declaration order.
func AllStatuses() []Status {
	return []Status{
		StatusPresent,
		StatusAbsent,
		StatusWorkFromHome,
		StatusEarnedLeave,
		StatusSickLeave,
		StatusCasualLeave,
		StatusWeekend,
		StatusHoliday,
	}
}

// Code returns the short code written into report cells.
func (s Status) Code() string {
	switch s {
	case StatusPresent:
		return "P"
	case StatusAbsent:
		return "A"
	case StatusWorkFromHome:
		return "WFH"
	case StatusEarnedLeave:
		return "EL"
	case StatusSickLeave:
		return "SL"
	case StatusCasualLeave:
		return "CL"
	case StatusWeekend:
		return "-"
	case StatusHoliday:
		return "H"
	default:
		return "?"
	}
}

func (s Status) String() string {
	switch s {
	case StatusPresent:
		return "Present"
	case StatusAbsent:
		return "Absent"
	case StatusWorkFromHome:
		return "WorkFromHome"
	case StatusEarnedLeave:
		return "EarnedLeave"
	case StatusSickLeave:
		return "SickLeave"
	case StatusCasualLeave:
		return "CasualLeave"
	case StatusWeekend:
		return "Weekend"
	case StatusHoliday:
		return "Holiday"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// IsLeave reports whether the status consumes a leave balance.
func (s Status) IsLeave() bool {
	return s == StatusEarnedLeave || s == StatusSickLeave || s == StatusCasualLeave
}

// ParseStatus converts a report cell code back into a Status.
func ParseStatus(code string) (Status, error) {
	for _, s := range AllStatuses() {
		if s.Code() == code {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown status code %q", code)
}
