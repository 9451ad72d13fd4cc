package attendance

import (
	"slices"
	"time"
)

// DateLayout is the canonical text form of a calendar date.
const DateLayout = "2006-01-02"

// AttendancePunch is one employee's biometric punch summary for one day.
type AttendancePunch struct {
	Date         time.Time
	EmployeeID   string
	EmployeeName string
	FirstIn      *string
	LastOut      *string
	LateOut      *string
}

// HasPunch reports whether the punch carries an in or out token.
func (p AttendancePunch) HasPunch() bool {
	return (p.FirstIn != nil && *p.FirstIn != "") || (p.LastOut != nil && *p.LastOut != "")
}

// LeaveInterval is an inclusive leave range from the time-off schedule.
type LeaveInterval struct {
	EmployeeID   string
	EmployeeName string
	From         time.Time
	To           time.Time
	Category     string
	Amount       float64
	Status       string
}

// Covers reports whether date falls inside the interval, bounds included.
func (l LeaveInterval) Covers(date time.Time) bool {
	d := DateOf(date)
	return !d.Before(DateOf(l.From)) && !d.After(DateOf(l.To))
}

type Holiday struct {
	Date        time.Time `json:"date" yaml:"date"`
	Description string    `json:"description" yaml:"description"`
}

// Balances holds the casual, earned and sick leave balances of an employee.
type Balances struct {
	Casual int `json:"casual" yaml:"casual"`
	Earned int `json:"earned" yaml:"earned"`
	Sick   int `json:"sick" yaml:"sick"`
}

// DefaultBalances returns the opening balances used when none are configured.
func DefaultBalances() Balances {
	return Balances{Casual: 10, Earned: 15, Sick: 12}
}

// DayStatus is the status assigned to one calendar day.
type DayStatus struct {
	Date   time.Time
	Status Status
}

// Ledger is the reconciled attendance of one employee over the processed range.
type Ledger struct {
	EmployeeID   string
	EmployeeName string
	Days         []DayStatus

	TotalPresent int
	TotalAbsent  int
	TotalWFH     int
	TotalLeave   int

	CLBalance int
	ELBalance int
	SLBalance int
}

// StatusOn returns the status recorded for date.
func (l Ledger) StatusOn(date time.Time) (Status, bool) {
	d := DateOf(date)
	for _, day := range l.Days {
		if day.Date.Equal(d) {
			return day.Status, true
		}
	}
	return 0, false
}

// Ledgers is the reconciler output: one ledger per employee, ordered by employee ID.
type Ledgers struct {
	order []string
	byID  map[string]Ledger
}

// NewLedgers builds a Ledgers collection preserving the order of items.
func NewLedgers(items []Ledger) Ledgers {
	ls := Ledgers{
		order: make([]string, 0, len(items)),
		byID:  make(map[string]Ledger, len(items)),
	}
	for _, l := range items {
		if _, ok := ls.byID[l.EmployeeID]; !ok {
			ls.order = append(ls.order, l.EmployeeID)
		}
		ls.byID[l.EmployeeID] = l
	}
	return ls
}

// Get returns the ledger of an employee.
func (ls Ledgers) Get(employeeID string) (Ledger, bool) {
	l, ok := ls.byID[employeeID]
	return l, ok
}

// IDs returns employee IDs in row order.
func (ls Ledgers) IDs() []string {
	out := make([]string, len(ls.order))
	copy(out, ls.order)
	return out
}

// All returns the ledgers in row order.
func (ls Ledgers) All() []Ledger {
	out := make([]Ledger, 0, len(ls.order))
	for _, id := range ls.order {
		out = append(out, ls.byID[id])
	}
	return out
}

func (ls Ledgers) Len() int {
	return len(ls.order)
}

// Dates returns every date present in any ledger, ascending.
func (ls Ledgers) Dates() []time.Time {
	seen := make(map[time.Time]struct{})
	var dates []time.Time
	for _, id := range ls.order {
		for _, day := range ls.byID[id].Days {
			if _, ok := seen[day.Date]; ok {
				continue
			}
			seen[day.Date] = struct{}{}
			dates = append(dates, day.Date)
		}
	}
	slices.SortFunc(dates, func(a, b time.Time) int { return a.Compare(b) })
	return dates
}

// DateOf truncates t to its calendar date at UTC midnight.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
