package reconcile

import (
	"cmp"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/cmlabs-hris/trackit-backend-go/internal/domain/attendance"
)

const unknownEmployeeName = "Unknown"

// Config holds the reconciliation rules that are not derived from the input files.
type Config struct {
	Balances       attendance.Balances
	ApprovedStatus string
	// MaxRangeDays caps the processed date range; zero disables the check.
	MaxRangeDays int
}

func DefaultConfig() Config {
	return Config{
		Balances:       attendance.DefaultBalances(),
		ApprovedStatus: "Approved",
	}
}

// leaveCategories maps leave category text to a status, matched by substring in this order.
var leaveCategories = []struct {
	match  string
	status attendance.Status
}{
	{"Work from Home", attendance.StatusWorkFromHome},
	{"Earned Leave", attendance.StatusEarnedLeave},
	{"Sick Leave", attendance.StatusSickLeave},
	{"Casual Leave", attendance.StatusCasualLeave},
}

type reconcilerService struct {
	config Config
	logger *slog.Logger
}

func NewReconcilerService(config Config, logger *slog.Logger) attendance.Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	return &reconcilerService{config: config, logger: logger}
}

type punchKey struct {
	employeeID string
	date       time.Time
}

func (s *reconcilerService) Reconcile(punches []attendance.AttendancePunch, leaves []attendance.LeaveInterval, holidays []attendance.Holiday) (attendance.Ledgers, error) {
	start, end, ok := dateRange(punches, leaves)
	if !ok {
		s.logger.Warn("no punches or leave intervals to reconcile")
		return attendance.NewLedgers(nil), nil
	}

	days := int(end.Sub(start).Hours()/24) + 1
	if s.config.MaxRangeDays > 0 && days > s.config.MaxRangeDays {
		return attendance.Ledgers{}, fmt.Errorf("%w: %s to %s is %d days, maximum is %d",
			attendance.ErrDateRangeTooLarge,
			start.Format(attendance.DateLayout), end.Format(attendance.DateLayout),
			days, s.config.MaxRangeDays)
	}

	holidaySet := make(map[time.Time]struct{}, len(holidays))
	for _, h := range holidays {
		holidaySet[attendance.DateOf(h.Date)] = struct{}{}
	}

	present := make(map[punchKey]bool, len(punches))
	for _, p := range punches {
		key := punchKey{p.EmployeeID, attendance.DateOf(p.Date)}
		present[key] = present[key] || p.HasPunch()
	}

	approved := make(map[string][]attendance.LeaveInterval)
	for _, l := range leaves {
		if l.Status == s.config.ApprovedStatus {
			approved[l.EmployeeID] = append(approved[l.EmployeeID], l)
		}
	}

	ids, names := employees(punches, leaves)
	ledgers := make([]attendance.Ledger, 0, len(ids))

	for _, id := range ids {
		ledger := attendance.Ledger{
			EmployeeID:   id,
			EmployeeName: names[id],
			Days:         make([]attendance.DayStatus, 0, days),
			CLBalance:    s.config.Balances.Casual,
			ELBalance:    s.config.Balances.Earned,
			SLBalance:    s.config.Balances.Sick,
		}

		for date := start; !date.After(end); date = date.AddDate(0, 0, 1) {
			status := s.classify(&ledger, date, holidaySet, approved[id], present[punchKey{id, date}])
			ledger.Days = append(ledger.Days, attendance.DayStatus{Date: date, Status: status})
		}

		ledgers = append(ledgers, ledger)
	}

	s.logger.Info("attendance reconciled",
		slog.String("from", start.Format(attendance.DateLayout)),
		slog.String("to", end.Format(attendance.DateLayout)),
		slog.Int("employees", len(ledgers)),
		slog.Int("days", days),
	)
	return attendance.NewLedgers(ledgers), nil
}

// classify assigns one day's status and updates the ledger counters.
// Weekend, holiday, approved leave and punches are checked in that order.
func (s *reconcilerService) classify(ledger *attendance.Ledger, date time.Time, holidays map[time.Time]struct{}, leaves []attendance.LeaveInterval, punched bool) attendance.Status {
	if wd := date.Weekday(); wd == time.Saturday || wd == time.Sunday {
		return attendance.StatusWeekend
	}

	if _, ok := holidays[date]; ok {
		return attendance.StatusHoliday
	}

	if leave, ok := coveringLeave(leaves, date); ok {
		status := s.leaveStatus(ledger.EmployeeID, leave.Category)
		if status == attendance.StatusWorkFromHome {
			ledger.TotalWFH++
			return status
		}

		ledger.TotalLeave++
		switch status {
		case attendance.StatusCasualLeave:
			ledger.CLBalance--
		case attendance.StatusEarnedLeave:
			ledger.ELBalance--
		case attendance.StatusSickLeave:
			ledger.SLBalance--
		}
		return status
	}

	if punched {
		ledger.TotalPresent++
		return attendance.StatusPresent
	}

	ledger.TotalAbsent++
	return attendance.StatusAbsent
}

// leaveStatus maps a category to a status. Unrecognized categories are Absent.
func (s *reconcilerService) leaveStatus(employeeID, category string) attendance.Status {
	for _, c := range leaveCategories {
		if strings.Contains(category, c.match) {
			return c.status
		}
	}
	s.logger.Warn("unrecognized leave category, marking absent",
		slog.String("employee_id", employeeID),
		slog.String("category", category),
	)
	return attendance.StatusAbsent
}

func coveringLeave(leaves []attendance.LeaveInterval, date time.Time) (attendance.LeaveInterval, bool) {
	for _, l := range leaves {
		if l.Covers(date) {
			return l, true
		}
	}
	return attendance.LeaveInterval{}, false
}

// dateRange spans all punch dates, or all leave intervals when there are no punches.
func dateRange(punches []attendance.AttendancePunch, leaves []attendance.LeaveInterval) (time.Time, time.Time, bool) {
	var start, end time.Time
	found := false

	widen := func(from, to time.Time) {
		from, to = attendance.DateOf(from), attendance.DateOf(to)
		if !found || from.Before(start) {
			start = from
		}
		if !found || to.After(end) {
			end = to
		}
		found = true
	}

	if len(punches) > 0 {
		for _, p := range punches {
			widen(p.Date, p.Date)
		}
		return start, end, true
	}

	for _, l := range leaves {
		widen(l.From, l.To)
	}
	return start, end, found
}

// employees returns every employee ID, sorted, with its display name.
// Punch names win over leave names.
func employees(punches []attendance.AttendancePunch, leaves []attendance.LeaveInterval) ([]string, map[string]string) {
	names := make(map[string]string)
	var ids []string

	add := func(id, name string) {
		current, seen := names[id]
		if !seen {
			ids = append(ids, id)
		}
		if current == "" {
			names[id] = strings.TrimSpace(name)
		}
	}
	for _, p := range punches {
		add(p.EmployeeID, p.EmployeeName)
	}
	for _, l := range leaves {
		add(l.EmployeeID, l.EmployeeName)
	}

	for id, name := range names {
		if name == "" {
			names[id] = unknownEmployeeName
		}
	}

	slices.SortFunc(ids, compareEmployeeIDs)
	return ids, names
}

// compareEmployeeIDs orders numeric IDs by value and places them before other IDs.
func compareEmployeeIDs(a, b string) int {
	na, errA := strconv.ParseUint(a, 10, 64)
	nb, errB := strconv.ParseUint(b, 10, 64)
	switch {
	case errA == nil && errB == nil:
		if c := cmp.Compare(na, nb); c != 0 {
			return c
		}
	case errA == nil:
		return -1
	case errB == nil:
		return 1
	}
	return strings.Compare(a, b)
}
