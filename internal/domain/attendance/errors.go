package attendance

import "errors"

// Attendance processing errors
var (
	// Input errors
	ErrMalformedFile = errors.New("spreadsheet cannot be opened or has no worksheet")
	ErrDateParse     = errors.New("unable to parse date")

	// Reconciliation errors
	ErrDateRangeTooLarge = errors.New("date range exceeds the configured maximum")
)
