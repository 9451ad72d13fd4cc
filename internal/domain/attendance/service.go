package attendance

// PunchParser turns a biometric attendance dump into punch records.
type PunchParser interface {
	Parse(data []byte) ([]AttendancePunch, error)
}

// LeaveParser turns a time-off schedule export into leave intervals.
type LeaveParser interface {
	Parse(data []byte) ([]LeaveInterval, error)
}

// Reconciler merges punches, approved leave and holidays into per-employee ledgers.
type Reconciler interface {
	Reconcile(punches []AttendancePunch, leaves []LeaveInterval, holidays []Holiday) (Ledgers, error)
}

// Renderer writes ledgers to a spreadsheet.
type Renderer interface {
	Render(ledgers Ledgers) ([]byte, error)
}
